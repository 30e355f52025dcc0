package stats

import (
	"fmt"
	"math"

	"figmgr/internal/dataset"

	"gonum.org/v1/gonum/stat"
)

// AggFunc reduces the non-null values of a group to one number.
type AggFunc func(values []float64) float64

// Mean is the arithmetic mean. It returns NaN for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

// Aggregate groups d by x and the groupBy columns, reduces y with agg, and
// returns a table with columns x, groupBy..., y sorted by x then group.
func Aggregate(d *dataset.Dataset, x, y string, groupBy []string, agg AggFunc) (*dataset.Dataset, error) {
	if agg == nil {
		return nil, fmt.Errorf("aggregate %s by %s: nil aggregation", y, x)
	}
	ys, err := d.Floats(y)
	if err != nil {
		return nil, err
	}
	xcol, err := d.Column(x)
	if err != nil {
		return nil, err
	}

	over := append([]string{x}, groupBy...)
	groups, err := GroupBy(d, over, nil)
	if err != nil {
		return nil, err
	}

	keys := make([][]string, len(over))
	out := make([]float64, 0, len(groups))
	for _, g := range groups {
		for j := range over {
			keys[j] = append(keys[j], g.Key[j])
		}
		out = append(out, agg(finite(pick(ys, g.Rows))))
	}

	cols := make([]*dataset.Column, 0, len(over)+1)
	if xcol.Numeric() {
		cols = append(cols, dataset.NumericColumn(x, parseFloats(keys[0])))
	} else {
		cols = append(cols, dataset.TextColumn(x, keys[0]))
	}
	for j, name := range groupBy {
		cols = append(cols, dataset.TextColumn(name, keys[j+1]))
	}
	cols = append(cols, dataset.NumericColumn(y, out))
	return dataset.FromColumns(cols...)
}
