package stats

import (
	"math"
	"strconv"

	"figmgr/internal/dataset"

	"gonum.org/v1/gonum/stat"
)

// Z95 scales a standard deviation to a two-sided 95% normal interval.
const Z95 = 1.96

// Summary aggregates one measure of one group. Std is the sample standard
// deviation (n-1 denominator) and is NaN when fewer than two values exist.
type Summary struct {
	N    int
	Mean float64
	Std  float64
}

// Interval returns Mean ± z·Std.
func (s Summary) Interval(z float64) (low, high float64) {
	return s.Mean - z*s.Std, s.Mean + z*s.Std
}

// GroupSummary holds the summaries of every measure for one group value.
type GroupSummary struct {
	Key      string
	Measures map[string]Summary
}

// Summarize computes per-group mean and sample standard deviation of each
// measure, grouped by a single column. Null measure values are skipped.
func Summarize(d *dataset.Dataset, by string, measures ...string) ([]GroupSummary, error) {
	values := make(map[string][]float64, len(measures))
	for _, m := range measures {
		v, err := d.Floats(m)
		if err != nil {
			return nil, err
		}
		values[m] = v
	}

	groups, err := GroupBy(d, []string{by}, nil)
	if err != nil {
		return nil, err
	}

	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		gs := GroupSummary{Key: g.Key[0], Measures: make(map[string]Summary, len(measures))}
		for _, m := range measures {
			gs.Measures[m] = summarize(finite(pick(values[m], g.Rows)))
		}
		out = append(out, gs)
	}
	return out, nil
}

func summarize(v []float64) Summary {
	switch len(v) {
	case 0:
		return Summary{Mean: math.NaN(), Std: math.NaN()}
	case 1:
		return Summary{N: 1, Mean: v[0], Std: math.NaN()}
	}
	mean, std := stat.MeanStdDev(v, nil)
	return Summary{N: len(v), Mean: mean, Std: std}
}

// SummaryTable lays summaries out as a table with columns
// <by>, then for each measure <m>_mean, <m>_std, <m>_ci_low, <m>_ci_high.
// The interval is Mean ± z·Std.
func SummaryTable(by string, measures []string, sums []GroupSummary, z float64) (*dataset.Dataset, error) {
	keys := make([]string, len(sums))
	for i, s := range sums {
		keys[i] = s.Key
	}

	cols := []*dataset.Column{keyColumn(by, keys)}
	for _, m := range measures {
		mean := make([]float64, len(sums))
		std := make([]float64, len(sums))
		low := make([]float64, len(sums))
		high := make([]float64, len(sums))
		for i, s := range sums {
			sm, ok := s.Measures[m]
			if !ok {
				sm = Summary{Mean: math.NaN(), Std: math.NaN()}
			}
			mean[i], std[i] = sm.Mean, sm.Std
			low[i], high[i] = sm.Interval(z)
		}
		cols = append(cols,
			dataset.NumericColumn(m+"_mean", mean),
			dataset.NumericColumn(m+"_std", std),
			dataset.NumericColumn(m+"_ci_low", low),
			dataset.NumericColumn(m+"_ci_high", high),
		)
	}
	return dataset.FromColumns(cols...)
}

// keyColumn is numeric when every non-null key parses as a number.
func keyColumn(name string, keys []string) *dataset.Column {
	nums := make([]float64, len(keys))
	for i, k := range keys {
		if k == "" {
			nums[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(k, 64)
		if err != nil {
			return dataset.TextColumn(name, keys)
		}
		nums[i] = v
	}
	return dataset.NumericColumn(name, nums)
}

func pick(values []float64, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = values[r]
	}
	return out
}

func finite(values []float64) []float64 {
	out := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func parseFloats(keys []string) []float64 {
	out := make([]float64, len(keys))
	for i, k := range keys {
		v, err := strconv.ParseFloat(k, 64)
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}
