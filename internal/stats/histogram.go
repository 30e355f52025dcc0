package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoValues is returned when a computation has no finite input.
var ErrNoValues = errors.New("no finite values")

// Histogram bins values into equal-width bins over [min, max]. Every bin is
// half-open except the last, which also holds max. When all values are equal
// the range is widened by 0.5 either side. Non-finite values are ignored.
func Histogram(values []float64, bins int) (counts, edges []float64, err error) {
	if bins < 1 {
		return nil, nil, errors.New("histogram needs at least one bin")
	}
	x := finite(values)
	if len(x) == 0 {
		return nil, nil, ErrNoValues
	}
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges = make([]float64, bins+1)
	floats.Span(edges, lo, hi)

	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts = stat.Histogram(nil, dividers, x, nil)
	return counts, edges, nil
}

// CountInfo reports the smallest count among bins or distinct values and
// the positions where it occurs.
type CountInfo struct {
	Min int
	At  []float64
}

// MinBinCount returns the smallest histogram bin count and the left edge of
// the first bin holding it.
func MinBinCount(values []float64, bins int) (CountInfo, error) {
	counts, edges, err := Histogram(values, bins)
	if err != nil {
		return CountInfo{}, err
	}
	i := floats.MinIdx(counts)
	return CountInfo{Min: int(counts[i]), At: []float64{edges[i]}}, nil
}

// MinValueCount returns the smallest number of repetitions of any distinct
// finite value, and every value with that count in ascending order.
func MinValueCount(values []float64) (CountInfo, error) {
	x := finite(values)
	if len(x) == 0 {
		return CountInfo{}, ErrNoValues
	}

	counts := make(map[float64]int)
	for _, v := range x {
		counts[v]++
	}
	info := CountInfo{Min: len(x) + 1}
	for v, n := range counts {
		switch {
		case n < info.Min:
			info = CountInfo{Min: n, At: []float64{v}}
		case n == info.Min:
			info.At = append(info.At, v)
		}
	}
	sort.Float64s(info.At)
	return info, nil
}
