// Package reduce defines the aggregation-function capability used to
// collapse the values collected in one hexagon cell into a scalar.
package reduce

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Interface reduces an ordered sequence of values to a scalar.
// Implementations must not mutate the input slice.
type Interface interface {
	Reduce(vals []float64) float64
}

// Func adapts a plain function to Interface, for caller-supplied
// aggregators.
type Func func(vals []float64) float64

func (f Func) Reduce(vals []float64) float64 { return f(vals) }

type mean struct{}

func (mean) Reduce(vals []float64) float64 { return stat.Mean(vals, nil) }

type sum struct{}

func (sum) Reduce(vals []float64) float64 { return floats.Sum(vals) }

type count struct{}

func (count) Reduce(vals []float64) float64 { return float64(len(vals)) }

type max struct{}

func (max) Reduce(vals []float64) float64 { return floats.Max(vals) }

type min struct{}

func (min) Reduce(vals []float64) float64 { return floats.Min(vals) }

// Mean is the default aggregator.
func Mean() Interface { return mean{} }

func Sum() Interface { return sum{} }

func Count() Interface { return count{} }

func Max() Interface { return max{} }

func Min() Interface { return min{} }

type percentile struct{ p float64 }

func (q percentile) Reduce(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return stat.Quantile(q.p, stat.LinInterp, sorted, nil)
}

// Percentile aggregates to the p-th quantile, p in [0, 1], with linear
// interpolation between order statistics.
func Percentile(p float64) (Interface, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("percentile %v outside [0, 1]", p)
	}
	return percentile{p: p}, nil
}

// ByName resolves the aggregators addressable from the HTTP surface.
func ByName(name string) (Interface, error) {
	switch name {
	case "", "mean", "avg":
		return Mean(), nil
	case "sum":
		return Sum(), nil
	case "count":
		return Count(), nil
	case "max":
		return Max(), nil
	case "min":
		return Min(), nil
	default:
		return nil, fmt.Errorf("unknown aggregator %q", name)
	}
}
