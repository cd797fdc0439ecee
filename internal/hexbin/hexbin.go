// Package hexbin implements hexagonal spatial binning over geographic
// points: points are projected to a conformal plane, assigned to the
// nearest center of a two-offset hexagon lattice, and aggregated per
// cell. Polygon reconstruction for the surviving cells lives in
// polygon.go.
package hexbin

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/model"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/projection"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/reduce"
)

var (
	ErrInvalidInput      = errors.New("invalid hexbin input")
	ErrDegenerateLattice = errors.New("degenerate lattice")
)

// Lattice carries the planar grid parameters of one aggregation pass.
// The hexagon centers form two interleaved rectangular sub-grids: the
// offset grid at (i·DX, j·DY) relative to (XMin, YMin), sized
// (NX+1)x(NY+1), and the base grid shifted by half a step in both
// axes, sized NX x NY.
type Lattice struct {
	XMin, YMin float64
	DX, DY     float64
	NX, NY     int
}

// Pass describes one aggregation run.
type Pass struct {
	Lat, Lon []float64

	// Range is the shared bounding envelope. Every pass over the same
	// range produces cells from the same global id space.
	Range model.BoundingRange

	// Values is the per-point metric. Nil selects count mode, where the
	// aggregate of a cell is its point count.
	Values []float64

	// NX is the requested horizontal hexagon count.
	NX int

	// Agg collapses a cell's collected values. Ignored in count mode.
	Agg reduce.Interface

	// MinCount filters sparse cells. The two modes interpret it
	// differently, and both readings must be kept as they are:
	// in count mode a set MinCount drops cells with count < MinCount
	// (unset keeps every cell, empty ones included); in value mode an
	// unset MinCount defaults to 0 and a cell survives only when it
	// collected strictly more than MinCount values.
	MinCount *float64
}

// Result is the outcome of one pass: the surviving bins in a stable
// order (offset sub-grid row-major, then base sub-grid) plus the
// lattice parameters for analytic polygon scaling.
type Result struct {
	Bins    []model.Bin
	Lattice Lattice
}

// MinCountAll is the MinCount for a geometry-only pass: nothing is
// filtered, so every lattice cell is emitted and the resulting ids
// cover the full id space.
func MinCountAll() *float64 {
	v := math.Inf(-1)
	return &v
}

func (p Pass) validate() error {
	if p.NX <= 0 {
		return fmt.Errorf("%w: horizontal hexagon count %d must be positive", ErrInvalidInput, p.NX)
	}
	if len(p.Lat) != len(p.Lon) {
		return fmt.Errorf("%w: lat/lon length mismatch %d vs %d", ErrInvalidInput, len(p.Lat), len(p.Lon))
	}
	if p.Values != nil {
		if len(p.Values) != len(p.Lat) {
			return fmt.Errorf("%w: values length %d does not match %d points", ErrInvalidInput, len(p.Values), len(p.Lat))
		}
		if p.Agg == nil {
			return fmt.Errorf("%w: values supplied without an aggregator", ErrInvalidInput)
		}
		for i, v := range p.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: value %d is not finite", ErrInvalidInput, i)
			}
		}
	}
	return nil
}

// Aggregate runs one binning pass. Points outside the bounding range
// fall outside the grid extents and are skipped.
func Aggregate(p Pass) (Result, error) {
	if err := p.validate(); err != nil {
		return Result{}, err
	}

	pts, err := projection.ProjectAll(p.Lat, p.Lon)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	xmin, xmax, ymin, ymax, err := projection.ProjectRange(p.Range)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if xmax == xmin || ymax == ymin {
		return Result{}, fmt.Errorf("%w: bounding range has zero span", ErrInvalidInput)
	}

	dx := (xmax - xmin) / float64(p.NX)
	dy := dx * math.Sqrt(3)
	ny := int(math.Round((ymax - ymin) / dy))

	lat := Lattice{XMin: xmin, YMin: ymin, DX: dx, DY: dy, NX: p.NX, NY: ny}

	// Offset sub-grid is one cell wider and taller than the base one.
	nx1, ny1 := p.NX+1, ny+1
	nx2, ny2 := p.NX, ny

	type cellRef struct {
		offset bool
		i, j   int
	}
	refs := make([]cellRef, len(pts))
	for k, pt := range pts {
		xn := (pt.X - xmin) / dx
		yn := (pt.Y - ymin) / dy
		// Candidate centers: nearest offset-grid node via rounding,
		// nearest base-grid node via flooring plus the half-step shift.
		// Half-to-even rounding keeps boundary points split the same way
		// on every run.
		ix1 := int(math.RoundToEven(xn))
		iy1 := int(math.RoundToEven(yn))
		ix2 := int(math.Floor(xn))
		iy2 := int(math.Floor(yn))
		// The y axis carries the sqrt(3) step, hence the factor 3 on
		// the squared y distance.
		d1 := sq(xn-float64(ix1)) + 3*sq(yn-float64(iy1))
		d2 := sq(xn-float64(ix2)-0.5) + 3*sq(yn-float64(iy2)-0.5)
		if d1 < d2 {
			refs[k] = cellRef{offset: true, i: ix1, j: iy1}
		} else {
			refs[k] = cellRef{offset: false, i: ix2, j: iy2}
		}
	}

	if p.Values == nil {
		counts1 := newIntGrid(nx1, ny1)
		counts2 := newIntGrid(nx2, ny2)
		for _, r := range refs {
			if r.offset {
				if r.i >= 0 && r.i < nx1 && r.j >= 0 && r.j < ny1 {
					counts1[r.i][r.j]++
				}
			} else {
				if r.i >= 0 && r.i < nx2 && r.j >= 0 && r.j < ny2 {
					counts2[r.i][r.j]++
				}
			}
		}
		bins := emitCounts(lat, counts1, counts2, p.MinCount)
		return Result{Bins: bins, Lattice: lat}, nil
	}

	vals1 := newValGrid(nx1, ny1)
	vals2 := newValGrid(nx2, ny2)
	for k, r := range refs {
		if r.offset {
			if r.i >= 0 && r.i < nx1 && r.j >= 0 && r.j < ny1 {
				vals1[r.i][r.j] = append(vals1[r.i][r.j], p.Values[k])
			}
		} else {
			if r.i >= 0 && r.i < nx2 && r.j >= 0 && r.j < ny2 {
				vals2[r.i][r.j] = append(vals2[r.i][r.j], p.Values[k])
			}
		}
	}
	minCount := 0.0
	if p.MinCount != nil {
		minCount = *p.MinCount
	}
	bins := emitValues(lat, vals1, vals2, p.Agg, minCount)
	return Result{Bins: bins, Lattice: lat}, nil
}

func sq(v float64) float64 { return v * v }

func newIntGrid(nx, ny int) [][]int {
	g := make([][]int, nx)
	for i := range g {
		g[i] = make([]int, ny)
	}
	return g
}

func newValGrid(nx, ny int) [][][]float64 {
	g := make([][][]float64, nx)
	for i := range g {
		g[i] = make([][]float64, ny)
	}
	return g
}

// center returns the planar center of a cell. Base-grid cells sit half
// a step into the cell in both axes.
func (l Lattice) center(offset bool, i, j int) model.PlanarPoint {
	fi, fj := float64(i), float64(j)
	if !offset {
		fi += 0.5
		fj += 0.5
	}
	return model.PlanarPoint{X: fi*l.DX + l.XMin, Y: fj*l.DY + l.YMin}
}

// BinID formats the region id for a planar center. Raw float
// formatting keeps ids deterministic and joinable across passes that
// share a lattice.
func BinID(c model.PlanarPoint) string {
	return strconv.FormatFloat(c.X, 'g', -1, 64) + "," + strconv.FormatFloat(c.Y, 'g', -1, 64)
}

func emitCounts(l Lattice, counts1, counts2 [][]int, minCount *float64) []model.Bin {
	var bins []model.Bin
	emit := func(offset bool, counts [][]int) {
		for i := range counts {
			for j := range counts[i] {
				n := counts[i][j]
				if minCount != nil && float64(n) < *minCount {
					continue
				}
				c := l.center(offset, i, j)
				bins = append(bins, model.Bin{ID: BinID(c), Center: c, Value: float64(n), Count: n})
			}
		}
	}
	emit(true, counts1)
	emit(false, counts2)
	return bins
}

func emitValues(l Lattice, vals1, vals2 [][][]float64, agg reduce.Interface, minCount float64) []model.Bin {
	var bins []model.Bin
	emit := func(offset bool, vals [][][]float64) {
		for i := range vals {
			for j := range vals[i] {
				vs := vals[i][j]
				if float64(len(vs)) <= minCount {
					continue
				}
				v := agg.Reduce(vs)
				if math.IsNaN(v) {
					continue
				}
				c := l.center(offset, i, j)
				bins = append(bins, model.Bin{ID: BinID(c), Center: c, Value: v, Count: len(vs)})
			}
		}
	}
	emit(true, vals1)
	emit(false, vals2)
	return bins
}
