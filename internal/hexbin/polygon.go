package hexbin

import (
	"fmt"
	"math"
	"sort"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/model"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/projection"
)

// Geometry is the closed boundary ring of one hexagon, in geographic
// coordinates. Ring has 7 vertices; the first one is repeated at the
// end.
type Geometry struct {
	Ring []model.GeoPoint
}

// Pointy-top unit hexagon outline.
var (
	hexTemplateX = [6]float64{0, 0.5, 0.5, 0, -0.5, -0.5}
	hexTemplateY = [6]float64{
		-0.5 / cos30,
		-0.5 * tan30,
		0.5 * tan30,
		0.5 / cos30,
		0.5 * tan30,
		-0.5 * tan30,
	}
)

var (
	cos30 = math.Cos(math.Pi / 6)
	tan30 = math.Tan(math.Pi / 6)
)

// BuildPolygons reconstructs the boundary of every bin, keyed by
// region id. The hexagon pitch is inferred from the bin centers
// themselves: consecutive differences of the sorted center
// coordinates, deduplicated exactly, second-smallest distinct value
// per axis. The smallest distinct difference is zero (centers of one
// sub-grid share coordinates) or the half-step between the two
// sub-grids; the second one is the true spacing. Self-calibrating like
// this keeps the boundaries consistent with the centers even if a
// caller has rescaled them, at the cost of needing both sub-grids
// populated; BuildPolygonsScaled is the exact alternative.
func BuildPolygons(bins []model.Bin) (map[string]Geometry, error) {
	if len(bins) == 0 {
		return map[string]Geometry{}, nil
	}
	dxh, err := inferSpacing(bins, func(b model.Bin) float64 { return b.Center.X })
	if err != nil {
		return nil, fmt.Errorf("x axis: %w", err)
	}
	dyh, err := inferSpacing(bins, func(b model.Bin) float64 { return b.Center.Y })
	if err != nil {
		return nil, fmt.Errorf("y axis: %w", err)
	}
	return buildRings(bins, hexSize(dxh, dyh))
}

// BuildPolygonsScaled reconstructs boundaries from the lattice
// parameters instead of re-inferring them, so it also works when all
// bins fall into a single row, column, or sub-grid.
func BuildPolygonsScaled(bins []model.Bin, l Lattice) (map[string]Geometry, error) {
	if l.DX <= 0 || l.DY <= 0 {
		return nil, fmt.Errorf("%w: non-positive lattice steps %v x %v", ErrInvalidInput, l.DX, l.DY)
	}
	// The half-steps are what spacing inference recovers when both
	// sub-grids are present.
	return buildRings(bins, hexSize(l.DX/2, l.DY/2))
}

type size struct {
	width, height float64
}

func hexSize(dxh, dyh float64) size {
	return size{
		width:  dxh * 2,
		height: 2.0 / 3.0 * dyh / (0.5 / cos30),
	}
}

// inferSpacing returns the second-smallest distinct consecutive
// difference of the sorted center coordinates along one axis.
func inferSpacing(bins []model.Bin, coord func(model.Bin) float64) (float64, error) {
	xs := make([]float64, len(bins))
	for i, b := range bins {
		xs[i] = coord(b)
	}
	sort.Float64s(xs)

	distinct := make([]float64, 0, 2)
	for i := 1; i < len(xs); i++ {
		d := xs[i] - xs[i-1]
		seen := false
		for _, v := range distinct {
			if v == d {
				seen = true
				break
			}
		}
		if !seen {
			distinct = append(distinct, d)
		}
	}
	if len(distinct) < 2 {
		return 0, fmt.Errorf("%w: %d distinct center spacings, need at least 2", ErrDegenerateLattice, len(distinct))
	}
	sort.Float64s(distinct)
	return distinct[1], nil
}

func buildRings(bins []model.Bin, s size) (map[string]Geometry, error) {
	out := make(map[string]Geometry, len(bins))
	for _, b := range bins {
		ring := make([]model.GeoPoint, 0, 7)
		for k := 0; k < 6; k++ {
			ring = append(ring, projection.ToGeo(model.PlanarPoint{
				X: hexTemplateX[k]*s.width + b.Center.X,
				Y: hexTemplateY[k]*s.height + b.Center.Y,
			}))
		}
		ring = append(ring, ring[0])
		out[b.ID] = Geometry{Ring: ring}
	}
	return out, nil
}
