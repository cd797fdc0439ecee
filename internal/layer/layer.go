// Package layer drives hexbin aggregation across animation frames and
// assembles the choropleth layer a map renderer consumes: boundary
// GeoJSON, the frame/region/value table, and resolved zoom, center and
// color range.
package layer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/paulmach/orb/geojson"
	"gonum.org/v1/gonum/floats"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/model"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/hexbin"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/reduce"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/zoom"
)

const (
	// DefaultGridSize is the horizontal hexagon count when the caller
	// does not specify one.
	DefaultGridSize = 5

	defaultMapDim = 450
)

// Options are the inputs for one layer build. Lat and Lon are
// required; everything else is optional.
type Options struct {
	Lat, Lon []float64

	// Color is the per-point metric. Without it every frame aggregates
	// point counts.
	Color []float64

	// Frames groups points into animation frames by key. All frames
	// share one bounding range and therefore one lattice, so a region
	// present in several frames keeps the same id.
	Frames []string

	GridSize int

	// Agg defaults to the arithmetic mean.
	Agg reduce.Interface

	ColorRange *[2]float64
	Zoom       *float64
	Center     *model.GeoPoint

	// Width and Height are the target map dimensions in pixels, used
	// only for the zoom estimate. Zero means unset.
	Width, Height int
}

// Layer is the assembled choropleth layer.
type Layer struct {
	GeoJSON    *geojson.FeatureCollection
	Rows       []model.Row
	Zoom       float64
	Center     model.GeoPoint
	ColorRange [2]float64
}

// Build assembles a layer. Frames are aggregated concurrently; output
// order is deterministic (sorted frame keys, lattice order within a
// frame).
func Build(opts Options) (*Layer, error) {
	if len(opts.Lat) == 0 {
		return nil, fmt.Errorf("%w: no points", hexbin.ErrInvalidInput)
	}
	if len(opts.Lat) != len(opts.Lon) {
		return nil, fmt.Errorf("%w: lat/lon length mismatch %d vs %d", hexbin.ErrInvalidInput, len(opts.Lat), len(opts.Lon))
	}
	if opts.Color != nil && len(opts.Color) != len(opts.Lat) {
		return nil, fmt.Errorf("%w: color length %d does not match %d points", hexbin.ErrInvalidInput, len(opts.Color), len(opts.Lat))
	}
	if opts.Frames != nil && len(opts.Frames) != len(opts.Lat) {
		return nil, fmt.Errorf("%w: frames length %d does not match %d points", hexbin.ErrInvalidInput, len(opts.Frames), len(opts.Lat))
	}
	gridSize := opts.GridSize
	if gridSize == 0 {
		gridSize = DefaultGridSize
	}
	agg := opts.Agg
	if agg == nil {
		agg = reduce.Mean()
	}

	// One bounding range for the whole data set, reused by every pass.
	bounds := model.BoundingRange{
		LatMin: floats.Min(opts.Lat),
		LatMax: floats.Max(opts.Lat),
		LonMin: floats.Min(opts.Lon),
		LonMax: floats.Max(opts.Lon),
	}

	// Geometry-only pass: count mode, nothing filtered, full id space.
	geo, err := hexbin.Aggregate(hexbin.Pass{
		Lat: opts.Lat, Lon: opts.Lon,
		Range:    bounds,
		NX:       gridSize,
		MinCount: hexbin.MinCountAll(),
	})
	if err != nil {
		return nil, fmt.Errorf("geometry pass: %w", err)
	}
	geoms, err := hexbin.BuildPolygons(geo.Bins)
	if err != nil {
		return nil, fmt.Errorf("build polygons: %w", err)
	}
	fc, err := hexbin.FeatureCollection(geo.Bins, geoms)
	if err != nil {
		return nil, fmt.Errorf("package geojson: %w", err)
	}

	rows, err := aggregateFrames(opts, bounds, gridSize, agg)
	if err != nil {
		return nil, err
	}

	out := &Layer{GeoJSON: fc, Rows: rows}
	if err := out.resolveView(opts, bounds); err != nil {
		return nil, err
	}
	out.resolveColorRange(opts)
	return out, nil
}

type frameGroup struct {
	key     string
	indices []int
}

func groupFrames(frames []string, n int) []frameGroup {
	if frames == nil {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return []frameGroup{{key: "0", indices: all}}
	}
	byKey := map[string][]int{}
	for i, k := range frames {
		byKey[k] = append(byKey[k], i)
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	groups := make([]frameGroup, len(keys))
	for i, k := range keys {
		groups[i] = frameGroup{key: k, indices: byKey[k]}
	}
	return groups
}

// aggregateFrames fans the per-frame passes out and stitches the rows
// back together in frame order. The passes are independent: they share
// only the read-only bounding range.
func aggregateFrames(opts Options, bounds model.BoundingRange, gridSize int, agg reduce.Interface) ([]model.Row, error) {
	groups := groupFrames(opts.Frames, len(opts.Lat))

	perFrame := make([][]model.Row, len(groups))
	errs := make([]error, len(groups))
	var wg sync.WaitGroup
	for gi, g := range groups {
		wg.Add(1)
		go func(gi int, g frameGroup) {
			defer wg.Done()
			lat := make([]float64, len(g.indices))
			lon := make([]float64, len(g.indices))
			var vals []float64
			if opts.Color != nil {
				vals = make([]float64, len(g.indices))
			}
			for i, idx := range g.indices {
				lat[i] = opts.Lat[idx]
				lon[i] = opts.Lon[idx]
				if vals != nil {
					vals[i] = opts.Color[idx]
				}
			}
			res, err := hexbin.Aggregate(hexbin.Pass{
				Lat: lat, Lon: lon,
				Range:  bounds,
				Values: vals,
				NX:     gridSize,
				Agg:    agg,
			})
			if err != nil {
				errs[gi] = fmt.Errorf("frame %q: %w", g.key, err)
				return
			}
			rows := make([]model.Row, len(res.Bins))
			for i, b := range res.Bins {
				rows[i] = model.Row{Frame: g.key, Region: b.ID, Value: b.Value}
			}
			perFrame[gi] = rows
		}(gi, g)
	}
	wg.Wait()

	var rows []model.Row
	for gi := range groups {
		if errs[gi] != nil {
			return nil, errs[gi]
		}
		rows = append(rows, perFrame[gi]...)
	}
	return rows, nil
}

func (l *Layer) resolveView(opts Options, bounds model.BoundingRange) error {
	if opts.Center != nil {
		l.Center = *opts.Center
	} else {
		l.Center = model.GeoPoint{
			Lat: (bounds.LatMin + bounds.LatMax) / 2,
			Lon: (bounds.LonMin + bounds.LonMax) / 2,
		}
	}

	if opts.Zoom != nil {
		l.Zoom = *opts.Zoom
		return nil
	}
	width, height := float64(opts.Width), float64(opts.Height)
	switch {
	case width <= 0 && height <= 0:
		width, height = defaultMapDim, defaultMapDim
	case height <= 0:
		height = defaultMapDim
	case width <= 0:
		width = height
	}
	z, err := zoom.Estimate(bounds, width, height)
	if err != nil {
		return fmt.Errorf("estimate zoom: %w", err)
	}
	l.Zoom = z
	return nil
}

func (l *Layer) resolveColorRange(opts Options) {
	if opts.ColorRange != nil {
		l.ColorRange = *opts.ColorRange
		return
	}
	if len(l.Rows) == 0 {
		return
	}
	lo, hi := l.Rows[0].Value, l.Rows[0].Value
	for _, r := range l.Rows[1:] {
		if r.Value < lo {
			lo = r.Value
		}
		if r.Value > hi {
			hi = r.Value
		}
	}
	l.ColorRange = [2]float64{lo, hi}
}
