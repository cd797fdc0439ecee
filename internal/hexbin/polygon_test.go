package hexbin

import (
	"errors"
	"math"
	"testing"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/model"
)

func geometryPass(t *testing.T, nx int) Result {
	t.Helper()
	box := model.BoundingRange{LatMin: 0, LatMax: 2, LonMin: 0, LonMax: 2}
	var lat, lon []float64
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			lat = append(lat, 0.1+1.8*float64(i)/7)
			lon = append(lon, 0.1+1.8*float64(j)/7)
		}
	}
	res, err := Aggregate(Pass{Lat: lat, Lon: lon, Range: box, NX: nx, MinCount: MinCountAll()})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	return res
}

func TestBuildPolygons_ClosedRingsKeyedByID(t *testing.T) {
	res := geometryPass(t, 5)
	geoms, err := BuildPolygons(res.Bins)
	if err != nil {
		t.Fatalf("BuildPolygons: %v", err)
	}
	if len(geoms) != len(res.Bins) {
		t.Fatalf("got %d geometries for %d bins", len(geoms), len(res.Bins))
	}
	for _, b := range res.Bins {
		g, ok := geoms[b.ID]
		if !ok {
			t.Fatalf("missing geometry for %q", b.ID)
		}
		if len(g.Ring) != 7 {
			t.Fatalf("ring has %d vertices, want 7", len(g.Ring))
		}
		if g.Ring[0] != g.Ring[6] {
			t.Fatalf("ring not closed: %v vs %v", g.Ring[0], g.Ring[6])
		}
	}
}

func TestBuildPolygons_MatchesAnalyticScale(t *testing.T) {
	res := geometryPass(t, 5)
	inferred, err := BuildPolygons(res.Bins)
	if err != nil {
		t.Fatalf("BuildPolygons: %v", err)
	}
	analytic, err := BuildPolygonsScaled(res.Bins, res.Lattice)
	if err != nil {
		t.Fatalf("BuildPolygonsScaled: %v", err)
	}
	for id, gi := range inferred {
		ga := analytic[id]
		for k := range gi.Ring {
			if math.Abs(gi.Ring[k].Lat-ga.Ring[k].Lat) > 1e-9 ||
				math.Abs(gi.Ring[k].Lon-ga.Ring[k].Lon) > 1e-9 {
				t.Fatalf("region %s vertex %d: inferred %v vs analytic %v", id, k, gi.Ring[k], ga.Ring[k])
			}
		}
	}
}

func TestBuildPolygons_SingleColumnDegenerate(t *testing.T) {
	// All bins share one x coordinate: only the zero difference exists
	// on the x axis, so the scale cannot be inferred.
	bins := []model.Bin{
		{ID: "a", Center: model.PlanarPoint{X: 1, Y: 0}},
		{ID: "b", Center: model.PlanarPoint{X: 1, Y: 0.5}},
		{ID: "c", Center: model.PlanarPoint{X: 1, Y: 1}},
	}
	if _, err := BuildPolygons(bins); !errors.Is(err, ErrDegenerateLattice) {
		t.Fatalf("expected ErrDegenerateLattice, got %v", err)
	}
}

func TestBuildPolygons_EmptyInput(t *testing.T) {
	geoms, err := BuildPolygons(nil)
	if err != nil {
		t.Fatalf("BuildPolygons(nil): %v", err)
	}
	if len(geoms) != 0 {
		t.Fatalf("expected empty map, got %d entries", len(geoms))
	}
}

func TestBuildPolygonsScaled_RejectsBadLattice(t *testing.T) {
	bins := []model.Bin{{ID: "a", Center: model.PlanarPoint{X: 0, Y: 0}}}
	if _, err := BuildPolygonsScaled(bins, Lattice{DX: 0, DY: 1}); err == nil {
		t.Fatalf("expected error for zero DX")
	}
}

func TestFeatureCollection_DeterministicAndClosed(t *testing.T) {
	res := geometryPass(t, 4)
	geoms, err := BuildPolygons(res.Bins)
	if err != nil {
		t.Fatalf("BuildPolygons: %v", err)
	}
	fc, err := FeatureCollection(res.Bins, geoms)
	if err != nil {
		t.Fatalf("FeatureCollection: %v", err)
	}
	if len(fc.Features) != len(res.Bins) {
		t.Fatalf("got %d features for %d bins", len(fc.Features), len(res.Bins))
	}
	for i, f := range fc.Features {
		if f.ID != res.Bins[i].ID {
			t.Fatalf("feature %d id %v out of order (want %s)", i, f.ID, res.Bins[i].ID)
		}
	}
	// Missing geometry must fail rather than emit a partial collection.
	if _, err := FeatureCollection(res.Bins, map[string]Geometry{}); err == nil {
		t.Fatalf("expected error for missing geometry")
	}
}
