package zoom

import (
	"testing"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/model"
)

var stockholm = model.BoundingRange{LatMin: 59.30, LatMax: 59.40, LonMin: 17.95, LonMax: 18.15}

func TestEstimate_MonotoneInDimensions(t *testing.T) {
	prev := Max + 1
	for _, px := range []float64{1800, 900, 450, 225} {
		z, err := Estimate(stockholm, px, px)
		if err != nil {
			t.Fatalf("Estimate(%v): %v", px, err)
		}
		if z > Max {
			t.Fatalf("zoom %v exceeds cap", z)
		}
		if z >= prev {
			t.Fatalf("zoom did not decrease with dimensions: %v -> %v", prev, z)
		}
		prev = z
	}
}

func TestEstimate_CapAppliesToTinyRange(t *testing.T) {
	tiny := model.BoundingRange{LatMin: 59.3300, LatMax: 59.3301, LonMin: 18.06, LonMax: 18.0601}
	z, err := Estimate(tiny, 450, 450)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if z != Max {
		t.Fatalf("expected cap %v, got %v", Max, z)
	}
}

func TestEstimate_AntimeridianCrossing(t *testing.T) {
	// LonMax < LonMin: range crosses 180°, spanning 20° of longitude
	cross := model.BoundingRange{LatMin: -10, LatMax: 10, LonMin: 170, LonMax: -170}
	narrow := model.BoundingRange{LatMin: -10, LatMax: 10, LonMin: 0, LonMax: 20}
	zc, err := Estimate(cross, 450, 450)
	if err != nil {
		t.Fatalf("Estimate(cross): %v", err)
	}
	zn, err := Estimate(narrow, 450, 450)
	if err != nil {
		t.Fatalf("Estimate(narrow): %v", err)
	}
	if zc != zn {
		t.Fatalf("crossing range zoom %v != equivalent-width zoom %v", zc, zn)
	}
}

func TestEstimate_RejectsBadDimensions(t *testing.T) {
	if _, err := Estimate(stockholm, 0, 450); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if _, err := Estimate(stockholm, 450, -1); err == nil {
		t.Fatalf("expected error for negative height")
	}
}
