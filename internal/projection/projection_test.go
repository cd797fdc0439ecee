package projection

import (
	"errors"
	"math"
	"testing"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/model"
)

func TestRoundTrip_GridOfCoordinates(t *testing.T) {
	for lat := -89.0; lat <= 89.0; lat += 7.3 {
		for lon := -180.0; lon <= 180.0; lon += 13.7 {
			p := ToGeo(ToPlanar(model.GeoPoint{Lat: lat, Lon: lon}))
			if math.Abs(p.Lat-lat) > 1e-9 || math.Abs(p.Lon-lon) > 1e-9 {
				t.Fatalf("round trip (%v,%v) -> (%v,%v)", lat, lon, p.Lat, p.Lon)
			}
		}
	}
}

func TestRoundTrip_NearPoles(t *testing.T) {
	for _, lat := range []float64{-89.999, 89.999} {
		p := ToGeo(ToPlanar(model.GeoPoint{Lat: lat, Lon: 0}))
		if math.Abs(p.Lat-lat) > 1e-9 {
			t.Fatalf("lat %v round-tripped to %v", lat, p.Lat)
		}
	}
}

func TestValidate_RejectsPolesAndNaN(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
	}{
		{"north pole", 90, 0},
		{"south pole", -90, 0},
		{"nan lat", math.NaN(), 0},
		{"nan lon", 0, math.NaN()},
		{"inf lat", math.Inf(1), 0},
		{"lat out of range", 91, 0},
		{"lon out of range", 0, 181},
	}
	for _, c := range cases {
		if err := Validate(c.lat, c.lon); err == nil {
			t.Fatalf("%s: expected validation error", c.name)
		}
	}
	if err := Validate(59.33, 18.06); err != nil {
		t.Fatalf("valid coordinate rejected: %v", err)
	}
}

func TestProjectAll_LengthMismatchAndFailFast(t *testing.T) {
	if _, err := ProjectAll([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	_, err := ProjectAll([]float64{1, 90, 2}, []float64{0, 0, 0})
	if !errors.Is(err, ErrPolarLatitude) {
		t.Fatalf("expected ErrPolarLatitude, got %v", err)
	}
}

func TestProjectRange_OrdersExtents(t *testing.T) {
	// swapped min/max must still yield ordered planar extents
	b := model.BoundingRange{LatMin: 60, LatMax: 59, LonMin: 19, LonMax: 18}
	xmin, xmax, ymin, ymax, err := ProjectRange(b)
	if err != nil {
		t.Fatalf("ProjectRange: %v", err)
	}
	if xmin >= xmax || ymin >= ymax {
		t.Fatalf("extents not ordered: x [%v,%v] y [%v,%v]", xmin, xmax, ymin, ymax)
	}
}
