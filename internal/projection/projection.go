// Package projection converts between geographic coordinates and the
// conformal plane the hexagon lattice is built in.
//
// The forward transform is x = lon·π/180, y = atanh(sin(lat·π/180)):
// x is longitude in radians and y is the isometric latitude, the same
// vertical stretching web-map tiles use. A hexagon that is regular in
// this plane therefore renders regular on the map at any latitude.
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/model"
)

var (
	ErrPolarLatitude  = errors.New("latitude at or beyond ±90 projects to infinity")
	ErrLengthMismatch = errors.New("lat and lon slices differ in length")
	ErrNotFinite      = errors.New("coordinate is NaN or infinite")
)

const degToRad = math.Pi / 180

// ToPlanar projects a single geographic coordinate. The caller is
// expected to have validated the latitude; lat = ±90 yields ±Inf.
func ToPlanar(p model.GeoPoint) model.PlanarPoint {
	return model.PlanarPoint{
		X: p.Lon * degToRad,
		Y: math.Atanh(math.Sin(p.Lat * degToRad)),
	}
}

// ToGeo is the exact inverse of ToPlanar.
func ToGeo(p model.PlanarPoint) model.GeoPoint {
	return model.GeoPoint{
		Lat: (2*math.Atan(math.Exp(p.Y)) - math.Pi/2) / degToRad,
		Lon: p.X / degToRad,
	}
}

// Validate checks a single coordinate pair for values the projection
// cannot represent. Polar latitudes are rejected rather than letting
// ±Inf leak into the lattice.
func Validate(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return ErrNotFinite
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v outside [-90, 90]", lat)
	}
	if lat == -90 || lat == 90 {
		return ErrPolarLatitude
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v outside [-180, 180]", lon)
	}
	return nil
}

// ProjectAll projects equal-length lat/lon slices element-wise after
// validating every pair. Fails fast on the first bad coordinate.
func ProjectAll(lat, lon []float64) ([]model.PlanarPoint, error) {
	if len(lat) != len(lon) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(lat), len(lon))
	}
	out := make([]model.PlanarPoint, len(lat))
	for i := range lat {
		if err := Validate(lat[i], lon[i]); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = ToPlanar(model.GeoPoint{Lat: lat[i], Lon: lon[i]})
	}
	return out, nil
}

// ProjectRange projects a bounding range into planar min/max extents.
func ProjectRange(b model.BoundingRange) (xmin, xmax, ymin, ymax float64, err error) {
	if err := Validate(b.LatMin, b.LonMin); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("range min: %w", err)
	}
	if err := Validate(b.LatMax, b.LonMax); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("range max: %w", err)
	}
	lo := ToPlanar(model.GeoPoint{Lat: b.LatMin, Lon: b.LonMin})
	hi := ToPlanar(model.GeoPoint{Lat: b.LatMax, Lon: b.LonMax})
	xmin, xmax = math.Min(lo.X, hi.X), math.Max(lo.X, hi.X)
	ymin, ymax = math.Min(lo.Y, hi.Y), math.Max(lo.Y, hi.Y)
	return xmin, xmax, ymin, ymax, nil
}
