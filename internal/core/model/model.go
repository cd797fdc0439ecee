// Package model defines core domain types shared across the service.
package model

import "fmt"

// GeoPoint is a geographic coordinate in degrees.
// Lat must be in [-90, 90] and Lon in [-180, 180].
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PlanarPoint is a point in the conformal projected plane. X is scaled
// longitude and Y is the isometric latitude, so a regular hexagon lattice
// in this plane stays visually regular on web-map tiles.
type PlanarPoint struct {
	X float64
	Y float64
}

// BoundingRange is the lat/lon envelope shared by every frame of one
// binning run. Min/max per axis, degrees.
type BoundingRange struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// String representation matching bbox query format
func (b BoundingRange) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.LonMin, b.LatMin, b.LonMax, b.LatMax)
}

// Bin is one surviving hexagon cell produced by an aggregation pass.
type Bin struct {
	// ID is the region id: the raw planar center coordinates joined by a
	// comma. Identical cells always format to the identical id, which is
	// what makes bins joinable against the polygon collection and across
	// animation frames.
	ID string

	Center PlanarPoint

	// Value is the aggregate for this cell (the count in count mode).
	Value float64

	// Count is the number of points assigned to the cell.
	Count int
}

// Row is one consolidated output table row.
type Row struct {
	Frame  string  `json:"frame"`
	Region string  `json:"region"`
	Value  float64 `json:"value"`
}
