// Package zoom estimates the web-map zoom level that fits a bounding
// range inside given pixel dimensions.
package zoom

import (
	"fmt"
	"math"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/model"
)

const (
	// Base tiles are 512x512 (256 at scale factor 2).
	tileSize = 256
	scale    = 2
	worldPx  = tileSize * scale

	// Max is the zoom cap applied to every estimate.
	Max = 18.0
)

// latRad is the Mercator latitude radian, clamped to ±π/2.
func latRad(lat float64) float64 {
	sin := math.Sin(lat * math.Pi / 180)
	radX2 := math.Log((1+sin)/(1-sin)) / 2
	return math.Max(math.Min(radX2, math.Pi), -math.Pi) / 2
}

func axisZoom(mapPx, fraction float64) float64 {
	return 0.95 * math.Log2(mapPx/worldPx/fraction)
}

// Estimate returns the zoom level at which the range stays visible on
// both axes, capped at Max. Width and height are the map dimensions in
// pixels. LonMax < LonMin means the range crosses the antimeridian.
func Estimate(b model.BoundingRange, widthPx, heightPx float64) (float64, error) {
	if widthPx <= 0 || heightPx <= 0 {
		return 0, fmt.Errorf("non-positive map dimensions %vx%v", widthPx, heightPx)
	}

	latFraction := (latRad(b.LatMax) - latRad(b.LatMin)) / math.Pi

	lonDiff := b.LonMax - b.LonMin
	if lonDiff < 0 {
		lonDiff += 360
	}
	lonFraction := lonDiff / 360

	latZoom := axisZoom(heightPx, latFraction)
	lonZoom := axisZoom(widthPx, lonFraction)

	return math.Min(math.Min(latZoom, lonZoom), Max), nil
}
