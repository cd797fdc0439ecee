package hexbin

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/model"
)

// FeatureCollection packages bin boundaries as GeoJSON for a
// choropleth renderer: one Feature per bin with the region id as the
// feature id and a single-ring Polygon geometry in lon/lat order.
// Features appear in bin order so the output is deterministic.
func FeatureCollection(bins []model.Bin, geoms map[string]Geometry) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, b := range bins {
		g, ok := geoms[b.ID]
		if !ok {
			return nil, fmt.Errorf("no geometry for region %q", b.ID)
		}
		ring := make(orb.Ring, 0, len(g.Ring))
		for _, v := range g.Ring {
			ring = append(ring, orb.Point{v.Lon, v.Lat})
		}
		f := geojson.NewFeature(orb.Polygon{ring})
		f.ID = b.ID
		fc.Append(f)
	}
	return fc, nil
}
