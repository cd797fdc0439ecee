// Package app implements the layer handler: cache lookup, layer
// computation, response encoding.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/cache"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/cache/keys"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/config"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/model"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/observability"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/router"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/hexbin"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/layer"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/logger"
)

// LayerResponse is the wire format of a computed layer.
type LayerResponse struct {
	GeoJSON    *geojson.FeatureCollection `json:"geojson"`
	Rows       []model.Row                `json:"rows"`
	Zoom       float64                    `json:"zoom"`
	Center     model.GeoPoint             `json:"center"`
	ColorRange [2]float64                 `json:"color_range"`
}

type Handler struct {
	Log   *zerolog.Logger
	Cfg   config.Config
	Cache cache.Interface // nil disables caching
}

var _ router.LayerHandler = (*Handler)(nil)

func New(log *zerolog.Logger, cfg config.Config, c cache.Interface) *Handler {
	return &Handler{Log: log, Cfg: cfg, Cache: c}
}

func (h *Handler) HandleLayer(ctx context.Context, w http.ResponseWriter, body []byte, req router.LayerRequest) {
	log := logger.FromContext(ctx, h.Log)

	key := keys.Key(body)
	if payload, ok := h.cacheGet(ctx, key); ok {
		log.Debug().Str("key", key).Msg("layer served from cache")
		writeJSON(w, payload)
		return
	}

	opts, err := req.Options(h.Cfg.DefaultGridSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	l, err := layer.Build(opts)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, hexbin.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, hexbin.ErrDegenerateLattice):
			status = http.StatusUnprocessableEntity
		}
		log.Warn().Err(err).Int("status", status).Msg("layer build failed")
		http.Error(w, err.Error(), status)
		return
	}
	observability.ObserveLayerCompute(len(opts.Lat), len(l.GeoJSON.Features), time.Since(start).Seconds())

	payload, err := json.Marshal(LayerResponse{
		GeoJSON:    l.GeoJSON,
		Rows:       l.Rows,
		Zoom:       l.Zoom,
		Center:     l.Center,
		ColorRange: l.ColorRange,
	})
	if err != nil {
		log.Error().Err(err).Msg("encode layer")
		http.Error(w, "encode layer", http.StatusInternalServerError)
		return
	}

	h.cacheSet(ctx, key, payload)
	log.Debug().
		Int("points", len(opts.Lat)).
		Int("regions", len(l.GeoJSON.Features)).
		Int("rows", len(l.Rows)).
		Dur("took", time.Since(start)).
		Msg("layer computed")
	writeJSON(w, payload)
}

// cacheGet is best effort: a cache failure degrades to recompute.
func (h *Handler) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if h.Cache == nil {
		return nil, false
	}
	opCtx, cancel := context.WithTimeout(ctx, h.Cfg.CacheOpTimeout)
	defer cancel()
	v, ok, err := h.Cache.Get(opCtx, key)
	if err != nil {
		h.Log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return nil, false
	}
	return v, ok
}

func (h *Handler) cacheSet(ctx context.Context, key string, payload []byte) {
	if h.Cache == nil {
		return
	}
	opCtx, cancel := context.WithTimeout(ctx, h.Cfg.CacheOpTimeout)
	defer cancel()
	if err := h.Cache.Set(opCtx, key, payload); err != nil {
		h.Log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func writeJSON(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}
