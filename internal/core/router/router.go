// Package router parses and validates layer requests and hands them
// to the layer handler.
package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/config"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/model"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/observability"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/layer"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/reduce"
)

const maxBodyBytes = 64 << 20

// LayerRequest is the wire format of POST /hexbin.
type LayerRequest struct {
	Lat        []float64       `json:"lat"`
	Lon        []float64       `json:"lon"`
	Color      []float64       `json:"color,omitempty"`
	Frame      []string        `json:"frame,omitempty"`
	GridSize   int             `json:"gridsize,omitempty"`
	Agg        string          `json:"agg,omitempty"`
	Percentile *float64        `json:"percentile,omitempty"`
	ColorRange *[2]float64     `json:"range_color,omitempty"`
	Zoom       *float64        `json:"zoom,omitempty"`
	Center     *model.GeoPoint `json:"center,omitempty"`
	Width      int             `json:"width,omitempty"`
	Height     int             `json:"height,omitempty"`
}

// Options resolves the request into layer build options.
func (r LayerRequest) Options(defaultGridSize int) (layer.Options, error) {
	agg, err := resolveAgg(r.Agg, r.Percentile)
	if err != nil {
		return layer.Options{}, err
	}
	gridSize := r.GridSize
	if gridSize == 0 {
		gridSize = defaultGridSize
	}
	return layer.Options{
		Lat:        r.Lat,
		Lon:        r.Lon,
		Color:      r.Color,
		Frames:     r.Frame,
		GridSize:   gridSize,
		Agg:        agg,
		ColorRange: r.ColorRange,
		Zoom:       r.Zoom,
		Center:     r.Center,
		Width:      r.Width,
		Height:     r.Height,
	}, nil
}

func resolveAgg(name string, percentile *float64) (reduce.Interface, error) {
	if name == "percentile" {
		if percentile == nil {
			return nil, errors.New(`agg "percentile" requires the percentile field`)
		}
		return reduce.Percentile(*percentile)
	}
	if percentile != nil && name != "" {
		return nil, fmt.Errorf("percentile field set but agg is %q", name)
	}
	if percentile != nil {
		return reduce.Percentile(*percentile)
	}
	return reduce.ByName(name)
}

// LayerHandler receives the parsed request plus the raw body (the
// cache key input) and writes the response.
type LayerHandler interface {
	HandleLayer(ctx context.Context, w http.ResponseWriter, body []byte, req LayerRequest)
}

// HandleLayer validates input and calls the handler.
func HandleLayer(log *zerolog.Logger, cfg config.Config, h LayerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		body, req, err := ParseLayerRequest(r, cfg)
		if err != nil {
			log.Warn().Err(err).Msg("bad layer request")
			http.Error(sw, err.Error(), http.StatusBadRequest)
			observability.ObserveHTTP(r.Method, "/hexbin", http.StatusBadRequest, time.Since(start).Seconds())
			return
		}

		h.HandleLayer(r.Context(), sw, body, req)
		observability.ObserveHTTP(r.Method, "/hexbin", sw.code, time.Since(start).Seconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// ParseLayerRequest reads and structurally validates the body. Deeper
// numeric validation happens in the binning core.
func ParseLayerRequest(r *http.Request, cfg config.Config) ([]byte, LayerRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, LayerRequest{}, fmt.Errorf("read body: %w", err)
	}

	var req LayerRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, LayerRequest{}, fmt.Errorf("parse body: %w", err)
	}

	if len(req.Lat) == 0 || len(req.Lon) == 0 {
		return nil, LayerRequest{}, errors.New("lat and lon are required")
	}
	if len(req.Lat) != len(req.Lon) {
		return nil, LayerRequest{}, fmt.Errorf("lat has %d entries, lon has %d", len(req.Lat), len(req.Lon))
	}
	if cfg.MaxPoints > 0 && len(req.Lat) > cfg.MaxPoints {
		return nil, LayerRequest{}, fmt.Errorf("%d points exceeds limit %d", len(req.Lat), cfg.MaxPoints)
	}
	if req.Color != nil && len(req.Color) != len(req.Lat) {
		return nil, LayerRequest{}, fmt.Errorf("color has %d entries for %d points", len(req.Color), len(req.Lat))
	}
	if req.Frame != nil && len(req.Frame) != len(req.Lat) {
		return nil, LayerRequest{}, fmt.Errorf("frame has %d entries for %d points", len(req.Frame), len(req.Lat))
	}
	if req.GridSize < 0 {
		return nil, LayerRequest{}, fmt.Errorf("gridsize %d must not be negative", req.GridSize)
	}
	if _, err := resolveAgg(req.Agg, req.Percentile); err != nil {
		return nil, LayerRequest{}, err
	}
	return body, req, nil
}
