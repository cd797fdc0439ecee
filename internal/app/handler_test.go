package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/cache"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/config"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/router"
)

type fakeCache struct {
	mu     sync.Mutex
	m      map[string][]byte
	gets   int
	hits   int
	sets   int
	broken bool
}

func newFakeCache() *fakeCache { return &fakeCache{m: make(map[string][]byte)} }

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.broken {
		return nil, false, io.ErrUnexpectedEOF
	}
	v, ok := f.m[key]
	if ok {
		f.hits++
	}
	return v, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, val []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.broken {
		return io.ErrUnexpectedEOF
	}
	f.m[key] = val
	return nil
}

var _ cache.Interface = (*fakeCache)(nil)

func testHandler(c cache.Interface) *Handler {
	log := zerolog.New(io.Discard)
	cfg := config.Config{DefaultGridSize: 3, CacheOpTimeout: 250 * time.Millisecond}
	return New(&log, cfg, c)
}

const goodBody = `{"lat":[10.1,10.5,11.2,11.8,10.9,11.4],"lon":[10.2,11.7,10.6,11.1,11.9,10.3]}`

func serve(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	httpReq := httptest.NewRequest(http.MethodPost, "/hexbin", strings.NewReader(body))
	_, req, err := router.ParseLayerRequest(httpReq, h.Cfg)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rr := httptest.NewRecorder()
	h.HandleLayer(context.Background(), rr, []byte(body), req)
	return rr
}

func TestHandleLayer_ComputesLayer(t *testing.T) {
	h := testHandler(nil)
	rr := serve(t, h, goodBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}

	var resp LayerResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.GeoJSON == nil || len(resp.GeoJSON.Features) == 0 {
		t.Fatalf("expected geojson features")
	}
	if len(resp.Rows) == 0 {
		t.Fatalf("expected table rows")
	}
	if resp.Zoom <= 0 || resp.Zoom > 18 {
		t.Fatalf("zoom %v out of range", resp.Zoom)
	}
	if resp.ColorRange[0] > resp.ColorRange[1] {
		t.Fatalf("inverted color range %v", resp.ColorRange)
	}
}

func TestHandleLayer_SecondCallHitsCache(t *testing.T) {
	fc := newFakeCache()
	h := testHandler(fc)

	first := serve(t, h, goodBody)
	second := serve(t, h, goodBody)

	if fc.sets != 1 {
		t.Fatalf("expected one cache fill, got %d", fc.sets)
	}
	if fc.hits != 1 {
		t.Fatalf("expected one cache hit, got %d", fc.hits)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("cached response differs from computed one")
	}
}

func TestHandleLayer_CacheFailureDegradesToCompute(t *testing.T) {
	fc := newFakeCache()
	fc.broken = true
	h := testHandler(fc)

	rr := serve(t, h, goodBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d with broken cache: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleLayer_ErrorStatuses(t *testing.T) {
	h := testHandler(nil)

	// latitude 90 projects to infinity: invalid input
	rr := serve(t, h, `{"lat":[90,10],"lon":[5,6]}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("polar latitude: status %d, want 400", rr.Code)
	}

	// constant longitude collapses the lattice
	rr = serve(t, h, `{"lat":[10,10.5,11,11.5],"lon":[10,10,10,10]}`)
	if rr.Code != http.StatusBadRequest && rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("degenerate input: status %d, want 400 or 422", rr.Code)
	}
}
