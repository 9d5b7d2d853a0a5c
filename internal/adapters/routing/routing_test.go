package routing

import (
	"context"
	"encoding/json"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/ports"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const sampleFeatureCollection = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {"summary": {"distance": 12500.0, "duration": 1800.0}},
		"geometry": {"type": "LineString", "coordinates": [[77.59, 12.97], [77.60, 12.95], [77.61, 12.93]]}
	}]
}`

var (
	warehouse = domain.Coordinates{Lon: 77.59, Lat: 12.97}
	customer  = domain.Coordinates{Lon: 77.61, Lat: 12.93}
)

func newTestORSClient(t *testing.T, url string) *ORSClient {
	t.Helper()

	c, err := NewORSClient("test-key", url, "driving-car")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.client.Backoff = time.Millisecond
	return c
}

func TestORSClientFetchOptimizedRoute(t *testing.T) {
	var gotBody directionsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v2/directions/driving-car/geojson" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Errorf("Authorization = %q", got)
		}
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, sampleFeatureCollection)
	}))
	defer srv.Close()

	c := newTestORSClient(t, srv.URL)
	route, err := c.FetchOptimizedRoute(context.Background(), []domain.Coordinates{warehouse, customer, customer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gotBody.Coordinates) != 2 {
		t.Fatalf("expected duplicates removed, sent %v", gotBody.Coordinates)
	}
	if gotBody.Coordinates[0][0] != warehouse.Lon || gotBody.Coordinates[0][1] != warehouse.Lat {
		t.Fatalf("coordinates must be sent as [lon, lat], got %v", gotBody.Coordinates[0])
	}

	if route == nil {
		t.Fatalf("expected route")
	}
	if len(route.Coordinates) != 3 {
		t.Fatalf("expected 3 coordinates, got %d", len(route.Coordinates))
	}
	if route.Coordinates[1] != (domain.Coordinates{Lon: 77.60, Lat: 12.95}) {
		t.Fatalf("unexpected coordinate %+v", route.Coordinates[1])
	}
	if route.DistanceKm != 12.5 {
		t.Fatalf("DistanceKm = %v, want 12.5", route.DistanceKm)
	}
	if route.DurationMin != 30 {
		t.Fatalf("DurationMin = %v, want 30", route.DurationMin)
	}
}

func TestORSClientRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, sampleFeatureCollection)
	}))
	defer srv.Close()

	c := newTestORSClient(t, srv.URL)
	route, err := c.FetchOptimizedRoute(context.Background(), []domain.Coordinates{warehouse, customer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route == nil {
		t.Fatalf("expected route after retries")
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("calls = %d, want 3", n)
	}
}

func TestORSClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":"bad coordinates"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestORSClient(t, srv.URL)
	if _, err := c.FetchOptimizedRoute(context.Background(), []domain.Coordinates{warehouse, customer}); err == nil {
		t.Fatalf("expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls = %d, want 1", n)
	}
}

func TestORSClientNoRouteCases(t *testing.T) {
	bodies := map[string]string{
		"malformed":      `{"features": [`,
		"no features":    `{"type": "FeatureCollection", "features": []}`,
		"empty geometry": `{"features": [{"geometry": {"coordinates": []}}]}`,
	}

	for name, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		}))

		c := newTestORSClient(t, srv.URL)
		route, err := c.FetchOptimizedRoute(context.Background(), []domain.Coordinates{warehouse, customer})
		srv.Close()

		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
		}
		if route != nil {
			t.Errorf("%s: expected no route, got %+v", name, route)
		}
	}
}

func TestORSClientSkipsSinglePoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected for a single distinct point")
	}))
	defer srv.Close()

	c := newTestORSClient(t, srv.URL)
	route, err := c.FetchOptimizedRoute(context.Background(), []domain.Coordinates{warehouse, warehouse})
	if err != nil || route != nil {
		t.Fatalf("expected (nil, nil), got (%+v, %v)", route, err)
	}
}

func TestNewORSClientRequiresKey(t *testing.T) {
	if _, err := NewORSClient("  ", "", ""); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestProxyClientFetchOptimizedRoute(t *testing.T) {
	var gotCoords string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/routes/optimized" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotCoords = r.URL.Query().Get("coords")
		_, _ = io.WriteString(w, sampleFeatureCollection)
	}))
	defer srv.Close()

	c, err := NewProxyClient(srv.URL + "/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	route, err := c.FetchOptimizedRoute(context.Background(), []domain.Coordinates{warehouse, customer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCoords != "77.59,12.97;77.61,12.93" {
		t.Fatalf("coords = %q", gotCoords)
	}
	if route == nil || route.DistanceKm != 12.5 {
		t.Fatalf("unexpected route %+v", route)
	}
}

type memoryRouteCache struct {
	mu      sync.Mutex
	entries map[string]*ports.OptimizedRoute
	gets    int
}

func (m *memoryRouteCache) Get(ctx context.Context, key string) (*ports.OptimizedRoute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	return m.entries[key], nil
}

func (m *memoryRouteCache) Put(ctx context.Context, key string, route *ports.OptimizedRoute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = route
	return nil
}

func TestCachedOptimizer(t *testing.T) {
	mock := NewMockOptimizer()
	c := &memoryRouteCache{entries: map[string]*ports.OptimizedRoute{}}
	opt := NewCachedOptimizer(mock, c)
	ctx := context.Background()
	points := []domain.Coordinates{warehouse, customer}

	first, err := opt.FetchOptimizedRoute(ctx, points)
	if err != nil || first == nil {
		t.Fatalf("first fetch: (%+v, %v)", first, err)
	}
	second, err := opt.FetchOptimizedRoute(ctx, points)
	if err != nil || second == nil {
		t.Fatalf("second fetch: (%+v, %v)", second, err)
	}

	if n := len(mock.Calls()); n != 1 {
		t.Fatalf("optimizer calls = %d, want 1", n)
	}
	if c.gets != 2 {
		t.Fatalf("cache gets = %d, want 2", c.gets)
	}
}

func TestCachedOptimizerDoesNotCacheFailures(t *testing.T) {
	mock := NewMockOptimizer()
	mock.Fail(true)
	c := &memoryRouteCache{entries: map[string]*ports.OptimizedRoute{}}
	opt := NewCachedOptimizer(mock, c)

	if _, err := opt.FetchOptimizedRoute(context.Background(), []domain.Coordinates{warehouse, customer}); err == nil {
		t.Fatalf("expected error")
	}
	if len(c.entries) != 0 {
		t.Fatalf("failure must not be cached")
	}
}
