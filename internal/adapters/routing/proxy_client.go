package routing

import (
	"context"
	"errors"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/platform/httpclient"
	"fleet-route-tracker/internal/platform/obs"
	"fleet-route-tracker/internal/ports"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ProxyClient fetches routes through the fleet backend's directions proxy,
// which forwards to the route service and relays its GeoJSON unchanged.
type ProxyClient struct {
	client  *httpclient.Client
	baseURL string
}

func NewProxyClient(baseURL string) (*ProxyClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("route proxy url is empty")
	}

	return &ProxyClient{
		client:    httpclient.New("", "application/json, application/geo+json"),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}, nil
}

func (p *ProxyClient) FetchOptimizedRoute(
	ctx context.Context,
	waypoints []domain.Coordinates,
) (_ *ports.OptimizedRoute, err error) {
	defer obs.Time(ctx, "proxy.FetchOptimizedRoute")(&err)

	points := dedupeWaypoints(waypoints)
	if len(points) < 2 {
		return nil, nil
	}

	u := p.baseURL + "/api/routes/optimized?coords=" + url.QueryEscape(domain.EncodeCoords(points))
	resp, err := p.client.DoWithRetry(ctx, func() (*http.Request, error) {
		return p.client.NewRequest(ctx, http.MethodGet, u, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("route proxy request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read route proxy response: %w", err)
	}

	return parseFeatureCollection(body), nil
}
