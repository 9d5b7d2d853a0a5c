package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/platform/httpclient"
	"fleet-route-tracker/internal/platform/obs"
	"fleet-route-tracker/internal/ports"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ORSClient implements RouteOptimizer against the OpenRouteService directions API.
//
// The client is safe for concurrent use.
type ORSClient struct {
	client  *httpclient.Client
	baseURL string
	profile string
}

func NewORSClient(apiKey, baseURL, profile string) (*ORSClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}
	if profile == "" {
		profile = "driving-car"
	}

	return &ORSClient{
		client:    httpclient.New(apiKey, "application/json, application/geo+json"),
		baseURL:   strings.TrimRight(baseURL, "/"),
		profile:   profile,
	}, nil
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

func (o *ORSClient) FetchOptimizedRoute(
	ctx context.Context,
	waypoints []domain.Coordinates,
) (_ *ports.OptimizedRoute, err error) {
	defer obs.Time(ctx, "ors.FetchOptimizedRoute")(&err)

	points := dedupeWaypoints(waypoints)
	if len(points) < 2 {
		return nil, nil
	}

	reqBody := directionsRequest{Coordinates: make([][]float64, 0, len(points))}
	for _, p := range points {
		reqBody.Coordinates = append(reqBody.Coordinates, p.CoordsToList())
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)
	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		return o.client.NewRequest(ctx, http.MethodPost, url, bytes.NewReader(b))
	})
	if err != nil {
		return nil, fmt.Errorf("ORS directions request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read directions response: %w", err)
	}

	return parseFeatureCollection(body), nil
}
