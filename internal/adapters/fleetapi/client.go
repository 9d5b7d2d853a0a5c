package fleetapi

import (
	"context"
	"encoding/json"
	"errors"
	"fleet-route-tracker/internal/adapters/repositories"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/platform/httpclient"
	"fleet-route-tracker/internal/platform/obs"
	"fleet-route-tracker/internal/ports"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Client implements FleetStore against the fleet admin backend's REST API.
//
// The client is safe for concurrent use.
type Client struct {
	client  *httpclient.Client
	baseURL string
}

func NewClient(baseURL string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("fleet api url is empty")
	}

	return &Client{
		client:  httpclient.New("", "application/json"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Fetch all four collections concurrently.
func (c *Client) Snapshot(ctx context.Context) (_ *domain.Snapshot, err error) {
	defer obs.Time(ctx, "fleet.api.Snapshot")(&err)

	// The backend serializes entities with the seed file's field names.
	var seed repositories.FleetSeed

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.getJSON(gctx, "/api/agents", &seed.Agents) })
	g.Go(func() error { return c.getJSON(gctx, "/api/orders", &seed.Orders) })
	g.Go(func() error { return c.getJSON(gctx, "/api/customers", &seed.Customers) })
	g.Go(func() error { return c.getJSON(gctx, "/api/warehouses", &seed.Warehouses) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return seed.Snapshot(), nil
}

func (c *Client) MarkPickedUp(ctx context.Context, orderID int64) (err error) {
	defer obs.Time(ctx, "fleet.api.MarkPickedUp")(&err)
	return c.put(ctx, fmt.Sprintf("/api/orders/%d/pickup", orderID))
}

func (c *Client) MarkDelivered(ctx context.Context, orderID int64) (err error) {
	defer obs.Time(ctx, "fleet.api.MarkDelivered")(&err)
	return c.put(ctx, fmt.Sprintf("/api/orders/%d/delivered", orderID))
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.client.DoWithRetry(ctx, func() (*http.Request, error) {
		return c.client.NewRequest(ctx, http.MethodGet, c.baseURL+path, nil)
	})
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("get %s: decode response: %w", path, err)
	}
	return nil
}

// Status transitions are idempotent on the backend, so PUTs are retried too.
func (c *Client) put(ctx context.Context, path string) error {
	resp, err := c.client.DoWithRetry(ctx, func() (*http.Request, error) {
		return c.client.NewRequest(ctx, http.MethodPut, c.baseURL+path, nil)
	})
	if err != nil {
		if httpclient.IsStatus(err, http.StatusNotFound) {
			return fmt.Errorf("put %s: %w", path, ports.ErrOrderNotFound)
		}
		return fmt.Errorf("put %s: %w", path, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return nil
}
