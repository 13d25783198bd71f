// Package catalog is the client for the product catalog collaborator.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"adforge/pkg/model"
	"adforge/pkg/request"
)

// ErrNotFound is returned when the catalog has no product with the given id.
var ErrNotFound = errors.New("product not found")

// Client talks to the product catalog service.
type Client struct {
	baseURL string
	rc      *request.Client
}

// New creates a catalog client for the given base URL.
func New(baseURL string, rc *request.Client) *Client {
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), rc: rc}
}

// GetProduct fetches a single product by id. The result is never cached:
// a job must snapshot the catalog state at submission time.
func (c *Client) GetProduct(ctx context.Context, id string) (*model.ProductSnapshot, error) {
	body, err := c.rc.Get(ctx, c.baseURL+"/products/"+url.PathEscape(id), "")
	if err != nil {
		var se *request.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("catalog lookup failed for %s: %w", id, err)
	}

	var p model.ProductSnapshot
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to parse product %s: %w", id, err)
	}
	return &p, nil
}

// SearchProducts returns products matching the query.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]model.ProductSnapshot, error) {
	u := c.baseURL + "/products?q=" + url.QueryEscape(query)
	return c.listFrom(ctx, u)
}

// ListProducts returns the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]model.ProductSnapshot, error) {
	return c.listFrom(ctx, c.baseURL+"/products")
}

func (c *Client) listFrom(ctx context.Context, u string) ([]model.ProductSnapshot, error) {
	body, err := c.rc.Get(ctx, u, "")
	if err != nil {
		return nil, fmt.Errorf("catalog listing failed: %w", err)
	}

	var resp struct {
		Products []model.ProductSnapshot `json:"products"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse product list: %w", err)
	}
	return resp.Products, nil
}
