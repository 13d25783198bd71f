package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adforge/pkg/request"
	"adforge/pkg/tracker"
)

type memCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemCache() *memCache { return &memCache{m: make(map[string][]byte)} }

func (c *memCache) GetCache(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *memCache) SetCache(ctx context.Context, key string, val []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = val
	return nil
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	rc := request.New(newMemCache(), tracker.New(), 5*time.Second, 1)
	return New(srv.URL, rc), srv
}

const watchJSON = `{
	"id": "1YMWWN1N4O",
	"name": "Gold Watch",
	"description": "A gold-tone watch.",
	"picture": "/static/img/products/watch.jpg",
	"price_usd": {"currency_code": "USD", "units": 109, "nanos": 990000000},
	"categories": ["accessories"]
}`

func TestGetProduct(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/1YMWWN1N4O", r.URL.Path)
		w.Write([]byte(watchJSON))
	}))

	p, err := c.GetProduct(context.Background(), "1YMWWN1N4O")
	require.NoError(t, err)
	assert.Equal(t, "Gold Watch", p.Name)
	assert.Equal(t, "/static/img/products/watch.jpg", p.Picture)
	assert.Equal(t, int64(109), p.Price.Units)
	assert.Equal(t, []string{"accessories"}, p.Categories)
}

func TestGetProduct_NotFound(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := c.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetProduct_ServerErrorIsNotNotFound(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.GetProduct(context.Background(), "P1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGetProduct_BadJSON(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))

	_, err := c.GetProduct(context.Background(), "P1")
	assert.Error(t, err)
}

func TestSearchProducts(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "watch", r.URL.Query().Get("q"))
		w.Write([]byte(`{"products": [` + watchJSON + `]}`))
	}))

	products, err := c.SearchProducts(context.Background(), "watch")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Gold Watch", products[0].Name)
}

func TestListProducts_Empty(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products": []}`))
	}))

	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}
