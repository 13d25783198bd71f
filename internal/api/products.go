package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"adforge/pkg/model"
)

// ProductCatalog exposes the catalog collaborator to the search endpoint.
type ProductCatalog interface {
	SearchProducts(ctx context.Context, query string) ([]model.ProductSnapshot, error)
	ListProducts(ctx context.Context) ([]model.ProductSnapshot, error)
}

// ProductHandler handles catalog browse endpoints.
type ProductHandler struct {
	catalog ProductCatalog
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(c ProductCatalog) *ProductHandler {
	return &ProductHandler{catalog: c}
}

// ProductDTO is the frontend-facing product shape with a display price.
type ProductDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Categories  []string `json:"categories"`
	Picture     string   `json:"picture"`
}

// HandleSearch handles GET /api/products/search?q=
// An empty query lists the whole catalog.
func (h *ProductHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var (
		products []model.ProductSnapshot
		err      error
	)
	if query != "" {
		products, err = h.catalog.SearchProducts(r.Context(), query)
	} else {
		products, err = h.catalog.ListProducts(r.Context())
	}
	if err != nil {
		slog.Error("Product search failed", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to search products")
		return
	}

	formatted := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		formatted = append(formatted, ProductDTO{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       fmt.Sprintf("$%d.%02d", p.Price.Units, p.Price.Nanos),
			Categories:  p.Categories,
			Picture:     p.Picture,
		})
	}

	writeJSON(w, http.StatusOK, map[string][]ProductDTO{"products": formatted})
}
