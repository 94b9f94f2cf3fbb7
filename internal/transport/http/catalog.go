package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/otti-labs/otti-workspace/internal/app"
	"github.com/otti-labs/otti-workspace/internal/domain"
)

// CatalogService is the minimal interface needed for product endpoints.
type CatalogService interface {
	List(ctx context.Context, tenantID string) ([]domain.Product, error)
	Create(ctx context.Context, tenantID string, in app.CreateProductInput) (domain.Product, error)
}

// HandleListProducts returns an HTTP handler listing a tenant's catalog.
func HandleListProducts(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")

		products, err := svc.List(r.Context(), tenantID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]productResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, toProductResponse(p))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleCreateProduct returns an HTTP handler for adding a catalog entry.
func HandleCreateProduct(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")

		var req createProductRequest
		if err := decodeBody(w, r, &req); err != nil {
			return
		}

		product, err := svc.Create(r.Context(), tenantID, app.CreateProductInput{
			Name:     req.Name,
			Category: req.Category,
			Price:    req.Price,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toProductResponse(product))
	}
}

type createProductRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

type productResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category,omitempty"`
	Active          bool    `json:"active"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:              p.ID,
		Name:            p.Name,
		Category:        p.Category,
		Active:          p.Active,
		Price:           p.Pricing.DefaultPrice,
		DurationMinutes: p.Pricing.DurationMinutes,
	}
}
