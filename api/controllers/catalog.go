package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alexriley/storefront-sync/api/responses"
	"github.com/alexriley/storefront-sync/internal/catalog"
	pkgerrors "github.com/alexriley/storefront-sync/pkg/errors"
	"github.com/alexriley/storefront-sync/pkg/logger"
)

const (
	defaultProductPageSize = 20
	maxProductPageSize     = 100
)

// CatalogList serves one page of products. Supports ?limit, ?cursor and
// ?search query parameters.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultProductPageSize
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			if parsed > maxProductPageSize {
				parsed = maxProductPageSize
			}
			limit = parsed
		}

		page, err := svc.ListProducts(r.Context(), limit, r.URL.Query().Get("cursor"), r.URL.Query().Get("search"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// CatalogGet serves one product by id.
func CatalogGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productID")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
