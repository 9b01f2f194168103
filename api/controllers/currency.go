package controllers

import (
	"net/http"

	"github.com/alexriley/storefront-sync/api/responses"
	"github.com/alexriley/storefront-sync/internal/currency"
	"github.com/alexriley/storefront-sync/pkg/logger"
)

// CurrencyRates serves the current exchange-rate table for the store base
// currency.
func CurrencyRates(svc currency.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rates, err := svc.Rates(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rates)
	}
}
