package cart

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alexriley/storefront-sync/api/middleware"
	"github.com/alexriley/storefront-sync/api/responses"
	"github.com/alexriley/storefront-sync/api/validators"
	cartcore "github.com/alexriley/storefront-sync/internal/cart"
	pkgerrors "github.com/alexriley/storefront-sync/pkg/errors"
	"github.com/alexriley/storefront-sync/pkg/logger"
)

// Fetch returns the caller's current cart, establishing one remotely when
// the cache is cold.
func Fetch(manager *cartcore.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middleware.IdentityFromContext(r.Context())
		result, err := manager.For(id.UID).GetCart(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartPayload(result))
	}
}

// Stream serves the cart as a server-sent event sequence: a pending event,
// then exactly one ready or failed event, then the stream closes.
func Stream(manager *cartcore.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		id := middleware.IdentityFromContext(r.Context())
		for o := range manager.For(id.UID).WatchCart(r.Context(), id) {
			switch {
			case !o.Terminal():
				writeEvent(w, "pending", map[string]string{"state": "pending"})
			case o.Err != nil:
				typed := pkgerrors.As(o.Err)
				message := o.Err.Error()
				if typed != nil {
					message = typed.Message()
				}
				writeEvent(w, "failed", map[string]string{"message": message})
			default:
				writeEvent(w, "ready", newCartPayload(o.Data))
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

// AddItem adds a variant to the cart.
func AddItem(manager *cartcore.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id := middleware.IdentityFromContext(r.Context())
		result, err := manager.For(id.UID).AddItem(r.Context(), id, payload.VariantID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartPayload(result))
	}
}

// ChangeQuantity sets the quantity on a cart line.
func ChangeQuantity(manager *cartcore.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID := chi.URLParam(r, "lineID")
		if lineID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line id is required"))
			return
		}

		var payload ChangeQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id := middleware.IdentityFromContext(r.Context())
		result, err := manager.For(id.UID).ChangeQuantity(r.Context(), id, lineID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartPayload(result))
	}
}

// RemoveItem removes a line from the cart.
func RemoveItem(manager *cartcore.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID := chi.URLParam(r, "lineID")
		if lineID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line id is required"))
			return
		}

		id := middleware.IdentityFromContext(r.Context())
		result, err := manager.For(id.UID).RemoveItem(r.Context(), id, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartPayload(result))
	}
}

// ApplyDiscount attaches a discount code to the cart.
func ApplyDiscount(manager *cartcore.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload ApplyDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id := middleware.IdentityFromContext(r.Context())
		result, err := manager.For(id.UID).ApplyDiscount(r.Context(), id, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartPayload(result))
	}
}

// Clear empties the local snapshot cache. The remote cart is untouched.
func Clear(manager *cartcore.Manager, _ *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middleware.IdentityFromContext(r.Context())
		manager.For(id.UID).ClearLocalCart()
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}

// Forget blanks the stored cart id so the next session starts with a fresh
// cart.
func Forget(manager *cartcore.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middleware.IdentityFromContext(r.Context())
		if err := manager.For(id.UID).ForgetCart(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"forgotten": true})
	}
}

// CompleteCheckout runs the order-completion hook: forget the stored cart id
// and drop the local cache, in that order.
func CompleteCheckout(manager *cartcore.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middleware.IdentityFromContext(r.Context())
		syncer := manager.For(id.UID)
		if err := syncer.ForgetCart(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		syncer.ClearLocalCart()
		responses.WriteSuccess(w, map[string]bool{"completed": true})
	}
}
