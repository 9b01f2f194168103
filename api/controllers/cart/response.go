package cart

import (
	cartcore "github.com/alexriley/storefront-sync/internal/cart"
)

// CartPayload is the envelope every cart operation responds with.
type CartPayload struct {
	Cart    *cartcore.Snapshot `json:"cart"`
	Warning string             `json:"warning,omitempty"`
}

func newCartPayload(result cartcore.Result) CartPayload {
	return CartPayload{Cart: result.Snapshot, Warning: result.Warning}
}
