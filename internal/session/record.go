// Package session persists the per-user session record: the buyer's backend
// access token and the ID of the cart the backend holds for them. The record
// is one small JSON document keyed by user ID.
package session

// Record is the durable per-user session state.
type Record struct {
	AccessToken string `json:"token"`
	CartID      string `json:"cart"`
}

// HasCart reports whether the record references a backend cart.
func (r Record) HasCart() bool {
	return r.CartID != ""
}
