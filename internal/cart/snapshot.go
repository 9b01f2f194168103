// Package cart holds the cart synchronizer: the piece that coordinates the
// commerce backend, the per-user session record, and a single-slot snapshot
// cache behind a small set of serialized cart operations.
package cart

import (
	"github.com/shopspring/decimal"
)

// Snapshot is the authoritative state of one cart as last reported by the
// backend. Snapshots are replaced wholesale after every successful mutation,
// never patched locally.
type Snapshot struct {
	ID          string          `json:"id"`
	CheckoutURL string          `json:"checkout_url"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Total       decimal.Decimal `json:"total"`
	Discount    decimal.Decimal `json:"discount"`
	AppliedCode string          `json:"applied_code,omitempty"`
	Lines       []LineItem      `json:"lines"`
}

// LineItem is one product line within a cart. Line order is
// backend-determined and preserved as received.
type LineItem struct {
	LineID    string          `json:"line_id"`
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Title     string          `json:"title"`
	Image     string          `json:"image,omitempty"`
	Category  string          `json:"category,omitempty"`
	Brand     string          `json:"brand,omitempty"`
}

// HasVariant reports whether any line already carries the given variant.
func (s *Snapshot) HasVariant(variantID string) bool {
	if s == nil {
		return false
	}
	for _, line := range s.Lines {
		if line.VariantID == variantID {
			return true
		}
	}
	return false
}

// HasLine reports whether the cart contains the given cart line.
func (s *Snapshot) HasLine(lineID string) bool {
	if s == nil {
		return false
	}
	for _, line := range s.Lines {
		if line.LineID == lineID {
			return true
		}
	}
	return false
}
