package cart

import (
	"context"

	"github.com/alexriley/storefront-sync/internal/session"
	"github.com/alexriley/storefront-sync/pkg/auth"
)

// Gateway is the slice of the commerce backend the synchronizer needs.
// Every call is one round trip returning the full resulting snapshot.
type Gateway interface {
	FetchCart(ctx context.Context, token, cartID string) (*Snapshot, error)
	CreateCart(ctx context.Context, token, email string) (*Snapshot, error)
	AddLine(ctx context.Context, token, cartID, variantID string, quantity int) (*Snapshot, error)
	RemoveLine(ctx context.Context, token, cartID, lineID string) (*Snapshot, error)
	UpdateLineQuantity(ctx context.Context, token, cartID, lineID string, quantity int) (*Snapshot, error)
	ApplyDiscountCode(ctx context.Context, token, cartID, code string) (*Snapshot, error)
}

// SessionProvider answers login and record questions for an identity.
type SessionProvider interface {
	IsLoggedIn(id auth.Identity) bool
	IsVerified(id auth.Identity) bool
	Email(id auth.Identity) string
	Record(ctx context.Context, id auth.Identity) (session.Record, error)
	SaveRecord(ctx context.Context, id auth.Identity, record session.Record) error
}
