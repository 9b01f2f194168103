package session

import (
	"context"
	"errors"

	"github.com/alexriley/storefront-sync/pkg/auth"
)

// Provider answers session questions for a verified identity: whether the
// caller is signed in and verified, and what their stored record holds.
type Provider struct {
	store Store
}

func NewProvider(store Store) (*Provider, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	return &Provider{store: store}, nil
}

// IsLoggedIn reports whether the identity belongs to a signed-in user.
func (p *Provider) IsLoggedIn(id auth.Identity) bool {
	return id.LoggedIn()
}

// IsVerified reports whether the signed-in user confirmed their email.
func (p *Provider) IsVerified(id auth.Identity) bool {
	return id.LoggedIn() && id.EmailVerified
}

// Email returns the identity's email address, empty for anonymous callers.
func (p *Provider) Email(id auth.Identity) string {
	return id.Email
}

// Record loads the stored session record. A user with no record yet gets a
// zero record, not an error.
func (p *Provider) Record(ctx context.Context, id auth.Identity) (Record, error) {
	if !id.LoggedIn() {
		return Record{}, nil
	}
	record, err := p.store.Load(ctx, id.UID)
	if errors.Is(err, ErrNotFound) {
		return Record{AccessToken: id.BackendToken}, nil
	}
	if err != nil {
		return Record{}, err
	}
	if record.AccessToken == "" {
		record.AccessToken = id.BackendToken
	}
	return record, nil
}

// SaveRecord persists the record for the identity's user.
func (p *Provider) SaveRecord(ctx context.Context, id auth.Identity, record Record) error {
	if !id.LoggedIn() {
		return errors.New("cannot save session record for anonymous user")
	}
	return p.store.Save(ctx, id.UID, record)
}

// ClearRecord drops the stored record entirely.
func (p *Provider) ClearRecord(ctx context.Context, id auth.Identity) error {
	if !id.LoggedIn() {
		return nil
	}
	return p.store.Clear(ctx, id.UID)
}
