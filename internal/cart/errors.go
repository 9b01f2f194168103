package cart

import (
	pkgerrors "github.com/alexriley/storefront-sync/pkg/errors"
)

// Operation failures the synchronizer raises itself, before or instead of a
// backend call. Transport failures from the gateway pass through verbatim.
var (
	ErrNotLoggedIn      = pkgerrors.New(pkgerrors.CodeUnauthorized, "You are not logged in")
	ErrNotVerified      = pkgerrors.New(pkgerrors.CodeForbidden, "Your account is not Verified")
	ErrItemAlreadyAdded = pkgerrors.New(pkgerrors.CodeConflict, "The item already added")
	ErrNoItemFound      = pkgerrors.New(pkgerrors.CodeNotFound, "No item Found")
	ErrCartUnavailable  = pkgerrors.New(pkgerrors.CodeDependency, "Unable to obtain cart")
)
