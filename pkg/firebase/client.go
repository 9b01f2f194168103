package firebase

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/alexriley/storefront-sync/pkg/auth"
	"github.com/alexriley/storefront-sync/pkg/config"
)

// Client owns the Firebase Admin app and its auth surface.
type Client struct {
	app  *firebase.App
	auth *firebaseauth.Client
}

// New bootstraps the Firebase Admin SDK for the configured project.
func New(ctx context.Context, cfg config.FirebaseConfig) (*Client, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, fmt.Errorf("firebase project id is required")
	}

	var opts []option.ClientOption
	if cred := strings.TrimSpace(cfg.CredentialsFile); cred != "" {
		opts = append(opts, option.WithCredentialsFile(cred))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}

	return &Client{app: app, auth: authClient}, nil
}

// Verify checks the Firebase ID token and maps its claims to an identity.
func (c *Client) Verify(ctx context.Context, idToken string) (auth.Identity, error) {
	if c == nil || c.auth == nil {
		return auth.Identity{}, fmt.Errorf("firebase auth not initialized")
	}

	token, err := c.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("verify id token: %w", err)
	}

	uid := strings.TrimSpace(token.UID)
	if uid == "" {
		return auth.Identity{}, fmt.Errorf("id token has empty uid")
	}

	identity := auth.Identity{UID: uid}
	if raw, ok := token.Claims["email"]; ok {
		if email, ok := raw.(string); ok {
			identity.Email = strings.TrimSpace(email)
		}
	}
	if raw, ok := token.Claims["email_verified"]; ok {
		if verified, ok := raw.(bool); ok {
			identity.EmailVerified = verified
		}
	}
	return identity, nil
}
