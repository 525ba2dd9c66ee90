// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pollbox/pollbox/supabase"
)

var (
	// ErrUnauthorized means no principal could be resolved: the request
	// carried no credentials, or the provider rejected them.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrProvider means the identity provider itself failed. Distinct from
	// an absent session: the caller's credentials were never evaluated.
	ErrProvider = errors.New("identity provider error")
)

// Principal is the authenticated identity resolved for a request.
type Principal struct {
	ID    string
	Email string
}

// Resolver resolves request credentials to a Principal via the backend's
// auth endpoint. It fails closed: any doubt resolves to an error.
type Resolver struct {
	client *supabase.Client
}

func NewResolver(client *supabase.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve authenticates the request: bearer token first, session cookies
// as fallback. The returned cookies are session refreshes from the
// provider and must be set on the response on every path, including
// failures.
func (r *Resolver) Resolve(ctx context.Context, ra supabase.RequestAuth) (*Principal, []*http.Cookie, error) {
	user, refreshed, err := r.client.GetUser(ctx, ra)
	if err != nil {
		if errors.Is(err, supabase.ErrNoSession) {
			return nil, refreshed, ErrUnauthorized
		}
		return nil, refreshed, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	return &Principal{ID: user.ID, Email: user.Email}, refreshed, nil
}
