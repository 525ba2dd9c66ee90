// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth resolves request credentials to an authenticated principal.

# Resolution

The Resolver calls the backend's auth endpoint with whatever credentials
the request carried:

	ra := supabase.AuthFromRequest(r)
	principal, cookies, err := resolver.Resolve(r.Context(), ra)

A Bearer Authorization header takes precedence; the session cookie is the
fallback. Resolution fails closed.

# Error Taxonomy

  - ErrUnauthorized: no credentials, or the provider rejected them.
    Maps to 401 "Unauthorized".
  - ErrProvider (wrapped): the provider itself failed before evaluating
    the credentials. Also 401, but with the provider detail attached so
    the two cases stay distinguishable in logs and error bodies.

# Session Refresh

Resolve returns any refreshed session cookies the provider produced.
Handlers set them on the response whether resolution succeeded or not.
*/
package auth
