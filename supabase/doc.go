// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package supabase is a typed HTTP client for the hosted backend: PostgREST
table CRUD under /rest/v1 and a GoTrue-style auth endpoint under /auth/v1.

# Construction

The client is built once from an explicit Config:

	client := supabase.New(supabase.Config{BaseURL: url, AnonKey: key})

There is no module-level singleton. Credentials for a given request travel
in a RequestAuth value extracted from the incoming request:

	ra := supabase.AuthFromRequest(r)

# Table CRUD

	err := client.Insert(ctx, ra, supabase.TablePolls, row, &created)
	err := client.Select(ctx, ra, supabase.TablePolls, "id, title", filters, "created_at.desc", &rows)
	err := client.Update(ctx, ra, supabase.TablePolls, patch, filters)
	err := client.Delete(ctx, ra, supabase.TablePolls, filters)

Filters are equality predicates built with supabase.Eq(column, value).
Row-level security is evaluated by the backend using the caller's access
token; anonymous requests use the anon key.

# Errors

Non-2xx responses decode into *APIError, which preserves the backend's
HTTP status, message, and PostgreSQL error code for pass-through to API
clients. GetUser returns ErrNoSession when credentials are absent or
rejected, distinct from provider/transport failures.

# Session Refresh

GetUser returns any Set-Cookie headers the auth provider produced while
touching the session. Handlers forward these on every response, success
or failure.
*/
package supabase
