// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Pollbox API server.

Pollbox is a stateless HTTP/JSON API for a polling application. All
persistence, authentication, and row-level authorization live in a hosted
Supabase-style backend (PostgREST table CRUD plus a GoTrue-style auth
endpoint). This service validates requests, resolves the authenticated
principal, sequences the dependent writes, and maps backend errors to a
uniform JSON envelope.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	SUPABASE_URL=https://xyz.supabase.co SUPABASE_ANON_KEY=... go run main.go

Or with flags:

	go run main.go -p 3318 -u "https://xyz.supabase.co" -k "anon-key"

A .env file in the working directory is loaded if present.

# Configuration

Required settings:

  - SUPABASE_URL (-u): Base URL of the hosted backend
  - SUPABASE_ANON_KEY (-k): Public anon API key

Optional settings:

  - PORT (-p): Server port (default: 3318)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (polls, voting)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - validate: Request validation and option normalization
  - auth: Principal resolution against the identity provider
  - supabase: Typed client for the hosted backend
  - cliparse: Configuration parsing

See package documentation for each component. The external database
contract (tables, row-level security, triggers) is documented in
schema.sql; it is owned by the backend, not this service.
*/
package main
