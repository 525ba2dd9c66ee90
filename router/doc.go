// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes for the Pollbox API.

Routes use Go 1.22+ method and path-parameter patterns on the standard
ServeMux:

	POST   /polls
	PUT    /polls/{id}
	DELETE /polls/{id}
	POST   /polls/{id}/vote
	GET    /polls
	GET    /polls/{id}
	GET    /health
	GET    /

All handlers are wrapped in request logging, and the whole mux in CORS.
NewRouter wires the handlers with the backend client and config.
*/
package router
