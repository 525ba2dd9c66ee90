// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/pollbox/pollbox/auth"
	"github.com/pollbox/pollbox/middleware"
	"github.com/pollbox/pollbox/supabase"
)

// setCookies forwards session-refresh cookies from the auth provider.
// Must be called before the response status is written; callers invoke it
// immediately after principal resolution, on success and failure alike.
func setCookies(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, c := range cookies {
		http.SetCookie(w, c)
	}
}

// writeAuthError maps resolver failures to 401. An absent session and a
// provider failure both refuse the request, but the provider detail is
// kept so the cases stay distinguishable.
func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrUnauthorized) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	middleware.BackendErrorResponse(w, http.StatusUnauthorized, "Auth error", "", err.Error())
}

// writeBackendError passes a backend error through at the given status,
// preserving its message and PostgreSQL error code. Non-backend errors
// get the fallback message.
func writeBackendError(w http.ResponseWriter, status int, fallback string, err error) {
	var apiErr *supabase.APIError
	if errors.As(err, &apiErr) {
		middleware.BackendErrorResponse(w, status, apiErr.Message, apiErr.Code, apiErr.Details)
		return
	}
	middleware.ErrorResponse(w, status, fallback)
}

// writeLookupError maps a failed read: backend-reported errors pass
// through as 400, anything else (transport, decoding) is a 500.
func writeLookupError(w http.ResponseWriter, err error) {
	var apiErr *supabase.APIError
	if errors.As(err, &apiErr) {
		middleware.BackendErrorResponse(w, http.StatusBadRequest, apiErr.Message, apiErr.Code, apiErr.Details)
		return
	}
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Backend error")
}

// parseClosesAt converts a validated closesAt string to a timestamp.
// Validation has already checked the format; a nil input stays nil.
func parseClosesAt(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	return &t
}
