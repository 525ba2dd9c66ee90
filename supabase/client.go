// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrNoSession is returned by GetUser when the backend rejects the
// credentials (or none were presented). Distinct from transport or
// provider failures, which come back as ordinary errors.
var ErrNoSession = errors.New("no authenticated session")

// Config holds the connection settings for the hosted backend. The client
// is constructed once from an explicit Config; per-request credentials
// travel in a RequestAuth value, never on the client itself.
type Config struct {
	BaseURL string
	AnonKey string
}

// Client talks to a Supabase-style backend: PostgREST table CRUD under
// /rest/v1 and a GoTrue-style auth endpoint under /auth/v1. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	cfg  Config
	HTTP *http.Client
}

func New(cfg Config) *Client {
	return &Client{cfg: cfg, HTTP: &http.Client{}}
}

// RequestAuth carries the caller's credentials for one request: a bearer
// token from the Authorization header, or session cookies minted by the
// auth provider. The zero value is an anonymous request.
type RequestAuth struct {
	BearerToken string
	Cookies     []*http.Cookie
}

// AuthFromRequest extracts the caller's credentials from an incoming
// request. A Bearer Authorization header wins; session cookies ride along
// either way so the auth provider can refresh them.
func AuthFromRequest(r *http.Request) RequestAuth {
	ra := RequestAuth{Cookies: r.Cookies()}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		ra.BearerToken = strings.TrimPrefix(h, "Bearer ")
	}
	return ra
}

// accessToken resolves the token used for row-level security evaluation:
// the explicit bearer token, else the access-token session cookie.
func (ra RequestAuth) accessToken() string {
	if ra.BearerToken != "" {
		return ra.BearerToken
	}
	for _, c := range ra.Cookies {
		if c.Name == SessionCookieName {
			return c.Value
		}
	}
	return ""
}

// User is the principal shape returned by the auth endpoint.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// APIError is a non-2xx response from the backend, carrying the PostgREST
// error body (message and PostgreSQL error code) alongside the HTTP status.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend returned %d (code %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Filter is one PostgREST equality predicate, rendered as column=eq.value.
type Filter struct {
	Column string
	Value  string
}

func Eq(column, value string) Filter {
	return Filter{Column: column, Value: value}
}

// GetUser resolves the authenticated user behind the request credentials.
// It returns any session-refresh cookies the provider produced; callers
// must forward them on the response whether or not resolution succeeded.
func (c *Client) GetUser(ctx context.Context, ra RequestAuth) (*User, []*http.Cookie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, nil, fmt.Errorf("building auth request: %w", err)
	}
	req.Header.Set("apikey", c.cfg.AnonKey)
	if token := ra.accessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, ck := range ra.Cookies {
		req.AddCookie(ck)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("auth endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	refreshed := resp.Cookies()

	switch {
	case resp.StatusCode == http.StatusOK:
		var user User
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return nil, refreshed, fmt.Errorf("decoding auth response: %w", err)
		}
		if user.ID == "" {
			return nil, refreshed, ErrNoSession
		}
		return &user, refreshed, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, refreshed, ErrNoSession
	default:
		return nil, refreshed, fmt.Errorf("auth endpoint returned %d", resp.StatusCode)
	}
}

// Insert posts one row or a batch to table. When out is non-nil the call
// asks for the created representation and decodes the returned row array
// into it.
func (c *Client) Insert(ctx context.Context, ra RequestAuth, table string, body any, out any) error {
	prefer := "return=minimal"
	if out != nil {
		prefer = "return=representation"
	}
	return c.rest(ctx, ra, http.MethodPost, table, nil, body, out, prefer)
}

// Select reads rows matching the filters. columns is a PostgREST select
// list ("id, title, ..."); order is a PostgREST order clause such as
// "created_at.desc", or empty for backend order.
func (c *Client) Select(ctx context.Context, ra RequestAuth, table, columns string, filters []Filter, order string, out any) error {
	q := url.Values{}
	if columns != "" {
		q.Set("select", columns)
	}
	if order != "" {
		q.Set("order", order)
	}
	return c.rest(ctx, ra, http.MethodGet, table, appendFilters(q, filters), nil, out, "")
}

// Update patches all rows matching the filters with the given column set.
func (c *Client) Update(ctx context.Context, ra RequestAuth, table string, patch any, filters []Filter) error {
	return c.rest(ctx, ra, http.MethodPatch, table, appendFilters(url.Values{}, filters), patch, nil, "return=minimal")
}

// Delete removes all rows matching the filters.
func (c *Client) Delete(ctx context.Context, ra RequestAuth, table string, filters []Filter) error {
	return c.rest(ctx, ra, http.MethodDelete, table, appendFilters(url.Values{}, filters), nil, nil, "return=minimal")
}

func appendFilters(q url.Values, filters []Filter) url.Values {
	for _, f := range filters {
		q.Set(f.Column, "eq."+f.Value)
	}
	return q
}

func (c *Client) rest(ctx context.Context, ra RequestAuth, method, table string, query url.Values, body, out any, prefer string) error {
	endpoint := c.cfg.BaseURL + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s body: %w", table, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
	if err != nil {
		return fmt.Errorf("building %s request: %w", table, err)
	}
	req.Header.Set("apikey", c.cfg.AnonKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
	// RLS is evaluated with the caller's token; anonymous requests fall
	// back to the anon role.
	token := ra.accessToken()
	if token == "" {
		token = c.cfg.AnonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s response: %w", table, err)
		}
	}
	return nil
}
