// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pollbox/pollbox/cliparse"
)

// User is a principal known to the fake auth endpoint.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type failure struct {
	status  int
	code    string
	message string
}

// FakeBackend emulates the hosted backend for tests: PostgREST-style table
// CRUD under /rest/v1 and the auth user endpoint under /auth/v1/user.
// Rows live in memory; uniqueness, the vote belongs-to-poll trigger, and
// cascade deletes are enforced the way the real backend's constraints do.
type FakeBackend struct {
	mu      sync.Mutex
	Server  *httptest.Server
	AnonKey string

	// Users maps access token → principal.
	Users map[string]User

	// RefreshCookie, when set, is emitted on every auth endpoint response
	// to emulate session refresh.
	RefreshCookie *http.Cookie

	tables   map[string][]map[string]any
	failures map[string]failure
	calls    map[string]int
	seedSeq  int
}

// NewFakeBackend starts the fake and registers cleanup with t.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		AnonKey: "test-anon-key",
		Users:   make(map[string]User),
		tables: map[string][]map[string]any{
			"polls":        {},
			"poll_options": {},
			"votes":        {},
		},
		failures: make(map[string]failure),
		calls:    make(map[string]int),
	}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.handle))
	t.Cleanup(fb.Server.Close)
	return fb
}

// Config returns a server configuration pointed at the fake.
func (fb *FakeBackend) Config() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		SupabaseURL:     fb.Server.URL,
		SupabaseAnonKey: fb.AnonKey,
	}
}

// AddUser registers a principal and returns its access token and id.
func (fb *FakeBackend) AddUser(email string) (token, id string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	id = uuid.NewString()
	token = "token-" + uuid.NewString()
	fb.Users[token] = User{ID: id, Email: email}
	return token, id
}

// FailNext makes the next call of method against table (or "auth" for the
// auth endpoint) fail with the given status and PostgREST error body.
func (fb *FakeBackend) FailNext(method, table string, status int, code, message string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures[method+" "+table] = failure{status: status, code: code, message: message}
}

// Rows returns a copy of the stored rows for a table.
func (fb *FakeBackend) Rows(table string) []map[string]any {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	rows := make([]map[string]any, len(fb.tables[table]))
	for i, row := range fb.tables[table] {
		cp := make(map[string]any, len(row))
		for k, v := range row {
			cp[k] = v
		}
		rows[i] = cp
	}
	return rows
}

// CallCount reports how many times method hit table.
func (fb *FakeBackend) CallCount(method, table string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.calls[method+" "+table]
}

// SeedPoll inserts a poll with options directly into the fake store,
// bypassing the API. Returns the poll id and option ids in label order.
func (fb *FakeBackend) SeedPoll(authorID, title string, labels ...string) (string, []string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	fb.seedSeq++
	pollID := uuid.NewString()
	fb.tables["polls"] = append(fb.tables["polls"], map[string]any{
		"id":          pollID,
		"title":       title,
		"description": "Seeded test poll",
		"author_id":   authorID,
		"is_multiple": false,
		"is_public":   true,
		"closes_at":   nil,
		"created_at":  time.Now().UTC().Add(time.Duration(fb.seedSeq) * time.Second).Format(time.RFC3339),
	})

	optionIDs := make([]string, len(labels))
	for i, label := range labels {
		optionIDs[i] = uuid.NewString()
		fb.tables["poll_options"] = append(fb.tables["poll_options"], map[string]any{
			"id":       optionIDs[i],
			"poll_id":  pollID,
			"label":    label,
			"position": float64(i),
		})
	}
	return pollID, optionIDs
}

func (fb *FakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apikey") != fb.AnonKey {
		writeError(w, http.StatusUnauthorized, "", "No API key found in request")
		return
	}

	if r.URL.Path == "/auth/v1/user" {
		fb.handleAuth(w, r)
		return
	}

	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	fb.mu.Lock()
	_, known := fb.tables[table]
	fb.calls[r.Method+" "+table]++
	fail, hasFail := fb.failures[r.Method+" "+table]
	if hasFail {
		delete(fb.failures, r.Method+" "+table)
	}
	fb.mu.Unlock()

	if !known {
		writeError(w, http.StatusNotFound, "42P01", "relation does not exist")
		return
	}
	if hasFail {
		writeError(w, fail.status, fail.code, fail.message)
		return
	}

	switch r.Method {
	case http.MethodGet:
		fb.handleSelect(w, r, fb.Rows(table))
	case http.MethodPost:
		fb.handleInsert(w, r, table)
	case http.MethodPatch:
		fb.handleUpdate(w, r, table)
	case http.MethodDelete:
		fb.handleDelete(w, r, table)
	default:
		writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
	}
}

func (fb *FakeBackend) handleAuth(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	fail, hasFail := fb.failures["GET auth"]
	if hasFail {
		delete(fb.failures, "GET auth")
	}
	fb.mu.Unlock()

	if fb.RefreshCookie != nil {
		http.SetCookie(w, fb.RefreshCookie)
	}
	if hasFail {
		writeError(w, fail.status, fail.code, fail.message)
		return
	}

	fb.mu.Lock()
	user, ok := fb.Users[fb.bearerToken(r)]
	fb.mu.Unlock()
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"msg":"invalid JWT"}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (fb *FakeBackend) bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie("sb-access-token"); err == nil {
		return c.Value
	}
	return ""
}

// requirePrincipal emulates the write-side row-level security: mutations
// need a known user token, not just the anon key.
func (fb *FakeBackend) requirePrincipal(w http.ResponseWriter, r *http.Request) bool {
	fb.mu.Lock()
	_, ok := fb.Users[fb.bearerToken(r)]
	fb.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "42501", "new row violates row-level security policy")
		return false
	}
	return true
}

func (fb *FakeBackend) handleSelect(w http.ResponseWriter, r *http.Request, rows []map[string]any) {
	matched := filterRows(rows, r)

	if order := r.URL.Query().Get("order"); order != "" {
		col, dir, _ := strings.Cut(order, ".")
		desc := dir == "desc"
		sort.SliceStable(matched, func(i, j int) bool {
			less := lessValues(matched[i][col], matched[j][col])
			if desc {
				return !less && !equalValues(matched[i][col], matched[j][col])
			}
			return less
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(matched)
}

func (fb *FakeBackend) handleInsert(w http.ResponseWriter, r *http.Request, table string) {
	if !fb.requirePrincipal(w, r) {
		return
	}

	body, err := decodeRows(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid body")
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	for _, row := range body {
		if _, ok := row["id"]; !ok {
			row["id"] = uuid.NewString()
		}
		if _, ok := row["created_at"]; !ok {
			row["created_at"] = time.Now().UTC().Format(time.RFC3339)
		}

		if table == "votes" {
			// belongs-to-poll trigger
			if !fb.optionBelongsLocked(asString(row["option_id"]), asString(row["poll_id"])) {
				writeError(w, http.StatusConflict, "P0001", "option does not belong to poll")
				return
			}
			// unique (poll_id, option_id, user_id)
			for _, existing := range fb.tables["votes"] {
				if asString(existing["poll_id"]) == asString(row["poll_id"]) &&
					asString(existing["option_id"]) == asString(row["option_id"]) &&
					asString(existing["user_id"]) == asString(row["user_id"]) {
					writeError(w, http.StatusConflict, "23505",
						`duplicate key value violates unique constraint "votes_poll_id_option_id_user_id_key"`)
					return
				}
			}
		}

		fb.tables[table] = append(fb.tables[table], row)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if strings.Contains(r.Header.Get("Prefer"), "return=representation") {
		json.NewEncoder(w).Encode(body)
	}
}

func (fb *FakeBackend) optionBelongsLocked(optionID, pollID string) bool {
	for _, opt := range fb.tables["poll_options"] {
		if asString(opt["id"]) == optionID && asString(opt["poll_id"]) == pollID {
			return true
		}
	}
	return false
}

func (fb *FakeBackend) handleUpdate(w http.ResponseWriter, r *http.Request, table string) {
	if !fb.requirePrincipal(w, r) {
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid body")
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	for _, row := range fb.tables[table] {
		if rowMatches(row, r) {
			for k, v := range patch {
				row[k] = v
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (fb *FakeBackend) handleDelete(w http.ResponseWriter, r *http.Request, table string) {
	if !fb.requirePrincipal(w, r) {
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	var kept []map[string]any
	var removed []map[string]any
	for _, row := range fb.tables[table] {
		if rowMatches(row, r) {
			removed = append(removed, row)
		} else {
			kept = append(kept, row)
		}
	}
	fb.tables[table] = kept

	// Cascade: deleting a poll removes its options and votes
	if table == "polls" {
		for _, row := range removed {
			pollID := asString(row["id"])
			fb.tables["poll_options"] = dropByPoll(fb.tables["poll_options"], pollID)
			fb.tables["votes"] = dropByPoll(fb.tables["votes"], pollID)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func dropByPoll(rows []map[string]any, pollID string) []map[string]any {
	var kept []map[string]any
	for _, row := range rows {
		if asString(row["poll_id"]) != pollID {
			kept = append(kept, row)
		}
	}
	return kept
}

func decodeRows(r *http.Request) ([]map[string]any, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []map[string]any
		err = json.Unmarshal(trimmed, &rows)
		return rows, err
	}
	var row map[string]any
	if err := json.Unmarshal(trimmed, &row); err != nil {
		return nil, err
	}
	return []map[string]any{row}, nil
}

func filterRows(rows []map[string]any, r *http.Request) []map[string]any {
	matched := []map[string]any{}
	for _, row := range rows {
		if rowMatches(row, r) {
			matched = append(matched, row)
		}
	}
	return matched
}

func rowMatches(row map[string]any, r *http.Request) bool {
	for col, vals := range r.URL.Query() {
		if col == "select" || col == "order" {
			continue
		}
		want, ok := strings.CutPrefix(vals[0], "eq.")
		if !ok {
			continue
		}
		if asString(row[col]) != want {
			return false
		}
	}
	return true
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		// JSON numbers; positions are small integers
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}

func lessValues(a, b any) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	return asString(a) < asString(b)
}

func equalValues(a, b any) bool {
	return asString(a) == asString(b)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
