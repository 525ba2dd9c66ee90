// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pollbox/pollbox/models"
	"github.com/pollbox/pollbox/supabase"
	"github.com/pollbox/pollbox/testutil"
)

// TestPollLifecycle drives the whole API through the router the way a
// frontend would: create, list, read, vote, edit, delete.
func TestPollLifecycle(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	handler := newTestRouter(fb)
	token, _ := fb.AddUser("alice@example.com")
	authHeader := map[string]string{"Authorization": "Bearer " + token}

	do := func(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest(method, path, body, headers)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	// Create
	w := do("POST", "/polls", models.CreatePollRequest{
		Title:       "Lunch spot",
		Description: "Where should the team eat on Friday",
		Options:     []string{"Tacos", "Ramen", "Pizza"},
	}, authHeader)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.CreatePollResponse
	testutil.AssertJSON(t, w, &created)
	if created.PollID == "" {
		t.Fatal("expected a pollId")
	}

	// List shows the new poll
	w = do("GET", "/polls", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var summaries []models.PollSummary
	testutil.AssertJSON(t, w, &summaries)
	if len(summaries) != 1 || summaries[0].ID != created.PollID {
		t.Fatalf("expected the created poll in the listing, got %v", summaries)
	}

	// Read it back with options in position order
	w = do("GET", "/polls/"+created.PollID, nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var detail models.PollWithOptions
	testutil.AssertJSON(t, w, &detail)
	if len(detail.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(detail.Options))
	}
	if detail.Options[0].Label != "Tacos" || detail.Options[2].Label != "Pizza" {
		t.Errorf("options out of order: %v", detail.Options)
	}

	// Vote
	w = do("POST", "/polls/"+created.PollID+"/vote", models.VoteRequest{
		OptionID: detail.Options[1].ID,
	}, authHeader)
	testutil.AssertStatus(t, w, http.StatusCreated)

	// Voting again trips the unique constraint
	w = do("POST", "/polls/"+created.PollID+"/vote", models.VoteRequest{
		OptionID: detail.Options[1].ID,
	}, authHeader)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Edit the title
	w = do("PUT", "/polls/"+created.PollID, map[string]any{
		"title": "Friday lunch spot",
	}, authHeader)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = do("GET", "/polls/"+created.PollID, nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &detail)
	if detail.Poll.Title != "Friday lunch spot" {
		t.Errorf("expected updated title, got %q", detail.Poll.Title)
	}

	// Delete and confirm it is gone
	w = do("DELETE", "/polls/"+created.PollID, nil, authHeader)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	w = do("GET", "/polls/"+created.PollID, nil, nil)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	if got := len(fb.Rows(supabase.TableVotes)); got != 0 {
		t.Errorf("expected votes removed with the poll, got %d", got)
	}
}

// TestOwnershipAcrossUsers exercises the 404/403 split end to end.
func TestOwnershipAcrossUsers(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	handler := newTestRouter(fb)
	ownerToken, _ := fb.AddUser("owner@example.com")
	intruderToken, _ := fb.AddUser("intruder@example.com")

	do := func(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
		headers := map[string]string{}
		if token != "" {
			headers["Authorization"] = "Bearer " + token
		}
		req := testutil.MakeRequest(method, path, body, headers)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	w := do("POST", "/polls", models.CreatePollRequest{
		Title:       "Owner's poll",
		Description: "Only the owner may change this",
		Options:     []string{"Keep", "Change"},
	}, ownerToken)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.CreatePollResponse
	testutil.AssertJSON(t, w, &created)

	// Another user can read but not mutate
	testutil.AssertStatus(t, do("GET", "/polls/"+created.PollID, nil, intruderToken), http.StatusOK)
	testutil.AssertStatus(t, do("PUT", "/polls/"+created.PollID, map[string]any{"title": "Hijacked"}, intruderToken), http.StatusForbidden)
	testutil.AssertStatus(t, do("DELETE", "/polls/"+created.PollID, nil, intruderToken), http.StatusForbidden)

	// A missing poll is reported as absent, not forbidden
	testutil.AssertStatus(t, do("PUT", "/polls/00000000-0000-0000-0000-000000000000", map[string]any{"title": "Anything"}, intruderToken), http.StatusNotFound)

	// The owner still can
	testutil.AssertStatus(t, do("PUT", "/polls/"+created.PollID, map[string]any{"title": "Still mine"}, ownerToken), http.StatusOK)
	testutil.AssertStatus(t, do("DELETE", "/polls/"+created.PollID, nil, ownerToken), http.StatusNoContent)
}

// TestSessionCookieAuth exercises the cookie fallback through the router.
func TestSessionCookieAuth(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	handler := newTestRouter(fb)
	token, _ := fb.AddUser("alice@example.com")

	req := testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
		Title:       "Cookie session",
		Description: "Created with a session cookie",
		Options:     []string{"Yes", "No"},
	}, nil)
	req.AddCookie(&http.Cookie{Name: supabase.SessionCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.CreatePollResponse
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil || created.PollID == "" {
		t.Fatalf("expected created poll, got err=%v body=%v", err, created)
	}
}
