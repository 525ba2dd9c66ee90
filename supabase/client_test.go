// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package supabase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/pollbox/pollbox/models"
	"github.com/pollbox/pollbox/supabase"
	"github.com/pollbox/pollbox/testutil"
)

func newClient(fb *testutil.FakeBackend) *supabase.Client {
	return supabase.New(supabase.Config{
		BaseURL: fb.Server.URL,
		AnonKey: fb.AnonKey,
	})
}

func TestAuthFromRequest(t *testing.T) {
	t.Run("bearer token", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls", nil, map[string]string{
			"Authorization": "Bearer abc123",
		})
		ra := supabase.AuthFromRequest(req)
		if ra.BearerToken != "abc123" {
			t.Errorf("expected bearer token abc123, got %q", ra.BearerToken)
		}
	})

	t.Run("non-bearer authorization ignored", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls", nil, map[string]string{
			"Authorization": "Basic dXNlcjpwYXNz",
		})
		ra := supabase.AuthFromRequest(req)
		if ra.BearerToken != "" {
			t.Errorf("expected empty token, got %q", ra.BearerToken)
		}
	})

	t.Run("cookies carried", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls", nil, nil)
		req.AddCookie(&http.Cookie{Name: supabase.SessionCookieName, Value: "cookie-token"})
		ra := supabase.AuthFromRequest(req)
		if len(ra.Cookies) != 1 {
			t.Fatalf("expected 1 cookie, got %d", len(ra.Cookies))
		}
	})
}

func TestGetUser(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	client := newClient(fb)
	token, userID := fb.AddUser("alice@example.com")

	t.Run("valid bearer token", func(t *testing.T) {
		user, _, err := client.GetUser(context.Background(), supabase.RequestAuth{BearerToken: token})
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if user.ID != userID {
			t.Errorf("expected user %s, got %s", userID, user.ID)
		}
	})

	t.Run("session cookie fallback", func(t *testing.T) {
		ra := supabase.RequestAuth{Cookies: []*http.Cookie{
			{Name: supabase.SessionCookieName, Value: token},
		}}
		user, _, err := client.GetUser(context.Background(), ra)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if user.ID != userID {
			t.Errorf("expected user %s, got %s", userID, user.ID)
		}
	})

	t.Run("no credentials", func(t *testing.T) {
		_, _, err := client.GetUser(context.Background(), supabase.RequestAuth{})
		if !errors.Is(err, supabase.ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		_, _, err := client.GetUser(context.Background(), supabase.RequestAuth{BearerToken: "bogus"})
		if !errors.Is(err, supabase.ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
	})

	t.Run("provider failure is not ErrNoSession", func(t *testing.T) {
		fb.FailNext("GET", "auth", http.StatusInternalServerError, "", "internal error")
		_, _, err := client.GetUser(context.Background(), supabase.RequestAuth{BearerToken: token})
		if err == nil || errors.Is(err, supabase.ErrNoSession) {
			t.Errorf("expected provider error, got %v", err)
		}
	})

	t.Run("refresh cookies returned", func(t *testing.T) {
		fb.RefreshCookie = &http.Cookie{Name: "sb-refresh-token", Value: "rotated"}
		defer func() { fb.RefreshCookie = nil }()

		_, cookies, err := client.GetUser(context.Background(), supabase.RequestAuth{BearerToken: token})
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		found := false
		for _, c := range cookies {
			if c.Name == "sb-refresh-token" && c.Value == "rotated" {
				found = true
			}
		}
		if !found {
			t.Error("expected refreshed session cookie to be returned")
		}
	})
}

func TestInsertSelect(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	client := newClient(fb)
	token, userID := fb.AddUser("alice@example.com")
	ra := supabase.RequestAuth{BearerToken: token}

	desc := "A poll inserted through the client"
	var created []models.Poll
	err := client.Insert(context.Background(), ra, supabase.TablePolls, models.PollInsert{
		Title:       "Client test poll",
		Description: &desc,
		AuthorID:    userID,
		IsPublic:    true,
	}, &created)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if len(created) != 1 || created[0].ID == "" {
		t.Fatalf("expected one created row with id, got %v", created)
	}

	var fetched []models.Poll
	err = client.Select(context.Background(), ra, supabase.TablePolls, "", []supabase.Filter{
		supabase.Eq("id", created[0].ID),
	}, "", &fetched)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(fetched) != 1 || fetched[0].Title != "Client test poll" {
		t.Fatalf("expected the inserted poll back, got %v", fetched)
	}
}

func TestUpdateDelete(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	client := newClient(fb)
	token, userID := fb.AddUser("alice@example.com")
	ra := supabase.RequestAuth{BearerToken: token}

	pollID, _ := fb.SeedPoll(userID, "Before", "A", "B")

	err := client.Update(context.Background(), ra, supabase.TablePolls,
		map[string]any{"title": "After"},
		[]supabase.Filter{supabase.Eq("id", pollID)})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	rows := fb.Rows(supabase.TablePolls)
	if len(rows) != 1 || rows[0]["title"] != "After" {
		t.Fatalf("expected updated title, got %v", rows)
	}

	err = client.Delete(context.Background(), ra, supabase.TablePolls,
		[]supabase.Filter{supabase.Eq("id", pollID)})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got := len(fb.Rows(supabase.TablePolls)); got != 0 {
		t.Errorf("expected no polls after delete, got %d", got)
	}
}

func TestBackendErrorShape(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	client := newClient(fb)
	token, userID := fb.AddUser("alice@example.com")
	ra := supabase.RequestAuth{BearerToken: token}

	fb.FailNext("POST", supabase.TablePolls, http.StatusConflict, "23505", "duplicate key value")

	err := client.Insert(context.Background(), ra, supabase.TablePolls, models.PollInsert{
		Title:    "Doomed",
		AuthorID: userID,
	}, nil)
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *supabase.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Code != "23505" {
		t.Errorf("unexpected error fields: %+v", apiErr)
	}
}

func TestAnonymousMutationRejected(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	client := newClient(fb)

	err := client.Insert(context.Background(), supabase.RequestAuth{}, supabase.TablePolls, models.PollInsert{
		Title: "No principal",
	}, nil)

	var apiErr *supabase.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
}
