// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pollbox/pollbox/auth"
	"github.com/pollbox/pollbox/cliparse"
	"github.com/pollbox/pollbox/middleware"
	"github.com/pollbox/pollbox/models"
	"github.com/pollbox/pollbox/supabase"
	"github.com/pollbox/pollbox/validate"
)

type PollHandler struct {
	client   *supabase.Client
	resolver *auth.Resolver
	cfg      cliparse.Config
}

func NewPollHandler(client *supabase.Client, resolver *auth.Resolver, cfg cliparse.Config) *PollHandler {
	return &PollHandler{client: client, resolver: resolver, cfg: cfg}
}

// CreatePoll handles POST /polls
//
// Write order: poll row first, then the option batch. If the option batch
// fails the poll row is deleted again so no orphaned poll survives.
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if verr := validate.CreatePoll(&req); verr != nil {
		middleware.IssuesResponse(w, verr.Issues)
		return
	}

	// Resolve principal before touching storage
	ra := supabase.AuthFromRequest(r)
	principal, cookies, err := h.resolver.Resolve(r.Context(), ra)
	setCookies(w, cookies)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	// Insert poll row
	desc := req.Description
	insert := models.PollInsert{
		Title:       req.Title,
		Description: &desc,
		AuthorID:    principal.ID,
		IsMultiple:  req.IsMultiple != nil && *req.IsMultiple,
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
		ClosesAt:    parseClosesAt(req.ClosesAt),
	}

	var created []models.Poll
	err = h.client.Insert(r.Context(), ra, supabase.TablePolls, insert, &created)
	if err != nil || len(created) == 0 {
		slog.Error("failed to insert poll", "error", err)
		writeBackendError(w, http.StatusInternalServerError, "Failed to create poll", err)
		return
	}
	poll := created[0]

	// Normalize and insert options
	normalized := validate.NormalizeOptions(req.Options)
	rows := make([]models.PollOptionInsert, len(normalized))
	for i, opt := range normalized {
		rows[i] = models.PollOptionInsert{
			PollID:   poll.ID,
			Label:    opt.Label,
			Position: opt.Position,
		}
	}

	if err := h.client.Insert(r.Context(), ra, supabase.TablePollOptions, rows, nil); err != nil {
		slog.Error("failed to insert options", "error", err, "poll_id", poll.ID)

		// Compensating action: the poll must not outlive its options
		delFilters := []supabase.Filter{
			supabase.Eq("id", poll.ID),
			supabase.Eq("author_id", principal.ID),
		}
		if derr := h.client.Delete(r.Context(), ra, supabase.TablePolls, delFilters); derr != nil {
			slog.Error("failed to roll back poll", "error", derr, "poll_id", poll.ID)
		}

		writeBackendError(w, http.StatusBadRequest, "Failed to create options", err)
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "author_id", principal.ID, "options", len(rows))

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID: poll.ID,
	})
}

// lookupOwnedPoll fetches the poll and enforces ownership before any
// mutation. Writes the error response itself; returns nil when the caller
// should stop. Missing poll and foreign poll are reported separately
// (404 vs 403) instead of silently no-op'ing the mutation.
func (h *PollHandler) lookupOwnedPoll(w http.ResponseWriter, r *http.Request, ra supabase.RequestAuth, pollID string, principal *auth.Principal) *models.Poll {
	var rows []models.Poll
	err := h.client.Select(r.Context(), ra, supabase.TablePolls, "id, author_id", []supabase.Filter{
		supabase.Eq("id", pollID),
	}, "", &rows)
	if err != nil {
		slog.Error("failed to query poll", "error", err, "poll_id", pollID)
		writeLookupError(w, err)
		return nil
	}
	if len(rows) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return nil
	}
	if rows[0].AuthorID != principal.ID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Forbidden")
		return nil
	}
	return &rows[0]
}

// UpdatePoll handles PUT /polls/{id}
//
// Scalar fields go in one filtered UPDATE; an options field replaces the
// whole option set (delete all, then re-insert normalized).
func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	var req models.UpdatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if verr := validate.UpdatePoll(&req); verr != nil {
		middleware.IssuesResponse(w, verr.Issues)
		return
	}

	ra := supabase.AuthFromRequest(r)
	principal, cookies, err := h.resolver.Resolve(r.Context(), ra)
	setCookies(w, cookies)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	if h.lookupOwnedPoll(w, r, ra, pollID, principal) == nil {
		return
	}

	// Scalar fields, if any, in a single filtered UPDATE
	patch := map[string]any{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.IsMultiple != nil {
		patch["is_multiple"] = *req.IsMultiple
	}
	if req.IsPublic != nil {
		patch["is_public"] = *req.IsPublic
	}
	if req.ClosesAt != nil {
		patch["closes_at"] = parseClosesAt(req.ClosesAt)
	}

	ownerFilters := []supabase.Filter{
		supabase.Eq("id", pollID),
		supabase.Eq("author_id", principal.ID),
	}

	if len(patch) > 0 {
		if err := h.client.Update(r.Context(), ra, supabase.TablePolls, patch, ownerFilters); err != nil {
			slog.Error("failed to update poll", "error", err, "poll_id", pollID)
			writeBackendError(w, http.StatusBadRequest, "Failed to update poll", err)
			return
		}
	}

	// Full option replacement: delete everything, then insert the
	// normalized set. A delete failure aborts before the insert.
	if req.Options != nil {
		optFilter := []supabase.Filter{supabase.Eq("poll_id", pollID)}
		if err := h.client.Delete(r.Context(), ra, supabase.TablePollOptions, optFilter); err != nil {
			slog.Error("failed to delete options", "error", err, "poll_id", pollID)
			writeBackendError(w, http.StatusBadRequest, "Failed to replace options", err)
			return
		}

		normalized := validate.NormalizeOptions(*req.Options)
		rows := make([]models.PollOptionInsert, len(normalized))
		for i, opt := range normalized {
			rows[i] = models.PollOptionInsert{
				PollID:   pollID,
				Label:    opt.Label,
				Position: opt.Position,
			}
		}
		if err := h.client.Insert(r.Context(), ra, supabase.TablePollOptions, rows, nil); err != nil {
			slog.Error("failed to insert replacement options", "error", err, "poll_id", pollID)
			writeBackendError(w, http.StatusBadRequest, "Failed to replace options", err)
			return
		}
	}

	slog.Info("poll updated", "poll_id", pollID, "author_id", principal.ID)

	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// DeletePoll handles DELETE /polls/{id}
//
// Single filtered DELETE; dependent options and votes go away via the
// backend's cascade rules.
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	ra := supabase.AuthFromRequest(r)
	principal, cookies, err := h.resolver.Resolve(r.Context(), ra)
	setCookies(w, cookies)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	if h.lookupOwnedPoll(w, r, ra, pollID, principal) == nil {
		return
	}

	err = h.client.Delete(r.Context(), ra, supabase.TablePolls, []supabase.Filter{
		supabase.Eq("id", pollID),
		supabase.Eq("author_id", principal.ID),
	})
	if err != nil {
		slog.Error("failed to delete poll", "error", err, "poll_id", pollID)
		writeBackendError(w, http.StatusBadRequest, "Failed to delete poll", err)
		return
	}

	slog.Info("poll deleted", "poll_id", pollID, "author_id", principal.ID)

	w.WriteHeader(http.StatusNoContent)
}

// ListPolls handles GET /polls
//
// Public listing, newest first. No principal required; row-level security
// decides what an anonymous caller can see.
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	ra := supabase.AuthFromRequest(r)

	polls := []models.PollSummary{}
	err := h.client.Select(r.Context(), ra, supabase.TablePolls,
		"id, title, description, created_at, author_id", nil, "created_at.desc", &polls)
	if err != nil {
		slog.Error("failed to list polls", "error", err)
		writeLookupError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	ra := supabase.AuthFromRequest(r)

	var polls []models.Poll
	err := h.client.Select(r.Context(), ra, supabase.TablePolls, "", []supabase.Filter{
		supabase.Eq("id", pollID),
	}, "", &polls)
	if err != nil {
		slog.Error("failed to query poll", "error", err, "poll_id", pollID)
		writeLookupError(w, err)
		return
	}
	if len(polls) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	options := []models.PollOption{}
	err = h.client.Select(r.Context(), ra, supabase.TablePollOptions, "", []supabase.Filter{
		supabase.Eq("poll_id", pollID),
	}, "position.asc", &options)
	if err != nil {
		slog.Error("failed to query options", "error", err, "poll_id", pollID)
		writeLookupError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollWithOptions{
		Poll:    polls[0],
		Options: options,
	})
}
