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

type VoteHandler struct {
	client   *supabase.Client
	resolver *auth.Resolver
	cfg      cliparse.Config
}

func NewVoteHandler(client *supabase.Client, resolver *auth.Resolver, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{client: client, resolver: resolver, cfg: cfg}
}

// SubmitVote handles POST /polls/{id}/vote
//
// The option must belong to the target poll; that is checked here before
// the insert, and again by a backend trigger. Duplicate-vote prevention
// is entirely the backend's unique constraint: a violation passes through
// as a 400 with the backend's error code.
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if verr := validate.Vote(&req); verr != nil {
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

	// Confirm the option belongs to this poll before writing anything
	var options []models.PollOption
	err = h.client.Select(r.Context(), ra, supabase.TablePollOptions, "id, poll_id", []supabase.Filter{
		supabase.Eq("id", req.OptionID),
		supabase.Eq("poll_id", pollID),
	}, "", &options)
	if err != nil {
		slog.Error("failed to query option", "error", err, "poll_id", pollID, "option_id", req.OptionID)
		writeLookupError(w, err)
		return
	}
	if len(options) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Option does not belong to this poll")
		return
	}

	insert := models.VoteInsert{
		PollID:   pollID,
		OptionID: req.OptionID,
		UserID:   principal.ID,
	}
	if err := h.client.Insert(r.Context(), ra, supabase.TableVotes, insert, nil); err != nil {
		slog.Error("failed to insert vote", "error", err, "poll_id", pollID, "option_id", req.OptionID)
		writeBackendError(w, http.StatusBadRequest, "Failed to record vote", err)
		return
	}

	slog.Info("vote recorded", "poll_id", pollID, "option_id", req.OptionID, "user_id", principal.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.OKResponse{OK: true})
}
