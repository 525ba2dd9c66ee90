// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Request types

type CreatePollRequest struct {
	Title       string   `json:"title" validate:"required,min=3"`
	Description string   `json:"description" validate:"required,min=10"`
	Options     []string `json:"options" validate:"required,min=2,dive,notblank"`
	IsMultiple  *bool    `json:"isMultiple"`
	IsPublic    *bool    `json:"isPublic"`
	ClosesAt    *string  `json:"closesAt" validate:"omitempty,rfc3339"`
}

// UpdatePollRequest carries a partial poll edit. Every field is optional;
// a nil pointer means "leave unchanged".
type UpdatePollRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=3"`
	Description *string   `json:"description"`
	IsMultiple  *bool     `json:"isMultiple"`
	IsPublic    *bool     `json:"isPublic"`
	ClosesAt    *string   `json:"closesAt" validate:"omitempty,rfc3339"`
	Options     *[]string `json:"options" validate:"omitempty,min=2,dive,notblank"`
}

type VoteRequest struct {
	OptionID string `json:"optionId" validate:"required,uuid"`
}

// Response types

type CreatePollResponse struct {
	PollID string `json:"pollId"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

// Domain types: rows as the backend stores and returns them.

type Poll struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	AuthorID    string     `json:"author_id"`
	IsMultiple  bool       `json:"is_multiple"`
	IsPublic    bool       `json:"is_public"`
	ClosesAt    *time.Time `json:"closes_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type PollOption struct {
	ID       string `json:"id"`
	PollID   string `json:"poll_id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PollSummary is the listing projection (GET /polls).
type PollSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	AuthorID    string    `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type PollWithOptions struct {
	Poll    Poll         `json:"poll"`
	Options []PollOption `json:"options"`
}

// Insert payloads: column-shaped bodies sent to the backend.

type PollInsert struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	AuthorID    string     `json:"author_id"`
	IsMultiple  bool       `json:"is_multiple"`
	IsPublic    bool       `json:"is_public"`
	ClosesAt    *time.Time `json:"closes_at"`
}

type PollOptionInsert struct {
	PollID   string `json:"poll_id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

type VoteInsert struct {
	PollID   string `json:"poll_id"`
	OptionID string `json:"option_id"`
	UserID   string `json:"user_id"`
}

// NormalizedOption is one surviving option label with its dense,
// zero-based position.
type NormalizedOption struct {
	Label    string `json:"label"`
	Position int    `json:"position"`
}

// Error response

type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string  `json:"error"`
	Code    string  `json:"code,omitempty"`
	Details string  `json:"details,omitempty"`
	Issues  []Issue `json:"issues,omitempty"`
}
