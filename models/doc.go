// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the Pollbox API.

# Type Categories

  - Request types: JSON bodies accepted by the API (CreatePollRequest,
    UpdatePollRequest, VoteRequest). These carry validate struct tags
    consumed by the validate package.
  - Response types: JSON bodies returned by the API.
  - Domain types: rows as the backend stores them (Poll, PollOption, Vote),
    with snake_case JSON tags matching the database columns.
  - Insert payloads: column-shaped bodies sent to the backend on writes.

# Error Envelope

All error responses share one shape:

	{"error": "...", "code": "...", "details": "...", "issues": [...]}

code and details surface the backend's error when one is passed through;
issues carries field-level validation failures.
*/
package models
