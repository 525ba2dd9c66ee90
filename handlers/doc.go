// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Pollbox API.

# Handler Types

Each handler is a struct with backend-client, resolver, and config
dependencies:

  - PollHandler: poll lifecycle (create, update, delete, list, get)
  - VoteHandler: vote submission

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(client, resolver, cfg)

# Request Flow

Every mutating handler follows the same sequence: parse JSON, validate,
resolve the principal (failing closed before any storage call), orchestrate
the writes, map the outcome. Session-refresh cookies from the resolver are
set on every response.

	POST   /polls           → CreatePoll (201 {pollId})
	PUT    /polls/{id}      → UpdatePoll (200 {ok:true})
	DELETE /polls/{id}      → DeletePoll (204)
	POST   /polls/{id}/vote → SubmitVote (201 {ok:true})
	GET    /polls           → ListPolls  (public)
	GET    /polls/{id}      → GetPoll    (public)

# Write Orchestration

Dependent writes are sequenced here, not in the backend:

  - Create inserts the poll row, then the normalized option batch. If the
    batch fails, a compensating delete removes the poll row.
  - Update patches scalar fields in one filtered UPDATE, then replaces the
    option set (delete all, re-insert) when options are present.
  - Delete issues one filtered DELETE; cascades are the backend's job.
  - Vote verifies the option belongs to the poll, then inserts; duplicate
    votes surface as the backend's constraint violation, passed through.

# Ownership

Mutations fetch the poll and compare author_id against the principal
before writing: absent poll → 404, foreign poll → 403. The mutating query
still carries an author_id filter, so the backend's row-level security
remains a second line of defense.
*/
package handlers
