// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package validate checks incoming request payloads and normalizes poll options.

# Validation

Each request type has a checker returning nil or a *validate.Error carrying
field-level issues:

	if verr := validate.CreatePoll(&req); verr != nil {
		middleware.IssuesResponse(w, verr.Issues)
		return
	}

Rules (go-playground/validator tags on the models types, plus custom
notblank and rfc3339 validators):

  - create: title ≥3 chars, description ≥10 chars, ≥2 options each
    non-blank after trim, closesAt optional RFC 3339
  - update: all fields optional, present fields checked as above
    (description exempt: it may be shortened or cleared)
  - vote: optionId must be UUID-shaped

Validation never partially applies a mutation: a failing payload produces
issues and nothing else.

# Option Normalization

NormalizeOptions trims, drops empties, case-insensitively deduplicates
(first occurrence wins, later duplicates dropped silently), and assigns
dense zero-based positions. If deduplication leaves fewer than two options
the write still proceeds; only the raw option count is validated.
*/
package validate
