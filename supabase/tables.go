// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package supabase

// Table names in the hosted backend. The full contract (columns,
// row-level security policies, the votes belongs-to-poll trigger, and
// cascade rules) is documented in schema.sql at the repository root.
const (
	TablePolls       = "polls"
	TablePollOptions = "poll_options"
	TableVotes       = "votes"
)

// SessionCookieName is the auth provider's access-token cookie, used when
// no Authorization header is present.
const SessionCookieName = "sb-access-token"
