// Copyright (c) 2025 Pollbox Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validate

import (
	"strings"

	"github.com/pollbox/pollbox/models"
)

// NormalizeOptions turns raw option labels into the rows to store, in order:
// trim whitespace, drop empties, deduplicate case-insensitively keeping the
// first occurrence, then assign dense zero-based positions to the survivors.
// Later duplicates are dropped silently rather than rejected.
//
// The result is stable: normalizing an already-normalized sequence returns
// the same sequence.
func NormalizeOptions(labels []string) []models.NormalizedOption {
	seen := make(map[string]bool, len(labels))
	out := make([]models.NormalizedOption, 0, len(labels))

	for _, raw := range labels {
		label := strings.TrimSpace(raw)
		if label == "" {
			continue
		}
		key := strings.ToLower(label)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, models.NormalizedOption{
			Label:    label,
			Position: len(out),
		})
	}

	return out
}
