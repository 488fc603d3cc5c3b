// Package jobs issues identifiers for rename batches.
package jobs

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID creates a new random batch ID with the given prefix.
// The prefix should include a trailing dash, e.g. "photo-", "video-".
func GenerateID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ShortID returns the first eight characters after the prefix, for log
// lines and terminal output.
func ShortID(id string) string {
	if i := strings.LastIndex(id, "-"); i >= 0 {
		prefix, rest := id[:i+1], id[i+1:]
		if len(rest) > 8 {
			rest = rest[:8]
		}
		return prefix + rest
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
