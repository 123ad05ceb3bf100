// Package message formats side-channel and straight-path commit messages
// from an operator-supplied template.
package message

import (
	"os"
	"strings"
	"time"
)

// Format substitutes {timestamp}, {hostname}, and {scope} into template.
// Unknown placeholders are left verbatim; substitution is literal, with no
// escaping.
//
// Grounded on original_source/src/git.rs::generate_commit_message.
func Format(template string, includeUntracked bool, now time.Time) string {
	scope := "tracked"
	if includeUntracked {
		scope = "all"
	}

	hostname, _ := os.Hostname()

	r := strings.NewReplacer(
		"{timestamp}", now.Format("2006-01-02 15:04:05 -0700"),
		"{hostname}", hostname,
		"{scope}", scope,
	)
	return r.Replace(template)
}
