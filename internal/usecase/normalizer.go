package usecase

import (
	"regexp"
	"strings"
)

// Compiled regex patterns for name normalization
var (
	// Matches a cell that is nothing but a single social handle, e.g. "@jane.doe"
	handleOnlyPattern = regexp.MustCompile(`^@[\w.]+$`)

	// Matches handles embedded in mixed text, e.g. "Jane @janedoe Doe"
	embeddedHandlePattern = regexp.MustCompile(`@[\w.]+`)

	// Matches follower-count tokens like "3.2K", "500k", "1,2m"
	followerCountPattern = regexp.MustCompile(`(?i)\d+[.,]?\d*\s*[km]\b`)

	// Matches parenthetical asides, non-greedy, single line
	parentheticalPattern = regexp.MustCompile(`\(.*?\)`)

	// Whitespace runs
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeName reduces a raw name string to its canonical comparison form:
// lowercase, handles and follower counts stripped, parentheticals removed,
// whitespace collapsed. A cell that is only a handle keeps the handle text as
// the name ("@jane.doe" becomes "jane doe"). Never fails; may return "".
// Idempotent: normalizing an already normalized name is a no-op.
func NormalizeName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))

	if handleOnlyPattern.MatchString(name) {
		// The handle is the name itself
		name = strings.TrimPrefix(name, "@")
		name = strings.ReplaceAll(name, ".", " ")
	} else {
		// Embedded handles and stray @ signs are noise, not the name
		name = embeddedHandlePattern.ReplaceAllString(name, "")
		name = strings.ReplaceAll(name, "@", " ")
	}

	name = followerCountPattern.ReplaceAllString(name, "")
	name = parentheticalPattern.ReplaceAllString(name, "")
	name = whitespacePattern.ReplaceAllString(name, " ")

	return strings.TrimSpace(name)
}

// FirstLine returns the first line of a potentially multiline cell value.
// Copy-pasted social profile cards often stack name, handle and follower
// count in one cell; only the first line is the name candidate.
func FirstLine(cellValue string) string {
	text := strings.TrimSpace(cellValue)
	if text == "" {
		return ""
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
