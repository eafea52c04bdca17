package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// nonAlphanumericRegex matches runs of characters outside [a-zA-Z0-9].
var nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// JournalIdentifiers holds the candidate identifiers of a journal source row.
type JournalIdentifiers struct {
	ISSN  string
	EISSN string
	Title string
	// RowIndex is the position of the row in its source, used for the
	// synthetic fallback identifier. Negative disables the fallback.
	RowIndex int
}

// Slugify lowercases s, collapses every run of non-alphanumeric characters
// into a single "-" and trims leading and trailing separators.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlphanumericRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ResolveJournalID returns the primary identifier of a journal.
// Priority order: printed ISSN > electronic ISSN > title slug > "row-<index>".
// Returns ErrNoIdentifier when nothing usable is available.
func ResolveJournalID(ids JournalIdentifiers) (string, error) {
	if issn := strings.TrimSpace(ids.ISSN); issn != "" {
		return issn, nil
	}

	if eissn := strings.TrimSpace(ids.EISSN); eissn != "" {
		return eissn, nil
	}

	if slug := Slugify(ids.Title); slug != "" {
		return slug, nil
	}

	if ids.RowIndex >= 0 {
		return fmt.Sprintf("row-%d", ids.RowIndex), nil
	}

	return "", ErrNoIdentifier
}
