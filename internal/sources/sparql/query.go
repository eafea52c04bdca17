package sparql

import (
	"fmt"
	"strings"
)

const (
	varSubject   = "s"
	varPredicate = "p"
	varObject    = "o"
)

// LicenceMatch selects how GetByLicence compares licence text.
type LicenceMatch string

const (
	// LicenceContains matches a case-insensitive substring.
	LicenceContains LicenceMatch = "contains"

	// LicenceExact matches the full licence string.
	LicenceExact LicenceMatch = "exact"
)

// IsValid reports whether m is a known match mode.
func (m LicenceMatch) IsValid() bool {
	return m == LicenceContains || m == LicenceExact
}

// vocabulary holds the IRIs queries are built against.
type vocabulary struct {
	base         string
	journalClass string
}

func newVocabulary(base, journalClass string) vocabulary {
	if journalClass == "" {
		journalClass = base + "Journal"
	}
	return vocabulary{base: base, journalClass: journalClass}
}

func (v vocabulary) pred(local string) string {
	return "<" + v.base + local + ">"
}

// describe wraps a pattern selecting ?s so that every triple of each match is
// projected.
func describe(pattern string) string {
	return fmt.Sprintf("SELECT ?s ?p ?o WHERE {\n  %s\n  ?s ?p ?o .\n}", pattern)
}

func (v vocabulary) all() string {
	return describe(fmt.Sprintf("?s a <%s> .", v.journalClass))
}

func (v vocabulary) byID(id string) string {
	return describe(fmt.Sprintf("?s %s ?id . FILTER(STR(?id) = %s)", v.pred("id"), literal(id)))
}

func (v vocabulary) containing(local, text string) string {
	return describe(fmt.Sprintf(
		"?s %s ?v . FILTER(CONTAINS(LCASE(STR(?v)), LCASE(%s)))",
		v.pred(local), literal(text),
	))
}

func (v vocabulary) byLicence(text string, mode LicenceMatch) string {
	path := v.pred("licence") + "|" + v.pred("license")
	if mode == LicenceExact {
		return describe(fmt.Sprintf("?s %s ?v . FILTER(STR(?v) = %s)", path, literal(text)))
	}
	return describe(fmt.Sprintf(
		"?s %s ?v . FILTER(CONTAINS(LCASE(STR(?v)), LCASE(%s)))",
		path, literal(text),
	))
}

// flagged selects subjects whose boolean attribute reads "true" in any case or datatype.
func (v vocabulary) flagged(local string) string {
	return describe(fmt.Sprintf(`?s %s ?v . FILTER(LCASE(STR(?v)) = "true")`, v.pred(local)))
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// literal renders s as a quoted SPARQL string literal.
func literal(s string) string {
	return `"` + literalEscaper.Replace(s) + `"`
}
