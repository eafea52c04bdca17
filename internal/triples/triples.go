// Package triples converts long, triple-shaped result sets into wide records.
//
// A long relation holds one (subject, predicate, object) row per fact. Normalize
// groups it into one Record per subject with one Field per predicate local name.
// Multiplicity is only observable from the grouped result, so every field keeps
// either a single value or the full ordered multiset:
//
//	rel := triples.Relation{
//		{Subject: "J1", Predicate: "http://ex.org/title", Object: "Nature"},
//		{Subject: "J1", Predicate: "http://ex.org/language", Object: "en"},
//		{Subject: "J1", Predicate: "http://ex.org/language", Object: "fr"},
//	}
//	records, _ := triples.Normalize(rel)
//	records[0].Scalar("title")  // "Nature"
//	records[0].Values("language") // ["en", "fr"]
package triples

import "strings"

// Triple is one (subject, predicate, object) fact.
//
// Datatype and Lang carry RDF literal decoration. They take part in equality,
// so a decorated literal and a plain one with the same text are distinct terms.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
	Datatype  string
	Lang      string
}

// Relation is a long result table: one Triple per row.
type Relation []Triple

// Valid reports whether the triple can be grouped.
func (t Triple) Valid() bool {
	return strings.TrimSpace(t.Subject) != "" && strings.TrimSpace(t.Predicate) != ""
}

// term returns the object with its decoration, used for distinctness.
func (t Triple) term() term {
	return term{value: t.Object, datatype: t.Datatype, lang: t.Lang}
}

type term struct {
	value    string
	datatype string
	lang     string
}

// LocalName returns the final path segment of an IRI, after the last "/" or "#".
// An IRI ending in a separator is returned unchanged.
func LocalName(iri string) string {
	idx := strings.LastIndexAny(iri, "/#")
	if idx < 0 || idx == len(iri)-1 {
		return iri
	}
	return iri[idx+1:]
}

// Dedup removes exact-duplicate rows, keeping the first occurrence.
func Dedup(rel Relation) Relation {
	if len(rel) == 0 {
		return Relation{}
	}
	seen := make(map[Triple]struct{}, len(rel))
	out := make(Relation, 0, len(rel))
	for _, t := range rel {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
