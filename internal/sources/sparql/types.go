// Package sparql provides a bibliographic reader over a SPARQL 1.1 endpoint.
//
// Journals are stored as subjects of class <base>Journal with one predicate per
// attribute (<base>id, <base>title, <base>publisher, <base>licence, <base>apc,
// <base>seal, <base>language). Every query selects ?s ?p ?o so the full
// description of each matching subject is returned as a long relation.
//
// Protocol: https://www.w3.org/TR/sparql11-protocol/
// Results format: https://www.w3.org/TR/sparql11-results-json/
package sparql

import "github.com/helixir/journal-federation-service/internal/triples"

// ResultsResponse is the application/sparql-results+json document.
type ResultsResponse struct {
	Head    Head    `json:"head"`
	Results Results `json:"results"`
}

// Head lists the projected variables.
type Head struct {
	Vars []string `json:"vars"`
}

// Results holds the solution sequence.
type Results struct {
	Bindings []map[string]Term `json:"bindings"`
}

// Term is one RDF term bound to a variable.
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// toRelation converts bindings of ?s ?p ?o into triples. Bindings missing a
// variable yield a triple with an empty field, which the normalizer skips.
func (r ResultsResponse) toRelation() triples.Relation {
	rel := make(triples.Relation, 0, len(r.Results.Bindings))
	for _, b := range r.Results.Bindings {
		o := b[varObject]
		rel = append(rel, triples.Triple{
			Subject:   b[varSubject].Value,
			Predicate: b[varPredicate].Value,
			Object:    o.Value,
			Datatype:  o.Datatype,
			Lang:      o.Lang,
		})
	}
	return rel
}
