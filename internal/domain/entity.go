// Package domain provides the entity model of the journal federation service.
//
// Entities are plain values produced fresh by every query. Journal identifiers
// (ISSN) and category identifiers occupy separate namespaces even when they are
// textually equal, so every entity carries its EntityKind next to its identifiers.
package domain

import (
	"strings"
)

// EntityKind tags the concrete variant of an identifiable entity.
type EntityKind string

const (
	EntityKindArea      EntityKind = "area"
	EntityKindCategory  EntityKind = "category"
	EntityKindPublisher EntityKind = "publisher"
	EntityKindJournal   EntityKind = "journal"
)

// Entity is implemented by every identifiable entity.
type Entity interface {
	// Kind returns the entity variant.
	Kind() EntityKind

	// IDs returns the identifiers in insertion order. Never empty for a
	// constructed entity.
	IDs() []string

	// PrimaryID returns the first identifier.
	PrimaryID() string
}

// Quartile is a journal-ranking tier assigned per subject category.
// Values outside Q1..Q4 are carried through unchanged; the empty value means absent.
type Quartile string

const (
	QuartileQ1 Quartile = "Q1"
	QuartileQ2 Quartile = "Q2"
	QuartileQ3 Quartile = "Q3"
	QuartileQ4 Quartile = "Q4"
)

// IsKnown reports whether q is one of Q1..Q4.
func (q Quartile) IsKnown() bool {
	switch q {
	case QuartileQ1, QuartileQ2, QuartileQ3, QuartileQ4:
		return true
	default:
		return false
	}
}

// IsSet reports whether a quartile is present.
func (q Quartile) IsSet() bool {
	return q != ""
}

// identifiers is the shared identifier storage embedded by every entity.
type identifiers struct {
	ids []string
}

func newIdentifiers(entity string, ids []string) (identifiers, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return identifiers{}, NewValidationError(entity+".ids", "at least one non-empty identifier is required")
	}
	return identifiers{ids: out}, nil
}

// IDs returns a copy of the identifiers.
func (i identifiers) IDs() []string {
	out := make([]string, len(i.ids))
	copy(out, i.ids)
	return out
}

// PrimaryID returns the first identifier, or "" for a zero value.
func (i identifiers) PrimaryID() string {
	if len(i.ids) == 0 {
		return ""
	}
	return i.ids[0]
}

// HasID reports whether id is one of the identifiers.
func (i identifiers) HasID(id string) bool {
	for _, v := range i.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Area is a subject area. Immutable once constructed.
type Area struct {
	identifiers
	Name string
}

// NewArea creates an Area. Areas have no separate display name in this model,
// so callers usually pass the same value for id and name.
func NewArea(ids []string, name string) (*Area, error) {
	idents, err := newIdentifiers("area", ids)
	if err != nil {
		return nil, err
	}
	return &Area{identifiers: idents, Name: name}, nil
}

// Kind implements Entity.
func (a *Area) Kind() EntityKind { return EntityKindArea }

// Category is a subject category, optionally ranked with a quartile and
// assigned to an area.
type Category struct {
	identifiers
	Title    string
	Quartile Quartile
	Area     *Area
}

// NewCategory creates a Category. The quartile is not validated.
func NewCategory(ids []string, title string, quartile Quartile, area *Area) (*Category, error) {
	idents, err := newIdentifiers("category", ids)
	if err != nil {
		return nil, err
	}
	return &Category{identifiers: idents, Title: title, Quartile: quartile, Area: area}, nil
}

// Kind implements Entity.
func (c *Category) Kind() EntityKind { return EntityKindCategory }

// SameAs reports whether c and other denote the same category assignment:
// equal primary id and equal area.
func (c *Category) SameAs(other *Category) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	if c.PrimaryID() != other.PrimaryID() {
		return false
	}
	switch {
	case c.Area == nil && other.Area == nil:
		return true
	case c.Area == nil || other.Area == nil:
		return false
	default:
		return c.Area.PrimaryID() == other.Area.PrimaryID()
	}
}

// Publisher is a journal publisher.
type Publisher struct {
	identifiers
	Name string
}

// NewPublisher creates a Publisher.
func NewPublisher(ids []string, name string) (*Publisher, error) {
	idents, err := newIdentifiers("publisher", ids)
	if err != nil {
		return nil, err
	}
	return &Publisher{identifiers: idents, Name: name}, nil
}

// Kind implements Entity.
func (p *Publisher) Kind() EntityKind { return EntityKindPublisher }

// JournalAttributes holds the non-identifier fields of a Journal.
// Absent source fields map to the zero values.
type JournalAttributes struct {
	Title       string
	Publisher   *Publisher
	Languages   []string
	HasDOAJSeal bool
	HasAPC      bool
	Licence     string
}

// Journal is a bibliographic journal record.
type Journal struct {
	identifiers
	Title       string
	Publisher   *Publisher
	Languages   []string
	HasDOAJSeal bool
	HasAPC      bool
	Licence     string

	categories []*Category
}

// NewJournal creates a Journal. Languages are copied; a nil slice becomes empty.
func NewJournal(ids []string, attrs JournalAttributes) (*Journal, error) {
	idents, err := newIdentifiers("journal", ids)
	if err != nil {
		return nil, err
	}
	langs := make([]string, len(attrs.Languages))
	copy(langs, attrs.Languages)
	return &Journal{
		identifiers: idents,
		Title:       attrs.Title,
		Publisher:   attrs.Publisher,
		Languages:   langs,
		HasDOAJSeal: attrs.HasDOAJSeal,
		HasAPC:      attrs.HasAPC,
		Licence:     attrs.Licence,
	}, nil
}

// Kind implements Entity.
func (j *Journal) Kind() EntityKind { return EntityKindJournal }

// IsDiamond reports whether the journal is diamond open access (no APC).
func (j *Journal) IsDiamond() bool {
	return !j.HasAPC
}

// Categories returns the categories added so far, in insertion order.
func (j *Journal) Categories() []*Category {
	out := make([]*Category, len(j.categories))
	copy(out, j.categories)
	return out
}

// AddCategory appends c unless an equal assignment is already present.
// It reports whether the category was added.
func (j *Journal) AddCategory(c *Category) bool {
	if c == nil {
		return false
	}
	for _, existing := range j.categories {
		if existing.SameAs(c) {
			return false
		}
	}
	j.categories = append(j.categories, c)
	return true
}

// Compile-time interface verification.
var (
	_ Entity = (*Area)(nil)
	_ Entity = (*Category)(nil)
	_ Entity = (*Publisher)(nil)
	_ Entity = (*Journal)(nil)
)
