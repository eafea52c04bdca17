package triples

import "slices"

// Field is the aggregated value of one predicate for one subject.
// A field with exactly one distinct value is scalar; otherwise it holds every
// emitted value in insertion order, duplicates included.
type Field struct {
	values []string
}

// IsScalar reports whether the field collapsed to a single value.
func (f Field) IsScalar() bool {
	return len(f.values) == 1
}

// Scalar returns the single value, or the first one of a sequence.
func (f Field) Scalar() string {
	if len(f.values) == 0 {
		return ""
	}
	return f.values[0]
}

// Values returns the field as a sequence, wrapping a scalar.
func (f Field) Values() []string {
	out := make([]string, len(f.values))
	copy(out, f.values)
	return out
}

// Record is the wide form of one subject.
type Record struct {
	URI    string
	fields map[string]Field
	order  []string
}

// Has reports whether the record carries a field.
func (r Record) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Field returns a field and whether it is present.
func (r Record) Field(name string) (Field, bool) {
	f, ok := r.fields[name]
	return f, ok
}

// Scalar returns the scalar value of a field, or "" when absent.
func (r Record) Scalar(name string) string {
	return r.fields[name].Scalar()
}

// Values returns the sequence value of a field, or an empty slice when absent.
func (r Record) Values(name string) []string {
	f, ok := r.fields[name]
	if !ok {
		return []string{}
	}
	return f.Values()
}

// FieldNames returns the field names in first-seen order.
func (r Record) FieldNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// NewRecord builds a record directly from field values. Each value slice is
// stored as given: one element is scalar, more is a sequence. Field names are
// ordered alphabetically.
func NewRecord(uri string, fields map[string][]string) Record {
	rec := Record{URI: uri, fields: make(map[string]Field, len(fields))}
	for name, values := range fields {
		v := make([]string, len(values))
		copy(v, values)
		rec.fields[name] = Field{values: v}
		rec.order = append(rec.order, name)
	}
	slices.Sort(rec.order)
	return rec
}

type group struct {
	values []string
	terms  map[term]struct{}
}

// Normalize converts a long relation into one Record per distinct subject,
// in order of first appearance. Rows without a subject or predicate are
// skipped and counted in dropped. An empty relation yields no records.
func Normalize(rel Relation) (records []Record, dropped int) {
	if len(rel) == 0 {
		return []Record{}, 0
	}

	type subject struct {
		groups map[string]*group
		order  []string
	}
	subjects := make(map[string]*subject)
	var subjectOrder []string

	for _, t := range rel {
		if !t.Valid() {
			dropped++
			continue
		}

		s, ok := subjects[t.Subject]
		if !ok {
			s = &subject{groups: make(map[string]*group)}
			subjects[t.Subject] = s
			subjectOrder = append(subjectOrder, t.Subject)
		}

		name := LocalName(t.Predicate)
		g, ok := s.groups[name]
		if !ok {
			g = &group{terms: make(map[term]struct{})}
			s.groups[name] = g
			s.order = append(s.order, name)
		}
		g.values = append(g.values, t.Object)
		g.terms[t.term()] = struct{}{}
	}

	records = make([]Record, 0, len(subjectOrder))
	for _, uri := range subjectOrder {
		s := subjects[uri]
		rec := Record{
			URI:    uri,
			fields: make(map[string]Field, len(s.groups)),
			order:  s.order,
		}
		for _, name := range s.order {
			g := s.groups[name]
			if len(g.terms) == 1 {
				rec.fields[name] = Field{values: g.values[:1]}
				continue
			}
			rec.fields[name] = Field{values: g.values}
		}
		records = append(records, rec)
	}

	return records, dropped
}
