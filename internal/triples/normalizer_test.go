package triples

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "http://example.org/journal/"

func TestLocalName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: base + "title", expected: "title"},
		{input: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type", expected: "type"},
		{input: "http://example.org/a#b/c", expected: "c"},
		{input: "http://example.org/a/b#c", expected: "c"},
		{input: "title", expected: "title"},
		{input: "http://example.org/", expected: "http://example.org/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, LocalName(tt.input))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("groups a subject into one wide record", func(t *testing.T) {
		rel := Relation{
			{Subject: "J1", Predicate: "title", Object: "Nature"},
			{Subject: "J1", Predicate: "language", Object: "en"},
			{Subject: "J1", Predicate: "language", Object: "fr"},
		}

		records, dropped := Normalize(rel)
		require.Len(t, records, 1)
		assert.Zero(t, dropped)

		rec := records[0]
		assert.Equal(t, "J1", rec.URI)
		assert.Equal(t, "Nature", rec.Scalar("title"))

		title, ok := rec.Field("title")
		require.True(t, ok)
		assert.True(t, title.IsScalar())

		lang, ok := rec.Field("language")
		require.True(t, ok)
		assert.False(t, lang.IsScalar())
		assert.Equal(t, []string{"en", "fr"}, rec.Values("language"))
		assert.Equal(t, []string{"title", "language"}, rec.FieldNames())
	})

	t.Run("uses predicate local names", func(t *testing.T) {
		rel := Relation{
			{Subject: base + "1234-5678", Predicate: base + "title", Object: "Nature"},
			{Subject: base + "1234-5678", Predicate: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type", Object: base + "Journal"},
		}

		records, _ := Normalize(rel)
		require.Len(t, records, 1)
		assert.Equal(t, "Nature", records[0].Scalar("title"))
		assert.Equal(t, base+"Journal", records[0].Scalar("type"))
	})

	t.Run("empty input yields empty record set", func(t *testing.T) {
		records, dropped := Normalize(nil)
		assert.NotNil(t, records)
		assert.Empty(t, records)
		assert.Zero(t, dropped)
	})

	t.Run("identical repeated values collapse to a scalar", func(t *testing.T) {
		rel := Relation{
			{Subject: "J1", Predicate: "language", Object: "en"},
			{Subject: "J1", Predicate: "language", Object: "en"},
		}

		records, _ := Normalize(rel)
		require.Len(t, records, 1)

		f, _ := records[0].Field("language")
		assert.True(t, f.IsScalar())
		assert.Equal(t, []string{"en"}, records[0].Values("language"))
	})

	t.Run("multiple distinct values keep duplicates in order", func(t *testing.T) {
		rel := Relation{
			{Subject: "J1", Predicate: "language", Object: "en"},
			{Subject: "J1", Predicate: "language", Object: "fr"},
			{Subject: "J1", Predicate: "language", Object: "en"},
		}

		records, _ := Normalize(rel)
		require.Len(t, records, 1)
		assert.Equal(t, []string{"en", "fr", "en"}, records[0].Values("language"))
	})

	t.Run("decorated and plain literals are distinct", func(t *testing.T) {
		rel := Relation{
			{Subject: "J1", Predicate: "title", Object: "Nature"},
			{Subject: "J1", Predicate: "title", Object: "Nature", Lang: "en"},
		}

		records, _ := Normalize(rel)
		require.Len(t, records, 1)

		f, _ := records[0].Field("title")
		assert.False(t, f.IsScalar())
		assert.Equal(t, []string{"Nature", "Nature"}, f.Values())
	})

	t.Run("skips rows without subject or predicate", func(t *testing.T) {
		rel := Relation{
			{Subject: "", Predicate: "title", Object: "Orphan"},
			{Subject: "J1", Predicate: "", Object: "x"},
			{Subject: "J1", Predicate: "title", Object: "Nature"},
		}

		records, dropped := Normalize(rel)
		require.Len(t, records, 1)
		assert.Equal(t, 2, dropped)
		assert.Equal(t, []string{"title"}, records[0].FieldNames())
	})

	t.Run("records follow first appearance of subjects", func(t *testing.T) {
		rel := Relation{
			{Subject: "J2", Predicate: "title", Object: "B"},
			{Subject: "J1", Predicate: "title", Object: "A"},
			{Subject: "J2", Predicate: "apc", Object: "true"},
		}

		records, _ := Normalize(rel)
		require.Len(t, records, 2)
		assert.Equal(t, "J2", records[0].URI)
		assert.Equal(t, "J1", records[1].URI)
		assert.Equal(t, "true", records[0].Scalar("apc"))
	})

	t.Run("absent fields read as empty", func(t *testing.T) {
		records, _ := Normalize(Relation{{Subject: "J1", Predicate: "title", Object: "A"}})
		require.Len(t, records, 1)

		assert.False(t, records[0].Has("publisher"))
		assert.Equal(t, "", records[0].Scalar("publisher"))
		assert.Equal(t, []string{}, records[0].Values("language"))
	})
}

func TestNormalize_Idempotent(t *testing.T) {
	rel := Relation{
		{Subject: "J1", Predicate: "title", Object: "Nature"},
		{Subject: "J1", Predicate: "language", Object: "en"},
		{Subject: "J1", Predicate: "language", Object: "fr"},
		{Subject: "J2", Predicate: "title", Object: "Science"},
	}

	first, _ := Normalize(rel)
	second, _ := Normalize(rel)
	assert.Equal(t, first, second)
}

func TestNormalize_CardinalityLaw(t *testing.T) {
	for k := 1; k <= 5; k++ {
		t.Run(fmt.Sprintf("%d values", k), func(t *testing.T) {
			var rel Relation
			var want []string
			for i := 0; i < k; i++ {
				v := fmt.Sprintf("v%d", i)
				rel = append(rel, Triple{Subject: "S", Predicate: "f", Object: v})
				want = append(want, v)
			}

			records, _ := Normalize(rel)
			require.Len(t, records, 1)

			f, ok := records[0].Field("f")
			require.True(t, ok)
			assert.Equal(t, k == 1, f.IsScalar())
			assert.Equal(t, want, f.Values())
		})
	}
}

func TestDedup(t *testing.T) {
	rel := Relation{
		{Subject: "J1", Predicate: "title", Object: "Nature"},
		{Subject: "J1", Predicate: "title", Object: "Nature"},
		{Subject: "J1", Predicate: "title", Object: "Nature", Lang: "en"},
		{Subject: "J2", Predicate: "title", Object: "Nature"},
	}

	out := Dedup(rel)
	assert.Equal(t, Relation{rel[0], rel[2], rel[3]}, out)
	assert.Equal(t, Relation{}, Dedup(nil))
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("J1", map[string][]string{
		"title":    {"Nature"},
		"language": {"en", "fr"},
	})

	assert.Equal(t, "J1", rec.URI)
	assert.Equal(t, "Nature", rec.Scalar("title"))
	assert.Equal(t, []string{"en", "fr"}, rec.Values("language"))
	assert.Equal(t, []string{"language", "title"}, rec.FieldNames())
}
