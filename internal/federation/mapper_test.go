package federation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/journal-federation-service/internal/domain"
	"github.com/helixir/journal-federation-service/internal/sources"
	"github.com/helixir/journal-federation-service/internal/triples"
)

func TestJournalIDs(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string][]string
		expected []string
	}{
		{"stored id", map[string][]string{"id": {"1234-5678"}}, []string{"1234-5678"}},
		{"several stored ids", map[string][]string{"id": {"1234-5678", "2049-3630"}}, []string{"1234-5678", "2049-3630"}},
		{"id then eissn", map[string][]string{"id": {"1234-5678"}, "eissn": {"2049-3630"}}, []string{"1234-5678", "2049-3630"}},
		{"eissn when no id", map[string][]string{"eissn": {"2049-3630"}, "title": {"Nature"}}, []string{"2049-3630"}},
		{"title slug", map[string][]string{"title": {"Nature Reviews: Cancer!"}}, []string{"nature-reviews-cancer"}},
		{"subject local name", map[string][]string{"language": {"en"}}, []string{"J9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := triples.NewRecord("http://application.org/journal/J9", tt.fields)
			ids := journalIDs(rec)

			j, err := domain.NewJournal(ids, domain.JournalAttributes{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, j.IDs())
		})
	}
}

func TestToJournal(t *testing.T) {
	t.Run("scalar language is wrapped", func(t *testing.T) {
		j, err := toJournal(triples.NewRecord("J1", map[string][]string{
			"id":       {"1234-5678"},
			"language": {"en"},
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"en"}, j.Languages)
	})

	t.Run("boolean coercion", func(t *testing.T) {
		tests := []struct {
			value    string
			expected bool
		}{
			{"true", true},
			{"TRUE", true},
			{" True ", true},
			{"false", false},
			{"yes", false},
			{"1", false},
			{"", false},
		}
		for _, tt := range tests {
			j, err := toJournal(triples.NewRecord("J1", map[string][]string{
				"id":   {"1234-5678"},
				"apc":  {tt.value},
				"seal": {tt.value},
			}))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, j.HasAPC, "apc %q", tt.value)
			assert.Equal(t, tt.expected, j.HasDOAJSeal, "seal %q", tt.value)
		}
	})

	t.Run("absent fields take zero values", func(t *testing.T) {
		j, err := toJournal(triples.NewRecord("J1", map[string][]string{"id": {"1234-5678"}}))
		require.NoError(t, err)
		assert.Empty(t, j.Title)
		assert.Nil(t, j.Publisher)
		assert.Equal(t, []string{}, j.Languages)
		assert.Empty(t, j.Licence)
		assert.False(t, j.HasAPC)
		assert.False(t, j.HasDOAJSeal)
	})

	t.Run("licence is preferred over license", func(t *testing.T) {
		j, err := toJournal(triples.NewRecord("J1", map[string][]string{
			"id":      {"1234-5678"},
			"licence": {"CC BY"},
			"license": {"CC0"},
		}))
		require.NoError(t, err)
		assert.Equal(t, "CC BY", j.Licence)
	})
}

func TestToCategories(t *testing.T) {
	categories, dropped := toCategories([]sources.CategoryRow{
		{CategoryID: "Oncology", Quartile: "Q1", Area: "Medicine"},
		{CategoryID: "Botany", Quartile: "", Area: ""},
		{CategoryID: "", Quartile: "Q2", Area: "Medicine"},
		{CategoryID: "Physics", Quartile: "Q5", Area: "Science"},
	})

	assert.Equal(t, 1, dropped)
	require.Len(t, categories, 3)

	assert.Equal(t, "Oncology", categories[0].Title)
	assert.Equal(t, "Medicine", categories[0].Area.PrimaryID())

	assert.Nil(t, categories[1].Area)
	assert.False(t, categories[1].Quartile.IsSet())

	assert.Equal(t, domain.Quartile("Q5"), categories[2].Quartile)
	assert.False(t, categories[2].Quartile.IsKnown())
}

func TestToAreas(t *testing.T) {
	areas, dropped := toAreas([]string{"Medicine", "", "Plant Science"})
	assert.Equal(t, 1, dropped)
	require.Len(t, areas, 2)
	assert.Equal(t, "Medicine", areas[0].Name)
	assert.Equal(t, []string{"Plant Science"}, areas[1].IDs())
}

func TestSet(t *testing.T) {
	empty := newSet([]string{" ", ""})
	assert.True(t, empty.allows("anything"))
	assert.True(t, empty.allowsAny(nil))

	s := newSet([]string{"Q1", " Q2 "})
	assert.True(t, s.allows("Q2"))
	assert.False(t, s.allows("Q3"))
	assert.True(t, s.allowsAny([]string{"Q4", "Q1"}))
	assert.False(t, s.allowsAny([]string{}))
}
