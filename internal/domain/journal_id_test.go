package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercases", input: "Nature", expected: "nature"},
		{name: "collapses separators", input: "Journal of  Plant -- Science", expected: "journal-of-plant-science"},
		{name: "trims separators", input: "  (Annals) ", expected: "annals"},
		{name: "drops non-ascii letters", input: "Revista Española", expected: "revista-espa-ola"},
		{name: "empty", input: "", expected: ""},
		{name: "only punctuation", input: "!!!", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestResolveJournalID(t *testing.T) {
	tests := []struct {
		name     string
		ids      JournalIdentifiers
		expected string
	}{
		{
			name:     "printed ISSN wins",
			ids:      JournalIdentifiers{ISSN: " 1234-5678 ", EISSN: "8765-4321", Title: "Nature"},
			expected: "1234-5678",
		},
		{
			name:     "electronic ISSN second",
			ids:      JournalIdentifiers{EISSN: "8765-4321", Title: "Nature"},
			expected: "8765-4321",
		},
		{
			name:     "title slug third",
			ids:      JournalIdentifiers{Title: "Plant Science Today", RowIndex: 3},
			expected: "plant-science-today",
		},
		{
			name:     "synthetic row marker last",
			ids:      JournalIdentifiers{Title: "  ", RowIndex: 7},
			expected: "row-7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ResolveJournalID(tt.ids)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}

	t.Run("no identifier", func(t *testing.T) {
		_, err := ResolveJournalID(JournalIdentifiers{RowIndex: -1})
		assert.True(t, errors.Is(err, ErrNoIdentifier))
	})
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool("true"))
	assert.True(t, ParseBool("TRUE"))
	assert.True(t, ParseBool(" True "))
	assert.False(t, ParseBool("false"))
	assert.False(t, ParseBool(""))
	assert.False(t, ParseBool("yes"))
	assert.False(t, ParseBool("1"))
}
