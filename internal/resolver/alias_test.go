package resolver

import (
	"testing"

	"whatsorders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "GreenLeaf", "greenleaf"},
		{"punctuation becomes space", "green-leaf, ltd.", "green leaf ltd"},
		{"collapses runs", "green   leaf!!!co", "green leaf co"},
		{"trims edges", "  #greenleaf# ", "greenleaf"},
		{"digits kept", "farm24", "farm24"},
		{"empty", "", ""},
		{"only punctuation", "?!—…", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestAliasTableResolve(t *testing.T) {
	table := &AliasTable{}
	table.Register("GreenLeaf", 1, 1)
	table.Register("Sunrise Farms", 2, 2)

	tests := []struct {
		name     string
		text     string
		expected *int64
	}{
		{"exact", "GreenLeaf", companyID(1)},
		{"substring", "order for greenleaf: 2 crates", companyID(1)},
		{"case insensitive", "GREENLEAF delivery tomorrow", companyID(1)},
		{"punctuation ignored", "green-leaf needs potatoes", companyID(1)},
		{"multi word alias", "the sunrise farms stand", companyID(2)},
		{"no match", "nothing to see here", nil},
		{"empty text", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Resolve(tt.text)
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.expected, *got)
			}
		})
	}
}

func TestAliasTableLongestMatchWins(t *testing.T) {
	table := &AliasTable{}
	table.Register("Green", 1, 1)
	table.Register("GreenLeaf", 2, 2)

	got := table.Resolve("invoice for greenleaf attached")
	require.NotNil(t, got)
	assert.Equal(t, int64(2), *got)

	// The shorter alias still resolves on its own.
	got = table.Resolve("green slot confirmed")
	require.NotNil(t, got)
	assert.Equal(t, int64(1), *got)
}

func TestAliasTableTieBreakEarliestRegistered(t *testing.T) {
	table := &AliasTable{}
	table.Register("alpha", 10, 5)
	table.Register("bravo", 20, 3)

	// Both aliases are five characters; the one registered first wins.
	got := table.Resolve("alpha and bravo in one message")
	require.NotNil(t, got)
	assert.Equal(t, int64(20), *got)
}

func TestAliasTableRegisterRepoints(t *testing.T) {
	table := &AliasTable{}
	table.Register("GreenLeaf", 1, 1)
	table.Register("green-leaf", 2, 7)

	// Same normalized text: the company changes, the entry count does not.
	assert.Equal(t, 1, table.Len())
	got := table.Resolve("greenleaf")
	require.NotNil(t, got)
	assert.Equal(t, int64(2), *got)
}

func TestAliasTableIgnoresUnmatchableAliases(t *testing.T) {
	table := &AliasTable{}
	table.Register("!!!", 1, 1)
	assert.Equal(t, 0, table.Len())
}

func TestNewAliasTableFromStoredRows(t *testing.T) {
	table := NewAliasTable([]models.CompanyAlias{
		{ID: 1, AliasText: "greenleaf", CompanyID: 1},
		{ID: 2, AliasText: "sunrise farms", CompanyID: 2},
	})

	assert.Equal(t, 2, table.Len())
	got := table.Resolve("sunrise farms order")
	require.NotNil(t, got)
	assert.Equal(t, int64(2), *got)
}

func companyID(id int64) *int64 {
	return &id
}
