package resolver

import (
	"testing"
	"time"

	"whatsorders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver() *Resolver {
	table := &AliasTable{}
	table.Register("GreenLeaf", 1, 1)
	table.Register("Sunrise Farms", 2, 2)
	return New(table)
}

func contextMessage(body string, manual, inferred *int64) *models.Message {
	return &models.Message{
		ExternalID:        "wamid.prior",
		ChatKey:           "chat-1",
		Body:              body,
		OccurredAt:        time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		ManualCompanyID:   manual,
		InferredCompanyID: inferred,
	}
}

func TestResolveManualWins(t *testing.T) {
	r := testResolver()

	manual := int64(99)
	msg := &models.Message{Body: "greenleaf order", ManualCompanyID: &manual}

	got := r.Resolve(msg, nil)
	require.NotNil(t, got)
	assert.Equal(t, int64(99), *got)
}

func TestResolveDirectAlias(t *testing.T) {
	r := testResolver()

	msg := &models.Message{Body: "2 boxes for sunrise farms please"}
	got := r.Resolve(msg, nil)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), *got)
}

func TestResolveDirectAliasBeatsContext(t *testing.T) {
	r := testResolver()

	inferred := int64(7)
	recent := []*models.Message{contextMessage("earlier", nil, &inferred)}

	msg := &models.Message{Body: "greenleaf again"}
	got := r.Resolve(msg, recent)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), *got)
}

func TestResolveInheritsFromContext(t *testing.T) {
	r := testResolver()

	tests := []struct {
		name     string
		recent   []*models.Message
		expected *int64
	}{
		{
			name: "prior message names a company",
			recent: []*models.Message{
				contextMessage("greenleaf: 2 crates tomatoes", nil, nil),
			},
			expected: companyID(1),
		},
		{
			name: "prior message carries an inference",
			recent: []*models.Message{
				contextMessage("and some onions", nil, companyID(2)),
			},
			expected: companyID(2),
		},
		{
			name: "prior manual assignment inherits too",
			recent: []*models.Message{
				contextMessage("same as usual", companyID(5), nil),
			},
			expected: companyID(5),
		},
		{
			name: "nearest prior wins over older match",
			recent: []*models.Message{
				contextMessage("sunrise farms delivery", nil, nil),
				contextMessage("greenleaf invoice", nil, nil),
			},
			expected: companyID(2),
		},
		{
			name: "skips unresolvable context",
			recent: []*models.Message{
				contextMessage("ok thanks", nil, nil),
				contextMessage("greenleaf invoice", nil, nil),
			},
			expected: companyID(1),
		},
		{
			name:     "no context no match",
			recent:   nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &models.Message{Body: "add 1 bag of carrots"}
			got := r.Resolve(msg, tt.recent)
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.expected, *got)
			}
		})
	}
}

func TestResolveNoneIsValid(t *testing.T) {
	r := testResolver()

	msg := &models.Message{Body: "see you tomorrow"}
	assert.Nil(t, r.Resolve(msg, nil))
}
