package portfolio

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/coinboard/internal/models"
)

func TestAddOrAccumulate_MergesNormalizedIDs(t *testing.T) {
	p := New(nil)

	require.NoError(t, p.AddOrAccumulate("btc", 1))
	require.NoError(t, p.AddOrAccumulate("BTC", 2))

	assert.Equal(t, []models.PortfolioEntry{{ID: "btc", Quantity: 3}}, p.Entries())
}

func TestAddOrAccumulate_KeepsInsertionOrder(t *testing.T) {
	p := New(nil)
	require.NoError(t, p.AddOrAccumulate("eth", 1))
	require.NoError(t, p.AddOrAccumulate(" Bitcoin ", 0.5))
	require.NoError(t, p.AddOrAccumulate("ETH", 1))

	assert.Equal(t, []models.PortfolioEntry{
		{ID: "eth", Quantity: 2},
		{ID: "bitcoin", Quantity: 0.5},
	}, p.Entries())
}

func TestAddOrAccumulate_RejectsInvalidInput(t *testing.T) {
	p := New([]models.PortfolioEntry{{ID: "eth", Quantity: 1}})
	before := p.Entries()

	tests := []struct {
		name     string
		id       string
		quantity float64
		field    string
	}{
		{"negative", "eth", -1, "quantity"},
		{"zero", "eth", 0, "quantity"},
		{"NaN", "eth", math.NaN(), "quantity"},
		{"infinite", "eth", math.Inf(1), "quantity"},
		{"empty name", "   ", 1, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.AddOrAccumulate(tt.id, tt.quantity)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, before, p.Entries())
		})
	}
}

func TestRemove(t *testing.T) {
	p := New([]models.PortfolioEntry{{ID: "btc", Quantity: 1}, {ID: "eth", Quantity: 2}, {ID: "sol", Quantity: 3}})

	removed, err := p.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, "eth", removed.ID)
	assert.Equal(t, []models.PortfolioEntry{{ID: "btc", Quantity: 1}, {ID: "sol", Quantity: 3}}, p.Entries())

	_, err = p.Remove(2)
	assert.Error(t, err)
	_, err = p.Remove(-1)
	assert.Error(t, err)
	assert.Len(t, p.Entries(), 2)
}

func TestNew_MergesStoredDuplicatesAndDropsInvalid(t *testing.T) {
	p := New([]models.PortfolioEntry{{ID: "BTC", Quantity: 1}, {ID: "btc", Quantity: 1}, {ID: "eth", Quantity: -4}})
	assert.Equal(t, []models.PortfolioEntry{{ID: "btc", Quantity: 2}}, p.Entries())
}

func TestEntries_ReturnsCopy(t *testing.T) {
	p := New([]models.PortfolioEntry{{ID: "btc", Quantity: 1}})
	entries := p.Entries()
	entries[0].Quantity = 99
	assert.Equal(t, 1.0, p.Entries()[0].Quantity)
}

func TestValuate(t *testing.T) {
	quotes := []models.Quote{{ID: "btc", Symbol: "btc", Price: decimal.NewFromInt(50000)}}

	p := New([]models.PortfolioEntry{{ID: "btc", Quantity: 2}})
	assert.True(t, p.Valuate(quotes).Equal(decimal.NewFromInt(100000)))

	require.NoError(t, p.AddOrAccumulate("unknowncoin", 10))
	assert.True(t, p.Valuate(quotes).Equal(decimal.NewFromInt(100000)), "unmatched entries contribute zero")

	assert.True(t, New(nil).Valuate(quotes).IsZero())
}

func TestValuate_MatchesIDOrSymbol(t *testing.T) {
	quotes := []models.Quote{
		{ID: "bitcoin", Symbol: "btc", Price: decimal.NewFromInt(50000)},
		{ID: "ethereum", Symbol: "eth", Price: decimal.NewFromInt(3000)},
	}
	p := New([]models.PortfolioEntry{{ID: "btc", Quantity: 0.5}, {ID: "ethereum", Quantity: 2}})

	assert.True(t, p.Valuate(quotes).Equal(decimal.NewFromInt(31000)))

	lines := p.Breakdown(quotes)
	require.Len(t, lines, 2)
	assert.True(t, lines[0].Matched)
	assert.Equal(t, "bitcoin", lines[0].Quote.ID)
	assert.True(t, lines[0].Value.Equal(decimal.NewFromInt(25000)))
	assert.True(t, lines[1].Value.Equal(decimal.NewFromInt(6000)))
}
