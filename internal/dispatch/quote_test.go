package dispatch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garageops/dispatch-service/internal/domain"
)

func TestBuildQuote(t *testing.T) {
	parts := []PartLine{
		{Part: domain.Part{Name: "Brake pads", Price: 3500}, Quantity: 2},
		{Part: domain.Part{Name: "Brake fluid", Price: 800}, Quantity: 1},
	}

	quote, lines := BuildQuote(parts, 2.5, 1000, "KES")

	// 2*3500 + 800 + 2.5*1000
	assert.Equal(t, 10300.0, quote.Amount)
	assert.Equal(t, "KES", quote.Currency)
	assert.False(t, quote.Approved)
	assert.Nil(t, quote.ApprovedAt)
	require.Len(t, lines, 3)
	assert.Equal(t, "Labor", lines[2].Item)
	assert.Equal(t, 2500.0, lines[2].Subtotal)

	var decoded []QuoteLine
	require.NoError(t, json.Unmarshal([]byte(quote.Details), &decoded))
	assert.Equal(t, lines, decoded)
}

func TestBuildQuoteNoLaborLineWithoutHours(t *testing.T) {
	parts := []PartLine{{Part: domain.Part{Name: "Oil filter", Price: 1200}, Quantity: 1}}

	quote, lines := BuildQuote(parts, 0, 1000, "KES")
	assert.Equal(t, 1200.0, quote.Amount)
	require.Len(t, lines, 1)
	assert.Equal(t, "Oil filter", lines[0].Item)
}

func TestBuildQuoteEmpty(t *testing.T) {
	quote, lines := BuildQuote(nil, 0, 1000, "KES")
	assert.Zero(t, quote.Amount)
	assert.Empty(t, lines)
	assert.Equal(t, "[]", quote.Details)
}

func TestBuildQuoteReplacesNotAccumulates(t *testing.T) {
	parts := []PartLine{{Part: domain.Part{Name: "Fan belt", Price: 900}, Quantity: 1}}

	first, _ := BuildQuote(parts, 1, 1000, "KES")
	second, _ := BuildQuote(parts, 1, 1000, "KES")
	assert.Equal(t, first.Amount, second.Amount)
}
