package dispatch

import (
	"encoding/json"

	"github.com/garageops/dispatch-service/internal/domain"
)

// QuoteLine is one row of a quote's itemized breakdown.
type QuoteLine struct {
	Item      string  `json:"item"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`
}

// PartLine pairs a resolved catalog part with the quantity consumed.
type PartLine struct {
	Part     domain.Part
	Quantity int
}

// BuildQuote prices parts plus labor into a fresh, unapproved quote. The labor
// line is included only when hours were reported. Rebuilding replaces any
// previous quote wholesale.
func BuildQuote(parts []PartLine, laborHours, laborRate float64, currency string) (domain.Quote, []QuoteLine) {
	var total float64
	lines := make([]QuoteLine, 0, len(parts)+1)

	for _, p := range parts {
		subtotal := p.Part.Price * float64(p.Quantity)
		total += subtotal
		lines = append(lines, QuoteLine{
			Item:      p.Part.Name,
			Qty:       float64(p.Quantity),
			UnitPrice: p.Part.Price,
			Subtotal:  subtotal,
		})
	}

	if laborCost := laborHours * laborRate; laborCost > 0 {
		total += laborCost
		lines = append(lines, QuoteLine{
			Item:      "Labor",
			Qty:       laborHours,
			UnitPrice: laborRate,
			Subtotal:  laborCost,
		})
	}

	details, _ := json.Marshal(lines)
	return domain.Quote{
		Amount:   total,
		Currency: currency,
		Details:  string(details),
		Approved: false,
	}, lines
}
