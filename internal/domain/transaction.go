package domain

import "github.com/shopspring/decimal"

// Purchase is a linked card purchase whose spare change is donated.
type Purchase struct {
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
	Date     string          `json:"date"` // normalized as YYYY-MM-DD
}

func (p Purchase) Total() decimal.Decimal {
	qty := p.Quantity
	if qty <= 0 {
		qty = 1
	}
	return p.Price.Mul(decimal.NewFromInt(qty))
}

// RoundUp returns the difference between total and the next whole currency
// unit. Whole totals round up by zero.
func RoundUp(total decimal.Decimal) decimal.Decimal {
	total = total.Round(2)
	return total.Ceil().Sub(total)
}
