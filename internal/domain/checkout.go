package domain

import "github.com/shopspring/decimal"

// CheckoutRequest is what the reconciler hands to the payment collaborator.
type CheckoutRequest struct {
	UserID      string          `json:"user_id"`
	Charity     string          `json:"charity"`
	Amount      decimal.Decimal `json:"amount"`
	Destination string          `json:"destination"`
}

// AmountCents converts Amount to the smallest currency unit.
func (r CheckoutRequest) AmountCents() int64 {
	return r.Amount.Shift(2).Round(0).IntPart()
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutCompletion is reported asynchronously once the payment collaborator
// confirms a session was paid.
type CheckoutCompletion struct {
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Charity   string          `json:"charity"`
	Amount    decimal.Decimal `json:"amount"`
}
