package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// maxCompletedSessions bounds the checkout session ids remembered per profile.
const maxCompletedSessions = 50

// Balance is the accumulated, not yet paid out round-up amount owed to one
// charity.
type Balance struct {
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
}

// UserProfile is the per-user document. Interests and Balances are private
// to the user and only mutated through the store's atomic update.
type UserProfile struct {
	UserID            string             `json:"user_id"`
	City              string             `json:"city"`
	State             string             `json:"state"`
	Country           string             `json:"country"`
	ReachOutLocally   bool               `json:"reach_out_locally"`
	Interests         []string           `json:"interests"`
	Balances          map[string]Balance `json:"balances"`
	DonationCount     int                `json:"donation_count"`
	TotalDonated      decimal.Decimal    `json:"total_donated"`
	CompletedSessions []string           `json:"completed_sessions"`
	Version           int64              `json:"version"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:    userID,
		Interests: []string{},
		Balances:  map[string]Balance{},
	}
}

// Clone returns a deep copy so callers can mutate without aliasing store
// state.
func (p *UserProfile) Clone() *UserProfile {
	c := *p
	c.Interests = append([]string{}, p.Interests...)
	c.CompletedSessions = append([]string{}, p.CompletedSessions...)
	c.Balances = make(map[string]Balance, len(p.Balances))
	for k, v := range p.Balances {
		c.Balances[k] = v
	}
	return &c
}

// BalanceKey resolves name to the key used in Balances: the exact entry if
// present, otherwise the first entry with the same normalized name.
func (p *UserProfile) BalanceKey(name string) (string, bool) {
	if _, ok := p.Balances[name]; ok {
		return name, true
	}
	key := NormalizeName(name)
	for k := range p.Balances {
		if NormalizeName(k) == key {
			return k, true
		}
	}
	return "", false
}

// PendingTotal sums every balance not yet paid out.
func (p *UserProfile) PendingTotal() decimal.Decimal {
	total := decimal.Zero
	for _, b := range p.Balances {
		total = total.Add(b.Amount)
	}
	return total
}

func (p *UserProfile) SessionCompleted(id string) bool {
	for _, s := range p.CompletedSessions {
		if s == id {
			return true
		}
	}
	return false
}

func (p *UserProfile) MarkSessionCompleted(id string) {
	p.CompletedSessions = append(p.CompletedSessions, id)
	if n := len(p.CompletedSessions); n > maxCompletedSessions {
		p.CompletedSessions = p.CompletedSessions[n-maxCompletedSessions:]
	}
}
