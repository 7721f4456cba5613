package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rippleeffect/charity-service/internal/domain"
)

type Preferences struct {
	City            string
	State           string
	Country         string
	ReachOutLocally bool
}

// UpdateProfile stores the user's declared location. Reaching out locally
// needs a city and a state to compare against.
func (s *CharityService) UpdateProfile(ctx context.Context, userID string, prefs Preferences) (*domain.UserProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	prefs.City = strings.TrimSpace(prefs.City)
	prefs.State = strings.TrimSpace(prefs.State)
	prefs.Country = strings.TrimSpace(prefs.Country)
	if prefs.ReachOutLocally && (prefs.City == "" || prefs.State == "") {
		return nil, fmt.Errorf("%w: city and state are required to reach out locally", domain.ErrInvalidArgument)
	}

	return s.store.UpdateProfile(ctx, userID, func(p *domain.UserProfile) error {
		p.City, p.State, p.Country = prefs.City, prefs.State, prefs.Country
		p.ReachOutLocally = prefs.ReachOutLocally
		return nil
	})
}

type BalanceView struct {
	Charity     string
	Amount      decimal.Decimal
	Destination string
}

type Dashboard struct {
	UserID         string
	Location       domain.Location
	DonationCount  int
	TotalDonated   decimal.Decimal
	PendingBalance decimal.Decimal
	Balances       []BalanceView
	Interests      []string
	// Charities holds the directory records of Interests, in the same
	// order, skipping names the directory does not know.
	Charities []domain.CharityRecord
	Rewards   domain.Rewards
}

func (s *CharityService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		p = domain.NewUserProfile(userID)
	} else if err != nil {
		return nil, err
	}

	d := &Dashboard{
		UserID:         userID,
		Location:       domain.Location{City: p.City, State: p.State, Country: p.Country},
		DonationCount:  p.DonationCount,
		TotalDonated:   p.TotalDonated,
		PendingBalance: p.PendingTotal(),
		Balances:       make([]BalanceView, 0, len(p.Balances)),
		Interests:      p.Interests,
		Charities:      []domain.CharityRecord{},
		Rewards:        domain.RewardsFor(p.DonationCount),
	}
	for name, b := range p.Balances {
		d.Balances = append(d.Balances, BalanceView{Charity: name, Amount: b.Amount, Destination: b.Destination})
	}
	sort.Slice(d.Balances, func(i, j int) bool { return d.Balances[i].Charity < d.Balances[j].Charity })

	for _, name := range p.Interests {
		rec, err := s.store.FindCharity(ctx, domain.NormalizeName(name))
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		d.Charities = append(d.Charities, *rec)
	}
	return d, nil
}

// Directory lists the shared charity directory.
func (s *CharityService) Directory(ctx context.Context) ([]domain.CharityRecord, error) {
	return s.store.ListCharities(ctx)
}
