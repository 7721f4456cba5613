package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rippleeffect/charity-service/internal/domain"
)

type AddInterestInput struct {
	UserID  string
	RawName string
	Verdict domain.VerificationVerdict
	// ConfirmUnverified accepts RawName as typed when the verdict is not
	// Valid.
	ConfirmUnverified bool
}

type AddInterestResult struct {
	Interests     []string
	Charity       domain.CharityRecord
	Created       bool
	EffectiveName string
	Verified      bool
}

// AddInterest appends a charity to the user's interest list, creating its
// directory record on first sight. The duplicate check, directory insert
// and append commit together.
func (s *CharityService) AddInterest(ctx context.Context, in AddInterestInput) (*AddInterestResult, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	raw := strings.TrimSpace(in.RawName)
	if raw == "" {
		return nil, domain.ErrEmptyName
	}

	var (
		name     string
		verified bool
		verdict  *domain.VerificationVerdict
	)
	switch {
	case in.Verdict.Valid():
		name, verified, verdict = strings.TrimSpace(in.Verdict.CanonicalName), true, &in.Verdict
	case in.ConfirmUnverified:
		name = raw
	default:
		return nil, domain.ErrConfirmationRequired
	}

	return s.commitInterest(ctx, in.UserID, name, verified, func(p *domain.UserProfile) domain.CharityRecord {
		return s.recordFromVerdict(name, verdict, p)
	})
}

// AddNearbyCharity adds a suggestion from FindNearby. The charity is placed
// in the user's own declared location.
func (s *CharityService) AddNearbyCharity(ctx context.Context, userID string, n domain.NearbyCharity) (*AddInterestResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(n.Name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}

	return s.commitInterest(ctx, userID, name, false, func(p *domain.UserProfile) domain.CharityRecord {
		rec := s.newRecord(name)
		if d := strings.TrimSpace(n.Description); d != "" {
			rec.Description = d
		}
		if n.Category != "" {
			rec.Category = domain.ParseCategory(string(n.Category))
		}
		rec.Location = domain.Location{City: p.City, State: p.State, Country: p.Country}.WithDefaults()
		rec.Location.IsLocal = true
		return rec
	})
}

func (s *CharityService) commitInterest(ctx context.Context, userID, name string, verified bool, build func(p *domain.UserProfile) domain.CharityRecord) (*AddInterestResult, error) {
	key := domain.NormalizeName(name)
	var created bool
	rec, profile, err := s.store.CommitInterest(ctx, userID, key, func(p *domain.UserProfile, existing *domain.CharityRecord) (*domain.CharityRecord, error) {
		created = false
		if domain.IsDuplicate(name, p.Interests) {
			return nil, domain.ErrDuplicateCharity
		}
		rec := existing
		if rec == nil {
			r := build(p)
			rec, created = &r, true
		}
		p.Interests = append(p.Interests, name)
		return rec, nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateCharity) {
			s.logger.Error().Err(err).Str("user_id", userID).Str("charity", name).Msg("failed to add interest")
		}
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("charity", name).
		Str("charity_id", rec.ID).
		Bool("created", created).
		Bool("verified", verified).
		Msg("interest added")
	return &AddInterestResult{
		Interests:     profile.Interests,
		Charity:       *rec,
		Created:       created,
		EffectiveName: name,
		Verified:      verified,
	}, nil
}

func (s *CharityService) newRecord(name string) domain.CharityRecord {
	return domain.CharityRecord{
		ID:          s.newID(),
		Key:         domain.NormalizeName(name),
		Name:        name,
		Description: domain.DefaultDescription,
		Category:    domain.DefaultCategory,
		Location:    domain.Location{}.WithDefaults(),
		CreatedAt:   s.now().UTC(),
	}
}

// recordFromVerdict fills what the verdict knows and defaults the rest.
// isLocal compares the charity state with the user's declared state.
func (s *CharityService) recordFromVerdict(name string, v *domain.VerificationVerdict, p *domain.UserProfile) domain.CharityRecord {
	rec := s.newRecord(name)
	loc := domain.Location{}
	if v != nil {
		if v.Description != "" {
			rec.Description = v.Description
		}
		if v.Category != "" {
			rec.Category = v.Category
		}
		if v.Location != nil {
			loc = *v.Location
		}
	}
	rec.Location = loc.WithDefaults()
	rec.Location.IsLocal = domain.SameState(rec.Location.State, p.State)
	return rec
}

type Donation struct {
	Charity     string
	Amount      decimal.Decimal
	Destination string
	Session     domain.CheckoutSession
}

// Donate opens a checkout for the whole pending balance of charityName. The
// balance is only debited once the payment is confirmed.
func (s *CharityService) Donate(ctx context.Context, userID, charityName string) (*Donation, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	charityName = strings.TrimSpace(charityName)
	if charityName == "" {
		return nil, domain.ErrEmptyName
	}

	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoBalance
	}
	if err != nil {
		return nil, err
	}

	key, ok := p.BalanceKey(charityName)
	if !ok {
		return nil, domain.ErrNoBalance
	}
	b := p.Balances[key]
	switch {
	case !b.Amount.IsPositive():
		return nil, domain.ErrNoBalance
	case b.Destination == "":
		return nil, domain.ErrMissingDestination
	case b.Amount.LessThan(s.minimum):
		return nil, fmt.Errorf("%w: %s < %s", domain.ErrBelowMinimum, b.Amount.StringFixed(2), s.minimum.StringFixed(2))
	}

	session, err := s.checkout.CreateSession(ctx, domain.CheckoutRequest{
		UserID:      userID,
		Charity:     key,
		Amount:      b.Amount,
		Destination: b.Destination,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("charity", key).
		Str("amount", b.Amount.StringFixed(2)).
		Str("session_id", session.ID).
		Msg("checkout started")
	return &Donation{Charity: key, Amount: b.Amount, Destination: b.Destination, Session: *session}, nil
}
