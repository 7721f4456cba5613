package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rippleeffect/charity-service/internal/domain"
	"github.com/rippleeffect/charity-service/internal/ports"
)

type PurchaseInput struct {
	UserID  string
	Charity string
	// Purchase takes precedence over PurchaseTotal when set.
	Purchase      *domain.Purchase
	PurchaseTotal decimal.Decimal
	// Destination replaces the stored payout account when non-empty.
	Destination string
}

type LedgerEntry struct {
	Charity string
	RoundUp decimal.Decimal
	Balance domain.Balance
}

// RecordPurchase adds the spare change of one purchase to the charity's
// pending balance.
func (s *CharityService) RecordPurchase(ctx context.Context, in PurchaseInput) (*LedgerEntry, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	charity := strings.TrimSpace(in.Charity)
	if charity == "" {
		return nil, domain.ErrEmptyName
	}

	total := in.PurchaseTotal
	if in.Purchase != nil {
		if in.Purchase.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price %s", domain.ErrInvalidAmount, in.Purchase.Price)
		}
		total = in.Purchase.Total()
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("%w: total %s", domain.ErrInvalidAmount, total)
	}
	roundUp := domain.RoundUp(total)

	var entry LedgerEntry
	_, err := s.store.UpdateProfile(ctx, in.UserID, func(p *domain.UserProfile) error {
		key, ok := p.BalanceKey(charity)
		if !ok {
			key = charity
		}
		b := p.Balances[key]
		b.Amount = b.Amount.Add(roundUp)
		if d := strings.TrimSpace(in.Destination); d != "" {
			b.Destination = d
		}
		p.Balances[key] = b
		entry = LedgerEntry{Charity: key, RoundUp: roundUp, Balance: b}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", in.UserID).
		Str("charity", entry.Charity).
		Str("round_up", roundUp.StringFixed(2)).
		Str("balance", entry.Balance.Amount.StringFixed(2)).
		Msg("round-up recorded")
	return &entry, nil
}

var errSessionApplied = errors.New("checkout session already applied")

// ConfirmDonation applies a paid checkout to the profile: the balance is
// debited (never below zero) and the donation counters move. Replays of the
// same session are ignored. Debiting the paid amount rather than resetting
// the balance to zero keeps round-ups recorded while the checkout was open;
// with nothing accrued in between the balance ends at zero either way.
func (s *CharityService) ConfirmDonation(ctx context.Context, c domain.CheckoutCompletion) error {
	if err := requireUser(c.UserID); err != nil {
		return err
	}
	if c.SessionID == "" {
		return fmt.Errorf("%w: session id is empty", domain.ErrInvalidArgument)
	}
	if !c.Amount.IsPositive() {
		return fmt.Errorf("%w: paid amount %s", domain.ErrInvalidAmount, c.Amount)
	}

	var fn ports.ProfileUpdate = func(p *domain.UserProfile) error {
		if p.SessionCompleted(c.SessionID) {
			return errSessionApplied
		}
		if key, ok := p.BalanceKey(c.Charity); ok {
			b := p.Balances[key]
			b.Amount = decimal.Max(b.Amount.Sub(c.Amount), decimal.Zero)
			p.Balances[key] = b
		}
		p.DonationCount++
		p.TotalDonated = p.TotalDonated.Add(c.Amount)
		p.MarkSessionCompleted(c.SessionID)
		return nil
	}

	p, err := s.store.UpdateProfile(ctx, c.UserID, fn)
	if errors.Is(err, errSessionApplied) {
		s.logger.Info().Str("session_id", c.SessionID).Msg("checkout already applied")
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("user_id", c.UserID).
		Str("charity", c.Charity).
		Str("amount", c.Amount.StringFixed(2)).
		Int("donations", p.DonationCount).
		Msg("donation confirmed")
	return nil
}
