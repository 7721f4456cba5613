package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rippleeffect/charity-service/internal/domain"
	"github.com/rippleeffect/charity-service/internal/usecase"
)

func TestRecordPurchase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.RecordPurchase(ctx, usecase.PurchaseInput{
		UserID: "u1", Charity: "ASPCA", PurchaseTotal: dec("4.63"), Destination: "acct_1",
	})
	require.NoError(t, err)
	assert.True(t, dec("0.37").Equal(e.RoundUp))

	e, err = f.svc.RecordPurchase(ctx, usecase.PurchaseInput{
		UserID:   "u1",
		Charity:  "aspca",
		Purchase: &domain.Purchase{Title: "Coffee", Price: dec("2.25"), Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "ASPCA", e.Charity, "existing balance entry is reused")
	assert.True(t, dec("0.50").Equal(e.RoundUp))
	assert.True(t, dec("0.87").Equal(e.Balance.Amount))
	assert.Equal(t, "acct_1", e.Balance.Destination)

	e, err = f.svc.RecordPurchase(ctx, usecase.PurchaseInput{UserID: "u1", Charity: "ASPCA", PurchaseTotal: dec("10")})
	require.NoError(t, err)
	assert.True(t, e.RoundUp.IsZero())
}

func TestRecordPurchaseRejectsNegative(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.RecordPurchase(context.Background(), usecase.PurchaseInput{UserID: "u1", Charity: "ASPCA", PurchaseTotal: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.svc.RecordPurchase(context.Background(), usecase.PurchaseInput{
		UserID: "u1", Charity: "ASPCA", Purchase: &domain.Purchase{Price: dec("-2")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestConfirmDonation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setProfile(t, "u1", func(p *domain.UserProfile) {
		p.Balances["ASPCA"] = domain.Balance{Destination: "acct_1", Amount: dec("3.20")}
	})

	c := domain.CheckoutCompletion{SessionID: "cs_1", UserID: "u1", Charity: "ASPCA", Amount: dec("3.20")}
	require.NoError(t, f.svc.ConfirmDonation(ctx, c))
	require.NoError(t, f.svc.ConfirmDonation(ctx, c), "replay is a no-op")

	p := f.profile(t, "u1")
	assert.Equal(t, 1, p.DonationCount)
	assert.True(t, dec("3.20").Equal(p.TotalDonated))
	assert.True(t, p.Balances["ASPCA"].Amount.IsZero())
	assert.Equal(t, []string{"cs_1"}, p.CompletedSessions)
}

func TestConfirmDonationKeepsNewRoundUps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setProfile(t, "u1", func(p *domain.UserProfile) {
		p.Balances["ASPCA"] = domain.Balance{Destination: "acct_1", Amount: dec("3.20")}
	})
	// A purchase lands between checkout creation and the webhook.
	_, err := f.svc.RecordPurchase(ctx, usecase.PurchaseInput{UserID: "u1", Charity: "ASPCA", PurchaseTotal: dec("1.90")})
	require.NoError(t, err)

	require.NoError(t, f.svc.ConfirmDonation(ctx, domain.CheckoutCompletion{SessionID: "cs_1", UserID: "u1", Charity: "ASPCA", Amount: dec("3.20")}))
	assert.True(t, dec("0.10").Equal(f.profile(t, "u1").Balances["ASPCA"].Amount))
}

func TestConfirmDonationValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.ErrorIs(t, f.svc.ConfirmDonation(ctx, domain.CheckoutCompletion{UserID: "u1", Amount: dec("1")}), domain.ErrInvalidArgument)
	assert.ErrorIs(t, f.svc.ConfirmDonation(ctx, domain.CheckoutCompletion{SessionID: "cs", UserID: "u1"}), domain.ErrInvalidAmount)
	assert.ErrorIs(t, f.svc.ConfirmDonation(ctx, domain.CheckoutCompletion{SessionID: "cs", Amount: dec("1")}), domain.ErrMissingUser)
}
