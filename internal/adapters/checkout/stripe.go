package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/rippleeffect/charity-service/internal/config"
	"github.com/rippleeffect/charity-service/internal/domain"
)

// Metadata keys carried on every checkout session and read back from the
// completion webhook.
const (
	MetaUserID  = "user_id"
	MetaCharity = "charity"
	MetaAmount  = "amount"
)

// StripeGateway creates hosted Stripe Checkout sessions that transfer the
// payment to the charity's connected account.
type StripeGateway struct {
	sc         *client.API
	currency   string
	successURL string
	cancelURL  string
	logger     zerolog.Logger
}

func NewStripeGateway(cfg config.StripeConfig, logger zerolog.Logger) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	backendCfg := func() *stripe.BackendConfig {
		c := &stripe.BackendConfig{
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     leveledLogger{logger},
		}
		if cfg.APIBase != "" {
			c.URL = stripe.String(cfg.APIBase)
		}
		return c
	}
	sc := &client.API{}
	sc.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg()),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg()),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg()),
	})

	currency := cfg.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeGateway{
		sc:         sc,
		currency:   currency,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		logger:     logger,
	}, nil
}

func (g *StripeGateway) CreateSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	cents := req.AmountCents()
	if cents <= 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidAmount, req.Amount)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Donation to " + req.Charity),
				},
				UnitAmount: stripe.Int64(cents),
			},
			Quantity: stripe.Int64(1),
		}},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(req.Destination),
			},
		},
		ClientReferenceID: stripe.String(req.UserID),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
	}
	params.Context = ctx
	params.AddMetadata(MetaUserID, req.UserID)
	params.AddMetadata(MetaCharity, req.Charity)
	params.AddMetadata(MetaAmount, req.Amount.StringFixed(2))

	s, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Error().Err(err).Str("charity", req.Charity).Msg("stripe checkout session failed")
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	g.logger.Info().
		Str("session_id", s.ID).
		Str("charity", req.Charity).
		Int64("amount_cents", cents).
		Msg("checkout session created")
	return &domain.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// leveledLogger routes stripe-go's internal logging through zerolog.
type leveledLogger struct{ l zerolog.Logger }

func (z leveledLogger) Debugf(format string, v ...interface{}) { z.l.Debug().Msgf(format, v...) }
func (z leveledLogger) Infof(format string, v ...interface{})  { z.l.Debug().Msgf(format, v...) }
func (z leveledLogger) Warnf(format string, v ...interface{})  { z.l.Warn().Msgf(format, v...) }
func (z leveledLogger) Errorf(format string, v ...interface{}) { z.l.Error().Msgf(format, v...) }
