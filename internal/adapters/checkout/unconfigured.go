package checkout

import (
	"context"
	"errors"

	"github.com/rippleeffect/charity-service/internal/domain"
)

var ErrCheckoutDisabled = errors.New("checkout is not configured")

// Unconfigured stands in for the gateway when no payment key is set, so
// the rest of the service still runs.
type Unconfigured struct{}

func (Unconfigured) CreateSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	return nil, ErrCheckoutDisabled
}
