package ports

import (
	"context"

	"github.com/rippleeffect/charity-service/internal/domain"
)

//go:generate mockgen -destination=mocks/mock_checkout.go -package=mock_ports -source=checkout.go CheckoutGateway

// CheckoutGateway creates a hosted payment session. Success is reported
// later, outside this call.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error)
}
