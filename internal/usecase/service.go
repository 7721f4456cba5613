package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rippleeffect/charity-service/internal/domain"
	"github.com/rippleeffect/charity-service/internal/ports"
)

const (
	defaultLLMTimeout     = 30 * time.Second
	defaultMaxConcurrency = 3
)

// DefaultMinimumDonation is the smallest amount the payment processor
// accepts for one checkout.
var DefaultMinimumDonation = decimal.RequireFromString("0.50")

type Deps struct {
	LLM      ports.TextGenerator
	Parser   ports.ParserPort
	Store    ports.Store
	Checkout ports.CheckoutGateway
	Logger   zerolog.Logger

	LLMTimeout      time.Duration
	MaxConcurrency  int
	MinimumDonation *decimal.Decimal

	Now   func() time.Time
	NewID func() string
}

// CharityService verifies charity names, reconciles them with the shared
// directory and keeps the per-user donation ledger.
type CharityService struct {
	llm      ports.TextGenerator
	parser   ports.ParserPort
	store    ports.Store
	checkout ports.CheckoutGateway
	logger   zerolog.Logger

	llmTimeout time.Duration
	llmSem     chan struct{} // limit concurrent model calls
	minimum    decimal.Decimal

	now   func() time.Time
	newID func() string
}

func NewCharityService(d Deps) *CharityService {
	s := &CharityService{
		llm:        d.LLM,
		parser:     d.Parser,
		store:      d.Store,
		checkout:   d.Checkout,
		logger:     d.Logger,
		llmTimeout: d.LLMTimeout,
		minimum:    DefaultMinimumDonation,
		now:        d.Now,
		newID:      d.NewID,
	}
	if s.llmTimeout <= 0 {
		s.llmTimeout = defaultLLMTimeout
	}
	n := d.MaxConcurrency
	if n <= 0 {
		n = defaultMaxConcurrency
	}
	s.llmSem = make(chan struct{}, n)
	if d.MinimumDonation != nil {
		s.minimum = *d.MinimumDonation
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Ping reports whether the backing store is reachable.
func (s *CharityService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// generate runs one prompt under the concurrency limit and timeout. Any
// failure is reported as ErrServiceUnavailable.
func (s *CharityService) generate(ctx context.Context, prompt string) (string, error) {
	select {
	case s.llmSem <- struct{}{}:
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, ctx.Err())
	}
	defer func() { <-s.llmSem }()

	ctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	start := s.now()
	reply, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Dur("elapsed", s.now().Sub(start)).Msg("text generation failed")
		return "", fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
	}
	return reply, nil
}

func requireUser(userID string) error {
	if userID == "" {
		return domain.ErrMissingUser
	}
	return nil
}
