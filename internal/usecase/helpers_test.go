package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rippleeffect/charity-service/internal/adapters/parser"
	"github.com/rippleeffect/charity-service/internal/adapters/store"
	"github.com/rippleeffect/charity-service/internal/domain"
	mock_ports "github.com/rippleeffect/charity-service/internal/ports/mocks"
	"github.com/rippleeffect/charity-service/internal/usecase"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC)

type fixture struct {
	svc   *usecase.CharityService
	llm   *mock_ports.MockTextGenerator
	gw    *mock_ports.MockCheckoutGateway
	store *store.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		llm:   mock_ports.NewMockTextGenerator(ctrl),
		gw:    mock_ports.NewMockCheckoutGateway(ctrl),
		store: store.NewMemoryStore(),
	}
	ids := 0
	f.svc = usecase.NewCharityService(usecase.Deps{
		LLM:        f.llm,
		Parser:     parser.NewRulesParser(),
		Store:      f.store,
		Checkout:   f.gw,
		Logger:     zerolog.Nop(),
		LLMTimeout: time.Second,
		Now:        func() time.Time { return fixedNow },
		NewID: func() string {
			ids++
			return fmt.Sprintf("charity-%d", ids)
		},
	})
	return f
}

func (f *fixture) setProfile(t *testing.T, userID string, fn func(p *domain.UserProfile)) {
	t.Helper()
	_, err := f.store.UpdateProfile(context.Background(), userID, func(p *domain.UserProfile) error {
		fn(p)
		return nil
	})
	require.NoError(t, err)
}

func (f *fixture) profile(t *testing.T, userID string) *domain.UserProfile {
	t.Helper()
	p, err := f.store.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	return p
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
