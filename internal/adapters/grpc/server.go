package grpc

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/rippleeffect/charity-service/internal/domain"
	"github.com/rippleeffect/charity-service/internal/usecase"
)

// CharityService is the application API the transport drives.
type CharityService interface {
	Ping(ctx context.Context) error
	Verify(ctx context.Context, rawName string) (domain.VerificationVerdict, error)
	FindNearby(ctx context.Context, city, state, country string) ([]domain.NearbyCharity, error)
	AddInterest(ctx context.Context, in usecase.AddInterestInput) (*usecase.AddInterestResult, error)
	AddNearbyCharity(ctx context.Context, userID string, n domain.NearbyCharity) (*usecase.AddInterestResult, error)
	RecordPurchase(ctx context.Context, in usecase.PurchaseInput) (*usecase.LedgerEntry, error)
	Donate(ctx context.Context, userID, charityName string) (*usecase.Donation, error)
	UpdateProfile(ctx context.Context, userID string, prefs usecase.Preferences) (*domain.UserProfile, error)
	Dashboard(ctx context.Context, userID string) (*usecase.Dashboard, error)
}

type Server struct {
	svc    CharityService
	logger zerolog.Logger
}

func NewServer(svc CharityService, logger zerolog.Logger) *Server {
	return &Server{svc: svc, logger: logger}
}

// RegisterCharityServer registers the charity service and reflection.
func RegisterCharityServer(s *grpc.Server, impl CharityServiceServer) {
	s.RegisterService(&CharityServiceDesc, impl)
	reflection.Register(s)
}
