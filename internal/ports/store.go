package ports

import (
	"context"

	"github.com/rippleeffect/charity-service/internal/domain"
)

// InterestCommit runs inside Store.CommitInterest. existing is the directory
// record stored under the commit key, nil when absent. The function mutates
// profile and returns the record the profile now refers to; when existing is
// nil the returned record is inserted into the directory. Returning an error
// aborts the commit with nothing written.
type InterestCommit func(profile *domain.UserProfile, existing *domain.CharityRecord) (*domain.CharityRecord, error)

// ProfileUpdate mutates a profile inside Store.UpdateProfile. Returning an
// error aborts the update.
type ProfileUpdate func(profile *domain.UserProfile) error

// Store is the document store holding user profiles and the shared charity
// directory. Missing profiles are treated as empty ones by the mutating
// methods.
type Store interface {
	HealthPort

	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, fn ProfileUpdate) (*domain.UserProfile, error)

	FindCharity(ctx context.Context, key string) (*domain.CharityRecord, error)
	ListCharities(ctx context.Context) ([]domain.CharityRecord, error)

	// CommitInterest atomically reads the profile and the directory record
	// for key, applies fn and writes both back.
	CommitInterest(ctx context.Context, userID, key string, fn InterestCommit) (*domain.CharityRecord, *domain.UserProfile, error)

	Close() error
}
