package ports

import "github.com/rippleeffect/charity-service/internal/domain"

type ParserPort interface {
	// ParseVerdict extracts a verification verdict from a free-text reply.
	// It never fails; unusable replies yield an Unparseable verdict.
	ParseVerdict(reply string) domain.VerificationVerdict

	// ParseNearby extracts nearby charities from a reply that should hold a
	// JSON array. Worst case it returns an empty slice.
	ParseNearby(reply string) []domain.NearbyCharity
}
