package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rippleeffect/charity-service/internal/domain"
)

const verifyPrompt = `Is "%s" a real registered nonprofit organization or charity?
Reply on a single line in exactly this format:
STATUS: YES or NO | OFFICIAL_NAME: the official registered name (if NO, similar real charities comma separated) | DESCRIPTION: one sentence about its mission | LOCATION: City, State, Country
Use N/A for any field you do not know.`

const nearbyPrompt = `List 5 to 8 real registered nonprofit organizations located in or near %s, %s, %s.
Respond with only a JSON array, no prose, where each element is {"name": "...", "description": "...", "category": "..."}
and category is exactly one of: %s.`

// Verify asks the text generator whether rawName is a real charity. The
// returned verdict may be Unparseable; that is not an error.
func (s *CharityService) Verify(ctx context.Context, rawName string) (domain.VerificationVerdict, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return domain.VerificationVerdict{}, domain.ErrEmptyName
	}

	reply, err := s.generate(ctx, fmt.Sprintf(verifyPrompt, name))
	if err != nil {
		return domain.VerificationVerdict{}, err
	}

	v := s.parser.ParseVerdict(reply)
	s.logger.Info().
		Str("name", name).
		Str("status", string(v.Status)).
		Str("canonical", v.CanonicalName).
		Msg("charity verified")
	return v, nil
}

// FindNearby asks for charities around the given place. A reply that cannot
// be parsed yields an empty list.
func (s *CharityService) FindNearby(ctx context.Context, city, state, country string) ([]domain.NearbyCharity, error) {
	city, state, country = strings.TrimSpace(city), strings.TrimSpace(state), strings.TrimSpace(country)
	if city == "" && state == "" && country == "" {
		return nil, fmt.Errorf("%w: location is empty", domain.ErrInvalidArgument)
	}

	reply, err := s.generate(ctx, fmt.Sprintf(nearbyPrompt, orUnknown(city), orUnknown(state), orUnknown(country), categoryList()))
	if err != nil {
		return nil, err
	}

	out := s.parser.ParseNearby(reply)
	s.logger.Info().Str("city", city).Str("state", state).Int("found", len(out)).Msg("nearby charities")
	return out, nil
}

func categoryList() string {
	names := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func orUnknown(s string) string {
	if s == "" {
		return domain.UnknownLocation
	}
	return s
}
