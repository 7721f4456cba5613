package grpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rippleeffect/charity-service/internal/domain"
	"github.com/rippleeffect/charity-service/internal/usecase"
)

// UserIDHeader carries the caller identity set by the upstream identity
// provider.
const UserIDHeader = "x-user-id"

func userID(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", domain.ErrMissingUser
	}
	for _, v := range md.Get(UserIDHeader) {
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
	return "", domain.ErrMissingUser
}

func reply(m map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

func (s *Server) Check(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := strings.TrimSpace(str(req, "name"))
	if name == "" {
		name = "charity"
	}
	if err := s.svc.Ping(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("health check failed")
		return reply(map[string]interface{}{"healthy": false, "message": "store unavailable"})
	}
	return reply(map[string]interface{}{"healthy": true, "message": "OK: " + name})
}

func (s *Server) VerifyCharity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	v, err := s.svc.Verify(ctx, str(req, "name"))
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(verdictMap(v))
}

func (s *Server) FindNearbyCharities(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.svc.FindNearby(ctx, str(req, "city"), str(req, "state"), str(req, "country"))
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]interface{}{"charities": nearbyList(list)})
}

// AddCharity verifies the name and adds it. An unverified name that was not
// confirmed returns needs_confirmation with the verdict instead of an error.
func (s *Server) AddCharity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	name := str(req, "name")
	v, err := s.svc.Verify(ctx, name)
	if err != nil {
		return nil, toStatus(err)
	}

	res, err := s.svc.AddInterest(ctx, usecase.AddInterestInput{
		UserID:            uid,
		RawName:           name,
		Verdict:           v,
		ConfirmUnverified: boolean(req, "confirm"),
	})
	if errors.Is(err, domain.ErrConfirmationRequired) {
		return reply(map[string]interface{}{
			"needs_confirmation": true,
			"name":               strings.TrimSpace(name),
			"verdict":            verdictMap(v),
		})
	}
	if err != nil {
		return nil, toStatus(err)
	}
	out := interestMap(res)
	out["verdict"] = verdictMap(v)
	return reply(out)
}

func (s *Server) AddNearbyCharity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	res, err := s.svc.AddNearbyCharity(ctx, uid, domain.NearbyCharity{
		Name:        str(req, "name"),
		Description: str(req, "description"),
		Category:    domain.Category(str(req, "category")),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(interestMap(res))
}

func (s *Server) RecordPurchase(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	total, err := amount(req, "total")
	if err != nil {
		return nil, toStatus(err)
	}
	p, err := purchase(req)
	if err != nil {
		return nil, toStatus(err)
	}

	e, err := s.svc.RecordPurchase(ctx, usecase.PurchaseInput{
		UserID:        uid,
		Charity:       str(req, "charity"),
		Purchase:      p,
		PurchaseTotal: total,
		Destination:   str(req, "destination"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]interface{}{
		"charity":     e.Charity,
		"round_up":    money(e.RoundUp),
		"balance":     money(e.Balance.Amount),
		"destination": e.Balance.Destination,
	})
}

func (s *Server) Donate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	d, err := s.svc.Donate(ctx, uid, str(req, "charity"))
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]interface{}{
		"charity":     d.Charity,
		"amount":      money(d.Amount),
		"destination": d.Destination,
		"session_id":  d.Session.ID,
		"url":         d.Session.URL,
	})
}

func (s *Server) UpdateProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	p, err := s.svc.UpdateProfile(ctx, uid, usecase.Preferences{
		City:            str(req, "city"),
		State:           str(req, "state"),
		Country:         str(req, "country"),
		ReachOutLocally: boolean(req, "reach_out_locally"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(profileMap(p))
}

func (s *Server) GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	uid, err := userID(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	d, err := s.svc.Dashboard(ctx, uid)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(dashboardMap(d))
}
