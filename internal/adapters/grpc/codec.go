package grpc

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rippleeffect/charity-service/internal/domain"
	"github.com/rippleeffect/charity-service/internal/usecase"
)

// Request readers. Missing fields read as zero values.

func str(in *structpb.Struct, key string) string {
	if v, ok := in.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func boolean(in *structpb.Struct, key string) bool {
	if v, ok := in.GetFields()[key]; ok {
		return v.GetBoolValue()
	}
	return false
}

// amount accepts a decimal string or a JSON number, rounded to cents.
func amount(in *structpb.Struct, key string) (decimal.Decimal, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return decimal.Zero, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(k.StringValue)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s is not a number", domain.ErrInvalidAmount, key)
		}
		return d, nil
	case *structpb.Value_NumberValue:
		if math.IsNaN(k.NumberValue) || math.IsInf(k.NumberValue, 0) {
			return decimal.Zero, fmt.Errorf("%w: %s is not a finite number", domain.ErrInvalidAmount, key)
		}
		return decimal.NewFromFloat(k.NumberValue).Round(2), nil
	case *structpb.Value_NullValue:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %s is not a number", domain.ErrInvalidAmount, key)
	}
}

const maxQuantity = 1_000_000

func purchase(in *structpb.Struct) (*domain.Purchase, error) {
	v, ok := in.GetFields()["purchase"]
	if !ok || v.GetStructValue() == nil {
		return nil, nil
	}
	p := v.GetStructValue()
	price, err := amount(p, "price")
	if err != nil {
		return nil, err
	}
	qty := int64(1)
	if q, ok := p.GetFields()["quantity"]; ok {
		n := q.GetNumberValue()
		if n != math.Trunc(n) || n < 0 || n > maxQuantity {
			return nil, fmt.Errorf("%w: quantity must be a whole number up to %d", domain.ErrInvalidAmount, maxQuantity)
		}
		qty = int64(n)
	}
	return &domain.Purchase{
		Title:    str(p, "title"),
		Price:    price,
		Quantity: qty,
		Date:     str(p, "date"),
	}, nil
}

// Reply builders. structpb only accepts generic values, so every slice is
// converted to []interface{}.

func stringList(list []string) []interface{} {
	out := make([]interface{}, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func locationMap(l domain.Location) map[string]interface{} {
	return map[string]interface{}{
		"city":     l.City,
		"state":    l.State,
		"country":  l.Country,
		"is_local": l.IsLocal,
	}
}

func verdictMap(v domain.VerificationVerdict) map[string]interface{} {
	m := map[string]interface{}{
		"status":         string(v.Status),
		"canonical_name": v.CanonicalName,
		"suggestions":    v.Suggestions,
		"description":    v.Description,
		"category":       string(v.Category),
	}
	if v.Location != nil {
		m["location"] = locationMap(*v.Location)
	}
	return m
}

func charityMap(c domain.CharityRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":          c.ID,
		"key":         c.Key,
		"name":        c.Name,
		"description": c.Description,
		"category":    string(c.Category),
		"location":    locationMap(c.Location),
		"created_at":  c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func nearbyList(list []domain.NearbyCharity) []interface{} {
	out := make([]interface{}, len(list))
	for i, n := range list {
		out[i] = map[string]interface{}{
			"name":        n.Name,
			"description": n.Description,
			"category":    string(n.Category),
		}
	}
	return out
}

func interestMap(r *usecase.AddInterestResult) map[string]interface{} {
	return map[string]interface{}{
		"needs_confirmation": false,
		"name":               r.EffectiveName,
		"verified":           r.Verified,
		"created":            r.Created,
		"interests":          stringList(r.Interests),
		"charity":            charityMap(r.Charity),
	}
}

func profileMap(p *domain.UserProfile) map[string]interface{} {
	return map[string]interface{}{
		"user_id":           p.UserID,
		"city":              p.City,
		"state":             p.State,
		"country":           p.Country,
		"reach_out_locally": p.ReachOutLocally,
		"interests":         stringList(p.Interests),
	}
}

func milestones(list []domain.Milestone) []interface{} {
	out := make([]interface{}, len(list))
	for i, m := range list {
		out[i] = milestoneMap(m)
	}
	return out
}

func milestoneMap(m domain.Milestone) map[string]interface{} {
	return map[string]interface{}{
		"name":        m.Name,
		"description": m.Description,
		"donations":   m.Donations,
	}
}

func dashboardMap(d *usecase.Dashboard) map[string]interface{} {
	balances := make([]interface{}, len(d.Balances))
	for i, b := range d.Balances {
		balances[i] = map[string]interface{}{
			"charity":     b.Charity,
			"amount":      money(b.Amount),
			"destination": b.Destination,
		}
	}
	charities := make([]interface{}, len(d.Charities))
	for i, c := range d.Charities {
		charities[i] = charityMap(c)
	}
	rewards := map[string]interface{}{
		"badges":          milestones(d.Rewards.Badges),
		"characters":      milestones(d.Rewards.Characters),
		"donations_to_go": d.Rewards.DonationsToGo,
	}
	if d.Rewards.Next != nil {
		rewards["next"] = milestoneMap(*d.Rewards.Next)
	}
	return map[string]interface{}{
		"user_id":         d.UserID,
		"location":        locationMap(d.Location),
		"donation_count":  d.DonationCount,
		"total_donated":   money(d.TotalDonated),
		"pending_balance": money(d.PendingBalance),
		"balances":        balances,
		"interests":       stringList(d.Interests),
		"charities":       charities,
		"rewards":         rewards,
	}
}
