package domain

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryHealth         Category = "Health"
	CategoryEducation      Category = "Education"
	CategoryEnvironment    Category = "Environment"
	CategoryCommunity      Category = "Community"
	CategorySocialServices Category = "Social Services"
	CategoryArts           Category = "Arts"
	CategoryAnimalWelfare  Category = "Animal Welfare"
	CategoryReligious      Category = "Religious"
)

// Categories lists the accepted categories in prompt order.
var Categories = []Category{
	CategoryHealth,
	CategoryEducation,
	CategoryEnvironment,
	CategoryCommunity,
	CategorySocialServices,
	CategoryArts,
	CategoryAnimalWelfare,
	CategoryReligious,
}

// Defaults applied to directory records created from partial data.
const (
	DefaultDescription = "Registered nonprofit organization"
	DefaultCategory    = CategoryCommunity
	UnknownLocation    = "Unknown"
)

// ParseCategory matches s against the known categories ignoring case and
// whitespace. Anything unrecognised maps to DefaultCategory.
func ParseCategory(s string) Category {
	key := NormalizeName(s)
	if key == "" {
		return DefaultCategory
	}
	for _, c := range Categories {
		if NormalizeName(string(c)) == key {
			return c
		}
	}
	return DefaultCategory
}

type Location struct {
	City    string `json:"city" dynamodbav:"city"`
	State   string `json:"state" dynamodbav:"state"`
	Country string `json:"country" dynamodbav:"country"`
	IsLocal bool   `json:"is_local" dynamodbav:"is_local"`
}

// WithDefaults fills empty fields with UnknownLocation.
func (l Location) WithDefaults() Location {
	if strings.TrimSpace(l.City) == "" {
		l.City = UnknownLocation
	}
	if strings.TrimSpace(l.State) == "" {
		l.State = UnknownLocation
	}
	if strings.TrimSpace(l.Country) == "" {
		l.Country = UnknownLocation
	}
	return l
}

// SameState reports whether state matches the user's declared state.
// Unknown or empty states never match.
func SameState(state, userState string) bool {
	state = strings.TrimSpace(state)
	userState = strings.TrimSpace(userState)
	if state == "" || userState == "" || strings.EqualFold(state, UnknownLocation) {
		return false
	}
	return strings.EqualFold(state, userState)
}

// CharityRecord is one canonical entry of the shared charity directory.
type CharityRecord struct {
	ID          string    `json:"id" dynamodbav:"id"`
	Key         string    `json:"key" dynamodbav:"key"`
	Name        string    `json:"name" dynamodbav:"name"`
	Description string    `json:"description" dynamodbav:"description"`
	Category    Category  `json:"category" dynamodbav:"category"`
	Location    Location  `json:"location" dynamodbav:"location"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
}

type NearbyCharity struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
}
