package domain

type VerdictStatus string

const (
	VerdictValid       VerdictStatus = "VALID"
	VerdictInvalid     VerdictStatus = "INVALID"
	VerdictUnparseable VerdictStatus = "UNPARSEABLE"
)

// VerificationVerdict is the parsed answer of the text-generation service.
// Optional fields are empty (or nil) when the reply did not carry them.
type VerificationVerdict struct {
	Status        VerdictStatus `json:"status"`
	CanonicalName string        `json:"canonical_name,omitempty"`
	Suggestions   string        `json:"suggestions,omitempty"`
	Description   string        `json:"description,omitempty"`
	Category      Category      `json:"category,omitempty"`
	Location      *Location     `json:"location,omitempty"`
	Raw           string        `json:"-"`
}

func (v VerificationVerdict) Valid() bool {
	return v.Status == VerdictValid && v.CanonicalName != ""
}
