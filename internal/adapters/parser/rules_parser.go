package parser

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rippleeffect/charity-service/internal/domain"
)

// RulesParser turns untrusted model replies into verdicts and nearby lists
// with tolerant pattern matching. It never returns an error.
type RulesParser struct{}

func NewRulesParser() *RulesParser { return &RulesParser{} }

var (
	statusRe      = regexp.MustCompile(`(?i)\bSTATUS\s*[:=\-]\s*"?(YES|NO)\b`)
	officialRe    = fieldRe(`OFFICIAL[\s_-]*NAME`)
	suggestionsRe = fieldRe(`SUGGESTIONS?`)
	descriptionRe = fieldRe(`DESCRIPTION`)
	locationRe    = fieldRe(`LOCATION`)
	categoryRe    = fieldRe(`CATEGORY`)

	fenceOpenRe  = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\s*")
	fenceCloseRe = regexp.MustCompile("(?s)\\s*```\\s*$")
	listMarkRe   = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)
	dashSplitRe  = regexp.MustCompile(`\s+[-–—:]\s+`)
)

// fieldRe matches `LABEL: value` up to the next pipe or end of line.
func fieldRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)\b` + label + `[ \t]*[:=][ \t]*([^|\n]*)`)
}

const maxFieldLen = 512

func (p *RulesParser) ParseVerdict(reply string) domain.VerificationVerdict {
	text := normalize(reply)
	v := domain.VerificationVerdict{Status: domain.VerdictUnparseable, Raw: reply}
	if text == "" {
		return v
	}

	status := ""
	if m := statusRe.FindStringSubmatch(text); len(m) >= 2 {
		status = strings.ToUpper(m[1])
	}
	official := field(officialRe, text)
	suggestions := field(suggestionsRe, text)

	v.Description = field(descriptionRe, text)
	if c := field(categoryRe, text); c != "" {
		v.Category = domain.ParseCategory(c)
	}
	v.Location = parseLocation(field(locationRe, text))

	switch {
	case status == "YES" && official != "":
		v.Status = domain.VerdictValid
		v.CanonicalName = official
	case status == "NO" && (suggestions != "" || official != ""):
		v.Status = domain.VerdictInvalid
		if suggestions != "" {
			v.Suggestions = suggestions
		} else {
			v.Suggestions = official
		}
	}
	return v
}

func (p *RulesParser) ParseNearby(reply string) []domain.NearbyCharity {
	text := stripFence(strings.TrimSpace(reply))
	if text == "" {
		return []domain.NearbyCharity{}
	}
	if out, ok := parseNearbyJSON(text); ok {
		return out
	}
	return parseNearbyLines(text)
}

func parseNearbyJSON(text string) ([]domain.NearbyCharity, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, false
	}

	var raw []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, false
	}

	out := make([]domain.NearbyCharity, 0, len(raw))
	for _, r := range raw {
		name := clean(r.Name)
		if name == "" {
			continue
		}
		out = append(out, domain.NearbyCharity{
			Name:        name,
			Description: clean(r.Description),
			Category:    domain.ParseCategory(r.Category),
		})
	}
	return out, true
}

// parseNearbyLines treats every non-empty line without structural
// punctuation as a "name - description" pair.
func parseNearbyLines(text string) []domain.NearbyCharity {
	out := []domain.NearbyCharity{}
	for _, l := range nonEmptyLines(text) {
		if strings.ContainsAny(l, "[]{}`") || strings.HasSuffix(l, ":") {
			continue
		}
		l = strings.TrimSpace(listMarkRe.ReplaceAllString(l, ""))
		parts := dashSplitRe.Split(l, 2)
		name := clean(parts[0])
		if name == "" {
			continue
		}
		desc := ""
		if len(parts) == 2 {
			desc = clean(parts[1])
		}
		out = append(out, domain.NearbyCharity{
			Name:        name,
			Description: desc,
			Category:    domain.DefaultCategory,
		})
	}
	return out
}

// parseLocation splits "City, State, Country". Two parts are read as
// city and country, one part as country.
func parseLocation(s string) *domain.Location {
	if s == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = clean(p); p != "" {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return &domain.Location{Country: parts[0]}
	case 2:
		return &domain.Location{City: parts[0], Country: parts[1]}
	default:
		return &domain.Location{
			City:    parts[0],
			State:   parts[1],
			Country: strings.Join(parts[2:], ", "),
		}
	}
}

func field(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return clean(m[1])
}

// clean trims quotes and markdown leftovers and maps placeholder answers to
// empty.
func clean(s string) string {
	s = strings.Trim(strings.TrimSpace(s), `"'*_`+"`")
	s = strings.TrimSpace(s)
	switch strings.ToLower(strings.TrimRight(s, ".")) {
	case "", "n/a", "na", "none", "unknown", "-", "null":
		return ""
	}
	return truncate(s, maxFieldLen)
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "**", "")
	return strings.TrimSpace(stripFence(s))
}

func stripFence(s string) string {
	s = fenceOpenRe.ReplaceAllString(s, "")
	return fenceCloseRe.ReplaceAllString(s, "")
}

func nonEmptyLines(s string) []string {
	raw := strings.Split(s, "\n")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		t := strings.TrimSpace(r)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
