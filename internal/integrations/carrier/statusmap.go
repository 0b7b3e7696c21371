package carrier

import (
	"log/slog"
	"strings"

	"github.com/BearBump/ParcelBox/internal/models"
)

// StatusTable maps carrier-native codes onto canonical statuses.
type StatusTable map[string]models.Status

// Lookup never fails: unmapped codes are logged and become StatusUnknown.
func (t StatusTable) Lookup(carrierID, code string) models.Status {
	if s, ok := t[code]; ok {
		return s
	}
	LogUnknownStatus(carrierID, code)
	return models.StatusUnknown
}

// Group is a helper for declaring many codes with the same status.
func (t StatusTable) Group(s models.Status, codes ...string) StatusTable {
	for _, c := range codes {
		t[c] = s
	}
	return t
}

func LogUnknownStatus(carrierID, code string) {
	slog.Warn("unknown carrier status", "carrier", carrierID, "code", code)
}

type KeywordRule struct {
	Status   models.Status
	Keywords []string
}

// KeywordRules classifies free text. Rules are checked in order, first hit wins.
type KeywordRules struct {
	Rules   []KeywordRule
	Default models.Status
}

func (r KeywordRules) Match(text string) models.Status {
	low := strings.ToLower(text)
	for _, rule := range r.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(low, strings.ToLower(kw)) {
				return rule.Status
			}
		}
	}
	return r.Default
}

// ContainsAny is a case-insensitive substring check.
func ContainsAny(text string, phrases ...string) bool {
	low := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(low, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
