package domain

import "strings"

// FundingSource is the pot of money a transaction category draws on.
type FundingSource string

const (
	FundingCash FundingSource = "cash"
	FundingBank FundingSource = "bank"
)

var (
	cashMarkers = []string{"tunai", "cash"}
	bankMarkers = []string{"rekening", "bank"}
)

// IsValid checks if the funding source is a known value.
func (f FundingSource) IsValid() bool {
	return f == FundingCash || f == FundingBank
}

// Label returns the Indonesian display name of the funding source.
func (f FundingSource) Label() string {
	if f == FundingBank {
		return "rekening bank"
	}
	return "kas tunai"
}

// ParseFundingSource maps an explicit backend value to a funding source.
// The second return value is false when the value is empty or unknown.
func ParseFundingSource(explicit string) (FundingSource, bool) {
	v := strings.ToLower(strings.TrimSpace(explicit))
	if v == "" {
		return "", false
	}

	if containsAny(v, cashMarkers) {
		return FundingCash, true
	}
	if containsAny(v, bankMarkers) {
		return FundingBank, true
	}

	return "", false
}

// InferFundingSource returns the explicit funding source when it is usable,
// otherwise guesses from the category label. Labels matching neither marker
// set fall back to cash. The boolean reports whether the result was inferred.
func InferFundingSource(label, explicit string) (FundingSource, bool) {
	if source, ok := ParseFundingSource(explicit); ok {
		return source, false
	}

	l := strings.ToLower(label)
	switch {
	case containsAny(l, cashMarkers):
		return FundingCash, true
	case containsAny(l, bankMarkers):
		return FundingBank, true
	default:
		return FundingCash, true
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
