package enums

import "fmt"

// RateProvenance records where the shop's current exchange rate came from.
type RateProvenance string

const (
	RateProvenanceManual  RateProvenance = "manual"
	RateProvenanceSynced  RateProvenance = "synced"
	RateProvenanceDefault RateProvenance = "default"
)

var validRateProvenances = []RateProvenance{
	RateProvenanceManual,
	RateProvenanceSynced,
	RateProvenanceDefault,
}

// String implements fmt.Stringer.
func (p RateProvenance) String() string {
	return string(p)
}

// IsValid reports whether the value is a known RateProvenance.
func (p RateProvenance) IsValid() bool {
	for _, candidate := range validRateProvenances {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseRateProvenance converts raw input into a RateProvenance.
func ParseRateProvenance(value string) (RateProvenance, error) {
	for _, candidate := range validRateProvenances {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rate provenance %q", value)
}
