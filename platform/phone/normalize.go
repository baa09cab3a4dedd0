// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when callers pass an empty region.
const DefaultRegion = "US"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, regionOrDefault(region))
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// AreaCode extracts the geographic area code of a number, or "" when the
// number cannot be parsed or has no geographic area code.
func AreaCode(input, region string) string {
	number, err := phonenumbers.Parse(strings.TrimSpace(input), regionOrDefault(region))
	if err != nil {
		return ""
	}

	length := phonenumbers.GetLengthOfGeographicalAreaCode(number)
	if length <= 0 {
		return ""
	}

	national := phonenumbers.GetNationalSignificantNumber(number)
	if len(national) < length {
		return ""
	}
	return national[:length]
}

func regionOrDefault(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return DefaultRegion
	}
	return region
}
