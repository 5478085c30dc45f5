package validation

import (
	"strings"

	"golang.org/x/text/currency"
)

// Violations maps a field path to a translation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_be_positive"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// Currency accepts empty values (company default) or an ISO 4217 code.
func Currency(field, code string, v Violations) {
	if code == "" {
		return
	}
	if _, err := currency.ParseISO(code); err != nil {
		v[field] = "invalid_currency"
	}
}

// Localized returns the violations with codes translated by t.
func (v Violations) Localized(t func(code string) string) map[string]string {
	out := make(map[string]string, len(v))
	for field, code := range v {
		out[field] = t(code)
	}
	return out
}
