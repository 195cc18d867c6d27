package util

import (
	"strings"

	"learnhub-web/internal/model"
)

const defaultCountryCode = "+91"

// NormalizePhone composes a dialable E.164-style number from a country code
// and a local 10-digit number. Spaces and dashes in the local number are
// tolerated; anything else is rejected before a network call is made.
func NormalizePhone(countryCode string, number string) (string, error) {
	countryCode = strings.TrimSpace(countryCode)
	if countryCode == "" {
		countryCode = defaultCountryCode
	}

	if !validCountryCode(countryCode) {
		return "", model.ErrInvalidPhone
	}

	var digits strings.Builder
	for _, r := range number {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ' ' || r == '-':
		default:
			return "", model.ErrInvalidPhone
		}
	}

	if digits.Len() != 10 {
		return "", model.ErrInvalidPhone
	}

	return countryCode + digits.String(), nil
}

func validCountryCode(code string) bool {
	if len(code) < 2 || len(code) > 4 || code[0] != '+' {
		return false
	}
	for _, r := range code[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ComposeName joins the registration form's first and last name into the
// single name field the backend expects.
func ComposeName(first string, last string) (string, error) {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)

	if first == "" {
		return "", model.ErrInvalidName
	}

	return first + last, nil
}
