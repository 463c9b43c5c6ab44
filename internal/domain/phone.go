package domain

import (
	"regexp"
	"strings"
)

const (
	phoneNumberLength = 10
	countryCode       = "31"
)

var wellFormedPhone = regexp.MustCompile(`^06\d{8}$`)

// PhoneNumber is a validated local mobile number (10 digits, prefix 06).
type PhoneNumber string

// ValidatePhoneNumber strips non-digits and checks the single supported regional format.
func ValidatePhoneNumber(raw string) (PhoneNumber, error) {
	cleaned := digitsOnly(raw)
	if !wellFormedPhone.MatchString(cleaned) {
		return "", &ValidationError{
			Index:   -1,
			Message: "Phone number must be 10 digits starting with 06",
			Err:     ErrInvalidPhoneNumber,
		}
	}
	return PhoneNumber(cleaned), nil
}

// International drops the trunk 0 and prefixes the country code, e.g. 0612345678 -> 31612345678.
func (p PhoneNumber) International() string {
	return countryCode + string(p)[1:]
}

func (p PhoneNumber) String() string { return string(p) }

// SanitizePhoneInput applies the entry-time constraint: digits only, at most 10.
func SanitizePhoneInput(raw string) string {
	cleaned := digitsOnly(raw)
	if len(cleaned) > phoneNumberLength {
		cleaned = cleaned[:phoneNumberLength]
	}
	return cleaned
}

func digitsOnly(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}
