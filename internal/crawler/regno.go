package crawler

import (
	"fmt"
	"strings"

	"sjsage522/patentworker/helpers"
	"sjsage522/patentworker/pkg/errors"
)

// RegistrationSegments are the three inputs of the patent.go.kr registration number form.
type RegistrationSegments struct {
	Serial string // 7 digits
	Middle string // 2 digits
	Suffix string // 2 digits
}

// String joins the segments back into the 11-digit form.
func (s RegistrationSegments) String() string {
	return s.Serial + s.Middle + s.Suffix
}

// SplitRegistrationNumber normalizes raw to 11 digits and splits it 7/2/2.
// A 13-digit number carries a two-digit right-type prefix that the form
// fills in itself, so the prefix is dropped. Shorter numbers are zero-padded.
func SplitRegistrationNumber(raw string) (RegistrationSegments, error) {
	digits := helpers.DigitsOnly(raw)
	if len(digits) == 13 {
		digits = digits[2:]
	}
	if digits == "" || len(digits) > 11 {
		return RegistrationSegments{}, errors.NewValidation(patentGoProvider, fmt.Sprintf("invalid registration number %q", raw))
	}
	digits = strings.Repeat("0", 11-len(digits)) + digits
	return RegistrationSegments{
		Serial: digits[:7],
		Middle: digits[7:9],
		Suffix: digits[9:11],
	}, nil
}

// normalizeRegistrationNumber returns the 11-digit key used for caching.
func normalizeRegistrationNumber(raw string) (string, error) {
	seg, err := SplitRegistrationNumber(raw)
	if err != nil {
		return "", err
	}
	return seg.String(), nil
}

// hasRegistrationNumber reports whether a search result carries a usable registration number.
func hasRegistrationNumber(regNo string) bool {
	regNo = strings.TrimSpace(regNo)
	return regNo != "" && regNo != UnknownValue
}
