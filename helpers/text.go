package helpers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
	datePattern   = regexp.MustCompile(`(\d{4})[.\-/](\d{1,2})[.\-/](\d{1,2})`)
	digitRun      = regexp.MustCompile(`\d+`)
	nonDigit      = regexp.MustCompile(`\D`)
)

// NormalizeWhitespace collapses runs of whitespace, including Unicode space
// separators such as NBSP and the ideographic space, and trims.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// NormalizeDate reformats the first YYYY?MM?DD found in text as YYYY.MM.DD.
// Text without a date is returned whitespace-normalized.
func NormalizeDate(text string) string {
	s := NormalizeWhitespace(text)
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("%s.%02d.%02d", m[1], month, day)
}

// NormalizeAmount keeps fee text exactly as read apart from surrounding space.
func NormalizeAmount(text string) string {
	return strings.TrimSpace(text)
}

// LeadingDigits returns the first run of digits in text, or "" if there is none.
func LeadingDigits(text string) string {
	return digitRun.FindString(text)
}

// DigitsOnly strips every non-digit character.
func DigitsOnly(text string) string {
	return nonDigit.ReplaceAllString(text, "")
}
