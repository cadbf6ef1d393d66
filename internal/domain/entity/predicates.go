package entity

import (
	"regexp"
	"time"
	"unicode"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	MinAge         = 1
	MaxAge         = 120
	MinPhoneDigits = 10
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// IsValidAgeRange reports whether MinAge <= age <= MaxAge.
func IsValidAgeRange(age int) bool {
	return age >= MinAge && age <= MaxAge
}

// IsValidPhone reports whether phone has at least MinPhoneDigits digits once
// separators are stripped.
func IsValidPhone(phone string) bool {
	n := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n >= MinPhoneDigits
}

// IsValidEmail reports whether email has the local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidClock reports whether s is a 24h "HH:MM" time.
func IsValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

// IsValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsValidWorkWindow reports whether start strictly precedes end.
// Zero-padded "HH:MM" strings order lexicographically.
func IsValidWorkWindow(start, end string) bool {
	return IsValidClock(start) && IsValidClock(end) && start < end
}
