package models

import "time"

// DateLayout is the wire and CSV format for calendar dates.
const DateLayout = "2006-01-02"

// DateOf returns midnight UTC of t's calendar day in t's own location.
// Expiry dates are stored in this form so comparisons stay date-only.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a stored date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}
