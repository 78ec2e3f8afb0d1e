package models

import (
	"regexp"
	"time"
)

// Common validation functions and utilities used across models

// FlashMessage represents a flash message for user feedback
type FlashMessage struct {
	Type    string `json:"type"` // "success", "error", "warning", "info"
	Message string `json:"message"`
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether s looks like a deliverable address. Intentionally
// loose; the classifier only needs a shape check, not RFC 5322.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// SameCalendarDay reports whether a and b fall on the same calendar date in
// a's location.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
