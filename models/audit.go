package models

import "time"

// FormType tags a public submission with the form it came from.
type FormType string

const (
	FormTypeContact           FormType = "contact"
	FormTypeVendorApplication FormType = "vendor-application"
)

// SubmissionRecord is the audit entry written for every public form post,
// blocked or not. Records are append-only and never mutated after the write.
type SubmissionRecord struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	FormType       FormType  `json:"form_type"`
	SubmitterEmail string    `json:"submitter_email"`
	SourceIP       string    `json:"source_ip"`
	Blocked        bool      `json:"blocked"`
	Errors         []string  `json:"errors,omitempty"`
}

// SuspiciousActivityEntry is written alongside a SubmissionRecord whenever the
// classifier blocks a submission. It carries the user agent in addition to the
// fields shared with the record.
type SuspiciousActivityEntry struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	FormType       FormType  `json:"form_type"`
	SubmitterEmail string    `json:"submitter_email"`
	SourceIP       string    `json:"source_ip"`
	UserAgent      string    `json:"user_agent"`
	Reasons        []string  `json:"reasons,omitempty"`
}

// AuditSummary holds the counters recomputed on every aggregate call. Nothing
// here is cached incrementally, so the numbers cannot go stale.
type AuditSummary struct {
	TotalSubmissions int `json:"total_submissions"`
	BlockedCount     int `json:"blocked_count"`
	TodaySubmissions int `json:"today_submissions"`
	TodayBlocked     int `json:"today_blocked"`
}
