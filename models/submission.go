package models

import "time"

// Reason codes recorded by the submission classifier. Bot signals force a
// block; shape errors are recorded but only block when a bot signal is also
// present.
const (
	ReasonHoneypotTriggered    = "honeypot_triggered"
	ReasonSubmittedTooFast     = "submitted_too_fast"
	ReasonMissingRequiredField = "missing_required_field"
	ReasonInvalidEmail         = "invalid_email"
)

// Submission is a public form post as captured by the handler, before
// classification. RenderedAt comes from the hidden timing field embedded in
// the form; it is zero when the client stripped or mangled the field.
type Submission struct {
	FormType    FormType
	Name        string
	Email       string
	Message     string
	Honeypot    string
	RenderedAt  time.Time
	SubmittedAt time.Time
	SourceIP    string
	UserAgent   string
}

// Decision is the classifier verdict for one submission. Reasons preserves
// the order in which checks fired so the audit trail reads the same way on
// every run with the same input.
type Decision struct {
	Blocked bool     `json:"blocked"`
	Reasons []string `json:"reasons,omitempty"`
}
