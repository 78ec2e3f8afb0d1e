package services

import (
	"strings"
	"time"

	"github.com/tradepost/marketplace-console/models"
)

// ClassifierService scores an inbound public submission. Classification is a
// pure function of the submission: same input, same decision, so the audit
// trail is reproducible.
type ClassifierService interface {
	Classify(sub *models.Submission) models.Decision
}

type classifierService struct {
	minFillTime time.Duration
}

// NewClassifierService creates the submission classifier. minFillTime is the
// shortest render-to-submit interval a human is assumed to need.
func NewClassifierService(minFillTime time.Duration) ClassifierService {
	return &classifierService{minFillTime: minFillTime}
}

// Classify runs the checks in a fixed order. Bot signals (honeypot, timing)
// force a block; shape problems are recorded as errors but only block when a
// bot signal fired too.
func (s *classifierService) Classify(sub *models.Submission) models.Decision {
	var reasons []string
	blocked := false

	// Honeypot: the field is invisible to humans, so any value means a
	// machine filled the form.
	if strings.TrimSpace(sub.Honeypot) != "" {
		reasons = append(reasons, models.ReasonHoneypotTriggered)
		blocked = true
	}

	// Timing: a submission faster than a human could type is a bot. A
	// stripped or unparsable timing field classifies the same way - bots that
	// delete the field must not score cleaner than bots that submit fast.
	if sub.RenderedAt.IsZero() || sub.SubmittedAt.Sub(sub.RenderedAt) < s.minFillTime {
		reasons = append(reasons, models.ReasonSubmittedTooFast)
		blocked = true
	}

	// Shape checks: recorded for the audit trail, not blocking on their own.
	if strings.TrimSpace(sub.Name) == "" || strings.TrimSpace(sub.Message) == "" {
		reasons = append(reasons, models.ReasonMissingRequiredField)
	}
	if strings.TrimSpace(sub.Email) == "" {
		reasons = append(reasons, models.ReasonMissingRequiredField)
	} else if !models.ValidEmail(sub.Email) {
		reasons = append(reasons, models.ReasonInvalidEmail)
	}

	return models.Decision{Blocked: blocked, Reasons: reasons}
}
