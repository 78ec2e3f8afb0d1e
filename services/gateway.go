package services

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradepost/marketplace-console/models"
	"github.com/tradepost/marketplace-console/repositories"
)

// GatewayService is the public-submission half of the trust gateway: it runs
// the classifier and records the outcome durably. The admin-session half
// lives in the middleware package, which composes the session and CSRF
// services per request.
type GatewayService interface {
	// GuardPublicSubmission classifies the submission and appends a
	// SubmissionRecord regardless of outcome, plus a SuspiciousActivityEntry
	// when blocked. A storage failure is returned to the caller even for an
	// allowed submission: an unrecorded submission is not an allowed one.
	GuardPublicSubmission(sub *models.Submission) (models.Decision, error)

	// Reporting surface consumed read-only by the admin dashboard.
	RecentSubmissions(limit int) ([]models.SubmissionRecord, error)
	RecentSuspicious(limit int) ([]models.SuspiciousActivityEntry, error)
	Summary() (*models.AuditSummary, error)
}

type gatewayService struct {
	classifier   ClassifierService
	audit        repositories.AuditRepository
	logger       *zap.Logger
	retryBackoff time.Duration
}

// NewGatewayService creates the submission gateway.
func NewGatewayService(classifier ClassifierService, audit repositories.AuditRepository, logger *zap.Logger) GatewayService {
	return &gatewayService{
		classifier:   classifier,
		audit:        audit,
		logger:       logger,
		retryBackoff: 50 * time.Millisecond,
	}
}

func (s *gatewayService) GuardPublicSubmission(sub *models.Submission) (models.Decision, error) {
	decision := s.classifier.Classify(sub)

	record := &models.SubmissionRecord{
		ID:             uuid.NewString(),
		Timestamp:      sub.SubmittedAt,
		FormType:       sub.FormType,
		SubmitterEmail: sub.Email,
		SourceIP:       sub.SourceIP,
		Blocked:        decision.Blocked,
		Errors:         decision.Reasons,
	}
	if err := s.appendWithRetry("submission append", func() error {
		return s.audit.AppendSubmission(record)
	}); err != nil {
		return decision, err
	}

	if decision.Blocked {
		entry := &models.SuspiciousActivityEntry{
			ID:             uuid.NewString(),
			Timestamp:      sub.SubmittedAt,
			FormType:       sub.FormType,
			SubmitterEmail: sub.Email,
			SourceIP:       sub.SourceIP,
			UserAgent:      sub.UserAgent,
			Reasons:        decision.Reasons,
		}
		if err := s.appendWithRetry("suspicious append", func() error {
			return s.audit.AppendSuspicious(entry)
		}); err != nil {
			return decision, err
		}

		s.logger.Info("blocked public submission",
			zap.String("form_type", string(sub.FormType)),
			zap.String("source_ip", sub.SourceIP),
			zap.Strings("reasons", decision.Reasons))
	}

	return decision, nil
}

// appendWithRetry retries a failed audit write once after a short backoff.
// Storage failures are not transient-network errors, so one retry is all the
// forgiveness they get before the caller sees a hard failure.
func (s *gatewayService) appendWithRetry(op string, write func() error) error {
	err := write()
	if err == nil {
		return nil
	}

	s.logger.Warn("audit write failed, retrying once",
		zap.String("op", op),
		zap.Error(err))
	time.Sleep(s.retryBackoff)

	if err = write(); err != nil {
		return &StorageError{Op: op, Err: err}
	}
	return nil
}

func (s *gatewayService) RecentSubmissions(limit int) ([]models.SubmissionRecord, error) {
	records, err := s.audit.ListSubmissions(limit)
	if err != nil {
		return nil, &StorageError{Op: "submissions read", Err: err}
	}
	return records, nil
}

func (s *gatewayService) RecentSuspicious(limit int) ([]models.SuspiciousActivityEntry, error) {
	entries, err := s.audit.ListSuspicious(limit)
	if err != nil {
		return nil, &StorageError{Op: "suspicious read", Err: err}
	}
	return entries, nil
}

func (s *gatewayService) Summary() (*models.AuditSummary, error) {
	summary, err := s.audit.Aggregate()
	if err != nil {
		return nil, &StorageError{Op: "aggregate read", Err: err}
	}
	return summary, nil
}
