package repositories

import (
	"github.com/tradepost/marketplace-console/models"
)

// AuditRepository handles the durable audit trail of public submissions.
// Appends must be serialized so concurrent submissions never overwrite each
// other's record; list reads return newest-first regardless of write order.
type AuditRepository interface {
	AppendSubmission(record *models.SubmissionRecord) error
	AppendSuspicious(entry *models.SuspiciousActivityEntry) error
	ListSubmissions(limit int) ([]models.SubmissionRecord, error)
	ListSuspicious(limit int) ([]models.SuspiciousActivityEntry, error)
	Aggregate() (*models.AuditSummary, error)
}

// Repositories struct holds all repository interfaces
type Repositories struct {
	Audit AuditRepository
}

// NewRepositories creates and initializes all repositories around an
// already-constructed audit backend.
func NewRepositories(audit AuditRepository) *Repositories {
	return &Repositories{
		Audit: audit,
	}
}
