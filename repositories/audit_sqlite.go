package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tradepost/marketplace-console/models"
)

// sqliteAuditRepository is the transactional audit backend. SQLite serializes
// concurrent writers on its own, so no process-level lock is needed here.
type sqliteAuditRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteAuditRepository creates an audit repository over a migrated
// SQLite database.
func NewSQLiteAuditRepository(db *sql.DB) AuditRepository {
	return &sqliteAuditRepository{db: db, now: time.Now}
}

// AppendSubmission inserts a new submission record
func (r *sqliteAuditRepository) AppendSubmission(record *models.SubmissionRecord) error {
	reasons, err := json.Marshal(record.Errors)
	if err != nil {
		return fmt.Errorf("failed to encode submission errors: %w", err)
	}

	query := `
		INSERT INTO submissions (id, timestamp, form_type, submitter_email, source_ip, blocked, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(
		query,
		record.ID,
		record.Timestamp,
		string(record.FormType),
		record.SubmitterEmail,
		record.SourceIP,
		record.Blocked,
		string(reasons),
	)
	return err
}

// AppendSuspicious inserts a new suspicious activity entry
func (r *sqliteAuditRepository) AppendSuspicious(entry *models.SuspiciousActivityEntry) error {
	reasons, err := json.Marshal(entry.Reasons)
	if err != nil {
		return fmt.Errorf("failed to encode suspicious reasons: %w", err)
	}

	query := `
		INSERT INTO suspicious_activity (id, timestamp, form_type, submitter_email, source_ip, user_agent, reasons)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(
		query,
		entry.ID,
		entry.Timestamp,
		string(entry.FormType),
		entry.SubmitterEmail,
		entry.SourceIP,
		entry.UserAgent,
		string(reasons),
	)
	return err
}

// ListSubmissions returns up to limit records ordered newest first
func (r *sqliteAuditRepository) ListSubmissions(limit int) ([]models.SubmissionRecord, error) {
	query := `
		SELECT id, timestamp, form_type, submitter_email, source_ip, blocked, errors
		FROM submissions
		ORDER BY timestamp DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.SubmissionRecord
	for rows.Next() {
		var record models.SubmissionRecord
		var formType, errorsJSON string
		if err := rows.Scan(
			&record.ID,
			&record.Timestamp,
			&formType,
			&record.SubmitterEmail,
			&record.SourceIP,
			&record.Blocked,
			&errorsJSON,
		); err != nil {
			return nil, err
		}
		record.FormType = models.FormType(formType)
		if err := json.Unmarshal([]byte(errorsJSON), &record.Errors); err != nil {
			return nil, fmt.Errorf("failed to decode submission errors: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ListSuspicious returns up to limit entries ordered newest first
func (r *sqliteAuditRepository) ListSuspicious(limit int) ([]models.SuspiciousActivityEntry, error) {
	query := `
		SELECT id, timestamp, form_type, submitter_email, source_ip, user_agent, reasons
		FROM suspicious_activity
		ORDER BY timestamp DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.SuspiciousActivityEntry
	for rows.Next() {
		var entry models.SuspiciousActivityEntry
		var formType, reasonsJSON string
		if err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&formType,
			&entry.SubmitterEmail,
			&entry.SourceIP,
			&entry.UserAgent,
			&reasonsJSON,
		); err != nil {
			return nil, err
		}
		entry.FormType = models.FormType(formType)
		if err := json.Unmarshal([]byte(reasonsJSON), &entry.Reasons); err != nil {
			return nil, fmt.Errorf("failed to decode suspicious reasons: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Aggregate recomputes the summary counters with fresh queries on every call
func (r *sqliteAuditRepository) Aggregate() (*models.AuditSummary, error) {
	summary := &models.AuditSummary{}

	if err := r.db.QueryRow("SELECT COUNT(*) FROM submissions").Scan(&summary.TotalSubmissions); err != nil {
		return nil, err
	}
	if err := r.db.QueryRow("SELECT COUNT(*) FROM submissions WHERE blocked = 1").Scan(&summary.BlockedCount); err != nil {
		return nil, err
	}

	now := r.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := "SELECT COUNT(*) FROM submissions WHERE timestamp >= ? AND timestamp < ?"
	if err := r.db.QueryRow(query, dayStart, dayEnd).Scan(&summary.TodaySubmissions); err != nil {
		return nil, err
	}
	query += " AND blocked = 1"
	if err := r.db.QueryRow(query, dayStart, dayEnd).Scan(&summary.TodayBlocked); err != nil {
		return nil, err
	}

	return summary, nil
}

// normalizeLimit maps "no limit" to SQLite's unlimited sentinel
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
