package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tradepost/marketplace-console/models"
	"github.com/tradepost/marketplace-console/storage"
)

const (
	submissionsDocument = "submissions"
	suspiciousDocument  = "suspicious_activity"
)

// documentAuditRepository persists each collection as a single JSON document.
// Every append is a read-append-rewrite cycle under the mutex; the store
// itself guarantees the rewrite is atomic, the mutex guarantees no append is
// lost between concurrent readers of the same base document.
type documentAuditRepository struct {
	store storage.DocumentStore
	mu    sync.Mutex
	now   func() time.Time
}

// NewDocumentAuditRepository creates an audit repository over a document store.
func NewDocumentAuditRepository(store storage.DocumentStore) AuditRepository {
	return &documentAuditRepository{store: store, now: time.Now}
}

// AppendSubmission adds one record to the submissions collection.
func (r *documentAuditRepository) AppendSubmission(record *models.SubmissionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []models.SubmissionRecord
	if err := r.load(submissionsDocument, &records); err != nil {
		return err
	}
	records = append(records, *record)
	return r.save(submissionsDocument, records)
}

// AppendSuspicious adds one entry to the suspicious activity collection.
func (r *documentAuditRepository) AppendSuspicious(entry *models.SuspiciousActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []models.SuspiciousActivityEntry
	if err := r.load(suspiciousDocument, &entries); err != nil {
		return err
	}
	entries = append(entries, *entry)
	return r.save(suspiciousDocument, entries)
}

// ListSubmissions returns up to limit records, newest first. Insertion order
// on disk is not trusted to be chronological under concurrent writers, so the
// read re-sorts by timestamp.
func (r *documentAuditRepository) ListSubmissions(limit int) ([]models.SubmissionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []models.SubmissionRecord
	if err := r.load(submissionsDocument, &records); err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return truncate(records, limit), nil
}

// ListSuspicious returns up to limit entries, newest first.
func (r *documentAuditRepository) ListSuspicious(limit int) ([]models.SuspiciousActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []models.SuspiciousActivityEntry
	if err := r.load(suspiciousDocument, &entries); err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return truncate(entries, limit), nil
}

// Aggregate recomputes the summary counters from the full collection on every
// call. "Today" is calendar-date equality against the repository clock.
func (r *documentAuditRepository) Aggregate() (*models.AuditSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []models.SubmissionRecord
	if err := r.load(submissionsDocument, &records); err != nil {
		return nil, err
	}

	now := r.now()
	summary := &models.AuditSummary{}
	for _, record := range records {
		summary.TotalSubmissions++
		if record.Blocked {
			summary.BlockedCount++
		}
		if models.SameCalendarDay(now, record.Timestamp) {
			summary.TodaySubmissions++
			if record.Blocked {
				summary.TodayBlocked++
			}
		}
	}
	return summary, nil
}

// load reads a whole collection document into dest. A missing document is an
// empty collection, not an error.
func (r *documentAuditRepository) load(name string, dest interface{}) error {
	data, err := r.store.ReadDocument(name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s collection: %w", name, err)
	}
	return nil
}

func (r *documentAuditRepository) save(name string, collection interface{}) error {
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s collection: %w", name, err)
	}
	return r.store.WriteDocumentAtomic(name, data)
}

func truncate[T any](list []T, limit int) []T {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
