package repositories

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tradepost/marketplace-console/models"
	"github.com/tradepost/marketplace-console/storage"
)

func setupDocumentRepo(t *testing.T) *documentAuditRepository {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create document store: %v", err)
	}
	return NewDocumentAuditRepository(store).(*documentAuditRepository)
}

func submissionAt(id string, ts time.Time, blocked bool) *models.SubmissionRecord {
	return &models.SubmissionRecord{
		ID:             id,
		Timestamp:      ts,
		FormType:       models.FormTypeContact,
		SubmitterEmail: "someone@example.com",
		SourceIP:       "203.0.113.9",
		Blocked:        blocked,
	}
}

func TestDocumentRepositoryListNewestFirst(t *testing.T) {
	repo := setupDocumentRepo(t)
	base := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)

	// Insert out of chronological order; the read must re-sort.
	for _, offset := range []int{2, 0, 1} {
		rec := submissionAt(fmt.Sprintf("rec-%d", offset), base.Add(time.Duration(offset)*time.Minute), false)
		if err := repo.AppendSubmission(rec); err != nil {
			t.Fatalf("Failed to append submission: %v", err)
		}
	}

	records, err := repo.ListSubmissions(0)
	if err != nil {
		t.Fatalf("Failed to list submissions: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	for i := 0; i < len(records)-1; i++ {
		if records[i].Timestamp.Before(records[i+1].Timestamp) {
			t.Errorf("Records out of order at %d: %v before %v", i, records[i].Timestamp, records[i+1].Timestamp)
		}
	}

	limited, err := repo.ListSubmissions(2)
	if err != nil {
		t.Fatalf("Failed to list limited submissions: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 records with limit, got %d", len(limited))
	}
	if limited[0].ID != "rec-2" {
		t.Errorf("Expected newest record first, got %s", limited[0].ID)
	}
}

func TestDocumentRepositoryConcurrentAppends(t *testing.T) {
	repo := setupDocumentRepo(t)

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := submissionAt(fmt.Sprintf("rec-%d", i), time.Now(), false)
			errs <- repo.AppendSubmission(rec)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Concurrent append failed: %v", err)
		}
	}

	records, err := repo.ListSubmissions(0)
	if err != nil {
		t.Fatalf("Failed to list submissions: %v", err)
	}
	if len(records) != writers {
		t.Fatalf("Expected %d records after concurrent appends, got %d", writers, len(records))
	}

	seen := make(map[string]bool)
	for _, rec := range records {
		if seen[rec.ID] {
			t.Errorf("Duplicate record %s", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func TestDocumentRepositoryAggregate(t *testing.T) {
	repo := setupDocumentRepo(t)
	now := time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	// Two today (one blocked), one yesterday (blocked).
	appends := []*models.SubmissionRecord{
		submissionAt("today-ok", now.Add(-time.Hour), false),
		submissionAt("today-blocked", now.Add(-2*time.Hour), true),
		submissionAt("yesterday-blocked", now.AddDate(0, 0, -1), true),
	}
	for _, rec := range appends {
		if err := repo.AppendSubmission(rec); err != nil {
			t.Fatalf("Failed to append submission: %v", err)
		}
	}

	summary, err := repo.Aggregate()
	if err != nil {
		t.Fatalf("Failed to aggregate: %v", err)
	}

	if summary.TotalSubmissions != 3 {
		t.Errorf("Expected 3 total, got %d", summary.TotalSubmissions)
	}
	if summary.BlockedCount != 2 {
		t.Errorf("Expected 2 blocked, got %d", summary.BlockedCount)
	}
	if summary.TodaySubmissions != 2 {
		t.Errorf("Expected 2 today, got %d", summary.TodaySubmissions)
	}
	if summary.TodayBlocked != 1 {
		t.Errorf("Expected 1 blocked today, got %d", summary.TodayBlocked)
	}

	// total == blocked + allowed, today never exceeds total
	allowed := summary.TotalSubmissions - summary.BlockedCount
	if summary.BlockedCount+allowed != summary.TotalSubmissions {
		t.Error("Expected total to equal blocked + allowed")
	}
	if summary.TodaySubmissions > summary.TotalSubmissions {
		t.Error("Expected today count to never exceed total")
	}
}

func TestDocumentRepositorySuspiciousRoundTrip(t *testing.T) {
	repo := setupDocumentRepo(t)

	entry := &models.SuspiciousActivityEntry{
		ID:             "sus-1",
		Timestamp:      time.Now(),
		FormType:       models.FormTypeVendorApplication,
		SubmitterEmail: "bot@example.com",
		SourceIP:       "198.51.100.7",
		UserAgent:      "curl/8.0",
		Reasons:        []string{models.ReasonHoneypotTriggered},
	}
	if err := repo.AppendSuspicious(entry); err != nil {
		t.Fatalf("Failed to append suspicious entry: %v", err)
	}

	entries, err := repo.ListSuspicious(10)
	if err != nil {
		t.Fatalf("Failed to list suspicious entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].UserAgent != "curl/8.0" {
		t.Errorf("Expected user agent to round-trip, got %s", entries[0].UserAgent)
	}
	if len(entries[0].Reasons) != 1 || entries[0].Reasons[0] != models.ReasonHoneypotTriggered {
		t.Errorf("Expected honeypot reason to round-trip, got %v", entries[0].Reasons)
	}
}
