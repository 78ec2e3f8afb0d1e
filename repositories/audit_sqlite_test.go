package repositories

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/tradepost/marketplace-console/database"
	"github.com/tradepost/marketplace-console/models"
)

func setupSQLiteRepo(t *testing.T) *sqliteAuditRepository {
	dbPath := filepath.Join(t.TempDir(), "audit_test.db")

	if err := database.InitializeDatabase(dbPath); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() {
		database.CloseDB()
	})

	return NewSQLiteAuditRepository(database.GetDB()).(*sqliteAuditRepository)
}

func TestSQLiteRepositoryAppendAndList(t *testing.T) {
	repo := setupSQLiteRepo(t)
	base := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	older := submissionAt("older", base, false)
	older.Errors = []string{models.ReasonInvalidEmail}
	newer := submissionAt("newer", base.Add(time.Hour), true)
	newer.Errors = []string{models.ReasonHoneypotTriggered}

	if err := repo.AppendSubmission(older); err != nil {
		t.Fatalf("Failed to append submission: %v", err)
	}
	if err := repo.AppendSubmission(newer); err != nil {
		t.Fatalf("Failed to append submission: %v", err)
	}

	records, err := repo.ListSubmissions(10)
	if err != nil {
		t.Fatalf("Failed to list submissions: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].ID != "newer" {
		t.Errorf("Expected newest first, got %s", records[0].ID)
	}
	if !records[0].Blocked {
		t.Error("Expected blocked flag to round-trip")
	}
	if len(records[1].Errors) != 1 || records[1].Errors[0] != models.ReasonInvalidEmail {
		t.Errorf("Expected errors to round-trip, got %v", records[1].Errors)
	}
}

func TestSQLiteRepositoryAggregate(t *testing.T) {
	repo := setupSQLiteRepo(t)
	now := time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	appends := []*models.SubmissionRecord{
		submissionAt("today-ok", now.Add(-time.Hour), false),
		submissionAt("today-blocked", now.Add(-2*time.Hour), true),
		submissionAt("last-week", now.AddDate(0, 0, -7), true),
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
	if summary.TotalSubmissions != 3 || summary.BlockedCount != 2 {
		t.Errorf("Unexpected totals: %+v", summary)
	}
	if summary.TodaySubmissions != 2 || summary.TodayBlocked != 1 {
		t.Errorf("Unexpected today counts: %+v", summary)
	}
}

func TestSQLiteRepositorySuspicious(t *testing.T) {
	repo := setupSQLiteRepo(t)

	entry := &models.SuspiciousActivityEntry{
		ID:             "sus-1",
		Timestamp:      time.Now().UTC(),
		FormType:       models.FormTypeContact,
		SubmitterEmail: "bot@example.com",
		SourceIP:       "198.51.100.7",
		UserAgent:      "python-requests/2.31",
		Reasons:        []string{models.ReasonSubmittedTooFast},
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
	if entries[0].UserAgent != "python-requests/2.31" {
		t.Errorf("Expected user agent to round-trip, got %s", entries[0].UserAgent)
	}
}
