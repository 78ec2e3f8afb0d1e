package database

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version string
	SQL     string
}

// migrations are applied in order; the schema is small enough to keep inline
// instead of shipping a migrations directory.
var migrations = []Migration{
	{
		Version: "001_create_submissions",
		SQL: `
			CREATE TABLE IF NOT EXISTS submissions (
				id TEXT PRIMARY KEY,
				timestamp DATETIME NOT NULL,
				form_type TEXT NOT NULL,
				submitter_email TEXT NOT NULL,
				source_ip TEXT NOT NULL,
				blocked BOOLEAN NOT NULL DEFAULT 0,
				errors TEXT NOT NULL DEFAULT '[]'
			);
		`,
	},
	{
		Version: "002_create_suspicious_activity",
		SQL: `
			CREATE TABLE IF NOT EXISTS suspicious_activity (
				id TEXT PRIMARY KEY,
				timestamp DATETIME NOT NULL,
				form_type TEXT NOT NULL,
				submitter_email TEXT NOT NULL,
				source_ip TEXT NOT NULL,
				user_agent TEXT NOT NULL,
				reasons TEXT NOT NULL DEFAULT '[]'
			);
		`,
	},
}

// RunMigrations executes all pending migrations
func RunMigrations(db *sql.DB) error {
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if contains(applied, migration.Version) {
			continue
		}

		if err := runMigration(db, migration); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", migration.Version, err)
		}

		if err := recordMigration(db, migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}
	}

	return nil
}

// createMigrationsTable creates the migrations tracking table
func createMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := db.Exec(query)
	return err
}

// getAppliedMigrations returns the versions already recorded
func getAppliedMigrations(db *sql.DB) ([]string, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

func runMigration(db *sql.DB, migration Migration) error {
	_, err := db.Exec(migration.SQL)
	return err
}

func recordMigration(db *sql.DB, version string) error {
	_, err := db.Exec("INSERT INTO migrations (version) VALUES (?)", version)
	return err
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
