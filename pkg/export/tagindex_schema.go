package export

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates the tag index tables, indexes and views.
func CreateSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE pages (
			slug  TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			path  TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE page_tags (
			slug     TEXT NOT NULL REFERENCES pages(slug),
			position INTEGER NOT NULL,
			tag      TEXT NOT NULL,
			PRIMARY KEY (slug, position)
		)`,
		`CREATE TABLE concepts (
			position INTEGER PRIMARY KEY,
			name     TEXT NOT NULL,
			tag      TEXT NOT NULL UNIQUE,
			count    INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE export_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX idx_page_tags_tag ON page_tags(tag)`,
		// Counts occurrences, so a page listing a tag twice counts twice.
		`CREATE VIEW tag_counts AS
			SELECT tag, COUNT(*) AS count
			FROM page_tags
			GROUP BY tag`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// InsertMetaValue inserts or replaces a key-value pair in export_meta.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// OptimizeDatabase compacts the database for static hosting.
func OptimizeDatabase(db *sql.DB) error {
	for _, pragma := range []string{
		`PRAGMA journal_mode=DELETE`,
		`ANALYZE`,
		`PRAGMA optimize`,
	} {
		// Some pragmas may fail depending on state, continue
		_, _ = db.Exec(pragma)
	}

	// VACUUM must be last and outside transaction
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
