package export

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/vanderheijden86/conceptnav/pkg/conceptnav"
	"github.com/vanderheijden86/conceptnav/pkg/model"
	"github.com/vanderheijden86/conceptnav/pkg/version"

	_ "modernc.org/sqlite"
)

// TagIndexFile is the database file name inside a bundle.
const TagIndexFile = "tags.sqlite3"

// WriteTagIndex writes a SQLite database with every page, its tags, and the
// resolved concept list in render order. An existing file is replaced.
func WriteTagIndex(path string, pages []model.Page, items []conceptnav.Item) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := insertPages(db, pages); err != nil {
		return fmt.Errorf("insert pages: %w", err)
	}
	if err := insertConcepts(db, items); err != nil {
		return fmt.Errorf("insert concepts: %w", err)
	}

	meta := map[string]string{
		"version":     version.Version,
		"exported_at": time.Now().UTC().Format(time.RFC3339),
		"page_count":  fmt.Sprintf("%d", len(pages)),
	}
	for k, v := range meta {
		if err := InsertMetaValue(db, k, v); err != nil {
			return fmt.Errorf("insert meta: %w", err)
		}
	}

	if err := OptimizeDatabase(db); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func insertPages(db *sql.DB, pages []model.Page) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pageStmt, err := tx.Prepare(`INSERT INTO pages (slug, title, path) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer pageStmt.Close()

	tagStmt, err := tx.Prepare(`INSERT INTO page_tags (slug, position, tag) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer tagStmt.Close()

	for _, p := range pages {
		if _, err := pageStmt.Exec(p.Slug, p.Title(), p.FilePath); err != nil {
			return fmt.Errorf("page %s: %w", p.Slug, err)
		}
		for i, tag := range p.Tags() {
			if _, err := tagStmt.Exec(p.Slug, i, tag); err != nil {
				return fmt.Errorf("page %s tag %q: %w", p.Slug, tag, err)
			}
		}
	}

	return tx.Commit()
}

func insertConcepts(db *sql.DB, items []conceptnav.Item) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO concepts (position, name, tag, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err := stmt.Exec(i, item.Concept.Name, item.Concept.Tag, item.Count); err != nil {
			return fmt.Errorf("concept %s: %w", item.Concept.Name, err)
		}
	}

	return tx.Commit()
}
