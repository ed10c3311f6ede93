package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/rcliao/student-model/internal/model"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS concepts (
	name              TEXT PRIMARY KEY,
	mastery           INTEGER NOT NULL,
	confidence        TEXT NOT NULL,
	first_encountered TEXT,
	last_reviewed     TEXT
);

CREATE TABLE IF NOT EXISTS concept_notes (
	concept TEXT NOT NULL REFERENCES concepts(name),
	kind    TEXT NOT NULL,
	seq     INTEGER NOT NULL,
	text    TEXT NOT NULL,
	PRIMARY KEY (concept, kind, seq)
);

CREATE TABLE IF NOT EXISTS concept_links (
	from_concept TEXT NOT NULL REFERENCES concepts(name),
	to_concept   TEXT NOT NULL,
	seq          INTEGER NOT NULL,
	PRIMARY KEY (from_concept, to_concept)
);
CREATE INDEX IF NOT EXISTS idx_links_to ON concept_links(to_concept);

CREATE TABLE IF NOT EXISTS misconceptions (
	seq             INTEGER PRIMARY KEY,
	id              TEXT,
	concept         TEXT NOT NULL,
	belief          TEXT NOT NULL,
	correction      TEXT NOT NULL,
	date_identified TEXT,
	resolved        INTEGER NOT NULL DEFAULT 0,
	date_resolved   TEXT
);
CREATE INDEX IF NOT EXISTS idx_misconceptions_concept ON misconceptions(concept);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT
);
`

var snapshotTables = []string{"concept_notes", "concept_links", "misconceptions", "concepts", "metadata"}

// ExportSQLite writes a relational snapshot of doc to a SQLite database at
// dbPath, replacing any previous snapshot in that database. The JSON document
// remains the source of truth; the snapshot is for ad-hoc SQL queries.
func ExportSQLite(ctx context.Context, doc *model.Document, dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(on)")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range snapshotTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	meta := map[string]string{
		"schema_version":  doc.SchemaVersion,
		"created":         doc.Metadata.Created.String(),
		"last_updated":    doc.Metadata.LastUpdated.String(),
		"student_profile": doc.Metadata.StudentProfile,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO metadata (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert metadata: %w", err)
		}
	}

	names := make([]string, 0, len(doc.Concepts))
	for name := range doc.Concepts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := doc.Concepts[name]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO concepts (name, mastery, confidence, first_encountered, last_reviewed)
			 VALUES (?, ?, ?, ?, ?)`,
			name, c.Mastery, string(c.Confidence), nullable(c.FirstEncountered), nullable(c.LastReviewed))
		if err != nil {
			return fmt.Errorf("insert concept %q: %w", name, err)
		}
		if err := insertNotes(ctx, tx, name, "struggle", c.Struggles); err != nil {
			return err
		}
		if err := insertNotes(ctx, tx, name, "breakthrough", c.Breakthroughs); err != nil {
			return err
		}
		for i, rel := range c.RelatedConcepts {
			_, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO concept_links (from_concept, to_concept, seq) VALUES (?, ?, ?)`,
				name, rel, i)
			if err != nil {
				return fmt.Errorf("insert link %q -> %q: %w", name, rel, err)
			}
		}
	}

	for i, m := range doc.Misconceptions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO misconceptions (seq, id, concept, belief, correction, date_identified, resolved, date_resolved)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i, m.ID, m.Concept, m.Belief, m.Correction,
			nullable(m.DateIdentified), m.Resolved, nullable(m.DateResolved))
		if err != nil {
			return fmt.Errorf("insert misconception: %w", err)
		}
	}

	return tx.Commit()
}

func insertNotes(ctx context.Context, tx *sql.Tx, concept, kind string, notes []string) error {
	for i, text := range notes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO concept_notes (concept, kind, seq, text) VALUES (?, ?, ?, ?)`,
			concept, kind, i, text)
		if err != nil {
			return fmt.Errorf("insert %s for %q: %w", kind, concept, err)
		}
	}
	return nil
}

func nullable(t model.Timestamp) *string {
	if t.IsZero() {
		return nil
	}
	s := t.String()
	return &s
}
