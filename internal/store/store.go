// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store indexes saved extraction results in SQLite so triples from
// many runs can be searched and exported together.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/openie-runner/pkg/types"
)

const (
	extractedDir = "extracted"
	indexDir     = "index"
	dbFile       = "triples.db"
	resultSuffix = "-triples.yaml"
)

// ExtractedDir returns the directory Ingest reads results from.
func ExtractedDir(cfg types.StoreConfig) string {
	return filepath.Join(cfg.Dir, extractedDir)
}

// Store manages the triple store SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the database at dir/index/triples.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dir:        cfg.Dir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			files TEXT,
			extracted_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS triples (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			source_id TEXT NOT NULL REFERENCES sources(id),
			position INTEGER NOT NULL,
			subject TEXT NOT NULL,
			relation TEXT NOT NULL,
			object TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_source ON triples(source_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_triples_relation ON triples(relation)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			source_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS4 external-content table kept in sync by triggers. The delete side
	// must run before the content row disappears.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='triples_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE triples_fts USING fts4(content="triples", subject, relation, object)`,
			`CREATE TRIGGER triples_bd BEFORE DELETE ON triples BEGIN
				DELETE FROM triples_fts WHERE docid = old.rowid;
			END`,
			`CREATE TRIGGER triples_bu BEFORE UPDATE ON triples BEGIN
				DELETE FROM triples_fts WHERE docid = old.rowid;
			END`,
			`CREATE TRIGGER triples_au AFTER UPDATE ON triples BEGIN
				INSERT INTO triples_fts(docid, subject, relation, object)
				VALUES (new.rowid, new.subject, new.relation, new.object);
			END`,
			`CREATE TRIGGER triples_ai AFTER INSERT ON triples BEGIN
				INSERT INTO triples_fts(docid, subject, relation, object)
				VALUES (new.rowid, new.subject, new.relation, new.object);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of sources processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads result files from dir/extracted/ and populates the database.
// Unchanged files are skipped; changed files replace the source's triples.
// When anything changed it writes index/export.yaml.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	extractDir := filepath.Join(s.dir, extractedDir)

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading extraction directory %s: %w", extractDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), resultSuffix) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		sourceID := strings.TrimSuffix(entry.Name(), resultSuffix)
		filePath := filepath.Join(extractDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", sourceID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE source_id = ?`, sourceID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", sourceID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", sourceID, err)
			summary.Failed++
			continue
		}

		var result types.ExtractionResult
		if err := yaml.Unmarshal(data, &result); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", sourceID, err)
			summary.Failed++
			continue
		}

		if err := s.ingestSource(ctx, sourceID, &result, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", sourceID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d triples)\n", sourceID, len(result.Records))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d triples)\n", sourceID, len(result.Records))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if _, err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestSource(ctx context.Context, sourceID string, result *types.ExtractionResult, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM triples WHERE source_id = ?`, sourceID); err != nil {
			return fmt.Errorf("deleting old triples: %w", err)
		}
	}

	filesJSON, _ := json.Marshal(result.Files)
	extractedAt := ""
	if !result.ExtractedAt.IsZero() {
		extractedAt = result.ExtractedAt.UTC().Format(time.RFC3339)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sources (id, files, extracted_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET files=excluded.files, extracted_at=excluded.extracted_at`,
		sourceID, string(filesJSON), extractedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting source: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO triples (id, source_id, position, subject, relation, object)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range result.Records {
		id := tripleID(sourceID, i, rec)
		if _, err := stmt.ExecContext(ctx, id, sourceID, i, rec.Subject, rec.Relation, rec.Object); err != nil {
			return fmt.Errorf("inserting triple %s: %w", id, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (source_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(source_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		sourceID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// tripleID is the first 12 hex characters of
// SHA-256(source, position, subject, relation, object).
func tripleID(sourceID string, position int, r types.Record) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%s\x00%s\x00%s", sourceID, position, r.Subject, r.Relation, r.Object)
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
