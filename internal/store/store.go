// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists completed pipeline runs in a SQLite database
// and supports retrieval and full-text search over their sources.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "runs.db"
)

// Store manages the run database.
type Store struct {
	db      *sql.DB
	dataDir string
}

// NewStore opens or creates the run database at dataDir/index/runs.db,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dataDir: cfg.DataDir}
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
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			depth TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at TEXT NOT NULL,
			completed_at TEXT,
			sources_found INTEGER,
			sources_validated INTEGER,
			quality_avg REAL,
			state TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE TABLE IF NOT EXISTS run_sources (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			source_id TEXT NOT NULL,
			title TEXT,
			summary TEXT,
			url TEXT,
			source_type TEXT,
			citations INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_sources_run_id ON run_sources(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='run_sources_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE run_sources_fts USING fts5(title, summary, content=run_sources, content_rowid=rowid)`,
			`CREATE TRIGGER run_sources_ai AFTER INSERT ON run_sources BEGIN
				INSERT INTO run_sources_fts(rowid, title, summary) VALUES (new.rowid, new.title, new.summary);
			END`,
			`CREATE TRIGGER run_sources_ad AFTER DELETE ON run_sources BEGIN
				INSERT INTO run_sources_fts(run_sources_fts, rowid, title, summary) VALUES('delete', old.rowid, old.title, old.summary);
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

// RunID derives the stable identifier for a run from its query and
// start time: the first 12 hex characters of SHA-256.
func RunID(state *types.PipelineState) string {
	h := sha256.New()
	h.Write([]byte(state.Query))
	h.Write([]byte(state.StartedAt.UTC().Format(time.RFC3339Nano)))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// SaveRun persists a run and its validated sources. Saving the same run
// again replaces the previous record. Failed runs are saved too; the
// partial state is often the most useful diagnostic.
func (s *Store) SaveRun(ctx context.Context, state *types.PipelineState) (string, error) {
	id := RunID(state)

	stateYAML, err := yaml.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("marshaling state: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	completedAt := ""
	if !state.CompletedAt.IsZero() {
		completedAt = state.CompletedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, query, depth, status, started_at, completed_at, sources_found, sources_validated, quality_avg, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			status=excluded.status, completed_at=excluded.completed_at,
			sources_found=excluded.sources_found, sources_validated=excluded.sources_validated,
			quality_avg=excluded.quality_avg, state=excluded.state`,
		id, state.Query, string(state.Depth), string(state.Status),
		state.StartedAt.UTC().Format(time.RFC3339Nano), completedAt,
		len(state.RawSources), len(state.ValidatedSources),
		state.SourceQualityAvg, string(stateYAML),
	)
	if err != nil {
		return "", fmt.Errorf("upserting run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_sources WHERE run_id = ?`, id); err != nil {
		return "", fmt.Errorf("deleting old sources: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_sources (run_id, source_id, title, summary, url, source_type, citations)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, src := range state.ValidatedSources {
		_, err := stmt.ExecContext(ctx,
			id, src.ID, src.Title, src.Summary, src.URL, string(src.SourceType), src.CitationCount)
		if err != nil {
			return "", fmt.Errorf("inserting source %s: %w", src.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// GetRun loads a run's full state by id.
func (s *Store) GetRun(ctx context.Context, id string) (*types.PipelineState, error) {
	var stateYAML string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM runs WHERE id = ?`, id).Scan(&stateYAML)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}

	var state types.PipelineState
	if err := yaml.Unmarshal([]byte(stateYAML), &state); err != nil {
		return nil, fmt.Errorf("parsing run %s state: %w", id, err)
	}
	return &state, nil
}

// RunRecord is a run summary row.
type RunRecord struct {
	ID               string    `json:"id" yaml:"id"`
	Query            string    `json:"query" yaml:"query"`
	Depth            string    `json:"depth" yaml:"depth"`
	Status           string    `json:"status" yaml:"status"`
	StartedAt        time.Time `json:"started_at" yaml:"started_at"`
	SourcesFound     int       `json:"sources_found" yaml:"sources_found"`
	SourcesValidated int       `json:"sources_validated" yaml:"sources_validated"`
	QualityAvg       float64   `json:"quality_avg" yaml:"quality_avg"`
}

// ListRuns returns run summaries, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, depth, status, started_at, sources_found, sources_validated, quality_avg
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var startedAt string
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Depth, &rec.Status, &startedAt,
			&rec.SourcesFound, &rec.SourcesValidated, &rec.QualityAvg); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SourceMatch is a full-text search hit over stored run sources.
type SourceMatch struct {
	RunID    string `json:"run_id" yaml:"run_id"`
	SourceID string `json:"source_id" yaml:"source_id"`
	Title    string `json:"title" yaml:"title"`
	URL      string `json:"url" yaml:"url"`
}

// SearchSources runs an FTS query over the titles and summaries of all
// stored run sources.
func (s *Store) SearchSources(ctx context.Context, query string, limit int) ([]SourceMatch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT rs.run_id, rs.source_id, rs.title, rs.url
		 FROM run_sources_fts fts
		 JOIN run_sources rs ON rs.rowid = fts.rowid
		 WHERE run_sources_fts MATCH ?
		 ORDER BY rank LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching sources: %w", err)
	}
	defer rows.Close()

	var matches []SourceMatch
	for rows.Next() {
		var m SourceMatch
		if err := rows.Scan(&m.RunID, &m.SourceID, &m.Title, &m.URL); err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ExportYAML writes all run summaries to dataDir/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	records, err := s.ListRuns(ctx)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(struct {
		Runs []RunRecord `yaml:"runs"`
	}{Runs: records})
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}

	path := filepath.Join(s.dataDir, "export.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
