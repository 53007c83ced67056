// Package store handles SQLite persistence of imported corpora and sweep runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/orthostat/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout keeps fixed-width fractions so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a corpus or run does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps SQLite access.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS corpora (
			name TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			entries INTEGER NOT NULL,
			total_freq REAL NOT NULL,
			imported_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS corpus_entries (
			corpus TEXT NOT NULL,
			rank INTEGER NOT NULL,
			word TEXT NOT NULL,
			freq REAL NOT NULL,
			PRIMARY KEY (corpus, rank)
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			corpus TEXT NOT NULL,
			rules_path TEXT NOT NULL,
			baseline REAL NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			candidates INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_results (
			run_id TEXT NOT NULL,
			rank INTEGER NOT NULL,
			candidate TEXT NOT NULL,
			score REAL NOT NULL,
			failure_rate REAL NOT NULL,
			words TEXT NOT NULL,
			PRIMARY KEY (run_id, rank)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ImportCorpus stores entries under name, replacing any previous corpus with
// the same name. Entries are stored in the given order.
func (s *Store) ImportCorpus(ctx context.Context, name, source string, entries []model.Entry) (err error) {
	if name == "" {
		return fmt.Errorf("corpus name is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM corpus_entries WHERE corpus = ?`, name); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO corpus_entries (corpus, rank, word, freq) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	var total float64
	for i, e := range entries {
		if _, err = stmt.ExecContext(ctx, name, i, e.Word, e.Freq); err != nil {
			return err
		}
		total += e.Freq
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO corpora (name, source, entries, total_freq, imported_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET source = excluded.source, entries = excluded.entries,
		 total_freq = excluded.total_freq, imported_at = excluded.imported_at`,
		name, source, len(entries), total, formatTime(time.Now()))
	if err != nil {
		return err
	}
	return tx.Commit()
}

// LoadCorpus returns the entries of an imported corpus in stored order.
func (s *Store) LoadCorpus(ctx context.Context, name string) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word, freq FROM corpus_entries WHERE corpus = ? ORDER BY rank ASC`, name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.Entry
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.Word, &e.Freq); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("corpus %q: %w", name, ErrNotFound)
	}
	return entries, nil
}

// ListCorpora returns imported corpora ordered by name.
func (s *Store) ListCorpora(ctx context.Context) ([]model.CorpusInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, source, entries, total_freq, imported_at FROM corpora ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.CorpusInfo
	for rows.Next() {
		var info model.CorpusInfo
		var importedAt string
		if err := rows.Scan(&info.Name, &info.Source, &info.Entries, &info.TotalFreq, &importedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, importedAt)
		if err != nil {
			return nil, err
		}
		info.ImportedAt = parsed
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertRun stores a sweep run and its ranked results. A new ID is assigned
// when run.ID is empty; the stored ID is returned.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord, results []model.RunResult) (id string, err error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, corpus, rules_path, baseline, started_at, ended_at, candidates)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Kind,
		run.Corpus,
		run.RulesPath,
		run.Baseline,
		formatTime(run.StartedAt),
		formatTime(run.EndedAt),
		len(results),
	)
	if err != nil {
		return "", err
	}

	if len(results) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_results (run_id, rank, candidate, score, failure_rate, words) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, r := range results {
			if _, err := stmt.ExecContext(ctx, run.ID, r.Rank, r.Candidate, r.Score, r.FailureRate, strings.Join(r.Words, " ")); err != nil {
				return "", err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// ListRuns returns runs newest first, optionally filtered by kind and limited
// to the last n (n <= 0 means all).
func (s *Store) ListRuns(ctx context.Context, kind string, n int) ([]model.RunRecord, error) {
	query := `SELECT id, kind, corpus, rules_path, baseline, started_at, ended_at, candidates
		FROM runs
		WHERE (? = '' OR kind = ?)
		ORDER BY ended_at DESC`
	args := []any{kind, kind}
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns a single run by ID or ID prefix.
func (s *Store) GetRun(ctx context.Context, id string) (model.RunRecord, error) {
	if id == "" {
		return model.RunRecord{}, fmt.Errorf("run id is required")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, corpus, rules_path, baseline, started_at, ended_at, candidates
		 FROM runs WHERE id LIKE ? || '%' ORDER BY ended_at DESC LIMIT 2`, id)
	if err != nil {
		return model.RunRecord{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var found []model.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return model.RunRecord{}, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return model.RunRecord{}, err
	}
	switch len(found) {
	case 0:
		return model.RunRecord{}, fmt.Errorf("run %q: %w", id, ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return model.RunRecord{}, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// ListResults returns the ranked results of a run.
func (s *Store) ListResults(ctx context.Context, runID string) ([]model.RunResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, candidate, score, failure_rate, words FROM run_results WHERE run_id = ? ORDER BY rank ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.RunResult
	for rows.Next() {
		var r model.RunResult
		var words string
		if err := rows.Scan(&r.Rank, &r.Candidate, &r.Score, &r.FailureRate, &words); err != nil {
			return nil, err
		}
		r.Words = strings.Fields(words)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (model.RunRecord, error) {
	var run model.RunRecord
	var startedAt, endedAt string
	if err := row.Scan(&run.ID, &run.Kind, &run.Corpus, &run.RulesPath, &run.Baseline, &startedAt, &endedAt, &run.Candidates); err != nil {
		return model.RunRecord{}, err
	}
	var err error
	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return model.RunRecord{}, err
	}
	if run.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
