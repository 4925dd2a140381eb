package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/orglink/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// A single connection keeps in-memory databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	input      TEXT NOT NULL,
	mode       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	total      INTEGER NOT NULL DEFAULT 0,
	error      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS link_results (
	run_id             TEXT NOT NULL REFERENCES runs(id),
	record_index       INTEGER NOT NULL,
	name               TEXT NOT NULL,
	location           TEXT NOT NULL,
	url                TEXT NOT NULL,
	search_url         TEXT NOT NULL,
	tel                TEXT NOT NULL,
	tel_hyphen         TEXT NOT NULL,
	company_name       TEXT NOT NULL,
	candidate_location TEXT NOT NULL,
	detail_url         TEXT NOT NULL,
	score              REAL NOT NULL,
	matched            INTEGER NOT NULL,
	memo               TEXT NOT NULL,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (run_id, record_index)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, input string, mode model.Mode, total int) (*model.Run, error) {
	run := newRun(input, mode, total)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input, mode, status, total, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Input, string(run.Mode), string(run.Status), run.Total, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input, mode, status, total, error, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get run")
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, input, mode, status, total, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, listLimit(filter))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveResult(ctx context.Context, res model.LinkResult) error {
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO link_results (
			run_id, record_index, name, location, url, search_url, tel, tel_hyphen,
			company_name, candidate_location, detail_url, score, matched, memo, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, record_index) DO UPDATE SET
			name = excluded.name, location = excluded.location, url = excluded.url,
			search_url = excluded.search_url, tel = excluded.tel, tel_hyphen = excluded.tel_hyphen,
			company_name = excluded.company_name, candidate_location = excluded.candidate_location,
			detail_url = excluded.detail_url, score = excluded.score, matched = excluded.matched,
			memo = excluded.memo, created_at = excluded.created_at`,
		resultArgs(res)...,
	)
	return eris.Wrapf(err, "sqlite: save result %s/%d", res.RunID, res.Record.Index)
}

func (s *SQLiteStore) ListResults(ctx context.Context, runID string) ([]model.LinkResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, record_index, name, location, url, search_url, tel, tel_hyphen,
			company_name, candidate_location, detail_url, score, matched, memo, created_at
		FROM link_results WHERE run_id = ? ORDER BY record_index`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.LinkResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list results iterate")
}

func (s *SQLiteStore) RunStats(ctx context.Context, runID string) (model.RunStats, error) {
	var st model.RunStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(matched), 0) FROM link_results WHERE run_id = ?`,
		runID,
	).Scan(&st.Processed, &st.Matched)
	return st, eris.Wrap(err, "sqlite: run stats")
}

// helpers

func newRun(input string, mode model.Mode, total int) *model.Run {
	now := time.Now().UTC()
	return &model.Run{
		ID:        uuid.New().String(),
		Input:     input,
		Mode:      mode,
		Status:    model.RunStatusRunning,
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func resultArgs(r model.LinkResult) []any {
	return []any{
		r.RunID, r.Record.Index, r.Record.Name, r.Record.Location, r.Record.URL, r.SearchURL,
		r.Tel, r.TelHyphen, r.CompanyName, r.Location, r.DetailURL, r.Score, r.Matched, r.Memo,
		r.CreatedAt,
	}
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var mode, status string
	if err := row.Scan(&r.ID, &r.Input, &mode, &status, &r.Total, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Mode = model.Mode(mode)
	r.Status = model.RunStatus(status)
	return &r, nil
}

func scanResult(row scannable) (model.LinkResult, error) {
	var r model.LinkResult
	err := row.Scan(
		&r.RunID, &r.Record.Index, &r.Record.Name, &r.Record.Location, &r.Record.URL, &r.SearchURL,
		&r.Tel, &r.TelHyphen, &r.CompanyName, &r.Location, &r.DetailURL, &r.Score, &r.Matched, &r.Memo,
		&r.CreatedAt,
	)
	return r, err
}
