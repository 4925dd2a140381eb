package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/orglink/internal/model"
)

// Pool is the subset of *pgxpool.Pool used by PostgresStore.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

var _ Store = (*PostgresStore)(nil)

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"insert_run":        `INSERT INTO runs (id, input, mode, status, total, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"update_run_status": `UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
	"get_run":           `SELECT id, input, mode, status, total, error, created_at, updated_at FROM runs WHERE id = $1`,
	"save_result":       saveResultSQL,
}

const saveResultSQL = `INSERT INTO link_results (
	run_id, record_index, name, location, url, search_url, tel, tel_hyphen,
	company_name, candidate_location, detail_url, score, matched, memo, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (run_id, record_index) DO UPDATE SET
	name = EXCLUDED.name, location = EXCLUDED.location, url = EXCLUDED.url,
	search_url = EXCLUDED.search_url, tel = EXCLUDED.tel, tel_hyphen = EXCLUDED.tel_hyphen,
	company_name = EXCLUDED.company_name, candidate_location = EXCLUDED.candidate_location,
	detail_url = EXCLUDED.detail_url, score = EXCLUDED.score, matched = EXCLUDED.matched,
	memo = EXCLUDED.memo, created_at = EXCLUDED.created_at`

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepared statements need the tables, so the schema is applied first.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, postgresMigration); err != nil {
			return eris.Wrap(err, "postgres: migrate on connect")
		}
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	input      TEXT NOT NULL,
	mode       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	total      INTEGER NOT NULL DEFAULT 0,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
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
	score              DOUBLE PRECISION NOT NULL,
	matched            BOOLEAN NOT NULL,
	memo               TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, record_index)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, input string, mode model.Mode, total int) (*model.Run, error) {
	run := newRun(input, mode, total)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, input, mode, status, total, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.Input, string(run.Mode), string(run.Status), run.Total, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(status), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, input, mode, status, total, error, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)
	r, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get run")
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, input, mode, status, total, error, created_at, updated_at FROM runs`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(` WHERE status = $%d`, len(args))
	}
	args = append(args, listLimit(filter))
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveResult(ctx context.Context, res model.LinkResult) error {
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, saveResultSQL, resultArgs(res)...)
	return eris.Wrapf(err, "postgres: save result %s/%d", res.RunID, res.Record.Index)
}

func (s *PostgresStore) ListResults(ctx context.Context, runID string) ([]model.LinkResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT run_id, record_index, name, location, url, search_url, tel, tel_hyphen,
			company_name, candidate_location, detail_url, score, matched, memo, created_at
		FROM link_results WHERE run_id = $1 ORDER BY record_index`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list results")
	}
	defer rows.Close()

	var out []model.LinkResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan result")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list results iterate")
}

func (s *PostgresStore) RunStats(ctx context.Context, runID string) (model.RunStats, error) {
	var st model.RunStats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE matched) FROM link_results WHERE run_id = $1`,
		runID,
	).Scan(&st.Processed, &st.Matched)
	return st, eris.Wrap(err, "postgres: run stats")
}
