package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/sortbench/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock pools
// satisfy it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

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
CREATE TABLE IF NOT EXISTS bench_runs (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	status      TEXT NOT NULL DEFAULT 'running',
	sizes       JSONB NOT NULL,
	workers     INTEGER NOT NULL DEFAULT 1,
	error       TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS measurements (
	run_id     TEXT NOT NULL REFERENCES bench_runs(id),
	seq        INTEGER NOT NULL,
	size       INTEGER NOT NULL,
	algorithm  TEXT NOT NULL,
	elapsed_ms BIGINT NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_bench_runs_status ON bench_runs(status);
CREATE INDEX IF NOT EXISTS idx_bench_runs_started_at ON bench_runs(started_at);
`

// measurementColumns is the COPY column order for measurements.
var measurementColumns = []string{"run_id", "seq", "size", "algorithm", "elapsed_ms"}

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

func (s *PostgresStore) CreateRun(ctx context.Context, sizes []int, workers int) (*model.Run, error) {
	run := newRun(uuid.New().String(), sizes, workers)

	sizesJSON, err := marshalSizes(sizes)
	if err != nil {
		return nil, eris.Wrap(err, "postgres")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO bench_runs (id, status, sizes, workers, started_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, string(run.Status), sizesJSON, workers, run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string) error {
	return s.finishRun(ctx, runID, model.RunStatusComplete, "")
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, runErr error) error {
	return s.finishRun(ctx, runID, model.RunStatusFailed, errorText(runErr))
}

func (s *PostgresStore) finishRun(ctx context.Context, runID string, status model.RunStatus, msg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE bench_runs SET status = $1, error = $2, finished_at = $3 WHERE id = $4`,
		string(status), msg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

// AddMeasurements bulk-inserts with the COPY protocol, continuing the run's
// sequence numbers.
func (s *PostgresStore) AddMeasurements(ctx context.Context, runID string, ms []model.Measurement) error {
	if len(ms) == 0 {
		return nil
	}

	var next int
	if err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM measurements WHERE run_id = $1`, runID,
	).Scan(&next); err != nil {
		return eris.Wrapf(err, "postgres: next measurement seq for %s", runID)
	}

	rows := make([][]any, 0, len(ms))
	for i, m := range ms {
		rows = append(rows, []any{runID, next + i, m.Size, string(m.Algorithm), m.ElapsedMS})
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"measurements"}, measurementColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return eris.Wrapf(err, "postgres: COPY measurements for %s", runID)
	}
	if n != int64(len(rows)) {
		return eris.Errorf("postgres: copied %d of %d measurements for %s", n, len(rows), runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	run, err := scanPgRun(s.pool.QueryRow(ctx,
		`SELECT id, status, sizes, workers, error, started_at, finished_at FROM bench_runs WHERE id = $1`,
		runID,
	))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT size, algorithm, elapsed_ms FROM measurements WHERE run_id = $1 ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list measurements %s", runID)
	}
	defer rows.Close()

	for rows.Next() {
		var m model.Measurement
		var algo string
		if err := rows.Scan(&m.Size, &algo, &m.ElapsedMS); err != nil {
			return nil, eris.Wrap(err, "postgres: scan measurement")
		}
		m.Algorithm = model.Algorithm(algo)
		run.Measurements = append(run.Measurements, m)
	}
	return run, eris.Wrap(rows.Err(), "postgres: list measurements iterate")
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, status, sizes, workers, error, started_at, finished_at FROM bench_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	if !filter.StartedAfter.IsZero() {
		args = append(args, filter.StartedAfter.UTC())
		query += ` AND started_at >= $` + strconv.Itoa(len(args))
	}
	args = append(args, filter.limit())
	query += ` ORDER BY started_at DESC LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list runs")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var status string
	var sizesJSON []byte
	var finished sql.NullTime

	err := row.Scan(&r.ID, &status, &sizesJSON, &r.Workers, &r.Error, &r.StartedAt, &finished)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan run")
	}

	r.Status = model.RunStatus(status)
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	r.Sizes, err = unmarshalSizes(sizesJSON)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
