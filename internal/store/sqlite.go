package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/sortbench/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS bench_runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	sizes       TEXT NOT NULL,
	workers     INTEGER NOT NULL DEFAULT 1,
	error       TEXT NOT NULL DEFAULT '',
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS measurements (
	run_id     TEXT NOT NULL REFERENCES bench_runs(id),
	seq        INTEGER NOT NULL,
	size       INTEGER NOT NULL,
	algorithm  TEXT NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_bench_runs_status ON bench_runs(status);
CREATE INDEX IF NOT EXISTS idx_bench_runs_started_at ON bench_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, sizes []int, workers int) (*model.Run, error) {
	run := newRun(uuid.New().String(), sizes, workers)

	sizesJSON, err := marshalSizes(sizes)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bench_runs (id, status, sizes, workers, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, string(run.Status), sizesJSON, workers, run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string) error {
	return s.finishRun(ctx, runID, model.RunStatusComplete, "")
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, runErr error) error {
	return s.finishRun(ctx, runID, model.RunStatusFailed, errorText(runErr))
}

func (s *SQLiteStore) finishRun(ctx context.Context, runID string, status model.RunStatus, msg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bench_runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(status), msg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) AddMeasurements(ctx context.Context, runID string, ms []model.Measurement) error {
	if len(ms) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin measurements")
	}
	defer tx.Rollback() //nolint:errcheck

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM measurements WHERE run_id = ?`, runID,
	).Scan(&next); err != nil {
		return eris.Wrapf(err, "sqlite: next measurement seq for %s", runID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO measurements (run_id, seq, size, algorithm, elapsed_ms) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare measurement insert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, m := range ms {
		if _, err := stmt.ExecContext(ctx, runID, next+i, m.Size, string(m.Algorithm), m.ElapsedMS); err != nil {
			return eris.Wrapf(err, "sqlite: insert measurement for %s", runID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit measurements")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, sizes, workers, error, started_at, finished_at FROM bench_runs WHERE id = ?`,
		runID,
	)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT size, algorithm, elapsed_ms FROM measurements WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list measurements %s", runID)
	}
	defer rows.Close()

	for rows.Next() {
		var m model.Measurement
		if err := rows.Scan(&m.Size, &m.Algorithm, &m.ElapsedMS); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan measurement")
		}
		run.Measurements = append(run.Measurements, m)
	}
	return run, eris.Wrap(rows.Err(), "sqlite: list measurements iterate")
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, status, sizes, workers, error, started_at, finished_at FROM bench_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if !filter.StartedAfter.IsZero() {
		query += ` AND started_at >= ?`
		args = append(args, filter.StartedAfter.UTC())
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, filter.limit())

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var sizesJSON string
	var finished sql.NullTime

	err := row.Scan(&r.ID, &r.Status, &sizesJSON, &r.Workers, &r.Error, &r.StartedAt, &finished)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	r.Sizes, err = unmarshalSizes([]byte(sizesJSON))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite")
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}
