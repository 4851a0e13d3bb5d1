package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/sts-risk-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock pools satisfy
// it in tests.
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

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"insert_run":  `INSERT INTO runs (id, adapter, status, total, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"finish_run":  `UPDATE runs SET status = $1, succeeded = $2, failed = $3, updated_at = $4 WHERE id = $5`,
	"get_run":     `SELECT id, adapter, status, total, succeeded, failed, created_at, updated_at FROM runs WHERE id = $1`,
	"save_result": `INSERT INTO results (run_id, patient_id, outcome, method, error, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := newPoolConfig(connString, poolCfg)
	if err != nil {
		return nil, err
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

func newPoolConfig(connString string, poolCfg *PoolConfig) (*pgxpool.Config, error) {
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

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}
	return pgxCfg, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	adapter    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	total      INTEGER NOT NULL DEFAULT 0,
	succeeded  INTEGER NOT NULL DEFAULT 0,
	failed     INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS results (
	id         BIGSERIAL PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	patient_id TEXT NOT NULL,
	outcome    JSONB,
	method     TEXT NOT NULL DEFAULT '',
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id);
CREATE INDEX IF NOT EXISTS idx_results_patient_ok ON results(patient_id) WHERE error = '';
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

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

func (s *PostgresStore) CreateRun(ctx context.Context, adapter string, total int) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, adapter, status, total, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, adapter, string(model.RunStatusRunning), total, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Adapter:   adapter,
		Status:    model.RunStatusRunning,
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, runID string, succeeded, failed int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, succeeded = $2, failed = $3, updated_at = $4 WHERE id = $5`,
		string(finishStatus(succeeded, failed)), succeeded, failed, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	err := s.pool.QueryRow(ctx,
		`SELECT id, adapter, status, total, succeeded, failed, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Adapter, &r.Status, &r.Total, &r.Succeeded, &r.Failed, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("run not found: %s", runID)
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, adapter, status, total, succeeded, failed, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.Adapter, &r.Status, &r.Total, &r.Succeeded, &r.Failed, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveResult(ctx context.Context, result model.Result) error {
	outcomeJSON, err := marshalOutcome(result.Outcome)
	if err != nil {
		return err
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO results (run_id, patient_id, outcome, method, error, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		result.RunID, result.PatientID, outcomeJSON, result.Method, result.Error, result.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: save result %s", result.PatientID)
}

func (s *PostgresStore) ListResults(ctx context.Context, runID string) ([]model.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT run_id, patient_id, outcome, method, error, created_at FROM results WHERE run_id = $1 ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list results %s", runID)
	}
	defer rows.Close()

	var out []model.Result
	for rows.Next() {
		r, err := scanPostgresResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list results iterate")
}

func (s *PostgresStore) LatestResults(ctx context.Context, patientIDs []string) (map[string]model.Result, error) {
	latest := make(map[string]model.Result)
	if len(patientIDs) == 0 {
		return latest, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT ON (patient_id) run_id, patient_id, outcome, method, error, created_at FROM results
		 WHERE error = '' AND patient_id = ANY($1)
		 ORDER BY patient_id, id DESC`,
		patientIDs,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest results")
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanPostgresResult(rows)
		if err != nil {
			return nil, err
		}
		latest[r.PatientID] = r
	}
	return latest, eris.Wrap(rows.Err(), "postgres: latest results iterate")
}

func scanPostgresResult(rows pgx.Rows) (model.Result, error) {
	var r model.Result
	var outcomeJSON []byte
	if err := rows.Scan(&r.RunID, &r.PatientID, &outcomeJSON, &r.Method, &r.Error, &r.CreatedAt); err != nil {
		return r, eris.Wrap(err, "postgres: scan result")
	}
	o, err := unmarshalOutcome(outcomeJSON)
	if err != nil {
		return r, err
	}
	r.Outcome = o
	return r, nil
}
