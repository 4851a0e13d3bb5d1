package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/sts-risk-cli/internal/model"
)

// sqliteBatch bounds the ids bound into one IN clause.
const sqliteBatch = 500

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
	adapter    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	total      INTEGER NOT NULL DEFAULT 0,
	succeeded  INTEGER NOT NULL DEFAULT 0,
	failed     INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS results (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	patient_id TEXT NOT NULL,
	outcome    TEXT,
	method     TEXT NOT NULL DEFAULT '',
	error      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id);
CREATE INDEX IF NOT EXISTS idx_results_patient_id ON results(patient_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, adapter string, total int) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, adapter, status, total, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, adapter, string(model.RunStatusRunning), total, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
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

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, succeeded, failed int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, succeeded = ?, failed = ?, updated_at = ? WHERE id = ?`,
		string(finishStatus(succeeded, failed)), succeeded, failed, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, adapter, status, total, succeeded, failed, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, adapter, status, total, succeeded, failed, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

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
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveResult(ctx context.Context, result model.Result) error {
	outcomeJSON, err := marshalOutcome(result.Outcome)
	if err != nil {
		return err
	}
	var outcome sql.NullString
	if outcomeJSON != nil {
		outcome = sql.NullString{String: string(outcomeJSON), Valid: true}
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (run_id, patient_id, outcome, method, error, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		result.RunID, result.PatientID, outcome, result.Method, result.Error, result.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: save result %s", result.PatientID)
}

func (s *SQLiteStore) ListResults(ctx context.Context, runID string) ([]model.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, patient_id, outcome, method, error, created_at FROM results WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list results %s", runID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list results iterate")
}

func (s *SQLiteStore) LatestResults(ctx context.Context, patientIDs []string) (map[string]model.Result, error) {
	latest := make(map[string]model.Result)
	for start := 0; start < len(patientIDs); start += sqliteBatch {
		chunk := patientIDs[start:min(start+sqliteBatch, len(patientIDs))]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		query := `SELECT run_id, patient_id, outcome, method, error, created_at FROM results
		 WHERE error = '' AND patient_id IN (` + strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",") + `)
		 ORDER BY id`

		if err := s.collectLatest(ctx, latest, query, args); err != nil {
			return nil, err
		}
	}
	return latest, nil
}

func (s *SQLiteStore) collectLatest(ctx context.Context, into map[string]model.Result, query string, args []any) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return eris.Wrap(err, "sqlite: latest results")
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return err
		}
		into[r.PatientID] = r
	}
	return eris.Wrap(rows.Err(), "sqlite: latest results iterate")
}

// helpers

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
	err := row.Scan(&r.ID, &r.Adapter, &r.Status, &r.Total, &r.Succeeded, &r.Failed, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	return &r, nil
}

func scanResult(row scannable) (model.Result, error) {
	var r model.Result
	var outcomeJSON sql.NullString
	if err := row.Scan(&r.RunID, &r.PatientID, &outcomeJSON, &r.Method, &r.Error, &r.CreatedAt); err != nil {
		return r, eris.Wrap(err, "sqlite: scan result")
	}
	if outcomeJSON.Valid {
		o, err := unmarshalOutcome([]byte(outcomeJSON.String))
		if err != nil {
			return r, err
		}
		r.Outcome = o
	}
	return r, nil
}

func marshalOutcome(o model.Outcome) ([]byte, error) {
	if o == nil {
		return nil, nil
	}
	b, err := json.Marshal(o)
	return b, eris.Wrap(err, "store: marshal outcome")
}

func unmarshalOutcome(b []byte) (model.Outcome, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var o model.Outcome
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal outcome")
	}
	return o, nil
}
