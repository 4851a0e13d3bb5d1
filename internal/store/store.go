package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sts-risk-cli/internal/config"
	"github.com/sells-group/sts-risk-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for batch runs and their results.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, adapter string, total int) (*model.Run, error)
	FinishRun(ctx context.Context, runID string, succeeded, failed int) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Results
	SaveResult(ctx context.Context, result model.Result) error
	ListResults(ctx context.Context, runID string) ([]model.Result, error)
	// LatestResults returns the most recent successful result for each of
	// the given patient ids that has one.
	LatestResults(ctx context.Context, patientIDs []string) (map[string]model.Result, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the store selected by cfg and applies its migration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "", config.DriverSQLite:
		s, err = NewSQLite(cfg.DatabaseURL)
	case config.DriverPostgres:
		s, err = NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}

// finishStatus maps result counts to the final run status.
func finishStatus(succeeded, failed int) model.RunStatus {
	if failed > 0 && succeeded == 0 {
		return model.RunStatusFailed
	}
	return model.RunStatusComplete
}
