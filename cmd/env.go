package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rotisserie/eris"

	"github.com/sells-group/sts-risk-cli/internal/batch"
	"github.com/sells-group/sts-risk-cli/internal/config"
	"github.com/sells-group/sts-risk-cli/internal/resilience"
	"github.com/sells-group/sts-risk-cli/internal/store"
	"github.com/sells-group/sts-risk-cli/internal/sts"
	"github.com/sells-group/sts-risk-cli/internal/tabular"
)

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store)
}

// newAdapter builds the adapter named by c.Batch.Adapter, wrapped in the
// reply cache when enabled.
func newAdapter(c *config.Config) (sts.Adapter, error) {
	timeout := time.Duration(c.STS.TimeoutSecs) * time.Second
	pacing := time.Duration(c.STS.PacingMs) * time.Millisecond
	pacer := sts.NewPacer(pacing)

	var adapter sts.Adapter
	switch c.Batch.Adapter {
	case config.AdapterRequest:
		adapter = sts.NewRequestAdapter(c.STS.RequestURL,
			sts.WithHTTPClient(&http.Client{Timeout: timeout}),
			sts.WithRequestPacer(pacer),
			sts.WithPostDelay(pacing),
			sts.WithRetry(resilience.FromRetryConfig(c.Retry)),
			sts.WithRequestUserAgent(c.STS.UserAgent),
		)
	case config.AdapterStream:
		adapter = sts.NewStreamAdapter(c.STS.StreamURL,
			sts.WithOrigin(c.STS.Origin),
			sts.WithReferer(c.STS.Referer),
			sts.WithStreamUserAgent(c.STS.UserAgent),
			sts.WithStreamPacer(pacer),
			sts.WithReadTimeout(timeout),
			sts.WithDialer(&websocket.Dialer{
				Proxy:            http.ProxyFromEnvironment,
				HandshakeTimeout: timeout,
			}),
		)
	default:
		return nil, eris.Errorf("unknown adapter %q", c.Batch.Adapter)
	}

	if !c.Cache.Enabled {
		return adapter, nil
	}
	return sts.NewCachedAdapter(adapter, c.Cache.Size)
}

func newBreaker(c *config.Config) *resilience.CircuitBreaker {
	bc := resilience.FromBreakerConfig(c.Breaker)
	bc.OnStateChange = resilience.LogStateChange(c.Batch.Adapter)
	return resilience.NewCircuitBreaker(bc)
}

// loadRows reads a batch input file into orchestrator rows.
func loadRows(ctx context.Context, path string) ([]batch.Row, error) {
	table, err := tabular.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	rows := make([]batch.Row, len(table.Rows))
	for i, r := range table.Rows {
		rows[i] = batch.Row{Line: r.Line, Fields: r.Fields}
	}
	return rows, nil
}

// loadOverrides merges the overrides file, if any, with --set pairs. The
// pairs win.
func loadOverrides(file string, pairs []string) (batch.Overrides, error) {
	flags, err := batch.ParseOverrides(pairs)
	if err != nil {
		return nil, err
	}
	if file == "" {
		return flags, nil
	}
	fromFile, err := batch.LoadOverridesFile(file)
	if err != nil {
		return nil, err
	}
	return fromFile.Merge(flags), nil
}
