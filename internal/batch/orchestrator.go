// Package batch validates a batch of patient rows, queries the calculator for
// each one and collects the outcomes by patient identifier.
package batch

import (
	"context"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sts-risk-cli/internal/model"
	"github.com/sells-group/sts-risk-cli/internal/parse"
	"github.com/sells-group/sts-risk-cli/internal/record"
	"github.com/sells-group/sts-risk-cli/internal/resilience"
	"github.com/sells-group/sts-risk-cli/internal/schema"
	"github.com/sells-group/sts-risk-cli/internal/store"
	"github.com/sells-group/sts-risk-cli/internal/sts"
)

// ErrNotQueried marks rows skipped because the batch was interrupted.
var ErrNotQueried = eris.New("batch: not queried")

// Row is one raw input row. Line locates it in the source file.
type Row struct {
	Line   int
	Fields map[string]string
}

// Orchestrator drives rows through validation and the calculator.
type Orchestrator struct {
	adapter     sts.Adapter
	validator   *record.Validator
	breaker     *resilience.CircuitBreaker
	store       store.Store
	overrides   Overrides
	concurrency int
	resume      bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithValidator replaces the default validator.
func WithValidator(v *record.Validator) Option {
	return func(o *Orchestrator) { o.validator = v }
}

// WithBreaker guards calculator calls with cb.
func WithBreaker(cb *resilience.CircuitBreaker) Option {
	return func(o *Orchestrator) { o.breaker = cb }
}

// WithStore persists every result to s.
func WithStore(s store.Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithResume skips identifiers that already have a stored outcome. It needs
// a store.
func WithResume(resume bool) Option {
	return func(o *Orchestrator) { o.resume = resume }
}

// WithOverrides applies ov to every row before validation.
func WithOverrides(ov Overrides) Option {
	return func(o *Orchestrator) { o.overrides = ov }
}

// WithConcurrency queries up to n rows at once. Pacing stays shared through
// the adapter.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) { o.concurrency = n }
}

// New creates an Orchestrator sending records through adapter.
func New(adapter sts.Adapter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		adapter:     adapter,
		validator:   record.NewValidator(nil),
		breaker:     resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	return o
}

// Prepare applies overrides and validates every row, then checks that
// identifiers are unique. It never touches the network.
func (o *Orchestrator) Prepare(rows []Row) ([]*record.Canonical, error) {
	reg := o.validator.Registry()
	if err := o.overrides.Check(reg); err != nil {
		return nil, err
	}

	recs := make([]*record.Canonical, len(rows))
	var invalid []RowError
	for i, row := range rows {
		fields := o.overrides.Apply(row.Fields)
		id := strings.TrimSpace(fields[schema.PatientID])

		rec, violations := o.validator.Validate(fields)
		if id == "" || len(violations) > 0 {
			invalid = append(invalid, RowError{
				Line:       row.Line,
				ID:         id,
				MissingID:  id == "",
				Violations: violations,
			})
			continue
		}
		recs[i] = rec
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Total: len(rows), Rows: invalid}
	}

	if err := checkUnique(rows, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func checkUnique(rows []Row, recs []*record.Canonical) error {
	lines := make(map[string][]int, len(recs))
	var order []string
	for i, rec := range recs {
		id := rec.ID()
		if _, ok := lines[id]; !ok {
			order = append(order, id)
		}
		lines[id] = append(lines[id], rows[i].Line)
	}

	var dups []Duplicate
	for _, id := range order {
		if len(lines[id]) > 1 {
			dups = append(dups, Duplicate{ID: id, Lines: lines[id]})
		}
	}
	if len(dups) > 0 {
		return &DuplicateIdentifierError{Duplicates: dups}
	}
	return nil
}

// Run validates rows, then queries each record and collects the outcomes.
// Validation and duplicate errors return before any query. Per-record
// failures are kept in the report and never stop the batch. If ctx is
// cancelled, rows not yet started are marked ErrNotQueried and Run returns
// the partial report along with the context error.
func (o *Orchestrator) Run(ctx context.Context, rows []Row) (*Report, error) {
	recs, err := o.Prepare(rows)
	if err != nil {
		return nil, err
	}

	report := &Report{Adapter: o.adapter.Name(), Entries: make([]Entry, len(recs))}
	for i, rec := range recs {
		report.Entries[i] = Entry{ID: rec.ID(), Line: rows[i].Line, Err: ErrNotQueried}
	}

	pending, err := o.resumeStored(ctx, report)
	if err != nil {
		return nil, err
	}

	if o.store != nil {
		run, err := o.store.CreateRun(ctx, o.adapter.Name(), len(recs))
		if err != nil {
			return nil, eris.Wrap(err, "batch: create run")
		}
		report.RunID = run.ID
	}

	log := zap.L().With(zap.String("adapter", o.adapter.Name()), zap.String("run_id", report.RunID))
	log.Info("batch: querying",
		zap.Int("records", len(recs)),
		zap.Int("pending", len(pending)),
		zap.Int("concurrency", o.concurrency),
	)

	var mu sync.Mutex
	commit := func(i int, entry Entry) {
		mu.Lock()
		report.Entries[i] = entry
		mu.Unlock()
		o.persist(ctx, report.RunID, entry)
	}

	if o.concurrency == 1 {
		for _, i := range pending {
			if ctx.Err() != nil {
				break
			}
			commit(i, o.query(ctx, recs[i], rows[i].Line))
		}
	} else {
		g := new(errgroup.Group)
		g.SetLimit(o.concurrency)
		for _, i := range pending {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				commit(i, o.query(ctx, recs[i], rows[i].Line))
				return nil
			})
		}
		_ = g.Wait()
	}

	succeeded, failed := report.Counts()
	if o.store != nil {
		if err := o.store.FinishRun(context.WithoutCancel(ctx), report.RunID, succeeded, failed); err != nil {
			log.Warn("batch: finish run", zap.Error(err))
		}
	}
	log.Info("batch: complete", zap.Int("succeeded", succeeded), zap.Int("failed", failed))

	if ctx.Err() != nil {
		return report, eris.Wrap(ctx.Err(), "batch: interrupted")
	}
	return report, nil
}

// resumeStored fills entries that already have a stored outcome and returns
// the indices still to query.
func (o *Orchestrator) resumeStored(ctx context.Context, report *Report) ([]int, error) {
	all := make([]int, len(report.Entries))
	for i := range all {
		all[i] = i
	}
	if !o.resume || o.store == nil {
		return all, nil
	}

	ids := make([]string, len(report.Entries))
	for i, e := range report.Entries {
		ids[i] = e.ID
	}
	stored, err := o.store.LatestResults(ctx, ids)
	if err != nil {
		return nil, eris.Wrap(err, "batch: load stored results")
	}

	var pending []int
	for i, e := range report.Entries {
		res, ok := stored[e.ID]
		if !ok {
			pending = append(pending, i)
			continue
		}
		report.Entries[i] = Entry{ID: e.ID, Line: e.Line, Outcome: res.Outcome, Method: res.Method, Resumed: true}
	}
	zap.L().Info("batch: resumed from store",
		zap.Int("stored", len(report.Entries)-len(pending)),
		zap.Int("pending", len(pending)),
	)
	return pending, nil
}

// query sends one record and parses its reply. Once started, a query is not
// cut short by cancellation of the batch.
func (o *Orchestrator) query(ctx context.Context, rec *record.Canonical, line int) Entry {
	entry := Entry{ID: rec.ID(), Line: line}
	qctx := context.WithoutCancel(ctx)

	reply, err := resilience.ExecuteVal(qctx, o.breaker, func(ctx context.Context) (model.Reply, error) {
		return o.adapter.Send(ctx, rec)
	})
	if err != nil {
		entry.Err = err
		zap.L().Warn("batch: query failed",
			zap.String("patient_id", entry.ID),
			zap.String("class", resilience.Classify(err)),
			zap.Error(err),
		)
		return entry
	}

	res, err := parse.Parse(reply)
	if err != nil {
		entry.Err = err
		zap.L().Warn("batch: parse failed", zap.String("patient_id", entry.ID), zap.Error(err))
		return entry
	}
	entry.Outcome = res.Outcome
	entry.Method = res.Method.String()
	zap.L().Debug("batch: record complete",
		zap.String("patient_id", entry.ID),
		zap.String("method", entry.Method),
		zap.Int("outcomes", len(res.Outcome)),
	)
	return entry
}

func (o *Orchestrator) persist(ctx context.Context, runID string, e Entry) {
	if o.store == nil {
		return
	}
	res := model.Result{RunID: runID, PatientID: e.ID, Outcome: e.Outcome, Method: e.Method}
	if e.Err != nil {
		res.Error = e.Err.Error()
	}
	if err := o.store.SaveResult(context.WithoutCancel(ctx), res); err != nil {
		zap.L().Warn("batch: save result", zap.String("patient_id", e.ID), zap.Error(err))
	}
}
