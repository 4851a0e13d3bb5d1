package batch

import (
	"github.com/sells-group/sts-risk-cli/internal/model"
	"github.com/sells-group/sts-risk-cli/internal/schema"
)

// Entry is the result for one row. A failed entry carries Err and no outcome.
type Entry struct {
	ID      string
	Line    int
	Outcome model.Outcome
	Method  string
	Err     error
	// Resumed marks an outcome taken from the store instead of the calculator.
	Resumed bool
}

// OK reports whether the entry produced an outcome.
func (e Entry) OK() bool { return e.Err == nil }

// Report holds one entry per input row, in input order.
type Report struct {
	RunID   string
	Adapter string
	Entries []Entry
}

// Outcomes maps each successful identifier to its outcome.
func (r *Report) Outcomes() map[string]model.Outcome {
	out := make(map[string]model.Outcome, len(r.Entries))
	for _, e := range r.Entries {
		if e.OK() {
			out[e.ID] = e.Outcome
		}
	}
	return out
}

// Failed returns the entries that produced no outcome.
func (r *Report) Failed() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if !e.OK() {
			out = append(out, e)
		}
	}
	return out
}

// Counts returns the number of successful and failed entries.
func (r *Report) Counts() (succeeded, failed int) {
	for _, e := range r.Entries {
		if e.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Header is the column layout of Table.
func Header() []string {
	fields := model.OutcomeFields()
	h := make([]string, 0, len(fields)+3)
	h = append(h, schema.PatientID)
	for _, f := range fields {
		h = append(h, string(f))
	}
	return append(h, "method", "error")
}

// Table renders the report with a header row. Absent outcome values are
// empty cells.
func (r *Report) Table() [][]string {
	fields := model.OutcomeFields()
	rows := make([][]string, 0, len(r.Entries)+1)
	rows = append(rows, Header())
	for _, e := range r.Entries {
		row := make([]string, 0, len(fields)+3)
		row = append(row, e.ID)
		for _, f := range fields {
			row = append(row, e.Outcome.Format(f))
		}
		var msg string
		if e.Err != nil {
			msg = e.Err.Error()
		}
		rows = append(rows, append(row, e.Method, msg))
	}
	return rows
}
