package model

import "time"

// RunStatus represents the current state of a batch run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run represents one batch submitted to the calculator.
type Run struct {
	ID        string    `json:"id"`
	Adapter   string    `json:"adapter"`
	Status    RunStatus `json:"status"`
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Result is the persisted outcome of one record within a run. A failed
// record carries Error and no outcome values.
type Result struct {
	RunID     string    `json:"run_id"`
	PatientID string    `json:"patient_id"`
	Outcome   Outcome   `json:"outcome,omitempty"`
	Method    string    `json:"method,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OK reports whether the record produced an outcome.
func (r Result) OK() bool { return r.Error == "" }
