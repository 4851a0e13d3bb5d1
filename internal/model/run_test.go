package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStatusValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status RunStatus
		want   string
	}{
		{RunStatusRunning, "running"},
		{RunStatusComplete, "complete"},
		{RunStatusFailed, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(tt.status))
		})
	}
}

func TestResult_JSON(t *testing.T) {
	t.Parallel()

	r := Result{
		RunID:     "run-1",
		PatientID: "P1",
		Outcome:   Outcome{PredMort: 0.0201},
		Method:    "labeled",
	}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"outcome":{"predmort":0.0201}`)
	assert.NotContains(t, string(b), `"error"`)

	var back Result
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, 0.0201, back.Outcome[PredMort])
	assert.True(t, back.OK())
	assert.False(t, Result{Error: "boom"}.OK())
}
