package batch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sts-risk-cli/internal/model"
)

func TestReport_Table(t *testing.T) {
	r := &Report{Entries: []Entry{
		{ID: "P1", Outcome: model.Outcome{model.PredMort: 0.0201, model.PredMM: 0}, Method: "labeled"},
		{ID: "P2", Err: errors.New("sts: request transport: status 502")},
	}}

	table := r.Table()
	require.Len(t, table, 3)

	header := table[0]
	assert.Equal(t, "patientid", header[0])
	assert.Equal(t, "predmort", header[1])
	assert.Equal(t, []string{"method", "error"}, header[len(header)-2:])
	assert.Len(t, header, len(model.OutcomeFields())+3)

	assert.Equal(t, "P1", table[1][0])
	assert.Equal(t, "0.0201", table[1][1])
	assert.Equal(t, "0", table[1][2])
	assert.Equal(t, "", table[1][3])
	assert.Equal(t, "labeled", table[1][len(header)-2])
	assert.Equal(t, "", table[1][len(header)-1])

	assert.Equal(t, "", table[2][1])
	assert.Equal(t, "sts: request transport: status 502", table[2][len(header)-1])
}

func TestReport_Outcomes(t *testing.T) {
	r := &Report{Entries: []Entry{
		{ID: "P1", Outcome: model.Outcome{model.PredMort: 0.01}},
		{ID: "P2", Err: errors.New("boom")},
	}}
	assert.Equal(t, map[string]model.Outcome{"P1": {model.PredMort: 0.01}}, r.Outcomes())
	succeeded, failed := r.Counts()
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	require.Len(t, r.Failed(), 1)
	assert.Equal(t, "P2", r.Failed()[0].ID)
}
