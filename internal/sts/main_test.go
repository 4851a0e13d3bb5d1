package sts

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sells-group/sts-risk-cli/internal/record"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func canonical(t *testing.T, extra map[string]string) *record.Canonical {
	t.Helper()
	raw := map[string]string{
		"patientid": "P1",
		"procid":    "CAB",
		"age":       "67",
		"gender":    "female",
		"weightkg":  "70",
		"heightcm":  "175",
	}
	for k, v := range extra {
		raw[k] = v
	}
	rec, violations := record.NewValidator(nil).Validate(raw)
	require.Empty(t, violations)
	return rec
}
