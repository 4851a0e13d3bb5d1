package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sts-risk-cli/internal/model"
)

func TestDirect_NamedShape(t *testing.T) {
	res, err := Parse(model.Reply{Shape: model.ReplyDirect, Body: []byte(`{"predmort": 0.02005, "predmm": 0.06003}`)})
	require.NoError(t, err)
	assert.Equal(t, MethodDirect, res.Method)
	assert.Equal(t, model.Outcome{model.PredMort: 0.02005, model.PredMM: 0.06003}, res.Outcome)

	_, ok := res.Outcome.Get(model.PredStroke)
	assert.False(t, ok)
}

func TestDirect_AbsentAndStringValues(t *testing.T) {
	res, err := Direct([]byte(`{"predmort": null, "predmm": "", "predstro": "0.012", "pred6d": 0}`))
	require.NoError(t, err)
	assert.Equal(t, model.Outcome{model.PredStroke: 0.012, model.PredShortStay: 0}, res.Outcome)
}

func TestDirect_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", `{"predmort": 0.1, "predfoo": 0.2}`, `unknown outcome field "predfoo"`},
		{"out of range", `{"predmort": 1.5}`, "outside [0,1]"},
		{"negative", `{"predmort": -0.1}`, "outside [0,1]"},
		{"not object", `[0.1, 0.2]`, "not a JSON object"},
		{"null body", `null`, "not a JSON object"},
		{"garbage", `<html>`, "not a JSON object"},
		{"bool value", `{"predmort": true}`, "unexpected value"},
		{"text value", `{"predmort": "high"}`, "field predmort"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Direct([]byte(tt.body))
			assert.Nil(t, res)
			require.Error(t, err)
			var f *Failure
			require.True(t, errors.As(err, &f))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEmbedded_Labeled(t *testing.T) {
	fragment := `<div class="results">
		<p><b>Operative Mortality</b> ... 2.01%</p>
		<p>Morbidity &amp; Mortality: 6.0 %</p>
		<p>Renal Failure: 1.5%</p>
	</div>`
	res, err := Parse(model.Reply{Shape: model.ReplyEmbedded, Body: []byte(fragment)})
	require.NoError(t, err)
	assert.Equal(t, MethodLabeled, res.Method)
	assert.Equal(t, 0.0201, res.Outcome[model.PredMort])
	assert.Equal(t, 0.06, res.Outcome[model.PredMM])

	// Both renal estimates share a label and receive the same value.
	assert.Equal(t, 0.015, res.Outcome[model.PredRenal])
	assert.Equal(t, 0.015, res.Outcome[model.PredDialysis])

	_, ok := res.Outcome.Get(model.PredStroke)
	assert.False(t, ok)
}

func TestEmbedded_CaseInsensitive(t *testing.T) {
	res, err := Embedded("OPERATIVE MORTALITY 12.5%")
	require.NoError(t, err)
	assert.Equal(t, 0.125, res.Outcome[model.PredMort])
}

func TestEmbedded_LabelDoesNotSpanOtherNumbers(t *testing.T) {
	res, err := Embedded("Stroke (30 day) 0.9% Reoperation 3%")
	require.NoError(t, err)
	_, ok := res.Outcome.Get(model.PredStroke)
	assert.False(t, ok)
	assert.Equal(t, 0.03, res.Outcome[model.PredReop])
}

func TestEmbedded_PositionalFallback(t *testing.T) {
	res, err := Embedded("<table><tr><td>1.2%</td><td>5%</td><td>0.8 %</td></tr></table>")
	require.NoError(t, err)
	assert.Equal(t, MethodPositional, res.Method)
	assert.Equal(t, model.Outcome{
		model.PredMort:   0.012,
		model.PredMM:     0.05,
		model.PredStroke: 0.008,
	}, res.Outcome)
}

func TestEmbedded_PositionalCapsAtOutcomeCount(t *testing.T) {
	res, err := Embedded("1% 2% 3% 4% 5% 6% 7% 8% 9% 10% 11% 12%")
	require.NoError(t, err)
	assert.Len(t, res.Outcome, len(model.OutcomeFields()))
	assert.Equal(t, 0.1, res.Outcome[model.PredDialysis])
}

func TestEmbedded_Failure(t *testing.T) {
	_, err := Embedded("<p>no estimates available</p>")
	var f *Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, "no outcome estimates in fragment", f.Reason)
}

func TestParse_UnknownShape(t *testing.T) {
	_, err := Parse(model.Reply{Shape: model.ReplyShape(9)})
	require.Error(t, err)
}

func TestFlatten(t *testing.T) {
	in := "<div><script>var x = '99%';</script><span>Operative\n  Mortality</span>&nbsp;<i>2.01%</i><style>p{}</style></div>"
	assert.Equal(t, "Operative Mortality 2.01%", Flatten(in))
	assert.Equal(t, "plain text", Flatten("  plain \n text "))
}

func TestMethod_RoundTrip(t *testing.T) {
	for _, m := range []Method{MethodDirect, MethodLabeled, MethodPositional} {
		got, ok := ParseMethod(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := ParseMethod("guess")
	assert.False(t, ok)
}
