package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeFields_CanonicalOrder(t *testing.T) {
	fields := OutcomeFields()
	assert.Len(t, fields, 10)
	assert.Equal(t, PredMort, fields[0])
	assert.Equal(t, PredDialysis, fields[9])

	// Callers cannot reorder the package copy.
	fields[0] = PredDialysis
	assert.Equal(t, PredMort, OutcomeFields()[0])
}

func TestOutcomeField_Label(t *testing.T) {
	assert.Equal(t, "Operative Mortality", PredMort.Label())
	assert.Equal(t, PredRenal.Label(), PredDialysis.Label())
	assert.Empty(t, OutcomeField("nope").Label())
}

func TestParseOutcomeField(t *testing.T) {
	f, ok := ParseOutcomeField("pred14d")
	assert.True(t, ok)
	assert.Equal(t, PredLongStay, f)

	_, ok = ParseOutcomeField("predfoo")
	assert.False(t, ok)
}

func TestOutcome_AbsentVersusZero(t *testing.T) {
	o := Outcome{PredMort: 0, PredMM: 0.06003}

	v, ok := o.Get(PredMort)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = o.Get(PredStroke)
	assert.False(t, ok)

	assert.Equal(t, "0", o.Format(PredMort))
	assert.Equal(t, "0.06003", o.Format(PredMM))
	assert.Equal(t, "", o.Format(PredStroke))
	assert.Equal(t, map[string]string{"predmort": "0", "predmm": "0.06003"}, o.Strings())
}
