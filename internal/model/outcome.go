package model

import (
	"strconv"
)

// OutcomeField names one risk estimate returned by the calculator.
type OutcomeField string

// Outcome fields in canonical order.
const (
	PredMort      OutcomeField = "predmort"
	PredMM        OutcomeField = "predmm"
	PredStroke    OutcomeField = "predstro"
	PredRenal     OutcomeField = "predrenf"
	PredReop      OutcomeField = "predreop"
	PredVent      OutcomeField = "predvent"
	PredDeep      OutcomeField = "preddeep"
	PredShortStay OutcomeField = "pred6d"
	PredLongStay  OutcomeField = "pred14d"
	PredDialysis  OutcomeField = "preddialysis"
)

var outcomeFields = []OutcomeField{
	PredMort,
	PredMM,
	PredStroke,
	PredRenal,
	PredReop,
	PredVent,
	PredDeep,
	PredShortStay,
	PredLongStay,
	PredDialysis,
}

// The calculator prints both renal estimates under the same heading.
var outcomeLabels = map[OutcomeField]string{
	PredMort:      "Operative Mortality",
	PredMM:        "Morbidity & Mortality",
	PredStroke:    "Stroke",
	PredRenal:     "Renal Failure",
	PredReop:      "Reoperation",
	PredVent:      "Prolonged Ventilation",
	PredDeep:      "Deep Sternal Wound Infection",
	PredShortStay: "Short Length of Stay",
	PredLongStay:  "Long Length of Stay",
	PredDialysis:  "Renal Failure",
}

// OutcomeFields returns every outcome field in canonical order.
func OutcomeFields() []OutcomeField {
	out := make([]OutcomeField, len(outcomeFields))
	copy(out, outcomeFields)
	return out
}

// Label returns the phrase the calculator prints next to this estimate.
func (f OutcomeField) Label() string {
	return outcomeLabels[f]
}

// ParseOutcomeField returns the field named s.
func ParseOutcomeField(s string) (OutcomeField, bool) {
	f := OutcomeField(s)
	_, ok := outcomeLabels[f]
	return f, ok
}

// Outcome maps outcome fields to probabilities in [0,1]. A missing key means
// the estimate is absent, which is distinct from a zero probability.
type Outcome map[OutcomeField]float64

// Get returns the probability for f and whether it is present.
func (o Outcome) Get(f OutcomeField) (float64, bool) {
	v, ok := o[f]
	return v, ok
}

// Format renders f for tabular output; absent renders as "".
func (o Outcome) Format(f OutcomeField) string {
	v, ok := o[f]
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Strings renders every present field keyed by name.
func (o Outcome) Strings() map[string]string {
	out := make(map[string]string, len(o))
	for f := range o {
		out[string(f)] = o.Format(f)
	}
	return out
}
