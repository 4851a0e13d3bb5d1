package record

import (
	"math"
	"strconv"

	"github.com/sells-group/sts-risk-cli/internal/schema"
)

// Deriver computes one derived field from already validated values.
type Deriver interface {
	// Field is the registry name of the derived field.
	Field() string
	// Derive returns the derived value, or false to leave the field absent.
	Derive(get func(name string) string) (string, bool)
}

// DefaultDerivers returns the derivers the calculator contract needs.
func DefaultDerivers() []Deriver {
	return []Deriver{BMIDeriver{}}
}

// BMIDeriver computes body mass index as weight / (height/100)^2 rounded to
// two decimals.
type BMIDeriver struct{}

// Field implements Deriver.
func (BMIDeriver) Field() string { return schema.BMI }

// Derive implements Deriver.
func (BMIDeriver) Derive(get func(string) string) (string, bool) {
	w, h := get(schema.Weight), get(schema.Height)
	if w == "" || h == "" {
		return "", false
	}
	weight, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return "", false
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil || height <= 0 {
		return "", false
	}
	m := height / 100
	bmi := math.Round(weight/(m*m)*100) / 100
	return strconv.FormatFloat(bmi, 'f', 2, 64), true
}
