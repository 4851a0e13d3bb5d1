// Package record validates raw patient rows against the field registry and
// produces canonical records ready for the calculator.
package record

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/sts-risk-cli/internal/schema"
)

var datePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// decimalPattern is the only numeric form the calculator reads.
var decimalPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Validator turns raw string maps into Canonical records.
type Validator struct {
	reg      *schema.Registry
	derivers []Deriver
}

// Option configures a Validator.
type Option func(*Validator)

// WithDerivers replaces the default derivers.
func WithDerivers(d ...Deriver) Option {
	return func(v *Validator) { v.derivers = d }
}

// NewValidator creates a Validator over reg. A nil reg uses schema.Default().
func NewValidator(reg *schema.Registry, opts ...Option) *Validator {
	if reg == nil {
		reg = schema.Default()
	}
	v := &Validator{reg: reg, derivers: DefaultDerivers()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Registry returns the registry the validator checks against.
func (v *Validator) Registry() *schema.Registry {
	return v.reg
}

// Validate checks raw and returns either a Canonical record or every
// violation found. Exactly one of the results is non-nil.
func (v *Validator) Validate(raw map[string]string) (*Canonical, Violations) {
	var unknown Violations
	for key, val := range raw {
		if !v.reg.IsRecognized(key) {
			unknown = append(unknown, Violation{
				Kind:    ViolationSchema,
				Field:   key,
				Value:   val,
				Message: "unrecognized field",
			})
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i].Field < unknown[j].Field })

	merged := make(map[string]string, v.reg.Len())
	for _, name := range v.reg.Names() {
		merged[name] = strings.TrimSpace(raw[name])
	}

	var found Violations
	for _, spec := range v.reg.Fields() {
		val := merged[spec.Name]
		if val == "" {
			continue
		}
		canon, msg := checkDomain(spec, val)
		if msg != "" {
			found = append(found, Violation{Kind: ViolationDomain, Field: spec.Name, Value: val, Message: msg})
			continue
		}
		merged[spec.Name] = canon
	}

	for _, spec := range v.reg.Fields() {
		if merged[spec.Name] == "" {
			continue
		}
		for _, rule := range spec.Rules {
			if rule.Satisfied(merged[rule.Parent]) {
				continue
			}
			found = append(found, Violation{
				Kind:    ViolationDependency,
				Field:   spec.Name,
				Value:   merged[spec.Name],
				Parent:  rule.Parent,
				Message: "requires " + rule.String(),
			})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return v.reg.Position(found[i].Field) < v.reg.Position(found[j].Field)
	})

	if all := append(unknown, found...); len(all) > 0 {
		zap.L().Debug("record: validation failed",
			zap.String("patient_id", merged[schema.PatientID]),
			zap.Int("violations", len(all)),
		)
		return nil, all
	}

	for _, d := range v.derivers {
		if val, ok := d.Derive(func(name string) string { return merged[name] }); ok {
			merged[d.Field()] = val
		}
	}
	return newCanonical(v.reg, merged), nil
}

// checkDomain returns the canonical form of val, or a non-empty reason it is
// outside the field's domain.
func checkDomain(spec schema.FieldSpec, val string) (string, string) {
	if spec.Derived {
		return "", "derived field cannot be supplied"
	}
	switch spec.Kind {
	case schema.KindEnum:
		canon, ok := spec.Lookup(val)
		if !ok {
			return "", "not one of " + spec.Domain()
		}
		return canon, ""
	case schema.KindFlag:
		if !strings.EqualFold(val, schema.FlagYes) {
			return "", "flag must be Yes or empty"
		}
		return schema.FlagYes, ""
	case schema.KindInt:
		n, err := strconv.Atoi(val)
		if err != nil {
			return "", "not a whole number"
		}
		if float64(n) < spec.Min || float64(n) > spec.Max {
			return "", "out of range " + spec.Domain()
		}
		return strconv.Itoa(n), ""
	case schema.KindFloat:
		if !decimalPattern.MatchString(val) {
			return "", "not a decimal number"
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return "", "not a number"
		}
		if f < spec.Min || f > spec.Max {
			return "", "out of range " + spec.Domain()
		}
		return val, ""
	case schema.KindDate:
		if !datePattern.MatchString(val) {
			return "", "date must be MM/DD/YYYY"
		}
		if _, err := time.Parse("1/2/2006", val); err != nil {
			return "", "not a calendar date"
		}
		return val, ""
	default:
		return val, ""
	}
}
