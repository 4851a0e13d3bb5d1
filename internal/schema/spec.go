// Package schema declares every input field recognized by the STS short-term
// risk calculator, its value domain, and the cross-field rules between them.
package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the value domain class of a field.
type Kind int

const (
	// KindText is free text with no domain restriction.
	KindText Kind = iota
	// KindInt is a whole number within an inclusive range.
	KindInt
	// KindFloat is a decimal number within an inclusive range.
	KindFloat
	// KindEnum is a closed set of choices.
	KindEnum
	// KindFlag is either "Yes" or absent.
	KindFlag
	// KindDate is a month/day/year date.
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	case KindFlag:
		return "flag"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// FlagYes is the only value a KindFlag field may hold besides absent.
const FlagYes = "Yes"

// Choice maps a short input token to the verbose string the remote
// calculator expects.
type Choice struct {
	Token string
	Value string
}

// Rule restricts when a field may carry a value. The owning field may be
// non-empty only if Parent holds one of Values, or, when Values is empty,
// any non-empty value.
type Rule struct {
	Parent string
	Values []string
}

// Satisfied reports whether parentValue permits the dependent field to be set.
func (r Rule) Satisfied(parentValue string) bool {
	if parentValue == "" {
		return false
	}
	if len(r.Values) == 0 {
		return true
	}
	for _, v := range r.Values {
		if v == parentValue {
			return true
		}
	}
	return false
}

func (r Rule) String() string {
	if len(r.Values) == 0 {
		return r.Parent + " set"
	}
	return fmt.Sprintf("%s in [%s]", r.Parent, strings.Join(r.Values, ", "))
}

// StreamShape is how a field is encoded on the streaming endpoint.
type StreamShape int

const (
	// StreamScalar sends the value as a plain string.
	StreamScalar StreamShape = iota
	// StreamList wraps the value in a single-element list.
	StreamList
	// StreamBool sends true when the value is "Yes" and nothing otherwise.
	StreamBool
	// StreamGroup collapses several fields into one list-valued input.
	StreamGroup
	// StreamOmit never sends the field.
	StreamOmit
)

// StreamBinding ties a field to its input on the streaming endpoint.
type StreamBinding struct {
	Shape StreamShape
	// Input is the wire name; empty means the field name.
	Input string
	// Member is the list entry a flag contributes to its group when "Yes".
	// Empty means the field value itself is the entry.
	Member string
}

// FieldSpec describes one recognized field.
type FieldSpec struct {
	Name    string
	Label   string
	Section string
	Kind    Kind
	Min     float64
	Max     float64
	Choices []Choice
	Rules   []Rule
	// Internal fields are never transmitted to the calculator.
	Internal bool
	// Derived fields are computed from other fields and may not be supplied.
	Derived bool
	Stream  StreamBinding
}

// Lookup resolves an input token or canonical value to the canonical choice
// value. Matching is case-insensitive.
func (f FieldSpec) Lookup(in string) (string, bool) {
	for _, c := range f.Choices {
		if strings.EqualFold(c.Token, in) || strings.EqualFold(c.Value, in) {
			return c.Value, true
		}
	}
	return "", false
}

// StreamInput returns the wire input name on the streaming endpoint.
func (f FieldSpec) StreamInput() string {
	if f.Stream.Input != "" {
		return f.Stream.Input
	}
	return f.Name
}

// Domain renders the allowed values in human-readable form.
func (f FieldSpec) Domain() string {
	switch f.Kind {
	case KindInt, KindFloat:
		return fmt.Sprintf("%s..%s", formatBound(f.Min), formatBound(f.Max))
	case KindEnum:
		tokens := make([]string, len(f.Choices))
		for i, c := range f.Choices {
			tokens[i] = c.Token
		}
		return strings.Join(tokens, "|")
	case KindFlag:
		return FlagYes
	case KindDate:
		return "MM/DD/YYYY"
	default:
		return "any"
	}
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Option configures a FieldSpec in the field table.
type Option func(*FieldSpec)

func requires(parent string, values ...string) Option {
	return func(f *FieldSpec) {
		f.Rules = append(f.Rules, Rule{Parent: parent, Values: values})
	}
}

func requiresYes(parent string) Option {
	return requires(parent, FlagYes)
}

func asList() Option {
	return func(f *FieldSpec) { f.Stream.Shape = StreamList }
}

func asBool() Option {
	return func(f *FieldSpec) { f.Stream.Shape = StreamBool }
}

func inGroup(input, member string) Option {
	return func(f *FieldSpec) {
		f.Stream = StreamBinding{Shape: StreamGroup, Input: input, Member: member}
	}
}

func internal() Option {
	return func(f *FieldSpec) {
		f.Internal = true
		f.Stream.Shape = StreamOmit
	}
}

func derived() Option {
	return func(f *FieldSpec) { f.Derived = true }
}

func build(f FieldSpec, opts []Option) FieldSpec {
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

func text(name, label string, opts ...Option) FieldSpec {
	return build(FieldSpec{Name: name, Label: label, Kind: KindText}, opts)
}

func integer(name, label string, min, max float64, opts ...Option) FieldSpec {
	return build(FieldSpec{Name: name, Label: label, Kind: KindInt, Min: min, Max: max}, opts)
}

func decimal(name, label string, min, max float64, opts ...Option) FieldSpec {
	return build(FieldSpec{Name: name, Label: label, Kind: KindFloat, Min: min, Max: max}, opts)
}

func enum(name, label string, choices []Choice, opts ...Option) FieldSpec {
	return build(FieldSpec{Name: name, Label: label, Kind: KindEnum, Choices: choices}, opts)
}

func flag(name, label string, opts ...Option) FieldSpec {
	return build(FieldSpec{Name: name, Label: label, Kind: KindFlag}, opts)
}

func date(name, label string, opts ...Option) FieldSpec {
	return build(FieldSpec{Name: name, Label: label, Kind: KindDate}, opts)
}

func section(name string, fields ...FieldSpec) []FieldSpec {
	for i := range fields {
		fields[i].Section = name
	}
	return fields
}
