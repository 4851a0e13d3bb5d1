package schema

import (
	"github.com/rotisserie/eris"
)

// Registry is an indexed, ordered collection of field specs.
type Registry struct {
	fields []FieldSpec
	byName map[string]int
	inputs []StreamInput
}

// StreamInput is one input on the streaming endpoint and the registry fields
// feeding it, in declaration order.
type StreamInput struct {
	Name   string
	Shape  StreamShape
	Fields []string
}

// New builds a Registry and checks it for consistency: names must be unique
// and non-empty, rule parents must be declared, enums must carry choices and
// fields sharing a stream group must all be group members.
func New(fields []FieldSpec) (*Registry, error) {
	r := &Registry{
		fields: make([]FieldSpec, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	copy(r.fields, fields)

	for i, f := range r.fields {
		if f.Name == "" {
			return nil, eris.Errorf("schema: field %d has no name", i)
		}
		if _, dup := r.byName[f.Name]; dup {
			return nil, eris.Errorf("schema: duplicate field %q", f.Name)
		}
		if f.Kind == KindEnum && len(f.Choices) == 0 {
			return nil, eris.Errorf("schema: enum field %q has no choices", f.Name)
		}
		r.byName[f.Name] = i
	}

	for _, f := range r.fields {
		for _, rule := range f.Rules {
			if _, ok := r.byName[rule.Parent]; !ok {
				return nil, eris.Errorf("schema: field %q depends on unknown field %q", f.Name, rule.Parent)
			}
			if rule.Parent == f.Name {
				return nil, eris.Errorf("schema: field %q depends on itself", f.Name)
			}
		}
	}

	inputs, err := buildStreamInputs(r.fields)
	if err != nil {
		return nil, err
	}
	r.inputs = inputs
	return r, nil
}

func buildStreamInputs(fields []FieldSpec) ([]StreamInput, error) {
	var inputs []StreamInput
	index := make(map[string]int)
	for _, f := range fields {
		if f.Stream.Shape == StreamOmit {
			continue
		}
		name := f.StreamInput()
		if i, ok := index[name]; ok {
			if inputs[i].Shape != StreamGroup || f.Stream.Shape != StreamGroup {
				return nil, eris.Errorf("schema: stream input %q bound by more than one non-group field", name)
			}
			inputs[i].Fields = append(inputs[i].Fields, f.Name)
			continue
		}
		index[name] = len(inputs)
		inputs = append(inputs, StreamInput{Name: name, Shape: f.Stream.Shape, Fields: []string{f.Name}})
	}
	return inputs, nil
}

// MustNew is New that panics on an inconsistent table.
func MustNew(fields []FieldSpec) *Registry {
	r, err := New(fields)
	if err != nil {
		panic(err)
	}
	return r
}

var defaultRegistry = MustNew(fieldTable())

// Default returns the STS v4.2 field registry.
func Default() *Registry {
	return defaultRegistry
}

// Len returns the number of declared fields.
func (r *Registry) Len() int {
	return len(r.fields)
}

// Names returns every field name in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Name
	}
	return out
}

// IsRecognized reports whether name is a declared field.
func (r *Registry) IsRecognized(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// SpecFor returns the FieldSpec registered under name.
func (r *Registry) SpecFor(name string) (FieldSpec, bool) {
	i, ok := r.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return r.fields[i], true
}

// Position returns the declaration index of name, or -1.
func (r *Registry) Position(name string) int {
	i, ok := r.byName[name]
	if !ok {
		return -1
	}
	return i
}

// Fields returns a copy of every spec in declaration order.
func (r *Registry) Fields() []FieldSpec {
	out := make([]FieldSpec, len(r.fields))
	copy(out, r.fields)
	return out
}

// WireNames returns the names of all non-internal fields in declaration order.
func (r *Registry) WireNames() []string {
	out := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		if !f.Internal {
			out = append(out, f.Name)
		}
	}
	return out
}

// StreamInputs returns the streaming endpoint inputs in first-declaration order.
func (r *Registry) StreamInputs() []StreamInput {
	out := make([]StreamInput, len(r.inputs))
	for i, in := range r.inputs {
		out[i] = StreamInput{Name: in.Name, Shape: in.Shape, Fields: append([]string(nil), in.Fields...)}
	}
	return out
}
