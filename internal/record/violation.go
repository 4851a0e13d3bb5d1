package record

import (
	"fmt"
	"strings"
)

// ViolationKind classifies why a raw record was rejected.
type ViolationKind int

const (
	// ViolationSchema is a key the registry does not recognize.
	ViolationSchema ViolationKind = iota
	// ViolationDomain is a value outside its field's domain.
	ViolationDomain
	// ViolationDependency is a cross-field rule that does not hold.
	ViolationDependency
)

func (k ViolationKind) String() string {
	switch k {
	case ViolationSchema:
		return "schema"
	case ViolationDomain:
		return "domain"
	case ViolationDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Violation is one problem found in a raw record.
type Violation struct {
	Kind    ViolationKind
	Field   string
	Value   string
	Message string
	// Parent is set for dependency violations.
	Parent string
}

func (v Violation) Error() string {
	if v.Value == "" {
		return fmt.Sprintf("%s: %s: %s", v.Kind, v.Field, v.Message)
	}
	return fmt.Sprintf("%s: %s=%q: %s", v.Kind, v.Field, v.Value, v.Message)
}

// Violations is the full list of problems in one record, in registry order.
type Violations []Violation

func (vs Violations) Error() string {
	msgs := make([]string, len(vs))
	for i, v := range vs {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// HasSchema reports whether any violation is an unrecognized key.
func (vs Violations) HasSchema() bool {
	for _, v := range vs {
		if v.Kind == ViolationSchema {
			return true
		}
	}
	return false
}

// ByKind returns the violations of kind k.
func (vs Violations) ByKind(k ViolationKind) Violations {
	var out Violations
	for _, v := range vs {
		if v.Kind == k {
			out = append(out, v)
		}
	}
	return out
}
