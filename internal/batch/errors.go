package batch

import (
	"fmt"
	"strings"

	"github.com/sells-group/sts-risk-cli/internal/record"
)

// RowError is every problem found in one input row.
type RowError struct {
	Line       int
	ID         string
	MissingID  bool
	Violations record.Violations
}

func (e RowError) String() string {
	var parts []string
	if e.MissingID {
		parts = append(parts, "missing patientid")
	}
	for _, v := range e.Violations {
		parts = append(parts, v.Error())
	}
	label := fmt.Sprintf("line %d", e.Line)
	if e.ID != "" {
		label += fmt.Sprintf(" (%s)", e.ID)
	}
	return label + ": " + strings.Join(parts, "; ")
}

// ValidationError collects the problems of every invalid row in a batch.
// No record is queried when it is returned.
type ValidationError struct {
	Total int
	Rows  []RowError
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		lines[i] = r.String()
	}
	return fmt.Sprintf("batch: %d of %d rows invalid: %s", len(e.Rows), e.Total, strings.Join(lines, " | "))
}

// HasSchema reports whether any row used a field name the registry does not
// know.
func (e *ValidationError) HasSchema() bool {
	for _, r := range e.Rows {
		if r.Violations.HasSchema() {
			return true
		}
	}
	return false
}

// Duplicate is one identifier used by more than one row.
type Duplicate struct {
	ID    string
	Lines []int
}

// DuplicateIdentifierError rejects a batch whose identifiers are not unique.
type DuplicateIdentifierError struct {
	Duplicates []Duplicate
}

func (e *DuplicateIdentifierError) Error() string {
	parts := make([]string, len(e.Duplicates))
	for i, d := range e.Duplicates {
		lines := make([]string, len(d.Lines))
		for j, l := range d.Lines {
			lines[j] = fmt.Sprint(l)
		}
		parts[i] = fmt.Sprintf("%q on lines %s", d.ID, strings.Join(lines, ", "))
	}
	return "batch: duplicate patientid " + strings.Join(parts, "; ")
}
