// Package parse converts calculator replies into outcome records.
package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/sells-group/sts-risk-cli/internal/model"
)

// Method records which extraction path produced a result.
type Method int

const (
	// MethodDirect is a keyed JSON reply.
	MethodDirect Method = iota
	// MethodLabeled matched each estimate by its label phrase.
	MethodLabeled
	// MethodPositional assigned bare percentages in canonical order. It is
	// best effort and lower confidence than the other methods.
	MethodPositional
)

func (m Method) String() string {
	switch m {
	case MethodDirect:
		return "direct"
	case MethodLabeled:
		return "labeled"
	case MethodPositional:
		return "positional"
	default:
		return "unknown"
	}
}

// ParseMethod returns the method named s.
func ParseMethod(s string) (Method, bool) {
	for _, m := range []Method{MethodDirect, MethodLabeled, MethodPositional} {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// Result is a parsed outcome and how it was obtained.
type Result struct {
	Outcome model.Outcome
	Method  Method
}

// Failure means a reply matched neither known shape.
type Failure struct {
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("parse: %s: %v", f.Reason, f.Err)
	}
	return "parse: " + f.Reason
}

func (f *Failure) Unwrap() error { return f.Err }

func failure(reason string, err error) error {
	return &Failure{Reason: reason, Err: err}
}

// Parse dispatches on the reply shape.
func Parse(r model.Reply) (*Result, error) {
	switch r.Shape {
	case model.ReplyDirect:
		return Direct(r.Body)
	case model.ReplyEmbedded:
		return Embedded(string(r.Body))
	default:
		return nil, failure(fmt.Sprintf("unknown reply shape %d", r.Shape), nil)
	}
}

// Direct parses a JSON object keyed by outcome field names. Unknown keys and
// values outside [0,1] fail the whole reply. Null and "" mean absent.
func Direct(body []byte) (*Result, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, failure("reply is not a JSON object", err)
	}
	if raw == nil {
		return nil, failure("reply is not a JSON object", nil)
	}

	out := make(model.Outcome, len(raw))
	for key, msg := range raw {
		field, ok := model.ParseOutcomeField(key)
		if !ok {
			return nil, failure(fmt.Sprintf("unknown outcome field %q", key), nil)
		}
		v, present, err := probability(msg)
		if err != nil {
			return nil, failure(fmt.Sprintf("field %s", key), err)
		}
		if present {
			out[field] = v
		}
	}
	return &Result{Outcome: out, Method: MethodDirect}, nil
}

func probability(msg json.RawMessage) (float64, bool, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, false, eris.Wrap(err, "decode value")
	}

	var s string
	switch t := v.(type) {
	case nil:
		return 0, false, nil
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
		if s == "" {
			return 0, false, nil
		}
	default:
		return 0, false, eris.Errorf("unexpected value %s", string(msg))
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, eris.Wrapf(err, "value %q", s)
	}
	if f < 0 || f > 1 {
		return 0, false, eris.Errorf("probability %v outside [0,1]", f)
	}
	return f, true, nil
}

const percentNumber = `(\d+(?:\.\d+)?)\s*%`

var (
	percentPattern = regexp.MustCompile(percentNumber)
	labelPatterns  = buildLabelPatterns()
)

func buildLabelPatterns() map[model.OutcomeField]*regexp.Regexp {
	out := make(map[model.OutcomeField]*regexp.Regexp)
	for _, f := range model.OutcomeFields() {
		out[f] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(f.Label()) + `[^%\d]*?` + percentNumber)
	}
	return out
}

// Embedded parses a text or HTML fragment. Each outcome label is matched
// independently; estimates sharing a label may receive the same value. When
// no label matches, percentages are assigned positionally in canonical
// outcome order.
func Embedded(fragment string) (*Result, error) {
	text := Flatten(fragment)

	out := make(model.Outcome)
	for _, f := range model.OutcomeFields() {
		m := labelPatterns[f].FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := fromPercent(m[1]); ok {
			out[f] = v
		}
	}
	if len(out) > 0 {
		return &Result{Outcome: out, Method: MethodLabeled}, nil
	}

	fields := model.OutcomeFields()
	for i, m := range percentPattern.FindAllStringSubmatch(text, -1) {
		if i >= len(fields) {
			break
		}
		if v, ok := fromPercent(m[1]); ok {
			out[fields[i]] = v
		}
	}
	if len(out) == 0 {
		return nil, failure("no outcome estimates in fragment", nil)
	}
	zap.L().Warn("parse: fell back to positional percentages", zap.Int("fields", len(out)))
	return &Result{Outcome: out, Method: MethodPositional}, nil
}

// fromPercent converts "2.01" to 0.0201 without binary rounding drift.
func fromPercent(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s+"e-2", 64)
	if err != nil || v > 1 {
		return 0, false
	}
	return v, true
}

// Flatten reduces an HTML fragment to its visible text with whitespace
// collapsed. Plain text passes through unchanged apart from whitespace.
func Flatten(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var parts []string
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isHidden(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isHidden(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				parts = append(parts, string(z.Text()))
			}
		}
	}
}

func isHidden(tag []byte) bool {
	s := string(tag)
	return s == "script" || s == "style"
}
