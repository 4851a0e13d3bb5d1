package batch

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/sts-risk-cli/internal/schema"
)

// Overrides are field values applied to every row before validation. They
// replace whatever the row carries for the same field.
type Overrides map[string]string

// ParseOverrides parses repeated field=value pairs. A later pair for the same
// field wins.
func ParseOverrides(pairs []string) (Overrides, error) {
	o := make(Overrides, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, eris.Errorf("batch: override %q is not field=value", p)
		}
		o[name] = strings.TrimSpace(value)
	}
	return o, nil
}

// LoadOverridesFile reads a YAML mapping of field to value. Scalars of any
// type are accepted and rendered as text.
func LoadOverridesFile(path string) (Overrides, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: read overrides %s", path)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, eris.Wrapf(err, "batch: parse overrides %s", path)
	}

	o := make(Overrides, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			o[k] = ""
		case bool:
			// true sets a flag, false leaves it absent.
			if t {
				o[k] = schema.FlagYes
			} else {
				o[k] = ""
			}
		case map[string]any, []any:
			return nil, eris.Errorf("batch: override %q must be a scalar", k)
		default:
			o[k] = fmt.Sprint(t)
		}
	}
	return o, nil
}

// Merge returns o overlaid by other. Values in other win.
func (o Overrides) Merge(other Overrides) Overrides {
	out := make(Overrides, len(o)+len(other))
	for k, v := range o {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Check rejects fields the registry does not know and the patient
// identifier.
func (o Overrides) Check(reg *schema.Registry) error {
	names := make([]string, 0, len(o))
	for k := range o {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		if k == schema.PatientID {
			return eris.Errorf("batch: override may not target %s", schema.PatientID)
		}
		if !reg.IsRecognized(k) {
			return eris.Errorf("batch: override targets unknown field %q", k)
		}
	}
	return nil
}

// Apply returns a copy of fields with the overrides laid over it.
func (o Overrides) Apply(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields)+len(o))
	for k, v := range fields {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}
