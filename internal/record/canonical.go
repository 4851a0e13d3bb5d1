package record

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/sells-group/sts-risk-cli/internal/schema"
)

// Canonical is a validated record holding every registry field. Absent
// fields hold "". A Canonical is immutable once built.
type Canonical struct {
	reg    *schema.Registry
	values []string
}

func newCanonical(reg *schema.Registry, values map[string]string) *Canonical {
	names := reg.Names()
	c := &Canonical{reg: reg, values: make([]string, len(names))}
	for i, name := range names {
		c.values[i] = values[name]
	}
	return c
}

// Get returns the value of name, or "" if absent or unrecognized.
func (c *Canonical) Get(name string) string {
	i := c.reg.Position(name)
	if i < 0 {
		return ""
	}
	return c.values[i]
}

// ID returns the patient identifier.
func (c *Canonical) ID() string {
	return c.Get(schema.PatientID)
}

// Names returns every field name in registry order.
func (c *Canonical) Names() []string {
	return c.reg.Names()
}

// Len returns the number of fields, which always equals the registry size.
func (c *Canonical) Len() int {
	return len(c.values)
}

// Values returns a copy of the record as a map.
func (c *Canonical) Values() map[string]string {
	names := c.reg.Names()
	out := make(map[string]string, len(names))
	for i, name := range names {
		out[name] = c.values[i]
	}
	return out
}

// Registry returns the registry the record was validated against.
func (c *Canonical) Registry() *schema.Registry {
	return c.reg
}

// Fingerprint is a stable digest of the wire-visible fields. Two records
// that would produce the same request share a fingerprint regardless of
// their patient identifiers.
func (c *Canonical) Fingerprint() string {
	h := sha256.New()
	for _, name := range c.reg.WireNames() {
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write([]byte(c.Get(name)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
