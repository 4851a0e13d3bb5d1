package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/sts-risk-cli/internal/schema"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the fields a batch file may carry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		section, _ := cmd.Flags().GetString("section")

		specs := filterSection(schemaFields(), section)
		if len(specs) == 0 {
			return eris.Errorf("no fields in section %q", section)
		}

		switch format {
		case "table":
			formatFieldsTable(cmd.OutOrStdout(), specs)
			return nil
		case "yaml":
			return formatFieldsYAML(cmd.OutOrStdout(), specs)
		default:
			return eris.Errorf("unknown format %q (table, yaml)", format)
		}
	},
}

func init() {
	fieldsCmd.Flags().String("format", "table", "output format: table or yaml")
	fieldsCmd.Flags().String("section", "", "only list fields in this section")
	rootCmd.AddCommand(fieldsCmd)
}

func filterSection(specs []schema.FieldSpec, section string) []schema.FieldSpec {
	if section == "" {
		return specs
	}
	var out []schema.FieldSpec
	for _, s := range specs {
		if s.Section == section {
			out = append(out, s)
		}
	}
	return out
}

func ruleStrings(rules []schema.Rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.String()
	}
	return out
}

// formatFieldsTable writes one line per field to w.
func formatFieldsTable(out io.Writer, specs []schema.FieldSpec) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tKIND\tDOMAIN\tREQUIRES\tLABEL")
	_, _ = fmt.Fprintln(w, "----\t----\t------\t--------\t-----")
	for _, s := range specs {
		domain := s.Domain()
		if len(domain) > 40 {
			domain = domain[:37] + "..."
		}
		label := s.Label
		switch {
		case s.Derived:
			label += " (derived)"
		case s.Internal:
			label += " (not sent)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.Name, s.Kind, domain, strings.Join(ruleStrings(s.Rules), "; "), label)
	}
	_ = w.Flush()
}

type fieldDoc struct {
	Name     string            `yaml:"name"`
	Label    string            `yaml:"label"`
	Section  string            `yaml:"section"`
	Kind     string            `yaml:"kind"`
	Domain   string            `yaml:"domain"`
	Choices  map[string]string `yaml:"choices,omitempty"`
	Requires []string          `yaml:"requires,omitempty"`
	Internal bool              `yaml:"internal,omitempty"`
	Derived  bool              `yaml:"derived,omitempty"`
}

// formatFieldsYAML writes the field list as a YAML sequence.
func formatFieldsYAML(out io.Writer, specs []schema.FieldSpec) error {
	docs := make([]fieldDoc, len(specs))
	for i, s := range specs {
		d := fieldDoc{
			Name:     s.Name,
			Label:    s.Label,
			Section:  s.Section,
			Kind:     s.Kind.String(),
			Domain:   s.Domain(),
			Requires: ruleStrings(s.Rules),
			Internal: s.Internal,
			Derived:  s.Derived,
		}
		if len(d.Requires) == 0 {
			d.Requires = nil
		}
		if len(s.Choices) > 0 {
			d.Choices = make(map[string]string, len(s.Choices))
			for _, c := range s.Choices {
				d.Choices[c.Token] = c.Value
			}
		}
		docs[i] = d
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return eris.Wrap(err, "encode fields")
	}
	return eris.Wrap(enc.Close(), "encode fields")
}

func schemaFields() []schema.FieldSpec { return schema.Default().Fields() }
