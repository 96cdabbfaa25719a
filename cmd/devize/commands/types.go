package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/devize/display"
	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/registry"
	"github.com/teranos/devize/schema"
	"github.com/teranos/devize/spec"
	"github.com/teranos/devize/sym"
)

// TypesCmd inspects the registry an engine would render with.
var TypesCmd = &cobra.Command{
	Use:   "types",
	Short: sym.Composite + " Inspect registered types",
	Long: sym.Composite + ` types — Inspect registered types and their contracts

The registry is built the same way render builds it: the define type, the
built-in data types (unless library.builtins is false), then every library.

Examples:
  devize types list -l lib/
  devize types show box -l lib/
  devize types schema box -l lib/ > box.schema.json`,
}

var typesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered types and primitives",
	Args:  cobra.NoArgs,
	RunE:  runTypesList,
}

var typesShowCmd = &cobra.Command{
	Use:   "show <type>",
	Short: "Show a type's contract",
	Args:  cobra.ExactArgs(1),
	RunE:  runTypesShow,
}

var typesSchemaCmd = &cobra.Command{
	Use:   "schema <type>",
	Short: "Print a type's contract as JSON Schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runTypesSchema,
}

func init() {
	for _, c := range []*cobra.Command{typesListCmd, typesShowCmd, typesSchemaCmd} {
		addLibraryFlag(c)
		TypesCmd.AddCommand(c)
	}
}

// typeSummary is the JSON form of a registered type.
type typeSummary struct {
	Name           string         `json:"name"`
	Kind           string         `json:"kind"`
	Required       []string       `json:"required,omitempty"`
	Optional       map[string]any `json:"optional,omitempty"`
	Implementation string         `json:"implementation,omitempty"`
	Extends        string         `json:"extends,omitempty"`
	Description    string         `json:"description,omitempty"`
	Source         string         `json:"source,omitempty"`
}

func kindOf(d *registry.Descriptor) string {
	switch {
	case d.Name == "define":
		return "define"
	case d.DataOnly:
		return "data"
	}
	return "composite"
}

func summarize(d *registry.Descriptor) typeSummary {
	return typeSummary{
		Name:           d.Name,
		Kind:           kindOf(d),
		Required:       d.Required,
		Optional:       d.Defaults(),
		Implementation: d.ImplementationKind(),
		Extends:        d.Extends,
		Description:    d.Description,
		Source:         d.Source,
	}
}

func runTypesList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	descriptors := s.engine.Registry().List()

	if display.ShouldOutputJSON(cmd) {
		out := make([]typeSummary, 0, len(descriptors)+len(spec.Primitives))
		for _, name := range spec.PrimitiveNames() {
			out = append(out, typeSummary{Name: name, Kind: "primitive", Description: sym.PrimitiveDescriptions[name]})
		}
		for _, d := range descriptors {
			out = append(out, summarize(d))
		}
		return display.OutputJSON(cmd, out)
	}

	data := pterm.TableData{{"", "Type", "Kind", "Properties", "Source"}}
	for _, name := range spec.PrimitiveNames() {
		data = append(data, []string{sym.ForType(name, false), name, "primitive", pterm.Gray(sym.PrimitiveDescriptions[name]), "builtin"})
	}
	for _, d := range descriptors {
		data = append(data, []string{
			sym.ForType(d.Name, d.DataOnly),
			d.Name,
			kindOf(d),
			propertyList(d),
			d.Source,
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	fmt.Fprintln(cmd.OutOrStdout(), table)
	return nil
}

// propertyList shows required properties in bold and optional ones with
// their defaults.
func propertyList(d *registry.Descriptor) string {
	parts := make([]string, 0, len(d.Required)+len(d.Optional))
	for _, r := range d.Required {
		parts = append(parts, pterm.Bold.Sprint(r))
	}
	optional := make([]string, 0, len(d.Optional))
	for k := range d.Optional {
		optional = append(optional, k)
	}
	sort.Strings(optional)
	for _, k := range optional {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatDefault(d.Optional[k])))
	}
	return strings.Join(parts, " ")
}

func formatDefault(v any) string {
	if _, ok := spec.AsFunc(v); ok {
		return "ƒ"
	}
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(spec.Canonical(v))
}

func lookupType(cmd *cobra.Command, name string) (*registry.Descriptor, error) {
	s, err := newSession(cmd)
	if err != nil {
		return nil, err
	}
	d, ok := s.engine.Registry().Lookup(name)
	if !ok {
		if spec.IsPrimitive(name) {
			return nil, errors.WithHintf(errors.Newf("%q is a primitive", name),
				"primitives are drawn directly and have no contract")
		}
		return nil, errors.NewUnknownTypeError(name)
	}
	return d, nil
}

func runTypesShow(cmd *cobra.Command, args []string) error {
	d, err := lookupType(cmd, args[0])
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd, summarize(d))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", sym.ForType(d.Name, d.DataOnly), pterm.Bold.Sprint(d.Name))
	if d.Description != "" {
		fmt.Fprintf(out, "  %s\n", pterm.Gray(d.Description))
	}
	fmt.Fprintf(out, "  %s %s\n", pterm.LightCyan("kind:"), kindOf(d))
	fmt.Fprintf(out, "  %s %s\n", pterm.LightCyan("implementation:"), d.ImplementationKind())
	if d.Extends != "" {
		fmt.Fprintf(out, "  %s %s\n", pterm.LightCyan("extends:"), d.Extends)
	}
	if d.Source != "" {
		fmt.Fprintf(out, "  %s %s\n", pterm.LightCyan("source:"), d.Source)
	}
	if len(d.Required) > 0 {
		fmt.Fprintf(out, "  %s\n", pterm.LightCyan("required:"))
		for _, r := range d.Required {
			fmt.Fprintf(out, "    %s\n", r)
		}
	}
	if len(d.Optional) > 0 {
		fmt.Fprintf(out, "  %s\n", pterm.LightCyan("optional:"))
		for _, k := range d.Properties() {
			if v, ok := d.Optional[k]; ok {
				fmt.Fprintf(out, "    %s = %s\n", k, formatDefault(v))
			}
		}
	}
	return nil
}

func runTypesSchema(cmd *cobra.Command, args []string) error {
	d, err := lookupType(cmd, args[0])
	if err != nil {
		return err
	}
	sch, err := schema.ForDescriptor(d)
	if err != nil {
		return err
	}
	return display.Write(cmd.OutOrStdout(), sch, display.FormatJSON)
}
