package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/templates"
	"github.com/telhawk-systems/telhawk-querybuilder/cli/pkg/output"
)

func newTemplatesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "Browse and expand investigation templates",
	}
	c.AddCommand(newTemplatesListCmd(), newTemplatesShowCmd(), newTemplatesExpandCmd())
	return c
}

func newTemplatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := templates.Default().List()
			return printer(cmd).Render(list, func() *output.Table {
				tbl := output.NewTable("ID", "NAME", "CATEGORY", "DESCRIPTION")
				for _, t := range list {
					tbl.AddRow(t.ID, t.Name, t.Category, t.Description)
				}
				return tbl
			})
		},
	}
}

func lookupTemplate(id string) (templates.Template, error) {
	t, ok := templates.Default().Get(id)
	if !ok {
		return templates.Template{}, fmt.Errorf("template %q not found", id)
	}
	return t, nil
}

func newTemplatesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a template's fields and preset values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := lookupTemplate(args[0])
			if err != nil {
				return err
			}
			p := printer(cmd)
			if p.Format != output.FormatTable {
				return p.Render(t, nil)
			}

			p.Info("%s (%s)", t.Name, t.Category)
			fmt.Fprintln(p.Out, t.Description)
			fmt.Fprintf(p.Out, "fields: %s\n\n", strings.Join(t.Fields, ", "))
			tbl := output.NewTable("FIELD", "VALUE")
			for _, e := range t.Values {
				value := e.Value
				if e.IsList() {
					value = strings.Join(e.List, templates.ListSeparator)
				}
				tbl.AddRow(e.Field, value)
			}
			tbl.Render(p.Out)
			return nil
		},
	}
}

func newTemplatesExpandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand <id>",
		Short: "Expand a template into conditions and compile them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conds, ok := templates.Default().ExpandByID(args[0])
			if !ok {
				return fmt.Errorf("template %q not found", args[0])
			}
			res := compileConditions(conds)

			p := printer(cmd)
			if p.Format == output.FormatTable {
				tbl := output.NewTable("FIELD", "OPERATOR", "VALUE")
				for _, c := range conds {
					tbl.AddRow(c.Field, string(c.Operator), c.Value)
				}
				tbl.Render(p.Out)
				fmt.Fprintln(p.Out)
			}
			return printCompiled(cmd, res)
		},
	}
}
