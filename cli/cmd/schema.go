package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-querybuilder/cli/pkg/output"
	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
)

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List field categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := fields.Categories()
			return printer(cmd).Render(cats, func() *output.Table {
				tbl := output.NewTable("NAME", "LABEL", "FIELDS", "DESCRIPTION")
				for _, c := range cats {
					tbl.AddRow(c.Name, c.Label, fmt.Sprint(len(c.Fields)), c.Description)
				}
				return tbl
			})
		},
	}
}

func newFieldsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "fields [name]",
		Short: "List fields, or show one field with its operators",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showField(cmd, args[0])
			}

			category, _ := cmd.Flags().GetString("category")
			var list []fields.Field
			if category != "" {
				list = fields.FieldsByCategory(category)
				if len(list) == 0 {
					return fmt.Errorf("unknown category %q", category)
				}
			} else {
				for _, c := range fields.Categories() {
					list = append(list, c.Fields...)
				}
			}

			return printer(cmd).Render(list, func() *output.Table {
				tbl := output.NewTable("NAME", "TYPE", "CATEGORY", "DESCRIPTION")
				for _, f := range list {
					tbl.AddRow(f.Name, string(f.Type), f.Category, f.Description)
				}
				return tbl
			})
		},
	}
	c.Flags().String("category", "", "only list fields in this category")
	return c
}

func showField(cmd *cobra.Command, name string) error {
	f, ok := fields.FieldByName(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	ops := fields.OperatorsForField(name)

	p := printer(cmd)
	if p.Format != output.FormatTable {
		return p.Render(map[string]interface{}{"field": f, "operators": ops}, nil)
	}
	p.Info("%s (%s, %s)", f.Name, f.Type, f.Category)
	if f.Description != "" {
		fmt.Fprintln(p.Out, f.Description)
	}
	if len(f.Examples) > 0 {
		fmt.Fprintf(p.Out, "examples: %s\n", strings.Join(f.Examples, ", "))
	}
	fmt.Fprintln(p.Out)
	operatorTable(ops).Render(p.Out)
	return nil
}

func newOperatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operators [field]",
		Short: "List all operators, or those a field supports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := fields.AllOperators()
			if len(args) == 1 {
				if _, ok := fields.FieldByName(args[0]); !ok {
					return fmt.Errorf("unknown field %q", args[0])
				}
				ops = fields.OperatorsForField(args[0])
			}
			return printer(cmd).Render(ops, func() *output.Table { return operatorTable(ops) })
		},
	}
}

func operatorTable(ops []fields.OperatorInfo) *output.Table {
	tbl := output.NewTable("OPERATOR", "LABEL", "DESCRIPTION")
	for _, op := range ops {
		tbl.AddRow(string(op.Operator), op.Label, op.Description)
	}
	return tbl
}
