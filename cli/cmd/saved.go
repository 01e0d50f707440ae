package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-querybuilder/cli/internal/client"
	"github.com/telhawk-systems/telhawk-querybuilder/cli/pkg/output"
)

func newSavedCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved queries on a query builder service",
	}
	c.AddCommand(newSavedListCmd(), newSavedSaveCmd(), newSavedShowCmd(), newSavedDeleteCmd())
	return c
}

func newSavedListCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "list",
		Short: "List saved queries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			limit, _ := cmd.Flags().GetInt("limit")
			items, err := builderClient(cmd).ListSavedQueries(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			return printer(cmd).Render(items, func() *output.Table {
				tbl := output.NewTable("ID", "NAME", "VERSION", "SAVED", "QUERY")
				for _, q := range items {
					tbl.AddRow(q.ID, q.Name, fmt.Sprint(q.Version), q.Timestamp.Format(time.RFC3339), truncate(q.CompiledQuery, 60))
				}
				return tbl
			})
		},
	}
	c.Flags().Int("page", 0, "page number")
	c.Flags().Int("limit", 0, "page size")
	return c
}

func newSavedSaveCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "save",
		Short: "Save a query from conditions or query text",
		Example: `  qb saved save --name "Failed logins" -c 'activity_name equals failed_login'
  qb saved save --name "Renamed" --id 0193... --query 'severity = "high"'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			if strings.TrimSpace(name) == "" {
				return errors.New("--name is required")
			}
			id, _ := cmd.Flags().GetString("id")
			text, _ := cmd.Flags().GetString("query")
			conds, err := conditionsFromFlags(cmd)
			if err != nil {
				return err
			}
			if text == "" && len(conds) == 0 {
				return errors.New("provide --query, --condition or --file")
			}

			saved, err := builderClient(cmd).SaveQuery(cmd.Context(), client.SaveRequest{
				ID:         id,
				Name:       name,
				Query:      text,
				Conditions: conds,
			})
			if err != nil {
				return err
			}

			p := printer(cmd)
			if p.Format != output.FormatTable {
				return p.Render(saved, nil)
			}
			p.Success("Saved query %s (%s) version %d", saved.Name, saved.ID, saved.Version)
			return nil
		},
	}
	c.Flags().String("name", "", "saved query name")
	c.Flags().String("id", "", "existing saved query to add a version to")
	c.Flags().String("query", "", "query text to save as is")
	addConditionFlags(c)
	return c
}

func newSavedShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the current version of a saved query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := builderClient(cmd).GetSavedQuery(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := printer(cmd)
			if p.Format != output.FormatTable {
				return p.Render(q, nil)
			}
			p.Info("%s (version %d, saved %s)", q.Name, q.Version, q.Timestamp.Format(time.RFC3339))
			fmt.Fprintln(p.Out, q.CompiledQuery)
			if len(q.RawConditions) > 0 {
				fmt.Fprintln(p.Out)
				tbl := output.NewTable("FIELD", "OPERATOR", "VALUE")
				for _, c := range q.RawConditions {
					tbl.AddRow(c.Field, string(c.Operator), c.Value)
				}
				tbl.Render(p.Out)
			}
			return nil
		},
	}
}

func newSavedDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := builderClient(cmd).DeleteSavedQuery(cmd.Context(), args[0]); err != nil {
				return err
			}
			printer(cmd).Success("Deleted saved query %s", args[0])
			return nil
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
