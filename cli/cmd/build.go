package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/analyzer"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/validator"
	"github.com/telhawk-systems/telhawk-querybuilder/cli/pkg/output"
	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
)

// errInvalid signals a failed check whose details were already printed.
var errInvalid = errors.New("validation failed")

func newValidateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "validate <field> <value>",
		Short: "Check a value against a field's declared type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, _ := cmd.Flags().GetString("operator")
			res := validator.Validate(args[0], args[1], fields.Operator(op))

			p := printer(cmd)
			if p.Format != output.FormatTable {
				if err := p.Render(res, nil); err != nil {
					return err
				}
			} else if res.Valid {
				p.Success("%s accepts %q", args[0], args[1])
			} else {
				p.Error("%s: %s", args[0], res.Error)
			}
			if !res.Valid {
				return errInvalid
			}
			return nil
		},
	}
	c.Flags().String("operator", string(fields.OpEquals), "operator the value is used with")
	return c
}

// compileOutput is the machine-readable result of compile and templates expand.
type compileOutput struct {
	Query      string            `json:"query"`
	Conditions []query.Condition `json:"conditions"`
	Rejected   []query.Rejection `json:"rejected"`
	Analysis   analyzer.Result   `json:"analysis"`
}

func compileConditions(conds []query.Condition) compileOutput {
	c := query.NewCompiler(validator.New(nil).Strict())
	q := c.Compile(conds)
	return compileOutput{
		Query:      q,
		Conditions: c.Valid(conds),
		Rejected:   c.Invalid(conds),
		Analysis:   analyzer.Analyze(q),
	}
}

func newCompileCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "compile",
		Short: "Compile conditions into a query string",
		Long: `Compile conditions given with --condition "field operator value" or read
from a YAML/JSON file with --file. Invalid or incomplete conditions are
reported and left out of the query.`,
		Example: `  qb compile -c 'activity_name equals failed_login' -c 'dst_endpoint.port in 22, 3389'
  qb compile --file conditions.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conds, err := conditionsFromFlags(cmd)
			if err != nil {
				return err
			}
			if len(conds) == 0 {
				return errors.New("provide --condition or --file")
			}
			return printCompiled(cmd, compileConditions(conds))
		},
	}
	addConditionFlags(c)
	return c
}

func addConditionFlags(c *cobra.Command) {
	c.Flags().StringArrayP("condition", "c", nil, `condition as "field operator value" (repeatable)`)
	c.Flags().StringP("file", "f", "", "YAML or JSON file with a list of conditions")
}

// conditionsFromFlags reads --file first, then appends each --condition.
func conditionsFromFlags(cmd *cobra.Command) ([]query.Condition, error) {
	b := query.NewBuilder()

	if file, _ := cmd.Flags().GetString("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var conds []query.Condition
		if err := yaml.Unmarshal(data, &conds); err != nil {
			return nil, fmt.Errorf("invalid conditions in %s: %w", file, err)
		}
		b.Load(conds)
	}

	raws, _ := cmd.Flags().GetStringArray("condition")
	for _, raw := range raws {
		parts := strings.SplitN(strings.TrimSpace(raw), " ", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid condition %q: want \"field operator value\"", raw)
		}
		op := fields.Operator(parts[1])
		if !fields.IsKnownOperator(op) {
			return nil, fmt.Errorf("invalid condition %q: unknown operator %q", raw, parts[1])
		}
		cond := b.Add()
		b.SetField(cond.ID, parts[0], fields.Default().CategoryOf(parts[0]))
		b.SetOperator(cond.ID, op)
		if len(parts) == 3 {
			b.SetValue(cond.ID, parts[2])
		}
	}
	return b.Conditions(), nil
}

func printCompiled(cmd *cobra.Command, res compileOutput) error {
	p := printer(cmd)
	if p.Format != output.FormatTable {
		return p.Render(res, nil)
	}

	if res.Query == "" {
		p.Warn("no valid conditions")
	} else {
		fmt.Fprintln(p.Out, res.Query)
	}
	for _, r := range res.Rejected {
		p.Warn("condition %d (%s %s %q) skipped: %s", r.Index+1, r.Condition.Field, r.Condition.Operator, r.Condition.Value, r.Reason)
	}
	p.Info("complexity %d/10, performance %d/100, estimated %s",
		res.Analysis.ComplexityScore, res.Analysis.PerformanceScore, res.Analysis.EstimatedTime)
	return nil
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <query>",
		Short: "Score a query and suggest improvements",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := analyzer.Analyze(strings.Join(args, " "))

			p := printer(cmd)
			if p.Format != output.FormatTable {
				return p.Render(res, nil)
			}

			tbl := output.NewTable("METRIC", "VALUE")
			tbl.AddRow("complexity", fmt.Sprintf("%d/10", res.ComplexityScore))
			tbl.AddRow("performance", fmt.Sprintf("%d/100", res.PerformanceScore))
			tbl.AddRow("estimated time", res.EstimatedTime)
			tbl.AddRow("conditions", fmt.Sprint(res.ConditionCount))
			tbl.AddRow("time filter", fmt.Sprint(res.HasTimeFilter))
			tbl.AddRow("regex", fmt.Sprint(res.HasRegex))
			tbl.AddRow("wildcards", fmt.Sprint(res.HasWildcards))
			tbl.Render(p.Out)

			for _, w := range res.Warnings {
				p.Warn("%s", w.Message)
			}
			for _, s := range res.Suggestions {
				p.Info("[%s] %s: %s", s.Priority, s.Title, s.Description)
			}
			if len(res.IndexRecommendations) > 0 {
				p.Info("index recommendations: %s", strings.Join(res.IndexRecommendations, ", "))
			}
			return nil
		},
	}
}
