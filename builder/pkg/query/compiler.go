package query

import (
	"strings"

	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
)

// Separator joins serialized conditions in a compiled query.
const Separator = " AND "

// Checker decides whether a complete condition may enter a compiled query.
// The field-value validator implements it.
type Checker interface {
	Check(c Condition) error
}

// Rejection records why a condition was left out of a compiled query.
type Rejection struct {
	Index     int       `json:"index"`
	Condition Condition `json:"condition"`
	Reason    string    `json:"reason"`
}

// Compiler filters conditions and serializes the survivors. A nil checker
// only enforces completeness.
type Compiler struct {
	checker Checker
}

// NewCompiler creates a compiler that drops conditions failing checker.
func NewCompiler(checker Checker) *Compiler {
	return &Compiler{checker: checker}
}

// Compile serializes complete conditions without any value checks.
func Compile(conds []Condition) string {
	return NewCompiler(nil).Compile(conds)
}

// Compile joins the serialization of every valid condition with " AND ",
// preserving input order. Invalid conditions are skipped silently; use
// Invalid to report them. No valid conditions compiles to "".
func (c *Compiler) Compile(conds []Condition) string {
	valid := c.Valid(conds)
	if len(valid) == 0 {
		return ""
	}
	parts := make([]string, len(valid))
	for i, cond := range valid {
		parts[i] = Serialize(cond)
	}
	return strings.Join(parts, Separator)
}

// Valid returns the conditions that would be compiled, in input order.
func (c *Compiler) Valid(conds []Condition) []Condition {
	out := make([]Condition, 0, len(conds))
	for _, cond := range conds {
		if c.reason(cond) == "" {
			out = append(out, cond)
		}
	}
	return out
}

// Invalid returns one rejection per condition Compile would drop.
func (c *Compiler) Invalid(conds []Condition) []Rejection {
	var out []Rejection
	for i, cond := range conds {
		if reason := c.reason(cond); reason != "" {
			out = append(out, Rejection{Index: i, Condition: cond, Reason: reason})
		}
	}
	return out
}

func (c *Compiler) reason(cond Condition) string {
	switch {
	case cond.Field == "":
		return "field is required"
	case cond.Operator == "":
		return "operator is required"
	case cond.Value == "":
		return "value is required"
	}
	if c.checker != nil {
		if err := c.checker.Check(cond); err != nil {
			return err.Error()
		}
	}
	return ""
}

// keywords maps operators that take a single quoted operand.
var keywords = map[fields.Operator]string{
	fields.OpEquals:     "=",
	fields.OpContains:   "CONTAINS",
	fields.OpStartsWith: "STARTS_WITH",
	fields.OpEndsWith:   "ENDS_WITH",
	fields.OpRegex:      "REGEX",
	fields.OpInSubnet:   "IN_SUBNET",
}

var comparisons = map[fields.Operator]string{
	fields.OpGreaterThan:  ">",
	fields.OpLessThan:     "<",
	fields.OpGreaterEqual: ">=",
	fields.OpLessEqual:    "<=",
}

// Serialize renders one condition. It does not check completeness.
//
// Operators outside the vocabulary fall back to `field op "value"` with the
// operator text verbatim. That path exists so unknown input still renders;
// it is not a supported operator form.
func Serialize(c Condition) string {
	v := ParseValue(c.Operator, c.Value)
	switch {
	case c.Operator == fields.OpIn:
		return c.Field + " IN (" + quoteAll(v.Items) + ")"
	case c.Operator == fields.OpNotIn:
		return c.Field + " NOT IN (" + quoteAll(v.Items) + ")"
	case c.Operator == fields.OpBetween:
		return c.Field + " BETWEEN " + quote(v.Items[0]) + " AND " + quote(v.Items[1])
	}
	if sym, ok := comparisons[c.Operator]; ok {
		return c.Field + " " + sym + " " + v.Text
	}
	if kw, ok := keywords[c.Operator]; ok {
		return c.Field + " " + kw + " " + quote(v.Text)
	}
	return c.Field + " " + string(c.Operator) + " " + quote(v.Text)
}

func quote(s string) string {
	return `"` + s + `"`
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = quote(item)
	}
	return strings.Join(quoted, ", ")
}
