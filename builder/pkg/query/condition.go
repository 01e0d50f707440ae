// Package query holds the condition model and the compiler that turns an
// ordered condition list into a single filter expression.
package query

import (
	"strings"

	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
)

// Condition is one field/operator/value triple of a query under construction.
// Any part may be unset while the analyst is still editing it.
type Condition struct {
	ID       string          `json:"id" yaml:"id"`
	Field    string          `json:"field" yaml:"field"`
	Operator fields.Operator `json:"operator" yaml:"operator"`
	Value    string          `json:"value" yaml:"value"`
	Category string          `json:"category,omitempty" yaml:"category,omitempty"`
}

// IsComplete reports whether field, operator and value are all non-empty.
// A whitespace-only value is set; the validator decides whether it fits.
func (c Condition) IsComplete() bool {
	return c.Field != "" && c.Operator != "" && c.Value != ""
}

// Kind tags the shape of a parsed condition value.
type Kind int

// Value kinds
const (
	KindString Kind = iota // single quoted literal
	KindNumber             // bare numeric literal
	KindList               // comma-separated list for in / not_in
	KindRange              // two bounds for between
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindList:
		return "list"
	case KindRange:
		return "range"
	default:
		return "string"
	}
}

// Value is the typed form of a condition's raw text. Text holds the literal
// for string and number kinds; Items holds list elements or the two range
// bounds.
type Value struct {
	Kind  Kind
	Text  string
	Items []string
}

// ParseValue derives the typed value for an operator from raw input.
//
// Lists are split on every comma and each element trimmed; empty elements
// are kept. Ranges split on the first comma only; a missing upper bound
// becomes the empty string. Neither case is rejected here.
func ParseValue(op fields.Operator, raw string) Value {
	switch op {
	case fields.OpGreaterThan, fields.OpLessThan, fields.OpGreaterEqual, fields.OpLessEqual:
		return Value{Kind: KindNumber, Text: raw}
	case fields.OpIn, fields.OpNotIn:
		parts := strings.Split(raw, ",")
		items := make([]string, len(parts))
		for i, p := range parts {
			items[i] = strings.TrimSpace(p)
		}
		return Value{Kind: KindList, Items: items}
	case fields.OpBetween:
		lo, hi, _ := strings.Cut(raw, ",")
		return Value{Kind: KindRange, Items: []string{strings.TrimSpace(lo), strings.TrimSpace(hi)}}
	default:
		return Value{Kind: KindString, Text: raw}
	}
}
