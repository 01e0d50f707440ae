// Package validator checks condition values against the declared type of
// their field before they are allowed into a compiled query.
package validator

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
)

// Messages returned in Result.Error.
const (
	MsgUnknownField = "Unknown field"
	MsgNumber       = "Must be a number"
	MsgIPAddress    = "Must be a valid IP address or CIDR"
	MsgTimestamp    = "Must be a valid timestamp"
)

// Result is the outcome of validating one value.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ipPattern is a syntactic dotted-quad check only; octets are not range-checked.
var ipPattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

var numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// timestampLayouts are tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// Validator validates values against a field registry.
type Validator struct {
	reg *fields.Registry
}

// New creates a validator over reg. A nil registry uses fields.Default().
func New(reg *fields.Registry) *Validator {
	if reg == nil {
		reg = fields.Default()
	}
	return &Validator{reg: reg}
}

var defaultValidator = New(nil)

// Validate checks value against field's declared type using the default registry.
func Validate(field, value string, op fields.Operator) Result {
	return defaultValidator.Validate(field, value, op)
}

// Validate checks value against the declared type of field. The operator is
// accepted but not consulted; rules depend on the type alone. Types without a
// rule are always valid.
func (v *Validator) Validate(field, value string, _ fields.Operator) Result {
	f, ok := v.reg.FieldByName(field)
	if !ok {
		return Result{Error: MsgUnknownField}
	}

	switch f.Type {
	case fields.TypeInteger:
		if !isNumber(value) {
			return Result{Error: MsgNumber}
		}
	case fields.TypeIPAddress:
		if !ipPattern.MatchString(strings.TrimSpace(value)) && !strings.Contains(value, "/") {
			return Result{Error: MsgIPAddress}
		}
	case fields.TypeTimestamp:
		if !isTimestamp(value) {
			return Result{Error: MsgTimestamp}
		}
	}
	return Result{Valid: true}
}

// Check adapts Validate for query.Compiler. List and range operators are
// checked element by element, so `dst_endpoint.port in "22, 3389"` passes
// while a list with an empty or non-numeric element does not.
func (v *Validator) Check(c query.Condition) error {
	parsed := query.ParseValue(c.Operator, c.Value)
	values := parsed.Items
	if parsed.Kind == query.KindString || parsed.Kind == query.KindNumber {
		values = []string{parsed.Text}
	}
	for _, value := range values {
		if res := v.Validate(c.Field, value, c.Operator); !res.Valid {
			return errors.New(res.Error)
		}
	}
	return nil
}

// Strict returns a query.Checker that applies Check and also rejects
// operators the field's type does not offer.
func (v *Validator) Strict() query.Checker {
	return strictChecker{v}
}

type strictChecker struct {
	v *Validator
}

func (c strictChecker) Check(cond query.Condition) error {
	if err := c.v.Check(cond); err != nil {
		return err
	}
	if !c.v.reg.SupportsOperator(cond.Field, cond.Operator) {
		return fmt.Errorf("operator %q is not supported for %s", cond.Operator, cond.Field)
	}
	return nil
}

// isNumber accepts plain decimal literals. NaN, Inf and hex floats, which
// ParseFloat would take, are rejected.
func isNumber(s string) bool {
	s = strings.TrimSpace(s)
	if !numberPattern.MatchString(s) {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsInf(f, 0)
}

func isTimestamp(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
