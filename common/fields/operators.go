package fields

// Operator is the symbolic name of a filter operator.
type Operator string

// Supported filter operators
const (
	OpEquals       Operator = "equals"
	OpContains     Operator = "contains"
	OpStartsWith   Operator = "starts_with"
	OpEndsWith     Operator = "ends_with"
	OpRegex        Operator = "regex"
	OpGreaterThan  Operator = "greater_than"
	OpLessThan     Operator = "less_than"
	OpGreaterEqual Operator = "greater_equal"
	OpLessEqual    Operator = "less_equal"
	OpIn           Operator = "in"
	OpNotIn        Operator = "not_in"
	OpBetween      Operator = "between"
	OpInSubnet     Operator = "in_subnet"
)

// OperatorInfo is a catalogue entry: an operator plus the label and
// description shown for it on a particular field type.
type OperatorInfo struct {
	Operator    Operator `json:"operator" yaml:"operator"`
	Label       string   `json:"label" yaml:"label"`
	Description string   `json:"description" yaml:"description"`
}

// allOperators is the full operator vocabulary in canonical order.
var allOperators = []OperatorInfo{
	{OpEquals, "Equals", "Exact match"},
	{OpContains, "Contains", "Value appears anywhere in the field"},
	{OpStartsWith, "Starts with", "Field begins with the value"},
	{OpEndsWith, "Ends with", "Field ends with the value"},
	{OpRegex, "Matches regex", "Field matches a regular expression"},
	{OpGreaterThan, "Greater than", "Field is strictly greater than the value"},
	{OpLessThan, "Less than", "Field is strictly less than the value"},
	{OpGreaterEqual, "Greater or equal", "Field is greater than or equal to the value"},
	{OpLessEqual, "Less or equal", "Field is less than or equal to the value"},
	{OpIn, "In list", "Field equals one of a comma-separated list"},
	{OpNotIn, "Not in list", "Field equals none of a comma-separated list"},
	{OpBetween, "Between", "Field lies between two comma-separated bounds"},
	{OpInSubnet, "In subnet", "Address belongs to a CIDR block"},
}

var knownOperators = func() map[Operator]OperatorInfo {
	m := make(map[Operator]OperatorInfo, len(allOperators))
	for _, op := range allOperators {
		m[op.Operator] = op
	}
	return m
}()

// AllOperators returns the full operator vocabulary.
func AllOperators() []OperatorInfo {
	out := make([]OperatorInfo, len(allOperators))
	copy(out, allOperators)
	return out
}

// IsKnownOperator reports whether op belongs to the operator vocabulary.
func IsKnownOperator(op Operator) bool {
	_, ok := knownOperators[op]
	return ok
}

// op returns the generic catalogue entry for an operator.
func op(o Operator) OperatorInfo {
	return knownOperators[o]
}

// relabel returns the catalogue entry for o with a type-specific label.
func relabel(o Operator, label, description string) OperatorInfo {
	return OperatorInfo{Operator: o, Label: label, Description: description}
}

// operatorCatalogue maps each declared field type to its legal operators.
// Legality depends on the type only, so new fields need no operator wiring.
// json and object have no entry: they are not directly filterable.
var operatorCatalogue = map[FieldType][]OperatorInfo{
	TypeString: {
		op(OpEquals), op(OpContains), op(OpStartsWith), op(OpEndsWith),
		op(OpRegex), op(OpIn), op(OpNotIn),
	},
	TypeInteger: {
		op(OpEquals), op(OpGreaterThan), op(OpLessThan), op(OpGreaterEqual),
		op(OpLessEqual), op(OpBetween), op(OpIn), op(OpNotIn),
	},
	TypeFloat: {
		op(OpEquals), op(OpGreaterThan), op(OpLessThan), op(OpGreaterEqual),
		op(OpLessEqual), op(OpBetween),
	},
	TypeBoolean: {
		op(OpEquals),
	},
	TypeTimestamp: {
		op(OpEquals),
		relabel(OpGreaterThan, "After", "Event occurred after the timestamp"),
		relabel(OpLessThan, "Before", "Event occurred before the timestamp"),
		relabel(OpGreaterEqual, "On or after", "Event occurred at or after the timestamp"),
		relabel(OpLessEqual, "On or before", "Event occurred at or before the timestamp"),
		relabel(OpBetween, "Within range", "Event occurred between two comma-separated timestamps"),
	},
	TypeIPAddress: {
		op(OpEquals), op(OpInSubnet), op(OpIn), op(OpNotIn), op(OpStartsWith),
	},
	TypeMACAddress: {
		op(OpEquals), op(OpStartsWith), op(OpIn), op(OpNotIn),
	},
	TypeEmail: {
		op(OpEquals), op(OpContains),
		relabel(OpEndsWith, "Domain is", "Address ends with the domain"),
		op(OpIn), op(OpNotIn),
	},
	TypeURL: {
		op(OpEquals), op(OpContains), op(OpStartsWith), op(OpEndsWith), op(OpRegex),
	},
	TypeArray: {
		op(OpContains), op(OpIn),
	},
}
