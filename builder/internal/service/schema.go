package service

import (
	"fmt"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/validator"
	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
)

// FieldDetail is a field together with the operators it offers.
type FieldDetail struct {
	fields.Field
	Operators []fields.OperatorInfo `json:"operators"`
}

// Categories returns the field categories in display order.
func (s *QueryService) Categories() []fields.Category {
	return s.reg.Categories()
}

// Fields returns the fields of category, or every field when category is
// empty. An unknown category yields an empty list.
func (s *QueryService) Fields(category string) []fields.Field {
	if category != "" {
		return s.reg.FieldsByCategory(category)
	}
	var out []fields.Field
	for _, c := range s.reg.Categories() {
		out = append(out, s.reg.FieldsByCategory(c.Name)...)
	}
	if out == nil {
		out = []fields.Field{}
	}
	return out
}

// Field returns one field with its operators.
func (s *QueryService) Field(name string) (FieldDetail, error) {
	f, ok := s.reg.FieldByName(name)
	if !ok {
		return FieldDetail{}, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	return FieldDetail{Field: f, Operators: s.reg.OperatorsForField(name)}, nil
}

// Operators returns the operators legal for field.
func (s *QueryService) Operators(name string) ([]fields.OperatorInfo, error) {
	if _, ok := s.reg.FieldByName(name); !ok {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	return s.reg.OperatorsForField(name), nil
}

// AllOperators returns the operator vocabulary.
func (s *QueryService) AllOperators() []fields.OperatorInfo {
	return fields.AllOperators()
}

// Validate checks a single field value.
func (s *QueryService) Validate(field, value string, op fields.Operator) validator.Result {
	return s.validator.Validate(field, value, op)
}
