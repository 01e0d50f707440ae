// Package fields defines the OCSF field catalogue used by the query builder.
// Fields are grouped by category, carry a declared type, and the set of
// operators a field accepts is derived from that type alone.
package fields

import (
	"strings"
)

// FieldType is the declared type of a queryable field.
type FieldType string

// Declared field types
const (
	TypeString     FieldType = "string"
	TypeInteger    FieldType = "integer"
	TypeFloat      FieldType = "float"
	TypeBoolean    FieldType = "boolean"
	TypeTimestamp  FieldType = "timestamp"
	TypeIPAddress  FieldType = "ip_address"
	TypeMACAddress FieldType = "mac_address"
	TypeEmail      FieldType = "email"
	TypeURL        FieldType = "url"
	TypeJSON       FieldType = "json"
	TypeArray      FieldType = "array"
	TypeObject     FieldType = "object"
)

// Field describes a single queryable OCSF attribute.
type Field struct {
	Name        string    `json:"name" yaml:"name"`
	Type        FieldType `json:"type" yaml:"type"`
	Description string    `json:"description" yaml:"description"`
	Examples    []string  `json:"examples,omitempty" yaml:"examples,omitempty"`
	Required    bool      `json:"required" yaml:"required"`
	Category    string    `json:"category" yaml:"category"`
}

// Category is a named group of fields.
type Category struct {
	Name        string  `json:"name" yaml:"name"`
	Label       string  `json:"label" yaml:"label"`
	Description string  `json:"description" yaml:"description"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Registry indexes the static field catalogue. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	categories []Category
	byCategory map[string][]Field
	byName     map[string]Field
	operators  map[FieldType][]OperatorInfo
}

// NewRegistry builds a registry from categories and an operator catalogue.
// Each field is stamped with the name of the category that declares it; if a
// name appears twice, the first declaration wins.
func NewRegistry(categories []Category, operators map[FieldType][]OperatorInfo) *Registry {
	r := &Registry{
		categories: make([]Category, 0, len(categories)),
		byCategory: make(map[string][]Field, len(categories)),
		byName:     make(map[string]Field),
		operators:  operators,
	}
	for _, c := range categories {
		fields := make([]Field, 0, len(c.Fields))
		for _, f := range c.Fields {
			f.Category = c.Name
			if _, exists := r.byName[f.Name]; exists {
				continue
			}
			r.byName[f.Name] = f
			fields = append(fields, f)
		}
		c.Fields = fields
		r.categories = append(r.categories, c)
		r.byCategory[c.Name] = fields
	}
	return r
}

var defaultRegistry = NewRegistry(ocsfCategories, operatorCatalogue)

// Default returns the registry built from the shipped OCSF catalogue.
func Default() *Registry {
	return defaultRegistry
}

// normalize accepts jq-style paths (".src_endpoint.ip") as well as bare names.
func normalize(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), ".")
}

// Categories returns all categories in catalogue order.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.categories))
	copy(out, r.categories)
	return out
}

// FieldsByCategory returns the fields declared for a category, or an empty
// slice if the category is unknown.
func (r *Registry) FieldsByCategory(category string) []Field {
	fields, ok := r.byCategory[category]
	if !ok {
		return []Field{}
	}
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// FieldByName looks a field up across all categories.
func (r *Registry) FieldByName(name string) (Field, bool) {
	f, ok := r.byName[normalize(name)]
	return f, ok
}

// CategoryOf returns the category owning a field, or "" if the field is unknown.
func (r *Registry) CategoryOf(name string) string {
	if f, ok := r.FieldByName(name); ok {
		return f.Category
	}
	return ""
}

// ExamplesForField returns a field's example literals, or an empty slice.
func (r *Registry) ExamplesForField(name string) []string {
	f, ok := r.FieldByName(name)
	if !ok || len(f.Examples) == 0 {
		return []string{}
	}
	out := make([]string, len(f.Examples))
	copy(out, f.Examples)
	return out
}

// OperatorsForType returns the operators registered for a field type.
func (r *Registry) OperatorsForType(t FieldType) []OperatorInfo {
	ops, ok := r.operators[t]
	if !ok {
		return []OperatorInfo{}
	}
	out := make([]OperatorInfo, len(ops))
	copy(out, ops)
	return out
}

// OperatorsForField resolves field -> type -> operator catalogue entry.
// Unknown fields and types without registered operators yield an empty slice.
func (r *Registry) OperatorsForField(name string) []OperatorInfo {
	f, ok := r.FieldByName(name)
	if !ok {
		return []OperatorInfo{}
	}
	return r.OperatorsForType(f.Type)
}

// SupportsOperator reports whether op is legal for the named field.
func (r *Registry) SupportsOperator(name string, op Operator) bool {
	for _, info := range r.OperatorsForField(name) {
		if info.Operator == op {
			return true
		}
	}
	return false
}

// ListFields returns all field names in catalogue order.
func (r *Registry) ListFields() []string {
	names := make([]string, 0, len(r.byName))
	for _, c := range r.categories {
		for _, f := range c.Fields {
			names = append(names, f.Name)
		}
	}
	return names
}

// Package-level helpers over the default registry.

// Categories returns the default registry's categories.
func Categories() []Category { return defaultRegistry.Categories() }

// FieldsByCategory returns the default registry's fields for a category.
func FieldsByCategory(category string) []Field { return defaultRegistry.FieldsByCategory(category) }

// FieldByName looks a field up in the default registry.
func FieldByName(name string) (Field, bool) { return defaultRegistry.FieldByName(name) }

// OperatorsForField returns the legal operators for a field in the default registry.
func OperatorsForField(name string) []OperatorInfo { return defaultRegistry.OperatorsForField(name) }

// ExamplesForField returns example literals from the default registry.
func ExamplesForField(name string) []string { return defaultRegistry.ExamplesForField(name) }
