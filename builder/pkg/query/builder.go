package query

import (
	"github.com/google/uuid"

	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
)

// Builder is the ordered, editable condition list behind a query editor.
// It is owned by a single caller and is not safe for concurrent use.
type Builder struct {
	conds []Condition
	newID func() string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithIDFunc overrides how condition identifiers are generated.
func WithIDFunc(fn func() string) BuilderOption {
	return func(b *Builder) { b.newID = fn }
}

// NewBuilder creates an empty condition list.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{newID: uuid.NewString}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add appends an empty condition and returns it.
func (b *Builder) Add() Condition {
	c := Condition{ID: b.newID()}
	b.conds = append(b.conds, c)
	return c
}

// Load appends copies of conds, each with a fresh identifier, so the
// source (typically an expanded template) is never aliased.
func (b *Builder) Load(conds []Condition) {
	for _, c := range conds {
		c.ID = b.newID()
		b.conds = append(b.conds, c)
	}
}

// SetField sets a condition's field and category. It reports false if id is unknown.
func (b *Builder) SetField(id, field, category string) bool {
	return b.update(id, func(c *Condition) {
		c.Field = field
		c.Category = category
	})
}

// SetOperator sets a condition's operator.
func (b *Builder) SetOperator(id string, op fields.Operator) bool {
	return b.update(id, func(c *Condition) { c.Operator = op })
}

// SetValue sets a condition's raw value.
func (b *Builder) SetValue(id, value string) bool {
	return b.update(id, func(c *Condition) { c.Value = value })
}

// Remove discards a condition.
func (b *Builder) Remove(id string) bool {
	for i := range b.conds {
		if b.conds[i].ID == id {
			b.conds = append(b.conds[:i], b.conds[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every condition.
func (b *Builder) Clear() {
	b.conds = nil
}

// Len returns the number of conditions, complete or not.
func (b *Builder) Len() int {
	return len(b.conds)
}

// Conditions returns a copy of the list in insertion order.
func (b *Builder) Conditions() []Condition {
	out := make([]Condition, len(b.conds))
	copy(out, b.conds)
	return out
}

// Compile compiles the current list with c, or with the completeness-only
// compiler when c is nil.
func (b *Builder) Compile(c *Compiler) string {
	if c == nil {
		return Compile(b.conds)
	}
	return c.Compile(b.conds)
}

func (b *Builder) update(id string, fn func(*Condition)) bool {
	for i := range b.conds {
		if b.conds[i].ID == id {
			fn(&b.conds[i])
			return true
		}
	}
	return false
}
