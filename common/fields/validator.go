package fields

import (
	"fmt"
	"strings"
)

// Reference is a field name used somewhere outside the registry, such as a
// template definition. Location names the place for error messages.
type Reference struct {
	Path     string
	Location string
}

// UnknownFieldsError lists references the registry could not resolve, in the
// order they were checked.
type UnknownFieldsError struct {
	Refs []Reference
}

func (e *UnknownFieldsError) Error() string {
	parts := make([]string, len(e.Refs))
	for i, ref := range e.Refs {
		parts[i] = fmt.Sprintf("%q (in %s)", ref.Path, ref.Location)
	}
	return "unknown field references: " + strings.Join(parts, ", ")
}

// ValidateReferences returns a *UnknownFieldsError when any reference names
// a field the registry does not hold.
func (r *Registry) ValidateReferences(refs []Reference) error {
	var unknown []Reference
	for _, ref := range refs {
		if _, ok := r.FieldByName(ref.Path); !ok {
			unknown = append(unknown, ref)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return &UnknownFieldsError{Refs: unknown}
}
