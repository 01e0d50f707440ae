// Package templates ships the static catalogue of investigative query
// templates and expands them into editable condition lists.
package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
)

//go:embed templates.yaml
var builtin []byte

// ListSeparator joins sequence values into an `in` condition value.
const ListSeparator = ", "

// Entry is one field/value pair of a template. List is set for sequence
// values, Value for scalars.
type Entry struct {
	Field string   `json:"field"`
	Value string   `json:"value,omitempty"`
	List  []string `json:"list,omitempty"`
}

// IsList reports whether the entry expands to an `in` condition.
func (e Entry) IsList() bool {
	return e.List != nil
}

// Values is a template's field to value map in document order.
type Values []Entry

// UnmarshalYAML decodes a mapping node keeping key order.
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: values must be a mapping", node.Line)
	}
	out := make(Values, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		entry := Entry{Field: key.Value}
		switch val.Kind {
		case yaml.ScalarNode:
			entry.Value = val.Value
		case yaml.SequenceNode:
			entry.List = make([]string, 0, len(val.Content))
			for _, item := range val.Content {
				if item.Kind != yaml.ScalarNode {
					return fmt.Errorf("line %d: %s: list items must be scalars", item.Line, key.Value)
				}
				entry.List = append(entry.List, item.Value)
			}
		default:
			return fmt.Errorf("line %d: %s: value must be a scalar or a list", val.Line, key.Value)
		}
		out = append(out, entry)
	}
	*v = out
	return nil
}

// Template is a named, pre-built scenario.
type Template struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Category    string   `json:"category" yaml:"category"`
	Fields      []string `json:"fields" yaml:"fields"`
	Values      Values   `json:"values" yaml:"values"`
}

type document struct {
	Version   string     `yaml:"version"`
	Templates []Template `yaml:"templates"`
}

// Catalogue is an immutable, versioned set of templates.
type Catalogue struct {
	version   string
	templates []Template
	byID      map[string]int
	reg       *fields.Registry
	newID     func() string
}

// Option configures a Catalogue.
type Option func(*Catalogue)

// WithRegistry sets the registry used to validate and categorise fields.
func WithRegistry(reg *fields.Registry) Option {
	return func(c *Catalogue) { c.reg = reg }
}

// WithIDFunc overrides the identifier source for expanded conditions.
func WithIDFunc(fn func() string) Option {
	return func(c *Catalogue) { c.newID = fn }
}

// Load parses a YAML catalogue. Every field a template references must exist
// in the registry and template ids must be unique.
func Load(data []byte, opts ...Option) (*Catalogue, error) {
	c := &Catalogue{
		reg:   fields.Default(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if doc.Version == "" {
		return nil, errors.New("templates: version is required")
	}

	c.version = doc.Version
	c.templates = doc.Templates
	c.byID = make(map[string]int, len(doc.Templates))

	var refs []fields.Reference
	for i, t := range doc.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("templates[%d]: id is required", i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("templates[%d]: duplicate id %q", i, t.ID)
		}
		c.byID[t.ID] = i

		loc := "templates[" + t.ID + "]"
		for _, name := range t.Fields {
			refs = append(refs, fields.Reference{Path: name, Location: loc + ".fields"})
		}
		for _, e := range t.Values {
			refs = append(refs, fields.Reference{Path: e.Field, Location: loc + ".values"})
		}
	}
	if err := c.reg.ValidateReferences(refs); err != nil {
		return nil, err
	}
	return c, nil
}

var (
	defaultOnce      sync.Once
	defaultCatalogue *Catalogue
)

// Default returns the catalogue shipped with the binary.
func Default() *Catalogue {
	defaultOnce.Do(func() {
		c, err := Load(builtin)
		if err != nil {
			panic(fmt.Sprintf("templates: builtin catalogue is invalid: %v", err))
		}
		defaultCatalogue = c
	})
	return defaultCatalogue
}

// Version identifies the catalogue release.
func (c *Catalogue) Version() string {
	return c.version
}

// List returns all templates in catalogue order.
func (c *Catalogue) List() []Template {
	out := make([]Template, len(c.templates))
	for i, t := range c.templates {
		out[i] = t.clone()
	}
	return out
}

// Get returns the template with the given id.
func (c *Catalogue) Get(id string) (Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.templates[i].clone(), true
}

// Expand turns a template into conditions, one per value entry in order.
// Lists become `in` conditions joined with ", ", scalars become `equals`.
// Fields missing from the registry get an empty category. Each condition
// gets a fresh id, so expanding twice never aliases.
func (c *Catalogue) Expand(t Template) []query.Condition {
	conds := make([]query.Condition, 0, len(t.Values))
	for _, e := range t.Values {
		cond := query.Condition{
			ID:       c.newID(),
			Field:    e.Field,
			Operator: fields.OpEquals,
			Value:    e.Value,
			Category: c.reg.CategoryOf(e.Field),
		}
		if e.IsList() {
			cond.Operator = fields.OpIn
			cond.Value = strings.Join(e.List, ListSeparator)
		}
		conds = append(conds, cond)
	}
	return conds
}

// ExpandByID expands the template with the given id.
func (c *Catalogue) ExpandByID(id string) ([]query.Condition, bool) {
	t, ok := c.Get(id)
	if !ok {
		return nil, false
	}
	return c.Expand(t), true
}

// Expand expands t with the default catalogue's registry.
func Expand(t Template) []query.Condition {
	return Default().Expand(t)
}

func (t Template) clone() Template {
	out := t
	out.Fields = append([]string(nil), t.Fields...)
	out.Values = make(Values, len(t.Values))
	for i, e := range t.Values {
		out.Values[i] = e
		if e.List != nil {
			out.Values[i].List = append([]string{}, e.List...)
		}
	}
	return out
}
