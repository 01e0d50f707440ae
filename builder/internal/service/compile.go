package service

import (
	"fmt"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/metrics"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/analyzer"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/templates"
)

// CompileResult is a compiled query with the conditions that made it in,
// those that did not, and its analysis.
type CompileResult struct {
	Query      string            `json:"query"`
	Conditions []query.Condition `json:"conditions"`
	Rejected   []query.Rejection `json:"rejected"`
	Analysis   analyzer.Result   `json:"analysis"`
}

// Compile compiles conds, dropping incomplete or invalid ones, and analyzes
// the result.
func (s *QueryService) Compile(conds []query.Condition) CompileResult {
	res := CompileResult{
		Query:      s.compiler.Compile(conds),
		Conditions: s.compiler.Valid(conds),
		Rejected:   s.compiler.Invalid(conds),
	}
	if res.Rejected == nil {
		res.Rejected = []query.Rejection{}
	}
	res.Analysis = s.Analyze(res.Query)

	outcome := "compiled"
	if res.Query == "" {
		outcome = "empty"
	}
	metrics.CompilationsTotal.WithLabelValues(outcome).Inc()
	metrics.RejectedConditionsTotal.Add(float64(len(res.Rejected)))
	return res
}

// compileStrict compiles conds and fails when any condition is rejected.
func (s *QueryService) compileStrict(conds []query.Condition) (string, []query.Condition, error) {
	if rejected := s.compiler.Invalid(conds); len(rejected) > 0 {
		r := rejected[0]
		return "", nil, validationError("condition %d (%s): %s", r.Index, r.Condition.Field, r.Reason)
	}
	return s.compiler.Compile(conds), s.compiler.Valid(conds), nil
}

// Analyze scores a compiled query.
func (s *QueryService) Analyze(q string) analyzer.Result {
	res := analyzer.Analyze(q)
	metrics.AnalysisComplexity.Observe(float64(res.ComplexityScore))
	return res
}

// Templates lists the catalogue in display order.
func (s *QueryService) Templates() []templates.Template {
	return s.templates.List()
}

// TemplatesVersion returns the catalogue version.
func (s *QueryService) TemplatesVersion() string {
	return s.templates.Version()
}

// Template returns one template.
func (s *QueryService) Template(id string) (templates.Template, error) {
	t, ok := s.templates.Get(id)
	if !ok {
		return templates.Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return t, nil
}

// ExpandTemplate expands template id into fresh conditions and compiles them.
func (s *QueryService) ExpandTemplate(id string) (CompileResult, error) {
	conds, ok := s.templates.ExpandByID(id)
	if !ok {
		return CompileResult{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return s.Compile(conds), nil
}
