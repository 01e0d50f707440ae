package executor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
)

// TimeField is the event timestamp field used for time range hints and sorting.
const TimeField = "time"

// BuildSearchBody turns a query into an OpenSearch request body. Structured
// conditions become a bool filter; otherwise non-empty text goes to
// query_string untouched.
func BuildSearchBody(reg *fields.Registry, q string, opts Options, size int) (map[string]any, error) {
	if !ValidTimeRange(opts.TimeRangeHint) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeRange, opts.TimeRangeHint)
	}

	var filters []any
	complete := 0
	for _, c := range opts.Conditions {
		if !c.IsComplete() {
			continue
		}
		complete++
		clause, err := translateCondition(reg, c)
		if err != nil {
			return nil, err
		}
		filters = append(filters, clause)
	}

	if complete == 0 && strings.TrimSpace(q) != "" {
		filters = append(filters, map[string]any{
			"query_string": map[string]any{
				"query":            q,
				"default_operator": "AND",
			},
		})
	}

	if opts.TimeRangeHint != "" {
		filters = append(filters, map[string]any{
			"range": map[string]any{
				TimeField: map[string]any{
					"gte": "now-" + opts.TimeRangeHint,
					"lte": "now",
				},
			},
		})
	}

	body := map[string]any{
		"size": size,
		"sort": []map[string]any{
			{TimeField: map[string]any{"order": "desc"}},
		},
	}
	if len(filters) == 0 {
		body["query"] = map[string]any{"match_all": map[string]any{}}
	} else {
		body["query"] = map[string]any{"bool": map[string]any{"filter": filters}}
	}
	return body, nil
}

func translateCondition(reg *fields.Registry, c query.Condition) (map[string]any, error) {
	field := strings.TrimPrefix(c.Field, ".")
	v := query.ParseValue(c.Operator, c.Value)

	switch c.Operator {
	case fields.OpEquals:
		if exactMatch(reg, field) {
			return map[string]any{"term": map[string]any{field: v.Text}}, nil
		}
		return map[string]any{"match": map[string]any{field: v.Text}}, nil
	case fields.OpContains:
		return wildcard(field, "*"+escapeWildcard(v.Text)+"*"), nil
	case fields.OpStartsWith:
		return wildcard(field, escapeWildcard(v.Text)+"*"), nil
	case fields.OpEndsWith:
		return wildcard(field, "*"+escapeWildcard(v.Text)), nil
	case fields.OpRegex:
		return map[string]any{"regexp": map[string]any{field: v.Text}}, nil
	case fields.OpGreaterThan:
		return rangeQuery(field, "gt", v.Text), nil
	case fields.OpLessThan:
		return rangeQuery(field, "lt", v.Text), nil
	case fields.OpGreaterEqual:
		return rangeQuery(field, "gte", v.Text), nil
	case fields.OpLessEqual:
		return rangeQuery(field, "lte", v.Text), nil
	case fields.OpIn:
		return map[string]any{"terms": map[string]any{field: v.Items}}, nil
	case fields.OpNotIn:
		return map[string]any{
			"bool": map[string]any{
				"must_not": map[string]any{"terms": map[string]any{field: v.Items}},
			},
		}, nil
	case fields.OpBetween:
		bounds := map[string]any{}
		if v.Items[0] != "" {
			bounds["gte"] = literal(v.Items[0])
		}
		if v.Items[1] != "" {
			bounds["lte"] = literal(v.Items[1])
		}
		return map[string]any{"range": map[string]any{field: bounds}}, nil
	case fields.OpInSubnet:
		// ip fields accept CIDR notation in term queries
		return map[string]any{"term": map[string]any{field: v.Text}}, nil
	default:
		return nil, fmt.Errorf("unsupported operator: %s", c.Operator)
	}
}

func wildcard(field, pattern string) map[string]any {
	return map[string]any{"wildcard": map[string]any{field: map[string]any{"value": pattern}}}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`)

// escapeWildcard makes user text match literally inside a wildcard pattern.
func escapeWildcard(s string) string { return wildcardEscaper.Replace(s) }

func rangeQuery(field, bound, value string) map[string]any {
	return map[string]any{"range": map[string]any{field: map[string]any{bound: literal(value)}}}
}

// literal keeps numeric bounds numeric in the request JSON.
func literal(s string) any {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return json.Number(s)
	}
	return s
}

// exactMatch decides between term and match for equality. Known fields go by
// declared type; unknown fields by naming convention.
func exactMatch(reg *fields.Registry, field string) bool {
	if f, ok := reg.FieldByName(field); ok {
		switch f.Type {
		case fields.TypeString, fields.TypeEmail, fields.TypeURL, fields.TypeJSON:
			return false
		default:
			return true
		}
	}
	for _, suffix := range []string{".ip", "_ip", ".uid", "_uid", ".id", "_id", ".port", "_port", ".code", "_code"} {
		if strings.HasSuffix(field, suffix) {
			return true
		}
	}
	return false
}
