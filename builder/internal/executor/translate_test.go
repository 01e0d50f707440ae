package executor

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
)

// asJSON normalizes a request body for comparison.
func asJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestTranslateCondition(t *testing.T) {
	reg := fields.Default()
	tests := []struct {
		name string
		cond query.Condition
		want string
	}{
		{"string equals uses match", query.Condition{Field: "severity", Operator: fields.OpEquals, Value: "high"}, `{"match":{"severity":"high"}}`},
		{"ip equals uses term", query.Condition{Field: "src_endpoint.ip", Operator: fields.OpEquals, Value: "10.0.0.5"}, `{"term":{"src_endpoint.ip":"10.0.0.5"}}`},
		{"leading dot stripped", query.Condition{Field: ".src_endpoint.ip", Operator: fields.OpEquals, Value: "10.0.0.5"}, `{"term":{"src_endpoint.ip":"10.0.0.5"}}`},
		{"unknown id field uses term", query.Condition{Field: "custom.session_id", Operator: fields.OpEquals, Value: "abc"}, `{"term":{"custom.session_id":"abc"}}`},
		{"contains", query.Condition{Field: "process.cmd_line", Operator: fields.OpContains, Value: "powershell"}, `{"wildcard":{"process.cmd_line":{"value":"*powershell*"}}}`},
		{"starts with", query.Condition{Field: "file.name", Operator: fields.OpStartsWith, Value: "inv"}, `{"wildcard":{"file.name":{"value":"inv*"}}}`},
		{"ends with", query.Condition{Field: "file.name", Operator: fields.OpEndsWith, Value: ".exe"}, `{"wildcard":{"file.name":{"value":"*.exe"}}}`},
		{"contains literal star", query.Condition{Field: "process.cmd_line", Operator: fields.OpContains, Value: "a*b"}, `{"wildcard":{"process.cmd_line":{"value":"*a\\*b*"}}}`},
		{"starts with literal question mark", query.Condition{Field: "file.name", Operator: fields.OpStartsWith, Value: "why?"}, `{"wildcard":{"file.name":{"value":"why\\?*"}}}`},
		{"ends with backslash path", query.Condition{Field: "file.name", Operator: fields.OpEndsWith, Value: `C:\tmp`}, `{"wildcard":{"file.name":{"value":"*C:\\\\tmp"}}}`},
		{"regex", query.Condition{Field: "user.name", Operator: fields.OpRegex, Value: "adm.*"}, `{"regexp":{"user.name":"adm.*"}}`},
		{"numeric bound stays numeric", query.Condition{Field: "dst_endpoint.port", Operator: fields.OpGreaterThan, Value: "1024"}, `{"range":{"dst_endpoint.port":{"gt":1024}}}`},
		{"timestamp bound stays text", query.Condition{Field: "time", Operator: fields.OpLessEqual, Value: "2024-01-01"}, `{"range":{"time":{"lte":"2024-01-01"}}}`},
		{"in", query.Condition{Field: "severity", Operator: fields.OpIn, Value: "high, critical"}, `{"terms":{"severity":["high","critical"]}}`},
		{"not in", query.Condition{Field: "severity", Operator: fields.OpNotIn, Value: "low"}, `{"bool":{"must_not":{"terms":{"severity":["low"]}}}}`},
		{"between", query.Condition{Field: "dst_endpoint.port", Operator: fields.OpBetween, Value: "1,1024"}, `{"range":{"dst_endpoint.port":{"gte":1,"lte":1024}}}`},
		{"between without upper", query.Condition{Field: "dst_endpoint.port", Operator: fields.OpBetween, Value: "1"}, `{"range":{"dst_endpoint.port":{"gte":1}}}`},
		{"in subnet", query.Condition{Field: "src_endpoint.ip", Operator: fields.OpInSubnet, Value: "10.0.0.0/8"}, `{"term":{"src_endpoint.ip":"10.0.0.0/8"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := translateCondition(reg, tt.cond)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, asJSON(t, got))
		})
	}
}

func TestTranslateUnknownOperator(t *testing.T) {
	_, err := translateCondition(fields.Default(), query.Condition{Field: "severity", Operator: "like", Value: "hi%"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported operator")
}

func TestBuildSearchBody(t *testing.T) {
	reg := fields.Default()

	t.Run("empty query matches all", func(t *testing.T) {
		body, err := BuildSearchBody(reg, "", Options{}, 100)
		require.NoError(t, err)
		assert.JSONEq(t, `{"size":100,"sort":[{"time":{"order":"desc"}}],"query":{"match_all":{}}}`, asJSON(t, body))
	})

	t.Run("free text passes through", func(t *testing.T) {
		body, err := BuildSearchBody(reg, `severity = "high" AND status = "Failure"`, Options{TimeRangeHint: "24h"}, 50)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"size": 50,
			"sort": [{"time": {"order": "desc"}}],
			"query": {"bool": {"filter": [
				{"query_string": {"query": "severity = \"high\" AND status = \"Failure\"", "default_operator": "AND"}},
				{"range": {"time": {"gte": "now-24h", "lte": "now"}}}
			]}}
		}`, asJSON(t, body))
	})

	t.Run("conditions win over text and incomplete ones are skipped", func(t *testing.T) {
		body, err := BuildSearchBody(reg, "ignored", Options{Conditions: []query.Condition{
			{Field: "severity", Operator: fields.OpEquals, Value: "high"},
			{Field: "status", Operator: fields.OpEquals},
		}}, 10)
		require.NoError(t, err)
		assert.JSONEq(t, `{"size":10,"sort":[{"time":{"order":"desc"}}],"query":{"bool":{"filter":[{"match":{"severity":"high"}}]}}}`, asJSON(t, body))
	})

	t.Run("invalid time range", func(t *testing.T) {
		_, err := BuildSearchBody(reg, "", Options{TimeRangeHint: "3y"}, 10)
		assert.True(t, errors.Is(err, ErrInvalidTimeRange))
	})
}

func TestValidTimeRange(t *testing.T) {
	for _, h := range append([]string{""}, TimeRangeHints...) {
		assert.True(t, ValidTimeRange(h), h)
	}
	assert.False(t, ValidTimeRange("30d"))
}
