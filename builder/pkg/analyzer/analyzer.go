// Package analyzer scores a compiled query with lexical heuristics. It never
// parses the query; every signal is a substring test on the raw text, so
// identical input always yields an identical Result.
package analyzer

import (
	"fmt"
	"strings"
)

// Priority ranks a suggestion.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SuggestionType groups suggestions by what they improve.
type SuggestionType string

const (
	TypePerformance SuggestionType = "performance"
	TypeComplexity  SuggestionType = "complexity"
)

// Suggestion is one optimization hint.
type Suggestion struct {
	Type        SuggestionType `json:"type"`
	Priority    Priority       `json:"priority"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Example     string         `json:"example,omitempty"`
}

// Warning flags a construct with a known cost.
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Result is a snapshot analysis of one query string.
type Result struct {
	ComplexityScore      int          `json:"complexity_score"`
	EstimatedTime        string       `json:"estimated_time"`
	PerformanceScore     int          `json:"performance_score"`
	ConditionCount       int          `json:"condition_count"`
	HasTimeFilter        bool         `json:"has_time_filter"`
	HasRegex             bool         `json:"has_regex"`
	HasWildcards         bool         `json:"has_wildcards"`
	IndexRecommendations []string     `json:"index_recommendations"`
	Suggestions          []Suggestion `json:"suggestions"`
	Warnings             []Warning    `json:"warnings"`
}

const (
	maxComplexity     = 10
	conditionSplit    = " AND "
	simplifyThreshold = 5
)

// IndexedFields is the watch-list scanned for index recommendations.
// Recommendations follow this order, not the order in the query.
var IndexedFields = []string{"activity_name", "severity", "user_name", "src_endpoint_ip"}

// Analyze scores q. Counting splits on the literal " AND ", so the inner
// AND of a BETWEEN fragment adds a segment; the empty query has zero.
func Analyze(q string) Result {
	lower := strings.ToLower(q)

	r := Result{
		ConditionCount: countConditions(q),
		HasTimeFilter:  strings.Contains(lower, "time"),
		HasRegex:       strings.Contains(lower, "regex"),
		HasWildcards:   strings.ContainsAny(q, "*%"),
	}

	complexity := 1 + r.ConditionCount*2
	estimate := 0.1 + float64(r.ConditionCount)*0.05
	if r.HasRegex {
		complexity += 3
		estimate += 0.2
	}
	if r.HasWildcards {
		complexity += 2
	}
	if !r.HasTimeFilter {
		complexity += 2
		estimate += 0.3
	}
	r.ComplexityScore = min(complexity, maxComplexity)
	r.EstimatedTime = fmt.Sprintf("%.2f", estimate)
	r.PerformanceScore = max(0, maxComplexity-r.ComplexityScore)

	r.Suggestions = suggestionsFor(r)
	r.Warnings = warningsFor(r)
	r.IndexRecommendations = recommendIndexes(lower)
	return r
}

func countConditions(q string) int {
	if q == "" {
		return 0
	}
	return len(strings.Split(q, conditionSplit))
}

// suggestionsFor emits suggestions in a fixed order; they are never re-sorted
// by priority.
func suggestionsFor(r Result) []Suggestion {
	out := []Suggestion{}
	if !r.HasTimeFilter {
		out = append(out, Suggestion{
			Type:        TypePerformance,
			Priority:    PriorityHigh,
			Title:       "Add Time Filter",
			Description: "Queries without a time range scan every stored event. Bound the search to the window you are investigating.",
			Example:     `AND time >= "2024-01-01T00:00:00Z"`,
		})
	}
	if r.HasRegex {
		out = append(out, Suggestion{
			Type:        TypePerformance,
			Priority:    PriorityMedium,
			Title:       "Consider Exact Matches",
			Description: "Regular expressions cannot use term indexes. Prefer equals, in or starts_with where the value is known.",
		})
	}
	if r.ConditionCount > simplifyThreshold {
		out = append(out, Suggestion{
			Type:        TypeComplexity,
			Priority:    PriorityMedium,
			Title:       "Simplify Query",
			Description: "Many conditions make results harder to reason about. Combine values with in or split the investigation.",
		})
	}
	return out
}

func warningsFor(r Result) []Warning {
	out := []Warning{}
	if r.HasWildcards {
		out = append(out, Warning{
			Type:    "performance",
			Message: "Wildcard patterns (* or %) force a scan of every term and may slow the query considerably.",
		})
	}
	return out
}

func recommendIndexes(lower string) []string {
	out := []string{}
	for _, f := range IndexedFields {
		if strings.Contains(lower, f) {
			out = append(out, f)
		}
	}
	return out
}
