// Package nats serves query builder jobs over NATS request/reply.
package nats

import (
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/analyzer"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
)

// CompileJobRequest is received on querybuilder.jobs.compile.
type CompileJobRequest struct {
	JobID      string            `json:"job_id"`
	Conditions []query.Condition `json:"conditions"`
}

// CompileJobResponse is sent to the request's reply subject.
type CompileJobResponse struct {
	JobID      string            `json:"job_id"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Query      string            `json:"query"`
	Conditions []query.Condition `json:"conditions,omitempty"`
	Rejected   []query.Rejection `json:"rejected,omitempty"`
	Analysis   *analyzer.Result  `json:"analysis,omitempty"`
	TookMs     int64             `json:"took_ms"`
}

// AnalyzeJobRequest is received on querybuilder.jobs.analyze. Requests that
// share a SessionID supersede each other: only the newest is marked current.
type AnalyzeJobRequest struct {
	JobID     string `json:"job_id"`
	SessionID string `json:"session_id,omitempty"`
	Query     string `json:"query"`
}

// AnalyzeJobResponse answers an AnalyzeJobRequest. Stale is set, and Analysis
// omitted, when a newer request for the same session arrived first.
type AnalyzeJobResponse struct {
	JobID     string           `json:"job_id"`
	SessionID string           `json:"session_id,omitempty"`
	Seq       uint64           `json:"seq,omitempty"`
	Success   bool             `json:"success"`
	Error     string           `json:"error,omitempty"`
	Stale     bool             `json:"stale,omitempty"`
	Analysis  *analyzer.Result `json:"analysis,omitempty"`
	TookMs    int64            `json:"took_ms"`
}
