package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/metrics"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/service"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/analyzer"
	"github.com/telhawk-systems/telhawk-querybuilder/common/logging"
	"github.com/telhawk-systems/telhawk-querybuilder/common/messaging"
)

// Handler answers compile and analyze jobs.
type Handler struct {
	client  messaging.Client
	svc     *service.QueryService
	tracker *analyzer.Tracker
	analyze func(string) analyzer.Result
	logger  *logging.Logger
	subs    []messaging.Subscription
}

// NewHandler creates a new NATS job handler.
func NewHandler(client messaging.Client, svc *service.QueryService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		client:  client,
		svc:     svc,
		tracker: analyzer.NewTracker(),
		analyze: svc.Analyze,
		logger:  logger.Component("nats-handler"),
	}
}

// Start joins the builder worker queue on every job subject.
func (h *Handler) Start(ctx context.Context) error {
	routes := []struct {
		subject string
		handler messaging.MessageHandler
	}{
		{messaging.SubjectCompileJobs, h.handleCompile},
		{messaging.SubjectAnalyzeJobs, h.handleAnalyze},
	}
	for _, r := range routes {
		sub, err := h.client.QueueSubscribe(r.subject, messaging.QueueBuilderWorkers, r.handler)
		if err != nil {
			_ = h.Stop()
			return fmt.Errorf("failed to subscribe to %s: %w", r.subject, err)
		}
		h.subs = append(h.subs, sub)
		h.logger.InfoContext(ctx, "subscribed", logging.Subject(r.subject))
	}
	return nil
}

// Stop unsubscribes from all subjects.
func (h *Handler) Stop() error {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			h.logger.Warn("failed to unsubscribe", logging.Subject(sub.Subject()), logging.Error(err))
		}
	}
	h.subs = nil
	return nil
}

func (h *Handler) handleCompile(ctx context.Context, msg *messaging.Message) error {
	start := time.Now()
	var req CompileJobRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		metrics.JobsTotal.WithLabelValues(msg.Subject, metrics.StatusError).Inc()
		return h.reply(ctx, msg, CompileJobResponse{Error: "invalid request: " + err.Error()})
	}

	res := h.svc.Compile(req.Conditions)
	metrics.JobsTotal.WithLabelValues(msg.Subject, metrics.StatusSuccess).Inc()
	h.logger.DebugContext(ctx, "compile job done",
		"job_id", req.JobID,
		logging.Conditions(len(req.Conditions)),
		logging.Complexity(res.Analysis.ComplexityScore))

	return h.reply(ctx, msg, CompileJobResponse{
		JobID:      req.JobID,
		Success:    true,
		Query:      res.Query,
		Conditions: res.Conditions,
		Rejected:   res.Rejected,
		Analysis:   &res.Analysis,
		TookMs:     time.Since(start).Milliseconds(),
	})
}

func (h *Handler) handleAnalyze(ctx context.Context, msg *messaging.Message) error {
	start := time.Now()
	var req AnalyzeJobRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		metrics.JobsTotal.WithLabelValues(msg.Subject, metrics.StatusError).Inc()
		return h.reply(ctx, msg, AnalyzeJobResponse{Error: "invalid request: " + err.Error()})
	}

	metrics.AnalysesTotal.WithLabelValues("nats").Inc()
	resp := AnalyzeJobResponse{JobID: req.JobID, SessionID: req.SessionID, Success: true}

	if req.SessionID == "" {
		res := h.analyze(req.Query)
		resp.Analysis = &res
	} else {
		ticket := h.tracker.Begin(req.SessionID)
		// session state only lives while a job for it is in flight
		defer h.tracker.Release(ticket)
		resp.Seq = ticket.Seq
		res := h.analyze(req.Query)
		if h.tracker.Complete(ticket, res) {
			resp.Analysis = &res
		} else {
			resp.Stale = true
			metrics.StaleAnalysesDropped.Inc()
		}
	}
	resp.TookMs = time.Since(start).Milliseconds()
	metrics.JobsTotal.WithLabelValues(msg.Subject, metrics.StatusSuccess).Inc()
	return h.reply(ctx, msg, resp)
}

func (h *Handler) reply(ctx context.Context, msg *messaging.Message, v any) error {
	if err := messaging.RespondJSON(ctx, h.client, msg.Reply, v); err != nil {
		h.logger.ErrorContext(ctx, "failed to send reply", logging.Subject(msg.Subject), logging.Error(err))
		return err
	}
	return nil
}
