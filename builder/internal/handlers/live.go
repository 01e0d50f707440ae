package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/metrics"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/analyzer"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
	"github.com/telhawk-systems/telhawk-querybuilder/common/logging"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = (livePongWait * 9) / 10
	liveMaxMessage = 64 << 10
)

// LiveRequest is one edit sent over the live analysis socket. When
// Conditions is set the query is compiled from it and Query is ignored.
type LiveRequest struct {
	Query      string            `json:"query"`
	Conditions []query.Condition `json:"conditions,omitempty"`
}

// LiveResponse carries the analysis for the newest edit. Seq increases
// across responses on one connection.
type LiveResponse struct {
	Seq      uint64            `json:"seq"`
	Query    string            `json:"query"`
	Analysis analyzer.Result   `json:"analysis"`
	Rejected []query.Rejection `json:"rejected,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// LiveAnalyze handles GET /api/v1/analyze/live. Every message starts a new
// analysis; results superseded by a later message are dropped, so the client
// only ever sees the analysis of its most recent input.
func (h *Handler) LiveAnalyze(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", logging.Error(err))
		return
	}

	key := uuid.NewString()
	log := h.logger.With("connection_id", key)
	metrics.LiveSessions.Inc()
	log.DebugContext(r.Context(), "live analysis connected")

	send := make(chan LiveResponse, 16)
	done := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.liveWriter(conn, send, done)
	}()

	var pending sync.WaitGroup
	defer func() {
		close(done)
		pending.Wait()
		<-writerDone
		h.tracker.Forget(key)
		metrics.LiveSessions.Dec()
		_ = conn.Close()
		log.DebugContext(r.Context(), "live analysis disconnected")
	}()

	conn.SetReadLimit(liveMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WarnContext(r.Context(), "live analysis read error", logging.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(livePongWait))

		var req LiveRequest
		ticket := h.tracker.Begin(key)
		if err := json.Unmarshal(data, &req); err != nil {
			deliver(send, done, LiveResponse{Seq: ticket.Seq, Error: "invalid message: " + err.Error()})
			continue
		}

		metrics.AnalysesTotal.WithLabelValues("live").Inc()
		pending.Add(1)
		go func(req LiveRequest, ticket analyzer.Ticket) {
			defer pending.Done()
			resp := h.liveAnalyze(req)
			resp.Seq = ticket.Seq
			if !h.tracker.Complete(ticket, resp.Analysis) {
				metrics.StaleAnalysesDropped.Inc()
				return
			}
			deliver(send, done, resp)
		}(req, ticket)
	}
}

func (h *Handler) liveAnalyze(req LiveRequest) LiveResponse {
	if req.Conditions != nil {
		res := h.svc.Compile(req.Conditions)
		return LiveResponse{Query: res.Query, Analysis: res.Analysis, Rejected: res.Rejected}
	}
	return LiveResponse{Query: req.Query, Analysis: h.svc.Analyze(req.Query)}
}

func deliver(send chan<- LiveResponse, done <-chan struct{}, resp LiveResponse) {
	select {
	case send <- resp:
	case <-done:
	}
}

// liveWriter owns all writes to conn. Responses older than one already sent
// are dropped so results never arrive out of order.
func (h *Handler) liveWriter(conn *websocket.Conn, send <-chan LiveResponse, done <-chan struct{}) {
	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case resp := <-send:
			if resp.Seq <= lastSeq {
				metrics.StaleAnalysesDropped.Inc()
				continue
			}
			lastSeq = resp.Seq
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteJSON(resp); err != nil {
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
