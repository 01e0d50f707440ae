package messaging

import (
	"context"
	"time"
)

const healthTimeout = 2 * time.Second

// HealthStatus is the health of a broker connection.
type HealthStatus struct {
	Connected bool   `json:"connected"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// CheckClientHealth reports whether client is connected and measures a
// round trip to the server. A request with no responder still proves the
// connection works, so its error is ignored while connected.
func CheckClientHealth(ctx context.Context, client Client) HealthStatus {
	if client == nil {
		return HealthStatus{Error: "client is nil"}
	}
	if !client.IsConnected() {
		return HealthStatus{Error: "not connected to message broker"}
	}

	start := time.Now()
	_, _ = client.Request(ctx, SubjectHealthPing, []byte("ping"), healthTimeout)
	status := HealthStatus{Connected: client.IsConnected(), LatencyMS: time.Since(start).Milliseconds()}
	if !status.Connected {
		status.Error = "connection lost during health check"
	}
	return status
}
