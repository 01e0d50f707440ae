// Package messaging defines broker-neutral interfaces used by the query builder
// job workers. The NATS implementation lives in the nats subpackage.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// MetadataRequestID carries the originating request id across the broker.
const MetadataRequestID = "X-Request-ID"

// Message is a message received from or sent to a broker.
type Message struct {
	Subject string
	Data    []byte

	// Reply is set for request/reply; the receiver answers on it.
	Reply string

	Metadata  map[string]string
	Timestamp time.Time
}

// MessageHandler processes a received message.
type MessageHandler func(ctx context.Context, msg *Message) error

// Subscription is an active subscription to a subject.
type Subscription interface {
	Unsubscribe() error
	Subject() string
	IsValid() bool
}

// Publisher publishes messages to subjects.
type Publisher interface {
	// Publish is fire-and-forget; use Request for request/reply.
	Publish(ctx context.Context, subject string, data []byte) error
	PublishMsg(ctx context.Context, msg *Message) error
	Request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*Message, error)
	Close() error
}

// Subscriber subscribes to messages on subjects.
type Subscriber interface {
	// Subscribe fans out: every subscriber receives every message.
	Subscribe(subject string, handler MessageHandler) (Subscription, error)

	// QueueSubscribe load-balances messages across members of queue.
	QueueSubscribe(subject, queue string, handler MessageHandler) (Subscription, error)

	Close() error
}

// Client combines Publisher and Subscriber.
type Client interface {
	Publisher
	Subscriber

	// Drain closes the connection after in-flight messages complete.
	Drain() error
	IsConnected() bool
}

// RespondJSON marshals v and publishes it to reply. An empty reply subject
// is a no-op so handlers can serve both request/reply and plain publishes.
func RespondJSON(ctx context.Context, p Publisher, reply string, v any) error {
	if reply == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	return p.Publish(ctx, reply, data)
}
