package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/service"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/analyzer"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
	"github.com/telhawk-systems/telhawk-querybuilder/common/messaging"
)

type fakeSub struct {
	subject      string
	unsubscribed bool
}

func (s *fakeSub) Unsubscribe() error { s.unsubscribed = true; return nil }
func (s *fakeSub) Subject() string    { return s.subject }
func (s *fakeSub) IsValid() bool      { return !s.unsubscribed }

type fakeClient struct {
	mu       sync.Mutex
	handlers map[string]messaging.MessageHandler
	queues   map[string]string
	subs     []*fakeSub
	sent     map[string][]byte
	failOn   string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		handlers: make(map[string]messaging.MessageHandler),
		queues:   make(map[string]string),
		sent:     make(map[string][]byte),
	}
}

func (f *fakeClient) Publish(_ context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[subject] = data
	return nil
}

func (f *fakeClient) PublishMsg(ctx context.Context, m *messaging.Message) error {
	return f.Publish(ctx, m.Subject, m.Data)
}

func (f *fakeClient) Request(context.Context, string, []byte, time.Duration) (*messaging.Message, error) {
	return nil, errors.New("not supported")
}

func (f *fakeClient) Subscribe(subject string, h messaging.MessageHandler) (messaging.Subscription, error) {
	return f.QueueSubscribe(subject, "", h)
}

func (f *fakeClient) QueueSubscribe(subject, queue string, h messaging.MessageHandler) (messaging.Subscription, error) {
	if subject == f.failOn {
		return nil, errors.New("permission denied")
	}
	f.handlers[subject] = h
	f.queues[subject] = queue
	sub := &fakeSub{subject: subject}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeClient) Close() error      { return nil }
func (f *fakeClient) Drain() error      { return nil }
func (f *fakeClient) IsConnected() bool { return true }

// deliver runs the handler for subject and decodes the reply into out.
func (f *fakeClient) deliver(t *testing.T, subject string, req any, out any) {
	t.Helper()
	data, ok := req.([]byte)
	if !ok {
		var err error
		data, err = json.Marshal(req)
		require.NoError(t, err)
	}
	h, ok := f.handlers[subject]
	require.True(t, ok, "no handler for %s", subject)

	reply := "_INBOX." + subject
	require.NoError(t, h(context.Background(), &messaging.Message{Subject: subject, Data: data, Reply: reply}))
	require.Contains(t, f.sent, reply)
	require.NoError(t, json.Unmarshal(f.sent[reply], out))
}

func startHandler(t *testing.T) (*Handler, *fakeClient) {
	t.Helper()
	client := newFakeClient()
	h := NewHandler(client, service.New(), nil)
	require.NoError(t, h.Start(context.Background()))
	return h, client
}

func TestStartSubscribesToJobQueue(t *testing.T) {
	h, client := startHandler(t)

	assert.Equal(t, messaging.QueueBuilderWorkers, client.queues[messaging.SubjectCompileJobs])
	assert.Equal(t, messaging.QueueBuilderWorkers, client.queues[messaging.SubjectAnalyzeJobs])

	require.NoError(t, h.Stop())
	for _, sub := range client.subs {
		assert.True(t, sub.unsubscribed, sub.subject)
	}
}

func TestStartFailureUnsubscribes(t *testing.T) {
	client := newFakeClient()
	client.failOn = messaging.SubjectAnalyzeJobs
	h := NewHandler(client, service.New(), nil)

	err := h.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), messaging.SubjectAnalyzeJobs)
	require.Len(t, client.subs, 1)
	assert.True(t, client.subs[0].unsubscribed)
}

func TestCompileJob(t *testing.T) {
	_, client := startHandler(t)

	var resp CompileJobResponse
	client.deliver(t, messaging.SubjectCompileJobs, CompileJobRequest{
		JobID: "job-1",
		Conditions: []query.Condition{
			{ID: "1", Field: "activity_name", Operator: fields.OpEquals, Value: "failed_login"},
			{ID: "2", Field: "dst_endpoint.port", Operator: fields.OpIn, Value: "22, rdp"},
		},
	}, &resp)

	assert.True(t, resp.Success)
	assert.Equal(t, "job-1", resp.JobID)
	assert.Equal(t, `activity_name = "failed_login"`, resp.Query)
	require.Len(t, resp.Rejected, 1)
	assert.Equal(t, "Must be a number", resp.Rejected[0].Reason)
	require.NotNil(t, resp.Analysis)
	assert.Equal(t, 1, resp.Analysis.ConditionCount)
}

func TestInvalidJobPayloads(t *testing.T) {
	_, client := startHandler(t)

	var compile CompileJobResponse
	client.deliver(t, messaging.SubjectCompileJobs, []byte("{nope"), &compile)
	assert.False(t, compile.Success)
	assert.Contains(t, compile.Error, "invalid request")

	var analyze AnalyzeJobResponse
	client.deliver(t, messaging.SubjectAnalyzeJobs, []byte("[]"), &analyze)
	assert.False(t, analyze.Success)
	assert.Contains(t, analyze.Error, "invalid request")
}

func TestAnalyzeJob(t *testing.T) {
	_, client := startHandler(t)

	var resp AnalyzeJobResponse
	client.deliver(t, messaging.SubjectAnalyzeJobs, AnalyzeJobRequest{
		JobID: "job-2",
		Query: `process.cmd_line regex ".*-enc.*"`,
	}, &resp)

	assert.True(t, resp.Success)
	assert.False(t, resp.Stale)
	assert.Zero(t, resp.Seq)
	require.NotNil(t, resp.Analysis)
	assert.True(t, resp.Analysis.HasRegex)
}

func TestAnalyzeJobSessions(t *testing.T) {
	h, client := startHandler(t)

	var first AnalyzeJobResponse
	client.deliver(t, messaging.SubjectAnalyzeJobs, AnalyzeJobRequest{SessionID: "s1", Query: "severity = \"high\""}, &first)
	require.NotNil(t, first.Analysis)
	assert.False(t, first.Stale)

	// a newer request for the session lands while this one is analyzed
	h.analyze = func(q string) analyzer.Result {
		h.tracker.Begin("s1")
		return analyzer.Analyze(q)
	}
	var stale AnalyzeJobResponse
	client.deliver(t, messaging.SubjectAnalyzeJobs, AnalyzeJobRequest{SessionID: "s1", Query: "x"}, &stale)
	assert.True(t, stale.Success)
	assert.True(t, stale.Stale)
	assert.Nil(t, stale.Analysis)
	assert.Greater(t, stale.Seq, first.Seq)
	// the newer job is still outstanding
	assert.Equal(t, 1, h.tracker.Len())

	h.analyze = analyzer.Analyze
	var fresh AnalyzeJobResponse
	client.deliver(t, messaging.SubjectAnalyzeJobs, AnalyzeJobRequest{SessionID: "s1", Query: "y"}, &fresh)
	require.NotNil(t, fresh.Analysis)
	assert.False(t, fresh.Stale)
	assert.Zero(t, h.tracker.Len())
}

func TestAnalyzeJobSessionsAreReleased(t *testing.T) {
	h, client := startHandler(t)

	for i := 0; i < 500; i++ {
		var resp AnalyzeJobResponse
		client.deliver(t, messaging.SubjectAnalyzeJobs, AnalyzeJobRequest{
			SessionID: fmt.Sprintf("session-%d", i),
			Query:     `severity = "high"`,
		}, &resp)
		require.NotNil(t, resp.Analysis)
	}
	assert.Zero(t, h.tracker.Len())
}
