// ABOUTME: Scripted mock conversation service and stream for controller tests
// ABOUTME: Streams replay fixed event sequences; calls and submissions are recorded

package convo

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/weftworks/weft/internal/message"
	"github.com/weftworks/weft/internal/notify"
	"github.com/weftworks/weft/internal/stream"
	"github.com/weftworks/weft/internal/toolcall"
)

// ev builds a stream event with raw JSON data.
func ev(t stream.EventType, data string) stream.Event {
	return stream.Event{Type: t, Data: []byte(data)}
}

// scriptedStream replays a fixed sequence of events then returns io.EOF.
type scriptedStream struct {
	mu     sync.Mutex
	events []stream.Event
	idx    int
	closed bool
	// block, when non-nil, is received from before each Next returns;
	// lets tests hold a stream open.
	block chan struct{}
}

func (s *scriptedStream) Next(ctx context.Context) (stream.Event, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return stream.Event{}, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx >= len(s.events) {
		return stream.Event{}, io.EOF
	}
	e := s.events[s.idx]
	s.idx++
	return e, nil
}

func (s *scriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// mockService implements Service with scripted responses.
type mockService struct {
	mu sync.Mutex

	history     []message.Message
	undoOutcome UndoOutcome

	startErr  error
	streamErr error
	fetchErr  error
	undoErr   error
	submitErr error

	// streams are handed out by StreamMessage in order; resumeStreams by
	// SubmitToolResults.
	streams       []*scriptedStream
	resumeStreams []*scriptedStream

	startCalls  int
	fetchCalls  int
	streamReqs  []StreamRequest
	submissions [][]toolcall.Result
}

func (m *mockService) StartConversation(ctx context.Context, title string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return "", m.startErr
	}
	m.startCalls++
	return "conv-1", nil
}

func (m *mockService) FetchHistory(ctx context.Context, conversationID string) ([]message.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	m.fetchCalls++
	out := make([]message.Message, len(m.history))
	copy(out, m.history)
	return out, nil
}

func (m *mockService) DeleteLastTurn(ctx context.Context, conversationID string) (UndoOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.undoErr != nil {
		return "", m.undoErr
	}
	return m.undoOutcome, nil
}

func (m *mockService) StreamMessage(ctx context.Context, req StreamRequest) (EventStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamReqs = append(m.streamReqs, req)
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	if len(m.streams) == 0 {
		return &scriptedStream{}, nil
	}
	s := m.streams[0]
	m.streams = m.streams[1:]
	return s, nil
}

func (m *mockService) SubmitToolResults(ctx context.Context, conversationID string, results []toolcall.Result, resume bool) (EventStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, results)
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if len(m.resumeStreams) == 0 {
		return &scriptedStream{}, nil
	}
	s := m.resumeStreams[0]
	m.resumeStreams = m.resumeStreams[1:]
	return s, nil
}

// serverMsg builds a server-issued message for mock histories.
func serverMsg(id string, role message.Role, content string) message.Message {
	return message.Message{ID: id, Role: role, Content: content}
}

// collect drains all notifications currently buffered for the channel.
func collect(ch <-chan notify.Notification) []notify.Notification {
	var out []notify.Notification
	for {
		select {
		case n := <-ch:
			out = append(out, n)
		default:
			return out
		}
	}
}

// kindsOf extracts the kind sequence from collected notifications.
func kindsOf(ns []notify.Notification) []notify.Kind {
	out := make([]notify.Kind, len(ns))
	for i, n := range ns {
		out[i] = n.Kind
	}
	return out
}

// newTestController wires a controller with a subscribed notification
// channel for assertions.
func newTestController(t *testing.T, svc Service) (*Controller, <-chan notify.Notification) {
	t.Helper()
	c := New(svc, Config{ProjectID: "proj-1"}, nil)
	ch, _ := c.Notifier().Subscribe(context.Background())
	t.Cleanup(c.Notifier().Close)
	return c, ch
}
