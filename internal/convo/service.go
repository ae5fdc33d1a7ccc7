// ABOUTME: Consumer-side interfaces the controller needs from its collaborators
// ABOUTME: Conversation service, event streams, and the context snapshot provider

package convo

import (
	"context"

	"github.com/weftworks/weft/internal/message"
	"github.com/weftworks/weft/internal/stream"
	"github.com/weftworks/weft/internal/toolcall"
)

// UndoOutcome is the service's answer to a delete-last-turn request.
type UndoOutcome string

const (
	// UndoDeleted means the last turn was removed; reload history.
	UndoDeleted UndoOutcome = "deleted"
	// UndoNone means there was nothing to delete.
	UndoNone UndoOutcome = "none"
	// UndoConflict means the server is mid-stream and cannot safely undo.
	UndoConflict UndoOutcome = "conflict"
)

// StreamRequest carries everything needed to stream a new message.
type StreamRequest struct {
	ConversationID string
	Content        string
	Attachments    []message.Attachment
	// Context is the session's context snapshot; empty when none was
	// captured.
	Context string
}

// EventStream is an open server event stream. Next returns io.EOF when
// the stream ends.
type EventStream interface {
	Next(ctx context.Context) (stream.Event, error)
	Close() error
}

// Service defines what the controller needs from the conversation
// backend. All operations are network-bound and may fail with a generic
// error or a structured *auth.Error.
type Service interface {
	StartConversation(ctx context.Context, title string) (conversationID string, err error)
	FetchHistory(ctx context.Context, conversationID string) ([]message.Message, error)
	DeleteLastTurn(ctx context.Context, conversationID string) (UndoOutcome, error)
	StreamMessage(ctx context.Context, req StreamRequest) (EventStream, error)
	// SubmitToolResults submits collected tool results. With resume=true
	// the service re-opens an event stream for the rest of the turn.
	SubmitToolResults(ctx context.Context, conversationID string, results []toolcall.Result, resume bool) (EventStream, error)
}

// ContextProvider supplies the context snapshot captured when a session
// is created (once per session, or per message in command mode).
type ContextProvider interface {
	Snapshot(ctx context.Context) (string, error)
}

// ContextProviderFunc adapts a function to the ContextProvider interface.
type ContextProviderFunc func(ctx context.Context) (string, error)

func (f ContextProviderFunc) Snapshot(ctx context.Context) (string, error) {
	return f(ctx)
}
