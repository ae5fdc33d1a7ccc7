// ABOUTME: Conversation controller: owns the message list, session, and display cursor
// ABOUTME: Top-level state machine composing stream interpretation, tool calls, and navigation

package convo

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/weftworks/weft/internal/auth"
	"github.com/weftworks/weft/internal/message"
	"github.com/weftworks/weft/internal/notify"
	"github.com/weftworks/weft/internal/toolcall"
	"github.com/weftworks/weft/internal/turns"
)

// Controller errors
var (
	// ErrEmptyMessage is returned by Send for empty or whitespace-only content.
	ErrEmptyMessage = errors.New("message content is empty")
	// ErrBusy is returned when an operation cannot start because a turn
	// is in flight. A boolean-phase guard, not a lock: the model is
	// cooperative and a second send must simply not begin.
	ErrBusy = errors.New("a turn is already in progress")
	// ErrNoSession is returned by operations that need an existing conversation.
	ErrNoSession = errors.New("no active conversation")
	// ErrUndoConflict is returned when the server refuses to undo mid-stream.
	ErrUndoConflict = errors.New("server cannot undo while a turn is streaming")
)

// Phase is the controller's explicit state. Illegal flag combinations
// (streaming while idle, two pending tool batches) cannot be expressed.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseSending           Phase = "sending"
	PhaseStreaming         Phase = "streaming"
	PhaseToolCallPending   Phase = "tool-call-pending"
	PhaseToolCallExecuting Phase = "tool-call-executing"
	PhaseResuming          Phase = "resuming"
)

// Session identifies one conversation with the service. ContextSnapshot
// is captured at most once, when the session is created, and stays
// immutable until the session is reset.
type Session struct {
	ConversationID  string
	ProjectID       string
	NotebookID      string
	GuideID         string
	ContextSnapshot string
}

// Config carries host-supplied identifiers stamped onto each session.
type Config struct {
	ProjectID  string
	NotebookID string
	GuideID    string
}

// Controller is the conversation orchestrator. All state mutation goes
// through its operations; hosts read snapshots and subscribe to
// notifications, never mutate directly.
type Controller struct {
	svc      Service
	cfg      Config
	registry *toolcall.Registry
	coord    *toolcall.Coordinator
	emitter  *notify.Emitter
	provider ContextProvider
	logger   *slog.Logger

	mu       sync.Mutex
	phase    Phase
	session  *Session
	messages []message.Message

	// Stream cursor: ID of the single streaming assistant message, empty
	// when no stream is active.
	streamingMessageID string
	// Final-content override cached from a `message` event; applied to
	// the last assistant message on the next history reconciliation.
	messageOverride *string

	pendingCalls       []toolcall.Call
	pendingAttachments []message.Attachment

	displayMode turns.DisplayMode
	// activeTurnIndex pins navigation to a 1-based turn; 0 tracks the
	// latest turn.
	activeTurnIndex int

	collapsible bool
	collapsed   bool
	commandMode bool

	lastAuthErr *auth.Error
}

// New creates a controller over the given conversation service.
// Pass nil logger for default.
func New(svc Service, cfg Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "convo")

	registry := toolcall.NewRegistry()
	return &Controller{
		svc:         svc,
		cfg:         cfg,
		registry:    registry,
		coord:       toolcall.NewCoordinator(registry, logger),
		emitter:     notify.NewEmitter(logger),
		logger:      logger,
		phase:       PhaseIdle,
		displayMode: turns.ModeFull,
	}
}

// SetContextProvider configures the context snapshot source. Optional;
// without one, sessions carry an empty snapshot.
func (c *Controller) SetContextProvider(p ContextProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = p
}

// RegisterTool registers a handler for a named tool. Tool calls naming
// unregistered tools abort the whole batch.
func (c *Controller) RegisterTool(name string, h toolcall.Handler) {
	c.registry.Register(name, h)
}

// Notifier exposes the outward notification emitter for subscription.
func (c *Controller) Notifier() *notify.Emitter {
	return c.emitter
}

// QueuePendingAttachment adds an already-uploaded attachment reference to
// the queue consumed by the next Send. Rolled-back sends restore their
// attachments here.
func (c *Controller) QueuePendingAttachment(att message.Attachment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingAttachments = append(c.pendingAttachments, att)
}

// PendingAttachments returns a copy of the queued attachment references.
func (c *Controller) PendingAttachments() []message.Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]message.Attachment, len(c.pendingAttachments))
	copy(out, c.pendingAttachments)
	return out
}

// Phase returns the controller's current state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// IsStreaming reports whether a streaming assistant message is active.
// False while a tool-call batch is pending: suspension clears it.
func (c *Controller) IsStreaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == PhaseStreaming || c.phase == PhaseResuming
}

// Session returns a copy of the active session, or nil.
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Messages returns a copy of the ordered message list.
func (c *Controller) Messages() []message.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]message.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Turns groups the current message list into turns.
func (c *Controller) Turns() []turns.Turn {
	return turns.Group(c.Messages())
}

// VisibleTurns resolves which turns the presentation layer should render
// under the active display mode and turn cursor.
func (c *Controller) VisibleTurns() []turns.Turn {
	c.mu.Lock()
	mode, idx := c.displayMode, c.activeTurnIndex
	msgs := make([]message.Message, len(c.messages))
	copy(msgs, c.messages)
	c.mu.Unlock()
	return turns.ResolveVisible(turns.Group(msgs), mode, idx)
}

// Nav reports the current navigation state for prev/next enablement.
func (c *Controller) Nav() turns.NavState {
	c.mu.Lock()
	mode, idx := c.displayMode, c.activeTurnIndex
	msgs := make([]message.Message, len(c.messages))
	copy(msgs, c.messages)
	c.mu.Unlock()
	return turns.Nav(turns.Group(msgs), mode, idx)
}

// LastAuthError returns the most recent authentication failure, or nil.
// Cleared on restart.
func (c *Controller) LastAuthError() *auth.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAuthErr
}

// publish emits an outward notification. Called with c.mu NOT held so a
// slow subscriber drop never happens under the state lock.
func (c *Controller) publish(kind notify.Kind, payload any) {
	c.emitter.Publish(notify.Notification{Kind: kind, Payload: payload})
}
