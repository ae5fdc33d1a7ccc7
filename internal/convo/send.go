// ABOUTME: Send flow: optimistic append, stream consumption, tool suspension, reconciliation
// ABOUTME: Failures roll back optimistic state; the finally path always clears the stream cursor

package convo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/weftworks/weft/internal/auth"
	"github.com/weftworks/weft/internal/message"
	"github.com/weftworks/weft/internal/notify"
	"github.com/weftworks/weft/internal/stream"
	"github.com/weftworks/weft/internal/toolcall"
)

// sessionTitleLimit bounds the conversation title derived from the first
// message.
const sessionTitleLimit = 80

// Send streams one user message through a full turn: optimistic local
// append, server stream consumption (including any tool-call suspensions),
// and a final history reconciliation. It blocks until the turn settles.
//
// Preconditions: content must be non-empty after trimming, and no other
// turn may be in flight. If the conversation is collapsed it expands
// first, before any message mutation becomes visible.
func (c *Controller) Send(ctx context.Context, content string, attachments ...message.Attachment) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.phase = PhaseSending

	expand := c.collapsible && c.collapsed
	if expand {
		c.collapsed = false
	}
	c.mu.Unlock()

	if expand {
		c.publish(notify.KindExpanded, nil)
	}

	err := c.runTurn(ctx, content, attachments)

	// The finally path: whatever happened above, the controller returns
	// to idle with no streaming cursor left behind.
	c.mu.Lock()
	c.phase = PhaseIdle
	c.streamingMessageID = ""
	c.pendingCalls = nil
	c.mu.Unlock()

	return err
}

// runTurn performs the session setup, optimistic append, and stream loop
// for one send.
func (c *Controller) runTurn(ctx context.Context, content string, extra []message.Attachment) error {
	if err := c.ensureSession(ctx, content); err != nil {
		c.surfaceFailure(err)
		return err
	}

	c.mu.Lock()
	attachments := append(c.pendingAttachments, extra...)
	c.pendingAttachments = nil

	userMsg := message.New(message.RoleUser, content, attachments...)
	placeholder := message.New(message.RoleAssistant, "")
	c.messages = append(c.messages, userMsg, placeholder)
	c.streamingMessageID = placeholder.ID
	c.messageOverride = nil

	req := StreamRequest{
		ConversationID: c.session.ConversationID,
		Content:        content,
		Attachments:    attachments,
		Context:        c.session.ContextSnapshot,
	}
	c.mu.Unlock()

	es, err := c.svc.StreamMessage(ctx, req)
	if err != nil {
		c.rollbackOptimistic(userMsg.ID, placeholder.ID, attachments)
		c.surfaceFailure(err)
		return err
	}

	c.mu.Lock()
	c.phase = PhaseStreaming
	c.mu.Unlock()
	c.publish(notify.KindStreamStart, nil)

	if err := c.consumeStream(ctx, es); err != nil {
		c.surfaceFailure(err)
		return err
	}
	return nil
}

// ensureSession creates a conversation session if none exists. The
// context snapshot is captured exactly once per session; command mode
// starts a fresh session (and a fresh snapshot) on every message.
func (c *Controller) ensureSession(ctx context.Context, content string) error {
	c.mu.Lock()
	need := c.session == nil || c.commandMode
	c.mu.Unlock()
	if !need {
		return nil
	}

	var snapshot string
	if c.provider != nil {
		snap, err := c.provider.Snapshot(ctx)
		if err != nil {
			c.logger.Warn("context snapshot failed", "error", err)
		} else {
			snapshot = snap
		}
	}

	title := content
	if len(title) > sessionTitleLimit {
		title = title[:sessionTitleLimit]
	}
	conversationID, err := c.svc.StartConversation(ctx, title)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.session = &Session{
		ConversationID:  conversationID,
		ProjectID:       c.cfg.ProjectID,
		NotebookID:      c.cfg.NotebookID,
		GuideID:         c.cfg.GuideID,
		ContextSnapshot: snapshot,
	}
	if c.commandMode {
		// Command mode keeps no history between messages.
		c.messages = nil
	}
	c.mu.Unlock()

	c.logger.Debug("session created",
		"conversation_id", conversationID,
		"command_mode", c.commandMode)
	return nil
}

// rollbackOptimistic removes the optimistic user and placeholder messages
// and restores consumed attachments to the pending queue.
func (c *Controller) rollbackOptimistic(userID, placeholderID string, attachments []message.Attachment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.messages[:0]
	for _, m := range c.messages {
		if m.ID == userID || m.ID == placeholderID {
			continue
		}
		kept = append(kept, m)
	}
	c.messages = kept
	c.streamingMessageID = ""
	c.pendingAttachments = append(attachments, c.pendingAttachments...)
}

// consumeStream drains an event stream, switching to resumed streams as
// tool-call batches settle, until a terminal event or EOF.
func (c *Controller) consumeStream(ctx context.Context, es EventStream) error {
	defer es.Close()

	for {
		ev, err := es.Next(ctx)
		if err == io.EOF {
			// Stream ended without a terminal event; reconcile anyway so
			// server truth wins over the optimistic entries.
			return c.reconcile(ctx)
		}
		if err != nil {
			return err
		}

		c.applyEvent(ev)

		switch {
		case ev.Type == stream.EventExternalToolCall:
			next, err := c.executeToolBatch(ctx)
			if err != nil {
				return err
			}
			if next == nil {
				// Batch aborted; the turn is over with streaming suspended.
				return nil
			}
			es.Close()
			es = next

		case ev.Terminal():
			return c.reconcile(ctx)
		}
	}
}

// applyEvent mutates controller state per the event table and re-emits
// the event outward afterwards, preserving arrival order.
func (c *Controller) applyEvent(ev stream.Event) {
	c.mu.Lock()

	switch ev.Type {
	case stream.EventToken:
		var data stream.TokenData
		if json.Unmarshal(ev.Data, &data) == nil {
			c.appendToStreamingLocked(data.ContentDelta)
		}

	case stream.EventAssistantMessage:
		var data stream.AssistantMessageData
		if json.Unmarshal(ev.Data, &data) == nil {
			c.replaceStreamingLocked(data.Content)
		}

	case stream.EventMessage:
		var data stream.MessageData
		if json.Unmarshal(ev.Data, &data) == nil {
			content := data.Content
			c.messageOverride = &content
		}

	case stream.EventExternalToolCall:
		var data stream.ToolCallData
		if json.Unmarshal(ev.Data, &data) == nil {
			c.pendingCalls = make([]toolcall.Call, 0, len(data.Calls))
			for _, req := range data.Calls {
				c.pendingCalls = append(c.pendingCalls, toolcall.Call{
					ID:        req.ID,
					Name:      req.Function.Name,
					Arguments: req.Function.Arguments,
				})
			}
		}
		// Suspend: no streaming message while tools run.
		c.phase = PhaseToolCallPending

	case stream.EventError, stream.EventComplete, stream.EventCancelled:
		// Terminal cleanup happens in consumeStream / Send; an error
		// event by itself does not end the turn.

	default:
		// Unknown event types mutate nothing but still flow outward.
	}

	c.mu.Unlock()

	// The tool-call hand-off is signalled specially; every other event is
	// re-emitted as a generic notification carrying its data.
	if ev.Type == stream.EventExternalToolCall {
		c.publish(notify.KindToolCall, ev.Data)
		return
	}
	c.publish(eventKind(ev.Type), ev.Data)
}

// eventKind maps stream event types onto notification kinds. Unknown
// types pass through under their own name.
func eventKind(t stream.EventType) notify.Kind {
	switch t {
	case stream.EventToken:
		return notify.KindToken
	case stream.EventAssistantMessage:
		return notify.KindAssistantMessage
	case stream.EventMessage:
		return notify.KindMessage
	case stream.EventError:
		return notify.KindError
	case stream.EventComplete:
		return notify.KindComplete
	case stream.EventCancelled:
		return notify.KindCancelled
	default:
		return notify.Kind(t)
	}
}

// ensurePlaceholderLocked appends a fresh empty assistant message and
// points the stream cursor at it. Caller holds c.mu.
func (c *Controller) ensurePlaceholderLocked() int {
	placeholder := message.New(message.RoleAssistant, "")
	c.messages = append(c.messages, placeholder)
	c.streamingMessageID = placeholder.ID
	return len(c.messages) - 1
}

// appendToStreamingLocked appends a token delta to the streaming message,
// creating one if the stream started implicitly. Caller holds c.mu.
func (c *Controller) appendToStreamingLocked(delta string) {
	idx := c.streamingIndexLocked()
	if idx < 0 {
		idx = c.ensurePlaceholderLocked()
	}
	c.messages[idx].Content += delta
}

// replaceStreamingLocked replaces the streaming message content wholesale
// (snapshot semantics). Caller holds c.mu.
func (c *Controller) replaceStreamingLocked(content string) {
	idx := c.streamingIndexLocked()
	if idx < 0 {
		idx = c.ensurePlaceholderLocked()
	}
	c.messages[idx].Content = content
}

// streamingIndexLocked finds the streaming message in the list, or -1.
func (c *Controller) streamingIndexLocked() int {
	if c.streamingMessageID == "" {
		return -1
	}
	for i := range c.messages {
		if c.messages[i].ID == c.streamingMessageID {
			return i
		}
	}
	return -1
}

// executeToolBatch runs the pending tool calls and, when results exist,
// submits them and returns the resumed stream. Returns (nil, nil) when
// the batch aborted on missing handlers: no resumption is attempted.
func (c *Controller) executeToolBatch(ctx context.Context) (EventStream, error) {
	c.mu.Lock()
	calls := c.pendingCalls
	c.pendingCalls = nil
	c.phase = PhaseToolCallExecuting
	conversationID := ""
	if c.session != nil {
		conversationID = c.session.ConversationID
	}
	c.mu.Unlock()

	results, err := c.coord.Execute(ctx, calls)
	if err != nil {
		var missing *toolcall.ErrHandlerMissing
		if errors.As(err, &missing) {
			c.logger.Warn("tool batch aborted", "missing", missing.Missing)
			c.publish(notify.KindError, notify.ErrorInfo{Message: missing.Error()})
			return nil, nil
		}
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	c.mu.Lock()
	c.phase = PhaseResuming
	c.mu.Unlock()

	es, err := c.svc.SubmitToolResults(ctx, conversationID, results, true)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Resume against the existing streaming slot if one survives, else a
	// fresh placeholder.
	if c.streamingIndexLocked() < 0 {
		c.ensurePlaceholderLocked()
	}
	c.phase = PhaseStreaming
	c.mu.Unlock()

	return es, nil
}

// reconcile replaces the local message list with server truth, applying
// the cached `message`-event override to the last assistant message.
func (c *Controller) reconcile(ctx context.Context) error {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return nil
	}
	conversationID := c.session.ConversationID
	c.mu.Unlock()

	fetched, err := c.svc.FetchHistory(ctx, conversationID)
	if err != nil {
		// Keep the optimistic list rather than dropping a visible turn.
		c.logger.Warn("history reconciliation failed", "error", err)
		return err
	}

	c.mu.Lock()
	if c.messageOverride != nil {
		for i := len(fetched) - 1; i >= 0; i-- {
			if fetched[i].Role == message.RoleAssistant {
				fetched[i].Content = *c.messageOverride
				break
			}
		}
		c.messageOverride = nil
	}
	c.messages = fetched
	c.streamingMessageID = ""
	c.mu.Unlock()

	return nil
}

// surfaceFailure classifies an operation failure and emits the matching
// notifications. Auth errors are a distinct kind with a machine-readable
// code; everything else is generic.
func (c *Controller) surfaceFailure(err error) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		c.mu.Lock()
		c.lastAuthErr = authErr
		c.mu.Unlock()
		c.publish(notify.KindAuthError, notify.AuthError{
			Code:         string(authErr.Code),
			Message:      authErr.Message,
			RequiresAuth: authErr.RequiresAuth(),
		})
	}
	c.publish(notify.KindError, notify.ErrorInfo{Message: err.Error()})
}
