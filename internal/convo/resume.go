// ABOUTME: Host-driven protocol: ingest raw stream events, resume streams, submit results
// ABOUTME: Lets hosts run tool execution and stream plumbing outside the controller's own calls

package convo

import (
	"context"
	"encoding/json"

	"github.com/weftworks/weft/internal/stream"
	"github.com/weftworks/weft/internal/toolcall"
)

// IngestStreamEvent applies one externally-received stream event to the
// controller state, exactly as if it had arrived on a controller-owned
// stream: state mutation first, outward re-emission second. Tool handlers
// are NOT invoked — hosts driving this path execute tools themselves and
// call SubmitExternalToolResults.
func (c *Controller) IngestStreamEvent(eventType string, data json.RawMessage) {
	ev := stream.Event{Type: stream.EventType(eventType), Data: data}

	c.mu.Lock()
	if c.phase == PhaseIdle && !ev.Terminal() {
		c.phase = PhaseStreaming
	}
	c.mu.Unlock()

	c.applyEvent(ev)

	if ev.Terminal() {
		c.mu.Lock()
		c.phase = PhaseIdle
		c.streamingMessageID = ""
		c.mu.Unlock()
	}
}

// PendingToolCalls returns a copy of the tool calls awaiting resolution.
func (c *Controller) PendingToolCalls() []toolcall.Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]toolcall.Call, len(c.pendingCalls))
	copy(out, c.pendingCalls)
	return out
}

// SubmitExternalToolResults submits host-collected tool results and
// consumes the resumed stream through to its terminal event. The pending
// tool state is destroyed on submission regardless of per-call outcomes.
func (c *Controller) SubmitExternalToolResults(ctx context.Context, results []toolcall.Result) error {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	conversationID := c.session.ConversationID
	c.pendingCalls = nil
	c.phase = PhaseResuming
	c.mu.Unlock()

	err := c.resumeInto(ctx, conversationID, results)

	c.mu.Lock()
	c.phase = PhaseIdle
	c.streamingMessageID = ""
	c.mu.Unlock()

	if err != nil {
		c.surfaceFailure(err)
	}
	return err
}

// BeginResumeStream re-opens the turn's event stream without submitting
// results, for hosts that delivered results out of band.
func (c *Controller) BeginResumeStream(ctx context.Context) error {
	return c.SubmitExternalToolResults(ctx, nil)
}

// resumeInto opens the resumed stream and drains it with the standard
// event loop (including any further tool suspensions, which from here on
// run through the controller's own coordinator).
func (c *Controller) resumeInto(ctx context.Context, conversationID string, results []toolcall.Result) error {
	es, err := c.svc.SubmitToolResults(ctx, conversationID, results, true)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.streamingIndexLocked() < 0 {
		c.ensurePlaceholderLocked()
	}
	c.phase = PhaseStreaming
	c.mu.Unlock()

	return c.consumeStream(ctx, es)
}
