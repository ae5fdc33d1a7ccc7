// ABOUTME: Typed stream events decoded from the server-sent event stream
// ABOUTME: Event types and their JSON data payloads

package stream

import "encoding/json"

// EventType identifies a decoded stream event.
type EventType string

const (
	// EventToken carries an incremental content delta for the streaming
	// assistant message.
	EventToken EventType = "token"
	// EventAssistantMessage carries a full snapshot of the streaming
	// message content (replace, not append).
	EventAssistantMessage EventType = "assistant_message"
	// EventMessage carries the final authoritative content for the turn.
	EventMessage EventType = "message"
	// EventExternalToolCall asks the client to execute tools and submit
	// results before the turn can complete.
	EventExternalToolCall EventType = "external_tool_call"
	// EventError surfaces a server-side error without terminating the turn.
	EventError EventType = "error"
	// EventComplete terminates the turn normally.
	EventComplete EventType = "complete"
	// EventCancelled terminates the turn after server-side cancellation.
	// Treated identically to EventComplete for cleanup.
	EventCancelled EventType = "cancelled"
)

// Event is one decoded unit from the event stream.
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Terminal reports whether the event ends the turn.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventCancelled
}

// TokenData is the payload of an EventToken.
type TokenData struct {
	ContentDelta string `json:"contentDelta"`
}

// AssistantMessageData is the payload of an EventAssistantMessage.
type AssistantMessageData struct {
	Content string `json:"content"`
}

// MessageData is the payload of an EventMessage. Its content overrides
// whatever the next history fetch returns for the last assistant message.
type MessageData struct {
	Content string `json:"content"`
}

// ToolCallRequest is one requested call inside an EventExternalToolCall.
type ToolCallRequest struct {
	ID       string `json:"id"`
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

// ToolCallData is the payload of an EventExternalToolCall.
type ToolCallData struct {
	Calls []ToolCallRequest `json:"calls"`
}

// ErrorData is the payload of an EventError.
type ErrorData struct {
	Message string `json:"message"`
}

// CancelData is the payload of an EventCancelled.
type CancelData struct {
	Reason string `json:"reason,omitempty"`
}
