// ABOUTME: Turn grouping over the flat message list
// ABOUTME: A turn is one user message plus the assistant messages that follow it

package turns

import (
	"github.com/weftworks/weft/internal/message"
)

// Turn is a derived grouping, never stored: one user message and the
// assistant messages that arrived before the next user message.
type Turn struct {
	User       *message.Message
	Assistants []message.Message
}

// Messages returns the turn's messages in original arrival order.
func (t Turn) Messages() []message.Message {
	out := make([]message.Message, 0, 1+len(t.Assistants))
	if t.User != nil {
		out = append(out, *t.User)
	}
	out = append(out, t.Assistants...)
	return out
}

// Group scans messages in arrival order and starts a new turn at every
// user message. Assistant messages preceding the first user message
// cannot belong to a turn and are dropped; that is a documented policy,
// not an accident. System and tool messages are skipped for display
// grouping. Pure and O(n).
func Group(messages []message.Message) []Turn {
	var out []Turn
	for i := range messages {
		switch messages[i].Role {
		case message.RoleUser:
			u := messages[i]
			out = append(out, Turn{User: &u})
		case message.RoleAssistant:
			if len(out) == 0 {
				// Orphan assistant before any user message.
				continue
			}
			last := &out[len(out)-1]
			last.Assistants = append(last.Assistants, messages[i])
		}
	}
	return out
}
