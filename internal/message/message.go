// ABOUTME: Message and attachment records for a single conversation
// ABOUTME: The orchestrator owns the only mutable message list; everything else reads copies

package message

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// tempIDPrefix marks locally-minted IDs that have not been reconciled
// against server truth yet.
const tempIDPrefix = "temp-"

// Message is one entry in the conversation history.
type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Created     time.Time    `json:"created"`
	IsEdited    bool         `json:"is_edited,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment describes an uploaded file referenced by a message.
// Upload mechanics live with the host; the controller only carries the
// reference.
type Attachment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"media_type,omitempty"`
	URI       string `json:"uri,omitempty"`
	Size      int64  `json:"size,omitempty"`
}

// NewTempID mints a local placeholder ID for an optimistic message,
// e.g. "temp-user-5f0c...". Temp IDs are replaced wholesale when the
// history is refetched from the server.
func NewTempID(role Role) string {
	return tempIDPrefix + string(role) + "-" + uuid.New().String()
}

// IsTempID reports whether id was minted locally via NewTempID.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// New builds a message with a fresh temp ID and the current time.
func New(role Role, content string, attachments ...Attachment) Message {
	return Message{
		ID:          NewTempID(role),
		Role:        role,
		Content:     content,
		Created:     time.Now(),
		Attachments: attachments,
	}
}
