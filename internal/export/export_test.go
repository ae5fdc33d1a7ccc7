// ABOUTME: Tests for markdown and HTML transcript rendering
// ABOUTME: Covers turn grouping, placeholder skipping, attachments, and HTML conversion

package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftworks/weft/internal/message"
)

func msg(role message.Role, content string) message.Message {
	return message.Message{ID: "id-" + content, Role: role, Content: content}
}

func TestMarkdown_GroupsByTurn(t *testing.T) {
	out := Markdown("Demo chat", []message.Message{
		msg(message.RoleUser, "first question"),
		msg(message.RoleAssistant, "first answer"),
		msg(message.RoleUser, "second question"),
		msg(message.RoleAssistant, "second answer"),
	})

	assert.Contains(t, out, "# Demo chat")
	assert.Contains(t, out, "## Turn 1")
	assert.Contains(t, out, "## Turn 2")
	assert.Contains(t, out, "**You:**\n\nfirst question")
	assert.Contains(t, out, "**Assistant:**\n\nsecond answer")
}

func TestMarkdown_SkipsEmptyPlaceholders(t *testing.T) {
	out := Markdown("", []message.Message{
		msg(message.RoleUser, "q"),
		msg(message.RoleAssistant, ""),
	})

	assert.Contains(t, out, "# Conversation")
	assert.Contains(t, out, "**You:**")
	assert.NotContains(t, out, "**Assistant:**")
}

func TestMarkdown_ListsAttachments(t *testing.T) {
	m := msg(message.RoleUser, "see attached")
	m.Attachments = []message.Attachment{{ID: "a1", Name: "report.pdf", Size: 2048}}

	out := Markdown("x", []message.Message{m})
	assert.Contains(t, out, "attachment: report.pdf (2048 bytes)")
}

func TestHTML_RendersDocument(t *testing.T) {
	out, err := HTML("A <b>title</b>", []message.Message{
		msg(message.RoleUser, "hello **world**"),
		msg(message.RoleAssistant, "done"),
	})
	require.NoError(t, err)

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<title>A &lt;b&gt;title&lt;/b&gt;</title>")
	assert.Contains(t, out, "<strong>world</strong>", "markdown is converted")
	assert.Contains(t, out, "</html>")
}
