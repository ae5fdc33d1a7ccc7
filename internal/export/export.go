// ABOUTME: Transcript export: renders a conversation as markdown or HTML
// ABOUTME: Markdown groups by turn; HTML wraps the markdown through goldmark

package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/weftworks/weft/internal/message"
	"github.com/weftworks/weft/internal/turns"
)

// Markdown renders the message list as a turn-grouped markdown
// transcript. Empty assistant placeholders are skipped; attachments are
// listed under the message that carried them.
func Markdown(title string, msgs []message.Message) string {
	var b strings.Builder

	if title == "" {
		title = "Conversation"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_Exported %s_\n", time.Now().Format("2006-01-02 15:04"))

	for i, turn := range turns.Group(msgs) {
		fmt.Fprintf(&b, "\n## Turn %d\n", i+1)
		if turn.User != nil {
			writeMessage(&b, "You", turn.User)
		}
		for j := range turn.Assistants {
			a := &turn.Assistants[j]
			if a.Content == "" {
				continue
			}
			writeMessage(&b, "Assistant", a)
		}
	}

	return b.String()
}

// HTML renders the transcript as a standalone HTML document.
func HTML(title string, msgs []message.Message) (string, error) {
	md := Markdown(title, msgs)

	var body bytes.Buffer
	if err := goldmark.Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("converting transcript: %w", err)
	}

	var doc strings.Builder
	doc.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&doc, "<meta charset=\"utf-8\">\n<title>%s</title>\n", htmlEscape(title))
	doc.WriteString("</head>\n<body>\n")
	doc.Write(body.Bytes())
	doc.WriteString("</body>\n</html>\n")
	return doc.String(), nil
}

func writeMessage(b *strings.Builder, speaker string, m *message.Message) {
	fmt.Fprintf(b, "\n**%s:**\n\n%s\n", speaker, m.Content)
	for _, att := range m.Attachments {
		fmt.Fprintf(b, "\n- attachment: %s", att.Name)
		if att.Size > 0 {
			fmt.Fprintf(b, " (%d bytes)", att.Size)
		}
		b.WriteString("\n")
	}
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
