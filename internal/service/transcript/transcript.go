// Package transcript renders a conversation as a plain-text download.
package transcript

import (
	"io"
	"strings"

	"github.com/avikajoshi/portfolio/backend/internal/model/chat"
)

// Filename is the attachment name offered to the browser.
const Filename = "avika-joshi-conversation.txt"

// ContentType of the exported document.
const ContentType = "text/plain; charset=utf-8"

// Format renders one "AUTHOR: text" line per message, separated by a blank line.
// Line breaks inside a message are folded so every message stays on one line.
func Format(messages []chat.Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(label(m.Author))
		b.WriteString(": ")
		b.WriteString(flatten(m.Text))
	}
	return b.String()
}

// Write streams Format(messages) to w.
func Write(w io.Writer, messages []chat.Message) error {
	_, err := io.WriteString(w, Format(messages))
	return err
}

func label(a chat.Author) string {
	return strings.ToUpper(string(a))
}

func flatten(text string) string {
	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, " ")
}
