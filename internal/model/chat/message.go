package chat

import "time"

// Author identifies who wrote a message.
type Author string

const (
	AuthorVisitor   Author = "visitor"
	AuthorAssistant Author = "assistant"
)

// Action is a button bound to a fixed side-effect identifier.
type Action struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Message is a single conversation turn. Messages are never edited after they are appended.
type Message struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId"`
	Author       Author    `json:"author"`
	Text         string    `json:"text"`
	QuickReplies []string  `json:"quickReplies,omitempty"`
	Actions      []Action  `json:"actions,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
