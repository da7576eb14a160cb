package chat

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrResponding   = errors.New("a reply is still being composed")
	ErrEmptyMessage = errors.New("message text is required")
	ErrMissingID    = errors.New("message id is required")
)

// Phase is the per-turn state of the conversation.
type Phase string

const (
	// PhaseComposing accepts visitor input.
	PhaseComposing Phase = "composing"
	// PhaseResponding means a reply is pending and input is disabled.
	PhaseResponding Phase = "responding"
)

// Reply is what the responder hands back for one visitor message.
type Reply struct {
	Text         string   `json:"text"`
	QuickReplies []string `json:"quickReplies,omitempty"`
	Actions      []Action `json:"actions,omitempty"`
}

// State is the whole chat widget state. It only changes through Reduce.
type State struct {
	SessionID string    `json:"sessionId"`
	Open      bool      `json:"open"`
	Phase     Phase     `json:"phase"`
	Messages  []Message `json:"messages"`
	Context   Context   `json:"context"`

	// VisitorTurns counts accepted visitor messages. Trim does not reset it.
	VisitorTurns int `json:"visitorTurns"`
}

// NewState returns the initial, closed, idle state for a session.
func NewState(sessionID string) State {
	return State{
		SessionID: sessionID,
		Phase:     PhaseComposing,
		Messages:  []Message{},
		Context:   Context{Interests: []string{}},
	}
}

// InputEnabled reports whether the visitor may submit a message.
func (s State) InputEnabled() bool {
	return s.Phase != PhaseResponding
}

// Clone returns a copy of s that shares no slices with the original.
func (s State) Clone() State {
	s.Messages = append([]Message(nil), s.Messages...)
	s.Context = s.Context.Clone()
	return s
}

// Trim drops the oldest messages so that at most limit remain. A non-positive limit keeps everything.
func (s State) Trim(limit int) State {
	if limit <= 0 || len(s.Messages) <= limit {
		return s
	}
	s.Messages = append([]Message(nil), s.Messages[len(s.Messages)-limit:]...)
	return s
}

// Event is an input to Reduce.
type Event interface {
	apply(State) (State, error)
}

// Reduce applies ev to a copy of s. The original state is never modified; on error the
// unchanged copy is returned alongside the error.
func Reduce(s State, ev Event) (State, error) {
	next := s.Clone()
	out, err := ev.apply(next)
	if err != nil {
		return next, err
	}
	return out, nil
}

// Open shows the chat window.
type Open struct{}

func (Open) apply(s State) (State, error) {
	s.Open = true
	return s, nil
}

// Close hides the chat window. Pending replies still land.
type Close struct{}

func (Close) apply(s State) (State, error) {
	s.Open = false
	return s, nil
}

// Submit appends a visitor message and starts composing a reply.
type Submit struct {
	MessageID string
	Text      string
	At        time.Time
}

func (e Submit) apply(s State) (State, error) {
	if s.Phase == PhaseResponding {
		return s, ErrResponding
	}
	if strings.TrimSpace(e.Text) == "" {
		return s, ErrEmptyMessage
	}
	if e.MessageID == "" {
		return s, ErrMissingID
	}

	s.Messages = append(s.Messages, Message{
		ID:        e.MessageID,
		SessionID: s.SessionID,
		Author:    AuthorVisitor,
		Text:      e.Text,
		CreatedAt: e.At,
	})
	s.VisitorTurns++
	s.Phase = PhaseResponding
	return s, nil
}

// Respond appends the assistant reply, stores the updated context and re-enables input.
type Respond struct {
	MessageID string
	Reply     Reply
	Context   Context
	At        time.Time
}

func (e Respond) apply(s State) (State, error) {
	if e.MessageID == "" {
		return s, ErrMissingID
	}
	s.Messages = append(s.Messages, assistantMessage(s.SessionID, e.MessageID, e.Reply, e.At))
	s.Context = e.Context.Clone()
	s.Phase = PhaseComposing
	return s, nil
}

// Greet appends the opening assistant message. It is a no-op once the conversation has started.
type Greet struct {
	MessageID string
	Reply     Reply
	At        time.Time
}

func (e Greet) apply(s State) (State, error) {
	if len(s.Messages) > 0 {
		return s, nil
	}
	if e.MessageID == "" {
		return s, ErrMissingID
	}
	s.Messages = append(s.Messages, assistantMessage(s.SessionID, e.MessageID, e.Reply, e.At))
	return s, nil
}

func assistantMessage(sessionID, id string, reply Reply, at time.Time) Message {
	return Message{
		ID:           id,
		SessionID:    sessionID,
		Author:       AuthorAssistant,
		Text:         reply.Text,
		QuickReplies: append([]string(nil), reply.QuickReplies...),
		Actions:      append([]Action(nil), reply.Actions...),
		CreatedAt:    at,
	}
}
