package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avikajoshi/portfolio/backend/internal/model/chat"
	"github.com/avikajoshi/portfolio/backend/internal/service/responder"
	"github.com/avikajoshi/portfolio/backend/internal/service/transcript"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrServiceClosed   = errors.New("chat service is shut down")
)

// Responder produces canned replies.
type Responder interface {
	Respond(ctx context.Context, req responder.Request) responder.Result
	Greeting() chat.Reply
}

// Recorder receives anonymous usage counters. Implementations must be safe for concurrent use.
type Recorder interface {
	RecordSession(ctx context.Context, visitor string) error
	RecordTopic(ctx context.Context, visitor, topic string) error
}

// Options tunes the service. Zero values fall back to the defaults noted on each field.
type Options struct {
	// TypingDelay is how long the assistant "types" before a reply lands (1.5s).
	TypingDelay time.Duration
	// GreetingDelay is the pause before the opening greeting (500ms).
	GreetingDelay time.Duration
	// HistoryLimit caps retained messages per session; 0 keeps everything.
	HistoryLimit int
	// SessionTTL expires sessions idle for longer than this (30m).
	SessionTTL time.Duration
	Recorder   Recorder
	Logger     *slog.Logger
}

// UpdateKind labels a state change pushed to subscribers.
type UpdateKind string

const (
	UpdateTyping  UpdateKind = "typing"
	UpdateMessage UpdateKind = "message"
	UpdateState   UpdateKind = "state"
	UpdateEnded   UpdateKind = "ended"
)

// Update is a snapshot pushed to subscribers after every transition.
type Update struct {
	Kind    UpdateKind    `json:"kind"`
	State   chat.State    `json:"state"`
	Message *chat.Message `json:"message,omitempty"`
}

const subscriberBuffer = 16

type entry struct {
	session  chat.Session
	visitor  string
	state    chat.State
	greet    *time.Timer
	reply    *time.Timer
	subs     map[int]chan Update
	lastSeen time.Time
}

func (e *entry) stopTimers() {
	if e.greet != nil {
		e.greet.Stop()
		e.greet = nil
	}
	if e.reply != nil {
		e.reply.Stop()
		e.reply = nil
	}
}

// Service owns every live conversation. All state transitions go through chat.Reduce
// under a single mutex; replies are delivered by timers after the typing delay.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*entry
	nextSub  int
	closed   bool

	responder Responder
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires a responder into an in-memory session registry.
func NewService(r Responder, opts Options) *Service {
	if opts.TypingDelay <= 0 {
		opts.TypingDelay = 1500 * time.Millisecond
	}
	if opts.GreetingDelay <= 0 {
		opts.GreetingDelay = 500 * time.Millisecond
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sessions:  make(map[string]*entry),
		responder: r,
		opts:      opts,
		logger:    logger.With("component", "chat"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession provisions a session, opens the chat window and schedules the greeting.
// visitor is an opaque, already anonymized identifier used only for analytics.
func (s *Service) CreateSession(ctx context.Context, visitor string) (chat.Session, chat.State, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return chat.Session{}, chat.State{}, ErrServiceClosed
	}

	now := s.now()
	session := chat.Session{ID: uuid.NewString(), CreatedAt: now}
	state, _ := chat.Reduce(chat.NewState(session.ID), chat.Open{})
	e := &entry{
		session:  session,
		visitor:  visitor,
		state:    state,
		subs:     make(map[int]chan Update),
		lastSeen: now,
	}
	s.sessions[session.ID] = e
	s.scheduleGreetingLocked(e)
	snapshot := e.state.Clone()
	s.mu.Unlock()

	s.logger.Info("session created", "session", session.ID)
	s.record(ctx, func(ctx context.Context, r Recorder) error { return r.RecordSession(ctx, visitor) })

	return session, snapshot, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return e.session, nil
}

// State returns a copy of the current conversation state.
func (s *Service) State(_ context.Context, sessionID string) (chat.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return chat.State{}, ErrSessionNotFound
	}
	return e.state.Clone(), nil
}

// Open shows the chat window, scheduling the greeting when the conversation is empty.
func (s *Service) Open(_ context.Context, sessionID string) (chat.State, error) {
	return s.transition(sessionID, chat.Open{}, func(e *entry) {
		s.scheduleGreetingLocked(e)
	})
}

// Close hides the chat window. A pending reply still lands.
func (s *Service) Close(_ context.Context, sessionID string) (chat.State, error) {
	return s.transition(sessionID, chat.Close{}, nil)
}

// Submit appends a visitor message and schedules the assistant reply after the typing delay.
// It returns chat.ErrResponding while a previous reply is pending.
func (s *Service) Submit(_ context.Context, sessionID, text string) (chat.State, error) {
	msgID := uuid.NewString()
	return s.transition(sessionID, chat.Submit{MessageID: msgID, Text: text, At: s.now()}, func(e *entry) {
		if e.greet != nil {
			e.greet.Stop()
			e.greet = nil
		}
		id := e.session.ID
		e.reply = time.AfterFunc(s.opts.TypingDelay, func() { s.deliverReply(id) })
	})
}

func (s *Service) transition(sessionID string, ev chat.Event, after func(*entry)) (chat.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return chat.State{}, ErrSessionNotFound
	}

	next, err := chat.Reduce(e.state, ev)
	if err != nil {
		return e.state.Clone(), err
	}
	e.state = next
	e.lastSeen = s.now()
	if after != nil {
		after(e)
	}

	kind := UpdateState
	var msg *chat.Message
	if _, ok := ev.(chat.Submit); ok {
		kind = UpdateTyping
		last := e.state.Messages[len(e.state.Messages)-1]
		msg = &last
	}
	s.publishLocked(e, kind, msg)
	return e.state.Clone(), nil
}

func (s *Service) scheduleGreetingLocked(e *entry) {
	if len(e.state.Messages) > 0 || e.greet != nil || s.responder == nil {
		return
	}
	id := e.session.ID
	e.greet = time.AfterFunc(s.opts.GreetingDelay, func() { s.deliverGreeting(id) })
}

func (s *Service) deliverGreeting(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok || e.greet == nil {
		return
	}
	e.greet = nil

	if len(e.state.Messages) > 0 {
		return
	}
	next, err := chat.Reduce(e.state, chat.Greet{MessageID: uuid.NewString(), Reply: s.responder.Greeting(), At: s.now()})
	if err != nil {
		s.logger.Error("greeting failed", "session", sessionID, "error", err)
		return
	}
	e.state = next
	last := e.state.Messages[len(e.state.Messages)-1]
	s.publishLocked(e, UpdateMessage, &last)
}

func (s *Service) deliverReply(sessionID string) {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	if !ok || e.reply == nil || e.state.Phase != chat.PhaseResponding {
		s.mu.Unlock()
		return
	}
	e.reply = nil

	var text string
	for i := len(e.state.Messages) - 1; i >= 0; i-- {
		if e.state.Messages[i].Author == chat.AuthorVisitor {
			text = e.state.Messages[i].Text
			break
		}
	}

	res := s.responder.Respond(context.Background(), responder.Request{
		Text:              text,
		Context:           e.state.Context,
		PriorVisitorTurns: e.state.VisitorTurns - 1,
	})
	next, err := chat.Reduce(e.state, chat.Respond{
		MessageID: uuid.NewString(),
		Reply:     res.Reply,
		Context:   res.Context,
		At:        s.now(),
	})
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("reply failed", "session", sessionID, "error", err)
		return
	}
	e.state = next.Trim(s.opts.HistoryLimit)
	last := e.state.Messages[len(e.state.Messages)-1]
	s.publishLocked(e, UpdateMessage, &last)
	visitor := e.visitor
	s.mu.Unlock()

	s.logger.Debug("reply delivered", "session", sessionID, "topic", res.Topic, "reply", res.ReplyID)
	s.record(context.Background(), func(ctx context.Context, r Recorder) error {
		return r.RecordTopic(ctx, visitor, string(res.Topic))
	})
}

// Subscribe returns a channel of updates for the session and a cancel func. The channel is
// closed when the session ends or cancel is called. Slow readers miss intermediate updates.
func (s *Service) Subscribe(sessionID string) (<-chan Update, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}

	id := s.nextSub
	s.nextSub++
	ch := make(chan Update, subscriberBuffer)
	e.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if cur, ok := s.sessions[sessionID]; ok {
				if sub, ok := cur.subs[id]; ok {
					delete(cur.subs, id)
					close(sub)
				}
			}
		})
	}
	return ch, cancel, nil
}

func (s *Service) publishLocked(e *entry, kind UpdateKind, msg *chat.Message) {
	if len(e.subs) == 0 {
		return
	}
	u := Update{Kind: kind, State: e.state.Clone(), Message: msg}
	for id, ch := range e.subs {
		select {
		case ch <- u:
		default:
			s.logger.Warn("dropping chat update for slow subscriber", "session", e.session.ID, "subscriber", id, "kind", kind)
		}
	}
}

// Export renders the transcript of a session.
func (s *Service) Export(ctx context.Context, sessionID string) (string, error) {
	state, err := s.State(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return transcript.Format(state.Messages), nil
}

// Delete ends a session, cancelling pending timers and closing subscriptions.
func (s *Service) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	s.endLocked(e)
	s.logger.Info("session ended", "session", sessionID)
	return nil
}

func (s *Service) endLocked(e *entry) {
	e.stopTimers()
	s.publishLocked(e, UpdateEnded, nil)
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
	delete(s.sessions, e.session.ID)
}

// Sweep removes sessions idle for longer than the TTL and reports how many were removed.
func (s *Service) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.opts.SessionTTL {
			s.endLocked(e)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("expired idle sessions", "count", removed)
	}
	return removed
}

// Run sweeps idle sessions until ctx is done, then shuts the service down.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SessionTTL / 2)
	defer ticker.Stop()
	defer s.Shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now.UTC())
		}
	}
}

// Shutdown ends every session and rejects new ones.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, e := range s.sessions {
		s.endLocked(e)
	}
}

// Count reports the number of live sessions.
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) record(ctx context.Context, fn func(context.Context, Recorder) error) {
	if s.opts.Recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := fn(ctx, s.opts.Recorder); err != nil {
		s.logger.Warn("analytics write failed", "error", err)
	}
}
