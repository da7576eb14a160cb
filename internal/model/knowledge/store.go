package knowledge

import "github.com/avikajoshi/portfolio/backend/internal/model/chat"

// Topics exposed through Store.Topic.
const (
	TopicPersonal     = "personal"
	TopicAchievements = "achievements"
	TopicProjects     = "projects"
	TopicSkills       = "skills"
	TopicTestimonials = "testimonials"
)

// Store exposes read-only knowledge lookups to the responder and HTTP handlers.
type Store interface {
	Personal() Personal
	Topics() []string
	Topic(name string) (any, bool)
	Reply(id string) (chat.Reply, bool)
	Greeting() chat.Reply
	Nudge(key string) (string, bool)
}

// MemoryStore implements Store over a parsed Base. It never mutates the base.
type MemoryStore struct {
	base *Base
}

// NewMemoryStore wraps base. A nil base falls back to the embedded seed.
func NewMemoryStore(base *Base) *MemoryStore {
	if base == nil {
		base = MustSeed()
	}
	return &MemoryStore{base: base}
}

// Personal returns the biographical facts.
func (s *MemoryStore) Personal() Personal {
	p := s.base.Personal
	p.TargetRoles = append([]string(nil), p.TargetRoles...)
	return p
}

// Topics lists the fact tables in a stable order.
func (s *MemoryStore) Topics() []string {
	return []string{TopicAchievements, TopicPersonal, TopicProjects, TopicSkills, TopicTestimonials}
}

// Topic returns a copy of one fact table.
func (s *MemoryStore) Topic(name string) (any, bool) {
	switch name {
	case TopicPersonal:
		return s.Personal(), true
	case TopicAchievements:
		return copyStrings(s.base.Achievements), true
	case TopicProjects:
		out := make(map[string]Project, len(s.base.Projects))
		for k, v := range s.base.Projects {
			v.Tech = append([]string(nil), v.Tech...)
			out[k] = v
		}
		return out, true
	case TopicSkills:
		out := make(map[string][]string, len(s.base.Skills))
		for k, v := range s.base.Skills {
			out[k] = append([]string(nil), v...)
		}
		return out, true
	case TopicTestimonials:
		return copyStrings(s.base.Testimonials), true
	default:
		return nil, false
	}
}

// Reply looks up a canned answer by id.
func (s *MemoryStore) Reply(id string) (chat.Reply, bool) {
	reply, ok := s.base.Replies[id]
	if !ok {
		return chat.Reply{}, false
	}
	return reply.ToChat(), true
}

// Greeting is the first template with the initial quick replies. A base without greetings
// (one that skipped Validate) falls back to the general overview text.
func (s *MemoryStore) Greeting() chat.Reply {
	greeting := chat.Reply{QuickReplies: append([]string(nil), s.base.QuickReplies["initial"]...)}
	if len(s.base.Greetings) > 0 {
		greeting.Text = s.base.Greetings[0]
	} else if overview, ok := s.base.Replies[ReplyGeneralOverview]; ok {
		greeting.Text = overview.Text
	}
	return greeting
}

// Nudge returns the follow-up hint stored under key.
func (s *MemoryStore) Nudge(key string) (string, bool) {
	text, ok := s.base.Nudges[key]
	return text, ok && text != ""
}

func copyStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
