package chat

import "time"

// Session captures a transient anonymous conversation with the portfolio assistant.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// VisitorKind is the responder's guess about who is asking.
type VisitorKind string

const (
	VisitorUnknown    VisitorKind = ""
	VisitorRecruiter  VisitorKind = "recruiter"
	VisitorStudent    VisitorKind = "student"
	VisitorResearcher VisitorKind = "researcher"
	VisitorGeneral    VisitorKind = "general"
)

// Context is what the responder has learned about the visitor so far.
type Context struct {
	VisitorKind     VisitorKind `json:"visitorType,omitempty"`
	Interests       []string    `json:"interests"`
	HasSeenProjects bool        `json:"hasSeenProjects"`
	HasSeenResearch bool        `json:"hasSeenResearch"`
	HasContactInfo  bool        `json:"hasContactInfo"`
}

// WithInterest returns a copy of c with tag appended to the interests.
func (c Context) WithInterest(tag string) Context {
	c.Interests = append(append([]string(nil), c.Interests...), tag)
	return c
}

// Clone returns a deep copy of c.
func (c Context) Clone() Context {
	c.Interests = append([]string(nil), c.Interests...)
	return c
}
