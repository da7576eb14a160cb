// Package action resolves the fixed action identifiers carried by assistant messages
// into effects the page should perform.
package action

import (
	"log/slog"

	"github.com/avikajoshi/portfolio/backend/internal/model/knowledge"
)

// Kind is the side effect the client performs.
type Kind string

const (
	KindCopy     Kind = "copy"
	KindOpen     Kind = "open"
	KindScroll   Kind = "scroll"
	KindDownload Kind = "download"
	// KindNotice only shows a transient notice.
	KindNotice Kind = "notice"
)

// Page sections targeted by scroll effects.
const (
	SectionWork    = "work"
	SectionAbout   = "about"
	SectionContact = "contact"
)

// ComingSoon is shown for identifiers without a registered effect.
const ComingSoon = "Feature coming soon!"

// Effect describes what the client should do for an action.
type Effect struct {
	Action string `json:"action"`
	Kind   Kind   `json:"kind"`
	Value  string `json:"value,omitempty"`
	Notice string `json:"notice,omitempty"`
	// Implemented is false for the coming-soon fallback.
	Implemented bool `json:"implemented"`
}

// Resolver maps action ids to effects.
type Resolver struct {
	effects map[string]Effect
	logger  *slog.Logger
}

// NewResolver builds the action table from the visitor-facing contact details.
func NewResolver(p knowledge.Personal, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	effects := map[string]Effect{
		"copy_email":      {Kind: KindCopy, Value: p.Email, Notice: "Email copied to clipboard!"},
		"linkedin":        {Kind: KindOpen, Value: p.LinkedIn},
		"github":          {Kind: KindOpen, Value: p.GitHub},
		"download_resume": {Kind: KindDownload, Value: p.Resume, Notice: "Resume download initiated"},
	}
	for _, group := range []struct {
		section, notice string
		ids             []string
	}{
		{SectionWork, "Navigating to projects section", []string{"aira_demo", "cv_demo", "all_projects"}},
		{SectionAbout, "Navigating to research section", []string{"research_portfolio", "cambridge_research", "mit_details"}},
		{SectionContact, "Navigating to contact section", []string{"schedule_call", "discuss_role"}},
	} {
		for _, id := range group.ids {
			effects[id] = Effect{Kind: KindScroll, Value: group.section, Notice: group.notice}
		}
	}
	for id, e := range effects {
		e.Action = id
		e.Implemented = true
		effects[id] = e
	}

	return &Resolver{effects: effects, logger: logger.With("component", "action")}
}

// Resolve returns the effect for id. Unknown ids resolve to a coming-soon notice and are logged.
func (r *Resolver) Resolve(id string) Effect {
	if e, ok := r.effects[id]; ok {
		return e
	}
	r.logger.Warn("unimplemented action", "action", id)
	return Effect{Action: id, Kind: KindNotice, Notice: ComingSoon}
}

// Known reports whether id has a registered effect.
func (r *Resolver) Known(id string) bool {
	_, ok := r.effects[id]
	return ok
}
