package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/avikajoshi/portfolio/backend/internal/model/chat"
)

//go:embed seed.yaml
var seedYAML []byte

// Reply ids every knowledge base must define.
const (
	ReplyResearchMIT       = "research.mit"
	ReplyResearchCambridge = "research.cambridge"
	ReplyResearchOverview  = "research.overview"
	ReplyProjectsAIRA      = "projects.aira"
	ReplyProjectsVision    = "projects.vision"
	ReplyProjectsOverview  = "projects.overview"
	ReplyHiring            = "hiring"
	ReplyContact           = "contact"
	ReplySkills            = "skills"
	ReplySalary            = "salary"
	ReplyGeneralOverview   = "general.overview"
)

// RequiredReplies lists the reply ids the responder relies on.
var RequiredReplies = []string{
	ReplyResearchMIT, ReplyResearchCambridge, ReplyResearchOverview,
	ReplyProjectsAIRA, ReplyProjectsVision, ReplyProjectsOverview,
	ReplyHiring, ReplyContact, ReplySkills, ReplySalary, ReplyGeneralOverview,
}

// Personal holds the biographical facts.
type Personal struct {
	Name         string   `yaml:"name" json:"name"`
	Status       string   `yaml:"status" json:"status"`
	Location     string   `yaml:"location" json:"location"`
	Availability string   `yaml:"availability" json:"availability"`
	Email        string   `yaml:"email" json:"email"`
	LinkedIn     string   `yaml:"linkedin" json:"linkedin"`
	GitHub       string   `yaml:"github" json:"github"`
	Resume       string   `yaml:"resume" json:"resume"`
	TargetRoles  []string `yaml:"targetRoles" json:"targetRoles"`
	SalaryRange  string   `yaml:"salaryRange" json:"salaryRange"`
}

// Project is a portfolio project as the assistant describes it.
type Project struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Metrics     string   `yaml:"metrics" json:"metrics"`
	Tech        []string `yaml:"tech" json:"tech"`
}

// Action mirrors chat.Action with YAML keys.
type Action struct {
	Label  string `yaml:"label" json:"label"`
	Action string `yaml:"action" json:"action"`
}

// Reply is a canned assistant answer.
type Reply struct {
	Text         string   `yaml:"text" json:"text"`
	QuickReplies []string `yaml:"quickReplies" json:"quickReplies,omitempty"`
	Actions      []Action `yaml:"actions" json:"actions,omitempty"`
}

// ToChat converts r into the chat reply shape.
func (r Reply) ToChat() chat.Reply {
	out := chat.Reply{
		Text:         r.Text,
		QuickReplies: append([]string(nil), r.QuickReplies...),
	}
	for _, a := range r.Actions {
		out.Actions = append(out.Actions, chat.Action{Label: a.Label, Action: a.Action})
	}
	return out
}

// Base is the whole read-only fact table.
type Base struct {
	Personal     Personal            `yaml:"personal" json:"personal"`
	Achievements map[string]string   `yaml:"achievements" json:"achievements"`
	Projects     map[string]Project  `yaml:"projects" json:"projects"`
	Skills       map[string][]string `yaml:"skills" json:"skills"`
	Testimonials map[string]string   `yaml:"testimonials" json:"testimonials"`
	Greetings    []string            `yaml:"greetings" json:"greetings"`
	QuickReplies map[string][]string `yaml:"quickReplies" json:"quickReplies"`
	Replies      map[string]Reply    `yaml:"replies" json:"replies"`
	Nudges       map[string]string   `yaml:"nudges" json:"nudges,omitempty"`
}

// Seed parses the embedded knowledge base.
func Seed() (*Base, error) {
	return Parse(seedYAML)
}

// MustSeed is Seed for package initialisation and tests.
func MustSeed() *Base {
	base, err := Seed()
	if err != nil {
		panic(err)
	}
	return base
}

// Load reads a YAML knowledge base from path, or the embedded seed when path is empty.
func Load(path string) (*Base, error) {
	if path == "" {
		return Seed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML knowledge base.
func Parse(data []byte) (*Base, error) {
	var base Base
	if err := yaml.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("decode knowledge base: %w", err)
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	return &base, nil
}

// Validate checks that every reply the responder needs is present and non-empty.
func (b *Base) Validate() error {
	var errs []error
	if len(b.Greetings) == 0 || strings.TrimSpace(b.Greetings[0]) == "" {
		errs = append(errs, errors.New("knowledge base: at least one greeting is required"))
	}
	if len(b.QuickReplies["initial"]) == 0 {
		errs = append(errs, errors.New("knowledge base: quickReplies.initial is required"))
	}
	for _, id := range RequiredReplies {
		reply, ok := b.Replies[id]
		if !ok || strings.TrimSpace(reply.Text) == "" {
			errs = append(errs, fmt.Errorf("knowledge base: reply %q is missing or empty", id))
		}
	}
	return errors.Join(errs...)
}
