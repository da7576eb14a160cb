package responder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikajoshi/portfolio/backend/internal/analysis/intent"
	"github.com/avikajoshi/portfolio/backend/internal/model/chat"
	"github.com/avikajoshi/portfolio/backend/internal/model/knowledge"
)

func newTestResponder(t *testing.T) *Responder {
	t.Helper()
	return mustNew(t, knowledge.NewMemoryStore(nil))
}

func mustNew(t *testing.T, kb knowledge.Store) *Responder {
	t.Helper()
	r, err := New(context.Background(), kb)
	require.NoError(t, err)
	return r
}

func TestRespondAlwaysReturnsText(t *testing.T) {
	r := newTestResponder(t)
	inputs := []string{"", "   ", "hello", "Research Work", "tell me about AIRA", "why hire her?",
		"email?", "skills", "salary", "🙂", "asdfghjkl"}

	for _, in := range inputs {
		for turns := 0; turns < 2; turns++ {
			res := r.Respond(context.Background(), Request{Text: in, PriorVisitorTurns: turns})
			assert.NotEmpty(t, res.Reply.Text, "input %q turns %d", in, turns)
		}
	}
}

func TestRespondRoutes(t *testing.T) {
	r := newTestResponder(t)
	cases := []struct {
		text    string
		topic   intent.Topic
		replyID string
	}{
		{"What did she do at MIT?", intent.Research, knowledge.ReplyResearchMIT},
		{"Cambridge Climate AI", intent.Research, knowledge.ReplyResearchCambridge},
		{"Research Work", intent.Research, knowledge.ReplyResearchOverview},
		{"AIRA Platform", intent.Projects, knowledge.ReplyProjectsAIRA},
		{"any computer vision projects?", intent.Projects, knowledge.ReplyProjectsVision},
		{"Production Projects", intent.Projects, knowledge.ReplyProjectsOverview},
		{"Why Hire Avika", intent.Hiring, knowledge.ReplyHiring},
		{"Contact Info", intent.Contact, knowledge.ReplyContact},
		{"Technical Skills", intent.Skills, knowledge.ReplySkills},
		{"Salary Expectations", intent.Salary, knowledge.ReplySalary},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			res := r.Respond(context.Background(), Request{Text: tc.text, PriorVisitorTurns: 1})
			assert.Equal(t, tc.topic, res.Topic)
			assert.Equal(t, tc.replyID, res.ReplyID)
		})
	}
}

func TestResearchWinsOverHiring(t *testing.T) {
	res := newTestResponder(t).Respond(context.Background(), Request{Text: "I want to hire someone for research", PriorVisitorTurns: 1})
	assert.Equal(t, intent.Research, res.Topic)
	assert.Equal(t, knowledge.ReplyResearchOverview, res.ReplyID)
}

func TestCambridgeReplyMentionsSupervisor(t *testing.T) {
	res := newTestResponder(t).Respond(context.Background(), Request{Text: "Tell me about Cambridge"})
	assert.Contains(t, res.Reply.Text, "Murray-Rust")
	assert.Contains(t, res.Reply.QuickReplies, "Climate Impact")
	assert.True(t, res.Context.HasSeenResearch)
	assert.Contains(t, res.Context.Interests, "research")
}

func TestContactReplyOffersCopyEmail(t *testing.T) {
	res := newTestResponder(t).Respond(context.Background(), Request{Text: "how can I reach her?"})
	assert.Contains(t, res.Reply.Text, "avika.joshi@gmail.com")

	var ids []string
	for _, a := range res.Reply.Actions {
		ids = append(ids, a.Action)
	}
	assert.Contains(t, ids, "copy_email")
	assert.True(t, res.Context.HasContactInfo)
}

func TestHiringMarksRecruiter(t *testing.T) {
	res := newTestResponder(t).Respond(context.Background(), Request{Text: "what makes her different?"})
	assert.Equal(t, chat.VisitorRecruiter, res.Context.VisitorKind)
	assert.Equal(t, []string{"hiring"}, res.Context.Interests)
}

func TestRespondDoesNotMutateRequestContext(t *testing.T) {
	ctx := chat.Context{Interests: make([]string, 0, 8)}
	res := newTestResponder(t).Respond(context.Background(), Request{Text: "projects", Context: ctx})

	assert.Empty(t, ctx.Interests)
	assert.False(t, ctx.HasSeenProjects)
	assert.True(t, res.Context.HasSeenProjects)
}

func TestGeneralGreetsFirstVisitor(t *testing.T) {
	kb := knowledge.NewMemoryStore(nil)
	res := mustNew(t, kb).Respond(context.Background(), Request{Text: "hello there"})

	assert.Equal(t, intent.General, res.Topic)
	assert.Equal(t, kb.Greeting(), res.Reply)
}

func TestGeneralNudges(t *testing.T) {
	kb := knowledge.NewMemoryStore(nil)
	r := mustNew(t, kb)
	projectsHint, _ := kb.Nudge("projects")
	researchHint, _ := kb.Nudge("research")
	contactHint, _ := kb.Nudge("contact")

	cases := []struct {
		name string
		ctx  chat.Context
		want string
	}{
		{"seen research", chat.Context{HasSeenResearch: true}, projectsHint},
		{"seen projects", chat.Context{HasSeenProjects: true}, researchHint},
		{"seen both", chat.Context{HasSeenProjects: true, HasSeenResearch: true}, contactHint},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := r.Respond(context.Background(), Request{Text: "ok", Context: tc.ctx, PriorVisitorTurns: 2})
			assert.Equal(t, knowledge.ReplyGeneralOverview, res.ReplyID)
			assert.Contains(t, res.Reply.Text, tc.want)
		})
	}

	res := r.Respond(context.Background(), Request{Text: "ok", PriorVisitorTurns: 2, Context: chat.Context{
		HasSeenProjects: true, HasSeenResearch: true, HasContactInfo: true,
	}})
	overview, ok := kb.Reply(knowledge.ReplyGeneralOverview)
	require.True(t, ok)
	assert.Equal(t, overview.Text, res.Reply.Text)
}

func TestCustomRouteTable(t *testing.T) {
	routes := []Route{{
		Rule: intent.Rule{Topic: intent.Salary, Keywords: []string{"money"}},
		Handler: func(kb knowledge.Store, d intent.Decision, req Request) Result {
			return Result{Topic: d.Topic, Reply: chat.Reply{Text: "custom"}, Context: req.Context}
		},
	}}
	r, err := NewWithRoutes(context.Background(), knowledge.NewMemoryStore(nil), routes)
	require.NoError(t, err)

	assert.Equal(t, "custom", r.Respond(context.Background(), Request{Text: "Money talk"}).Reply.Text)
	assert.Equal(t, intent.General, r.Respond(context.Background(), Request{Text: "research"}).Topic)
}

func TestRouteTableEdges(t *testing.T) {
	kb := knowledge.NewMemoryStore(nil)
	ctx := context.Background()

	empty, err := NewWithRoutes(ctx, kb, nil)
	require.NoError(t, err)
	res := empty.Respond(ctx, Request{Text: "research", PriorVisitorTurns: 1})
	assert.Equal(t, intent.General, res.Topic)
	assert.Equal(t, knowledge.ReplyGeneralOverview, res.ReplyID)

	routes := []Route{
		{Rule: intent.Rule{Topic: intent.Research, Keywords: []string{"research"}}},
		{
			Rule: intent.Rule{Topic: intent.Salary, Keywords: []string{"blank"}},
			Handler: func(kb knowledge.Store, d intent.Decision, req Request) Result {
				return Result{Topic: d.Topic, Context: req.Context}
			},
		},
	}
	r, err := NewWithRoutes(ctx, kb, routes)
	require.NoError(t, err)
	assert.Equal(t, intent.General, r.Respond(ctx, Request{Text: "research"}).Topic)

	res = r.Respond(ctx, Request{Text: "blank answer", PriorVisitorTurns: 1})
	assert.Equal(t, intent.General, res.Topic)
	assert.NotEmpty(t, res.Reply.Text)
}

func TestRespondWithCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestResponder(t).Respond(ctx, Request{Text: "AIRA", PriorVisitorTurns: 1})
	assert.NotEmpty(t, res.Reply.Text)
}
