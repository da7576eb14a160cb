package responder

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/avikajoshi/portfolio/backend/internal/analysis/intent"
	"github.com/avikajoshi/portfolio/backend/internal/model/chat"
	"github.com/avikajoshi/portfolio/backend/internal/model/knowledge"
)

// Request is one visitor message plus what the conversation knows so far.
type Request struct {
	Text    string
	Context chat.Context
	// PriorVisitorTurns is how many visitor messages came before this one.
	PriorVisitorTurns int
}

// Result is the reply and the context it leaves behind.
type Result struct {
	Topic   intent.Topic
	ReplyID string
	Reply   chat.Reply
	Context chat.Context
}

// HandlerFunc produces a result for a classified message. It must not mutate req.Context.
type HandlerFunc func(kb knowledge.Store, d intent.Decision, req Request) Result

// Route pairs a keyword rule with its handler.
type Route struct {
	Rule    intent.Rule
	Handler HandlerFunc
}

// DefaultRoutes is the ordered rule table, one route per entry of intent.Rules.
func DefaultRoutes() []Route {
	handlers := map[intent.Topic]HandlerFunc{
		intent.Research: handleResearch,
		intent.Projects: handleProjects,
		intent.Hiring:   handleHiring,
		intent.Contact:  handleContact,
		intent.Skills:   handleSkills,
		intent.Salary:   handleSalary,
	}
	routes := make([]Route, 0, len(intent.Rules))
	for _, rule := range intent.Rules {
		routes = append(routes, Route{Rule: rule, Handler: handlers[rule.Topic]})
	}
	return routes
}

// Responder maps free text to canned replies. It holds no per-conversation state.
// Classification, routing and the empty-reply fallback run as a compiled eino chain.
type Responder struct {
	kb    knowledge.Store
	rules []intent.Rule
	chain compose.Runnable[Request, Result]
}

// turn is the value passed between chain nodes.
type turn struct {
	req      Request
	decision intent.Decision
	result   Result
}

const generalBranch = "general"

// New builds a responder over kb with the default route table.
func New(ctx context.Context, kb knowledge.Store) (*Responder, error) {
	return NewWithRoutes(ctx, kb, DefaultRoutes())
}

// NewWithRoutes builds a responder with a custom ordered route table. Routes without a
// handler fall through to the general reply.
func NewWithRoutes(ctx context.Context, kb knowledge.Store, routes []Route) (*Responder, error) {
	r := &Responder{kb: kb, rules: make([]intent.Rule, len(routes))}
	for i, route := range routes {
		r.rules[i] = route.Rule
	}

	branch := compose.NewChainBranch[turn](func(_ context.Context, t turn) (string, error) {
		if t.decision.Rule >= 0 && routes[t.decision.Rule].Handler != nil {
			return routeKey(t.decision.Rule), nil
		}
		return generalBranch, nil
	})
	branch.AddLambda(generalBranch, r.handlerNode(handleGeneral))
	handled := 0
	for i, route := range routes {
		if route.Handler == nil {
			continue
		}
		branch.AddLambda(routeKey(i), r.handlerNode(route.Handler))
		handled++
	}

	chain := compose.NewChain[Request, Result]()
	chain.AppendLambda(compose.InvokableLambda[Request, turn](r.classify))
	if handled > 0 {
		chain.AppendBranch(branch)
	} else {
		// a branch needs at least two targets
		chain.AppendLambda(r.handlerNode(handleGeneral))
	}
	chain.AppendLambda(compose.InvokableLambda[turn, Result](r.finish))

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile responder chain: %w", err)
	}
	r.chain = runnable
	return r, nil
}

func routeKey(i int) string {
	return "route_" + strconv.Itoa(i)
}

func (r *Responder) classify(_ context.Context, req Request) (turn, error) {
	req.Context = req.Context.Clone()
	return turn{req: req, decision: intent.ClassifyWith(r.rules, req.Text)}, nil
}

func (r *Responder) handlerNode(h HandlerFunc) *compose.Lambda {
	return compose.InvokableLambda[turn, turn](func(_ context.Context, t turn) (turn, error) {
		t.result = h(r.kb, t.decision, t.req)
		return t, nil
	})
}

func (r *Responder) finish(_ context.Context, t turn) (Result, error) {
	if strings.TrimSpace(t.result.Reply.Text) == "" {
		return r.general(t), nil
	}
	return t.result, nil
}

func (r *Responder) general(t turn) Result {
	d := intent.Decision{Topic: intent.General, Normalized: t.decision.Normalized, Rule: -1}
	return handleGeneral(r.kb, d, t.req)
}

// Respond returns exactly one reply for any input. Unmatched text gets the general overview.
// If the chain cannot run (ctx already done) the general reply is returned directly.
func (r *Responder) Respond(ctx context.Context, req Request) Result {
	res, err := r.chain.Invoke(ctx, req)
	if err != nil {
		t, _ := r.classify(ctx, req)
		return r.general(t)
	}
	return res
}

// Greeting is the opening message shown when the chat is first opened.
func (r *Responder) Greeting() chat.Reply {
	return r.kb.Greeting()
}

func reply(kb knowledge.Store, topic intent.Topic, id string, ctx chat.Context) Result {
	rep, _ := kb.Reply(id)
	return Result{Topic: topic, ReplyID: id, Reply: rep, Context: ctx}
}

func handleResearch(kb knowledge.Store, d intent.Decision, req Request) Result {
	ctx := req.Context.WithInterest("research")
	ctx.HasSeenResearch = true

	switch {
	case strings.Contains(d.Normalized, "mit"):
		return reply(kb, d.Topic, knowledge.ReplyResearchMIT, ctx)
	case strings.Contains(d.Normalized, "cambridge"):
		return reply(kb, d.Topic, knowledge.ReplyResearchCambridge, ctx)
	default:
		return reply(kb, d.Topic, knowledge.ReplyResearchOverview, ctx)
	}
}

func handleProjects(kb knowledge.Store, d intent.Decision, req Request) Result {
	ctx := req.Context.WithInterest("projects")
	ctx.HasSeenProjects = true

	switch {
	case strings.Contains(d.Normalized, "aira"):
		return reply(kb, d.Topic, knowledge.ReplyProjectsAIRA, ctx)
	case intent.ContainsAny(d.Normalized, []string{"vision", "cv"}):
		return reply(kb, d.Topic, knowledge.ReplyProjectsVision, ctx)
	default:
		return reply(kb, d.Topic, knowledge.ReplyProjectsOverview, ctx)
	}
}

func handleHiring(kb knowledge.Store, d intent.Decision, req Request) Result {
	ctx := req.Context.WithInterest("hiring")
	ctx.VisitorKind = chat.VisitorRecruiter
	return reply(kb, d.Topic, knowledge.ReplyHiring, ctx)
}

func handleContact(kb knowledge.Store, d intent.Decision, req Request) Result {
	ctx := req.Context
	ctx.HasContactInfo = true
	return reply(kb, d.Topic, knowledge.ReplyContact, ctx)
}

func handleSkills(kb knowledge.Store, d intent.Decision, req Request) Result {
	return reply(kb, d.Topic, knowledge.ReplySkills, req.Context)
}

func handleSalary(kb knowledge.Store, d intent.Decision, req Request) Result {
	return reply(kb, d.Topic, knowledge.ReplySalary, req.Context)
}

// replyGreeting marks a general result that reused the opening greeting.
const replyGreeting = "general.greeting"

func handleGeneral(kb knowledge.Store, d intent.Decision, req Request) Result {
	if req.PriorVisitorTurns == 0 {
		return Result{Topic: intent.General, ReplyID: replyGreeting, Reply: kb.Greeting(), Context: req.Context}
	}

	res := reply(kb, intent.General, knowledge.ReplyGeneralOverview, req.Context)
	if hint, ok := nudgeFor(kb, req.Context); ok {
		res.Reply.Text += "\n\n" + hint
	}
	return res
}

// nudgeFor picks a follow-up hint from what the visitor has already seen.
func nudgeFor(kb knowledge.Store, ctx chat.Context) (string, bool) {
	switch {
	case ctx.HasSeenResearch && !ctx.HasSeenProjects:
		return kb.Nudge("projects")
	case ctx.HasSeenProjects && !ctx.HasSeenResearch:
		return kb.Nudge("research")
	case ctx.HasSeenProjects && ctx.HasSeenResearch && !ctx.HasContactInfo:
		return kb.Nudge("contact")
	default:
		return "", false
	}
}
