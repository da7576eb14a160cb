package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avikajoshi/portfolio/backend/internal/animation/hero"
	actionHandler "github.com/avikajoshi/portfolio/backend/internal/handler/action"
	"github.com/avikajoshi/portfolio/backend/internal/handler/chat"
	heroHandler "github.com/avikajoshi/portfolio/backend/internal/handler/hero"
	knowledgeHandler "github.com/avikajoshi/portfolio/backend/internal/handler/knowledge"
	showcaseHandler "github.com/avikajoshi/portfolio/backend/internal/handler/showcase"
	"github.com/avikajoshi/portfolio/backend/internal/handler/stats"
	middlewarePkg "github.com/avikajoshi/portfolio/backend/internal/middleware"
	"github.com/avikajoshi/portfolio/backend/internal/model/knowledge"
	"github.com/avikajoshi/portfolio/backend/internal/model/project"
	"github.com/avikajoshi/portfolio/backend/internal/service/action"
	chatService "github.com/avikajoshi/portfolio/backend/internal/service/chat"
	"github.com/avikajoshi/portfolio/backend/internal/store/analytics"
	"github.com/avikajoshi/portfolio/backend/pkg/utils"
)

// Deps are the services the HTTP layer needs.
type Deps struct {
	Knowledge     knowledge.Store
	Projects      project.Store
	Chat          *chatService.Service
	Actions       *action.Resolver
	Analytics     analytics.Recorder
	Hero          hero.Hero
	HashSalt      string
	FrameInterval time.Duration
	// AllowedOrigins feeds CORS and the WebSocket origin check.
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(d.AllowedOrigins))

	checkOrigin := originChecker(d.AllowedOrigins)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		knowledgeHandler.New(d.Knowledge).RegisterRoutes(api)
		actionHandler.New(d.Actions).RegisterRoutes(api)
		// A nil *Service must not reach interface-typed parameters.
		var live stats.LiveCounter
		if d.Chat != nil {
			live = d.Chat
			chat.New(d.Chat, d.Actions, chat.Options{
				HashSalt:    d.HashSalt,
				CheckOrigin: checkOrigin,
				Logger:      logger,
			}).RegisterRoutes(api)
		}
		showcaseHandler.New(d.Projects, d.FrameInterval, checkOrigin, logger).RegisterRoutes(api)
		heroHandler.New(d.Hero, 0, logger).RegisterRoutes(api)
		if d.Analytics != nil {
			stats.New(d.Analytics, live, logger).RegisterRoutes(api)
		}
	})

	return r
}

// originChecker accepts WebSocket upgrades from the CORS allow-list. Requests without an
// Origin header (non-browser clients) are accepted.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
