package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/avikajoshi/portfolio/backend/internal/animation/hero"
	"github.com/avikajoshi/portfolio/backend/internal/config"
	"github.com/avikajoshi/portfolio/backend/internal/handler"
	"github.com/avikajoshi/portfolio/backend/internal/model/knowledge"
	"github.com/avikajoshi/portfolio/backend/internal/model/project"
	"github.com/avikajoshi/portfolio/backend/internal/service/action"
	"github.com/avikajoshi/portfolio/backend/internal/service/chat"
	"github.com/avikajoshi/portfolio/backend/internal/service/responder"
	"github.com/avikajoshi/portfolio/backend/internal/store/analytics"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog := config.SetupLogger(cfg.Log)
	defer closeLog()
	slog.SetDefault(logger)

	if envErr != nil {
		logger.Debug("no .env file loaded, using process environment", "error", envErr)
	}

	kb, err := loadKnowledge(cfg.Knowledge)
	if err != nil {
		return err
	}

	recorder, err := openAnalytics(ctx, cfg.Analytics, logger)
	if err != nil {
		return err
	}
	defer recorder.Close()

	rsp, err := responder.New(ctx, kb)
	if err != nil {
		return err
	}

	chatSvc := chat.NewService(rsp, chat.Options{
		TypingDelay:   cfg.Chat.TypingDelay,
		GreetingDelay: cfg.Chat.GreetingDelay,
		HistoryLimit:  cfg.Chat.HistoryLimit,
		SessionTTL:    cfg.Chat.SessionTTL,
		Recorder:      recorder,
		Logger:        logger,
	})
	go chatSvc.Run(ctx)

	router := handler.NewRouter(handler.Deps{
		Knowledge:      kb,
		Projects:       project.NewMemoryStore(project.Seed()),
		Chat:           chatSvc,
		Actions:        action.NewResolver(kb.Personal(), logger),
		Analytics:      recorder,
		Hero:           hero.Default(),
		HashSalt:       cfg.Analytics.HashSalt,
		FrameInterval:  cfg.Showcase.FrameInterval,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("portfolio backend listening", "addr", cfg.Server.Addr)
	return runServer(ctx, srv)
}

func loadKnowledge(cfg config.KnowledgeConfig) (*knowledge.MemoryStore, error) {
	if cfg.Path == "" {
		return knowledge.NewMemoryStore(nil), nil
	}
	base, err := knowledge.Load(cfg.Path)
	if err != nil {
		return nil, err
	}
	slog.Info("knowledge base loaded", "path", cfg.Path)
	return knowledge.NewMemoryStore(base), nil
}

func openAnalytics(ctx context.Context, cfg config.AnalyticsConfig, logger *slog.Logger) (analytics.Recorder, error) {
	if !cfg.Persistent() {
		return analytics.NewMemoryRecorder(), nil
	}
	rec, err := analytics.OpenSQLite(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("analytics persisted to sqlite", "path", cfg.DBPath)
	return rec, nil
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
