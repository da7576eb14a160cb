package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every configuration section of the service.
type Config struct {
	Server    ServerConfig
	Chat      ChatConfig
	Knowledge KnowledgeConfig
	Analytics AnalyticsConfig
	Showcase  ShowcaseConfig
	CORS      CORSConfig
	Log       LogConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	showcase, err := loadShowcaseConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		Chat:      chat,
		Knowledge: KnowledgeConfig{Path: strings.TrimSpace(os.Getenv("KNOWLEDGE_BASE_FILE"))},
		Analytics: AnalyticsConfig{
			DBPath:   strings.TrimSpace(os.Getenv("ANALYTICS_DB")),
			HashSalt: getEnvOrDefault("ANALYTICS_SALT", ""),
		},
		Showcase: showcase,
		CORS:     CORSConfig{AllowedOrigins: getEnvListDefault("ALLOWED_ORIGINS", []string{"*"})},
		Log:      logCfg,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are passed through as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// ChatConfig controls the assistant conversation timing and retention.
type ChatConfig struct {
	TypingDelay   time.Duration
	GreetingDelay time.Duration
	HistoryLimit  int
	SessionTTL    time.Duration
}

func loadChatConfig() (ChatConfig, error) {
	typing, err := parseDurationEnv("CHAT_TYPING_DELAY", 1500*time.Millisecond)
	if err != nil {
		return ChatConfig{}, err
	}

	greeting, err := parseDurationEnv("CHAT_GREETING_DELAY", 500*time.Millisecond)
	if err != nil {
		return ChatConfig{}, err
	}

	ttl, err := parseDurationEnv("CHAT_SESSION_TTL", 30*time.Minute)
	if err != nil {
		return ChatConfig{}, err
	}

	historyLimit := 0
	if limit, err := parseOptionalIntEnv("CHAT_HISTORY_LIMIT"); err != nil {
		return ChatConfig{}, err
	} else if limit != nil && *limit > 0 {
		historyLimit = *limit
	}

	return ChatConfig{
		TypingDelay:   typing,
		GreetingDelay: greeting,
		HistoryLimit:  historyLimit,
		SessionTTL:    ttl,
	}, nil
}

// KnowledgeConfig points at an optional YAML override of the embedded knowledge base.
type KnowledgeConfig struct {
	Path string
}

// AnalyticsConfig selects the topic analytics backend. An empty DBPath keeps counters in memory.
type AnalyticsConfig struct {
	DBPath   string
	HashSalt string
}

// Persistent reports whether analytics should be written to SQLite.
func (c AnalyticsConfig) Persistent() bool {
	return c.DBPath != ""
}

// ShowcaseConfig controls the project showcase frame loop.
type ShowcaseConfig struct {
	FrameInterval time.Duration
}

func loadShowcaseConfig() (ShowcaseConfig, error) {
	interval, err := parseDurationEnv("SHOWCASE_FRAME_INTERVAL", 16*time.Millisecond)
	if err != nil {
		return ShowcaseConfig{}, err
	}
	if interval <= 0 {
		return ShowcaseConfig{}, fmt.Errorf("invalid SHOWCASE_FRAME_INTERVAL value %q: must be positive", interval)
	}
	return ShowcaseConfig{FrameInterval: interval}, nil
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig describes the logger outputs.
type LogConfig struct {
	Level slog.Level
	File  string
}

func loadLogConfig() (LogConfig, error) {
	level := slog.LevelInfo
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL value %q: %w", raw, err)
		}
	}
	return LogConfig{Level: level, File: strings.TrimSpace(os.Getenv("LOG_FILE"))}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvListDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	// Bare integers are milliseconds.
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
