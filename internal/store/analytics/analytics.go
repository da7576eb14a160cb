// Package analytics keeps anonymous counters of what visitors ask the assistant about.
// Raw client addresses and message text are never stored.
package analytics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
)

// TopicCount is how often one topic was asked about.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Stats summarizes recorded activity.
type Stats struct {
	Sessions        int          `json:"sessions"`
	UniqueVisitors  int          `json:"uniqueVisitors"`
	VisitorMessages int          `json:"visitorMessages"`
	Topics          []TopicCount `json:"topics"`
}

// Recorder stores anonymous counters.
type Recorder interface {
	RecordSession(ctx context.Context, visitor string) error
	RecordTopic(ctx context.Context, visitor, topic string) error
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// HashVisitor derives a short, salted, non-reversible visitor key from a client address.
func HashVisitor(salt, addr string) string {
	if addr == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(addr + salt))
	return hex.EncodeToString(sum[:])[:16]
}

// MemoryRecorder keeps counters in process memory.
type MemoryRecorder struct {
	mu       sync.Mutex
	sessions int
	messages int
	visitors map[string]struct{}
	topics   map[string]int
}

// NewMemoryRecorder returns an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		visitors: make(map[string]struct{}),
		topics:   make(map[string]int),
	}
}

func (m *MemoryRecorder) RecordSession(_ context.Context, visitor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions++
	if visitor != "" {
		m.visitors[visitor] = struct{}{}
	}
	return nil
}

func (m *MemoryRecorder) RecordTopic(_ context.Context, _ string, topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages++
	m.topics[topic]++
	return nil
}

func (m *MemoryRecorder) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	topics := make([]TopicCount, 0, len(m.topics))
	for t, c := range m.topics {
		topics = append(topics, TopicCount{Topic: t, Count: c})
	}
	sortTopics(topics)

	return Stats{
		Sessions:        m.sessions,
		UniqueVisitors:  len(m.visitors),
		VisitorMessages: m.messages,
		Topics:          topics,
	}, nil
}

func (m *MemoryRecorder) Close() error { return nil }

// sortTopics orders by count descending, then name.
func sortTopics(topics []TopicCount) {
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return topics[i].Topic < topics[j].Topic
	})
}
