package analytics

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVisitor(t *testing.T) {
	a := HashVisitor("salt", "203.0.113.7")
	assert.Len(t, a, 16)
	assert.Equal(t, a, HashVisitor("salt", "203.0.113.7"))
	assert.NotEqual(t, a, HashVisitor("other", "203.0.113.7"))
	assert.NotContains(t, a, "203")
	assert.Empty(t, HashVisitor("salt", ""))
}

func exercise(t *testing.T, r Recorder) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, r.RecordSession(ctx, "v1"))
	require.NoError(t, r.RecordSession(ctx, "v1"))
	require.NoError(t, r.RecordSession(ctx, "v2"))
	for _, topic := range []string{"research", "projects", "research", "contact"} {
		require.NoError(t, r.RecordTopic(ctx, "v1", topic))
	}

	got, err := r.Stats(ctx)
	require.NoError(t, err)

	want := Stats{
		Sessions:        3,
		UniqueVisitors:  2,
		VisitorMessages: 4,
		Topics: []TopicCount{
			{Topic: "research", Count: 2},
			{Topic: "contact", Count: 1},
			{Topic: "projects", Count: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryRecorder(t *testing.T) {
	r := NewMemoryRecorder()
	defer r.Close()
	exercise(t, r)
}

func TestSQLiteRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.db")
	r, err := OpenSQLite(context.Background(), path, nil)
	require.NoError(t, err)
	exercise(t, r)
	require.NoError(t, r.Close())

	reopened, err := OpenSQLite(context.Background(), path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	stats, err := reopened.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Sessions)
}
