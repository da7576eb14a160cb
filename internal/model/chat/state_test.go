package chat

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceSubmitThenRespond(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewState("s1")
	require.True(t, s.InputEnabled())

	s, err := Reduce(s, Submit{MessageID: "m1", Text: "hello", At: now})
	require.NoError(t, err)
	assert.Equal(t, PhaseResponding, s.Phase)
	assert.False(t, s.InputEnabled())

	_, err = Reduce(s, Submit{MessageID: "m2", Text: "again", At: now})
	require.ErrorIs(t, err, ErrResponding)

	ctx := Context{HasSeenResearch: true, Interests: []string{"research"}}
	s, err = Reduce(s, Respond{
		MessageID: "m3",
		Reply:     Reply{Text: "hi", QuickReplies: []string{"Research Work"}},
		Context:   ctx,
		At:        now.Add(time.Second),
	})
	require.NoError(t, err)

	assert.True(t, s.InputEnabled())
	require.Len(t, s.Messages, 2)
	assert.Equal(t, AuthorVisitor, s.Messages[0].Author)
	assert.Equal(t, AuthorAssistant, s.Messages[1].Author)
	assert.Equal(t, "s1", s.Messages[1].SessionID)
	if diff := cmp.Diff(ctx, s.Context); diff != "" {
		t.Fatalf("context mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	base := NewState("s1")
	base, err := Reduce(base, Submit{MessageID: "m1", Text: "first", At: time.Now()})
	require.NoError(t, err)

	before := base.Clone()
	_, err = Reduce(base, Respond{MessageID: "m2", Reply: Reply{Text: "ok"}, Context: Context{Interests: []string{"x"}}})
	require.NoError(t, err)

	if diff := cmp.Diff(before, base); diff != "" {
		t.Fatalf("input state mutated (-before +after):\n%s", diff)
	}
}

func TestReduceRejectsBlankText(t *testing.T) {
	_, err := Reduce(NewState("s1"), Submit{MessageID: "m1", Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestGreetOnlyOnEmptyConversation(t *testing.T) {
	s, err := Reduce(NewState("s1"), Greet{MessageID: "g1", Reply: Reply{Text: "Hey there!"}})
	require.NoError(t, err)
	require.Len(t, s.Messages, 1)

	s, err = Reduce(s, Greet{MessageID: "g2", Reply: Reply{Text: "Hey again!"}})
	require.NoError(t, err)
	assert.Len(t, s.Messages, 1)
}

func TestOpenClose(t *testing.T) {
	s, _ := Reduce(NewState("s1"), Open{})
	assert.True(t, s.Open)
	s, _ = Reduce(s, Close{})
	assert.False(t, s.Open)
}

func TestTrimKeepsNewest(t *testing.T) {
	s := NewState("s1")
	for _, id := range []string{"a", "b", "c", "d"} {
		s.Messages = append(s.Messages, Message{ID: id})
	}

	trimmed := s.Trim(2)
	require.Len(t, trimmed.Messages, 2)
	assert.Equal(t, "c", trimmed.Messages[0].ID)
	assert.Equal(t, "d", trimmed.Messages[1].ID)
	assert.Len(t, s.Trim(0).Messages, 4)
}

func TestContextWithInterestCopies(t *testing.T) {
	c := Context{Interests: make([]string, 0, 4)}
	a := c.WithInterest("research")
	b := c.WithInterest("projects")
	assert.Equal(t, []string{"research"}, a.Interests)
	assert.Equal(t, []string{"projects"}, b.Interests)
	assert.Empty(t, c.Interests)
}

func TestVisitorTurnsSurviveTrim(t *testing.T) {
	s := NewState("s1")
	for i, text := range []string{"one", "two"} {
		var err error
		s, err = Reduce(s, Submit{MessageID: text, Text: text})
		require.NoError(t, err)
		s, err = Reduce(s, Respond{MessageID: text + "-reply", Reply: Reply{Text: "ok"}})
		require.NoError(t, err)
		s = s.Trim(1)
		assert.Equal(t, i+1, s.VisitorTurns)
	}
	assert.Len(t, s.Messages, 1)
}
