package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-ai-agent/internal/domain"
)

func fixtureMessages(base time.Time) []domain.GroupMessage {
	return []domain.GroupMessage{
		{MessageID: 1, SenderName: "Alice", Text: "Release is planned for Friday, see https://go.dev/doc/devel/release.", Date: base.Add(1 * time.Hour)},
		{MessageID: 2, SenderName: "Bob", Text: "@alice_dev can you review the PR?", Date: base.Add(2 * time.Hour)},
		{MessageID: 3, SenderName: "Alice", Text: "Sure", Date: base.Add(3 * time.Hour)},
		{MessageID: 4, SenderName: "", Text: "ping @Alice_Dev", Date: base.Add(4 * time.Hour)},
		{MessageID: 5, SenderName: "Carol", Text: "   ", Date: base.Add(5 * time.Hour)},
		{MessageID: 6, SenderName: "Dave", Text: "too old", Date: base.Add(-48 * time.Hour)},
	}
}

func TestExtractive_Summarize(t *testing.T) {
	end := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	start := end.Add(-7 * 24 * time.Hour)
	base := start.Add(24 * time.Hour)

	t.Run("Сводка содержит статистику, упоминания, ссылки и выдержки", func(t *testing.T) {
		s := New()
		text, err := s.Summarize(context.Background(), "Gophers", fixtureMessages(base), start, end)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(text, `Summary of "Gophers" for 2026-10-10 .. 2026-10-17`))
		assert.Contains(t, text, "Messages: 4 from 3 participants")
		assert.Contains(t, text, "- Alice: 2")
		assert.Contains(t, text, "- Unknown: 1")
		assert.Contains(t, text, "- @alice_dev (2)")
		assert.Contains(t, text, "- https://go.dev/doc/devel/release\n")
		assert.NotContains(t, text, "too old", "сообщения вне окна не попадают в сводку")
		assert.NotContains(t, text, "Dave")
	})

	t.Run("Результат детерминирован", func(t *testing.T) {
		s := New()
		first, err := s.Summarize(context.Background(), "Gophers", fixtureMessages(base), start, end)
		require.NoError(t, err)
		second, err := s.Summarize(context.Background(), "Gophers", fixtureMessages(base), start, end)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Выдержки ограничены и идут по времени", func(t *testing.T) {
		s := New(WithHighlights(2), WithHighlightWidth(20), WithTopParticipants(1))
		text, err := s.Summarize(context.Background(), "Gophers", fixtureMessages(base), start, end)
		require.NoError(t, err)

		highlights := text[strings.Index(text, "Highlights:"):]
		lines := strings.Split(strings.TrimSpace(highlights), "\n")[1:]
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "Alice: Release is planne...")
		assert.Contains(t, lines[1], "Bob: @alice_dev can yo...")

		participants := text[strings.Index(text, "Most active participants:"):strings.Index(text, "\nMentioned:")]
		assert.Equal(t, 1, strings.Count(participants, "\n- "))
	})

	t.Run("Пустое окно", func(t *testing.T) {
		_, err := New().Summarize(context.Background(), "Gophers", fixtureMessages(base), end, end.Add(time.Hour))
		assert.True(t, errors.Is(err, ErrNoMessages))
		assert.Equal(t, "No messages found for the specified period", err.Error())
	})

	t.Run("Отмененный контекст", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New().Summarize(ctx, "Gophers", fixtureMessages(base), start, end)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
