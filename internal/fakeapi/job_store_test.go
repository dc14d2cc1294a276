package fakeapi

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-ai-agent/internal/domain"
)

func TestJobStore(t *testing.T) {
	t.Run("CreateAndGetJob", func(t *testing.T) {
		js := NewJobStore()
		created := js.CreateJob(1, 2, 7, 5*time.Minute)

		_, err := uuid.Parse(created.ID)
		require.NoError(t, err, "id задачи - UUID")
		assert.Equal(t, domain.JobStatusPending, created.Status)
		assert.Equal(t, int64(2), created.GroupID)
		assert.Equal(t, 7, created.Days)

		got, err := js.Get(1, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("GetForeignOrMissingJob", func(t *testing.T) {
		js := NewJobStore()
		created := js.CreateJob(1, 2, 7, time.Minute)

		_, err := js.Get(2, created.ID)
		assert.ErrorIs(t, err, errJobNotFound, "чужая задача не видна")

		_, err = js.Get(1, "non-existent")
		assert.ErrorIs(t, err, errJobNotFound)
	})

	t.Run("Lifecycle", func(t *testing.T) {
		js := NewJobStore()
		created := js.CreateJob(1, 2, 7, time.Minute)

		require.NoError(t, js.MarkProcessing(created.ID))
		got, _ := js.Get(1, created.ID)
		assert.Equal(t, domain.JobStatusProcessing, got.Status)

		summary := domain.Summary{ID: 9, Content: "text"}
		require.NoError(t, js.Complete(created.ID, summary))
		got, _ = js.Get(1, created.ID)
		assert.Equal(t, domain.JobStatusCompleted, got.Status)
		assert.Equal(t, int64(9), got.SummaryID)
		require.NotNil(t, got.Summary)
		assert.Equal(t, "text", got.Summary.Content)

		got.Summary.Content = "changed"
		again, _ := js.Get(1, created.ID)
		assert.Equal(t, "text", again.Summary.Content, "Get возвращает копию")
	})

	t.Run("Fail", func(t *testing.T) {
		js := NewJobStore()
		created := js.CreateJob(1, 2, 7, time.Minute)

		require.NoError(t, js.Fail(created.ID, msgNoMessagesInPeriod))
		got, _ := js.Get(1, created.ID)
		assert.Equal(t, domain.JobStatusFailed, got.Status)
		assert.Equal(t, msgNoMessagesInPeriod, got.ErrorMessage)

		assert.Error(t, js.Fail("non-existent", "boom"))
		assert.Error(t, js.MarkProcessing("non-existent"))
		assert.Error(t, js.Complete("non-existent", domain.Summary{}))
	})

	t.Run("CleanupExpired", func(t *testing.T) {
		js := NewJobStore()
		expired := js.CreateJob(1, 2, 7, -time.Minute)
		valid := js.CreateJob(1, 2, 7, time.Minute)

		js.CleanupExpired()

		_, err := js.Get(1, expired.ID)
		assert.Error(t, err)
		_, err = js.Get(1, valid.ID)
		assert.NoError(t, err)
	})
}

func TestJobStore_StartCleanupTicker(t *testing.T) {
	js := NewJobStore()
	js.CreateJob(1, 2, 7, 20*time.Millisecond)
	js.CreateJob(1, 2, 7, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	js.StartCleanupTicker(ctx, 30*time.Millisecond)

	assert.Eventually(t, func() bool { return js.Len() == 1 }, time.Second, 10*time.Millisecond)
}
