package fakeapi

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"telegram-ai-agent/internal/domain"
)

// job - задача генерации сводки вместе с владельцем и сроком хранения.
type job struct {
	domain.SummaryJob
	userID    int64
	expiresAt time.Time
}

// JobStore управляет хранением и извлечением задач генерации
type JobStore struct {
	jobs  map[string]*job
	mutex sync.RWMutex
}

// NewJobStore создает новый экземпляр JobStore
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*job),
	}
}

// CreateJob создает новую задачу со статусом 'pending'
func (js *JobStore) CreateJob(userID, groupID int64, days int, ttl time.Duration) domain.SummaryJob {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	now := time.Now().UTC()
	j := &job{
		SummaryJob: domain.SummaryJob{
			ID:        uuid.NewString(),
			Status:    domain.JobStatusPending,
			GroupID:   groupID,
			Days:      days,
			CreatedAt: now,
		},
		userID:    userID,
		expiresAt: now.Add(ttl),
	}
	js.jobs[j.ID] = j
	return j.SummaryJob
}

// update применяет fn к задаче под блокировкой.
func (js *JobStore) update(jobID string, fn func(*job)) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	j, exists := js.jobs[jobID]
	if !exists {
		return errJobNotFound
	}
	fn(j)
	return nil
}

// MarkProcessing переводит задачу в статус 'processing'
func (js *JobStore) MarkProcessing(jobID string) error {
	return js.update(jobID, func(j *job) {
		j.Status = domain.JobStatusProcessing
	})
}

// Complete сохраняет готовую сводку и переводит задачу в 'completed'
func (js *JobStore) Complete(jobID string, summary domain.Summary) error {
	return js.update(jobID, func(j *job) {
		j.Status = domain.JobStatusCompleted
		j.SummaryID = summary.ID
		j.Summary = &summary
	})
}

// Fail сохраняет сообщение об ошибке и переводит задачу в 'failed'
func (js *JobStore) Fail(jobID, message string) error {
	return js.update(jobID, func(j *job) {
		j.Status = domain.JobStatusFailed
		j.ErrorMessage = message
	})
}

// Get возвращает задачу, если она принадлежит пользователю
func (js *JobStore) Get(userID int64, jobID string) (domain.SummaryJob, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	j, exists := js.jobs[jobID]
	if !exists || j.userID != userID {
		return domain.SummaryJob{}, errJobNotFound
	}
	out := j.SummaryJob
	if j.Summary != nil {
		summary := *j.Summary
		out.Summary = &summary
	}
	return out, nil
}

// Len возвращает число хранимых задач
func (js *JobStore) Len() int {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	return len(js.jobs)
}

// CleanupExpired удаляет просроченные задачи из хранилища
func (js *JobStore) CleanupExpired() {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	now := time.Now()
	for jobID, j := range js.jobs {
		if now.After(j.expiresAt) {
			delete(js.jobs, jobID)
		}
	}
}

// StartCleanupTicker запускает тикер для периодической очистки просроченных задач
func (js *JobStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				js.CleanupExpired()
			}
		}
	}()
}
