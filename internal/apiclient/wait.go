package apiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"telegram-ai-agent/internal/domain"
)

// DefaultPollInterval - интервал опроса задачи, если в Wait передан неположительный.
const DefaultPollInterval = 2 * time.Second

// Wait опрашивает задачу генерации до конечного статуса и возвращает готовую сводку.
//
// Ошибки опроса, кроме 401, логируются и опрос продолжается. Остановить ожидание
// можно отменой ctx.
func (s *SummaryService) Wait(ctx context.Context, jobID string, interval time.Duration) (*domain.Summary, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := s.client.log.With(slog.String("job_id", jobID))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := s.Job(ctx, jobID)
		switch {
		case err != nil && (errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound)):
			return nil, err
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			logger.Warn("failed to get job status", slog.String("error", err.Error()))
		default:
			switch job.Status {
			case domain.JobStatusCompleted:
				logger.Debug("job completed", slog.Int64("summary_id", job.SummaryID))
				if job.Summary != nil {
					return job.Summary, nil
				}
				return s.Get(ctx, job.SummaryID)
			case domain.JobStatusFailed:
				return nil, fmt.Errorf("%w: %s", ErrJobFailed, job.ErrorMessage)
			case domain.JobStatusPending, domain.JobStatusProcessing:
				logger.Debug("job is in progress", slog.String("status", string(job.Status)))
			default:
				logger.Warn("unknown job status", slog.String("status", string(job.Status)))
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
