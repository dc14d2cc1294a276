package fakeapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"telegram-ai-agent/internal/domain"
	"telegram-ai-agent/internal/pkg/config"
	"telegram-ai-agent/internal/summarizer"
)

func (s *Server) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, s.store.Summaries(user.ID))
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.store.Summary(user.ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req domain.GenerateSummaryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.GroupID <= 0 {
		s.writeError(w, r, errGroupIDRequired)
		return
	}
	if req.Days == 0 {
		req.Days = domain.DefaultSummaryDays
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, statusError(http.StatusBadRequest, "days must be within 1..365"))
		return
	}

	if !s.store.HasGroupAccess(user.ID, req.GroupID) {
		s.writeError(w, r, errNoGroupAccess)
		return
	}
	group, ok := s.store.GroupByID(req.GroupID)
	if !ok {
		s.writeError(w, r, errGroupNotFound)
		return
	}

	ttl := s.cfg.Server.JobTTL
	if ttl <= 0 {
		ttl = config.DefaultJobTTL
	}
	job := s.jobs.CreateJob(user.ID, group.ID, req.Days, ttl)

	s.wg.Add(1)
	go s.runSummaryJob(job.ID, group, req.Days)

	writeJSON(w, http.StatusAccepted, job)
}

// runSummaryJob строит сводку за последние days дней и сохраняет результат в задаче.
func (s *Server) runSummaryJob(jobID string, group domain.TelegramGroup, days int) {
	defer s.wg.Done()
	logger := s.log.With(slog.String("job_id", jobID), slog.Int64("group_id", group.ID))

	if err := s.jobs.MarkProcessing(jobID); err != nil {
		logger.Warn("job disappeared before processing", slog.String("error", err.Error()))
		return
	}

	ctx := s.baseCtx
	if s.cfg.Server.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Server.JobTimeout)
		defer cancel()
	}

	end := s.now().UTC()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	msgs := s.store.MessagesInRange(group.ID, start, end)
	if len(msgs) == 0 {
		_ = s.jobs.Fail(jobID, msgNoMessagesInPeriod)
		logger.Info("no messages for summary window")
		return
	}

	content, err := s.summarizer.Summarize(ctx, group.Name, msgs, start, end)
	if err != nil {
		msg := "Error generating summary: " + err.Error()
		if errors.Is(err, summarizer.ErrNoMessages) {
			msg = msgNoMessagesInPeriod
		}
		_ = s.jobs.Fail(jobID, msg)
		logger.Error("summary generation failed", slog.String("error", err.Error()))
		return
	}

	summary := s.store.CreateSummary(group.ID, start, end, content)
	s.store.MarkProcessed(group.ID, start, end)
	_ = s.jobs.Complete(jobID, summary)
	logger.Info("summary generated", slog.Int64("summary_id", summary.ID), slog.Int("messages", len(msgs)))

	if s.notifier != nil {
		if err := s.notifier.NotifySummary(ctx, summary); err != nil {
			logger.Warn("failed to deliver summary", slog.String("error", err.Error()))
		}
	}
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	job, err := s.jobs.Get(user.ID, chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, s.store.Feedback(user.ID))
}

func (s *Server) handleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req domain.FeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	feedback, err := s.store.AddFeedback(*user, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, feedback)
}
