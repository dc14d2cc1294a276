package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"telegram-ai-agent/internal/domain"
)

// SummaryService - сводки и оценки.
type SummaryService struct {
	client *Client
}

// List возвращает сводки по группам пользователя.
func (s *SummaryService) List(ctx context.Context) ([]domain.Summary, error) {
	var summaries []domain.Summary
	if err := s.client.do(ctx, http.MethodGet, "/summaries/", nil, nil, &summaries); err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	return summaries, nil
}

// Get возвращает одну сводку.
func (s *SummaryService) Get(ctx context.Context, summaryID int64) (*domain.Summary, error) {
	var summary domain.Summary
	if err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/summaries/%d/", summaryID), nil, nil, &summary); err != nil {
		return nil, fmt.Errorf("get summary %d: %w", summaryID, err)
	}
	return &summary, nil
}

// Generate ставит задачу генерации сводки за последние days дней (days <= 0 - domain.DefaultSummaryDays).
// Готовность задачи отслеживается через Job или Wait.
func (s *SummaryService) Generate(ctx context.Context, groupID int64, days int) (*domain.SummaryJob, error) {
	if days <= 0 {
		days = domain.DefaultSummaryDays
	}
	req := domain.GenerateSummaryRequest{GroupID: groupID, Days: days}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var job domain.SummaryJob
	if err := s.client.do(ctx, http.MethodPost, "/summaries/generate/", nil, req, &job); err != nil {
		return nil, fmt.Errorf("generate summary for group %d: %w", groupID, err)
	}
	return &job, nil
}

// Job запрашивает статус задачи генерации.
func (s *SummaryService) Job(ctx context.Context, jobID string) (*domain.SummaryJob, error) {
	var job domain.SummaryJob
	path := "/summaries/jobs/" + url.PathEscape(jobID) + "/"
	if err := s.client.do(ctx, http.MethodGet, path, nil, nil, &job); err != nil {
		return nil, fmt.Errorf("get summary job %s: %w", jobID, err)
	}
	return &job, nil
}

// ProvideFeedback оценивает сводку (rating 1..5).
func (s *SummaryService) ProvideFeedback(ctx context.Context, summaryID int64, rating int, comment string) (*domain.Feedback, error) {
	req := domain.FeedbackRequest{Summary: summaryID, Rating: rating, Comment: comment}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var feedback domain.Feedback
	if err := s.client.do(ctx, http.MethodPost, "/feedback/", nil, req, &feedback); err != nil {
		return nil, fmt.Errorf("feedback for summary %d: %w", summaryID, err)
	}
	return &feedback, nil
}
