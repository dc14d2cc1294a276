// Package dashboard хранит состояние панели управления: списки аккаунтов,
// групп и сводок, мастер подключения аккаунта и уведомления об ошибках.
// Вызовы API выполняются через фасады apiclient.
package dashboard

import (
	"context"
	"time"

	"telegram-ai-agent/internal/apiclient"
	"telegram-ai-agent/internal/domain"
)

// AccountAPI - операции с аккаунтами, которые использует панель.
type AccountAPI interface {
	List(ctx context.Context) ([]domain.TelegramAccount, error)
	Create(ctx context.Context, req domain.CreateAccountRequest) (*domain.CreateAccountResponse, error)
	Authenticate(ctx context.Context, accountID int64) (*domain.VerificationChallenge, error)
	VerifyCode(ctx context.Context, accountID int64, code, requestID string) (*domain.TelegramAccount, error)
	SetActive(ctx context.Context, accountID int64, active bool) (*domain.TelegramAccount, error)
}

// GroupAPI - операции с группами, которые использует панель.
type GroupAPI interface {
	List(ctx context.Context) ([]domain.TelegramGroup, error)
	Join(ctx context.Context, accountID int64, groupLink string) (*domain.TelegramGroup, error)
	SetActive(ctx context.Context, groupID int64, active bool) (*domain.TelegramGroup, error)
}

// SummaryAPI - операции со сводками, которые использует панель.
type SummaryAPI interface {
	List(ctx context.Context) ([]domain.Summary, error)
	Generate(ctx context.Context, groupID int64, days int) (*domain.SummaryJob, error)
	Wait(ctx context.Context, jobID string, interval time.Duration) (*domain.Summary, error)
}

var (
	_ AccountAPI = (*apiclient.AccountService)(nil)
	_ GroupAPI   = (*apiclient.GroupService)(nil)
	_ SummaryAPI = (*apiclient.SummaryService)(nil)
)
