package dashboard

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"telegram-ai-agent/internal/domain"
)

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) List(ctx context.Context) ([]domain.TelegramAccount, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]domain.TelegramAccount)
	return list, args.Error(1)
}

func (m *mockAccounts) Create(ctx context.Context, req domain.CreateAccountRequest) (*domain.CreateAccountResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*domain.CreateAccountResponse)
	return resp, args.Error(1)
}

func (m *mockAccounts) Authenticate(ctx context.Context, accountID int64) (*domain.VerificationChallenge, error) {
	args := m.Called(ctx, accountID)
	resp, _ := args.Get(0).(*domain.VerificationChallenge)
	return resp, args.Error(1)
}

func (m *mockAccounts) VerifyCode(ctx context.Context, accountID int64, code, requestID string) (*domain.TelegramAccount, error) {
	args := m.Called(ctx, accountID, code, requestID)
	acc, _ := args.Get(0).(*domain.TelegramAccount)
	return acc, args.Error(1)
}

func (m *mockAccounts) SetActive(ctx context.Context, accountID int64, active bool) (*domain.TelegramAccount, error) {
	args := m.Called(ctx, accountID, active)
	acc, _ := args.Get(0).(*domain.TelegramAccount)
	return acc, args.Error(1)
}

type mockGroups struct{ mock.Mock }

func (m *mockGroups) List(ctx context.Context) ([]domain.TelegramGroup, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]domain.TelegramGroup)
	return list, args.Error(1)
}

func (m *mockGroups) Join(ctx context.Context, accountID int64, link string) (*domain.TelegramGroup, error) {
	args := m.Called(ctx, accountID, link)
	g, _ := args.Get(0).(*domain.TelegramGroup)
	return g, args.Error(1)
}

func (m *mockGroups) SetActive(ctx context.Context, groupID int64, active bool) (*domain.TelegramGroup, error) {
	args := m.Called(ctx, groupID, active)
	g, _ := args.Get(0).(*domain.TelegramGroup)
	return g, args.Error(1)
}

type mockSummaries struct{ mock.Mock }

func (m *mockSummaries) List(ctx context.Context) ([]domain.Summary, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]domain.Summary)
	return list, args.Error(1)
}

func (m *mockSummaries) Generate(ctx context.Context, groupID int64, days int) (*domain.SummaryJob, error) {
	args := m.Called(ctx, groupID, days)
	job, _ := args.Get(0).(*domain.SummaryJob)
	return job, args.Error(1)
}

func (m *mockSummaries) Wait(ctx context.Context, jobID string, interval time.Duration) (*domain.Summary, error) {
	args := m.Called(ctx, jobID, interval)
	s, _ := args.Get(0).(*domain.Summary)
	return s, args.Error(1)
}
