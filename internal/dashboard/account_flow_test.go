package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"telegram-ai-agent/internal/domain"
)

var testCredentials = domain.CreateAccountRequest{PhoneNumber: "+15551234567", APIID: "12345", APIHash: "abcdef0123456789"}

func TestAccountFlow_HappyPath(t *testing.T) {
	ctx := context.Background()
	accounts := &mockAccounts{}
	accounts.On("Create", ctx, testCredentials).Return(&domain.CreateAccountResponse{
		TelegramAccount: domain.TelegramAccount{ID: 3, PhoneNumber: "+15551234567", APIID: "12345"},
		RequestID:       "r1",
	}, nil).Once()
	accounts.On("Authenticate", ctx, int64(3)).Return(&domain.VerificationChallenge{RequestID: "r2"}, nil).Once()
	accounts.On("VerifyCode", ctx, int64(3), "00000", "r2").Return(&domain.TelegramAccount{ID: 3, IsActive: true}, nil).Once()

	flow := NewAccountFlow(accounts)
	assert.Equal(t, StepCredentials, flow.Form().Step)

	_, err := flow.SubmitCredentials(ctx, testCredentials)
	require.NoError(t, err)
	assert.Equal(t, AccountForm{Step: StepVerification, PhoneNumber: "+15551234567", APIID: "12345", AccountID: 3, RequestID: "r1"}, flow.Form())

	require.NoError(t, flow.Resend(ctx))
	assert.Equal(t, "r2", flow.Form().RequestID, "код подтверждается по последнему request_id")

	account, err := flow.SubmitCode(ctx, "00000")
	require.NoError(t, err)
	assert.True(t, account.IsActive)
	assert.Equal(t, AccountForm{Step: StepCredentials}, flow.Form())
	accounts.AssertExpectations(t)
}

func TestAccountFlow_WrongCodeKeepsStep(t *testing.T) {
	ctx := context.Background()
	accounts := &mockAccounts{}
	flow := NewAccountFlow(accounts)
	flow.Restore(AccountForm{Step: StepVerification, AccountID: 3, RequestID: "r1"})

	accounts.On("VerifyCode", ctx, int64(3), "11111", "r1").Return(nil, errors.New("invalid code")).Once()

	_, err := flow.SubmitCode(ctx, "11111")
	require.Error(t, err)
	assert.Equal(t, StepVerification, flow.Form().Step)
	assert.Equal(t, "r1", flow.Form().RequestID)
}

func TestAccountFlow_RequiresVerificationStep(t *testing.T) {
	flow := NewAccountFlow(&mockAccounts{})

	_, err := flow.SubmitCode(context.Background(), "00000")
	assert.ErrorIs(t, err, ErrNoPendingVerification)
	assert.ErrorIs(t, flow.Resend(context.Background()), ErrNoPendingVerification)
}

func TestAccountFlow_ResetDuringRequest(t *testing.T) {
	ctx := context.Background()
	accounts := &mockAccounts{}
	flow := NewAccountFlow(accounts)

	accounts.On("Create", ctx, testCredentials).
		Run(func(mock.Arguments) { flow.Reset() }).
		Return(&domain.CreateAccountResponse{TelegramAccount: domain.TelegramAccount{ID: 3}, RequestID: "r1"}, nil).
		Once()

	resp, err := flow.SubmitCredentials(ctx, testCredentials)
	require.NoError(t, err, "запрос не отменяется")
	assert.Equal(t, "r1", resp.RequestID)
	assert.Equal(t, AccountForm{Step: StepCredentials}, flow.Form(), "закрытый мастер не переходит к коду")
}
