package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"telegram-ai-agent/internal/domain"
)

// AccountService - операции с аккаунтами Telegram.
//
// Подключение аккаунта проходит в два шага: Create (или Authenticate) выдает
// request_id, который затем передается в VerifyCode вместе с кодом из SMS/приложения.
type AccountService struct {
	client *Client
}

func accountPath(id int64, action string) string {
	if action == "" {
		return fmt.Sprintf("/telegram/accounts/%d/", id)
	}
	return fmt.Sprintf("/telegram/accounts/%d/%s/", id, action)
}

// List возвращает аккаунты текущего пользователя.
func (s *AccountService) List(ctx context.Context) ([]domain.TelegramAccount, error) {
	var accounts []domain.TelegramAccount
	if err := s.client.do(ctx, http.MethodGet, "/telegram/accounts/", nil, nil, &accounts); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// Create регистрирует телефон и учетные данные API. Ответ содержит request_id ожидающей верификации.
func (s *AccountService) Create(ctx context.Context, req domain.CreateAccountRequest) (*domain.CreateAccountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp domain.CreateAccountResponse
	if err := s.client.do(ctx, http.MethodPost, "/telegram/accounts/", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &resp, nil
}

// Authenticate повторно запрашивает отправку кода для существующего аккаунта.
func (s *AccountService) Authenticate(ctx context.Context, accountID int64) (*domain.VerificationChallenge, error) {
	var resp domain.VerificationChallenge
	if err := s.client.do(ctx, http.MethodPost, accountPath(accountID, "authenticate"), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("authenticate account %d: %w", accountID, err)
	}
	return &resp, nil
}

// VerifyCode завершает верификацию. requestID должен быть из последнего Create/Authenticate,
// иначе сервер отклонит запрос с ошибкой, совместимой с ErrInvalidRequestID.
func (s *AccountService) VerifyCode(ctx context.Context, accountID int64, code, requestID string) (*domain.TelegramAccount, error) {
	req := domain.VerifyCodeRequest{Code: code, RequestID: requestID}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp domain.VerifyCodeResponse
	if err := s.client.do(ctx, http.MethodPost, accountPath(accountID, "verify_code"), nil, req, &resp); err != nil {
		return nil, fmt.Errorf("verify code for account %d: %w", accountID, err)
	}
	return &resp.Account, nil
}

// ToggleActive всегда отправляет is_active=false, независимо от текущего состояния.
// Чтобы задать конкретное состояние, используйте SetActive.
func (s *AccountService) ToggleActive(ctx context.Context, accountID int64) (*domain.TelegramAccount, error) {
	return s.SetActive(ctx, accountID, false)
}

// SetActive частично обновляет флаг активности аккаунта.
func (s *AccountService) SetActive(ctx context.Context, accountID int64, active bool) (*domain.TelegramAccount, error) {
	var account domain.TelegramAccount
	if err := s.client.do(ctx, http.MethodPatch, accountPath(accountID, ""), nil, domain.ActiveUpdate{IsActive: active}, &account); err != nil {
		return nil, fmt.Errorf("update account %d: %w", accountID, err)
	}
	return &account, nil
}

// Delete безвозвратно удаляет аккаунт.
func (s *AccountService) Delete(ctx context.Context, accountID int64) error {
	if err := s.client.do(ctx, http.MethodDelete, accountPath(accountID, ""), nil, nil, nil); err != nil {
		return fmt.Errorf("delete account %d: %w", accountID, err)
	}
	return nil
}
