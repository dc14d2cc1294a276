package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"telegram-ai-agent/internal/domain"
)

// AuthService - операции входа и регистрации. Состояние сессии хранится только в cookie.
type AuthService struct {
	client *Client
}

// Login открывает сессию. Cookie сессии сохраняется в jar клиента.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	req := domain.LoginRequest{Username: username, Password: password}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp domain.AuthResponse
	if err := s.client.do(ctx, http.MethodPost, "/users/login/", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &resp.User, nil
}

// Register создает пользователя.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	req := domain.RegisterRequest{Username: username, Email: email, Password: password}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp domain.AuthResponse
	if err := s.client.do(ctx, http.MethodPost, "/users/register/", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &resp.User, nil
}

// Logout закрывает сессию на сервере.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.client.do(ctx, http.MethodPost, "/users/logout/", nil, nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// CurrentUser запрашивает пользователя текущей сессии.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := s.client.do(ctx, http.MethodGet, "/users/me/", nil, nil, &user); err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return &user, nil
}
