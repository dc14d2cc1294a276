package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"telegram-ai-agent/internal/domain"
)

// GroupService - операции с группами Telegram.
type GroupService struct {
	client *Client
}

func groupPath(id int64, action string) string {
	if action == "" {
		return fmt.Sprintf("/telegram/groups/%d/", id)
	}
	return fmt.Sprintf("/telegram/groups/%d/%s/", id, action)
}

// List возвращает группы, связанные с аккаунтами пользователя.
func (s *GroupService) List(ctx context.Context) ([]domain.TelegramGroup, error) {
	var groups []domain.TelegramGroup
	if err := s.client.do(ctx, http.MethodGet, "/telegram/groups/", nil, nil, &groups); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Join вступает в группу от имени аккаунта. groupLink - ссылка t.me или @username.
func (s *GroupService) Join(ctx context.Context, accountID int64, groupLink string) (*domain.TelegramGroup, error) {
	req := domain.JoinGroupRequest{AccountID: accountID, GroupLink: groupLink}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp domain.JoinGroupResponse
	if err := s.client.do(ctx, http.MethodPost, "/telegram/groups/join/", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("join group: %w", err)
	}
	return &resp.Group, nil
}

// CollectMessages запускает разовый сбор сообщений. limit <= 0 означает domain.DefaultCollectLimit.
func (s *GroupService) CollectMessages(ctx context.Context, groupID, accountID int64, limit int) (*domain.CollectMessagesResponse, error) {
	if limit <= 0 {
		limit = domain.DefaultCollectLimit
	}
	req := domain.CollectMessagesRequest{AccountID: accountID, Limit: limit}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp domain.CollectMessagesResponse
	if err := s.client.do(ctx, http.MethodPost, groupPath(groupID, "collect_messages"), nil, req, &resp); err != nil {
		return nil, fmt.Errorf("collect messages for group %d: %w", groupID, err)
	}
	return &resp, nil
}

// ToggleActive всегда отправляет is_active=false, независимо от текущего состояния.
// Чтобы задать конкретное состояние, используйте SetActive.
func (s *GroupService) ToggleActive(ctx context.Context, groupID int64) (*domain.TelegramGroup, error) {
	return s.SetActive(ctx, groupID, false)
}

// SetActive частично обновляет флаг активности группы.
func (s *GroupService) SetActive(ctx context.Context, groupID int64, active bool) (*domain.TelegramGroup, error) {
	var group domain.TelegramGroup
	if err := s.client.do(ctx, http.MethodPatch, groupPath(groupID, ""), nil, domain.ActiveUpdate{IsActive: active}, &group); err != nil {
		return nil, fmt.Errorf("update group %d: %w", groupID, err)
	}
	return &group, nil
}
