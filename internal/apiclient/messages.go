package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"telegram-ai-agent/internal/domain"
)

// MessageService - чтение собранных сообщений.
type MessageService struct {
	client *Client
}

// List возвращает собранные сообщения, новые первыми. groupID = 0 - по всем группам.
func (s *MessageService) List(ctx context.Context, groupID int64) ([]domain.GroupMessage, error) {
	var query url.Values
	if groupID > 0 {
		query = url.Values{"group_id": []string{strconv.FormatInt(groupID, 10)}}
	}

	var messages []domain.GroupMessage
	if err := s.client.do(ctx, http.MethodGet, "/telegram/messages/", query, nil, &messages); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// AssociationService - связи аккаунтов с группами.
type AssociationService struct {
	client *Client
}

// List возвращает связи аккаунтов пользователя.
func (s *AssociationService) List(ctx context.Context) ([]domain.Association, error) {
	var associations []domain.Association
	if err := s.client.do(ctx, http.MethodGet, "/telegram/associations/", nil, nil, &associations); err != nil {
		return nil, fmt.Errorf("list associations: %w", err)
	}
	return associations, nil
}

// ToggleActive инвертирует флаг активности связи на стороне сервера.
func (s *AssociationService) ToggleActive(ctx context.Context, associationID int64) (*domain.Association, error) {
	var resp struct {
		Message     string             `json:"message"`
		Association domain.Association `json:"association"`
	}
	path := fmt.Sprintf("/telegram/associations/%d/toggle_active/", associationID)
	if err := s.client.do(ctx, http.MethodPost, path, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("toggle association %d: %w", associationID, err)
	}
	return &resp.Association, nil
}
