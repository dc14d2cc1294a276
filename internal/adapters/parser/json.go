package parser

import (
	"encoding/json"
	"fmt"

	"telegram-ai-agent/internal/domain"
	"telegram-ai-agent/internal/ports"
)

// JSONParser разбирает экспорт Telegram Desktop (result.json).
// Служебные сообщения (вступления, закрепления) отбрасываются.
type JSONParser struct{}

// NewJSONParser создает новый экземпляр JSONParser.
func NewJSONParser() ports.Parser {
	return &JSONParser{}
}

// Parse преобразует JSON экспорта в ExportedChat.
func (p *JSONParser) Parse(data []byte) (*domain.ExportedChat, error) {
	var chat domain.ExportedChat
	if err := json.Unmarshal(data, &chat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json: %w", err)
	}
	if chat.Name == "" && chat.ID == 0 {
		return nil, fmt.Errorf("export has neither chat name nor chat id")
	}

	messages := chat.Messages[:0]
	for _, msg := range chat.Messages {
		if msg.Type != "" && msg.Type != "message" {
			continue
		}
		messages = append(messages, msg)
	}
	chat.Messages = messages
	return &chat, nil
}
