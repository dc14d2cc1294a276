package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// exportDateLayout - формат поля date в экспорте Telegram Desktop.
const exportDateLayout = "2006-01-02T15:04:05"

// ExportedChat представляет корневую структуру файла экспорта Telegram Desktop.
// Используется для наполнения сообщений групп в бэкенде разработки.
type ExportedChat struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	ID       int64           `json:"id"`
	Messages []ExportMessage `json:"messages"`
}

// ExportMessage представляет одно сообщение в экспорте.
type ExportMessage struct {
	ID           int64           `json:"id"`
	Type         string          `json:"type"`
	Date         string          `json:"date"`
	DateUnix     string          `json:"date_unixtime,omitempty"`
	From         string          `json:"from"`
	FromID       string          `json:"from_id"`
	Text         json.RawMessage `json:"text"` // Может быть строкой или массивом
	TextEntities []TextEntity    `json:"text_entities"`
}

// TextEntity представляет "богатую" часть текста (упоминание, ссылка и т.д.).
type TextEntity struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PlainText склеивает текст сообщения в строку.
func (m ExportMessage) PlainText() string {
	if len(m.Text) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(m.Text, &s); err == nil {
		return s
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(m.Text, &parts); err != nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range parts {
		var str string
		if err := json.Unmarshal(part, &str); err == nil {
			sb.WriteString(str)
			continue
		}
		var entity TextEntity
		if err := json.Unmarshal(part, &entity); err == nil {
			sb.WriteString(entity.Text)
		}
	}
	return sb.String()
}

// Time возвращает время отправки сообщения. Предпочтение отдается date_unixtime.
func (m ExportMessage) Time() (time.Time, bool) {
	if m.DateUnix != "" {
		if sec, err := strconv.ParseInt(m.DateUnix, 10, 64); err == nil {
			return time.Unix(sec, 0).UTC(), true
		}
	}
	t, err := time.ParseInLocation(exportDateLayout, m.Date, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SenderID извлекает числовой идентификатор из from_id вида "user12345".
func (m ExportMessage) SenderID() int64 {
	raw := strings.TrimPrefix(m.FromID, "user")
	raw = strings.TrimPrefix(raw, "channel")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
