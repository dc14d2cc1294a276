package ports

import (
	"context"
	"io"
	"time"

	"telegram-ai-agent/internal/domain"
)

// DataSource определяет интерфейс для получения исходных данных экспорта чата.
type DataSource interface {
	// Fetch загружает данные из источника и возвращает их в виде байтового среза.
	Fetch() ([]byte, error)
}

// Parser определяет интерфейс для парсинга экспорта чата.
type Parser interface {
	// Parse преобразует сырые данные в структурированную модель чата.
	Parse(data []byte) (*domain.ExportedChat, error)
}

// MessageSource отдает сообщения группы, которые бэкенд "собирает" из Telegram.
type MessageSource interface {
	Messages(ctx context.Context, group domain.TelegramGroup, limit int) ([]domain.GroupMessage, error)
}

// GroupResolver находит группу по ссылке-приглашению или @username.
type GroupResolver interface {
	Resolve(ctx context.Context, link string) (domain.TelegramGroup, error)
}

// CodeSender отправляет код подтверждения на телефон аккаунта и возвращает отправленный код.
type CodeSender interface {
	SendCode(ctx context.Context, phoneNumber string) (string, error)
}

// Summarizer строит текст сводки по сообщениям группы за период.
type Summarizer interface {
	Summarize(ctx context.Context, groupName string, messages []domain.GroupMessage, start, end time.Time) (string, error)
}

// Notifier доставляет готовую сводку получателю.
type Notifier interface {
	NotifySummary(ctx context.Context, summary domain.Summary) error
}

// Exporter определяет интерфейс для выгрузки сводок.
type Exporter interface {
	ExportSummaries(w io.Writer, summaries []domain.Summary) error
}
