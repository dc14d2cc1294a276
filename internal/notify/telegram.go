// Package notify доставляет готовые сводки в чат Telegram через Bot API.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-ai-agent/internal/domain"
	agentlog "telegram-ai-agent/internal/log"
)

// maxMessageLength - лимит Bot API на длину текста сообщения.
const maxMessageLength = 4096

// Sender - часть tgbotapi.BotAPI, которой достаточно для отправки.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier отправляет сводки в один чат.
type TelegramNotifier struct {
	sender Sender
	chatID int64
	logger *slog.Logger
}

// NewTelegramNotifier авторизует бота по токену и создает notifier для chatID.
func NewTelegramNotifier(token string, chatID int64, logger *slog.Logger) (*TelegramNotifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	// Логи библиотеки могут содержать URL с токеном, поэтому пропускаем их через маскирующий логгер.
	if err := tgbotapi.SetLogger(agentlog.NewTGBotAPIAdapter(logger)); err != nil {
		return nil, fmt.Errorf("failed to set bot api logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}
	logger.Info("Authorized on account", slog.String("username", api.Self.UserName))

	return New(api, chatID, logger), nil
}

// New создает notifier поверх готового отправителя.
func New(sender Sender, chatID int64, logger *slog.Logger) *TelegramNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramNotifier{sender: sender, chatID: chatID, logger: logger}
}

func caption(s domain.Summary) string {
	name := "group"
	if s.Group != nil && s.Group.Name != "" {
		name = s.Group.Name
	}
	return fmt.Sprintf("Summary #%d for %s (%s .. %s)", s.ID, name,
		s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"))
}

// NotifySummary отправляет сводку сообщением, а слишком длинную - текстовым файлом.
func (n *TelegramNotifier) NotifySummary(ctx context.Context, s domain.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := caption(s) + "\n\n" + strings.TrimSpace(s.Content)
	var msg tgbotapi.Chattable
	if utf8.RuneCountInString(text) <= maxMessageLength {
		msg = tgbotapi.NewMessage(n.chatID, text)
	} else {
		doc := tgbotapi.NewDocument(n.chatID, tgbotapi.FileBytes{
			Name:  fmt.Sprintf("summary_%d.txt", s.ID),
			Bytes: []byte(s.Content),
		})
		doc.Caption = caption(s)
		msg = doc
	}

	if _, err := n.sender.Send(msg); err != nil {
		return fmt.Errorf("failed to send summary %d: %w", s.ID, err)
	}
	n.logger.Info("summary delivered", slog.Int64("summary_id", s.ID), slog.Int64("chat_id", n.chatID))
	return nil
}
