package log

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// TGBotAPIAdapter направляет журнал go-telegram-bot-api/v5 в slog.
// Библиотека печатает URL запросов вместе с токеном бота, поэтому
// Logger должен быть построен на маскирующем обработчике.
type TGBotAPIAdapter struct {
	Logger *slog.Logger
}

// NewTGBotAPIAdapter создает адаптер с атрибутом component=tgbotapi.
func NewTGBotAPIAdapter(l *slog.Logger) *TGBotAPIAdapter {
	return &TGBotAPIAdapter{Logger: l.With(slog.String("component", "tgbotapi"))}
}

// level повышает сообщения об ошибках библиотеки до warn, остальное идет в debug.
func level(msg string) slog.Level {
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "error") || strings.Contains(lower, "failed") {
		return slog.LevelWarn
	}
	return slog.LevelDebug
}

func (a *TGBotAPIAdapter) log(msg string) {
	msg = strings.TrimSpace(msg)
	a.Logger.Log(context.Background(), level(msg), msg)
}

// Println реализует tgbotapi.BotLogger.
func (a *TGBotAPIAdapter) Println(v ...interface{}) {
	a.log(fmt.Sprintln(v...))
}

// Printf реализует tgbotapi.BotLogger.
func (a *TGBotAPIAdapter) Printf(format string, v ...interface{}) {
	a.log(fmt.Sprintf(format, v...))
}
