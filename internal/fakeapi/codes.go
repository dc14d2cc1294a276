package fakeapi

import (
	"context"
	"log/slog"
)

// StaticCodeSender "отправляет" один и тот же код подтверждения и пишет его в лог.
// Настоящую отправку через MTProto выполняет боевой бэкенд.
type StaticCodeSender struct {
	code string
	log  *slog.Logger
}

// NewStaticCodeSender создает отправителя с фиксированным кодом.
func NewStaticCodeSender(code string, logger *slog.Logger) *StaticCodeSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &StaticCodeSender{code: code, log: logger}
}

// SendCode возвращает настроенный код.
func (s *StaticCodeSender) SendCode(ctx context.Context, phoneNumber string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.log.Info("verification code issued, use server.verification_code", slog.String("phone", phoneNumber))
	return s.code, nil
}
