package log

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const secretMask = "***"

// TokenMaskerHandler - обертка для slog.Handler, которая маскирует секреты в логах:
// токены ботов, cookie сессий, api_hash, пароли и коды подтверждения
type TokenMaskerHandler struct {
	handler slog.Handler
}

// NewTokenMaskerHandler создает новый обработчик с маскировкой секретов
func NewTokenMaskerHandler(handler slog.Handler) *TokenMaskerHandler {
	return &TokenMaskerHandler{
		handler: handler,
	}
}

// маскируем токены в формате botID:token, где ID - числа, token - буквенно-цифровой
var telegramTokenRegex = regexp.MustCompile(`(\bbot\d+:[A-Za-z0-9_-]{35,})`)

// sessionid=... в заголовках Cookie/Set-Cookie и "api_hash":"..." / "password":"..." в телах запросов
var (
	sessionCookieRegex = regexp.MustCompile(`(\bsessionid=)[^;,\s"]+`)
	jsonSecretRegex    = regexp.MustCompile(`("(?:api_hash|password|code)"\s*:\s*")[^"]*(")`)
)

// sensitiveKeys - атрибуты, значение которых не выводится целиком никогда
var sensitiveKeys = map[string]bool{
	"password":  true,
	"api_hash":  true,
	"code":      true,
	"sessionid": true,
	"session":   true,
	"token":     true,
	"bot_token": true,
	"cookie":    true,
}

// maskTokens заменяет найденные секреты на маску
func maskTokens(text string) string {
	text = telegramTokenRegex.ReplaceAllString(text, "bot***:***masked-token***")
	text = sessionCookieRegex.ReplaceAllString(text, "${1}"+secretMask)
	return jsonSecretRegex.ReplaceAllString(text, "${1}"+secretMask+"${2}")
}

// Enabled реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) Handle(ctx context.Context, record slog.Record) error {
	// Собираем новую запись, чтобы не трогать оригинал, который slog может переиспользовать.
	r := slog.NewRecord(record.Time, record.Level, maskTokens(record.Message), record.PC)

	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(maskAttr(a))
		return true
	})

	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		maskedAttrs[i] = maskAttr(attr)
	}
	return &TokenMaskerHandler{
		handler: h.handler.WithAttrs(maskedAttrs),
	}
}

// WithGroup реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) WithGroup(name string) slog.Handler {
	return &TokenMaskerHandler{
		handler: h.handler.WithGroup(name),
	}
}

func maskAttr(a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] && a.Value.Kind() != slog.KindGroup {
		return slog.String(a.Key, maskSecret(a.Value.Resolve().String()))
	}
	return slog.Attr{Key: a.Key, Value: maskAttributeValue(a.Value)}
}

// maskSecret заменяет непустое значение маской
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return secretMask
}

// maskAttributeValue рекурсивно маскирует значения атрибутов
func maskAttributeValue(value slog.Value) slog.Value {
	value = value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(maskTokens(value.String()))
	case slog.KindAny:
		// Ошибки часто содержат URL с токеном, поэтому их тоже превращаем в строку
		if err, ok := value.Any().(error); ok {
			return slog.StringValue(maskTokens(err.Error()))
		}
		return value
	case slog.KindGroup:
		group := value.Group()
		maskedGroup := make([]slog.Attr, len(group))
		for i, attr := range group {
			maskedGroup[i] = maskAttr(attr)
		}
		return slog.GroupValue(maskedGroup...)
	default:
		return value
	}
}

// NewMaskedLogger создает новый экземпляр slog.Logger с маскировкой секретов
func NewMaskedLogger(handler slog.Handler) *slog.Logger {
	return slog.New(NewTokenMaskerHandler(handler))
}
