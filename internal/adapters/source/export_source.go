package source

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"telegram-ai-agent/internal/domain"
	"telegram-ai-agent/internal/ports"
)

// ErrEmptyLink возвращается, если ссылка на группу пуста.
var ErrEmptyLink = errors.New("group link is empty")

const (
	unknownSender  = "Unknown"
	deletedAccount = "Deleted Account"
)

// NamedSource - источник данных экспорта с именем для логов.
type NamedSource interface {
	ports.DataSource
	Name() string
}

type exportChat struct {
	group    domain.TelegramGroup
	messages []domain.GroupMessage // по возрастанию даты
}

// ExportSource отдает группы и сообщения из экспортов Telegram Desktop.
// Реализует ports.GroupResolver и ports.MessageSource для бэкенда разработки.
type ExportSource struct {
	mu     sync.RWMutex
	bySlug map[string]*exportChat
	byID   map[int64]*exportChat
	now    func() time.Time
}

// NewExportSource создает пустой источник.
func NewExportSource() *ExportSource {
	return &ExportSource{
		bySlug: make(map[string]*exportChat),
		byID:   make(map[int64]*exportChat),
		now:    time.Now,
	}
}

// Load читает и разбирает экспорт из src и добавляет его в источник.
func (s *ExportSource) Load(src NamedSource, p ports.Parser, rebase bool) (domain.TelegramGroup, error) {
	data, err := src.Fetch()
	if err != nil {
		return domain.TelegramGroup{}, fmt.Errorf("failed to fetch export %s: %w", src.Name(), err)
	}
	chat, err := p.Parse(data)
	if err != nil {
		return domain.TelegramGroup{}, fmt.Errorf("failed to parse export %s: %w", src.Name(), err)
	}
	return s.Add(chat, rebase), nil
}

// Add добавляет разобранный чат. При rebase все даты сдвигаются так, чтобы
// последнее сообщение пришлось на текущий момент.
func (s *ExportSource) Add(chat *domain.ExportedChat, rebase bool) domain.TelegramGroup {
	slug := Slug(chat.Name)
	if slug == "" {
		slug = strconv.FormatInt(chat.ID, 10)
	}
	groupID := chat.ID
	if groupID == 0 {
		groupID = syntheticID(slug)
	}
	name := chat.Name
	if name == "" {
		name = slug
	}

	ec := &exportChat{
		group: domain.TelegramGroup{
			Name:     name,
			GroupID:  groupID,
			Username: slug,
			IsActive: true,
		},
	}

	for _, msg := range chat.Messages {
		// Служебные сообщения (вступления, закрепы) в сводку не попадают
		if msg.Type == "service" {
			continue
		}
		text := strings.TrimSpace(msg.PlainText())
		if text == "" {
			continue
		}
		date, ok := msg.Time()
		if !ok {
			continue
		}
		sender := strings.TrimSpace(msg.From)
		if sender == "" || sender == deletedAccount {
			sender = unknownSender
		}
		ec.messages = append(ec.messages, domain.GroupMessage{
			MessageID:  msg.ID,
			SenderID:   msg.SenderID(),
			SenderName: sender,
			Text:       text,
			Date:       date,
		})
	}
	sort.SliceStable(ec.messages, func(i, j int) bool { return ec.messages[i].Date.Before(ec.messages[j].Date) })

	if rebase && len(ec.messages) > 0 {
		shift := s.now().UTC().Sub(ec.messages[len(ec.messages)-1].Date)
		for i := range ec.messages {
			ec.messages[i].Date = ec.messages[i].Date.Add(shift)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySlug[slug] = ec
	s.byID[groupID] = ec
	return ec.group
}

// Resolve находит группу по ссылке t.me, @username, имени или числовому id.
// Неизвестная группа создается без сообщений, как пустой чат.
func (s *ExportSource) Resolve(ctx context.Context, link string) (domain.TelegramGroup, error) {
	if err := ctx.Err(); err != nil {
		return domain.TelegramGroup{}, err
	}
	slug, err := LinkSlug(link)
	if err != nil {
		return domain.TelegramGroup{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if ec, ok := s.bySlug[slug]; ok {
		return ec.group, nil
	}
	if id, err := strconv.ParseInt(slug, 10, 64); err == nil {
		if ec, ok := s.byID[id]; ok {
			return ec.group, nil
		}
	}

	return domain.TelegramGroup{
		Name:     slug,
		GroupID:  syntheticID(slug),
		Username: slug,
		IsActive: true,
	}, nil
}

// Messages возвращает до limit последних сообщений группы, новые первыми.
func (s *ExportSource) Messages(ctx context.Context, group domain.TelegramGroup, limit int) ([]domain.GroupMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	ec, ok := s.byID[group.GroupID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if limit <= 0 || limit > len(ec.messages) {
		limit = len(ec.messages)
	}
	out := make([]domain.GroupMessage, 0, limit)
	for i := len(ec.messages) - 1; i >= 0 && len(out) < limit; i-- {
		msg := ec.messages[i]
		msg.GroupID = group.ID
		out = append(out, msg)
	}
	return out, nil
}

// Groups возвращает все загруженные группы в порядке имени.
func (s *ExportSource) Groups() []domain.TelegramGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TelegramGroup, 0, len(s.bySlug))
	for _, ec := range s.bySlug {
		out = append(out, ec.group)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// Slug превращает имя чата в username-подобный ключ: "Go Meetup!" -> "go_meetup".
func Slug(name string) string {
	var sb strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && sb.Len() > 0 {
			sb.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimRight(sb.String(), "_")
}

// LinkSlug извлекает ключ группы из ссылки: https://t.me/golang, t.me/golang, @golang, golang.
func LinkSlug(link string) (string, error) {
	l := strings.TrimSpace(link)
	for _, prefix := range []string{"https://", "http://"} {
		l = strings.TrimPrefix(l, prefix)
	}
	for _, prefix := range []string{"www.", "t.me/", "telegram.me/", "telegram.dog/"} {
		l = strings.TrimPrefix(l, prefix)
	}
	l = strings.TrimPrefix(l, "joinchat/")
	l = strings.TrimPrefix(l, "@")
	if i := strings.IndexAny(l, "/?#"); i >= 0 {
		l = l[:i]
	}
	l = strings.TrimPrefix(l, "+")
	if l == "" {
		return "", ErrEmptyLink
	}
	if slug := Slug(l); slug != "" {
		return slug, nil
	}
	return strings.ToLower(l), nil
}

// syntheticID строит стабильный положительный идентификатор чата по ключу.
func syntheticID(slug string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(slug))
	id := int64(h.Sum64() & (1<<52 - 1))
	if id == 0 {
		id = 1
	}
	return id
}
