// Package summarizer строит сводку переписки группы без обращения к LLM:
// статистика участников, упоминания, ссылки и самые содержательные сообщения.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"telegram-ai-agent/internal/domain"
)

// ErrNoMessages возвращается, если за период нет сообщений.
var ErrNoMessages = errors.New("No messages found for the specified period")

const (
	defaultTopParticipants = 5
	defaultHighlights      = 5
	defaultHighlightWidth  = 200
	unknownSender          = "Unknown"
	dayLayout              = "2006-01-02"
	timeLayout             = "2006-01-02 15:04:05"
)

var (
	mentionRegexp = regexp.MustCompile(`@[A-Za-z0-9_]{4,32}`)
	linkRegexp    = regexp.MustCompile(`https?://[^\s<>"']+`)
)

// Option определяет функциональную опцию для Extractive.
type Option func(*Extractive)

// WithTopParticipants задает число участников в разделе активности.
func WithTopParticipants(n int) Option {
	return func(s *Extractive) {
		if n > 0 {
			s.topParticipants = n
		}
	}
}

// WithHighlights задает число выделенных сообщений.
func WithHighlights(n int) Option {
	return func(s *Extractive) {
		if n > 0 {
			s.highlights = n
		}
	}
}

// WithHighlightWidth ограничивает ширину выделенного сообщения в колонках терминала.
func WithHighlightWidth(w int) Option {
	return func(s *Extractive) {
		if w > 0 {
			s.highlightWidth = w
		}
	}
}

// Extractive - детерминированный суммаризатор.
type Extractive struct {
	topParticipants int
	highlights      int
	highlightWidth  int
}

// New создает суммаризатор с настройками по умолчанию.
func New(opts ...Option) *Extractive {
	s := &Extractive{
		topParticipants: defaultTopParticipants,
		highlights:      defaultHighlights,
		highlightWidth:  defaultHighlightWidth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type counter struct {
	key   string
	count int
}

// sortCounters сортирует по убыванию частоты, при равенстве по ключу.
func sortCounters(m map[string]int) []counter {
	out := make([]counter, 0, len(m))
	for k, v := range m {
		out = append(out, counter{key: k, count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

// Summarize строит текст сводки по сообщениям группы за период [start, end].
func (s *Extractive) Summarize(ctx context.Context, groupName string, messages []domain.GroupMessage, start, end time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var inWindow []domain.GroupMessage
	for _, m := range messages {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		if m.Date.Before(start) || m.Date.After(end) {
			continue
		}
		inWindow = append(inWindow, m)
	}
	if len(inWindow) == 0 {
		return "", ErrNoMessages
	}
	sort.SliceStable(inWindow, func(i, j int) bool { return inWindow[i].Date.Before(inWindow[j].Date) })

	senders := make(map[string]int)
	mentions := make(map[string]int)
	links := make(map[string]int)
	for _, m := range inWindow {
		name := strings.TrimSpace(m.SenderName)
		if name == "" {
			name = unknownSender
		}
		senders[name]++
		for _, mention := range mentionRegexp.FindAllString(m.Text, -1) {
			mentions[strings.ToLower(mention)]++
		}
		for _, link := range linkRegexp.FindAllString(m.Text, -1) {
			links[strings.TrimRight(link, ".,;:!?)")]++
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Summary of %q for %s .. %s\n", groupName, start.UTC().Format(dayLayout), end.UTC().Format(dayLayout))
	fmt.Fprintf(&sb, "Messages: %d from %d participants\n", len(inWindow), len(senders))

	sb.WriteString("\nMost active participants:\n")
	for i, c := range sortCounters(senders) {
		if i == s.topParticipants {
			break
		}
		fmt.Fprintf(&sb, "- %s: %d\n", c.key, c.count)
	}

	if len(mentions) > 0 {
		sb.WriteString("\nMentioned:\n")
		for _, c := range sortCounters(mentions) {
			fmt.Fprintf(&sb, "- %s (%d)\n", c.key, c.count)
		}
	}

	if len(links) > 0 {
		sb.WriteString("\nShared links:\n")
		for _, c := range sortCounters(links) {
			fmt.Fprintf(&sb, "- %s\n", c.key)
		}
	}

	sb.WriteString("\nHighlights:\n")
	for _, m := range s.pickHighlights(inWindow) {
		name := strings.TrimSpace(m.SenderName)
		if name == "" {
			name = unknownSender
		}
		text := strings.Join(strings.Fields(m.Text), " ")
		fmt.Fprintf(&sb, "[%s] %s: %s\n", m.Date.UTC().Format(timeLayout), name, runewidth.Truncate(text, s.highlightWidth, "..."))
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}

// pickHighlights выбирает самые длинные сообщения и возвращает их в хронологическом порядке.
func (s *Extractive) pickHighlights(messages []domain.GroupMessage) []domain.GroupMessage {
	ranked := make([]domain.GroupMessage, len(messages))
	copy(ranked, messages)
	sort.SliceStable(ranked, func(i, j int) bool {
		return runewidth.StringWidth(ranked[i].Text) > runewidth.StringWidth(ranked[j].Text)
	})
	if len(ranked) > s.highlights {
		ranked = ranked[:s.highlights]
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Date.Before(ranked[j].Date) })
	return ranked
}
