package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"telegram-ai-agent/internal/apiclient"
	"telegram-ai-agent/internal/domain"
)

const (
	// RouteLogin - маршрут входа, на который уводит 401.
	RouteLogin = "/"
	// RouteDashboard - маршрут панели после входа.
	RouteDashboard = "/dashboard"

	// GenericErrorMessage показывается, если сервер не прислал текст ошибки.
	GenericErrorMessage = "Something went wrong. Please try again."
)

// ErrUnknownItem возвращается при переключении объекта, которого нет в загруженном списке.
var ErrUnknownItem = errors.New("item is not loaded, refresh the dashboard")

// NotificationKind - вид уведомления.
type NotificationKind string

const (
	NotificationError   NotificationKind = "error"
	NotificationSuccess NotificationKind = "success"
)

// Notification - сообщение пользователю.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	At      time.Time        `json:"at"`
}

// View - снимок состояния панели.
type View struct {
	Route         string
	Accounts      []domain.TelegramAccount
	Groups        []domain.TelegramGroup
	Summaries     []domain.Summary
	Notifications []Notification
	AccountForm   AccountForm
}

// Option определяет функциональную опцию для Dashboard.
type Option func(*Dashboard)

// WithPollInterval задает период опроса задач генерации.
func WithPollInterval(d time.Duration) Option {
	return func(db *Dashboard) {
		if d > 0 {
			db.pollInterval = d
		}
	}
}

// WithLogger устанавливает логгер панели.
func WithLogger(l *slog.Logger) Option {
	return func(db *Dashboard) {
		if l != nil {
			db.logger = l
		}
	}
}

// WithClock подменяет время уведомлений.
func WithClock(now func() time.Time) Option {
	return func(db *Dashboard) {
		if now != nil {
			db.now = now
		}
	}
}

// Dashboard - состояние панели управления.
type Dashboard struct {
	accounts  AccountAPI
	groups    GroupAPI
	summaries SummaryAPI

	// AccountFlow - мастер подключения аккаунта.
	AccountFlow *AccountFlow

	pollInterval time.Duration
	logger       *slog.Logger
	now          func() time.Time

	mu            sync.RWMutex
	route         string
	accountList   []domain.TelegramAccount
	groupList     []domain.TelegramGroup
	summaryList   []domain.Summary
	notifications []Notification
}

// New создает панель поверх фасадов API.
func New(accounts AccountAPI, groups GroupAPI, summaries SummaryAPI, opts ...Option) *Dashboard {
	db := &Dashboard{
		accounts:     accounts,
		groups:       groups,
		summaries:    summaries,
		AccountFlow:  NewAccountFlow(accounts),
		pollInterval: apiclient.DefaultPollInterval,
		logger:       slog.Default(),
		now:          time.Now,
		route:        RouteDashboard,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// FromClient создает панель для клиента и подписывает ее на ответы 401.
func FromClient(c *apiclient.Client, opts ...Option) *Dashboard {
	db := New(c.Accounts, c.Groups, c.Summaries, opts...)
	c.OnUnauthorized(db.HandleUnauthorized)
	return db
}

// HandleUnauthorized уводит на страницу входа и сбрасывает состояние.
func (db *Dashboard) HandleUnauthorized(_ *apiclient.APIError) {
	db.mu.Lock()
	db.route = RouteLogin
	db.accountList = nil
	db.groupList = nil
	db.summaryList = nil
	db.notifications = nil
	db.mu.Unlock()

	db.AccountFlow.Reset()
}

// Route возвращает текущий маршрут.
func (db *Dashboard) Route() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.route
}

// View возвращает копию состояния.
func (db *Dashboard) View() View {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return View{
		Route:         db.route,
		Accounts:      append([]domain.TelegramAccount(nil), db.accountList...),
		Groups:        append([]domain.TelegramGroup(nil), db.groupList...),
		Summaries:     append([]domain.Summary(nil), db.summaryList...),
		Notifications: append([]Notification(nil), db.notifications...),
		AccountForm:   db.AccountFlow.Form(),
	}
}

// Notifications возвращает накопленные уведомления.
func (db *Dashboard) Notifications() []Notification {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]Notification(nil), db.notifications...)
}

// DismissNotifications очищает уведомления.
func (db *Dashboard) DismissNotifications() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.notifications = nil
}

func (db *Dashboard) push(kind NotificationKind, msg string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.notifications = append(db.notifications, Notification{Kind: kind, Message: msg, At: db.now()})
}

// ErrorMessage переводит ошибку в текст для пользователя.
func ErrorMessage(err error) string {
	if msg, ok := apiclient.ServerMessage(err); ok {
		return msg
	}
	if errors.Is(err, apiclient.ErrJobFailed) {
		return strings.TrimPrefix(err.Error(), apiclient.ErrJobFailed.Error()+": ")
	}
	if errors.Is(err, domain.ErrValidation) {
		return err.Error()
	}
	return GenericErrorMessage
}

// fail записывает уведомление об ошибке и возвращает err. 401 уже обработан HandleUnauthorized.
func (db *Dashboard) fail(err error) error {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return err
	}
	db.logger.Warn("dashboard action failed", slog.String("error", err.Error()))
	db.push(NotificationError, ErrorMessage(err))
	return err
}

// Refresh загружает аккаунты, группы и сводки.
func (db *Dashboard) Refresh(ctx context.Context) error {
	accounts, err := db.accounts.List(ctx)
	if err != nil {
		return db.fail(err)
	}
	groups, err := db.groups.List(ctx)
	if err != nil {
		return db.fail(err)
	}
	summaries, err := db.summaries.List(ctx)
	if err != nil {
		return db.fail(err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.route = RouteDashboard
	db.accountList = accounts
	db.groupList = groups
	db.summaryList = summaries
	return nil
}

func activity(active bool) string {
	if active {
		return "activated"
	}
	return "deactivated"
}

// ToggleAccount отправляет состояние, обратное загруженному.
func (db *Dashboard) ToggleAccount(ctx context.Context, accountID int64) (*domain.TelegramAccount, error) {
	db.mu.RLock()
	current, found := false, false
	for _, a := range db.accountList {
		if a.ID == accountID {
			current, found = a.IsActive, true
			break
		}
	}
	db.mu.RUnlock()
	if !found {
		return nil, db.fail(fmt.Errorf("account %d: %w", accountID, ErrUnknownItem))
	}

	updated, err := db.accounts.SetActive(ctx, accountID, !current)
	if err != nil {
		return nil, db.fail(err)
	}

	db.mu.Lock()
	for i := range db.accountList {
		if db.accountList[i].ID == accountID {
			db.accountList[i] = *updated
		}
	}
	db.mu.Unlock()

	db.push(NotificationSuccess, fmt.Sprintf("Account %s %s", updated.PhoneNumber, activity(updated.IsActive)))
	return updated, nil
}

// ToggleGroup отправляет состояние, обратное загруженному.
func (db *Dashboard) ToggleGroup(ctx context.Context, groupID int64) (*domain.TelegramGroup, error) {
	db.mu.RLock()
	current, found := false, false
	for _, g := range db.groupList {
		if g.ID == groupID {
			current, found = g.IsActive, true
			break
		}
	}
	db.mu.RUnlock()
	if !found {
		return nil, db.fail(fmt.Errorf("group %d: %w", groupID, ErrUnknownItem))
	}

	updated, err := db.groups.SetActive(ctx, groupID, !current)
	if err != nil {
		return nil, db.fail(err)
	}

	db.mu.Lock()
	for i := range db.groupList {
		if db.groupList[i].ID == groupID {
			db.groupList[i] = *updated
		}
	}
	db.mu.Unlock()

	db.push(NotificationSuccess, fmt.Sprintf("Group %s %s", updated.Name, activity(updated.IsActive)))
	return updated, nil
}

// JoinGroup вступает в группу выбранным аккаунтом и добавляет ее в список.
func (db *Dashboard) JoinGroup(ctx context.Context, accountID int64, link string) (*domain.TelegramGroup, error) {
	group, err := db.groups.Join(ctx, accountID, link)
	if err != nil {
		return nil, db.fail(err)
	}

	db.mu.Lock()
	replaced := false
	for i := range db.groupList {
		if db.groupList[i].ID == group.ID {
			db.groupList[i] = *group
			replaced = true
		}
	}
	if !replaced {
		db.groupList = append(db.groupList, *group)
	}
	db.mu.Unlock()

	db.push(NotificationSuccess, "Successfully joined group "+group.Name)
	return group, nil
}

// GenerateSummary запускает генерацию и ждет готовую сводку.
func (db *Dashboard) GenerateSummary(ctx context.Context, groupID int64, days int) (*domain.Summary, error) {
	job, err := db.summaries.Generate(ctx, groupID, days)
	if err != nil {
		return nil, db.fail(err)
	}

	summary, err := db.summaries.Wait(ctx, job.ID, db.pollInterval)
	if err != nil {
		return nil, db.fail(err)
	}

	db.mu.Lock()
	db.summaryList = append([]domain.Summary{*summary}, db.summaryList...)
	db.mu.Unlock()

	db.push(NotificationSuccess, "Summary generated")
	return summary, nil
}
