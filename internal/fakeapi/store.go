package fakeapi

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"telegram-ai-agent/internal/domain"
)

type userRecord struct {
	user         domain.User
	passwordHash []byte
}

type accountRecord struct {
	account domain.TelegramAccount
	userID  int64
	apiHash string
}

type associationRecord struct {
	id             int64
	accountID      int64
	groupID        int64
	isActive       bool
	joinedAt       time.Time
	lastCollection *time.Time
}

type summaryRecord struct {
	summary domain.Summary
	groupID int64
}

type feedbackRecord struct {
	feedback domain.Feedback
	userID   int64
}

// StoreOption определяет функциональную опцию для Store.
type StoreOption func(*Store)

// WithHashCost задает стоимость bcrypt (в тестах удобно bcrypt.MinCost).
func WithHashCost(cost int) StoreOption {
	return func(s *Store) {
		s.hashCost = cost
	}
}

// WithStoreClock подменяет источник времени.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store - потокобезопасное in-memory хранилище бэкенда разработки.
// Все методы возвращают копии, изменять их можно без блокировок.
type Store struct {
	mu sync.RWMutex

	lastID       int64
	users        map[int64]*userRecord
	sessions     map[string]int64
	accounts     map[int64]*accountRecord
	groups       map[int64]*domain.TelegramGroup
	associations map[int64]*associationRecord
	messages     map[int64][]domain.GroupMessage // по id группы
	summaries    map[int64]*summaryRecord
	feedback     []feedbackRecord

	hashCost int
	now      func() time.Time
}

// NewStore создает пустое хранилище.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		users:        make(map[int64]*userRecord),
		sessions:     make(map[string]int64),
		accounts:     make(map[int64]*accountRecord),
		groups:       make(map[int64]*domain.TelegramGroup),
		associations: make(map[int64]*associationRecord),
		messages:     make(map[int64][]domain.GroupMessage),
		summaries:    make(map[int64]*summaryRecord),
		hashCost:     bcrypt.DefaultCost,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// nextID выдает идентификаторы в рамках всего хранилища; вызывать под s.mu.
func (s *Store) nextID() int64 {
	s.lastID++
	return s.lastID
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// --- пользователи и сессии ---

// CreateUser регистрирует пользователя. Имя и email уникальны.
func (s *Store) CreateUser(username, email, password string) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.user.Username == username {
			return domain.User{}, errUsernameTaken
		}
	}
	for _, u := range s.users {
		if u.user.Email == email {
			return domain.User{}, errEmailTaken
		}
	}

	rec := &userRecord{
		user:         domain.User{ID: s.nextID(), Username: username, Email: email},
		passwordHash: hash,
	}
	s.users[rec.user.ID] = rec
	return rec.user, nil
}

// Authenticate проверяет пароль пользователя.
func (s *Store) Authenticate(username, password string) (domain.User, error) {
	s.mu.RLock()
	var found *userRecord
	for _, u := range s.users {
		if u.user.Username == username {
			found = u
			break
		}
	}
	s.mu.RUnlock()

	if found == nil {
		return domain.User{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(found.passwordHash, []byte(password)); err != nil {
		return domain.User{}, errInvalidCredentials
	}
	return found.user, nil
}

// CreateSession выдает токен сессии для cookie.
func (s *Store) CreateSession(userID int64) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = userID
	return token
}

// SessionUser возвращает пользователя сессии.
func (s *Store) SessionUser(token string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.sessions[token]
	if !ok {
		return domain.User{}, false
	}
	u, ok := s.users[userID]
	if !ok {
		return domain.User{}, false
	}
	return u.user, true
}

// DeleteSession завершает сессию.
func (s *Store) DeleteSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// --- аккаунты ---

// accountView собирает публичное представление аккаунта; вызывать под s.mu.
func (s *Store) accountView(rec *accountRecord) domain.TelegramAccount {
	acc := rec.account
	if u, ok := s.users[rec.userID]; ok {
		user := u.user
		acc.User = &user
	}
	return acc
}

// CreateAccount добавляет неактивный аккаунт пользователя.
func (s *Store) CreateAccount(userID int64, req domain.CreateAccountRequest) domain.TelegramAccount {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timestamp()
	rec := &accountRecord{
		account: domain.TelegramAccount{
			ID:          s.nextID(),
			PhoneNumber: req.PhoneNumber,
			APIID:       req.APIID,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		userID:  userID,
		apiHash: req.APIHash,
	}
	s.accounts[rec.account.ID] = rec
	return s.accountView(rec)
}

// Accounts возвращает аккаунты пользователя по возрастанию id.
func (s *Store) Accounts(userID int64) []domain.TelegramAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.TelegramAccount{}
	for _, rec := range s.accounts {
		if rec.userID == userID {
			out = append(out, s.accountView(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Account возвращает аккаунт, если он принадлежит пользователю.
func (s *Store) Account(userID, accountID int64) (domain.TelegramAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[accountID]
	if !ok || rec.userID != userID {
		return domain.TelegramAccount{}, errAccountNotFound
	}
	return s.accountView(rec), nil
}

// SetAccountActive меняет флаг активности аккаунта.
func (s *Store) SetAccountActive(userID, accountID int64, active bool) (domain.TelegramAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.accounts[accountID]
	if !ok || rec.userID != userID {
		return domain.TelegramAccount{}, errAccountNotFound
	}
	rec.account.IsActive = active
	rec.account.UpdatedAt = s.timestamp()
	return s.accountView(rec), nil
}

// DeleteAccount удаляет аккаунт вместе с его связями с группами.
func (s *Store) DeleteAccount(userID, accountID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.accounts[accountID]
	if !ok || rec.userID != userID {
		return errAccountNotFound
	}
	delete(s.accounts, accountID)
	for id, assoc := range s.associations {
		if assoc.accountID == accountID {
			delete(s.associations, id)
		}
	}
	return nil
}

// --- группы и связи ---

// userGroupIDs - группы, связанные с аккаунтами пользователя; вызывать под s.mu.
func (s *Store) userGroupIDs(userID int64) map[int64]bool {
	ids := make(map[int64]bool)
	for _, assoc := range s.associations {
		if acc, ok := s.accounts[assoc.accountID]; ok && acc.userID == userID {
			ids[assoc.groupID] = true
		}
	}
	return ids
}

// JoinGroup сохраняет группу (по Telegram id) и связывает ее с активным аккаунтом пользователя.
func (s *Store) JoinGroup(userID, accountID int64, resolved domain.TelegramGroup) (domain.TelegramGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok || acc.userID != userID {
		return domain.TelegramGroup{}, errAccountNotFound
	}
	if !acc.account.IsActive {
		return domain.TelegramGroup{}, errAccountNotActive
	}

	now := s.timestamp()
	var group *domain.TelegramGroup
	for _, g := range s.groups {
		if g.GroupID == resolved.GroupID {
			group = g
			break
		}
	}
	if group == nil {
		group = &domain.TelegramGroup{ID: s.nextID(), GroupID: resolved.GroupID, CreatedAt: now}
		s.groups[group.ID] = group
	}
	group.Name = resolved.Name
	group.Username = resolved.Username
	group.IsActive = true
	group.UpdatedAt = now

	var assoc *associationRecord
	for _, a := range s.associations {
		if a.accountID == accountID && a.groupID == group.ID {
			assoc = a
			break
		}
	}
	if assoc == nil {
		assoc = &associationRecord{id: s.nextID(), accountID: accountID, groupID: group.ID, joinedAt: now}
		s.associations[assoc.id] = assoc
	}
	assoc.isActive = true

	return *group, nil
}

// Groups возвращает группы пользователя по возрастанию id.
func (s *Store) Groups(userID int64) []domain.TelegramGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.TelegramGroup{}
	for id := range s.userGroupIDs(userID) {
		if g, ok := s.groups[id]; ok {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Group возвращает группу, доступную пользователю.
func (s *Store) Group(userID, groupID int64) (domain.TelegramGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[groupID]
	if !ok || !s.userGroupIDs(userID)[groupID] {
		return domain.TelegramGroup{}, errNotFound
	}
	return *g, nil
}

// HasGroupAccess сообщает, связан ли пользователь с группой хотя бы одним аккаунтом.
func (s *Store) HasGroupAccess(userID, groupID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userGroupIDs(userID)[groupID]
}

// GroupByID возвращает группу без проверки доступа.
func (s *Store) GroupByID(groupID int64) (domain.TelegramGroup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID]
	if !ok {
		return domain.TelegramGroup{}, false
	}
	return *g, true
}

// SetGroupActive меняет флаг активности группы.
func (s *Store) SetGroupActive(userID, groupID int64, active bool) (domain.TelegramGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok || !s.userGroupIDs(userID)[groupID] {
		return domain.TelegramGroup{}, errNotFound
	}
	g.IsActive = active
	g.UpdatedAt = s.timestamp()
	return *g, nil
}

// CheckCollect проверяет, что аккаунт пользователя может собирать сообщения группы.
func (s *Store) CheckCollect(userID, groupID, accountID int64) (domain.TelegramGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[groupID]
	if !ok || !s.userGroupIDs(userID)[groupID] {
		return domain.TelegramGroup{}, errNotFound
	}
	acc, ok := s.accounts[accountID]
	if !ok || acc.userID != userID {
		return domain.TelegramGroup{}, errAccountNotFound
	}
	if s.association(accountID, groupID) == nil {
		return domain.TelegramGroup{}, errNotAssociated
	}
	if !acc.account.IsActive {
		return domain.TelegramGroup{}, errAccountNotActive
	}
	return *g, nil
}

// association находит связь аккаунта с группой; вызывать под s.mu.
func (s *Store) association(accountID, groupID int64) *associationRecord {
	for _, a := range s.associations {
		if a.accountID == accountID && a.groupID == groupID {
			return a
		}
	}
	return nil
}

// SaveMessages сохраняет новые сообщения группы, пропуская уже собранные
// (по message_id), и отмечает время сбора у связи. Возвращает число новых.
func (s *Store) SaveMessages(accountID, groupID int64, msgs []domain.GroupMessage) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[int64]bool, len(s.messages[groupID]))
	for _, m := range s.messages[groupID] {
		known[m.MessageID] = true
	}

	count := 0
	for _, m := range msgs {
		if m.Text == "" || known[m.MessageID] {
			continue
		}
		known[m.MessageID] = true
		m.ID = s.nextID()
		m.GroupID = groupID
		m.IsProcessed = false
		s.messages[groupID] = append(s.messages[groupID], m)
		count++
	}

	if assoc := s.association(accountID, groupID); assoc != nil {
		now := s.timestamp()
		assoc.lastCollection = &now
	}
	return count
}

// Messages возвращает сообщения групп пользователя, новые первыми.
// groupID == 0 - все группы.
func (s *Store) Messages(userID, groupID int64) []domain.GroupMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.GroupMessage{}
	for id := range s.userGroupIDs(userID) {
		if groupID != 0 && id != groupID {
			continue
		}
		out = append(out, s.messages[id]...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// MessagesInRange возвращает сообщения группы за [start, end] по возрастанию даты.
func (s *Store) MessagesInRange(groupID int64, start, end time.Time) []domain.GroupMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.GroupMessage
	for _, m := range s.messages[groupID] {
		if m.Date.Before(start) || m.Date.After(end) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// MarkProcessed помечает сообщения группы за [start, end] как обработанные.
func (s *Store) MarkProcessed(groupID int64, start, end time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages[groupID] {
		m := &s.messages[groupID][i]
		if !m.Date.Before(start) && !m.Date.After(end) {
			m.IsProcessed = true
		}
	}
}

func (s *Store) associationView(a *associationRecord) domain.Association {
	view := domain.Association{
		ID:       a.id,
		IsActive: a.isActive,
		JoinedAt: a.joinedAt,
	}
	if a.lastCollection != nil {
		t := *a.lastCollection
		view.LastCollection = &t
	}
	if acc, ok := s.accounts[a.accountID]; ok {
		account := s.accountView(acc)
		view.Account = &account
	}
	if g, ok := s.groups[a.groupID]; ok {
		group := *g
		view.Group = &group
	}
	return view
}

// Associations возвращает связи аккаунтов пользователя с группами.
func (s *Store) Associations(userID int64) []domain.Association {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Association{}
	for _, a := range s.associations {
		if acc, ok := s.accounts[a.accountID]; ok && acc.userID == userID {
			out = append(out, s.associationView(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ToggleAssociation инвертирует флаг активности связи.
func (s *Store) ToggleAssociation(userID, associationID int64) (domain.Association, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.associations[associationID]
	if !ok {
		return domain.Association{}, errNotFound
	}
	if acc, ok := s.accounts[a.accountID]; !ok || acc.userID != userID {
		return domain.Association{}, errNotFound
	}
	a.isActive = !a.isActive
	return s.associationView(a), nil
}

// --- сводки и оценки ---

// CreateSummary сохраняет сводку группы.
func (s *Store) CreateSummary(groupID int64, start, end time.Time, content string) domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timestamp()
	rec := &summaryRecord{
		summary: domain.Summary{
			ID:        s.nextID(),
			StartDate: start,
			EndDate:   end,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		},
		groupID: groupID,
	}
	s.summaries[rec.summary.ID] = rec
	return s.summaryView(rec)
}

func (s *Store) summaryView(rec *summaryRecord) domain.Summary {
	view := rec.summary
	if g, ok := s.groups[rec.groupID]; ok {
		group := *g
		view.Group = &group
	}
	return view
}

// Summaries возвращает сводки групп пользователя, новые первыми.
func (s *Store) Summaries(userID int64) []domain.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := s.userGroupIDs(userID)
	out := []domain.Summary{}
	for _, rec := range s.summaries {
		if groups[rec.groupID] {
			out = append(out, s.summaryView(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Summary возвращает сводку, доступную пользователю.
func (s *Store) Summary(userID, summaryID int64) (domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.summaries[summaryID]
	if !ok || !s.userGroupIDs(userID)[rec.groupID] {
		return domain.Summary{}, errNotFound
	}
	return s.summaryView(rec), nil
}

// AddFeedback сохраняет оценку. Один пользователь оценивает сводку один раз.
func (s *Store) AddFeedback(user domain.User, req domain.FeedbackRequest) (domain.Feedback, error) {
	if req.Summary <= 0 {
		return domain.Feedback{}, errSummaryIDRequired
	}
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		return domain.Feedback{}, errRatingOutOfRange
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.summaries[req.Summary]
	if !ok || !s.userGroupIDs(user.ID)[rec.groupID] {
		return domain.Feedback{}, errSummaryNotFound
	}
	for _, f := range s.feedback {
		if f.userID == user.ID && f.feedback.Summary == req.Summary {
			return domain.Feedback{}, errFeedbackExists
		}
	}

	fb := domain.Feedback{
		ID:        s.nextID(),
		Summary:   req.Summary,
		User:      user.Username,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: s.timestamp(),
	}
	s.feedback = append(s.feedback, feedbackRecord{feedback: fb, userID: user.ID})
	return fb, nil
}

// Feedback возвращает оценки пользователя.
func (s *Store) Feedback(userID int64) []domain.Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Feedback{}
	for _, f := range s.feedback {
		if f.userID == userID {
			out = append(out, f.feedback)
		}
	}
	return out
}
