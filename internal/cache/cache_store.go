// Package cache хранит выданные запросы на верификацию Telegram-аккаунтов.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Verification - ожидающий подтверждения запрос кода для аккаунта.
type Verification struct {
	AccountID int64
	UserID    int64
	Phone     string
	Code      string
	ExpiresAt time.Time
}

// VerificationStore управляет запросами верификации по request_id
type VerificationStore struct {
	items map[string]*Verification
	mutex sync.RWMutex
}

// NewVerificationStore создает новый экземпляр VerificationStore
func NewVerificationStore() *VerificationStore {
	return &VerificationStore{
		items: make(map[string]*Verification),
	}
}

// Put сохраняет запрос верификации. Предыдущие запросы того же аккаунта
// становятся недействительными: подтвердить можно только последний выданный код.
func (s *VerificationStore) Put(requestID string, v Verification, ttl time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for id, item := range s.items {
		if item.AccountID == v.AccountID {
			delete(s.items, id)
		}
	}

	v.ExpiresAt = time.Now().Add(ttl)
	s.items[requestID] = &v
}

// Get извлекает запрос по request_id
func (s *VerificationStore) Get(requestID string) (*Verification, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, exists := s.items[requestID]
	if !exists || time.Now().After(item.ExpiresAt) {
		return nil, false
	}
	copied := *item
	return &copied, true
}

// Delete удаляет запрос после успешной верификации
func (s *VerificationStore) Delete(requestID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.items, requestID)
}

// DeleteAccount удаляет все запросы аккаунта
func (s *VerificationStore) DeleteAccount(accountID int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for id, item := range s.items {
		if item.AccountID == accountID {
			delete(s.items, id)
		}
	}
}

// Len возвращает число хранимых запросов, включая просроченные
func (s *VerificationStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.items)
}

// CleanupExpired удаляет просроченные запросы
func (s *VerificationStore) CleanupExpired() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	for id, item := range s.items {
		if now.After(item.ExpiresAt) {
			delete(s.items, id)
		}
	}
}

// StartCleanupTicker запускает таймер для периодической очистки просроченных запросов
func (s *VerificationStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired()
			}
		}
	}()
}

// FileHash вычисляет хеш SHA256 содержимого файла
func FileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("не удалось открыть файл: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("не удалось прочитать файл: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
