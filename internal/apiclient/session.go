package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// storedCookie - cookie сессии в файле.
type storedCookie struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type storedSession struct {
	BaseURL string         `yaml:"base_url"`
	Cookies []storedCookie `yaml:"cookies"`
}

// SessionFile сохраняет cookie сессии между запусками CLI.
type SessionFile struct {
	Path string
}

// Load восстанавливает cookie в jar клиента. Отсутствующий файл или файл
// от другого base URL не является ошибкой. Возвращает true, если сессия восстановлена.
func (f SessionFile) Load(c *Client) (bool, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read session file %s: %w", f.Path, err)
	}

	var stored storedSession
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return false, fmt.Errorf("failed to parse session file %s: %w", f.Path, err)
	}

	base := c.BaseURL()
	if stored.BaseURL != base.String() || len(stored.Cookies) == 0 {
		return false, nil
	}

	cookies := make([]*http.Cookie, 0, len(stored.Cookies))
	for _, sc := range stored.Cookies {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	c.Jar().SetCookies(base, cookies)
	return true, nil
}

// Save записывает текущие cookie для base URL клиента.
func (f SessionFile) Save(c *Client) error {
	base := c.BaseURL()
	stored := storedSession{BaseURL: base.String()}
	for _, cookie := range c.Jar().Cookies(base) {
		stored.Cookies = append(stored.Cookies, storedCookie{Name: cookie.Name, Value: cookie.Value})
	}

	data, err := yaml.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session dir: %w", err)
		}
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file %s: %w", f.Path, err)
	}
	return nil
}

// Clear удаляет файл сессии.
func (f SessionFile) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file %s: %w", f.Path, err)
	}
	return nil
}
