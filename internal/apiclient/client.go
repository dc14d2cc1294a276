// Package apiclient - клиент HTTP API бэкенда Telegram AI Agent.
//
// Один Client хранит базовый URL, cookie jar с сессией и цепочку перехватчиков.
// Операции сгруппированы по ресурсам: Auth, Accounts, Groups, Summaries,
// Messages и Associations. Повторов и таймаутов по умолчанию нет: любой сбой
// возвращается вызывающему, время жизни вызова задает context.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
)

// RequestInterceptor вызывается для каждого исходящего запроса перед отправкой.
// Ошибка прерывает вызов.
type RequestInterceptor func(req *http.Request) error

// UnauthorizedHandler вызывается при ответе 401, до возврата ошибки вызывающему.
type UnauthorizedHandler func(err *APIError)

// Option определяет функциональную опцию для конфигурации клиента.
type Option func(*Client)

// WithHTTPClient подменяет транспорт. Если у клиента нет cookie jar, он будет создан.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCookieJar задает хранилище cookie сессии.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		if jar != nil {
			c.jar = jar
		}
	}
}

// WithLogger устанавливает логгер клиента.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRequestInterceptor добавляет перехватчик исходящих запросов.
func WithRequestInterceptor(i RequestInterceptor) Option {
	return func(c *Client) {
		if i != nil {
			c.interceptors = append(c.interceptors, i)
		}
	}
}

// WithUnauthorizedHandler задает реакцию на 401.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) {
		c.onUnauthorized = h
	}
}

// Client - клиент API бэкенда.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	log        *slog.Logger

	mu             sync.RWMutex
	interceptors   []RequestInterceptor
	onUnauthorized UnauthorizedHandler

	Auth         *AuthService
	Accounts     *AccountService
	Groups       *GroupService
	Summaries    *SummaryService
	Messages     *MessageService
	Associations *AssociationService
}

// New создает клиент для указанного базового URL, например http://localhost:8000/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		log:        slog.Default().With("component", "apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.jar == nil {
		c.jar = c.httpClient.Jar
	}
	if c.jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.jar = jar
	}
	// Копия, чтобы не менять переданный снаружи *http.Client.
	hc := *c.httpClient
	hc.Jar = c.jar
	c.httpClient = &hc

	c.Auth = &AuthService{client: c}
	c.Accounts = &AccountService{client: c}
	c.Groups = &GroupService{client: c}
	c.Summaries = &SummaryService{client: c}
	c.Messages = &MessageService{client: c}
	c.Associations = &AssociationService{client: c}
	return c, nil
}

// BaseURL возвращает базовый URL клиента.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Jar возвращает cookie jar с сессией.
func (c *Client) Jar() http.CookieJar {
	return c.jar
}

// Use добавляет перехватчик запросов после создания клиента.
func (c *Client) Use(i RequestInterceptor) {
	if i == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interceptors = append(c.interceptors, i)
}

// OnUnauthorized заменяет обработчик 401.
func (c *Client) OnUnauthorized(h UnauthorizedHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = h
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do выполняет один запрос и декодирует JSON-ответ в out (если out != nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	interceptors := c.interceptors
	onUnauthorized := c.onUnauthorized
	c.mu.RUnlock()

	for _, intercept := range interceptors {
		if err := intercept(req); err != nil {
			return fmt.Errorf("request interceptor: %w", err)
		}
	}

	c.log.Debug("sending request", slog.String("method", method), slog.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(method, path, resp)
		if apiErr.StatusCode == http.StatusUnauthorized && onUnauthorized != nil {
			onUnauthorized(apiErr)
		}
		c.log.Debug("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", apiErr.StatusCode),
			slog.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
