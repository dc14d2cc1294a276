// Package fakeapi - in-memory бэкенд разработки с тем же HTTP API, что и
// боевой Telegram AI Agent: сессии по cookie, подключение аккаунтов с
// кодом подтверждения, группы, сбор сообщений и асинхронные сводки.
package fakeapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"telegram-ai-agent/internal/adapters/source"
	"telegram-ai-agent/internal/cache"
	"telegram-ai-agent/internal/pkg/config"
	"telegram-ai-agent/internal/ports"
	"telegram-ai-agent/internal/summarizer"
)

// Option определяет функциональную опцию для Server.
type Option func(*Server)

// WithCodeSender задает отправителя кодов подтверждения.
func WithCodeSender(cs ports.CodeSender) Option {
	return func(s *Server) { s.codes = cs }
}

// WithGroupResolver задает поиск группы по ссылке.
func WithGroupResolver(r ports.GroupResolver) Option {
	return func(s *Server) { s.resolver = r }
}

// WithMessageSource задает источник сообщений для сбора.
func WithMessageSource(ms ports.MessageSource) Option {
	return func(s *Server) { s.messages = ms }
}

// WithSummarizer задает построитель сводок.
func WithSummarizer(sum ports.Summarizer) Option {
	return func(s *Server) { s.summarizer = sum }
}

// WithNotifier задает доставку готовых сводок.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Server) { s.notifier = n }
}

// WithLogger устанавливает логгер сервера.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock подменяет источник времени для окон сводок.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server представляет HTTP-сервер бэкенда разработки
type Server struct {
	HTTPServer    *http.Server
	cfg           *config.Config
	store         *Store
	jobs          *JobStore
	verifications *cache.VerificationStore

	codes      ports.CodeSender
	resolver   ports.GroupResolver
	messages   ports.MessageSource
	summarizer ports.Summarizer
	notifier   ports.Notifier
	log        *slog.Logger
	now        func() time.Time

	// baseCtx живет до Shutdown и ограничивает фоновые задачи генерации.
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New создает новый экземпляр Server
func New(cfg *config.Config, store *Store, jobs *JobStore, verifications *cache.VerificationStore, opts ...Option) *Server {
	s := &Server{
		cfg:           cfg,
		store:         store,
		jobs:          jobs,
		verifications: verifications,
		log:           slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.codes == nil {
		s.codes = NewStaticCodeSender(cfg.Server.VerificationCode, s.log)
	}
	if s.resolver == nil || s.messages == nil {
		src := source.NewExportSource()
		if s.resolver == nil {
			s.resolver = src
		}
		if s.messages == nil {
			s.messages = src
		}
	}
	if s.summarizer == nil {
		s.summarizer = summarizer.New()
	}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.routes(),
		ReadTimeout:  config.DefaultReadTimeout,
		WriteTimeout: config.DefaultWriteTimeout,
		IdleTimeout:  config.DefaultIdleTimeout,
	}
	return s
}

// Handler возвращает корневой обработчик (удобно для httptest).
func (s *Server) Handler() http.Handler {
	return s.HTTPServer.Handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method \"" + r.Method + "\" not allowed."})
	})

	// Конечная точка для проверки работоспособности
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if prefix := s.cfg.Server.PathPrefix; prefix != "" && prefix != "/" {
		r.Route(prefix, s.apiRoutes)
	} else {
		r.Group(s.apiRoutes)
	}
	return r
}

func (s *Server) apiRoutes(r chi.Router) {
	r.Use(s.loadSession)

	r.Post("/users/register/", s.handleRegister)
	r.Post("/users/login/", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Post("/users/logout/", s.handleLogout)
		r.Get("/users/me/", s.handleMe)

		r.Route("/telegram", func(r chi.Router) {
			r.Get("/accounts/", s.handleListAccounts)
			r.Post("/accounts/", s.handleCreateAccount)
			r.Get("/accounts/{id}/", s.handleGetAccount)
			r.Patch("/accounts/{id}/", s.handleUpdateAccount)
			r.Delete("/accounts/{id}/", s.handleDeleteAccount)
			r.Post("/accounts/{id}/authenticate/", s.handleAuthenticateAccount)
			r.Post("/accounts/{id}/verify_code/", s.handleVerifyCode)

			r.Get("/groups/", s.handleListGroups)
			r.Post("/groups/join/", s.handleJoinGroup)
			r.Get("/groups/{id}/", s.handleGetGroup)
			r.Patch("/groups/{id}/", s.handleUpdateGroup)
			r.Post("/groups/{id}/collect_messages/", s.handleCollectMessages)

			r.Get("/messages/", s.handleListMessages)

			r.Get("/associations/", s.handleListAssociations)
			r.Post("/associations/{id}/toggle_active/", s.handleToggleAssociation)
		})

		r.Get("/summaries/", s.handleListSummaries)
		r.Post("/summaries/generate/", s.handleGenerateSummary)
		r.Get("/summaries/jobs/{jobID}/", s.handleGetJob)
		r.Get("/summaries/{id}/", s.handleGetSummary)

		r.Get("/feedback/", s.handleListFeedback)
		r.Post("/feedback/", s.handleCreateFeedback)
	})
}

// Start запускает тикеры очистки просроченных задач и запросов верификации.
func (s *Server) Start(ctx context.Context) {
	if s.cfg.Server.CleanupInterval <= 0 {
		return
	}
	s.jobs.StartCleanupTicker(ctx, s.cfg.Server.CleanupInterval)
	s.verifications.StartCleanupTicker(ctx, s.cfg.Server.CleanupInterval)
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера и ждет фоновые задачи
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Завершение работы HTTP-сервера")
	err := s.HTTPServer.Shutdown(ctx)
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

// Wait блокируется до завершения всех запущенных задач генерации.
func (s *Server) Wait() {
	s.wg.Wait()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
