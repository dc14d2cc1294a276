// Команда fakeapi запускает бэкенд разработки с тем же HTTP API, что и боевой агент.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sevlyar/go-daemon"

	"telegram-ai-agent/internal/adapters/source"
	"telegram-ai-agent/internal/cache"
	"telegram-ai-agent/internal/fakeapi"
	agentlog "telegram-ai-agent/internal/log"
	"telegram-ai-agent/internal/notify"
	"telegram-ai-agent/internal/pkg/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	configPath := flag.String("config", "config.yml", "path to the YAML config")
	detach := flag.Bool("daemon", false, "detach from the terminal and run in background")
	pidFile := flag.String("pid-file", "fakeapi.pid", "pid file for -daemon")
	logFile := flag.String("log-file", "fakeapi.log", "log file for -daemon")
	demo := flag.Bool("demo", true, "load the built-in demo export ("+fakeapi.DemoGroupLink+")")
	flag.Parse()

	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Отсоединение от терминала: родитель печатает pid и выходит
	if *detach {
		dctx := &daemon.Context{
			PidFileName: *pidFile,
			PidFilePerm: 0o644,
			LogFileName: *logFile,
			LogFilePerm: 0o640,
			Umask:       0o027,
		}
		child, err := dctx.Reborn()
		if err != nil {
			return fmt.Errorf("failed to daemonize: %w", err)
		}
		if child != nil {
			fmt.Printf("fakeapi started in background, pid %d, log %s\n", child.Pid, *logFile)
			return nil
		}
		defer func() { _ = dctx.Release() }()
	}

	// 3. Инициализация логгера с маскировкой секретов
	logger := agentlog.New(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Источник групп и сообщений
	src := source.NewExportSource()
	if *demo {
		group, err := fakeapi.SeedDemo(src)
		if err != nil {
			return fmt.Errorf("failed to load demo export: %w", err)
		}
		logger.Info("demo group loaded", slog.String("link", fakeapi.DemoGroupLink), slog.String("name", group.Name))
	}
	if _, err := fakeapi.SeedExports(src, cfg.Server.SeedFiles, cfg.Server.SeedRebase, logger); err != nil {
		return fmt.Errorf("failed to seed exports: %w", err)
	}

	opts := []fakeapi.Option{
		fakeapi.WithGroupResolver(src),
		fakeapi.WithMessageSource(src),
		fakeapi.WithLogger(logger.With(slog.String("component", "fakeapi"))),
	}
	if cfg.Notify.Enabled() {
		n, err := notify.NewTelegramNotifier(cfg.Notify.BotToken, cfg.Notify.ChatID, logger.With(slog.String("component", "notify")))
		if err != nil {
			// Без доставки сервер остается полезным, поэтому только предупреждаем
			logger.Warn("summary notifier disabled", slog.String("error", err.Error()))
		} else {
			opts = append(opts, fakeapi.WithNotifier(n))
		}
	}

	// 5. Создание HTTP-сервера
	srv := fakeapi.New(cfg, fakeapi.NewStore(), fakeapi.NewJobStore(), cache.NewVerificationStore(), opts...)

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	srv.Start(appCtx)

	// 6. Запуск сервера и graceful shutdown
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		logger.Info("Starting server", slog.String("addr", cfg.Address()), slog.String("prefix", cfg.Server.PathPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-appCtx.Done()
	logger.Info("Signal received, shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}

	<-serverDone
	logger.Info("Application exited gracefully")
	return nil
}
