// Команда agentctl - клиент командной строки для API Telegram AI Agent.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"telegram-ai-agent/internal/apiclient"
	"telegram-ai-agent/internal/dashboard"
	agentlog "telegram-ai-agent/internal/log"
	"telegram-ai-agent/internal/pkg/config"
	"telegram-ai-agent/internal/pkg/term"
)

const userAgent = "agentctl/1.0"

const usage = `Usage: agentctl [-config config.yml] [-v] <command> [args]

Commands:
  register                         create a user
  login [username]                 start a session
  logout                           end the session
  whoami                           show the current user
  dashboard                        show accounts, groups and recent summaries

  accounts list
  accounts add                     connect a Telegram account (phone, api id, api hash, code)
  accounts verify [code]           finish a pending verification
  accounts resend                  send a new code for the pending verification
  accounts toggle <id>             flip is_active
  accounts delete <id>

  groups list
  groups join <account_id> <link>
  groups collect [-limit N] <group_id> <account_id>
  groups toggle <id>

  messages [-group id]
  associations list
  associations toggle <id>

  summaries list [-full]
  summaries get <id>
  summaries generate [-days N] [-no-wait] <group_id>
  summaries export [-o summaries.xlsx]
  summaries feedback <id> <rating 1-5> [comment]
`

// app связывает клиент API, состояние панели и терминал.
type app struct {
	cfg     *config.Config
	client  *apiclient.Client
	session apiclient.SessionFile
	dash    *dashboard.Dashboard
	term    *term.Terminal
	out     io.Writer
	logger  *slog.Logger
}

func main() {
	if err := run(); err != nil {
		if msg := dashboard.ErrorMessage(err); msg != dashboard.GenericErrorMessage {
			fmt.Fprintln(os.Stderr, "Error:", msg)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yml", "path to the YAML config")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return errors.New("command is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Логи идут в stderr, stdout остается для результата команды
	logger := agentlog.New(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.dispatch(ctx, flag.Args())
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	opts := []apiclient.Option{
		apiclient.WithLogger(logger.With(slog.String("component", "apiclient"))),
		apiclient.WithRequestInterceptor(func(req *http.Request) error {
			req.Header.Set("User-Agent", userAgent)
			return nil
		}),
	}
	if cfg.API.RequestTimeout > 0 {
		opts = append(opts, apiclient.WithHTTPClient(&http.Client{Timeout: cfg.API.RequestTimeout}))
	}

	client, err := apiclient.New(cfg.API.BaseURL, opts...)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		client:  client,
		session: apiclient.SessionFile{Path: cfg.API.SessionFile},
		term:    term.NewTerminal(),
		out:     os.Stdout,
		logger:  logger,
	}
	a.dash = dashboard.New(client.Accounts, client.Groups, client.Summaries,
		dashboard.WithPollInterval(cfg.Summaries.PollInterval),
		dashboard.WithLogger(logger.With(slog.String("component", "dashboard"))),
	)
	client.OnUnauthorized(a.handleUnauthorized)

	if _, err := a.session.Load(client); err != nil {
		logger.Warn("failed to restore session", slog.String("error", err.Error()))
	}
	if err := a.loadAccountForm(); err != nil {
		logger.Warn("failed to restore account form", slog.String("error", err.Error()))
	}
	return a, nil
}

// handleUnauthorized сбрасывает состояние и удаляет сохраненную сессию.
func (a *app) handleUnauthorized(err *apiclient.APIError) {
	a.dash.HandleUnauthorized(err)
	if clearErr := a.session.Clear(); clearErr != nil {
		a.logger.Warn("failed to clear session", slog.String("error", clearErr.Error()))
	}
	_ = a.clearAccountForm()
	fmt.Fprintln(os.Stderr, "Not logged in or session expired. Run: agentctl login")
}
