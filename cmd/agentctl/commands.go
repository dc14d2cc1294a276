package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"telegram-ai-agent/internal/adapters/exporter"
	"telegram-ai-agent/internal/dashboard"
	"telegram-ai-agent/internal/domain"
)

const (
	tableColWidth = 40
	timeLayout    = "2006-01-02 15:04"
)

var errUsage = errors.New("invalid arguments, run agentctl -h")

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "dashboard":
		return a.dashboard(ctx)
	case "accounts":
		return a.accounts(ctx, rest)
	case "groups":
		return a.groups(ctx, rest)
	case "messages":
		return a.messages(ctx, rest)
	case "associations":
		return a.associations(ctx, rest)
	case "summaries":
		return a.summaries(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func parseID(args []string, i int, name string) (int64, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("%s is required: %w", name, errUsage)
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, args[i])
	}
	return id, nil
}

func subcommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "list", nil
	}
	return args[0], args[1:]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// printNotifications выводит накопленные уведомления панели и очищает их.
func (a *app) printNotifications() {
	for _, n := range a.dash.Notifications() {
		if n.Kind == dashboard.NotificationSuccess {
			fmt.Fprintln(a.out, n.Message)
		}
	}
	a.dash.DismissNotifications()
}

func (a *app) saveSession() error {
	if err := a.session.Save(a.client); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (a *app) register(ctx context.Context) error {
	username, err := a.term.Prompt("Username", "")
	if err != nil {
		return err
	}
	email, err := a.term.Prompt("Email", "")
	if err != nil {
		return err
	}
	password, err := a.term.Password("Password")
	if err != nil {
		return err
	}

	if _, err := a.client.Auth.Register(ctx, username, email, password); err != nil {
		return err
	}
	user, err := a.client.Auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and logged in as %s\n", user.Username)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	username := ""
	if len(args) > 0 {
		username = args[0]
	}
	username, err := a.term.Prompt("Username", username)
	if err != nil {
		return err
	}
	password, err := a.term.Password("Password")
	if err != nil {
		return err
	}

	user, err := a.client.Auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", user.Username)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	err := a.client.Auth.Logout(ctx)
	// Локальная сессия удаляется в любом случае
	if clearErr := a.session.Clear(); clearErr != nil {
		a.logger.Warn("failed to clear session", "error", clearErr)
	}
	_ = a.clearAccountForm()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	user, err := a.client.Auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> (id %d)\n", user.Username, user.Email, user.ID)
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	if err := a.dash.Refresh(ctx); err != nil {
		return err
	}
	view := a.dash.View()

	fmt.Fprintln(a.out, "Accounts:")
	if err := a.printAccounts(view.Accounts); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "\nGroups:")
	if err := a.printGroups(view.Groups); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "\nRecent summaries:")
	recent := view.Summaries
	if len(recent) > 5 {
		recent = recent[:5]
	}
	if err := exporter.NewConsoleExporter(false).ExportSummaries(a.out, recent); err != nil {
		return err
	}

	if view.AccountForm.Step == dashboard.StepVerification {
		fmt.Fprintf(a.out, "\nPending verification for %s: run agentctl accounts verify\n", view.AccountForm.PhoneNumber)
	}
	return nil
}

// Аккаунты

func (a *app) accounts(ctx context.Context, args []string) error {
	sub, rest := subcommand(args)
	switch sub {
	case "list":
		accounts, err := a.client.Accounts.List(ctx)
		if err != nil {
			return err
		}
		return a.printAccounts(accounts)
	case "add":
		return a.addAccount(ctx)
	case "verify":
		code := ""
		if len(rest) > 0 {
			code = rest[0]
		}
		return a.verifyAccount(ctx, code)
	case "resend":
		if err := a.dash.AccountFlow.Resend(ctx); err != nil {
			return err
		}
		if err := a.saveAccountForm(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Verification code sent to your phone")
		return a.verifyAccount(ctx, "")
	case "toggle":
		id, err := parseID(rest, 0, "account id")
		if err != nil {
			return err
		}
		if err := a.dash.Refresh(ctx); err != nil {
			return err
		}
		if _, err := a.dash.ToggleAccount(ctx, id); err != nil {
			return err
		}
		a.printNotifications()
		return nil
	case "delete":
		id, err := parseID(rest, 0, "account id")
		if err != nil {
			return err
		}
		ok, err := a.term.Confirm(fmt.Sprintf("Delete account %d?", id))
		if err != nil || !ok {
			return err
		}
		if err := a.client.Accounts.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Account %d deleted\n", id)
		return nil
	default:
		return fmt.Errorf("unknown accounts command %q: %w", sub, errUsage)
	}
}

func (a *app) printAccounts(accounts []domain.TelegramAccount) error {
	rows := make([][]string, 0, len(accounts))
	for _, acc := range accounts {
		rows = append(rows, []string{
			strconv.FormatInt(acc.ID, 10),
			acc.PhoneNumber,
			acc.APIID,
			yesNo(acc.IsActive),
			acc.CreatedAt.Local().Format(timeLayout),
		})
	}
	return exporter.WriteTable(a.out, []string{"ID", "Phone", "API ID", "Active", "Created"}, rows, tableColWidth)
}

func (a *app) addAccount(ctx context.Context) error {
	if form := a.dash.AccountFlow.Form(); form.Step == dashboard.StepVerification {
		ok, err := a.term.Confirm(fmt.Sprintf("Verification for %s is pending. Start over?", form.PhoneNumber))
		if err != nil {
			return err
		}
		if !ok {
			return a.verifyAccount(ctx, "")
		}
		a.dash.AccountFlow.Reset()
	}

	var req domain.CreateAccountRequest
	var err error
	if req.PhoneNumber, err = a.term.Prompt("Phone number", ""); err != nil {
		return err
	}
	if req.APIID, err = a.term.Prompt("API ID", ""); err != nil {
		return err
	}
	if req.APIHash, err = a.term.Password("API hash"); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	resp, err := a.dash.AccountFlow.SubmitCredentials(ctx, req)
	if err != nil {
		return err
	}
	if err := a.saveAccountForm(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account %d created, verification code sent to %s\n", resp.ID, resp.PhoneNumber)
	return a.verifyAccount(ctx, "")
}

// verifyAccount подтверждает код; пустой ввод оставляет верификацию ожидающей.
func (a *app) verifyAccount(ctx context.Context, code string) error {
	form := a.dash.AccountFlow.Form()
	if form.Step != dashboard.StepVerification {
		return dashboard.ErrNoPendingVerification
	}

	if code == "" {
		var err error
		code, err = a.term.Code(form.PhoneNumber)
		if err != nil {
			fmt.Fprintln(a.out, "Verification is still pending: run agentctl accounts verify <code> or agentctl accounts resend")
			return err
		}
	}

	account, err := a.dash.AccountFlow.SubmitCode(ctx, code)
	if err != nil {
		return err
	}
	if err := a.saveAccountForm(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Authentication successful: account %d (%s) is active\n", account.ID, account.PhoneNumber)
	return nil
}

// Группы и сообщения

func (a *app) groups(ctx context.Context, args []string) error {
	sub, rest := subcommand(args)
	switch sub {
	case "list":
		groups, err := a.client.Groups.List(ctx)
		if err != nil {
			return err
		}
		return a.printGroups(groups)
	case "join":
		accountID, err := parseID(rest, 0, "account id")
		if err != nil {
			return err
		}
		if len(rest) < 2 {
			return fmt.Errorf("group link is required: %w", errUsage)
		}
		if _, err := a.dash.JoinGroup(ctx, accountID, rest[1]); err != nil {
			return err
		}
		a.printNotifications()
		return nil
	case "collect":
		fs := flag.NewFlagSet("groups collect", flag.ContinueOnError)
		limit := fs.Int("limit", domain.DefaultCollectLimit, "maximum number of messages to fetch")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		groupID, err := parseID(fs.Args(), 0, "group id")
		if err != nil {
			return err
		}
		accountID, err := parseID(fs.Args(), 1, "account id")
		if err != nil {
			return err
		}
		resp, err := a.client.Groups.CollectMessages(ctx, groupID, accountID, *limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, resp.Message)
		return nil
	case "toggle":
		id, err := parseID(rest, 0, "group id")
		if err != nil {
			return err
		}
		if err := a.dash.Refresh(ctx); err != nil {
			return err
		}
		if _, err := a.dash.ToggleGroup(ctx, id); err != nil {
			return err
		}
		a.printNotifications()
		return nil
	default:
		return fmt.Errorf("unknown groups command %q: %w", sub, errUsage)
	}
}

func (a *app) printGroups(groups []domain.TelegramGroup) error {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		username := ""
		if g.Username != "" {
			username = "@" + g.Username
		}
		rows = append(rows, []string{
			strconv.FormatInt(g.ID, 10),
			g.Name,
			username,
			strconv.FormatInt(g.GroupID, 10),
			yesNo(g.IsActive),
		})
	}
	return exporter.WriteTable(a.out, []string{"ID", "Name", "Username", "Telegram ID", "Active"}, rows, tableColWidth)
}

func (a *app) messages(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("messages", flag.ContinueOnError)
	groupID := fs.Int64("group", 0, "only messages of this group")
	if err := fs.Parse(args); err != nil {
		return err
	}

	messages, err := a.client.Messages.List(ctx, *groupID)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(messages))
	for _, m := range messages {
		rows = append(rows, []string{
			m.Date.Local().Format(timeLayout),
			m.SenderName,
			strings.ReplaceAll(m.Text, "\n", " "),
		})
	}
	return exporter.WriteTable(a.out, []string{"Date", "Sender", "Text"}, rows, 60)
}

func (a *app) associations(ctx context.Context, args []string) error {
	sub, rest := subcommand(args)
	switch sub {
	case "list":
		list, err := a.client.Associations.List(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(list))
		for _, as := range list {
			account, group, last := "", "", "never"
			if as.Account != nil {
				account = as.Account.PhoneNumber
			}
			if as.Group != nil {
				group = as.Group.Name
			}
			if as.LastCollection != nil {
				last = as.LastCollection.Local().Format(timeLayout)
			}
			rows = append(rows, []string{strconv.FormatInt(as.ID, 10), account, group, yesNo(as.IsActive), last})
		}
		return exporter.WriteTable(a.out, []string{"ID", "Account", "Group", "Active", "Last collection"}, rows, tableColWidth)
	case "toggle":
		id, err := parseID(rest, 0, "association id")
		if err != nil {
			return err
		}
		as, err := a.client.Associations.ToggleActive(ctx, id)
		if err != nil {
			return err
		}
		state := "inactive"
		if as.IsActive {
			state = "active"
		}
		fmt.Fprintf(a.out, "Association %d is now %s\n", as.ID, state)
		return nil
	default:
		return fmt.Errorf("unknown associations command %q: %w", sub, errUsage)
	}
}

// Сводки

func (a *app) summaries(ctx context.Context, args []string) error {
	sub, rest := subcommand(args)
	switch sub {
	case "list":
		fs := flag.NewFlagSet("summaries list", flag.ContinueOnError)
		full := fs.Bool("full", false, "print full summary texts")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		list, err := a.client.Summaries.List(ctx)
		if err != nil {
			return err
		}
		return exporter.NewConsoleExporter(*full).ExportSummaries(a.out, list)
	case "get":
		id, err := parseID(rest, 0, "summary id")
		if err != nil {
			return err
		}
		summary, err := a.client.Summaries.Get(ctx, id)
		if err != nil {
			return err
		}
		return exporter.NewConsoleExporter(true).ExportSummaries(a.out, []domain.Summary{*summary})
	case "generate":
		return a.generateSummary(ctx, rest)
	case "export":
		fs := flag.NewFlagSet("summaries export", flag.ContinueOnError)
		output := fs.String("o", "summaries.xlsx", "output .xlsx file")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return a.exportSummaries(ctx, *output)
	case "feedback":
		id, err := parseID(rest, 0, "summary id")
		if err != nil {
			return err
		}
		if len(rest) < 2 {
			return fmt.Errorf("rating is required: %w", errUsage)
		}
		rating, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("rating must be a number, got %q", rest[1])
		}
		comment := strings.Join(rest[2:], " ")
		req := domain.FeedbackRequest{Summary: id, Rating: rating, Comment: comment}
		if err := req.Validate(); err != nil {
			return err
		}
		if _, err := a.client.Summaries.ProvideFeedback(ctx, id, rating, comment); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Thanks! Feedback for summary %d saved\n", id)
		return nil
	default:
		return fmt.Errorf("unknown summaries command %q: %w", sub, errUsage)
	}
}

func (a *app) generateSummary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summaries generate", flag.ContinueOnError)
	days := fs.Int("days", a.cfg.Summaries.DefaultDays, "summary window in days")
	noWait := fs.Bool("no-wait", false, "print the job id and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	groupID, err := parseID(fs.Args(), 0, "group id")
	if err != nil {
		return err
	}
	req := domain.GenerateSummaryRequest{GroupID: groupID, Days: *days}
	if err := req.Validate(); err != nil {
		return err
	}

	if *noWait {
		job, err := a.client.Summaries.Generate(ctx, groupID, *days)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Job %s is %s\n", job.ID, job.Status)
		return nil
	}

	if a.cfg.Summaries.WaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Summaries.WaitTimeout)
		defer cancel()
	}

	started := time.Now()
	fmt.Fprintf(os.Stderr, "Generating summary for the last %d days...\n", *days)
	summary, err := a.dash.GenerateSummary(ctx, groupID, *days)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("summary is not ready after %s, check agentctl summaries list later", a.cfg.Summaries.WaitTimeout)
		}
		return err
	}
	a.logger.Debug("summary generated", "summary_id", summary.ID, "elapsed", time.Since(started))

	return exporter.NewConsoleExporter(true).ExportSummaries(a.out, []domain.Summary{*summary})
}

func (a *app) exportSummaries(ctx context.Context, output string) error {
	list, err := a.client.Summaries.List(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer f.Close()

	if err := exporter.NewExcelExporter(a.logger).ExportSummaries(f, list); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d summaries to %s\n", len(list), output)
	return nil
}
