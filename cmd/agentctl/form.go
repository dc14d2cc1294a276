package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v2"

	"telegram-ai-agent/internal/dashboard"
)

// accountFormPath - файл с незавершенным подключением аккаунта рядом с файлом сессии.
func (a *app) accountFormPath() string {
	return a.cfg.API.SessionFile + ".account.yml"
}

// loadAccountForm восстанавливает мастер подключения, прерванный в прошлом запуске.
func (a *app) loadAccountForm() error {
	data, err := os.ReadFile(a.accountFormPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read account form: %w", err)
	}

	var form dashboard.AccountForm
	if err := yaml.Unmarshal(data, &form); err != nil {
		return fmt.Errorf("failed to parse account form: %w", err)
	}
	a.dash.AccountFlow.Restore(form)
	return nil
}

// saveAccountForm сохраняет мастер, пока он ждет код; на шаге учетных данных файл удаляется.
func (a *app) saveAccountForm() error {
	form := a.dash.AccountFlow.Form()
	if form.Step != dashboard.StepVerification {
		return a.clearAccountForm()
	}

	data, err := yaml.Marshal(form)
	if err != nil {
		return fmt.Errorf("failed to encode account form: %w", err)
	}
	if err := os.WriteFile(a.accountFormPath(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write account form: %w", err)
	}
	return nil
}

func (a *app) clearAccountForm() error {
	err := os.Remove(a.accountFormPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
