package dashboard

import (
	"context"
	"errors"
	"sync"

	"telegram-ai-agent/internal/domain"
)

// Step - шаг мастера подключения аккаунта.
type Step string

const (
	StepCredentials  Step = "credentials"
	StepVerification Step = "verification"
)

// ErrNoPendingVerification возвращается, если код запрошен вне шага верификации.
var ErrNoPendingVerification = errors.New("no pending verification: submit credentials first")

// AccountForm - сериализуемое состояние мастера.
type AccountForm struct {
	Step        Step   `json:"step" yaml:"step"`
	PhoneNumber string `json:"phone_number,omitempty" yaml:"phone_number,omitempty"`
	APIID       string `json:"api_id,omitempty" yaml:"api_id,omitempty"`
	AccountID   int64  `json:"account_id,omitempty" yaml:"account_id,omitempty"`
	RequestID   string `json:"request_id,omitempty" yaml:"request_id,omitempty"`
}

// AccountFlow ведет двухшаговое подключение аккаунта: учетные данные, затем код.
//
// Reset не отменяет запросы в полете: их результат просто не попадает в форму.
type AccountFlow struct {
	accounts AccountAPI

	mu   sync.Mutex
	form AccountForm
	gen  uint64
}

// NewAccountFlow создает мастер на шаге ввода учетных данных.
func NewAccountFlow(accounts AccountAPI) *AccountFlow {
	return &AccountFlow{
		accounts: accounts,
		form:     AccountForm{Step: StepCredentials},
	}
}

// Form возвращает копию текущего состояния.
func (f *AccountFlow) Form() AccountForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Restore восстанавливает сохраненное состояние (например, между запусками CLI).
func (f *AccountFlow) Restore(form AccountForm) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if form.Step == "" {
		form.Step = StepCredentials
	}
	f.gen++
	f.form = form
}

// snapshot возвращает форму и поколение для проверки после вызова API.
func (f *AccountFlow) snapshot() (AccountForm, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form, f.gen
}

// apply меняет форму, только если ее не сбросили во время запроса.
func (f *AccountFlow) apply(gen uint64, fn func(*AccountForm)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return false
	}
	fn(&f.form)
	return true
}

// SubmitCredentials создает аккаунт и переводит мастер на шаг верификации.
func (f *AccountFlow) SubmitCredentials(ctx context.Context, req domain.CreateAccountRequest) (*domain.CreateAccountResponse, error) {
	_, gen := f.snapshot()

	resp, err := f.accounts.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	f.apply(gen, func(form *AccountForm) {
		*form = AccountForm{
			Step:        StepVerification,
			PhoneNumber: resp.PhoneNumber,
			APIID:       resp.APIID,
			AccountID:   resp.ID,
			RequestID:   resp.RequestID,
		}
	})
	return resp, nil
}

// Resend запрашивает новый код; предыдущий request_id становится недействительным.
func (f *AccountFlow) Resend(ctx context.Context) error {
	form, gen := f.snapshot()
	if form.Step != StepVerification {
		return ErrNoPendingVerification
	}

	challenge, err := f.accounts.Authenticate(ctx, form.AccountID)
	if err != nil {
		return err
	}

	f.apply(gen, func(form *AccountForm) {
		form.RequestID = challenge.RequestID
	})
	return nil
}

// SubmitCode подтверждает код и возвращает мастер в исходное состояние.
func (f *AccountFlow) SubmitCode(ctx context.Context, code string) (*domain.TelegramAccount, error) {
	form, gen := f.snapshot()
	if form.Step != StepVerification {
		return nil, ErrNoPendingVerification
	}

	account, err := f.accounts.VerifyCode(ctx, form.AccountID, code, form.RequestID)
	if err != nil {
		return nil, err
	}

	f.apply(gen, func(form *AccountForm) {
		*form = AccountForm{Step: StepCredentials}
	})
	return account, nil
}

// Reset закрывает мастер.
func (f *AccountFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.form = AccountForm{Step: StepCredentials}
}
