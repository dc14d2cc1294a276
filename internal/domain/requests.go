package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrValidation возвращается, если запрос не прошел проверку до отправки на сервер.
var ErrValidation = errors.New("validation failed")

const (
	// DefaultCollectLimit - количество сообщений, собираемых за один запуск по умолчанию.
	DefaultCollectLimit = 100
	// DefaultSummaryDays - окно сводки в днях по умолчанию.
	DefaultSummaryDays = 7
	// MaxSummaryDays ограничивает окно сводки сверху.
	MaxSummaryDays = 365

	MinRating = 1
	MaxRating = 5
)

var (
	phoneRegexp  = regexp.MustCompile(`^\+[0-9]{7,15}$`)
	digitsRegexp = regexp.MustCompile(`^[0-9]+$`)
)

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// LoginRequest - тело запроса входа.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate проверяет обязательные поля.
func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" || r.Password == "" {
		return validationErrorf("username and password are required")
	}
	return nil
}

// RegisterRequest - тело запроса регистрации.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate проверяет обязательные поля.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return validationErrorf("username, email and password are required")
	}
	if !strings.Contains(r.Email, "@") {
		return validationErrorf("email %q is malformed", r.Email)
	}
	return nil
}

// AuthResponse - ответ на вход и регистрацию.
type AuthResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// CreateAccountRequest - учетные данные для подключения аккаунта Telegram.
type CreateAccountRequest struct {
	PhoneNumber string `json:"phone_number"`
	APIID       string `json:"api_id"`
	APIHash     string `json:"api_hash"`
}

// Validate проверяет формат телефона и учетных данных API.
func (r CreateAccountRequest) Validate() error {
	if !phoneRegexp.MatchString(r.PhoneNumber) {
		return validationErrorf("phone_number must look like +15551234567, got %q", r.PhoneNumber)
	}
	if !digitsRegexp.MatchString(r.APIID) {
		return validationErrorf("api_id must be numeric")
	}
	if r.APIHash == "" || len(r.APIHash) > 64 {
		return validationErrorf("api_hash must be 1..64 characters")
	}
	return nil
}

// CreateAccountResponse - созданный аккаунт вместе с request_id ожидающей верификации.
type CreateAccountResponse struct {
	TelegramAccount
	RequestID string `json:"request_id"`
}

// VerificationChallenge - ответ на повторную отправку кода.
type VerificationChallenge struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// VerifyCodeRequest - тело запроса подтверждения кода.
type VerifyCodeRequest struct {
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

// Validate проверяет, что код и request_id заданы.
func (r VerifyCodeRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return validationErrorf("verification code is required")
	}
	if r.RequestID == "" {
		return validationErrorf("request_id is required")
	}
	return nil
}

// VerifyCodeResponse - ответ на успешное подтверждение.
type VerifyCodeResponse struct {
	Message string          `json:"message"`
	Account TelegramAccount `json:"account"`
}

// ActiveUpdate - частичное обновление флага активности.
type ActiveUpdate struct {
	IsActive bool `json:"is_active"`
}

// JoinGroupRequest - тело запроса вступления в группу.
type JoinGroupRequest struct {
	AccountID int64  `json:"account_id"`
	GroupLink string `json:"group_link"`
}

// Validate проверяет обязательные поля.
func (r JoinGroupRequest) Validate() error {
	if r.AccountID <= 0 || strings.TrimSpace(r.GroupLink) == "" {
		return validationErrorf("account_id and group_link are required")
	}
	return nil
}

// JoinGroupResponse - ответ на вступление в группу.
type JoinGroupResponse struct {
	Message string        `json:"message"`
	Group   TelegramGroup `json:"group"`
}

// CollectMessagesRequest - тело запроса сбора сообщений.
type CollectMessagesRequest struct {
	AccountID int64 `json:"account_id"`
	Limit     int   `json:"limit"`
}

// Validate проверяет обязательные поля.
func (r CollectMessagesRequest) Validate() error {
	if r.AccountID <= 0 {
		return validationErrorf("account_id is required")
	}
	if r.Limit <= 0 {
		return validationErrorf("limit must be positive")
	}
	return nil
}

// CollectMessagesResponse - результат сбора сообщений.
type CollectMessagesResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// GenerateSummaryRequest - тело запроса генерации сводки.
type GenerateSummaryRequest struct {
	GroupID int64 `json:"group_id"`
	Days    int   `json:"days"`
}

// Validate проверяет идентификатор группы и окно.
func (r GenerateSummaryRequest) Validate() error {
	if r.GroupID <= 0 {
		return validationErrorf("group_id is required")
	}
	if r.Days <= 0 || r.Days > MaxSummaryDays {
		return validationErrorf("days must be within 1..%d", MaxSummaryDays)
	}
	return nil
}

// FeedbackRequest - тело запроса оценки сводки.
type FeedbackRequest struct {
	Summary int64  `json:"summary"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Validate проверяет ссылку на сводку и диапазон оценки.
func (r FeedbackRequest) Validate() error {
	if r.Summary <= 0 {
		return validationErrorf("summary is required")
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return validationErrorf("rating must be within %d..%d", MinRating, MaxRating)
	}
	return nil
}
