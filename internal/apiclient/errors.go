package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized - сессия отсутствует или истекла (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden - нет доступа к ресурсу (HTTP 403).
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound - ресурс не найден (HTTP 404).
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequestID - request_id не совпадает с выданным при отправке кода.
	ErrInvalidRequestID = errors.New("stale or mismatched verification request id")
	// ErrJobFailed - задача генерации сводки завершилась ошибкой.
	ErrJobFailed = errors.New("summary job failed")
)

// CodeInvalidRequestID - машинный код ошибки несовпадения request_id.
const CodeInvalidRequestID = "invalid_request_id"

const maxErrorBody = 64 << 10

// APIError - ответ бэкенда со статусом вне диапазона 2xx.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
	Body       []byte

	// fromBody - Message пришло из тела ответа, а не из текста HTTP-статуса.
	fromBody bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is позволяет сравнивать ошибку с ErrUnauthorized, ErrForbidden, ErrNotFound и ErrInvalidRequestID.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrInvalidRequestID:
		return e.Code == CodeInvalidRequestID || strings.EqualFold(e.Message, "Invalid request ID")
	}
	return false
}

// errorBody - известные формы тела ошибки бэкенда.
type errorBody struct {
	Error   string `json:"error"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func newAPIError(method, path string, resp *http.Response) *APIError {
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr.Body = body

	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		apiErr.Code = eb.Code
		switch {
		case eb.Error != "":
			apiErr.Message = eb.Error
		case eb.Detail != "":
			apiErr.Message = eb.Detail
		case eb.Message != "":
			apiErr.Message = eb.Message
		}
	}
	apiErr.fromBody = apiErr.Message != ""
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// ServerMessage возвращает сообщение, которое бэкенд передал в теле ошибки.
// Для ответа без тела (например, 502 от прокси) ok == false.
func ServerMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.fromBody {
		return apiErr.Message, true
	}
	return "", false
}
