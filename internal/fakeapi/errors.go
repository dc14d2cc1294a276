package fakeapi

import (
	"fmt"
	"net/http"
)

// StatusError - ошибка хранилища с HTTP-статусом и текстом для поля "error".
type StatusError struct {
	Status  int
	Message string
	Code    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func statusError(status int, message string) *StatusError {
	return &StatusError{Status: status, Message: message}
}

// Тексты ошибок совпадают с тем, что отдает боевой бэкенд.
var (
	errCredentialsRequired  = statusError(http.StatusBadRequest, "Username and password are required")
	errRegistrationRequired = statusError(http.StatusBadRequest, "Username, email and password are required")
	errUsernameTaken        = statusError(http.StatusBadRequest, "Username already exists")
	errEmailTaken           = statusError(http.StatusBadRequest, "Email already exists")
	errInvalidCredentials   = statusError(http.StatusUnauthorized, "Invalid credentials")
	errAccountNotFound      = statusError(http.StatusNotFound, "Account not found")
	errAccountNotActive     = statusError(http.StatusBadRequest, "Account not authenticated")
	errJoinRequired         = statusError(http.StatusBadRequest, "Account ID and group link are required")
	errAccountIDRequired    = statusError(http.StatusBadRequest, "Account ID is required")
	errNotAssociated        = statusError(http.StatusBadRequest, "Account is not associated with this group")
	errNotFound             = statusError(http.StatusNotFound, "Not found.")
	errGroupIDRequired      = statusError(http.StatusBadRequest, "Group ID is required")
	errNoGroupAccess        = statusError(http.StatusForbidden, "You do not have access to this group")
	errGroupNotFound        = statusError(http.StatusNotFound, "Group not found")
	errSummaryIDRequired    = statusError(http.StatusBadRequest, "Summary ID is required")
	errSummaryNotFound      = statusError(http.StatusNotFound, "Summary not found")
	errFeedbackExists       = statusError(http.StatusBadRequest, "You have already provided feedback for this summary")
	errRatingOutOfRange     = statusError(http.StatusBadRequest, "Rating must be between 1 and 5")
	errCodeRequired         = statusError(http.StatusBadRequest, "Verification code is required")
	errInvalidCode          = &StatusError{Status: http.StatusBadRequest, Message: "Invalid verification code", Code: "invalid_code"}
	errInvalidRequestID     = &StatusError{Status: http.StatusBadRequest, Message: "Invalid request ID", Code: "invalid_request_id"}
	errJobNotFound          = statusError(http.StatusNotFound, "Job not found")
	errMalformedBody        = statusError(http.StatusBadRequest, "Malformed request body")
)

const (
	msgNoMessagesInPeriod  = "No messages found for the specified period"
	detailNotAuthenticated = "Authentication credentials were not provided."
)
