package fakeapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"telegram-ai-agent/internal/cache"
	"telegram-ai-agent/internal/domain"
	"telegram-ai-agent/internal/pkg/config"
)

// activeUpdate - тело PATCH для аккаунтов и групп; отсутствующее поле не меняется.
type activeUpdate struct {
	IsActive *bool `json:"is_active"`
}

type associationResponse struct {
	Message     string             `json:"message"`
	Association domain.Association `json:"association"`
}

func (s *Server) verificationTTL() time.Duration {
	if s.cfg.Server.VerificationTTL > 0 {
		return s.cfg.Server.VerificationTTL
	}
	return config.DefaultVerificationTTL
}

// issueVerification отправляет код и запоминает новый request_id для аккаунта.
func (s *Server) issueVerification(ctx context.Context, userID int64, account domain.TelegramAccount) (string, error) {
	code, err := s.codes.SendCode(ctx, account.PhoneNumber)
	if err != nil {
		return "", statusError(http.StatusBadRequest, err.Error())
	}
	requestID := uuid.NewString()
	s.verifications.Put(requestID, cache.Verification{
		AccountID: account.ID,
		UserID:    userID,
		Phone:     account.PhoneNumber,
		Code:      code,
	}, s.verificationTTL())
	return requestID, nil
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, s.store.Accounts(user.ID))
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req domain.CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, statusError(http.StatusBadRequest, strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")))
		return
	}

	account := s.store.CreateAccount(user.ID, req)
	requestID, err := s.issueVerification(r.Context(), user.ID, account)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.log.Info("telegram account created", slog.Int64("account_id", account.ID), slog.String("phone", account.PhoneNumber))
	writeJSON(w, http.StatusCreated, domain.CreateAccountResponse{TelegramAccount: account, RequestID: requestID})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	account, err := s.store.Account(user.ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req activeUpdate
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var account domain.TelegramAccount
	if req.IsActive != nil {
		account, err = s.store.SetAccountActive(user.ID, id, *req.IsActive)
	} else {
		account, err = s.store.Account(user.ID, id)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.DeleteAccount(user.ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.verifications.DeleteAccount(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAuthenticateAccount(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	account, err := s.store.Account(user.ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	requestID, err := s.issueVerification(r.Context(), user.ID, account)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.VerificationChallenge{
		Message:   "Verification code sent to your phone",
		RequestID: requestID,
	})
}

func (s *Server) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.store.Account(user.ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req domain.VerifyCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		s.writeError(w, r, errCodeRequired)
		return
	}

	v, ok := s.verifications.Get(req.RequestID)
	if req.RequestID == "" || !ok || v.AccountID != id || v.UserID != user.ID {
		s.writeError(w, r, errInvalidRequestID)
		return
	}
	if v.Code != code {
		s.writeError(w, r, errInvalidCode)
		return
	}

	account, err := s.store.SetAccountActive(user.ID, id, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.verifications.Delete(req.RequestID)

	s.log.Info("telegram account verified", slog.Int64("account_id", id))
	writeJSON(w, http.StatusOK, domain.VerifyCodeResponse{Message: "Authentication successful", Account: account})
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, s.store.Groups(user.ID))
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req domain.JoinGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.AccountID <= 0 || strings.TrimSpace(req.GroupLink) == "" {
		s.writeError(w, r, errJoinRequired)
		return
	}
	if _, err := s.store.Account(user.ID, req.AccountID); err != nil {
		s.writeError(w, r, err)
		return
	}

	resolved, err := s.resolver.Resolve(r.Context(), req.GroupLink)
	if err != nil {
		s.writeError(w, r, statusError(http.StatusBadRequest, err.Error()))
		return
	}

	group, err := s.store.JoinGroup(user.ID, req.AccountID, resolved)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.log.Info("group joined", slog.Int64("group_id", group.ID), slog.String("name", group.Name))
	writeJSON(w, http.StatusOK, domain.JoinGroupResponse{Message: "Successfully joined group", Group: group})
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	group, err := s.store.Group(user.ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req activeUpdate
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var group domain.TelegramGroup
	if req.IsActive != nil {
		group, err = s.store.SetGroupActive(user.ID, id, *req.IsActive)
	} else {
		group, err = s.store.Group(user.ID, id)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleCollectMessages(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req domain.CollectMessagesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.AccountID <= 0 {
		s.writeError(w, r, errAccountIDRequired)
		return
	}
	if req.Limit <= 0 {
		req.Limit = domain.DefaultCollectLimit
	}

	group, err := s.store.CheckCollect(user.ID, id, req.AccountID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	msgs, err := s.messages.Messages(r.Context(), group, req.Limit)
	if err != nil {
		s.writeError(w, r, statusError(http.StatusBadRequest, err.Error()))
		return
	}
	count := s.store.SaveMessages(req.AccountID, group.ID, msgs)

	s.log.Info("messages collected", slog.Int64("group_id", group.ID), slog.Int("count", count))
	writeJSON(w, http.StatusOK, domain.CollectMessagesResponse{
		Message: fmt.Sprintf("Successfully collected %d new messages", count),
		Count:   count,
	})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var groupID int64
	if raw := r.URL.Query().Get("group_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			s.writeError(w, r, statusError(http.StatusBadRequest, "Invalid group_id"))
			return
		}
		groupID = id
	}
	writeJSON(w, http.StatusOK, s.store.Messages(user.ID, groupID))
}

func (s *Server) handleListAssociations(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, s.store.Associations(user.ID))
}

func (s *Server) handleToggleAssociation(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	assoc, err := s.store.ToggleAssociation(user.ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	state := "inactive"
	if assoc.IsActive {
		state = "active"
	}
	writeJSON(w, http.StatusOK, associationResponse{
		Message:     "Association is now " + state,
		Association: assoc,
	})
}
