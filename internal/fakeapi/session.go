package fakeapi

import (
	"context"
	"net/http"

	"telegram-ai-agent/internal/domain"
)

// SessionCookieName - имя cookie сессии, как у Django.
const SessionCookieName = "sessionid"

type contextKey string

const userContextKey contextKey = "user"

// loadSession кладет пользователя сессии в контекст запроса, если cookie действительна.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		cookie, err := req.Cookie(SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, req)
			return
		}

		user, ok := s.store.SessionUser(cookie.Value)
		if !ok {
			next.ServeHTTP(w, req)
			return
		}

		ctx := context.WithValue(req.Context(), userContextKey, &user)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// requireUser отвечает 401, если в контексте нет пользователя.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if userFromContext(req.Context()) == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": detailNotAuthenticated})
			return
		}
		next.ServeHTTP(w, req)
	})
}

func userFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		MaxAge:   14 * 24 * 3600,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
