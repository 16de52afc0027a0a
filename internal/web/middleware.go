package web

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/camuig/gold-ledger/internal/auth"
	"github.com/camuig/gold-ledger/internal/storage"
)

type ctxKey int

const userKey ctxKey = iota

func currentUser(r *http.Request) *storage.User {
	u, _ := r.Context().Value(userKey).(*storage.User)
	return u
}

// authed resolves the bearer token to its owner before calling next.
func (s *Server) authed(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			s.writeError(w, auth.ErrUnauthenticated)
			return
		}
		user, err := s.deps.Auth.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			s.writeError(w, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// admin requires X-Admin-Key to match the configured key. With no key configured
// the admin routes are closed.
func (s *Server) admin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Admin-Key")
		if !s.config.AdminEnabled() ||
			subtle.ConstantTimeCompare([]byte(key), []byte(s.config.Auth.AdminKey)) != 1 {
			writeJSON(w, http.StatusForbidden, "无权访问", nil)
			return
		}
		next(w, r)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler", "path", r.URL.Path, "panic", fmt.Sprint(rec))
				writeJSON(w, http.StatusInternalServerError, "服务器内部错误", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
