package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hnrobert/lumdash/internal/auth"
	"github.com/hnrobert/lumdash/internal/authstate"
	"github.com/hnrobert/lumdash/internal/logger"
)

type ctxKey string

const ctxSubject ctxKey = "subject"

// withAuthContext resolves the request's token to an auth state and stores
// both the state and the raw subject (for live watches) in the context.
func (a *App) withAuthContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := a.readSubject(r)
		ctx := context.WithValue(r.Context(), ctxSubject, subject)
		ctx = authstate.WithState(ctx, authstate.Resolve(a.dir, subject))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *App) readSubject(r *http.Request) string {
	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		if cl, err := auth.ParseHS256(a.secret, c.Value); err == nil {
			return cl.Subject
		}
	}
	authz := r.Header.Get("Authorization")
	if authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if cl, err := auth.ParseHS256(a.secret, strings.TrimSpace(parts[1])); err == nil {
				return cl.Subject
			}
		}
	}
	return ""
}

func subjectFrom(r *http.Request) string {
	if s, ok := r.Context().Value(ctxSubject).(string); ok {
		return s
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		logger.Info("%s %s %d %s id=%s ip=%s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond), id, remoteIP(r))
	})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
