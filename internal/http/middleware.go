package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"blog/internal/auth"
)

const CookieName = "session_id"

// withSession resolves the session cookie to a user and puts it on the
// request context. Invalid or expired sessions leave the request anonymous.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
			u, err := s.Auth.UserFromSession(r.Context(), c.Value)
			switch {
			case err == nil:
				r = r.WithContext(auth.WithUser(r.Context(), u))
			case !errors.Is(err, auth.ErrNoSession):
				s.Log.Warnw("session lookup", "err", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth sends anonymous clients to the login page, remembering where
// they were headed.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFrom(r.Context()); !ok {
			http.Redirect(w, r, "/auth/login?next="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRW struct {
	http.ResponseWriter
	status int
}

func (w *statusRW) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusRW{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.Log.Infow("request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Truncate(time.Millisecond),
		)
	})
}
