// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/taurus/internal/httputil"
	"github.com/pdiddy/taurus/internal/logger"
	"github.com/pdiddy/taurus/internal/session"
)

// CookieName is the session cookie.
const CookieName = "taurus_session"

type ctxKey struct{}

func sessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(ctxKey{}).(*session.Session)
	return s
}

// requestLogger puts base and the request id on the request context so
// handlers and the pipeline can log with logger.C.
func requestLogger(base *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.WithLogger(r.Context(), base)
			ctx = logger.WithRequest(ctx, chimw.GetReqID(ctx))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accessLog logs method, path, status, elapsed, and bytes written.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		logger.C(r.Context()).Info().
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("bytes", ww.BytesWritten()).
			Msg("request done")
	})
}

// withSession resolves the session cookie. A missing or stale cookie gets a
// transient unauthenticated session; it is stored, and the cookie issued, only
// when it logs in.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *session.Session
		if c, err := r.Cookie(CookieName); err == nil {
			sess, _ = s.deps.Sessions.Get(c.Value)
		}
		if sess == nil {
			sess = s.deps.Sessions.Create()
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, sess)
		ctx = logger.WithSession(ctx, sess.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.deps.Config.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// requireAuth rejects requests from sessions that have not passed the gate.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r.Context())
		if sess == nil || !sess.Authenticated() {
			httputil.RespondError(w, r, http.StatusUnauthorized, "locked", session.MsgLocked)
			return
		}
		next.ServeHTTP(w, r)
	})
}
