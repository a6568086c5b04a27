package session

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type contextKey string

const sessionKey contextKey = "session"

// CookieName is the name of the session cookie.
const CookieName = "surgprep_session"

type MiddlewareConfig struct {
	Store  *Store
	Signer *Signer
	Secure bool
	// Now defaults to time.Now.
	Now    func() time.Time
}

// Middleware attaches the caller's session to the request, starting a new
// one when the cookie is missing, tampered with, expired, or names a
// session that no longer exists. The cookie is re-issued on every request
// so idle expiry slides.
func Middleware(cfg MiddlewareConfig, logger zerolog.Logger) echo.MiddlewareFunc {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			t := now()
			var sess *Session
			if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
				if id, err := cfg.Signer.Parse(ck.Value, t); err == nil {
					sess, _ = cfg.Store.Get(id, t)
				}
			}
			if sess == nil {
				sess = cfg.Store.Create(t)
				rid, _ := c.Get("request_id").(string)
				logger.Debug().Str("request_id", rid).Str("session_id", sess.ID.String()).Msg("session started")
			}

			token, err := cfg.Signer.Issue(sess.ID, t)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
			}
			c.SetCookie(&http.Cookie{
				Name:     CookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
				Expires:  t.Add(cfg.Signer.ttl),
			})

			c.Set(string(sessionKey), sess)
			c.SetRequest(c.Request().WithContext(NewContext(c.Request().Context(), sess)))
			return next(c)
		}
	}
}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}

// FromEcho returns the session attached by Middleware.
func FromEcho(c echo.Context) (*Session, error) {
	if s, ok := c.Get(string(sessionKey)).(*Session); ok {
		return s, nil
	}
	if s, ok := FromContext(c.Request().Context()); ok {
		return s, nil
	}
	return nil, echo.NewHTTPError(http.StatusInternalServerError, "no session")
}
