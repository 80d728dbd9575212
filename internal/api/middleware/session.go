package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/orderflow/orderflow/internal/core/domain"
	"github.com/orderflow/orderflow/internal/core/ports"
	"github.com/orderflow/orderflow/internal/core/session"
)

const (
	ctxKeyBrowserID = "browser_id"
	ctxKeySession   = "session_store"
	ctxKeyUser      = "current_user"
	ctxKeyConfig    = "session_config"
)

// SessionConfig configures the browser-scope cookie.
type SessionConfig struct {
	Secret     []byte
	CookieName string
	TTL        time.Duration
	Secure     bool
	Storage    ports.SessionStorageFactory
}

// Session resolves the browser scope from a signed cookie, binds the session
// store of that scope to the request and loads the current user. A missing,
// forged or expired cookie starts a fresh scope.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			browserID, expiresAt, err := parseBrowserCookie(c, cfg)
			if err != nil || time.Until(expiresAt) < cfg.TTL/2 {
				if err != nil {
					browserID = uuid.NewString()
				}
				if err := issueBrowserCookie(c, cfg, browserID); err != nil {
					return err
				}
			}

			store := session.NewStore(cfg.Storage.Scope(browserID))
			c.Set(ctxKeyConfig, cfg)
			c.Set(ctxKeyBrowserID, browserID)
			c.Set(ctxKeySession, store)
			if user, ok := store.GetCurrentUser(c.Request().Context()); ok {
				c.Set(ctxKeyUser, *user)
			}

			return next(c)
		}
	}
}

func parseBrowserCookie(c echo.Context, cfg SessionConfig) (string, time.Time, error) {
	cookie, err := c.Cookie(cfg.CookieName)
	if err != nil {
		return "", time.Time{}, err
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return cfg.Secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", time.Time{}, errors.New("invalid browser cookie")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", time.Time{}, errors.New("invalid browser id")
	}
	if claims.ExpiresAt == nil {
		return "", time.Time{}, errors.New("browser cookie without expiry")
	}
	return claims.Subject, claims.ExpiresAt.Time, nil
}

func issueBrowserCookie(c echo.Context, cfg SessionConfig, browserID string) error {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   browserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(cfg.TTL),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// RenewSession moves the request to a fresh browser scope and returns its
// store. The user of the previous scope is cleared. Call it before storing a
// newly signed-in user so a cookie planted before sign-in never carries the
// session.
func RenewSession(c echo.Context) (*session.Store, error) {
	cfg, ok := c.Get(ctxKeyConfig).(SessionConfig)
	if !ok {
		return nil, errors.New("session middleware not installed")
	}
	if old := SessionStore(c); old != nil {
		_ = old.ClearCurrentUser(c.Request().Context())
	}

	browserID := uuid.NewString()
	dropCookie(c.Response().Header(), cfg.CookieName)
	if err := issueBrowserCookie(c, cfg, browserID); err != nil {
		return nil, err
	}

	store := session.NewStore(cfg.Storage.Scope(browserID))
	c.Set(ctxKeyBrowserID, browserID)
	c.Set(ctxKeySession, store)
	return store, nil
}

// dropCookie removes a Set-Cookie for name that was already queued on h.
func dropCookie(h http.Header, name string) {
	prefix := name + "="
	var kept []string
	for _, v := range h.Values(echo.HeaderSetCookie) {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h.Del(echo.HeaderSetCookie)
	for _, v := range kept {
		h.Add(echo.HeaderSetCookie, v)
	}
}

// CurrentUser returns the user loaded for this request, if any.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	u, ok := c.Get(ctxKeyUser).(domain.User)
	if !ok {
		return nil, false
	}
	return &u, true
}

// SessionStore returns the session store bound to this request's browser.
func SessionStore(c echo.Context) *session.Store {
	s, _ := c.Get(ctxKeySession).(*session.Store)
	return s
}

// SetCurrentUser updates the request-local copy after sign-in or sign-out.
func SetCurrentUser(c echo.Context, u *domain.User) {
	if u == nil {
		c.Set(ctxKeyUser, nil)
		return
	}
	c.Set(ctxKeyUser, *u)
}
