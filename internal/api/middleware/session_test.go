package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/orderflow/orderflow/internal/core/domain"
	"github.com/orderflow/orderflow/internal/core/session"
)

const testCookie = "orderflow_sid"

func testSessionConfig(storage *session.MemoryStorage) SessionConfig {
	return SessionConfig{
		Secret:     []byte("test-secret"),
		CookieName: testCookie,
		TTL:        time.Hour,
		Storage:    storage,
	}
}

// serve runs one request through the middleware and reports what the
// handler saw.
func serve(t *testing.T, cfg SessionConfig, cookie *http.Cookie) (*httptest.ResponseRecorder, string, *domain.User) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var (
		browserID string
		user      *domain.User
	)
	h := Session(cfg)(func(c echo.Context) error {
		browserID, _ = c.Get(ctxKeyBrowserID).(string)
		user, _ = CurrentUser(c)
		if SessionStore(c) == nil {
			t.Fatalf("expected session store on context")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, browserID, user
}

func responseCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == testCookie {
			return ck
		}
	}
	return nil
}

func TestSession_IssuesCookieAndLoadsUser(t *testing.T) {
	storage := session.NewMemoryStorage()
	cfg := testSessionConfig(storage)

	rec, browserID, user := serve(t, cfg, nil)
	if user != nil {
		t.Fatalf("expected no user on a fresh browser")
	}
	cookie := responseCookie(rec)
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("expected an http-only browser cookie")
	}

	fish := domain.User{ID: "u1", Username: "fish", Role: domain.RoleFish}
	if err := session.NewStore(storage.Scope(browserID)).SetCurrentUser(context.Background(), fish); err != nil {
		t.Fatalf("SetCurrentUser: %v", err)
	}

	rec, sameID, user := serve(t, cfg, cookie)
	if sameID != browserID {
		t.Fatalf("expected browser id %q to be reused, got %q", browserID, sameID)
	}
	if user == nil || user.ID != fish.ID {
		t.Fatalf("expected fish user, got %+v", user)
	}
	if responseCookie(rec) != nil {
		t.Fatalf("fresh cookie must not be reissued")
	}
}

func TestSession_ForgedCookieStartsFreshScope(t *testing.T) {
	storage := session.NewMemoryStorage()
	cfg := testSessionConfig(storage)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "0b6c1a52-8f40-4d33-9d87-4a0f7f1c2b11",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	rec, browserID, _ := serve(t, cfg, &http.Cookie{Name: testCookie, Value: forged})
	if browserID == "0b6c1a52-8f40-4d33-9d87-4a0f7f1c2b11" {
		t.Fatalf("forged browser id must not be trusted")
	}
	if responseCookie(rec) == nil {
		t.Fatalf("expected a new cookie")
	}
}

func TestRenewSession_MovesSignInToNewScope(t *testing.T) {
	storage := session.NewMemoryStorage()
	cfg := testSessionConfig(storage)

	rec, planted, _ := serve(t, cfg, nil)
	plantedCookie := responseCookie(rec)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(plantedCookie)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)

	pork := domain.User{ID: "u2", Username: "pork", Role: domain.RolePork}
	var renewed string
	h := Session(cfg)(func(c echo.Context) error {
		store, err := RenewSession(c)
		if err != nil {
			return err
		}
		renewed, _ = c.Get(ctxKeyBrowserID).(string)
		if SessionStore(c) != store {
			t.Fatalf("renewed store not bound to the request")
		}
		return store.SetCurrentUser(c.Request().Context(), pork)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if renewed == "" || renewed == planted {
		t.Fatalf("browser id not rotated: planted %q renewed %q", planted, renewed)
	}
	if _, ok := session.NewStore(storage.Scope(planted)).GetCurrentUser(context.Background()); ok {
		t.Fatalf("planted scope must not hold the signed-in user")
	}
	if u, ok := session.NewStore(storage.Scope(renewed)).GetCurrentUser(context.Background()); !ok || u.ID != pork.ID {
		t.Fatalf("renewed scope = %+v, %v", u, ok)
	}

	cookie := responseCookie(rec)
	if cookie == nil {
		t.Fatalf("expected a renewed cookie")
	}
	_, sameID, user := serve(t, cfg, cookie)
	if sameID != renewed || user == nil || user.ID != pork.ID {
		t.Fatalf("renewed cookie resolves to %q / %+v", sameID, user)
	}
}

func TestRenewSession_ReplacesCookieIssuedInSameRequest(t *testing.T) {
	cfg := testSessionConfig(session.NewMemoryStorage())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)

	h := Session(cfg)(func(c echo.Context) error {
		_, err := RenewSession(c)
		return err
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	n := 0
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == testCookie {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected one browser cookie, got %d", n)
	}
}

func TestRenewSession_RequiresMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), httptest.NewRecorder())
	if _, err := RenewSession(c); err == nil {
		t.Fatal("expected an error without the session middleware")
	}
}
