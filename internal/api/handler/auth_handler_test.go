package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/orderflow/orderflow/internal/core/domain"
)

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		signInFn: func(_ context.Context, username, password string) (*domain.User, error) {
			if username != "fish" || password != "fish01" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			u := fishUser
			return &u, nil
		},
	}
	h := NewAuthHandler(stub)

	rec, err := call(t, h.Login, http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"fish","password":"fish01"}`), nil)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		User    domain.User `json:"user"`
		Landing string      `json:"landing"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User.ID != fishUser.ID || resp.Landing != "/orders/fish" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		signInFn: func(context.Context, string, string) (*domain.User, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	_, err := call(t, h.Login, http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"fish","password":"nope"}`), nil)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	if _, err := call(t, h.Me, http.MethodGet, "/api/v1/auth/me", nil, nil); statusOf(t, err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session")
	}

	rec, err := call(t, h.Me, http.MethodGet, "/api/v1/auth/me", nil, &adminUser)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"landing":"/dashboard"`) {
		t.Fatalf("expected admin landing route, got %s", rec.Body.String())
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	rec, err := call(t, h.Logout, http.MethodPost, "/api/v1/auth/logout", nil, &fishUser)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
