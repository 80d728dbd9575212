package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orderflow/orderflow/internal/api/metrics"
	"github.com/orderflow/orderflow/internal/api/middleware"
	"github.com/orderflow/orderflow/internal/core/domain"
	"github.com/orderflow/orderflow/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type authResponse struct {
	User    *domain.User `json:"user"`
	Landing string       `json:"landing,omitempty"`
}

// Login verifies the credentials and stores the user in the browser session.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	user, err := h.authService.SignIn(c.Request().Context(), req.Username, req.Password)
	metrics.RecordSignIn(err == nil)
	if err != nil {
		return err
	}

	store, err := middleware.RenewSession(c)
	if err != nil {
		return fmt.Errorf("renew session: %w", err)
	}
	if err := store.SetCurrentUser(c.Request().Context(), *user); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	middleware.SetCurrentUser(c, user)

	return c.JSON(http.StatusOK, authResponse{User: user, Landing: domain.LandingRouteFor(*user)})
}

// Logout clears the browser session.
//
// @Summary      Sign out
// @Tags         auth
// @Success      204
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	store, err := sessionStore(c)
	if err != nil {
		return err
	}
	if err := h.authService.SignOut(c.Request().Context(), store); err != nil {
		return err
	}
	middleware.SetCurrentUser(c, nil)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the signed-in user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: &user, Landing: domain.LandingRouteFor(user)})
}
