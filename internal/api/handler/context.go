package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orderflow/orderflow/internal/api/middleware"
	"github.com/orderflow/orderflow/internal/core/domain"
	"github.com/orderflow/orderflow/internal/core/session"
)

// currentUser returns the user the session middleware loaded for this
// request, or a 401.
func currentUser(c echo.Context) (domain.User, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.User{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return *u, nil
}

// sessionStore fails fast when the session middleware is not mounted.
func sessionStore(c echo.Context) (*session.Store, error) {
	store := middleware.SessionStore(c)
	if store == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	return store, nil
}

// departmentParam resolves the :department path parameter.
func departmentParam(c echo.Context) (domain.Department, error) {
	d, ok := domain.ParseDepartment(c.Param("department"))
	if !ok {
		return "", echo.NewHTTPError(http.StatusNotFound, "unknown department")
	}
	return d, nil
}
