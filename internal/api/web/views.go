package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/orderflow/orderflow/internal/api/metrics"
	"github.com/orderflow/orderflow/internal/api/middleware"
	"github.com/orderflow/orderflow/internal/core/domain"
	"github.com/orderflow/orderflow/internal/core/ports"
)

const (
	msgSignInFailed = "Invalid username or password."
	msgNotFound     = "That order no longer exists."
	msgStoreFailed  = "The order could not be saved. Please try again."
	msgLoadFailed   = "Orders could not be loaded. Please try again."
	msgResubmitted  = "That order was already submitted."
)

// Handler serves the HTML pages. Every page reads the user loaded by the
// session middleware and runs a route guard before touching the store.
type Handler struct {
	auth        ports.AuthService
	orders      ports.OrderService
	submissions ports.SubmissionGuard
	log         zerolog.Logger
}

// NewHandler builds the page handler. A nil submissions guard turns off
// duplicate detection for the new-order form.
func NewHandler(auth ports.AuthService, orders ports.OrderService, submissions ports.SubmissionGuard, log zerolog.Logger) *Handler {
	return &Handler{auth: auth, orders: orders, submissions: submissions, log: log}
}

// Register mounts the page routes on g.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/", h.Landing)
	g.GET(domain.RouteSignIn, h.LoginPage)
	g.POST(domain.RouteSignIn, h.Login)
	g.POST("/logout", h.Logout)
	g.GET(domain.RouteDashboard, h.Dashboard)
	g.GET(domain.RouteNewOrder, h.NewOrder)
	g.POST("/orders", h.CreateOrder)
	g.GET("/orders/edit/:id", h.EditOrder)
	g.POST("/orders/edit/:id", h.UpdateOrder)
	g.GET("/orders/:department", h.DepartmentOrders)
	g.POST("/orders/:id/advance", h.AdvanceOrder)
	g.GET("/orders/:id/delete", h.ConfirmDelete)
	g.POST("/orders/:id/delete", h.DeleteOrder)
}

type page struct {
	Title string
	User  *domain.User
	Nav   []domain.NavLink
	Flash string
	Error string
	Data  any
}

func (h *Handler) render(c echo.Context, code int, name string, user *domain.User, p page) error {
	p.User = user
	if user != nil {
		p.Nav = domain.NavLinksFor(*user)
	}
	if p.Flash == "" {
		p.Flash = takeFlash(c)
	}
	return c.Render(code, name, p)
}

func redirect(c echo.Context, to string) error {
	return c.Redirect(http.StatusSeeOther, to)
}

// guard applies decide to the current user. ok is false when the response
// has already been written as a redirect.
func guard(c echo.Context, decide func(*domain.User) domain.Decision) (*domain.User, bool, error) {
	user, _ := middleware.CurrentUser(c)
	d := decide(user)
	if !d.Allow {
		return nil, false, redirect(c, d.Redirect)
	}
	return user, true, nil
}

// returnTarget keeps post-mutation redirects on this site.
func returnTarget(c echo.Context, user domain.User) string {
	r := c.FormValue("return")
	if r == "" {
		r = c.QueryParam("return")
	}
	if strings.HasPrefix(r, "/") && !strings.HasPrefix(r, "//") {
		return r
	}
	return domain.LandingRouteFor(user)
}

// orderFailure turns a service error into a redirect for the cases the
// views handle; other errors are returned to the central handler.
func (h *Handler) orderFailure(c echo.Context, user domain.User, op string, err error) error {
	metrics.RecordOrderError(op, err)
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		setFlash(c, msgNotFound)
		return redirect(c, domain.LandingRouteFor(user))
	case errors.Is(err, domain.ErrForbidden):
		return redirect(c, domain.LandingRouteFor(user))
	case errors.Is(err, domain.ErrInvalidTransition):
		setFlash(c, "That order is already complete.")
		return redirect(c, returnTarget(c, user))
	case errors.Is(err, domain.ErrPersistence):
		h.log.Warn().Err(err).Str("op", op).Msg("order store rejected request")
		setFlash(c, msgStoreFailed)
		return redirect(c, returnTarget(c, user))
	}
	return err
}

// --- Authentication ---

func (h *Handler) Landing(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return redirect(c, domain.RouteSignIn)
	}
	return redirect(c, domain.LandingRouteFor(*user))
}

type loginView struct {
	Username string
}

func (h *Handler) LoginPage(c echo.Context) error {
	if user, ok := middleware.CurrentUser(c); ok {
		return redirect(c, domain.LandingRouteFor(*user))
	}
	return h.render(c, http.StatusOK, "login", nil, page{Title: "Sign in", Data: loginView{}})
}

func (h *Handler) Login(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	user, err := h.auth.SignIn(c.Request().Context(), username, password)
	metrics.RecordSignIn(err == nil)
	if err != nil {
		return h.render(c, http.StatusUnauthorized, "login", nil, page{
			Title: "Sign in",
			Error: msgSignInFailed,
			Data:  loginView{Username: username},
		})
	}

	store, err := middleware.RenewSession(c)
	if err == nil {
		err = store.SetCurrentUser(c.Request().Context(), *user)
	}
	if err != nil {
		h.log.Error().Err(err).Msg("failed to persist session")
		return h.render(c, http.StatusInternalServerError, "login", nil, page{
			Title: "Sign in",
			Error: "Your session could not be saved. Please try again.",
			Data:  loginView{Username: username},
		})
	}
	return redirect(c, domain.LandingRouteFor(*user))
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.auth.SignOut(c.Request().Context(), middleware.SessionStore(c)); err != nil {
		h.log.Warn().Err(err).Msg("failed to clear session")
	}
	middleware.SetCurrentUser(c, nil)
	return redirect(c, domain.RouteSignIn)
}

// --- Lists ---

type filterView struct {
	Action         string
	Filter         domain.OrderFilter
	ShowDepartment bool
	Statuses       []domain.OrderStatus
	Departments    []domain.Department
}

type tableView struct {
	Orders []domain.Order
	Return string
}

type dashboardView struct {
	Stats   domain.OrderStats
	Filters filterView
	Table   tableView
}

type departmentView struct {
	Department domain.Department
	Filters    filterView
	Table      tableView
}

func filterFromQuery(c echo.Context) domain.OrderFilter {
	return domain.OrderFilter{
		SearchTerm: c.QueryParam("q"),
		Status:     c.QueryParam("status"),
		Department: domain.DepartmentFilter(c.QueryParam("department")),
	}
}

func (h *Handler) Dashboard(c echo.Context) error {
	user, ok, err := guard(c, domain.AuthorizeDashboard)
	if !ok {
		return err
	}

	filter := filterFromQuery(c)
	ctx := c.Request().Context()

	all, err := h.orders.ListOrders(ctx, *user, ports.ListOrdersInput{})
	if err != nil {
		return h.listFailure(c, user, "dashboard", "Dashboard", err)
	}

	view := dashboardView{
		Stats: domain.SummarizeOrders(all),
		Filters: filterView{
			Action:         domain.RouteDashboard,
			Filter:         filter,
			ShowDepartment: true,
			Statuses:       domain.Statuses,
			Departments:    domain.Departments,
		},
		Table: tableView{Orders: domain.FilterOrders(all, filter), Return: c.Request().URL.RequestURI()},
	}
	return h.render(c, http.StatusOK, "dashboard", user, page{Title: "Dashboard", Data: view})
}

func (h *Handler) DepartmentOrders(c echo.Context) error {
	department, known := domain.ParseDepartment(c.Param("department"))
	if !known {
		user, _ := middleware.CurrentUser(c)
		if user == nil {
			return redirect(c, domain.RouteSignIn)
		}
		return redirect(c, domain.LandingRouteFor(*user))
	}
	if string(department) != c.Param("department") {
		return redirect(c, domain.DepartmentRoute(department))
	}

	user, ok, err := guard(c, func(u *domain.User) domain.Decision {
		return domain.AuthorizeDepartment(u, department)
	})
	if !ok {
		return err
	}

	filter := filterFromQuery(c)
	filter.Department = domain.FilterAll
	orders, err := h.orders.ListOrders(c.Request().Context(), *user, ports.ListOrdersInput{
		Department: department,
		Filter:     filter,
	})
	if err != nil {
		return h.listFailure(c, user, "orders", department.Title()+" Orders", err)
	}

	view := departmentView{
		Department: department,
		Filters: filterView{
			Action:   domain.DepartmentRoute(department),
			Filter:   filter,
			Statuses: domain.Statuses,
		},
		Table: tableView{Orders: orders, Return: c.Request().URL.RequestURI()},
	}
	return h.render(c, http.StatusOK, "orders", user, page{Title: department.Title() + " Orders", Data: view})
}

// listFailure renders an empty list with an inline message when the store
// cannot be read.
func (h *Handler) listFailure(c echo.Context, user *domain.User, name, title string, err error) error {
	if !errors.Is(err, domain.ErrPersistence) {
		return h.orderFailure(c, *user, "list", err)
	}
	metrics.RecordOrderError("list", err)
	h.log.Warn().Err(err).Msg("failed to load orders")

	var data any
	switch name {
	case "dashboard":
		data = dashboardView{Filters: filterView{Action: domain.RouteDashboard, ShowDepartment: true,
			Statuses: domain.Statuses, Departments: domain.Departments}}
	default:
		d := domain.DefaultDepartmentFor(*user)
		if p, ok := domain.ParseDepartment(c.Param("department")); ok {
			d = p
		}
		data = departmentView{Department: d, Filters: filterView{Action: domain.DepartmentRoute(d), Statuses: domain.Statuses}}
	}
	return h.render(c, http.StatusBadGateway, name, user, page{Title: title, Error: msgLoadFailed, Data: data})
}

// --- Forms ---

type orderForm struct {
	CustomerName string
	ItemNumber   string
	Quantity     string
	Details      string
	PickupDate   string
	PickupTime   string
	Department   domain.Department
	Status       domain.OrderStatus
}

type formView struct {
	ID          string
	Token       string
	Action      string
	Cancel      string
	Form        orderForm
	Departments []domain.Department
	Statuses    []domain.OrderStatus
}

func formFromOrder(o domain.Order) orderForm {
	return orderForm{
		CustomerName: o.CustomerName,
		ItemNumber:   o.ItemNumber,
		Quantity:     strconv.Itoa(o.Quantity),
		Details:      o.Details,
		PickupDate:   o.PickupDate,
		PickupTime:   o.PickupTime,
		Department:   o.Department,
		Status:       o.Status,
	}
}

func formFromRequest(c echo.Context) orderForm {
	department, _ := domain.ParseDepartment(c.FormValue("department"))
	return orderForm{
		CustomerName: c.FormValue("customer_name"),
		ItemNumber:   c.FormValue("item_number"),
		Quantity:     strings.TrimSpace(c.FormValue("qty")),
		Details:      c.FormValue("details"),
		PickupDate:   c.FormValue("day_pickup"),
		PickupTime:   c.FormValue("time_pickup"),
		Department:   department,
		Status:       domain.OrderStatus(c.FormValue("status")),
	}
}

func (f orderForm) quantity() int {
	n, err := strconv.Atoi(f.Quantity)
	if err != nil {
		return 0
	}
	return n
}

func (f orderForm) fields() domain.OrderFields {
	return domain.OrderFields{
		CustomerName: f.CustomerName,
		ItemNumber:   f.ItemNumber,
		Quantity:     f.quantity(),
		Details:      f.Details,
		PickupDate:   f.PickupDate,
		PickupTime:   f.PickupTime,
		Department:   f.Department,
		Status:       f.Status,
	}
}

func (f orderForm) patch() domain.OrderPatch {
	qty := f.quantity()
	return domain.OrderPatch{
		CustomerName: &f.CustomerName,
		ItemNumber:   &f.ItemNumber,
		Quantity:     &qty,
		Details:      &f.Details,
		PickupDate:   &f.PickupDate,
		PickupTime:   &f.PickupTime,
		Department:   &f.Department,
		Status:       &f.Status,
	}
}

// formError maps validation and store failures to an inline message.
func formError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidOrder):
		msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidOrder.Error()+": ")
		if msg == "" {
			msg = "invalid order"
		}
		return http.StatusUnprocessableEntity, strings.ToUpper(msg[:1]) + msg[1:] + ".", true
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusBadGateway, msgStoreFailed, true
	}
	return 0, "", false
}

func (h *Handler) NewOrder(c echo.Context) error {
	user, ok, err := guard(c, domain.AuthorizeSignedIn)
	if !ok {
		return err
	}

	department := domain.DefaultDepartmentFor(*user)
	if d, ok := domain.ParseDepartment(c.QueryParam("department")); ok && domain.CanAccessDepartment(*user, d) {
		department = d
	}

	view := formView{
		Token:       uuid.NewString(),
		Action:      "/orders",
		Cancel:      domain.DepartmentRoute(department),
		Form:        orderForm{Quantity: "1", Department: department, Status: domain.StatusNew},
		Departments: departmentsFor(*user),
		Statuses:    domain.Statuses,
	}
	return h.render(c, http.StatusOK, "form", user, page{Title: "New order", Data: view})
}

func (h *Handler) CreateOrder(c echo.Context) error {
	user, ok, err := guard(c, domain.AuthorizeSignedIn)
	if !ok {
		return err
	}

	if !h.firstSubmission(c) {
		setFlash(c, msgResubmitted)
		return redirect(c, domain.LandingRouteFor(*user))
	}

	form := formFromRequest(c)
	order, err := h.orders.CreateOrder(c.Request().Context(), *user, form.fields())
	if err != nil {
		if code, msg, inline := formError(err); inline {
			metrics.RecordOrderError("create", err)
			view := formView{
				Token:       uuid.NewString(),
				Action:      "/orders",
				Cancel:      domain.LandingRouteFor(*user),
				Form:        form,
				Departments: departmentsFor(*user),
				Statuses:    domain.Statuses,
			}
			return h.render(c, code, "form", user, page{Title: "New order", Error: msg, Data: view})
		}
		return h.orderFailure(c, *user, "create", err)
	}

	metrics.OrdersCreatedTotal.WithLabelValues(string(order.Department)).Inc()
	setFlash(c, "Order for "+order.CustomerName+" created.")
	return redirect(c, domain.DepartmentRoute(order.Department))
}

// firstSubmission reports false only when the form token was seen before.
// Forms without a token and guard failures are let through.
func (h *Handler) firstSubmission(c echo.Context) bool {
	token := c.FormValue("submission")
	if token == "" || h.submissions == nil {
		return true
	}
	first, err := h.submissions.FirstUse(c.Request().Context(), token)
	if err != nil {
		h.log.Warn().Err(err).Msg("submission check failed")
		return true
	}
	return first
}

func (h *Handler) EditOrder(c echo.Context) error {
	user, ok, err := guard(c, domain.AuthorizeSignedIn)
	if !ok {
		return err
	}

	order, err := h.orders.GetOrder(c.Request().Context(), *user, c.Param("id"))
	if err != nil {
		return h.orderFailure(c, *user, "get", err)
	}

	view := formView{
		ID:          order.ID,
		Action:      "/orders/edit/" + order.ID,
		Cancel:      domain.DepartmentRoute(order.Department),
		Form:        formFromOrder(*order),
		Departments: departmentsFor(*user),
		Statuses:    domain.Statuses,
	}
	return h.render(c, http.StatusOK, "form", user, page{Title: "Edit order", Data: view})
}

func (h *Handler) UpdateOrder(c echo.Context) error {
	user, ok, err := guard(c, domain.AuthorizeSignedIn)
	if !ok {
		return err
	}

	id := c.Param("id")
	form := formFromRequest(c)
	order, err := h.orders.UpdateOrder(c.Request().Context(), *user, id, form.patch())
	if err != nil {
		if code, msg, inline := formError(err); inline {
			metrics.RecordOrderError("update", err)
			view := formView{
				ID:          id,
				Action:      "/orders/edit/" + id,
				Cancel:      domain.LandingRouteFor(*user),
				Form:        form,
				Departments: departmentsFor(*user),
				Statuses:    domain.Statuses,
			}
			return h.render(c, code, "form", user, page{Title: "Edit order", Error: msg, Data: view})
		}
		return h.orderFailure(c, *user, "update", err)
	}

	setFlash(c, "Order for "+order.CustomerName+" updated.")
	return redirect(c, domain.DepartmentRoute(order.Department))
}

// --- Actions ---

func (h *Handler) AdvanceOrder(c echo.Context) error {
	user, ok, err := guard(c, domain.AuthorizeSignedIn)
	if !ok {
		return err
	}

	order, err := h.orders.AdvanceOrder(c.Request().Context(), *user, c.Param("id"))
	if err != nil {
		return h.orderFailure(c, *user, "advance", err)
	}

	if from, ok := order.Status.PreviousStatus(); ok {
		metrics.RecordTransition(from, order.Status)
	}
	return redirect(c, returnTarget(c, *user))
}

type deleteView struct {
	Order  domain.Order
	Return string
}

func (h *Handler) ConfirmDelete(c echo.Context) error {
	user, ok, err := guard(c, domain.AuthorizeSignedIn)
	if !ok {
		return err
	}

	order, err := h.orders.GetOrder(c.Request().Context(), *user, c.Param("id"))
	if err != nil {
		return h.orderFailure(c, *user, "get", err)
	}

	view := deleteView{Order: *order, Return: returnTarget(c, *user)}
	return h.render(c, http.StatusOK, "confirm_delete", user, page{Title: "Delete order", Data: view})
}

func (h *Handler) DeleteOrder(c echo.Context) error {
	user, ok, err := guard(c, domain.AuthorizeSignedIn)
	if !ok {
		return err
	}

	if err := h.orders.DeleteOrder(c.Request().Context(), *user, c.Param("id")); err != nil {
		return h.orderFailure(c, *user, "delete", err)
	}

	metrics.OrdersDeletedTotal.Inc()
	setFlash(c, "Order deleted.")
	return redirect(c, returnTarget(c, *user))
}

func departmentsFor(u domain.User) []domain.Department {
	if u.IsAdmin() {
		return domain.Departments
	}
	if d, ok := u.Role.Department(); ok {
		return []domain.Department{d}
	}
	return nil
}
