package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orderflow/orderflow/internal/api/metrics"
	"github.com/orderflow/orderflow/internal/core/domain"
	"github.com/orderflow/orderflow/internal/core/ports"
)

// OrderHandler serves the JSON order API.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

func filterFromQuery(c echo.Context) domain.OrderFilter {
	return domain.OrderFilter{
		SearchTerm: c.QueryParam("q"),
		Status:     c.QueryParam("status"),
		Department: domain.DepartmentFilter(c.QueryParam("department")),
	}
}

// List handles GET /api/v1/orders, the admin aggregate list. Stats cover
// every order regardless of the query filters, as on the dashboard.
//
// @Summary      List all orders
// @Tags         orders
// @Produce      json
// @Param        q           query     string  false  "Search customer name, item number or details"
// @Param        status      query     string  false  "new, in process, complete or all"
// @Param        department  query     string  false  "fish, pork or all"
// @Success      200         {object}  orderListResponse
// @Failure      401         {object}  map[string]string
// @Failure      403         {object}  map[string]string
// @Failure      502         {object}  map[string]string
// @Router       /api/v1/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	all, err := h.service.ListOrders(c.Request().Context(), user, ports.ListOrdersInput{})
	if err != nil {
		metrics.RecordOrderError("list", err)
		return err
	}
	stats := domain.SummarizeOrders(all)
	return c.JSON(http.StatusOK, toOrderListResponse(domain.FilterOrders(all, filterFromQuery(c)), &stats))
}

// ListDepartment handles GET /api/v1/departments/:department/orders.
//
// @Summary      List a department's orders
// @Tags         orders
// @Produce      json
// @Param        department  path      string  true   "fish or pork"
// @Param        q           query     string  false  "Search customer name, item number or details"
// @Param        status      query     string  false  "new, in process, complete or all"
// @Success      200         {object}  orderListResponse
// @Failure      403         {object}  map[string]string
// @Failure      404         {object}  map[string]string
// @Router       /api/v1/departments/{department}/orders [get]
func (h *OrderHandler) ListDepartment(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	department, err := departmentParam(c)
	if err != nil {
		return err
	}

	orders, err := h.service.ListOrders(c.Request().Context(), user, ports.ListOrdersInput{
		Department: department,
		Filter:     filterFromQuery(c),
	})
	if err != nil {
		metrics.RecordOrderError("list", err)
		return err
	}
	return c.JSON(http.StatusOK, toOrderListResponse(orders, nil))
}

// Get handles GET /api/v1/orders/:id.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  orderResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	order, err := h.service.GetOrder(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		metrics.RecordOrderError("get", err)
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Create handles POST /api/v1/orders.
//
// @Summary      Create an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      createOrderRequest  true  "Order"
// @Success      201   {object}  orderResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.CreateOrder(c.Request().Context(), user, toOrderFields(req))
	if err != nil {
		metrics.RecordOrderError("create", err)
		return err
	}

	metrics.OrdersCreatedTotal.WithLabelValues(string(order.Department)).Inc()
	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/orders/"+order.ID)
	return c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// Update handles PATCH /api/v1/orders/:id.
//
// @Summary      Update an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Order id"
// @Param        body  body      updateOrderRequest  true  "Fields to change"
// @Success      200   {object}  orderResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/v1/orders/{id} [patch]
func (h *OrderHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.UpdateOrder(c.Request().Context(), user, c.Param("id"), toOrderPatch(req))
	if err != nil {
		metrics.RecordOrderError("update", err)
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Advance handles POST /api/v1/orders/:id/advance.
//
// @Summary      Move an order to its next status
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  orderResponse
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /api/v1/orders/{id}/advance [post]
func (h *OrderHandler) Advance(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	order, err := h.service.AdvanceOrder(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		metrics.RecordOrderError("advance", err)
		return err
	}

	if from, ok := order.Status.PreviousStatus(); ok {
		metrics.RecordTransition(from, order.Status)
	}
	return c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Delete handles DELETE /api/v1/orders/:id.
//
// @Summary      Delete an order
// @Tags         orders
// @Param        id   path  string  true  "Order id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/orders/{id} [delete]
func (h *OrderHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteOrder(c.Request().Context(), user, c.Param("id")); err != nil {
		metrics.RecordOrderError("delete", err)
		return err
	}

	metrics.OrdersDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}
