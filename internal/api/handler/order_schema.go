package handler

import (
	"time"

	"github.com/orderflow/orderflow/internal/core/domain"
)

// --- Request types ---

type createOrderRequest struct {
	CustomerName string `json:"customer_name" validate:"required,max=200"`
	ItemNumber   string `json:"item_number"   validate:"required,max=100"`
	Quantity     int    `json:"qty"           validate:"required,min=1"`
	Details      string `json:"details"       validate:"max=2000"`
	PickupDate   string `json:"day_pickup"    validate:"required,datetime=2006-01-02"`
	PickupTime   string `json:"time_pickup"   validate:"required,datetime=15:04"`
	Department   string `json:"department"    validate:"required,department"`
	Status       string `json:"status"        validate:"omitempty,order_status"`
}

type updateOrderRequest struct {
	CustomerName *string `json:"customer_name" validate:"omitempty,min=1,max=200"`
	ItemNumber   *string `json:"item_number"   validate:"omitempty,min=1,max=100"`
	Quantity     *int    `json:"qty"           validate:"omitempty,min=1"`
	Details      *string `json:"details"       validate:"omitempty,max=2000"`
	PickupDate   *string `json:"day_pickup"    validate:"omitempty,datetime=2006-01-02"`
	PickupTime   *string `json:"time_pickup"   validate:"omitempty,datetime=15:04"`
	Department   *string `json:"department"    validate:"omitempty,department"`
	Status       *string `json:"status"        validate:"omitempty,order_status"`
}

// --- Response types ---

type orderResponse struct {
	ID           string `json:"id"`
	CustomerName string `json:"customer_name"`
	ItemNumber   string `json:"item_number"`
	Quantity     int    `json:"qty"`
	Details      string `json:"details,omitempty"`
	PickupDate   string `json:"day_pickup"`
	PickupTime   string `json:"time_pickup"`
	Department   string `json:"department"`
	Status       string `json:"status"`
	NextStatus   string `json:"next_status,omitempty"`
	ActionLabel  string `json:"action_label,omitempty"`
	CreatedBy    string `json:"created_by,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type orderStatsResponse struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	InProcess int `json:"in_process"`
	Complete  int `json:"complete"`
	Fish      int `json:"fish"`
	Pork      int `json:"pork"`
}

type orderListResponse struct {
	Orders []orderResponse     `json:"orders"`
	Count  int                 `json:"count"`
	Stats  *orderStatsResponse `json:"stats,omitempty"`
}

// --- Request → domain ---

func toOrderFields(req createOrderRequest) domain.OrderFields {
	department, _ := domain.ParseDepartment(req.Department)
	return domain.OrderFields{
		CustomerName: req.CustomerName,
		ItemNumber:   req.ItemNumber,
		Quantity:     req.Quantity,
		Details:      req.Details,
		PickupDate:   req.PickupDate,
		PickupTime:   req.PickupTime,
		Department:   department,
		Status:       domain.OrderStatus(req.Status),
	}
}

func toOrderPatch(req updateOrderRequest) domain.OrderPatch {
	patch := domain.OrderPatch{
		CustomerName: req.CustomerName,
		ItemNumber:   req.ItemNumber,
		Quantity:     req.Quantity,
		Details:      req.Details,
		PickupDate:   req.PickupDate,
		PickupTime:   req.PickupTime,
	}
	if req.Department != nil {
		d, _ := domain.ParseDepartment(*req.Department)
		patch.Department = &d
	}
	if req.Status != nil {
		s := domain.OrderStatus(*req.Status)
		patch.Status = &s
	}
	return patch
}

// --- domain → Response ---

func toOrderResponse(o domain.Order) orderResponse {
	resp := orderResponse{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		ItemNumber:   o.ItemNumber,
		Quantity:     o.Quantity,
		Details:      o.Details,
		PickupDate:   o.PickupDate,
		PickupTime:   o.PickupTime,
		Department:   string(o.Department),
		Status:       string(o.Status),
		CreatedBy:    o.CreatedBy,
		CreatedAt:    o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    o.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if next, ok := o.Status.NextStatus(); ok {
		resp.NextStatus = string(next)
	}
	if label, ok := o.Status.ActionLabel(); ok {
		resp.ActionLabel = label
	}
	return resp
}

// toOrderListResponse renders orders. A non-nil stats block is attached
// as given so callers decide which orders it counts.
func toOrderListResponse(orders []domain.Order, stats *domain.OrderStats) orderListResponse {
	resp := orderListResponse{
		Orders: make([]orderResponse, 0, len(orders)),
		Count:  len(orders),
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(o))
	}
	if stats != nil {
		resp.Stats = &orderStatsResponse{
			Total:     stats.Total,
			New:       stats.New,
			InProcess: stats.InProcess,
			Complete:  stats.Complete,
			Fish:      stats.Fish,
			Pork:      stats.Pork,
		}
	}
	return resp
}
