package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PlaceOrderRequest lists one dish id per unit sold; repeats are allowed.
type PlaceOrderRequest struct {
	DishIDs []string `json:"dish_ids" validate:"required,min=1,max=200,dive,required,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderLineResponse struct {
	DishID   string          `json:"dish_id"`
	DishName string          `json:"dish_name"`
	Price    decimal.Decimal `json:"price"`
}

type OrderResponse struct {
	ID          string              `json:"id"`
	OrderNumber int64               `json:"order_number"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	SoldBy      string              `json:"sold_by"`
	Lines       []OrderLineResponse `json:"lines"`
	CreatedAt   string              `json:"created_at"`
}

// PlaceOrderResponse is the acknowledgement returned by POST /v1/orders.
type PlaceOrderResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Total   decimal.Decimal `json:"total"`
	Order   OrderResponse   `json:"order"`
}
