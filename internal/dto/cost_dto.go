package dto

import "github.com/shopspring/decimal"

// IngredientCostResponse is one recipe line of a dish cost breakdown.
type IngredientCostResponse struct {
	IngredientID    string          `json:"ingredient_id"`
	Ingredient      string          `json:"ingredient"`
	Cost            decimal.Decimal `json:"cost"`
	MissingCostData bool            `json:"missing_cost_data"`
	Reason          string          `json:"reason,omitempty"`
}

type DishCostResponse struct {
	DishID          string                   `json:"dish_id"`
	DishName        string                   `json:"dish_name"`
	Price           decimal.Decimal          `json:"price"`
	FoodCost        decimal.Decimal          `json:"food_cost"`
	Profit          decimal.Decimal          `json:"profit"`
	ProfitMargin    decimal.Decimal          `json:"profit_margin"`
	MissingCostData bool                     `json:"missing_cost_data"`
	Breakdown       []IngredientCostResponse `json:"breakdown"`
}

type OrderCostResponse struct {
	OrderID         string          `json:"order_id"`
	OrderNumber     int64           `json:"order_number"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalFoodCost   decimal.Decimal `json:"total_food_cost"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	MissingCostData bool            `json:"missing_cost_data"`
}
