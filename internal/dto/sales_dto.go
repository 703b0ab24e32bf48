package dto

import "github.com/shopspring/decimal"

// SalesPeriodFilter is bound from the query string of the sales endpoints.
type SalesPeriodFilter struct {
	Period    string `form:"period"     validate:"omitempty,oneof=today last_7_days this_month this_year custom"`
	StartDate string `form:"start_date" validate:"omitempty,datetime=2006-01-02"` // custom only
	EndDate   string `form:"end_date"   validate:"omitempty,datetime=2006-01-02"` // custom only
}

type SalesSummaryResponse struct {
	Period               string          `json:"period"`
	From                 string          `json:"from"`
	To                   string          `json:"to"`
	PeriodRevenue        decimal.Decimal `json:"period_revenue"`
	TotalSalesForPeriod  int64           `json:"total_sales_for_period"`
	PeriodProfit         decimal.Decimal `json:"period_profit"`
	PeriodMargin         decimal.Decimal `json:"period_margin"`
	BestSellingDish      string          `json:"best_selling_dish"`
	BestSellingDishCount int64           `json:"best_selling_dish_count"`
	BestSellingDishID    *string         `json:"best_selling_dish_id"`
	MissingCostData      bool            `json:"missing_cost_data"`
}

type OrderListResponse struct {
	Period string          `json:"period"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Data   []OrderResponse `json:"data"`
	Total  int             `json:"total"`
}
