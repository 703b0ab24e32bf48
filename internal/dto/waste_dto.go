package dto

type LogWasteRequest struct {
	InventoryItemID string  `json:"inventory_item_id" validate:"required,uuid"`
	Quantity        float64 `json:"quantity"          validate:"required,gt=0"`
	// Reason defaults to "Other" when empty.
	Reason string `json:"reason" validate:"omitempty,oneof=Expired Damaged 'Cooked wrong' Dropped Other"`
}

type WasteFilter struct {
	InventoryItemID string `form:"inventory_item_id" validate:"omitempty,uuid"`
	Limit           int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type WasteResponse struct {
	ID              string  `json:"id"`
	InventoryItemID string  `json:"inventory_item_id"`
	ItemName        string  `json:"item_name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	Reason          string  `json:"reason"`
	LoggedBy        string  `json:"logged_by"`
	RemainingStock  float64 `json:"remaining_stock,omitempty"`
	CreatedAt       string  `json:"created_at"`
}
