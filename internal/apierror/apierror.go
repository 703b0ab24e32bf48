// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation failed", Fields: fields}
}

// StockError names the ingredient that blocked a sale or waste entry.
type StockError struct {
	Detail       string  `json:"detail"`
	IngredientID string  `json:"ingredient_id"`
	Ingredient   string  `json:"ingredient"`
	Unit         string  `json:"unit"`
	OnHand       float64 `json:"on_hand"`
	Needed       float64 `json:"needed"`
}

func NewStock(detail, ingredientID, ingredient, unit string, onHand, needed float64) *StockError {
	return &StockError{
		Detail:       detail,
		IngredientID: ingredientID,
		Ingredient:   ingredient,
		Unit:         unit,
		OnHand:       onHand,
		Needed:       needed,
	}
}
