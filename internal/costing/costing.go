// Package costing computes food cost, profit and margin for a dish.
//
// Calculate is the only place in the codebase where ingredient purchase prices
// are turned into recipe costs. The per-dish cost endpoint, per-order cost,
// the sales summary and the menu analyzer all go through it.
package costing

import (
	"kitchenledger/internal/model"
	"kitchenledger/internal/units"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Reasons attached to recipe lines that could not be costed.
const (
	ReasonIngredientMissing    = "ingredient not found"
	ReasonPriceMissing         = "missing purchase price"
	ReasonPurchaseUnitMismatch = "purchase unit incompatible with stocking unit"
	ReasonRecipeUnitMismatch   = "recipe unit incompatible with stocking unit"
)

// Resolver supplies the current inventory item for an ingredient id.
// ok is false when the ingredient no longer exists.
type Resolver interface {
	Ingredient(id uuid.UUID) (item *model.InventoryItem, ok bool)
}

// MapResolver resolves ingredients from an in-memory index.
type MapResolver map[uuid.UUID]*model.InventoryItem

func (m MapResolver) Ingredient(id uuid.UUID) (*model.InventoryItem, bool) {
	it, ok := m[id]
	return it, ok && it != nil
}

// NewMapResolver indexes items by id.
func NewMapResolver(items []model.InventoryItem) MapResolver {
	m := make(MapResolver, len(items))
	for i := range items {
		m[items[i].ID] = &items[i]
	}
	return m
}

// LineCost is the contribution of one recipe line.
type LineCost struct {
	IngredientID uuid.UUID
	Ingredient   string
	Cost         decimal.Decimal
	Missing      bool
	Reason       string
}

// Result is the costing of a single serving of a dish.
// MissingCostData is a soft failure: FoodCost is still the sum of every line
// that could be costed.
type Result struct {
	FoodCost        decimal.Decimal
	Profit          decimal.Decimal
	ProfitMargin    decimal.Decimal
	MissingCostData bool
	Lines           []LineCost
}

// Calculate costs one serving of dish using the ingredients supplied by r.
func Calculate(dish *model.Dish, r Resolver) Result {
	res := Result{FoodCost: decimal.Zero, Lines: make([]LineCost, 0, len(dish.Recipe))}

	for _, line := range dish.Recipe {
		lc := LineCost{IngredientID: line.InventoryItemID, Ingredient: line.IngredientName, Cost: decimal.Zero}

		cost, reason := lineCost(line, r)
		if reason != "" {
			lc.Missing = true
			lc.Reason = reason
			res.MissingCostData = true
		} else {
			lc.Cost = cost
			res.FoodCost = res.FoodCost.Add(cost)
		}
		res.Lines = append(res.Lines, lc)
	}

	res.Profit = dish.Price.Sub(res.FoodCost)
	res.ProfitMargin = Margin(res.Profit, dish.Price)
	return res
}

// Margin returns profit/price*100, or 0 when price is not positive.
func Margin(profit, price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(price).Mul(hundred)
}

// PricePerStockingUnit converts an item's purchase price into the price of one
// stocking unit. A non-empty reason means the item carries no usable price data.
func PricePerStockingUnit(item *model.InventoryItem) (price decimal.Decimal, reason string) {
	if !item.PurchasePrice.Valid || item.PurchasePrice.Decimal.IsNegative() || item.PurchaseQuantity <= 0 {
		return decimal.Zero, ReasonPriceMissing
	}
	perPurchaseUnit := item.PurchasePrice.Decimal.Div(decimal.NewFromFloat(item.PurchaseQuantity))

	// "unit" has no sub-scale, so a count bought per count is priced as is.
	if item.PurchaseUnit == units.Each && item.Unit == units.Each {
		return perPurchaseUnit, ""
	}
	// one stocking unit equals ratio purchase units
	ratio, err := units.Ratio(item.Unit, item.PurchaseUnit)
	if err != nil {
		return decimal.Zero, ReasonPurchaseUnitMismatch
	}
	return perPurchaseUnit.Mul(decimal.NewFromFloat(ratio)), ""
}

func lineCost(line model.RecipeLine, r Resolver) (decimal.Decimal, string) {
	item, ok := r.Ingredient(line.InventoryItemID)
	if !ok {
		return decimal.Zero, ReasonIngredientMissing
	}

	perStock, reason := PricePerStockingUnit(item)
	if reason != "" {
		return decimal.Zero, reason
	}

	required, err := units.Convert(line.QuantityRequired, line.Unit, item.Unit)
	if err != nil {
		return decimal.Zero, ReasonRecipeUnitMismatch
	}
	return perStock.Mul(decimal.NewFromFloat(required)), ""
}
