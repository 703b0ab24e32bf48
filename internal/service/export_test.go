package service

import (
	"kitchenledger/internal/costing"
	"kitchenledger/internal/model"
)

// SetCalculateCost replaces the costing function used by reports and returns
// a func restoring the original.
func SetCalculateCost(f func(*model.Dish, costing.Resolver) costing.Result) (restore func()) {
	prev := calculateCost
	calculateCost = f
	return func() { calculateCost = prev }
}
