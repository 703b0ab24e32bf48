package service

import (
	"context"
	"fmt"

	"kitchenledger/internal/costing"
	"kitchenledger/internal/model"
	"kitchenledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// calculateCost is swapped in tests to count invocations.
var calculateCost = costing.Calculate

// dishCost is the memoized costing of one dish within a single report.
type dishCost struct {
	dish   *model.Dish // nil when the dish no longer exists
	result costing.Result
}

func (c dishCost) foodCost() decimal.Decimal {
	if c.dish == nil {
		return decimal.Zero
	}
	return c.result.FoodCost
}

func (c dishCost) missing() bool { return c.dish == nil || c.result.MissingCostData }

// dishCoster costs each distinct dish at most once. It is not safe for
// concurrent use and lives for the duration of one request.
type dishCoster struct {
	dishes    repository.DishRepository
	inventory repository.InventoryRepository
	cache     map[uuid.UUID]dishCost
}

func newDishCoster(dishes repository.DishRepository, inventory repository.InventoryRepository) *dishCoster {
	return &dishCoster{dishes: dishes, inventory: inventory, cache: make(map[uuid.UUID]dishCost)}
}

// load costs every id not yet cached, fetching dishes and their ingredients in bulk.
func (c *dishCoster) load(ctx context.Context, ids []uuid.UUID) error {
	pending := make([]uuid.UUID, 0, len(ids))
	for _, id := range distinct(ids) {
		if _, ok := c.cache[id]; !ok {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	dishes, err := c.dishes.FindByIDs(ctx, pending)
	if err != nil {
		return fmt.Errorf("loading dishes: %w", err)
	}
	var ingredientIDs []uuid.UUID
	for _, d := range dishes {
		for _, rl := range d.Recipe {
			ingredientIDs = append(ingredientIDs, rl.InventoryItemID)
		}
	}
	items, err := c.inventory.FindByIDs(ctx, distinct(ingredientIDs))
	if err != nil {
		return fmt.Errorf("loading ingredients: %w", err)
	}
	resolver := costing.NewMapResolver(items)

	for i := range dishes {
		d := &dishes[i]
		c.cache[d.ID] = dishCost{dish: d, result: calculateCost(d, resolver)}
	}
	for _, id := range pending {
		if _, ok := c.cache[id]; !ok {
			c.cache[id] = dishCost{}
		}
	}
	return nil
}

// get returns the cached costing; load must have been called for id.
func (c *dishCoster) get(id uuid.UUID) dishCost { return c.cache[id] }
