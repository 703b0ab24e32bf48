package service

import (
	"context"
	"errors"

	"kitchenledger/internal/dto"
	"kitchenledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CostingService exposes recipe costing for one dish or one past order.
type CostingService interface {
	DishCost(ctx context.Context, dishID uuid.UUID) (*dto.DishCostResponse, error)
	OrderCost(ctx context.Context, orderID uuid.UUID) (*dto.OrderCostResponse, error)
}

type costingService struct {
	dishes    repository.DishRepository
	inventory repository.InventoryRepository
	orders    repository.OrderRepository
}

func NewCostingService(
	dishes repository.DishRepository,
	inventory repository.InventoryRepository,
	orders repository.OrderRepository,
) CostingService {
	return &costingService{dishes: dishes, inventory: inventory, orders: orders}
}

func (s *costingService) DishCost(ctx context.Context, dishID uuid.UUID) (*dto.DishCostResponse, error) {
	coster := newDishCoster(s.dishes, s.inventory)
	if err := coster.load(ctx, []uuid.UUID{dishID}); err != nil {
		return nil, err
	}
	c := coster.get(dishID)
	if c.dish == nil {
		return nil, notFound(KindDish, dishID)
	}

	breakdown := make([]dto.IngredientCostResponse, 0, len(c.result.Lines))
	for _, l := range c.result.Lines {
		breakdown = append(breakdown, dto.IngredientCostResponse{
			IngredientID:    l.IngredientID.String(),
			Ingredient:      l.Ingredient,
			Cost:            l.Cost.Round(2),
			MissingCostData: l.Missing,
			Reason:          l.Reason,
		})
	}
	return &dto.DishCostResponse{
		DishID:          c.dish.ID.String(),
		DishName:        c.dish.Name,
		Price:           c.dish.Price,
		FoodCost:        c.result.FoodCost.Round(2),
		Profit:          c.result.Profit.Round(2),
		ProfitMargin:    c.result.ProfitMargin.Round(2),
		MissingCostData: c.result.MissingCostData,
		Breakdown:       breakdown,
	}, nil
}

func (s *costingService) OrderCost(ctx context.Context, orderID uuid.UUID) (*dto.OrderCostResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(KindOrder, orderID)
		}
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(o.Lines))
	for _, l := range o.Lines {
		ids = append(ids, l.DishID)
	}
	coster := newDishCoster(s.dishes, s.inventory)
	if err := coster.load(ctx, ids); err != nil {
		return nil, err
	}

	foodCost := decimal.Zero
	missing := false
	for _, l := range o.Lines {
		c := coster.get(l.DishID)
		foodCost = foodCost.Add(c.foodCost())
		missing = missing || c.missing()
	}

	return &dto.OrderCostResponse{
		OrderID:         o.ID.String(),
		OrderNumber:     o.OrderNumber,
		TotalAmount:     o.TotalAmount,
		TotalFoodCost:   foodCost.Round(2),
		TotalProfit:     o.TotalAmount.Sub(foodCost).Round(2),
		MissingCostData: missing,
	}, nil
}
