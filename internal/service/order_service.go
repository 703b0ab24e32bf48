package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"kitchenledger/internal/dto"
	"kitchenledger/internal/model"
	"kitchenledger/internal/repository"
	"kitchenledger/internal/units"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	// PlaceOrder sells one unit per entry of req.DishIDs as a single
	// all-or-nothing unit of work.
	PlaceOrder(ctx context.Context, sellerID uuid.UUID, req dto.PlaceOrderRequest) (*dto.PlaceOrderResponse, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
}

type orderService struct {
	txm       repository.Transactor
	orders    repository.OrderRepository
	dishes    repository.DishRepository
	inventory repository.InventoryRepository
	sequence  SequenceAllocator
}

func NewOrderService(
	txm repository.Transactor,
	orders repository.OrderRepository,
	dishes repository.DishRepository,
	inventory repository.InventoryRepository,
	sequence SequenceAllocator,
) OrderService {
	return &orderService{
		txm:       txm,
		orders:    orders,
		dishes:    dishes,
		inventory: inventory,
		sequence:  sequence,
	}
}

// ingredientNeed accumulates what an order consumes of one ingredient,
// grouped by the unit each recipe line was written in.
type ingredientNeed struct {
	name   string
	byUnit map[units.Unit]float64
}

// inStockingUnit sums every part of the need expressed in the item's stocking
// unit, visiting units in a fixed order so the float total is reproducible.
func (n *ingredientNeed) inStockingUnit(stock units.Unit) (float64, error) {
	for u := range n.byUnit {
		if !u.Valid() {
			return 0, fmt.Errorf("ingredient %s: %w: %q", n.name, units.ErrUnknownUnit, string(u))
		}
	}
	total := 0.0
	for _, u := range units.All() {
		q, ok := n.byUnit[u]
		if !ok {
			continue
		}
		c, err := units.Convert(q, u, stock)
		if err != nil {
			return 0, fmt.Errorf("ingredient %s: %w", n.name, err)
		}
		total += c
	}
	return total, nil
}

// ── PlaceOrder ────────────────────────────────────────────────────────────────
//   1. Resolve every dish (pre-flight, outside TX); a missing dish aborts
//   2. Snapshot lines and total at current prices
//   3. Aggregate ingredient needs across all dishes
//   4. BEGIN TX: lock ingredients in id order, check every one, then deduct,
//      allocate the order number and persist the order
//   5. COMMIT

func (s *orderService) PlaceOrder(ctx context.Context, sellerID uuid.UUID, req dto.PlaceOrderRequest) (*dto.PlaceOrderResponse, error) {
	if len(req.DishIDs) == 0 {
		return nil, validationf("an order needs at least one dish")
	}
	requested := make([]uuid.UUID, 0, len(req.DishIDs))
	for _, raw := range req.DishIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, validationf("invalid dish id %q", raw)
		}
		requested = append(requested, id)
	}

	// 1. Resolve dishes
	dishes, err := s.dishes.FindByIDs(ctx, distinct(requested))
	if err != nil {
		return nil, fmt.Errorf("loading dishes: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Dish, len(dishes))
	for i := range dishes {
		byID[dishes[i].ID] = &dishes[i]
	}

	// 2. + 3. Snapshot lines and aggregate needs
	total := decimal.Zero
	lines := make([]model.OrderLine, 0, len(requested))
	needs := make(map[uuid.UUID]*ingredientNeed)
	for pos, id := range requested {
		d, ok := byID[id]
		if !ok {
			return nil, notFound(KindDish, id)
		}
		total = total.Add(d.Price)
		lines = append(lines, model.OrderLine{DishID: d.ID, DishName: d.Name, Price: d.Price, Position: pos})

		for _, rl := range d.Recipe {
			n, ok := needs[rl.InventoryItemID]
			if !ok {
				n = &ingredientNeed{name: rl.IngredientName, byUnit: make(map[units.Unit]float64)}
				needs[rl.InventoryItemID] = n
			}
			n.byUnit[rl.Unit] += rl.QuantityRequired
		}
	}

	ingredientIDs := make([]uuid.UUID, 0, len(needs))
	for id := range needs {
		ingredientIDs = append(ingredientIDs, id)
	}
	// fixed lock order so concurrent orders sharing ingredients cannot deadlock
	sort.Slice(ingredientIDs, func(i, j int) bool { return ingredientIDs[i].String() < ingredientIDs[j].String() })

	// 4. ACID transaction
	order := model.Order{TotalAmount: total, SoldBy: sellerID, Lines: lines}
	txErr := s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		deductions := make([]float64, len(ingredientIDs))
		for i, id := range ingredientIDs {
			item, err := s.inventory.LockByIDTx(tx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound(KindIngredient, id)
				}
				return err
			}
			needed, err := needs[id].inStockingUnit(item.Unit)
			if err != nil {
				return err
			}
			if !units.Covers(item.Quantity, needed) {
				return &InsufficientStockError{
					IngredientID: id,
					Ingredient:   item.Name,
					Unit:         item.Unit,
					OnHand:       item.Quantity,
					Needed:       needed,
				}
			}
			// never ask the guarded decrement for more than is on hand
			deductions[i] = math.Min(needed, item.Quantity)
		}

		for i, id := range ingredientIDs {
			if deductions[i] == 0 {
				continue
			}
			if err := s.inventory.DeductTx(tx, id, deductions[i]); err != nil {
				return fmt.Errorf("deducting %s: %w", needs[id].name, err)
			}
		}

		num, err := s.sequence.NextTx(tx)
		if err != nil {
			return fmt.Errorf("allocating order number: %w", err)
		}
		order.OrderNumber = num
		return s.orders.CreateTx(tx, &order)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int64("order_number", order.OrderNumber).
		Str("total", total.StringFixed(2)).
		Int("lines", len(lines)).
		Msg("order_service: order placed")

	return &dto.PlaceOrderResponse{
		Success: true,
		Message: "Order recorded.",
		Total:   total,
		Order:   orderToResponse(&order),
	}, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(KindOrder, id)
		}
		return nil, err
	}
	resp := orderToResponse(o)
	return &resp, nil
}

func orderToResponse(o *model.Order) dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{
			DishID:   l.DishID.String(),
			DishName: l.DishName,
			Price:    l.Price,
		})
	}
	created := ""
	if !o.CreatedAt.IsZero() {
		created = o.CreatedAt.Format(time.RFC3339)
	}
	return dto.OrderResponse{
		ID:          o.ID.String(),
		OrderNumber: o.OrderNumber,
		TotalAmount: o.TotalAmount,
		SoldBy:      o.SoldBy.String(),
		Lines:       lines,
		CreatedAt:   created,
	}
}

func distinct(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
