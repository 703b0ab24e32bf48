package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"kitchenledger/internal/costing"
	"kitchenledger/internal/dto"
	"kitchenledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period selectors accepted by the sales reports.
const (
	PeriodToday      = "today"
	PeriodLast7Days  = "last_7_days"
	PeriodThisMonth  = "this_month"
	PeriodThisYear   = "this_year"
	PeriodCustom     = "custom"
	excludedCategory = "Drinks"
	noBestSeller     = "N/A"
)

// Window is a resolved report period: orders created in [From, To).
type Window struct {
	Period string
	From   time.Time
	To     time.Time
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ResolvePeriod turns a period selector into a window in now's location.
// Every window ends at the midnight following its last included day; an empty
// period means today. Custom dates use the YYYY-MM-DD layout.
func ResolvePeriod(period, startDate, endDate string, now time.Time) (Window, error) {
	today := midnight(now)
	w := Window{Period: period, To: today.AddDate(0, 0, 1)}

	switch period {
	case "", PeriodToday:
		w.Period = PeriodToday
		w.From = today
	case PeriodLast7Days:
		w.From = today.AddDate(0, 0, -7)
	case PeriodThisMonth:
		w.From = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PeriodThisYear:
		w.From = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	case PeriodCustom:
		if startDate == "" || endDate == "" {
			return Window{}, validationf("custom period requires start_date and end_date")
		}
		start, err := time.ParseInLocation("2006-01-02", startDate, now.Location())
		if err != nil {
			return Window{}, validationf("invalid start_date %q", startDate)
		}
		end, err := time.ParseInLocation("2006-01-02", endDate, now.Location())
		if err != nil {
			return Window{}, validationf("invalid end_date %q", endDate)
		}
		if end.Before(start) {
			return Window{}, validationf("end_date is before start_date")
		}
		w.From = start
		w.To = end.AddDate(0, 0, 1)
	default:
		return Window{}, validationf("unknown period %q", period)
	}
	return w, nil
}

type SalesService interface {
	Summary(ctx context.Context, filter dto.SalesPeriodFilter) (*dto.SalesSummaryResponse, error)
	ListOrders(ctx context.Context, filter dto.SalesPeriodFilter) (*dto.OrderListResponse, error)
}

type salesService struct {
	orders    repository.OrderRepository
	dishes    repository.DishRepository
	inventory repository.InventoryRepository
	now       func() time.Time
}

// NewSalesService builds the sales aggregator. now supplies the current instant
// (and through its location, the business time zone); nil means time.Now.
func NewSalesService(
	orders repository.OrderRepository,
	dishes repository.DishRepository,
	inventory repository.InventoryRepository,
	now func() time.Time,
) SalesService {
	if now == nil {
		now = time.Now
	}
	return &salesService{orders: orders, dishes: dishes, inventory: inventory, now: now}
}

type dishTally struct {
	id    uuid.UUID
	name  string
	count int64
	price decimal.Decimal
}

func (s *salesService) Summary(ctx context.Context, filter dto.SalesPeriodFilter) (*dto.SalesSummaryResponse, error) {
	w, err := ResolvePeriod(filter.Period, filter.StartDate, filter.EndDate, s.now())
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByRange(ctx, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("loading orders: %w", err)
	}

	revenue := decimal.Zero
	var dishIDs []uuid.UUID
	for _, o := range orders {
		revenue = revenue.Add(o.TotalAmount)
		for _, l := range o.Lines {
			dishIDs = append(dishIDs, l.DishID)
		}
	}

	coster := newDishCoster(s.dishes, s.inventory)
	if err := coster.load(ctx, dishIDs); err != nil {
		return nil, err
	}

	totalCost := decimal.Zero
	missing := false
	tallies := make(map[uuid.UUID]*dishTally)
	for _, o := range orders {
		for _, l := range o.Lines {
			c := coster.get(l.DishID)
			totalCost = totalCost.Add(c.foodCost())
			missing = missing || c.missing()

			// deleted dishes have no category and never qualify as best seller
			if c.dish == nil || strings.EqualFold(c.dish.Category, excludedCategory) {
				continue
			}
			t, ok := tallies[l.DishID]
			if !ok {
				t = &dishTally{id: l.DishID, name: l.DishName, price: l.Price}
				tallies[l.DishID] = t
			}
			t.count++
		}
	}

	profit := revenue.Sub(totalCost)
	resp := &dto.SalesSummaryResponse{
		Period:              w.Period,
		From:                w.From.Format(time.RFC3339),
		To:                  w.To.Format(time.RFC3339),
		PeriodRevenue:       revenue,
		TotalSalesForPeriod: int64(len(orders)),
		PeriodProfit:        profit.Round(2),
		PeriodMargin:        costing.Margin(profit, revenue).Round(2),
		BestSellingDish:     noBestSeller,
		MissingCostData:     missing,
	}
	if best := bestSeller(tallies); best != nil {
		id := best.id.String()
		resp.BestSellingDish = best.name
		resp.BestSellingDishCount = best.count
		resp.BestSellingDishID = &id
	}
	return resp, nil
}

// bestSeller picks the highest unit count, then the highest unit price, then
// the name, so the result does not depend on map order.
func bestSeller(tallies map[uuid.UUID]*dishTally) *dishTally {
	if len(tallies) == 0 {
		return nil
	}
	all := make([]*dishTally, 0, len(tallies))
	for _, t := range tallies {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.count != b.count {
			return a.count > b.count
		}
		if !a.price.Equal(b.price) {
			return a.price.GreaterThan(b.price)
		}
		return a.name < b.name
	})
	return all[0]
}

func (s *salesService) ListOrders(ctx context.Context, filter dto.SalesPeriodFilter) (*dto.OrderListResponse, error) {
	w, err := ResolvePeriod(filter.Period, filter.StartDate, filter.EndDate, s.now())
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByRange(ctx, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("loading orders: %w", err)
	}
	// newest order number first
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderNumber > orders[j].OrderNumber })

	data := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{
		Period: w.Period,
		From:   w.From.Format(time.RFC3339),
		To:     w.To.Format(time.RFC3339),
		Data:   data,
		Total:  len(data),
	}, nil
}
