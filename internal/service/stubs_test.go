package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"kitchenledger/internal/model"
	"kitchenledger/internal/repository"
	"kitchenledger/internal/units"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store ──────────────────────────────────────────────────────────

// memStore backs every stub repository. mu guards the maps; transactions are
// serialised by fakeTx, which snapshots the store and restores it on error.
type memStore struct {
	mu        sync.Mutex
	items     map[uuid.UUID]model.InventoryItem
	dishes    map[uuid.UUID]model.Dish
	orders    map[uuid.UUID]model.Order
	counters  map[string]int64
	waste     []model.WasteRecord
	notes     map[uuid.UUID]model.Notification
	now       func() time.Time
	dishLoads int
}

func newMemStore() *memStore {
	return &memStore{
		items:    make(map[uuid.UUID]model.InventoryItem),
		dishes:   make(map[uuid.UUID]model.Dish),
		orders:   make(map[uuid.UUID]model.Order),
		counters: make(map[string]int64),
		notes:    make(map[uuid.UUID]model.Notification),
		now:      time.Now,
	}
}

type snapshot struct {
	items    map[uuid.UUID]model.InventoryItem
	orders   map[uuid.UUID]model.Order
	counters map[string]int64
	waste    []model.WasteRecord
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		items:    make(map[uuid.UUID]model.InventoryItem, len(s.items)),
		orders:   make(map[uuid.UUID]model.Order, len(s.orders)),
		counters: make(map[string]int64, len(s.counters)),
		waste:    append([]model.WasteRecord(nil), s.waste...),
	}
	for k, v := range s.items {
		snap.items[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.counters {
		snap.counters[k] = v
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items, s.orders, s.counters, s.waste = snap.items, snap.orders, snap.counters, snap.waste
}

func (s *memStore) addItem(it model.InventoryItem) model.InventoryItem {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	s.mu.Lock()
	s.items[it.ID] = it
	s.mu.Unlock()
	return it
}

func (s *memStore) addDish(d model.Dish) model.Dish {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	s.mu.Lock()
	s.dishes[d.ID] = d
	s.mu.Unlock()
	return d
}

func (s *memStore) addOrder(o model.Order) model.Order {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	s.mu.Lock()
	s.orders[o.ID] = o
	s.mu.Unlock()
	return o
}

func (s *memStore) item(id uuid.UUID) model.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id]
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// ── Fake transactor ──────────────────────────────────────────────────────────

type fakeTx struct {
	mu        sync.Mutex
	store     *memStore
	rollbacks int
}

func (f *fakeTx) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.store.snapshot()
	if err := fn(nil); err != nil {
		f.store.restore(snap)
		f.rollbacks++
		return err
	}
	return nil
}

var _ repository.Transactor = (*fakeTx)(nil)

// ── Stub repositories ────────────────────────────────────────────────────────

type stubInventoryRepo struct{ s *memStore }

func (r *stubInventoryRepo) Create(_ context.Context, it *model.InventoryItem) error {
	*it = r.s.addItem(*it)
	return nil
}

func (r *stubInventoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &it, nil
}

func (r *stubInventoryRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.InventoryItem
	for _, id := range ids {
		if it, ok := r.s.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *stubInventoryRepo) ListAll(_ context.Context) ([]model.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.InventoryItem, 0, len(r.s.items))
	for _, it := range r.s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubInventoryRepo) LockByIDTx(_ *gorm.DB, id uuid.UUID) (*model.InventoryItem, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubInventoryRepo) DeductTx(_ *gorm.DB, id uuid.UUID, qty float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok || it.Quantity < qty {
		return repository.ErrStockChanged
	}
	it.Quantity -= qty
	r.s.items[id] = it
	return nil
}

var _ repository.InventoryRepository = (*stubInventoryRepo)(nil)

type stubDishRepo struct{ s *memStore }

func (r *stubDishRepo) Create(_ context.Context, d *model.Dish) error {
	*d = r.s.addDish(*d)
	return nil
}

func (r *stubDishRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Dish, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.dishes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (r *stubDishRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Dish, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.dishLoads++
	var out []model.Dish
	for _, id := range ids {
		if d, ok := r.s.dishes[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *stubDishRepo) ListWithIngredients(_ context.Context) ([]model.Dish, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Dish, 0, len(r.s.dishes))
	for _, d := range r.s.dishes {
		recipe := make([]model.RecipeLine, len(d.Recipe))
		for i, rl := range d.Recipe {
			if it, ok := r.s.items[rl.InventoryItemID]; ok {
				it := it
				rl.InventoryItem = &it
			}
			recipe[i] = rl
		}
		d.Recipe = recipe
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var _ repository.DishRepository = (*stubDishRepo)(nil)

type stubOrderRepo struct {
	s          *memStore
	failCreate bool
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	if r.failCreate {
		return errors.New("disk full")
	}
	o.ID = uuid.New()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.s.now()
	}
	r.s.addOrder(*o)
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *stubOrderRepo) ListByRange(_ context.Context, from, to time.Time) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, o := range r.s.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

type stubSequenceRepo struct{ s *memStore }

func (r *stubSequenceRepo) NextTx(_ *gorm.DB, name string, seed int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.counters[name]
	if !ok {
		v = seed
	} else {
		v++
	}
	r.s.counters[name] = v
	return v, nil
}

var _ repository.SequenceRepository = (*stubSequenceRepo)(nil)

type stubWasteRepo struct{ s *memStore }

func (r *stubWasteRepo) CreateTx(_ *gorm.DB, w *model.WasteRecord) error {
	w.ID = uuid.New()
	w.CreatedAt = r.s.now()
	r.s.mu.Lock()
	r.s.waste = append(r.s.waste, *w)
	r.s.mu.Unlock()
	return nil
}

func (r *stubWasteRepo) List(_ context.Context, itemID *uuid.UUID, _ int) ([]model.WasteRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.WasteRecord
	for _, w := range r.s.waste {
		if itemID == nil || w.InventoryItemID == *itemID {
			out = append(out, w)
		}
	}
	return out, nil
}

var _ repository.WasteRepository = (*stubWasteRepo)(nil)

type stubNotificationRepo struct{ s *memStore }

func (r *stubNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	n.ID = uuid.New()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.now()
	}
	r.s.mu.Lock()
	r.s.notes[n.ID] = *n
	r.s.mu.Unlock()
	return nil
}

func (r *stubNotificationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &n, nil
}

func (r *stubNotificationRepo) ListFor(_ context.Context, userID uuid.UUID, limit int) ([]model.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Notification
	for _, n := range r.s.notes {
		if n.TargetID == nil || *n.TargetID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ui, uj := out[i].Status == model.NotificationUnread, out[j].Status == model.NotificationUnread
		if ui != uj {
			return ui
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubNotificationRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := r.s.notes[id]
	n.Status = status
	r.s.notes[id] = n
	return nil
}

func (r *stubNotificationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.notes, id)
	return nil
}

func (r *stubNotificationRepo) ExistsWithTitleSince(_ context.Context, title string, since time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notes {
		if n.Title == title && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.NotificationRepository = (*stubNotificationRepo)(nil)

// ── Fixtures ─────────────────────────────────────────────────────────────────

func priced(name string, qty float64, stock units.Unit, price float64, purchaseUnit units.Unit, purchaseQty float64) model.InventoryItem {
	return model.InventoryItem{
		ID:               uuid.New(),
		Name:             name,
		SKU:              name,
		Quantity:         qty,
		Unit:             stock,
		PurchasePrice:    decimal.NewNullDecimal(decimal.NewFromFloat(price)),
		PurchaseUnit:     purchaseUnit,
		PurchaseQuantity: purchaseQty,
	}
}

func recipe(item model.InventoryItem, qty float64, u units.Unit) model.RecipeLine {
	return model.RecipeLine{
		ID:               uuid.New(),
		InventoryItemID:  item.ID,
		IngredientName:   item.Name,
		QuantityRequired: qty,
		Unit:             u,
	}
}

func dish(name, category string, price float64, lines ...model.RecipeLine) model.Dish {
	return model.Dish{ID: uuid.New(), Name: name, Category: category, Price: decimal.NewFromFloat(price), Recipe: lines}
}
