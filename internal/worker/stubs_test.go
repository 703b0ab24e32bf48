package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"kitchenledger/internal/dto"
	"kitchenledger/internal/model"
	"kitchenledger/internal/service"
	"kitchenledger/internal/units"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// ── repositories ─────────────────────────────────────────────────────────────

type stubDishRepo struct{ dishes []model.Dish }

func (r *stubDishRepo) Create(context.Context, *model.Dish) error { return nil }
func (r *stubDishRepo) FindByID(context.Context, uuid.UUID) (*model.Dish, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *stubDishRepo) FindByIDs(context.Context, []uuid.UUID) ([]model.Dish, error) {
	return nil, nil
}
func (r *stubDishRepo) ListWithIngredients(context.Context) ([]model.Dish, error) {
	out := make([]model.Dish, len(r.dishes))
	copy(out, r.dishes)
	return out, nil
}

type stubInventoryRepo struct {
	items []model.InventoryItem
	err   error
}

func (r *stubInventoryRepo) Create(context.Context, *model.InventoryItem) error { return nil }
func (r *stubInventoryRepo) FindByID(context.Context, uuid.UUID) (*model.InventoryItem, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *stubInventoryRepo) FindByIDs(context.Context, []uuid.UUID) ([]model.InventoryItem, error) {
	return nil, nil
}
func (r *stubInventoryRepo) ListAll(context.Context) ([]model.InventoryItem, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]model.InventoryItem, len(r.items))
	copy(out, r.items)
	return out, nil
}
func (r *stubInventoryRepo) LockByIDTx(*gorm.DB, uuid.UUID) (*model.InventoryItem, error) {
	return nil, errors.New("not used")
}
func (r *stubInventoryRepo) DeductTx(*gorm.DB, uuid.UUID, float64) error {
	return errors.New("not used")
}

// ── notifications ────────────────────────────────────────────────────────────

type stubNotifications struct {
	mu    sync.Mutex
	notes []model.Notification
}

var _ service.NotificationService = (*stubNotifications)(nil)

func (s *stubNotifications) Create(_ context.Context, kind, title, message string, target *uuid.UUID) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := model.Notification{
		ID: uuid.New(), Type: kind, Title: title, Message: message,
		TargetID: target, Status: model.NotificationUnread, CreatedAt: fixedNow,
	}
	s.notes = append(s.notes, n)
	return &n, nil
}

func (s *stubNotifications) ListFor(context.Context, uuid.UUID) ([]dto.NotificationResponse, error) {
	return nil, nil
}
func (s *stubNotifications) MarkRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (s *stubNotifications) Delete(context.Context, uuid.UUID, service.Requester) error {
	return nil
}

func (s *stubNotifications) ExistsSince(_ context.Context, title string, since time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes {
		if n.Title == title && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubNotifications) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

// ── advisor / mailer ─────────────────────────────────────────────────────────

type stubAdvisor struct {
	reply   string
	prompts []string
}

func (a *stubAdvisor) Generate(_ context.Context, _, userPrompt string) string {
	a.prompts = append(a.prompts, userPrompt)
	return a.reply
}

type stubMailer struct {
	payloads []EmailJobPayload
	err      error
}

func (m *stubMailer) EnqueueEmail(_ context.Context, p EmailJobPayload) error {
	m.payloads = append(m.payloads, p)
	return m.err
}

type stubSender struct {
	configured bool
	failFirst  int
	calls      int
	to         []string
}

func (s *stubSender) Configured() bool { return s.configured }

func (s *stubSender) SendBrief(to []string, _, _, _ string) error {
	s.calls++
	s.to = to
	if s.calls <= s.failFirst {
		return errors.New("421 service not available")
	}
	return nil
}

// ── fixtures ─────────────────────────────────────────────────────────────────

func item(name string, qty float64, u units.Unit) model.InventoryItem {
	return model.InventoryItem{ID: uuid.New(), Name: name, SKU: name, Quantity: qty, Unit: u, PurchaseUnit: u, PurchaseQuantity: 1}
}

func priced(name string, qty float64, u units.Unit, price float64, purchaseUnit units.Unit, purchaseQty float64) model.InventoryItem {
	it := item(name, qty, u)
	it.PurchasePrice = decimal.NewNullDecimal(decimal.NewFromFloat(price))
	it.PurchaseUnit = purchaseUnit
	it.PurchaseQuantity = purchaseQty
	return it
}

func expiring(it model.InventoryItem, receivedDaysAgo, shelfLife int) model.InventoryItem {
	received := fixedNow.AddDate(0, 0, -receivedDaysAgo)
	it.DateReceived = &received
	it.ExpiresInDays = &shelfLife
	return it
}

// line builds a recipe line with the ingredient preloaded, as ListWithIngredients does.
func line(it model.InventoryItem, qty float64, u units.Unit) model.RecipeLine {
	cp := it
	return model.RecipeLine{
		ID: uuid.New(), InventoryItemID: it.ID, IngredientName: it.Name,
		QuantityRequired: qty, Unit: u, InventoryItem: &cp,
	}
}

// deletedLine references an ingredient that no longer exists.
func deletedLine(name string, qty float64, u units.Unit) model.RecipeLine {
	return model.RecipeLine{ID: uuid.New(), InventoryItemID: uuid.New(), IngredientName: name, QuantityRequired: qty, Unit: u}
}

func dish(name string, price float64, lines ...model.RecipeLine) model.Dish {
	return model.Dish{ID: uuid.New(), Name: name, Category: "Mains", Price: decimal.NewFromFloat(price), Recipe: lines}
}
