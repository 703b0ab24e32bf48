//go:build integration

package router_test

// End-to-end tests against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kitchenledger/internal/config"
	"kitchenledger/internal/dto"
	"kitchenledger/internal/infra"
	"kitchenledger/internal/middleware"
	"kitchenledger/internal/model"
	"kitchenledger/internal/repository"
	"kitchenledger/internal/router"
	"kitchenledger/internal/service"
	"kitchenledger/internal/units"
	"kitchenledger/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const e2eSecret = "e2e-secret-key"

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func signToken(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.JWTClaims{
		UserID:           userID.String(),
		Name:             role,
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(e2eSecret))
	require.NoError(t, err)
	return s
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server  *httptest.Server
	db      *gorm.DB
	staffID uuid.UUID
	staff   string
	manager string
	admin   string

	beef, bun, cola model.InventoryItem
	burger, soda    model.Dish
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("kitchenledger_test"),
		tcPostgres.WithUsername("kitchen"),
		tcPostgres.WithPassword("kitchen"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:        8000,
		Env:         "test",
		JWTSecret:   e2eSecret,
		DatabaseURL: pgURL,
		RedisURL:    rdURL,
		Timezone:    "UTC",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	env := &testEnv{db: db, staffID: uuid.New()}
	env.seed(t)

	analyzer := worker.NewMenuAnalyzer(
		repository.NewDishRepository(db),
		repository.NewInventoryRepository(db),
		service.NewNotificationService(repository.NewNotificationRepository(db)),
		infra.NewAdvisoryClient(nil, infra.DefaultRetryPolicy(), nil),
		nil,
		worker.AnalyzerConfig{},
		time.Now,
	)

	srv := httptest.NewServer(router.New(cfg, router.Deps{DB: db, Redis: rdb, Analyzer: analyzer}))
	t.Cleanup(srv.Close)

	env.server = srv
	env.staff = signToken(t, env.staffID, middleware.RoleStaff)
	env.manager = signToken(t, uuid.New(), middleware.RoleManager)
	env.admin = signToken(t, uuid.New(), middleware.RoleAdmin)
	return env
}

func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	priced := func(name string, qty float64, u units.Unit, price string, pu units.Unit, pq float64) model.InventoryItem {
		return model.InventoryItem{
			Name: name, SKU: name, Quantity: qty, Unit: u,
			PurchasePrice:    decimal.NewNullDecimal(decimal.RequireFromString(price)),
			PurchaseUnit:     pu,
			PurchaseQuantity: pq,
		}
	}
	e.beef = priced("Beef", 1000, units.Gram, "18", units.Kilogram, 1)
	e.bun = priced("Bun", 10, units.Each, "6", units.Each, 12)
	e.cola = priced("Cola", 24, units.Each, "12", units.Each, 24)
	for _, it := range []*model.InventoryItem{&e.beef, &e.bun, &e.cola} {
		require.NoError(t, e.db.Create(it).Error)
	}

	e.burger = model.Dish{Name: "Burger", Category: "Mains", Price: decimal.NewFromInt(14), Recipe: []model.RecipeLine{
		{InventoryItemID: e.bun.ID, IngredientName: "Bun", QuantityRequired: 1, Unit: units.Each, Position: 0},
		{InventoryItemID: e.beef.ID, IngredientName: "Beef", QuantityRequired: 180, Unit: units.Gram, Position: 1},
	}}
	e.soda = model.Dish{Name: "Cola", Category: "Drinks", Price: decimal.NewFromInt(3), Recipe: []model.RecipeLine{
		{InventoryItemID: e.cola.ID, IngredientName: "Cola", QuantityRequired: 1, Unit: units.Each},
	}}
	require.NoError(t, e.db.Create(&e.burger).Error)
	require.NoError(t, e.db.Create(&e.soda).Error)
}

func (e *testEnv) stockOf(t *testing.T, id uuid.UUID) float64 {
	t.Helper()
	var it model.InventoryItem
	require.NoError(t, e.db.First(&it, "id = ?", id).Error)
	return it.Quantity
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_ServiceCycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	env := setupTestEnv(t)
	srv := env.server

	// health
	resp := do(t, srv, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]any
	decodeJSON(t, resp, &health)
	assert.Equal(t, "ok", health["db"])
	assert.Equal(t, "ok", health["redis"])
	assert.Equal(t, "disabled", health["advisory"])
	assert.EqualValues(t, 0, health["dead_letters"])

	// place an order: two burgers and a cola
	resp = do(t, srv, http.MethodPost, "/v1/orders", jsonBody(t, dto.PlaceOrderRequest{
		DishIDs: []string{env.burger.ID.String(), env.burger.ID.String(), env.soda.ID.String()},
	}), env.staff)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var placed dto.PlaceOrderResponse
	decodeJSON(t, resp, &placed)
	assert.True(t, placed.Success)
	assert.Equal(t, service.DefaultOrderNumberSeed, placed.Order.OrderNumber)
	assert.True(t, decimal.NewFromInt(31).Equal(placed.Total), "total was %s", placed.Total)
	assert.Equal(t, env.staffID.String(), placed.Order.SoldBy)
	require.Len(t, placed.Order.Lines, 3)

	assert.InDelta(t, 640, env.stockOf(t, env.beef.ID), 1e-9)
	assert.InDelta(t, 8, env.stockOf(t, env.bun.ID), 1e-9)
	assert.InDelta(t, 23, env.stockOf(t, env.cola.ID), 1e-9)

	// overselling beef is rejected and leaves every item untouched
	resp = do(t, srv, http.MethodPost, "/v1/orders", jsonBody(t, dto.PlaceOrderRequest{
		DishIDs: []string{env.burger.ID.String(), env.burger.ID.String(), env.burger.ID.String(), env.burger.ID.String()},
	}), env.staff)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict map[string]any
	decodeJSON(t, resp, &conflict)
	assert.Equal(t, "Beef", conflict["ingredient"])
	assert.EqualValues(t, 640, conflict["on_hand"])
	assert.EqualValues(t, 720, conflict["needed"])
	assert.InDelta(t, 640, env.stockOf(t, env.beef.ID), 1e-9)
	assert.InDelta(t, 8, env.stockOf(t, env.bun.ID), 1e-9)

	// the next successful order takes the next number
	resp = do(t, srv, http.MethodPost, "/v1/orders", jsonBody(t, dto.PlaceOrderRequest{
		DishIDs: []string{env.soda.ID.String()},
	}), env.staff)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var second dto.PlaceOrderResponse
	decodeJSON(t, resp, &second)
	assert.Equal(t, service.DefaultOrderNumberSeed+1, second.Order.OrderNumber)

	// dish cost: 180 g beef at 18/kg plus half a bun
	resp = do(t, srv, http.MethodGet, "/v1/dishes/"+env.burger.ID.String()+"/cost", nil, env.manager)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cost dto.DishCostResponse
	decodeJSON(t, resp, &cost)
	assert.True(t, decimal.RequireFromString("3.74").Equal(cost.FoodCost), "food cost was %s", cost.FoodCost)
	assert.False(t, cost.MissingCostData)
	require.Len(t, cost.Breakdown, 2)

	// order cost
	resp = do(t, srv, http.MethodGet, "/v1/orders/"+placed.Order.ID+"/cost", nil, env.manager)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orderCost dto.OrderCostResponse
	decodeJSON(t, resp, &orderCost)
	assert.True(t, decimal.RequireFromString("7.98").Equal(orderCost.TotalFoodCost), "order food cost was %s", orderCost.TotalFoodCost)

	// sales summary for today
	resp = do(t, srv, http.MethodGet, "/v1/sales/summary?period=today", nil, env.manager)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary dto.SalesSummaryResponse
	decodeJSON(t, resp, &summary)
	assert.True(t, decimal.NewFromInt(34).Equal(summary.PeriodRevenue), "revenue was %s", summary.PeriodRevenue)
	assert.EqualValues(t, 2, summary.TotalSalesForPeriod)
	assert.Equal(t, "Burger", summary.BestSellingDish)
	assert.EqualValues(t, 2, summary.BestSellingDishCount)

	// staff cannot read sales
	resp = do(t, srv, http.MethodGet, "/v1/sales/summary", nil, env.staff)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// waste log deducts stock
	resp = do(t, srv, http.MethodPost, "/v1/waste", jsonBody(t, dto.LogWasteRequest{
		InventoryItemID: env.beef.ID.String(), Quantity: 40, Reason: "Dropped",
	}), env.manager)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var waste dto.WasteResponse
	decodeJSON(t, resp, &waste)
	assert.InDelta(t, 600, waste.RemainingStock, 1e-9)
	assert.Equal(t, "Dropped", waste.Reason)

	// wasting more than is on hand is a conflict
	resp = do(t, srv, http.MethodPost, "/v1/waste", jsonBody(t, dto.LogWasteRequest{
		InventoryItemID: env.bun.ID.String(), Quantity: 50,
	}), env.manager)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// the analyzer publishes a broadcast brief; without an advisory key it carries the placeholder text
	resp = do(t, srv, http.MethodPost, "/v1/analyzer/run", nil, env.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var run dto.AnalyzerRunResponse
	decodeJSON(t, resp, &run)
	assert.Equal(t, string(worker.OutcomePublished), run.Outcome)
	assert.Equal(t, 1, run.LowStock)
	assert.NotEmpty(t, run.NotificationID)

	resp = do(t, srv, http.MethodPost, "/v1/analyzer/run", nil, env.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &run)
	assert.Equal(t, string(worker.OutcomeAlreadySent), run.Outcome)

	// every role sees the broadcast
	resp = do(t, srv, http.MethodGet, "/v1/notifications", nil, env.staff)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var feed struct {
		Data []dto.NotificationResponse `json:"data"`
	}
	decodeJSON(t, resp, &feed)
	require.Len(t, feed.Data, 1)
	assert.Equal(t, worker.BriefTitle, feed.Data[0].Title)
	assert.Equal(t, infra.AdvisoryKeyMissing, feed.Data[0].Message)
	assert.Nil(t, feed.Data[0].TargetID)

	// no brief e-mails were attempted, so nothing is parked
	resp = do(t, srv, http.MethodGet, "/v1/jobs/dead-letters", nil, env.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dead dto.DeadLetterListResponse
	decodeJSON(t, resp, &dead)
	assert.Zero(t, dead.Total)
	assert.Empty(t, dead.Data)

	resp = do(t, srv, http.MethodGet, "/v1/jobs/dead-letters", nil, env.manager)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
