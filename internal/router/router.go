package router

import (
	"time"

	"kitchenledger/internal/config"
	"kitchenledger/internal/handler"
	"kitchenledger/internal/middleware"
	"kitchenledger/internal/repository"
	"kitchenledger/internal/service"
	"kitchenledger/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators built by the composition root.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Advisory handler.BreakerReporter
	Analyzer worker.AnalyzerRunner
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	db := deps.DB
	loc := cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }

	// ── Repositories ─────────────────────────────────────────────────────────
	txm := repository.NewTransactor(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	dishRepo := repository.NewDishRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	wasteRepo := repository.NewWasteRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	sequenceRepo := repository.NewSequenceRepository()

	// ── Services ─────────────────────────────────────────────────────────────
	orderNumbers := service.NewSequenceAllocator(sequenceRepo, txm, service.OrderSequence, cfg.OrderNumberSeed)
	orderSvc := service.NewOrderService(txm, orderRepo, dishRepo, inventoryRepo, orderNumbers)
	costingSvc := service.NewCostingService(dishRepo, inventoryRepo, orderRepo)
	salesSvc := service.NewSalesService(orderRepo, dishRepo, inventoryRepo, now)
	wasteSvc := service.NewWasteService(txm, wasteRepo, inventoryRepo)
	notificationSvc := service.NewNotificationService(notificationRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ordersH := handler.NewOrdersHandler(orderSvc)
	costingH := handler.NewCostingHandler(costingSvc)
	salesH := handler.NewSalesHandler(salesSvc)
	wasteH := handler.NewWasteHandler(wasteSvc)
	notificationsH := handler.NewNotificationsHandler(notificationSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	var deadLetters handler.DeadLetterStore
	if deps.Redis != nil {
		deadLetters = worker.NewDeadLetters(deps.Redis, worker.QueueEmail)
	}
	r.GET("/health", handler.Health(db, deps.Redis, deps.Advisory, deadLetters))

	anyRole := middleware.RequireRole(middleware.RoleStaff, middleware.RoleManager, middleware.RoleAdmin)
	managers := middleware.RequireRole(middleware.RoleManager, middleware.RoleAdmin)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/orders", anyRole, ordersH.PlaceOrder)
		v1.GET("/orders/:id", anyRole, ordersH.GetOrder)
		v1.GET("/orders/:id/cost", managers, costingH.OrderCost)
		v1.GET("/dishes/:id/cost", managers, costingH.DishCost)

		sales := v1.Group("/sales", managers)
		{
			sales.GET("/summary", salesH.Summary)
			sales.GET("/summary.pdf", salesH.SummaryPDF)
			sales.GET("/orders", salesH.ListOrders)
		}

		waste := v1.Group("/waste", managers)
		{
			waste.POST("", wasteH.LogWaste)
			waste.GET("", wasteH.List)
		}

		notifications := v1.Group("/notifications", anyRole)
		{
			notifications.GET("", notificationsH.List)
			notifications.PATCH("/:id/read", notificationsH.MarkRead)
			notifications.DELETE("/:id", notificationsH.Delete)
		}

		adminOnly := middleware.RequireRole(middleware.RoleAdmin)
		if deps.Analyzer != nil {
			analyzerH := handler.NewAnalyzerHandler(deps.Analyzer)
			v1.POST("/analyzer/run", adminOnly, analyzerH.Run)
		}
		if deadLetters != nil {
			jobsH := handler.NewJobsHandler(deadLetters)
			jobs := v1.Group("/jobs/dead-letters", adminOnly)
			{
				jobs.GET("", jobsH.DeadLetters)
				jobs.POST("/requeue", jobsH.Requeue)
			}
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
