package handler

import (
	"context"
	"net/http"
	"time"

	"kitchenledger/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// BreakerReporter exposes the advisory circuit breaker state.
type BreakerReporter interface {
	BreakerState() string
}

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports the advisory breaker state and
// the number of parked brief e-mails; neither of those fails the check.
// dead may be nil when Redis is not configured.
func Health(db *gorm.DB, rdb *redis.Client, advisory BreakerReporter, dead DeadLetterStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "ok"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := infra.RedisStatus(ctx, rdb)

		advisoryStatus := "disabled"
		if advisory != nil {
			advisoryStatus = advisory.BreakerState()
		}

		var parked int64
		if dead != nil && redisStatus == "ok" {
			parked, _ = dead.Len(ctx)
		}

		status := http.StatusOK
		if dbStatus != "ok" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":           status == http.StatusOK,
			"db":           dbStatus,
			"redis":        redisStatus,
			"advisory":     advisoryStatus,
			"dead_letters": parked,
		})
	}
}
