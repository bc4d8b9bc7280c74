package app

import (
	"database/sql"
	"net/http"
	"os"

	"go-payouts/internal/config"
	"go-payouts/internal/journal"
	"go-payouts/internal/messaging/kafka"
	"go-payouts/internal/middleware"
	"go-payouts/internal/shared/connection"
	"go-payouts/internal/shared/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const connectRetries = 5

func postgresFromEnv() connection.PostgresConfig {
	return connection.PostgresConfig{
		Host:     os.Getenv("DB_HOST"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		Port:     os.Getenv("DB_PORT"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}
}

// BuildApp connects the infrastructure and registers every route on router.
// Postgres and redis are optional: without DB_HOST the save journal is off,
// without REDIS_ADDR the directory cache, save lock and idempotency are.
func BuildApp(router *gin.Engine, cfg *config.Config) error {
	logger := zap.L().Named("app")

	var (
		gormDB *gorm.DB
		sqlDB  *sql.DB
		rdb    *redis.Client
		err    error
	)

	if os.Getenv("DB_HOST") != "" {
		gormDB, err = connection.ConnectGORMWithRetry(postgresFromEnv(), connectRetries)
		if err != nil {
			return err
		}
		if err := migrate(gormDB); err != nil {
			return err
		}
		sqlDB, err = gormDB.DB()
		if err != nil {
			return err
		}
	} else {
		logger.Warn("DB_HOST not set, save journal disabled")
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb, err = connection.ConnectRedisWithRetry(addr, connectRetries)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("REDIS_ADDR not set, running without cache and distributed locks")
	}

	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(zap.L().Named("http")),
		middleware.RateLimitByIP(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	var journalService journal.Service
	if gormDB != nil {
		journalService = journal.NewService(sqlDB, journal.NewRepository(gormDB), kafka.NewOutboxRepository(sqlDB))
	}

	return registerModules(router, cfg, rdb, journalService)
}

// migrate creates the journal and outbox tables when they are missing.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&journal.Run{}); err != nil {
		return err
	}
	return db.Exec(kafka.OutboxSchema).Error
}
