package payroll

import (
	"go-payouts/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	payouts := r.Group("/payouts")
	{
		payouts.GET("/report", handler.GetReport)
		payouts.GET("/:period", handler.GetView)
		payouts.POST("/:period/reload", handler.Reload)
		payouts.PATCH("/:period/rates", handler.EditRate)
		if redisClient != nil {
			payouts.POST("/:period/save", middleware.Idempotency(redisClient), handler.Save)
		} else {
			payouts.POST("/:period/save", handler.Save)
		}
		payouts.GET("/:period/employees/:employeeId/days", handler.GetDays)
		payouts.GET("/:period/export.pdf", handler.ExportPDF)
		payouts.GET("/:period/export.xlsx", handler.ExportXLSX)
		payouts.GET("/:period/journal", handler.GetJournal)
	}
}
