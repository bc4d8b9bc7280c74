package productsale

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	payouts := r.Group("/payouts")
	{
		payouts.GET("/products", handler.GetProducts)
		payouts.POST("/product-sales", handler.CreateSale)
		payouts.GET("/:period/product-sales", handler.GetSales)
	}
}
