package productsale

import (
	"net/http"

	"go-payouts/internal/period"
	productsaleerrors "go-payouts/internal/productsale/errors"
	"go-payouts/internal/shared/apperror"
	"go-payouts/internal/shared/contextutil"
	"go-payouts/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		contextutil.GetLogger(c.Request.Context(), zap.L()).Error("product sale request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.service.Products(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, products, nil)
}

func (h *Handler) GetSales(c *gin.Context) {
	p, err := period.Parse(c.Param("period"))
	if err != nil {
		h.writeServiceError(c, productsaleerrors.ErrInvalidPeriod)
		return
	}

	var q ListSalesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	sales, err := h.service.List(c.Request.Context(), p, q.EmployeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	out := SaleList{Sales: sales}
	for _, s := range sales {
		out.Total += s.Payout.Round(0).IntPart()
	}
	response.Success(c, http.StatusOK, out, nil)
}

func (h *Handler) CreateSale(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	sale, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, sale, nil)
}
