package payroll

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-payouts/internal/middleware"
	payrollerrors "go-payouts/internal/payroll/errors"
	"go-payouts/internal/period"
	"go-payouts/internal/report"
	"go-payouts/internal/shared/apperror"
	"go-payouts/internal/shared/contextutil"
	"go-payouts/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idempotencyTTL = 24 * time.Hour

	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeText = "text/plain; charset=utf-8"
)

type Handler struct {
	service Service
	rdb     *redis.Client
	pdf     report.PDFOptions
	now     func() time.Time
}

func NewHandler(service Service, pdf report.PDFOptions) *Handler {
	return &Handler{service: service, pdf: pdf, now: time.Now}
}

func NewHandlerWithRedis(service Service, pdf report.PDFOptions, rdb *redis.Client) *Handler {
	h := NewHandler(service, pdf)
	h.rdb = rdb
	return h
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		contextutil.GetLogger(c.Request.Context(), zap.L()).Error("payouts request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// bindQueryError maps validator failures to field messages; anything else
// is a malformed value and becomes fallback.
func bindQueryError(err error, fallback error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperror.MapValidationError(err)
	}
	return fallback
}

func (h *Handler) period(c *gin.Context) (period.Period, bool) {
	p, err := period.Parse(c.Param("period"))
	if err != nil {
		h.writeServiceError(c, payrollerrors.ErrInvalidPeriod)
		return period.Period{}, false
	}
	return p, true
}

func (h *Handler) GetView(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, h.service.View(c.Request.Context(), p), nil)
}

func (h *Handler) Reload(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, h.service.Load(c.Request.Context(), p), nil)
}

func (h *Handler) EditRate(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}

	var req EditRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.EditRate(c.Request.Context(), p, req.EmployeeID, req.Mode, req.Value.String())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Save(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}

	resp, err := h.service.Save(c.Request.Context(), p)
	if err != nil {
		middleware.StoreIdempotent(c, h.rdb, nil, idempotencyTTL)
		h.writeServiceError(c, err)
		return
	}

	middleware.StoreIdempotent(c, h.rdb, resp, idempotencyTTL)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetDays(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}

	resp, err := h.service.Days(c.Request.Context(), p, c.Param("employeeId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ExportPDF(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}

	doc, err := h.service.Document(c.Request.Context(), p)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	data, err := report.RenderPDF(doc, h.pdf)
	if err != nil {
		h.writeServiceError(c, apperror.Wrap(err, apperror.CodeInternalError, "Payouts document could not be rendered", http.StatusInternalServerError))
		return
	}

	attachment(c, fmt.Sprintf("payouts_%s.pdf", p), contentTypePDF, data)
}

func (h *Handler) ExportXLSX(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}

	doc, err := h.service.Document(c.Request.Context(), p)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	data, err := report.RenderXLSX(doc)
	if err != nil {
		h.writeServiceError(c, apperror.Wrap(err, apperror.CodeInternalError, "Payouts spreadsheet could not be rendered", http.StatusInternalServerError))
		return
	}

	attachment(c, fmt.Sprintf("payouts_%s.xlsx", p), contentTypeXLSX, data)
}

// GetReport serves the range report as a text file, or as JSON with
// format=json. The date defaults to today in shop-local time.
func (h *Handler) GetReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeServiceError(c, bindQueryError(err, payrollerrors.ErrInvalidWeeks))
		return
	}

	end := period.ToCalendarDate(h.now())
	if req.Date != "" {
		d, err := period.ParseDate(req.Date)
		if err != nil {
			h.writeServiceError(c, payrollerrors.ErrInvalidDate)
			return
		}
		end = d
	}

	rep, err := h.service.Report(c.Request.Context(), end, req.Weeks)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if req.Format == "json" {
		response.Success(c, http.StatusOK, rep, nil)
		return
	}
	attachment(c, rep.FileName(), contentTypeText, []byte(rep.Text()))
}

func (h *Handler) GetJournal(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}

	var req JournalRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeServiceError(c, bindQueryError(err, apperror.InvalidField("Limit")))
		return
	}

	runs, err := h.service.Journal(c.Request.Context(), p, req.Limit)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(int64(len(runs)), 1, len(runs))
	response.Success(c, http.StatusOK, runs, &meta)
}

func attachment(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, contentType, data)
}
