package handler

import (
	"net/http"
	"strconv"
	"time"

	reportapp "github.com/billingd/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles financial report API endpoints
type ReportHandler struct {
	BaseHandler
	service  *reportapp.ReportService
	renderer reportapp.DocumentRenderer
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *reportapp.ReportService, renderer reportapp.DocumentRenderer) *ReportHandler {
	return &ReportHandler{service: service, renderer: renderer}
}

// RegisterRoutes registers report routes on the given group
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/monthly", h.Monthly)
		reports.GET("/quarterly", h.Quarterly)
		reports.GET("/yearly", h.Yearly)
		reports.GET("/custom", h.Custom)
		reports.GET("/document", h.Document)
	}
}

// Monthly godoc
//
//	@Summary	Financial report for one calendar month
//	@Tags		reports
//	@Router		/reports/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	year, ok := h.intQuery(c, "year")
	if !ok {
		return
	}
	month, ok := h.intQuery(c, "month")
	if !ok {
		return
	}

	rep, err := h.service.Monthly(c.Request.Context(), year, month)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rep)
}

// Quarterly godoc
//
//	@Summary	Financial report for one calendar quarter
//	@Tags		reports
//	@Router		/reports/quarterly [get]
func (h *ReportHandler) Quarterly(c *gin.Context) {
	year, ok := h.intQuery(c, "year")
	if !ok {
		return
	}
	quarter, ok := h.intQuery(c, "quarter")
	if !ok {
		return
	}

	rep, err := h.service.Quarterly(c.Request.Context(), year, quarter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rep)
}

// Yearly godoc
//
//	@Summary	Financial report for one calendar year
//	@Tags		reports
//	@Router		/reports/yearly [get]
func (h *ReportHandler) Yearly(c *gin.Context) {
	year, ok := h.intQuery(c, "year")
	if !ok {
		return
	}

	rep, err := h.service.Yearly(c.Request.Context(), year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rep)
}

// Custom godoc
//
//	@Summary	Financial report for a caller-supplied date range
//	@Tags		reports
//	@Router		/reports/custom [get]
func (h *ReportHandler) Custom(c *gin.Context) {
	start, end, ok := h.rangeQuery(c)
	if !ok {
		return
	}

	rep, err := h.service.Custom(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rep)
}

// Document godoc
//
//	@Summary	Rendered HTML report document for a date range
//	@Tags		reports
//	@Router		/reports/document [get]
func (h *ReportHandler) Document(c *gin.Context) {
	start, end, ok := h.rangeQuery(c)
	if !ok {
		return
	}

	doc, err := h.service.RenderReport(c.Request.Context(), h.renderer, start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}

func (h *ReportHandler) intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		h.BadRequest(c, "Missing required query parameter: "+name)
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		h.BadRequest(c, "Invalid query parameter: "+name)
		return 0, false
	}
	return value, true
}

func (h *ReportHandler) rangeQuery(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := parseDate(c.Query("start"))
	if err != nil || start == nil {
		h.BadRequest(c, "Invalid or missing start date, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	end, err := parseEndDate(c.Query("end"))
	if err != nil || end == nil {
		h.BadRequest(c, "Invalid or missing end date, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	return *start, *end, true
}
