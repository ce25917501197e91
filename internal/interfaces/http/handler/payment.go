package handler

import (
	billingapp "github.com/billingd/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment related API endpoints
type PaymentHandler struct {
	BaseHandler
	service *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers payment routes on the given group
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Create)
		payments.POST("/bulk", h.BulkApply)
		payments.GET("", h.List)
		payments.GET("/:id", h.Get)
		payments.PUT("/:id", h.Update)
		payments.DELETE("/:id", h.Delete)
		payments.POST("/:id/refund", h.Refund)
	}
}

// PaymentListQuery represents filter parameters for payment list
type PaymentListQuery struct {
	InvoiceID string `form:"invoice_id"`
	Method    string `form:"method"`
	FromDate  string `form:"from_date"`
	ToDate    string `form:"to_date"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BulkApplyRequest represents a batch of payments applied atomically
type BulkApplyRequest struct {
	Payments []billingapp.CreatePaymentRequest `json:"payments" binding:"required,min=1"`
}

// Create godoc
//
//	@Summary	Record a payment against an invoice
//	@Tags		payments
//	@Router		/payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req billingapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.CreatePayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// BulkApply godoc
//
//	@Summary	Record several payments in one atomic batch
//	@Tags		payments
//	@Router		/payments/bulk [post]
func (h *PaymentHandler) BulkApply(c *gin.Context) {
	var req BulkApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.BulkApply(c.Request.Context(), req.Payments)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
//
//	@Summary	List payments
//	@Tags		payments
//	@Router		/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var query PaymentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter, err := query.toFilter()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ListPayments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get godoc
//
//	@Summary	Get a payment by ID
//	@Tags		payments
//	@Router		/payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	resp, err := h.service.GetPaymentByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
//
//	@Summary	Update a payment on a non-finalized invoice
//	@Tags		payments
//	@Router		/payments/{id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req billingapp.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.UpdatePayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
//
//	@Summary	Delete a payment and roll back its effects
//	@Tags		payments
//	@Router		/payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.service.DeletePayment(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Refund godoc
//
//	@Summary	Refund part of a paid invoice
//	@Tags		payments
//	@Router		/payments/{id}/refund [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req billingapp.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Refund(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

func (q PaymentListQuery) toFilter() (billingapp.PaymentListFilter, error) {
	filter := billingapp.PaymentListFilter{
		Method: q.Method,
	}

	invoiceID, err := parseOptionalID(q.InvoiceID)
	if err != nil {
		return filter, err
	}
	fromDate, err := parseDate(q.FromDate)
	if err != nil {
		return filter, err
	}
	toDate, err := parseEndDate(q.ToDate)
	if err != nil {
		return filter, err
	}

	filter.InvoiceID = invoiceID
	filter.FromDate = fromDate
	filter.ToDate = toDate
	filter.Page, filter.PageSize = normalizePage(q.Page, q.PageSize)
	return filter, nil
}
