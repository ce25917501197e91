package handler

import (
	billingapp "github.com/billingd/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice related API endpoints
type InvoiceHandler struct {
	BaseHandler
	service *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// RegisterRoutes registers invoice routes on the given group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.PUT("/:id", h.Update)
		invoices.DELETE("/:id", h.Delete)
		invoices.POST("/:id/status", h.ChangeStatus)
		invoices.POST("/:id/items", h.AddItem)
		invoices.PUT("/:id/items/:itemId", h.UpdateItem)
		invoices.DELETE("/:id/items/:itemId", h.RemoveItem)
		invoices.POST("/:id/terms", h.AddTerms)
		invoices.DELETE("/:id/terms/:termId", h.RemoveTerm)
	}
}

// InvoiceListQuery represents filter parameters for invoice list
type InvoiceListQuery struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	ClientID  string `form:"client_id"`
	ProjectID string `form:"project_id"`
	FromDate  string `form:"from_date"`
	ToDate    string `form:"to_date"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ChangeInvoiceStatusRequest represents a status transition request
type ChangeInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Create godoc
//
//	@Summary	Create an invoice
//	@Tags		invoices
//	@Router		/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req billingapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
//
//	@Summary	List invoices
//	@Tags		invoices
//	@Router		/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var query InvoiceListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter, err := query.toFilter()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get godoc
//
//	@Summary	Get an invoice by ID
//	@Tags		invoices
//	@Router		/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	resp, err := h.service.GetInvoiceByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
//
//	@Summary	Update invoice header fields
//	@Tags		invoices
//	@Router		/invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req billingapp.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.UpdateInvoice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
//
//	@Summary	Delete a draft invoice
//	@Tags		invoices
//	@Router		/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.service.DeleteInvoice(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ChangeStatus godoc
//
//	@Summary	Transition invoice status
//	@Tags		invoices
//	@Router		/invoices/{id}/status [post]
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req ChangeInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddItem godoc
//
//	@Summary	Add a line item to a draft invoice
//	@Tags		invoices
//	@Router		/invoices/{id}/items [post]
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req billingapp.InvoiceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateItem godoc
//
//	@Summary	Update a line item on a draft invoice
//	@Tags		invoices
//	@Router		/invoices/{id}/items/{itemId} [put]
func (h *InvoiceHandler) UpdateItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req billingapp.InvoiceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.UpdateItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem godoc
//
//	@Summary	Remove a line item from a draft invoice
//	@Tags		invoices
//	@Router		/invoices/{id}/items/{itemId} [delete]
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	resp, err := h.service.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddTerms godoc
//
//	@Summary	Attach installment terms to an invoice
//	@Tags		invoices
//	@Router		/invoices/{id}/terms [post]
func (h *InvoiceHandler) AddTerms(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req billingapp.AddTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.AddTerms(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveTerm godoc
//
//	@Summary	Remove an unpaid installment term
//	@Tags		invoices
//	@Router		/invoices/{id}/terms/{termId} [delete]
func (h *InvoiceHandler) RemoveTerm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	termID, err := uuid.Parse(c.Param("termId"))
	if err != nil {
		h.BadRequest(c, "Invalid term ID")
		return
	}

	resp, err := h.service.RemoveTerm(c.Request.Context(), id, termID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (q InvoiceListQuery) toFilter() (billingapp.InvoiceListFilter, error) {
	filter := billingapp.InvoiceListFilter{
		Search: q.Search,
		Status: q.Status,
	}

	clientID, err := parseOptionalID(q.ClientID)
	if err != nil {
		return filter, err
	}
	projectID, err := parseOptionalID(q.ProjectID)
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

	filter.ClientID = clientID
	filter.ProjectID = projectID
	filter.FromDate = fromDate
	filter.ToDate = toDate
	filter.Page, filter.PageSize = normalizePage(q.Page, q.PageSize)
	return filter, nil
}
