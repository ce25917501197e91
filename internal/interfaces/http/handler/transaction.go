package handler

import (
	ledgerapp "github.com/billingd/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles ledger transaction API endpoints
type TransactionHandler struct {
	BaseHandler
	service *ledgerapp.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(service *ledgerapp.LedgerService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// RegisterRoutes registers transaction routes on the given group
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.Record)
		transactions.POST("/income", h.RecordIncome)
		transactions.POST("/expense", h.RecordExpense)
		transactions.GET("", h.List)
		transactions.GET("/:id", h.Get)
		transactions.DELETE("/:id", h.Remove)
	}
}

// TransactionListQuery represents filter parameters for transaction list
type TransactionListQuery struct {
	AccountID string `form:"account_id"`
	Type      string `form:"type"`
	ClientID  string `form:"client_id"`
	InvoiceID string `form:"invoice_id"`
	FromDate  string `form:"from_date"`
	ToDate    string `form:"to_date"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Record godoc
//
//	@Summary	Record a ledger transaction
//	@Tags		transactions
//	@Router		/transactions [post]
func (h *TransactionHandler) Record(c *gin.Context) {
	var req ledgerapp.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.RecordTransaction(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RecordIncome godoc
//
//	@Summary	Record an income entry
//	@Tags		transactions
//	@Router		/transactions/income [post]
func (h *TransactionHandler) RecordIncome(c *gin.Context) {
	var req ledgerapp.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.RecordIncome(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RecordExpense godoc
//
//	@Summary	Record an expense entry
//	@Tags		transactions
//	@Router		/transactions/expense [post]
func (h *TransactionHandler) RecordExpense(c *gin.Context) {
	var req ledgerapp.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.RecordExpense(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
//
//	@Summary	List ledger transactions
//	@Tags		transactions
//	@Router		/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var query TransactionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter, err := query.toFilter()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get godoc
//
//	@Summary	Get a ledger transaction by ID
//	@Tags		transactions
//	@Router		/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	resp, err := h.service.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Remove godoc
//
//	@Summary	Remove a manually recorded transaction
//	@Tags		transactions
//	@Router		/transactions/{id} [delete]
func (h *TransactionHandler) Remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	if err := h.service.RemoveTransaction(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (q TransactionListQuery) toFilter() (ledgerapp.TransactionListFilter, error) {
	filter := ledgerapp.TransactionListFilter{
		Type: q.Type,
	}

	accountID, err := parseOptionalID(q.AccountID)
	if err != nil {
		return filter, err
	}
	clientID, err := parseOptionalID(q.ClientID)
	if err != nil {
		return filter, err
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

	filter.AccountID = accountID
	filter.ClientID = clientID
	filter.InvoiceID = invoiceID
	filter.FromDate = fromDate
	filter.ToDate = toDate
	filter.Page, filter.PageSize = normalizePage(q.Page, q.PageSize)
	return filter, nil
}
