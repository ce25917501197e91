package handler

import (
	"time"

	ledgerapp "github.com/billingd/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountHandler handles ledger account API endpoints
type AccountHandler struct {
	BaseHandler
	service *ledgerapp.LedgerService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service *ledgerapp.LedgerService) *AccountHandler {
	return &AccountHandler{service: service}
}

// RegisterRoutes registers account routes on the given group
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.Create)
		accounts.GET("", h.List)
		accounts.GET("/:id", h.Get)
		accounts.PUT("/:id", h.Update)
		accounts.DELETE("/:id", h.Delete)
		accounts.GET("/:id/balance", h.Balance)
	}
}

// AccountListQuery represents filter parameters for account list
type AccountListQuery struct {
	Search     string `form:"search"`
	Type       string `form:"type"`
	ParentID   string `form:"parent_id"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Create godoc
//
//	@Summary	Create a ledger account
//	@Tags		accounts
//	@Router		/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.CreateAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
//
//	@Summary	List ledger accounts
//	@Tags		accounts
//	@Router		/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	var query AccountListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	parentID, err := parseOptionalID(query.ParentID)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := ledgerapp.AccountListFilter{
		Search:     query.Search,
		Type:       query.Type,
		ParentID:   parentID,
		ActiveOnly: query.ActiveOnly,
	}
	filter.Page, filter.PageSize = normalizePage(query.Page, query.PageSize)

	result, err := h.service.ListAccounts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get godoc
//
//	@Summary	Get a ledger account by ID
//	@Tags		accounts
//	@Router		/accounts/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	resp, err := h.service.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
//
//	@Summary	Update a ledger account
//	@Tags		accounts
//	@Router		/accounts/{id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req ledgerapp.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.UpdateAccount(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
//
//	@Summary	Delete a ledger account without transactions or children
//	@Tags		accounts
//	@Router		/accounts/{id} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Balance godoc
//
//	@Summary	Get an account balance as of a date
//	@Tags		accounts
//	@Router		/accounts/{id}/balance [get]
func (h *AccountHandler) Balance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := parseEndDate(raw)
		if err != nil {
			h.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
			return
		}
		asOf = *parsed
	}

	resp, err := h.service.BalanceAsOf(c.Request.Context(), id, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
