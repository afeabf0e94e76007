package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tradebooks/backend/internal/application/cash"
	"github.com/tradebooks/backend/internal/interfaces/http/dto"
)

// CashHandler exposes cash account operations: receipt and payment
// submission, balances, statements and balance recomputation.
type CashHandler struct {
	BaseHandler
	service *cash.Service
}

// NewCashHandler creates a cash handler
func NewCashHandler(service *cash.Service, logger *zap.Logger) *CashHandler {
	return &CashHandler{BaseHandler: NewBaseHandler(logger), service: service}
}

// RegisterRoutes registers the cash routes
func (h *CashHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/receipts", h.SubmitReceipt)
	group.POST("/payments", h.SubmitPayment)

	accounts := group.Group("/cash-accounts")
	{
		accounts.GET("/:id/balance", h.Balance)
		accounts.GET("/:id/statement", h.Statement)
		accounts.POST("/:id/recompute-balances", h.RecomputeBalances)
	}
}

// SubmitReceipt posts money received from a partner in one step
func (h *CashHandler) SubmitReceipt(c *gin.Context) {
	h.submit(c, h.service.SubmitReceipt)
}

// SubmitPayment posts money paid to a partner in one step
func (h *CashHandler) SubmitPayment(c *gin.Context) {
	h.submit(c, h.service.SubmitPayment)
}

func (h *CashHandler) submit(c *gin.Context, fn func(context.Context, cash.SubmitCommand) (*cash.SubmitResult, error)) {
	var req dto.SubmitCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := fn(c.Request.Context(), req.ToCommand())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewCashSubmitResponse(result))
}

// Balance returns the account's balance as of an optional date
func (h *CashHandler) Balance(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	asOf, ok := h.bindAsOf(c)
	if !ok {
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), id, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.BalanceResponse{Balance: balance, AsOf: asOf})
}

// Statement returns the account's entries with running balances
func (h *CashHandler) Statement(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	entries, err := h.service.Statement(c.Request.Context(), id, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewCashEntryResponses(entries))
}

// RecomputeBalances rewrites the account's running balance chain after
// a back-dated entry.
func (h *CashHandler) RecomputeBalances(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	changed, err := h.service.RecomputeBalances(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.RecomputeResponse{RowsChanged: changed})
}

// bindAsOf parses the optional as_of query date
func (h *CashHandler) bindAsOf(c *gin.Context) (*time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		h.BindError(c, err)
		return nil, false
	}
	// End of day so entries on the date itself are included
	asOf := parsed.Add(24*time.Hour - time.Nanosecond)
	return &asOf, true
}
