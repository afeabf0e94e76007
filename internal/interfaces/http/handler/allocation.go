package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tradebooks/backend/internal/application/allocation"
	"github.com/tradebooks/backend/internal/interfaces/http/dto"
)

// AllocationHandler exposes payment allocation operations
type AllocationHandler struct {
	BaseHandler
	service *allocation.Service
}

// NewAllocationHandler creates an allocation handler
func NewAllocationHandler(service *allocation.Service, logger *zap.Logger) *AllocationHandler {
	return &AllocationHandler{BaseHandler: NewBaseHandler(logger), service: service}
}

// RegisterRoutes registers the allocation routes
func (h *AllocationHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/allocations", h.Allocate)
	group.DELETE("/allocations/:id", h.Deallocate)

	partners := group.Group("/partners")
	{
		partners.POST("/:id/auto-allocate", h.AutoAllocate)
		partners.GET("/:id/allocations", h.PartnerAllocations)
		partners.GET("/:id/open-entries", h.OpenEntries)
		partners.GET("/:id/balance", h.PartnerBalance)
	}
}

// Allocate settles a caller-chosen invoice/payment pair
func (h *AllocationHandler) Allocate(c *gin.Context) {
	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	row, err := h.service.Allocate(c.Request.Context(), allocation.AllocateCommand{
		InvoiceEntryID: req.InvoiceEntryID,
		PaymentEntryID: req.PaymentEntryID,
		Amount:         req.Amount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewAllocationResponse(row))
}

// Deallocate deletes one allocation row and reopens both entries
func (h *AllocationHandler) Deallocate(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.service.Deallocate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AutoAllocate settles the partner's open invoices oldest due date first
func (h *AllocationHandler) AutoAllocate(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	rows, err := h.service.AutoAllocate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewAllocationResponses(rows))
}

// PartnerAllocations returns the partner's allocation rows
func (h *AllocationHandler) PartnerAllocations(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	rows, err := h.service.PartnerAllocations(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]dto.AllocationResponse, 0, len(rows))
	for idx := range rows {
		out = append(out, dto.NewAllocationResponse(&rows[idx]))
	}
	h.Success(c, out)
}

// OpenEntries returns the partner's allocatable ledger entries
func (h *AllocationHandler) OpenEntries(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	entries, err := h.service.OpenEntries(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewPartnerEntryResponses(entries))
}

// PartnerBalance returns the partner's debit minus credit total
func (h *AllocationHandler) PartnerBalance(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	balance, err := h.service.PartnerBalance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.BalanceResponse{Balance: balance})
}
