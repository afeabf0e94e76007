package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tradebooks/backend/internal/application/masterdata"
	"github.com/tradebooks/backend/internal/interfaces/http/dto"
)

// PartnerHandler exposes partner and cash account master data
type PartnerHandler struct {
	BaseHandler
	service *masterdata.Service
}

// NewPartnerHandler creates a partner handler
func NewPartnerHandler(service *masterdata.Service, logger *zap.Logger) *PartnerHandler {
	return &PartnerHandler{BaseHandler: NewBaseHandler(logger), service: service}
}

// RegisterRoutes registers the partner and cash account routes
func (h *PartnerHandler) RegisterRoutes(group *gin.RouterGroup) {
	partners := group.Group("/partners")
	{
		partners.POST("", h.CreatePartner)
		partners.GET("", h.ListPartners)
		partners.GET("/:id", h.GetPartner)
		partners.POST("/:id/deactivate", h.DeactivatePartner)
	}

	accounts := group.Group("/cash-accounts")
	{
		accounts.POST("", h.CreateCashAccount)
		accounts.GET("", h.ListCashAccounts)
		accounts.GET("/:id", h.GetCashAccount)
	}
}

// CreatePartner creates a new partner
func (h *PartnerHandler) CreatePartner(c *gin.Context) {
	var req dto.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	created, err := h.service.CreatePartner(c.Request.Context(), req.ToCommand())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewPartnerResponse(created))
}

// GetPartner returns one partner
func (h *PartnerHandler) GetPartner(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	found, err := h.service.GetPartner(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewPartnerResponse(found))
}

// ListPartners returns partners matching the query
func (h *PartnerHandler) ListPartners(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.service.ListPartners(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page, dto.NewPartnerResponses(page.Items)))
}

// DeactivatePartner marks a partner inactive
func (h *PartnerHandler) DeactivatePartner(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	found, err := h.service.DeactivatePartner(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewPartnerResponse(found))
}

// CreateCashAccount creates a new cash account
func (h *PartnerHandler) CreateCashAccount(c *gin.Context) {
	var req dto.CreateCashAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	account, err := h.service.CreateCashAccount(c.Request.Context(), req.ToCommand())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewCashAccountResponse(account))
}

// GetCashAccount returns one cash account
func (h *PartnerHandler) GetCashAccount(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	account, err := h.service.GetCashAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewCashAccountResponse(account))
}

// ListCashAccounts returns cash accounts matching the query
func (h *PartnerHandler) ListCashAccounts(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	accounts, err := h.service.ListCashAccounts(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewCashAccountResponses(accounts))
}
