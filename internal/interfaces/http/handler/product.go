package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tradebooks/backend/internal/application/masterdata"
	"github.com/tradebooks/backend/internal/interfaces/http/dto"
)

// ProductHandler exposes product master data and stock queries
type ProductHandler struct {
	BaseHandler
	service *masterdata.Service
}

// NewProductHandler creates a product handler
func NewProductHandler(service *masterdata.Service, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{BaseHandler: NewBaseHandler(logger), service: service}
}

// RegisterRoutes registers the product routes
func (h *ProductHandler) RegisterRoutes(group *gin.RouterGroup) {
	products := group.Group("/products")
	{
		products.POST("", h.Create)
		products.GET("", h.List)
		products.GET("/:id", h.Get)
		products.PUT("/:id", h.Update)
		products.GET("/:id/on-hand", h.OnHand)
		products.GET("/:id/moves", h.Moves)
	}
}

// Create creates a new product
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), req.ToCommand())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewProductResponse(product))
}

// Get returns one product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewProductResponse(product))
}

// List returns products matching the query
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.service.ListProducts(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page, dto.NewProductResponses(page.Items)))
}

// Update changes a product's descriptive fields
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, req.ToCommand())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewProductResponse(product))
}

// OnHand returns the product's on-hand quantity as of an optional date
func (h *ProductHandler) OnHand(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var asOf *time.Time
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BindError(c, err)
			return
		}
		end := parsed.Add(24*time.Hour - time.Nanosecond)
		asOf = &end
	}

	onHand, err := h.service.OnHand(c.Request.Context(), id, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.OnHandResponse{ProductID: id, OnHand: onHand, AsOf: asOf})
}

// Moves returns the product's stock movement history
func (h *ProductHandler) Moves(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	moves, err := h.service.StockMoves(c.Request.Context(), id, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewStockMoveResponses(moves))
}
