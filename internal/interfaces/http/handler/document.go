package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradebooks/backend/internal/application/posting"
	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/interfaces/http/dto"
)

// DocumentHandler exposes the document lifecycle endpoints
type DocumentHandler struct {
	BaseHandler
	service *posting.Service
}

// NewDocumentHandler creates a document handler
func NewDocumentHandler(service *posting.Service, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{BaseHandler: NewBaseHandler(logger), service: service}
}

// RegisterRoutes registers the document routes
func (h *DocumentHandler) RegisterRoutes(group *gin.RouterGroup) {
	docs := group.Group("/documents")
	{
		docs.POST("", h.Create)
		docs.POST("/save-and-approve", h.SaveAndApprove)
		docs.GET("", h.List)
		docs.GET("/:id", h.Get)
		docs.PUT("/:id", h.Update)
		docs.DELETE("/:id", h.Delete)
		docs.POST("/:id/approve", h.Approve)
		docs.POST("/:id/cancel", h.Cancel)
		docs.POST("/:id/send", h.Send)
		docs.POST("/:id/convert-to-dispatch", h.ConvertToDispatch)
		docs.POST("/:id/convert-to-invoice", h.ConvertToInvoice)
	}
}

// Create creates a new draft document
func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.service.CreateDraft(c.Request.Context(), req.ToCommand())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewDocumentResponse(doc))
}

// SaveAndApprove creates and posts an adjustment-style document in one
// transaction.
func (h *DocumentHandler) SaveAndApprove(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.SaveAndApprove(c.Request.Context(), req.ToCommand())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.PostingResultResponse{
		Document:      dto.NewDocumentResponse(result.Document),
		AlreadyPosted: result.AlreadyPosted,
	})
}

// Get returns one document with its lines
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetDocument(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewDocumentResponse(doc))
}

// List returns documents matching the query filters
func (h *DocumentHandler) List(c *gin.Context) {
	var req dto.DocumentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	filter := req.ToFilter()
	if req.DocType != "" {
		filter.Filters["doc_type"] = req.DocType
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if req.PartnerID != "" {
		partnerID, err := uuid.Parse(req.PartnerID)
		if err == nil {
			filter.Filters["partner_id"] = partnerID
		}
	}
	if req.IssueDateFrom != "" {
		if from, err := time.Parse("2006-01-02", req.IssueDateFrom); err == nil {
			filter.Filters["issue_date_from"] = from
		}
	}
	if req.IssueDateTo != "" {
		if to, err := time.Parse("2006-01-02", req.IssueDateTo); err == nil {
			filter.Filters["issue_date_to"] = to
		}
	}

	page, err := h.service.ListDocuments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page, dto.NewDocumentResponses(page.Items)))
}

// Update replaces a draft's header fields and lines
func (h *DocumentHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.service.UpdateDraft(c.Request.Context(), id, req.ToCommand())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewDocumentResponse(doc))
}

// Delete removes a draft document
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteDraft(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Approve posts a draft: number, stock moves, ledger rows and status
// advance in one transaction.
func (h *DocumentHandler) Approve(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.PostingResultResponse{
		Document:      dto.NewDocumentResponse(result.Document),
		AlreadyPosted: result.AlreadyPosted,
	})
}

// Cancel reverses a posted document with compensating rows
func (h *DocumentHandler) Cancel(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req dto.CancelDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.service.Cancel(c.Request.Context(), id, posting.CancelCommand{
		Reason:          req.Reason,
		ExpectedVersion: req.Version,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewDocumentResponse(doc))
}

// Send transmits a posted sales invoice to the e-invoice provider
func (h *DocumentHandler) Send(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	doc, err := h.service.SendEInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewDocumentResponse(doc))
}

// ConvertToDispatch creates a draft dispatch note from a posted sales order
func (h *DocumentHandler) ConvertToDispatch(c *gin.Context) {
	h.convert(c, h.service.ConvertSalesOrderToDispatch)
}

// ConvertToInvoice creates a draft sales invoice from a posted dispatch note
func (h *DocumentHandler) ConvertToInvoice(c *gin.Context) {
	h.convert(c, h.service.ConvertDispatchToInvoice)
}

func (h *DocumentHandler) convert(c *gin.Context, fn func(context.Context, uuid.UUID) (*document.Document, error)) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	doc, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewDocumentResponse(doc))
}
