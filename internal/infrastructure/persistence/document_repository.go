package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document with its lines by ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var doc document.Document
	if err := r.db.WithContext(ctx).Preload("Lines").First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByExternalID finds the document carrying the given idempotency key
func (r *GormDocumentRepository) FindByExternalID(ctx context.Context, externalID string) (*document.Document, error) {
	var doc document.Document
	if err := r.db.WithContext(ctx).Preload("Lines").
		First(&doc, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByNumber finds the document with the given type and number
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, docType document.DocumentType, number string) (*document.Document, error) {
	var doc document.Document
	if err := r.db.WithContext(ctx).Preload("Lines").
		First(&doc, "doc_type = ? AND number = ?", docType, number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindAll finds documents matching the filter
func (r *GormDocumentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	query := r.applyFilter(r.db.WithContext(ctx).Model(&document.Document{}).Preload("Lines"), filter)
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindPaginated returns documents matching the filter with a total count
func (r *GormDocumentRepository) FindPaginated(ctx context.Context, filter shared.Filter) (shared.Paginated[document.Document], error) {
	total, err := r.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[document.Document]{}, err
	}

	docs, err := r.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[document.Document]{}, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = shared.DefaultFilter().PageSize
	}
	return shared.NewPaginated(docs, total, page, pageSize), nil
}

// Count counts documents matching the filter
func (r *GormDocumentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyConditions(r.db.WithContext(ctx).Model(&document.Document{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a document together with its lines
func (r *GormDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Omit("Lines").
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(doc).Error; err != nil {
		return err
	}
	return r.syncLines(tx, doc)
}

// SaveWithLock persists the aggregate under its optimistic version.
// Returns shared.ErrConcurrencyConflict when another transaction moved
// the version first.
func (r *GormDocumentRepository) SaveWithLock(ctx context.Context, doc *document.Document, expectedVersion int) error {
	tx := r.db.WithContext(ctx)
	result := tx.Model(&document.Document{}).
		Where("id = ? AND version = ?", doc.ID, expectedVersion).
		Updates(map[string]interface{}{
			"number":          doc.Number,
			"status":          doc.Status,
			"issue_date":      doc.IssueDate,
			"due_date":        doc.DueDate,
			"partner_id":      doc.PartnerID,
			"cash_account_id": doc.CashAccountID,
			"warehouse_id":    doc.WarehouseID,
			"currency":        doc.Currency,
			"fx_rate":         doc.FxRate,
			"external_id":     doc.ExternalID,
			"net_total":       doc.NetTotal,
			"vat_total":       doc.VatTotal,
			"gross_total":     doc.GrossTotal,
			"base_gross":      doc.BaseGross,
			"remark":          doc.Remark,
			"posted_at":       doc.PostedAt,
			"canceled_at":     doc.CanceledAt,
			"cancel_reason":   doc.CancelReason,
			"sent_at":         doc.SentAt,
			"version":         doc.Version,
			"updated_at":      doc.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return r.syncLines(tx, doc)
}

// Delete soft-deletes a document
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&document.Document{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// HardDelete removes a document and its lines permanently
func (r *GormDocumentRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("document_id = ?", id).Delete(&document.DocumentLine{}).Error; err != nil {
		return err
	}
	result := tx.Unscoped().Delete(&document.Document{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// syncLines brings the persisted line set in line with the aggregate:
// removed lines are deleted, current ones upserted.
func (r *GormDocumentRepository) syncLines(tx *gorm.DB, doc *document.Document) error {
	ids := make([]uuid.UUID, 0, len(doc.Lines))
	for i := range doc.Lines {
		doc.Lines[i].DocumentID = doc.ID
		ids = append(ids, doc.Lines[i].ID)
	}

	query := tx.Where("document_id = ?", doc.ID)
	if len(ids) > 0 {
		query = query.Where("id NOT IN ?", ids)
	}
	if err := query.Delete(&document.DocumentLine{}).Error; err != nil {
		return err
	}

	if len(doc.Lines) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&doc.Lines).Error
}

// applyFilter applies conditions, ordering and pagination to the query
func (r *GormDocumentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyConditions(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, DocumentSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyConditions applies filter conditions without ordering or pagination
func (r *GormDocumentRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "doc_type":
			query = query.Where("doc_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "partner_id":
			query = query.Where("partner_id = ?", value)
		case "cash_account_id":
			query = query.Where("cash_account_id = ?", value)
		case "issue_date_from":
			query = query.Where("issue_date >= ?", value)
		case "issue_date_to":
			query = query.Where("issue_date <= ?", value)
		}
	}
	if filter.Search != "" {
		query = query.Where("number ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormDocumentRepository implements document.Repository
var _ document.Repository = (*GormDocumentRepository)(nil)
