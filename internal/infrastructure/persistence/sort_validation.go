package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// DocumentSortFields contains allowed sort fields for documents
var DocumentSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"doc_type":    true,
	"number":      true,
	"status":      true,
	"issue_date":  true,
	"due_date":    true,
	"partner_id":  true,
	"gross_total": true,
	"posted_at":   true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"code":         true,
	"name":         true,
	"on_hand":      true,
	"current_cost": true,
	"sales_price":  true,
	"active":       true,
}

// PartnerSortFields contains allowed sort fields for partners
var PartnerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"kind":       true,
	"active":     true,
}

// LedgerEntrySortFields contains allowed sort fields for ledger entries
var LedgerEntrySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"entry_date": true,
	"due_date":   true,
	"debit":      true,
	"credit":     true,
	"status":     true,
}
