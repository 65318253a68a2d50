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

// SequenceSortFields contains allowed sort fields for sequences
var SequenceSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"prefix":     true,
	"latest_id":  true,
	"is_active":  true,
}

// PurchaseTransactionSortFields contains allowed sort fields for purchase transactions
var PurchaseTransactionSortFields = map[string]bool{
	"id":                    true,
	"created_at":            true,
	"updated_at":            true,
	"transaction_id":        true,
	"transaction_date":      true,
	"vendor_id":             true,
	"status":                true,
	"total_amount":          true,
	"grand_total":           true,
	"purchase_order_number": true,
}

// PurchaseTransactionItemSortFields contains allowed sort fields for purchase line items
var PurchaseTransactionItemSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"inventory_item_id": true,
	"quantity":          true,
	"unit_price":        true,
	"discount":          true,
	"tax_amount":        true,
	"total_price":       true,
	"warranty_period":   true,
}
