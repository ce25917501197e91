package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC,
// defaulting to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks the sort field against a whitelist. Returns
// defaultField when the input is empty or not whitelisted.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

var invoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"issue_date":     true,
	"due_date":       true,
	"total":          true,
	"status":         true,
}

var paymentSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"payment_number": true,
	"payment_date":   true,
	"amount":         true,
}

var accountSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"type":       true,
	"balance":    true,
}

var transactionSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"transaction_date": true,
	"amount":           true,
	"type":             true,
}
