package trade

import (
	"time"

	"github.com/erp/purchasing/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Purchase Transaction DTOs ====================

// CreatePurchaseTransactionRequest represents a request to create a purchase transaction
type CreatePurchaseTransactionRequest struct {
	VendorID            uuid.UUID `json:"vendor_id" binding:"required"`
	TransactionDate     time.Time `json:"transaction_date" binding:"required"`
	PurchaseOrderNumber string    `json:"purchase_order_number" binding:"max=255"`
	Remarks             string    `json:"remarks"`
	// IdempotencyKey is taken from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

// CreatePurchaseTransactionWithItemsRequest creates the header and its first items in one unit
type CreatePurchaseTransactionWithItemsRequest struct {
	CreatePurchaseTransactionRequest
	Items []CreateItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdatePurchaseTransactionRequest represents a header update; nil fields are kept
type UpdatePurchaseTransactionRequest struct {
	VendorID            *uuid.UUID `json:"vendor_id"`
	TransactionDate     *time.Time `json:"transaction_date"`
	PurchaseOrderNumber *string    `json:"purchase_order_number" binding:"omitempty,max=255"`
	Remarks             *string    `json:"remarks"`
}

// PurchaseTransactionListFilter represents filter options for the transaction listing
type PurchaseTransactionListFilter struct {
	VendorID            *uuid.UUID `form:"vendor_id"`
	Status              string     `form:"status"`
	DateFrom            *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo              *time.Time `form:"date_to" time_format:"2006-01-02"`
	PurchaseOrderNumber string     `form:"purchase_order_number"`
	SortBy              string     `form:"sort_by"`
	SortDesc            bool       `form:"sort_desc"`
	Page                int        `form:"page" binding:"omitempty,min=1"`
	PageSize            int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SearchPurchaseTransactionsRequest represents a free text search
type SearchPurchaseTransactionsRequest struct {
	Query    string     `form:"query" binding:"required,min=1"`
	VendorID *uuid.UUID `form:"vendor_id"`
	Status   string     `form:"status"`
}

// PurchaseTransactionResponse represents a purchase transaction in API responses
type PurchaseTransactionResponse struct {
	ID                  uuid.UUID       `json:"id"`
	TransactionID       string          `json:"transaction_id"`
	TransactionDate     time.Time       `json:"transaction_date"`
	VendorID            uuid.UUID       `json:"vendor_id"`
	Status              string          `json:"status"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	GrandTotal          decimal.Decimal `json:"grand_total"`
	PurchaseOrderNumber string          `json:"purchase_order_number,omitempty"`
	Remarks             string          `json:"remarks,omitempty"`
	IsEditable          bool            `json:"is_editable"`
	IsCancellable       bool            `json:"is_cancellable"`
	AllowedOperations   []string        `json:"allowed_operations"`
	Version             int             `json:"version"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`

	Items []PurchaseTransactionItemResponse `json:"items,omitempty"`
}

// ToPurchaseTransactionResponse converts a domain PurchaseTransaction to a response
func ToPurchaseTransactionResponse(t *trade.PurchaseTransaction) PurchaseTransactionResponse {
	ops := t.Status.AllowedOperations()
	allowed := make([]string, len(ops))
	for i, op := range ops {
		allowed[i] = op.String()
	}
	return PurchaseTransactionResponse{
		ID:                  t.ID,
		TransactionID:       t.TransactionID,
		TransactionDate:     t.TransactionDate,
		VendorID:            t.VendorID,
		Status:              t.Status.String(),
		TotalAmount:         t.TotalAmount,
		GrandTotal:          t.GrandTotal,
		PurchaseOrderNumber: t.PurchaseOrderNumber,
		Remarks:             t.Remarks,
		IsEditable:          t.IsEditable(),
		IsCancellable:       t.IsCancellable(),
		AllowedOperations:   allowed,
		Version:             t.Version,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

// StatisticsResponse summarizes active purchase transactions
type StatisticsResponse struct {
	TotalTransactions  int64            `json:"total_transactions"`
	TotalAmount        decimal.Decimal  `json:"total_amount"`
	RecentTransactions int64            `json:"recent_transactions"`
	RecentAmount       decimal.Decimal  `json:"recent_amount"`
	ByStatus           map[string]int64 `json:"by_status"`
	Since              time.Time        `json:"since"`
}

// ==================== Line Item DTOs ====================

// CreateItemRequest represents one line item to add
type CreateItemRequest struct {
	InventoryItemID    uuid.UUID       `json:"inventory_item_id" binding:"required"`
	WarehouseID        *uuid.UUID      `json:"warehouse_id"`
	Quantity           int             `json:"quantity" binding:"required,min=1"`
	UnitPrice          decimal.Decimal `json:"unit_price" binding:"required"`
	Discount           decimal.Decimal `json:"discount"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	SerialNumbers      []string        `json:"serial_number"`
	Remarks            string          `json:"remarks"`
	WarrantyPeriodType string          `json:"warranty_period_type" binding:"omitempty,oneof=DAYS MONTHS YEARS"`
	WarrantyPeriod     *int            `json:"warranty_period" binding:"omitempty,min=1"`
}

func (r CreateItemRequest) toInput() trade.ItemInput {
	return trade.ItemInput{
		InventoryItemID:    r.InventoryItemID,
		WarehouseID:        r.WarehouseID,
		Quantity:           r.Quantity,
		UnitPrice:          r.UnitPrice,
		Discount:           r.Discount,
		TaxAmount:          r.TaxAmount,
		SerialNumbers:      r.SerialNumbers,
		Remarks:            r.Remarks,
		WarrantyPeriodType: trade.WarrantyPeriodType(r.WarrantyPeriodType),
		WarrantyPeriod:     r.WarrantyPeriod,
	}
}

// CreateItemsBulkRequest adds several items atomically
type CreateItemsBulkRequest struct {
	Items []CreateItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateItemRequest represents an item update; nil fields are kept.
// An empty WarrantyPeriodType clears the warranty.
type UpdateItemRequest struct {
	UnitPrice          *decimal.Decimal `json:"unit_price"`
	Discount           *decimal.Decimal `json:"discount"`
	TaxAmount          *decimal.Decimal `json:"tax_amount"`
	Remarks            *string          `json:"remarks"`
	WarrantyPeriodType *string          `json:"warranty_period_type"`
	WarrantyPeriod     *int             `json:"warranty_period" binding:"omitempty,min=1"`
}

// PurchaseTransactionItemResponse represents a line item in API responses
type PurchaseTransactionItemResponse struct {
	ID                 uuid.UUID       `json:"id"`
	TransactionID      uuid.UUID       `json:"transaction_id"`
	InventoryItemID    uuid.UUID       `json:"inventory_item_id"`
	WarehouseID        *uuid.UUID      `json:"warehouse_id,omitempty"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Discount           decimal.Decimal `json:"discount"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	SerialNumbers      []string        `json:"serial_number"`
	Remarks            string          `json:"remarks,omitempty"`
	WarrantyPeriodType string          `json:"warranty_period_type,omitempty"`
	WarrantyPeriod     *int            `json:"warranty_period,omitempty"`
	HasWarranty        bool            `json:"has_warranty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ToItemResponse converts a domain PurchaseTransactionItem to a response
func ToItemResponse(i *trade.PurchaseTransactionItem) PurchaseTransactionItemResponse {
	serials := i.SerialNumbers
	if serials == nil {
		serials = []string{}
	}
	return PurchaseTransactionItemResponse{
		ID:                 i.ID,
		TransactionID:      i.TransactionID,
		InventoryItemID:    i.InventoryItemID,
		WarehouseID:        i.WarehouseID,
		Quantity:           i.Quantity,
		UnitPrice:          i.UnitPrice,
		Discount:           i.Discount,
		TaxAmount:          i.TaxAmount,
		TotalPrice:         i.TotalPrice,
		Subtotal:           i.Subtotal(),
		DiscountPercentage: i.DiscountPercentage().Round(2),
		SerialNumbers:      serials,
		Remarks:            i.Remarks,
		WarrantyPeriodType: string(i.WarrantyPeriodType),
		WarrantyPeriod:     i.WarrantyPeriod,
		HasWarranty:        i.HasWarranty(),
		CreatedAt:          i.CreatedAt,
		UpdatedAt:          i.UpdatedAt,
	}
}

// ToItemResponses converts a slice of items
func ToItemResponses(items []trade.PurchaseTransactionItem) []PurchaseTransactionItemResponse {
	out := make([]PurchaseTransactionItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	return out
}

// ItemSummaryResponse summarizes the items of one transaction
type ItemSummaryResponse struct {
	TransactionID          uuid.UUID       `json:"transaction_id"`
	TotalItems             int             `json:"total_items"`
	TotalQuantity          int             `json:"total_quantity"`
	TotalAmount            decimal.Decimal `json:"total_amount"`
	TotalDiscount          decimal.Decimal `json:"total_discount"`
	TotalTax               decimal.Decimal `json:"total_tax"`
	AverageUnitPrice       decimal.Decimal `json:"average_unit_price"`
	ItemsWithWarranty      int             `json:"items_with_warranty"`
	ItemsWithSerialNumbers int             `json:"items_with_serial_numbers"`
}
