package trade

import (
	"fmt"
	"strings"

	"github.com/erp/purchasing/internal/domain/catalog"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// WarrantyPeriodType is the unit of a warranty period
type WarrantyPeriodType string

const (
	WarrantyPeriodDays   WarrantyPeriodType = "DAYS"
	WarrantyPeriodMonths WarrantyPeriodType = "MONTHS"
	WarrantyPeriodYears  WarrantyPeriodType = "YEARS"
)

// IsValid checks if the warranty period type is known
func (w WarrantyPeriodType) IsValid() bool {
	switch w {
	case WarrantyPeriodDays, WarrantyPeriodMonths, WarrantyPeriodYears:
		return true
	}
	return false
}

// PurchaseTransactionItem is one purchased line within a transaction
type PurchaseTransactionItem struct {
	shared.BaseEntity
	shared.SoftDeletable
	TransactionID      uuid.UUID
	InventoryItemID    uuid.UUID
	WarehouseID        *uuid.UUID
	Quantity           int
	UnitPrice          decimal.Decimal
	Discount           decimal.Decimal
	TaxAmount          decimal.Decimal
	TotalPrice         decimal.Decimal
	SerialNumbers      []string
	Remarks            string
	WarrantyPeriodType WarrantyPeriodType
	WarrantyPeriod     *int
}

// ItemInput holds the fields of a new line item
type ItemInput struct {
	InventoryItemID    uuid.UUID
	WarehouseID        *uuid.UUID
	Quantity           int
	UnitPrice          decimal.Decimal
	Discount           decimal.Decimal
	TaxAmount          decimal.Decimal
	SerialNumbers      []string
	Remarks            string
	WarrantyPeriodType WarrantyPeriodType
	WarrantyPeriod     *int
}

// NewPurchaseTransactionItem creates a line item and computes its total price
func NewPurchaseTransactionItem(transactionID uuid.UUID, in ItemInput) (*PurchaseTransactionItem, error) {
	if transactionID == uuid.Nil {
		return nil, shared.NewValidationError("transaction_id", "Transaction ID cannot be empty")
	}
	if in.InventoryItemID == uuid.Nil {
		return nil, shared.NewValidationError("inventory_item_id", "Inventory item ID cannot be empty")
	}
	if in.Quantity <= 0 {
		return nil, shared.NewValidationError("quantity", "Quantity must be greater than 0")
	}
	if err := validateAmount("unit_price", in.UnitPrice); err != nil {
		return nil, err
	}
	if err := validateAmount("discount", in.Discount); err != nil {
		return nil, err
	}
	if err := validateAmount("tax_amount", in.TaxAmount); err != nil {
		return nil, err
	}
	serials, err := normalizeSerials(in.SerialNumbers)
	if err != nil {
		return nil, err
	}
	if err := validateWarranty(in.WarrantyPeriodType, in.WarrantyPeriod); err != nil {
		return nil, err
	}

	item := &PurchaseTransactionItem{
		BaseEntity:         shared.NewBaseEntity(),
		SoftDeletable:      shared.SoftDeletable{IsActive: true},
		TransactionID:      transactionID,
		InventoryItemID:    in.InventoryItemID,
		WarehouseID:        in.WarehouseID,
		Quantity:           in.Quantity,
		UnitPrice:          in.UnitPrice,
		Discount:           in.Discount,
		TaxAmount:          in.TaxAmount,
		SerialNumbers:      serials,
		Remarks:            in.Remarks,
		WarrantyPeriodType: in.WarrantyPeriodType,
		WarrantyPeriod:     in.WarrantyPeriod,
	}
	item.recalculate()
	return item, nil
}

// Subtotal returns unit_price x quantity
func (i *PurchaseTransactionItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// DiscountPercentage returns the discount as a percentage of the subtotal
func (i *PurchaseTransactionItem) DiscountPercentage() decimal.Decimal {
	subtotal := i.Subtotal()
	if subtotal.IsZero() {
		return decimal.Zero
	}
	return i.Discount.Div(subtotal).Mul(decimal.NewFromInt(100))
}

// HasWarranty reports whether warranty information is present
func (i *PurchaseTransactionItem) HasWarranty() bool {
	return i.WarrantyPeriodType != "" && i.WarrantyPeriod != nil
}

// HasSerialNumbers reports whether any serial number is recorded
func (i *PurchaseTransactionItem) HasSerialNumbers() bool {
	return len(i.SerialNumbers) > 0
}

// PricingUpdate carries the pricing fields to change; nil fields are kept
type PricingUpdate struct {
	UnitPrice *decimal.Decimal
	Discount  *decimal.Decimal
	TaxAmount *decimal.Decimal
}

// UpdatePricing validates and applies u, then recomputes total_price
func (i *PurchaseTransactionItem) UpdatePricing(u PricingUpdate) error {
	if u.UnitPrice != nil {
		if err := validateAmount("unit_price", *u.UnitPrice); err != nil {
			return err
		}
	}
	if u.Discount != nil {
		if err := validateAmount("discount", *u.Discount); err != nil {
			return err
		}
	}
	if u.TaxAmount != nil {
		if err := validateAmount("tax_amount", *u.TaxAmount); err != nil {
			return err
		}
	}

	if u.UnitPrice != nil {
		i.UnitPrice = *u.UnitPrice
	}
	if u.Discount != nil {
		i.Discount = *u.Discount
	}
	if u.TaxAmount != nil {
		i.TaxAmount = *u.TaxAmount
	}
	i.recalculate()
	i.Touch()
	return nil
}

// UpdateWarranty replaces the warranty pair; both empty clears it
func (i *PurchaseTransactionItem) UpdateWarranty(periodType WarrantyPeriodType, period *int) error {
	if err := validateWarranty(periodType, period); err != nil {
		return err
	}
	i.WarrantyPeriodType = periodType
	i.WarrantyPeriod = period
	i.Touch()
	return nil
}

// UpdateRemarks replaces the remarks
func (i *PurchaseTransactionItem) UpdateRemarks(remarks string) {
	i.Remarks = remarks
	i.Touch()
}

// ValidateForTracking checks the serial numbers against the inventory item's
// tracking discipline
func (i *PurchaseTransactionItem) ValidateForTracking(tracking catalog.TrackingType) error {
	switch tracking {
	case catalog.TrackingTypeIndividual:
		if len(i.SerialNumbers) == 0 {
			plural := ""
			if i.Quantity > 1 {
				plural = "s"
			}
			return shared.NewValidationError("serial_number",
				fmt.Sprintf("Individual tracking items require %d serial number%s", i.Quantity, plural))
		}
		if len(i.SerialNumbers) != i.Quantity {
			return shared.NewValidationError("serial_number",
				fmt.Sprintf("Number of serial numbers (%d) must match quantity (%d)", len(i.SerialNumbers), i.Quantity))
		}
		if dups := lo.FindDuplicates(i.SerialNumbers); len(dups) > 0 {
			return shared.NewValidationError("serial_number", "Serial numbers must be unique").
				WithDetail("value", strings.Join(dups, ","))
		}
	case catalog.TrackingTypeBulk:
		if len(i.SerialNumbers) > 1 {
			return shared.NewValidationError("serial_number", "Bulk tracked items can have at most one serial number")
		}
	default:
		return shared.NewValidationError("tracking_type", "Unknown tracking type: "+tracking.String())
	}
	return nil
}

// recalculate sets total_price to max(0, unit_price x quantity - discount + tax_amount)
func (i *PurchaseTransactionItem) recalculate() {
	total := i.Subtotal().Sub(i.Discount).Add(i.TaxAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	i.TotalPrice = total
}

// amountScale is the number of decimal places persisted for money columns
const amountScale = 2

func validateAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewValidationError(field, "Amount cannot be negative")
	}
	if !amount.Equal(amount.Truncate(amountScale)) {
		return shared.NewValidationError(field, "Amount cannot have more than 2 decimal places")
	}
	return nil
}

func validateWarranty(periodType WarrantyPeriodType, period *int) error {
	if periodType != "" && !periodType.IsValid() {
		return shared.NewValidationError("warranty_period_type", "Warranty period type must be one of: DAYS, MONTHS, YEARS")
	}
	if (periodType != "") != (period != nil) {
		return shared.NewValidationError("warranty_period",
			"Both warranty period type and warranty period must be provided together")
	}
	if period != nil && *period <= 0 {
		return shared.NewValidationError("warranty_period", "Warranty period must be greater than 0")
	}
	return nil
}

func normalizeSerials(serials []string) ([]string, error) {
	out := make([]string, 0, len(serials))
	for _, s := range serials {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, shared.NewValidationError("serial_number", "Serial number cannot be empty")
		}
		out = append(out, s)
	}
	return out, nil
}

// SerialNumbersOf returns every serial number carried by items, in order
func SerialNumbersOf(items []*PurchaseTransactionItem) []string {
	return lo.FlatMap(items, func(item *PurchaseTransactionItem, _ int) []string {
		return item.SerialNumbers
	})
}

// DuplicateSerialNumbers returns serial numbers appearing more than once across items
func DuplicateSerialNumbers(items []*PurchaseTransactionItem) []string {
	return lo.FindDuplicates(SerialNumbersOf(items))
}
