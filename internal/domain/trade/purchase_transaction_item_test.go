package trade

import (
	"testing"

	"github.com/erp/purchasing/internal/domain/catalog"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(t *testing.T, transactionID uuid.UUID, qty int, unitPrice, discount, tax string, serials ...string) *PurchaseTransactionItem {
	item, err := NewPurchaseTransactionItem(transactionID, ItemInput{
		InventoryItemID: uuid.New(),
		Quantity:        qty,
		UnitPrice:       decimal.RequireFromString(unitPrice),
		Discount:        decimal.RequireFromString(discount),
		TaxAmount:       decimal.RequireFromString(tax),
		SerialNumbers:   serials,
	})
	require.NoError(t, err)
	return item
}

func intPtr(v int) *int { return &v }

func TestNewPurchaseTransactionItem_TotalPrice(t *testing.T) {
	tests := []struct {
		name      string
		qty       int
		unitPrice string
		discount  string
		tax       string
		want      string
	}{
		{"discount and tax", 5, "50.00", "25.00", "12.50", "237.50"},
		{"plain", 2, "10.00", "0", "0", "20.00"},
		{"clamped at zero", 1, "10.00", "50.00", "5.00", "0"},
		{"discount equals subtotal plus tax", 1, "10.00", "15.00", "5.00", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := newTestItem(t, uuid.New(), tt.qty, tt.unitPrice, tt.discount, tt.tax)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(item.TotalPrice), item.TotalPrice.String())
		})
	}
}

func TestNewPurchaseTransactionItem_Validation(t *testing.T) {
	base := func() ItemInput {
		return ItemInput{InventoryItemID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(1)}
	}

	tests := []struct {
		name   string
		mutate func(in *ItemInput)
	}{
		{"zero quantity", func(in *ItemInput) { in.Quantity = 0 }},
		{"negative quantity", func(in *ItemInput) { in.Quantity = -1 }},
		{"negative price", func(in *ItemInput) { in.UnitPrice = decimal.NewFromInt(-1) }},
		{"negative discount", func(in *ItemInput) { in.Discount = decimal.NewFromInt(-1) }},
		{"negative tax", func(in *ItemInput) { in.TaxAmount = decimal.NewFromInt(-1) }},
		{"missing inventory item", func(in *ItemInput) { in.InventoryItemID = uuid.Nil }},
		{"warranty type without period", func(in *ItemInput) { in.WarrantyPeriodType = WarrantyPeriodDays }},
		{"warranty period without type", func(in *ItemInput) { in.WarrantyPeriod = intPtr(3) }},
		{"warranty period zero", func(in *ItemInput) {
			in.WarrantyPeriodType = WarrantyPeriodMonths
			in.WarrantyPeriod = intPtr(0)
		}},
		{"unknown warranty type", func(in *ItemInput) {
			in.WarrantyPeriodType = WarrantyPeriodType("WEEKS")
			in.WarrantyPeriod = intPtr(1)
		}},
		{"blank serial", func(in *ItemInput) { in.SerialNumbers = []string{" "} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(&in)
			_, err := NewPurchaseTransactionItem(uuid.New(), in)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}

	t.Run("valid warranty", func(t *testing.T) {
		in := base()
		in.WarrantyPeriodType = WarrantyPeriodYears
		in.WarrantyPeriod = intPtr(2)
		item, err := NewPurchaseTransactionItem(uuid.New(), in)
		require.NoError(t, err)
		assert.True(t, item.HasWarranty())
	})
}

func TestPurchaseTransactionItem_ValidateForTracking(t *testing.T) {
	tests := []struct {
		name     string
		tracking catalog.TrackingType
		qty      int
		serials  []string
		wantErr  bool
	}{
		{"individual too few", catalog.TrackingTypeIndividual, 2, []string{"SN1"}, true},
		{"individual exact", catalog.TrackingTypeIndividual, 2, []string{"SN1", "SN2"}, false},
		{"individual duplicate", catalog.TrackingTypeIndividual, 2, []string{"SN1", "SN1"}, true},
		{"individual none", catalog.TrackingTypeIndividual, 1, nil, true},
		{"individual too many", catalog.TrackingTypeIndividual, 1, []string{"SN1", "SN2"}, true},
		{"bulk none", catalog.TrackingTypeBulk, 10, nil, false},
		{"bulk lot code", catalog.TrackingTypeBulk, 10, []string{"LOT-1"}, false},
		{"bulk two codes", catalog.TrackingTypeBulk, 10, []string{"LOT-1", "LOT-2"}, true},
		{"unknown tracking", catalog.TrackingType("X"), 1, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := newTestItem(t, uuid.New(), tt.qty, "1", "0", "0", tt.serials...)
			err := item.ValidateForTracking(tt.tracking)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPurchaseTransactionItem_UpdatePricing(t *testing.T) {
	item := newTestItem(t, uuid.New(), 5, "50.00", "0", "0")
	discount := decimal.RequireFromString("25.00")
	tax := decimal.RequireFromString("12.50")

	require.NoError(t, item.UpdatePricing(PricingUpdate{Discount: &discount, TaxAmount: &tax}))
	assert.True(t, decimal.RequireFromString("237.50").Equal(item.TotalPrice))

	huge := decimal.NewFromInt(10000)
	require.NoError(t, item.UpdatePricing(PricingUpdate{Discount: &huge}))
	assert.True(t, item.TotalPrice.IsZero())

	negative := decimal.NewFromInt(-1)
	err := item.UpdatePricing(PricingUpdate{UnitPrice: &negative, Discount: &discount})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.True(t, huge.Equal(item.Discount), "failed update must not apply partially")
}

func TestPurchaseTransactionItem_UpdateWarranty(t *testing.T) {
	item := newTestItem(t, uuid.New(), 1, "1", "0", "0")
	require.NoError(t, item.UpdateWarranty(WarrantyPeriodMonths, intPtr(6)))
	assert.True(t, item.HasWarranty())

	assert.ErrorIs(t, item.UpdateWarranty(WarrantyPeriodMonths, nil), shared.ErrValidation)
	assert.True(t, item.HasWarranty())

	require.NoError(t, item.UpdateWarranty("", nil))
	assert.False(t, item.HasWarranty())
}

func TestPurchaseTransactionItem_AmountScale(t *testing.T) {
	_, err := NewPurchaseTransactionItem(uuid.New(), ItemInput{
		InventoryItemID: uuid.New(),
		Quantity:        3,
		UnitPrice:       decimal.RequireFromString("33.333"),
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	item := newTestItem(t, uuid.New(), 3, "33.330", "0.50", "0")
	assert.True(t, decimal.RequireFromString("99.49").Equal(item.TotalPrice), item.TotalPrice.String())

	tax := decimal.RequireFromString("0.001")
	assert.ErrorIs(t, item.UpdatePricing(PricingUpdate{TaxAmount: &tax}), shared.ErrValidation)
	assert.True(t, item.TaxAmount.IsZero())
}

func TestPurchaseTransactionItem_Derived(t *testing.T) {
	item := newTestItem(t, uuid.New(), 4, "25.00", "10.00", "0")
	assert.True(t, decimal.NewFromInt(100).Equal(item.Subtotal()))
	assert.True(t, decimal.NewFromInt(10).Equal(item.DiscountPercentage()))

	free := newTestItem(t, uuid.New(), 1, "0", "0", "0")
	assert.True(t, free.DiscountPercentage().IsZero())
}

func TestDuplicateSerialNumbers(t *testing.T) {
	txID := uuid.New()
	a := newTestItem(t, txID, 2, "1", "0", "0", "SN1", "SN2")
	b := newTestItem(t, txID, 1, "1", "0", "0", "SN2")
	c := newTestItem(t, txID, 1, "1", "0", "0", "SN3")

	assert.Equal(t, []string{"SN1", "SN2", "SN2", "SN3"}, SerialNumbersOf([]*PurchaseTransactionItem{a, b, c}))
	assert.Equal(t, []string{"SN2"}, DuplicateSerialNumbers([]*PurchaseTransactionItem{a, b, c}))
	assert.Empty(t, DuplicateSerialNumbers([]*PurchaseTransactionItem{a, c}))
}

func TestSummarize(t *testing.T) {
	txID := uuid.New()
	a := newTestItem(t, txID, 2, "10.00", "1.00", "0.50", "SN1", "SN2")
	b := newTestItem(t, txID, 3, "20.00", "0", "1.00")
	require.NoError(t, b.UpdateWarranty(WarrantyPeriodDays, intPtr(30)))
	gone := newTestItem(t, txID, 7, "5.00", "0", "0")
	gone.Deactivate()

	s := Summarize([]PurchaseTransactionItem{*a, *b, *gone})
	assert.Equal(t, 2, s.TotalItems)
	assert.Equal(t, 5, s.TotalQuantity)
	assert.True(t, decimal.RequireFromString("80.50").Equal(s.TotalAmount), s.TotalAmount.String())
	assert.True(t, decimal.RequireFromString("1.00").Equal(s.TotalDiscount))
	assert.True(t, decimal.RequireFromString("1.50").Equal(s.TotalTax))
	assert.True(t, decimal.RequireFromString("15.00").Equal(s.AverageUnitPrice))
	assert.Equal(t, 1, s.ItemsWithWarranty)
	assert.Equal(t, 1, s.ItemsWithSerialNumbers)

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.TotalItems)
	assert.True(t, empty.AverageUnitPrice.IsZero())
}
