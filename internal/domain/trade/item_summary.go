package trade

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ItemSummary aggregates the live items of one transaction
type ItemSummary struct {
	TotalItems             int
	TotalQuantity          int
	TotalAmount            decimal.Decimal
	TotalDiscount          decimal.Decimal
	TotalTax               decimal.Decimal
	AverageUnitPrice       decimal.Decimal
	ItemsWithWarranty      int
	ItemsWithSerialNumbers int
}

// Summarize builds an ItemSummary over the active items
func Summarize(items []PurchaseTransactionItem) ItemSummary {
	live := lo.Filter(items, func(item PurchaseTransactionItem, _ int) bool { return item.IsActive })

	sum := func(get func(PurchaseTransactionItem) decimal.Decimal) decimal.Decimal {
		return lo.Reduce(live, func(acc decimal.Decimal, item PurchaseTransactionItem, _ int) decimal.Decimal {
			return acc.Add(get(item))
		}, decimal.Zero)
	}

	summary := ItemSummary{
		TotalItems:    len(live),
		TotalQuantity: lo.SumBy(live, func(item PurchaseTransactionItem) int { return item.Quantity }),
		TotalAmount:   sum(func(item PurchaseTransactionItem) decimal.Decimal { return item.TotalPrice }),
		TotalDiscount: sum(func(item PurchaseTransactionItem) decimal.Decimal { return item.Discount }),
		TotalTax:      sum(func(item PurchaseTransactionItem) decimal.Decimal { return item.TaxAmount }),
		ItemsWithWarranty: lo.CountBy(live, func(item PurchaseTransactionItem) bool {
			return item.HasWarranty()
		}),
		ItemsWithSerialNumbers: lo.CountBy(live, func(item PurchaseTransactionItem) bool {
			return item.HasSerialNumbers()
		}),
		AverageUnitPrice: decimal.Zero,
	}
	if len(live) > 0 {
		summary.AverageUnitPrice = sum(func(item PurchaseTransactionItem) decimal.Decimal { return item.UnitPrice }).
			Div(decimal.NewFromInt(int64(len(live)))).Round(2)
	}
	return summary
}
