// Package ledger holds the financial aggregation rules shared by the
// dashboard, reports, payments tab and print view. Every function is pure and
// works on records of a single currency; callers partition with
// GroupByCurrency first.
package ledger

import (
	"github.com/shopspring/decimal"

	"contracting/internal/domain"
)

// ContractValue is Σ quantity × sale_price. This is the one definition of
// contract revenue.
func ContractValue(items []domain.ContractItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Quantity.Mul(it.SalePrice))
	}
	return total
}

// ContractPurchaseCost is the legacy cost view: Σ quantity × the item's own
// purchase_price.
func ContractPurchaseCost(items []domain.ContractItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Quantity.Mul(it.PurchasePrice))
	}
	return total
}

func ProcurementCost(purchases []domain.ContractPurchase) decimal.Decimal {
	total := decimal.Zero
	for _, p := range purchases {
		total = total.Add(p.Quantity.Mul(p.PurchasePrice))
	}
	return total
}

func ExpenseCost(expenses []domain.ContractExpense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// TotalCost is procurement plus expenses. It does not look at
// ContractItem.PurchasePrice.
func TotalCost(purchases []domain.ContractPurchase, expenses []domain.ContractExpense) decimal.Decimal {
	return ProcurementCost(purchases).Add(ExpenseCost(expenses))
}

func Profit(value, cost decimal.Decimal) decimal.Decimal {
	return value.Sub(cost)
}

func TotalReceived(payments []domain.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// RemainingBalance is value − received. Overpayment yields a negative result.
func RemainingBalance(value, received decimal.Decimal) decimal.Decimal {
	return value.Sub(received)
}

// RemainingItemQuantity is the signed outstanding quantity of item. Deliveries
// for other items are ignored.
func RemainingItemQuantity(item domain.ContractItem, deliveries []domain.Delivery) decimal.Decimal {
	delivered := decimal.Zero
	for _, d := range deliveries {
		if d.ContractItemID == item.ID {
			delivered = delivered.Add(d.QuantityDelivered)
		}
	}
	return item.Quantity.Sub(delivered)
}

// DisplayQuantity clamps a remaining quantity for presentation.
func DisplayQuantity(q decimal.Decimal) decimal.Decimal {
	if q.IsNegative() {
		return decimal.Zero
	}
	return q
}

func IsDelivered(remaining decimal.Decimal) bool {
	return remaining.LessThanOrEqual(decimal.Zero)
}

type ItemProgressRow struct {
	ItemID    string          `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Ordered   decimal.Decimal `json:"ordered"`
	Delivered decimal.Decimal `json:"delivered"`
	Remaining decimal.Decimal `json:"remaining"`
	Complete  bool            `json:"complete"`
}

// ItemProgress reports ordered, delivered and signed remaining quantity per
// item, in item order.
func ItemProgress(items []domain.ContractItem, deliveries []domain.Delivery) []ItemProgressRow {
	out := make([]ItemProgressRow, 0, len(items))
	for _, it := range items {
		remaining := RemainingItemQuantity(it, deliveries)
		out = append(out, ItemProgressRow{
			ItemID:    it.ID,
			ItemName:  it.ItemName,
			Ordered:   it.Quantity,
			Delivered: it.Quantity.Sub(remaining),
			Remaining: remaining,
			Complete:  IsDelivered(remaining),
		})
	}
	return out
}
