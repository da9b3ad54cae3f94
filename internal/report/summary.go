package report

import (
	"github.com/shopspring/decimal"

	"contracting/internal/domain"
	"contracting/internal/ledger"
)

// ContractSummary carries both cost definitions side by side. GrossProfit is
// against the items' purchase prices, NetProfit against purchases plus
// expenses.
type ContractSummary struct {
	ContractID      string                   `json:"contract_id"`
	Currency        string                   `json:"currency"`
	Value           decimal.Decimal          `json:"value"`
	ItemCost        decimal.Decimal          `json:"item_cost"`
	ProcurementCost decimal.Decimal          `json:"procurement_cost"`
	ExpenseCost     decimal.Decimal          `json:"expense_cost"`
	TotalCost       decimal.Decimal          `json:"total_cost"`
	GrossProfit     decimal.Decimal          `json:"gross_profit"`
	NetProfit       decimal.Decimal          `json:"net_profit"`
	Received        decimal.Decimal          `json:"received"`
	Remaining       decimal.Decimal          `json:"remaining"`
	Items           []ledger.ItemProgressRow `json:"items"`
	Unprovisioned   []string                 `json:"unprovisioned,omitempty"`
}

type ContractRecords struct {
	Items      []domain.ContractItem
	Deliveries []domain.Delivery
	Purchases  []domain.ContractPurchase
	Expenses   []domain.ContractExpense
	Payments   []domain.Payment
}

func Summarize(c domain.Contract, r ContractRecords) ContractSummary {
	value := ledger.ContractValue(r.Items)
	itemCost := ledger.ContractPurchaseCost(r.Items)
	totalCost := ledger.TotalCost(r.Purchases, r.Expenses)
	received := ledger.TotalReceived(r.Payments)
	return ContractSummary{
		ContractID:      c.ID,
		Currency:        currencyOf(c),
		Value:           value,
		ItemCost:        itemCost,
		ProcurementCost: ledger.ProcurementCost(r.Purchases),
		ExpenseCost:     ledger.ExpenseCost(r.Expenses),
		TotalCost:       totalCost,
		GrossProfit:     ledger.Profit(value, itemCost),
		NetProfit:       ledger.Profit(value, totalCost),
		Received:        received,
		Remaining:       ledger.RemainingBalance(value, received),
		Items:           ledger.ItemProgress(r.Items, r.Deliveries),
	}
}
