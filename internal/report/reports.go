package report

import (
	"github.com/shopspring/decimal"

	"contracting/internal/domain"
	"contracting/internal/ledger"
)

type ProfitRow struct {
	ContractID     string          `json:"id,omitempty"`
	ContractNumber string          `json:"contract_number"`
	Revenue        decimal.Decimal `json:"revenue"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	Profit         decimal.Decimal `json:"profit"`
}

type ProfitReport struct {
	Currency string      `json:"currency"`
	Rows     []ProfitRow `json:"rows"`
	Totals   ProfitRow   `json:"totals"`

	Unprovisioned []string `json:"unprovisioned,omitempty"`
}

type GovernorateRow struct {
	Name           string          `json:"name"`
	ContractsCount int             `json:"contracts_count"`
	TotalValue     decimal.Decimal `json:"total_value"`
}

type GovernorateReport struct {
	Currency string           `json:"currency"`
	Rows     []GovernorateRow `json:"rows"`
	Totals   GovernorateRow   `json:"totals"`

	Unprovisioned []string `json:"unprovisioned,omitempty"`
}

type BalanceRow struct {
	ContractID     string          `json:"id,omitempty"`
	ContractNumber string          `json:"contract_number"`
	TotalValue     decimal.Decimal `json:"total_value"`
	TotalReceived  decimal.Decimal `json:"total_received"`
	Remaining      decimal.Decimal `json:"remaining"`
}

type BalancesReport struct {
	Currency string       `json:"currency"`
	Rows     []BalanceRow `json:"rows"`
	Totals   BalanceRow   `json:"totals"`

	Unprovisioned []string `json:"unprovisioned,omitempty"`
}

// Profit uses procurement plus expenses as cost. Totals are column sums.
func Profit(s Snapshot) ProfitReport {
	items := indexByContract(s.Items, func(v domain.ContractItem) string { return v.ContractID })
	purchases := indexByContract(s.Purchases, func(v domain.ContractPurchase) string { return v.ContractID })
	expenses := indexByContract(s.Expenses, func(v domain.ContractExpense) string { return v.ContractID })

	out := ProfitReport{Currency: s.Currency, Rows: make([]ProfitRow, 0, len(s.Contracts)), Unprovisioned: s.Unprovisioned}
	out.Totals.ContractNumber = "total"
	for _, c := range s.Contracts {
		revenue := ledger.ContractValue(items[c.ID])
		cost := ledger.TotalCost(purchases[c.ID], expenses[c.ID])
		row := ProfitRow{
			ContractID:     c.ID,
			ContractNumber: c.ContractNumber,
			Revenue:        revenue,
			TotalCost:      cost,
			Profit:         ledger.Profit(revenue, cost),
		}
		out.Rows = append(out.Rows, row)
		out.Totals.Revenue = out.Totals.Revenue.Add(row.Revenue)
		out.Totals.TotalCost = out.Totals.TotalCost.Add(row.TotalCost)
		out.Totals.Profit = out.Totals.Profit.Add(row.Profit)
	}
	return out
}

// Governorates groups contracts by "{governorate} - {branch}" in order of
// first appearance.
func Governorates(s Snapshot) GovernorateReport {
	items := indexByContract(s.Items, func(v domain.ContractItem) string { return v.ContractID })

	out := GovernorateReport{Currency: s.Currency, Rows: []GovernorateRow{}, Unprovisioned: s.Unprovisioned}
	out.Totals.Name = "total"
	pos := make(map[string]int)
	for _, c := range s.Contracts {
		key := c.Governorate + " - " + c.Branch
		i, ok := pos[key]
		if !ok {
			i = len(out.Rows)
			pos[key] = i
			out.Rows = append(out.Rows, GovernorateRow{Name: key})
		}
		value := ledger.ContractValue(items[c.ID])
		out.Rows[i].ContractsCount++
		out.Rows[i].TotalValue = out.Rows[i].TotalValue.Add(value)
		out.Totals.ContractsCount++
		out.Totals.TotalValue = out.Totals.TotalValue.Add(value)
	}
	return out
}

func Balances(s Snapshot) BalancesReport {
	items := indexByContract(s.Items, func(v domain.ContractItem) string { return v.ContractID })
	payments := indexByContract(s.Payments, func(v domain.Payment) string { return v.ContractID })

	out := BalancesReport{Currency: s.Currency, Rows: make([]BalanceRow, 0, len(s.Contracts)), Unprovisioned: s.Unprovisioned}
	out.Totals.ContractNumber = "total"
	for _, c := range s.Contracts {
		value := ledger.ContractValue(items[c.ID])
		received := ledger.TotalReceived(payments[c.ID])
		row := BalanceRow{
			ContractID:     c.ID,
			ContractNumber: c.ContractNumber,
			TotalValue:     value,
			TotalReceived:  received,
			Remaining:      ledger.RemainingBalance(value, received),
		}
		out.Rows = append(out.Rows, row)
		out.Totals.TotalValue = out.Totals.TotalValue.Add(row.TotalValue)
		out.Totals.TotalReceived = out.Totals.TotalReceived.Add(row.TotalReceived)
		out.Totals.Remaining = out.Totals.Remaining.Add(row.Remaining)
	}
	return out
}
