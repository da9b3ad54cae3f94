package report

import (
	"time"

	"github.com/shopspring/decimal"

	"contracting/internal/domain"
	"contracting/internal/ledger"
)

type CurrencyStats struct {
	Currency       string              `json:"currency"`
	ContractsCount int                 `json:"contracts_count"`
	TotalValue     decimal.Decimal     `json:"total_value"`
	TotalReceived  decimal.Decimal     `json:"total_received"`
	Remaining      decimal.Decimal     `json:"remaining"`
	TotalProfit    decimal.Decimal     `json:"total_profit"`
	Monthly        []ledger.MonthPoint `json:"monthly"`
}

type DashboardStats struct {
	Currencies    []CurrencyStats `json:"currencies"`
	Unprovisioned []string        `json:"unprovisioned,omitempty"`
}

// Dashboard computes the headline figures once per currency. Profit here is
// value minus the items' own purchase prices; the monthly cost series uses
// purchases and expenses.
func Dashboard(s Snapshot) DashboardStats {
	out := DashboardStats{Currencies: []CurrencyStats{}, Unprovisioned: s.Unprovisioned}

	groups := ledger.GroupByCurrency(s.Contracts, currencyOf)
	for _, code := range ledger.SortedCurrencies(groups) {
		part := s.ForCurrency(code)
		value := ledger.ContractValue(part.Items)
		received := ledger.TotalReceived(part.Payments)
		out.Currencies = append(out.Currencies, CurrencyStats{
			Currency:       code,
			ContractsCount: len(groups[code]),
			TotalValue:     value,
			TotalReceived:  received,
			Remaining:      ledger.RemainingBalance(value, received),
			TotalProfit:    ledger.Profit(value, ledger.ContractPurchaseCost(part.Items)),
			Monthly:        monthly(part),
		})
	}
	return out
}

type costEntry struct {
	date   *time.Time
	amount decimal.Decimal
}

func monthly(s Snapshot) []ledger.MonthPoint {
	contractDate := make(map[string]*time.Time, len(s.Contracts))
	for _, c := range s.Contracts {
		d := c.ContractDate
		if d == nil && !c.CreatedAt.IsZero() {
			created := c.CreatedAt
			d = &created
		}
		contractDate[c.ID] = d
	}

	revenue := ledger.MonthlyBucket(s.Items,
		func(it domain.ContractItem) *time.Time { return contractDate[it.ContractID] },
		func(it domain.ContractItem) decimal.Decimal { return it.Quantity.Mul(it.SalePrice) },
	)

	costs := make([]costEntry, 0, len(s.Purchases)+len(s.Expenses))
	for _, p := range s.Purchases {
		costs = append(costs, costEntry{date: p.PurchaseDate, amount: p.Quantity.Mul(p.PurchasePrice)})
	}
	for _, e := range s.Expenses {
		costs = append(costs, costEntry{date: e.ExpenseDate, amount: e.Amount})
	}
	cost := ledger.MonthlyBucket(costs,
		func(c costEntry) *time.Time { return c.date },
		func(c costEntry) decimal.Decimal { return c.amount },
	)
	return ledger.MergeMonthly(revenue, cost)
}
