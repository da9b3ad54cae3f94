package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"contracting/internal/domain"
)

// GroupByCurrency partitions records by currency code. Every record lands in
// exactly one bucket and bucket order follows input order. An empty code is
// bucketed under domain.DefaultCurrency.
func GroupByCurrency[T any](records []T, currencyOf func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, r := range records {
		code := currencyOf(r)
		if code == "" {
			code = domain.DefaultCurrency
		}
		out[code] = append(out[code], r)
	}
	return out
}

// SortedCurrencies returns the keys of a currency partition in a stable order.
func SortedCurrencies[T any](groups map[string][]T) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const (
	monthKeyLayout   = "2006-01"
	monthLabelLayout = "Jan 2006"
)

type MonthAmount struct {
	Month  string          `json:"month"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthlyBucket sums amountOf per calendar month of dateOf, ascending by
// month. Records without a date are skipped.
func MonthlyBucket[T any](records []T, dateOf func(T) *time.Time, amountOf func(T) decimal.Decimal) []MonthAmount {
	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		d := dateOf(r)
		if d == nil || d.IsZero() {
			continue
		}
		key := d.Format(monthKeyLayout)
		sums[key] = sums[key].Add(amountOf(r))
	}

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]MonthAmount, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthAmount{Month: k, Label: monthLabel(k), Amount: sums[k]})
	}
	return out
}

type MonthPoint struct {
	Month   string          `json:"month"`
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
}

// MergeMonthly aligns revenue and cost series on one ascending month axis.
// A month present in only one series gets zero for the other.
func MergeMonthly(revenue, cost []MonthAmount) []MonthPoint {
	points := make(map[string]*MonthPoint)
	get := func(month string) *MonthPoint {
		p, ok := points[month]
		if !ok {
			p = &MonthPoint{Month: month, Label: monthLabel(month)}
			points[month] = p
		}
		return p
	}
	for _, m := range revenue {
		p := get(m.Month)
		p.Revenue = p.Revenue.Add(m.Amount)
	}
	for _, m := range cost {
		p := get(m.Month)
		p.Cost = p.Cost.Add(m.Amount)
	}

	keys := make([]string, 0, len(points))
	for k := range points {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]MonthPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, *points[k])
	}
	return out
}

func monthLabel(key string) string {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return key
	}
	return t.Format(monthLabelLayout)
}
