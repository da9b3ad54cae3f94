package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contracting/internal/domain"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func day(y int, m time.Month, dd int) *time.Time {
	t := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestContractValueEmptyAndOrderInvariant(t *testing.T) {
	assertDec(t, "0", ContractValue(nil))
	assertDec(t, "0", ContractValue([]domain.ContractItem{}))

	items := []domain.ContractItem{
		{Quantity: d("3"), SalePrice: d("10.5")},
		{Quantity: d("2"), SalePrice: d("0.25")},
		{Quantity: d("7"), SalePrice: d("100")},
	}
	reversed := []domain.ContractItem{items[2], items[1], items[0]}
	assertDec(t, "732", ContractValue(items))
	assert.True(t, ContractValue(items).Equal(ContractValue(reversed)))
}

func TestNullNumericFieldsCountAsZero(t *testing.T) {
	items := []domain.ContractItem{{Quantity: d("4")}, {SalePrice: d("9")}}
	assertDec(t, "0", ContractValue(items))
	assertDec(t, "0", ExpenseCost([]domain.ContractExpense{{}}))
	assertDec(t, "0", TotalReceived([]domain.Payment{{}}))
}

func TestScenarioA(t *testing.T) {
	items := []domain.ContractItem{{Quantity: d("10"), SalePrice: d("100"), PurchasePrice: d("60")}}

	assertDec(t, "1000", ContractValue(items))
	assertDec(t, "0", TotalCost(nil, nil))
	assertDec(t, "600", ContractPurchaseCost(items))
}

func TestScenarioB(t *testing.T) {
	payments := []domain.Payment{{Amount: d("400")}, {Amount: d("350")}}
	received := TotalReceived(payments)

	assertDec(t, "750", received)
	assertDec(t, "250", RemainingBalance(d("1000"), received))
}

func TestScenarioC(t *testing.T) {
	item := domain.ContractItem{ID: "i1", Quantity: d("50")}
	deliveries := []domain.Delivery{
		{ContractItemID: "i1", QuantityDelivered: d("20")},
		{ContractItemID: "i1", QuantityDelivered: d("35")},
	}

	remaining := RemainingItemQuantity(item, deliveries)
	assertDec(t, "-5", remaining)
	assertDec(t, "0", DisplayQuantity(remaining))
	assert.True(t, IsDelivered(remaining))
}

func TestScenarioD(t *testing.T) {
	type row struct {
		currency string
		value    decimal.Decimal
	}
	contracts := []row{{"SAR", d("100")}, {"USD", d("200")}, {"SAR", d("300")}}

	groups := GroupByCurrency(contracts, func(r row) string { return r.currency })
	require.Len(t, groups, 2)
	require.Len(t, groups["SAR"], 2)
	require.Len(t, groups["USD"], 1)

	sum := func(rs []row) decimal.Decimal {
		total := decimal.Zero
		for _, r := range rs {
			total = total.Add(r.value)
		}
		return total
	}
	assertDec(t, "100", groups["SAR"][0].value)
	assertDec(t, "300", groups["SAR"][1].value)
	assertDec(t, "400", sum(groups["SAR"]))
	assertDec(t, "200", sum(groups["USD"]))
	assert.Equal(t, []string{"SAR", "USD"}, SortedCurrencies(groups))
}

func TestRemainingIgnoresOtherItems(t *testing.T) {
	item := domain.ContractItem{ID: "a", Quantity: d("10")}
	deliveries := []domain.Delivery{
		{ContractItemID: "a", QuantityDelivered: d("4")},
		{ContractItemID: "b", QuantityDelivered: d("100")},
	}
	remaining := RemainingItemQuantity(item, deliveries)
	assertDec(t, "6", remaining)
	assert.False(t, IsDelivered(remaining))
	assertDec(t, "6", DisplayQuantity(remaining))
}

func TestProfitAndBalanceAreSigned(t *testing.T) {
	assertDec(t, "-50", Profit(d("100"), d("150")))
	assertDec(t, "25.5", Profit(d("100"), d("74.5")))
	assertDec(t, "-200", RemainingBalance(d("1000"), d("1200")))
}

func TestTotalCostSeparatesCostDefinitions(t *testing.T) {
	purchases := []domain.ContractPurchase{
		{Quantity: d("2"), PurchasePrice: d("30")},
		{Quantity: d("1"), PurchasePrice: d("15")},
	}
	expenses := []domain.ContractExpense{{Amount: d("10")}, {Amount: d("5")}}

	assertDec(t, "75", ProcurementCost(purchases))
	assertDec(t, "15", ExpenseCost(expenses))
	assertDec(t, "90", TotalCost(purchases, expenses))
}

func TestGroupByCurrencyPartitionsExactly(t *testing.T) {
	contracts := []domain.Contract{
		{ID: "1", Currency: "SAR"},
		{ID: "2", Currency: "USD"},
		{ID: "3", Currency: ""},
		{ID: "4", Currency: "EGP"},
		{ID: "5", Currency: "USD"},
	}
	groups := GroupByCurrency(contracts, func(c domain.Contract) string { return c.Currency })

	seen := map[string]int{}
	for _, bucket := range groups {
		for _, c := range bucket {
			seen[c.ID]++
		}
	}
	require.Len(t, seen, len(contracts))
	for id, n := range seen {
		assert.Equalf(t, 1, n, "contract %s in %d buckets", id, n)
	}
	assert.Len(t, groups[domain.DefaultCurrency], 2)
}

func TestMonthlyBucket(t *testing.T) {
	payments := []domain.Payment{
		{Amount: d("10"), PaymentDate: day(2024, time.March, 1)},
		{Amount: d("5"), PaymentDate: day(2024, time.March, 31)},
		{Amount: d("7"), PaymentDate: day(2024, time.January, 15)},
		{Amount: d("1"), PaymentDate: day(2023, time.March, 2)},
		{Amount: d("99")},
	}
	series := MonthlyBucket(payments,
		func(p domain.Payment) *time.Time { return p.PaymentDate },
		func(p domain.Payment) decimal.Decimal { return p.Amount },
	)

	require.Len(t, series, 3)
	assert.Equal(t, "2023-03", series[0].Month)
	assert.Equal(t, "Mar 2023", series[0].Label)
	assert.Equal(t, "2024-01", series[1].Month)
	assert.Equal(t, "2024-03", series[2].Month)
	assertDec(t, "15", series[2].Amount)
}

func TestMergeMonthlyAlignsSeries(t *testing.T) {
	revenue := []MonthAmount{{Month: "2024-01", Amount: d("100")}, {Month: "2024-03", Amount: d("50")}}
	cost := []MonthAmount{{Month: "2024-02", Amount: d("20")}, {Month: "2024-03", Amount: d("30")}}

	points := MergeMonthly(revenue, cost)
	require.Len(t, points, 3)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, []string{points[0].Month, points[1].Month, points[2].Month})
	assert.Equal(t, "Feb 2024", points[1].Label)
	assertDec(t, "0", points[0].Cost)
	assertDec(t, "0", points[1].Revenue)
	assertDec(t, "50", points[2].Revenue)
	assertDec(t, "30", points[2].Cost)
}

func TestItemProgress(t *testing.T) {
	items := []domain.ContractItem{
		{ID: "a", ItemName: "Cement", Quantity: d("50")},
		{ID: "b", ItemName: "Steel", Quantity: d("10")},
	}
	deliveries := []domain.Delivery{
		{ContractItemID: "a", QuantityDelivered: d("20")},
		{ContractItemID: "a", QuantityDelivered: d("35")},
		{ContractItemID: "b", QuantityDelivered: d("4")},
	}

	rows := ItemProgress(items, deliveries)
	require.Len(t, rows, 2)
	assert.Equal(t, "Cement", rows[0].ItemName)
	assertDec(t, "55", rows[0].Delivered)
	assertDec(t, "-5", rows[0].Remaining)
	assert.True(t, rows[0].Complete)
	assertDec(t, "4", rows[1].Delivered)
	assertDec(t, "6", rows[1].Remaining)
	assert.False(t, rows[1].Complete)
}
