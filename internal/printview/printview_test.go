package printview

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contracting/internal/domain"
)

func TestBuildUsesContractValue(t *testing.T) {
	c := domain.Contract{ID: "c1", ContractNumber: "C-7", Status: domain.StatusPaid}
	items := []domain.ContractItem{
		{ItemName: "Cement", Quantity: decimal.NewFromInt(10), SalePrice: decimal.NewFromInt(100), PurchasePrice: decimal.NewFromInt(60)},
	}
	payments := []domain.Payment{{Amount: decimal.NewFromInt(1200)}}

	doc := Build("Acme Supply", c, items, payments, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, domain.DefaultCurrency, doc.Currency)
	assert.True(t, doc.Total.Equal(decimal.NewFromInt(1000)))
	assert.True(t, doc.Remaining.Equal(decimal.NewFromInt(-200)))
	require.Len(t, doc.Lines, 1)
	assert.True(t, doc.Lines[0].Total.Equal(decimal.NewFromInt(1000)))
}

func TestRenderHTML(t *testing.T) {
	notes := "<script>alert(1)</script>"
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	c := domain.Contract{ContractNumber: "C-7", Governorate: "Riyadh", Branch: "North", Currency: "USD", Status: domain.StatusInProgress, ContractDate: &date}
	doc := Build("Acme Supply", c,
		[]domain.ContractItem{{ItemName: "Steel", Quantity: decimal.NewFromInt(2), SalePrice: decimal.RequireFromString("12.5")}},
		[]domain.Payment{{Amount: decimal.NewFromInt(30), PaymentDate: &date, Notes: &notes}},
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, doc))
	html := buf.String()

	assert.Contains(t, html, "C-7")
	assert.Contains(t, html, "قيد التنفيذ")
	assert.Contains(t, html, "2024-03-05")
	assert.Contains(t, html, "25.00 USD")
	assert.Contains(t, html, `class="negative"`)
	assert.Contains(t, html, "© 2024 Acme Supply")
	assert.NotContains(t, html, "<script>alert(1)</script>")
}

func TestRenderHTMLWithoutItems(t *testing.T) {
	doc := Build("Acme", domain.Contract{ContractNumber: "C-0"}, nil, nil, time.Now())
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, doc))
	assert.Contains(t, buf.String(), "لا توجد أصناف")
	assert.Contains(t, buf.String(), "0.00 SAR")
}
