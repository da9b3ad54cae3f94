// Package printview renders a contract statement as HTML and, through
// headless Chrome, as PDF.
package printview

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"

	"contracting/internal/domain"
	"contracting/internal/ledger"
)

//go:embed templates/*.html
var templateFS embed.FS

var statusLabels = map[domain.ContractStatus]string{
	domain.StatusNew:        "جديد",
	domain.StatusInProgress: "قيد التنفيذ",
	domain.StatusCompleted:  "مكتمل",
	domain.StatusPaid:       "مدفوع",
}

var contractTemplate = template.Must(template.New("contract.html").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
	"datePtr": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("2006-01-02")
	},
	"status": func(s domain.ContractStatus) string {
		if label, ok := statusLabels[s]; ok {
			return label
		}
		return string(s)
	},
	"inc": func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/contract.html"))

type Line struct {
	ItemName  string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

type Document struct {
	Company     string
	Currency    string
	Contract    domain.Contract
	Lines       []Line
	Payments    []domain.Payment
	Total       decimal.Decimal
	Paid        decimal.Decimal
	Remaining   decimal.Decimal
	GeneratedAt time.Time
}

// Build assembles the statement. The total is the contract value, the same
// figure the dashboard and reports use.
func Build(company string, c domain.Contract, items []domain.ContractItem, payments []domain.Payment, now time.Time) Document {
	currency := c.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{
			ItemName:  it.ItemName,
			Quantity:  it.Quantity,
			UnitPrice: it.SalePrice,
			Total:     it.Quantity.Mul(it.SalePrice),
		})
	}
	total := ledger.ContractValue(items)
	paid := ledger.TotalReceived(payments)
	return Document{
		Company:     company,
		Currency:    currency,
		Contract:    c,
		Lines:       lines,
		Payments:    payments,
		Total:       total,
		Paid:        paid,
		Remaining:   ledger.RemainingBalance(total, paid),
		GeneratedAt: now,
	}
}

func RenderHTML(w io.Writer, doc Document) error {
	if err := contractTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("render contract html: %w", err)
	}
	return nil
}

// PDFRenderer prints HTML through a headless Chrome. An empty ChromePath
// lets chromedp find the browser.
type PDFRenderer struct {
	ChromePath string
	Timeout    time.Duration
}

func (r PDFRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	var html bytes.Buffer
	if err := RenderHTML(&html, doc); err != nil {
		return nil, err
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if r.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.ChromePath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html.String()).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.7).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print contract pdf: %w", err)
	}
	return pdf, nil
}
