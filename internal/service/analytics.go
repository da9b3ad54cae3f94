package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"contracting/internal/excel"
	"contracting/internal/gateway"
	"contracting/internal/printview"
	"contracting/internal/report"
	"contracting/internal/repository"
)

type ReportKind string

const (
	ReportProfit       ReportKind = "profit"
	ReportGovernorates ReportKind = "governorates"
	ReportBalances     ReportKind = "balances"
)

func ParseReportKind(raw string) (ReportKind, error) {
	switch k := ReportKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case ReportProfit, ReportGovernorates, ReportBalances:
		return k, nil
	case "governorate":
		return ReportGovernorates, nil
	}
	return "", invalid("unknown report %q", raw)
}

func (s *Service) Dashboard(ctx context.Context) (report.DashboardStats, error) {
	snap, err := s.loader.Snapshot(ctx)
	if err != nil {
		return report.DashboardStats{}, err
	}
	return report.Dashboard(snap), nil
}

// ReportCurrencies lists the currencies that have at least one contract.
func (s *Service) ReportCurrencies(ctx context.Context) ([]string, error) {
	contracts, err := s.repo.ListContracts(ctx, repository.ContractListFilter{})
	if err != nil {
		return nil, err
	}
	return report.Currencies(contracts), nil
}

func (s *Service) snapshotFor(ctx context.Context, currency string) (report.Snapshot, error) {
	snap, err := s.loader.Snapshot(ctx)
	if err != nil {
		return report.Snapshot{}, err
	}
	return snap.ForCurrency(normalizeCurrency(currency)), nil
}

func (s *Service) ProfitReport(ctx context.Context, currency string) (report.ProfitReport, error) {
	snap, err := s.snapshotFor(ctx, currency)
	if err != nil {
		return report.ProfitReport{}, err
	}
	return report.Profit(snap), nil
}

func (s *Service) GovernorateReport(ctx context.Context, currency string) (report.GovernorateReport, error) {
	snap, err := s.snapshotFor(ctx, currency)
	if err != nil {
		return report.GovernorateReport{}, err
	}
	return report.Governorates(snap), nil
}

func (s *Service) BalancesReport(ctx context.Context, currency string) (report.BalancesReport, error) {
	snap, err := s.snapshotFor(ctx, currency)
	if err != nil {
		return report.BalancesReport{}, err
	}
	return report.Balances(snap), nil
}

// ExportReport writes one report for one currency as a spreadsheet.
func (s *Service) ExportReport(ctx context.Context, w io.Writer, kind ReportKind, currency string, format excel.Format) error {
	snap, err := s.snapshotFor(ctx, currency)
	if err != nil {
		return err
	}
	var sheet excel.Sheet
	switch kind {
	case ReportProfit:
		sheet = excel.ProfitSheet(report.Profit(snap))
	case ReportGovernorates:
		sheet = excel.GovernorateSheet(report.Governorates(snap))
	case ReportBalances:
		sheet = excel.BalancesSheet(report.Balances(snap))
	default:
		return invalid("unknown report %q", kind)
	}
	return excel.Write(w, format, sheet)
}

// ContractSummary reads everything recorded against one contract. Missing
// purchase or expense tables count as empty and are listed in Unprovisioned.
func (s *Service) ContractSummary(ctx context.Context, id string) (report.ContractSummary, error) {
	c, err := s.repo.GetContract(ctx, id)
	if err != nil {
		return report.ContractSummary{}, err
	}

	var (
		records       report.ContractRecords
		unprovisioned []string
	)
	if records.Items, err = s.repo.ListContractItems(ctx, id); err != nil {
		return report.ContractSummary{}, err
	}
	if len(records.Items) > 0 {
		ids := make([]string, 0, len(records.Items))
		for _, it := range records.Items {
			ids = append(ids, it.ID)
		}
		if records.Deliveries, err = s.repo.ListDeliveries(ctx, ids...); err != nil {
			return report.ContractSummary{}, err
		}
	}
	if records.Payments, err = s.repo.ListPayments(ctx, id); err != nil {
		return report.ContractSummary{}, err
	}
	if records.Purchases, err = s.repo.ListPurchases(ctx, id); err != nil {
		if !gateway.IsNotProvisioned(err) {
			return report.ContractSummary{}, err
		}
		unprovisioned = append(unprovisioned, gateway.NotProvisionedTable(err))
	}
	if records.Expenses, err = s.repo.ListExpenses(ctx, id); err != nil {
		if !gateway.IsNotProvisioned(err) {
			return report.ContractSummary{}, err
		}
		unprovisioned = append(unprovisioned, gateway.NotProvisionedTable(err))
	}

	summary := report.Summarize(*c, records)
	summary.Unprovisioned = unprovisioned
	return summary, nil
}

type PrintFormat string

const (
	PrintHTML PrintFormat = "html"
	PrintPDF  PrintFormat = "pdf"
)

// PrintContract renders the contract statement and returns the body with
// its content type.
func (s *Service) PrintContract(ctx context.Context, id string, format PrintFormat) ([]byte, string, error) {
	c, err := s.repo.GetContract(ctx, id)
	if err != nil {
		return nil, "", err
	}
	items, err := s.repo.ListContractItems(ctx, id)
	if err != nil {
		return nil, "", err
	}
	payments, err := s.repo.ListPayments(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc := printview.Build(s.company, *c, items, payments, s.now())

	switch format {
	case PrintPDF:
		if s.printer == nil {
			return nil, "", fmt.Errorf("pdf printer: %w", ErrUnavailable)
		}
		pdf, err := s.printer.Render(ctx, doc)
		if err != nil {
			return nil, "", err
		}
		return pdf, "application/pdf", nil
	case PrintHTML, "":
		var buf bytes.Buffer
		if err := printview.RenderHTML(&buf, doc); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/html; charset=utf-8", nil
	}
	return nil, "", invalid("unknown print format %q", format)
}
