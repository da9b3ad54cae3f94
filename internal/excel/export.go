package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"contracting/internal/report"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatXLSX, "":
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Sheet is a rectangular table ready for export. Cells hold string, int or
// decimal.Decimal values; the last row is the totals row.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

const totalsLabel = "الإجمالي"

func ProfitSheet(r report.ProfitReport) Sheet {
	s := Sheet{
		Name:    "Profit " + r.Currency,
		Headers: []string{"رقم العقد", "الإيرادات", "التكاليف", "الربح/الخسارة"},
	}
	for _, row := range r.Rows {
		s.Rows = append(s.Rows, []any{row.ContractNumber, row.Revenue, row.TotalCost, row.Profit})
	}
	s.Rows = append(s.Rows, []any{totalsLabel, r.Totals.Revenue, r.Totals.TotalCost, r.Totals.Profit})
	return s
}

func GovernorateSheet(r report.GovernorateReport) Sheet {
	s := Sheet{
		Name:    "Governorates " + r.Currency,
		Headers: []string{"المحافظة - الفرع", "عدد العقود", "القيمة الإجمالية"},
	}
	for _, row := range r.Rows {
		s.Rows = append(s.Rows, []any{row.Name, row.ContractsCount, row.TotalValue})
	}
	s.Rows = append(s.Rows, []any{totalsLabel, r.Totals.ContractsCount, r.Totals.TotalValue})
	return s
}

func BalancesSheet(r report.BalancesReport) Sheet {
	s := Sheet{
		Name:    "Balances " + r.Currency,
		Headers: []string{"رقم العقد", "قيمة العقد", "المقبوض", "المتبقي"},
	}
	for _, row := range r.Rows {
		s.Rows = append(s.Rows, []any{row.ContractNumber, row.TotalValue, row.TotalReceived, row.Remaining})
	}
	s.Rows = append(s.Rows, []any{totalsLabel, r.Totals.TotalValue, r.Totals.TotalReceived, r.Totals.Remaining})
	return s
}

func Write(w io.Writer, format Format, sheet Sheet) error {
	if format == FormatCSV {
		return WriteCSV(w, sheet)
	}
	return WriteXLSX(w, sheet)
}

// WriteCSV writes a UTF-8 BOM first so spreadsheet apps detect Arabic text.
func WriteCSV(w io.Writer, sheet Sheet) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return fmt.Errorf("write csv bom: %w", err)
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(sheet.Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range sheet.Rows {
		record := make([]string, len(row))
		for j, cell := range row {
			record[j] = formatCell(cell)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a right-to-left workbook with a bold header and totals row.
func WriteXLSX(w io.Writer, sheet Sheet) error {
	file := excelize.NewFile()
	defer file.Close()

	name := sheetName(sheet.Name)
	if err := file.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	rtl := true
	if err := file.SetSheetView(name, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return fmt.Errorf("set sheet view: %w", err)
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	money, err := file.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("create money style: %w", err)
	}

	header := make([]any, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := file.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range sheet.Rows {
		excelRow := i + 2
		values := make([]any, len(row))
		for j, cell := range row {
			if d, ok := cell.(decimal.Decimal); ok {
				values[j] = d.InexactFloat64()
				continue
			}
			values[j] = cell
		}
		axis, _ := excelize.CoordinatesToCellName(1, excelRow)
		if err := file.SetSheetRow(name, axis, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
		for j, cell := range row {
			if _, ok := cell.(decimal.Decimal); !ok {
				continue
			}
			axis, _ := excelize.CoordinatesToCellName(j+1, excelRow)
			if err := file.SetCellStyle(name, axis, axis, money); err != nil {
				return fmt.Errorf("style cell %s: %w", axis, err)
			}
		}
	}

	if len(sheet.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
		if err := file.SetCellStyle(name, "A1", last, bold); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		if err := file.SetColWidth(name, "A", "A", 28); err != nil {
			return fmt.Errorf("size columns: %w", err)
		}
	}
	if n := len(sheet.Rows); n > 0 {
		first, _ := excelize.CoordinatesToCellName(1, n+1)
		if err := file.SetCellStyle(name, first, first, bold); err != nil {
			return fmt.Errorf("style totals: %w", err)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func formatCell(cell any) string {
	switch v := cell.(type) {
	case decimal.Decimal:
		return v.StringFixed(2)
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

// sheetName trims to the 31 character limit of the xlsx format.
func sheetName(name string) string {
	if name == "" {
		return "Report"
	}
	runes := []rune(name)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
