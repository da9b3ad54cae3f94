package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ItemRow is one contract item read from an import sheet.
type ItemRow struct {
	Line          int             `json:"line"`
	ItemName      string          `json:"item_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

var headerAliases = map[string]string{
	"item name":      "item_name",
	"item":           "item_name",
	"name":           "item_name",
	"الصنف":          "item_name",
	"اسم الصنف":      "item_name",
	"البند":          "item_name",
	"quantity":       "quantity",
	"qty":            "quantity",
	"الكمية":         "quantity",
	"sale price":     "sale_price",
	"price":          "sale_price",
	"unit price":     "sale_price",
	"سعر البيع":      "sale_price",
	"سعر الوحدة":     "sale_price",
	"purchase price": "purchase_price",
	"cost":           "purchase_price",
	"سعر الشراء":     "purchase_price",
	"التكلفة":        "purchase_price",
}

var digitsReplacer = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
)

// ParseContractItems reads contract items from the first sheet of an XLSX
// file, or from a CSV file when fileName ends in .csv. item_name and quantity
// columns are required; prices default to zero. Blank names are skipped.
func ParseContractItems(fileName string, reader io.Reader) ([]ItemRow, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}

	var rows [][]string
	if strings.EqualFold(filepath.Ext(fileName), ".csv") {
		rows, err = readCSVRows(data)
	} else {
		rows, err = readExcelRows(data)
	}
	if err != nil {
		return nil, err
	}

	colMap := mapColumns(rows[0])
	for _, required := range []string{"item_name", "quantity"} {
		if _, ok := colMap[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	result := make([]ItemRow, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		name := strings.TrimSpace(readCell(cells, colMap["item_name"]))
		if name == "" {
			continue
		}

		qty, err := parseDecimal(readCell(cells, colMap["quantity"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid quantity: %w", index+1, err)
		}
		if !qty.IsPositive() {
			return nil, fmt.Errorf("row %d invalid quantity: must be greater than zero", index+1)
		}

		item := ItemRow{Line: index + 1, ItemName: name, Quantity: qty}
		if item.SalePrice, err = optionalPrice(cells, colMap, "sale_price"); err != nil {
			return nil, fmt.Errorf("row %d invalid sale_price: %w", index+1, err)
		}
		if item.PurchasePrice, err = optionalPrice(cells, colMap, "purchase_price"); err != nil {
			return nil, fmt.Errorf("row %d invalid purchase_price: %w", index+1, err)
		}
		result = append(result, item)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("file has no valid data rows")
	}
	return result, nil
}

func readCSVRows(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}
	return rows, nil
}

func readExcelRows(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}
	return rows, nil
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := headerAliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	return strings.Join(strings.Fields(value), " ")
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func optionalPrice(cells []string, colMap map[string]int, key string) (decimal.Decimal, error) {
	idx, ok := colMap[key]
	if !ok {
		return decimal.Zero, nil
	}
	raw := strings.TrimSpace(readCell(cells, idx))
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := parseDecimal(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("price cannot be negative")
	}
	return value, nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	value = digitsReplacer.Replace(value)
	value = strings.ReplaceAll(value, "٬", "")
	value = strings.ReplaceAll(value, ",", "")
	value = strings.ReplaceAll(value, "٫", ".")
	if value == "" {
		return decimal.Zero, fmt.Errorf("value is empty")
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number")
	}
	return parsed, nil
}
