package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"contracting/internal/domain"
	"contracting/internal/gateway"
)

type PurchaseCreateInput struct {
	ContractID    string
	ItemName      string
	Quantity      decimal.Decimal
	PurchasePrice decimal.Decimal
	SupplierID    *string
	PurchaseDate  *time.Time
	InvoiceNumber *string
	Notes         *string
}

type PurchasePatchInput struct {
	ItemName      *string
	Quantity      *decimal.Decimal
	PurchasePrice *decimal.Decimal
	SupplierID    *string
	PurchaseDate  *time.Time
	InvoiceNumber *string
	Notes         *string
}

type ExpenseCreateInput struct {
	ContractID  string
	ExpenseType string
	Amount      decimal.Decimal
	ExpenseDate *time.Time
	Notes       *string
}

type ExpensePatchInput struct {
	ExpenseType *string
	Amount      *decimal.Decimal
	ExpenseDate *time.Time
	Notes       *string
}

type SupplierCreateInput struct {
	Name   string
	Phone  *string
	Notes  *string
	UserID *string
}

type SupplierPatchInput struct {
	Name  *string
	Phone *string
	Notes *string
}

func (r *Repository) ListPurchases(ctx context.Context, contractIDs ...string) ([]domain.ContractPurchase, error) {
	return selectAll(ctx, r.gw, gateway.TableContractPurchases, gateway.Query{
		Filters: byParent("contract_id", contractIDs),
		Order:   []gateway.Order{gateway.Desc("created_at")},
	}, decodePurchase)
}

func (r *Repository) GetPurchase(ctx context.Context, id string) (*domain.ContractPurchase, error) {
	return selectByID(ctx, r.gw, gateway.TableContractPurchases, id, decodePurchase)
}

func (r *Repository) CreatePurchase(ctx context.Context, input PurchaseCreateInput) (domain.ContractPurchase, error) {
	return insertOne(ctx, r.gw, gateway.TableContractPurchases, gateway.Row{
		"contract_id":    input.ContractID,
		"item_name":      input.ItemName,
		"quantity":       input.Quantity,
		"purchase_price": input.PurchasePrice,
		"supplier_id":    optional(input.SupplierID),
		"purchase_date":  optional(input.PurchaseDate),
		"invoice_number": optional(input.InvoiceNumber),
		"notes":          optional(input.Notes),
	}, decodePurchase)
}

func (r *Repository) PatchPurchase(ctx context.Context, id string, input PurchasePatchInput) (*domain.ContractPurchase, error) {
	row := gateway.Row{}
	if input.ItemName != nil {
		row["item_name"] = *input.ItemName
	}
	if input.Quantity != nil {
		row["quantity"] = *input.Quantity
	}
	if input.PurchasePrice != nil {
		row["purchase_price"] = *input.PurchasePrice
	}
	if input.SupplierID != nil {
		row["supplier_id"] = clearable(*input.SupplierID)
	}
	if input.PurchaseDate != nil {
		row["purchase_date"] = *input.PurchaseDate
	}
	if input.InvoiceNumber != nil {
		row["invoice_number"] = clearable(*input.InvoiceNumber)
	}
	if input.Notes != nil {
		row["notes"] = clearable(*input.Notes)
	}
	if err := r.patch(ctx, gateway.TableContractPurchases, id, row); err != nil {
		return nil, err
	}
	return r.GetPurchase(ctx, id)
}

func (r *Repository) DeletePurchase(ctx context.Context, id string) error {
	return r.remove(ctx, gateway.TableContractPurchases, id)
}

func (r *Repository) ListExpenses(ctx context.Context, contractIDs ...string) ([]domain.ContractExpense, error) {
	return selectAll(ctx, r.gw, gateway.TableContractExpenses, gateway.Query{
		Filters: byParent("contract_id", contractIDs),
		Order:   []gateway.Order{gateway.Desc("created_at")},
	}, decodeExpense)
}

func (r *Repository) GetExpense(ctx context.Context, id string) (*domain.ContractExpense, error) {
	return selectByID(ctx, r.gw, gateway.TableContractExpenses, id, decodeExpense)
}

func (r *Repository) CreateExpense(ctx context.Context, input ExpenseCreateInput) (domain.ContractExpense, error) {
	return insertOne(ctx, r.gw, gateway.TableContractExpenses, gateway.Row{
		"contract_id":  input.ContractID,
		"expense_type": input.ExpenseType,
		"amount":       input.Amount,
		"expense_date": optional(input.ExpenseDate),
		"notes":        optional(input.Notes),
	}, decodeExpense)
}

func (r *Repository) PatchExpense(ctx context.Context, id string, input ExpensePatchInput) (*domain.ContractExpense, error) {
	row := gateway.Row{}
	if input.ExpenseType != nil {
		row["expense_type"] = *input.ExpenseType
	}
	if input.Amount != nil {
		row["amount"] = *input.Amount
	}
	if input.ExpenseDate != nil {
		row["expense_date"] = *input.ExpenseDate
	}
	if input.Notes != nil {
		row["notes"] = clearable(*input.Notes)
	}
	if err := r.patch(ctx, gateway.TableContractExpenses, id, row); err != nil {
		return nil, err
	}
	return r.GetExpense(ctx, id)
}

func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	return r.remove(ctx, gateway.TableContractExpenses, id)
}

func (r *Repository) ListSuppliers(ctx context.Context, search string) ([]domain.Supplier, error) {
	q := gateway.Query{Order: []gateway.Order{gateway.Asc("name")}}
	if search = strings.TrimSpace(search); search != "" {
		q.Filters = append(q.Filters, gateway.Search(search, "name", "phone"))
	}
	return selectAll(ctx, r.gw, gateway.TableSuppliers, q, decodeSupplier)
}

func (r *Repository) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	return selectByID(ctx, r.gw, gateway.TableSuppliers, id, decodeSupplier)
}

func (r *Repository) CreateSupplier(ctx context.Context, input SupplierCreateInput) (domain.Supplier, error) {
	return insertOne(ctx, r.gw, gateway.TableSuppliers, gateway.Row{
		"name":    input.Name,
		"phone":   optional(input.Phone),
		"notes":   optional(input.Notes),
		"user_id": optional(input.UserID),
	}, decodeSupplier)
}

func (r *Repository) PatchSupplier(ctx context.Context, id string, input SupplierPatchInput) (*domain.Supplier, error) {
	row := gateway.Row{}
	if input.Name != nil {
		row["name"] = *input.Name
	}
	if input.Phone != nil {
		row["phone"] = clearable(*input.Phone)
	}
	if input.Notes != nil {
		row["notes"] = clearable(*input.Notes)
	}
	if err := r.patch(ctx, gateway.TableSuppliers, id, row); err != nil {
		return nil, err
	}
	return r.GetSupplier(ctx, id)
}

func (r *Repository) DeleteSupplier(ctx context.Context, id string) error {
	return r.remove(ctx, gateway.TableSuppliers, id)
}

func decodePurchase(row gateway.Row) domain.ContractPurchase {
	return domain.ContractPurchase{
		ID:            row.String("id"),
		ContractID:    row.String("contract_id"),
		ItemName:      row.String("item_name"),
		Quantity:      row.Decimal("quantity"),
		PurchasePrice: row.Decimal("purchase_price"),
		SupplierID:    row.StringPtr("supplier_id"),
		PurchaseDate:  row.TimePtr("purchase_date"),
		InvoiceNumber: row.StringPtr("invoice_number"),
		Notes:         row.StringPtr("notes"),
		CreatedAt:     row.Time("created_at"),
	}
}

func decodeExpense(row gateway.Row) domain.ContractExpense {
	return domain.ContractExpense{
		ID:          row.String("id"),
		ContractID:  row.String("contract_id"),
		ExpenseType: row.String("expense_type"),
		Amount:      row.Decimal("amount"),
		ExpenseDate: row.TimePtr("expense_date"),
		Notes:       row.StringPtr("notes"),
		CreatedAt:   row.Time("created_at"),
	}
}

func decodeSupplier(row gateway.Row) domain.Supplier {
	return domain.Supplier{
		ID:        row.String("id"),
		Name:      row.String("name"),
		Phone:     row.StringPtr("phone"),
		Notes:     row.StringPtr("notes"),
		UserID:    row.StringPtr("user_id"),
		CreatedAt: row.Time("created_at"),
	}
}
