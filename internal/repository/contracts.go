package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"contracting/internal/domain"
	"contracting/internal/gateway"
)

type ContractListFilter struct {
	Search   string
	Status   string
	Currency string
	Limit    int
}

type ContractCreateInput struct {
	ContractNumber string
	Governorate    string
	Branch         string
	ContractDate   *time.Time
	Currency       string
	Status         domain.ContractStatus
	Notes          *string
	UserID         *string
}

type ContractPatchInput struct {
	ContractNumber *string
	Governorate    *string
	Branch         *string
	ContractDate   *time.Time
	Status         *domain.ContractStatus
	Notes          *string
}

type ContractItemCreateInput struct {
	ContractID    string
	ItemName      string
	Quantity      decimal.Decimal
	SalePrice     decimal.Decimal
	PurchasePrice decimal.Decimal
}

type ContractItemPatchInput struct {
	ItemName      *string
	Quantity      *decimal.Decimal
	SalePrice     *decimal.Decimal
	PurchasePrice *decimal.Decimal
}

func (r *Repository) ListContracts(ctx context.Context, filter ContractListFilter) ([]domain.Contract, error) {
	q := gateway.Query{Order: []gateway.Order{gateway.Desc("created_at")}}
	if search := strings.TrimSpace(filter.Search); search != "" {
		q.Filters = append(q.Filters, gateway.Search(search, "contract_number", "governorate", "branch"))
	}
	if filter.Status != "" {
		q.Filters = append(q.Filters, gateway.Eq("status", filter.Status))
	}
	if filter.Currency != "" {
		q.Filters = append(q.Filters, gateway.Eq("currency", filter.Currency))
	}
	q.Limit = normalizeLimit(filter.Limit, 0)
	return selectAll(ctx, r.gw, gateway.TableContracts, q, decodeContract)
}

func (r *Repository) GetContract(ctx context.Context, id string) (*domain.Contract, error) {
	return selectByID(ctx, r.gw, gateway.TableContracts, id, decodeContract)
}

func (r *Repository) CreateContract(ctx context.Context, input ContractCreateInput) (domain.Contract, error) {
	return insertOne(ctx, r.gw, gateway.TableContracts, gateway.Row{
		"contract_number": input.ContractNumber,
		"governorate":     input.Governorate,
		"branch":          input.Branch,
		"contract_date":   optional(input.ContractDate),
		"currency":        input.Currency,
		"status":          string(input.Status),
		"notes":           optional(input.Notes),
		"user_id":         optional(input.UserID),
	}, decodeContract)
}

func (r *Repository) PatchContract(ctx context.Context, id string, input ContractPatchInput) (*domain.Contract, error) {
	row := gateway.Row{}
	if input.ContractNumber != nil {
		row["contract_number"] = *input.ContractNumber
	}
	if input.Governorate != nil {
		row["governorate"] = *input.Governorate
	}
	if input.Branch != nil {
		row["branch"] = *input.Branch
	}
	if input.ContractDate != nil {
		row["contract_date"] = *input.ContractDate
	}
	if input.Status != nil {
		row["status"] = string(*input.Status)
	}
	if input.Notes != nil {
		row["notes"] = clearable(*input.Notes)
	}
	if err := r.patch(ctx, gateway.TableContracts, id, row); err != nil {
		return nil, err
	}
	return r.GetContract(ctx, id)
}

func (r *Repository) DeleteContract(ctx context.Context, id string) error {
	return r.remove(ctx, gateway.TableContracts, id)
}

// ListContractItems returns items of the given contracts, or every item when
// no id is passed. Items keep entry order.
func (r *Repository) ListContractItems(ctx context.Context, contractIDs ...string) ([]domain.ContractItem, error) {
	return selectAll(ctx, r.gw, gateway.TableContractItems, gateway.Query{
		Filters: byParent("contract_id", contractIDs),
		Order:   []gateway.Order{gateway.Asc("created_at")},
	}, decodeContractItem)
}

func (r *Repository) GetContractItem(ctx context.Context, id string) (*domain.ContractItem, error) {
	return selectByID(ctx, r.gw, gateway.TableContractItems, id, decodeContractItem)
}

func (r *Repository) CreateContractItem(ctx context.Context, input ContractItemCreateInput) (domain.ContractItem, error) {
	return insertOne(ctx, r.gw, gateway.TableContractItems, gateway.Row{
		"contract_id":    input.ContractID,
		"item_name":      input.ItemName,
		"quantity":       input.Quantity,
		"sale_price":     input.SalePrice,
		"purchase_price": input.PurchasePrice,
	}, decodeContractItem)
}

func (r *Repository) PatchContractItem(ctx context.Context, id string, input ContractItemPatchInput) (*domain.ContractItem, error) {
	row := gateway.Row{}
	if input.ItemName != nil {
		row["item_name"] = *input.ItemName
	}
	if input.Quantity != nil {
		row["quantity"] = *input.Quantity
	}
	if input.SalePrice != nil {
		row["sale_price"] = *input.SalePrice
	}
	if input.PurchasePrice != nil {
		row["purchase_price"] = *input.PurchasePrice
	}
	if err := r.patch(ctx, gateway.TableContractItems, id, row); err != nil {
		return nil, err
	}
	return r.GetContractItem(ctx, id)
}

func (r *Repository) DeleteContractItem(ctx context.Context, id string) error {
	return r.remove(ctx, gateway.TableContractItems, id)
}

func decodeContract(row gateway.Row) domain.Contract {
	currency := row.String("currency")
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return domain.Contract{
		ID:             row.String("id"),
		ContractNumber: row.String("contract_number"),
		Governorate:    row.String("governorate"),
		Branch:         row.String("branch"),
		ContractDate:   row.TimePtr("contract_date"),
		Currency:       currency,
		Status:         domain.ContractStatus(row.String("status")),
		Notes:          row.StringPtr("notes"),
		UserID:         row.StringPtr("user_id"),
		CreatedAt:      row.Time("created_at"),
	}
}

func decodeContractItem(row gateway.Row) domain.ContractItem {
	return domain.ContractItem{
		ID:            row.String("id"),
		ContractID:    row.String("contract_id"),
		ItemName:      row.String("item_name"),
		Quantity:      row.Decimal("quantity"),
		SalePrice:     row.Decimal("sale_price"),
		PurchasePrice: row.Decimal("purchase_price"),
		CreatedAt:     row.Time("created_at"),
	}
}
