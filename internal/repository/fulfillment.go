package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"contracting/internal/domain"
	"contracting/internal/gateway"
)

type DeliveryCreateInput struct {
	ContractItemID    string
	QuantityDelivered decimal.Decimal
	DeliveryDate      *time.Time
	Notes             *string
}

type DeliveryPatchInput struct {
	QuantityDelivered *decimal.Decimal
	DeliveryDate      *time.Time
	Notes             *string
}

type ReceiptCreateInput struct {
	ContractID     string
	ReceiptNumber  string
	DeliveryDate   *time.Time
	RecipientName  string
	RecipientPhone *string
	Notes          *string
}

type ReceiptPatchInput struct {
	ReceiptNumber  *string
	DeliveryDate   *time.Time
	RecipientName  *string
	RecipientPhone *string
	Notes          *string
}

type PaymentCreateInput struct {
	ContractID  string
	Amount      decimal.Decimal
	PaymentDate *time.Time
	Notes       *string
}

type PaymentPatchInput struct {
	Amount      *decimal.Decimal
	PaymentDate *time.Time
	Notes       *string
}

type AttachmentCreateInput struct {
	ContractID string
	FileURL    string
	FileType   string
}

// ListDeliveries returns deliveries of the given items, or all deliveries when
// no id is passed.
func (r *Repository) ListDeliveries(ctx context.Context, itemIDs ...string) ([]domain.Delivery, error) {
	return selectAll(ctx, r.gw, gateway.TableDeliveries, gateway.Query{
		Filters: byParent("contract_item_id", itemIDs),
		Order:   []gateway.Order{gateway.Desc("delivery_date")},
	}, decodeDelivery)
}

func (r *Repository) GetDelivery(ctx context.Context, id string) (*domain.Delivery, error) {
	return selectByID(ctx, r.gw, gateway.TableDeliveries, id, decodeDelivery)
}

func (r *Repository) CreateDelivery(ctx context.Context, input DeliveryCreateInput) (domain.Delivery, error) {
	return insertOne(ctx, r.gw, gateway.TableDeliveries, gateway.Row{
		"contract_item_id":   input.ContractItemID,
		"quantity_delivered": input.QuantityDelivered,
		"delivery_date":      optional(input.DeliveryDate),
		"notes":              optional(input.Notes),
	}, decodeDelivery)
}

func (r *Repository) PatchDelivery(ctx context.Context, id string, input DeliveryPatchInput) (*domain.Delivery, error) {
	row := gateway.Row{}
	if input.QuantityDelivered != nil {
		row["quantity_delivered"] = *input.QuantityDelivered
	}
	if input.DeliveryDate != nil {
		row["delivery_date"] = *input.DeliveryDate
	}
	if input.Notes != nil {
		row["notes"] = clearable(*input.Notes)
	}
	if err := r.patch(ctx, gateway.TableDeliveries, id, row); err != nil {
		return nil, err
	}
	return r.GetDelivery(ctx, id)
}

func (r *Repository) DeleteDelivery(ctx context.Context, id string) error {
	return r.remove(ctx, gateway.TableDeliveries, id)
}

func (r *Repository) ListReceipts(ctx context.Context, contractID string) ([]domain.DeliveryReceipt, error) {
	return selectAll(ctx, r.gw, gateway.TableDeliveryReceipts, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("contract_id", contractID)},
		Order:   []gateway.Order{gateway.Desc("delivery_date")},
	}, decodeReceipt)
}

func (r *Repository) GetReceipt(ctx context.Context, id string) (*domain.DeliveryReceipt, error) {
	return selectByID(ctx, r.gw, gateway.TableDeliveryReceipts, id, decodeReceipt)
}

func (r *Repository) CreateReceipt(ctx context.Context, input ReceiptCreateInput) (domain.DeliveryReceipt, error) {
	return insertOne(ctx, r.gw, gateway.TableDeliveryReceipts, gateway.Row{
		"contract_id":     input.ContractID,
		"receipt_number":  input.ReceiptNumber,
		"delivery_date":   optional(input.DeliveryDate),
		"recipient_name":  input.RecipientName,
		"recipient_phone": optional(input.RecipientPhone),
		"notes":           optional(input.Notes),
	}, decodeReceipt)
}

func (r *Repository) PatchReceipt(ctx context.Context, id string, input ReceiptPatchInput) (*domain.DeliveryReceipt, error) {
	row := gateway.Row{}
	if input.ReceiptNumber != nil {
		row["receipt_number"] = *input.ReceiptNumber
	}
	if input.DeliveryDate != nil {
		row["delivery_date"] = *input.DeliveryDate
	}
	if input.RecipientName != nil {
		row["recipient_name"] = *input.RecipientName
	}
	if input.RecipientPhone != nil {
		row["recipient_phone"] = clearable(*input.RecipientPhone)
	}
	if input.Notes != nil {
		row["notes"] = clearable(*input.Notes)
	}
	if err := r.patch(ctx, gateway.TableDeliveryReceipts, id, row); err != nil {
		return nil, err
	}
	return r.GetReceipt(ctx, id)
}

func (r *Repository) DeleteReceipt(ctx context.Context, id string) error {
	return r.remove(ctx, gateway.TableDeliveryReceipts, id)
}

func (r *Repository) ListPayments(ctx context.Context, contractIDs ...string) ([]domain.Payment, error) {
	return selectAll(ctx, r.gw, gateway.TablePayments, gateway.Query{
		Filters: byParent("contract_id", contractIDs),
		Order:   []gateway.Order{gateway.Desc("payment_date")},
	}, decodePayment)
}

func (r *Repository) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return selectByID(ctx, r.gw, gateway.TablePayments, id, decodePayment)
}

func (r *Repository) CreatePayment(ctx context.Context, input PaymentCreateInput) (domain.Payment, error) {
	return insertOne(ctx, r.gw, gateway.TablePayments, gateway.Row{
		"contract_id":  input.ContractID,
		"amount":       input.Amount,
		"payment_date": optional(input.PaymentDate),
		"notes":        optional(input.Notes),
	}, decodePayment)
}

func (r *Repository) PatchPayment(ctx context.Context, id string, input PaymentPatchInput) (*domain.Payment, error) {
	row := gateway.Row{}
	if input.Amount != nil {
		row["amount"] = *input.Amount
	}
	if input.PaymentDate != nil {
		row["payment_date"] = *input.PaymentDate
	}
	if input.Notes != nil {
		row["notes"] = clearable(*input.Notes)
	}
	if err := r.patch(ctx, gateway.TablePayments, id, row); err != nil {
		return nil, err
	}
	return r.GetPayment(ctx, id)
}

func (r *Repository) DeletePayment(ctx context.Context, id string) error {
	return r.remove(ctx, gateway.TablePayments, id)
}

func (r *Repository) ListAttachments(ctx context.Context, contractID string) ([]domain.Attachment, error) {
	return selectAll(ctx, r.gw, gateway.TableAttachments, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("contract_id", contractID)},
		Order:   []gateway.Order{gateway.Desc("created_at")},
	}, decodeAttachment)
}

func (r *Repository) GetAttachment(ctx context.Context, id string) (*domain.Attachment, error) {
	return selectByID(ctx, r.gw, gateway.TableAttachments, id, decodeAttachment)
}

func (r *Repository) CreateAttachment(ctx context.Context, input AttachmentCreateInput) (domain.Attachment, error) {
	return insertOne(ctx, r.gw, gateway.TableAttachments, gateway.Row{
		"contract_id": input.ContractID,
		"file_url":    input.FileURL,
		"file_type":   input.FileType,
	}, decodeAttachment)
}

func (r *Repository) DeleteAttachment(ctx context.Context, id string) error {
	return r.remove(ctx, gateway.TableAttachments, id)
}

func decodeDelivery(row gateway.Row) domain.Delivery {
	return domain.Delivery{
		ID:                row.String("id"),
		ContractItemID:    row.String("contract_item_id"),
		QuantityDelivered: row.Decimal("quantity_delivered"),
		DeliveryDate:      row.TimePtr("delivery_date"),
		Notes:             row.StringPtr("notes"),
		CreatedAt:         row.Time("created_at"),
	}
}

func decodeReceipt(row gateway.Row) domain.DeliveryReceipt {
	return domain.DeliveryReceipt{
		ID:             row.String("id"),
		ContractID:     row.String("contract_id"),
		ReceiptNumber:  row.String("receipt_number"),
		DeliveryDate:   row.TimePtr("delivery_date"),
		RecipientName:  row.String("recipient_name"),
		RecipientPhone: row.StringPtr("recipient_phone"),
		Notes:          row.StringPtr("notes"),
		CreatedAt:      row.Time("created_at"),
	}
}

func decodePayment(row gateway.Row) domain.Payment {
	return domain.Payment{
		ID:          row.String("id"),
		ContractID:  row.String("contract_id"),
		Amount:      row.Decimal("amount"),
		PaymentDate: row.TimePtr("payment_date"),
		Notes:       row.StringPtr("notes"),
		CreatedAt:   row.Time("created_at"),
	}
}

func decodeAttachment(row gateway.Row) domain.Attachment {
	return domain.Attachment{
		ID:         row.String("id"),
		ContractID: row.String("contract_id"),
		FileURL:    row.String("file_url"),
		FileType:   row.String("file_type"),
		CreatedAt:  row.Time("created_at"),
	}
}
