package service

import (
	"context"

	"github.com/shopspring/decimal"

	"contracting/internal/domain"
	"contracting/internal/ledger"
	"contracting/internal/repository"
)

type DeliveryOverview struct {
	Deliveries []domain.Delivery        `json:"deliveries"`
	Progress   []ledger.ItemProgressRow `json:"progress"`
}

// ListDeliveries returns the contract's item deliveries together with the
// ordered, delivered and remaining quantity of every item.
func (s *Service) ListDeliveries(ctx context.Context, contractID string) (DeliveryOverview, error) {
	items, err := s.repo.ListContractItems(ctx, contractID)
	if err != nil {
		return DeliveryOverview{}, err
	}
	out := DeliveryOverview{Deliveries: []domain.Delivery{}, Progress: []ledger.ItemProgressRow{}}
	if len(items) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	deliveries, err := s.repo.ListDeliveries(ctx, ids...)
	if err != nil {
		return DeliveryOverview{}, err
	}
	out.Deliveries = deliveries
	out.Progress = ledger.ItemProgress(items, deliveries)
	return out, nil
}

// CreateDelivery accepts quantities beyond what remains; the item then shows
// a negative remaining quantity, displayed as zero.
func (s *Service) CreateDelivery(ctx context.Context, input repository.DeliveryCreateInput) (domain.Delivery, error) {
	if _, err := s.repo.GetContractItem(ctx, input.ContractItemID); err != nil {
		return domain.Delivery{}, err
	}
	if err := requirePositive("quantity_delivered", input.QuantityDelivered); err != nil {
		return domain.Delivery{}, err
	}
	input.Notes = normalizeNullable(input.Notes)

	d, err := s.repo.CreateDelivery(ctx, input)
	if err != nil {
		return domain.Delivery{}, err
	}
	s.audit.Record(ctx, domain.ActionCreate, domain.EntityDelivery, d.ID, d)
	return d, nil
}

func (s *Service) PatchDelivery(ctx context.Context, id string, input repository.DeliveryPatchInput) (*domain.Delivery, error) {
	if input.QuantityDelivered != nil {
		if err := requirePositive("quantity_delivered", *input.QuantityDelivered); err != nil {
			return nil, err
		}
	}
	input.Notes = normalizePatch(input.Notes)
	d, err := s.repo.PatchDelivery(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, domain.ActionUpdate, domain.EntityDelivery, id, input)
	return d, nil
}

func (s *Service) DeleteDelivery(ctx context.Context, id string) error {
	if err := s.repo.DeleteDelivery(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.ActionDelete, domain.EntityDelivery, id, nil)
	return nil
}

func (s *Service) ListReceipts(ctx context.Context, contractID string) ([]domain.DeliveryReceipt, error) {
	return s.repo.ListReceipts(ctx, contractID)
}

func (s *Service) CreateReceipt(ctx context.Context, input repository.ReceiptCreateInput) (domain.DeliveryReceipt, error) {
	if _, err := s.repo.GetContract(ctx, input.ContractID); err != nil {
		return domain.DeliveryReceipt{}, err
	}
	number, err := requireText("receipt_number", input.ReceiptNumber)
	if err != nil {
		return domain.DeliveryReceipt{}, err
	}
	recipient, err := requireText("recipient_name", input.RecipientName)
	if err != nil {
		return domain.DeliveryReceipt{}, err
	}
	input.ReceiptNumber = number
	input.RecipientName = recipient
	input.RecipientPhone = normalizeNullable(input.RecipientPhone)
	input.Notes = normalizeNullable(input.Notes)

	r, err := s.repo.CreateReceipt(ctx, input)
	if err != nil {
		return domain.DeliveryReceipt{}, err
	}
	s.audit.Record(ctx, domain.ActionCreate, domain.EntityDeliveryReceipt, r.ID, r)
	return r, nil
}

func (s *Service) PatchReceipt(ctx context.Context, id string, input repository.ReceiptPatchInput) (*domain.DeliveryReceipt, error) {
	if input.ReceiptNumber != nil {
		number, err := requireText("receipt_number", *input.ReceiptNumber)
		if err != nil {
			return nil, err
		}
		input.ReceiptNumber = &number
	}
	if input.RecipientName != nil {
		recipient, err := requireText("recipient_name", *input.RecipientName)
		if err != nil {
			return nil, err
		}
		input.RecipientName = &recipient
	}
	input.RecipientPhone = normalizePatch(input.RecipientPhone)
	input.Notes = normalizePatch(input.Notes)
	r, err := s.repo.PatchReceipt(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, domain.ActionUpdate, domain.EntityDeliveryReceipt, id, input)
	return r, nil
}

func (s *Service) DeleteReceipt(ctx context.Context, id string) error {
	if err := s.repo.DeleteReceipt(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.ActionDelete, domain.EntityDeliveryReceipt, id, nil)
	return nil
}

// PaymentOverview is the payments tab: the list plus totals against the
// contract value.
type PaymentOverview struct {
	Currency      string           `json:"currency"`
	Payments      []domain.Payment `json:"payments"`
	ContractValue decimal.Decimal  `json:"contract_value"`
	TotalReceived decimal.Decimal  `json:"total_received"`
	Remaining     decimal.Decimal  `json:"remaining"`
}

func (s *Service) ListPayments(ctx context.Context, contractID string) (PaymentOverview, error) {
	c, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		return PaymentOverview{}, err
	}
	items, err := s.repo.ListContractItems(ctx, contractID)
	if err != nil {
		return PaymentOverview{}, err
	}
	payments, err := s.repo.ListPayments(ctx, contractID)
	if err != nil {
		return PaymentOverview{}, err
	}
	value := ledger.ContractValue(items)
	received := ledger.TotalReceived(payments)
	return PaymentOverview{
		Currency:      normalizeCurrency(c.Currency),
		Payments:      payments,
		ContractValue: value,
		TotalReceived: received,
		Remaining:     ledger.RemainingBalance(value, received),
	}, nil
}

func (s *Service) CreatePayment(ctx context.Context, input repository.PaymentCreateInput) (domain.Payment, error) {
	if _, err := s.repo.GetContract(ctx, input.ContractID); err != nil {
		return domain.Payment{}, err
	}
	if err := requirePositive("amount", input.Amount); err != nil {
		return domain.Payment{}, err
	}
	input.Notes = normalizeNullable(input.Notes)

	p, err := s.repo.CreatePayment(ctx, input)
	if err != nil {
		return domain.Payment{}, err
	}
	s.audit.Record(ctx, domain.ActionCreate, domain.EntityPayment, p.ID, p)
	return p, nil
}

func (s *Service) PatchPayment(ctx context.Context, id string, input repository.PaymentPatchInput) (*domain.Payment, error) {
	if input.Amount != nil {
		if err := requirePositive("amount", *input.Amount); err != nil {
			return nil, err
		}
	}
	input.Notes = normalizePatch(input.Notes)
	p, err := s.repo.PatchPayment(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, domain.ActionUpdate, domain.EntityPayment, id, input)
	return p, nil
}

func (s *Service) DeletePayment(ctx context.Context, id string) error {
	if err := s.repo.DeletePayment(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.ActionDelete, domain.EntityPayment, id, nil)
	return nil
}
