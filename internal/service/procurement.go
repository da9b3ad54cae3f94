package service

import (
	"context"
	"errors"
	"fmt"

	"contracting/internal/auth"
	"contracting/internal/domain"
	"contracting/internal/repository"
)

func (s *Service) ListPurchases(ctx context.Context, contractID string) ([]domain.ContractPurchase, error) {
	return s.repo.ListPurchases(ctx, contractID)
}

func (s *Service) CreatePurchase(ctx context.Context, input repository.PurchaseCreateInput) (domain.ContractPurchase, error) {
	if _, err := s.repo.GetContract(ctx, input.ContractID); err != nil {
		return domain.ContractPurchase{}, err
	}
	name, err := requireText("item_name", input.ItemName)
	if err != nil {
		return domain.ContractPurchase{}, err
	}
	input.ItemName = name
	if err := requirePositive("quantity", input.Quantity); err != nil {
		return domain.ContractPurchase{}, err
	}
	if err := requireNonNegative("purchase_price", input.PurchasePrice); err != nil {
		return domain.ContractPurchase{}, err
	}
	input.SupplierID = normalizeNullable(input.SupplierID)
	if err := s.checkSupplier(ctx, input.SupplierID); err != nil {
		return domain.ContractPurchase{}, err
	}
	input.InvoiceNumber = normalizeNullable(input.InvoiceNumber)
	input.Notes = normalizeNullable(input.Notes)

	p, err := s.repo.CreatePurchase(ctx, input)
	if err != nil {
		return domain.ContractPurchase{}, err
	}
	s.audit.Record(ctx, domain.ActionCreate, domain.EntityContractPurchase, p.ID, p)
	return p, nil
}

func (s *Service) PatchPurchase(ctx context.Context, id string, input repository.PurchasePatchInput) (*domain.ContractPurchase, error) {
	if input.ItemName != nil {
		name, err := requireText("item_name", *input.ItemName)
		if err != nil {
			return nil, err
		}
		input.ItemName = &name
	}
	if input.Quantity != nil {
		if err := requirePositive("quantity", *input.Quantity); err != nil {
			return nil, err
		}
	}
	if input.PurchasePrice != nil {
		if err := requireNonNegative("purchase_price", *input.PurchasePrice); err != nil {
			return nil, err
		}
	}
	input.SupplierID = normalizePatch(input.SupplierID)
	if input.SupplierID != nil && *input.SupplierID != "" {
		if err := s.checkSupplier(ctx, input.SupplierID); err != nil {
			return nil, err
		}
	}

	input.InvoiceNumber = normalizePatch(input.InvoiceNumber)
	input.Notes = normalizePatch(input.Notes)
	p, err := s.repo.PatchPurchase(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, domain.ActionUpdate, domain.EntityContractPurchase, id, input)
	return p, nil
}

func (s *Service) DeletePurchase(ctx context.Context, id string) error {
	if err := s.repo.DeletePurchase(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.ActionDelete, domain.EntityContractPurchase, id, nil)
	return nil
}

func (s *Service) checkSupplier(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := s.repo.GetSupplier(ctx, *id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("unknown supplier %q", *id)
		}
		return fmt.Errorf("check supplier: %w", err)
	}
	return nil
}

func (s *Service) ListExpenses(ctx context.Context, contractID string) ([]domain.ContractExpense, error) {
	return s.repo.ListExpenses(ctx, contractID)
}

func (s *Service) CreateExpense(ctx context.Context, input repository.ExpenseCreateInput) (domain.ContractExpense, error) {
	if _, err := s.repo.GetContract(ctx, input.ContractID); err != nil {
		return domain.ContractExpense{}, err
	}
	expenseType, err := requireText("expense_type", input.ExpenseType)
	if err != nil {
		return domain.ContractExpense{}, err
	}
	input.ExpenseType = expenseType
	if err := requirePositive("amount", input.Amount); err != nil {
		return domain.ContractExpense{}, err
	}
	input.Notes = normalizeNullable(input.Notes)

	e, err := s.repo.CreateExpense(ctx, input)
	if err != nil {
		return domain.ContractExpense{}, err
	}
	s.audit.Record(ctx, domain.ActionCreate, domain.EntityContractExpense, e.ID, e)
	return e, nil
}

func (s *Service) PatchExpense(ctx context.Context, id string, input repository.ExpensePatchInput) (*domain.ContractExpense, error) {
	if input.ExpenseType != nil {
		expenseType, err := requireText("expense_type", *input.ExpenseType)
		if err != nil {
			return nil, err
		}
		input.ExpenseType = &expenseType
	}
	if input.Amount != nil {
		if err := requirePositive("amount", *input.Amount); err != nil {
			return nil, err
		}
	}

	input.Notes = normalizePatch(input.Notes)
	e, err := s.repo.PatchExpense(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, domain.ActionUpdate, domain.EntityContractExpense, id, input)
	return e, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.ActionDelete, domain.EntityContractExpense, id, nil)
	return nil
}

func (s *Service) ListSuppliers(ctx context.Context, search string) ([]domain.Supplier, error) {
	return s.repo.ListSuppliers(ctx, search)
}

func (s *Service) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

func (s *Service) CreateSupplier(ctx context.Context, input repository.SupplierCreateInput) (domain.Supplier, error) {
	name, err := requireText("name", input.Name)
	if err != nil {
		return domain.Supplier{}, err
	}
	input.Name = name
	input.Phone = normalizeNullable(input.Phone)
	input.Notes = normalizeNullable(input.Notes)
	if input.UserID == nil {
		if uid := auth.UserIDFromContext(ctx); uid != "" {
			input.UserID = &uid
		}
	}

	sup, err := s.repo.CreateSupplier(ctx, input)
	if err != nil {
		return domain.Supplier{}, err
	}
	s.audit.Record(ctx, domain.ActionCreate, domain.EntitySupplier, sup.ID, sup)
	return sup, nil
}

func (s *Service) PatchSupplier(ctx context.Context, id string, input repository.SupplierPatchInput) (*domain.Supplier, error) {
	if input.Name != nil {
		name, err := requireText("name", *input.Name)
		if err != nil {
			return nil, err
		}
		input.Name = &name
	}

	input.Phone = normalizePatch(input.Phone)
	input.Notes = normalizePatch(input.Notes)
	sup, err := s.repo.PatchSupplier(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, domain.ActionUpdate, domain.EntitySupplier, id, input)
	return sup, nil
}

// DeleteSupplier leaves purchases in place; the database clears their
// supplier_id.
func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	if err := s.repo.DeleteSupplier(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.ActionDelete, domain.EntitySupplier, id, nil)
	return nil
}
