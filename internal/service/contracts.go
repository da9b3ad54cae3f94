package service

import (
	"context"
	"errors"
	"fmt"

	"contracting/internal/auth"
	"contracting/internal/blob"
	"contracting/internal/domain"
	"contracting/internal/excel"
	"contracting/internal/gateway"
	"contracting/internal/repository"
)

// ContractPatch carries Currency only so a change can be refused: the
// currency of a contract is fixed at creation.
type ContractPatch struct {
	repository.ContractPatchInput
	Currency *string
}

func (s *Service) ListContracts(ctx context.Context, filter repository.ContractListFilter) ([]domain.Contract, error) {
	if filter.Currency != "" {
		filter.Currency = normalizeCurrency(filter.Currency)
	}
	return s.repo.ListContracts(ctx, filter)
}

func (s *Service) GetContract(ctx context.Context, id string) (*domain.Contract, error) {
	return s.repo.GetContract(ctx, id)
}

func (s *Service) CreateContract(ctx context.Context, input repository.ContractCreateInput) (domain.Contract, error) {
	number, err := requireText("contract_number", input.ContractNumber)
	if err != nil {
		return domain.Contract{}, err
	}
	input.ContractNumber = number
	input.Currency = normalizeCurrency(input.Currency)
	if input.Status == "" {
		input.Status = domain.StatusNew
	}
	if !input.Status.Valid() {
		return domain.Contract{}, invalid("unknown status %q", input.Status)
	}
	input.Notes = normalizeNullable(input.Notes)
	if input.UserID == nil {
		if uid := auth.UserIDFromContext(ctx); uid != "" {
			input.UserID = &uid
		}
	}

	c, err := s.repo.CreateContract(ctx, input)
	if err != nil {
		return domain.Contract{}, err
	}
	s.audit.Record(ctx, domain.ActionCreate, domain.EntityContract, c.ID, c)
	return c, nil
}

func (s *Service) PatchContract(ctx context.Context, id string, input ContractPatch) (*domain.Contract, error) {
	current, err := s.repo.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Currency != nil && normalizeCurrency(*input.Currency) != normalizeCurrency(current.Currency) {
		return nil, invalid("currency cannot be changed after creation")
	}
	if input.ContractNumber != nil {
		number, err := requireText("contract_number", *input.ContractNumber)
		if err != nil {
			return nil, err
		}
		input.ContractNumber = &number
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, invalid("unknown status %q", *input.Status)
	}

	input.Notes = normalizePatch(input.Notes)
	updated, err := s.repo.PatchContract(ctx, id, input.ContractPatchInput)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, domain.ActionUpdate, domain.EntityContract, id, input.ContractPatchInput)
	return updated, nil
}

// DeleteContract removes the contract's stored files first. Storage failures
// are logged and do not stop the delete; child rows go with the contract.
func (s *Service) DeleteContract(ctx context.Context, id string) error {
	c, err := s.repo.GetContract(ctx, id)
	if err != nil {
		return err
	}

	if s.blobs != nil {
		attachments, err := s.repo.ListAttachments(ctx, id)
		switch {
		case err != nil && !gateway.IsNotProvisioned(err):
			return fmt.Errorf("list contract attachments: %w", err)
		case len(attachments) > 0:
			paths := make([]string, 0, len(attachments))
			for _, a := range attachments {
				paths = append(paths, blob.PathFromURL(a.FileURL))
			}
			if err := s.blobs.Remove(ctx, s.bucket, paths); err != nil {
				s.logger.Warn().Err(err).Str("contract_id", id).Int("files", len(paths)).
					Msg("failed to remove contract attachments from storage")
			}
		}
	}

	if err := s.repo.DeleteContract(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.ActionDelete, domain.EntityContract, id, map[string]any{
		"contract_number": c.ContractNumber,
	})
	return nil
}

func (s *Service) ListContractItems(ctx context.Context, contractID string) ([]domain.ContractItem, error) {
	return s.repo.ListContractItems(ctx, contractID)
}

func (s *Service) CreateContractItem(ctx context.Context, input repository.ContractItemCreateInput) (domain.ContractItem, error) {
	if _, err := s.repo.GetContract(ctx, input.ContractID); err != nil {
		return domain.ContractItem{}, err
	}
	if err := validateItem(&input); err != nil {
		return domain.ContractItem{}, err
	}
	item, err := s.repo.CreateContractItem(ctx, input)
	if err != nil {
		return domain.ContractItem{}, err
	}
	s.audit.Record(ctx, domain.ActionCreate, domain.EntityContractItem, item.ID, item)
	return item, nil
}

func (s *Service) PatchContractItem(ctx context.Context, id string, input repository.ContractItemPatchInput) (*domain.ContractItem, error) {
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
	if input.SalePrice != nil {
		if err := requireNonNegative("sale_price", *input.SalePrice); err != nil {
			return nil, err
		}
	}
	if input.PurchasePrice != nil {
		if err := requireNonNegative("purchase_price", *input.PurchasePrice); err != nil {
			return nil, err
		}
	}

	item, err := s.repo.PatchContractItem(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, domain.ActionUpdate, domain.EntityContractItem, id, input)
	return item, nil
}

func (s *Service) DeleteContractItem(ctx context.Context, id string) error {
	if err := s.repo.DeleteContractItem(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.ActionDelete, domain.EntityContractItem, id, nil)
	return nil
}

// ImportContractItems validates every row before inserting any, then adds
// them in sheet order.
func (s *Service) ImportContractItems(ctx context.Context, contractID string, rows []excel.ItemRow) ([]domain.ContractItem, error) {
	if len(rows) == 0 {
		return nil, invalid("import file has no data rows")
	}
	if _, err := s.repo.GetContract(ctx, contractID); err != nil {
		return nil, err
	}

	inputs, err := ValidateImportRows(contractID, rows)
	if err != nil {
		return nil, err
	}

	created := make([]domain.ContractItem, 0, len(inputs))
	for i, input := range inputs {
		item, err := s.repo.CreateContractItem(ctx, input)
		if err != nil {
			err = fmt.Errorf("row %d: import item %q: %w", rows[i].Line, input.ItemName, err)
			return nil, s.rollbackImport(ctx, created, err)
		}
		created = append(created, item)
	}
	for _, item := range created {
		s.audit.Record(ctx, domain.ActionCreate, domain.EntityContractItem, item.ID, map[string]any{
			"item":   item,
			"source": "import",
		})
	}
	return created, nil
}

// ValidateImportRows checks every sheet row with the same rules as a single
// item create. The first bad row fails the whole sheet.
func ValidateImportRows(contractID string, rows []excel.ItemRow) ([]repository.ContractItemCreateInput, error) {
	if len(rows) == 0 {
		return nil, invalid("import file has no data rows")
	}
	inputs := make([]repository.ContractItemCreateInput, 0, len(rows))
	for _, row := range rows {
		input := repository.ContractItemCreateInput{
			ContractID:    contractID,
			ItemName:      row.ItemName,
			Quantity:      row.Quantity,
			SalePrice:     row.SalePrice,
			PurchasePrice: row.PurchasePrice,
		}
		if err := validateItem(&input); err != nil {
			return nil, fmt.Errorf("row %d: %w", row.Line, err)
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

// PartialImportError is returned when an import failed and some of the rows
// it had already written could not be removed again.
type PartialImportError struct {
	ItemIDs []string
	Err     error
}

func (e *PartialImportError) Error() string {
	return fmt.Sprintf("%v (%d imported items left in place)", e.Err, len(e.ItemIDs))
}

func (e *PartialImportError) Unwrap() error { return e.Err }

// rollbackImport deletes the items an interrupted import wrote so a retry
// starts from a clean contract.
func (s *Service) rollbackImport(ctx context.Context, created []domain.ContractItem, cause error) error {
	var left []string
	for _, item := range created {
		if err := s.repo.DeleteContractItem(ctx, item.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn().Err(err).Str("item_id", item.ID).Msg("failed to roll back imported item")
			left = append(left, item.ID)
		}
	}
	if len(left) > 0 {
		return &PartialImportError{ItemIDs: left, Err: cause}
	}
	return cause
}

func validateItem(input *repository.ContractItemCreateInput) error {
	name, err := requireText("item_name", input.ItemName)
	if err != nil {
		return err
	}
	input.ItemName = name
	if err := requirePositive("quantity", input.Quantity); err != nil {
		return err
	}
	if err := requireNonNegative("sale_price", input.SalePrice); err != nil {
		return err
	}
	return requireNonNegative("purchase_price", input.PurchasePrice)
}
