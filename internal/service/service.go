package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"contracting/internal/blob"
	"contracting/internal/domain"
	"contracting/internal/printview"
	"contracting/internal/report"
	"contracting/internal/repository"
)

var (
	ErrValidation = errors.New("validation failed")
	// ErrUnavailable means an optional backend such as attachment storage or
	// the PDF printer was not configured.
	ErrUnavailable = errors.New("not configured")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Auditor receives one entry per successful mutation. It must not block.
type Auditor interface {
	Record(ctx context.Context, action domain.AuditAction, entityType domain.EntityType, entityID string, details any)
}

type Printer interface {
	Render(ctx context.Context, doc printview.Document) ([]byte, error)
}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, domain.AuditAction, domain.EntityType, string, any) {}

type Service struct {
	repo      *repository.Repository
	loader    *report.Loader
	audit     Auditor
	blobs     blob.Store
	bucket    string
	signedTTL time.Duration
	printer   Printer
	company   string
	logger    zerolog.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.audit = a }
}

func WithBlobStore(store blob.Store, bucket string, signedTTL time.Duration) Option {
	return func(s *Service) {
		s.blobs = store
		s.bucket = bucket
		s.signedTTL = signedTTL
	}
}

func WithPrinter(p Printer) Option {
	return func(s *Service) { s.printer = p }
}

func WithCompany(name string) Option {
	return func(s *Service) { s.company = name }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(repo *repository.Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		loader:    report.NewLoader(repo),
		audit:     nopAuditor{},
		bucket:    "attachments",
		signedTTL: time.Hour,
		logger:    log.Logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Meta is the set of presentation lists the forms offer.
type Meta struct {
	Currencies   []string                `json:"currencies"`
	ExpenseTypes []string                `json:"expense_types"`
	Statuses     []domain.ContractStatus `json:"statuses"`
	EntityTypes  []domain.EntityType     `json:"entity_types"`
}

func (s *Service) Meta() Meta {
	return Meta{
		Currencies:   domain.Currencies,
		ExpenseTypes: domain.ExpenseTypes,
		Statuses: []domain.ContractStatus{
			domain.StatusNew, domain.StatusInProgress, domain.StatusCompleted, domain.StatusPaid,
		},
		EntityTypes: []domain.EntityType{
			domain.EntityContract, domain.EntitySupplier, domain.EntityContractItem,
			domain.EntityDelivery, domain.EntityDeliveryReceipt, domain.EntityPayment,
			domain.EntityAttachment, domain.EntityContractPurchase, domain.EntityContractExpense,
		},
	}
}

func (s *Service) ListAuditLogs(ctx context.Context, filter repository.AuditLogFilter) ([]domain.AuditLog, error) {
	return s.repo.ListAuditLogs(ctx, filter)
}

func normalizeNullable(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

// normalizePatch trims a patched nullable field. nil leaves the column alone
// and a blank value clears it.
func normalizePatch(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}

func requireText(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", invalid("%s is required", field)
	}
	return v, nil
}

func requirePositive(field string, value decimal.Decimal) error {
	if !value.IsPositive() {
		return invalid("%s must be greater than zero", field)
	}
	return nil
}

func requireNonNegative(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return invalid("%s cannot be negative", field)
	}
	return nil
}

func normalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.DefaultCurrency
	}
	return code
}
