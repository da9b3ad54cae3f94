package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "SAR"

// Currencies is the presentation list offered by the contract form. Any
// non-empty code is still accepted as a grouping key.
var Currencies = []string{"SAR", "USD", "EUR", "AED", "EGP", "KWD", "QAR", "OMR", "BHD", "JOD"}

var ExpenseTypes = []string{"نقل", "تحميل وتنزيل", "تخزين", "اتصالات", "عمولة", "أخرى"}

type ContractStatus string

const (
	StatusNew        ContractStatus = "new"
	StatusInProgress ContractStatus = "in_progress"
	StatusCompleted  ContractStatus = "completed"
	StatusPaid       ContractStatus = "paid"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted, StatusPaid:
		return true
	}
	return false
}

type Contract struct {
	ID             string         `json:"id"`
	ContractNumber string         `json:"contract_number"`
	Governorate    string         `json:"governorate"`
	Branch         string         `json:"branch"`
	ContractDate   *time.Time     `json:"contract_date,omitempty"`
	Currency       string         `json:"currency"`
	Status         ContractStatus `json:"status"`
	Notes          *string        `json:"notes,omitempty"`
	UserID         *string        `json:"user_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

type ContractItem struct {
	ID            string          `json:"id"`
	ContractID    string          `json:"contract_id"`
	ItemName      string          `json:"item_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	CreatedAt     time.Time       `json:"created_at"`
}

type ContractPurchase struct {
	ID            string          `json:"id"`
	ContractID    string          `json:"contract_id"`
	ItemName      string          `json:"item_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SupplierID    *string         `json:"supplier_id,omitempty"`
	PurchaseDate  *time.Time      `json:"purchase_date,omitempty"`
	InvoiceNumber *string         `json:"invoice_number,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type ContractExpense struct {
	ID          string          `json:"id"`
	ContractID  string          `json:"contract_id"`
	ExpenseType string          `json:"expense_type"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate *time.Time      `json:"expense_date,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Delivery struct {
	ID                string          `json:"id"`
	ContractItemID    string          `json:"contract_item_id"`
	QuantityDelivered decimal.Decimal `json:"quantity_delivered"`
	DeliveryDate      *time.Time      `json:"delivery_date,omitempty"`
	Notes             *string         `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// DeliveryReceipt is the signed delivery document. It is not linked to the
// item-level Delivery rows.
type DeliveryReceipt struct {
	ID             string     `json:"id"`
	ContractID     string     `json:"contract_id"`
	ReceiptNumber  string     `json:"receipt_number"`
	DeliveryDate   *time.Time `json:"delivery_date,omitempty"`
	RecipientName  string     `json:"recipient_name"`
	RecipientPhone *string    `json:"recipient_phone,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Payment struct {
	ID          string          `json:"id"`
	ContractID  string          `json:"contract_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Attachment.FileURL holds the storage path inside the attachments bucket,
// not a public URL.
type Attachment struct {
	ID         string    `json:"id"`
	ContractID string    `json:"contract_id"`
	FileURL    string    `json:"file_url"`
	FileType   string    `json:"file_type"`
	CreatedAt  time.Time `json:"created_at"`
}

type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	UserID    *string   `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditAction string

const (
	ActionCreate AuditAction = "CREATE"
	ActionUpdate AuditAction = "UPDATE"
	ActionDelete AuditAction = "DELETE"
)

type EntityType string

const (
	EntityContract         EntityType = "CONTRACT"
	EntitySupplier         EntityType = "SUPPLIER"
	EntityContractItem     EntityType = "CONTRACT_ITEM"
	EntityDelivery         EntityType = "DELIVERY"
	EntityDeliveryReceipt  EntityType = "DELIVERY_RECEIPT"
	EntityPayment          EntityType = "PAYMENT"
	EntityAttachment       EntityType = "ATTACHMENT"
	EntityContractPurchase EntityType = "CONTRACT_PURCHASE"
	EntityContractExpense  EntityType = "CONTRACT_EXPENSE"
)

type AuditLog struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Action     AuditAction `json:"action"`
	EntityType EntityType  `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	Details    any         `json:"details"`
	CreatedAt  time.Time   `json:"created_at"`
}

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_sign_in_at,omitempty"`
}
