package gateway

const (
	TableContracts         = "contracts"
	TableContractItems     = "contract_items"
	TableContractPurchases = "contract_purchases"
	TableContractExpenses  = "contract_expenses"
	TableDeliveries        = "deliveries"
	TableDeliveryReceipts  = "delivery_receipts"
	TablePayments          = "payments"
	TableAttachments       = "attachments"
	TableSuppliers         = "suppliers"
	TableAuditLogs         = "audit_logs"
	TableUsers             = "users"
	TableAuthSessions      = "auth_sessions"
)

// Schema lists the columns the gateway accepts per table. Identifiers outside
// this list are rejected before any SQL is built.
var Schema = map[string][]string{
	TableContracts: {
		"id", "contract_number", "governorate", "branch", "contract_date",
		"currency", "status", "notes", "user_id", "created_at",
	},
	TableContractItems: {
		"id", "contract_id", "item_name", "quantity", "sale_price", "purchase_price", "created_at",
	},
	TableContractPurchases: {
		"id", "contract_id", "item_name", "quantity", "purchase_price", "supplier_id",
		"purchase_date", "invoice_number", "notes", "created_at",
	},
	TableContractExpenses: {
		"id", "contract_id", "expense_type", "amount", "expense_date", "notes", "created_at",
	},
	TableDeliveries: {
		"id", "contract_item_id", "quantity_delivered", "delivery_date", "notes", "created_at",
	},
	TableDeliveryReceipts: {
		"id", "contract_id", "receipt_number", "delivery_date", "recipient_name",
		"recipient_phone", "notes", "created_at",
	},
	TablePayments: {
		"id", "contract_id", "amount", "payment_date", "notes", "created_at",
	},
	TableAttachments: {
		"id", "contract_id", "file_url", "file_type", "created_at",
	},
	TableSuppliers: {
		"id", "name", "phone", "notes", "user_id", "created_at",
	},
	TableAuditLogs: {
		"id", "user_id", "action", "entity_type", "entity_id", "details", "created_at",
	},
	TableUsers: {
		"id", "email", "password_hash", "last_sign_in_at", "created_at",
	},
	TableAuthSessions: {
		"id", "user_id", "expires_at", "revoked_at", "created_at",
	},
}

func hasColumn(table, column string) bool {
	for _, c := range Schema[table] {
		if c == column {
			return true
		}
	}
	return false
}
