package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"contracting/internal/repository"
)

func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListPurchases(r.Context(), id)
	writeList(w, r, items, err)
}

type createPurchaseRequest struct {
	ItemName      string          `json:"item_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SupplierID    *string         `json:"supplier_id"`
	PurchaseDate  *string         `json:"purchase_date"`
	InvoiceNumber *string         `json:"invoice_number"`
	Notes         *string         `json:"notes"`
}

func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req createPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	purchaseDate, err := parseOptionalTime(req.PurchaseDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreatePurchase(r.Context(), repository.PurchaseCreateInput{
		ContractID:    id,
		ItemName:      req.ItemName,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		SupplierID:    req.SupplierID,
		PurchaseDate:  purchaseDate,
		InvoiceNumber: req.InvoiceNumber,
		Notes:         req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type patchPurchaseRequest struct {
	ItemName      *string          `json:"item_name"`
	Quantity      *decimal.Decimal `json:"quantity"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SupplierID    *string          `json:"supplier_id"`
	PurchaseDate  *string          `json:"purchase_date"`
	InvoiceNumber *string          `json:"invoice_number"`
	Notes         *string          `json:"notes"`
}

func (h *Handler) PatchPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req patchPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	purchaseDate, err := parseOptionalTime(req.PurchaseDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.PatchPurchase(r.Context(), id, repository.PurchasePatchInput{
		ItemName:      req.ItemName,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		SupplierID:    req.SupplierID,
		PurchaseDate:  purchaseDate,
		InvoiceNumber: req.InvoiceNumber,
		Notes:         req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.svc.DeletePurchase)
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListExpenses(r.Context(), id)
	writeList(w, r, items, err)
}

type createExpenseRequest struct {
	ExpenseType string          `json:"expense_type"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate *string         `json:"expense_date"`
	Notes       *string         `json:"notes"`
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expenseDate, err := parseOptionalTime(req.ExpenseDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateExpense(r.Context(), repository.ExpenseCreateInput{
		ContractID:  id,
		ExpenseType: req.ExpenseType,
		Amount:      req.Amount,
		ExpenseDate: expenseDate,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type patchExpenseRequest struct {
	ExpenseType *string          `json:"expense_type"`
	Amount      *decimal.Decimal `json:"amount"`
	ExpenseDate *string          `json:"expense_date"`
	Notes       *string          `json:"notes"`
}

func (h *Handler) PatchExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req patchExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expenseDate, err := parseOptionalTime(req.ExpenseDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.PatchExpense(r.Context(), id, repository.ExpensePatchInput{
		ExpenseType: req.ExpenseType,
		Amount:      req.Amount,
		ExpenseDate: expenseDate,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.svc.DeleteExpense)
}

// ListDeliveries returns the contract's deliveries together with the
// per-item progress table.
func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	overview, err := h.svc.ListDeliveries(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

type createDeliveryRequest struct {
	QuantityDelivered decimal.Decimal `json:"quantity_delivered"`
	DeliveryDate      *string         `json:"delivery_date"`
	Notes             *string         `json:"notes"`
}

func (h *Handler) CreateDelivery(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req createDeliveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	deliveryDate, err := parseOptionalTime(req.DeliveryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateDelivery(r.Context(), repository.DeliveryCreateInput{
		ContractItemID:    itemID,
		QuantityDelivered: req.QuantityDelivered,
		DeliveryDate:      deliveryDate,
		Notes:             req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type patchDeliveryRequest struct {
	QuantityDelivered *decimal.Decimal `json:"quantity_delivered"`
	DeliveryDate      *string          `json:"delivery_date"`
	Notes             *string          `json:"notes"`
}

func (h *Handler) PatchDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req patchDeliveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	deliveryDate, err := parseOptionalTime(req.DeliveryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.PatchDelivery(r.Context(), id, repository.DeliveryPatchInput{
		QuantityDelivered: req.QuantityDelivered,
		DeliveryDate:      deliveryDate,
		Notes:             req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteDelivery(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.svc.DeleteDelivery)
}

func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListReceipts(r.Context(), id)
	writeList(w, r, items, err)
}

type createReceiptRequest struct {
	ReceiptNumber  string  `json:"receipt_number"`
	DeliveryDate   *string `json:"delivery_date"`
	RecipientName  string  `json:"recipient_name"`
	RecipientPhone *string `json:"recipient_phone"`
	Notes          *string `json:"notes"`
}

func (h *Handler) CreateReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req createReceiptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	deliveryDate, err := parseOptionalTime(req.DeliveryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateReceipt(r.Context(), repository.ReceiptCreateInput{
		ContractID:     id,
		ReceiptNumber:  req.ReceiptNumber,
		DeliveryDate:   deliveryDate,
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
		Notes:          req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type patchReceiptRequest struct {
	ReceiptNumber  *string `json:"receipt_number"`
	DeliveryDate   *string `json:"delivery_date"`
	RecipientName  *string `json:"recipient_name"`
	RecipientPhone *string `json:"recipient_phone"`
	Notes          *string `json:"notes"`
}

func (h *Handler) PatchReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req patchReceiptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	deliveryDate, err := parseOptionalTime(req.DeliveryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.PatchReceipt(r.Context(), id, repository.ReceiptPatchInput{
		ReceiptNumber:  req.ReceiptNumber,
		DeliveryDate:   deliveryDate,
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
		Notes:          req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteReceipt(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.svc.DeleteReceipt)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	overview, err := h.svc.ListPayments(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

type createPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *string         `json:"payment_date"`
	Notes       *string         `json:"notes"`
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req createPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	paymentDate, err := parseOptionalTime(req.PaymentDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreatePayment(r.Context(), repository.PaymentCreateInput{
		ContractID:  id,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type patchPaymentRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	PaymentDate *string          `json:"payment_date"`
	Notes       *string          `json:"notes"`
}

func (h *Handler) PatchPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req patchPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	paymentDate, err := parseOptionalTime(req.PaymentDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.PatchPayment(r.Context(), id, repository.PaymentPatchInput{
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.svc.DeletePayment)
}

func (h *Handler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListAttachments(r.Context(), id)
	writeList(w, r, items, err)
}

func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	created, err := h.svc.UploadAttachment(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) AttachmentURL(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	url, err := h.svc.AttachmentURL(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"url": url})
}

func (h *Handler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.svc.DeleteAttachment)
}
