package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"contracting/internal/domain"
	"contracting/internal/excel"
	"contracting/internal/repository"
	"contracting/internal/service"
)

const maxUploadBytes = 32 << 20

func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListContracts(r.Context(), repository.ContractListFilter{
		Search:   query.Get("search"),
		Status:   strings.TrimSpace(query.Get("status")),
		Currency: strings.ToUpper(strings.TrimSpace(query.Get("currency"))),
		Limit:    limit,
	})
	writeList(w, r, items, err)
}

func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	contract, err := h.svc.GetContract(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract)
}

type createContractRequest struct {
	ContractNumber string  `json:"contract_number"`
	Governorate    string  `json:"governorate"`
	Branch         string  `json:"branch"`
	ContractDate   *string `json:"contract_date"`
	Currency       string  `json:"currency"`
	Status         string  `json:"status"`
	Notes          *string `json:"notes"`
}

func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req createContractRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	contractDate, err := parseOptionalTime(req.ContractDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateContract(r.Context(), repository.ContractCreateInput{
		ContractNumber: req.ContractNumber,
		Governorate:    strings.TrimSpace(req.Governorate),
		Branch:         strings.TrimSpace(req.Branch),
		ContractDate:   contractDate,
		Currency:       req.Currency,
		Status:         domain.ContractStatus(strings.TrimSpace(req.Status)),
		Notes:          req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type patchContractRequest struct {
	ContractNumber *string `json:"contract_number"`
	Governorate    *string `json:"governorate"`
	Branch         *string `json:"branch"`
	ContractDate   *string `json:"contract_date"`
	Currency       *string `json:"currency"`
	Status         *string `json:"status"`
	Notes          *string `json:"notes"`
}

func (h *Handler) PatchContract(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req patchContractRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	contractDate, err := parseOptionalTime(req.ContractDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	input := service.ContractPatch{
		ContractPatchInput: repository.ContractPatchInput{
			ContractNumber: req.ContractNumber,
			Governorate:    req.Governorate,
			Branch:         req.Branch,
			ContractDate:   contractDate,
			Notes:          req.Notes,
		},
		Currency: req.Currency,
	}
	if req.Status != nil {
		status := domain.ContractStatus(strings.TrimSpace(*req.Status))
		input.Status = &status
	}
	updated, err := h.svc.PatchContract(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.svc.DeleteContract)
}

func (h *Handler) ContractSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := h.svc.ContractSummary(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) PrintContract(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	format := service.PrintFormat(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))))
	body, contentType, err := h.svc.PrintContract(r.Context(), id, format)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	if format == service.PrintPDF {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "contract-"+id+".pdf"))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) ListContractItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListContractItems(r.Context(), id)
	writeList(w, r, items, err)
}

type createItemRequest struct {
	ItemName      string          `json:"item_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

func (h *Handler) CreateContractItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateContractItem(r.Context(), repository.ContractItemCreateInput{
		ContractID:    id,
		ItemName:      req.ItemName,
		Quantity:      req.Quantity,
		SalePrice:     req.SalePrice,
		PurchasePrice: req.PurchasePrice,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type patchItemRequest struct {
	ItemName      *string          `json:"item_name"`
	Quantity      *decimal.Decimal `json:"quantity"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
}

func (h *Handler) PatchContractItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req patchItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.PatchContractItem(r.Context(), id, repository.ContractItemPatchInput{
		ItemName:      req.ItemName,
		Quantity:      req.Quantity,
		SalePrice:     req.SalePrice,
		PurchasePrice: req.PurchasePrice,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteContractItem(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.svc.DeleteContractItem)
}

func (h *Handler) ImportContractItems(w http.ResponseWriter, r *http.Request) {
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

	rows, err := excel.ParseContractItems(header.Filename, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.ImportContractItems(r.Context(), id, rows)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"items": created, "count": len(created)})
}
