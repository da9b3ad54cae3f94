package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"contracting/internal/excel"
	"contracting/internal/repository"
	"contracting/internal/service"
)

func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListSuppliers(r.Context(), r.URL.Query().Get("search"))
	writeList(w, r, items, err)
}

func (h *Handler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	supplier, err := h.svc.GetSupplier(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, supplier)
}

type createSupplierRequest struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req createSupplierRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateSupplier(r.Context(), repository.SupplierCreateInput{
		Name:  req.Name,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type patchSupplierRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

func (h *Handler) PatchSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req patchSupplierRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.PatchSupplier(r.Context(), id, repository.SupplierPatchInput{
		Name:  req.Name,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.svc.DeleteSupplier)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) ReportCurrencies(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ReportCurrencies(r.Context())
	writeList(w, r, items, err)
}

func (h *Handler) ProfitReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ProfitReport(r.Context(), r.URL.Query().Get("currency"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GovernorateReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GovernorateReport(r.Context(), r.URL.Query().Get("currency"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) BalancesReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.BalancesReport(r.Context(), r.URL.Query().Get("currency"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ExportReport streams /reports/{kind}/export?currency=&format=xlsx|csv.
// The file is built in memory so a failure still yields a JSON error.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	kind, err := service.ParseReportKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	query := r.URL.Query()
	format, err := excel.ParseFormat(strings.ToLower(strings.TrimSpace(query.Get("format"))))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(query.Get("currency")))

	var buf bytes.Buffer
	if err := h.svc.ExportReport(r.Context(), &buf, kind, currency, format); err != nil {
		writeServiceError(w, r, err)
		return
	}
	name := string(kind)
	if currency != "" {
		name += "-" + currency
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+string(format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
