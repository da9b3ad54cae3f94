package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"contracting/internal/auth"
	"contracting/internal/blob"
	"contracting/internal/gateway"
	"contracting/internal/repository"
	"contracting/internal/service"
)

type Handler struct {
	svc  *service.Service
	auth *auth.Provider
}

func NewHandler(svc *service.Service, provider *auth.Provider) *Handler {
	return &Handler{svc: svc, auth: provider}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) Meta(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Meta())
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"), 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.ListAuditLogs(r.Context(), repository.AuditLogFilter{
		EntityType: query.Get("entity_type"),
		Search:     query.Get("search"),
		Limit:      limit,
	})
	writeList(w, r, items, err)
}

// writeList answers list endpoints. A table that does not exist yet is not an
// error for a list: the response is empty with "provisioned": false.
func writeList[T any](w http.ResponseWriter, r *http.Request, items []T, err error) {
	if err != nil {
		if table := gateway.NotProvisionedTable(err); table != "" {
			writeJSON(w, http.StatusOK, map[string]any{
				"items":       []T{},
				"count":       0,
				"provisioned": false,
				"table":       table,
			})
			return
		}
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items), "provisioned": true})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var partial *service.PartialImportError
	switch {
	case errors.As(err, &partial):
		log.Error().Err(err).Strs("item_ids", partial.ItemIDs).Msg("import left items behind")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":    err.Error(),
			"code":     "partial_import",
			"item_ids": partial.ItemIDs,
		})
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrUserExists):
		writeError(w, http.StatusConflict, err.Error())
	case gateway.IsNotProvisioned(err):
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": "this feature is not set up yet: table " + gateway.NotProvisionedTable(err) + " is missing",
			"code":  "not_provisioned",
			"table": gateway.NotProvisionedTable(err),
		})
	case errors.Is(err, blob.ErrBucketNotFound):
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": "the attachments bucket does not exist; create it in the storage console",
			"code":  "bucket_not_found",
		})
	case errors.Is(err, blob.ErrObjectNotFound):
		writeError(w, http.StatusNotFound, "file not found in storage")
	case errors.Is(err, service.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": err.Error(),
			"code":  "unavailable",
		})
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) deleteByID(w http.ResponseWriter, r *http.Request, remove func(ctx context.Context, id string) error) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := remove(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseOptionalInt(raw string, defaultValue int) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %s", raw)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("value cannot be negative")
	}
	return parsed, nil
}

// parseOptionalTime accepts RFC 3339 or a plain date. nil and "" mean unset.
func parseOptionalTime(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("invalid date: %s", value)
}

func pathID(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %s", name)
	}
	return id.String(), nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
