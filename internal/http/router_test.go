package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contracting/internal/auth"
	"contracting/internal/blob"
	"contracting/internal/gateway"
	"contracting/internal/repository"
	"contracting/internal/service"
)

type testServer struct {
	gw     *gateway.Memory
	router http.Handler
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gw := gateway.NewMemory()
	provider := auth.NewProvider(gw, "test-secret", time.Hour)
	_, err := provider.CreateUser(context.Background(), "admin@example.com", "s3cret-pass")
	require.NoError(t, err)

	svc := service.New(repository.New(gw),
		service.WithBlobStore(blob.NewMemory("attachments"), "attachments", time.Hour),
	)
	ts := &testServer{gw: gw, router: NewRouter(NewHandler(svc, provider), provider)}

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/sign-in", map[string]any{
		"email": "admin@example.com", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.AccessToken)
	ts.token = session.AccessToken
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer(t)
	ts.token = ""
	rec := ts.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutesRequireSession(t *testing.T) {
	ts := newTestServer(t)
	ts.token = ""
	rec := ts.do(t, http.MethodGet, "/api/v1/contracts", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ts.token = "not-a-token"
	rec = ts.do(t, http.MethodGet, "/api/v1/contracts", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignInWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/auth/sign-in", map[string]any{
		"email": "admin@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignOutRevokesToken(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/auth/sign-out", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContractLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/contracts", map[string]any{
		"contract_number": "C-100",
		"governorate":     "Riyadh",
		"contract_date":   "2024-03-05",
		"currency":        "usd",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	id := created["id"].(string)
	assert.Equal(t, "USD", created["currency"])
	assert.Equal(t, "new", created["status"])

	rec = ts.do(t, http.MethodPost, "/api/v1/contracts/"+id+"/items", map[string]any{
		"item_name": "Cement", "quantity": "10", "sale_price": "100", "purchase_price": "60",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/v1/contracts/"+id+"/payments", map[string]any{"amount": "400"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/v1/contracts/"+id+"/payments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payments := decodeBody(t, rec)
	assert.Equal(t, "1000", payments["contract_value"])
	assert.Equal(t, "600", payments["remaining"])

	rec = ts.do(t, http.MethodPatch, "/api/v1/contracts/"+id, map[string]any{"status": "in_progress"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "in_progress", decodeBody(t, rec)["status"])

	rec = ts.do(t, http.MethodGet, "/api/v1/contracts?search=c-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["count"])

	rec = ts.do(t, http.MethodDelete, "/api/v1/contracts/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/contracts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/contracts", map[string]any{"contract_number": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/contracts", map[string]any{"contract_number": "C-1", "unknown": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/contracts", map[string]any{"contract_number": "C-1", "contract_date": "yesterday"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/contracts/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnprovisionedTable(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/contracts", map[string]any{"contract_number": "C-1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["id"].(string)

	ts.gw.Drop(gateway.TableContractExpenses)

	rec = ts.do(t, http.MethodGet, "/api/v1/contracts/"+id+"/expenses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["provisioned"])
	assert.Equal(t, gateway.TableContractExpenses, body["table"])
	assert.EqualValues(t, 0, body["count"])

	rec = ts.do(t, http.MethodPost, "/api/v1/contracts/"+id+"/expenses", map[string]any{
		"expense_type": "transport", "amount": "50",
	})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_provisioned", decodeBody(t, rec)["code"])
}

func TestImportItemsFromCSV(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/contracts", map[string]any{"contract_number": "C-1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["id"].(string)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "items.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("item_name,quantity,sale_price,purchase_price\nCement,10,100,60\nSteel,2,12.5,\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/"+id+"/items/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ts.token)
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, decodeBody(t, rec)["count"])

	rec = ts.do(t, http.MethodGet, "/api/v1/contracts/"+id+"/items", nil)
	assert.EqualValues(t, 2, decodeBody(t, rec)["count"])
}

func TestExportReportCSV(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/contracts", map[string]any{"contract_number": "C-1", "currency": "SAR"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/reports/profit/export?currency=SAR&format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "profit-SAR.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\ufeff"))

	rec = ts.do(t, http.MethodGet, "/api/v1/reports/weekly/export", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/reports/profit/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrintContractHTML(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/v1/contracts", map[string]any{"contract_number": "C-77"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["id"].(string)

	rec = ts.do(t, http.MethodGet, "/api/v1/contracts/"+id+"/print", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "C-77")

	rec = ts.do(t, http.MethodGet, "/api/v1/contracts/"+id+"/print?format=pdf", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
