package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contracting/internal/domain"
	"contracting/internal/gateway"
)

func newRepo(t *testing.T, tables ...string) (*Repository, *gateway.Memory) {
	t.Helper()
	gw := gateway.NewMemory(tables...)
	return New(gw), gw
}

func TestContractRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	date := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	notes := "first batch"

	created, err := repo.CreateContract(ctx, ContractCreateInput{
		ContractNumber: "C-1",
		Governorate:    "Riyadh",
		Branch:         "North",
		ContractDate:   &date,
		Currency:       "USD",
		Status:         domain.StatusNew,
		Notes:          &notes,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "USD", created.Currency)
	require.NotNil(t, created.ContractDate)
	assert.True(t, date.Equal(*created.ContractDate))
	assert.Nil(t, created.UserID)

	status := domain.StatusInProgress
	patched, err := repo.PatchContract(ctx, created.ID, ContractPatchInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, patched.Status)
	assert.Equal(t, "C-1", patched.ContractNumber)

	list, err := repo.ListContracts(ctx, ContractListFilter{Search: "north"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = repo.ListContracts(ctx, ContractListFilter{Currency: "SAR"})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, repo.DeleteContract(ctx, created.ID))
	_, err = repo.GetContract(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteContract(ctx, created.ID), ErrNotFound)
}

func TestMissingCurrencyDecodesAsDefault(t *testing.T) {
	c := decodeContract(gateway.Row{"id": "x"})
	assert.Equal(t, domain.DefaultCurrency, c.Currency)
}

func TestListChildrenByParent(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	for _, contractID := range []string{"c1", "c1", "c2"} {
		_, err := repo.CreatePayment(ctx, PaymentCreateInput{ContractID: contractID, Amount: decimal.NewFromInt(10)})
		require.NoError(t, err)
	}

	one, err := repo.ListPayments(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, one, 2)

	both, err := repo.ListPayments(ctx, "c1", "c2")
	require.NoError(t, err)
	assert.Len(t, both, 3)

	all, err := repo.ListPayments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestItemAndDeliveryDecimals(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	item, err := repo.CreateContractItem(ctx, ContractItemCreateInput{
		ContractID:    "c1",
		ItemName:      "Cable",
		Quantity:      decimal.RequireFromString("12.5"),
		SalePrice:     decimal.RequireFromString("4.2"),
		PurchasePrice: decimal.RequireFromString("3"),
	})
	require.NoError(t, err)

	qty := decimal.RequireFromString("13")
	patched, err := repo.PatchContractItem(ctx, item.ID, ContractItemPatchInput{Quantity: &qty})
	require.NoError(t, err)
	assert.True(t, patched.Quantity.Equal(qty))
	assert.True(t, patched.SalePrice.Equal(decimal.RequireFromString("4.2")))

	_, err = repo.CreateDelivery(ctx, DeliveryCreateInput{ContractItemID: item.ID, QuantityDelivered: decimal.NewFromInt(5)})
	require.NoError(t, err)
	deliveries, err := repo.ListDeliveries(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.True(t, deliveries[0].QuantityDelivered.Equal(decimal.NewFromInt(5)))
}

func TestPurchaseSupplierCanBeCleared(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	supplierID := "s1"

	p, err := repo.CreatePurchase(ctx, PurchaseCreateInput{ContractID: "c1", ItemName: "Pipe", SupplierID: &supplierID})
	require.NoError(t, err)
	require.NotNil(t, p.SupplierID)

	empty := ""
	patched, err := repo.PatchPurchase(ctx, p.ID, PurchasePatchInput{SupplierID: &empty})
	require.NoError(t, err)
	assert.Nil(t, patched.SupplierID)
}

func TestNotProvisionedTableSurfaces(t *testing.T) {
	repo, _ := newRepo(t, gateway.TableContracts)

	_, err := repo.ListExpenses(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, gateway.IsNotProvisioned(err))
}

func TestListAuditLogs(t *testing.T) {
	ctx := context.Background()
	repo, gw := newRepo(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	entries := []gateway.Row{
		{"user_id": "u", "action": "CREATE", "entity_type": "CONTRACT", "entity_id": "1", "created_at": base},
		{"user_id": "u", "action": "DELETE", "entity_type": "PAYMENT", "entity_id": "2", "created_at": base.Add(time.Hour)},
		{"user_id": "u", "action": "UPDATE", "entity_type": "CONTRACT", "entity_id": "1", "created_at": base.Add(2 * time.Hour)},
	}
	for _, e := range entries {
		_, err := gw.Insert(ctx, gateway.TableAuditLogs, e)
		require.NoError(t, err)
	}

	all, err := repo.ListAuditLogs(ctx, AuditLogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.ActionUpdate, all[0].Action)

	contracts, err := repo.ListAuditLogs(ctx, AuditLogFilter{EntityType: "contract"})
	require.NoError(t, err)
	assert.Len(t, contracts, 2)

	deletes, err := repo.ListAuditLogs(ctx, AuditLogFilter{Search: "del"})
	require.NoError(t, err)
	require.Len(t, deletes, 1)
	assert.Equal(t, domain.EntityPayment, deletes[0].EntityType)
	assert.Nil(t, deletes[0].Details)
}
