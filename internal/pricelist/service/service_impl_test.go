package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/mesterwork/mesterwork/internal/pricelist/domain"
	"github.com/mesterwork/mesterwork/internal/pricelist/repository"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type priceListFixture struct {
	db   *gorm.DB
	svc  domain.Service
	node *snowflake.Node
}

func setupPriceList(t *testing.T) priceListFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	db.Exec(`CREATE TABLE IF NOT EXISTS price_lists (
		id BIGINT PRIMARY KEY,
		tenant_email TEXT NOT NULL DEFAULT '',
		task TEXT NOT NULL,
		category TEXT,
		technology TEXT,
		unit TEXT,
		labor_cost REAL NOT NULL DEFAULT 0,
		material_cost REAL NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_price_lists_task ON price_lists(tenant_email, task)")

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return priceListFixture{db: db, svc: svc, node: node}
}

func tenantPriceCtx() context.Context {
	return tenantctx.WithTenant(context.Background(), tenantctx.Tenant{Email: "boss@example.com"})
}

func superUserCtx() context.Context {
	return tenantctx.WithTenant(context.Background(), tenantctx.Tenant{Email: "admin@example.com", SuperUser: true})
}

func (f priceListFixture) seedGlobal(t *testing.T, task string, labor, material float64) domain.PriceList {
	t.Helper()
	price := domain.PriceList{
		ID:           f.node.Generate(),
		TenantEmail:  "",
		Task:         task,
		LaborCost:    labor,
		MaterialCost: material,
	}
	require.NoError(t, f.db.Create(&price).Error)
	return price
}

func TestUpsertTenantCreatesThenUpdatesByTask(t *testing.T) {
	f := setupPriceList(t)
	ctx := tenantPriceCtx()

	created, err := f.svc.UpsertTenant(ctx, domain.UpsertPriceRequest{
		Task:      "Falazás",
		LaborCost: 4000,
	})
	require.NoError(t, err)
	assert.Equal(t, 4000.0, created.LaborCost)

	// Same task upserts in place instead of adding a second row.
	updated, err := f.svc.UpsertTenant(ctx, domain.UpsertPriceRequest{
		Task:         "Falazás",
		LaborCost:    4500,
		MaterialCost: 900,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 4500.0, updated.LaborCost)
	assert.Equal(t, 900.0, updated.MaterialCost)

	rows, err := f.svc.ListTenant(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = f.svc.UpsertTenant(ctx, domain.UpsertPriceRequest{Task: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidTask)
}

func TestLookupPrefersTenantOverGlobal(t *testing.T) {
	f := setupPriceList(t)
	ctx := tenantPriceCtx()

	f.seedGlobal(t, "Falazás", 3000, 600)
	_, err := f.svc.UpsertTenant(ctx, domain.UpsertPriceRequest{
		Task:         "Falazás",
		LaborCost:    4200,
		MaterialCost: 800,
	})
	require.NoError(t, err)

	price, err := f.svc.Lookup(ctx, "Falazás")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 4200.0, price.LaborCost)
	assert.Equal(t, "boss@example.com", price.TenantEmail)
}

func TestLookupFallsBackToGlobal(t *testing.T) {
	f := setupPriceList(t)
	ctx := tenantPriceCtx()

	f.seedGlobal(t, "Vakolás", 2500, 400)

	price, err := f.svc.Lookup(ctx, "Vakolás")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 2500.0, price.LaborCost)
	assert.Equal(t, "", price.TenantEmail)

	// Blank or unknown tasks resolve to nothing, not an error.
	price, err = f.svc.Lookup(ctx, "  ")
	require.NoError(t, err)
	assert.Nil(t, price)

	price, err = f.svc.Lookup(ctx, "Ismeretlen tétel")
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestUpdateGlobalRequiresSuperUser(t *testing.T) {
	f := setupPriceList(t)
	global := f.seedGlobal(t, "Burkolás", 5000, 1500)

	newLabor := 5500.0
	_, err := f.svc.UpdateGlobal(tenantPriceCtx(), global.ID, domain.UpdatePriceRequest{LaborCost: &newLabor})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := f.svc.UpdateGlobal(superUserCtx(), global.ID, domain.UpdatePriceRequest{LaborCost: &newLabor})
	require.NoError(t, err)
	assert.Equal(t, 5500.0, updated.LaborCost)

	rows, err := f.svc.ListGlobal(superUserCtx())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 5500.0, rows[0].LaborCost)
}

func TestDeleteTenantPrice(t *testing.T) {
	f := setupPriceList(t)
	ctx := tenantPriceCtx()

	created, err := f.svc.UpsertTenant(ctx, domain.UpsertPriceRequest{Task: "Festés", LaborCost: 1800})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTenant(ctx, created.ID))
	assert.ErrorIs(t, f.svc.DeleteTenant(ctx, created.ID), domain.ErrNotFound)

	// A tenant cannot delete catalog rows through the tenant endpoint.
	global := f.seedGlobal(t, "Bontás", 2000, 0)
	assert.ErrorIs(t, f.svc.DeleteTenant(ctx, global.ID), domain.ErrNotFound)
}
