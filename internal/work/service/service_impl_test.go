package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	pricelistdomain "github.com/mesterwork/mesterwork/internal/pricelist/domain"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
	"github.com/mesterwork/mesterwork/internal/work/domain"
	"github.com/mesterwork/mesterwork/internal/work/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type priceListStub struct {
	entry *pricelistdomain.PriceList
}

func (p *priceListStub) ListGlobal(ctx context.Context) ([]pricelistdomain.PriceList, error) {
	return nil, nil
}

func (p *priceListStub) ListTenant(ctx context.Context) ([]pricelistdomain.PriceList, error) {
	return nil, nil
}

func (p *priceListStub) UpsertTenant(ctx context.Context, req pricelistdomain.UpsertPriceRequest) (pricelistdomain.PriceList, error) {
	return pricelistdomain.PriceList{}, nil
}

func (p *priceListStub) UpdateTenant(ctx context.Context, id snowflake.ID, req pricelistdomain.UpdatePriceRequest) (pricelistdomain.PriceList, error) {
	return pricelistdomain.PriceList{}, nil
}

func (p *priceListStub) DeleteTenant(ctx context.Context, id snowflake.ID) error {
	return nil
}

func (p *priceListStub) UpdateGlobal(ctx context.Context, id snowflake.ID, req pricelistdomain.UpdatePriceRequest) (pricelistdomain.PriceList, error) {
	return pricelistdomain.PriceList{}, nil
}

func (p *priceListStub) Lookup(ctx context.Context, task string) (*pricelistdomain.PriceList, error) {
	return p.entry, nil
}

func setupWorkService(t *testing.T, prices *priceListStub) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	db.Exec(`CREATE TABLE IF NOT EXISTS works (
		id BIGINT PRIMARY KEY,
		tenant_email TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		location TEXT NOT NULL DEFAULT '',
		start_date TIMESTAMP,
		end_date TIMESTAMP,
		total_labor_cost REAL NOT NULL DEFAULT 0,
		total_material_cost REAL NOT NULL DEFAULT 0,
		total_workers INTEGER NOT NULL DEFAULT 0,
		total_tools INTEGER NOT NULL DEFAULT 0,
		max_required_workers INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	db.Exec(`CREATE TABLE IF NOT EXISTS work_items (
		id BIGINT PRIMARY KEY,
		work_id BIGINT NOT NULL,
		tenant_email TEXT NOT NULL,
		name TEXT NOT NULL,
		quantity REAL NOT NULL DEFAULT 0,
		unit TEXT NOT NULL DEFAULT '',
		unit_price REAL NOT NULL DEFAULT 0,
		material_unit_price REAL NOT NULL DEFAULT 0,
		work_total REAL NOT NULL DEFAULT 0,
		material_total REAL NOT NULL DEFAULT 0,
		total_price REAL NOT NULL DEFAULT 0,
		completed_quantity REAL NOT NULL DEFAULT 0,
		billed_quantity REAL NOT NULL DEFAULT 0,
		paid_quantity REAL NOT NULL DEFAULT 0,
		in_progress BOOLEAN NOT NULL DEFAULT FALSE,
		description TEXT NOT NULL DEFAULT '',
		required_professionals TEXT,
		current_market_price TEXT,
		last_price_check TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         repository.Provide(),
		PriceListSvc: prices,
	})
}

func testCtx() context.Context {
	return tenantctx.WithTenant(context.Background(), tenantctx.Tenant{Email: "boss@example.com"})
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateItemRecalculatesTotals(t *testing.T) {
	svc := setupWorkService(t, &priceListStub{})
	ctx := testCtx()

	work, err := svc.Create(ctx, domain.CreateWorkRequest{Title: "Tetőfelújítás"})
	require.NoError(t, err)

	item, err := svc.CreateItem(ctx, domain.CreateWorkItemRequest{
		WorkID:            work.ID,
		Name:              "Cserepezés",
		Quantity:          12,
		Unit:              "m2",
		UnitPrice:         floatPtr(100),
		MaterialUnitPrice: floatPtr(200),
	})
	require.NoError(t, err)

	assert.Equal(t, 1200.0, item.WorkTotal)
	assert.Equal(t, 2400.0, item.MaterialTotal)
	assert.Equal(t, 3600.0, item.TotalPrice)

	// Work level totals follow the item.
	updated, err := svc.GetByID(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, updated.TotalLaborCost)
	assert.Equal(t, 2400.0, updated.TotalMaterialCost)
}

func TestCreateItemFallsBackToPriceList(t *testing.T) {
	svc := setupWorkService(t, &priceListStub{
		entry: &pricelistdomain.PriceList{
			Task:         "Festés",
			LaborCost:    1500,
			MaterialCost: 800,
		},
	})
	ctx := testCtx()

	work, err := svc.Create(ctx, domain.CreateWorkRequest{Title: "Lakásfelújítás"})
	require.NoError(t, err)

	item, err := svc.CreateItem(ctx, domain.CreateWorkItemRequest{
		WorkID:   work.ID,
		Name:     "Festés",
		Quantity: 10,
		Unit:     "m2",
	})
	require.NoError(t, err)

	assert.Equal(t, 1500.0, item.UnitPrice)
	assert.Equal(t, 800.0, item.MaterialUnitPrice)
	assert.Equal(t, 23000.0, item.TotalPrice)
}

func TestCreateItemExplicitPriceWinsOverCatalog(t *testing.T) {
	svc := setupWorkService(t, &priceListStub{
		entry: &pricelistdomain.PriceList{Task: "Festés", LaborCost: 1500, MaterialCost: 800},
	})
	ctx := testCtx()

	work, err := svc.Create(ctx, domain.CreateWorkRequest{Title: "Lakásfelújítás"})
	require.NoError(t, err)

	item, err := svc.CreateItem(ctx, domain.CreateWorkItemRequest{
		WorkID:    work.ID,
		Name:      "Festés",
		Quantity:  10,
		UnitPrice: floatPtr(2000),
	})
	require.NoError(t, err)

	assert.Equal(t, 2000.0, item.UnitPrice)
	// Only the missing side comes from the catalog.
	assert.Equal(t, 800.0, item.MaterialUnitPrice)
}

func TestUpdateItemCompletionRejectsNegative(t *testing.T) {
	svc := setupWorkService(t, &priceListStub{})
	ctx := testCtx()

	work, err := svc.Create(ctx, domain.CreateWorkRequest{Title: "Munka"})
	require.NoError(t, err)
	item, err := svc.CreateItem(ctx, domain.CreateWorkItemRequest{WorkID: work.ID, Name: "Bontás", Quantity: 5})
	require.NoError(t, err)

	_, err = svc.UpdateItemCompletion(ctx, item.ID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	updated, err := svc.UpdateItemCompletion(ctx, item.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.CompletedQuantity)
}

func TestTenantScoping(t *testing.T) {
	svc := setupWorkService(t, &priceListStub{})

	work, err := svc.Create(testCtx(), domain.CreateWorkRequest{Title: "Saját munka"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), domain.CreateWorkRequest{Title: "Nincs bérlő"})
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)

	otherCtx := tenantctx.WithTenant(context.Background(), tenantctx.Tenant{Email: "other@example.com"})
	_, err = svc.GetByID(otherCtx, work.ID)
	assert.ErrorIs(t, err, domain.ErrWorkNotFound)
}

func TestArchiveWorkKeepsRow(t *testing.T) {
	svc := setupWorkService(t, &priceListStub{})
	ctx := testCtx()

	work, err := svc.Create(ctx, domain.CreateWorkRequest{Title: "Régi munka"})
	require.NoError(t, err)
	require.NoError(t, svc.Archive(ctx, work.ID))

	archived, err := svc.GetByID(ctx, work.ID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive)
	assert.Equal(t, domain.WorkStatusCancelled, archived.Status)
}
