package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/mesterwork/mesterwork/internal/clock"
	"github.com/mesterwork/mesterwork/internal/diary/domain"
	"github.com/mesterwork/mesterwork/internal/diary/repository"
	pricelistdomain "github.com/mesterwork/mesterwork/internal/pricelist/domain"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
	workdomain "github.com/mesterwork/mesterwork/internal/work/domain"
	workrepo "github.com/mesterwork/mesterwork/internal/work/repository"
	workservice "github.com/mesterwork/mesterwork/internal/work/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubPrices struct{}

func (stubPrices) ListGlobal(ctx context.Context) ([]pricelistdomain.PriceList, error) {
	return nil, nil
}
func (stubPrices) ListTenant(ctx context.Context) ([]pricelistdomain.PriceList, error) {
	return nil, nil
}
func (stubPrices) UpsertTenant(ctx context.Context, req pricelistdomain.UpsertPriceRequest) (pricelistdomain.PriceList, error) {
	return pricelistdomain.PriceList{}, nil
}
func (stubPrices) UpdateTenant(ctx context.Context, id snowflake.ID, req pricelistdomain.UpdatePriceRequest) (pricelistdomain.PriceList, error) {
	return pricelistdomain.PriceList{}, nil
}
func (stubPrices) DeleteTenant(ctx context.Context, id snowflake.ID) error { return nil }
func (stubPrices) UpdateGlobal(ctx context.Context, id snowflake.ID, req pricelistdomain.UpdatePriceRequest) (pricelistdomain.PriceList, error) {
	return pricelistdomain.PriceList{}, nil
}
func (stubPrices) Lookup(ctx context.Context, task string) (*pricelistdomain.PriceList, error) {
	return nil, nil
}

type diaryFixture struct {
	svc   domain.Service
	works workdomain.Service
	clk   *clock.FakeClock
}

func setupDiary(t *testing.T) diaryFixture {
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
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
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
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	db.Exec(`CREATE TABLE IF NOT EXISTS work_diaries (
		id BIGINT PRIMARY KEY,
		work_id BIGINT NOT NULL,
		work_item_id BIGINT NOT NULL,
		tenant_email TEXT NOT NULL,
		date TIMESTAMP NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	db.Exec(`CREATE TABLE IF NOT EXISTS work_diary_items (
		id BIGINT PRIMARY KEY,
		diary_id BIGINT NOT NULL,
		work_id BIGINT NOT NULL,
		work_item_id BIGINT NOT NULL,
		worker_id BIGINT,
		workforce_registry_id BIGINT,
		work_item_worker_id BIGINT,
		tenant_email TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		date TIMESTAMP NOT NULL,
		quantity REAL NOT NULL DEFAULT 0,
		unit TEXT NOT NULL DEFAULT '',
		work_hours REAL NOT NULL DEFAULT 0,
		images TEXT,
		notes TEXT NOT NULL DEFAULT '',
		group_no BIGINT NOT NULL DEFAULT 0,
		accepted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()

	works := workservice.New(workservice.Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Repo:         workrepo.Provide(),
		PriceListSvc: stubPrices{},
	})
	clk := clock.NewFakeClock(time.Date(2026, 4, 20, 7, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
		Works: works,
	})
	return diaryFixture{svc: svc, works: works, clk: clk}
}

func diaryCtx() context.Context {
	return tenantctx.WithTenant(context.Background(), tenantctx.Tenant{Email: "boss@example.com"})
}

func seedDiaryWork(t *testing.T, f diaryFixture, ctx context.Context) (workdomain.Work, workdomain.WorkItem, workdomain.WorkItem) {
	t.Helper()

	work, err := f.works.Create(ctx, workdomain.CreateWorkRequest{Title: "Naplózott munka"})
	require.NoError(t, err)
	first, err := f.works.CreateItem(ctx, workdomain.CreateWorkItemRequest{WorkID: work.ID, Name: "Falazás", Quantity: 30, Unit: "m2"})
	require.NoError(t, err)
	second, err := f.works.CreateItem(ctx, workdomain.CreateWorkItemRequest{WorkID: work.ID, Name: "Vakolás", Quantity: 20, Unit: "m2"})
	require.NoError(t, err)
	return work, first, second
}

func TestSubmitGroupDistributesHoursByProgress(t *testing.T) {
	f := setupDiary(t)
	ctx := diaryCtx()
	work, first, second := seedDiaryWork(t, f, ctx)

	// Deltas 6 and 2 on a 8 hour day: the worker's hours split 6:2.
	result, err := f.svc.SubmitGroup(ctx, domain.SubmitGroupRequest{
		WorkID: work.ID,
		Items: []domain.GroupItemInput{
			{WorkItemID: first.ID, CompletedQuantity: 6},
			{WorkItemID: second.ID, CompletedQuantity: 2},
		},
		Workers: []domain.GroupWorkerInput{
			{Name: "Kiss János", Hours: 8},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, f.clk.Now().Unix(), result.GroupNo)

	rows, err := f.svc.ListGroup(ctx, result.GroupNo)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	hoursByItem := map[snowflake.ID]float64{}
	for _, row := range rows {
		hoursByItem[row.WorkItemID] = row.WorkHours
	}
	assert.InDelta(t, 6.0, hoursByItem[first.ID], 1e-9)
	assert.InDelta(t, 2.0, hoursByItem[second.ID], 1e-9)

	// Completion advanced on both phases.
	firstAfter, err := f.works.GetItemByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, firstAfter.CompletedQuantity)
	secondAfter, err := f.works.GetItemByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, secondAfter.CompletedQuantity)
}

func TestSubmitGroupSplitsEvenlyWhenNoProgress(t *testing.T) {
	f := setupDiary(t)
	ctx := diaryCtx()
	work, first, second := seedDiaryWork(t, f, ctx)

	result, err := f.svc.SubmitGroup(ctx, domain.SubmitGroupRequest{
		WorkID: work.ID,
		Items: []domain.GroupItemInput{
			{WorkItemID: first.ID, CompletedQuantity: 0},
			{WorkItemID: second.ID, CompletedQuantity: 0},
		},
		Workers: []domain.GroupWorkerInput{
			{Name: "Kiss János", Hours: 8},
		},
	})
	require.NoError(t, err)

	rows, err := f.svc.ListGroup(ctx, result.GroupNo)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.InDelta(t, 4.0, row.WorkHours, 1e-9)
		assert.Equal(t, 0.0, row.Quantity)
	}
}

func TestSubmitGroupIgnoresBackwardProgress(t *testing.T) {
	f := setupDiary(t)
	ctx := diaryCtx()
	work, first, _ := seedDiaryWork(t, f, ctx)

	_, err := f.works.UpdateItemCompletion(ctx, first.ID, 10)
	require.NoError(t, err)

	// A lower reported completion never subtracts progress.
	result, err := f.svc.SubmitGroup(ctx, domain.SubmitGroupRequest{
		WorkID:  work.ID,
		Items:   []domain.GroupItemInput{{WorkItemID: first.ID, CompletedQuantity: 4}},
		Workers: []domain.GroupWorkerInput{{Name: "Kiss János", Hours: 8}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	after, err := f.works.GetItemByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, after.CompletedQuantity)
}

func TestSubmitGroupRejectsEmptySelection(t *testing.T) {
	f := setupDiary(t)
	ctx := diaryCtx()
	work, first, _ := seedDiaryWork(t, f, ctx)

	_, err := f.svc.SubmitGroup(ctx, domain.SubmitGroupRequest{
		WorkID:  work.ID,
		Items:   []domain.GroupItemInput{{WorkItemID: first.ID, CompletedQuantity: 1}},
		Workers: nil,
	})
	assert.ErrorIs(t, err, domain.ErrEmptySelection)

	_, err = f.svc.SubmitGroup(ctx, domain.SubmitGroupRequest{
		WorkID:  work.ID,
		Workers: []domain.GroupWorkerInput{{Name: "Kiss János", Hours: 8}},
	})
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}

func TestGroupApprovalLifecycle(t *testing.T) {
	f := setupDiary(t)
	ctx := diaryCtx()
	work, first, second := seedDiaryWork(t, f, ctx)

	result, err := f.svc.SubmitGroup(ctx, domain.SubmitGroupRequest{
		WorkID: work.ID,
		Items: []domain.GroupItemInput{
			{WorkItemID: first.ID, CompletedQuantity: 3},
			{WorkItemID: second.ID, CompletedQuantity: 1},
		},
		Workers: []domain.GroupWorkerInput{{Name: "Kiss János", Hours: 8}},
	})
	require.NoError(t, err)

	status, err := f.svc.GroupApprovalStatus(ctx, result.GroupNo)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalNone, status)

	// Accepting one row by hand leaves the group partially approved.
	rows, err := f.svc.ListGroup(ctx, result.GroupNo)
	require.NoError(t, err)
	accepted := true
	_, err = f.svc.UpdateItem(ctx, rows[0].ID, domain.UpdateDiaryItemRequest{Accepted: &accepted})
	require.NoError(t, err)

	status, err = f.svc.GroupApprovalStatus(ctx, result.GroupNo)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalSome, status)

	require.NoError(t, f.svc.SetGroupApproval(ctx, result.GroupNo, true))
	status, err = f.svc.GroupApprovalStatus(ctx, result.GroupNo)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalAll, status)
}

func TestDeleteGroup(t *testing.T) {
	f := setupDiary(t)
	ctx := diaryCtx()
	work, first, _ := seedDiaryWork(t, f, ctx)

	result, err := f.svc.SubmitGroup(ctx, domain.SubmitGroupRequest{
		WorkID:  work.ID,
		Items:   []domain.GroupItemInput{{WorkItemID: first.ID, CompletedQuantity: 2}},
		Workers: []domain.GroupWorkerInput{{Name: "Kiss János", Hours: 4}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteGroup(ctx, result.GroupNo))
	_, err = f.svc.ListGroup(ctx, result.GroupNo)
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	assert.ErrorIs(t, f.svc.DeleteGroup(ctx, result.GroupNo), domain.ErrGroupNotFound)
}
