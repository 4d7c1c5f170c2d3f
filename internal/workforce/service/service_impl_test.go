package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	registryrepo "github.com/mesterwork/mesterwork/internal/registry/repository"
	registryservice "github.com/mesterwork/mesterwork/internal/registry/service"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
	workdomain "github.com/mesterwork/mesterwork/internal/work/domain"
	"github.com/mesterwork/mesterwork/internal/workforce/domain"
	"github.com/mesterwork/mesterwork/internal/workforce/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type workforceFixture struct {
	db  *gorm.DB
	svc domain.Service
}

func setupWorkforce(t *testing.T) workforceFixture {
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
	db.Exec(`CREATE TABLE IF NOT EXISTS workers (
		id BIGINT PRIMARY KEY,
		work_id BIGINT NOT NULL,
		work_item_id BIGINT,
		tenant_email TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 1,
		members TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	db.Exec(`CREATE TABLE IF NOT EXISTS work_item_workers (
		id BIGINT PRIMARY KEY,
		work_id BIGINT NOT NULL,
		work_item_id BIGINT,
		worker_id BIGINT NOT NULL,
		workforce_registry_id BIGINT NOT NULL,
		tenant_email TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 1,
		avatar_url TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	db.Exec(`CREATE TABLE IF NOT EXISTS workforce_registry (
		id BIGINT PRIMARY KEY,
		tenant_email TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		email TEXT,
		phone TEXT,
		contact_info TEXT,
		hired_date TIMESTAMP,
		left_date TIMESTAMP,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		is_restricted BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT,
		avatar_url TEXT,
		daily_rate REAL,
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

	registry := registryservice.New(registryservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  registryrepo.Provide(),
	})

	svc := New(Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Repo:     repository.Provide(),
		Registry: registry,
	})
	return workforceFixture{db: db, svc: svc}
}

func workforceCtx() context.Context {
	return tenantctx.WithTenant(context.Background(), tenantctx.Tenant{Email: "boss@example.com"})
}

func seedWork(t *testing.T, db *gorm.DB, tenant string) workdomain.Work {
	t.Helper()
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	work := workdomain.Work{
		ID:          node.Generate(),
		TenantEmail: tenant,
		Title:       "Társasház",
		Status:      workdomain.WorkStatusPending,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&work).Error)
	return work
}

func TestAddWorkerCreatesSlotAndRegistryEntry(t *testing.T) {
	f := setupWorkforce(t)
	ctx := workforceCtx()
	work := seedWork(t, f.db, "boss@example.com")

	assignment, err := f.svc.AddWorker(ctx, domain.AddWorkerRequest{
		WorkID: work.ID,
		Name:   "Kiss János",
		Email:  "janos@example.com",
		Role:   "kőműves",
	})
	require.NoError(t, err)
	assert.Equal(t, "Kiss János", assignment.Name)
	assert.Equal(t, "kőműves", assignment.Role)
	assert.NotZero(t, assignment.WorkforceRegistryID)
	assert.NotZero(t, assignment.WorkerID)

	// The headcount on the work follows.
	var total int
	require.NoError(t, f.db.Model(&workdomain.Work{}).
		Where("id = ?", work.ID).
		Pluck("total_workers", &total).Error)
	assert.Equal(t, 1, total)

	// A second assignment of the same person on another phase does not
	// double the headcount.
	_, err = f.svc.AddWorker(ctx, domain.AddWorkerRequest{
		WorkID: work.ID,
		Name:   "Kiss János",
		Role:   "kőműves",
	})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&workdomain.Work{}).
		Where("id = ?", work.ID).
		Pluck("total_workers", &total).Error)
	assert.Equal(t, 1, total)

	summary, err := f.svc.Summary(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalAssigned)
}

func TestAddWorkerRejectsRestrictedPerson(t *testing.T) {
	f := setupWorkforce(t)
	ctx := workforceCtx()
	work := seedWork(t, f.db, "boss@example.com")

	_, err := f.svc.AddWorker(ctx, domain.AddWorkerRequest{WorkID: work.ID, Name: "Tiltott Tibor"})
	require.NoError(t, err)

	require.NoError(t, f.db.Exec(
		`UPDATE workforce_registry SET is_restricted = TRUE WHERE name = ?`, "Tiltott Tibor").Error)

	_, err = f.svc.AddWorker(ctx, domain.AddWorkerRequest{WorkID: work.ID, Name: "Tiltott Tibor"})
	assert.ErrorIs(t, err, domain.ErrWorkerRestricted)
}

func TestSetMaxRequiredWorkersRejectsBelowAssigned(t *testing.T) {
	f := setupWorkforce(t)
	ctx := workforceCtx()
	work := seedWork(t, f.db, "boss@example.com")

	for _, name := range []string{"Kiss János", "Nagy Béla"} {
		_, err := f.svc.AddWorker(ctx, domain.AddWorkerRequest{WorkID: work.ID, Name: name, Role: "ács"})
		require.NoError(t, err)
	}

	assert.ErrorIs(t, f.svc.SetMaxRequiredWorkers(ctx, work.ID, 1), domain.ErrSlotBelowAssigned)
	require.NoError(t, f.svc.SetMaxRequiredWorkers(ctx, work.ID, 5))

	summary, err := f.svc.Summary(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.MaxRequiredWorkers)
	assert.Equal(t, 5, summary.TotalRequired)
	assert.Equal(t, 2, summary.TotalAssigned)
}

func TestSetSlotQuantityRejectsBelowMembers(t *testing.T) {
	f := setupWorkforce(t)
	ctx := workforceCtx()
	work := seedWork(t, f.db, "boss@example.com")

	a, err := f.svc.AddWorker(ctx, domain.AddWorkerRequest{WorkID: work.ID, Name: "Kiss János", Role: "ács"})
	require.NoError(t, err)
	_, err = f.svc.AddWorker(ctx, domain.AddWorkerRequest{WorkID: work.ID, Name: "Nagy Béla", Role: "ács"})
	require.NoError(t, err)

	_, err = f.svc.SetSlotQuantity(ctx, a.WorkerID, 1)
	assert.ErrorIs(t, err, domain.ErrSlotBelowAssigned)

	slot, err := f.svc.SetSlotQuantity(ctx, a.WorkerID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, slot.Quantity)
}

func TestUpdateAssignmentPropagatesToSiblings(t *testing.T) {
	f := setupWorkforce(t)
	ctx := workforceCtx()
	work := seedWork(t, f.db, "boss@example.com")

	first, err := f.svc.AddWorker(ctx, domain.AddWorkerRequest{WorkID: work.ID, Name: "Kiss János", Role: "kőműves"})
	require.NoError(t, err)
	second, err := f.svc.AddWorker(ctx, domain.AddWorkerRequest{WorkID: work.ID, Name: "Kiss János", Role: "segédmunkás"})
	require.NoError(t, err)

	email := "uj@example.com"
	_, err = f.svc.UpdateAssignment(ctx, first.ID, domain.UpdateAssignmentRequest{Email: &email})
	require.NoError(t, err)

	assignments, err := f.svc.ListAssignments(ctx, work.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	for _, a := range assignments {
		assert.Equal(t, email, a.Email)
	}
	_ = second
}

func TestRemoveAssignmentCleansSlot(t *testing.T) {
	f := setupWorkforce(t)
	ctx := workforceCtx()
	work := seedWork(t, f.db, "boss@example.com")

	assignment, err := f.svc.AddWorker(ctx, domain.AddWorkerRequest{WorkID: work.ID, Name: "Kiss János", Role: "ács"})
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveAssignment(ctx, assignment.ID))

	assignments, err := f.svc.ListAssignments(ctx, work.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	var total int
	require.NoError(t, f.db.Model(&workdomain.Work{}).
		Where("id = ?", work.ID).
		Pluck("total_workers", &total).Error)
	assert.Equal(t, 0, total)

	var slots int64
	require.NoError(t, f.db.Model(&domain.Worker{}).Where("work_id = ?", work.ID).Count(&slots).Error)
	assert.Equal(t, int64(0), slots)
}
