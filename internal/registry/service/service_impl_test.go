package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	diarydomain "github.com/mesterwork/mesterwork/internal/diary/domain"
	"github.com/mesterwork/mesterwork/internal/registry/domain"
	"github.com/mesterwork/mesterwork/internal/registry/repository"
	"github.com/mesterwork/mesterwork/internal/tenantctx"
	workforcedomain "github.com/mesterwork/mesterwork/internal/workforce/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type registryFixture struct {
	db   *gorm.DB
	svc  domain.Service
	node *snowflake.Node
}

func setupRegistry(t *testing.T) registryFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

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
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_workforce_registry_name ON workforce_registry(tenant_email, name)")
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

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return registryFixture{db: db, svc: svc, node: node}
}

func registryCtx() context.Context {
	return tenantctx.WithTenant(context.Background(), tenantctx.Tenant{Email: "boss@example.com"})
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	f := setupRegistry(t)
	ctx := registryCtx()

	_, err := f.svc.Create(ctx, domain.CreateEntryRequest{Name: "Kiss János", Role: "kőműves"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, domain.CreateEntryRequest{Name: "Kiss János"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	// Another tenant may use the same name.
	otherCtx := tenantctx.WithTenant(context.Background(), tenantctx.Tenant{Email: "other@example.com"})
	_, err = f.svc.Create(otherCtx, domain.CreateEntryRequest{Name: "Kiss János"})
	assert.NoError(t, err)
}

func TestResolveOrCreateReusesEntry(t *testing.T) {
	f := setupRegistry(t)
	ctx := registryCtx()

	created, err := f.svc.ResolveOrCreate(ctx, "Nagy Béla", "bela@example.com", "", "ács")
	require.NoError(t, err)

	resolved, err := f.svc.ResolveOrCreate(ctx, "Nagy Béla", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)

	require.NoError(t, f.svc.SetRestricted(ctx, created.ID, true))
	_, err = f.svc.ResolveOrCreate(ctx, "Nagy Béla", "", "", "")
	assert.ErrorIs(t, err, domain.ErrRestricted)
}

func TestDeleteReportsNeedsCleanup(t *testing.T) {
	f := setupRegistry(t)
	ctx := registryCtx()

	entry, err := f.svc.Create(ctx, domain.CreateEntryRequest{Name: "Kiss János", Role: "kőműves"})
	require.NoError(t, err)

	workID := f.node.Generate()
	assignment := workforcedomain.WorkItemWorker{
		ID:                  f.node.Generate(),
		WorkID:              workID,
		WorkerID:            f.node.Generate(),
		WorkforceRegistryID: entry.ID,
		TenantEmail:         "boss@example.com",
		Name:                entry.Name,
	}
	require.NoError(t, f.db.Create(&assignment).Error)

	diaryRow := diarydomain.WorkDiaryItem{
		ID:                  f.node.Generate(),
		DiaryID:             f.node.Generate(),
		WorkID:              workID,
		WorkItemID:          f.node.Generate(),
		WorkforceRegistryID: &entry.ID,
		TenantEmail:         "boss@example.com",
		Name:                entry.Name,
		Date:                time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&diaryRow).Error)

	result, err := f.svc.Delete(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, result.Deleted)
	assert.True(t, result.NeedsCleanup)
	assert.Len(t, result.Assignments, 1)
	assert.Equal(t, int64(1), result.DiaryCount)

	// Nothing was removed by the pre-check.
	_, err = f.svc.GetByID(ctx, entry.ID)
	assert.NoError(t, err)
}

func TestDeleteCountsLegacyDiaryRowsByName(t *testing.T) {
	f := setupRegistry(t)
	ctx := registryCtx()

	entry, err := f.svc.Create(ctx, domain.CreateEntryRequest{Name: "Régi Rudolf"})
	require.NoError(t, err)

	// A diary row recorded before the registry existed carries only the name.
	legacy := diarydomain.WorkDiaryItem{
		ID:          f.node.Generate(),
		DiaryID:     f.node.Generate(),
		WorkID:      f.node.Generate(),
		WorkItemID:  f.node.Generate(),
		TenantEmail: "boss@example.com",
		Name:        "Régi Rudolf",
		Date:        time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&legacy).Error)

	result, err := f.svc.Delete(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, result.NeedsCleanup)
	assert.Equal(t, int64(1), result.DiaryCount)
}

func TestCleanupAndDeleteRemovesEverything(t *testing.T) {
	f := setupRegistry(t)
	ctx := registryCtx()

	entry, err := f.svc.Create(ctx, domain.CreateEntryRequest{Name: "Kiss János"})
	require.NoError(t, err)

	workID := f.node.Generate()
	slotID := f.node.Generate()
	require.NoError(t, f.db.Create(&workforcedomain.Worker{
		ID:          slotID,
		WorkID:      workID,
		TenantEmail: "boss@example.com",
		Name:        "kőműves",
		Quantity:    1,
		Members:     []byte(`[{"name":"Kiss János","workforceRegistryId":"` + entry.ID.String() + `"}]`),
	}).Error)
	require.NoError(t, f.db.Create(&workforcedomain.WorkItemWorker{
		ID:                  f.node.Generate(),
		WorkID:              workID,
		WorkerID:            slotID,
		WorkforceRegistryID: entry.ID,
		TenantEmail:         "boss@example.com",
		Name:                entry.Name,
	}).Error)
	require.NoError(t, f.db.Create(&diarydomain.WorkDiaryItem{
		ID:                  f.node.Generate(),
		DiaryID:             f.node.Generate(),
		WorkID:              workID,
		WorkItemID:          f.node.Generate(),
		WorkforceRegistryID: &entry.ID,
		TenantEmail:         "boss@example.com",
		Name:                entry.Name,
		Date:                time.Now().UTC(),
	}).Error)

	require.NoError(t, f.svc.CleanupAndDelete(ctx, entry.ID))

	_, err = f.svc.GetByID(ctx, entry.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var assignments, diaryRows int64
	require.NoError(t, f.db.Model(&workforcedomain.WorkItemWorker{}).Count(&assignments).Error)
	require.NoError(t, f.db.Model(&diarydomain.WorkDiaryItem{}).Count(&diaryRows).Error)
	assert.Equal(t, int64(0), assignments)
	assert.Equal(t, int64(0), diaryRows)

	// The slot lost the member and its reserved seat.
	var slot workforcedomain.Worker
	require.NoError(t, f.db.First(&slot, "id = ?", slotID).Error)
	assert.Equal(t, 0, slot.Quantity)
	assert.JSONEq(t, `[]`, string(slot.Members))
}

func TestUpdatePropagatesNameToAssignments(t *testing.T) {
	f := setupRegistry(t)
	ctx := registryCtx()

	entry, err := f.svc.Create(ctx, domain.CreateEntryRequest{Name: "Kiss János"})
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&workforcedomain.WorkItemWorker{
		ID:                  f.node.Generate(),
		WorkID:              f.node.Generate(),
		WorkerID:            f.node.Generate(),
		WorkforceRegistryID: entry.ID,
		TenantEmail:         "boss@example.com",
		Name:                entry.Name,
	}).Error)

	newName := "Kiss János Pál"
	updated, err := f.svc.Update(ctx, entry.ID, domain.UpdateEntryRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)

	var assignment workforcedomain.WorkItemWorker
	require.NoError(t, f.db.First(&assignment, "workforce_registry_id = ?", entry.ID).Error)
	assert.Equal(t, newName, assignment.Name)
}
