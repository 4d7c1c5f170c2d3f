package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	diarydomain "github.com/mesterwork/mesterwork/internal/diary/domain"
	"github.com/mesterwork/mesterwork/internal/registry/domain"
	workforcedomain "github.com/mesterwork/mesterwork/internal/workforce/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.WorkforceRegistry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*domain.WorkforceRegistry, error) {
	var entry domain.WorkforceRegistry
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND id = ? AND is_deleted = ?", tenantEmail, id, false).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, tenantEmail, name string) (*domain.WorkforceRegistry, error) {
	var entry domain.WorkforceRegistry
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND name = ? AND is_deleted = ?", tenantEmail, name, false).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantEmail string) ([]*domain.WorkforceRegistry, error) {
	var entries []*domain.WorkforceRegistry
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND is_deleted = ?", tenantEmail, false).
		Order("is_active desc, name asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, entry *domain.WorkforceRegistry) error {
	return db.WithContext(ctx).Save(entry).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("tenant_email = ? AND id = ?", tenantEmail, id).
		Delete(&domain.WorkforceRegistry{}).Error
}

func (r *repo) ListAssignments(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID) ([]workforcedomain.WorkItemWorker, error) {
	var assignments []workforcedomain.WorkItemWorker
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND workforce_registry_id = ?", tenantEmail, registryID).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *repo) CountDiaryRows(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID, name string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&diarydomain.WorkDiaryItem{}).
		Where("tenant_email = ? AND (workforce_registry_id = ? OR name = ?)", tenantEmail, registryID, name).
		Count(&count).Error
	return count, err
}

func (r *repo) DeleteDiaryRows(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID, name string) error {
	return db.WithContext(ctx).
		Where("tenant_email = ? AND (workforce_registry_id = ? OR name = ?)", tenantEmail, registryID, name).
		Delete(&diarydomain.WorkDiaryItem{}).Error
}

func (r *repo) DeleteAssignments(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("tenant_email = ? AND workforce_registry_id = ?", tenantEmail, registryID).
		Delete(&workforcedomain.WorkItemWorker{}).Error
}

func (r *repo) ListSlots(ctx context.Context, db *gorm.DB, tenantEmail string) ([]*workforcedomain.Worker, error) {
	var slots []*workforcedomain.Worker
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND members IS NOT NULL", tenantEmail).
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *repo) UpdateSlotMembers(ctx context.Context, db *gorm.DB, slot *workforcedomain.Worker) error {
	return db.WithContext(ctx).Model(slot).
		Select("members", "quantity", "updated_at").
		Updates(slot).Error
}

func (r *repo) PropagateToAssignments(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID, fields map[string]interface{}) error {
	return db.WithContext(ctx).
		Model(&workforcedomain.WorkItemWorker{}).
		Where("tenant_email = ? AND workforce_registry_id = ?", tenantEmail, registryID).
		Updates(fields).Error
}

func (r *repo) PropagateToDiaryRows(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID, oldName string, fields map[string]interface{}) error {
	return db.WithContext(ctx).
		Model(&diarydomain.WorkDiaryItem{}).
		Where("tenant_email = ? AND (workforce_registry_id = ? OR name = ?)", tenantEmail, registryID, oldName).
		Updates(fields).Error
}
