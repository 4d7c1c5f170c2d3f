package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/mesterwork/mesterwork/internal/workforce/domain"
	workdomain "github.com/mesterwork/mesterwork/internal/work/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertSlot(ctx context.Context, db *gorm.DB, slot *domain.Worker) error {
	return db.WithContext(ctx).Create(slot).Error
}

func (r *repo) FindSlotByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*domain.Worker, error) {
	var slot domain.Worker
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND id = ?", tenantEmail, id).
		First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *repo) FindSlotByProfession(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID, name string) (*domain.Worker, error) {
	var slot domain.Worker
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND work_id = ? AND name = ?", tenantEmail, workID, name).
		First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *repo) ListSlots(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID) ([]*domain.Worker, error) {
	var slots []*domain.Worker
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND work_id = ?", tenantEmail, workID).
		Order("name asc").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *repo) UpdateSlot(ctx context.Context, db *gorm.DB, slot *domain.Worker) error {
	return db.WithContext(ctx).Save(slot).Error
}

func (r *repo) DeleteSlot(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("tenant_email = ? AND id = ?", tenantEmail, id).
		Delete(&domain.Worker{}).Error
}

func (r *repo) InsertAssignment(ctx context.Context, db *gorm.DB, assignment *domain.WorkItemWorker) error {
	return db.WithContext(ctx).Create(assignment).Error
}

func (r *repo) FindAssignmentByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*domain.WorkItemWorker, error) {
	var assignment domain.WorkItemWorker
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND id = ?", tenantEmail, id).
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repo) ListAssignmentsByWork(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID) ([]*domain.WorkItemWorker, error) {
	var assignments []*domain.WorkItemWorker
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND work_id = ?", tenantEmail, workID).
		Order("created_at asc").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *repo) ListAssignmentsByRegistry(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID) ([]*domain.WorkItemWorker, error) {
	var assignments []*domain.WorkItemWorker
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND workforce_registry_id = ?", tenantEmail, registryID).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *repo) UpdateAssignment(ctx context.Context, db *gorm.DB, assignment *domain.WorkItemWorker) error {
	return db.WithContext(ctx).Save(assignment).Error
}

func (r *repo) DeleteAssignment(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("tenant_email = ? AND id = ?", tenantEmail, id).
		Delete(&domain.WorkItemWorker{}).Error
}

func (r *repo) FindWork(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*workdomain.Work, error) {
	var work workdomain.Work
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND id = ?", tenantEmail, id).
		First(&work).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &work, nil
}

func (r *repo) UpdateWorkHeadcount(ctx context.Context, db *gorm.DB, work *workdomain.Work) error {
	return db.WithContext(ctx).Model(work).
		Select("max_required_workers", "total_workers", "updated_at").
		Updates(work).Error
}

func (r *repo) ListWorkItems(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID) ([]*workdomain.WorkItem, error) {
	var items []*workdomain.WorkItem
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND work_id = ?", tenantEmail, workID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
