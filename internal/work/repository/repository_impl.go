package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mesterwork/mesterwork/internal/work/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, work *domain.Work) error {
	return db.WithContext(ctx).Create(work).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*domain.Work, error) {
	var work domain.Work
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

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantEmail string) ([]*domain.Work, error) {
	var works []*domain.Work
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND is_active = ?", tenantEmail, true).
		Order("created_at desc, id desc").
		Find(&works).Error
	if err != nil {
		return nil, err
	}
	return works, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, work *domain.Work) error {
	return db.WithContext(ctx).Save(work).Error
}

func (r *repo) ActiveTenants(ctx context.Context, db *gorm.DB) ([]string, error) {
	var tenants []string
	err := db.WithContext(ctx).
		Model(&domain.Work{}).
		Where("status IN ? AND is_active = ?", []domain.WorkStatus{domain.WorkStatusPending, domain.WorkStatusInProgress}, true).
		Distinct().
		Pluck("tenant_email", &tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) InsertItem(ctx context.Context, db *gorm.DB, item *domain.WorkItem) error {
	return db.WithContext(ctx).Create(item).Error
}

func (r *repo) FindItemByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*domain.WorkItem, error) {
	var item domain.WorkItem
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND id = ?", tenantEmail, id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID) ([]*domain.WorkItem, error) {
	var items []*domain.WorkItem
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND work_id = ?", tenantEmail, workID).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateItem(ctx context.Context, db *gorm.DB, item *domain.WorkItem) error {
	return db.WithContext(ctx).Save(item).Error
}

func (r *repo) StaleItems(ctx context.Context, db *gorm.DB, tenantEmail string, cutoff time.Time, limit int) ([]*domain.WorkItem, error) {
	var items []*domain.WorkItem
	err := db.WithContext(ctx).
		Joins("JOIN works ON works.id = work_items.work_id").
		Where("work_items.tenant_email = ?", tenantEmail).
		Where("works.status IN ? AND works.is_active = ?", []domain.WorkStatus{domain.WorkStatusPending, domain.WorkStatusInProgress}, true).
		Where("work_items.last_price_check IS NULL OR work_items.last_price_check < ?", cutoff).
		Order("work_items.last_price_check asc NULLS FIRST").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
