package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mesterwork/mesterwork/internal/marketprice/domain"
	workdomain "github.com/mesterwork/mesterwork/internal/work/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) StaleItems(ctx context.Context, db *gorm.DB, tenantEmail string, cutoff time.Time, limit int) ([]*workdomain.WorkItem, error) {
	var items []*workdomain.WorkItem
	err := db.WithContext(ctx).
		Joins("JOIN works ON works.id = work_items.work_id").
		Where("work_items.tenant_email = ?", tenantEmail).
		Where("works.is_active = ?", true).
		Where("works.status IN ?", []workdomain.WorkStatus{
			workdomain.WorkStatusPending,
			workdomain.WorkStatusInProgress,
		}).
		Where("work_items.material_unit_price > 0").
		Where("work_items.last_price_check IS NULL OR work_items.last_price_check < ?", cutoff).
		Order("work_items.last_price_check asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindItem(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*workdomain.WorkItem, error) {
	var item workdomain.WorkItem
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

func (r *repo) ActiveTenants(ctx context.Context, db *gorm.DB) ([]string, error) {
	var tenants []string
	err := db.WithContext(ctx).
		Model(&workdomain.Work{}).
		Where("is_active = ?", true).
		Where("status IN ?", []workdomain.WorkStatus{
			workdomain.WorkStatusPending,
			workdomain.WorkStatusInProgress,
		}).
		Distinct().
		Order("tenant_email asc").
		Pluck("tenant_email", &tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}
