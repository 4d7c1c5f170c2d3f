package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mesterwork/mesterwork/internal/diary/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindDiary(ctx context.Context, db *gorm.DB, tenantEmail string, workID, workItemID snowflake.ID) (*domain.WorkDiary, error) {
	var diary domain.WorkDiary
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND work_id = ? AND work_item_id = ?", tenantEmail, workID, workItemID).
		First(&diary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &diary, nil
}

func (r *repo) InsertDiary(ctx context.Context, db *gorm.DB, diary *domain.WorkDiary) error {
	return db.WithContext(ctx).Create(diary).Error
}

func (r *repo) InsertItem(ctx context.Context, db *gorm.DB, item *domain.WorkDiaryItem) error {
	return db.WithContext(ctx).Create(item).Error
}

func (r *repo) FindItemByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*domain.WorkDiaryItem, error) {
	var item domain.WorkDiaryItem
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

func (r *repo) ListByWork(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID) ([]*domain.WorkDiaryItem, error) {
	var items []*domain.WorkDiaryItem
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND work_id = ?", tenantEmail, workID).
		Order("date desc, group_no desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListGroup(ctx context.Context, db *gorm.DB, tenantEmail string, groupNo int64) ([]*domain.WorkDiaryItem, error) {
	var items []*domain.WorkDiaryItem
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND group_no = ?", tenantEmail, groupNo).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateItem(ctx context.Context, db *gorm.DB, item *domain.WorkDiaryItem) error {
	return db.WithContext(ctx).Save(item).Error
}

func (r *repo) DeleteItem(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("tenant_email = ? AND id = ?", tenantEmail, id).
		Delete(&domain.WorkDiaryItem{}).Error
}

func (r *repo) DeleteGroup(ctx context.Context, db *gorm.DB, tenantEmail string, groupNo int64) error {
	return db.WithContext(ctx).
		Where("tenant_email = ? AND group_no = ?", tenantEmail, groupNo).
		Delete(&domain.WorkDiaryItem{}).Error
}

func (r *repo) SetGroupAccepted(ctx context.Context, db *gorm.DB, tenantEmail string, groupNo int64, accepted bool) error {
	return db.WithContext(ctx).
		Model(&domain.WorkDiaryItem{}).
		Where("tenant_email = ? AND group_no = ?", tenantEmail, groupNo).
		Updates(map[string]interface{}{
			"accepted":   accepted,
			"updated_at": time.Now().UTC(),
		}).Error
}
