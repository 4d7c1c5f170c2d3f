package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/mesterwork/mesterwork/internal/pricelist/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, price *domain.PriceList) error {
	return db.WithContext(ctx).Create(price).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*domain.PriceList, error) {
	var price domain.PriceList
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND id = ?", tenantEmail, id).
		First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *repo) FindByTask(ctx context.Context, db *gorm.DB, tenantEmail, task string) (*domain.PriceList, error) {
	var price domain.PriceList
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND task = ?", tenantEmail, task).
		First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantEmail string) ([]*domain.PriceList, error) {
	var prices []*domain.PriceList
	err := db.WithContext(ctx).
		Where("tenant_email = ?", tenantEmail).
		Order("task asc").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, price *domain.PriceList) error {
	return db.WithContext(ctx).Save(price).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("tenant_email = ? AND id = ?", tenantEmail, id).
		Delete(&domain.PriceList{}).Error
}
