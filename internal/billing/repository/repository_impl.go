package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/mesterwork/mesterwork/internal/billing/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, billing *domain.Billing) error {
	return db.WithContext(ctx).Create(billing).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*domain.Billing, error) {
	var billing domain.Billing
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND id = ?", tenantEmail, id).
		First(&billing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &billing, nil
}

func (r *repo) ListByWork(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID) ([]*domain.Billing, error) {
	var billings []*domain.Billing
	err := db.WithContext(ctx).
		Where("tenant_email = ? AND work_id = ?", tenantEmail, workID).
		Order("created_at desc").
		Find(&billings).Error
	if err != nil {
		return nil, err
	}
	return billings, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, billing *domain.Billing) error {
	return db.WithContext(ctx).Save(billing).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("tenant_email = ? AND id = ?", tenantEmail, id).
		Delete(&domain.Billing{}).Error
}

func (r *repo) NextInvoiceSeq(ctx context.Context, db *gorm.DB, tenantEmail string, year int) (int64, error) {
	seq := domain.InvoiceSequence{
		TenantEmail: tenantEmail,
		Year:        year,
		LastSeq:     1,
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_email"}, {Name: "year"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"last_seq": gorm.Expr("invoice_sequences.last_seq + 1")}),
		}).
		Create(&seq).Error
	if err != nil {
		return 0, err
	}

	var current domain.InvoiceSequence
	err = db.WithContext(ctx).
		Where("tenant_email = ? AND year = ?", tenantEmail, year).
		First(&current).Error
	if err != nil {
		return 0, err
	}
	return current.LastSeq, nil
}
