package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, billing *Billing) error
	FindByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*Billing, error)
	ListByWork(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID) ([]*Billing, error)
	Update(ctx context.Context, db *gorm.DB, billing *Billing) error
	Delete(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) error

	// NextInvoiceSeq bumps and returns the tenant's invoice counter for the
	// year. Must run inside the finalization transaction.
	NextInvoiceSeq(ctx context.Context, db *gorm.DB, tenantEmail string, year int) (int64, error)
}
