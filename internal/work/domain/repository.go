package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, work *Work) error
	FindByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*Work, error)
	List(ctx context.Context, db *gorm.DB, tenantEmail string) ([]*Work, error)
	Update(ctx context.Context, db *gorm.DB, work *Work) error
	// ActiveTenants returns the distinct tenant emails with active
	// pending or in-progress works.
	ActiveTenants(ctx context.Context, db *gorm.DB) ([]string, error)

	InsertItem(ctx context.Context, db *gorm.DB, item *WorkItem) error
	FindItemByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*WorkItem, error)
	ListItems(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID) ([]*WorkItem, error)
	UpdateItem(ctx context.Context, db *gorm.DB, item *WorkItem) error
	// StaleItems returns items on active pending/in-progress works whose
	// market price was never checked or was checked before the cutoff.
	StaleItems(ctx context.Context, db *gorm.DB, tenantEmail string, cutoff time.Time, limit int) ([]*WorkItem, error)
}
