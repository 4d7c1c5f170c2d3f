package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	workdomain "github.com/mesterwork/mesterwork/internal/work/domain"
	"gorm.io/gorm"
)

type Repository interface {
	// StaleItems returns work items on active pending/in-progress works
	// that were never checked or whose check is older than the cutoff.
	StaleItems(ctx context.Context, db *gorm.DB, tenantEmail string, cutoff time.Time, limit int) ([]*workdomain.WorkItem, error)

	FindItem(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*workdomain.WorkItem, error)

	// ActiveTenants lists tenants that own at least one active work.
	ActiveTenants(ctx context.Context, db *gorm.DB) ([]string, error)
}
