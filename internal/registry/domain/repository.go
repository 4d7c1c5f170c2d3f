package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	workforcedomain "github.com/mesterwork/mesterwork/internal/workforce/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *WorkforceRegistry) error
	FindByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*WorkforceRegistry, error)
	FindByName(ctx context.Context, db *gorm.DB, tenantEmail, name string) (*WorkforceRegistry, error)
	List(ctx context.Context, db *gorm.DB, tenantEmail string) ([]*WorkforceRegistry, error)
	Update(ctx context.Context, db *gorm.DB, entry *WorkforceRegistry) error
	Delete(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) error

	// Cross-table reads and cleanup against the assignment, diary and slot
	// tables. Diary rows are matched by registry id and, for rows written
	// before registry linking existed, by worker name.
	ListAssignments(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID) ([]workforcedomain.WorkItemWorker, error)
	CountDiaryRows(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID, name string) (int64, error)
	DeleteDiaryRows(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID, name string) error
	DeleteAssignments(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID) error
	ListSlots(ctx context.Context, db *gorm.DB, tenantEmail string) ([]*workforcedomain.Worker, error)
	UpdateSlotMembers(ctx context.Context, db *gorm.DB, slot *workforcedomain.Worker) error
	PropagateToAssignments(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID, fields map[string]interface{}) error
	PropagateToDiaryRows(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID, oldName string, fields map[string]interface{}) error
}
