package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	workdomain "github.com/mesterwork/mesterwork/internal/work/domain"
	"gorm.io/gorm"
)

type Repository interface {
	InsertSlot(ctx context.Context, db *gorm.DB, slot *Worker) error
	FindSlotByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*Worker, error)
	FindSlotByProfession(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID, name string) (*Worker, error)
	ListSlots(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID) ([]*Worker, error)
	UpdateSlot(ctx context.Context, db *gorm.DB, slot *Worker) error
	DeleteSlot(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) error

	InsertAssignment(ctx context.Context, db *gorm.DB, assignment *WorkItemWorker) error
	FindAssignmentByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*WorkItemWorker, error)
	ListAssignmentsByWork(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID) ([]*WorkItemWorker, error)
	ListAssignmentsByRegistry(ctx context.Context, db *gorm.DB, tenantEmail string, registryID snowflake.ID) ([]*WorkItemWorker, error)
	UpdateAssignment(ctx context.Context, db *gorm.DB, assignment *WorkItemWorker) error
	DeleteAssignment(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) error

	FindWork(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*workdomain.Work, error)
	UpdateWorkHeadcount(ctx context.Context, db *gorm.DB, work *workdomain.Work) error
	ListWorkItems(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID) ([]*workdomain.WorkItem, error)
}
