package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindDiary(ctx context.Context, db *gorm.DB, tenantEmail string, workID, workItemID snowflake.ID) (*WorkDiary, error)
	InsertDiary(ctx context.Context, db *gorm.DB, diary *WorkDiary) error

	InsertItem(ctx context.Context, db *gorm.DB, item *WorkDiaryItem) error
	FindItemByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*WorkDiaryItem, error)
	ListByWork(ctx context.Context, db *gorm.DB, tenantEmail string, workID snowflake.ID) ([]*WorkDiaryItem, error)
	ListGroup(ctx context.Context, db *gorm.DB, tenantEmail string, groupNo int64) ([]*WorkDiaryItem, error)
	UpdateItem(ctx context.Context, db *gorm.DB, item *WorkDiaryItem) error
	DeleteItem(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) error
	DeleteGroup(ctx context.Context, db *gorm.DB, tenantEmail string, groupNo int64) error
	SetGroupAccepted(ctx context.Context, db *gorm.DB, tenantEmail string, groupNo int64, accepted bool) error
}
