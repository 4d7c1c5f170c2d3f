package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, price *PriceList) error
	FindByID(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) (*PriceList, error)
	FindByTask(ctx context.Context, db *gorm.DB, tenantEmail, task string) (*PriceList, error)
	List(ctx context.Context, db *gorm.DB, tenantEmail string) ([]*PriceList, error)
	Update(ctx context.Context, db *gorm.DB, price *PriceList) error
	Delete(ctx context.Context, db *gorm.DB, tenantEmail string, id snowflake.ID) error
}
