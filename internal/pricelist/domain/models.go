// Package domain contains the task price catalog models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PriceList is one task's default labor/material cost. Rows with an empty
// tenant email form the global catalog maintained by super users.
type PriceList struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantEmail  string       `gorm:"not null;default:'';uniqueIndex:ux_price_lists_task" json:"tenantEmail"`
	Task         string       `gorm:"not null;uniqueIndex:ux_price_lists_task" json:"task"`
	Category     *string      `json:"category,omitempty"`
	Technology   *string      `json:"technology,omitempty"`
	Unit         *string      `json:"unit,omitempty"`
	LaborCost    float64      `gorm:"not null;default:0" json:"laborCost"`
	MaterialCost float64      `gorm:"not null;default:0" json:"materialCost"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (PriceList) TableName() string { return "price_lists" }
