// Package domain contains the work diary models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// WorkDiary is the diary header of one work phase. Entry rows hang off it.
type WorkDiary struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	WorkID      snowflake.ID `gorm:"not null;index" json:"workId"`
	WorkItemID  snowflake.ID `gorm:"not null" json:"workItemId"`
	TenantEmail string       `gorm:"not null" json:"tenantEmail"`
	Date        time.Time    `gorm:"not null" json:"date"`
	Description string       `gorm:"not null;default:''" json:"description"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (WorkDiary) TableName() string { return "work_diaries" }

// WorkDiaryItem is one worker's recorded effort on one phase for one day.
// Rows written by the same submission share a GroupNo.
type WorkDiaryItem struct {
	ID                  snowflake.ID   `gorm:"primaryKey" json:"id"`
	DiaryID             snowflake.ID   `gorm:"not null" json:"diaryId"`
	WorkID              snowflake.ID   `gorm:"not null;index" json:"workId"`
	WorkItemID          snowflake.ID   `gorm:"not null" json:"workItemId"`
	WorkerID            *snowflake.ID  `json:"workerId,omitempty"`
	WorkforceRegistryID *snowflake.ID  `gorm:"index" json:"workforceRegistryId,omitempty"`
	WorkItemWorkerID    *snowflake.ID  `json:"workItemWorkerId,omitempty"`
	TenantEmail         string         `gorm:"not null" json:"tenantEmail"`
	Name                string         `gorm:"not null;default:''" json:"name"`
	Email               string         `gorm:"not null;default:''" json:"email"`
	Date                time.Time      `gorm:"not null" json:"date"`
	Quantity            float64        `gorm:"not null;default:0" json:"quantity"`
	Unit                string         `gorm:"not null;default:''" json:"unit"`
	WorkHours           float64        `gorm:"not null;default:0" json:"workHours"`
	Images              datatypes.JSON `gorm:"type:jsonb" json:"images,omitempty"`
	Notes               string         `gorm:"not null;default:''" json:"notes"`
	GroupNo             int64          `gorm:"not null;default:0;index" json:"groupNo"`
	Accepted            bool           `gorm:"not null;default:false" json:"accepted"`
	CreatedAt           time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt           time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (WorkDiaryItem) TableName() string { return "work_diary_items" }
