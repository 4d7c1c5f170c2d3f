// Package domain contains the workforce slot and assignment models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Worker is a profession slot on a work: how many people of one trade the
// work needs, plus the members currently filling the slot.
type Worker struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	WorkID      snowflake.ID   `gorm:"not null;index" json:"workId"`
	WorkItemID  *snowflake.ID  `json:"workItemId,omitempty"`
	TenantEmail string         `gorm:"not null" json:"tenantEmail"`
	Name        string         `gorm:"not null" json:"name"`
	Role        string         `gorm:"not null;default:''" json:"role"`
	Quantity    int            `gorm:"not null;default:1" json:"quantity"`
	Members     datatypes.JSON `gorm:"type:jsonb" json:"members,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Worker) TableName() string { return "workers" }

// Member is one entry of a slot's members JSON array.
type Member struct {
	Name                string       `json:"name"`
	Email               string       `json:"email,omitempty"`
	Phone               string       `json:"phone,omitempty"`
	WorkforceRegistryID snowflake.ID `json:"workforceRegistryId"`
}

// WorkItemWorker is a concrete person assigned to a work. A nil work item
// id means the assignment is work-wide rather than phase-bound.
type WorkItemWorker struct {
	ID                  snowflake.ID  `gorm:"primaryKey" json:"id"`
	WorkID              snowflake.ID  `gorm:"not null;index" json:"workId"`
	WorkItemID          *snowflake.ID `json:"workItemId,omitempty"`
	WorkerID            snowflake.ID  `gorm:"not null" json:"workerId"`
	WorkforceRegistryID snowflake.ID  `gorm:"not null;index" json:"workforceRegistryId"`
	TenantEmail         string        `gorm:"not null" json:"tenantEmail"`
	Name                string        `gorm:"not null" json:"name"`
	Email               string        `gorm:"not null;default:''" json:"email"`
	Phone               string        `gorm:"not null;default:''" json:"phone"`
	Role                string        `gorm:"not null;default:''" json:"role"`
	Quantity            int           `gorm:"not null;default:1" json:"quantity"`
	AvatarURL           *string       `json:"avatarUrl,omitempty"`
	CreatedAt           time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt           time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (WorkItemWorker) TableName() string { return "work_item_workers" }
