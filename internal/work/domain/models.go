// Package domain contains persistence models for works and their phases.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// WorkStatus represents work lifecycle states.
type WorkStatus string

const (
	WorkStatusPending    WorkStatus = "pending"
	WorkStatusInProgress WorkStatus = "in_progress"
	WorkStatusCompleted  WorkStatus = "completed"
	WorkStatusCancelled  WorkStatus = "cancelled"
)

// Work represents a contracted job owned by a tenant.
type Work struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantEmail        string       `gorm:"not null;index" json:"tenantEmail"`
	Title              string       `gorm:"not null" json:"title"`
	Status             WorkStatus   `gorm:"type:text;not null;default:'pending'" json:"status"`
	Location           string       `gorm:"not null;default:''" json:"location"`
	StartDate          *time.Time   `json:"startDate,omitempty"`
	EndDate            *time.Time   `json:"endDate,omitempty"`
	TotalLaborCost     float64      `gorm:"not null;default:0" json:"totalLaborCost"`
	TotalMaterialCost  float64      `gorm:"not null;default:0" json:"totalMaterialCost"`
	TotalWorkers       int          `gorm:"not null;default:0" json:"totalWorkers"`
	TotalTools         int          `gorm:"not null;default:0" json:"totalTools"`
	MaxRequiredWorkers int          `gorm:"not null;default:0" json:"maxRequiredWorkers"`
	IsActive           bool         `gorm:"not null;default:true" json:"isActive"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Work) TableName() string { return "works" }

// WorkItem represents one billable phase within a Work.
type WorkItem struct {
	ID                    snowflake.ID   `gorm:"primaryKey" json:"id"`
	WorkID                snowflake.ID   `gorm:"not null;index" json:"workId"`
	TenantEmail           string         `gorm:"not null;index" json:"tenantEmail"`
	Name                  string         `gorm:"not null" json:"name"`
	Quantity              float64        `gorm:"not null;default:0" json:"quantity"`
	Unit                  string         `gorm:"not null;default:''" json:"unit"`
	UnitPrice             float64        `gorm:"not null;default:0" json:"unitPrice"`
	MaterialUnitPrice     float64        `gorm:"not null;default:0" json:"materialUnitPrice"`
	WorkTotal             float64        `gorm:"not null;default:0" json:"workTotal"`
	MaterialTotal         float64        `gorm:"not null;default:0" json:"materialTotal"`
	TotalPrice            float64        `gorm:"not null;default:0" json:"totalPrice"`
	CompletedQuantity     float64        `gorm:"not null;default:0" json:"completedQuantity"`
	BilledQuantity        float64        `gorm:"not null;default:0" json:"billedQuantity"`
	PaidQuantity          float64        `gorm:"not null;default:0" json:"paidQuantity"`
	InProgress            bool           `gorm:"not null;default:false" json:"inProgress"`
	Description           string         `gorm:"not null;default:''" json:"description"`
	RequiredProfessionals datatypes.JSON `gorm:"type:jsonb" json:"requiredProfessionals,omitempty"`
	CurrentMarketPrice    datatypes.JSON `gorm:"type:jsonb" json:"currentMarketPrice,omitempty"`
	LastPriceCheck        *time.Time     `json:"lastPriceCheck,omitempty"`
	CreatedAt             time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt             time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (WorkItem) TableName() string { return "work_items" }

// BillableQuantity is the completed quantity not yet invoiced or paid.
// Clamped to zero so a downward revision of completed work can never
// produce a negative value.
func (w WorkItem) BillableQuantity() float64 {
	billable := w.CompletedQuantity - (w.BilledQuantity + w.PaidQuantity)
	if billable < 0 {
		return 0
	}
	return billable
}

// Professional is one entry of a work item's required-professionals list.
type Professional struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

// Tool is a piece of equipment allocated to a work.
type Tool struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	WorkID      snowflake.ID `gorm:"not null;index" json:"workId"`
	TenantEmail string       `gorm:"not null;index" json:"tenantEmail"`
	Name        string       `gorm:"not null" json:"name"`
	Quantity    int          `gorm:"not null;default:1" json:"quantity"`
	Description string       `gorm:"not null;default:''" json:"description"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Tool) TableName() string { return "tools" }

// Material is a consumable allocated to a work.
type Material struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	WorkID      snowflake.ID   `gorm:"not null;index" json:"workId"`
	TenantEmail string         `gorm:"not null;index" json:"tenantEmail"`
	Name        string         `gorm:"not null" json:"name"`
	Quantity    float64        `gorm:"not null;default:0" json:"quantity"`
	Unit        string         `gorm:"not null;default:''" json:"unit"`
	UnitPrice   float64        `gorm:"not null;default:0" json:"unitPrice"`
	BestOffer   datatypes.JSON `gorm:"type:jsonb" json:"bestOffer,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Material) TableName() string { return "materials" }
