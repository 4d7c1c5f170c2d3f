// Package domain contains the tenant workforce registry models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// WorkforceRegistry is one person in a tenant's workforce directory.
// Names are unique per tenant; rows are soft-deleted.
type WorkforceRegistry struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantEmail  string       `gorm:"not null;uniqueIndex:ux_workforce_registry_name" json:"tenantEmail"`
	Name         string       `gorm:"not null;uniqueIndex:ux_workforce_registry_name" json:"name"`
	Role         string       `gorm:"not null;default:''" json:"role"`
	Email        *string      `json:"email,omitempty"`
	Phone        *string      `json:"phone,omitempty"`
	ContactInfo  *string      `json:"contactInfo,omitempty"`
	HiredDate    *time.Time   `json:"hiredDate,omitempty"`
	LeftDate     *time.Time   `json:"leftDate,omitempty"`
	IsActive     bool         `gorm:"not null;default:true" json:"isActive"`
	IsDeleted    bool         `gorm:"not null;default:false" json:"isDeleted"`
	IsRestricted bool         `gorm:"not null;default:false" json:"isRestricted"`
	Notes        *string      `json:"notes,omitempty"`
	AvatarURL    *string      `json:"avatarUrl,omitempty"`
	DailyRate    *float64     `json:"dailyRate,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (WorkforceRegistry) TableName() string { return "workforce_registry" }
