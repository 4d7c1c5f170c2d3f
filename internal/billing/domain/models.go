// Package domain contains the billing models.
package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BillingStatus is a billing's lifecycle state. Finalized and paid are
// terminal; only drafts may be edited or deleted.
type BillingStatus string

const (
	BillingStatusDraft     BillingStatus = "draft"
	BillingStatusFinalized BillingStatus = "finalized"
	BillingStatusPaid      BillingStatus = "paid"
)

// BillingItem is a frozen snapshot of one work item at draft creation.
// Quantity is the billable amount at that moment; later progress on the
// work item does not change it.
type BillingItem struct {
	WorkItemID        snowflake.ID `json:"workItemId"`
	Name              string       `json:"name"`
	Quantity          float64      `json:"quantity"`
	Unit              string       `json:"unit"`
	UnitPrice         float64      `json:"unitPrice"`
	MaterialUnitPrice float64      `json:"materialUnitPrice"`
	WorkTotal         float64      `json:"workTotal"`
	MaterialTotal     float64      `json:"materialTotal"`
	TotalPrice        float64      `json:"totalPrice"`
}

// Billing is one invoice-in-the-making for a work.
type Billing struct {
	ID            snowflake.ID   `gorm:"primaryKey" json:"id"`
	WorkID        snowflake.ID   `gorm:"not null;index" json:"workId"`
	TenantEmail   string         `gorm:"not null;index" json:"tenantEmail"`
	Title         string         `gorm:"not null" json:"title"`
	Status        BillingStatus  `gorm:"type:text;not null;default:'draft'" json:"status"`
	Items         datatypes.JSON `gorm:"type:jsonb;not null" json:"items"`
	TotalPrice    float64        `gorm:"not null;default:0" json:"totalPrice"`
	InvoiceNumber *string        `json:"invoiceNumber,omitempty"`
	InvoicePDFURL *string        `gorm:"column:invoice_pdf_url" json:"invoicePdfUrl,omitempty"`
	Notes         string         `gorm:"not null;default:''" json:"notes"`
	CreatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Billing) TableName() string { return "billings" }

// DecodeItems unpacks the frozen item snapshots.
func (b Billing) DecodeItems() ([]BillingItem, error) {
	if len(b.Items) == 0 {
		return nil, nil
	}
	var items []BillingItem
	if err := json.Unmarshal(b.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// InvoiceSequence tracks the last issued invoice number per tenant and year.
type InvoiceSequence struct {
	TenantEmail string `gorm:"primaryKey"`
	Year        int    `gorm:"primaryKey"`
	LastSeq     int64  `gorm:"not null;default:0"`
}

// TableName sets the database table name.
func (InvoiceSequence) TableName() string { return "invoice_sequences" }
