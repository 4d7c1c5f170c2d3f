package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateDraftRequest struct {
	WorkID      snowflake.ID   `json:"workId"`
	Title       string         `json:"title"`
	WorkItemIDs []snowflake.ID `json:"workItemIds"`
	Notes       string         `json:"notes"`
}

type UpdateDraftRequest struct {
	Title       *string        `json:"title"`
	WorkItemIDs []snowflake.ID `json:"workItemIds"`
	Notes       *string        `json:"notes"`
}

// InvoiceData is what the PDF renderer needs to draw an invoice.
type InvoiceData struct {
	InvoiceNumber string
	Title         string
	TenantEmail   string
	WorkTitle     string
	IssuedAt      string
	Items         []BillingItem
	TotalPrice    float64
}

// Renderer draws an invoice document and returns its bytes.
type Renderer interface {
	RenderInvoice(ctx context.Context, data InvoiceData) ([]byte, error)
}

type Service interface {
	CreateDraft(ctx context.Context, req CreateDraftRequest) (Billing, error)
	UpdateDraft(ctx context.Context, id snowflake.ID, req UpdateDraftRequest) (Billing, error)
	GetByID(ctx context.Context, id snowflake.ID) (Billing, error)
	ListByWork(ctx context.Context, workID snowflake.ID) ([]Billing, error)

	// Finalize assigns the next invoice number, renders the PDF and books
	// the snapshot quantities as billed on the source work items.
	Finalize(ctx context.Context, id snowflake.ID) (Billing, error)

	// MarkPaidCash closes a draft as settled in cash, booking the snapshot
	// quantities as paid.
	MarkPaidCash(ctx context.Context, id snowflake.ID) (Billing, error)

	DeleteDraft(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrEmptySelection  = errors.New("empty_selection")
	ErrNothingBillable = errors.New("nothing_billable")
	ErrNotFound        = errors.New("billing_not_found")
	ErrNotDraft        = errors.New("billing_not_draft")
)
