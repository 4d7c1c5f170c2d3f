package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateWorkRequest struct {
	Title     string     `json:"title"`
	Location  string     `json:"location"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type UpdateWorkRequest struct {
	Title     *string     `json:"title"`
	Location  *string     `json:"location"`
	Status    *WorkStatus `json:"status"`
	StartDate *time.Time  `json:"startDate"`
	EndDate   *time.Time  `json:"endDate"`
}

type CreateWorkItemRequest struct {
	WorkID                snowflake.ID
	Name                  string
	Quantity              float64
	Unit                  string
	UnitPrice             *float64
	MaterialUnitPrice     *float64
	Description           string
	RequiredProfessionals []Professional
}

type UpdateWorkItemRequest struct {
	Name              *string
	Quantity          *float64
	Unit              *string
	UnitPrice         *float64
	MaterialUnitPrice *float64
	Description       *string
}

// BilledDelta records quantity applied to a work item by a finalized or
// cash-paid billing.
type BilledDelta struct {
	WorkItemID snowflake.ID
	Quantity   float64
}

type Service interface {
	Create(ctx context.Context, req CreateWorkRequest) (Work, error)
	GetByID(ctx context.Context, id snowflake.ID) (Work, error)
	List(ctx context.Context) ([]Work, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateWorkRequest) (Work, error)
	Archive(ctx context.Context, id snowflake.ID) error

	CreateItem(ctx context.Context, req CreateWorkItemRequest) (WorkItem, error)
	GetItemByID(ctx context.Context, id snowflake.ID) (WorkItem, error)
	ListItems(ctx context.Context, workID snowflake.ID) ([]WorkItem, error)
	UpdateItem(ctx context.Context, id snowflake.ID, req UpdateWorkItemRequest) (WorkItem, error)
	UpdateItemCompletion(ctx context.Context, id snowflake.ID, completedQuantity float64) (WorkItem, error)
	SetItemInProgress(ctx context.Context, id snowflake.ID, inProgress bool) error

	// ApplyBilled increments billed quantities after a billing is finalized,
	// ApplyPaid after it is marked paid in cash.
	ApplyBilled(ctx context.Context, deltas []BilledDelta) error
	ApplyPaid(ctx context.Context, deltas []BilledDelta) error

	// SaveItemMarketPrice stores the advisory market price blob; it never
	// touches the authoritative unit prices.
	SaveItemMarketPrice(ctx context.Context, id snowflake.ID, blob []byte, checkedAt time.Time) error
}

var (
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrWorkNotFound    = errors.New("work_not_found")
	ErrItemNotFound    = errors.New("work_item_not_found")
)
