package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type AddWorkerRequest struct {
	WorkID     snowflake.ID  `json:"workId"`
	WorkItemID *snowflake.ID `json:"workItemId"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone"`
	Role       string        `json:"role"`
}

type UpdateAssignmentRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Role  *string `json:"role"`
}

// RoleSummary reports one trade's staffing on a work. Required is the
// larger of the explicit professional plan and the number of people
// actually assigned to the role.
type RoleSummary struct {
	Role     string           `json:"role"`
	Required int              `json:"required"`
	Assigned []WorkItemWorker `json:"assigned"`
}

// WorkforceSummary aggregates staffing across a work.
type WorkforceSummary struct {
	Roles              []RoleSummary `json:"roles"`
	TotalRequired      int           `json:"totalRequired"`
	TotalAssigned      int           `json:"totalAssigned"`
	MaxRequiredWorkers int           `json:"maxRequiredWorkers"`
}

type Service interface {
	Summary(ctx context.Context, workID snowflake.ID) (WorkforceSummary, error)
	ListAssignments(ctx context.Context, workID snowflake.ID) ([]WorkItemWorker, error)
	AddWorker(ctx context.Context, req AddWorkerRequest) (WorkItemWorker, error)
	UpdateAssignment(ctx context.Context, id snowflake.ID, req UpdateAssignmentRequest) (WorkItemWorker, error)
	RemoveAssignment(ctx context.Context, id snowflake.ID) error

	// SetSlotQuantity resizes a profession slot. Shrinking below the number
	// of members already filling the slot is rejected.
	SetSlotQuantity(ctx context.Context, slotID snowflake.ID, quantity int) (Worker, error)

	// SetMaxRequiredWorkers overrides the work-level headcount. Increases are
	// unbounded; a decrease below the assigned count is rejected.
	SetMaxRequiredWorkers(ctx context.Context, workID snowflake.ID, max int) error
}

var (
	ErrInvalidTenant      = errors.New("invalid_tenant")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrWorkNotFound       = errors.New("work_not_found")
	ErrSlotNotFound       = errors.New("worker_slot_not_found")
	ErrAssignmentNotFound = errors.New("assignment_not_found")
	ErrSlotBelowAssigned  = errors.New("slot_below_assigned")
	ErrWorkerRestricted   = errors.New("worker_restricted")
)
