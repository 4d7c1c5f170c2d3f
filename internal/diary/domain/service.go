package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// GroupItemInput selects one phase for a diary submission and carries the
// phase's new cumulative completed quantity.
type GroupItemInput struct {
	WorkItemID        snowflake.ID `json:"workItemId"`
	CompletedQuantity float64      `json:"completedQuantity"`
}

// GroupWorkerInput selects one person and their total hours for the day.
type GroupWorkerInput struct {
	AssignmentID *snowflake.ID `json:"assignmentId"`
	RegistryID   *snowflake.ID `json:"registryId"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Hours        float64       `json:"hours"`
}

type SubmitGroupRequest struct {
	WorkID  snowflake.ID       `json:"workId"`
	Date    time.Time          `json:"date"`
	Items   []GroupItemInput   `json:"items"`
	Workers []GroupWorkerInput `json:"workers"`
	Notes   string             `json:"notes"`
	Images  []string           `json:"images"`
}

// GroupResult reports a grouped submission. Row creation and completion
// updates run concurrently and are not rolled back; Failed counts the
// operations that did not land.
type GroupResult struct {
	GroupNo int64 `json:"groupNo"`
	Created int   `json:"created"`
	Failed  int   `json:"failed"`
}

// ApprovalStatus summarizes acceptance across a group's rows.
type ApprovalStatus string

const (
	ApprovalAll  ApprovalStatus = "all"
	ApprovalSome ApprovalStatus = "some"
	ApprovalNone ApprovalStatus = "none"
)

type UpdateDiaryItemRequest struct {
	Date      *time.Time `json:"date"`
	Quantity  *float64   `json:"quantity"`
	WorkHours *float64   `json:"workHours"`
	Notes     *string    `json:"notes"`
	Accepted  *bool      `json:"accepted"`
}

type Service interface {
	SubmitGroup(ctx context.Context, req SubmitGroupRequest) (GroupResult, error)
	ListByWork(ctx context.Context, workID snowflake.ID) ([]WorkDiaryItem, error)
	ListGroup(ctx context.Context, groupNo int64) ([]WorkDiaryItem, error)
	SetGroupApproval(ctx context.Context, groupNo int64, accepted bool) error
	GroupApprovalStatus(ctx context.Context, groupNo int64) (ApprovalStatus, error)
	DeleteGroup(ctx context.Context, groupNo int64) error
	UpdateItem(ctx context.Context, id snowflake.ID, req UpdateDiaryItemRequest) (WorkDiaryItem, error)
	DeleteItem(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrEmptySelection = errors.New("empty_selection")
	ErrWorkNotFound   = errors.New("work_not_found")
	ErrGroupNotFound  = errors.New("diary_group_not_found")
	ErrItemNotFound   = errors.New("diary_item_not_found")
)
