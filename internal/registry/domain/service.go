package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	workforcedomain "github.com/mesterwork/mesterwork/internal/workforce/domain"
)

type CreateEntryRequest struct {
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	HiredDate *time.Time `json:"hiredDate"`
	Notes     *string    `json:"notes"`
	DailyRate *float64   `json:"dailyRate"`
}

type UpdateEntryRequest struct {
	Name      *string    `json:"name"`
	Role      *string    `json:"role"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	HiredDate *time.Time `json:"hiredDate"`
	LeftDate  *time.Time `json:"leftDate"`
	Notes     *string    `json:"notes"`
	AvatarURL *string    `json:"avatarUrl"`
	DailyRate *float64   `json:"dailyRate"`
}

// DeleteResult reports the outcome of a delete attempt. When the person
// still has assignments or diary rows the row is left in place and
// NeedsCleanup carries what blocks the delete.
type DeleteResult struct {
	Deleted      bool                            `json:"deleted"`
	NeedsCleanup bool                            `json:"needsCleanup"`
	Assignments  []workforcedomain.WorkItemWorker `json:"assignments,omitempty"`
	DiaryCount   int64                           `json:"diaryCount,omitempty"`
}

type Service interface {
	List(ctx context.Context) ([]WorkforceRegistry, error)
	GetByID(ctx context.Context, id snowflake.ID) (WorkforceRegistry, error)
	Create(ctx context.Context, req CreateEntryRequest) (WorkforceRegistry, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateEntryRequest) (WorkforceRegistry, error)
	SetActive(ctx context.Context, id snowflake.ID, active bool) error
	SetRestricted(ctx context.Context, id snowflake.ID, restricted bool) error

	// Delete refuses to remove a person who still appears on work
	// assignments or diary entries; the result says what has to go first.
	Delete(ctx context.Context, id snowflake.ID) (DeleteResult, error)

	// CleanupAndDelete removes the person's diary rows and assignments,
	// prunes them from slot member lists, then deletes the registry row.
	CleanupAndDelete(ctx context.Context, id snowflake.ID) error

	// ResolveOrCreate finds a registry entry by name, creating one from the
	// given contact details when missing. Restricted entries are refused.
	ResolveOrCreate(ctx context.Context, name, email, phone, role string) (WorkforceRegistry, error)
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidName   = errors.New("invalid_name")
	ErrDuplicateName = errors.New("duplicate_registry_name")
	ErrNotFound      = errors.New("registry_entry_not_found")
	ErrRestricted    = errors.New("registry_entry_restricted")
)
