package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type UpsertPriceRequest struct {
	Task         string  `json:"task"`
	Category     *string `json:"category"`
	Technology   *string `json:"technology"`
	Unit         *string `json:"unit"`
	LaborCost    float64 `json:"laborCost"`
	MaterialCost float64 `json:"materialCost"`
}

type UpdatePriceRequest struct {
	Task         *string  `json:"task"`
	Category     *string  `json:"category"`
	Technology   *string  `json:"technology"`
	Unit         *string  `json:"unit"`
	LaborCost    *float64 `json:"laborCost"`
	MaterialCost *float64 `json:"materialCost"`
}

type Service interface {
	ListGlobal(ctx context.Context) ([]PriceList, error)
	ListTenant(ctx context.Context) ([]PriceList, error)
	UpsertTenant(ctx context.Context, req UpsertPriceRequest) (PriceList, error)
	UpdateTenant(ctx context.Context, id snowflake.ID, req UpdatePriceRequest) (PriceList, error)
	DeleteTenant(ctx context.Context, id snowflake.ID) error
	UpdateGlobal(ctx context.Context, id snowflake.ID, req UpdatePriceRequest) (PriceList, error)

	// Lookup resolves a task's default prices, preferring the tenant's own
	// entry over the global catalog. Returns nil when neither has the task.
	Lookup(ctx context.Context, task string) (*PriceList, error)
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidTask   = errors.New("invalid_task")
	ErrNotFound      = errors.New("price_not_found")
	ErrForbidden     = errors.New("global_prices_forbidden")
)
