package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Searcher finds candidate offers on the web.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Selector picks the cheapest concrete offer out of raw search results.
// A nil offer with nil error means nothing usable was found.
type Selector interface {
	SelectBestOffer(ctx context.Context, productName string, results []SearchResult) (*Offer, error)
}

type Service interface {
	// CheckWorkItem refreshes one work item's market price unless the
	// stored one is still fresh.
	CheckWorkItem(ctx context.Context, workItemID snowflake.ID, forceRefresh bool) (CheckResult, error)

	// RunTenantBatch checks the tenant's stale items on active works.
	RunTenantBatch(ctx context.Context, tenantEmail string) (BatchResult, error)

	// RunAllTenants sweeps every tenant with active works.
	RunAllTenants(ctx context.Context) (SweepResult, error)
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrItemNotFound  = errors.New("work_item_not_found")
	ErrSearchFailed  = errors.New("search_failed")

	// ErrBadSelectorResponse marks an LLM reply that was not valid JSON.
	ErrBadSelectorResponse = errors.New("bad_selector_response")
)
