// Package domain contains the market price discovery types.
package domain

import "time"

// SearchResult is one hit returned by the web search provider.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Offer is the cheapest concrete product offer picked from the search
// results.
type Offer struct {
	Supplier    string  `json:"supplier"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	URL         string  `json:"url,omitempty"`
}

// MarketPrice is the advisory blob stored on a work item. It never feeds
// back into the authoritative unit prices.
type MarketPrice struct {
	BestPrice   float64   `json:"bestPrice"`
	Supplier    string    `json:"supplier"`
	ProductName string    `json:"productName"`
	URL         string    `json:"url,omitempty"`
	Savings     float64   `json:"savings"`
	CheckedAt   time.Time `json:"checkedAt"`
}

// CheckStatus tells what a price check did.
type CheckStatus string

const (
	CheckStatusFresh   CheckStatus = "fresh"
	CheckStatusUpdated CheckStatus = "updated"
	CheckStatusNoOffer CheckStatus = "no_offer"
)

// CheckResult is the outcome of a single work item price check.
type CheckResult struct {
	Status      CheckStatus  `json:"status"`
	Message     string       `json:"message"`
	MarketPrice *MarketPrice `json:"marketPrice,omitempty"`
}

// BatchResult reports one tenant's batch run.
type BatchResult struct {
	TenantEmail string `json:"tenantEmail"`
	Checked     int    `json:"checked"`
	Updated     int    `json:"updated"`
	NoOffer     int    `json:"noOffer"`
	Failed      int    `json:"failed"`
}

// SweepResult reports an all-tenant run.
type SweepResult struct {
	Tenants []BatchResult `json:"tenants"`
}

// User-facing messages, kept in the operators' language.
const (
	MsgFresh   = "Az árak frissek, nincs szükség új lekérdezésre"
	MsgUpdated = "Árak sikeresen frissítve"
	MsgNoOffer = "Nincs elérhető online ajánlat"

	PlaceholderSupplier = "Nincs online ajánlat"
	PlaceholderProduct  = "Nem elérhető"
)
