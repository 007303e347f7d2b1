package contract

import (
	"context"
	"time"
)

// Oracle sends one conversation plus exactly one allowed response schema to
// the external reasoning service and returns the decoded, validated result.
type Oracle interface {
	Invoke(ctx context.Context, msgs []Message, schema ResponseSchema) (Decision, error)
}

// Repository is read access to SKUs and historical sales.
type Repository interface {
	// SKU returns the SKU with the given id, or (nil, nil) when absent.
	SKU(ctx context.Context, id string) (*SKU, error)
	// SaleQuantities returns the quantities of all sales of the SKU with
	// sold_on >= since, in storage order.
	SaleQuantities(ctx context.Context, skuID string, since time.Time) ([]int, error)
	// LiquidationCandidates returns every SKU with days_on_hand > daysOnHand
	// OR sell_through < sellThrough (union, not intersection).
	LiquidationCandidates(ctx context.Context, daysOnHand int, sellThrough float64) ([]SKU, error)
}

// MarketLookup extracts competitor price samples from an external search.
type MarketLookup interface {
	// SearchPrices returns the currency amounts mentioned in the top search
	// results for query. An empty result is not an error.
	SearchPrices(ctx context.Context, query string) ([]float64, error)
}

// Notifier delivers one email to the configured operations recipient.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}
