// Package interfaces defines service contracts for navcast
package interfaces

import (
	"context"

	"github.com/bobmcallan/navcast/internal/models"
)

// FundStore manages the user's fund list with remote-first persistence and a
// local file fallback.
type FundStore interface {
	// Load reads the fund list: remote store first, local file on failure.
	// A fund list that cannot be read anywhere is an empty list, not an error.
	Load(ctx context.Context) []models.FundRecord

	// Save replaces the fund list in the remote store and mirrors it to the
	// local file.
	Save(ctx context.Context, funds []models.FundRecord) error

	// Upsert inserts or replaces one fund by code and saves.
	Upsert(ctx context.Context, fund models.FundRecord) error

	// Delete removes one fund by code and saves. Returns
	// models.ErrFundNotFound when the code is not present.
	Delete(ctx context.Context, code string) error
}

// ValuationService estimates real-time fund valuations.
type ValuationService interface {
	// EstimateAll computes valuations for all given funds. Every input code
	// has an entry in the result; a nil entry means no usable data for that
	// fund. Results are cached for a short window; force bypasses the cache.
	EstimateAll(ctx context.Context, funds []models.FundRecord, force bool) *models.ValuationBoard

	// NavHistory returns the tail of the fund's NAV series, oldest first.
	NavHistory(ctx context.Context, fundCode string, limit int) ([]models.NavPoint, error)

	// SearchFunds filters the fund directory by code or name substring.
	SearchFunds(ctx context.Context, query string, limit int) ([]models.FundInfo, error)

	// WarmHoldings re-fetches holdings disclosures for the given funds,
	// bypassing the holdings cache.
	WarmHoldings(ctx context.Context, codes []string)
}

// MarketService provides the headline market index board.
type MarketService interface {
	// IndexBoard returns the configured headline indices. Indices that could
	// not be resolved are present with zero price and change.
	IndexBoard(ctx context.Context) []models.IndexQuote
}
