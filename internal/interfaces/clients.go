// Package interfaces defines service contracts for navcast
package interfaces

import (
	"context"

	"github.com/bobmcallan/navcast/internal/models"
)

// QuoteClient provides batched live quotes for securities and indices.
type QuoteClient interface {
	// FetchQuotes retrieves live price and percent-change for the given
	// canonical security identifiers. Unroutable identifiers are silently
	// dropped; failed chunks are skipped; a totally failed batch falls back
	// to the last-known-good result filtered to the request. The returned
	// batch is never nil and the method never fails — missing identifiers
	// simply have no entry.
	FetchQuotes(ctx context.Context, codes []string) *models.QuoteBatch

	// FetchIndexQuotes retrieves live quotes for venue-prefixed index
	// symbols (e.g. "sh000001"). Missing symbols have no entry.
	FetchIndexQuotes(ctx context.Context, symbols []string) map[string]models.IndexQuote
}

// FundDataClient provides fund disclosures: holdings, NAV history, and the
// searchable fund directory.
type FundDataClient interface {
	// GetHoldings retrieves the raw holdings disclosure table for a fund and
	// disclosure year. Returns models.ErrNoHoldings when the fund has no
	// parseable disclosure for that year.
	GetHoldings(ctx context.Context, fundCode string, year int) (*models.DisclosureTable, error)

	// GetLatestHoldings retrieves the current year's disclosure, falling back
	// to the prior year when the current year has none yet.
	GetLatestHoldings(ctx context.Context, fundCode string) (*models.DisclosureTable, error)

	// GetNavHistory retrieves up to limit NAV points, oldest first.
	// Returns models.ErrNoNavHistory when the fund has no series.
	GetNavHistory(ctx context.Context, fundCode string, limit int) ([]models.NavPoint, error)

	// GetFundDirectory retrieves the full (code, name) fund directory.
	GetFundDirectory(ctx context.Context) ([]models.FundInfo, error)
}

// RemoteBlobClient is the remote key-value store holding the user's fund
// list as one JSON document.
type RemoteBlobClient interface {
	// GetFunds reads the whole fund list.
	GetFunds(ctx context.Context) ([]models.FundRecord, error)

	// PutFunds replaces the whole fund list.
	PutFunds(ctx context.Context, funds []models.FundRecord) error
}
