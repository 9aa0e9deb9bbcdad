// Package models defines data structures for navcast
package models

import "time"

// FundRecord is one user-managed fund holding. The list is owned by the
// remote store; everything else treats it as read-only input keyed by Code.
type FundRecord struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Cost   float64 `json:"cost"`   // average cost basis per unit
	Shares float64 `json:"shares"` // units held
	Group  string  `json:"group"`
}

// NavPoint is one point of a fund's published NAV time series.
// Date is the disclosure trading day in "2006-01-02" form.
type NavPoint struct {
	Date string  `json:"date"`
	Nav  float64 `json:"nav"`
}

// HoldingEntry is one line of a fund's top-holdings disclosure.
// Code is the canonical security identifier (see internal/securities);
// WeightPct is the percentage of fund net assets this security represented
// as of the disclosure date.
type HoldingEntry struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	WeightPct float64 `json:"weight_pct"`
}

// DisclosureTable is a raw holdings disclosure spanning one or more reporting
// quarters, as scraped from the provider. Column names vary across data
// vintages; the holdings selector resolves them fuzzily.
type DisclosureTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// FundInfo is one entry of the fund directory used for add/search.
type FundInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// HoldingDetail records how one disclosed holding contributed to an estimate.
// Matched distinguishes "quote found, genuinely flat" from "no quote found";
// either way an unmatched holding contributes zero to the estimate.
type HoldingDetail struct {
	Name      string  `json:"name"`
	ChangePct float64 `json:"change_pct"`
	WeightPct float64 `json:"weight_pct"`
	Matched   bool    `json:"matched"`
}

// Valuation is the real-time valuation estimate for one fund.
//
// Invariant: CurrentPrice == LastNav * (1 + ChangePct/100).
// IsEstimated is true only when ChangePct came from the holdings-weighted
// intraday computation; the raw last NAV and today's already-published
// official NAV both report IsEstimated=false.
type Valuation struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	CurrentPrice float64         `json:"current_price"`
	ChangePct    float64         `json:"change_pct"`
	IsEstimated  bool            `json:"is_estimated"`
	LastNav      float64         `json:"last_nav"`
	NavDate      string          `json:"nav_date"`
	AsOf         string          `json:"as_of"` // display label, e.g. "(估)"
	Holdings     []HoldingDetail `json:"holdings,omitempty"`
}

// ValuationBoard is the aggregate answer for a portfolio of funds.
// Results maps fund code to its valuation; a nil entry means the fund has no
// usable data and the consumer should show a degraded card, not an error.
type ValuationBoard struct {
	Results   map[string]*Valuation `json:"results"`
	UpdatedAt time.Time             `json:"updated_at"`
}
