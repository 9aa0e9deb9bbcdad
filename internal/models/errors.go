package models

import "errors"

// Recoverable data-state errors. Providers return these instead of silently
// returning empties; the valuation layer collapses them into the documented
// degraded states (stale NAV with zero change, nil result) rather than
// propagating them to the caller.
var (
	// ErrNoNavHistory means a fund has no published NAV series at all.
	ErrNoNavHistory = errors.New("no NAV history available")

	// ErrNoHoldings means a fund has no parseable holdings disclosure.
	ErrNoHoldings = errors.New("no holdings disclosure available")

	// ErrNoQuotes means a quote batch resolved nothing and the last-known-good
	// fallback was empty too.
	ErrNoQuotes = errors.New("no quotes available")

	// ErrFundNotFound means the requested fund code is not in the stored list.
	ErrFundNotFound = errors.New("fund not found")
)
