package models

import "time"

// Quote is the live state of one security.
type Quote struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
}

// QuoteBatch is the result of one batched quote lookup, keyed by canonical
// security identifier. Only successfully resolved identifiers appear; some
// consumers need only the price map, so it is kept alongside the changes.
type QuoteBatch struct {
	Prices  map[string]float64 `json:"prices"`
	Changes map[string]float64 `json:"changes"`
	Names   map[string]string  `json:"names,omitempty"`
	AsOf    time.Time          `json:"as_of"`
}

// NewQuoteBatch returns an empty batch stamped with the given time.
func NewQuoteBatch(asOf time.Time) *QuoteBatch {
	return &QuoteBatch{
		Prices:  make(map[string]float64),
		Changes: make(map[string]float64),
		Names:   make(map[string]string),
		AsOf:    asOf,
	}
}

// Empty reports whether the batch resolved nothing.
func (b *QuoteBatch) Empty() bool {
	return b == nil || len(b.Prices) == 0
}

// IndexQuote is the live state of one headline market index.
type IndexQuote struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
}
