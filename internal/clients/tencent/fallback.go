package tencent

import (
	"sync"
	"time"

	"github.com/bobmcallan/navcast/internal/models"
)

// Fallback is a single-slot last-known-good quote cache. A successful fetch
// replaces the whole slot; a totally failed fetch reads a snapshot filtered
// to the requested identifiers. Writes replace complete maps, never mutate
// in place, so readers cannot observe a partial update.
type Fallback struct {
	mu      sync.RWMutex
	prices  map[string]float64
	changes map[string]float64
	names   map[string]string
	at      time.Time
}

// NewFallback creates an empty fallback slot.
func NewFallback() *Fallback {
	return &Fallback{}
}

// Replace stores a successful batch as the new last-known-good result.
// Empty batches are ignored — they must not clobber usable data.
func (f *Fallback) Replace(b *models.QuoteBatch) {
	if b.Empty() {
		return
	}

	prices := make(map[string]float64, len(b.Prices))
	for k, v := range b.Prices {
		prices[k] = v
	}
	changes := make(map[string]float64, len(b.Changes))
	for k, v := range b.Changes {
		changes[k] = v
	}
	names := make(map[string]string, len(b.Names))
	for k, v := range b.Names {
		names[k] = v
	}

	f.mu.Lock()
	f.prices = prices
	f.changes = changes
	f.names = names
	f.at = b.AsOf
	f.mu.Unlock()
}

// Filtered returns the stored result restricted to the wanted identifiers,
// stamped with the original fetch time. Empty when the slot has never been
// filled or nothing matches.
func (f *Fallback) Filtered(wanted map[string]bool) *models.QuoteBatch {
	f.mu.RLock()
	defer f.mu.RUnlock()

	batch := models.NewQuoteBatch(f.at)
	for code, price := range f.prices {
		if !wanted[code] {
			continue
		}
		batch.Prices[code] = price
		batch.Changes[code] = f.changes[code]
		if name, ok := f.names[code]; ok {
			batch.Names[code] = name
		}
	}
	return batch
}

// UpdatedAt returns when the slot was last replaced.
func (f *Fallback) UpdatedAt() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.at
}
