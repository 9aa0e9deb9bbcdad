// Package valuation estimates intraday fund values from disclosed holdings
// and live quotes, falling back to official NAV when one is already
// published for the current day.
package valuation

import (
	"time"

	"github.com/bobmcallan/navcast/internal/models"
)

// Display labels attached to a valuation's AsOf field.
const (
	labelEstimated  = "(估)"
	labelOfficial   = "(官方净值)"
	labelNoQuotes   = "暂无实时 (昨日净值)"
	labelNoHoldings = "(无持仓数据)"
	navDateLayout   = "2006-01-02"
)

// Estimator computes a single fund's valuation from its NAV history,
// holdings snapshot and a quote batch.
type Estimator struct {
	now func() time.Time
}

func NewEstimator() *Estimator {
	return &Estimator{now: time.Now}
}

// SetClock overrides the wall clock, for tests.
func (e *Estimator) SetClock(now func() time.Time) {
	e.now = now
}

// Estimate produces a valuation under one of three policies:
//
//   - No NAV history at all: the fund cannot be valued, ErrNoNavHistory.
//   - The latest NAV is dated today: the official value is already out, so
//     report it directly with the change derived from the last two NAVs.
//   - The latest NAV is stale: estimate the intraday change as the weighted
//     sum of holding changes divided by 100, a deliberately conservative
//     damping inherited from the top-10 disclosure covering only part of
//     the portfolio. Missing holdings or quotes degrade to a zero-change
//     valuation rather than an error.
//
// navHistory must be ordered oldest-first.
func (e *Estimator) Estimate(code, name string, navHistory []models.NavPoint, holdings []models.HoldingEntry, quotes *models.QuoteBatch) (*models.Valuation, error) {
	if len(navHistory) == 0 {
		return nil, models.ErrNoNavHistory
	}

	latest := navHistory[len(navHistory)-1]
	today := e.now().Format(navDateLayout)

	v := &models.Valuation{
		Code:    code,
		Name:    name,
		LastNav: latest.Nav,
		NavDate: latest.Date,
	}

	if latest.Date == today {
		v.CurrentPrice = latest.Nav
		v.AsOf = labelOfficial
		if len(navHistory) >= 2 {
			prev := navHistory[len(navHistory)-2]
			if prev.Nav > 0 {
				v.ChangePct = (latest.Nav - prev.Nav) / prev.Nav * 100
			}
		}
		// Detail rows are still shown alongside the official number, but
		// the live deltas never alter it.
		v.Holdings = holdingDetails(holdings, quotes)
		return v, nil
	}

	switch {
	case quotes.Empty():
		v.AsOf = labelNoQuotes
	case len(holdings) == 0:
		v.AsOf = labelNoHoldings
	default:
		weighted := 0.0
		for _, h := range holdings {
			if change, ok := quotes.Changes[h.Code]; ok {
				weighted += h.WeightPct * change
			}
		}
		// Divide by 100, not by the covered weight sum. Scaling up to a
		// full portfolio from a partial disclosure overstates volatility.
		v.ChangePct = weighted / 100
		v.IsEstimated = true
		v.AsOf = labelEstimated
		v.Holdings = holdingDetails(holdings, quotes)
	}

	v.CurrentPrice = v.LastNav * (1 + v.ChangePct/100)
	return v, nil
}

// holdingDetails records how each disclosed holding matched against the live
// quote batch. An unmatched holding keeps a zero change and contributes
// nothing to the estimate.
func holdingDetails(holdings []models.HoldingEntry, quotes *models.QuoteBatch) []models.HoldingDetail {
	if len(holdings) == 0 || quotes.Empty() {
		return nil
	}
	details := make([]models.HoldingDetail, 0, len(holdings))
	for _, h := range holdings {
		change, matched := quotes.Changes[h.Code]
		if !matched {
			change = 0
		}
		details = append(details, models.HoldingDetail{
			Name:      h.Name,
			ChangePct: change,
			WeightPct: h.WeightPct,
			Matched:   matched,
		})
	}
	return details
}
