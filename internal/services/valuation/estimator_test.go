package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/navcast/internal/models"
)

func fixedClock(date string) func() time.Time {
	t, _ := time.Parse("2006-01-02", date)
	return func() time.Time { return t }
}

func newTestEstimator(today string) *Estimator {
	e := NewEstimator()
	e.SetClock(fixedClock(today))
	return e
}

func TestEstimate_NoNavHistory(t *testing.T) {
	e := newTestEstimator("2024-06-14")
	v, err := e.Estimate("001234", "测试基金", nil, nil, nil)
	assert.Nil(t, v)
	assert.ErrorIs(t, err, models.ErrNoNavHistory)
}

func TestEstimate_WeightedFromHoldings(t *testing.T) {
	e := newTestEstimator("2024-06-14")
	nav := []models.NavPoint{{Date: "2024-06-13", Nav: 1.5}}
	holdings := []models.HoldingEntry{
		{Code: "600519", Name: "贵州茅台", WeightPct: 5},
		{Code: "000858", Name: "五粮液", WeightPct: 3},
	}
	quotes := models.NewQuoteBatch(time.Now())
	quotes.Changes["600519"] = 10
	quotes.Changes["000858"] = -2
	quotes.Prices["600519"] = 1700
	quotes.Prices["000858"] = 140

	v, err := e.Estimate("001234", "测试基金", nav, holdings, quotes)
	require.NoError(t, err)
	assert.True(t, v.IsEstimated)
	// 5*10 + 3*(-2) = 44, damped by 100 -> 0.44%
	assert.InDelta(t, 0.44, v.ChangePct, 1e-9)
	assert.InDelta(t, 1.5066, v.CurrentPrice, 1e-9)
	assert.Equal(t, "(估)", v.AsOf)
	require.Len(t, v.Holdings, 2)
	assert.True(t, v.Holdings[0].Matched)
}

func TestEstimate_UnmatchedHoldingContributesNothing(t *testing.T) {
	e := newTestEstimator("2024-06-14")
	nav := []models.NavPoint{{Date: "2024-06-13", Nav: 2.0}}
	holdings := []models.HoldingEntry{
		{Code: "600519", Name: "贵州茅台", WeightPct: 5},
		{Code: "00700", Name: "腾讯控股", WeightPct: 8},
	}
	quotes := models.NewQuoteBatch(time.Now())
	quotes.Changes["600519"] = 2
	quotes.Prices["600519"] = 1700

	v, err := e.Estimate("001234", "测试基金", nav, holdings, quotes)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, v.ChangePct, 1e-9)
	require.Len(t, v.Holdings, 2)
	assert.False(t, v.Holdings[1].Matched)
	assert.Zero(t, v.Holdings[1].ChangePct)
}

func TestEstimate_OfficialNavForToday(t *testing.T) {
	e := newTestEstimator("2024-06-14")
	nav := []models.NavPoint{
		{Date: "2024-06-13", Nav: 1.960},
		{Date: "2024-06-14", Nav: 2.000},
	}

	v, err := e.Estimate("001234", "测试基金", nav, nil, nil)
	require.NoError(t, err)
	assert.False(t, v.IsEstimated)
	assert.Equal(t, "(官方净值)", v.AsOf)
	assert.InDelta(t, 2.000, v.CurrentPrice, 1e-9)
	assert.InDelta(t, 2.0408, v.ChangePct, 1e-3)
}

func TestEstimate_OfficialNavIgnoresLiveDeltas(t *testing.T) {
	e := newTestEstimator("2024-06-14")
	nav := []models.NavPoint{
		{Date: "2024-06-13", Nav: 1.960},
		{Date: "2024-06-14", Nav: 2.000},
	}
	holdings := []models.HoldingEntry{{Code: "600519", Name: "贵州茅台", WeightPct: 50}}
	quotes := models.NewQuoteBatch(time.Now())
	quotes.Prices["600519"] = 1700
	quotes.Changes["600519"] = 10

	v, err := e.Estimate("001234", "测试基金", nav, holdings, quotes)
	require.NoError(t, err)
	assert.False(t, v.IsEstimated)
	assert.InDelta(t, 2.0408, v.ChangePct, 1e-3)
	// Detail rows are still there for display.
	require.Len(t, v.Holdings, 1)
	assert.InDelta(t, 10, v.Holdings[0].ChangePct, 1e-9)
}

func TestEstimate_PartialCoverageNeverInflates(t *testing.T) {
	// Total disclosed weight 8% with every holding up: the estimate is
	// exactly the weighted contribution over 100, never scaled up.
	e := newTestEstimator("2024-06-14")
	nav := []models.NavPoint{{Date: "2024-06-13", Nav: 1.0}}
	holdings := []models.HoldingEntry{
		{Code: "600519", WeightPct: 5},
		{Code: "000858", WeightPct: 3},
	}
	quotes := models.NewQuoteBatch(time.Now())
	quotes.Prices["600519"] = 1700
	quotes.Changes["600519"] = 4
	quotes.Prices["000858"] = 140
	quotes.Changes["000858"] = 6

	v, err := e.Estimate("001234", "测试基金", nav, holdings, quotes)
	require.NoError(t, err)
	assert.InDelta(t, (5*4.0+3*6.0)/100, v.ChangePct, 1e-9)
}

func TestEstimate_OfficialNavSinglePoint(t *testing.T) {
	e := newTestEstimator("2024-06-14")
	nav := []models.NavPoint{{Date: "2024-06-14", Nav: 1.234}}

	v, err := e.Estimate("001234", "测试基金", nav, nil, nil)
	require.NoError(t, err)
	assert.False(t, v.IsEstimated)
	assert.Zero(t, v.ChangePct)
	assert.InDelta(t, 1.234, v.CurrentPrice, 1e-9)
}

func TestEstimate_NoHoldingsDegradesToZeroChange(t *testing.T) {
	e := newTestEstimator("2024-06-14")
	nav := []models.NavPoint{{Date: "2024-06-13", Nav: 1.5}}
	quotes := models.NewQuoteBatch(time.Now())
	quotes.Prices["600519"] = 1700
	quotes.Changes["600519"] = 2

	v, err := e.Estimate("001234", "测试基金", nav, nil, quotes)
	require.NoError(t, err)
	assert.False(t, v.IsEstimated)
	assert.Zero(t, v.ChangePct)
	assert.InDelta(t, 1.5, v.CurrentPrice, 1e-9)
	assert.Equal(t, "(无持仓数据)", v.AsOf)
}

func TestEstimate_NoQuotesDegradesToZeroChange(t *testing.T) {
	e := newTestEstimator("2024-06-14")
	nav := []models.NavPoint{{Date: "2024-06-13", Nav: 1.5}}
	holdings := []models.HoldingEntry{{Code: "600519", Name: "贵州茅台", WeightPct: 5}}

	v, err := e.Estimate("001234", "测试基金", nav, holdings, models.NewQuoteBatch(time.Now()))
	require.NoError(t, err)
	assert.False(t, v.IsEstimated)
	assert.Zero(t, v.ChangePct)
	assert.InDelta(t, 1.5, v.CurrentPrice, 1e-9)
	assert.Equal(t, "暂无实时 (昨日净值)", v.AsOf)
}

func TestEstimate_ZeroChangesStillEstimated(t *testing.T) {
	// Quotes present but every holding flat: an estimate of zero, not a
	// degraded state.
	e := newTestEstimator("2024-06-14")
	nav := []models.NavPoint{{Date: "2024-06-13", Nav: 1.5}}
	holdings := []models.HoldingEntry{{Code: "600519", Name: "贵州茅台", WeightPct: 5}}
	quotes := models.NewQuoteBatch(time.Now())
	quotes.Changes["600519"] = 0
	quotes.Prices["600519"] = 1700

	v, err := e.Estimate("001234", "测试基金", nav, holdings, quotes)
	require.NoError(t, err)
	assert.Equal(t, "(估)", v.AsOf)
	assert.Zero(t, v.ChangePct)
}
