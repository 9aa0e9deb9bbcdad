package valuation

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/navcast/internal/cache"
	"github.com/bobmcallan/navcast/internal/common"
	"github.com/bobmcallan/navcast/internal/interfaces"
	"github.com/bobmcallan/navcast/internal/models"
	"github.com/bobmcallan/navcast/internal/services/holdings"
)

const (
	boardTTL     = 60 * time.Second
	holdingsTTL  = 24 * time.Hour
	navTTL       = time.Hour
	directoryTTL = time.Hour

	fetchWorkers    = 3
	fetchJitterMax  = 300 * time.Millisecond
	defaultNavLimit = 30

	directoryKey = "directory"
)

// Service implements interfaces.ValuationService on top of the quote and
// fund-data clients, with per-concern TTL caches in front of the upstreams.
type Service struct {
	quotes    interfaces.QuoteClient
	fundData  interfaces.FundDataClient
	estimator *Estimator
	logger    *common.Logger

	boardCache    *cache.TTLCache[string, *models.ValuationBoard]
	holdingsCache *cache.TTLCache[string, []models.HoldingEntry]
	navCache      *cache.TTLCache[string, []models.NavPoint]
	dirCache      *cache.TTLCache[string, []models.FundInfo]
}

var _ interfaces.ValuationService = (*Service)(nil)

func NewService(quotes interfaces.QuoteClient, fundData interfaces.FundDataClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewDefaultLogger()
	}
	return &Service{
		quotes:        quotes,
		fundData:      fundData,
		estimator:     NewEstimator(),
		logger:        logger,
		boardCache:    cache.NewTTL[string, *models.ValuationBoard](boardTTL),
		holdingsCache: cache.NewTTL[string, []models.HoldingEntry](holdingsTTL),
		navCache:      cache.NewTTL[string, []models.NavPoint](navTTL),
		dirCache:      cache.NewTTL[string, []models.FundInfo](directoryTTL),
	}
}

// fundInputs is one fund's fetched raw material for estimation.
type fundInputs struct {
	record   models.FundRecord
	holdings []models.HoldingEntry
	nav      []models.NavPoint
}

// EstimateAll computes valuations for all given funds. Each fund's holdings
// and NAV history are fetched by a small worker pool, the union of holding
// identifiers goes out as one quote batch, and every fund is estimated
// independently so one bad fund cannot take down the board.
func (s *Service) EstimateAll(ctx context.Context, funds []models.FundRecord, force bool) *models.ValuationBoard {
	key := boardKey(funds)
	if !force {
		if board, ok := s.boardCache.Get(key); ok {
			return board
		}
	}

	inputs := s.gatherInputs(ctx, funds)

	codeSet := make(map[string]bool)
	for _, in := range inputs {
		for _, h := range in.holdings {
			codeSet[h.Code] = true
		}
	}
	codes := make([]string, 0, len(codeSet))
	for c := range codeSet {
		codes = append(codes, c)
	}
	quotes := s.quotes.FetchQuotes(ctx, codes)

	board := &models.ValuationBoard{
		Results:   make(map[string]*models.Valuation, len(funds)),
		UpdatedAt: time.Now(),
	}
	for _, in := range inputs {
		board.Results[in.record.Code] = s.estimateOne(in, quotes)
	}

	s.boardCache.Set(key, board)
	return board
}

// gatherInputs fetches holdings and NAV history for each fund using a small
// worker pool with jittered starts, keeping upstream request bursts gentle.
func (s *Service) gatherInputs(ctx context.Context, funds []models.FundRecord) []fundInputs {
	inputs := make([]fundInputs, len(funds))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < fetchWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				time.Sleep(time.Duration(rand.Int63n(int64(fetchJitterMax))))
				rec := funds[i]
				inputs[i] = fundInputs{
					record:   rec,
					holdings: s.holdingsFor(ctx, rec.Code),
					nav:      s.navFor(ctx, rec.Code, defaultNavLimit),
				}
			}
		}()
	}

dispatch:
	for i := range funds {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	// Funds skipped by cancellation still need their record attached so the
	// board carries an entry for every input code.
	for i := range inputs {
		if inputs[i].record.Code == "" {
			inputs[i].record = funds[i]
		}
	}
	return inputs
}

// estimateOne runs the estimator for a single fund, converting any error or
// panic into a nil board entry.
func (s *Service) estimateOne(in fundInputs, quotes *models.QuoteBatch) (v *models.Valuation) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("fund", in.record.Code).
				Interface("panic", r).
				Msg("Valuation panicked")
			v = nil
		}
	}()

	v, err := s.estimator.Estimate(in.record.Code, in.record.Name, in.nav, in.holdings, quotes)
	if err != nil {
		s.logger.Warn().
			Str("fund", in.record.Code).
			Err(err).
			Msg("Fund could not be valued")
		return nil
	}
	return v
}

// holdingsFor returns the fund's latest-quarter top holdings, cached for a
// day. A fund with no disclosure caches an empty snapshot so the upstream is
// not re-hit on every board refresh.
func (s *Service) holdingsFor(ctx context.Context, fundCode string) []models.HoldingEntry {
	if cached, ok := s.holdingsCache.Get(fundCode); ok {
		return cached
	}

	table, err := s.fundData.GetLatestHoldings(ctx, fundCode)
	if err != nil {
		s.logger.Warn().Str("fund", fundCode).Err(err).Msg("No holdings disclosure")
		s.holdingsCache.Set(fundCode, nil)
		return nil
	}

	entries := holdings.SelectLatest(table)
	s.holdingsCache.Set(fundCode, entries)
	return entries
}

// navFor returns the fund's NAV history tail, cached for an hour.
func (s *Service) navFor(ctx context.Context, fundCode string, limit int) []models.NavPoint {
	cacheKey := fmt.Sprintf("%s:%d", fundCode, limit)
	if cached, ok := s.navCache.Get(cacheKey); ok {
		return cached
	}

	nav, err := s.fundData.GetNavHistory(ctx, fundCode, limit)
	if err != nil {
		s.logger.Warn().Str("fund", fundCode).Err(err).Msg("No NAV history")
		return nil
	}

	s.navCache.Set(cacheKey, nav)
	return nav
}

// NavHistory returns the tail of the fund's NAV series, oldest first.
func (s *Service) NavHistory(ctx context.Context, fundCode string, limit int) ([]models.NavPoint, error) {
	if limit <= 0 {
		limit = defaultNavLimit
	}
	cacheKey := fmt.Sprintf("%s:%d", fundCode, limit)
	if cached, ok := s.navCache.Get(cacheKey); ok {
		return cached, nil
	}

	nav, err := s.fundData.GetNavHistory(ctx, fundCode, limit)
	if err != nil {
		return nil, err
	}
	s.navCache.Set(cacheKey, nav)
	return nav, nil
}

// SearchFunds filters the fund directory by code prefix or name substring.
func (s *Service) SearchFunds(ctx context.Context, query string, limit int) ([]models.FundInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	dir, ok := s.dirCache.Get(directoryKey)
	if !ok {
		var err error
		dir, err = s.fundData.GetFundDirectory(ctx)
		if err != nil {
			return nil, err
		}
		s.dirCache.Set(directoryKey, dir)
	}

	var matches []models.FundInfo
	for _, f := range dir {
		if strings.HasPrefix(f.Code, query) || strings.Contains(f.Name, query) {
			matches = append(matches, f)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches, nil
}

// WarmHoldings re-fetches holdings disclosures for the given funds ahead of
// need, replacing whatever the cache holds.
func (s *Service) WarmHoldings(ctx context.Context, codes []string) {
	for _, code := range codes {
		if ctx.Err() != nil {
			return
		}
		s.holdingsCache.Delete(code)
		entries := s.holdingsFor(ctx, code)
		s.logger.Debug().
			Str("fund", code).
			Int("holdings", len(entries)).
			Msg("Holdings refreshed")
		time.Sleep(time.Duration(rand.Int63n(int64(fetchJitterMax))))
	}
}

// boardKey derives a cache key from the fund set, order-insensitive.
func boardKey(funds []models.FundRecord) string {
	codes := make([]string, 0, len(funds))
	for _, f := range funds {
		codes = append(codes, f.Code)
	}
	sort.Strings(codes)
	return strings.Join(codes, ",")
}
