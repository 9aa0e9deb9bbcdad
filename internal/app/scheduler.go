package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/navcast/internal/common"
	"github.com/bobmcallan/navcast/internal/interfaces"
)

// scheduler runs the periodic valuation refresh and the daily holdings
// re-fetch.
type scheduler struct {
	funds      interfaces.FundStore
	valuations interfaces.ValuationService
	logger     *common.Logger
	interval   time.Duration
	cron       *cron.Cron
	cancel     context.CancelFunc
}

func newScheduler(a *App) (*scheduler, error) {
	s := &scheduler{
		funds:      a.FundStore,
		valuations: a.ValuationService,
		logger:     a.Logger,
		interval:   a.Config.Refresh.GetQuoteInterval(),
		cron:       cron.New(),
	}

	spec := a.Config.Refresh.HoldingsCron
	if _, err := s.cron.AddFunc(spec, s.warmHoldings); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *scheduler) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.runValuationLoop(ctx)
	s.cron.Start()
}

func (s *scheduler) stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	<-s.cron.Stop().Done()
}

// runValuationLoop keeps the valuation board warm so API reads during
// trading hours hit a fresh cache.
func (s *scheduler) runValuationLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Valuation scheduler: stopped")
			return
		case <-ticker.C:
			s.refreshValuations(ctx)
		}
	}
}

func (s *scheduler) refreshValuations(ctx context.Context) {
	start := time.Now()

	funds := s.funds.Load(ctx)
	if len(funds) == 0 {
		return
	}

	board := s.valuations.EstimateAll(ctx, funds, true)

	valued := 0
	for _, v := range board.Results {
		if v != nil {
			valued++
		}
	}
	s.logger.Info().
		Int("funds", len(funds)).
		Int("valued", valued).
		Dur("elapsed", time.Since(start)).
		Msg("Valuation refresh: complete")
}

// warmHoldings re-fetches holdings disclosures after the evening NAV
// publication window so the next trading day starts with fresh snapshots.
func (s *scheduler) warmHoldings() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	funds := s.funds.Load(ctx)
	codes := make([]string, 0, len(funds))
	for _, f := range funds {
		codes = append(codes, f.Code)
	}
	if len(codes) == 0 {
		return
	}

	s.logger.Info().Int("funds", len(codes)).Msg("Holdings warm: starting")
	s.valuations.WarmHoldings(ctx, codes)
}
