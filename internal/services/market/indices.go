// Package market provides the headline index board.
package market

import (
	"context"

	"github.com/bobmcallan/navcast/internal/common"
	"github.com/bobmcallan/navcast/internal/interfaces"
	"github.com/bobmcallan/navcast/internal/models"
)

// indexTarget is a headline index tracked on the board.
type indexTarget struct {
	Name   string
	Symbol string
}

// boardTargets are the indices shown on the board, in display order.
var boardTargets = []indexTarget{
	{Name: "上证指数", Symbol: "sh000001"},
	{Name: "深证成指", Symbol: "sz399001"},
	{Name: "创业板指", Symbol: "sz399006"},
	{Name: "科创50", Symbol: "sh000688"},
}

// Service implements interfaces.MarketService.
type Service struct {
	quotes interfaces.QuoteClient
	logger *common.Logger
}

var _ interfaces.MarketService = (*Service)(nil)

func NewService(quotes interfaces.QuoteClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewDefaultLogger()
	}
	return &Service{quotes: quotes, logger: logger}
}

// IndexBoard returns the configured headline indices in a fixed order.
// Indices the feed could not resolve appear with zero price and change, so
// the board shape is stable for consumers.
func (s *Service) IndexBoard(ctx context.Context) []models.IndexQuote {
	symbols := make([]string, len(boardTargets))
	for i, t := range boardTargets {
		symbols[i] = t.Symbol
	}

	fetched := s.quotes.FetchIndexQuotes(ctx, symbols)

	board := make([]models.IndexQuote, len(boardTargets))
	for i, t := range boardTargets {
		if q, ok := fetched[t.Symbol]; ok {
			q.Name = t.Name
			board[i] = q
			continue
		}
		s.logger.Debug().Str("symbol", t.Symbol).Msg("Index quote missing")
		board[i] = models.IndexQuote{Name: t.Name, Symbol: t.Symbol}
	}
	return board
}
