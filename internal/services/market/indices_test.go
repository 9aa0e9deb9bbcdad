package market

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/navcast/internal/common"
	"github.com/bobmcallan/navcast/internal/models"
)

type mockQuoteClient struct {
	indices map[string]models.IndexQuote
}

func (m *mockQuoteClient) FetchQuotes(ctx context.Context, codes []string) *models.QuoteBatch {
	return models.NewQuoteBatch(time.Now())
}

func (m *mockQuoteClient) FetchIndexQuotes(ctx context.Context, symbols []string) map[string]models.IndexQuote {
	return m.indices
}

func TestIndexBoard_StableShapeWithMissingSymbols(t *testing.T) {
	client := &mockQuoteClient{indices: map[string]models.IndexQuote{
		"sh000001": {Symbol: "sh000001", Price: 3015.2, ChangePct: 0.45},
	}}
	svc := NewService(client, common.NewSilentLogger())

	board := svc.IndexBoard(context.Background())
	require.Len(t, board, 4)

	assert.Equal(t, "上证指数", board[0].Name)
	assert.InDelta(t, 3015.2, board[0].Price, 1e-9)

	assert.Equal(t, "深证成指", board[1].Name)
	assert.Zero(t, board[1].Price)
	assert.Zero(t, board[1].ChangePct)
	assert.Equal(t, "sz399001", board[1].Symbol)
}

func TestIndexBoard_AllResolved(t *testing.T) {
	client := &mockQuoteClient{indices: map[string]models.IndexQuote{
		"sh000001": {Symbol: "sh000001", Price: 3015.2, ChangePct: 0.45},
		"sz399001": {Symbol: "sz399001", Price: 9200.1, ChangePct: -0.2},
		"sz399006": {Symbol: "sz399006", Price: 1800.5, ChangePct: 1.1},
		"sh000688": {Symbol: "sh000688", Price: 750.3, ChangePct: 0.8},
	}}
	svc := NewService(client, common.NewSilentLogger())

	board := svc.IndexBoard(context.Background())
	require.Len(t, board, 4)
	for _, q := range board {
		assert.NotZero(t, q.Price)
		assert.NotEmpty(t, q.Name)
	}
}
