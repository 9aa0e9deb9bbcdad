package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bobmcallan/navcast/internal/models"
)

// navHistoryResponse is the NAV history API envelope.
type navHistoryResponse struct {
	Data struct {
		LSJZList []navRow `json:"LSJZList"`
	} `json:"Data"`
	TotalCount int `json:"TotalCount"`
}

// navRow is one published NAV point: FSRQ is the disclosure date, DWJZ the
// unit NAV as a string.
type navRow struct {
	Date    string `json:"FSRQ"`
	UnitNav string `json:"DWJZ"`
}

// GetNavHistory retrieves up to limit NAV points for a fund, oldest first.
// The upstream requires a Referer header and answers newest first.
func (c *Client) GetNavHistory(ctx context.Context, fundCode string, limit int) ([]models.NavPoint, error) {
	if limit <= 0 {
		limit = 30
	}

	url := fmt.Sprintf("%s/f10/lsjz?fundCode=%s&pageIndex=1&pageSize=%d",
		c.apiBaseURL, fundCode, limit)
	referer := fmt.Sprintf("%s/jjjz_%s.html", c.f10BaseURL, fundCode)

	body, err := c.get(ctx, url, referer)
	if err != nil {
		return nil, fmt.Errorf("nav history fetch for %s: %w", fundCode, err)
	}

	var resp navHistoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("nav history decode for %s: %w", fundCode, err)
	}

	rows := resp.Data.LSJZList
	if len(rows) == 0 {
		return nil, models.ErrNoNavHistory
	}

	// Newest first upstream; reverse to oldest first and drop rows whose NAV
	// does not parse (suspended funds publish blank entries).
	points := make([]models.NavPoint, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		nav, err := strconv.ParseFloat(rows[i].UnitNav, 64)
		if err != nil {
			continue
		}
		points = append(points, models.NavPoint{Date: rows[i].Date, Nav: nav})
	}

	if len(points) == 0 {
		return nil, models.ErrNoNavHistory
	}
	return points, nil
}
