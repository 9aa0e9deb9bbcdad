package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bobmcallan/navcast/internal/models"
)

// GetFundDirectory retrieves the full fund directory used for add/search.
// The upstream is a JS assignment over a JSON array of string tuples:
//
//	var r = [["000001","HXCZHH","华夏成长混合","混合型-灵活","HUAXIACHENGZHANGHUNHE"],...];
func (c *Client) GetFundDirectory(ctx context.Context) ([]models.FundInfo, error) {
	url := c.dirBaseURL + "/js/fundcode_search.js"

	body, err := c.get(ctx, url, "")
	if err != nil {
		return nil, fmt.Errorf("fund directory fetch: %w", err)
	}

	text := string(body)
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("fund directory: unexpected payload shape")
	}

	var tuples [][]string
	if err := json.Unmarshal([]byte(text[start:end+1]), &tuples); err != nil {
		return nil, fmt.Errorf("fund directory decode: %w", err)
	}

	funds := make([]models.FundInfo, 0, len(tuples))
	for _, t := range tuples {
		if len(t) < 3 || t[0] == "" {
			continue
		}
		funds = append(funds, models.FundInfo{Code: t[0], Name: t[2]})
	}

	c.logger.Debug().Int("funds", len(funds)).Msg("Fund directory fetched")
	return funds, nil
}
