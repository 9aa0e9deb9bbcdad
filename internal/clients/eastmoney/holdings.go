package eastmoney

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bobmcallan/navcast/internal/models"
)

// quarterColumn is appended to every disclosure table so the holdings
// selector can order rows across reporting quarters.
const quarterColumn = "季度"

// GetHoldings retrieves the raw top-holdings disclosure table for a fund and
// year. The upstream answers with a JS assignment wrapping an HTML fragment
// of one table per reporting quarter, each preceded by a quarter label.
func (c *Client) GetHoldings(ctx context.Context, fundCode string, year int) (*models.DisclosureTable, error) {
	url := fmt.Sprintf("%s/FundArchivesDatas.aspx?type=jjcc&code=%s&topline=10&year=%d",
		c.f10BaseURL, fundCode, year)

	body, err := c.get(ctx, url, "")
	if err != nil {
		return nil, fmt.Errorf("holdings fetch for %s: %w", fundCode, err)
	}

	html, ok := extractContent(string(body))
	if !ok {
		return nil, models.ErrNoHoldings
	}

	table, err := parseDisclosureHTML(html)
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, models.ErrNoHoldings
	}

	c.logger.Debug().
		Str("fund", fundCode).
		Int("year", year).
		Int("rows", len(table.Rows)).
		Msg("Holdings disclosure fetched")

	return table, nil
}

// GetLatestHoldings retrieves the current year's disclosure, falling back to
// the prior year when the current year has none yet (early-year funds have
// not filed Q1 until late April).
func (c *Client) GetLatestHoldings(ctx context.Context, fundCode string) (*models.DisclosureTable, error) {
	year := c.now().Year()

	table, err := c.GetHoldings(ctx, fundCode, year)
	if err == nil {
		return table, nil
	}

	return c.GetHoldings(ctx, fundCode, year-1)
}

// extractContent pulls the HTML fragment out of the JS wrapper:
//
//	var apidata={ content:"...", arryear:[2025,2024], curyear:2025};
func extractContent(body string) (string, bool) {
	start := strings.Index(body, `content:"`)
	if start < 0 {
		return "", false
	}
	rest := body[start+len(`content:"`):]

	end := strings.Index(rest, `",`)
	if end < 0 {
		end = strings.LastIndex(rest, `"`)
		if end < 0 {
			return "", false
		}
	}
	return rest[:end], true
}

// parseDisclosureHTML flattens every quarter's table into one DisclosureTable
// with the quarter label as an extra column. Column headers vary across data
// vintages; they are passed through untouched for the selector to resolve.
func parseDisclosureHTML(html string) (*models.DisclosureTable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("holdings document parse: %w", err)
	}

	// Quarter labels precede their tables in document order.
	var labels []string
	doc.Find("h4 label").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if strings.Contains(text, "季度") || strings.Contains(text, "年度") {
			labels = append(labels, text)
		}
	})

	table := &models.DisclosureTable{}

	doc.Find("table").Each(func(i int, t *goquery.Selection) {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		headers := t.Find("thead th").Map(func(_ int, s *goquery.Selection) string {
			return strings.TrimSpace(s.Text())
		})
		if len(headers) == 0 {
			return
		}
		if len(table.Columns) == 0 {
			table.Columns = append(headers, quarterColumn)
		}

		t.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td").Map(func(_ int, s *goquery.Selection) string {
				return strings.TrimSpace(s.Text())
			})
			if len(cells) == 0 {
				return
			}
			// Pad short rows so column indexes stay aligned.
			for len(cells) < len(headers) {
				cells = append(cells, "")
			}
			table.Rows = append(table.Rows, append(cells[:len(headers)], label))
		})
	})

	return table, nil
}
