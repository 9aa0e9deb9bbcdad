// Package holdings selects a fund's latest-quarter top holdings from raw
// disclosure tables.
package holdings

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bobmcallan/navcast/internal/models"
	"github.com/bobmcallan/navcast/internal/securities"
)

// maxEntries is the top-10 disclosure convention.
const maxEntries = 10

// columnSpec locates one required column: exact header names first, then
// substring keyword fallback. Header naming drifts across data vintages.
type columnSpec struct {
	exact    []string
	keywords []string
}

var (
	quarterSpec = columnSpec{exact: []string{"季度"}, keywords: []string{"季度"}}
	weightSpec  = columnSpec{exact: []string{"占净值比例"}, keywords: []string{"占净值"}}
	codeSpec    = columnSpec{exact: []string{"股票代码"}, keywords: []string{"股票代码", "证券代码", "代码"}}
	nameSpec    = columnSpec{exact: []string{"股票名称"}, keywords: []string{"股票名称", "证券简称", "名称"}}
)

// resolveColumn finds the index of a column matching the spec.
func resolveColumn(columns []string, spec columnSpec) (int, bool) {
	for _, want := range spec.exact {
		for i, col := range columns {
			if col == want {
				return i, true
			}
		}
	}
	for i, col := range columns {
		for _, kw := range spec.keywords {
			if strings.Contains(col, kw) {
				return i, true
			}
		}
	}
	return 0, false
}

var (
	intPattern     = regexp.MustCompile(`\d+`)
	quarterPattern = regexp.MustCompile(`q([1-4])`)
)

// cnQuarters maps Chinese numeral quarter words to their number.
var cnQuarters = []struct {
	word string
	n    int
}{
	{"一季度", 1},
	{"二季度", 2},
	{"三季度", 3},
	{"四季度", 4},
}

// quarterKey orders quarter labels: first embedded integer is the year, a
// second is the quarter number. With only one integer, a "q1".."q4" pattern
// or a Chinese numeral quarter word supplies the quarter. Labels with no
// integers key to (-1,-1) so they sort last and are never selected as latest
// unless nothing else exists.
func quarterKey(label string) (int, int) {
	nums := intPattern.FindAllString(label, -1)
	if len(nums) == 0 {
		return -1, -1
	}

	year, _ := strconv.Atoi(nums[0])
	quarter := -1
	if len(nums) >= 2 {
		quarter, _ = strconv.Atoi(nums[1])
	} else {
		lower := strings.ToLower(label)
		if m := quarterPattern.FindStringSubmatch(lower); m != nil {
			quarter, _ = strconv.Atoi(m[1])
		} else {
			for _, cq := range cnQuarters {
				if strings.Contains(label, cq.word) {
					quarter = cq.n
					break
				}
			}
		}
	}
	return year, quarter
}

// keyLess reports whether (y1,q1) orders before (y2,q2).
func keyLess(y1, q1, y2, q2 int) bool {
	if y1 != y2 {
		return y1 < y2
	}
	return q1 < q2
}

// parseWeight coerces a disclosure weight cell ("8.12%") to a float.
// Non-numeric cells coerce to zero rather than failing the snapshot.
func parseWeight(cell string) float64 {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cell), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// SelectLatest returns the top holdings of the most recent reporting quarter
// in the table, weights descending, truncated to ten entries. Security codes
// are canonicalized, with Hong Kong listings forced to the 5-digit form.
//
// A table whose required columns cannot be resolved, or with no parseable
// quarter rows, yields an empty snapshot — a legitimate, common state, not
// an error.
func SelectLatest(table *models.DisclosureTable) []models.HoldingEntry {
	if table == nil || len(table.Columns) == 0 || len(table.Rows) == 0 {
		return nil
	}

	quarterCol, ok1 := resolveColumn(table.Columns, quarterSpec)
	weightCol, ok2 := resolveColumn(table.Columns, weightSpec)
	codeCol, ok3 := resolveColumn(table.Columns, codeSpec)
	nameCol, ok4 := resolveColumn(table.Columns, nameSpec)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}

	cell := func(row []string, col int) string {
		if col >= len(row) {
			return ""
		}
		return row[col]
	}

	// Find the maximum quarter key present.
	bestYear, bestQuarter, found := -1, -1, false
	for _, row := range table.Rows {
		label := cell(row, quarterCol)
		if strings.TrimSpace(label) == "" {
			continue
		}
		y, q := quarterKey(label)
		if !found || keyLess(bestYear, bestQuarter, y, q) {
			bestYear, bestQuarter, found = y, q, true
		}
	}
	if !found {
		return nil
	}

	var entries []models.HoldingEntry
	for _, row := range table.Rows {
		label := cell(row, quarterCol)
		if strings.TrimSpace(label) == "" {
			continue
		}
		if y, q := quarterKey(label); y != bestYear || q != bestQuarter {
			continue
		}

		rawCode := cell(row, codeCol)
		name := cell(row, nameCol)

		code := securities.Normalize(rawCode)
		if securities.IsHongKong(rawCode, name) {
			// HK listings forced to the 5-digit zero-padded form even when
			// 6-digit truncation would have produced something else.
			code = securities.NormalizeHK(rawCode)
		}

		entries = append(entries, models.HoldingEntry{
			Code:      code,
			Name:      name,
			WeightPct: parseWeight(cell(row, weightCol)),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].WeightPct > entries[j].WeightPct
	})
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	return entries
}
