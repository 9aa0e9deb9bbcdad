package tencent

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/bobmcallan/navcast/internal/common"
	"github.com/bobmcallan/navcast/internal/models"
)

// feedLine builds one feed record with the given percent-change field at
// index 32 (or without one when pct is empty).
func feedLine(key, name string, price, prevClose float64, pct string) string {
	fields := make([]string, 33)
	fields[1] = name
	fields[2] = strings.TrimLeft(key, "shzbjk")
	fields[3] = fmt.Sprintf("%.2f", price)
	fields[4] = fmt.Sprintf("%.2f", prevClose)
	if pct == "" {
		fields = fields[:10] // short record, no index 32
	} else {
		fields[32] = pct
	}
	return fmt.Sprintf("v_%s=\"%s\";", key, strings.Join(fields, "~"))
}

// gbk encodes a UTF-8 string the way the upstream feed does.
func gbk(t *testing.T, s string) []byte {
	t.Helper()
	out, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("gbk encode: %v", err)
	}
	return out
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]ClientOption{
		WithBaseURL(srv.URL),
		WithLogger(common.NewSilentLogger()),
		WithRateLimit(1000),
	}, opts...)
	return NewClient(opts...)
}

func TestFetchQuotes_ParsesFeed(t *testing.T) {
	body := feedLine("sh600519", "贵州茅台", 1700.00, 1690.00, "0.59") +
		feedLine("hk00700", "腾讯控股", 400.00, 410.00, "-2.44")

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(gbk(t, body))
	})

	batch := c.FetchQuotes(context.Background(), []string{"600519", "00700"})

	if batch.Prices["600519"] != 1700.00 {
		t.Errorf("price[600519] = %v, want 1700", batch.Prices["600519"])
	}
	if batch.Changes["600519"] != 0.59 {
		t.Errorf("change[600519] = %v, want 0.59", batch.Changes["600519"])
	}
	if batch.Names["600519"] != "贵州茅台" {
		t.Errorf("name[600519] = %q, GBK decode failed", batch.Names["600519"])
	}
	if batch.Changes["00700"] != -2.44 {
		t.Errorf("change[00700] = %v, want -2.44", batch.Changes["00700"])
	}
}

func TestFetchQuotes_DerivesChangeWhenFieldMissing(t *testing.T) {
	// No index-32 field: change derived from (latest-prev)/prev*100.
	body := feedLine("sz000858", "WLY", 110.00, 100.00, "")

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(gbk(t, body))
	})

	batch := c.FetchQuotes(context.Background(), []string{"000858"})

	got := batch.Changes["000858"]
	if got < 9.99 || got > 10.01 {
		t.Errorf("derived change = %v, want ~10.0", got)
	}
}

func TestFetchQuotes_ZeroPrevCloseNoDivide(t *testing.T) {
	body := feedLine("sz300750", "CATL", 200.00, 0, "")

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(gbk(t, body))
	})

	batch := c.FetchQuotes(context.Background(), []string{"300750"})
	if batch.Changes["300750"] != 0 {
		t.Errorf("change with zero prev close = %v, want 0", batch.Changes["300750"])
	}
}

func TestFetchQuotes_UnroutableDropped(t *testing.T) {
	var requested string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.RawQuery + r.URL.Path
		w.Write(gbk(t, feedLine("sh600519", "GZMT", 1700, 1690, "0.59")))
	})

	batch := c.FetchQuotes(context.Background(), []string{"600519", "", "abc", "1234567"})

	if strings.Contains(requested, "1234567") {
		t.Error("unroutable code leaked into the request")
	}
	if len(batch.Prices) != 1 {
		t.Errorf("expected 1 resolved quote, got %d", len(batch.Prices))
	}
}

func TestFetchQuotes_PartialChunkFailure(t *testing.T) {
	// Chunk size 10, 100 identifiers -> 10 chunks. The chunk containing
	// sz000020 fails; every other chunk succeeds.
	codes := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		codes = append(codes, fmt.Sprintf("0000%02d", i))
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.String()
		if strings.Contains(path, "sz000020") {
			http.Error(w, "upstream error", http.StatusInternalServerError)
			return
		}
		var lines []string
		for _, key := range strings.Split(strings.TrimPrefix(r.URL.Path, "/q="), ",") {
			lines = append(lines, feedLine(key, "X", 10.0, 9.0, "1.00"))
		}
		w.Write(gbk(t, strings.Join(lines, "")))
	}, WithBatchSize(10))

	batch := c.FetchQuotes(context.Background(), codes)

	if len(batch.Prices) != 90 {
		t.Fatalf("expected 90 quotes from surviving chunks, got %d", len(batch.Prices))
	}
	if _, ok := batch.Prices["000020"]; ok {
		t.Error("failed chunk's identifier should be omitted, not errored")
	}
	if _, ok := batch.Prices["000035"]; !ok {
		t.Error("identifier from a healthy chunk is missing")
	}
}

func TestFetchQuotes_TotalFailureFallsBackToLastGood(t *testing.T) {
	healthy := true
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		w.Write(gbk(t, feedLine("sh600519", "GZMT", 1700, 1690, "0.59")+
			feedLine("sz000858", "WLY", 110, 100, "10.00")))
	})

	// Seed the last-known-good slot.
	first := c.FetchQuotes(context.Background(), []string{"600519", "000858"})
	if first.Empty() {
		t.Fatal("seed fetch failed")
	}

	healthy = false
	second := c.FetchQuotes(context.Background(), []string{"600519"})

	if second.Prices["600519"] != 1700 {
		t.Errorf("fallback price = %v, want 1700", second.Prices["600519"])
	}
	if _, ok := second.Prices["000858"]; ok {
		t.Error("fallback must be filtered to the requested identifiers")
	}
}

func TestFetchQuotes_TotalFailureNoFallbackReturnsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	batch := c.FetchQuotes(context.Background(), []string{"600519"})
	if !batch.Empty() {
		t.Errorf("expected empty batch, got %d quotes", len(batch.Prices))
	}
}

func TestFetchIndexQuotes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(gbk(t, feedLine("sh000001", "上证指数", 3250.55, 3240.00, "0.33")))
	})

	quotes := c.FetchIndexQuotes(context.Background(), []string{"sh000001"})

	q, ok := quotes["sh000001"]
	if !ok {
		t.Fatal("index quote missing")
	}
	if q.Price != 3250.55 || q.ChangePct != 0.33 {
		t.Errorf("index quote = %+v", q)
	}
	if q.Name != "上证指数" {
		t.Errorf("index name = %q", q.Name)
	}
}

func TestParseRecords_MalformedLinesDropped(t *testing.T) {
	text := `garbage;v_sh600519="1~GZMT~600519~1700.00~1690.00";no_equals_here;v_short="1~2";`
	records := parseRecords(text)
	if len(records) != 1 {
		t.Fatalf("expected 1 valid record, got %d", len(records))
	}
	if records[0].key != "sh600519" {
		t.Errorf("key = %q", records[0].key)
	}
}

func TestFallback_ReplaceIgnoresEmpty(t *testing.T) {
	f := NewFallback()
	seed := models.NewQuoteBatch(time.Now())
	seed.Prices["600519"] = 1700
	seed.Changes["600519"] = 0.5
	f.Replace(seed)

	f.Replace(models.NewQuoteBatch(time.Now())) // must not clobber

	got := f.Filtered(map[string]bool{"600519": true})
	if got.Prices["600519"] != 1700 {
		t.Error("empty replace clobbered last-known-good data")
	}
}
