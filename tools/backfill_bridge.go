// Fetch bars from the MT5 bridge sidecar's /history endpoint and write CSV
// for offline analysis. PaperBroker does not read this CSV; it synthesizes
// its own random walk.
//
// Usage:
//
//	BRIDGE_URL=http://localhost:8787 go run ./tools/backfill_bridge.go \
//	  -symbol EURUSD -count 500 -out data/EURUSD.csv
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type barRow struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

func main() {
	var (
		symbol  = flag.String("symbol", "EURUSD", "Symbol (e.g., EURUSD)")
		count   = flag.Int("count", 500, "Bars to fetch")
		outPath = flag.String("out", "data/EURUSD.csv", "Output CSV path")
	)
	flag.Parse()

	bridgeURL := getenv("BRIDGE_URL", "http://127.0.0.1:8787")
	u := fmt.Sprintf("%s/history?symbol=%s&count=%d", trimRightSlash(bridgeURL), url.QueryEscape(*symbol), *count)

	resp, err := http.Get(u)
	if err != nil {
		panic(fmt.Errorf("GET %s: %w", u, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		panic(fmt.Errorf("bridge /history status %d", resp.StatusCode))
	}

	var rows []barRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		panic(fmt.Errorf("decode JSON: %w", err))
	}
	if len(rows) == 0 {
		panic("no bars returned")
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Time < rows[j].Time })

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		panic(err)
	}
	f, err := os.Create(*outPath)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "open", "high", "low", "close"}); err != nil {
		panic(err)
	}
	for _, r := range rows {
		ts := time.Unix(r.Time, 0).UTC().Format(time.RFC3339)
		rec := []string{ts, fmt.Sprintf("%g", r.Open), fmt.Sprintf("%g", r.High), fmt.Sprintf("%g", r.Low), fmt.Sprintf("%g", r.Close)}
		if err := w.Write(rec); err != nil {
			panic(err)
		}
	}

	fmt.Printf("Wrote %s (%d rows)\n", *outPath, len(rows))
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func trimRightSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
