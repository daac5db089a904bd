// Package filestore reads disk-resident candle interval files as produced
// by the harvest/merge data pipeline: one directory of
// TICKER_INTERVAL_*.json files, where raw day files carry bare "HH:MM"
// times and merged master files carry full ISO timestamps.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"sim_backend/internal/feature/replay/domain"
	"sim_backend/internal/feature/replay/domain/entity"
)

const maxReadRetries = 2

var fileDatePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)

// Store is a read-only candle store over a data directory.
type Store struct {
	dataDir string
}

// NewStore はデータディレクトリを指すStoreを生成します。
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// ReadSeries reads, merges and normalizes every file of the given
// ticker+interval into one ascending, deduplicated series with epoch-ms
// UTC timestamps. Rows whose time field cannot be parsed are skipped and
// counted, never dropped silently.
func (s *Store) ReadSeries(ctx context.Context, ticker string, interval entity.Interval) (entity.Series, error) {
	pattern := filepath.Join(s.dataDir, fmt.Sprintf("%s_%s_*.json", ticker, interval))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return entity.Series{}, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(files) == 0 {
		return entity.Series{}, fmt.Errorf("%w: %s %s", domain.ErrNotFound, ticker, interval)
	}
	sort.Strings(files)

	series := entity.Series{Ticker: ticker, Interval: interval}
	byTime := map[int64]bool{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return entity.Series{}, err
		}
		candles, skipped, err := s.readFile(ctx, file)
		if err != nil {
			return entity.Series{}, err
		}
		series.SkippedRows += skipped
		for _, c := range candles {
			if byTime[c.Time] {
				continue // later files never override an earlier bucket
			}
			byTime[c.Time] = true
			series.Candles = append(series.Candles, c)
		}
	}
	sort.Slice(series.Candles, func(i, j int) bool {
		return series.Candles[i].Time < series.Candles[j].Time
	})
	if series.SkippedRows > 0 {
		slog.Warn("skipped malformed candle rows",
			"ticker", ticker, "interval", interval, "skipped", series.SkippedRows)
	}
	return series, nil
}

// ListIntervals reports which interval series exist for the ticker,
// finest first. domain.ErrNotFound when the ticker has no files at all.
func (s *Store) ListIntervals(ctx context.Context, ticker string) ([]entity.Interval, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := filepath.Glob(filepath.Join(s.dataDir, ticker+"_*.json"))
	if err != nil {
		return nil, err
	}
	found := map[entity.Interval]bool{}
	for _, file := range files {
		if iv, ok := intervalFromFilename(filepath.Base(file), ticker); ok {
			found[iv] = true
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ticker)
	}
	var out []entity.Interval
	for _, iv := range entity.Intervals {
		if found[iv] {
			out = append(out, iv)
		}
	}
	return out, nil
}

// List enumerates every ticker in the data directory with its available
// intervals, for the simulation ticker picker.
func (s *Store) List(ctx context.Context) (map[string][]entity.Interval, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := filepath.Glob(filepath.Join(s.dataDir, "*_*.json"))
	if err != nil {
		return nil, err
	}
	tickers := map[string]map[entity.Interval]bool{}
	for _, file := range files {
		base := filepath.Base(file)
		ticker, rest, ok := strings.Cut(base, "_")
		if !ok || ticker == "" {
			continue
		}
		ivToken, _, ok := strings.Cut(rest, "_")
		if !ok {
			continue
		}
		iv, err := entity.ParseInterval(ivToken)
		if err != nil {
			continue
		}
		if tickers[ticker] == nil {
			tickers[ticker] = map[entity.Interval]bool{}
		}
		tickers[ticker][iv] = true
	}
	out := make(map[string][]entity.Interval, len(tickers))
	for ticker, ivs := range tickers {
		for _, iv := range entity.Intervals {
			if ivs[iv] {
				out[ticker] = append(out[ticker], iv)
			}
		}
	}
	return out, nil
}

// readFile loads one data file with bounded retry on transient I/O errors.
func (s *Store) readFile(ctx context.Context, path string) ([]entity.Candle, int, error) {
	var raw []byte
	op := func() error {
		b, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		raw = b
		return nil
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxReadRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	return parseFile(raw, fileDate(filepath.Base(path)))
}

// fileDate extracts the YYYY-MM-DD token of a raw day file's name; merged
// master files without one return "".
func fileDate(base string) string {
	return fileDatePattern.FindString(base)
}

func intervalFromFilename(base, ticker string) (entity.Interval, bool) {
	rest, ok := strings.CutPrefix(base, ticker+"_")
	if !ok {
		return "", false
	}
	token, _, ok := strings.Cut(rest, "_")
	if !ok {
		return "", false
	}
	iv, err := entity.ParseInterval(token)
	if err != nil {
		return "", false
	}
	return iv, true
}

// fileEnvelope tolerates the envelope variants seen in the wild:
// {"candles":[...]}, {"data":[...]}, {"klines":[...]} or a bare array.
type fileEnvelope struct {
	Candles []rawCandle `json:"candles"`
	Data    []rawCandle `json:"data"`
	Klines  []rawCandle `json:"klines"`
}

// rawCandle accepts both the short (t/o/h/l/c/v) and long
// (time/open/high/low/close/volume) key styles.
type rawCandle struct {
	T         json.RawMessage `json:"t"`
	Time      json.RawMessage `json:"time"`
	Timestamp json.RawMessage `json:"timestamp"`

	O *float64 `json:"o"`
	H *float64 `json:"h"`
	L *float64 `json:"l"`
	C *float64 `json:"c"`
	V *float64 `json:"v"`

	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *float64 `json:"volume"`
}

func parseFile(raw []byte, dayDate string) ([]entity.Candle, int, error) {
	var rows []rawCandle
	if err := json.Unmarshal(raw, &rows); err != nil {
		var env fileEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, 0, fmt.Errorf("malformed data file: %w", err)
		}
		switch {
		case len(env.Candles) > 0:
			rows = env.Candles
		case len(env.Data) > 0:
			rows = env.Data
		default:
			rows = env.Klines
		}
	}

	candles := make([]entity.Candle, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		ts, err := parseTimestamp(firstRaw(r.T, r.Time, r.Timestamp), dayDate)
		if err != nil {
			skipped++
			continue
		}
		candles = append(candles, entity.Candle{
			Time:   ts,
			Open:   firstFloat(r.O, r.Open),
			High:   firstFloat(r.H, r.High),
			Low:    firstFloat(r.L, r.Low),
			Close:  firstFloat(r.C, r.Close),
			Volume: firstFloat(r.V, r.Volume),
		})
	}
	return candles, skipped, nil
}

func firstRaw(vals ...json.RawMessage) json.RawMessage {
	for _, v := range vals {
		if len(v) > 0 && string(v) != "null" {
			return v
		}
	}
	return nil
}

func firstFloat(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

// parseTimestamp normalizes a raw time value to epoch milliseconds UTC.
// Numeric values are epoch seconds or milliseconds; ISO strings are parsed
// as written; a bare "HH:MM" clock is joined with the file's date token and
// interpreted as UTC — the raw day files carry UTC clocks even though they
// look local.
func parseTimestamp(raw json.RawMessage, dayDate string) (int64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing time field")
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		ms := int64(n)
		if ms < 1e12 { // epoch seconds
			ms *= 1000
		}
		return ms, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("unparseable time value %s", string(raw))
	}
	s = strings.TrimSpace(s)

	if strings.Contains(s, "T") {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().UnixMilli(), nil
			}
		}
		return 0, fmt.Errorf("unparseable ISO time %q", s)
	}

	// Bare clock: needs the day date from the filename.
	if dayDate == "" {
		return 0, fmt.Errorf("bare clock %q without a file date", s)
	}
	if _, err := strconv.Atoi(strings.SplitN(s, ":", 2)[0]); err != nil {
		return 0, fmt.Errorf("unparseable clock %q", s)
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, dayDate+" "+s); err == nil {
			return t.UTC().UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("unparseable clock %q", s)
}
