// Package datasource loads price bars and article sentiment scores from
// per-symbol CSV files on disk.
package datasource

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/rxtech-lab/sentiment-backtest/internal/logger"
	"github.com/rxtech-lab/sentiment-backtest/internal/types"
	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

var barColumns = []string{"date", "open", "high", "low", "close", "volume"}

// csvDate accepts both plain dates and RFC 3339 timestamps.
type csvDate struct {
	time.Time
}

func (d *csvDate) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return errors.Newf(errors.ErrCodeDataParseFailed, "unrecognized date %q", value)
}

type barRow struct {
	Date   csvDate `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// CSVBarSource reads daily OHLCV history from <dir>/<SYMBOL>.csv. Files are
// parsed once and cached for the lifetime of the source.
type CSVBarSource struct {
	dir   string
	log   *logger.Logger
	cache map[string][]types.Bar
}

func NewCSVBarSource(dir string, log *logger.Logger) *CSVBarSource {
	return &CSVBarSource{
		dir:   dir,
		log:   log,
		cache: make(map[string][]types.Bar),
	}
}

func (s *CSVBarSource) FetchBars(symbol string, start, end time.Time) ([]types.Bar, error) {
	bars, ok := s.cache[symbol]
	if !ok {
		loaded, err := s.load(symbol)
		if err != nil {
			return nil, err
		}
		s.cache[symbol] = loaded
		bars = loaded
	}

	var filtered []types.Bar
	for _, bar := range bars {
		if bar.Time.Before(start) || bar.Time.After(end) {
			continue
		}
		filtered = append(filtered, bar)
	}

	return filtered, nil
}

func (s *CSVBarSource) load(symbol string) ([]types.Bar, error) {
	path := filepath.Join(s.dir, symbol+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataFetchFailed, err, "failed to open bars file for %s", symbol)
	}
	defer file.Close()

	if err := checkHeader(file, barColumns); err != nil {
		return nil, err
	}

	var rows []barRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataParseFailed, err, "failed to parse bars file for %s", symbol)
	}

	bars := make([]types.Bar, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, types.Bar{
			Symbol: symbol,
			Time:   row.Date.Time,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	s.log.Info("loaded bars from CSV",
		zap.String("symbol", symbol),
		zap.String("path", path),
		zap.Int("rows", len(bars)))

	return bars, nil
}

// checkHeader verifies the first line names every required column, then
// rewinds the file for the actual parse. gocsv silently zero-fills fields
// whose column is absent, which would turn a malformed file into a series of
// invalid bars instead of an error.
func checkHeader(file *os.File, required []string) error {
	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return errors.Newf(errors.ErrCodeMissingColumns, "%s is empty", file.Name())
	}

	present := make(map[string]bool)
	for _, col := range strings.Split(scanner.Text(), ",") {
		present[strings.ToLower(strings.TrimSpace(col))] = true
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.Newf(errors.ErrCodeMissingColumns, "%s is missing columns: %s",
			file.Name(), strings.Join(missing, ", "))
	}

	if _, err := file.Seek(0, 0); err != nil {
		return errors.Wrap(errors.ErrCodeDataFetchFailed, "failed to rewind file", err)
	}

	return nil
}
