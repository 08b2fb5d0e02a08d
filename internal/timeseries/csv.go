package timeseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Column names conventionally used by the data sources.
const (
	TimestampColumn = "timestamp"
	PriceColumn     = "price_per_mwh"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// LoadCSV reads a series from a CSV file with `timestamp` and
// `price_per_mwh` columns. Extra columns are ignored.
func LoadCSV(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads a series from an io.Reader in the LoadCSV format.
func ReadCSV(r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	tsIdx, priceIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.ToLower(h)) {
		case TimestampColumn:
			tsIdx = i
		case PriceColumn:
			priceIdx = i
		}
	}
	if tsIdx == -1 || priceIdx == -1 {
		return nil, fmt.Errorf("csv must have %q and %q columns", TimestampColumn, PriceColumn)
	}

	var timestamps []time.Time
	var values []float64

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		ts, err := ParseTimestamp(record[tsIdx])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[priceIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: parse price: %w", line, err)
		}

		timestamps = append(timestamps, ts)
		values = append(values, v)
	}

	return NewWithTimestamps(timestamps, values)
}

// WriteCSV writes the series to path in the LoadCSV format.
func WriteCSV(path string, s *Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{TimestampColumn, PriceColumn}); err != nil {
		return err
	}
	for i, v := range s.Values {
		row := []string{
			s.Timestamps[i].Format(time.RFC3339),
			strconv.FormatFloat(v, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// ParseTimestamp accepts the timestamp layouts the sources emit.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", raw)
}
