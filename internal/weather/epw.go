// Package weather reads hourly weather series from EnergyPlus EPW files.
package weather

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"acsim/internal/models"
)

const (
	epwHeaderLines = 8

	colYear    = 0
	colDryBulb = 6
	colGHI     = 13
	minFields  = colGHI + 1
)

var (
	// ErrNoData is returned when an EPW file has a header but no data rows.
	ErrNoData = errors.New("epw: no data rows")
	// ErrNotFinite is wrapped by a ParseError for NaN or infinite readings.
	ErrNotFinite = errors.New("value is not finite")
)

// ParseError locates a malformed EPW line.
type ParseError struct {
	Line  int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("epw line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("epw line %d: %s: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadEPW parses an EPW stream into hourly samples. Timestamps form a
// contiguous hourly sequence starting at 01:00 UTC on January 1st of the
// first row's year; per-row month and day columns are not used, which keeps
// typical-year files that mix source years in order.
func ReadEPW(r io.Reader) ([]models.WeatherSample, error) {
	br := bufio.NewReader(r)
	for i := 0; i < epwHeaderLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("epw: truncated header (%d of %d lines)", i, epwHeaderLines)
			}
			return nil, fmt.Errorf("epw: read header: %w", err)
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var (
		out   []models.WeatherSample
		start time.Time
		line  = epwHeaderLines
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < minFields {
			return nil, &ParseError{Line: line, Err: fmt.Errorf("expected at least %d fields, got %d", minFields, len(rec))}
		}
		if out == nil {
			year, err := strconv.Atoi(strings.TrimSpace(rec[colYear]))
			if err != nil {
				return nil, &ParseError{Line: line, Field: "year", Err: err}
			}
			start = time.Date(year, time.January, 1, 1, 0, 0, 0, time.UTC)
			out = make([]models.WeatherSample, 0, 8760)
		}
		temp, err := parseFloat(rec[colDryBulb])
		if err != nil {
			return nil, &ParseError{Line: line, Field: "dry_bulb", Err: err}
		}
		ghi, err := parseFloat(rec[colGHI])
		if err != nil {
			return nil, &ParseError{Line: line, Field: "global_horizontal_radiation", Err: err}
		}
		out = append(out, models.WeatherSample{
			Time:         start.Add(time.Duration(len(out)) * time.Hour),
			OutdoorTempC: temp,
			GHI:          ghi,
		})
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

// LoadEPW reads the EPW file at path.
func LoadEPW(path string) ([]models.WeatherSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open epw %q: %w", path, err)
	}
	defer f.Close()
	samples, err := ReadEPW(f)
	if err != nil {
		return nil, fmt.Errorf("read epw %q: %w", path, err)
	}
	return samples, nil
}

// parseFloat accepts finite decimal values only; ParseFloat alone lets
// "NaN" and "Inf" through.
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotFinite, s)
	}
	return v, nil
}
