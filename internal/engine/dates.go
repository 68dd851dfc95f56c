package engine

import (
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
)

// YearColumn is the name of the column appended by DeriveYear.
const YearColumn = "Year"

// DateLayouts are tried in order after the ISO fast path fails.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
}

// isoYear parses the year out of "2021-07-25" (optionally followed by a
// time part) without allocating. It rejects impossible dates.
func isoYear(s string) (int64, bool) {
	if len(s) < 10 || s[4] != '-' || s[7] != '-' {
		return 0, false
	}
	if len(s) > 10 && s[10] != ' ' && s[10] != 'T' {
		return 0, false
	}
	digits := func(b string) (int, bool) {
		n := 0
		for i := 0; i < len(b); i++ {
			if b[i] < '0' || b[i] > '9' {
				return 0, false
			}
			n = n*10 + int(b[i]-'0')
		}
		return n, true
	}
	y, ok1 := digits(s[0:4])
	m, ok2 := digits(s[5:7])
	d, ok3 := digits(s[8:10])
	if !ok1 || !ok2 || !ok3 || m < 1 || m > 12 || d < 1 {
		return 0, false
	}
	if time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC).Day() != d {
		return 0, false
	}
	if len(s) > 10 {
		// Let the layouts validate the time part.
		return 0, false
	}
	return int64(y), true
}

// parseYear returns the calendar year of a date string.
func parseYear(s string) (int64, bool) {
	if y, ok := isoYear(s); ok {
		return y, true
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return int64(t.Year()), true
		}
	}
	return 0, false
}

// DeriveYear returns a new Dataset with an Integer Year column extracted
// from dateColumn. Null dates give null years. The first unparseable date
// aborts the derivation with a *DateParseError; a partially derived
// column is never returned.
func DeriveYear(ds *Dataset, dateColumn string) (*Dataset, error) {
	src, ok := ds.Column(dateColumn)
	if !ok {
		return nil, &DataLoadError{Path: ds.path, Err: fmt.Errorf("%w: %q", ErrUnknownColumn, dateColumn)}
	}
	if src.Kind != Categorical {
		return nil, &DataLoadError{Path: ds.path, Err: fmt.Errorf("%w: %q", ErrNotCategorical, dateColumn)}
	}
	if _, exists := ds.Column(YearColumn); exists {
		return nil, &DataLoadError{Path: ds.path, Err: fmt.Errorf("%w: %q", ErrDuplicateColumn, YearColumn)}
	}

	// Parse each distinct spelling once.
	years := make([]int64, len(src.Dict))
	parsed := make([]bool, len(src.Dict))
	for id, s := range src.Dict {
		years[id], parsed[id] = parseYear(s)
	}

	out := &Column{Name: YearColumn, Kind: Integer, Ints: make([]int64, len(src.IDs)), Valid: make([]bool, len(src.IDs))}
	for i, id := range src.IDs {
		if id < 0 {
			continue
		}
		if !parsed[id] {
			return nil, &DateParseError{Row: i, Column: dateColumn, Value: src.Dict[id]}
		}
		out.Ints[i] = years[id]
		out.Valid[i] = true
	}

	log.Debugf("Derived %s from %q: %d distinct dates", YearColumn, dateColumn, len(src.Dict))
	return ds.withColumn(out)
}
