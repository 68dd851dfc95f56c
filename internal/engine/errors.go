package engine

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrNotNumeric      = errors.New("column is not numeric")
	ErrNotCategorical  = errors.New("column is not categorical")
	ErrNoYear          = errors.New("dataset has no Year column")
	ErrEmptyFile       = errors.New("file has no header row")
)

// DataLoadError reports a dataset that could not be read or typed.
// Line is the 1-based file line when the failure is tied to a row.
type DataLoadError struct {
	Path string
	Line int
	Err  error
}

func (e *DataLoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// DateParseError reports a date cell that matches none of the accepted layouts.
// Row is the 0-based data row.
type DateParseError struct {
	Row    int
	Column string
	Value  string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: column %q: cannot parse %q as a date", e.Row, e.Column, e.Value)
}
