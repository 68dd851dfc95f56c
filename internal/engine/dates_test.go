package engine

import (
	"errors"
	"testing"
)

func TestParseYear(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"2021-07-25", 2021, true},
		{"2000-02-29", 2000, true},
		{"2001-02-29", 0, false},
		{"2016-05-31 13:45:00", 2016, true},
		{"2016-05-31T13:45:00Z", 2016, true},
		{"2016/05/31", 2016, true},
		{"05/31/2016", 2016, true},
		{"5/3/2016", 2016, true},
		{"2021-13-01", 0, false},
		{"yesterday", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseYear(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseYear(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDeriveYear(t *testing.T) {
	ds, err := NewDataset(
		NewCategorical("State", "Arizona", "Arizona", "Texas"),
		NewCategorical("Date Local", "2000-01-01", "", "2003/06/30"),
	)
	if err != nil {
		t.Fatal(err)
	}

	out, err := DeriveYear(ds, "Date Local")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ds.Column(YearColumn); ok {
		t.Error("DeriveYear must not modify its input")
	}

	year, ok := out.Column(YearColumn)
	if !ok {
		t.Fatal("missing Year column")
	}
	if year.Kind != Integer {
		t.Fatalf("Year kind = %s", year.Kind)
	}
	if year.Ints[0] != 2000 || !year.Valid[0] {
		t.Errorf("row 0: got %d", year.Ints[0])
	}
	if year.Valid[1] {
		t.Error("row 1: null date must give null year")
	}
	if year.Ints[2] != 2003 {
		t.Errorf("row 2: got %d", year.Ints[2])
	}
}

func TestDeriveYearAbortsOnBadDate(t *testing.T) {
	ds, _ := NewDataset(NewCategorical("Date Local", "2000-01-01", "31.12.1999", "2000-01-02"))

	_, err := DeriveYear(ds, "Date Local")
	var de *DateParseError
	if !errors.As(err, &de) {
		t.Fatalf("expected DateParseError, got %v", err)
	}
	if de.Row != 1 || de.Value != "31.12.1999" {
		t.Errorf("got row %d value %q", de.Row, de.Value)
	}
}

func TestDeriveYearMissingColumn(t *testing.T) {
	ds, _ := NewDataset(NewCategorical("State", "Arizona"))

	_, err := DeriveYear(ds, "Date Local")
	if !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}
