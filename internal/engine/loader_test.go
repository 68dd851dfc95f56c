package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "test_data_*.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpFile.Name()
}

const pollutionCSV = `State,Date Local,NO2 Mean,O3 Mean,SO2 Mean,CO Mean,Site
Arizona,2000-01-01,19.04,0.0225,3.0,1.14,Phoenix
Arizona,2000-01-02,22.96,0.0134,1.96,0.88,Phoenix
California,2001-03-05,10.5,0.03,,0.5,"Los Angeles, CA"
`

func TestLoad(t *testing.T) {
	path := writeTemp(t, pollutionCSV)

	ds, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if ds.Rows() != 3 {
		t.Fatalf("Expected 3 rows, got %d", ds.Rows())
	}
	if got := len(ds.Columns()); got != 7 {
		t.Fatalf("Expected 7 columns, got %d", got)
	}
	if ds.Fingerprint() == 0 {
		t.Error("Expected non-zero fingerprint")
	}

	no2, _ := ds.Column("NO2 Mean")
	if no2.Kind != Numeric {
		t.Fatalf("NO2 Mean: expected numeric, got %s", no2.Kind)
	}
	if v, ok := no2.Float(0); !ok || v != 19.04 {
		t.Errorf("Row 0 NO2: expected 19.04, got %v (%v)", v, ok)
	}

	so2, _ := ds.Column("SO2 Mean")
	if !so2.IsNull(2) {
		t.Error("Row 2 SO2: expected null for empty cell")
	}

	state, _ := ds.Column("State")
	if state.Kind != Categorical {
		t.Fatalf("State: expected categorical, got %s", state.Kind)
	}
	if len(state.Dict) != 2 {
		t.Errorf("Expected 2 unique states, got %d", len(state.Dict))
	}

	site, _ := ds.Column("Site")
	if s, _ := site.Text(2); s != "Los Angeles, CA" {
		t.Errorf("Quoted field: got %q", s)
	}
}

func TestLoadForcedNumeric(t *testing.T) {
	path := writeTemp(t, "State,NO2 Mean\nArizona,\nTexas,NA\n")

	ds, err := Load(path, WithNumeric("NO2 Mean"))
	if err != nil {
		t.Fatal(err)
	}
	c, _ := ds.Column("NO2 Mean")
	if c.Kind != Numeric {
		t.Fatalf("expected numeric, got %s", c.Kind)
	}
	if !c.IsNull(0) || !c.IsNull(1) {
		t.Error("expected both cells null")
	}

	path = writeTemp(t, "State,NO2 Mean\nArizona,1.5\nTexas,high\n")
	_, err = Load(path, WithNumeric("NO2 Mean"))
	var le *DataLoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected DataLoadError, got %v", err)
	}
	if !errors.Is(err, ErrNotNumeric) {
		t.Errorf("expected ErrNotNumeric, got %v", err)
	}
	if le.Line != 3 {
		t.Errorf("expected line 3, got %d", le.Line)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") }, os.ErrNotExist},
		{"empty", func(t *testing.T) string { return writeTemp(t, "") }, ErrEmptyFile},
		{"duplicate header", func(t *testing.T) string { return writeTemp(t, "a,a\n1,2\n") }, ErrDuplicateColumn},
		{"ragged", func(t *testing.T) string { return writeTemp(t, "a,b\n1,2\n3\n") }, nil},
		{"unknown numeric", func(t *testing.T) string { return writeTemp(t, "a,b\n1,2\n") }, ErrUnknownColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []LoadOption
			if tt.name == "unknown numeric" {
				opts = append(opts, WithNumeric("c"))
			}
			_, err := Load(tt.path(t), opts...)
			var le *DataLoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected DataLoadError, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadHeaderOnly(t *testing.T) {
	ds, err := Load(writeTemp(t, "a,b\n"))
	if err != nil {
		t.Fatal(err)
	}
	if ds.Rows() != 0 || len(ds.Columns()) != 2 {
		t.Errorf("got %d rows, %d columns", ds.Rows(), len(ds.Columns()))
	}
}
