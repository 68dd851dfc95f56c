package engine

import (
	"bytes"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/labstack/gommon/log"
	"github.com/zeebo/xxh3"
)

// NullValues are the cell spellings read as missing.
var NullValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL"}

type loadConfig struct {
	comma   rune
	chunk   int
	numeric map[string]bool
}

// LoadOption tweaks Load.
type LoadOption func(*loadConfig)

// WithComma sets the field delimiter (default ',').
func WithComma(r rune) LoadOption { return func(c *loadConfig) { c.comma = r } }

// WithChunk sets how many rows the CSV reader decodes per record batch.
func WithChunk(n int) LoadOption { return func(c *loadConfig) { c.chunk = n } }

// WithNumeric forces columns to be Numeric. A cell that does not parse as a
// number fails the load instead of demoting the column to Categorical.
func WithNumeric(cols ...string) LoadOption {
	return func(c *loadConfig) {
		for _, col := range cols {
			c.numeric[col] = true
		}
	}
}

// --- 1. DICTIONARY BUILDER ---

type dictBuilder struct {
	ids   []int32
	dict  []string
	index map[string]int32
}

func (b *dictBuilder) add(s string, null bool) {
	if null {
		b.ids = append(b.ids, -1)
		return
	}
	if id, ok := b.index[s]; ok {
		b.ids = append(b.ids, id)
		return
	}
	id := int32(len(b.dict))
	str := strings.Clone(s) // the reader's buffer is reused between batches
	b.dict = append(b.dict, str)
	b.index[str] = id
	b.ids = append(b.ids, id)
}

// column types the builder. Distinct values are parsed once, so a column
// of a million repeated readings costs as many ParseFloat calls as it has
// distinct spellings.
func (b *dictBuilder) column(name string, forceNumeric bool) (*Column, int, error) {
	parsed := make([]float64, len(b.dict))
	bad := -1
	for id, s := range b.dict {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			bad = id
			break
		}
		parsed[id] = f
	}

	if bad >= 0 || (len(b.dict) == 0 && !forceNumeric) {
		if !forceNumeric {
			return &Column{Name: name, Kind: Categorical, IDs: b.ids, Dict: b.dict}, 0, nil
		}
		row := 0
		for i, id := range b.ids {
			if id == int32(bad) {
				row = i
				break
			}
		}
		return nil, row, fmt.Errorf("%w: column %q: %q", ErrNotNumeric, name, b.dict[bad])
	}

	c := &Column{Name: name, Kind: Numeric, Floats: make([]float64, len(b.ids)), Valid: make([]bool, len(b.ids))}
	for i, id := range b.ids {
		if id >= 0 {
			c.Floats[i] = parsed[id]
			c.Valid[i] = true
		}
	}
	return c, 0, nil
}

// --- 2. MAIN LOADER ---

// Load reads a delimited file with a header row into a Dataset. Column
// kinds are inferred: a column whose every present cell is a number is
// Numeric, anything else is Categorical.
func Load(path string, opts ...LoadOption) (*Dataset, error) {
	start := time.Now()
	cfg := loadConfig{comma: ',', chunk: 1 << 14, numeric: make(map[string]bool)}
	for _, o := range opts {
		o(&cfg)
	}

	// A. Read File
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	fingerprint := xxh3.Hash(content)
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	// B. Header
	hr := stdcsv.NewReader(bytes.NewReader(content))
	hr.Comma = cfg.comma
	header, err := hr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DataLoadError{Path: path, Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, &DataLoadError{Path: path, Line: 1, Err: err}
	}

	fields := make([]arrow.Field, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		if seen[name] {
			return nil, &DataLoadError{Path: path, Line: 1, Err: fmt.Errorf("%w: %q", ErrDuplicateColumn, name)}
		}
		seen[name] = true
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	for name := range cfg.numeric {
		if !seen[name] {
			return nil, &DataLoadError{Path: path, Err: fmt.Errorf("%w: %q", ErrUnknownColumn, name)}
		}
	}

	// C. Stream record batches through the dictionaries
	r := csv.NewReader(bytes.NewReader(content), arrow.NewSchema(fields, nil),
		csv.WithHeader(true),
		csv.WithComma(cfg.comma),
		csv.WithChunk(cfg.chunk),
		csv.WithNullReader(true, NullValues...),
		csv.WithAllocator(memory.NewGoAllocator()),
	)
	defer r.Release()

	builders := make([]*dictBuilder, len(header))
	for i := range builders {
		builders[i] = &dictBuilder{index: make(map[string]int32)}
	}

	rows := 0
	for r.Next() {
		rec := r.Record()
		n := int(rec.NumRows())
		for ci := range builders {
			col, ok := rec.Column(ci).(*array.String)
			if !ok {
				return nil, &DataLoadError{Path: path, Err: fmt.Errorf("column %q: unexpected arrow type %s", header[ci], rec.Column(ci).DataType())}
			}
			b := builders[ci]
			for i := 0; i < n; i++ {
				b.add(col.Value(i), col.IsNull(i))
			}
		}
		rows += n
	}
	if err := r.Err(); err != nil {
		// header line + rows decoded so far + the failing line
		return nil, &DataLoadError{Path: path, Line: rows + 2, Err: err}
	}

	// D. Type columns
	cols := make([]*Column, len(header))
	for i, name := range header {
		c, row, err := builders[i].column(name, cfg.numeric[name])
		if err != nil {
			return nil, &DataLoadError{Path: path, Line: row + 2, Err: err}
		}
		cols[i] = c
	}

	ds, err := NewDataset(cols...)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	ds.path = path
	ds.fingerprint = fingerprint

	log.Infof("Load complete. Rows: %d. Columns: %d. Time: %v", rows, len(cols), time.Since(start))
	return ds, nil
}
