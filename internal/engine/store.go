package engine

import (
	"fmt"
	"math"
	"sort"
)

// Kind is the storage type of a Column.
type Kind uint8

const (
	Categorical Kind = iota
	Numeric
	Integer
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Integer:
		return "integer"
	default:
		return "categorical"
	}
}

// Column holds one named column in Struct-of-Arrays format.
// Only the slices matching Kind are populated.
type Column struct {
	Name string
	Kind Kind

	// Numeric
	Floats []float64
	// Integer
	Ints []int64
	// Valid marks non-null cells of Numeric and Integer columns.
	Valid []bool

	// Dictionary encoded categories. IDs[i] == -1 is a null cell.
	IDs  []int32
	Dict []string
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case Numeric:
		return len(c.Floats)
	case Integer:
		return len(c.Ints)
	default:
		return len(c.IDs)
	}
}

// IsNull reports whether row i holds no value.
func (c *Column) IsNull(i int) bool {
	if c.Kind == Categorical {
		return c.IDs[i] < 0
	}
	return !c.Valid[i]
}

// Float returns row i as a float64 for Numeric and Integer columns.
func (c *Column) Float(i int) (float64, bool) {
	switch c.Kind {
	case Numeric:
		return c.Floats[i], c.Valid[i]
	case Integer:
		return float64(c.Ints[i]), c.Valid[i]
	}
	return 0, false
}

// Text returns the category at row i.
func (c *Column) Text(i int) (string, bool) {
	if c.Kind != Categorical || c.IDs[i] < 0 {
		return "", false
	}
	return c.Dict[c.IDs[i]], true
}

// Value returns row i as a JSON friendly scalar: nil, float64, int64 or string.
func (c *Column) Value(i int) any {
	if c.IsNull(i) {
		return nil
	}
	switch c.Kind {
	case Numeric:
		return c.Floats[i]
	case Integer:
		return c.Ints[i]
	default:
		return c.Dict[c.IDs[i]]
	}
}

// lookup returns the dictionary id of s, or -1.
func (c *Column) lookup(s string) int32 {
	for id, v := range c.Dict {
		if v == s {
			return int32(id)
		}
	}
	return -1
}

// NewNumeric builds a Numeric column. NaN values are stored as nulls.
func NewNumeric(name string, values ...float64) *Column {
	c := &Column{Name: name, Kind: Numeric, Floats: values, Valid: make([]bool, len(values))}
	for i, v := range values {
		c.Valid[i] = !math.IsNaN(v)
	}
	return c
}

// NewInteger builds an Integer column with every cell present.
func NewInteger(name string, values ...int64) *Column {
	c := &Column{Name: name, Kind: Integer, Ints: values, Valid: make([]bool, len(values))}
	for i := range c.Valid {
		c.Valid[i] = true
	}
	return c
}

// NewCategorical dictionary encodes values. Empty strings are stored as nulls.
func NewCategorical(name string, values ...string) *Column {
	c := &Column{Name: name, Kind: Categorical, IDs: make([]int32, len(values))}
	ids := make(map[string]int32)
	for i, v := range values {
		if v == "" {
			c.IDs[i] = -1
			continue
		}
		id, ok := ids[v]
		if !ok {
			id = int32(len(c.Dict))
			c.Dict = append(c.Dict, v)
			ids[v] = id
		}
		c.IDs[i] = id
	}
	return c
}

// Dataset is an immutable in-memory table. It is safe for concurrent
// readers; nothing mutates it after construction.
type Dataset struct {
	path        string
	fingerprint uint64
	rows        int
	cols        []*Column
	index       map[string]int
}

// NewDataset assembles columns into a Dataset. All columns must have the
// same length and distinct names.
func NewDataset(cols ...*Column) (*Dataset, error) {
	ds := &Dataset{cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := ds.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if i == 0 {
			ds.rows = c.Len()
		} else if c.Len() != ds.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), ds.rows)
		}
		ds.index[c.Name] = i
	}
	return ds, nil
}

// Path is the file the dataset was loaded from, if any.
func (ds *Dataset) Path() string { return ds.path }

// Fingerprint is the xxh3 hash of the source bytes.
func (ds *Dataset) Fingerprint() uint64 { return ds.fingerprint }

// Rows returns the row count.
func (ds *Dataset) Rows() int { return ds.rows }

// Columns returns the column names in file order.
func (ds *Dataset) Columns() []string {
	names := make([]string, len(ds.cols))
	for i, c := range ds.cols {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (ds *Dataset) Column(name string) (*Column, bool) {
	i, ok := ds.index[name]
	if !ok {
		return nil, false
	}
	return ds.cols[i], true
}

func (ds *Dataset) column(name string) (*Column, error) {
	c, ok := ds.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return c, nil
}

// Categories returns the sorted distinct values of a categorical column.
func (ds *Dataset) Categories(name string) ([]string, error) {
	c, err := ds.column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != Categorical {
		return nil, fmt.Errorf("%w: %q", ErrNotCategorical, name)
	}
	out := append([]string(nil), c.Dict...)
	sort.Strings(out)
	return out, nil
}

// withColumn returns a new Dataset sharing every existing column plus c.
func (ds *Dataset) withColumn(c *Column) (*Dataset, error) {
	cols := append(append(make([]*Column, 0, len(ds.cols)+1), ds.cols...), c)
	next, err := NewDataset(cols...)
	if err != nil {
		return nil, err
	}
	next.path = ds.path
	next.fingerprint = ds.fingerprint
	return next, nil
}
