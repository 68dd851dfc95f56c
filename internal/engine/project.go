package engine

import (
	"fmt"

	"dashboards/internal/models"
)

// ProjectColumns returns every row restricted to cols, in selection
// order. An empty selection is the empty view, not an error.
func ProjectColumns(ds *Dataset, cols []string) (models.TableView, error) {
	return ProjectColumnsPage(ds, cols, 0, ds.Rows())
}

// ProjectColumnsPage is ProjectColumns over rows [offset, offset+limit).
// Total always reports the full row count of the selection.
func ProjectColumnsPage(ds *Dataset, cols []string, offset, limit int) (models.TableView, error) {
	view := models.TableView{Columns: []models.TableColumn{}, Rows: []models.Record{}, Offset: offset, Limit: limit}
	if len(cols) == 0 {
		view.Offset, view.Limit = 0, 0
		return view, nil
	}

	picked := make([]*Column, 0, len(cols))
	seen := make(map[string]bool, len(cols))
	for _, name := range cols {
		if seen[name] {
			continue
		}
		seen[name] = true
		c, err := ds.column(name)
		if err != nil {
			return models.TableView{}, err
		}
		picked = append(picked, c)
		view.Columns = append(view.Columns, models.TableColumn{Name: name, ID: name})
	}

	view.Total = ds.Rows()
	if offset < 0 {
		offset = 0
	}
	end := offset + limit
	if limit < 0 || end > view.Total {
		end = view.Total
	}
	if offset >= end {
		return view, nil
	}

	view.Rows = make([]models.Record, 0, end-offset)
	for i := offset; i < end; i++ {
		rec := make(models.Record, len(picked))
		for _, c := range picked {
			rec[c.Name] = c.Value(i)
		}
		view.Rows = append(view.Rows, rec)
	}
	return view, nil
}

// Region is a selected value of a region column. The zero value is
// "no selection".
type Region struct {
	Name     string
	Selected bool
}

// NoRegion is the Unselected region.
var NoRegion = Region{}

// SelectRegion returns a selection of name.
func SelectRegion(name string) Region { return Region{Name: name, Selected: true} }

func (r Region) String() string {
	if !r.Selected {
		return "<none>"
	}
	return r.Name
}

// Slice is an ordered subset of a Dataset's rows.
type Slice struct {
	ds     *Dataset
	region Region
	rows   []int
}

// Selected reports whether the slice was built from a region selection.
func (s Slice) Selected() bool { return s.region.Selected }

func (s Slice) Region() Region { return s.region }

func (s Slice) Dataset() *Dataset { return s.ds }

// Len returns the number of rows in the slice.
func (s Slice) Len() int { return len(s.rows) }

// Row returns the dataset row index of the i'th slice row.
func (s Slice) Row(i int) int { return s.rows[i] }

// ProjectRegion returns the rows whose regionColumn equals region.Name,
// in dataset order. NoRegion yields the empty unselected Slice.
func ProjectRegion(ds *Dataset, regionColumn string, region Region) (Slice, error) {
	c, err := ds.column(regionColumn)
	if err != nil {
		return Slice{}, err
	}
	if c.Kind != Categorical {
		return Slice{}, fmt.Errorf("%w: %q", ErrNotCategorical, regionColumn)
	}
	s := Slice{ds: ds, region: region}
	if !region.Selected {
		return s, nil
	}
	id := c.lookup(region.Name)
	if id < 0 {
		return s, nil
	}
	for i, v := range c.IDs {
		if v == id {
			s.rows = append(s.rows, i)
		}
	}
	return s, nil
}
