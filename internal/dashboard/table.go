// Package dashboard holds the per-interaction logic of both dashboards as
// pure functions of (dataset, state, event).
package dashboard

import (
	"io"

	"dashboards/internal/charts"
	"dashboards/internal/engine"
	"dashboards/internal/models"
)

// DefaultColumnCount is how many leading columns the viewer shows initially.
const DefaultColumnCount = 5

// Table renders the generic table viewer.
type Table struct {
	ds *engine.Dataset
}

func NewTable(ds *engine.Dataset) *Table {
	return &Table{ds: ds}
}

func (t *Table) Dataset() *engine.Dataset { return t.ds }

// Columns lists every column plus the initial selection.
func (t *Table) Columns() models.ColumnList {
	all := t.ds.Columns()
	n := min(DefaultColumnCount, len(all))
	return models.ColumnList{Columns: all, Default: all[:n:n]}
}

// Render projects the selected columns for one page of rows. A
// non-positive limit means every row.
func (t *Table) Render(state models.TableState) (models.TableView, error) {
	limit := state.Limit
	if limit <= 0 {
		limit = t.ds.Rows()
	}
	return engine.ProjectColumnsPage(t.ds, state.Columns, state.Offset, limit)
}

// Export writes every row of the selected columns as XLSX.
func (t *Table) Export(cols []string, w io.Writer) error {
	view, err := engine.ProjectColumns(t.ds, cols)
	if err != nil {
		return err
	}
	return charts.WriteXLSX(view, w)
}
