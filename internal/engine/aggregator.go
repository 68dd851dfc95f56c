package engine

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/aclements/go-moremath/stats"
	"golang.org/x/exp/constraints"
)

// Mean is an arithmetic mean that may be undefined (no values).
type Mean struct {
	Value float64
	Valid bool
}

// Ptr returns nil for an undefined mean, which JSON encodes as null.
func (m Mean) Ptr() *float64 {
	if !m.Valid {
		return nil
	}
	v := m.Value
	return &v
}

func meanOf(xs []float64) Mean {
	if len(xs) == 0 {
		return Mean{}
	}
	return Mean{Value: stats.Mean(xs), Valid: true}
}

// YearlyRow holds one mean per measure, in YearlyAggregate.Measures order.
type YearlyRow struct {
	Year  int64
	Means []Mean
}

type YearlyAggregate struct {
	Region   Region
	Measures []string
	Rows     []YearlyRow
}

// Years returns the x axis of the aggregate.
func (a YearlyAggregate) Years() []int64 {
	out := make([]int64, len(a.Rows))
	for i, r := range a.Rows {
		out[i] = r.Year
	}
	return out
}

// Series returns the per-year means of one measure.
func (a YearlyAggregate) Series(measure string) ([]Mean, error) {
	for mi, m := range a.Measures {
		if m == measure {
			out := make([]Mean, len(a.Rows))
			for i, r := range a.Rows {
				out[i] = r.Means[mi]
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, measure)
}

func sortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func measureColumns(ds *Dataset, measures []string) ([]*Column, error) {
	cols := make([]*Column, len(measures))
	for i, name := range measures {
		c, err := ds.column(name)
		if err != nil {
			return nil, err
		}
		if c.Kind == Categorical {
			return nil, fmt.Errorf("%w: %q", ErrNotNumeric, name)
		}
		cols[i] = c
	}
	return cols, nil
}

// AggregateYearly groups the slice by Year and averages each measure over
// its present values. Only the named measures are read. Rows with a null
// year are skipped. Output is sorted by year.
func AggregateYearly(s Slice, measures []string) (YearlyAggregate, error) {
	agg := YearlyAggregate{Region: s.region, Measures: measures, Rows: []YearlyRow{}}
	if s.ds == nil {
		return agg, nil
	}
	yearCol, ok := s.ds.Column(YearColumn)
	if !ok || yearCol.Kind != Integer {
		return YearlyAggregate{}, ErrNoYear
	}
	cols, err := measureColumns(s.ds, measures)
	if err != nil {
		return YearlyAggregate{}, err
	}

	groups := make(map[int64][][]float64)
	for _, row := range s.rows {
		if !yearCol.Valid[row] {
			continue
		}
		y := yearCol.Ints[row]
		g, ok := groups[y]
		if !ok {
			g = make([][]float64, len(cols))
			groups[y] = g
		}
		for mi, c := range cols {
			if v, ok := c.Float(row); ok {
				g[mi] = append(g[mi], v)
			}
		}
	}

	for _, y := range sortedKeys(groups) {
		g := groups[y]
		r := YearlyRow{Year: y, Means: make([]Mean, len(cols))}
		for mi := range cols {
			r.Means[mi] = meanOf(g[mi])
		}
		agg.Rows = append(agg.Rows, r)
	}
	return agg, nil
}

// MeasureMeans averages each measure over the whole slice without grouping.
func MeasureMeans(s Slice, measures []string) ([]Mean, error) {
	out := make([]Mean, len(measures))
	if s.ds == nil {
		return out, nil
	}
	cols, err := measureColumns(s.ds, measures)
	if err != nil {
		return nil, err
	}
	xs := make([]float64, 0, len(s.rows))
	for mi, c := range cols {
		xs = xs[:0]
		for _, row := range s.rows {
			if v, ok := c.Float(row); ok {
				xs = append(xs, v)
			}
		}
		out[mi] = meanOf(xs)
	}
	return out, nil
}

// RegionMean is the mean of one measure over every row of a region.
type RegionMean struct {
	Region string
	Mean   Mean
	Rows   int
}

type regionPartial struct {
	sum   []float64
	count []int
	rows  []int
}

// regionChunkRows is the fixed span of rows summed into one partial.
const regionChunkRows = 1 << 16

// RegionMeans computes the mean of measure for every value of regionColumn
// over the whole dataset. Rows are cut into fixed-size chunks summed in
// parallel and merged in chunk order, so the floating-point result is the
// same on every machine.
func RegionMeans(ds *Dataset, regionColumn, measure string) ([]RegionMean, error) {
	return regionMeans(ds, regionColumn, measure, runtime.NumCPU(), regionChunkRows)
}

func regionMeans(ds *Dataset, regionColumn, measure string, numWorkers, chunkRows int) ([]RegionMean, error) {
	rc, err := ds.column(regionColumn)
	if err != nil {
		return nil, err
	}
	if rc.Kind != Categorical {
		return nil, fmt.Errorf("%w: %q", ErrNotCategorical, regionColumn)
	}
	cols, err := measureColumns(ds, []string{measure})
	if err != nil {
		return nil, err
	}
	mc := cols[0]

	// 1. Setup Workers
	numRegions := len(rc.Dict)
	total := ds.Rows()
	numChunks := (total + chunkRows - 1) / chunkRows
	if numWorkers > numChunks {
		numWorkers = numChunks
	}
	partials := make([]*regionPartial, numChunks)
	chunks := make(chan int, numChunks)
	for c := 0; c < numChunks; c++ {
		chunks <- c
	}
	close(chunks)

	// 2. Parallel Loop
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := rc.IDs
			for c := range chunks {
				p := &regionPartial{
					sum:   make([]float64, numRegions),
					count: make([]int, numRegions),
					rows:  make([]int, numRegions),
				}
				end := min((c+1)*chunkRows, total)
				for j := c * chunkRows; j < end; j++ {
					id := ids[j]
					if id < 0 {
						continue
					}
					p.rows[id]++
					if v, ok := mc.Float(j); ok {
						p.sum[id] += v
						p.count[id]++
					}
				}
				partials[c] = p
			}
		}()
	}
	wg.Wait()

	// 3. Merge Phase (chunk order)
	sum := make([]float64, numRegions)
	count := make([]int, numRegions)
	rows := make([]int, numRegions)
	for _, p := range partials {
		for i := 0; i < numRegions; i++ {
			sum[i] += p.sum[i]
			count[i] += p.count[i]
			rows[i] += p.rows[i]
		}
	}

	out := make([]RegionMean, 0, numRegions)
	for id, name := range rc.Dict {
		rm := RegionMean{Region: name, Rows: rows[id]}
		if count[id] > 0 {
			rm.Mean = Mean{Value: sum[id] / float64(count[id]), Valid: true}
		}
		out = append(out, rm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
	return out, nil
}
