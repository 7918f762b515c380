package columnar

import (
	"sync"

	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/structured"
)

// Column is one named structured column of a table
type Column struct {
	Name   string
	Buffer *structured.Buffer
}

// Table is an ordered set of named structured columns of equal length
type Table struct {
	mu       sync.RWMutex
	names    []string
	columns  map[string]*structured.Buffer
	rowCount int
}

// NewTable creates a table from columns in order. Column names must be
// unique and every buffer must have the same length.
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make(map[string]*structured.Buffer, len(columns)),
	}
	for _, col := range columns {
		if err := t.AddColumn(col.Name, col.Buffer); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddColumn appends a column. The first column fixes the table length.
func (t *Table) AddColumn(name string, b *structured.Buffer) error {
	if name == "" {
		return errors.New(errors.ErrorTypeConfig, "column name must not be empty")
	}
	if b == nil {
		return errors.Newf(errors.ErrorTypeConfig, "column %q has no buffer", name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.columns[name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "column %q already exists", name)
	}
	if len(t.names) > 0 && b.Len() != t.rowCount {
		return errors.Newf(errors.ErrorTypeLength,
			"column %q has %d rows, table has %d", name, b.Len(), t.rowCount).
			WithDetail("column", name)
	}

	t.names = append(t.names, name)
	t.columns[name] = b
	t.rowCount = b.Len()
	return nil
}

// Len returns the number of rows
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rowCount
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.names...)
}

// Columns returns the columns in order. Buffers are shared, not copied.
func (t *Table) Columns() []Column {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Column, len(t.names))
	for i, name := range t.names {
		out[i] = Column{Name: name, Buffer: t.columns[name]}
	}
	return out
}

// GetColumn retrieves a column by name
func (t *Table) GetColumn(name string) (*structured.Buffer, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	b, ok := t.columns[name]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeNotFound, "column %q not found", name).
			WithDetail("columns", t.names)
	}
	return b, nil
}

// GetRow returns the scalars of row index keyed by column name. Missing
// values are nil.
func (t *Table) GetRow(index int) (map[string]structured.Scalar, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if index < 0 || index >= t.rowCount {
		return nil, errors.Newf(errors.ErrorTypeIndex, "index %d out of range [0, %d)", index, t.rowCount)
	}

	row := make(map[string]structured.Scalar, len(t.names))
	for _, name := range t.names {
		b := t.columns[name]
		rec, err := b.Record(index)
		if err != nil {
			return nil, err
		}
		if rec.IsMissing() {
			row[name] = nil
			continue
		}
		row[name] = b.Layout().NewScalar(rec)
	}
	return row, nil
}

// Slice selects rows from every column. A Range keeps aliasing the source
// buffers; other indexers copy.
func (t *Table) Slice(ix structured.Indexer) (*Table, error) {
	cols := t.Columns()
	for i := range cols {
		b, err := cols[i].Buffer.Slice(ix)
		if err != nil {
			return nil, err
		}
		cols[i].Buffer = b
	}
	return NewTable(cols...)
}

// Equal reports whether both tables have the same columns in the same order
// with equal buffers. Missing values compare equal.
func (t *Table) Equal(other *Table) bool {
	a, b := t.Columns(), other.Columns()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !a[i].Buffer.Equals(b[i].Buffer) {
			return false
		}
	}
	return true
}

// MemoryUsage returns the storage footprint of all columns in bytes
func (t *Table) MemoryUsage() int64 {
	var total int64
	for _, col := range t.Columns() {
		total += int64(col.Buffer.ByteSize())
	}
	return total
}

// Iterator provides sequential access to rows
type Iterator struct {
	table *Table
	index int
}

// NewIterator creates a new iterator over the table
func (t *Table) NewIterator() *Iterator {
	return &Iterator{table: t, index: -1}
}

// Next advances to the next row
func (it *Iterator) Next() bool {
	it.index++
	return it.index < it.table.Len()
}

// Index returns the current row index
func (it *Iterator) Index() int { return it.index }

// Row returns the current row
func (it *Iterator) Row() (map[string]structured.Scalar, error) {
	return it.table.GetRow(it.index)
}
