// Package engine implements the in-memory mutable table: the authoritative
// snapshot of a table's rows with an explicit commit/rollback contract,
// primary-key indexing, and insertion order.
package engine

import (
	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
	"github.com/tech-hunter-mainak/qilodb/internal/schema"
	"github.com/tech-hunter-mainak/qilodb/internal/storage"
)

// Row is one row's in-memory representation: a primary-key string plus the
// ordered remaining cells.
type Row struct {
	PK     string
	Values []string
}

// Table is a single table's in-memory mutable state.
type Table struct {
	Name        string
	DatabaseDir string
	Key         []byte

	Schema *schema.Schema

	dataMap  map[string]*Row
	rowOrder []string

	Unsaved bool
}

// Path returns the table's on-disk file path.
func (t *Table) Path() string {
	return storage.TablePath(t.DatabaseDir, t.Name)
}

// RowCount returns the number of rows currently held in memory.
func (t *Table) RowCount() int {
	return len(t.rowOrder)
}

// primaryKeyIndex is shorthand for the schema's resolved PK column index.
func (t *Table) primaryKeyIndex() int {
	return t.Schema.PrimaryKeyIndex
}

// slotForColumn translates a column index to a position in Row.Values,
// or -1 if col is the primary-key column itself.
func (t *Table) slotForColumn(col int) int {
	pk := t.primaryKeyIndex()
	if col == pk {
		return -1
	}
	if col < pk {
		return col
	}
	return col - 1
}

// CellAt returns the row's value for the schema column at index col.
func (t *Table) CellAt(row *Row, col int) string {
	slot := t.slotForColumn(col)
	if slot == -1 {
		return row.PK
	}
	return row.Values[slot]
}

// setCellAt mutates the row's value for schema column col. Setting the
// primary-key column itself requires a dataMap/rowOrder rekey and is
// handled by callers, not here.
func (t *Table) setCellAt(row *Row, col int, value string) {
	slot := t.slotForColumn(col)
	if slot == -1 {
		row.PK = value
		return
	}
	row.Values[slot] = value
}

// Tuple reassembles a row's full cell list in schema column order.
func (t *Table) Tuple(row *Row) []string {
	tuple := make([]string, len(t.Schema.Columns))
	for i := range tuple {
		tuple[i] = t.CellAt(row, i)
	}
	return tuple
}

// Rows returns the table's rows in insertion order (rowOrder).
func (t *Table) Rows() []*Row {
	rows := make([]*Row, 0, len(t.rowOrder))
	for _, pk := range t.rowOrder {
		rows = append(rows, t.dataMap[pk])
	}
	return rows
}

// HasRow reports whether pk identifies an existing row.
func (t *Table) HasRow(pk string) bool {
	_, ok := t.dataMap[pk]
	return ok
}

// markDirty flips the table into the Dirty (unsaved-changes) state.
func (t *Table) markDirty() {
	t.Unsaved = true
}

// Load decrypts and parses the table file at path, returning a fresh
// in-memory Table in the Clean state.
func Load(databaseDir, name string, key []byte) (*Table, error) {
	path := storage.TablePath(databaseDir, name)
	contents, err := storage.Load(path, key)
	if err != nil {
		return nil, err
	}

	t := &Table{
		Name:        name,
		DatabaseDir: databaseDir,
		Key:         key,
		Schema:      contents.Schema,
		dataMap:     map[string]*Row{},
	}

	pkIdx := t.primaryKeyIndex()
	for _, tuple := range contents.Rows {
		pk := tuple[pkIdx]
		values := make([]string, 0, len(tuple)-1)
		for i, v := range tuple {
			if i != pkIdx {
				values = append(values, v)
			}
		}
		if _, exists := t.dataMap[pk]; exists {
			continue // duplicate PK on disk: keep first occurrence, best-effort recovery
		}
		t.dataMap[pk] = &Row{PK: pk, Values: values}
		t.rowOrder = append(t.rowOrder, pk)
	}
	return t, nil
}

// Create writes a brand-new, empty table file for sch and returns its
// freshly loaded in-memory Table.
func Create(databaseDir, name string, key []byte, sch *schema.Schema) (*Table, error) {
	path := storage.TablePath(databaseDir, name)
	if err := storage.CreateEmpty(path, key, sch); err != nil {
		return nil, err
	}
	return &Table{
		Name:        name,
		DatabaseDir: databaseDir,
		Key:         key,
		Schema:      sch,
		dataMap:     map[string]*Row{},
	}, nil
}

// Commit serializes the current in-memory state to disk, updates the
// database's catalog, and transitions to Clean.
func (t *Table) Commit() error {
	rows := make([][]string, 0, len(t.rowOrder))
	for _, pk := range t.rowOrder {
		rows = append(rows, t.Tuple(t.dataMap[pk]))
	}
	if err := storage.Save(t.Path(), t.Key, t.Schema, rows); err != nil {
		return err
	}
	if err := storage.UpsertCatalogEntry(t.DatabaseDir, t.Name, len(t.rowOrder)); err != nil {
		return err
	}
	t.Unsaved = false
	return nil
}

// Rollback discards in-memory changes and reloads from disk. Rolling back a
// clean table is a no-op that returns a Warning instead of touching disk.
func (t *Table) Rollback() (*qerrors.Warning, error) {
	if !t.Unsaved {
		return qerrors.Warnf("no changes to roll back"), nil
	}
	fresh, err := Load(t.DatabaseDir, t.Name, t.Key)
	if err != nil {
		return nil, err
	}
	t.Schema = fresh.Schema
	t.dataMap = fresh.dataMap
	t.rowOrder = fresh.rowOrder
	t.Unsaved = false
	return nil, nil
}
