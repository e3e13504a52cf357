package engine

import (
	"github.com/tech-hunter-mainak/qilodb/internal/condition"
	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
	"github.com/tech-hunter-mainak/qilodb/internal/schema"
)

// DeleteRow removes the row identified by pk, if present. Deleting an
// absent row is a no-op.
func (t *Table) DeleteRow(pk string) {
	if !t.HasRow(pk) {
		return
	}
	delete(t.dataMap, pk)
	for i, id := range t.rowOrder {
		if id == pk {
			t.rowOrder = append(t.rowOrder[:i], t.rowOrder[i+1:]...)
			break
		}
	}
	t.markDirty()
}

// DeleteRowsMatching removes every row for which expr evaluates true,
// used by `del where <cond>`.
func (t *Table) DeleteRowsMatching(expr condition.Expression) int {
	var toDelete []string
	for _, row := range t.Rows() {
		if condition.Evaluate(expr, func(col int) string { return t.CellAt(row, col) }) {
			toDelete = append(toDelete, row.PK)
		}
	}
	for _, pk := range toDelete {
		t.DeleteRow(pk)
	}
	return len(toDelete)
}

// DeleteColumn removes colName from the schema and every row. Deleting the
// primary-key column is rejected.
func (t *Table) DeleteColumn(colName string) error {
	col, idx, ok := t.Schema.Column(colName)
	if !ok {
		return qerrors.Invalidf("column %q not found", colName)
	}
	if col.Primary {
		return qerrors.Logicf("cannot delete the primary key column %q", colName)
	}

	slot := t.slotForColumn(idx)
	for _, row := range t.dataMap {
		row.Values = append(row.Values[:slot], row.Values[slot+1:]...)
	}
	t.Schema.Columns = append(t.Schema.Columns[:idx], t.Schema.Columns[idx+1:]...)
	if idx < t.Schema.PrimaryKeyIndex {
		t.Schema.PrimaryKeyIndex--
	}
	t.markDirty()
	return nil
}

// Clean empties all rows, preserving the schema.
func (t *Table) Clean() {
	t.dataMap = map[string]*Row{}
	t.rowOrder = nil
	t.markDirty()
}

// UpdateColumnValue sets every matching row's colName cell from oldValue to
// newValue, under the optional condition expr (empty expr matches
// everything), and returns the number of rows changed. Updating the
// primary-key column is allowed unless newValue collides with an existing
// row's key.
func (t *Table) UpdateColumnValue(colName, oldValue, newValue string, expr condition.Expression) (int, error) {
	col, idx, ok := t.Schema.Column(colName)
	if !ok {
		return 0, qerrors.Invalidf("column %q not found", colName)
	}
	if !schema.Validate(newValue, col.Type) {
		return 0, qerrors.Mismatchf("value %q does not match type %s for column %q", newValue, col.Type, colName)
	}

	count := 0
	for _, row := range t.Rows() {
		if !condition.Evaluate(expr, func(c int) string { return t.CellAt(row, c) }) {
			continue
		}
		if t.CellAt(row, idx) != oldValue {
			continue
		}
		if col.Primary {
			if newValue != row.PK && t.HasRow(newValue) {
				return count, qerrors.Constraintf("updating primary key to %q would collide with an existing row", newValue)
			}
			if err := t.rekeyRow(row.PK, newValue); err != nil {
				return count, err
			}
		} else {
			t.setCellAt(row, idx, newValue)
		}
		count++
	}
	if count > 0 {
		t.markDirty()
	}
	return count, nil
}

// UpdateAnyValue sets every non-primary cell equal to oldValue (in rows
// matching expr) to newValue, across all columns, and returns the count of
// cells changed.
func (t *Table) UpdateAnyValue(oldValue, newValue string, expr condition.Expression) int {
	count := 0
	for _, row := range t.Rows() {
		if !condition.Evaluate(expr, func(c int) string { return t.CellAt(row, c) }) {
			continue
		}
		for i := range row.Values {
			if row.Values[i] == oldValue {
				row.Values[i] = newValue
				count++
			}
		}
	}
	if count > 0 {
		t.markDirty()
	}
	return count
}

// rekeyRow moves a row from oldPK to newPK in dataMap and rowOrder,
// preserving its position.
func (t *Table) rekeyRow(oldPK, newPK string) error {
	row, ok := t.dataMap[oldPK]
	if !ok {
		return qerrors.Programf("row %q vanished during update", oldPK)
	}
	delete(t.dataMap, oldPK)
	row.PK = newPK
	t.dataMap[newPK] = row
	for i, id := range t.rowOrder {
		if id == oldPK {
			t.rowOrder[i] = newPK
			break
		}
	}
	return nil
}
