package engine

import "github.com/tech-hunter-mainak/qilodb/internal/schema"

// schemaLookup adapts a *schema.Schema to condition.ColumnLookup so the
// condition package never needs to import schema directly.
type schemaLookup struct {
	sch *schema.Schema
}

// ColumnLookup returns a condition.ColumnLookup bound to the table's schema.
func (t *Table) ColumnLookup() schemaLookup {
	return schemaLookup{sch: t.Schema}
}

func (l schemaLookup) Index(name string) (int, bool) {
	_, idx, ok := l.sch.Column(name)
	return idx, ok
}

func (l schemaLookup) Validate(idx int, value string) bool {
	return schema.Validate(value, l.sch.Columns[idx].Type)
}
