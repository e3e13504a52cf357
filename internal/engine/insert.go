package engine

import (
	"strconv"
	"strings"

	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
	"github.com/tech-hunter-mainak/qilodb/internal/schema"
)

// SplitValueList parses a raw "(v1, v2, v3)" capture (already stripped of
// its outer parens by the tokenizer) into individual cell values: split on
// unquoted commas, strip surrounding quotes, trim whitespace, and map an
// empty field or the word null (any letter case) to the null marker.
func SplitValueList(raw string) []string {
	fields := splitUnquotedCommas(raw)
	values := make([]string, len(fields))
	for i, f := range fields {
		v := strings.TrimSpace(f)
		v = strings.Trim(v, `"'`)
		v = strings.TrimSpace(v)
		if strings.EqualFold(v, "null") {
			v = schema.NullMarker
		}
		values[i] = v
	}
	return values
}

func splitUnquotedCommas(s string) []string {
	var fields []string
	var cur strings.Builder
	inS, inD := false, false
	for _, r := range s {
		switch {
		case r == '\'' && !inD:
			inS = !inS
			cur.WriteRune(r)
		case r == '"' && !inS:
			inD = !inD
			cur.WriteRune(r)
		case r == ',' && !inS && !inD:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

// Insert validates a single parsed value list column by column — applying
// defaults, NOT_NULL, UNIQUE, AUTO_INCREMENT/PRIMARY generation, and type
// checks in schema order — then appends the new row on success.
func (t *Table) Insert(values []string) error {
	if len(values) != len(t.Schema.Columns) {
		return qerrors.Invalidf("expected %d values, got %d", len(t.Schema.Columns), len(values))
	}

	tuple := make([]string, len(values))
	copy(tuple, values)

	for i, col := range t.Schema.Columns {
		value := tuple[i]

		if value == schema.NullMarker && col.HasDefault {
			value = col.DefaultValue
		}

		if value == schema.NullMarker && col.NotNull {
			return qerrors.Constraintf("column %q cannot be null", col.Name)
		}

		if value != schema.NullMarker && col.Unique {
			if t.columnHasValue(i, value) {
				return qerrors.Constraintf("column %q already contains value %q", col.Name, value)
			}
		}

		if value == schema.NullMarker && (col.AutoIncrement || col.Primary) {
			value = strconv.FormatInt(t.maxNumericValue(i)+1, 10)
		}

		if !schema.Validate(value, col.Type) {
			return qerrors.Mismatchf("value %q does not match type %s for column %q", value, col.Type, col.Name)
		}

		tuple[i] = value
	}

	pk := tuple[t.primaryKeyIndex()]
	if t.HasRow(pk) {
		return qerrors.Constraintf("duplicate primary key %q", pk)
	}

	values2 := make([]string, 0, len(tuple)-1)
	for i, v := range tuple {
		if i != t.primaryKeyIndex() {
			values2 = append(values2, v)
		}
	}
	t.dataMap[pk] = &Row{PK: pk, Values: values2}
	t.rowOrder = append(t.rowOrder, pk)
	t.markDirty()
	return nil
}

// columnHasValue reports whether any existing row has value at column i.
func (t *Table) columnHasValue(i int, value string) bool {
	for _, row := range t.Rows() {
		if t.CellAt(row, i) == value {
			return true
		}
	}
	return false
}

// maxNumericValue returns the largest numeric value currently stored in
// column i, or 0 if the column is empty or holds no parseable numbers —
// used to compute the next AUTO_INCREMENT/PRIMARY value.
func (t *Table) maxNumericValue(i int) int64 {
	var max int64
	for _, row := range t.Rows() {
		v := t.CellAt(row, i)
		n, err := strconv.ParseInt(v, 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	return max
}
