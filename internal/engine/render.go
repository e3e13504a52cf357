package engine

import (
	"strings"

	"github.com/tech-hunter-mainak/qilodb/internal/condition"
	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
	"github.com/tech-hunter-mainak/qilodb/internal/schema"
)

// ShowMode selects which slice of the filtered row set to render.
type ShowMode int

const (
	ShowAll ShowMode = iota
	ShowHead
	ShowLimit
	ShowLimitTail // "limit ~N": the last N rows
)

// ShowOptions configures a SHOW render.
type ShowOptions struct {
	Columns []string // nil/empty means every column ("*")
	Mode    ShowMode
	N       int // meaningful for ShowLimit / ShowLimitTail
	Like    string // prefix to match, already stripped of its trailing "*"; empty means no LIKE filter
	Where   condition.Expression
}

// Describe renders the schema as a box-drawn table: one row per column,
// columns NAME / TYPE / CONSTRAINTS.
func (t *Table) Describe() string {
	headers := []string{"NAME", "TYPE", "CONSTRAINTS"}
	rows := make([][]string, len(t.Schema.Columns))
	for i, col := range t.Schema.Columns {
		rows[i] = []string{col.Name, string(col.Type), constraintSummary(col)}
	}
	return drawTable(headers, rows)
}

// constraintSummary renders a column's active constraints as a compact,
// comma-joined list for the DESCRIBE table.
func constraintSummary(col *schema.Column) string {
	var parts []string
	if col.Primary {
		parts = append(parts, string(schema.Primary))
	}
	if col.NotNull {
		parts = append(parts, string(schema.NotNull))
	}
	if col.Unique {
		parts = append(parts, string(schema.Unique))
	}
	if col.AutoIncrement {
		parts = append(parts, string(schema.AutoIncrement))
	}
	if col.HasDefault {
		parts = append(parts, string(schema.Default)+"#"+col.DefaultValue)
	}
	return strings.Join(parts, ", ")
}

// Show renders the rows selected by opts as a box-drawn table.
func (t *Table) Show(opts ShowOptions) (string, error) {
	columns := opts.Columns
	if len(columns) == 0 {
		columns = t.Schema.ColumnNames()
	}
	colIdx := make([]int, len(columns))
	for i, name := range columns {
		_, idx, ok := t.Schema.Column(name)
		if !ok {
			return "", qerrors.Invalidf("column %q not found", name)
		}
		colIdx[i] = idx
	}

	rows := t.Rows()

	var filtered []*Row
	for _, row := range rows {
		if !condition.Evaluate(opts.Where, func(c int) string { return t.CellAt(row, c) }) {
			continue
		}
		if opts.Like != "" && !t.rowMatchesLike(row, colIdx, opts.Like) {
			continue
		}
		filtered = append(filtered, row)
	}

	filtered, err := sliceForMode(filtered, opts.Mode, opts.N)
	if err != nil {
		return "", err
	}

	cellRows := make([][]string, len(filtered))
	for i, row := range filtered {
		cells := make([]string, len(colIdx))
		for j, idx := range colIdx {
			cells[j] = t.CellAt(row, idx)
		}
		cellRows[i] = cells
	}

	return drawTable(columns, cellRows), nil
}

// rowMatchesLike reports whether any of the row's displayed string-like
// cells has prefix as a prefix.
func (t *Table) rowMatchesLike(row *Row, colIdx []int, prefix string) bool {
	for _, idx := range colIdx {
		if !t.Schema.Columns[idx].Type.IsStringLike() {
			continue
		}
		if strings.HasPrefix(t.CellAt(row, idx), prefix) {
			return true
		}
	}
	return false
}

func sliceForMode(rows []*Row, mode ShowMode, n int) ([]*Row, error) {
	switch mode {
	case ShowAll:
		return rows, nil
	case ShowHead:
		if len(rows) <= 5 {
			return rows, nil
		}
		return rows[:5], nil
	case ShowLimit:
		if n > len(rows) {
			return nil, qerrors.Invalidf("limit %d exceeds row count %d", n, len(rows))
		}
		return rows[:n], nil
	case ShowLimitTail:
		if n > len(rows) {
			return nil, qerrors.Invalidf("limit ~%d exceeds row count %d", n, len(rows))
		}
		return rows[len(rows)-n:], nil
	default:
		return rows, nil
	}
}

// drawTable renders headers/rows as a box-drawn table: '+-...-+' dividers,
// centered header cells, left-aligned data cells, one space of padding.
func drawTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	divider := buildDivider(widths)

	sb.WriteString(divider)
	sb.WriteString(buildRow(headers, widths, true))
	sb.WriteString(divider)
	for _, row := range rows {
		sb.WriteString(buildRow(row, widths, false))
	}
	sb.WriteString(divider)
	return sb.String()
}

func buildDivider(widths []int) string {
	var sb strings.Builder
	sb.WriteString("+")
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteString("+")
	}
	sb.WriteString("\n")
	return sb.String()
}

func buildRow(cells []string, widths []int, centered bool) string {
	var sb strings.Builder
	sb.WriteString("|")
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if centered {
			sb.WriteString(" " + center(cell, w) + " ")
		} else {
			sb.WriteString(" " + leftAlign(cell, w) + " ")
		}
		sb.WriteString("|")
	}
	sb.WriteString("\n")
	return sb.String()
}

func leftAlign(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
