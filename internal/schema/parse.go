package schema

import (
	"strings"

	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
)

// Schema is the ordered, validated column list for a table, with the
// primary key column's index already resolved. The column count always
// matches every stored row's field count, and exactly one column is PRIMARY.
type Schema struct {
	Columns         []*Column
	PrimaryKeyIndex int
}

// ColumnNames returns the schema's column names in declared order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (s *Schema) Column(name string) (*Column, int, bool) {
	for i, c := range s.Columns {
		if c.Name == name {
			return c, i, true
		}
	}
	return nil, -1, false
}

// String serializes the schema back to the on-disk header line: the
// comma-joined column specs in declared order.
func (s *Schema) String() string {
	parts := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// ParseHeaderLine parses line 1 of a table's plaintext — the
// comma-separated column spec list — into a validated Schema. At most one
// column may be PRIMARY and it must be INT/BIGINT typed (when no column is
// PRIMARY, a synthetic self_pk is prepended), no column may repeat a
// constraint, and a DEFAULT literal must validate against its own column's
// type.
func ParseHeaderLine(line string) (*Schema, error) {
	defs := splitTopLevelCommas(line)
	if len(defs) == 0 {
		return nil, qerrors.Syntaxf("schema must declare at least one column")
	}

	columns := make([]*Column, 0, len(defs)+1)
	for _, def := range defs {
		col, err := parseColumnSpec(strings.TrimSpace(def))
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return assembleSchema(columns)
}

// parseColumnSpec parses one column definition of the grammar
// NAME "(" TYPE ")" ( "(" CONSTRAINT ")" )*.
func parseColumnSpec(def string) (*Column, error) {
	open := strings.IndexByte(def, '(')
	if open == -1 {
		return nil, qerrors.Syntaxf("column %q: expected NAME(TYPE)", def)
	}
	name := strings.TrimSpace(def[:open])
	if name == "" {
		return nil, qerrors.Syntaxf("column definition %q: missing column name", def)
	}

	groups, err := splitParenGroups(def[open:])
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, qerrors.Syntaxf("column %q: missing type", name)
	}

	typeName := strings.ToUpper(strings.TrimSpace(groups[0]))
	return newColumn(name, typeName, groups[1:])
}

// newColumn builds a Column from a name, a type keyword, and its
// constraint tokens (each either a bare constraint name or
// "DEFAULT#<literal>"), shared by both the on-disk paren-grouped spec
// grammar and the command-line space-separated MAKE grammar.
func newColumn(name, typeName string, constraintTokens []string) (*Column, error) {
	if !ValidType(typeName) {
		return nil, qerrors.Syntaxf("column %q: unknown type %q", name, typeName)
	}

	col := &Column{Name: name, Type: DataType(typeName)}
	seen := map[Constraint]bool{}
	for _, raw := range constraintTokens {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		var cons Constraint
		var literal string
		if strings.HasPrefix(strings.ToUpper(raw), string(Default)+"#") {
			cons = Default
			literal = raw[len(Default)+1:]
		} else {
			cons = Constraint(strings.ToUpper(raw))
		}

		switch cons {
		case Primary:
			col.Primary = true
		case NotNull:
			col.NotNull = true
		case Unique:
			col.Unique = true
		case AutoIncrement:
			col.AutoIncrement = true
		case Default:
			col.HasDefault = true
			col.DefaultValue = literal
			if !Validate(literal, col.Type) {
				return nil, qerrors.Mismatchf("column %q: default value %q does not validate against type %s", name, literal, col.Type)
			}
		default:
			return nil, qerrors.Syntaxf("column %q: unknown constraint %q", name, raw)
		}
		if seen[cons] {
			return nil, qerrors.Syntaxf("column %q: duplicate constraint %q", name, cons)
		}
		seen[cons] = true
	}
	return col, nil
}

// assembleSchema folds parsed columns into a Schema, enforcing at most one
// PRIMARY (INT/BIGINT only) and synthesizing self_pk when none was
// declared.
func assembleSchema(columns []*Column) (*Schema, error) {
	primaryIdx := -1
	for i, col := range columns {
		if !col.Primary {
			continue
		}
		if primaryIdx != -1 {
			return nil, qerrors.Syntaxf("at most one PRIMARY column is allowed")
		}
		if !col.Type.IsIntegral() {
			return nil, qerrors.Syntaxf("column %q: PRIMARY column must be INT or BIGINT", col.Name)
		}
		primaryIdx = i
	}

	if primaryIdx == -1 {
		columns = append([]*Column{SyntheticPrimaryKey()}, columns...)
		primaryIdx = 0
	}
	return &Schema{Columns: columns, PrimaryKeyIndex: primaryIdx}, nil
}

// ParseCommandSchema parses the MAKE verb's captured schema text — a
// comma-separated list of "name TYPE CONSTRAINT1 CONSTRAINT2 ..." column
// definitions, space-delimited within each definition — into a validated
// Schema. This is the command-line counterpart to ParseHeaderLine's
// paren-grouped on-disk grammar.
func ParseCommandSchema(raw string) (*Schema, error) {
	defs := splitTopLevelCommas(raw)
	if len(defs) == 0 {
		return nil, qerrors.Syntaxf("schema must declare at least one column")
	}

	columns := make([]*Column, 0, len(defs)+1)
	for _, def := range defs {
		fields := strings.Fields(def)
		if len(fields) < 2 {
			return nil, qerrors.Syntaxf("column definition %q: expected NAME TYPE [CONSTRAINT ...]", strings.TrimSpace(def))
		}
		col, err := newColumn(fields[0], strings.ToUpper(fields[1]), fields[2:])
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return assembleSchema(columns)
}

// splitTopLevelCommas splits a comma-separated list while respecting
// parenthesized groups, so "id(INT)(PRIMARY),name(VARCHAR)" splits into
// two column definitions rather than breaking inside a constraint group.
func splitTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if strings.TrimSpace(s[start:]) != "" {
		parts = append(parts, s[start:])
	}
	return parts
}

// splitParenGroups splits "(TYPE)(CONSTRAINT1)(CONSTRAINT2)" into its
// parenthesized groups' interiors.
func splitParenGroups(s string) ([]string, error) {
	var groups []string
	i := 0
	for i < len(s) {
		for i < len(s) && s[i] != '(' {
			i++
		}
		if i >= len(s) {
			break
		}
		depth := 1
		j := i + 1
		for j < len(s) && depth > 0 {
			switch s[j] {
			case '(':
				depth++
			case ')':
				depth--
			}
			j++
		}
		if depth != 0 {
			return nil, qerrors.Syntaxf("mismatched parentheses in column definition %q", s)
		}
		groups = append(groups, s[i+1:j-1])
		i = j
	}
	return groups, nil
}
