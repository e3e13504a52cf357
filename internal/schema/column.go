// Package schema models qiloDB's closed set of column types and
// constraints and parses a table's header row (the comma-separated column
// spec line) into a typed in-memory form.
package schema

import "fmt"

// DataType is the closed set of column types qiloDB understands.
type DataType string

const (
	Int       DataType = "INT"
	BigInt    DataType = "BIGINT"
	Double    DataType = "DOUBLE"
	BigDouble DataType = "BIGDOUBLE"
	Char      DataType = "CHAR"
	VarChar   DataType = "VARCHAR"
	StringT   DataType = "STRING" // alias of VARCHAR
	Date      DataType = "DATE"
	Bool      DataType = "BOOL"
)

var knownTypes = map[DataType]bool{
	Int: true, BigInt: true, Double: true, BigDouble: true,
	Char: true, VarChar: true, StringT: true, Date: true, Bool: true,
}

// ValidType reports whether name is a recognized data type keyword.
func ValidType(name string) bool {
	return knownTypes[DataType(name)]
}

// IsIntegral reports whether t is one of the two integer primary-key
// eligible types.
func (t DataType) IsIntegral() bool {
	return t == Int || t == BigInt
}

// IsStringLike reports whether t holds textual data, used by the SHOW LIKE
// prefix filter to decide which cells to test.
func (t DataType) IsStringLike() bool {
	return t == Char || t == VarChar || t == StringT
}

// Constraint is the closed set of per-column constraints.
type Constraint string

const (
	Primary       Constraint = "PRIMARY"
	NotNull       Constraint = "NOT_NULL"
	Unique        Constraint = "UNIQUE"
	AutoIncrement Constraint = "AUTO_INCREMENT"
	Default       Constraint = "DEFAULT" // carries a literal, see Column.DefaultValue
)

// Column is one typed, constrained column of a table's schema.
type Column struct {
	Name          string
	Type          DataType
	Primary       bool
	NotNull       bool
	Unique        bool
	AutoIncrement bool
	HasDefault    bool
	DefaultValue  string // only meaningful when HasDefault
}

// String renders the column back into its on-disk header form:
// name(TYPE)(CONSTRAINT1)(CONSTRAINT2)...
func (c *Column) String() string {
	out := fmt.Sprintf("%s(%s)", c.Name, c.Type)
	if c.Primary {
		out += "(" + string(Primary) + ")"
	}
	if c.NotNull {
		out += "(" + string(NotNull) + ")"
	}
	if c.Unique {
		out += "(" + string(Unique) + ")"
	}
	if c.AutoIncrement {
		out += "(" + string(AutoIncrement) + ")"
	}
	if c.HasDefault {
		out += fmt.Sprintf("(%s#%s)", Default, c.DefaultValue)
	}
	return out
}

// SyntheticPrimaryKeyName is the column name the engine prepends when a
// schema declares no PRIMARY column.
const SyntheticPrimaryKeyName = "self_pk"

// SyntheticPrimaryKey builds the synthetic "self_pk INT PRIMARY" column.
func SyntheticPrimaryKey() *Column {
	return &Column{Name: SyntheticPrimaryKeyName, Type: Int, Primary: true}
}
