package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitValueListBasic(t *testing.T) {
	values := SplitValueList(`1, "alice", null`)
	assert.Equal(t, []string{"1", "alice", ""}, values)
}

func TestSplitValueListRespectsQuotedCommas(t *testing.T) {
	values := SplitValueList(`"bob, jr", 2`)
	assert.Equal(t, []string{"bob, jr", "2"}, values)
}

func TestInsertRejectsWrongArity(t *testing.T) {
	tbl := newTestTable(t, "id(INT)(PRIMARY),name(VARCHAR)")
	err := tbl.Insert([]string{"1"})
	require.Error(t, err)
}

func TestInsertAppliesDefault(t *testing.T) {
	tbl := newTestTable(t, "id(INT)(PRIMARY),age(INT)(DEFAULT#18)")
	require.NoError(t, tbl.Insert([]string{"1", ""}))
	row := tbl.Rows()[0]
	assert.Equal(t, "18", tbl.CellAt(row, 1))
}

func TestInsertRejectsNullOnNotNull(t *testing.T) {
	tbl := newTestTable(t, "id(INT)(PRIMARY),name(VARCHAR)(NOT_NULL)")
	err := tbl.Insert([]string{"1", ""})
	require.Error(t, err)
}

func TestInsertRejectsDuplicateUnique(t *testing.T) {
	tbl := newTestTable(t, "id(INT)(PRIMARY),email(VARCHAR)(UNIQUE)")
	require.NoError(t, tbl.Insert([]string{"1", "a@x.com"}))
	err := tbl.Insert([]string{"2", "a@x.com"})
	require.Error(t, err)
}

func TestInsertRejectsDuplicatePrimaryKey(t *testing.T) {
	tbl := newTestTable(t, "id(INT)(PRIMARY),name(VARCHAR)")
	require.NoError(t, tbl.Insert([]string{"1", "alice"}))
	err := tbl.Insert([]string{"1", "bob"})
	require.Error(t, err)
}

func TestInsertRejectsTypeMismatch(t *testing.T) {
	tbl := newTestTable(t, "id(INT)(PRIMARY),age(INT)")
	err := tbl.Insert([]string{"1", "not-a-number"})
	require.Error(t, err)
}

func TestInsertAutoIncrementUsesMaxExistingValue(t *testing.T) {
	tbl := newTestTable(t, "id(INT)(PRIMARY)(AUTO_INCREMENT)")
	require.NoError(t, tbl.Insert([]string{""}))
	require.NoError(t, tbl.Insert([]string{"10"}))
	require.NoError(t, tbl.Insert([]string{""}))
	rows := tbl.Rows()
	assert.Equal(t, "11", rows[2].PK)
}
