package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech-hunter-mainak/qilodb/internal/crypto"
	"github.com/tech-hunter-mainak/qilodb/internal/schema"
)

func testKey() []byte {
	return crypto.DeriveKey(crypto.StoreHash("hunter2"))
}

func newTestTable(t *testing.T, headerLine string) *Table {
	t.Helper()
	sch, err := schema.ParseHeaderLine(headerLine)
	require.NoError(t, err)
	tbl, err := Create(t.TempDir(), "people", testKey(), sch)
	require.NoError(t, err)
	return tbl
}

func TestCreateStartsEmptyAndClean(t *testing.T) {
	tbl := newTestTable(t, "id(INT)(PRIMARY),name(VARCHAR)")
	assert.Equal(t, 0, tbl.RowCount())
	assert.False(t, tbl.Unsaved)
}

func TestInsertThenCommitThenLoadRoundTrip(t *testing.T) {
	tbl := newTestTable(t, "id(INT)(PRIMARY),name(VARCHAR)")
	require.NoError(t, tbl.Insert([]string{"1", "alice"}))
	require.NoError(t, tbl.Insert([]string{"2", "bob"}))
	assert.True(t, tbl.Unsaved)

	require.NoError(t, tbl.Commit())
	assert.False(t, tbl.Unsaved)

	reloaded, err := Load(tbl.DatabaseDir, tbl.Name, tbl.Key)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.RowCount())
}

func TestInsertAutoIncrementsSyntheticPrimaryKey(t *testing.T) {
	tbl := newTestTable(t, "name(VARCHAR)")
	require.NoError(t, tbl.Insert([]string{"", ""}))
	require.NoError(t, tbl.Insert([]string{"", ""}))
	rows := tbl.Rows()
	assert.Equal(t, "1", rows[0].PK)
	assert.Equal(t, "2", rows[1].PK)
}

func TestRollbackOnCleanTableIsWarningNotError(t *testing.T) {
	tbl := newTestTable(t, "id(INT)(PRIMARY)")
	warn, err := tbl.Rollback()
	require.NoError(t, err)
	require.NotNil(t, warn)
}

func TestRollbackDiscardsUncommittedChanges(t *testing.T) {
	tbl := newTestTable(t, "id(INT)(PRIMARY),name(VARCHAR)")
	require.NoError(t, tbl.Insert([]string{"1", "alice"}))
	require.NoError(t, tbl.Commit())

	require.NoError(t, tbl.Insert([]string{"2", "bob"}))
	assert.Equal(t, 2, tbl.RowCount())

	warn, err := tbl.Rollback()
	require.NoError(t, err)
	assert.Nil(t, warn)
	assert.Equal(t, 1, tbl.RowCount())
}

func TestCellAtAndTupleOrderMatchesSchema(t *testing.T) {
	tbl := newTestTable(t, "name(VARCHAR),id(INT)(PRIMARY),age(INT)")
	require.NoError(t, tbl.Insert([]string{"alice", "1", "30"}))
	row := tbl.Rows()[0]
	assert.Equal(t, []string{"alice", "1", "30"}, tbl.Tuple(row))
}
