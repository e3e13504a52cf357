package command

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tech-hunter-mainak/qilodb/internal/crypto"
	"github.com/tech-hunter-mainak/qilodb/internal/session"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	key := crypto.DeriveKey(crypto.StoreHash("hunter2"))
	return session.New(t.TempDir(), key, crypto.DefaultMaxAttempts)
}

func dispatch(t *testing.T, sess *session.Session, line string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	msg, err := Dispatch(sess, strings.Fields(line), &out)
	if err == nil && out.Len() > 0 {
		return out.String(), nil
	}
	return msg, err
}

func TestInitCreatesDatabaseDirectory(t *testing.T) {
	sess := newTestSession(t)
	msg, err := dispatch(t, sess, "init demo")
	require.NoError(t, err)
	assert.Contains(t, msg, "demo")
}

func TestInitRejectsDuplicateDatabase(t *testing.T) {
	sess := newTestSession(t)
	_, err := dispatch(t, sess, "init demo")
	require.NoError(t, err)
	_, err = dispatch(t, sess, "init demo")
	require.Error(t, err)
}

func TestInitRejectsBadIdentifier(t *testing.T) {
	sess := newTestSession(t)
	_, err := dispatch(t, sess, "init bad-name")
	require.Error(t, err)
}

func TestEnterRequiresExistingDatabase(t *testing.T) {
	sess := newTestSession(t)
	_, err := dispatch(t, sess, "enter ghost")
	require.Error(t, err)
}

func TestEnterSwitchesContext(t *testing.T) {
	sess := newTestSession(t)
	_, err := dispatch(t, sess, "init demo")
	require.NoError(t, err)
	_, err = dispatch(t, sess, "enter demo")
	require.NoError(t, err)
	assert.Equal(t, session.Database, sess.Context())
}

func setupDatabase(t *testing.T, sess *session.Session) {
	t.Helper()
	_, err := dispatch(t, sess, "init demo")
	require.NoError(t, err)
	_, err = dispatch(t, sess, "enter demo")
	require.NoError(t, err)
}

func TestMakeCreatesTableAndSelectsIt(t *testing.T) {
	sess := newTestSession(t)
	setupDatabase(t, sess)

	var out bytes.Buffer
	_, err := Dispatch(sess, []string{"make", "people", "id INT PRIMARY, name VARCHAR"}, &out)
	require.NoError(t, err)
	assert.Equal(t, session.Table, sess.Context())
}

func setupTable(t *testing.T, sess *session.Session) {
	t.Helper()
	setupDatabase(t, sess)
	var out bytes.Buffer
	_, err := Dispatch(sess, []string{"make", "people", "id INT PRIMARY, name VARCHAR, age INT"}, &out)
	require.NoError(t, err)
}

func TestInsertThenShowRendersRows(t *testing.T) {
	sess := newTestSession(t)
	setupTable(t, sess)

	_, err := dispatch(t, sess, "insert 1,alice,30")
	require.NoError(t, err)

	out, err := dispatch(t, sess, "show *")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
}

func TestDescribeWritesTableDirectlyToOut(t *testing.T) {
	sess := newTestSession(t)
	setupTable(t, sess)

	out, err := dispatch(t, sess, "describe")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "id")
}

func TestDeleteResolvesRowBeforeColumn(t *testing.T) {
	sess := newTestSession(t)
	setupTable(t, sess)
	_, err := dispatch(t, sess, "insert 1,alice,30")
	require.NoError(t, err)

	msg, err := dispatch(t, sess, "del 1")
	require.NoError(t, err)
	assert.Contains(t, msg, "1 item(s) deleted")
	assert.False(t, sess.CurrentTable.HasRow("1"))
}

func TestDeleteFallsBackToColumnName(t *testing.T) {
	sess := newTestSession(t)
	setupTable(t, sess)
	_, err := dispatch(t, sess, "insert 1,alice,30")
	require.NoError(t, err)

	_, err = dispatch(t, sess, "del age")
	require.NoError(t, err)
	_, _, ok := sess.CurrentTable.Schema.Column("age")
	assert.False(t, ok)
}

func TestDeleteUnresolvedItemIsError(t *testing.T) {
	sess := newTestSession(t)
	setupTable(t, sess)
	_, err := dispatch(t, sess, "del ghost")
	require.Error(t, err)
}

func TestChangeWholeRowSyntax(t *testing.T) {
	sess := newTestSession(t)
	setupTable(t, sess)
	_, err := dispatch(t, sess, "insert 1,alice,30")
	require.NoError(t, err)

	msg, err := dispatch(t, sess, "change alice to alicia")
	require.NoError(t, err)
	assert.Contains(t, msg, "cell(s) changed")
}

func TestChangeColumnScopedSyntax(t *testing.T) {
	sess := newTestSession(t)
	setupTable(t, sess)
	_, err := dispatch(t, sess, "insert 1,alice,30")
	require.NoError(t, err)

	msg, err := dispatch(t, sess, "change name alice to alicia")
	require.NoError(t, err)
	assert.Contains(t, msg, "row(s) changed")
}

func TestCleanEmptiesTable(t *testing.T) {
	sess := newTestSession(t)
	setupTable(t, sess)
	_, err := dispatch(t, sess, "insert 1,alice,30")
	require.NoError(t, err)

	_, err = dispatch(t, sess, "clean")
	require.NoError(t, err)
	assert.Equal(t, 0, sess.CurrentTable.RowCount())
}

func TestCommitPersistsToDisk(t *testing.T) {
	sess := newTestSession(t)
	setupTable(t, sess)
	_, err := dispatch(t, sess, "insert 1,alice,30")
	require.NoError(t, err)

	_, err = dispatch(t, sess, "commit")
	require.NoError(t, err)
	assert.False(t, sess.CurrentTable.Unsaved)
}

func TestListAtRootShowsDatabases(t *testing.T) {
	sess := newTestSession(t)
	_, err := dispatch(t, sess, "init demo")
	require.NoError(t, err)

	msg, err := dispatch(t, sess, "list")
	require.NoError(t, err)
	assert.Contains(t, msg, "demo")
}

func TestExitFromDatabaseReturnsToRoot(t *testing.T) {
	sess := newTestSession(t)
	setupDatabase(t, sess)
	_, err := dispatch(t, sess, "exit")
	require.NoError(t, err)
	assert.Equal(t, session.Root, sess.Context())
}

func TestExitFromRootSetsExitFlag(t *testing.T) {
	sess := newTestSession(t)
	_, err := dispatch(t, sess, "exit")
	require.NoError(t, err)
	assert.True(t, sess.Exit)
}

func TestExitFromTableWithUnsavedChangesPromptsAndDiscardsOnNo(t *testing.T) {
	sess := newTestSession(t)
	setupTable(t, sess)
	_, err := dispatch(t, sess, "insert 1,alice,30")
	require.NoError(t, err)

	sess.Input = bufio.NewScanner(strings.NewReader("n\n"))
	var out bytes.Buffer
	_, err = Dispatch(sess, []string{"exit"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "unsaved changes")
	assert.Nil(t, sess.CurrentTable)
}

func TestExitFromTableWithUnsavedChangesCommitsOnYes(t *testing.T) {
	sess := newTestSession(t)
	setupTable(t, sess)
	_, err := dispatch(t, sess, "insert 1,alice,30")
	require.NoError(t, err)

	sess.Input = bufio.NewScanner(strings.NewReader("y\n"))
	var out bytes.Buffer
	_, err = Dispatch(sess, []string{"exit"}, &out)
	require.NoError(t, err)
	assert.Nil(t, sess.CurrentTable)

	_, err = dispatch(t, sess, "choose people")
	require.NoError(t, err)
	assert.Equal(t, 1, sess.CurrentTable.RowCount())
}

func TestUnknownCommandIsSyntaxError(t *testing.T) {
	sess := newTestSession(t)
	_, err := dispatch(t, sess, "bogus")
	require.Error(t, err)
}
