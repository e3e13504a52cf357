package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionStartsAtRoot(t *testing.T) {
	sess := New("/tmp/qilodb", []byte("key"), 4)
	assert.Equal(t, Root, sess.Context())
	assert.Equal(t, "dbms >> ", sess.Prompt())
}

func TestDatabaseDirEmptyAtRoot(t *testing.T) {
	sess := New("/tmp/qilodb", []byte("key"), 4)
	assert.Equal(t, "", sess.DatabaseDir())
}

func TestContextReflectsCurrentDatabase(t *testing.T) {
	sess := New("/tmp/qilodb", []byte("key"), 4)
	sess.CurrentDatabase = "demo"
	assert.Equal(t, Database, sess.Context())
	assert.Equal(t, "demo >> ", sess.Prompt())
}

func TestDropDatabaseClearsTableToo(t *testing.T) {
	sess := New("/tmp/qilodb", []byte("key"), 4)
	sess.CurrentDatabase = "demo"
	sess.DropDatabase()
	assert.Equal(t, "", sess.CurrentDatabase)
	assert.Nil(t, sess.CurrentTable)
	assert.Equal(t, Root, sess.Context())
}
