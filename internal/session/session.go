// Package session holds the REPL's current context (root, database, or
// table) and the process-lifetime state (data root, AES key) threaded
// through the command dispatcher.
package session

import (
	"bufio"
	"path/filepath"

	"github.com/tech-hunter-mainak/qilodb/internal/engine"
)

// Context is the three-level scope the command grammar is sensitive to.
type Context int

const (
	Root Context = iota
	Database
	Table
)

// Session is the REPL's mutable state across statements.
type Session struct {
	DataRoot string
	Key      []byte
	MaxTries int

	CurrentDatabase string
	CurrentTable    *engine.Table

	// Input is the single scanner the REPL reads lines from. The command
	// dispatcher reuses it for mid-statement prompts (the unsaved-changes
	// y/n question) instead of wrapping a second scanner around the same
	// reader, which would buffer ahead and silently eat the answer under
	// piped, non-interactive input.
	Input *bufio.Scanner

	Exit bool
}

// New builds a fresh Session positioned at Root.
func New(dataRoot string, key []byte, maxTries int) *Session {
	return &Session{DataRoot: dataRoot, Key: key, MaxTries: maxTries}
}

// Context reports the session's current scope.
func (s *Session) Context() Context {
	switch {
	case s.CurrentTable != nil:
		return Table
	case s.CurrentDatabase != "":
		return Database
	default:
		return Root
	}
}

// DatabaseDir returns the absolute path of the currently selected database
// directory, or "" if none is selected.
func (s *Session) DatabaseDir() string {
	if s.CurrentDatabase == "" {
		return ""
	}
	return filepath.Join(s.DataRoot, s.CurrentDatabase)
}

// Prompt renders the REPL prompt for the session's current context.
func (s *Session) Prompt() string {
	switch s.Context() {
	case Table:
		return s.CurrentTable.Name + " >> "
	case Database:
		return s.CurrentDatabase + " >> "
	default:
		return "dbms >> "
	}
}

// DropTable clears the current table, returning the session to Database
// context.
func (s *Session) DropTable() {
	s.CurrentTable = nil
}

// DropDatabase clears the current database and table, returning the
// session to Root context.
func (s *Session) DropDatabase() {
	s.CurrentTable = nil
	s.CurrentDatabase = ""
}
