// Package command implements the verb grammar: given the session's current
// context and one statement's tokens, it orchestrates the engine, storage,
// and condition packages and reports a result line or an error.
package command

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tech-hunter-mainak/qilodb/internal/condition"
	"github.com/tech-hunter-mainak/qilodb/internal/engine"
	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
	"github.com/tech-hunter-mainak/qilodb/internal/schema"
	"github.com/tech-hunter-mainak/qilodb/internal/session"
	"github.com/tech-hunter-mainak/qilodb/internal/storage"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func validIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}

// Dispatch runs one statement's tokens against sess, returning a result
// message on success (printed as "res: <message>") or an error.
func Dispatch(sess *session.Session, tokens []string, out io.Writer) (string, error) {
	if len(tokens) == 0 {
		return "", qerrors.Syntaxf("missing command")
	}
	verb, args := tokens[0], tokens[1:]

	switch verb {
	case "init":
		return dispatchInit(sess, args)
	case "erase":
		return dispatchErase(sess, args)
	case "enter":
		return dispatchEnter(sess, args)
	case "choose":
		return dispatchChoose(sess, args)
	case "make":
		return dispatchMake(sess, args)
	case "describe":
		return dispatchDescribe(sess, args, out)
	case "insert":
		return dispatchInsert(sess, args)
	case "del":
		return dispatchDelete(sess, args)
	case "change":
		return dispatchChange(sess, args)
	case "clean":
		return dispatchClean(sess, args)
	case "show":
		return dispatchShow(sess, args, out)
	case "commit":
		return dispatchCommit(sess, args)
	case "rollback":
		return dispatchRollback(sess, args, out)
	case "list":
		return dispatchList(sess, args)
	case "close":
		return dispatchClose(sess, args, out)
	case "exit":
		return dispatchExit(sess, args, out)
	default:
		return "", qerrors.Syntaxf("unknown command %q", verb)
	}
}

func requireArity(args []string, n int, verb string) error {
	if len(args) > n {
		return qerrors.Syntaxf("unexpected token %q", args[n])
	}
	if len(args) < n {
		return qerrors.Syntaxf("%s: missing argument", verb)
	}
	return nil
}

func dispatchInit(sess *session.Session, args []string) (string, error) {
	if err := requireArity(args, 1, "init"); err != nil {
		return "", err
	}
	name := args[0]
	if !validIdentifier(name) {
		return "", qerrors.Syntaxf("invalid database name %q", name)
	}
	path := filepath.Join(sess.DataRoot, name)
	if _, err := os.Stat(path); err == nil {
		return "", qerrors.Logicf("database %q already exists", name)
	}
	if err := os.MkdirAll(path, 0o700); err != nil {
		return "", qerrors.Programf("could not create database %q: %v", name, err)
	}
	return fmt.Sprintf("database %q created", name), nil
}

func dispatchErase(sess *session.Session, args []string) (string, error) {
	if err := requireArity(args, 1, "erase"); err != nil {
		return "", err
	}
	name := args[0]
	if !validIdentifier(name) {
		return "", qerrors.Syntaxf("invalid name %q", name)
	}

	switch sess.Context() {
	case session.Root:
		path := filepath.Join(sess.DataRoot, name)
		if _, err := os.Stat(path); err != nil {
			return "", qerrors.Invalidf("database %q not found", name)
		}
		if err := os.RemoveAll(path); err != nil {
			return "", qerrors.Programf("could not erase database %q: %v", name, err)
		}
		if sess.CurrentDatabase == name {
			sess.DropDatabase()
		}
		return fmt.Sprintf("database %q erased", name), nil
	default:
		path := storage.TablePath(sess.DatabaseDir(), name)
		if _, err := os.Stat(path); err != nil {
			return "", qerrors.Invalidf("table %q not found", name)
		}
		if err := os.Remove(path); err != nil {
			return "", qerrors.Programf("could not erase table %q: %v", name, err)
		}
		if err := storage.RemoveCatalogEntry(sess.DatabaseDir(), name); err != nil {
			return "", err
		}
		if sess.CurrentTable != nil && sess.CurrentTable.Name == name {
			sess.DropTable()
		}
		return fmt.Sprintf("table %q erased", name), nil
	}
}

func dispatchEnter(sess *session.Session, args []string) (string, error) {
	if sess.Context() != session.Root {
		return "", qerrors.Logicf("enter is only available at the root level")
	}
	if err := requireArity(args, 1, "enter"); err != nil {
		return "", err
	}
	name := args[0]
	path := filepath.Join(sess.DataRoot, name)
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return "", qerrors.Invalidf("database %q not found", name)
	}
	sess.CurrentDatabase = name
	return fmt.Sprintf("entered database %q", name), nil
}

func dispatchChoose(sess *session.Session, args []string) (string, error) {
	if sess.Context() != session.Database {
		return "", qerrors.Logicf("choose requires a selected database")
	}
	if err := requireArity(args, 1, "choose"); err != nil {
		return "", err
	}
	name := args[0]
	t, err := engine.Load(sess.DatabaseDir(), name, sess.Key)
	if err != nil {
		return "", err
	}
	sess.CurrentTable = t
	return fmt.Sprintf("table %q loaded", name), nil
}

func dispatchMake(sess *session.Session, args []string) (string, error) {
	if sess.Context() != session.Database {
		return "", qerrors.Logicf("make requires a selected database")
	}
	if len(args) < 1 {
		return "", qerrors.Syntaxf("make: table name expected")
	}
	name := args[0]
	if !validIdentifier(name) {
		return "", qerrors.Syntaxf("invalid table name %q", name)
	}
	if len(args) < 2 {
		return "", qerrors.Syntaxf("make: schema expected")
	}
	if err := requireArity(args, 2, "make"); err != nil {
		return "", err
	}

	sch, err := schema.ParseCommandSchema(args[1])
	if err != nil {
		return "", err
	}

	path := storage.TablePath(sess.DatabaseDir(), name)
	if _, err := os.Stat(path); err == nil {
		return "", qerrors.Logicf("table %q already exists", name)
	}

	t, err := engine.Create(sess.DatabaseDir(), name, sess.Key, sch)
	if err != nil {
		return "", err
	}
	sess.CurrentTable = t
	return fmt.Sprintf("table %q created", name), nil
}

func requireTable(sess *session.Session) (*engine.Table, error) {
	if sess.Context() != session.Table {
		return nil, qerrors.Logicf("this command requires a selected table")
	}
	return sess.CurrentTable, nil
}

func dispatchDescribe(sess *session.Session, args []string, out io.Writer) (string, error) {
	t, err := requireTable(sess)
	if err != nil {
		return "", err
	}
	if err := requireArity(args, 0, "describe"); err != nil {
		return "", err
	}
	fmt.Fprint(out, t.Describe())
	return "", nil
}

func dispatchInsert(sess *session.Session, args []string) (string, error) {
	t, err := requireTable(sess)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return "", qerrors.Syntaxf("insert: value list expected")
	}
	inserted := 0
	for _, raw := range args {
		values := engine.SplitValueList(raw)
		if err := t.Insert(values); err != nil {
			return "", err
		}
		inserted++
	}
	return fmt.Sprintf("%d row(s) inserted", inserted), nil
}

func dispatchDelete(sess *session.Session, args []string) (string, error) {
	t, err := requireTable(sess)
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return "", qerrors.Syntaxf("del: argument expected")
	}

	if strings.EqualFold(args[0], "where") {
		expr, err := condition.Parse(args[1:], t.ColumnLookup())
		if err != nil {
			return "", err
		}
		n := t.DeleteRowsMatching(expr)
		return fmt.Sprintf("%d row(s) deleted", n), nil
	}

	// Each item is tried as a row primary key first, then as a column name,
	// matching the reference del verb's per-item resolution.
	deleted := 0
	for _, item := range args {
		switch {
		case t.HasRow(item):
			t.DeleteRow(item)
			deleted++
		default:
			if _, _, ok := t.Schema.Column(item); !ok {
				return "", qerrors.Invalidf("no row or column matches %q", item)
			}
			if err := t.DeleteColumn(item); err != nil {
				return "", err
			}
			deleted++
		}
	}
	return fmt.Sprintf("%d item(s) deleted", deleted), nil
}

func dispatchChange(sess *session.Session, args []string) (string, error) {
	t, err := requireTable(sess)
	if err != nil {
		return "", err
	}
	whereIdx := indexOfFold(args, "where")
	var exprTokens []string
	body := args
	if whereIdx != -1 {
		body = args[:whereIdx]
		exprTokens = args[whereIdx+1:]
	}

	var expr condition.Expression
	if exprTokens != nil {
		expr, err = condition.Parse(exprTokens, t.ColumnLookup())
		if err != nil {
			return "", err
		}
	}

	toIdx := indexOfFold(body, "to")
	if toIdx == -1 {
		return "", qerrors.Syntaxf("change: expected TO")
	}

	switch toIdx {
	case 1: // change <old> to <new>
		oldValue, newValue := body[0], body[toIdx+1]
		n := t.UpdateAnyValue(oldValue, newValue, expr)
		return fmt.Sprintf("%d cell(s) changed", n), nil
	case 2: // change <col> <old> to <new>
		col, oldValue, newValue := body[0], body[1], body[toIdx+1]
		n, err := t.UpdateColumnValue(col, oldValue, newValue, expr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d row(s) changed", n), nil
	default:
		return "", qerrors.Syntaxf("change: malformed arguments")
	}
}

func indexOfFold(tokens []string, target string) int {
	for i, t := range tokens {
		if strings.EqualFold(t, target) {
			return i
		}
	}
	return -1
}

func dispatchClean(sess *session.Session, args []string) (string, error) {
	t, err := requireTable(sess)
	if err != nil {
		return "", err
	}
	if err := requireArity(args, 0, "clean"); err != nil {
		return "", err
	}
	t.Clean()
	return "table cleaned", nil
}

func dispatchCommit(sess *session.Session, args []string) (string, error) {
	t, err := requireTable(sess)
	if err != nil {
		return "", err
	}
	if err := requireArity(args, 0, "commit"); err != nil {
		return "", err
	}
	if err := t.Commit(); err != nil {
		return "", err
	}
	return "changes committed", nil
}

func dispatchRollback(sess *session.Session, args []string, out io.Writer) (string, error) {
	t, err := requireTable(sess)
	if err != nil {
		return "", err
	}
	if err := requireArity(args, 0, "rollback"); err != nil {
		return "", err
	}
	warning, err := t.Rollback()
	if err != nil {
		return "", err
	}
	if warning != nil {
		fmt.Fprintln(out, warning.Error())
		return "", nil
	}
	return "table reloaded from disk", nil
}

func dispatchList(sess *session.Session, args []string) (string, error) {
	if err := requireArity(args, 0, "list"); err != nil {
		return "", err
	}
	switch sess.Context() {
	case session.Root:
		names, err := storage.ListDatabases(sess.DataRoot)
		if err != nil {
			return "", err
		}
		return strings.Join(names, ", "), nil
	default:
		names, err := storage.ListTables(sess.DatabaseDir())
		if err != nil {
			return "", err
		}
		return strings.Join(names, ", "), nil
	}
}

func dispatchClose(sess *session.Session, args []string, out io.Writer) (string, error) {
	if err := requireArity(args, 0, "close"); err != nil {
		return "", err
	}
	if sess.Context() == session.Table {
		if _, err := maybeCommitOnExit(sess, out); err != nil {
			return "", err
		}
	}
	sess.Exit = true
	return "goodbye", nil
}

func dispatchExit(sess *session.Session, args []string, out io.Writer) (string, error) {
	if err := requireArity(args, 0, "exit"); err != nil {
		return "", err
	}
	switch sess.Context() {
	case session.Table:
		return maybeCommitOnExit(sess, out)
	case session.Database:
		sess.DropDatabase()
		return "returned to root", nil
	default:
		sess.Exit = true
		return "goodbye", nil
	}
}

// maybeCommitOnExit implements the unsaved-changes prompt when leaving a
// table: "y" commits, anything else discards. Either way the in-memory
// table is dropped. It reads the answer from sess.Input, the same scanner
// the shell's REPL loop reads statements from, so the answer line can't be
// lost to a second scanner buffering ahead of it.
func maybeCommitOnExit(sess *session.Session, out io.Writer) (string, error) {
	t := sess.CurrentTable
	if t.Unsaved {
		fmt.Fprint(out, "You have unsaved changes. Do you want to save them? (y/n): ")
		answer := ""
		if sess.Input != nil && sess.Input.Scan() {
			answer = strings.TrimSpace(sess.Input.Text())
		}
		if strings.EqualFold(answer, "y") {
			if err := t.Commit(); err != nil {
				return "", err
			}
		}
	}
	sess.DropTable()
	return "returned to database", nil
}

func dispatchShow(sess *session.Session, args []string, out io.Writer) (string, error) {
	t, err := requireTable(sess)
	if err != nil {
		return "", err
	}

	opts := engine.ShowOptions{Mode: engine.ShowAll}
	i := 0

	switch {
	case i < len(args) && args[i] == "*":
		i++
	case i < len(args) && args[i] == "head":
		opts.Mode = engine.ShowHead
		i++
	case i < len(args) && args[i] == "limit":
		i++
		if i >= len(args) {
			return "", qerrors.Syntaxf("show limit: count expected")
		}
		n, tail, err := parseLimitCount(args[i])
		if err != nil {
			return "", err
		}
		if tail {
			opts.Mode = engine.ShowLimitTail
		} else {
			opts.Mode = engine.ShowLimit
		}
		opts.N = n
		i++
	default:
		for i < len(args) && !strings.EqualFold(args[i], "like") && !strings.EqualFold(args[i], "where") {
			if _, _, ok := t.Schema.Column(args[i]); !ok {
				break
			}
			opts.Columns = append(opts.Columns, args[i])
			i++
		}
	}

	if i < len(args) && strings.EqualFold(args[i], "like") {
		i++
		if i >= len(args) {
			return "", qerrors.Syntaxf("show like: literal expected")
		}
		opts.Like = strings.TrimSuffix(args[i], "*")
		i++
	}

	if i < len(args) && strings.EqualFold(args[i], "where") {
		expr, err := condition.Parse(args[i+1:], t.ColumnLookup())
		if err != nil {
			return "", err
		}
		opts.Where = expr
		i = len(args)
	}

	if i < len(args) {
		return "", qerrors.Syntaxf("unexpected token %q", args[i])
	}

	rendered, err := t.Show(opts)
	if err != nil {
		return "", err
	}
	fmt.Fprint(out, rendered)
	return "", nil
}

func parseLimitCount(token string) (n int, tail bool, err error) {
	if strings.HasPrefix(token, "~") {
		tail = true
		token = token[1:]
	}
	n, convErr := strconv.Atoi(token)
	if convErr != nil {
		return 0, false, qerrors.Syntaxf("invalid limit count %q", token)
	}
	return n, tail, nil
}
