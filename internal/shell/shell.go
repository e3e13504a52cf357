// Package shell runs the REPL: it reads a line, tokenizes it, splits it on
// pipes into independent statements, and dispatches each one through the
// command package, printing a uniform result or error line per statement.
package shell

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tech-hunter-mainak/qilodb/internal/command"
	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
	"github.com/tech-hunter-mainak/qilodb/internal/session"
	"github.com/tech-hunter-mainak/qilodb/internal/token"
)

// Run drives the REPL loop against sess until sess.Exit is set or in is
// exhausted. It wraps in in a single scanner, shared with the command
// package via sess.Input, so a mid-statement prompt (the unsaved-changes
// y/n question) reads from the same buffered stream instead of racing a
// second scanner over it.
func Run(sess *session.Session, in io.Reader, out io.Writer) {
	sess.Input = bufio.NewScanner(in)
	for !sess.Exit {
		fmt.Fprint(out, sess.Prompt())
		if !sess.Input.Scan() {
			return
		}
		line := sess.Input.Text()
		if line == "" {
			continue
		}
		runLine(sess, line, out)
	}
}

func runLine(sess *session.Session, line string, out io.Writer) {
	tokens, err := token.Tokenize(line)
	if err != nil {
		printErr(out, err)
		return
	}
	statements, err := token.SplitStatements(tokens)
	if err != nil {
		printErr(out, err)
		return
	}

	for _, statement := range statements {
		message, err := command.Dispatch(sess, statement, out)
		if err != nil {
			printErr(out, err)
			continue
		}
		if message != "" {
			fmt.Fprintf(out, "res: %s\n", message)
		}
		if sess.Exit {
			return
		}
	}
}

func printErr(out io.Writer, err error) {
	if qe, ok := err.(*qerrors.Error); ok {
		fmt.Fprintf(out, "%s: %s\n", qe.Kind, qe.Message)
		return
	}
	fmt.Fprintf(out, "program_error: %v\n", err)
}
