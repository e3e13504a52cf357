// Package token implements qiloDB's command-line tokenizer:
// whitespace/punctuation splitting that respects quotes and treats a
// parenthesized run as a single captured value-list token.
//
// Mirrors parser.cpp's input() function, which walks the line one rune at
// a time with two quote flags and a parenthesis-capture flag.
package token

import (
	"strings"
	"unicode"

	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
)

// punctRunes are appended to the current token verbatim so that multi-rune
// identifiers like "<=" or the "~N" LIMIT form tokenize as one piece.
const punctRunes = "|=<>*!.~"

// Tokenize splits line into a flat token list. Identifiers are
// lower-cased; text inside single or double quotes is preserved verbatim
// (quotes themselves are dropped); a parenthesized run is captured whole,
// including any commas or spaces inside it, as a single token.
func Tokenize(line string) ([]string, error) {
	var tokens []string
	var word strings.Builder
	var parenContent strings.Builder

	singleQuote, doubleQuote, insideParens := false, false, false

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}

	for _, ch := range line {
		if insideParens {
			if !singleQuote && !doubleQuote && ch == ')' {
				insideParens = false
				tokens = append(tokens, parenContent.String())
				parenContent.Reset()
				continue
			}
			if ch == '"' && !singleQuote {
				doubleQuote = !doubleQuote
				continue
			}
			if ch == '\'' && !doubleQuote {
				singleQuote = !singleQuote
				continue
			}
			parenContent.WriteRune(ch)
			continue
		}

		switch {
		case ch == '(':
			insideParens = true
			flush()
			parenContent.Reset()
		case ch == ' ' || ch == '\t':
			if singleQuote || doubleQuote {
				word.WriteRune(ch)
			} else {
				flush()
			}
		case ch == ',':
			if singleQuote || doubleQuote {
				word.WriteRune(ch)
			} else {
				flush()
			}
		case ch == '"':
			doubleQuote = !doubleQuote
		case ch == '\'':
			singleQuote = !singleQuote
		case strings.ContainsRune(punctRunes, ch):
			if !singleQuote && !doubleQuote {
				word.WriteRune(ch)
			} else {
				word.WriteRune(ch)
			}
		default:
			if singleQuote || doubleQuote {
				word.WriteRune(ch)
			} else if unicode.IsLetter(ch) {
				word.WriteRune(unicode.ToLower(ch))
			} else if unicode.IsDigit(ch) {
				word.WriteRune(ch)
			} else {
				return nil, qerrors.Syntaxf("%c is not expected", ch)
			}
		}
	}

	flush()
	if insideParens {
		return nil, qerrors.Syntaxf("Mismatched parentheses")
	}
	return tokens, nil
}

// SplitStatements splits a token list on standalone "|" tokens into
// independent statements. An empty sub-list (two pipes back to back, or a
// leading/trailing pipe) is a syntax error.
func SplitStatements(tokens []string) ([][]string, error) {
	var statements [][]string
	var current []string
	for _, t := range tokens {
		if t == "|" {
			if len(current) == 0 {
				return nil, qerrors.Syntaxf("empty statement between pipes")
			}
			statements = append(statements, current)
			current = nil
			continue
		}
		current = append(current, t)
	}
	if len(current) == 0 {
		return nil, qerrors.Syntaxf("empty statement")
	}
	statements = append(statements, current)
	return statements, nil
}
