// Package lexer turns Buzz source text into a token stream, including
// the re-entrant sub-lexing needed for string interpolation (§4.1).
package lexer

import (
	"fmt"

	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/source"
	"github.com/WriteNaN/buzz/internal/token"
)

// interpFrame tracks one open `{ expr }` segment inside an interpolated
// string literal: the brace depth lets the scanner find the matching `}`
// even when the expression itself contains object/map literals.
type interpFrame struct {
	braceDepth int
}

// Lexer produces tokens on demand from one source file.
type Lexer struct {
	file     *source.File
	fileID   source.FileID
	cur      *cursor
	reporter diag.Reporter

	// interpStack is non-empty while scanning inside a `{ expr }`
	// segment of an interpolated string; the scanner returns to string
	// mode when it sees the matching '}' at depth 0.
	interpStack []interpFrame
}

// New returns a Lexer over file, reporting lexical errors to reporter.
func New(file *source.File, reporter diag.Reporter) *Lexer {
	return &Lexer{
		file:     file,
		fileID:   file.ID,
		cur:      newCursor(file.Content),
		reporter: reporter,
	}
}

func (l *Lexer) span(start uint32) source.Span {
	return source.Span{File: l.fileID, Start: start, End: l.cur.pos}
}

func (l *Lexer) errorf(start uint32, code diag.Code, format string, args ...any) {
	if l.reporter == nil {
		return
	}
	l.reporter.Report(diag.NewError(code, l.span(start), fmt.Sprintf(format, args...)))
}

// Next returns the next significant token. After EOF it always returns an
// EOF token.
func (l *Lexer) Next() token.Token {
	l.skipTrivia()
	if l.cur.eof() {
		return token.Token{Kind: token.EOF, Span: l.span(l.cur.pos)}
	}

	start := l.cur.pos
	ch := l.cur.peek()

	switch {
	case isIdentStart(ch):
		return l.scanIdentOrKeyword(start)
	case isDigit(ch):
		return l.scanNumber(start)
	case ch == '"':
		return l.scanStringStart(start)
	case ch == '}' && l.inInterp() && l.interpDepth() == 0:
		return l.resumeInterpString(start)
	default:
		return l.scanOperator(start)
	}
}

func (l *Lexer) inInterp() bool { return len(l.interpStack) > 0 }

func (l *Lexer) interpDepth() int {
	if !l.inInterp() {
		return 0
	}
	return l.interpStack[len(l.interpStack)-1].braceDepth
}

func (l *Lexer) skipTrivia() {
	for !l.cur.eof() {
		switch l.cur.peek() {
		case ' ', '\t', '\r', '\n':
			l.cur.advance()
		case '/':
			if l.cur.peekAt(1) == '/' {
				for !l.cur.eof() && l.cur.peek() != '\n' {
					l.cur.advance()
				}
				continue
			}
			if l.cur.peekAt(1) == '*' {
				l.cur.advance()
				l.cur.advance()
				for !l.cur.eof() && !(l.cur.peek() == '*' && l.cur.peekAt(1) == '/') {
					l.cur.advance()
				}
				if !l.cur.eof() {
					l.cur.advance()
					l.cur.advance()
				}
				continue
			}
			return
		default:
			return
		}
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
