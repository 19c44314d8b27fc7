package lexer

import (
	"strings"

	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/token"
)

// scanStringStart consumes the opening quote of a string literal and
// scans its first segment, producing either a complete StringLiteral or
// the StringInterpHead of an interpolated string (§4.1).
func (l *Lexer) scanStringStart(start uint32) token.Token {
	l.cur.advance() // opening quote
	return l.scanStringSegment(start, token.StringLiteral, token.StringInterpHead)
}

// resumeInterpString consumes the '}' that closed an interpolation
// expression and scans the following string segment.
func (l *Lexer) resumeInterpString(start uint32) token.Token {
	l.cur.advance() // the '}'
	l.interpStack = l.interpStack[:len(l.interpStack)-1]
	return l.scanStringSegment(start, token.StringInterpTail, token.StringInterpMid)
}

// scanStringSegment scans literal text up to an unescaped '"' (producing
// endKind) or an unescaped '{' (producing midKind, and opening a new
// interpolation frame).
func (l *Lexer) scanStringSegment(start uint32, endKind, midKind token.Kind) token.Token {
	var sb strings.Builder
	for {
		if l.cur.eof() {
			l.errorf(start, diag.LexUnterminatedString, "unterminated string literal")
			return token.Token{Kind: endKind, Span: l.span(start), Text: sb.String()}
		}
		ch := l.cur.peek()
		switch ch {
		case '"':
			l.cur.advance()
			return token.Token{Kind: endKind, Span: l.span(start), Text: sb.String()}
		case '{':
			l.cur.advance()
			l.interpStack = append(l.interpStack, interpFrame{})
			return token.Token{Kind: midKind, Span: l.span(start), Text: sb.String()}
		case '\n':
			l.errorf(start, diag.LexUnterminatedString, "unterminated string literal")
			return token.Token{Kind: endKind, Span: l.span(start), Text: sb.String()}
		case '\\':
			l.cur.advance()
			sb.WriteRune(l.scanEscape(start))
		default:
			sb.WriteRune(l.cur.advanceRune())
		}
	}
}

func (l *Lexer) scanEscape(stringStart uint32) rune {
	if l.cur.eof() {
		l.errorf(stringStart, diag.LexBadEscape, "unterminated escape sequence")
		return 0
	}
	escStart := l.cur.pos
	switch l.cur.advance() {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '\\':
		return '\\'
	case '"':
		return '"'
	case '{':
		return '{'
	case '}':
		return '}'
	case '0':
		return 0
	default:
		l.errorf(escStart, diag.LexBadEscape, "unknown escape sequence")
		return '\\'
	}
}
