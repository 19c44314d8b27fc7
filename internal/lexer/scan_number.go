package lexer

import (
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/token"
)

// scanNumber scans an integer or float literal. Overflow of the i32
// integer range is reported as LexNumericOverflow (§4.1) but a token is
// still produced so the parser can keep recovering.
func (l *Lexer) scanNumber(start uint32) token.Token {
	isFloat := false
	for !l.cur.eof() && isDigit(l.cur.peek()) {
		l.cur.advance()
	}
	if l.cur.peek() == '.' && isDigit(l.cur.peekAt(1)) {
		isFloat = true
		l.cur.advance()
		for !l.cur.eof() && isDigit(l.cur.peek()) {
			l.cur.advance()
		}
	}
	if l.cur.peek() == 'e' || l.cur.peek() == 'E' {
		save := l.cur.pos
		l.cur.advance()
		if l.cur.peek() == '+' || l.cur.peek() == '-' {
			l.cur.advance()
		}
		if isDigit(l.cur.peek()) {
			isFloat = true
			for !l.cur.eof() && isDigit(l.cur.peek()) {
				l.cur.advance()
			}
		} else {
			l.cur.pos = save
		}
	}

	text := string(l.file.Content[start:l.cur.pos])
	kind := token.IntLiteral
	if isFloat {
		kind = token.FloatLiteral
	} else if !fitsInt32Decimal(text) {
		l.errorf(start, diag.LexNumericOverflow, "integer literal %q overflows 32-bit range", text)
	}
	return token.Token{Kind: kind, Span: l.span(start), Text: text}
}

func fitsInt32Decimal(s string) bool {
	// A base-10 i32 literal has at most 10 digits; cheaply reject
	// anything longer before doing a full parse at codegen time.
	const maxLen = 10
	if len(s) < maxLen {
		return true
	}
	if len(s) > maxLen {
		return false
	}
	return s <= "2147483647"
}
