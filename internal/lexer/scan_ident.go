package lexer

import "github.com/WriteNaN/buzz/internal/token"

func (l *Lexer) scanIdentOrKeyword(start uint32) token.Token {
	for !l.cur.eof() && isIdentContinue(l.cur.peek()) {
		l.cur.advance()
	}
	text := string(l.file.Content[start:l.cur.pos])
	kind, _ := token.Lookup(text)
	return token.Token{Kind: kind, Span: l.span(start), Text: text}
}
