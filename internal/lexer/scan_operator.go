package lexer

import (
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/token"
)

func (l *Lexer) scanOperator(start uint32) token.Token {
	ch := l.cur.advance()
	kind := token.Invalid

	switch ch {
	case '{':
		if l.inInterp() {
			l.interpStack[len(l.interpStack)-1].braceDepth++
		}
		kind = token.LeftBrace
	case '}':
		if l.inInterp() {
			// Next() only defers to resumeInterpString when depth==0,
			// so reaching here means depth>0: a nested literal's brace.
			l.interpStack[len(l.interpStack)-1].braceDepth--
		}
		kind = token.RightBrace
	case '[':
		kind = token.LeftBracket
	case ']':
		kind = token.RightBracket
	case '(':
		kind = token.LeftParen
	case ')':
		kind = token.RightParen
	case ',':
		kind = token.Comma
	case ';':
		kind = token.Semicolon
	case ':':
		kind = token.Colon
	case '?':
		if l.cur.match('?') {
			kind = token.QuestionQuestion
		} else {
			kind = token.Question
		}
	case '!':
		switch {
		case l.cur.match('='):
			kind = token.BangEqual
		case l.cur.match('>'):
			kind = token.BangGreater
		default:
			kind = token.Bang
		}
	case '|':
		if l.cur.match('|') {
			kind = token.PipePipe
		} else {
			kind = token.Pipe
		}
	case '.':
		if l.cur.match('.') {
			kind = token.DotDot
		} else {
			kind = token.Dot
		}
	case '=':
		if l.cur.match('=') {
			kind = token.EqualEqual
		} else {
			kind = token.Equal
		}
	case '<':
		switch {
		case l.cur.match('='):
			kind = token.LessEqual
		case l.cur.match('<'):
			kind = token.LessLess
		default:
			kind = token.Less
		}
	case '>':
		switch {
		case l.cur.match('='):
			kind = token.GreaterEqual
		case l.cur.match('>'):
			kind = token.GreaterGreater
		default:
			kind = token.Greater
		}
	case '-':
		if l.cur.match('>') {
			kind = token.Arrow
		} else {
			kind = token.Minus
		}
	case '+':
		kind = token.Plus
	case '*':
		kind = token.Star
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	case '&':
		kind = token.Amp
	case '^':
		kind = token.Caret
	case '$':
		kind = token.Dollar
	default:
		l.errorf(start, diag.LexStrayCharacter, "unexpected character %q", ch)
		kind = token.Invalid
	}

	return token.Token{Kind: kind, Span: l.span(start), Text: string(l.file.Content[start:l.cur.pos])}
}
