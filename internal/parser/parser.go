// Package parser turns a token stream into a typed AST in one pass:
// recursive descent over statements and declarations, Pratt-precedence
// climbing over expressions, with types resolved and attached to every
// node as it is built (§4.2).
package parser

import (
	"fmt"

	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/lexer"
	"github.com/WriteNaN/buzz/internal/source"
	"github.com/WriteNaN/buzz/internal/token"
	"github.com/WriteNaN/buzz/internal/types"
)

// Options configures a Parser.
type Options struct {
	Reporter  diag.Reporter
	MaxErrors int // 0 means unlimited
}

// symKind discriminates what a global name denotes.
type symKind uint8

const (
	symVar symKind = iota
	symFunc
	symObject
	symEnum
)

type globalSym struct {
	kind symKind
	typ  types.TypeID
	slot int
}

// Parser parses and type-checks a single file against a shared type
// interner, so types declared in one import are stable TypeIDs in every
// importer (§4.2 "Imports").
type Parser struct {
	lx     *lexer.Lexer
	in     *types.Interner
	opts   Options
	errs   int
	file   source.FileID

	tokens []token.Token // lazily filled lookahead buffer, supports backtracking
	pos    int

	frame *frame

	globals     map[string]*globalSym
	globalOrder []string
	typeNames   map[string]types.TypeID // object/enum name -> TypeID (placeholder until declared)
	instanceOf  map[types.TypeID]types.TypeID // KindObject TypeID -> its single KindObjectInstance peer
	enumInstOf  map[types.TypeID]types.TypeID // KindEnum TypeID -> its single KindEnumInstance peer

	exports []string
}

// New returns a Parser over lx, interning types into in and reporting
// diagnostics to opts.Reporter.
func New(lx *lexer.Lexer, in *types.Interner, fileID source.FileID, opts Options) *Parser {
	p := &Parser{
		lx:        lx,
		in:        in,
		opts:      opts,
		file:      fileID,
		globals:    make(map[string]*globalSym),
		typeNames:  make(map[string]types.TypeID),
		instanceOf: make(map[types.TypeID]types.TypeID),
		enumInstOf: make(map[types.TypeID]types.TypeID),
	}
	p.frame = newFrame(nil, types.FnScript)
	return p
}

// ParseFile parses the whole token stream as one compilation unit and
// returns the resulting File. Errors go to opts.Reporter; use
// (*Parser).ParseFile to keep the Parser and call Failed() afterwards
// (§4.2 "recoverable status").
func ParseFile(lx *lexer.Lexer, in *types.Interner, fileID source.FileID, path string, opts Options) *ast.File {
	p := New(lx, in, fileID, opts)
	return p.ParseFile(path)
}

// ParseFile parses p's token stream as one compilation unit, the same
// way the package-level ParseFile does, but leaves p itself available
// afterwards so a caller can read GlobalNames/Exports off the same
// Parser that built the File.
func (p *Parser) ParseFile(path string) *ast.File {
	f := &ast.File{Path: path, FileID: p.file}
	for !p.at(token.EOF) {
		if s := p.parseTopLevel(); s != nil {
			f.Stmts = append(f.Stmts, s)
		}
	}
	return f
}

// Failed reports whether any error was reported during parsing.
func (p *Parser) Failed() bool { return p.errs > 0 }

// Exports returns the names listed by an `export` declaration, in
// declaration order (possibly spanning several `export` statements).
func (p *Parser) Exports() []string { return p.exports }

// GlobalNames returns every module-level name in slot order, so the code
// generator and driver can populate a flat globals array (the GC root
// named in §4.5) by index rather than by name lookup.
func (p *Parser) GlobalNames() []string { return p.globalOrder }

// GlobalSlot returns the slot assigned to a module-level name, if any.
func (p *Parser) GlobalSlot(name string) (int, bool) {
	sym, ok := p.globals[name]
	if !ok {
		return 0, false
	}
	return sym.slot, true
}

// ---- token buffer -------------------------------------------------------

func (p *Parser) fill(n int) {
	for len(p.tokens) <= n {
		p.tokens = append(p.tokens, p.lx.Next())
	}
}

func (p *Parser) peek() token.Token {
	p.fill(p.pos)
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	p.fill(p.pos + n)
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) atAny(kinds ...token.Kind) bool {
	cur := p.peek().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

// mark/reset let the parser speculatively try a production (e.g.
// "is this a type, or a plain expression?") and backtrack.
func (p *Parser) mark() int     { return p.pos }
func (p *Parser) reset(m int)   { p.pos = m }

// expect consumes the next token if it has kind k, else reports code and
// returns the zero Token.
func (p *Parser) expect(k token.Kind, code diag.Code, format string, args ...any) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.errorf(p.peek().Span, code, format, args...)
	return token.Token{}, false
}

func (p *Parser) errorf(span source.Span, code diag.Code, format string, args ...any) {
	p.errs++
	if p.opts.Reporter == nil {
		return
	}
	if p.opts.MaxErrors > 0 && p.errs > p.opts.MaxErrors {
		return
	}
	p.opts.Reporter.Report(diag.NewError(code, span, fmt.Sprintf(format, args...)))
}

// synchronize discards tokens until a likely statement boundary, so one
// malformed statement does not cascade into spurious follow-on errors.
func (p *Parser) synchronize() {
	for !p.at(token.EOF) {
		if p.at(token.Semicolon) {
			p.advance()
			return
		}
		switch p.peek().Kind {
		case token.KwFun, token.KwObject, token.KwEnum, token.KwIf, token.KwFor,
			token.KwForEach, token.KwWhile, token.KwDo, token.KwReturn, token.KwImport,
			token.KwExport, token.KwTest, token.LeftBrace, token.RightBrace:
			return
		}
		p.advance()
	}
}
