package parser

import (
	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/token"
	"github.com/WriteNaN/buzz/internal/types"
)

func (p *Parser) parseStmt() *ast.Stmt {
	switch p.peek().Kind {
	case token.LeftBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwFor:
		return p.parseFor()
	case token.KwForEach:
		return p.parseForEach()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwDo:
		return p.parseDoUntil()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwBreak:
		tok := p.advance()
		p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after 'break'")
		return &ast.Stmt{Kind: ast.StmtBreak, Span: tok.Span}
	case token.KwContinue:
		tok := p.advance()
		p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after 'continue'")
		return &ast.Stmt{Kind: ast.StmtContinue, Span: tok.Span}
	case token.KwThrow:
		return p.parseThrow()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseBlock() *ast.Stmt {
	open, _ := p.expect(token.LeftBrace, diag.SynUnexpectedToken, "expected '{' to begin a block")
	p.frame.beginScope()
	var stmts []*ast.Stmt
	for !p.at(token.RightBrace) && !p.at(token.EOF) {
		before := p.errs
		s := p.parseDeclOrStmt()
		if s != nil {
			stmts = append(stmts, s)
		}
		if p.errs > before {
			p.synchronize()
		}
	}
	close, _ := p.expect(token.RightBrace, diag.SynUnclosedBlock, "expected '}' to close block")
	p.frame.endScope()
	return &ast.Stmt{Kind: ast.StmtBlock, Span: open.Span.Cover(close.Span), Stmts: stmts}
}

func (p *Parser) requireBool(cond *ast.Expr) {
	if cond.Type != types.NoTypeID && cond.Type != p.in.Builtins().Bool {
		p.errorf(cond.Span, diag.TypeConditionNotBool, "condition must be 'bool'")
	}
}

func (p *Parser) parseIf() *ast.Stmt {
	tok := p.advance() // 'if'
	p.expect(token.LeftParen, diag.SynUnexpectedToken, "expected '(' after 'if'")
	cond := p.parseExpr()
	p.requireBool(cond)
	p.expect(token.RightParen, diag.SynUnexpectedToken, "expected ')' after if condition")
	then := p.parseStmt()
	var elseStmt *ast.Stmt
	span := tok.Span.Cover(then.Span)
	if p.at(token.KwElse) {
		p.advance()
		elseStmt = p.parseStmt()
		span = span.Cover(elseStmt.Span)
	}
	return &ast.Stmt{Kind: ast.StmtIf, Span: span, Cond: cond, Then: then, Else: elseStmt}
}

// parseFor parses the C-style `for (init; cond; post) body`.
func (p *Parser) parseFor() *ast.Stmt {
	tok := p.advance() // 'for'
	p.expect(token.LeftParen, diag.SynUnexpectedToken, "expected '(' after 'for'")
	p.frame.beginScope()
	var init *ast.Stmt
	if !p.at(token.Semicolon) {
		init = p.parseDeclOrStmt()
	} else {
		p.advance()
	}
	var cond *ast.Expr
	if !p.at(token.Semicolon) {
		cond = p.parseExpr()
		p.requireBool(cond)
	}
	p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after for-condition")
	var post *ast.Stmt
	if !p.at(token.RightParen) {
		postSpan := p.peek().Span
		postExpr := p.parseExpr()
		post = &ast.Stmt{Kind: ast.StmtExpr, Span: postSpan.Cover(postExpr.Span), Expr: postExpr}
	}
	p.expect(token.RightParen, diag.SynUnexpectedToken, "expected ')' after for-clauses")
	body := p.parseStmt()
	p.frame.endScope()
	return &ast.Stmt{Kind: ast.StmtFor, Span: tok.Span.Cover(body.Span), ForInit: init, Cond: cond, ForPost: post, Body: body}
}

// parseForEach parses `foreach (type name (',' type name)? in expr) body`,
// supplementing the abridged grammar's unspecified foreach header with
// the two-variable map form needed by §4.4 "Foreach".
func (p *Parser) parseForEach() *ast.Stmt {
	tok := p.advance() // 'foreach'
	p.expect(token.LeftParen, diag.SynUnexpectedToken, "expected '(' after 'foreach'")
	p.frame.beginScope()

	firstType := p.parseType()
	firstName, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected a loop variable name")

	var keyName, valueName string
	var keyType, valueType types.TypeID
	if p.at(token.Comma) {
		p.advance()
		keyName, keyType = firstName.Text, firstType
		secondType := p.parseType()
		secondName, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected a second loop variable name")
		valueName, valueType = secondName.Text, secondType
	} else {
		valueName, valueType = firstName.Text, firstType
	}

	p.expect(token.KwIn, diag.SynUnexpectedToken, "expected 'in' after foreach loop variables")
	iterable := p.parseExpr()
	p.expect(token.RightParen, diag.SynUnexpectedToken, "expected ')' after foreach iterable")

	// A hidden slot ahead of the loop variables holds the iterable value
	// itself; the code generator addresses it directly by number, so it
	// must be reserved here rather than left implicit.
	iterSlot, _ := p.frame.declareLocal("$iter", types.NoTypeID)
	keySlot, _ := p.frame.declareLocal("$key", keyType)
	if keyName != "" {
		p.frame.locals[keySlot].name = keyName
	}
	valueSlot, _ := p.frame.declareLocal(valueName, valueType)

	body := p.parseStmt()
	p.frame.endScope()
	return &ast.Stmt{
		Kind: ast.StmtForEach, Span: tok.Span.Cover(body.Span),
		KeyName: keyName, ValueName: valueName, KeyType: keyType, ValueType: valueType,
		IterSlot: iterSlot, KeySlot: keySlot, ValueSlot: valueSlot, Iterable: iterable, Body: body,
	}
}

func (p *Parser) parseWhile() *ast.Stmt {
	tok := p.advance() // 'while'
	p.expect(token.LeftParen, diag.SynUnexpectedToken, "expected '(' after 'while'")
	cond := p.parseExpr()
	p.requireBool(cond)
	p.expect(token.RightParen, diag.SynUnexpectedToken, "expected ')' after while condition")
	body := p.parseStmt()
	return &ast.Stmt{Kind: ast.StmtWhile, Span: tok.Span.Cover(body.Span), Cond: cond, Body: body}
}

// parseDoUntil parses `do block until ( cond ) ;` — the loop runs at
// least once and exits once cond becomes true.
func (p *Parser) parseDoUntil() *ast.Stmt {
	tok := p.advance() // 'do'
	body := p.parseBlock()
	p.expect(token.KwUntil, diag.SynUnexpectedToken, "expected 'until' after 'do' block")
	p.expect(token.LeftParen, diag.SynUnexpectedToken, "expected '(' after 'until'")
	cond := p.parseExpr()
	p.requireBool(cond)
	closeTok, _ := p.expect(token.RightParen, diag.SynUnexpectedToken, "expected ')' after until condition")
	p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after do-until statement")
	return &ast.Stmt{Kind: ast.StmtDoUntil, Span: tok.Span.Cover(closeTok.Span), Cond: cond, Body: body}
}

func (p *Parser) parseReturn() *ast.Stmt {
	tok := p.advance() // 'return'
	var value *ast.Expr
	if !p.at(token.Semicolon) {
		value = p.parseExpr()
	}
	p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after return statement")
	span := tok.Span
	if value != nil {
		span = span.Cover(value.Span)
	}
	return &ast.Stmt{Kind: ast.StmtReturn, Span: span, Value: value}
}

func (p *Parser) parseThrow() *ast.Stmt {
	tok := p.advance() // 'throw'
	value := p.parseExpr()
	p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after throw statement")
	return &ast.Stmt{Kind: ast.StmtThrow, Span: tok.Span.Cover(value.Span), Value: value}
}

func (p *Parser) parseExprStmt() *ast.Stmt {
	start := p.peek().Span
	expr := p.parseExpr()
	semi, _ := p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after expression statement")
	return &ast.Stmt{Kind: ast.StmtExpr, Span: start.Cover(expr.Span).Cover(semi.Span), Expr: expr}
}
