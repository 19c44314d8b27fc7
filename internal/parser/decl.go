package parser

import (
	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/token"
	"github.com/WriteNaN/buzz/internal/types"
)

// parseTopLevel parses one `(import | export | declaration)` production
// (§6 grammar). It never returns nil. A malformed construct still
// yields a best-effort node where possible; the top level does not
// resynchronize after an error (only parseBlock does).
func (p *Parser) parseTopLevel() *ast.Stmt {
	s := p.parseDeclOrStmt()
	return s
}

func (p *Parser) parseDeclOrStmt() *ast.Stmt {
	switch p.peek().Kind {
	case token.KwImport:
		return p.parseImport()
	case token.KwExport:
		return p.parseExport()
	case token.KwFun:
		return p.parseFunDecl()
	case token.KwObject:
		return p.parseObjectDecl()
	case token.KwEnum:
		return p.parseEnumDecl()
	case token.KwTest:
		return p.parseTestDecl()
	case token.KwConst:
		return p.parseVarDecl(true)
	default:
		if p.startsType() {
			return p.parseVarDecl(false)
		}
		return p.parseStmt()
	}
}

// startsType reports whether the token at the current position can
// begin a type expression in declaration position, distinguishing
// `int x = 1;` from a plain expression statement like `x = 1;` without
// consuming any input.
func (p *Parser) startsType() bool {
	switch p.peek().Kind {
	case token.KwBool, token.KwInt, token.KwFloat, token.KwStr, token.KwVoid,
		token.LeftBracket, token.LeftBrace, token.KwFun:
		return true
	case token.Ident:
		// A declaration names a known object/enum type and is followed by
		// another identifier (the variable name) or '?' then identifier.
		id, ok := p.typeNames[p.peek().Text]
		if !ok {
			return false
		}
		t, ok := p.in.Lookup(id)
		if !ok || (t.Kind != types.KindObject && t.Kind != types.KindEnum) {
			return false
		}
		n := 1
		for p.peekAt(n).Kind == token.Question {
			n++
		}
		return p.peekAt(n).Kind == token.Ident
	default:
		return false
	}
}

func (p *Parser) parseImport() *ast.Stmt {
	tok := p.advance() // 'import'
	pathTok, _ := p.expect(token.StringLiteral, diag.SynUnexpectedToken, "expected a string path after 'import'")
	alias := ""
	if p.at(token.KwAs) {
		p.advance()
		aliasTok, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected a namespace name after 'as'")
		alias = aliasTok.Text
	}
	p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after import")
	decl := &ast.ImportDecl{Span: tok.Span, Path: pathTok.Text, Alias: alias}
	return &ast.Stmt{Kind: ast.StmtImport, Span: tok.Span, Import: decl}
}

func (p *Parser) parseExport() *ast.Stmt {
	tok := p.advance() // 'export'
	var names []string
	for {
		nameTok, ok := p.expect(token.Ident, diag.SynUnexpectedToken, "expected a name after 'export'")
		if !ok {
			break
		}
		names = append(names, nameTok.Text)
		p.exports = append(p.exports, nameTok.Text)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after export")
	return &ast.Stmt{Kind: ast.StmtExport, Span: tok.Span, Export: &ast.ExportDecl{Span: tok.Span, Names: names}}
}

// parseVarDecl parses `(type | 'const') IDENT ('=' expr)? ';'`.
func (p *Parser) parseVarDecl(isConst bool) *ast.Stmt {
	start := p.peek().Span
	var declType types.TypeID
	if isConst {
		p.advance() // 'const'
	} else {
		declType = p.parseType()
	}
	nameTok, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected a variable name in declaration")
	var init *ast.Expr
	if p.at(token.Equal) {
		p.advance()
		init = p.parseExpr()
	}
	p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after variable declaration")

	if isConst {
		if init != nil {
			declType = init.Type
		} else {
			p.errorf(start, diag.TypeMismatch, "'const' declaration requires an initializer")
		}
	}
	slotKind, slot := p.declareVariable(nameTok.Text, declType)
	return &ast.Stmt{
		Kind: ast.StmtVarDecl, Span: start.Cover(nameTok.Span), Name: nameTok.Text,
		DeclType: declType, Const: isConst, Init: init, Slot: slotKind, SlotIndex: slot,
	}
}

// parseParams parses a function's `(type name ('=' expr)?, ...)` list,
// already past the opening '('.
func (p *Parser) parseParams() []ast.ParamDecl {
	var params []ast.ParamDecl
	if p.at(token.RightParen) {
		return params
	}
	seen := make(map[string]bool)
	for {
		pt := p.parseType()
		nameTok, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected a parameter name")
		if seen[nameTok.Text] {
			p.errorf(nameTok.Span, diag.SynDuplicateParam, "duplicate parameter name %q", nameTok.Text)
		}
		seen[nameTok.Text] = true
		var def *ast.Expr
		if p.at(token.Equal) {
			p.advance()
			def = p.parseExpr()
		}
		params = append(params, ast.ParamDecl{Name: nameTok.Text, Type: pt, Default: def})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	return params
}

// parseFunctionTail parses the `(params?) ('>' type)? block` tail shared
// by top-level `fun` declarations, methods, and anonymous function
// literals, opening a fresh frame so the body's locals/upvalues resolve
// independently of the enclosing scope.
func (p *Parser) parseFunctionTail(name string, kind types.FunctionKind) *ast.FunctionNode {
	p.expect(token.LeftParen, diag.SynUnexpectedToken, "expected '(' after function name")
	outer := p.frame
	p.frame = newFrame(outer, kind)
	if kind == types.FnMethod {
		p.frame.declareLocal("this", types.NoTypeID)
	}
	params := p.parseParams()
	for _, param := range params {
		p.frame.declareLocal(param.Name, param.Type)
	}
	p.expect(token.RightParen, diag.SynUnexpectedToken, "expected ')' after parameters")

	retType := p.in.Builtins().Void
	if p.at(token.Greater) {
		p.advance()
		retType = p.parseType()
	}

	fnParams := make([]types.Param, len(params))
	for i, prm := range params {
		fnParams[i] = types.Param{Name: prm.Name, Type: prm.Type, HasDefault: prm.Default != nil}
	}
	fnType := p.in.NewFunction(&types.FunctionType{Name: name, Params: fnParams, Return: retType, Kind: kind})

	body := p.parseBlock()
	upvalues := captureUpvalues(p.frame)
	p.frame = outer

	return &ast.FunctionNode{Name: name, Params: params, ReturnType: retType, Kind: kind, Body: body, Type: fnType, Hidden: false, Upvalues: upvalues}
}

// captureUpvalues converts a closed frame's resolved upvalue records into
// the AST form the code generator emits after `CLOSURE` (§4.3).
func captureUpvalues(f *frame) []ast.UpvalueCapture {
	if len(f.upvalues) == 0 {
		return nil
	}
	out := make([]ast.UpvalueCapture, len(f.upvalues))
	for i, uv := range f.upvalues {
		out[i] = ast.UpvalueCapture{IsLocal: uv.isLocal, Index: uv.index}
	}
	return out
}

func (p *Parser) parseFunDecl() *ast.Stmt {
	tok := p.advance() // 'fun'
	nameTok, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected a function name after 'fun'")
	kind := types.FnFunction
	if nameTok.Text == "main" {
		kind = types.FnEntryPoint
	}
	fn := p.parseFunctionTail(nameTok.Text, kind)
	fn.Hidden = hasTestPrefix(nameTok.Text)
	p.declareGlobal(nameTok.Text, symFunc, fn.Type)
	return &ast.Stmt{Kind: ast.StmtFunDecl, Span: tok.Span.Cover(fn.Body.Span), Function: fn}
}

func hasTestPrefix(name string) bool {
	const prefix = "$test"
	return len(name) >= len(prefix) && name[:len(prefix)] == prefix
}

func (p *Parser) parseTestDecl() *ast.Stmt {
	tok := p.advance() // 'test'
	nameTok, _ := p.expect(token.StringLiteral, diag.SynUnexpectedToken, "expected a string name after 'test'")
	outer := p.frame
	p.frame = newFrame(outer, types.FnTest)
	body := p.parseBlock()
	p.frame = outer
	return &ast.Stmt{Kind: ast.StmtTest, Span: tok.Span.Cover(body.Span), TestName: nameTok.Text, Body: body}
}

// parseObjectDecl parses `'object' IDENT ('<' IDENT)? '{' field* '}'`.
// The object's own TypeID is minted before its fields are parsed so a
// field may reference the object recursively (§9 "Recursive TypeDefs").
func (p *Parser) parseObjectDecl() *ast.Stmt {
	tok := p.advance() // 'object'
	nameTok, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected an object name after 'object'")

	var superName string
	var super *types.ObjectType
	if p.at(token.Less) {
		p.advance()
		superTok, ok := p.expect(token.Ident, diag.SynUnexpectedToken, "expected a parent object name after '<'")
		if ok {
			superName = superTok.Text
			if superID, ok := p.typeNames[superName]; ok {
				if st, ok2 := p.in.Lookup(superID); ok2 {
					super = st.Object
				}
			}
		}
	}

	objType := &types.ObjectType{Name: nameTok.Text, Methods: map[string]types.TypeID{}, Super: super}
	typeID := p.beginTypeDecl(nameTok.Text, objType, nil)

	p.expect(token.LeftBrace, diag.SynUnexpectedToken, "expected '{' to begin object body")
	var fields []ast.ObjectFieldDecl
	var methods []*ast.FunctionNode
	for !p.at(token.RightBrace) && !p.at(token.EOF) {
		static := false
		if p.at(token.KwStatic) {
			p.advance()
			static = true
		}
		if p.at(token.KwFun) {
			p.advance()
			methodName, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected a method name after 'fun'")
			fn := p.parseMethodTail(methodName.Text, p.instanceType(typeID))
			methods = append(methods, fn)
			objType.Methods[methodName.Text] = fn.Type
			continue
		}
		fieldStart := p.peek().Span
		fieldType := p.parseType()
		fieldNameTok, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected a field name")
		var def *ast.Expr
		if p.at(token.Equal) {
			p.advance()
			def = p.parseExpr()
		}
		if !p.at(token.RightBrace) {
			p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after field declaration")
		}
		fields = append(fields, ast.ObjectFieldDecl{Span: fieldStart.Cover(fieldNameTok.Span), Name: fieldNameTok.Text, Type: fieldType, Default: def, Static: static})
		objType.Fields = append(objType.Fields, types.FieldInfo{Name: fieldNameTok.Text, Type: fieldType, HasDefault: def != nil, Static: static})
	}
	closeTok, _ := p.expect(token.RightBrace, diag.SynUnexpectedToken, "expected '}' to close object body")

	decl := &ast.ObjectDecl{Span: tok.Span.Cover(closeTok.Span), Name: nameTok.Text, SuperName: superName, Fields: fields, Methods: methods, Type: typeID}
	p.declareGlobal(nameTok.Text, symObject, typeID)
	return &ast.Stmt{Kind: ast.StmtObjectDecl, Span: decl.Span, Object: decl}
}

// parseMethodTail parses a method body with an implicit `this` local of
// the enclosing object's type.
func (p *Parser) parseMethodTail(name string, thisType types.TypeID) *ast.FunctionNode {
	p.expect(token.LeftParen, diag.SynUnexpectedToken, "expected '(' after method name")
	outer := p.frame
	p.frame = newFrame(outer, types.FnMethod)
	p.frame.declareLocal("this", thisType)
	params := p.parseParams()
	for _, param := range params {
		p.frame.declareLocal(param.Name, param.Type)
	}
	p.expect(token.RightParen, diag.SynUnexpectedToken, "expected ')' after method parameters")
	retType := p.in.Builtins().Void
	if p.at(token.Greater) {
		p.advance()
		retType = p.parseType()
	}
	fnParams := make([]types.Param, len(params))
	for i, prm := range params {
		fnParams[i] = types.Param{Name: prm.Name, Type: prm.Type, HasDefault: prm.Default != nil}
	}
	fnType := p.in.NewFunction(&types.FunctionType{Name: name, Params: fnParams, Return: retType, Kind: types.FnMethod})
	body := p.parseBlock()
	upvalues := captureUpvalues(p.frame)
	p.frame = outer
	return &ast.FunctionNode{Name: name, Params: params, ReturnType: retType, Kind: types.FnMethod, Body: body, Type: fnType, Upvalues: upvalues}
}

// parseEnumDecl parses `'enum' ('(' type ')')? IDENT '{' case (',' case)* '}'`
// where each case is `IDENT ('=' expr)?` (§3 "ordered cases: name->Value",
// supplementing the abridged grammar's bare-name form with explicit values).
func (p *Parser) parseEnumDecl() *ast.Stmt {
	tok := p.advance() // 'enum'
	underlying := p.in.Builtins().Integer
	if p.at(token.LeftParen) {
		p.advance()
		underlying = p.parseType()
		p.expect(token.RightParen, diag.SynUnexpectedToken, "expected ')' after enum underlying type")
	}
	nameTok, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected an enum name")

	enumType := &types.EnumType{Name: nameTok.Text, Underlying: underlying}
	typeID := p.beginTypeDecl(nameTok.Text, nil, enumType)

	p.expect(token.LeftBrace, diag.SynUnexpectedToken, "expected '{' to begin enum body")
	var cases []ast.EnumCaseDecl
	autoIndex := 0
	if !p.at(token.RightBrace) {
		for {
			caseTok, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected an enum case name")
			var val *ast.Expr
			if p.at(token.Equal) {
				p.advance()
				val = p.parseExpr()
			}
			cases = append(cases, ast.EnumCaseDecl{Span: caseTok.Span, Name: caseTok.Text, Value: val})
			enumType.Cases = append(enumType.Cases, types.EnumCase{Name: caseTok.Text, Index: autoIndex})
			autoIndex++
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	closeTok, _ := p.expect(token.RightBrace, diag.SynUnexpectedToken, "expected '}' to close enum body")

	decl := &ast.EnumDecl{Span: tok.Span.Cover(closeTok.Span), Name: nameTok.Text, Underlying: underlying, Cases: cases, Type: typeID}
	p.declareGlobal(nameTok.Text, symEnum, typeID)
	return &ast.Stmt{Kind: ast.StmtEnumDecl, Span: decl.Span, Enum: decl}
}
