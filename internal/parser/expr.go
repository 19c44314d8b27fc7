package parser

import (
	"strconv"

	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/source"
	"github.com/WriteNaN/buzz/internal/token"
	"github.com/WriteNaN/buzz/internal/types"
)

// precedence levels, low to high (§4.2: "assignment, or, and, equality,
// comparison, range, term, factor, unary, call/subscript/dot, primary").
type precedence int

const (
	precNone precedence = iota
	precAssignment
	precOr
	precAnd
	precEquality
	precComparison
	precRange
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

func binPrecedence(k token.Kind) precedence {
	switch k {
	case token.Equal:
		return precAssignment
	case token.KwOr:
		return precOr
	case token.KwAnd:
		return precAnd
	case token.EqualEqual, token.BangEqual:
		return precEquality
	case token.Less, token.LessEqual, token.Greater, token.GreaterEqual, token.KwIs:
		return precComparison
	case token.DotDot:
		return precRange
	case token.Plus, token.Minus:
		return precTerm
	case token.Star, token.Slash, token.Percent:
		return precFactor
	case token.QuestionQuestion:
		return precOr
	default:
		return precNone
	}
}

func isRightAssoc(k token.Kind) bool { return k == token.Equal }

// parseExpr parses a full expression at the lowest precedence.
func (p *Parser) parseExpr() *ast.Expr {
	return p.parsePrecedence(precAssignment)
}

func (p *Parser) parsePrecedence(min precedence) *ast.Expr {
	left := p.parseUnary()
	for {
		tok := p.peek()
		prec := binPrecedence(tok.Kind)
		if prec < min || prec == precNone {
			return left
		}
		p.advance()
		if tok.Kind == token.Equal {
			left = p.finishAssignment(left, tok)
			continue
		}
		if tok.Kind == token.KwIs {
			left = p.finishIs(left, tok)
			continue
		}
		if tok.Kind == token.QuestionQuestion {
			left = p.finishCoalesce(left, tok)
			continue
		}
		if tok.Kind == token.DotDot {
			left = p.finishRange(left, tok)
			continue
		}
		nextMin := prec + 1
		if isRightAssoc(tok.Kind) {
			nextMin = prec
		}
		right := p.parsePrecedence(nextMin)
		left = p.finishBinary(left, tok, right)
	}
}

func (p *Parser) finishAssignment(target *ast.Expr, eq token.Token) *ast.Expr {
	value := p.parsePrecedence(precAssignment)
	switch target.Kind {
	case ast.ExprVariable, ast.ExprSubscript, ast.ExprDot:
	default:
		p.errorf(eq.Span, diag.SynInvalidAssignTarget, "invalid assignment target")
	}
	return &ast.Expr{
		Kind: ast.ExprBinary, Span: target.Span.Cover(value.Span),
		Op: token.Equal, Left: target, Right: value, Type: value.Type,
	}
}

func (p *Parser) finishIs(left *ast.Expr, op token.Token) *ast.Expr {
	rhsType := p.parseType()
	return &ast.Expr{
		Kind: ast.ExprIs, Span: left.Span, Left: left, IsType: rhsType,
		Type: p.in.Builtins().Bool,
	}
}

func (p *Parser) finishCoalesce(left *ast.Expr, op token.Token) *ast.Expr {
	resultType := left.Type
	if lt, ok := p.in.Lookup(left.Type); ok {
		if !lt.Optional {
			p.errorf(op.Span, diag.TypeCoalesceNotOptional, "'??' requires an optional left operand")
		}
		resultType = p.in.NonOptional(left.Type)
	}
	right := p.parsePrecedence(precOr)
	return &ast.Expr{Kind: ast.ExprBinary, Span: left.Span.Cover(right.Span), Op: op.Kind, Left: left, Right: right, Type: resultType}
}

func (p *Parser) finishRange(left *ast.Expr, op token.Token) *ast.Expr {
	right := p.parsePrecedence(precRange + 1)
	return &ast.Expr{Kind: ast.ExprRange, Span: left.Span.Cover(right.Span), Low: left, High: right, Type: p.in.Builtins().Range}
}

func (p *Parser) finishBinary(left *ast.Expr, op token.Token, right *ast.Expr) *ast.Expr {
	resultType := p.inferBinaryType(op.Kind, left, right, op.Span)
	return &ast.Expr{Kind: ast.ExprBinary, Span: left.Span.Cover(right.Span), Op: op.Kind, Left: left, Right: right, Type: resultType}
}

// inferBinaryType assigns the static result type of a binary operator
// application (§4.2 "Types"). Arithmetic/comparison mismatches are
// reported but still produce a best-effort result type so parsing can
// continue.
func (p *Parser) inferBinaryType(op token.Kind, left, right *ast.Expr, span source.Span) types.TypeID {
	b := p.in.Builtins()
	switch op {
	case token.EqualEqual, token.BangEqual, token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		return b.Bool
	case token.KwAnd, token.KwOr:
		return b.Bool
	case token.Plus:
		if left.Type == b.String {
			return b.String
		}
		if left.Type == b.Float || right.Type == b.Float {
			return b.Float
		}
		return left.Type
	case token.Minus, token.Star, token.Slash, token.Percent:
		if left.Type == b.Float || right.Type == b.Float {
			return b.Float
		}
		return left.Type
	default:
		return left.Type
	}
}

func (p *Parser) parseUnary() *ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.Minus, token.Bang:
		p.advance()
		operand := p.parsePrecedence(precUnary)
		resultType := operand.Type
		if tok.Kind == token.Bang {
			resultType = p.in.Builtins().Bool
		}
		return &ast.Expr{Kind: ast.ExprUnary, Span: tok.Span.Cover(operand.Span), Op: tok.Kind, Operand: operand, Type: resultType}
	}
	return p.parseCallChain()
}

// parseCallChain parses primary followed by any run of call, subscript,
// dot, force-unwrap, or optional-chain suffixes (§4.2 precedence
// "call/subscript/dot").
func (p *Parser) parseCallChain() *ast.Expr {
	expr := p.parsePrimary()
	for {
		switch p.peek().Kind {
		case token.LeftParen:
			expr = p.finishCall(expr)
		case token.LeftBracket:
			expr = p.finishSubscript(expr)
		case token.Dot:
			expr = p.finishDot(expr, false)
		case token.Question:
			if p.peekAt(1).Kind == token.Dot {
				p.advance()
				expr = p.finishDot(expr, true)
				continue
			}
			return expr
		case token.Bang:
			tok := p.advance()
			expr = &ast.Expr{Kind: ast.ExprForceUnwrap, Span: expr.Span.Cover(tok.Span), Operand: expr, Type: p.in.NonOptional(expr.Type)}
		default:
			return expr
		}
	}
}

func (p *Parser) finishDot(recv *ast.Expr, optional bool) *ast.Expr {
	p.advance() // '.'
	nameTok, ok := p.expect(token.Ident, diag.SynUnexpectedToken, "expected a member name after '.'")
	if !ok {
		return recv
	}
	kind := ast.ExprDot
	memberType := p.resolveMemberType(recv.Type, nameTok.Text, nameTok.Span)
	if optional {
		kind = ast.ExprUnwrap
		memberType = p.in.Optional(memberType)
	}
	return &ast.Expr{Kind: kind, Span: recv.Span.Cover(nameTok.Span), Receiver: recv, Member: nameTok.Text, Type: memberType}
}

// resolveMemberType looks up field/method name on the object type
// behind recvType. It returns NoTypeID when the member is not found or
// the receiver is not an object; no diagnostic is reported here.
func (p *Parser) resolveMemberType(recvType types.TypeID, name string, span source.Span) types.TypeID {
	t, ok := p.in.Lookup(recvType)
	if !ok {
		return types.NoTypeID
	}
	if t.Kind == types.KindObjectInstance || t.Kind == types.KindObject {
		if f, ok := t.Object.FindField(name); ok {
			return f.Type
		}
		if m, ok := t.Object.FindMethod(name); ok {
			return m
		}
	}
	return types.NoTypeID
}

func (p *Parser) finishSubscript(container *ast.Expr) *ast.Expr {
	open := p.advance() // '['
	index := p.parseExpr()
	close, _ := p.expect(token.RightBracket, diag.SynUnexpectedToken, "expected ']' after subscript index")
	resultType := p.subscriptResultType(container.Type)
	return &ast.Expr{Kind: ast.ExprSubscript, Span: container.Span.Cover(open.Span).Cover(close.Span), Container: container, Index: index, Type: resultType}
}

func (p *Parser) subscriptResultType(containerType types.TypeID) types.TypeID {
	t, ok := p.in.Lookup(containerType)
	if !ok {
		return types.NoTypeID
	}
	switch t.Kind {
	case types.KindList:
		return t.Item
	case types.KindMap:
		return t.Value
	default:
		return types.NoTypeID
	}
}

// finishCall parses `( args? )` plus any trailing `catch (param) { ... }`
// clauses (§4.2 "Call", glossary "Catch clause").
func (p *Parser) finishCall(callee *ast.Expr) *ast.Expr {
	open := p.advance() // '('
	var args []ast.Arg
	if !p.at(token.RightParen) {
		for {
			args = append(args, p.parseArg())
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	closeTok, _ := p.expect(token.RightParen, diag.SynUnexpectedToken, "expected ')' after call arguments")
	resultType := p.checkCall(callee, args, open.Span)

	call := &ast.Expr{Kind: ast.ExprCall, Span: callee.Span.Cover(closeTok.Span), Callee: callee, Args: args, Type: resultType}
	for p.at(token.KwCatch) {
		call.CatchClauses = append(call.CatchClauses, p.parseCatchClause())
	}
	return call
}

func (p *Parser) parseArg() ast.Arg {
	start := p.peek().Span
	name := ""
	if (p.at(token.Ident) && p.peekAt(1).Kind == token.Colon) || (p.at(token.Dollar) && p.peekAt(1).Kind == token.Colon) {
		tok := p.advance()
		name = tok.Text
		if tok.Kind == token.Dollar {
			name = "$"
		}
		p.advance() // ':'
	}
	val := p.parseExpr()
	return ast.Arg{Span: start.Cover(val.Span), Name: name, Value: val}
}

// parseCatchClause parses `catch (name)? { block }` or a bare `catch {
// block }` which catches any thrown value.
func (p *Parser) parseCatchClause() ast.CatchClause {
	catchTok := p.advance() // 'catch'
	var paramName string
	var paramType types.TypeID
	if p.at(token.LeftParen) {
		p.advance()
		nameTok, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected parameter name in catch clause")
		paramName = nameTok.Text
		if p.at(token.Colon) {
			p.advance()
			paramType = p.parseType()
		}
		p.expect(token.RightParen, diag.SynUnexpectedToken, "expected ')' after catch parameter")
	}
	// A catch clause is invoked as its own closure with the thrown value
	// as its argument (§4.4 "Exceptions"), so it opens a fresh frame
	// exactly like any other function body rather than sharing the
	// enclosing frame's locals.
	outer := p.frame
	p.frame = newFrame(outer, types.FnCatch)
	if paramName != "" {
		p.frame.declareLocal(paramName, paramType)
	}
	body := p.parseBlock()
	upvalues := captureUpvalues(p.frame)
	p.frame = outer
	fnType := p.in.NewFunction(&types.FunctionType{Kind: types.FnCatch})
	fn := &ast.FunctionNode{Kind: types.FnCatch, Body: body, Type: fnType, Upvalues: upvalues}
	if paramName != "" {
		fn.Params = []ast.ParamDecl{{Name: paramName, Type: paramType}}
	}
	return ast.CatchClause{Span: catchTok.Span.Cover(body.Span), Param: paramName, ParamType: paramType, Function: fn}
}

// checkCall validates arity and argument bindings against callee's
// declared function type, reporting TypeArityMismatch/
// TypeUnknownArgName as needed (§4.2 "Call checks").
func (p *Parser) checkCall(callee *ast.Expr, args []ast.Arg, span source.Span) types.TypeID {
	t, ok := p.in.Lookup(callee.Type)
	if !ok || t.Kind != types.KindFunction {
		return types.NoTypeID
	}
	fn := t.Func
	positional := 0
	for _, a := range args {
		if a.Name == "" {
			positional++
		}
	}
	if positional > len(fn.Params) {
		p.errorf(span, diag.TypeArityMismatch, "too many positional arguments: function %q takes %d", fn.Name, len(fn.Params))
	}
	for _, a := range args {
		if a.Name == "" || a.Name == "$" {
			continue
		}
		found := false
		for _, param := range fn.Params {
			if param.Name == a.Name {
				found = true
				break
			}
		}
		if !found {
			p.errorf(a.Span, diag.TypeUnknownArgName, "function %q has no parameter named %q", fn.Name, a.Name)
		}
	}
	return fn.Return
}

func (p *Parser) parsePrimary() *ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.KwNull:
		p.advance()
		return &ast.Expr{Kind: ast.ExprNull, Span: tok.Span, Type: p.in.Optional(p.in.Builtins().Void)}
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ast.Expr{Kind: ast.ExprBool, Span: tok.Span, BoolValue: tok.Kind == token.KwTrue, Type: p.in.Builtins().Bool}
	case token.IntLiteral:
		p.advance()
		n, _ := strconv.ParseInt(tok.Text, 10, 32)
		return &ast.Expr{Kind: ast.ExprInt, Span: tok.Span, IntValue: int32(n), Type: p.in.Builtins().Integer}
	case token.FloatLiteral:
		p.advance()
		f, _ := strconv.ParseFloat(tok.Text, 64)
		return &ast.Expr{Kind: ast.ExprFloat, Span: tok.Span, FloatValue: f, Type: p.in.Builtins().Float}
	case token.StringLiteral:
		p.advance()
		return &ast.Expr{Kind: ast.ExprStringLit, Span: tok.Span, StringValue: tok.Text, Type: p.in.Builtins().String}
	case token.StringInterpHead:
		return p.parseInterpolatedString()
	case token.LeftBracket:
		return p.parseListLiteral()
	case token.LeftBrace:
		return p.parseMapLiteral()
	case token.LeftParen:
		p.advance()
		inner := p.parseExpr()
		p.expect(token.RightParen, diag.SynUnexpectedToken, "expected ')' after grouped expression")
		return inner
	case token.KwSuper:
		return p.parseSuper()
	case token.KwThis:
		p.advance()
		return p.resolveVariable("this", tok.Span)
	case token.KwFun:
		return p.parseFunctionLiteral()
	case token.Ident:
		return p.parseIdentOrObjectInit()
	default:
		p.errorf(tok.Span, diag.SynUnexpectedToken, "expected an expression, got %s", tok.Kind)
		p.advance()
		return &ast.Expr{Kind: ast.ExprNull, Span: tok.Span, Type: types.NoTypeID}
	}
}

func (p *Parser) parseInterpolatedString() *ast.Expr {
	head := p.advance()
	pieces := []string{head.Text}
	var parts []*ast.Expr
	for {
		part := p.parseExpr()
		parts = append(parts, part)
		next := p.peek()
		switch next.Kind {
		case token.StringInterpMid:
			p.advance()
			pieces = append(pieces, next.Text)
			continue
		case token.StringInterpTail:
			p.advance()
			pieces = append(pieces, next.Text)
		default:
			p.errorf(next.Span, diag.SynUnexpectedToken, "expected continuation of interpolated string")
		}
		break
	}
	return &ast.Expr{Kind: ast.ExprString, Span: head.Span, Pieces: pieces, Parts: parts, Type: p.in.Builtins().String}
}

func (p *Parser) parseListLiteral() *ast.Expr {
	open := p.advance() // '['
	var items []*ast.Expr
	itemType := types.NoTypeID
	if !p.at(token.RightBracket) {
		for {
			item := p.parseExpr()
			items = append(items, item)
			if itemType == types.NoTypeID {
				itemType = item.Type
			}
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	close, _ := p.expect(token.RightBracket, diag.SynUnexpectedToken, "expected ']' after list elements")
	if itemType == types.NoTypeID {
		itemType = p.in.Builtins().Void
	}
	listType := p.in.Intern(types.Type{Kind: types.KindList, Item: itemType})
	return &ast.Expr{Kind: ast.ExprList, Span: open.Span.Cover(close.Span), Items: items, ItemType: itemType, Type: listType}
}

func (p *Parser) parseMapLiteral() *ast.Expr {
	open := p.advance() // '{'
	var keys, vals []*ast.Expr
	keyType, valType := types.NoTypeID, types.NoTypeID
	if !p.at(token.RightBrace) {
		for {
			k := p.parseExpr()
			p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' between map key and value")
			v := p.parseExpr()
			keys = append(keys, k)
			vals = append(vals, v)
			if keyType == types.NoTypeID {
				keyType, valType = k.Type, v.Type
			}
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	close, _ := p.expect(token.RightBrace, diag.SynUnexpectedToken, "expected '}' after map entries")
	if keyType == types.NoTypeID {
		keyType, valType = p.in.Builtins().String, p.in.Builtins().Void
	}
	mapType := p.in.Intern(types.Type{Kind: types.KindMap, Key: keyType, Value: valType})
	return &ast.Expr{Kind: ast.ExprMap, Span: open.Span.Cover(close.Span), MapKeys: keys, MapValues: vals, MapKeyType: keyType, MapValueType: valType, Type: mapType}
}

func (p *Parser) parseSuper() *ast.Expr {
	tok := p.advance() // 'super'
	p.expect(token.Dot, diag.SynUnexpectedToken, "expected '.' after 'super'")
	nameTok, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected a method name after 'super.'")
	thisType := types.NoTypeID
	if _, typ, ok := p.frame.resolveLocal("this"); ok {
		thisType = typ
	}
	memberType := types.NoTypeID
	if t, ok := p.in.Lookup(thisType); ok && t.Object != nil && t.Object.Super != nil {
		if id, ok := t.Object.Super.FindMethod(nameTok.Text); ok {
			memberType = id
		}
	}
	return &ast.Expr{Kind: ast.ExprSuper, Span: tok.Span.Cover(nameTok.Span), Member: nameTok.Text, Type: memberType}
}

// parseIdentOrObjectInit disambiguates a plain variable reference from
// `Name{ field: value, ... }` object instantiation (§4.2 "ObjectInit").
func (p *Parser) parseIdentOrObjectInit() *ast.Expr {
	tok := p.advance()
	if p.at(token.LeftBrace) {
		if id, ok := p.typeNames[tok.Text]; ok {
			if t, ok2 := p.in.Lookup(id); ok2 && (t.Kind == types.KindObject || t.Kind == types.KindObjectInstance) {
				return p.finishObjectInit(tok, id)
			}
		}
	}
	return p.resolveVariable(tok.Text, tok.Span)
}

func (p *Parser) finishObjectInit(nameTok token.Token, objID types.TypeID) *ast.Expr {
	open := p.advance() // '{'
	var names []string
	var values []*ast.Expr
	if !p.at(token.RightBrace) {
		for {
			fieldTok, _ := p.expect(token.Ident, diag.SynUnexpectedToken, "expected a field name in object literal")
			p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after field name")
			val := p.parseExpr()
			names = append(names, fieldTok.Text)
			values = append(values, val)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	close, _ := p.expect(token.RightBrace, diag.SynUnexpectedToken, "expected '}' after object literal fields")

	instType := p.instanceType(objID)
	if t, ok := p.in.Lookup(objID); ok {
		p.checkObjectInit(t.Object, names, nameTok.Span)
	}
	return &ast.Expr{
		Kind: ast.ExprObjectInit, Span: nameTok.Span.Cover(open.Span).Cover(close.Span),
		ObjectName: nameTok.Text, ObjectType: objID, FieldNames: names, FieldValues: values, Type: instType,
	}
}

// checkObjectInit reports TypeFieldNotInitialized for every
// default-less field missing from the initializer (§4.2 "Object
// inheritance").
func (p *Parser) checkObjectInit(obj *types.ObjectType, given []string, span source.Span) {
	providedOrDefaulted := make(map[string]bool, len(given))
	for _, n := range given {
		providedOrDefaulted[n] = true
	}
	for _, f := range obj.AllFields() {
		if f.Static {
			continue
		}
		if providedOrDefaulted[f.Name] || f.HasDefault {
			continue
		}
		p.errorf(span, diag.TypeFieldNotInitialized, "field %q of %q is not initialized", f.Name, obj.Name)
	}
}

func (p *Parser) parseFunctionLiteral() *ast.Expr {
	tok := p.advance() // 'fun'
	fn := p.parseFunctionTail("", types.FnAnonymous)
	return &ast.Expr{Kind: ast.ExprFunction, Span: tok.Span.Cover(fn.Body.Span), Function: fn, Type: fn.Type}
}
