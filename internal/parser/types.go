package parser

import (
	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/source"
	"github.com/WriteNaN/buzz/internal/token"
	"github.com/WriteNaN/buzz/internal/types"
)

// parseType parses one `type` production (§6 abridged grammar):
//
//	type := 'bool' | 'int' | 'float' | 'str' | 'void'
//	      | '[' type ']' | '{' type ',' type '}' | type '?'
//	      | 'fun' IDENT? '(' params? ')' ('>' type)?
//	      | IDENT
//
// A bare IDENT not yet declared as an object or enum becomes a
// Placeholder TypeID (§4.2 "Forward references").
func (p *Parser) parseType() types.TypeID {
	var id types.TypeID
	switch p.peek().Kind {
	case token.KwBool:
		p.advance()
		id = p.in.Builtins().Bool
	case token.KwInt:
		p.advance()
		id = p.in.Builtins().Integer
	case token.KwFloat:
		p.advance()
		id = p.in.Builtins().Float
	case token.KwStr:
		p.advance()
		id = p.in.Builtins().String
	case token.KwVoid:
		p.advance()
		id = p.in.Builtins().Void
	case token.LeftBracket:
		p.advance()
		item := p.parseType()
		p.expect(token.RightBracket, diag.SynUnexpectedToken, "expected ']' after list item type")
		id = p.in.Intern(types.Type{Kind: types.KindList, Item: item})
	case token.LeftBrace:
		p.advance()
		key := p.parseType()
		p.expect(token.Comma, diag.SynUnexpectedToken, "expected ',' between map key and value types")
		val := p.parseType()
		p.expect(token.RightBrace, diag.SynUnexpectedToken, "expected '}' after map value type")
		id = p.in.Intern(types.Type{Kind: types.KindMap, Key: key, Value: val})
	case token.KwFun:
		id = p.parseFunctionType()
	case token.Ident:
		tok := p.advance()
		id = p.valueTypeForName(tok.Text, tok.Span)
	default:
		p.errorf(p.peek().Span, diag.SynUnexpectedToken, "expected a type, got %s", p.peek().Kind)
		return types.NoTypeID
	}
	for p.at(token.Question) {
		p.advance()
		id = p.in.Optional(id)
	}
	return id
}

// parseFunctionType parses the `fun IDENT? (params?) ('>' type)?` type
// expression used when a function value is accepted as a parameter or
// field type.
func (p *Parser) parseFunctionType() types.TypeID {
	p.advance() // 'fun'
	if p.at(token.Ident) {
		p.advance() // optional name, purely documentary in a type position
	}
	p.expect(token.LeftParen, diag.SynUnexpectedToken, "expected '(' in function type")
	var params []types.Param
	if !p.at(token.RightParen) {
		for {
			pt := p.parseType()
			params = append(params, types.Param{Type: pt})
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	p.expect(token.RightParen, diag.SynUnexpectedToken, "expected ')' after function type parameters")
	ret := p.in.Builtins().Void
	if p.at(token.Greater) {
		p.advance()
		ret = p.parseType()
	}
	return p.in.NewFunction(&types.FunctionType{Params: params, Return: ret, Kind: types.FnFunction})
}

// typeIDForName returns the TypeID a bare type-position identifier
// refers to, creating a placeholder the first time the name is seen
// (§4.2 "Forward references and placeholders").
func (p *Parser) typeIDForName(name string, span source.Span) types.TypeID {
	if id, ok := p.typeNames[name]; ok {
		return id
	}
	id := p.in.NewPlaceholder(&types.PlaceholderType{Name: name, Kind: types.PlaceholderTypeName, Span: span})
	p.typeNames[name] = id
	return id
}

// valueTypeForName is typeIDForName routed through the class ->
// instance substitution: a variable, field, or parameter named after an
// `object`/`enum` declaration holds a *value of* that declaration
// (ObjectInstance/EnumInstance), never the class/enum descriptor
// itself. A name still pending as a forward-reference placeholder is
// returned as-is; ResolvePlaceholder later swaps it for the class
// descriptor rather than its instance peer, a known simplification for
// self- and forward-referential type positions.
func (p *Parser) valueTypeForName(name string, span source.Span) types.TypeID {
	id := p.typeIDForName(name, span)
	t, ok := p.in.Lookup(id)
	if !ok {
		return id
	}
	switch t.Kind {
	case types.KindObject:
		return p.instanceType(id)
	case types.KindEnum:
		return p.enumInstanceType(id)
	default:
		return id
	}
}

// beginTypeDecl returns the TypeID a fresh `object`/`enum` declaration
// named name should use. If an earlier forward reference already
// allocated a placeholder for name, that placeholder is resolved in
// place (§9 "placeholders are resolved in place") so every earlier
// reference transparently becomes the concrete type; otherwise a fresh
// TypeID is allocated and recorded.
func (p *Parser) beginTypeDecl(name string, object *types.ObjectType, enum *types.EnumType) types.TypeID {
	var concrete types.TypeID
	switch {
	case object != nil:
		concrete = p.in.NewObject(object)
	case enum != nil:
		concrete = p.in.NewEnum(enum)
	default:
		panic("parser: beginTypeDecl needs an object or enum descriptor")
	}
	if existing, ok := p.typeNames[name]; ok && p.in.IsPlaceholder(existing) {
		p.in.ResolvePlaceholder(existing, concrete)
		return existing
	}
	p.typeNames[name] = concrete
	return concrete
}

// instanceType returns the single KindObjectInstance TypeID peer of an
// object declaration's KindObject TypeID, minting it the first time it
// is requested so every instance of the object shares one TypeID
// (§3 "TypeDefs are interned structurally").
func (p *Parser) instanceType(objID types.TypeID) types.TypeID {
	if cached, ok := p.instanceOf[objID]; ok {
		return cached
	}
	t, ok := p.in.Lookup(objID)
	if !ok {
		return types.NoTypeID
	}
	inst := p.in.NewObjectInstance(t.Object)
	p.instanceOf[objID] = inst
	return inst
}

// enumInstanceType returns the single KindEnumInstance TypeID peer of an
// enum declaration's KindEnum TypeID, mirroring instanceType.
func (p *Parser) enumInstanceType(enumID types.TypeID) types.TypeID {
	if cached, ok := p.enumInstOf[enumID]; ok {
		return cached
	}
	t, ok := p.in.Lookup(enumID)
	if !ok {
		return types.NoTypeID
	}
	inst := p.in.NewEnumInstance(t.Enum)
	p.enumInstOf[enumID] = inst
	return inst
}

// resolveVariable resolves name against the current frame's locals, its
// enclosing frames' upvalues, or the module's globals, mirroring the
// Lua 5.x local -> upvalue -> global search order (§4.2 "Scoping").
func (p *Parser) resolveVariable(name string, span source.Span) *ast.Expr {
	if slot, typ, ok := p.frame.resolveLocal(name); ok {
		return &ast.Expr{Kind: ast.ExprVariable, Span: span, Name: name, Slot: ast.SlotLocal, SlotIndex: slot, Type: typ}
	}
	if idx, typ, ok := p.frame.resolveUpvalue(name); ok {
		return &ast.Expr{Kind: ast.ExprVariable, Span: span, Name: name, Slot: ast.SlotUpvalue, SlotIndex: idx, Type: typ}
	}
	// An unresolved name is optimistically treated as a global: §4.2 only
	// requires the resolved AST to carry a slot kind, not that every
	// global be declared before use (natives and forward-referenced
	// top-level `fun`s are both resolved this way); a truly missing
	// global surfaces as a RuntimeError at the GET_GLOBAL site instead.
	sym := p.declareGlobal(name, symVar, types.NoTypeID)
	return &ast.Expr{Kind: ast.ExprVariable, Span: span, Name: name, Slot: ast.SlotGlobal, SlotIndex: sym.slot, Type: sym.typ}
}

// declareGlobal registers name as a module-level symbol, assigning it
// the next global slot.
func (p *Parser) declareGlobal(name string, kind symKind, typ types.TypeID) *globalSym {
	if existing, ok := p.globals[name]; ok {
		// A reference seen before its declaration (forward reference to a
		// `fun`/native) leaves the symbol's type as NoTypeID; backfill it
		// once the real declaration is parsed.
		if existing.typ == types.NoTypeID && typ != types.NoTypeID {
			existing.kind = kind
			existing.typ = typ
		}
		return existing
	}
	sym := &globalSym{kind: kind, typ: typ, slot: len(p.globalOrder)}
	p.globals[name] = sym
	p.globalOrder = append(p.globalOrder, name)
	return sym
}

// declareVariable declares name in the current local frame if one is
// active (depth > 0 or a non-script frame), else as a global — the
// single rule that makes top-level `var` declarations globals and
// function-body declarations locals.
func (p *Parser) declareVariable(name string, typ types.TypeID) (ast.SlotKind, int) {
	if p.frame.enclosing != nil || p.frame.depth > 0 {
		slot, ok := p.frame.declareLocal(name, typ)
		if !ok {
			p.errorf(source.Span{}, diag.SynTooManyLocals, "too many local variables in one function")
		}
		return ast.SlotLocal, slot
	}
	sym := p.declareGlobal(name, symVar, typ)
	return ast.SlotGlobal, sym.slot
}
