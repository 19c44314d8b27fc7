package token

// keywords maps reserved identifiers to their Kind. Populated once at
// package init so the lexer's identifier scanner can do a plain map
// lookup after consuming an identifier run.
var keywords = map[string]Kind{
	"fun":      KwFun,
	"object":   KwObject,
	"enum":     KwEnum,
	"if":       KwIf,
	"else":     KwElse,
	"for":      KwFor,
	"foreach":  KwForEach,
	"in":       KwIn,
	"while":    KwWhile,
	"do":       KwDo,
	"until":    KwUntil,
	"break":    KwBreak,
	"continue": KwContinue,
	"return":   KwReturn,
	"import":   KwImport,
	"export":   KwExport,
	"as":       KwAs,
	"is":       KwIs,
	"test":     KwTest,
	"throw":    KwThrow,
	"catch":    KwCatch,
	"true":     KwTrue,
	"false":    KwFalse,
	"null":     KwNull,
	"and":      KwAnd,
	"or":       KwOr,
	"const":    KwConst,
	"static":   KwStatic,
	"super":    KwSuper,
	"this":     KwThis,
	"bool":     KwBool,
	"int":      KwInt,
	"float":    KwFloat,
	"str":      KwStr,
	"void":     KwVoid,
}

// Lookup returns the keyword Kind for ident, or (Ident, false) if ident is
// not reserved.
func Lookup(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	if !ok {
		return Ident, false
	}
	return k, true
}
