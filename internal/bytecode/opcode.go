// Package bytecode defines Buzz's instruction encoding: the opcode set
// emitted by the code generator and interpreted by the VM (§3 "Chunk",
// §4.3).
package bytecode

// OpCode is one instruction's operation.
type OpCode uint8

const (
	// Constants & stack manipulation.
	OpConstant OpCode = iota
	OpPop
	OpCopy
	OpSwap

	// Globals.
	OpGetGlobal
	OpSetGlobal
	OpDefineGlobal

	// Locals.
	OpGetLocal
	OpSetLocal

	// Upvalues.
	OpGetUpvalue
	OpSetUpvalue
	OpCloseUpvalue

	// Properties & subscript.
	OpGetProperty
	OpSetProperty
	OpGetSubscript
	OpSetSubscript

	// Containers.
	OpList
	OpAppendList
	OpMap
	OpSetMap
	OpRange

	// Arithmetic & logic.
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpMod
	OpNegate
	OpNot

	// Comparison.
	OpEqual
	OpGreater
	OpLess
	OpIs

	// Control flow.
	OpJump
	OpJumpIfFalse
	OpLoop

	// Null handling.
	OpNull
	OpUnwrap
	OpNullOr

	// Calls & closures.
	OpCall
	OpInvoke
	OpSuperInvoke
	OpClosure
	OpReturn
	OpVoid

	// Objects.
	OpObject
	OpInherit
	OpMethod
	OpProperty
	OpInstance

	// Enums.
	OpEnum
	OpEnumCase
	OpGetEnumCase
	OpGetEnumCaseValue

	// Strings.
	OpToString
	OpStringConcat

	// Iteration.
	OpForeach

	// Modules.
	OpImport
	OpExport

	// Exceptions.
	OpThrow
)

var opNames = [...]string{
	OpConstant:         "CONSTANT",
	OpPop:               "POP",
	OpCopy:              "COPY",
	OpSwap:              "SWAP",
	OpGetGlobal:         "GET_GLOBAL",
	OpSetGlobal:         "SET_GLOBAL",
	OpDefineGlobal:      "DEFINE_GLOBAL",
	OpGetLocal:          "GET_LOCAL",
	OpSetLocal:          "SET_LOCAL",
	OpGetUpvalue:        "GET_UPVALUE",
	OpSetUpvalue:        "SET_UPVALUE",
	OpCloseUpvalue:      "CLOSE_UPVALUE",
	OpGetProperty:       "GET_PROPERTY",
	OpSetProperty:       "SET_PROPERTY",
	OpGetSubscript:      "GET_SUBSCRIPT",
	OpSetSubscript:      "SET_SUBSCRIPT",
	OpList:              "LIST",
	OpAppendList:        "APPEND_LIST",
	OpMap:               "MAP",
	OpSetMap:            "SET_MAP",
	OpRange:             "RANGE",
	OpAdd:               "ADD",
	OpSubtract:          "SUBTRACT",
	OpMultiply:          "MULTIPLY",
	OpDivide:            "DIVIDE",
	OpMod:               "MOD",
	OpNegate:            "NEGATE",
	OpNot:               "NOT",
	OpEqual:             "EQUAL",
	OpGreater:           "GREATER",
	OpLess:              "LESS",
	OpIs:                "IS",
	OpJump:              "JUMP",
	OpJumpIfFalse:       "JUMP_IF_FALSE",
	OpLoop:              "LOOP",
	OpNull:              "NULL",
	OpUnwrap:            "UNWRAP",
	OpNullOr:            "NULL_OR",
	OpCall:              "CALL",
	OpInvoke:            "INVOKE",
	OpSuperInvoke:       "SUPER_INVOKE",
	OpClosure:           "CLOSURE",
	OpReturn:            "RETURN",
	OpVoid:              "VOID",
	OpObject:            "OBJECT",
	OpInherit:           "INHERIT",
	OpMethod:            "METHOD",
	OpProperty:          "PROPERTY",
	OpInstance:          "INSTANCE",
	OpEnum:              "ENUM",
	OpEnumCase:          "ENUM_CASE",
	OpGetEnumCase:       "GET_ENUM_CASE",
	OpGetEnumCaseValue:  "GET_ENUM_CASE_VALUE",
	OpToString:          "TO_STRING",
	OpStringConcat:      "STRING_CONCAT",
	OpForeach:           "FOREACH",
	OpImport:            "IMPORT",
	OpExport:            "EXPORT",
	OpThrow:             "THROW",
}

// String returns the mnemonic used by the disassembler and trace output.
func (op OpCode) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "UNKNOWN"
}
