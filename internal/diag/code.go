package diag

// Code identifies the kind of a diagnostic, grouped in numeric bands by
// the pipeline stage that raised it.
type Code uint16

const (
	UnknownCode Code = 0

	// Lexical errors (§4.1).
	LexUnterminatedString Code = 1001
	LexBadEscape          Code = 1002
	LexStrayCharacter     Code = 1003
	LexNumericOverflow    Code = 1004

	// Parse errors (§4.2, §6).
	SynUnexpectedToken  Code = 2001
	SynExpectedToken    Code = 2002
	SynUnclosedBlock    Code = 2003
	SynInvalidArgName   Code = 2004
	SynDuplicateDefault Code = 2005
	SynTooManyLocals    Code = 2006
	SynTooManyUpvalues  Code = 2007
	SynInvalidAssignTarget Code = 2008
	SynDuplicateParam   Code = 2009

	// Type errors (§4.2).
	TypeMismatch            Code = 3001
	TypeConditionNotBool    Code = 3002
	TypeUnwrapNotOptional   Code = 3003
	TypeCoalesceNotOptional Code = 3004
	TypeArityMismatch       Code = 3005
	TypeUnknownArgName      Code = 3006
	TypeFieldNotInitialized Code = 3007
	TypeNoSuchField         Code = 3008
	TypeNoSuchMethod        Code = 3009
	TypeDuplicateSymbol     Code = 3010

	// Placeholder / forward-reference resolution errors (§4.2).
	ResUnknownType Code = 4001

	// Code generation errors (§4.3).
	GenJumpTooFar    Code = 5001
	GenTooManyLocals Code = 5002
	GenTooManyConsts Code = 5003

	// Runtime errors (§4.4, §7).
	RuntimeUnhandledThrow Code = 6001
	RuntimeStackOverflow  Code = 6002
	RuntimeOverflow       Code = 6003
	RuntimeUnderflow      Code = 6004
	RuntimeDivideByZero   Code = 6005
)

// String returns the donor-style mnemonic used in pretty/JSON output.
func (c Code) String() string {
	switch {
	case c >= 1000 && c < 2000:
		return "LEX"
	case c >= 2000 && c < 3000:
		return "SYN"
	case c >= 3000 && c < 4000:
		return "TYPE"
	case c >= 4000 && c < 5000:
		return "RES"
	case c >= 5000 && c < 6000:
		return "GEN"
	case c >= 6000 && c < 7000:
		return "RUNTIME"
	default:
		return "UNKNOWN"
	}
}
