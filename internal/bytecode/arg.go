package bytecode

import "fortio.org/safecast"

// SafeArg narrows a count derived from a Go slice length (argument
// count, constant index, local count) into an instruction's uint32
// field, reporting an error instead of silently wrapping on overflow —
// the donor's fortio.org/safecast idiom applied to bytecode encoding
// (§4.3 "Instruction encoding").
func SafeArg(n int) (uint32, error) {
	return safecast.Conv[uint32](n)
}
