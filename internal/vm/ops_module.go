package vm

// opImport is a no-op at the VM level: module resolution and linking
// (finding the imported file, compiling it, and seeding this VM's
// globals with its exports) is entirely the driver's job, run before
// this chunk starts executing (§6 "Module resolution"). The instruction
// still exists in the stream so a disassembly reads like the source.
func (vm *VM) opImport() *RuntimeError { return nil }

// opExport is never emitted by codegen (export names are resolved by
// the driver against GlobalNames directly), but the opcode's dispatch
// case is kept for bytecode-set completeness.
func (vm *VM) opExport() *RuntimeError { return nil }
