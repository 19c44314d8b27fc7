package vm

import (
	"math"

	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/value"
)

// checkedAddInt32/Sub/Mul mirror the donor's int64 checked-arithmetic
// helpers, narrowed to the i32 range Buzz's Integer type occupies (§3
// "Integer"), returning (result, ok).
// wordFor names which throwable applies to a 64-bit result that has
// escaped the 32-bit Integer range (§8 "Integer + - * / that would
// exceed 32-bit range throw OverflowError/UnderflowError").
func wordFor(wide int64) string {
	if wide > math.MaxInt32 {
		return "Overflow"
	}
	return "Underflow"
}

func checkedAddInt32(a, b int32) (int32, bool) {
	sum := int64(a) + int64(b)
	return int32(sum), sum >= math.MinInt32 && sum <= math.MaxInt32
}

func checkedSubInt32(a, b int32) (int32, bool) {
	diff := int64(a) - int64(b)
	return int32(diff), diff >= math.MinInt32 && diff <= math.MaxInt32
}

func checkedMulInt32(a, b int32) (int32, bool) {
	prod := int64(a) * int64(b)
	return int32(prod), prod >= math.MinInt32 && prod <= math.MaxInt32
}

// opAdd implements polymorphic `+`: Integer/Float arithmetic, String
// concatenation, and List/Map union (§4.4 "Arithmetic").
func (vm *VM) opAdd() *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	switch {
	case a.Kind == value.KInt && b.Kind == value.KInt:
		sum, ok := checkedAddInt32(a.Int, b.Int)
		if !ok {
			return vm.throwArith(wordFor(int64(a.Int)+int64(b.Int)) + "Error: integer addition out of range")
		}
		vm.push(value.NewInt(sum))
	case isNumeric(a) && isNumeric(b):
		vm.push(value.NewFloat(asFloat(a) + asFloat(b)))
	case isString(a) && isString(b):
		vm.push(vm.newString(a.Obj.Str.Chars + b.Obj.Str.Chars))
	case isList(a) && isList(b):
		items := make([]value.Value, 0, len(a.Obj.List.Items)+len(b.Obj.List.Items))
		items = append(items, a.Obj.List.Items...)
		items = append(items, b.Obj.List.Items...)
		vm.push(value.NewObject(vm.track(&value.Object{Kind: value.ObjList, List: &value.ListObj{ItemType: a.Obj.List.ItemType, Items: items}})))
	case isMap(a) && isMap(b):
		// Right-biased merge (§9 Open Question (b)).
		vm.push(value.NewObject(vm.track(&value.Object{Kind: value.ObjMap, Map: a.Obj.Map.Merge(b.Obj.Map)})))
	default:
		return vm.runtimeErrorf(diag.TypeMismatch, "cannot add %s and %s", describeKind(a), describeKind(b))
	}
	return nil
}

func (vm *VM) opSubtract() *RuntimeError {
	return vm.binaryArith("subtraction", checkedSubInt32, func(a, b int32) int64 { return int64(a) - int64(b) }, func(a, b float64) float64 { return a - b })
}
func (vm *VM) opMultiply() *RuntimeError {
	return vm.binaryArith("multiplication", checkedMulInt32, func(a, b int32) int64 { return int64(a) * int64(b) }, func(a, b float64) float64 { return a * b })
}

func (vm *VM) binaryArith(noun string, intOp func(a, b int32) (int32, bool), wideOp func(a, b int32) int64, floatOp func(a, b float64) float64) *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	switch {
	case a.Kind == value.KInt && b.Kind == value.KInt:
		res, ok := intOp(a.Int, b.Int)
		if !ok {
			return vm.throwArith(wordFor(wideOp(a.Int, b.Int)) + "Error: integer " + noun + " out of range")
		}
		vm.push(value.NewInt(res))
	case isNumeric(a) && isNumeric(b):
		vm.push(value.NewFloat(floatOp(asFloat(a), asFloat(b))))
	default:
		return vm.runtimeErrorf(diag.TypeMismatch, "cannot %s %s and %s", noun, describeKind(a), describeKind(b))
	}
	return nil
}

// opDivide implements `/`: Integer/Integer stays Integer only when the
// quotient is exact and in range, otherwise both operands promote to
// Float (§4.4 "Division").
func (vm *VM) opDivide() *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	switch {
	case a.Kind == value.KInt && b.Kind == value.KInt:
		if b.Int == 0 {
			return vm.throwArith("DivideByZeroError: division by zero")
		}
		if a.Int%b.Int == 0 {
			vm.push(value.NewInt(a.Int / b.Int))
			return nil
		}
		vm.push(value.NewFloat(float64(a.Int) / float64(b.Int)))
	case isNumeric(a) && isNumeric(b):
		if asFloat(b) == 0 {
			return vm.throwArith("DivideByZeroError: division by zero")
		}
		vm.push(value.NewFloat(asFloat(a) / asFloat(b)))
	default:
		return vm.runtimeErrorf(diag.TypeMismatch, "cannot divide %s and %s", describeKind(a), describeKind(b))
	}
	return nil
}

func (vm *VM) opMod() *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	if a.Kind == value.KInt && b.Kind == value.KInt {
		if b.Int == 0 {
			return vm.throwArith("DivideByZeroError: modulo by zero")
		}
		vm.push(value.NewInt(a.Int % b.Int))
		return nil
	}
	if isNumeric(a) && isNumeric(b) {
		bf := asFloat(b)
		if bf == 0 {
			return vm.throwArith("DivideByZeroError: modulo by zero")
		}
		vm.push(value.NewFloat(math.Mod(asFloat(a), bf)))
		return nil
	}
	return vm.runtimeErrorf(diag.TypeMismatch, "cannot modulo %s and %s", describeKind(a), describeKind(b))
}

func (vm *VM) opNegate() *RuntimeError {
	a := vm.pop()
	switch a.Kind {
	case value.KInt:
		if a.Int == math.MinInt32 {
			return vm.throwArith("OverflowError: integer negation overflowed")
		}
		vm.push(value.NewInt(-a.Int))
	case value.KFloat:
		vm.push(value.NewFloat(-a.Float))
	default:
		return vm.runtimeErrorf(diag.TypeMismatch, "cannot negate %s", describeKind(a))
	}
	return nil
}

func (vm *VM) opNot() *RuntimeError {
	a := vm.pop()
	vm.push(value.NewBool(!a.IsTruthy()))
	return nil
}

// throwArith turns an implicit arithmetic fault into a catchable thrown
// value (§8 "throw OverflowError/UnderflowError... as throwable
// values"): it is routed through raise exactly like an explicit `throw`,
// and only becomes a fatal RuntimeError — tagged with the specific
// overflow/underflow/divide-by-zero code rather than the generic
// unhandled-throw one — if nothing catches it.
func (vm *VM) throwArith(message string) *RuntimeError {
	err := vm.raise(vm.newString(message))
	if err == nil {
		return nil
	}
	switch {
	case containsFold(message, "DivideByZero"):
		err.Code = diag.RuntimeDivideByZero
	case containsFold(message, "Underflow"):
		err.Code = diag.RuntimeUnderflow
	case containsFold(message, "Overflow"):
		err.Code = diag.RuntimeOverflow
	}
	return err
}

func containsFold(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func isNumeric(v value.Value) bool { return v.Kind == value.KInt || v.Kind == value.KFloat }

func asFloat(v value.Value) float64 {
	if v.Kind == value.KInt {
		return float64(v.Int)
	}
	return v.Float
}

func isString(v value.Value) bool { return v.Kind == value.KObject && v.Obj != nil && v.Obj.Kind == value.ObjString }
func isList(v value.Value) bool   { return v.Kind == value.KObject && v.Obj != nil && v.Obj.Kind == value.ObjList }
func isMap(v value.Value) bool    { return v.Kind == value.KObject && v.Obj != nil && v.Obj.Kind == value.ObjMap }

func describeKind(v value.Value) string {
	if v.Kind == value.KObject && v.Obj != nil {
		return v.Obj.Kind.String()
	}
	switch v.Kind {
	case value.KNull:
		return "null"
	case value.KBool:
		return "bool"
	case value.KInt:
		return "int"
	case value.KFloat:
		return "float"
	default:
		return "value"
	}
}
