package resolver

import (
	"fmt"

	"github.com/tsumiki/ksl/ast"
)

// ValueKind is the numeric family of a folded constant.
type ValueKind int

const (
	KindInt ValueKind = iota
	KindUint
	KindFloat
)

// Value is the tagged result of compile-time evaluation. Bits records the
// nominal width of the value (16, 32 or 64); arithmetic itself is always
// carried out in the 64-bit member of the family.
type Value struct {
	Kind ValueKind
	Bits int
	I64  int64
	U64  uint64
	F64  float64
}

// AsIndex converts the value to a signed index, when it is integral.
func (v *Value) AsIndex() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.I64, true
	case KindUint:
		return int64(v.U64), true
	default:
		return 0, false
	}
}

// Eval folds a LitExpr/BinaryExpr subtree into a constant.
//
// Supported operators: + - * / on every family, ^ | & on the integer and
// unsigned families. Division by zero is an error. When both operands
// belong to the same family but have different widths, the result takes
// the family's 64-bit width; mixed families are an error.
//
// A nil value with a nil error means the subtree is not a compile-time
// constant (unsupported operator or non-literal leaf). Callers decide
// whether that is fatal.
func Eval(ctx *ast.Context, id ast.Ref) (*Value, error) {
	switch expr := ctx.Get(id).(type) {
	case *ast.LitExpr:
		return litValue(expr.Value), nil

	case *ast.BinaryExpr:
		lhs, err := Eval(ctx, expr.Lhs)
		if err != nil {
			return nil, err
		}

		rhs, err := Eval(ctx, expr.Rhs)
		if err != nil {
			return nil, err
		}

		if lhs == nil || rhs == nil {
			return nil, nil
		}

		return apply(expr.Op, lhs, rhs)

	default:
		return nil, nil
	}
}

// litValue converts a literal payload into an evaluation value.
func litValue(lit ast.LitValue) *Value {
	switch lit.Kind {
	case ast.LitI16:
		return &Value{Kind: KindInt, Bits: 16, I64: lit.I64}
	case ast.LitI32:
		return &Value{Kind: KindInt, Bits: 32, I64: lit.I64}
	case ast.LitI64:
		return &Value{Kind: KindInt, Bits: 64, I64: lit.I64}
	case ast.LitU16:
		return &Value{Kind: KindUint, Bits: 16, U64: lit.U64}
	case ast.LitU32:
		return &Value{Kind: KindUint, Bits: 32, U64: lit.U64}
	case ast.LitU64:
		return &Value{Kind: KindUint, Bits: 64, U64: lit.U64}
	case ast.LitF32:
		return &Value{Kind: KindFloat, Bits: 32, F64: lit.F64}
	case ast.LitF64:
		return &Value{Kind: KindFloat, Bits: 64, F64: lit.F64}
	}
	panic("resolver: unknown literal kind")
}

// apply evaluates one binary operator over two folded operands.
func apply(op ast.BinaryOp, lhs *Value, rhs *Value) (*Value, error) {
	if lhs.Kind != rhs.Kind {
		return nil, fmt.Errorf("constant expression mixes numeric families")
	}

	bits := lhs.Bits
	if rhs.Bits != bits {
		bits = 64
	}

	out := &Value{Kind: lhs.Kind, Bits: bits}

	switch op {
	case ast.OpAdd:
		switch lhs.Kind {
		case KindInt:
			out.I64 = lhs.I64 + rhs.I64
		case KindUint:
			out.U64 = lhs.U64 + rhs.U64
		case KindFloat:
			out.F64 = lhs.F64 + rhs.F64
		}

	case ast.OpSub:
		switch lhs.Kind {
		case KindInt:
			out.I64 = lhs.I64 - rhs.I64
		case KindUint:
			out.U64 = lhs.U64 - rhs.U64
		case KindFloat:
			out.F64 = lhs.F64 - rhs.F64
		}

	case ast.OpMul:
		switch lhs.Kind {
		case KindInt:
			out.I64 = lhs.I64 * rhs.I64
		case KindUint:
			out.U64 = lhs.U64 * rhs.U64
		case KindFloat:
			out.F64 = lhs.F64 * rhs.F64
		}

	case ast.OpDiv:
		switch lhs.Kind {
		case KindInt:
			if rhs.I64 == 0 {
				return nil, fmt.Errorf("division by zero in constant expression")
			}
			out.I64 = lhs.I64 / rhs.I64
		case KindUint:
			if rhs.U64 == 0 {
				return nil, fmt.Errorf("division by zero in constant expression")
			}
			out.U64 = lhs.U64 / rhs.U64
		case KindFloat:
			if rhs.F64 == 0 {
				return nil, fmt.Errorf("division by zero in constant expression")
			}
			out.F64 = lhs.F64 / rhs.F64
		}

	case ast.OpBitXor:
		switch lhs.Kind {
		case KindInt:
			out.I64 = lhs.I64 ^ rhs.I64
		case KindUint:
			out.U64 = lhs.U64 ^ rhs.U64
		default:
			return nil, nil
		}

	case ast.OpBitOr:
		switch lhs.Kind {
		case KindInt:
			out.I64 = lhs.I64 | rhs.I64
		case KindUint:
			out.U64 = lhs.U64 | rhs.U64
		default:
			return nil, nil
		}

	case ast.OpBitAnd:
		switch lhs.Kind {
		case KindInt:
			out.I64 = lhs.I64 & rhs.I64
		case KindUint:
			out.U64 = lhs.U64 & rhs.U64
		default:
			return nil, nil
		}

	default:
		// Not a foldable operator.
		return nil, nil
	}

	return out, nil
}
