// Package glsl prints a resolved KSL module as GLSL source.
//
// The printer is the last stage of the pipeline: it assumes the module was
// fully resolved and never reports errors. Types are printed from the
// resolved semantic information, so folded array sizes and inferred
// variable types come out concrete.
package glsl

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/tsumiki/ksl/ast"
	"github.com/tsumiki/ksl/sem"
	"github.com/tsumiki/ksl/types"
)

// Printer walks a resolved module and accumulates GLSL text.
type Printer struct {
	ctx  *ast.Context
	info *sem.Info
	buf  bytes.Buffer
}

// NewPrinter creates a printer over the arena and its resolved decoration.
func NewPrinter(ctx *ast.Context, info *sem.Info) *Printer {
	return &Printer{
		ctx:  ctx,
		info: info,
	}
}

// Print emits every top-level declaration in source order, separated by
// blank lines, and returns the accumulated GLSL source.
func (p *Printer) Print(module ast.Ref) string {
	p.buf.Reset()

	mod := ast.MustAs[*ast.Module](p.ctx, module)

	for _, declRef := range mod.Decls {
		switch decl := p.ctx.Get(declRef).(type) {
		case *ast.StructDecl:
			p.printStruct(declRef, decl)
		case *ast.BufferDecl:
			p.printBuffer(declRef, decl)
		case *ast.UniformDecl:
			p.printUniform(declRef, decl)
		case *ast.FuncDecl:
			p.printFunc(declRef, decl)
		default:
			panic("glsl: unexpected global declaration node")
		}

		p.out("\n")
	}

	return p.buf.String()
}

// out appends text to the output buffer.
func (p *Printer) out(text string) {
	p.buf.WriteString(text)
}

func (p *Printer) printStruct(declRef ast.Ref, decl *ast.StructDecl) {
	p.out("struct " + decl.Name + " {\n")

	for _, memberRef := range decl.Members {
		member := ast.MustAs[*ast.StructMember](p.ctx, memberRef)

		p.out("\t")
		p.out(declString(p.info.DeclType(memberRef), member.Name))
		p.out(";\n")
	}

	p.out("};\n")
}

func (p *Printer) printBuffer(declRef ast.Ref, decl *ast.BufferDecl) {
	p.out("buffer " + decl.Name + " {\n")
	p.out("\t")
	p.out(declString(p.info.DeclType(declRef), "data"))
	p.out(";\n};\n")
}

func (p *Printer) printUniform(declRef ast.Ref, decl *ast.UniformDecl) {
	p.out("uniform ")
	p.out(declString(p.info.DeclType(declRef), decl.Name))
	p.out(";\n")
}

func (p *Printer) printFunc(declRef ast.Ref, decl *ast.FuncDecl) {
	p.out(typeString(p.info.DeclType(declRef)))
	p.out(" " + decl.Name + "(")

	for i, argRef := range decl.Args {
		if i > 0 {
			p.out(", ")
		}

		arg := ast.MustAs[*ast.FuncArg](p.ctx, argRef)
		p.out(declString(p.info.DeclType(argRef), arg.Name))
	}

	p.out(") ")
	p.printBlock(decl.Block)
}

func (p *Printer) printBlock(blockRef ast.Ref) {
	block := ast.MustAs[*ast.BlockStat](p.ctx, blockRef)

	p.out("{\n")

	for _, statRef := range block.Stats {
		p.printStat(statRef)
	}

	p.out("}\n")
}

// printStat emits one statement including its terminator and newline.
func (p *Printer) printStat(statRef ast.Ref) {
	switch stat := p.ctx.Get(statRef).(type) {
	case *ast.IfStat:
		p.out("if (")
		p.printExpr(stat.Cond)
		p.out(") ")
		p.printBlock(stat.Block)
		if stat.Else.Valid() {
			p.out("else ")
			p.printBlock(stat.Else)
		}

	case *ast.ForStat:
		p.out("for (")
		p.printStatInline(stat.Init)
		p.out(" ")
		p.printExpr(stat.Cond)
		p.out("; ")
		p.printForContinuing(stat.Cont)
		p.out(") ")
		p.printBlock(stat.Block)

	case *ast.WhileStat:
		p.out("while (")
		p.printExpr(stat.Cond)
		p.out(") ")
		p.printBlock(stat.Block)

	case *ast.BlockStat:
		p.printBlock(statRef)

	case *ast.VarStat:
		p.printStatInline(statRef)
		p.out("\n")

	case *ast.ExprStat:
		p.printExpr(stat.Expr)
		p.out(";\n")

	case *ast.ReturnStat:
		p.out("return ")
		p.printExpr(stat.Expr)
		p.out(";\n")

	case *ast.BreakStat:
		p.out("break;\n")

	default:
		panic("glsl: unexpected statement node")
	}
}

// printStatInline emits a var or expression statement with its ';' but no
// trailing newline, for use inside for-headers and variable declarations.
func (p *Printer) printStatInline(statRef ast.Ref) {
	switch stat := p.ctx.Get(statRef).(type) {
	case *ast.VarStat:
		varDecl := ast.MustAs[*ast.VarDecl](p.ctx, stat.Decl)

		p.out(declString(p.info.DeclType(stat.Decl), varDecl.Name))

		if stat.Init.Valid() {
			p.out(" = ")
			p.printExpr(stat.Init)
		}

		p.out(";")

	case *ast.ExprStat:
		p.printExpr(stat.Expr)
		p.out(";")

	default:
		panic("glsl: statement not printable inline")
	}
}

// printForContinuing emits the update slot of a for-header. An expression
// statement loses its own terminator, as GLSL wants 'for (init; cond; upd)';
// a var statement is printed inline with its ';' kept.
func (p *Printer) printForContinuing(statRef ast.Ref) {
	if stat, ok := ast.As[*ast.ExprStat](p.ctx, statRef); ok {
		p.printExpr(stat.Expr)
		return
	}

	p.printStatInline(statRef)
}

func (p *Printer) printExpr(exprRef ast.Ref) {
	switch expr := p.ctx.Get(exprRef).(type) {
	case *ast.LitExpr:
		p.printLit(expr)

	case *ast.IdExpr:
		p.out(expr.Ident)

	case *ast.UnaryExpr:
		p.out(expr.Op.String())
		p.printExpr(expr.Operand)

	case *ast.BinaryExpr:
		p.printBinary(expr)

	case *ast.CallExpr:
		p.printCall(expr)

	case *ast.ArrayExpr:
		p.out("{ ")
		for i, elemRef := range expr.Elems {
			if i > 0 {
				p.out(", ")
			}
			p.printExpr(elemRef)
		}
		p.out(" }")

	case *ast.TypeId:
		p.out(translateTypeName(expr.ID))

	default:
		panic("glsl: unexpected expression node")
	}
}

func (p *Printer) printLit(expr *ast.LitExpr) {
	v := expr.Value

	switch v.Kind {
	case ast.LitI16, ast.LitI32, ast.LitI64:
		p.out(strconv.FormatInt(v.I64, 10))
	case ast.LitU16, ast.LitU32, ast.LitU64:
		p.out(strconv.FormatUint(v.U64, 10))
	case ast.LitF32, ast.LitF64:
		p.out(formatFloat(v.F64))
	default:
		panic("glsl: unknown literal kind")
	}
}

func (p *Printer) printBinary(expr *ast.BinaryExpr) {
	p.printExpr(expr.Lhs)

	switch expr.Op {
	case ast.OpMemberAccess:
		p.out(".")
	case ast.OpIndexAccessor:
		p.out("[")
	default:
		p.out(" " + expr.Op.String() + " ")
	}

	p.printExpr(expr.Rhs)

	if expr.Op == ast.OpIndexAccessor {
		p.out("]")
	}
}

func (p *Printer) printCall(expr *ast.CallExpr) {
	id := ast.MustAs[*ast.IdExpr](p.ctx, expr.ID)

	p.out(translateTypeName(id.Ident))
	p.out("(")

	for i, argRef := range expr.Args {
		if i > 0 {
			p.out(", ")
		}
		p.printExpr(argRef)
	}

	p.out(")")
}

// typeString renders a resolved type as a GLSL type name.
func typeString(t types.Type) string {
	switch t := t.(type) {
	case *types.Void:
		return "void"
	case *types.Scalar:
		return t.Name
	case *types.Vec, *types.Mat, *types.Custom:
		return translateTypeName(t.MangledName())
	case *types.Array:
		// Arrays are normally printed through declString; a bare
		// array type keeps its suffix after the element name.
		elem, suffix := splitArray(t)
		return typeString(elem) + suffix
	default:
		panic("glsl: unexpected type")
	}
}

// declString renders 'type name' with C-style array suffixes after the
// name: a KSL '[2][3]int x' comes out as 'int x[2][3]'.
func declString(t types.Type, name string) string {
	elem, suffix := splitArray(t)
	return typeString(elem) + " " + name + suffix
}

// splitArray peels array layers off a type, returning the innermost
// non-array element and the accumulated '[N]' suffixes, outermost first.
func splitArray(t types.Type) (types.Type, string) {
	var suffix strings.Builder

	for {
		array, ok := t.(*types.Array)
		if !ok {
			return t, suffix.String()
		}

		if array.Count == 0 {
			suffix.WriteString("[]")
		} else {
			fmt.Fprintf(&suffix, "[%d]", array.Count)
		}

		t = array.Elem
	}
}

// glslVecPrefixes maps KSL scalar names onto GLSL vector prefixes.
var glslVecPrefixes = map[string]string{
	"float":  "vec",
	"double": "dvec",
	"int":    "ivec",
	"uint":   "uvec",
}

// glslMatPrefixes maps KSL scalar names onto GLSL matrix prefixes.
var glslMatPrefixes = map[string]string{
	"float":  "mat",
	"double": "dmat",
}

// translateTypeName maps a KSL built-in type name onto its GLSL spelling:
// float4 -> vec4, double3 -> dvec3, int2 -> ivec2, uint4 -> uvec4,
// float4x4 -> mat4x4, double2x3 -> dmat2x3. Scalars and user-defined names
// pass through verbatim.
func translateTypeName(name string) string {
	for scalar, prefix := range glslMatPrefixes {
		if rest, ok := strings.CutPrefix(name, scalar); ok && isMatShape(rest) {
			return prefix + rest
		}
	}

	for scalar, prefix := range glslVecPrefixes {
		if rest, ok := strings.CutPrefix(name, scalar); ok && isVecWidth(rest) {
			return prefix + rest
		}
	}

	return name
}

// isVecWidth matches the '2'..'4' tail of a vector mangled name.
func isVecWidth(s string) bool {
	return len(s) == 1 && s[0] >= '2' && s[0] <= '4'
}

// isMatShape matches the 'RxC' tail of a matrix mangled name.
func isMatShape(s string) bool {
	return len(s) == 3 && s[1] == 'x' &&
		s[0] >= '2' && s[0] <= '4' && s[2] >= '2' && s[2] <= '4'
}

// formatFloat renders a float literal, always keeping a decimal point or an
// exponent (e.g. "1e+06") so GLSL reads it as a floating-point constant.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)

	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}

	return s
}
