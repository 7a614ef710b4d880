// Package resolver walks a parsed module top-down and attaches semantic
// information to it: a scope chain, a resolved type for every declaration
// and expression, and compile-time folded array sizes. All checks here are
// fatal; the resolver returns on the first failure with a human-readable
// error, and the printer only ever runs on a fully resolved module.
package resolver

import (
	"fmt"
	"strings"

	"github.com/tsumiki/ksl/ast"
	"github.com/tsumiki/ksl/sem"
	"github.com/tsumiki/ksl/types"
)

// Resolver decorates one module. Create a fresh one per compilation.
type Resolver struct {
	ctx   *ast.Context
	types *types.System
	info  *sem.Info
	scope *sem.Scope

	// currentReturn is the declared return type of the function whose
	// body is being resolved. nil at module level.
	currentReturn types.Type
}

// NewResolver creates a resolver over the given arena and type registry.
func NewResolver(ctx *ast.Context, sys *types.System) *Resolver {
	return &Resolver{
		ctx:   ctx,
		types: sys,
	}
}

// Resolve walks the module and returns its semantic decoration. Globals
// are resolved in source order; the module scope has no parent.
func (r *Resolver) Resolve(module ast.Ref) (*sem.Info, error) {
	mod := ast.MustAs[*ast.Module](r.ctx, module)

	r.info = sem.NewInfo()
	r.scope = sem.NewScope(nil)
	r.info.Scopes[module] = r.scope

	for _, declRef := range mod.Decls {
		var err error

		switch decl := r.ctx.Get(declRef).(type) {
		case *ast.StructDecl:
			err = r.resolveStruct(declRef, decl)
		case *ast.BufferDecl:
			err = r.resolveBuffer(declRef, decl)
		case *ast.UniformDecl:
			err = r.resolveUniform(declRef, decl)
		case *ast.FuncDecl:
			err = r.resolveFunc(declRef, decl)
		default:
			panic("resolver: unexpected global declaration node")
		}

		if err != nil {
			return nil, err
		}
	}

	return r.info, nil
}

// resolveStruct resolves member types, rejects duplicate member names, and
// registers the struct as a Custom type keyed by its declared name.
func (r *Resolver) resolveStruct(declRef ast.Ref, decl *ast.StructDecl) error {
	if r.types.FindType(decl.Name) != nil {
		return fmt.Errorf("type '%s' is already defined", decl.Name)
	}

	members := make([]types.Member, 0, len(decl.Members))

	for _, memberRef := range decl.Members {
		member := ast.MustAs[*ast.StructMember](r.ctx, memberRef)

		for _, m := range members {
			if m.Name == member.Name {
				return fmt.Errorf("struct '%s' declares member '%s' more than once",
					decl.Name, member.Name)
			}
		}

		memberType, err := r.resolveType(member.Type, false)
		if err != nil {
			return err
		}

		if err := r.checkAttributes(member.Attrs); err != nil {
			return err
		}

		r.info.Decls[memberRef] = &sem.Decl{AST: memberRef, Name: member.Name, Type: memberType}
		members = append(members, types.Member{Name: member.Name, Type: memberType})
	}

	custom := r.types.Intern(&types.Custom{Name: decl.Name, Members: members})

	semDecl := &sem.Decl{AST: declRef, Name: decl.Name, Type: custom}
	r.info.Decls[declRef] = semDecl
	r.scope.AddDecl(semDecl)

	return nil
}

// resolveBuffer resolves the buffer's element type. Buffers are the only
// place a runtime-sized array is allowed.
func (r *Resolver) resolveBuffer(declRef ast.Ref, decl *ast.BufferDecl) error {
	bufferType, err := r.resolveType(decl.Type, true)
	if err != nil {
		return err
	}

	if err := r.checkAttributes(decl.Attrs); err != nil {
		return err
	}

	semDecl := &sem.Decl{AST: declRef, Name: decl.Name, Type: bufferType}
	r.info.Decls[declRef] = semDecl
	r.scope.AddDecl(semDecl)

	return nil
}

// resolveUniform resolves the uniform's element type.
func (r *Resolver) resolveUniform(declRef ast.Ref, decl *ast.UniformDecl) error {
	uniformType, err := r.resolveType(decl.Type, false)
	if err != nil {
		return err
	}

	if err := r.checkAttributes(decl.Attrs); err != nil {
		return err
	}

	semDecl := &sem.Decl{AST: declRef, Name: decl.Name, Type: uniformType}
	r.info.Decls[declRef] = semDecl
	r.scope.AddDecl(semDecl)

	return nil
}

// resolveFunc resolves the return type, the arguments (into a fresh scope
// the body chains to), then the body, and finally installs the function's
// declaration into the enclosing scope.
func (r *Resolver) resolveFunc(declRef ast.Ref, decl *ast.FuncDecl) error {
	if err := r.checkAttributes(decl.Attrs); err != nil {
		return err
	}

	returnType, err := r.resolveType(decl.ReturnType, false)
	if err != nil {
		return err
	}

	enclosing := r.scope
	r.scope = sem.NewScope(enclosing)

	for _, argRef := range decl.Args {
		arg := ast.MustAs[*ast.FuncArg](r.ctx, argRef)

		argType, err := r.resolveType(arg.Type, false)
		if err != nil {
			return err
		}

		if err := r.checkAttributes(arg.Attrs); err != nil {
			return err
		}

		semArg := &sem.Decl{AST: argRef, Name: arg.Name, Type: argType}
		r.info.Decls[argRef] = semArg
		r.scope.AddDecl(semArg)
	}

	r.currentReturn = returnType

	err = r.resolveBlock(decl.Block)

	r.currentReturn = nil
	r.scope = enclosing

	if err != nil {
		return err
	}

	semDecl := &sem.Decl{AST: declRef, Name: decl.Name, Type: returnType}
	r.info.Decls[declRef] = semDecl
	r.scope.AddDecl(semDecl)

	return nil
}

// resolveBlock gives the block a fresh scope chained to the active one and
// resolves its statements.
func (r *Resolver) resolveBlock(blockRef ast.Ref) error {
	block := ast.MustAs[*ast.BlockStat](r.ctx, blockRef)

	enclosing := r.scope
	r.scope = sem.NewScope(enclosing)
	r.info.Scopes[blockRef] = r.scope

	var err error

	for _, statRef := range block.Stats {
		if err = r.resolveStat(statRef); err != nil {
			break
		}
	}

	r.scope = enclosing

	return err
}

// resolveStat dispatches on the statement's node kind.
func (r *Resolver) resolveStat(statRef ast.Ref) error {
	switch stat := r.ctx.Get(statRef).(type) {
	case *ast.IfStat:
		if _, err := r.resolveExpr(stat.Cond); err != nil {
			return err
		}
		if err := r.resolveBlock(stat.Block); err != nil {
			return err
		}
		if stat.Else.Valid() {
			return r.resolveBlock(stat.Else)
		}
		return nil

	case *ast.ForStat:
		if err := r.resolveStat(stat.Init); err != nil {
			return err
		}
		if _, err := r.resolveExpr(stat.Cond); err != nil {
			return err
		}
		if err := r.resolveStat(stat.Cont); err != nil {
			return err
		}
		return r.resolveBlock(stat.Block)

	case *ast.WhileStat:
		if _, err := r.resolveExpr(stat.Cond); err != nil {
			return err
		}
		return r.resolveBlock(stat.Block)

	case *ast.BlockStat:
		return r.resolveBlock(statRef)

	case *ast.VarStat:
		return r.resolveVarStat(stat)

	case *ast.ExprStat:
		_, err := r.resolveExpr(stat.Expr)
		return err

	case *ast.ReturnStat:
		returnType, err := r.resolveExpr(stat.Expr)
		if err != nil {
			return err
		}
		if returnType != r.currentReturn {
			return fmt.Errorf("return type mismatch: function returns '%s', got '%s'",
				typeName(r.currentReturn), typeName(returnType))
		}
		return nil

	case *ast.BreakStat:
		return nil

	default:
		panic("resolver: unexpected statement node")
	}
}

// resolveVarStat types a 'var' statement, inferring the type from the
// initializer when none is written, and adds the variable to the scope.
func (r *Resolver) resolveVarStat(stat *ast.VarStat) error {
	varDecl := ast.MustAs[*ast.VarDecl](r.ctx, stat.Decl)

	var declaredType types.Type
	var err error

	if varDecl.Type.Valid() {
		declaredType, err = r.resolveType(varDecl.Type, false)
		if err != nil {
			return err
		}
	}

	var initType types.Type

	if stat.Init.Valid() {
		initType, err = r.resolveExpr(stat.Init)
		if err != nil {
			return err
		}
	}

	switch {
	case declaredType == nil && initType == nil:
		return fmt.Errorf("variable '%s' needs a type or an initializer", varDecl.Name)
	case declaredType != nil && initType != nil && declaredType != initType:
		return fmt.Errorf("cannot initialize variable '%s' of type '%s' with a value of type '%s'",
			varDecl.Name, typeName(declaredType), typeName(initType))
	case declaredType == nil:
		declaredType = initType
	}

	semDecl := &sem.Decl{AST: stat.Decl, Name: varDecl.Name, Type: declaredType}
	r.info.Decls[stat.Decl] = semDecl
	r.scope.AddDecl(semDecl)

	return nil
}

// litScalarNames maps literal kinds onto the built-in scalar receiving them.
var litScalarNames = map[ast.LitKind]string{
	ast.LitI16: "half",
	ast.LitI32: "int",
	ast.LitI64: "long",
	ast.LitU16: "uhalf",
	ast.LitU32: "uint",
	ast.LitU64: "ulong",
	ast.LitF32: "float",
	ast.LitF64: "double",
}

// resolveExpr types one expression subtree and records its payload.
func (r *Resolver) resolveExpr(exprRef ast.Ref) (types.Type, error) {
	var resolved types.Type
	var err error

	switch expr := r.ctx.Get(exprRef).(type) {
	case *ast.LitExpr:
		resolved = r.types.FindType(litScalarNames[expr.Value.Kind])

	case *ast.IdExpr:
		decl := r.scope.FindDecl(expr.Ident)
		if decl == nil {
			return nil, fmt.Errorf("undefined identifier '%s'", expr.Ident)
		}
		resolved = decl.Type

	case *ast.UnaryExpr:
		resolved, err = r.resolveExpr(expr.Operand)

	case *ast.BinaryExpr:
		resolved, err = r.resolveBinary(expr)

	case *ast.CallExpr:
		resolved, err = r.resolveCall(expr)

	case *ast.ArrayExpr:
		resolved, err = r.resolveArrayLiteral(expr)

	default:
		panic("resolver: unexpected expression node")
	}

	if err != nil {
		return nil, err
	}

	r.info.Exprs[exprRef] = &sem.Expr{AST: exprRef, Type: resolved}

	return resolved, nil
}

// resolveBinary types a binary expression. Member access and indexing have
// their own rules; every other operator requires identical operand types.
func (r *Resolver) resolveBinary(expr *ast.BinaryExpr) (types.Type, error) {
	switch expr.Op {
	case ast.OpMemberAccess:
		return r.resolveMemberAccess(expr)
	case ast.OpIndexAccessor:
		return r.resolveIndex(expr)
	}

	lhsType, err := r.resolveExpr(expr.Lhs)
	if err != nil {
		return nil, err
	}

	rhsType, err := r.resolveExpr(expr.Rhs)
	if err != nil {
		return nil, err
	}

	if lhsType != rhsType {
		return nil, fmt.Errorf("operands of '%s' have mismatched types '%s' and '%s'",
			expr.Op, typeName(lhsType), typeName(rhsType))
	}

	return lhsType, nil
}

// resolveMemberAccess types 'lhs.member': struct member lookup on Custom
// types, swizzling on vectors.
func (r *Resolver) resolveMemberAccess(expr *ast.BinaryExpr) (types.Type, error) {
	lhsType, err := r.resolveExpr(expr.Lhs)
	if err != nil {
		return nil, err
	}

	member, ok := ast.As[*ast.IdExpr](r.ctx, expr.Rhs)
	if !ok {
		return nil, fmt.Errorf("expected a member name after '.'")
	}

	var memberType types.Type

	switch lhs := lhsType.(type) {
	case *types.Custom:
		m := lhs.Member(member.Ident)
		if m == nil {
			return nil, fmt.Errorf("struct '%s' has no member '%s'", lhs.Name, member.Ident)
		}
		memberType = m.Type

	case *types.Vec:
		memberType, err = r.resolveSwizzle(lhs, member.Ident)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("member access on non-aggregate type '%s'", typeName(lhsType))
	}

	// The member name is an expression node too; give it the access's
	// resolved type rather than a scope lookup.
	r.info.Exprs[expr.Rhs] = &sem.Expr{AST: expr.Rhs, Type: memberType}

	return memberType, nil
}

// resolveSwizzle types 'vec.xyzw...'. Every component letter must index
// inside the vector's width and the swizzle is at most 4 long.
func (r *Resolver) resolveSwizzle(vec *types.Vec, swizzle string) (types.Type, error) {
	if len(swizzle) > 4 {
		return nil, fmt.Errorf("swizzle '%s' has more than 4 components", swizzle)
	}

	for _, c := range swizzle {
		component := strings.IndexRune("xyzw", c)
		if component < 0 {
			return nil, fmt.Errorf("invalid swizzle component '%c'", c)
		}
		if component >= vec.Columns {
			return nil, fmt.Errorf("swizzle component '%c' is out of range for '%s'",
				c, vec.MangledName())
		}
	}

	if len(swizzle) == 1 {
		return vec.Elem, nil
	}

	return r.types.VecOf(vec.Elem, len(swizzle)), nil
}

// resolveIndex types 'lhs[rhs]': element access on arrays, column access on
// matrices. Constant indices are bound-checked where the bound is known.
func (r *Resolver) resolveIndex(expr *ast.BinaryExpr) (types.Type, error) {
	lhsType, err := r.resolveExpr(expr.Lhs)
	if err != nil {
		return nil, err
	}

	indexType, err := r.resolveExpr(expr.Rhs)
	if err != nil {
		return nil, err
	}

	if !isIntegerScalar(indexType) {
		return nil, fmt.Errorf("index must be an integer, got '%s'", typeName(indexType))
	}

	switch lhs := lhsType.(type) {
	case *types.Array:
		if lhs.Count > 0 {
			if err := r.checkConstantIndex(expr.Rhs, lhs.Count, lhs.MangledName()); err != nil {
				return nil, err
			}
		}
		return lhs.Elem, nil

	case *types.Mat:
		if err := r.checkConstantIndex(expr.Rhs, uint64(lhs.Columns), lhs.MangledName()); err != nil {
			return nil, err
		}
		return r.types.VecOf(lhs.Elem, lhs.Rows), nil

	default:
		return nil, fmt.Errorf("cannot index type '%s'", typeName(lhsType))
	}
}

// checkConstantIndex is the best-effort bound check: when the index folds
// to a constant it must lie inside [0, bound).
func (r *Resolver) checkConstantIndex(indexRef ast.Ref, bound uint64, indexed string) error {
	value, err := Eval(r.ctx, indexRef)
	if err != nil {
		return err
	}

	if value == nil {
		return nil // not a compile-time constant; nothing to check
	}

	index, ok := value.AsIndex()
	if !ok {
		return nil
	}

	if index < 0 || uint64(index) >= bound {
		return fmt.Errorf("index %d is out of range for '%s'", index, indexed)
	}

	return nil
}

// resolveCall types 'id(args)'. A registered type name makes it a
// constructor; anything else must be a declared function.
func (r *Resolver) resolveCall(expr *ast.CallExpr) (types.Type, error) {
	id := ast.MustAs[*ast.IdExpr](r.ctx, expr.ID)

	argTypes := make([]types.Type, len(expr.Args))

	for i, argRef := range expr.Args {
		argType, err := r.resolveExpr(argRef)
		if err != nil {
			return nil, err
		}
		argTypes[i] = argType
	}

	if constructed := r.types.FindType(id.Ident); constructed != nil {
		result, err := r.resolveConstructor(constructed, argTypes)
		if err != nil {
			return nil, err
		}
		r.info.Exprs[expr.ID] = &sem.Expr{AST: expr.ID, Type: result}
		return result, nil
	}

	decl := r.scope.FindDecl(id.Ident)
	if decl == nil {
		return nil, fmt.Errorf("undefined function '%s'", id.Ident)
	}

	r.info.Exprs[expr.ID] = &sem.Expr{AST: expr.ID, Type: decl.Type}

	fn, ok := ast.As[*ast.FuncDecl](r.ctx, decl.AST)
	if !ok {
		return nil, fmt.Errorf("'%s' is not a function", id.Ident)
	}

	if len(expr.Args) != len(fn.Args) {
		return nil, fmt.Errorf("function '%s' expects %d argument(s), got %d",
			fn.Name, len(fn.Args), len(expr.Args))
	}

	for i, argRef := range fn.Args {
		wanted := r.info.Decls[argRef].Type
		if argTypes[i] != wanted {
			return nil, fmt.Errorf("argument %d of '%s' must be '%s', got '%s'",
				i+1, fn.Name, typeName(wanted), typeName(argTypes[i]))
		}
	}

	return decl.Type, nil
}

// resolveConstructor validates a type constructor call.
//
// Struct constructors take one argument per member, and scalar constructors
// take exactly one argument; each argument must fit its slot as
// constructorArgMatches decides (a scalar slot takes any scalar of the same
// numeric family, any other slot needs the identical type). Vector
// and matrix constructors take either a single scalar (broadcast) or any
// mix of scalars/vectors/matrices whose slot counts sum to the target's.
func (r *Resolver) resolveConstructor(constructed types.Type, argTypes []types.Type) (types.Type, error) {
	switch t := constructed.(type) {
	case *types.Array:
		return nil, fmt.Errorf("arrays are built with '[ ... ]' literals, not constructor calls")

	case *types.Void:
		return nil, fmt.Errorf("cannot construct 'void'")

	case *types.Custom:
		if len(argTypes) != len(t.Members) {
			return nil, fmt.Errorf("constructor of '%s' expects %d argument(s), got %d",
				t.Name, len(t.Members), len(argTypes))
		}
		for i, argType := range argTypes {
			if !constructorArgMatches(t.Members[i].Type, argType) {
				return nil, fmt.Errorf("member '%s' of '%s' is '%s', got '%s'",
					t.Members[i].Name, t.Name, typeName(t.Members[i].Type), typeName(argType))
			}
		}
		return t, nil

	case *types.Scalar:
		if len(argTypes) != 1 || !constructorArgMatches(t, argTypes[0]) {
			return nil, fmt.Errorf("constructor of '%s' expects exactly one '%s' argument",
				t.Name, t.Name)
		}
		return t, nil

	case *types.Vec, *types.Mat:
		// Single scalar: broadcast into every slot.
		if len(argTypes) == 1 {
			if _, ok := argTypes[0].(*types.Scalar); ok {
				return constructed, nil
			}
		}

		var slots uint64

		for _, argType := range argTypes {
			switch argType.(type) {
			case *types.Scalar, *types.Vec, *types.Mat:
				slots += argType.NumSlots()
			default:
				return nil, fmt.Errorf("constructor of '%s' cannot take an argument of type '%s'",
					constructed.MangledName(), typeName(argType))
			}
		}

		if slots != constructed.NumSlots() {
			return nil, fmt.Errorf("constructor of '%s' needs %d slot(s), arguments provide %d",
				constructed.MangledName(), constructed.NumSlots(), slots)
		}

		return constructed, nil

	default:
		panic("resolver: unexpected type in constructor call")
	}
}

// resolveArrayLiteral types '[e0, e1, ...]': all elements must share one
// type, and the literal takes the interned fixed-size array type.
func (r *Resolver) resolveArrayLiteral(expr *ast.ArrayExpr) (types.Type, error) {
	var elemType types.Type

	for _, elemRef := range expr.Elems {
		t, err := r.resolveExpr(elemRef)
		if err != nil {
			return nil, err
		}

		if elemType == nil {
			elemType = t
		} else if t != elemType {
			return nil, fmt.Errorf("array literal mixes element types '%s' and '%s'",
				typeName(elemType), typeName(t))
		}
	}

	return r.types.ArrayOf(elemType, uint64(len(expr.Elems))), nil
}

// resolveType resolves a type expression into a registry entry, folding
// array sizes. Runtime-sized arrays are only legal where allowRuntime is
// set (buffer element types).
func (r *Resolver) resolveType(typeRef ast.Ref, allowRuntime bool) (types.Type, error) {
	var resolved types.Type

	switch t := r.ctx.Get(typeRef).(type) {
	case *ast.TypeId:
		resolved = r.types.FindType(t.ID)
		if resolved == nil {
			return nil, fmt.Errorf("unknown type '%s'", t.ID)
		}

	case *ast.ArrayType:
		elem, err := r.resolveType(t.Elem, false)
		if err != nil {
			return nil, err
		}

		if !t.Size.Valid() {
			if !allowRuntime {
				return nil, fmt.Errorf("missing array size; runtime-sized arrays are only allowed in buffers")
			}
			resolved = r.types.ArrayOf(elem, 0)
			break
		}

		value, err := Eval(r.ctx, t.Size)
		if err != nil {
			return nil, err
		}

		if value == nil {
			return nil, fmt.Errorf("array size is not a compile-time constant")
		}

		count, ok := value.AsIndex()
		if !ok {
			return nil, fmt.Errorf("array size must be an integer constant")
		}

		if count <= 0 {
			return nil, fmt.Errorf("array size must be positive, got %d", count)
		}

		resolved = r.types.ArrayOf(elem, uint64(count))

	default:
		panic("resolver: unexpected type node")
	}

	r.info.Exprs[typeRef] = &sem.Expr{AST: typeRef, Type: resolved}

	return resolved, nil
}

// attribute arities: group/binding/location/builtin take one argument,
// workgroup_size one to three, the stage and input markers none.
func (r *Resolver) checkAttributes(attrRefs []ast.Ref) error {
	for _, attrRef := range attrRefs {
		attr := ast.MustAs[*ast.Attr](r.ctx, attrRef)

		argc := len(attr.Args)

		switch attr.Kind {
		case ast.AttrGroup, ast.AttrBinding, ast.AttrLocation, ast.AttrBuiltin:
			if argc != 1 {
				return fmt.Errorf("attribute '@%s' expects exactly one argument", attr.Kind)
			}
		case ast.AttrWorkgroupSize:
			if argc < 1 || argc > 3 {
				return fmt.Errorf("attribute '@%s' expects one to three arguments", attr.Kind)
			}
		case ast.AttrCompute, ast.AttrVertex, ast.AttrFragment, ast.AttrInput:
			if argc != 0 {
				return fmt.Errorf("attribute '@%s' takes no arguments", attr.Kind)
			}
		}
	}

	return nil
}

// constructorArgMatches decides whether a constructor argument fits a
// wanted slot. Non-scalars require type identity; scalar slots accept any
// scalar of the same numeric family, since literals are the only way to
// write constants and KSL has no conversion syntax (so 'P(1.0, 2.0)' can
// fill float members even though an unsuffixed fraction is 64-bit).
func constructorArgMatches(wanted types.Type, got types.Type) bool {
	if wanted == got {
		return true
	}

	wantedScalar, ok := wanted.(*types.Scalar)
	if !ok {
		return false
	}

	gotScalar, ok := got.(*types.Scalar)
	if !ok {
		return false
	}

	return scalarFamily(wantedScalar.Name) == scalarFamily(gotScalar.Name)
}

// scalarFamily buckets a scalar name into its numeric family.
func scalarFamily(name string) string {
	switch name {
	case "half", "int", "long":
		return "int"
	case "uhalf", "uint", "ulong":
		return "uint"
	case "float", "double":
		return "float"
	}
	return name
}

// isIntegerScalar reports whether t is one of the integer scalar types.
func isIntegerScalar(t types.Type) bool {
	scalar, ok := t.(*types.Scalar)
	if !ok {
		return false
	}

	switch scalar.Name {
	case "half", "uhalf", "int", "uint", "long", "ulong":
		return true
	}

	return false
}

// typeName renders a type for diagnostics, tolerating nil.
func typeName(t types.Type) string {
	if t == nil {
		return "<unresolved>"
	}
	return t.MangledName()
}
