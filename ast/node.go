package ast

// Node is the base interface of every AST node.
// clone deep-copies the node (children included) into the same arena and is
// reached through Context.Clone.
type Node interface {
	clone(ctx *Context) Ref
}

// Decl is a named entity: functions, arguments, variables, structs and their
// members, buffers and uniforms.
type Decl interface {
	Node
	DeclName() string
	isDecl()
}

// Expr is a value-producing node. Type references satisfy Expr as well:
// array sizes are ordinary expressions, so types are expression-shaped for
// parsing convenience.
type Expr interface {
	Node
	isExpr()
}

// Stat is a statement node.
type Stat interface {
	Node
	isStat()
}

// Type is the narrower marker satisfied by TypeId and ArrayType only.
type Type interface {
	Expr
	isType()
}

// Module is the root node: an ordered list of global declarations.
type Module struct {
	Decls []Ref
}

func (m *Module) clone(ctx *Context) Ref {
	return ctx.Make(&Module{Decls: cloneRefs(ctx, m.Decls)})
}

// AccessMode is the read/write qualifier of a buffer declaration.
type AccessMode int

const (
	AccessReadWrite AccessMode = iota // default when no qualifier is written
	AccessRead
	AccessWrite
)

// String returns the source spelling of the access mode.
func (m AccessMode) String() string {
	switch m {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessReadWrite:
		return "read_write"
	}
	panic("ast: unknown access mode")
}

// AttrKind identifies one of the recognized attribute names.
type AttrKind int

const (
	AttrGroup AttrKind = iota
	AttrBinding
	AttrCompute
	AttrVertex
	AttrFragment
	AttrWorkgroupSize
	AttrLocation
	AttrInput
	AttrBuiltin
)

// String returns the attribute name as written after '@'.
func (k AttrKind) String() string {
	switch k {
	case AttrGroup:
		return "group"
	case AttrBinding:
		return "binding"
	case AttrCompute:
		return "compute"
	case AttrVertex:
		return "vertex"
	case AttrFragment:
		return "fragment"
	case AttrWorkgroupSize:
		return "workgroup_size"
	case AttrLocation:
		return "location"
	case AttrInput:
		return "input"
	case AttrBuiltin:
		return "builtin"
	}
	panic("ast: unknown attribute kind")
}

// Attr is an '@name(args?)' attribute attached to globals, struct members
// and function arguments.
type Attr struct {
	Kind AttrKind
	Args []Ref // expression arguments, possibly empty
}

func (a *Attr) clone(ctx *Context) Ref {
	return ctx.Make(&Attr{Kind: a.Kind, Args: cloneRefs(ctx, a.Args)})
}

// FuncDecl is a function: 'fn name(args) [: return-type] block'.
type FuncDecl struct {
	Name       string
	ReturnType Ref // Type; TypeId("void") when omitted in source
	Args       []Ref
	Block      Ref
	Attrs      []Ref
}

func (d *FuncDecl) DeclName() string { return d.Name }
func (d *FuncDecl) isDecl()          {}

func (d *FuncDecl) clone(ctx *Context) Ref {
	return ctx.Make(&FuncDecl{
		Name:       d.Name,
		ReturnType: cloneRef(ctx, d.ReturnType),
		Args:       cloneRefs(ctx, d.Args),
		Block:      cloneRef(ctx, d.Block),
		Attrs:      cloneRefs(ctx, d.Attrs),
	})
}

// FuncArg is a single function argument.
type FuncArg struct {
	Name  string
	Type  Ref
	Attrs []Ref
}

func (d *FuncArg) DeclName() string { return d.Name }
func (d *FuncArg) isDecl()          {}

func (d *FuncArg) clone(ctx *Context) Ref {
	return ctx.Make(&FuncArg{
		Name:  d.Name,
		Type:  cloneRef(ctx, d.Type),
		Attrs: cloneRefs(ctx, d.Attrs),
	})
}

// VarDecl is the declaration half of a 'var' statement.
// Type is Nil when the variable's type is inferred from its initializer.
type VarDecl struct {
	Name string
	Type Ref
}

func (d *VarDecl) DeclName() string { return d.Name }
func (d *VarDecl) isDecl()          {}

func (d *VarDecl) clone(ctx *Context) Ref {
	return ctx.Make(&VarDecl{Name: d.Name, Type: cloneRef(ctx, d.Type)})
}

// StructDecl is a user struct: 'struct name { members }'.
type StructDecl struct {
	Name    string
	Members []Ref
}

func (d *StructDecl) DeclName() string { return d.Name }
func (d *StructDecl) isDecl()          {}

func (d *StructDecl) clone(ctx *Context) Ref {
	return ctx.Make(&StructDecl{Name: d.Name, Members: cloneRefs(ctx, d.Members)})
}

// StructMember is one named, typed member of a struct declaration.
type StructMember struct {
	Name  string
	Type  Ref
	Attrs []Ref
}

func (d *StructMember) DeclName() string { return d.Name }
func (d *StructMember) isDecl()          {}

func (d *StructMember) clone(ctx *Context) Ref {
	return ctx.Make(&StructMember{
		Name:  d.Name,
		Type:  cloneRef(ctx, d.Type),
		Attrs: cloneRefs(ctx, d.Attrs),
	})
}

// BufferDecl is a storage buffer: 'buffer [<access>] name : type ;'.
type BufferDecl struct {
	Name   string
	Access AccessMode
	Type   Ref
	Attrs  []Ref
}

func (d *BufferDecl) DeclName() string { return d.Name }
func (d *BufferDecl) isDecl()          {}

func (d *BufferDecl) clone(ctx *Context) Ref {
	return ctx.Make(&BufferDecl{
		Name:   d.Name,
		Access: d.Access,
		Type:   cloneRef(ctx, d.Type),
		Attrs:  cloneRefs(ctx, d.Attrs),
	})
}

// UniformDecl is a uniform: 'uniform name : type ;'.
type UniformDecl struct {
	Name  string
	Type  Ref
	Attrs []Ref
}

func (d *UniformDecl) DeclName() string { return d.Name }
func (d *UniformDecl) isDecl()          {}

func (d *UniformDecl) clone(ctx *Context) Ref {
	return ctx.Make(&UniformDecl{
		Name:  d.Name,
		Type:  cloneRef(ctx, d.Type),
		Attrs: cloneRefs(ctx, d.Attrs),
	})
}

// LitKind tags the numeric flavour of a literal expression.
type LitKind int

const (
	LitI16 LitKind = iota
	LitI32
	LitI64
	LitU16
	LitU32
	LitU64
	LitF32
	LitF64
)

// LitValue is the tagged payload of a literal: exactly one of the three
// fields is meaningful, selected by Kind.
type LitValue struct {
	Kind LitKind
	I64  int64
	U64  uint64
	F64  float64
}

// LitExpr is a numeric literal.
type LitExpr struct {
	Value LitValue
}

func (e *LitExpr) isExpr() {}

func (e *LitExpr) clone(ctx *Context) Ref {
	return ctx.Make(&LitExpr{Value: e.Value})
}

// IdExpr is a bare identifier reference.
type IdExpr struct {
	Ident string
}

func (e *IdExpr) isExpr() {}

func (e *IdExpr) clone(ctx *Context) Ref {
	return ctx.Make(&IdExpr{Ident: e.Ident})
}

// UnaryOp is the operator of a unary expression.
type UnaryOp int

const (
	UnaryMinus UnaryOp = iota
	UnaryPlus
	UnaryNot
	UnaryFlip
)

// String returns the operator's source spelling.
func (op UnaryOp) String() string {
	switch op {
	case UnaryMinus:
		return "-"
	case UnaryPlus:
		return "+"
	case UnaryNot:
		return "!"
	case UnaryFlip:
		return "~"
	}
	panic("ast: unknown unary operator")
}

// UnaryExpr is a prefix operator applied to an operand.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Ref
}

func (e *UnaryExpr) isExpr() {}

func (e *UnaryExpr) clone(ctx *Context) Ref {
	return ctx.Make(&UnaryExpr{Op: e.Op, Operand: cloneRef(ctx, e.Operand)})
}

// BinaryOp is the operator of a binary expression. Member access and the
// index accessor are binary operators too: their right operand is the member
// identifier and the bracketed index expression respectively.
type BinaryOp int

const (
	OpAssign BinaryOp = iota
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
	OpOrAssign
	OpAndAssign
	OpXorAssign
	OpShlAssign
	OpShrAssign
	OpOrOr
	OpAndAnd
	OpEqEq
	OpNotEq
	OpBitOr
	OpBitXor
	OpBitAnd
	OpGT
	OpGTEq
	OpLT
	OpLTEq
	OpShl
	OpShr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpMemberAccess
	OpIndexAccessor
)

// String returns the operator's source spelling.
func (op BinaryOp) String() string {
	switch op {
	case OpAssign:
		return "="
	case OpAddAssign:
		return "+="
	case OpSubAssign:
		return "-="
	case OpMulAssign:
		return "*="
	case OpDivAssign:
		return "/="
	case OpModAssign:
		return "%="
	case OpOrAssign:
		return "|="
	case OpAndAssign:
		return "&="
	case OpXorAssign:
		return "^="
	case OpShlAssign:
		return "<<="
	case OpShrAssign:
		return ">>="
	case OpOrOr:
		return "||"
	case OpAndAnd:
		return "&&"
	case OpEqEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpBitOr:
		return "|"
	case OpBitXor:
		return "^"
	case OpBitAnd:
		return "&"
	case OpGT:
		return ">"
	case OpGTEq:
		return ">="
	case OpLT:
		return "<"
	case OpLTEq:
		return "<="
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpMemberAccess:
		return "."
	case OpIndexAccessor:
		return "["
	}
	panic("ast: unknown binary operator")
}

// BinaryExpr is 'lhs op rhs'.
type BinaryExpr struct {
	Lhs Ref
	Op  BinaryOp
	Rhs Ref
}

func (e *BinaryExpr) isExpr() {}

func (e *BinaryExpr) clone(ctx *Context) Ref {
	return ctx.Make(&BinaryExpr{
		Lhs: cloneRef(ctx, e.Lhs),
		Op:  e.Op,
		Rhs: cloneRef(ctx, e.Rhs),
	})
}

// CallExpr is 'id(args)': either a constructor or a function call, decided
// during resolution.
type CallExpr struct {
	ID   Ref // IdExpr naming the callee
	Args []Ref
}

func (e *CallExpr) isExpr() {}

func (e *CallExpr) clone(ctx *Context) Ref {
	return ctx.Make(&CallExpr{
		ID:   cloneRef(ctx, e.ID),
		Args: cloneRefs(ctx, e.Args),
	})
}

// ArrayExpr is an array literal '[e0, e1, ...]'. Never empty.
type ArrayExpr struct {
	Elems []Ref
}

func (e *ArrayExpr) isExpr() {}

func (e *ArrayExpr) clone(ctx *Context) Ref {
	return ctx.Make(&ArrayExpr{Elems: cloneRefs(ctx, e.Elems)})
}

// TypeId is a named type reference.
type TypeId struct {
	ID string
}

func (t *TypeId) isExpr() {}
func (t *TypeId) isType() {}

func (t *TypeId) clone(ctx *Context) Ref {
	return ctx.Make(&TypeId{ID: t.ID})
}

// ArrayType is '[size] elem'. Size is Nil for runtime-sized arrays.
type ArrayType struct {
	Elem Ref
	Size Ref
}

func (t *ArrayType) isExpr() {}
func (t *ArrayType) isType() {}

func (t *ArrayType) clone(ctx *Context) Ref {
	return ctx.Make(&ArrayType{
		Elem: cloneRef(ctx, t.Elem),
		Size: cloneRef(ctx, t.Size),
	})
}

// BlockStat is a '{ ... }' statement list owning its own scope.
type BlockStat struct {
	Stats []Ref
}

func (s *BlockStat) isStat() {}

func (s *BlockStat) clone(ctx *Context) Ref {
	return ctx.Make(&BlockStat{Stats: cloneRefs(ctx, s.Stats)})
}

// VarStat is 'var name [: type] [= init] ;'.
type VarStat struct {
	Decl Ref // VarDecl
	Init Ref // Nil when no initializer is written
}

func (s *VarStat) isStat() {}

func (s *VarStat) clone(ctx *Context) Ref {
	return ctx.Make(&VarStat{
		Decl: cloneRef(ctx, s.Decl),
		Init: cloneRef(ctx, s.Init),
	})
}

// ExprStat is an expression in statement position.
type ExprStat struct {
	Expr Ref
}

func (s *ExprStat) isStat() {}

func (s *ExprStat) clone(ctx *Context) Ref {
	return ctx.Make(&ExprStat{Expr: cloneRef(ctx, s.Expr)})
}

// ReturnStat is 'return expr ;'.
type ReturnStat struct {
	Expr Ref
}

func (s *ReturnStat) isStat() {}

func (s *ReturnStat) clone(ctx *Context) Ref {
	return ctx.Make(&ReturnStat{Expr: cloneRef(ctx, s.Expr)})
}

// BreakStat is 'break ;'.
type BreakStat struct{}

func (s *BreakStat) isStat() {}

func (s *BreakStat) clone(ctx *Context) Ref {
	return ctx.Make(&BreakStat{})
}

// IfStat is 'if cond block [else block]'. Else is Nil when absent.
type IfStat struct {
	Cond  Ref
	Block Ref
	Else  Ref
}

func (s *IfStat) isStat() {}

func (s *IfStat) clone(ctx *Context) Ref {
	return ctx.Make(&IfStat{
		Cond:  cloneRef(ctx, s.Cond),
		Block: cloneRef(ctx, s.Block),
		Else:  cloneRef(ctx, s.Else),
	})
}

// ForStat is 'for init cond ; cont block'.
type ForStat struct {
	Init  Ref // Stat
	Cond  Ref // Expr
	Cont  Ref // Stat
	Block Ref
}

func (s *ForStat) isStat() {}

func (s *ForStat) clone(ctx *Context) Ref {
	return ctx.Make(&ForStat{
		Init:  cloneRef(ctx, s.Init),
		Cond:  cloneRef(ctx, s.Cond),
		Cont:  cloneRef(ctx, s.Cont),
		Block: cloneRef(ctx, s.Block),
	})
}

// WhileStat is 'while cond block'.
type WhileStat struct {
	Cond  Ref
	Block Ref
}

func (s *WhileStat) isStat() {}

func (s *WhileStat) clone(ctx *Context) Ref {
	return ctx.Make(&WhileStat{
		Cond:  cloneRef(ctx, s.Cond),
		Block: cloneRef(ctx, s.Block),
	})
}
