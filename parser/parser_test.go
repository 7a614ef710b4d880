package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsumiki/ksl/ast"
)

// parseModule parses source expecting success and returns the arena and
// the module node.
func parseModule(t *testing.T, source string) (*ast.Context, *ast.Module) {
	t.Helper()

	ctx := ast.NewContext()
	par := NewParser(ctx, Options{})

	moduleRef, err := par.Parse(source)
	require.NoError(t, err, "errors: %v", par.GetErrors())
	require.True(t, moduleRef.Valid())

	return ctx, ast.MustAs[*ast.Module](ctx, moduleRef)
}

// parseExprString parses '<expr>;' inside a function body and returns the
// expression's root node.
func parseExprString(t *testing.T, expr string) (*ast.Context, ast.Ref) {
	t.Helper()

	ctx, module := parseModule(t, "fn f() { "+expr+"; }")

	fn := ast.MustAs[*ast.FuncDecl](ctx, module.Decls[0])
	block := ast.MustAs[*ast.BlockStat](ctx, fn.Block)
	require.Len(t, block.Stats, 1)

	stat := ast.MustAs[*ast.ExprStat](ctx, block.Stats[0])
	return ctx, stat.Expr
}

func TestParser_MinimalFunction(t *testing.T) {
	ctx, module := parseModule(t, `@compute fn main() { var x : int = 1; }`)

	require.Len(t, module.Decls, 1)

	fn := ast.MustAs[*ast.FuncDecl](ctx, module.Decls[0])
	assert.Equal(t, "main", fn.Name)
	require.Len(t, fn.Attrs, 1)
	assert.Equal(t, ast.AttrCompute, ast.MustAs[*ast.Attr](ctx, fn.Attrs[0]).Kind)

	// Missing return type defaults to void.
	ret := ast.MustAs[*ast.TypeId](ctx, fn.ReturnType)
	assert.Equal(t, "void", ret.ID)

	block := ast.MustAs[*ast.BlockStat](ctx, fn.Block)
	require.Len(t, block.Stats, 1)

	varStat := ast.MustAs[*ast.VarStat](ctx, block.Stats[0])
	varDecl := ast.MustAs[*ast.VarDecl](ctx, varStat.Decl)
	assert.Equal(t, "x", varDecl.Name)
	assert.True(t, varStat.Init.Valid())
}

func TestParser_FunctionArgsAndReturnType(t *testing.T) {
	ctx, module := parseModule(t, `fn s(v : float4, w : float3) : float3 { return w; }`)

	fn := ast.MustAs[*ast.FuncDecl](ctx, module.Decls[0])
	require.Len(t, fn.Args, 2)

	arg0 := ast.MustAs[*ast.FuncArg](ctx, fn.Args[0])
	assert.Equal(t, "v", arg0.Name)
	assert.Equal(t, "float4", ast.MustAs[*ast.TypeId](ctx, arg0.Type).ID)

	assert.Equal(t, "float3", ast.MustAs[*ast.TypeId](ctx, fn.ReturnType).ID)
}

// binaryShape asserts the node is a BinaryExpr with the given operator.
func binaryShape(t *testing.T, ctx *ast.Context, ref ast.Ref, op ast.BinaryOp) *ast.BinaryExpr {
	t.Helper()

	expr := ast.MustAs[*ast.BinaryExpr](ctx, ref)
	require.Equal(t, op, expr.Op)
	return expr
}

func TestParser_Precedence(t *testing.T) {
	// Multiplication binds tighter than addition: 1 + (2 * 3).
	ctx, root := parseExprString(t, `1 + 2 * 3`)
	add := binaryShape(t, ctx, root, ast.OpAdd)
	assert.IsType(t, &ast.LitExpr{}, ctx.Get(add.Lhs))
	binaryShape(t, ctx, add.Rhs, ast.OpMul)

	// Same operators, reversed order: (2 * 3) + 1.
	ctx, root = parseExprString(t, `2 * 3 + 1`)
	add = binaryShape(t, ctx, root, ast.OpAdd)
	binaryShape(t, ctx, add.Lhs, ast.OpMul)
	assert.IsType(t, &ast.LitExpr{}, ctx.Get(add.Rhs))

	// Additive operators are left-associative: (a - b) - c.
	ctx, root = parseExprString(t, `a - b - c`)
	sub := binaryShape(t, ctx, root, ast.OpSub)
	binaryShape(t, ctx, sub.Lhs, ast.OpSub)

	// Assignment is right-associative: a = (b = c).
	ctx, root = parseExprString(t, `a = b = c`)
	assign := binaryShape(t, ctx, root, ast.OpAssign)
	binaryShape(t, ctx, assign.Rhs, ast.OpAssign)

	// '&&' and '||' share one level and bind right: a && (b || c).
	ctx, root = parseExprString(t, `a && b || c`)
	and := binaryShape(t, ctx, root, ast.OpAndAnd)
	binaryShape(t, ctx, and.Rhs, ast.OpOrOr)

	// Comparison ties additive levels correctly: (a + b) < (c * d).
	ctx, root = parseExprString(t, `a + b < c * d`)
	less := binaryShape(t, ctx, root, ast.OpLT)
	binaryShape(t, ctx, less.Lhs, ast.OpAdd)
	binaryShape(t, ctx, less.Rhs, ast.OpMul)
}

func TestParser_IndexAndMemberAccessors(t *testing.T) {
	// Index binds tighter than assignment: (a[0]) = 1.
	ctx, root := parseExprString(t, `a[0] = 1`)
	assign := binaryShape(t, ctx, root, ast.OpAssign)
	index := binaryShape(t, ctx, assign.Lhs, ast.OpIndexAccessor)
	assert.Equal(t, "a", ast.MustAs[*ast.IdExpr](ctx, index.Lhs).Ident)

	// The bracketed index is a full expression.
	ctx, root = parseExprString(t, `a[i + 1]`)
	index = binaryShape(t, ctx, root, ast.OpIndexAccessor)
	binaryShape(t, ctx, index.Rhs, ast.OpAdd)

	// Member access chains left: (v.xy).x.
	ctx, root = parseExprString(t, `v.xy.x`)
	outer := binaryShape(t, ctx, root, ast.OpMemberAccess)
	binaryShape(t, ctx, outer.Lhs, ast.OpMemberAccess)
	assert.Equal(t, "x", ast.MustAs[*ast.IdExpr](ctx, outer.Rhs).Ident)
}

func TestParser_UnaryAndCalls(t *testing.T) {
	ctx, root := parseExprString(t, `-f(1, x)`)

	unary := ast.MustAs[*ast.UnaryExpr](ctx, root)
	assert.Equal(t, ast.UnaryMinus, unary.Op)

	call := ast.MustAs[*ast.CallExpr](ctx, unary.Operand)
	assert.Equal(t, "f", ast.MustAs[*ast.IdExpr](ctx, call.ID).Ident)
	assert.Len(t, call.Args, 2)

	// Empty argument list.
	ctx, root = parseExprString(t, `g()`)
	call = ast.MustAs[*ast.CallExpr](ctx, root)
	assert.Len(t, call.Args, 0)
}

func TestParser_ArrayLiteral(t *testing.T) {
	ctx, root := parseExprString(t, `[1, 2, 3]`)

	arr := ast.MustAs[*ast.ArrayExpr](ctx, root)
	assert.Len(t, arr.Elems, 3)
}

func TestParser_BufferDecl(t *testing.T) {
	ctx, module := parseModule(t, `@group(0) @binding(0) buffer<read> b : float;`)

	buffer := ast.MustAs[*ast.BufferDecl](ctx, module.Decls[0])
	assert.Equal(t, "b", buffer.Name)
	assert.Equal(t, ast.AccessRead, buffer.Access)
	assert.Len(t, buffer.Attrs, 2)

	// Absent access mode defaults to read_write.
	ctx, module = parseModule(t, `buffer data : [] int;`)
	buffer = ast.MustAs[*ast.BufferDecl](ctx, module.Decls[0])
	assert.Equal(t, ast.AccessReadWrite, buffer.Access)

	arrayType := ast.MustAs[*ast.ArrayType](ctx, buffer.Type)
	assert.False(t, arrayType.Size.Valid())
}

func TestParser_UniformDecl(t *testing.T) {
	ctx, module := parseModule(t, `uniform scale : float;`)

	uniform := ast.MustAs[*ast.UniformDecl](ctx, module.Decls[0])
	assert.Equal(t, "scale", uniform.Name)
	assert.Equal(t, "float", ast.MustAs[*ast.TypeId](ctx, uniform.Type).ID)
}

func TestParser_StructDecl(t *testing.T) {
	ctx, module := parseModule(t, `
	struct VertexOutput {
		@location(0) position : float4,
		@location(1) normal : float3
	}`)

	structDecl := ast.MustAs[*ast.StructDecl](ctx, module.Decls[0])
	assert.Equal(t, "VertexOutput", structDecl.Name)
	require.Len(t, structDecl.Members, 2)

	member := ast.MustAs[*ast.StructMember](ctx, structDecl.Members[0])
	assert.Equal(t, "position", member.Name)
	assert.Len(t, member.Attrs, 1)
}

// TestParser_AnonymousStructLifting checks that an inline struct type is
// lifted into a synthetic global declaration.
func TestParser_AnonymousStructLifting(t *testing.T) {
	ctx, module := parseModule(t, `fn f(p : { a : int }) { return 1; }`)

	// The lifted struct precedes the function that referenced it.
	require.Len(t, module.Decls, 2)

	lifted := ast.MustAs[*ast.StructDecl](ctx, module.Decls[0])
	assert.Equal(t, "priv_1", lifted.Name)
	assert.Len(t, lifted.Members, 1)

	fn := ast.MustAs[*ast.FuncDecl](ctx, module.Decls[1])
	arg := ast.MustAs[*ast.FuncArg](ctx, fn.Args[0])
	assert.Equal(t, "priv_1", ast.MustAs[*ast.TypeId](ctx, arg.Type).ID)
}

func TestParser_ArrayTypeWithSizeExpr(t *testing.T) {
	ctx, module := parseModule(t, `fn g() { var a : [55 + 9]int; }`)

	fn := ast.MustAs[*ast.FuncDecl](ctx, module.Decls[0])
	block := ast.MustAs[*ast.BlockStat](ctx, fn.Block)

	varStat := ast.MustAs[*ast.VarStat](ctx, block.Stats[0])
	varDecl := ast.MustAs[*ast.VarDecl](ctx, varStat.Decl)

	arrayType := ast.MustAs[*ast.ArrayType](ctx, varDecl.Type)
	binaryShape(t, ctx, arrayType.Size, ast.OpAdd)
	assert.Equal(t, "int", ast.MustAs[*ast.TypeId](ctx, arrayType.Elem).ID)
}

func TestParser_ControlFlowStatements(t *testing.T) {
	ctx, module := parseModule(t, `
	fn loops() {
		var i : int = 0;
		while i < 10 {
			i = i + 1;
			if i == 5 {
				break;
			} else {
				i = i + 2;
			}
		}
		for var j : int = 0; j < 4; j = j + 1; {
			i = i + j;
		}
	}`)

	fn := ast.MustAs[*ast.FuncDecl](ctx, module.Decls[0])
	block := ast.MustAs[*ast.BlockStat](ctx, fn.Block)
	require.Len(t, block.Stats, 3)

	while := ast.MustAs[*ast.WhileStat](ctx, block.Stats[1])
	whileBlock := ast.MustAs[*ast.BlockStat](ctx, while.Block)
	require.Len(t, whileBlock.Stats, 2)

	ifStat := ast.MustAs[*ast.IfStat](ctx, whileBlock.Stats[1])
	assert.True(t, ifStat.Else.Valid())

	ifBlock := ast.MustAs[*ast.BlockStat](ctx, ifStat.Block)
	assert.IsType(t, &ast.BreakStat{}, ctx.Get(ifBlock.Stats[0]))

	forStat := ast.MustAs[*ast.ForStat](ctx, block.Stats[2])
	assert.IsType(t, &ast.VarStat{}, ctx.Get(forStat.Init))
	assert.IsType(t, &ast.ExprStat{}, ctx.Get(forStat.Cont))
}

func TestParser_ErrorFormat(t *testing.T) {
	var messages []string

	ctx := ast.NewContext()
	par := NewParser(ctx, Options{
		ErrorCallback: func(message string) {
			messages = append(messages, message)
		},
	})

	moduleRef, err := par.Parse(`fn broken( { }`)

	assert.Error(t, err)
	assert.False(t, moduleRef.Valid())
	require.True(t, par.HasErrors())
	assert.Regexp(t, `^PARSER ERROR \(\d+:\d+\): `, messages[0])
}

func TestParser_UnknownAttribute(t *testing.T) {
	ctx := ast.NewContext()
	par := NewParser(ctx, Options{})

	moduleRef, err := par.Parse(`@nonsense fn f() { return 1; }`)

	assert.Error(t, err)
	assert.False(t, moduleRef.Valid())
	require.NotEmpty(t, par.GetErrors())
	assert.Contains(t, par.GetErrors()[0], "unknown attribute 'nonsense'")
}

// TestParser_RecoveryContinuesAfterBadGlobal checks the sync-to-'}'
// behaviour: later globals still parse (and report their own errors), and
// the overall parse returns the absent handle.
func TestParser_RecoveryContinuesAfterBadGlobal(t *testing.T) {
	ctx := ast.NewContext()
	par := NewParser(ctx, Options{})

	moduleRef, err := par.Parse(`
	fn bad( { }
	fn also_broken( { }
	`)

	assert.Error(t, err)
	assert.False(t, moduleRef.Valid())

	// Both declarations produced a diagnostic, so the parser really
	// did continue past the first failure.
	assert.GreaterOrEqual(t, len(par.GetErrors()), 2)
}
