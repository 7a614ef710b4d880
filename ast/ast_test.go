package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSmallTree makes '1 + x' and returns the context and the root.
func buildSmallTree() (*Context, Ref) {
	ctx := NewContext()

	lhs := ctx.Make(&LitExpr{Value: LitValue{Kind: LitI32, I64: 1}})
	rhs := ctx.Make(&IdExpr{Ident: "x"})

	root := ctx.Make(&BinaryExpr{Lhs: lhs, Op: OpAdd, Rhs: rhs})

	return ctx, root
}

func TestContext_MakeAndGet(t *testing.T) {
	ctx, root := buildSmallTree()

	node, ok := As[*BinaryExpr](ctx, root)
	require.True(t, ok)
	assert.Equal(t, OpAdd, node.Op)

	lit := MustAs[*LitExpr](ctx, node.Lhs)
	assert.Equal(t, int64(1), lit.Value.I64)

	assert.True(t, ctx.Has(root))
	assert.False(t, ctx.Has(Nil))
}

func TestContext_GetAbsentPanics(t *testing.T) {
	ctx := NewContext()

	assert.Panics(t, func() {
		ctx.Get(Nil)
	})
}

func TestContext_Remove(t *testing.T) {
	ctx := NewContext()

	id := ctx.Make(&IdExpr{Ident: "gone"})
	require.True(t, ctx.Has(id))

	ctx.Remove(id)
	assert.False(t, ctx.Has(id))
}

func TestContext_Swap(t *testing.T) {
	ctx := NewContext()

	a := ctx.Make(&IdExpr{Ident: "a"})
	b := ctx.Make(&IdExpr{Ident: "b"})

	ctx.Swap(a, b)

	assert.Equal(t, "b", MustAs[*IdExpr](ctx, a).Ident)
	assert.Equal(t, "a", MustAs[*IdExpr](ctx, b).Ident)
}

// TestContext_CloneDisjoint checks that cloning produces fresh handles for
// the whole subtree and leaves the source untouched.
func TestContext_CloneDisjoint(t *testing.T) {
	ctx, root := buildSmallTree()

	cloned := ctx.Clone(root)

	require.NotEqual(t, root, cloned)

	src := MustAs[*BinaryExpr](ctx, root)
	dst := MustAs[*BinaryExpr](ctx, cloned)

	assert.NotEqual(t, src.Lhs, dst.Lhs)
	assert.NotEqual(t, src.Rhs, dst.Rhs)

	// Structure is preserved.
	assert.Equal(t, src.Op, dst.Op)
	assert.Equal(t,
		MustAs[*LitExpr](ctx, src.Lhs).Value,
		MustAs[*LitExpr](ctx, dst.Lhs).Value)
	assert.Equal(t,
		MustAs[*IdExpr](ctx, src.Rhs).Ident,
		MustAs[*IdExpr](ctx, dst.Rhs).Ident)

	// Mutating the clone leaves the source alone.
	dst.Op = OpMul
	assert.Equal(t, OpAdd, src.Op)
}

func TestContext_CloneOptionalChildren(t *testing.T) {
	ctx := NewContext()

	// A var statement with no initializer: the Nil must carry through.
	decl := ctx.Make(&VarDecl{Name: "x", Type: Nil})
	stat := ctx.Make(&VarStat{Decl: decl, Init: Nil})

	cloned := MustAs[*VarStat](ctx, ctx.Clone(stat))

	assert.False(t, cloned.Init.Valid())
	assert.NotEqual(t, decl, cloned.Decl)
	assert.Equal(t, "x", MustAs[*VarDecl](ctx, cloned.Decl).Name)
}

// TestForEach_TypeFilter checks the type-filtered iteration and that Make
// during the callback does not disturb the snapshot.
func TestForEach_TypeFilter(t *testing.T) {
	ctx, _ := buildSmallTree()

	var ids []string

	ForEach(ctx, func(_ Ref, node *IdExpr) {
		ids = append(ids, node.Ident)
		// Making a node mid-iteration must be safe and invisible to
		// this pass.
		ctx.Make(&IdExpr{Ident: "late"})
	})

	assert.Equal(t, []string{"x"}, ids)

	var count int
	ForEach(ctx, func(_ Ref, node Expr) {
		count++
	})

	// 1 literal + 2 identifiers (x, late) + 1 binary.
	assert.Equal(t, 4, count)
}
