// Package ast defines the abstract syntax tree of the KSL shading language
// and the arena that owns every node of it.
//
// All nodes produced during a compilation live in a single Context. Parents
// refer to children by Ref handles instead of pointers, which keeps deep
// copies cheap (clone rewrites handles, not memory graphs) and lets the
// resolver and printer decorate and walk the tree long after parsing.
package ast

import "sort"

// Ref is an opaque handle identifying a node inside a Context.
// The zero-information sentinel Nil (all bits set) means "absent".
type Ref uint64

// Nil is the absent-node sentinel.
const Nil Ref = ^Ref(0)

// Valid reports whether the handle refers to a node at all.
func (r Ref) Valid() bool {
	return r != Nil
}

// Context is the arena owning every AST node of one compilation.
// It is not safe for concurrent use; run one compilation per Context.
type Context struct {
	nodes  map[Ref]Node
	nextID Ref
}

// NewContext creates an empty node arena.
func NewContext() *Context {
	return &Context{
		nodes: make(map[Ref]Node),
	}
}

// Make stores a freshly constructed node and returns its handle.
func (ctx *Context) Make(node Node) Ref {
	id := ctx.nextID
	ctx.nextID++
	ctx.nodes[id] = node
	return id
}

// Get returns the live node behind id.
// Dereferencing an absent handle is a programming error and panics.
func (ctx *Context) Get(id Ref) Node {
	node, ok := ctx.nodes[id]
	if !ok {
		panic("ast: dereference of absent node handle")
	}
	return node
}

// Has reports whether id refers to a live node.
func (ctx *Context) Has(id Ref) bool {
	_, ok := ctx.nodes[id]
	return ok
}

// Remove frees the slot behind id. Removing an absent id is a no-op.
func (ctx *Context) Remove(id Ref) {
	delete(ctx.nodes, id)
}

// Swap exchanges the nodes stored at two live handles. It is used by AST
// transformations that replace one subtree with another of compatible shape.
func (ctx *Context) Swap(a, b Ref) {
	na := ctx.Get(a)
	nb := ctx.Get(b)
	ctx.nodes[a] = nb
	ctx.nodes[b] = na
}

// Clone deep-copies the subtree rooted at id and returns the copy's handle.
// Every node in the copy gets a fresh handle; the source stays untouched.
func (ctx *Context) Clone(id Ref) Ref {
	return ctx.Get(id).clone(ctx)
}

// Len returns the number of live nodes.
func (ctx *Context) Len() int {
	return len(ctx.nodes)
}

// As fetches the node behind id and type-asserts it to T.
func As[T Node](ctx *Context, id Ref) (T, bool) {
	n, ok := ctx.nodes[id].(T)
	return n, ok
}

// MustAs fetches the node behind id asserting it is a T.
// A failed assertion is a programming error and panics.
func MustAs[T Node](ctx *Context, id Ref) T {
	n, ok := ctx.Get(id).(T)
	if !ok {
		panic("ast: node handle refers to an unexpected node kind")
	}
	return n
}

// ForEach invokes f for every live node whose dynamic type is a T.
// The handle set is snapshotted up front, so f may Make new nodes without
// affecting the iteration. Handles are visited in creation order.
func ForEach[T Node](ctx *Context, f func(Ref, T)) {
	ids := make([]Ref, 0, len(ctx.nodes))
	for id := range ctx.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		node, ok := ctx.nodes[id]
		if !ok {
			continue // removed during iteration
		}
		if typed, ok := node.(T); ok {
			f(id, typed)
		}
	}
}

// cloneRef clones an optional child handle, carrying Nil through.
func cloneRef(ctx *Context, id Ref) Ref {
	if !id.Valid() {
		return Nil
	}
	return ctx.Clone(id)
}

// cloneRefs clones a child handle list.
func cloneRefs(ctx *Context, ids []Ref) []Ref {
	if ids == nil {
		return nil
	}
	out := make([]Ref, len(ids))
	for i, id := range ids {
		out[i] = cloneRef(ctx, id)
	}
	return out
}
