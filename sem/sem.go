// Package sem holds the semantic information the resolver attaches to a
// parsed module: resolved declaration and expression types plus the scope
// chain. Payloads point back at AST nodes by handle; they borrow, they
// never own.
package sem

import (
	"github.com/tsumiki/ksl/ast"
	"github.com/tsumiki/ksl/types"
)

// Decl is the semantic payload of a declaration: the AST node it decorates
// and its resolved type.
type Decl struct {
	AST  ast.Ref
	Name string
	Type types.Type
}

// Expr is the semantic payload of an expression.
type Expr struct {
	AST  ast.Ref
	Type types.Type
}

// Scope is an ordered list of declarations with an optional parent.
// Lookup walks self first, then the parent chain to the root.
type Scope struct {
	Parent *Scope
	Decls  []*Decl
}

// NewScope creates a scope chained to parent (nil for the module scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent}
}

// AddDecl appends a declaration to this scope.
func (s *Scope) AddDecl(decl *Decl) {
	s.Decls = append(s.Decls, decl)
}

// FindDecl looks a name up in this scope and, failing that, in every
// ancestor. Returns nil when the name is not visible.
func (s *Scope) FindDecl(name string) *Decl {
	for _, decl := range s.Decls {
		if decl.Name == name {
			return decl
		}
	}
	if s.Parent != nil {
		return s.Parent.FindDecl(name)
	}
	return nil
}

// Info is the decoration store of one resolved module, keyed by AST handle.
type Info struct {
	Decls  map[ast.Ref]*Decl
	Exprs  map[ast.Ref]*Expr
	Scopes map[ast.Ref]*Scope // BlockStat and Module scopes
}

// NewInfo creates an empty decoration store.
func NewInfo() *Info {
	return &Info{
		Decls:  make(map[ast.Ref]*Decl),
		Exprs:  make(map[ast.Ref]*Expr),
		Scopes: make(map[ast.Ref]*Scope),
	}
}

// ExprType returns the resolved type of an expression node, or nil when the
// node carries no expression payload.
func (info *Info) ExprType(id ast.Ref) types.Type {
	if e, ok := info.Exprs[id]; ok {
		return e.Type
	}
	return nil
}

// DeclType returns the resolved type of a declaration node, or nil.
func (info *Info) DeclType(id ast.Ref) types.Type {
	if d, ok := info.Decls[id]; ok {
		return d.Type
	}
	return nil
}
