// Package types implements the semantic type universe of KSL: the built-in
// scalar/vector/matrix table plus arrays and user structs interned on
// demand. Types are identified by their mangled name; two types with equal
// mangled names are the same registry entry.
package types

import "fmt"

// Type is a semantic type record.
type Type interface {
	// MangledName is the canonical spelling the registry interns by,
	// e.g. "float3", "int[4]", "P".
	MangledName() string

	// NumSlots is the scalar-width count used to validate vector and
	// matrix constructors: scalar=1, vec=columns, mat=rows*columns.
	// Types without a constructor slot count report 0.
	NumSlots() uint64
}

// Void is the absence of a value. It exists so omitted function return
// types resolve like any other named type. Constructor calls reject it; the
// resolver does not reject it as the written type of a variable, argument,
// struct member, buffer or uniform.
type Void struct{}

func (v *Void) MangledName() string { return "void" }
func (v *Void) NumSlots() uint64    { return 0 }

// Scalar is one of the primitive types.
type Scalar struct {
	Name string
}

func (s *Scalar) MangledName() string { return s.Name }
func (s *Scalar) NumSlots() uint64    { return 1 }

// Vec is a vector of 2 to 4 scalar columns.
type Vec struct {
	Elem    Type
	Columns int
}

func (v *Vec) MangledName() string {
	return fmt.Sprintf("%s%d", v.Elem.MangledName(), v.Columns)
}

func (v *Vec) NumSlots() uint64 { return uint64(v.Columns) }

// Mat is a rows-by-columns matrix of scalars.
type Mat struct {
	Elem    Type
	Rows    int
	Columns int
}

func (m *Mat) MangledName() string {
	return fmt.Sprintf("%s%dx%d", m.Elem.MangledName(), m.Rows, m.Columns)
}

func (m *Mat) NumSlots() uint64 { return uint64(m.Rows * m.Columns) }

// Array is a homogeneous array. Count zero means runtime-sized.
type Array struct {
	Elem  Type
	Count uint64
}

func (a *Array) MangledName() string {
	if a.Count == 0 {
		return a.Elem.MangledName() + "[]"
	}
	return fmt.Sprintf("%s[%d]", a.Elem.MangledName(), a.Count)
}

func (a *Array) NumSlots() uint64 { return 0 }

// Member is one named member of a user struct type.
type Member struct {
	Name string
	Type Type
}

// Custom is a user struct type. Its mangled name is the declared name.
type Custom struct {
	Name    string
	Members []Member
}

func (c *Custom) MangledName() string { return c.Name }
func (c *Custom) NumSlots() uint64    { return 0 }

// Member returns the named member, or nil when absent.
func (c *Custom) Member(name string) *Member {
	for i := range c.Members {
		if c.Members[i].Name == name {
			return &c.Members[i]
		}
	}
	return nil
}
