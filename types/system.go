package types

// scalarNames are every primitive type. long/ulong exist to receive 64-bit
// integer literals and do not get vector or matrix forms.
var scalarNames = []string{
	"half", "uhalf", "float", "double", "int", "uint", "long", "ulong",
}

// vecScalarNames are the scalars that have vector and matrix forms.
var vecScalarNames = []string{
	"half", "uhalf", "float", "double", "int", "uint",
}

// System is the type registry of one compilation: a map from mangled name
// to the owning type record. It is append-only; entries live as long as the
// compilation does.
type System struct {
	registry map[string]Type
}

// NewSystem creates a registry pre-seeded with every scalar, every vector
// of width 2..4 and every matrix of shape {2..4}x{2..4} for each vec-able
// scalar. Arrays and structs are interned later, on first demand.
func NewSystem() *System {
	sys := &System{
		registry: make(map[string]Type),
	}

	sys.Intern(&Void{})

	for _, name := range scalarNames {
		sys.Intern(&Scalar{Name: name})
	}

	for _, name := range vecScalarNames {
		elem := sys.registry[name]

		for columns := 2; columns <= 4; columns++ {
			sys.Intern(&Vec{Elem: elem, Columns: columns})
		}

		for rows := 2; rows <= 4; rows++ {
			for columns := 2; columns <= 4; columns++ {
				sys.Intern(&Mat{Elem: elem, Rows: rows, Columns: columns})
			}
		}
	}

	return sys
}

// FindType returns the registry entry for a mangled name, or nil.
func (sys *System) FindType(mangled string) Type {
	return sys.registry[mangled]
}

// Intern returns the registry entry with t's mangled name, adding t when the
// name is not registered yet. The returned value is the canonical record;
// callers must use it in place of their argument.
func (sys *System) Intern(t Type) Type {
	name := t.MangledName()
	if existing, ok := sys.registry[name]; ok {
		return existing
	}
	sys.registry[name] = t
	return t
}

// ArrayOf interns and returns the array type elem[count].
// Count zero denotes a runtime-sized array.
func (sys *System) ArrayOf(elem Type, count uint64) *Array {
	return sys.Intern(&Array{Elem: elem, Count: count}).(*Array)
}

// VecOf returns the seeded vector type for elem and width, or nil when the
// element scalar has no vector forms.
func (sys *System) VecOf(elem Type, columns int) *Vec {
	probe := Vec{Elem: elem, Columns: columns}
	if v, ok := sys.registry[probe.MangledName()].(*Vec); ok {
		return v
	}
	return nil
}
