// Package datapath compiles textual paths such as "player.pos.x" or
// "grid[3][4]" against a memory layout and reads or writes the addressed
// values in a slot buffer.
package datapath

import (
	"fmt"
	"sort"
)

// Kind is the machine representation of a scalar.
type Kind uint8

const (
	U8 Kind = iota
	S8
	U16
	S16
	U32
	S32
	U64
)

// Size returns the width of the scalar in bytes.
func (k Kind) Size() int {
	switch k {
	case U8, S8:
		return 1
	case U16, S16:
		return 2
	case U32, S32:
		return 4
	default:
		return 8
	}
}

// Signed reports whether the scalar is sign-extended when read.
func (k Kind) Signed() bool {
	return k == S8 || k == S16 || k == S32
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return [...]string{"u8", "s8", "u16", "s16", "u32", "s32", "u64"}[k]
}

// TypeKind distinguishes scalar, struct and array types.
type TypeKind uint8

const (
	ScalarType TypeKind = iota
	StructType
	ArrayType
)

// Type describes the shape of a value in memory.
type Type struct {
	kind   TypeKind
	scalar Kind
	fields map[string]Field
	elem   *Type
	length int
	size   int
}

// Field is a named member of a struct at a fixed offset.
type Field struct {
	Name   string
	Offset int
	Type   *Type
}

// Scalar returns a scalar type.
func Scalar(k Kind) *Type {
	return &Type{kind: ScalarType, scalar: k, size: k.Size()}
}

// Struct returns a struct type. The size is the end of the last field.
func Struct(fields ...Field) *Type {
	t := &Type{kind: StructType, fields: make(map[string]Field, len(fields))}

	for _, f := range fields {
		t.fields[f.Name] = f
		if end := f.Offset + f.Type.size; end > t.size {
			t.size = end
		}
	}

	return t
}

// Array returns an array of n elements.
func Array(elem *Type, n int) *Type {
	return &Type{kind: ArrayType, elem: elem, length: n, size: elem.size * n}
}

// Kind returns the kind of the type.
func (t *Type) Kind() TypeKind {
	return t.kind
}

// Size returns the size of the type in bytes.
func (t *Type) Size() int {
	return t.size
}

// Global is a named top-level variable.
type Global struct {
	Name   string
	Offset int
	Type   *Type
}

// Layout is the set of globals of a memory image.
type Layout struct {
	globals map[string]Global
	size    int
}

// NewLayout creates a layout. Duplicate names are an error.
func NewLayout(globals ...Global) (*Layout, error) {
	l := &Layout{globals: make(map[string]Global, len(globals))}

	for _, g := range globals {
		if _, dup := l.globals[g.Name]; dup {
			return nil, fmt.Errorf("duplicate global %q", g.Name)
		}
		l.globals[g.Name] = g
		if end := g.Offset + g.Type.size; end > l.size {
			l.size = end
		}
	}

	return l, nil
}

// Size returns the number of bytes spanned by the globals.
func (l *Layout) Size() int {
	return l.size
}

// Globals returns the global names, sorted.
func (l *Layout) Globals() []string {
	names := make([]string, 0, len(l.globals))
	for name := range l.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
