package idlkit

import (
	"strconv"
	"strings"
)

// Type is a type expression of an on-chain program interface. The set of
// implementations is closed: Primitive, Array, Vec, Option, Tuple, Defined and
// Opaque.
type Type interface {
	isType()
	// String renders the expression in Rust-like notation (u8, [u8;32], Vec<T>...).
	String() string
}

// Primitive is a scalar type name such as "u8", "u64", "string" or
// "publicKey". Legacy generators also emit the "(u8,[u8;N])" shorthand as a
// primitive-looking string; ConvertType rewrites it.
type Primitive struct {
	Name string
}

func (Primitive) isType() {}

func (p Primitive) String() string { return p.Name }

// Array is a fixed-size homogeneous array.
type Array struct {
	Elem Type
	Len  int
}

func (Array) isType() {}

func (a Array) String() string {
	return "[" + typeString(a.Elem) + ";" + strconv.Itoa(a.Len) + "]"
}

// Vec is a dynamically-sized homogeneous sequence.
type Vec struct {
	Elem Type
}

func (Vec) isType() {}

func (v Vec) String() string { return "Vec<" + typeString(v.Elem) + ">" }

// Option is a nullable wrapper.
type Option struct {
	Inner Type
}

func (Option) isType() {}

func (o Option) String() string { return "Option<" + typeString(o.Inner) + ">" }

// Tuple is a heterogeneous fixed-arity grouping. It only exists in legacy
// documents.
type Tuple struct {
	Elems []Type
}

func (Tuple) isType() {}

func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = typeString(e)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Defined references a user-defined type by name. Object records whether the
// reference was written as {"defined":{"name":...}} rather than {"defined":"..."}.
type Defined struct {
	Name   string
	Object bool
}

func (Defined) isType() {}

func (d Defined) String() string { return d.Name }

// Opaque holds a well-formed type object whose shape is not modelled here
// (coption, hashMap, generics, ...). It is carried through untouched.
type Opaque struct {
	Raw map[string]any
}

func (Opaque) isType() {}

func (o Opaque) String() string {
	for k := range o.Raw {
		return "<" + k + ">"
	}
	return "<opaque>"
}

func typeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// U8 is the 8-bit unsigned integer primitive.
var U8 = Primitive{Name: "u8"}

// Prim returns a Primitive with the given name.
func Prim(name string) Primitive { return Primitive{Name: name} }

// ArrayOf returns an Array of n elements.
func ArrayOf(elem Type, n int) Array { return Array{Elem: elem, Len: n} }

// VecOf returns a Vec of elem.
func VecOf(elem Type) Vec { return Vec{Elem: elem} }

// OptionOf returns an Option wrapping inner.
func OptionOf(inner Type) Option { return Option{Inner: inner} }

// TupleOf returns a Tuple of the given elements.
func TupleOf(elems ...Type) Tuple { return Tuple{Elems: elems} }

// DefinedType returns a string-form reference to a user-defined type.
func DefinedType(name string) Defined { return Defined{Name: name} }

// Equal reports whether two type expressions are structurally identical.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case Primitive:
		y, ok := b.(Primitive)
		return ok && x.Name == y.Name
	case Array:
		y, ok := b.(Array)
		return ok && x.Len == y.Len && Equal(x.Elem, y.Elem)
	case Vec:
		y, ok := b.(Vec)
		return ok && Equal(x.Elem, y.Elem)
	case Option:
		y, ok := b.(Option)
		return ok && Equal(x.Inner, y.Inner)
	case Tuple:
		y, ok := b.(Tuple)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !Equal(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case Defined:
		y, ok := b.(Defined)
		return ok && x == y
	case Opaque:
		y, ok := b.(Opaque)
		return ok && equalJSON(x.Raw, y.Raw)
	case nil:
		return b == nil
	}
	return false
}

func equalJSON(a, b any) bool {
	switch x := a.(type) {
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !equalJSON(v, w) {
				return false
			}
		}
		return true
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equalJSON(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
