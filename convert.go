package idlkit

import "math"

// PassThrough describes a node that ConvertType returned untouched because no
// rule knows its shape.
type PassThrough struct {
	Path string // JSON Pointer relative to the converted expression root (or the document when normalizing).
	Type Type
}

// ConvertOption configures ConvertType and Normalize.
type ConvertOption func(*convertConfig)

type convertConfig struct {
	onPassThrough func(PassThrough)
	root          PathRef
}

// WithPassThroughHook registers fn to observe opaque shapes that are carried
// through unmodified.
func WithPassThroughHook(fn func(PassThrough)) ConvertOption {
	return func(c *convertConfig) { c.onPassThrough = fn }
}

// WithRoot anchors pass-through paths and converter issues at a JSON Pointer,
// typically the location of the expression inside its document.
func WithRoot(pointer string) ConvertOption { return withRoot(At(pointer)) }

func withRoot(p PathRef) ConvertOption {
	return func(c *convertConfig) { c.root = p }
}

// ConvertType rewrites a legacy type expression into the canonical form:
//
//   - "(u8,[u8;N])"                 -> Tuple{u8, [u8;N]}
//   - Vec{Defined{"(u8,[u8;N])"}}   -> Vec{[u8;N+1]} (the tag byte joins the array)
//   - Option{Tuple{A, A}}           -> Option{[A;2]}
//   - Vec{Tuple{A, A}}              -> Vec{[A;2]}
//
// Children of Vec, Option, Array and Tuple are converted recursively; every
// other shape is returned as is. Option and Vec tuples that are not two
// identical types fail with unsupported_tuple.
func ConvertType(t Type, opts ...ConvertOption) (Type, error) {
	cfg := convertConfig{root: Root()}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg.convert(t, cfg.root)
}

func (c *convertConfig) convert(t Type, p PathRef) (Type, error) {
	switch x := t.(type) {
	case Primitive:
		// strings shaped like the shorthand are parsed strictly so malformed
		// ones surface the parser error instead of passing as primitives
		if tupleCheck(x.Name) {
			return ParseTupleU8ArrayString(x.Name)
		}
		return x, nil
	case Defined:
		if tupleCheck(x.Name) {
			return ParseTupleU8ArrayString(x.Name)
		}
		return x, nil
	case Vec:
		if d, ok := x.Elem.(Defined); ok && tupleCheck(d.Name) {
			return flattenTaggedArray(d.Name)
		}
		if tt, ok := x.Elem.(Tuple); ok {
			arr, err := c.collapsePair(tt, p.Field("vec"))
			if err != nil {
				return nil, err
			}
			return Vec{Elem: arr}, nil
		}
		elem, err := c.convert(x.Elem, p.Field("vec"))
		if err != nil {
			return nil, err
		}
		return Vec{Elem: elem}, nil
	case Option:
		if tt, ok := x.Inner.(Tuple); ok {
			arr, err := c.collapsePair(tt, p.Field("option"))
			if err != nil {
				return nil, err
			}
			return Option{Inner: arr}, nil
		}
		inner, err := c.convert(x.Inner, p.Field("option"))
		if err != nil {
			return nil, err
		}
		return Option{Inner: inner}, nil
	case Array:
		elem, err := c.convert(x.Elem, p.Field("array").Index(0))
		if err != nil {
			return nil, err
		}
		return Array{Elem: elem, Len: x.Len}, nil
	case Tuple:
		elems := make([]Type, len(x.Elems))
		for i, e := range x.Elems {
			ce, err := c.convert(e, p.Field("tuple").Index(i))
			if err != nil {
				return nil, err
			}
			elems[i] = ce
		}
		return Tuple{Elems: elems}, nil
	case Opaque:
		c.passThrough(p, x)
		return x, nil
	case nil:
		return nil, Issues{p.Issue(CodeInvalidType, "type expression is null")}
	}
	c.passThrough(p, t)
	return t, nil
}

// flattenTaggedArray folds the leading u8 tag of "(u8,[u8;N])" into the array,
// yielding [u8;N+1].
func flattenTaggedArray(shorthand string) (Type, error) {
	tt, err := ParseTupleU8ArrayString(shorthand)
	if err != nil {
		return nil, err
	}
	arr := tt.(Tuple).Elems[1].(Array)
	if arr.Len >= math.MaxInt32 {
		return nil, Issues{newIssue(CodeArrayLength, "array length overflows once the tag byte is folded in", "input", shorthand)}
	}
	return Vec{Elem: Array{Elem: U8, Len: arr.Len + 1}}, nil
}

// collapsePair turns a tuple of two identical types into a two-element array.
func (c *convertConfig) collapsePair(t Tuple, p PathRef) (Type, error) {
	elems := make([]Type, len(t.Elems))
	for i, e := range t.Elems {
		ce, err := c.convert(e, p.Field("tuple").Index(i))
		if err != nil {
			return nil, err
		}
		elems[i] = ce
	}
	// TODO: extend to other arities and mixed element types once real IDLs
	// carrying them are collected.
	if len(elems) != 2 {
		it := p.Issue(CodeUnsupportedTuple, "tuple shape not yet supported: only pairs can be collapsed into arrays", "arity", len(elems), "tuple", t.String())
		it.Hint = unsupportedTupleHint
		return nil, Issues{it}
	}
	if !Equal(elems[0], elems[1]) {
		it := p.Issue(CodeUnsupportedTuple, "tuple shape not yet supported: mixed element types cannot be collapsed into arrays", "tuple", t.String())
		it.Hint = unsupportedTupleHint
		return nil, Issues{it}
	}
	return Array{Elem: elems[0], Len: 2}, nil
}

const unsupportedTupleHint = "declare the tuple as a defined struct type and reference it by name"

func (c *convertConfig) passThrough(p PathRef, t Type) {
	if c.onPassThrough != nil {
		c.onPassThrough(PassThrough{Path: p.Pointer(), Type: t})
	}
}
