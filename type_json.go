package idlkit

import (
	"fmt"
	"math"

	json "github.com/goccy/go-json"
)

// ParseType decodes a JSON type expression and converts it into a Type.
func ParseType(data []byte) (Type, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, Issues{{Code: CodeParseError, Message: "invalid JSON type expression", Cause: err}}
	}
	return TypeFrom(v)
}

// TypeFrom converts a decoded JSON value (string, map[string]any, ...) into a
// Type. Values that cannot be a type expression at all (numbers, booleans, null,
// arrays) are rejected with invalid_type; objects of an unknown shape become
// Opaque.
func TypeFrom(v any) (Type, error) {
	return typeFrom(v, Root())
}

func typeFrom(v any, p PathRef) (Type, error) {
	switch t := v.(type) {
	case Type:
		return t, nil
	case string:
		return Primitive{Name: t}, nil
	case map[string]any:
		return typeFromObject(t, p)
	case nil:
		return nil, Issues{p.Issue(CodeInvalidType, "type expression is null")}
	default:
		return nil, Issues{p.Issue(CodeInvalidType, fmt.Sprintf("type expression must be a string or object, got %T", v), "got", fmt.Sprintf("%T", v))}
	}
}

func typeFromObject(m map[string]any, p PathRef) (Type, error) {
	if len(m) != 1 {
		return Opaque{Raw: m}, nil
	}
	for key, raw := range m {
		switch key {
		case "vec":
			elem, err := typeFrom(raw, p.Field("vec"))
			if err != nil {
				return nil, err
			}
			return Vec{Elem: elem}, nil
		case "option":
			inner, err := typeFrom(raw, p.Field("option"))
			if err != nil {
				return nil, err
			}
			return Option{Inner: inner}, nil
		case "array":
			return arrayFrom(m, raw, p.Field("array"))
		case "tuple":
			items, ok := raw.([]any)
			if !ok {
				return nil, Issues{p.Field("tuple").Issue(CodeInvalidType, "tuple must be a list of types")}
			}
			elems := make([]Type, 0, len(items))
			for i, it := range items {
				e, err := typeFrom(it, p.Field("tuple").Index(i))
				if err != nil {
					return nil, err
				}
				elems = append(elems, e)
			}
			return Tuple{Elems: elems}, nil
		case "defined":
			switch d := raw.(type) {
			case string:
				return Defined{Name: d}, nil
			case map[string]any:
				if name, ok := d["name"].(string); ok && len(d) == 1 {
					return Defined{Name: name, Object: true}, nil
				}
			}
			return Opaque{Raw: m}, nil
		}
	}
	return Opaque{Raw: m}, nil
}

func arrayFrom(whole map[string]any, raw any, p PathRef) (Type, error) {
	pair, ok := raw.([]any)
	if !ok || len(pair) != 2 {
		return nil, Issues{p.Issue(CodeInvalidType, "array must be [elementType, length]")}
	}
	n, isNum, err := lengthFrom(pair[1])
	if !isNum {
		// generic lengths ({"generic":"N"}) are outside this model
		return Opaque{Raw: whole}, nil
	}
	if err != nil {
		return nil, Issues{p.Index(1).Issue(CodeInvalidLength, err.Error(), "got", pair[1])}
	}
	elem, terr := typeFrom(pair[0], p.Index(0))
	if terr != nil {
		return nil, terr
	}
	return Array{Elem: elem, Len: n}, nil
}

// lengthFrom interprets a decoded JSON number as an array length. isNum is
// false when v is not a number at all.
func lengthFrom(v any) (n int, isNum bool, err error) {
	var f float64
	switch x := v.(type) {
	case int:
		if x < 0 {
			return 0, true, fmt.Errorf("array length must be a non-negative integer, got %d", x)
		}
		return x, true, nil
	case int64:
		f = float64(x)
	case float64:
		f = x
	case interface{ Float64() (float64, error) }:
		// json.Number from a UseNumber decoder
		fv, perr := x.Float64()
		if perr != nil {
			return 0, true, fmt.Errorf("array length is not a number: %v", perr)
		}
		f = fv
	default:
		return 0, false, nil
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, true, fmt.Errorf("array length must be a non-negative integer, got %v", f)
	}
	return int(f), true, nil
}

// ToValue projects a Type back into its JSON-like form (string, map[string]any,
// []any). Key names match the IDL shapes: tuple, array, vec, option, defined.
func ToValue(t Type) any {
	switch x := t.(type) {
	case Primitive:
		return x.Name
	case Array:
		return map[string]any{"array": []any{ToValue(x.Elem), x.Len}}
	case Vec:
		return map[string]any{"vec": ToValue(x.Elem)}
	case Option:
		return map[string]any{"option": ToValue(x.Inner)}
	case Tuple:
		elems := make([]any, len(x.Elems))
		for i, e := range x.Elems {
			elems[i] = ToValue(e)
		}
		return map[string]any{"tuple": elems}
	case Defined:
		if x.Object {
			return map[string]any{"defined": map[string]any{"name": x.Name}}
		}
		return map[string]any{"defined": x.Name}
	case Opaque:
		return deepCopy(x.Raw)
	}
	return nil
}

func (p Primitive) MarshalJSON() ([]byte, error) { return json.Marshal(ToValue(p)) }
func (a Array) MarshalJSON() ([]byte, error)     { return json.Marshal(ToValue(a)) }
func (v Vec) MarshalJSON() ([]byte, error)       { return json.Marshal(ToValue(v)) }
func (o Option) MarshalJSON() ([]byte, error)    { return json.Marshal(ToValue(o)) }
func (t Tuple) MarshalJSON() ([]byte, error)     { return json.Marshal(ToValue(t)) }
func (d Defined) MarshalJSON() ([]byte, error)   { return json.Marshal(ToValue(d)) }
func (o Opaque) MarshalJSON() ([]byte, error)    { return json.Marshal(ToValue(o)) }

// deepCopy clones JSON-like values so callers never share maps or slices with
// the input document.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = deepCopy(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = deepCopy(t[i])
		}
		return out
	default:
		return v
	}
}
