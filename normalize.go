package idlkit

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// Normalize rewrites every type expression of a legacy IDL document with
// ConvertType. The input can be raw JSON bytes, a decoded map[string]any or a
// Document carrying Raw. The input is never mutated; a converted copy is
// returned.
//
// Type expressions the converter leaves alone keep their decoded values; new
// array lengths are emitted as int.
//
// Documents of any other dialect are returned unchanged. Issues raised while
// converting carry the JSON Pointer of the offending type expression; all of
// them are collected before Normalize gives up.
func Normalize(doc any, opts ...ConvertOption) (map[string]any, Diag, error) {
	d := &simpleDiag{}
	if doc == nil {
		return nil, d, errors.New("idlkit: nil document")
	}
	var root map[string]any
	switch t := doc.(type) {
	case []byte:
		if err := json.Unmarshal(t, &root); err != nil {
			return nil, d, fmt.Errorf("idlkit: invalid JSON: %w", err)
		}
	case map[string]any:
		root = t
	case Document:
		root = t.Raw
	case *Document:
		if t != nil {
			root = t.Raw
		}
	default:
		return nil, d, fmt.Errorf("idlkit: unsupported document type %T", doc)
	}
	if root == nil {
		return nil, d, errors.New("idlkit: document is not a JSON object")
	}

	out, _ := deepCopy(root).(map[string]any)
	spec := Classify(root)
	switch spec {
	case SpecLegacy:
	case SpecCodama, SpecAnchor01:
		return out, d, nil
	default:
		d.warnf("unknown IDL spec %q left as is", string(spec))
		return out, d, nil
	}

	var user convertConfig
	for _, o := range opts {
		o(&user)
	}
	n := &normalizer{diag: d, userHook: user.onPassThrough}
	n.walk(out)
	if len(n.issues) > 0 {
		return nil, d, n.issues
	}
	return out, d, nil
}

type normalizer struct {
	diag     *simpleDiag
	userHook func(PassThrough)
	issues   Issues
}

func (n *normalizer) walk(root map[string]any) {
	p := Root()
	eachObject(root["instructions"], func(i int, ix map[string]any) {
		eachObject(ix["args"], func(j int, arg map[string]any) {
			n.convertAt(arg, "type", p.Field("instructions").Index(i).Field("args").Index(j).Field("type"))
		})
	})
	eachObject(root["accounts"], func(i int, acc map[string]any) {
		n.typeDef(acc["type"], p.Field("accounts").Index(i).Field("type"))
	})
	eachObject(root["types"], func(i int, td map[string]any) {
		n.typeDef(td["type"], p.Field("types").Index(i).Field("type"))
	})
	eachObject(root["events"], func(i int, ev map[string]any) {
		eachObject(ev["fields"], func(j int, f map[string]any) {
			n.convertAt(f, "type", p.Field("events").Index(i).Field("fields").Index(j).Field("type"))
		})
	})
	eachObject(root["constants"], func(i int, c map[string]any) {
		n.convertAt(c, "type", p.Field("constants").Index(i).Field("type"))
	})
}

// typeDef walks a struct, enum or alias type definition body.
func (n *normalizer) typeDef(v any, p PathRef) {
	def, ok := v.(map[string]any)
	if !ok {
		return
	}
	switch def["kind"] {
	case "struct":
		n.fields(def, p.Field("fields"))
	case "enum":
		eachObject(def["variants"], func(i int, variant map[string]any) {
			n.fields(variant, p.Field("variants").Index(i).Field("fields"))
		})
	case "alias":
		n.convertAt(def, "value", p.Field("value"))
	}
}

// fields converts named fields ({name, type}) and tuple fields (bare types).
func (n *normalizer) fields(owner map[string]any, p PathRef) {
	list, ok := owner["fields"].([]any)
	if !ok {
		return
	}
	for i, f := range list {
		if named, ok := f.(map[string]any); ok {
			if _, hasName := named["name"]; hasName {
				n.convertAt(named, "type", p.Index(i).Field("type"))
				continue
			}
		}
		if ct, ok := n.convert(f, p.Index(i)); ok {
			list[i] = ct
		}
	}
}

func (n *normalizer) convertAt(owner map[string]any, key string, p PathRef) {
	raw, ok := owner[key]
	if !ok {
		return
	}
	if ct, ok := n.convert(raw, p); ok {
		owner[key] = ct
	}
}

func (n *normalizer) convert(raw any, p PathRef) (any, bool) {
	t, err := typeFrom(raw, p)
	if err != nil {
		n.fail(err, p)
		return nil, false
	}
	ct, err := ConvertType(t, withRoot(p), WithPassThroughHook(n.passThrough))
	if err != nil {
		n.fail(err, p)
		return nil, false
	}
	return rebuild(raw, t, ct), true
}

// rebuild renders conv, reusing the decoded values of raw wherever conv left
// the original expression unchanged. Lengths keep the decoder's number type.
func rebuild(raw any, orig, conv Type) any {
	if Equal(orig, conv) {
		return raw
	}
	m, _ := raw.(map[string]any)
	switch c := conv.(type) {
	case Vec:
		if o, ok := orig.(Vec); ok && m != nil {
			return map[string]any{"vec": rebuild(m["vec"], o.Elem, c.Elem)}
		}
	case Option:
		if o, ok := orig.(Option); ok && m != nil {
			return map[string]any{"option": rebuild(m["option"], o.Inner, c.Inner)}
		}
	case Array:
		if o, ok := orig.(Array); ok && m != nil && o.Len == c.Len {
			if pair, ok := m["array"].([]any); ok && len(pair) == 2 {
				return map[string]any{"array": []any{rebuild(pair[0], o.Elem, c.Elem), pair[1]}}
			}
		}
	case Tuple:
		if o, ok := orig.(Tuple); ok && m != nil && len(o.Elems) == len(c.Elems) {
			if items, ok := m["tuple"].([]any); ok && len(items) == len(c.Elems) {
				out := make([]any, len(items))
				for i := range items {
					out[i] = rebuild(items[i], o.Elems[i], c.Elems[i])
				}
				return map[string]any{"tuple": out}
			}
		}
	}
	return ToValue(conv)
}

func (n *normalizer) passThrough(pt PassThrough) {
	n.diag.warnf("unrecognized type %s at %s passed through", pt.Type, pt.Path)
	if n.userHook != nil {
		n.userHook(pt)
	}
}

func (n *normalizer) fail(err error, p PathRef) {
	if iss, ok := AsIssues(err); ok {
		n.issues = AppendIssues(n.issues, withPath(iss, p)...)
		return
	}
	it := IssueAt(p, CodeParseError, err.Error(), nil)
	it.Cause = err
	n.issues = AppendIssues(n.issues, it)
}

func eachObject(v any, fn func(i int, m map[string]any)) {
	list, ok := v.([]any)
	if !ok {
		return
	}
	for i, it := range list {
		if m, ok := it.(map[string]any); ok {
			fn(i, m)
		}
	}
}
