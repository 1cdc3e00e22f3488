package idlkit

import (
	json "github.com/goccy/go-json"
)

// Classify determines the dialect of an IDL document. idl may be a decoded
// map[string]any, a Document, a *Document or raw JSON bytes.
//
// standard == "codama" (exact match) wins over metadata.spec; a metadata.spec
// string is returned verbatim; everything else, nil included, is legacy.
// Classify never fails.
func Classify(idl any) Spec {
	switch d := idl.(type) {
	case nil:
		return SpecLegacy
	case map[string]any:
		return classifyMap(d)
	case Document:
		return classifyDocument(&d)
	case *Document:
		return classifyDocument(d)
	case []byte:
		var m map[string]any
		if err := json.Unmarshal(d, &m); err != nil {
			return SpecLegacy
		}
		return classifyMap(m)
	}
	return SpecLegacy
}

func classifyMap(m map[string]any) Spec {
	if m == nil {
		return SpecLegacy
	}
	if std, ok := m["standard"].(string); ok && std == string(SpecCodama) {
		return SpecCodama
	}
	if meta, ok := m["metadata"].(map[string]any); ok {
		if spec, ok := meta["spec"].(string); ok {
			return Spec(spec)
		}
	}
	return SpecLegacy
}

func classifyDocument(d *Document) Spec {
	if d == nil {
		return SpecLegacy
	}
	if d.Standard == string(SpecCodama) {
		return SpecCodama
	}
	if d.Metadata != nil && d.Metadata.Spec != nil {
		return Spec(*d.Metadata.Spec)
	}
	if d.Raw != nil {
		return classifyMap(d.Raw)
	}
	return SpecLegacy
}
