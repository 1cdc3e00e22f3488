package idlkit_test

import (
	"reflect"
	"testing"

	"github.com/reoring/idlkit"
)

func mustParseType(t *testing.T, js string) idlkit.Type {
	t.Helper()
	ty, err := idlkit.ParseType([]byte(js))
	if err != nil {
		t.Fatalf("parse type %s: %v", js, err)
	}
	return ty
}

func convertJSON(t *testing.T, js string) any {
	t.Helper()
	ct, err := idlkit.ConvertType(mustParseType(t, js))
	if err != nil {
		t.Fatalf("convert %s: %v", js, err)
	}
	return idlkit.ToValue(ct)
}

func TestConvertType_VecOfTaggedArrayGrowsByOne(t *testing.T) {
	// leaves: vec<(u8,[u8;32])>
	got := convertJSON(t, `{"vec":{"defined":"(u8,[u8;32])"}}`)
	want := map[string]any{"vec": map[string]any{"array": []any{"u8", 33}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}

	ct, err := idlkit.ConvertType(idlkit.VecOf(idlkit.DefinedType("(u8,[u8;0])")))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !idlkit.Equal(ct, idlkit.VecOf(idlkit.ArrayOf(idlkit.U8, 1))) {
		t.Fatalf("got %s", ct)
	}
}

func TestConvertType_OptionPairCollapses(t *testing.T) {
	got := convertJSON(t, `{"option":{"tuple":["u64","u64"]}}`)
	want := map[string]any{"option": map[string]any{"array": []any{"u64", 2}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
}

func TestConvertType_VecPairCollapses(t *testing.T) {
	got := convertJSON(t, `{"vec":{"tuple":["string","string"]}}`)
	want := map[string]any{"vec": map[string]any{"array": []any{"string", 2}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}

	got = convertJSON(t, `{"vec":{"tuple":[{"defined":"Point"},{"defined":"Point"}]}}`)
	want = map[string]any{"vec": map[string]any{"array": []any{map[string]any{"defined": "Point"}, 2}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
}

func TestConvertType_LeafShorthand(t *testing.T) {
	got := convertJSON(t, `"(u8,[u8;32])"`)
	want := map[string]any{"tuple": []any{"u8", map[string]any{"array": []any{"u8", 32}}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
	got = convertJSON(t, `{"defined":"(u8,[u8;4])"}`)
	want = map[string]any{"tuple": []any{"u8", map[string]any{"array": []any{"u8", 4}}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("defined shorthand: got %#v", got)
	}
}

func TestConvertType_PassThroughIsDeepEqual(t *testing.T) {
	inputs := []string{
		`"u8"`,
		`"publicKey"`,
		`"bytes"`,
		`{"array":["u8",32]}`,
		`{"vec":"u64"}`,
		`{"option":"publicKey"}`,
		`{"defined":"Config"}`,
		`{"defined":{"name":"Config"}}`,
		`{"tuple":["u8","u16","u32"]}`,
		`{"coption":"publicKey"}`,
		`{"defined":{"name":"Wrapper","generics":[{"kind":"type","type":"u8"}]}}`,
		`{"array":["u8",{"generic":"N"}]}`,
		`{"hashMap":["string","u64"]}`,
		`{"option":{"vec":{"array":["u8",8]}}}`,
	}
	for _, js := range inputs {
		in := mustParseType(t, js)
		before := idlkit.ToValue(in)
		ct, err := idlkit.ConvertType(in)
		if err != nil {
			t.Fatalf("%s: %v", js, err)
		}
		if !reflect.DeepEqual(idlkit.ToValue(ct), before) {
			t.Fatalf("%s: changed into %#v", js, idlkit.ToValue(ct))
		}
	}
}

func TestConvertType_RecursesIntoChildren(t *testing.T) {
	got := convertJSON(t, `{"option":{"vec":{"defined":"(u8,[u8;32])"}}}`)
	want := map[string]any{"option": map[string]any{"vec": map[string]any{"array": []any{"u8", 33}}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}

	got = convertJSON(t, `{"array":[{"option":{"tuple":["i64","i64"]}},4]}`)
	want = map[string]any{"array": []any{map[string]any{"option": map[string]any{"array": []any{"i64", 2}}}, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
}

func TestConvertType_UnsupportedTuples(t *testing.T) {
	for _, js := range []string{
		`{"option":{"tuple":["u64","u32"]}}`,
		`{"option":{"tuple":["u64","u64","u64"]}}`,
		`{"vec":{"tuple":["string"]}}`,
		`{"vec":{"tuple":[]}}`,
	} {
		_, err := idlkit.ConvertType(mustParseType(t, js))
		if !idlkit.HasCode(err, idlkit.CodeUnsupportedTuple) {
			t.Fatalf("%s: want unsupported_tuple, got %v", js, err)
		}
	}
}

func TestConvertType_MalformedShorthandPropagatesParserIssue(t *testing.T) {
	_, perr := idlkit.ParseTupleU8ArrayString("(u8,[u8;])")
	_, err := idlkit.ConvertType(idlkit.VecOf(idlkit.DefinedType("(u8,[u8;])")))
	if err == nil {
		t.Fatalf("expected error")
	}
	want, _ := idlkit.AsIssues(perr)
	got, ok := idlkit.AsIssues(err)
	if !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("converter altered the parser issue: got %#v want %#v", got, want)
	}

	_, err = idlkit.ConvertType(idlkit.Prim("(u16,[u8;32])"))
	if !idlkit.HasCode(err, idlkit.CodeTupleHead) {
		t.Fatalf("want tuple_head, got %v", err)
	}
}

func TestConvertType_PassThroughHook(t *testing.T) {
	var seen []idlkit.PassThrough
	hook := idlkit.WithPassThroughHook(func(pt idlkit.PassThrough) { seen = append(seen, pt) })
	in := mustParseType(t, `{"vec":{"coption":"publicKey"}}`)
	ct, err := idlkit.ConvertType(in, hook)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !idlkit.Equal(ct, in) {
		t.Fatalf("opaque child changed: %s", ct)
	}
	if len(seen) != 1 || seen[0].Path != "/vec" {
		t.Fatalf("unexpected hook calls: %#v", seen)
	}

	seen = nil
	if _, err := idlkit.ConvertType(idlkit.VecOf(idlkit.Prim("u8")), hook); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(seen) != 0 {
		t.Fatalf("known shapes must not reach the hook: %#v", seen)
	}
}

func TestConvertType_Nil(t *testing.T) {
	if _, err := idlkit.ConvertType(nil); !idlkit.HasCode(err, idlkit.CodeInvalidType) {
		t.Fatalf("want invalid_type, got %v", err)
	}
}

func TestConvertType_TaggedArrayLengthStaysInRange(t *testing.T) {
	ct, err := idlkit.ConvertType(idlkit.VecOf(idlkit.DefinedType("(u8,[u8;2147483646])")))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !idlkit.Equal(ct, idlkit.VecOf(idlkit.ArrayOf(idlkit.U8, 2147483647))) {
		t.Fatalf("got %s", ct)
	}

	_, err = idlkit.ConvertType(idlkit.VecOf(idlkit.DefinedType("(u8,[u8;2147483647])")))
	if !idlkit.HasCode(err, idlkit.CodeArrayLength) {
		t.Fatalf("want array_length, got %v", err)
	}
}

func TestConvertType_WithRootAnchorsPaths(t *testing.T) {
	var seen []idlkit.PassThrough
	hook := idlkit.WithPassThroughHook(func(pt idlkit.PassThrough) { seen = append(seen, pt) })
	_, err := idlkit.ConvertType(mustParseType(t, `{"vec":{"coption":"publicKey"}}`), idlkit.WithRoot("/types/0/type"), hook)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(seen) != 1 || seen[0].Path != "/types/0/type/vec" {
		t.Fatalf("unexpected hook calls: %#v", seen)
	}

	_, err = idlkit.ConvertType(mustParseType(t, `{"option":{"tuple":["u64","u32"]}}`), idlkit.WithRoot("/instructions/1/args/0/type"))
	iss, ok := idlkit.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Path != "/instructions/1/args/0/type/option" {
		t.Fatalf("unexpected issues: %v", err)
	}

	seen = nil
	if _, err := idlkit.ConvertType(mustParseType(t, `{"coption":"u8"}`), idlkit.WithRoot(""), hook); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(seen) != 1 || seen[0].Path != "/" {
		t.Fatalf("empty root should be the document root: %#v", seen)
	}
}

func TestConvertType_UnsupportedTupleCarriesHint(t *testing.T) {
	for _, js := range []string{
		`{"option":{"tuple":["u64","u32"]}}`,
		`{"vec":{"tuple":["u8","u8","u8"]}}`,
	} {
		_, err := idlkit.ConvertType(mustParseType(t, js))
		iss, ok := idlkit.AsIssues(err)
		if !ok || len(iss) != 1 || iss[0].Hint == "" {
			t.Fatalf("%s: want one issue with a hint, got %#v", js, err)
		}
	}

	doc := map[string]any{"types": []any{map[string]any{"name": "T", "type": map[string]any{"kind": "alias",
		"value": map[string]any{"option": map[string]any{"tuple": []any{"u8", "u16"}}}}}}}
	_, _, err := idlkit.Normalize(doc)
	iss, ok := idlkit.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Hint == "" {
		t.Fatalf("normalize dropped the hint: %#v", err)
	}
}
