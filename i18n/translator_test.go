package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("tuple_head", nil); msg != "first tuple item must be u8" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("tuple_head", nil); msg == "first tuple item must be u8" || msg == "tuple_head" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_InputAndUnknownCode(t *testing.T) {
	if msg := T("array_length", map[string]string{"input": "(u8,[u8;])"}); msg != "array length must be a non-negative integer: (u8,[u8;])" {
		t.Fatalf("unexpected message: %q", msg)
	}
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("unknown codes should fall back to the code, got %q", msg)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	if msg := T("tuple_arity", nil); msg != "X:tuple_arity" {
		t.Fatalf("custom translator not used: %q", msg)
	}
	SetTranslator(nil)
	if msg := T("tuple_arity", nil); msg != "wrong number of tuple items" {
		t.Fatalf("nil should restore the english dictionary, got %q", msg)
	}
}
