package idlkit

import (
	"strconv"
	"strings"
)

// IsLeafTupleU8String reports whether input is the legacy "(u8,[u8;N])"
// shorthand. A cheap structural check rejects most strings before the strict
// parser runs; parse failures are reported as false, never as errors.
func IsLeafTupleU8String(input any) bool {
	s, ok := input.(string)
	if !ok {
		return false
	}
	if !tupleCheck(s) {
		return false
	}
	_, err := ParseTupleU8ArrayString(s)
	return err == nil
}

// tupleCheck is the structural pre-check: a single pair of parentheses around
// exactly two non-empty comma-separated parts, the second one a bracketed
// array body declaring a length with ';'.
func tupleCheck(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return false
	}
	inner := s[1 : len(s)-1]
	if strings.ContainsAny(inner, "()") || strings.Count(inner, ",") != 1 {
		return false
	}
	head, tail, _ := strings.Cut(inner, ",")
	head, tail = strings.TrimSpace(head), strings.TrimSpace(tail)
	if head == "" || tail == "" {
		return false
	}
	if tail[0] != '[' || tail[len(tail)-1] != ']' {
		return false
	}
	return strings.Contains(tail, ";")
}

// ParseTupleU8ArrayString parses the "(u8,[u8;N])" shorthand into
// Tuple{u8, Array{u8, N}}. Every deviation from that grammar is reported as an
// Issue whose code names the violated expectation.
func ParseTupleU8ArrayString(input string) (Type, error) {
	fail := func(code, msg string) (Type, error) {
		return nil, Issues{newIssue(code, msg, "input", input)}
	}

	s := strings.TrimSpace(input)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") || len(s) < 2 {
		return fail(CodeTupleParens, "expected tuple like (u8,[u8;N])")
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch {
	case len(parts) > 2:
		return fail(CodeTupleArity, "too many tuple items")
	case len(parts) < 2:
		return fail(CodeTupleArity, "expected two tuple items")
	}
	if parts[0] != "u8" {
		return fail(CodeTupleHead, "first tuple item must be u8")
	}

	arr := parts[1]
	if !strings.HasPrefix(arr, "[") || !strings.HasSuffix(arr, "]") || len(arr) < 2 {
		return fail(CodeArrayBrackets, "expected array like [u8;N]")
	}
	body := strings.Split(arr[1:len(arr)-1], ";")
	if len(body) != 2 {
		return fail(CodeArraySeparator, "missing ';' in array body")
	}
	if strings.TrimSpace(body[0]) != "u8" {
		return fail(CodeArrayElement, "only u8 element supported here")
	}
	n, ok := parseLength(strings.TrimSpace(body[1]))
	if !ok {
		return fail(CodeArrayLength, "array length must be a non-negative integer")
	}
	return Tuple{Elems: []Type{U8, Array{Elem: U8, Len: n}}}, nil
}

// parseLength accepts decimal digits only; signs, blanks and overflow fail.
func parseLength(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
