package idlkit

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeInvalidLength = "invalid_length"
	CodeParseError    = "parse_error"
	// Shorthand "(u8,[u8;N])" parser steps
	CodeTupleParens    = "tuple_parens"
	CodeTupleArity     = "tuple_arity"
	CodeTupleHead      = "tuple_head"
	CodeArrayBrackets  = "array_brackets"
	CodeArraySeparator = "array_separator"
	CodeArrayElement   = "array_element"
	CodeArrayLength    = "array_length"
	// Converter
	CodeUnsupportedTuple = "unsupported_tuple"
)

// Issue represents a single conversion or validation entry.
type Issue struct {
	Path    string // JSON Pointer into the IDL document (for example: /types/0/type/fields/2/type).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"input":"(u8,[u8;])"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. tuple_head at /types/0/type: first tuple item must be u8
		if it.Path != "" {
			fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		} else {
			b.WriteString(it.Code)
		}
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes causes so errors.Is/As can see through Issues.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an Issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// withPath returns a copy of the issues where entries without a path are
// anchored at p. Issues that already carry a path are left untouched.
func withPath(iss Issues, p PathRef) Issues {
	out := make(Issues, len(iss))
	for i, it := range iss {
		if it.Path == "" {
			it.Path = p.Pointer()
		}
		out[i] = it
	}
	return out
}

func newIssue(code, msg string, kv ...any) Issue {
	var params map[string]any
	if len(kv) > 1 {
		params = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			params[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}
	return Issue{Code: code, Message: msg, Params: params}
}
