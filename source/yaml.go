package source

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a key repeated within one mapping. YAML errors
// carry both positions; JSON errors carry the JSON Pointer of the object.
type DuplicateKeyError struct {
	Key       string
	Path      string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("duplicate JSON key %q in object at %q", e.Key, e.Path)
	}
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// MaxYAMLNodes bounds the number of nodes one document may expand to once
// aliases are resolved.
const MaxYAMLNodes = 1 << 20

var (
	// ErrAliasCycle is returned when an alias refers to a node that contains it.
	ErrAliasCycle = errors.New("source: YAML alias refers to an enclosing node")
	// ErrYAMLTooLarge is returned when alias expansion exceeds MaxYAMLNodes.
	ErrYAMLTooLarge = errors.New("source: YAML document expands beyond node limit")
)

// StrictYAMLReader decodes a multi-document YAML stream using yaml.Node to detect
// duplicate keys (with positions). It returns JSON-like Go values (map[string]any, []any, primitives).
type StrictYAMLReader struct {
	dec *yaml.Decoder
}

// NewStrictYAMLReader constructs a StrictYAMLReader.
func NewStrictYAMLReader(r io.Reader) *StrictYAMLReader {
	return &StrictYAMLReader{dec: yaml.NewDecoder(r)}
}

// Next returns the next YAML document converted into a JSON-compatible Go value.
// It returns (nil, io.EOF) when the stream is exhausted. Duplicate keys cause an error.
func (s *StrictYAMLReader) Next() (any, error) {
	var root yaml.Node
	if err := s.dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("source: invalid YAML: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	x := &expander{active: map[*yaml.Node]bool{}}
	return x.value(root.Content[0])
}

// expander converts yaml.Node trees into JSON-like values. active holds the
// nodes on the current expansion path; seen counts every node produced.
type expander struct {
	active map[*yaml.Node]bool
	seen   int
}

func (x *expander) value(n *yaml.Node) (any, error) {
	x.seen++
	if x.seen > MaxYAMLNodes {
		return nil, ErrYAMLTooLarge
	}
	if x.active[n] {
		return nil, fmt.Errorf("%w at %d:%d", ErrAliasCycle, n.Line, n.Column)
	}
	x.active[n] = true
	defer delete(x.active, n)

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return x.value(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		return x.value(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			key := k.Value
			if pos, dup := first[key]; dup {
				return nil, &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[key] = [2]int{k.Line, k.Column}
			val, err := x.value(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := x.value(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!bool":
			if b, err := strconv.ParseBool(n.Value); err == nil {
				return b, nil
			}
			return n.Value, nil
		case "!!int":
			// int64 keeps array lengths exact; idlkit accepts it as a length
			if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
				return i, nil
			}
			return n.Value, nil
		case "!!float":
			if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
				return f, nil
			}
			return n.Value, nil
		default:
			return n.Value, nil
		}
	}
	return nil, nil
}
