// Package source decodes and encodes IDL documents. JSON goes through
// goccy/go-json; YAML through gopkg.in/yaml.v3. Both reject duplicate keys.
// Decoded documents are JSON-like: map[string]any, []any and scalars.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format selects a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a flag value to a Format. Empty selects JSON.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("source: unknown format %q", s)
}

var (
	// ErrNotObject is returned when a document root is not an object.
	ErrNotObject = errors.New("source: document root is not an object")
	// ErrMultipleDocuments is returned when a YAML stream holds more than one
	// non-empty document.
	ErrMultipleDocuments = errors.New("source: expected a single YAML document")
)

// Detect guesses the encoding from the first non-space byte: '{' or '[' is JSON,
// anything else is YAML.
func Detect(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses an IDL document in either encoding and returns its root object.
// Keys repeated within one object are rejected with *DuplicateKeyError. A YAML
// stream must hold exactly one non-empty document.
func Decode(data []byte) (map[string]any, error) {
	var (
		v   any
		err error
	)
	switch Detect(data) {
	case FormatJSON:
		if err = json.Unmarshal(data, &v); err != nil {
			err = fmt.Errorf("source: invalid JSON: %w", err)
		} else {
			err = checkJSONDuplicateKeys(data)
		}
	default:
		r := NewStrictYAMLReader(bytes.NewReader(data))
		v, err = r.Next()
		if errors.Is(err, io.EOF) {
			err = ErrNotObject
		}
		if err == nil {
			err = expectEnd(r)
		}
	}
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return m, nil
}

// expectEnd drains r and fails on any further non-empty document.
func expectEnd(r *StrictYAMLReader) error {
	for {
		v, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if v != nil {
			return ErrMultipleDocuments
		}
	}
}

// DecodeReader reads r fully and decodes it with Decode.
func DecodeReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("source: read: %w", err)
	}
	return Decode(data)
}

// Encode renders v as indented JSON or YAML.
func Encode(v any, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("source: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("source: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("source: encode json: %w", err)
		}
		return append(b, '\n'), nil
	}
	return nil, fmt.Errorf("source: unknown format %q", f)
}
