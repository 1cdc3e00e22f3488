package idlkit

import "fmt"

// Spec names the dialect an IDL document follows. Besides the constants below,
// any string found in metadata.spec is a valid Spec.
type Spec string

const (
	SpecLegacy   Spec = "legacy" // Pre-0.30 Anchor IDL (default when nothing else matches).
	SpecCodama   Spec = "codama" // Codama root node (standard: "codama").
	SpecAnchor01 Spec = "0.1.0"  // Anchor 0.30+ IDL spec.
)

// NeedsConversion reports whether type expressions of documents in this
// dialect must go through ConvertType.
func (s Spec) NeedsConversion() bool { return s == SpecLegacy }

// Document is the typed view of the IDL fields that decide its dialect. Other
// fields are kept in Raw when the document was decoded from JSON.
type Document struct {
	Standard string         `json:"standard,omitempty" yaml:"standard,omitempty"`
	Metadata *Metadata      `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Raw      map[string]any `json:"-" yaml:"-"`
}

// Metadata is the metadata block of Anchor 0.30+ and some legacy IDLs.
type Metadata struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Spec is a pointer so an explicitly empty spec can be told apart from a
	// missing one.
	Spec *string `json:"spec,omitempty" yaml:"spec,omitempty"`
}

// Diag carries non-fatal warnings produced during normalization.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }
