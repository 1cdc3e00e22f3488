// Package idlkit provides:
//
// - Dialect classification of Solana program IDL documents (legacy Anchor, Anchor 0.1.0 spec, Codama)
// - A typed model of IDL type expressions (Primitive/Array/Vec/Option/Tuple/Defined/Opaque)
// - Conversion of legacy type expressions into the canonical array/tuple/option/vec form
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; put I/O under source/, onchain/ and loader/.
// - The CLI lives under cmd/idlkit.
// - Conversion is pure: no I/O, no shared state, safe for concurrent use.
//
// Typical usage:
//
//	spec := idlkit.Classify(doc)
//	if spec.NeedsConversion() {
//		out, diag, err := idlkit.Normalize(doc)
//	}
//
//	t, err := idlkit.ParseType([]byte(`{"vec":{"defined":"(u8,[u8;32])"}}`))
//	ct, err := idlkit.ConvertType(t) // {"vec":{"array":["u8",33]}}
package idlkit
