package idlkit_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/reoring/idlkit"
	"github.com/reoring/idlkit/source"
)

// ---- Helpers ----

// generateLegacyIDL returns a legacy IDL with numTypes struct definitions, each
// carrying a mix of shorthand, vec-of-shorthand, option-pair and plain fields.
func generateLegacyIDL(numTypes int) []byte {
	var buf bytes.Buffer
	buf.Grow(numTypes * 256)
	buf.WriteString(`{"version":"0.1.0","name":"bench","instructions":[`)
	buf.WriteString(`{"name":"append","accounts":[],"args":[{"name":"leaves","type":{"vec":{"defined":"(u8,[u8;32])"}}}]}`)
	buf.WriteString(`],"types":[`)
	for i := 0; i < numTypes; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"name":"T%d","type":{"kind":"struct","fields":[`, i)
		buf.WriteString(`{"name":"path","type":"(u8,[u8;32])"},`)
		buf.WriteString(`{"name":"leaves","type":{"vec":{"defined":"(u8,[u8;32])"}}},`)
		buf.WriteString(`{"name":"range","type":{"option":{"tuple":["u64","u64"]}}},`)
		buf.WriteString(`{"name":"owner","type":"publicKey"},`)
		fmt.Fprintf(&buf, `{"name":"root","type":{"array":["u8",%d]}}`, 32+i%8)
		buf.WriteString(`]}}`)
	}
	buf.WriteString(`]}`)
	return buf.Bytes()
}

// ---- Micro benchmarks ----

func Benchmark_ParseTupleU8ArrayString(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := idlkit.ParseTupleU8ArrayString("(u8,[u8;32])"); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_IsLeafTupleU8String_Rejected(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if idlkit.IsLeafTupleU8String("publicKey") {
			b.Fatal("unexpected match")
		}
	}
}

func Benchmark_ConvertType_Nested(b *testing.B) {
	t, err := idlkit.ParseType([]byte(`{"option":{"vec":{"defined":"(u8,[u8;32])"}}}`))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := idlkit.ConvertType(t); err != nil {
			b.Fatal(err)
		}
	}
}

// ---- Document benchmarks ----

func benchNormalize(b *testing.B, numTypes int) {
	data := generateLegacyIDL(numTypes)
	doc, err := source.Decode(data)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := idlkit.Normalize(doc); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Normalize_Small(b *testing.B) { benchNormalize(b, 4) }
func Benchmark_Normalize_Large(b *testing.B) { benchNormalize(b, 2000) }

func Benchmark_Decode_JSON_Large(b *testing.B) {
	data := generateLegacyIDL(2000)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := source.Decode(data); err != nil {
			b.Fatal(err)
		}
	}
}
