package dump

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/lucylang/golucy/compiler"
	"github.com/lucylang/golucy/parser"
	"github.com/lucylang/golucy/scanner"
	"github.com/lucylang/golucy/vm"
)

func compile(t *testing.T, source string) *compiler.Program {
	t.Helper()

	tokens, err := scanner.New(source).Scan()
	require.NoError(t, err)

	program, errs := parser.New(tokens).Parse()
	require.Empty(t, errs)

	compiled, err := compiler.Compile(program)
	require.NoError(t, err)
	return compiled
}

func TestRoundTrip(t *testing.T) {
	original := compile(t, `
fib = func(n) {
	if n < 2 {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
};
print(fib(10));
gen = || { return null; };
x = 1.5;
s = "text";
`)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, original))

	decoded, err := Decode(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Errorf("program changed over the round trip (-want +got):\n%s", diff)
	}
}

func TestDecodedProgramRuns(t *testing.T) {
	original := compile(t, `
add = func(a, b) {
	return a + b;
};
print(add(20, 22));
`)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, original))

	decoded, err := Decode(&buf)
	require.NoError(t, err)

	var out bytes.Buffer
	machine := vm.New(vm.WithStdout(&out))
	require.NoError(t, machine.Run(decoded))
	require.Equal(t, "42\n", out.String())
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not cbor at all")))
	require.ErrorContains(t, err, "decoding program")
}

func TestUnknownLiteralKind(t *testing.T) {
	_, err := loadConst(dumpedConst{Kind: "table"})
	require.ErrorContains(t, err, "unknown literal kind")
}

func TestUndumpableLiteral(t *testing.T) {
	_, err := dumpConst(struct{}{})
	require.ErrorContains(t, err, "cannot dump literal")
}
