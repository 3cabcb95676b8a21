package main

import (
	"bytes"
	_ "embed"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lucylang/golucy/compiler"
	"github.com/lucylang/golucy/dump"
	"github.com/lucylang/golucy/parser"
	"github.com/lucylang/golucy/scanner"
	"github.com/lucylang/golucy/vm"
)

//go:embed testdata/fib.lucy
var fibSource []byte

//go:embed testdata/counter.lucy
var counterSource []byte

//go:embed testdata/tables.lucy
var tablesSource []byte

//go:embed testdata/tailcall.lucy
var tailcallSource []byte

func runSource(t *testing.T, source []byte) string {
	t.Helper()

	tokens, err := scanner.New(string(source)).Scan()
	require.NoError(t, err)

	program, errs := parser.New(tokens).Parse()
	for _, err := range errs {
		t.Error(err)
	}
	require.Empty(t, errs)

	compiled, err := compiler.Compile(program)
	require.NoError(t, err)

	var out bytes.Buffer
	machine := vm.New(vm.WithStdout(&out))
	require.NoError(t, machine.Run(compiled))

	return out.String()
}

func TestFibRecursion(t *testing.T) {
	require.Equal(t, "55\n", runSource(t, fibSource))
}

func TestGeneratorClosure(t *testing.T) {
	require.Equal(t, "{10: 10, 2: 2, 4: 4, 6: 6, 8: 8}\n", runSource(t, counterSource))
}

func TestTableLibrary(t *testing.T) {
	require.Equal(t, "3\n3\nlucy 0.1\n0\nnull\n", runSource(t, tablesSource))
}

func TestTailCallDepth(t *testing.T) {
	require.Equal(t, "20000100000\n", runSource(t, tailcallSource))
}

func TestProgramsSurviveTheDumpFormat(t *testing.T) {
	tokens, err := scanner.New(string(fibSource)).Scan()
	require.NoError(t, err)

	program, errs := parser.New(tokens).Parse()
	require.Empty(t, errs)

	compiled, err := compiler.Compile(program)
	require.NoError(t, err)

	var encoded bytes.Buffer
	require.NoError(t, dump.Encode(&encoded, compiled))

	decoded, err := dump.Decode(&encoded)
	require.NoError(t, err)

	var out bytes.Buffer
	machine := vm.New(vm.WithStdout(&out))
	require.NoError(t, machine.Run(decoded))
	require.Equal(t, "55\n", out.String())
}
