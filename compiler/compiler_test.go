package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucylang/golucy/ast"
	"github.com/lucylang/golucy/parser"
	"github.com/lucylang/golucy/scanner"
)

func compile(t *testing.T, source string) *Program {
	t.Helper()

	program, err := Compile(parseSource(t, source))
	require.NoError(t, err)
	return program
}

func parseSource(t *testing.T, source string) *ast.Program {
	t.Helper()

	tokens, err := scanner.New(source).Scan()
	require.NoError(t, err)

	program, errs := parser.New(tokens).Parse()
	require.Empty(t, errs)
	return program
}

func TestCallLowering(t *testing.T) {
	program := compile(t, "print(1);")

	want := []Instr{
		{Op: OpLoadName, Arg: 0},
		{Op: OpLoadConst, Arg: 3},
		{Op: OpCall, Arg: 1},
		{Op: OpPop},
		{Op: OpLoadConst, Arg: 0},
		{Op: OpReturn},
	}

	if diff := cmp.Diff(want, program.Code); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"print"}, program.Names)
	assert.Equal(t, []any{nil, true, false, int64(1)}, program.Consts)
}

func TestLiteralPoolIsTypeStrict(t *testing.T) {
	program := compile(t, "x = 1; y = 1; z = 1.0; x = 2;")

	assert.Equal(t, []any{nil, true, false, int64(1), 1.0, int64(2)}, program.Consts)
	assert.Equal(t, []string{"x", "y", "z"}, program.Names)
}

func TestIfElseLowering(t *testing.T) {
	program := compile(t, "if true { x = 1; } else { x = 2; }")

	want := []Instr{
		{Op: OpLoadConst, Arg: 1},
		{Op: OpJumpIfFalse, Arg: 5},
		{Op: OpLoadConst, Arg: 3},
		{Op: OpStore, Arg: 0},
		{Op: OpJump, Arg: 7},
		{Op: OpLoadConst, Arg: 4},
		{Op: OpStore, Arg: 0},
		{Op: OpLoadConst, Arg: 0},
		{Op: OpReturn},
	}

	if diff := cmp.Diff(want, program.Code); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
}

func TestWhileLowering(t *testing.T) {
	program := compile(t, "while x < 3 { x += 1; }")

	want := []Instr{
		{Op: OpLoadName, Arg: 0},
		{Op: OpLoadConst, Arg: 3},
		{Op: OpCompare, Arg: 0},
		{Op: OpJumpIfFalse, Arg: 9},
		{Op: OpLoadName, Arg: 0},
		{Op: OpLoadConst, Arg: 4},
		{Op: OpAdd},
		{Op: OpStore, Arg: 0},
		{Op: OpJump, Arg: 0},
		{Op: OpLoadConst, Arg: 0},
		{Op: OpReturn},
	}

	if diff := cmp.Diff(want, program.Code); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
}

func TestForLowering(t *testing.T) {
	program := compile(t, "for i in f() { }")

	want := []Instr{
		{Op: OpLoadName, Arg: 0},
		{Op: OpCall, Arg: 0},
		{Op: OpDup},
		{Op: OpCall, Arg: 0},
		{Op: OpJumpIfNull, Arg: 7},
		{Op: OpStore, Arg: 1},
		{Op: OpJump, Arg: 2},
		{Op: OpPop},
		{Op: OpPop},
		{Op: OpLoadConst, Arg: 0},
		{Op: OpReturn},
	}

	if diff := cmp.Diff(want, program.Code); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
}

func TestShortCircuitLowering(t *testing.T) {
	program := compile(t, "x = a or b;")

	want := []Instr{
		{Op: OpLoadName, Arg: 0},
		{Op: OpJumpIfTrueOrPop, Arg: 3},
		{Op: OpLoadName, Arg: 1},
		{Op: OpStore, Arg: 2},
		{Op: OpLoadConst, Arg: 0},
		{Op: OpReturn},
	}

	if diff := cmp.Diff(want, program.Code); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}

	program = compile(t, "x = a and b;")
	assert.Equal(t, OpJumpIfFalseOrPop, program.Code[1].Op)
}

func TestFunctionBodiesAreHoisted(t *testing.T) {
	program := compile(t, "f = func(a) { return a; };")

	proto, ok := program.Consts[3].(*FuncProto)
	require.True(t, ok)
	assert.Equal(t, 1, proto.NumParams)
	assert.Equal(t, 4, proto.Addr)
	assert.False(t, proto.IsClosure)

	want := []Instr{
		{Op: OpLoadConst, Arg: 3},
		{Op: OpStore, Arg: 1},
		{Op: OpLoadConst, Arg: 0},
		{Op: OpReturn},
		{Op: OpStore, Arg: 0},
		{Op: OpLoadName, Arg: 0},
		{Op: OpReturn},
	}

	if diff := cmp.Diff(want, program.Code); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
}

func TestClosureProto(t *testing.T) {
	program := compile(t, "c = |x| {};")

	proto, ok := program.Consts[3].(*FuncProto)
	require.True(t, ok)
	assert.True(t, proto.IsClosure)
	assert.Equal(t, 1, proto.NumParams)
}

func TestGotoLowering(t *testing.T) {
	program := compile(t, "goto f(1);")

	want := []Instr{
		{Op: OpLoadName, Arg: 0},
		{Op: OpLoadConst, Arg: 3},
		{Op: OpTail, Arg: 1},
		{Op: OpLoadConst, Arg: 0},
		{Op: OpReturn},
	}

	if diff := cmp.Diff(want, program.Code); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
}

func TestMethodCallLowering(t *testing.T) {
	program := compile(t, "t.f(1);")

	want := []Instr{
		{Op: OpLoadName, Arg: 0},
		{Op: OpDup},
		{Op: OpLoadConst, Arg: 3},
		{Op: OpGetAttr},
		{Op: OpRotTwo},
		{Op: OpLoadConst, Arg: 4},
		{Op: OpCall, Arg: 2},
		{Op: OpPop},
		{Op: OpLoadConst, Arg: 0},
		{Op: OpReturn},
	}

	if diff := cmp.Diff(want, program.Code); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "f", program.Consts[3])
}

func TestCompoundMemberAssign(t *testing.T) {
	program := compile(t, "t.n += 5;")

	want := []Instr{
		{Op: OpLoadName, Arg: 0},
		{Op: OpLoadConst, Arg: 3},
		{Op: OpDupTwo},
		{Op: OpGetAttr},
		{Op: OpLoadConst, Arg: 4},
		{Op: OpAdd},
		{Op: OpSetAttr},
		{Op: OpPop},
		{Op: OpLoadConst, Arg: 0},
		{Op: OpReturn},
	}

	if diff := cmp.Diff(want, program.Code); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	_, err := Compile(parseSource(t, "loop { break; }"))
	require.NoError(t, err)

	_, err = Compile(parseSource(t, "break;"))
	require.ErrorContains(t, err, "break outside of a loop")

	_, err = Compile(parseSource(t, "continue;"))
	require.ErrorContains(t, err, "continue outside of a loop")

	_, err = Compile(parseSource(t, "f = func() { break; };"))
	require.ErrorContains(t, err, "break outside of a loop")
}

func TestAppendSharesPools(t *testing.T) {
	comp := New()

	first, entry, err := comp.Append(parseSource(t, "x = 1;"))
	require.NoError(t, err)
	assert.Equal(t, 0, entry)
	assert.Len(t, first.Code, 4)

	second, entry, err := comp.Append(parseSource(t, "x = 2; y = 1;"))
	require.NoError(t, err)
	assert.Equal(t, 4, entry)

	// earlier batches stay addressable in the combined program
	if diff := cmp.Diff(first.Code, second.Code[:4]); diff != "" {
		t.Errorf("first batch changed (-want +got):\n%s", diff)
	}

	assert.Equal(t, []any{nil, true, false, int64(1), int64(2)}, second.Consts)
	assert.Equal(t, []string{"x", "y"}, second.Names)
}

func TestDisassembly(t *testing.T) {
	program := compile(t, `print("hi");`)
	listing := program.String()

	assert.Contains(t, listing, "LOAD_NAME 0 (print)")
	assert.Contains(t, listing, `LOAD_CONST 3 ("hi")`)
	assert.Contains(t, listing, "CALL 1")
	assert.Contains(t, listing, "RETURN")
}
