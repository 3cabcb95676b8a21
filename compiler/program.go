package compiler

import (
	"fmt"
	"strings"
)

type Instr struct {
	Op  Op
	Arg int
}

// FuncProto describes a compiled function. Addr points at its first
// instruction; a closure resolves free names through its defining scope.
type FuncProto struct {
	NumParams int
	Addr      int
	IsClosure bool
}

func (f *FuncProto) String() string {
	return fmt.Sprintf("function(%d)", f.Addr)
}

// Program is a compiled unit: flat code, a literal pool and a name pool.
type Program struct {
	Code   []Instr
	Consts []any // nil, bool, int64, float64, string or *FuncProto
	Names  []string
}

func (p *Program) String() string {
	var sb strings.Builder
	for addr, instr := range p.Code {
		fmt.Fprintf(&sb, "%4d  %s", addr, instr.Op)

		switch opInfo[instr.Op].arg {
		case argConst:
			fmt.Fprintf(&sb, " %d (%s)", instr.Arg, formatConst(p.Consts[instr.Arg]))
		case argName:
			fmt.Fprintf(&sb, " %d (%s)", instr.Arg, p.Names[instr.Arg])
		case argAddress:
			fmt.Fprintf(&sb, " %d (addr)", instr.Arg)
		case argNumber:
			fmt.Fprintf(&sb, " %d", instr.Arg)
		}

		sb.WriteByte('\n')
	}

	return sb.String()
}

func formatConst(v any) string {
	switch c := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", c)
	default:
		return fmt.Sprintf("%v", c)
	}
}
