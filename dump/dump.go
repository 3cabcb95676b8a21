// Package dump serializes compiled programs so they can be written to disk
// and executed later without the source.
package dump

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/lucylang/golucy/compiler"
)

const (
	kindNull     = "null"
	kindBool     = "bool"
	kindInt      = "int"
	kindFloat    = "float"
	kindString   = "string"
	kindFunction = "function"
)

type dumpedInstr struct {
	Op  uint8 `cbor:"op"`
	Arg int   `cbor:"arg,omitempty"`
}

type dumpedFunc struct {
	NumParams int  `cbor:"params"`
	Addr      int  `cbor:"addr"`
	IsClosure bool `cbor:"closure,omitempty"`
}

type dumpedConst struct {
	Kind  string      `cbor:"kind"`
	Bool  bool        `cbor:"bool,omitempty"`
	Int   int64       `cbor:"int,omitempty"`
	Float float64     `cbor:"float,omitempty"`
	Str   string      `cbor:"str,omitempty"`
	Func  *dumpedFunc `cbor:"func,omitempty"`
}

type dumpedProgram struct {
	Code   []dumpedInstr `cbor:"code"`
	Consts []dumpedConst `cbor:"consts"`
	Names  []string      `cbor:"names"`
}

func Encode(w io.Writer, program *compiler.Program) error {
	dumped := dumpedProgram{
		Code:   make([]dumpedInstr, 0, len(program.Code)),
		Consts: make([]dumpedConst, 0, len(program.Consts)),
		Names:  program.Names,
	}

	for _, instr := range program.Code {
		dumped.Code = append(dumped.Code, dumpedInstr{Op: uint8(instr.Op), Arg: instr.Arg})
	}

	for _, value := range program.Consts {
		c, err := dumpConst(value)
		if err != nil {
			return err
		}

		dumped.Consts = append(dumped.Consts, c)
	}

	return cbor.NewEncoder(w).Encode(dumped)
}

func Decode(r io.Reader) (*compiler.Program, error) {
	var dumped dumpedProgram
	if err := cbor.NewDecoder(r).Decode(&dumped); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}

	program := &compiler.Program{
		Code:   make([]compiler.Instr, 0, len(dumped.Code)),
		Consts: make([]any, 0, len(dumped.Consts)),
		Names:  dumped.Names,
	}

	for _, instr := range dumped.Code {
		program.Code = append(program.Code, compiler.Instr{Op: compiler.Op(instr.Op), Arg: instr.Arg})
	}

	for _, c := range dumped.Consts {
		value, err := loadConst(c)
		if err != nil {
			return nil, err
		}

		program.Consts = append(program.Consts, value)
	}

	return program, nil
}

func dumpConst(value any) (dumpedConst, error) {
	switch v := value.(type) {
	case nil:
		return dumpedConst{Kind: kindNull}, nil
	case bool:
		return dumpedConst{Kind: kindBool, Bool: v}, nil
	case int64:
		return dumpedConst{Kind: kindInt, Int: v}, nil
	case float64:
		return dumpedConst{Kind: kindFloat, Float: v}, nil
	case string:
		return dumpedConst{Kind: kindString, Str: v}, nil
	case *compiler.FuncProto:
		return dumpedConst{Kind: kindFunction, Func: &dumpedFunc{
			NumParams: v.NumParams,
			Addr:      v.Addr,
			IsClosure: v.IsClosure,
		}}, nil
	default:
		return dumpedConst{}, fmt.Errorf("cannot dump literal of type %T", value)
	}
}

func loadConst(c dumpedConst) (any, error) {
	switch c.Kind {
	case kindNull:
		return nil, nil
	case kindBool:
		return c.Bool, nil
	case kindInt:
		return c.Int, nil
	case kindFloat:
		return c.Float, nil
	case kindString:
		return c.Str, nil
	case kindFunction:
		if c.Func == nil {
			return nil, fmt.Errorf("function literal without a body description")
		}

		return &compiler.FuncProto{
			NumParams: c.Func.NumParams,
			Addr:      c.Func.Addr,
			IsClosure: c.Func.IsClosure,
		}, nil
	default:
		return nil, fmt.Errorf("unknown literal kind %q", c.Kind)
	}
}
