// Package vm executes compiled programs on a stack machine.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/lucylang/golucy/compiler"
	"github.com/lucylang/golucy/logger"
	"github.com/lucylang/golucy/table"
)

type frame struct {
	stack   []any
	env     *Env
	retAddr int
	globals map[string]bool // names bound to the global scope by `global`
}

func (f *frame) push(value any) {
	f.stack = append(f.stack, value)
}

func (f *frame) pop() any {
	top := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return top
}

func (f *frame) peek() any {
	return f.stack[len(f.stack)-1]
}

type VM struct {
	stdout io.Writer
	stdin  *bufio.Reader
	log    zerolog.Logger
	trace  bool

	globals *Env

	code   []compiler.Instr
	consts []any
	names  []string
	pc     int
	frames []*frame
}

type Option func(*VM)

func WithStdout(w io.Writer) Option {
	return func(vm *VM) { vm.stdout = w }
}

func WithStdin(r io.Reader) Option {
	return func(vm *VM) { vm.stdin = bufio.NewReader(r) }
}

// WithTrace logs every executed instruction at debug level.
func WithTrace() Option {
	return func(vm *VM) { vm.trace = true }
}

func New(opts ...Option) *VM {
	vm := &VM{
		stdout:  os.Stdout,
		stdin:   bufio.NewReader(os.Stdin),
		log:     logger.Logger(),
		globals: newGlobals(),
	}

	for _, opt := range opts {
		opt(vm)
	}

	return vm
}

// Run executes a program from its first instruction.
func (vm *VM) Run(program *compiler.Program) error {
	return vm.RunFrom(program, 0)
}

// RunFrom executes a program starting at entry. Globals survive between
// runs, which is what the REPL leans on.
func (vm *VM) RunFrom(program *compiler.Program, entry int) (err error) {
	vm.code = program.Code
	vm.consts = program.Consts
	vm.names = program.Names
	vm.pc = entry
	vm.frames = []*frame{{env: vm.globals, globals: make(map[string]bool)}}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error at %d: %v", vm.pc, r)
		}
	}()

	for vm.pc < len(vm.code) && len(vm.frames) > 0 {
		instr := vm.code[vm.pc]
		f := vm.frames[len(vm.frames)-1]

		if vm.trace {
			vm.log.Debug().
				Int("pc", vm.pc).
				Stringer("op", instr.Op).
				Int("depth", len(vm.frames)).
				Msg("exec")
		}

		switch instr.Op {
		case compiler.OpPop:
			f.pop()
		case compiler.OpDup:
			f.push(f.peek())
		case compiler.OpDupTwo:
			second := f.stack[len(f.stack)-2]
			top := f.stack[len(f.stack)-1]
			f.push(second)
			f.push(top)
		case compiler.OpRotTwo:
			last := len(f.stack) - 1
			f.stack[last], f.stack[last-1] = f.stack[last-1], f.stack[last]
		case compiler.OpLoadConst:
			value := vm.consts[instr.Arg]
			if proto, ok := value.(*compiler.FuncProto); ok {
				closure := &Closure{Proto: proto}
				if proto.IsClosure {
					closure.env = f.env
				}

				f.push(closure)
			} else {
				f.push(value)
			}
		case compiler.OpLoadName:
			f.push(vm.load(f, vm.names[instr.Arg]))
		case compiler.OpStore:
			vm.store(f, vm.names[instr.Arg], f.pop())
		case compiler.OpGlobal:
			f.globals[vm.names[instr.Arg]] = true
		case compiler.OpBuildTable:
			t := table.New()
			base := len(f.stack) - 2*instr.Arg
			for i := 0; i < instr.Arg; i++ {
				key, err := keyString(f.stack[base+2*i])
				if err != nil {
					return err
				}

				t.Set(key, f.stack[base+2*i+1])
			}

			f.stack = f.stack[:base]
			f.push(t)
		case compiler.OpGetAttr, compiler.OpGetItem:
			key := f.pop()
			target := f.pop()

			t, ok := target.(*table.Table)
			if !ok {
				return fmt.Errorf("type error: cannot index %s", typeName(target))
			}

			ks, err := keyString(key)
			if err != nil {
				return err
			}

			value, _ := t.Get(ks)
			f.push(value)
		case compiler.OpSetAttr, compiler.OpSetItem:
			value := f.pop()
			key := f.pop()
			target := f.peek()

			t, ok := target.(*table.Table)
			if !ok {
				return fmt.Errorf("type error: cannot index %s", typeName(target))
			}

			ks, err := keyString(key)
			if err != nil {
				return err
			}

			t.Set(ks, value)
		case compiler.OpNeg:
			value, err := neg(f.pop())
			if err != nil {
				return err
			}

			f.push(value)
		case compiler.OpNot:
			f.push(!isTruthy(f.pop()))
		case compiler.OpAdd, compiler.OpSub, compiler.OpMul, compiler.OpDiv, compiler.OpMod:
			right := f.pop()
			left := f.pop()

			value, err := vm.binary(instr.Op, left, right)
			if err != nil {
				return err
			}

			f.push(value)
		case compiler.OpCompare:
			right := f.pop()
			left := f.pop()

			result, err := compare(compiler.Comparators[instr.Arg], left, right)
			if err != nil {
				return err
			}

			f.push(result)
		case compiler.OpIs:
			right := f.pop()
			left := f.pop()
			f.push(identical(left, right))
		case compiler.OpJump:
			vm.pc = instr.Arg
			continue
		case compiler.OpJumpIfFalse:
			if !isTruthy(f.pop()) {
				vm.pc = instr.Arg
				continue
			}
		case compiler.OpJumpIfTrueOrPop:
			if isTruthy(f.peek()) {
				vm.pc = instr.Arg
				continue
			}

			f.pop()
		case compiler.OpJumpIfFalseOrPop:
			if !isTruthy(f.peek()) {
				vm.pc = instr.Arg
				continue
			}

			f.pop()
		case compiler.OpJumpIfNull:
			if f.peek() == nil {
				vm.pc = instr.Arg
				continue
			}
		case compiler.OpCall:
			if err := vm.call(instr.Arg, false); err != nil {
				return err
			}

			continue
		case compiler.OpTail:
			if err := vm.call(instr.Arg, true); err != nil {
				return err
			}

			continue
		case compiler.OpReturn:
			value := f.pop()
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				return nil
			}

			caller := vm.frames[len(vm.frames)-1]
			caller.push(value)
			vm.pc = f.retAddr
			continue
		default:
			return fmt.Errorf("unknown opcode %d", instr.Op)
		}

		vm.pc++
	}

	return nil
}

// call invokes TOS with the n values above it as arguments. A tail call
// replaces the current frame instead of stacking a new one.
func (vm *VM) call(n int, tail bool) error {
	f := vm.frames[len(vm.frames)-1]

	args := make([]any, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = f.pop()
	}

	callee := f.pop()

	switch fn := callee.(type) {
	case *Native:
		if len(args) != fn.arity {
			return fmt.Errorf("call error: %s expects %d arguments, got %d", fn.name, fn.arity, len(args))
		}

		result, err := fn.call(vm, args)
		if err != nil {
			return err
		}

		if tail {
			// a native in tail position returns for the caller
			retAddr := f.retAddr
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				return nil
			}

			vm.frames[len(vm.frames)-1].push(result)
			vm.pc = retAddr
			return nil
		}

		f.push(result)
		vm.pc++
		return nil
	case *Closure:
		if len(args) != fn.Proto.NumParams {
			return fmt.Errorf("call error: function expects %d arguments, got %d", fn.Proto.NumParams, len(args))
		}

		next := &frame{env: newEnv(fn.env), retAddr: vm.pc + 1, globals: make(map[string]bool)}
		if tail {
			next.retAddr = f.retAddr
			vm.frames = vm.frames[:len(vm.frames)-1]
		}

		// pushed in reverse so the prologue stores them in parameter order
		for i := len(args) - 1; i >= 0; i-- {
			next.push(args[i])
		}

		vm.frames = append(vm.frames, next)
		vm.pc = fn.Proto.Addr
		return nil
	default:
		return fmt.Errorf("call error: %s is not callable", typeName(callee))
	}
}

func (vm *VM) binary(op compiler.Op, left, right any) (any, error) {
	switch op {
	case compiler.OpAdd:
		return add(left, right)
	case compiler.OpSub:
		return sub(left, right)
	case compiler.OpMul:
		return mul(left, right)
	case compiler.OpDiv:
		return div(left, right)
	default:
		return mod(left, right)
	}
}

// load resolves a name: global-declared names read the global scope, other
// names walk the closure chain and fall back to globals. A missing name
// reads as null.
func (vm *VM) load(f *frame, name string) any {
	if f.globals[name] {
		value, _ := vm.globals.get(name)
		return value
	}

	if value, ok := f.env.get(name); ok {
		return value
	}

	value, _ := vm.globals.get(name)
	return value
}

// store writes a name: the scope that already defines it wins, otherwise
// the current scope gains the definition. Storing null undefines.
func (vm *VM) store(f *frame, name string, value any) {
	if f.globals[name] {
		vm.globals.define(name, value)
		return
	}

	if f.env.assign(name, value) {
		return
	}

	f.env.define(name, value)
}
