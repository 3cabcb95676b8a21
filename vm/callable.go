package vm

import "github.com/lucylang/golucy/compiler"

// Env is one scope of a closure chain. The global scope is the root Env of
// the main frame; plain functions start a fresh chain.
type Env struct {
	vars map[string]any
	base *Env
}

func newEnv(base *Env) *Env {
	return &Env{vars: make(map[string]any), base: base}
}

func (e *Env) get(name string) (any, bool) {
	val, ok := e.vars[name]
	if !ok && e.base != nil {
		return e.base.get(name)
	}

	return val, ok
}

// assign walks the chain and updates the scope that already defines name.
// Assigning null removes the definition.
func (e *Env) assign(name string, value any) bool {
	_, ok := e.vars[name]
	if !ok {
		if e.base != nil {
			return e.base.assign(name, value)
		}

		return false
	}

	e.define(name, value)
	return true
}

func (e *Env) define(name string, value any) {
	if value == nil {
		delete(e.vars, name)
		return
	}

	e.vars[name] = value
}

// Closure is a function value: a prototype plus the environment it was
// defined in. Plain func expressions carry no environment.
type Closure struct {
	Proto *compiler.FuncProto
	env   *Env
}

// Native is a function implemented in Go.
type Native struct {
	name  string
	arity int
	call  func(vm *VM, args []any) (any, error)
}

func NewNative(name string, arity int, call func(vm *VM, args []any) (any, error)) *Native {
	return &Native{name: name, arity: arity, call: call}
}
