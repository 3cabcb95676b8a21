package vm

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lucylang/golucy/table"
)

// The stdlib tables are reached through member calls (io.println(x)), and a
// member call passes the receiving table as the first argument. Their
// natives therefore take a leading self argument and ignore it.

func newGlobals() *Env {
	global := newEnv(nil)
	global.define("print", NewNative("print", 1, func(vm *VM, args []any) (any, error) {
		fmt.Fprintln(vm.stdout, Stringify(args[0]))
		return nil, nil
	}))
	global.define("clock", NewNative("clock", 0, func(vm *VM, args []any) (any, error) {
		return time.Now().Unix(), nil
	}))
	global.define("io", ioLib())
	global.define("convert", convertLib())
	global.define("table", tableLib())

	return global
}

func ioLib() *table.Table {
	lib := table.New()
	lib.Set("print", NewNative("io.print", 2, func(vm *VM, args []any) (any, error) {
		fmt.Fprint(vm.stdout, Stringify(args[1]))
		return nil, nil
	}))
	lib.Set("println", NewNative("io.println", 2, func(vm *VM, args []any) (any, error) {
		fmt.Fprintln(vm.stdout, Stringify(args[1]))
		return nil, nil
	}))
	lib.Set("input", NewNative("io.input", 1, func(vm *VM, args []any) (any, error) {
		line, err := vm.stdin.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("io.input: %w", err)
		}

		return strings.TrimRight(line, "\r\n"), nil
	}))

	return lib
}

func convertLib() *table.Table {
	lib := table.New()
	lib.Set("bool", NewNative("convert.bool", 2, func(vm *VM, args []any) (any, error) {
		return isTruthy(args[1]), nil
	}))
	lib.Set("int", NewNative("convert.int", 2, func(vm *VM, args []any) (any, error) {
		switch val := args[1].(type) {
		case int64:
			return val, nil
		case float64:
			return int64(val), nil
		case bool:
			if val {
				return int64(1), nil
			}

			return int64(0), nil
		case string:
			num, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("convert.int: invalid integer %q", val)
			}

			return num, nil
		default:
			return nil, fmt.Errorf("convert.int: cannot convert %s", typeName(args[1]))
		}
	}))
	lib.Set("float", NewNative("convert.float", 2, func(vm *VM, args []any) (any, error) {
		switch val := args[1].(type) {
		case int64:
			return float64(val), nil
		case float64:
			return val, nil
		case string:
			num, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil {
				return nil, fmt.Errorf("convert.float: invalid float %q", val)
			}

			return num, nil
		default:
			return nil, fmt.Errorf("convert.float: cannot convert %s", typeName(args[1]))
		}
	}))
	lib.Set("string", NewNative("convert.string", 2, func(vm *VM, args []any) (any, error) {
		return Stringify(args[1]), nil
	}))

	return lib
}

func tableLib() *table.Table {
	lib := table.New()
	lib.Set("keys", NewNative("table.keys", 2, func(vm *VM, args []any) (any, error) {
		t, err := tableArg("table.keys", args[1])
		if err != nil {
			return nil, err
		}

		return keysIterator(t), nil
	}))
	lib.Set("values", NewNative("table.values", 2, func(vm *VM, args []any) (any, error) {
		t, err := tableArg("table.values", args[1])
		if err != nil {
			return nil, err
		}

		return valuesIterator(t), nil
	}))
	lib.Set("len", NewNative("table.len", 2, func(vm *VM, args []any) (any, error) {
		t, err := tableArg("table.len", args[1])
		if err != nil {
			return nil, err
		}

		return int64(t.Len()), nil
	}))
	lib.Set("clear", NewNative("table.clear", 2, func(vm *VM, args []any) (any, error) {
		t, err := tableArg("table.clear", args[1])
		if err != nil {
			return nil, err
		}

		t.Clear()
		return nil, nil
	}))

	return lib
}

func tableArg(name string, value any) (*table.Table, error) {
	t, ok := value.(*table.Table)
	if !ok {
		return nil, fmt.Errorf("%s: expected table, got %s", name, typeName(value))
	}

	return t, nil
}

// keysIterator yields each key of a snapshot, then null.
func keysIterator(t *table.Table) *Native {
	keys := t.Keys()
	index := 0

	return NewNative("keys iterator", 0, func(vm *VM, args []any) (any, error) {
		if index >= len(keys) {
			return nil, nil
		}

		key := keys[index]
		index++
		return key, nil
	})
}

func valuesIterator(t *table.Table) *Native {
	values := t.Values()
	index := 0

	return NewNative("values iterator", 0, func(vm *VM, args []any) (any, error) {
		if index >= len(values) {
			return nil, nil
		}

		val := values[index]
		index++
		return val, nil
	})
}
