package vm

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lucylang/golucy/table"
)

// Runtime values are nil (null), bool, int64, float64, string,
// *table.Table, *Closure or *Native.

func isTruthy(value any) bool {
	if value == nil {
		return false
	}

	val, ok := value.(bool)
	if ok {
		return val
	}

	return true
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int64:
		return "integer"
	case float64:
		return "float"
	case string:
		return "string"
	case *table.Table:
		return "table"
	case *Closure:
		return "function"
	case *Native:
		return "native function"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// keyString turns a value into a table key. Only strings and numbers index
// tables; numbers are stringified.
func keyString(value any) (string, error) {
	switch key := value.(type) {
	case string:
		return key, nil
	case int64:
		return strconv.FormatInt(key, 10), nil
	case float64:
		return strconv.FormatFloat(key, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("type error: table index must be string or number, not %s", typeName(value))
	}
}

func equals(left, right any) bool {
	return valueEquals(left, right, nil)
}

func valueEquals(left, right any, seen map[[2]*table.Table]bool) bool {
	if left == nil && right == nil {
		return true
	}

	if left == nil || right == nil {
		return false
	}

	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if lok && rok {
		return lf == rf
	}

	switch l := left.(type) {
	case *table.Table:
		r, ok := right.(*table.Table)
		return ok && tableEquals(l, r, seen)
	default:
		return left == right
	}
}

// tableEquals compares tables entry by entry. A pair already under
// comparison counts as equal, so cyclic tables terminate.
func tableEquals(left, right *table.Table, seen map[[2]*table.Table]bool) bool {
	if left == right {
		return true
	}

	if left.Len() != right.Len() {
		return false
	}

	pair := [2]*table.Table{left, right}
	if seen[pair] {
		return true
	}

	if seen == nil {
		seen = make(map[[2]*table.Table]bool)
	}

	seen[pair] = true

	equal := true
	left.ForEach(func(key string, val any) bool {
		other, ok := right.Get(key)
		if !ok || !valueEquals(val, other, seen) {
			equal = false
		}

		return equal
	})

	return equal
}

// identical implements the is operator: identity for tables and functions,
// type-strict equality for scalars.
func identical(left, right any) bool {
	switch left.(type) {
	case *table.Table, *Closure, *Native:
		return left == right
	default:
		if left == nil || right == nil {
			return left == nil && right == nil
		}

		return left == right
	}
}

func toFloat(value any) (float64, bool) {
	switch num := value.(type) {
	case int64:
		return float64(num), true
	case float64:
		return num, true
	default:
		return 0, false
	}
}

func add(left, right any) (any, error) {
	if l, ok := left.(string); ok {
		r, ok := right.(string)
		if !ok {
			return nil, fmt.Errorf("type error: cannot add string and %s", typeName(right))
		}

		return l + r, nil
	}

	return arith("+", left, right,
		func(a, b int64) int64 { return a + b },
		func(a, b float64) float64 { return a + b })
}

func sub(left, right any) (any, error) {
	return arith("-", left, right,
		func(a, b int64) int64 { return a - b },
		func(a, b float64) float64 { return a - b })
}

func mul(left, right any) (any, error) {
	return arith("*", left, right,
		func(a, b int64) int64 { return a * b },
		func(a, b float64) float64 { return a * b })
}

// div is true division, the result is always a float.
func div(left, right any) (any, error) {
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, fmt.Errorf("type error: cannot divide %s by %s", typeName(left), typeName(right))
	}

	if rf == 0 {
		return nil, fmt.Errorf("division by zero")
	}

	return lf / rf, nil
}

// mod keeps the sign of the divisor.
func mod(left, right any) (any, error) {
	if l, lok := left.(int64); lok {
		if r, rok := right.(int64); rok {
			if r == 0 {
				return nil, fmt.Errorf("division by zero")
			}

			return ((l % r) + r) % r, nil
		}
	}

	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, fmt.Errorf("type error: cannot take %s modulo %s", typeName(left), typeName(right))
	}

	if rf == 0 {
		return nil, fmt.Errorf("division by zero")
	}

	result := math.Mod(lf, rf)
	if result != 0 && (result < 0) != (rf < 0) {
		result += rf
	}

	return result, nil
}

func arith(op string, left, right any, ints func(a, b int64) int64, floats func(a, b float64) float64) (any, error) {
	if l, lok := left.(int64); lok {
		if r, rok := right.(int64); rok {
			return ints(l, r), nil
		}
	}

	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, fmt.Errorf("type error: unsupported operands for %s: %s and %s", op, typeName(left), typeName(right))
	}

	return floats(lf, rf), nil
}

func neg(value any) (any, error) {
	switch num := value.(type) {
	case int64:
		return -num, nil
	case float64:
		return -num, nil
	default:
		return nil, fmt.Errorf("type error: cannot negate %s", typeName(value))
	}
}

func compare(comparator string, left, right any) (bool, error) {
	switch comparator {
	case "==":
		return equals(left, right), nil
	case "!=":
		return !equals(left, right), nil
	}

	var order int
	if l, ok := left.(string); ok {
		r, ok := right.(string)
		if !ok {
			return false, fmt.Errorf("type error: cannot compare string and %s", typeName(right))
		}

		order = strings.Compare(l, r)
	} else {
		lf, lok := toFloat(left)
		rf, rok := toFloat(right)
		if !lok || !rok {
			return false, fmt.Errorf("type error: cannot compare %s and %s", typeName(left), typeName(right))
		}

		switch {
		case lf < rf:
			order = -1
		case lf > rf:
			order = 1
		}
	}

	switch comparator {
	case "<":
		return order < 0, nil
	case "<=":
		return order <= 0, nil
	case ">":
		return order > 0, nil
	case ">=":
		return order >= 0, nil
	default:
		return false, fmt.Errorf("unknown comparator %q", comparator)
	}
}

// Stringify renders a value the way io.print shows it. Table keys are
// sorted so the output is stable; a table reached again through its own
// values renders as {...}.
func Stringify(value any) string {
	return stringify(value, nil)
}

func stringify(value any, path map[*table.Table]bool) string {
	switch val := value.(type) {
	case nil:
		return "null"
	case bool:
		if val {
			return "true"
		}

		return "false"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return val
	case *table.Table:
		if path[val] {
			return "{...}"
		}

		if path == nil {
			path = make(map[*table.Table]bool)
		}

		path[val] = true

		keys := val.Keys()
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			entry, _ := val.Get(key)
			parts = append(parts, key+": "+stringify(entry, path))
		}

		// only cycles are elided, a table shared by two siblings
		// prints in full both times
		delete(path, val)

		return "{" + strings.Join(parts, ", ") + "}"
	case *Closure:
		return fmt.Sprintf("function(%d)", val.Proto.Addr)
	case *Native:
		return "native function " + val.name
	default:
		return fmt.Sprintf("%v", value)
	}
}
