// Package compiler lowers the syntax tree into stack machine bytecode.
package compiler

import (
	"fmt"

	"github.com/lucylang/golucy/ast"
)

var binaryOps = map[string]Op{
	"*": OpMul,
	"/": OpDiv,
	"%": OpMod,
	"+": OpAdd,
	"-": OpSub,
}

// label marks a code address that is only known once assembly flattens the
// instruction stream.
type label struct {
	addr int
}

// jump is an instruction whose argument is a not yet resolved label.
type jump struct {
	op     Op
	target *label
}

type Compiler struct {
	consts []any
	names  []string
	funcs  [][]any
	stream []any // every batch compiled so far

	breakLabels    []*label
	continueLabels []*label
}

func New() *Compiler {
	// null, true and false are always at the bottom of the literal pool
	return &Compiler{consts: []any{nil, true, false}}
}

func Compile(program *ast.Program) (*Program, error) {
	compiled, _, err := New().Append(program)
	return compiled, err
}

// Append compiles another batch of statements behind everything compiled so
// far, sharing the literal and name pools. It returns the full program and
// the entry address of the new batch, which is how the REPL keeps closures
// from earlier lines callable.
func (c *Compiler) Append(program *ast.Program) (*Program, int, error) {
	entry := &label{}
	batch := []any{entry}

	c.funcs = nil
	main, err := c.stmtList(program.Body)
	if err != nil {
		return nil, 0, err
	}

	batch = append(batch, main...)
	batch = append(batch, c.loadConst(nil), Instr{Op: OpReturn})

	// hoist function bodies behind the batch
	for _, fn := range c.funcs {
		batch = append(batch, fn...)
	}

	c.stream = append(c.stream, batch...)
	return c.assemble(c.stream), entry.addr, nil
}

// assemble flattens the emitted stream, assigning addresses to labels and
// function prototypes and resolving jump targets.
func (c *Compiler) assemble(emitted []any) *Program {
	addr := 0
	for _, item := range emitted {
		switch marker := item.(type) {
		case *label:
			marker.addr = addr
		case *FuncProto:
			marker.Addr = addr
		default:
			addr++
		}
	}

	code := make([]Instr, 0, addr)
	for _, item := range emitted {
		switch instr := item.(type) {
		case Instr:
			code = append(code, instr)
		case jump:
			code = append(code, Instr{Op: instr.op, Arg: instr.target.addr})
		}
	}

	return &Program{Code: code, Consts: c.consts, Names: c.names}
}

func (c *Compiler) stmtList(stmts []ast.Stmt) ([]any, error) {
	var code []any
	for _, stmt := range stmts {
		stmtCode, err := c.stmt(stmt)
		if err != nil {
			return nil, err
		}

		code = append(code, stmtCode...)
	}

	return code, nil
}

func (c *Compiler) stmt(node ast.Stmt) ([]any, error) {
	switch stmt := node.(type) {
	case *ast.BlockStmt:
		return c.stmtList(stmt.Body)
	case *ast.ExprStmt:
		code, err := c.expr(stmt.Expression)
		if err != nil {
			return nil, err
		}

		return append(code, Instr{Op: OpPop}), nil
	case *ast.IfStmt:
		return c.ifStmt(stmt)
	case *ast.LoopStmt:
		return c.loop(nil, stmt.Body)
	case *ast.WhileStmt:
		return c.loop(stmt.Test, stmt.Body)
	case *ast.ForStmt:
		return c.forStmt(stmt)
	case *ast.BreakStmt:
		if len(c.breakLabels) == 0 {
			return nil, fmt.Errorf("break outside of a loop")
		}

		return []any{jump{OpJump, c.breakLabels[len(c.breakLabels)-1]}}, nil
	case *ast.ContinueStmt:
		if len(c.continueLabels) == 0 {
			return nil, fmt.Errorf("continue outside of a loop")
		}

		return []any{jump{OpJump, c.continueLabels[len(c.continueLabels)-1]}}, nil
	case *ast.GotoStmt:
		return c.gotoStmt(stmt)
	case *ast.ReturnStmt:
		var code []any
		if stmt.Argument == nil {
			code = append(code, c.loadConst(nil))
		} else {
			argCode, err := c.expr(stmt.Argument)
			if err != nil {
				return nil, err
			}

			code = append(code, argCode...)
		}

		return append(code, Instr{Op: OpReturn}), nil
	case *ast.GlobalStmt:
		var code []any
		for _, name := range stmt.Names {
			code = append(code, Instr{Op: OpGlobal, Arg: c.addName(name.Name)})
		}

		return code, nil
	case *ast.AssignStmt:
		return c.assign(stmt)
	default:
		return nil, fmt.Errorf("unexpected statement node %T", node)
	}
}

func (c *Compiler) ifStmt(stmt *ast.IfStmt) ([]any, error) {
	// <test>             JUMP_IF_FALSE a
	// <consequent>       JUMP b
	// a: <alternate>
	// b:
	falseLabel := &label{}
	endLabel := falseLabel
	if stmt.Alternate != nil {
		endLabel = &label{}
	}

	code, err := c.expr(stmt.Test)
	if err != nil {
		return nil, err
	}

	code = append(code, jump{OpJumpIfFalse, falseLabel})

	consequent, err := c.stmt(stmt.Consequent)
	if err != nil {
		return nil, err
	}

	code = append(code, consequent...)
	code = append(code, jump{OpJump, endLabel}, falseLabel)

	if stmt.Alternate != nil {
		alternate, err := c.stmt(stmt.Alternate)
		if err != nil {
			return nil, err
		}

		code = append(code, alternate...)
		code = append(code, endLabel)
	}

	return code, nil
}

func (c *Compiler) loop(test ast.Expr, body ast.Stmt) ([]any, error) {
	continueLabel := &label{}
	breakLabel := &label{}
	c.continueLabels = append(c.continueLabels, continueLabel)
	c.breakLabels = append(c.breakLabels, breakLabel)
	defer c.popLoopLabels()

	code := []any{continueLabel}
	if test != nil {
		testCode, err := c.expr(test)
		if err != nil {
			return nil, err
		}

		code = append(code, testCode...)
		code = append(code, jump{OpJumpIfFalse, breakLabel})
	}

	bodyCode, err := c.stmt(body)
	if err != nil {
		return nil, err
	}

	code = append(code, bodyCode...)
	code = append(code, jump{OpJump, continueLabel}, breakLabel)

	return code, nil
}

// forStmt iterates by calling the iterator value with no arguments until it
// yields null.
func (c *Compiler) forStmt(stmt *ast.ForStmt) ([]any, error) {
	continueLabel := &label{}
	exhaustLabel := &label{}
	breakLabel := &label{}
	c.continueLabels = append(c.continueLabels, continueLabel)
	c.breakLabels = append(c.breakLabels, breakLabel)
	defer c.popLoopLabels()

	code, err := c.expr(stmt.Right)
	if err != nil {
		return nil, err
	}

	code = append(code,
		continueLabel,
		Instr{Op: OpDup},
		Instr{Op: OpCall, Arg: 0},
		jump{OpJumpIfNull, exhaustLabel},
		Instr{Op: OpStore, Arg: c.addName(stmt.Left.Name)},
	)

	bodyCode, err := c.stmt(stmt.Body)
	if err != nil {
		return nil, err
	}

	code = append(code, bodyCode...)
	code = append(code,
		jump{OpJump, continueLabel},
		exhaustLabel,
		Instr{Op: OpPop}, // the null that ended the iteration
		breakLabel,
		Instr{Op: OpPop}, // the iterator
	)

	return code, nil
}

func (c *Compiler) popLoopLabels() {
	c.continueLabels = c.continueLabels[:len(c.continueLabels)-1]
	c.breakLabels = c.breakLabels[:len(c.breakLabels)-1]
}

// gotoStmt lowers a goto into a frame-replacing call. The callee compiles
// as a plain expression: goto t.f(x) does not receive the receiver-as-first-
// argument sugar that a direct t.f(x) call gets.
func (c *Compiler) gotoStmt(stmt *ast.GotoStmt) ([]any, error) {
	code, err := c.expr(stmt.Call.Callee)
	if err != nil {
		return nil, err
	}

	for _, argument := range stmt.Call.Arguments {
		argCode, err := c.expr(argument)
		if err != nil {
			return nil, err
		}

		code = append(code, argCode...)
	}

	return append(code, Instr{Op: OpTail, Arg: len(stmt.Call.Arguments)}), nil
}

func (c *Compiler) assign(stmt *ast.AssignStmt) ([]any, error) {
	switch left := stmt.Left.(type) {
	case *ast.Identifier:
		var code []any
		if stmt.Operator != "=" {
			code = append(code, Instr{Op: OpLoadName, Arg: c.addName(left.Name)})
		}

		rightCode, err := c.expr(stmt.Right)
		if err != nil {
			return nil, err
		}

		code = append(code, rightCode...)
		if stmt.Operator != "=" {
			code = append(code, Instr{Op: binaryOps[stmt.Operator[:1]]})
		}

		return append(code, Instr{Op: OpStore, Arg: c.addName(left.Name)}), nil
	case *ast.MemberExpr:
		// compile the member access, then strip the trailing get so the
		// table and key stay on the stack for the set
		code, err := c.expr(left)
		if err != nil {
			return nil, err
		}

		get := code[len(code)-1].(Instr)
		code = code[:len(code)-1]

		set := Instr{Op: OpSetItem}
		if get.Op == OpGetAttr {
			set = Instr{Op: OpSetAttr}
		}

		if stmt.Operator != "=" {
			code = append(code, Instr{Op: OpDupTwo}, get)
		}

		rightCode, err := c.expr(stmt.Right)
		if err != nil {
			return nil, err
		}

		code = append(code, rightCode...)
		if stmt.Operator != "=" {
			code = append(code, Instr{Op: binaryOps[stmt.Operator[:1]]})
		}

		return append(code, set, Instr{Op: OpPop}), nil
	default:
		return nil, fmt.Errorf("cannot assign to %T", stmt.Left)
	}
}

func (c *Compiler) expr(node ast.Expr) ([]any, error) {
	switch expr := node.(type) {
	case *ast.Literal:
		return []any{c.loadConst(expr.Value)}, nil
	case *ast.Identifier:
		return []any{Instr{Op: OpLoadName, Arg: c.addName(expr.Name)}}, nil
	case *ast.TableExpr:
		var code []any
		for _, property := range expr.Properties {
			var keyCode []any
			if id, ok := property.Key.(*ast.Identifier); ok {
				// {name: ...} is sugar for {"name": ...}, like t.name
				keyCode = []any{c.loadConst(id.Name)}
			} else {
				var err error
				keyCode, err = c.expr(property.Key)
				if err != nil {
					return nil, err
				}
			}

			valCode, err := c.expr(property.Value)
			if err != nil {
				return nil, err
			}

			code = append(code, keyCode...)
			code = append(code, valCode...)
		}

		return append(code, Instr{Op: OpBuildTable, Arg: len(expr.Properties)}), nil
	case *ast.FunctionExpr:
		return c.function(expr)
	case *ast.UnaryExpr:
		code, err := c.expr(expr.Argument)
		if err != nil {
			return nil, err
		}

		switch expr.Operator {
		case "-":
			code = append(code, Instr{Op: OpNeg})
		case "!":
			code = append(code, Instr{Op: OpNot})
		}

		return code, nil
	case *ast.BinaryExpr:
		return c.binary(expr)
	case *ast.MemberExpr:
		code, err := c.expr(expr.Table)
		if err != nil {
			return nil, err
		}

		if expr.Computed {
			keyCode, err := c.expr(expr.Property)
			if err != nil {
				return nil, err
			}

			code = append(code, keyCode...)
			return append(code, Instr{Op: OpGetItem}), nil
		}

		name := expr.Property.(*ast.Identifier).Name
		code = append(code, c.loadConst(name))
		return append(code, Instr{Op: OpGetAttr}), nil
	case *ast.CallExpr:
		return c.call(expr)
	default:
		return nil, fmt.Errorf("unexpected expression node %T", node)
	}
}

func (c *Compiler) binary(expr *ast.BinaryExpr) ([]any, error) {
	if expr.Operator == "and" || expr.Operator == "or" {
		// short-circuit, the left value itself is the result when it
		// decides the outcome
		endLabel := &label{}
		code, err := c.expr(expr.Left)
		if err != nil {
			return nil, err
		}

		op := OpJumpIfFalseOrPop
		if expr.Operator == "or" {
			op = OpJumpIfTrueOrPop
		}

		code = append(code, jump{op, endLabel})

		rightCode, err := c.expr(expr.Right)
		if err != nil {
			return nil, err
		}

		code = append(code, rightCode...)
		return append(code, endLabel), nil
	}

	code, err := c.expr(expr.Left)
	if err != nil {
		return nil, err
	}

	rightCode, err := c.expr(expr.Right)
	if err != nil {
		return nil, err
	}

	code = append(code, rightCode...)

	for index, comparator := range Comparators {
		if comparator == expr.Operator {
			return append(code, Instr{Op: OpCompare, Arg: index}), nil
		}
	}

	if expr.Operator == "is" {
		return append(code, Instr{Op: OpIs}), nil
	}

	op, ok := binaryOps[expr.Operator]
	if !ok {
		return nil, fmt.Errorf("unexpected binary operator %q", expr.Operator)
	}

	return append(code, Instr{Op: op}), nil
}

func (c *Compiler) function(expr *ast.FunctionExpr) ([]any, error) {
	proto := &FuncProto{NumParams: len(expr.Params), IsClosure: expr.IsClosure}

	body := []any{proto}
	for _, param := range expr.Params {
		body = append(body, Instr{Op: OpStore, Arg: c.addName(param.Name)})
	}

	bodyCode, err := c.stmtList(expr.Body.Body)
	if err != nil {
		return nil, err
	}

	body = append(body, bodyCode...)
	if last, ok := body[len(body)-1].(Instr); !ok || last.Op != OpReturn {
		body = append(body, c.loadConst(nil), Instr{Op: OpReturn})
	}

	c.funcs = append(c.funcs, body)

	return []any{Instr{Op: OpLoadConst, Arg: c.addConst(proto)}}, nil
}

func (c *Compiler) call(expr *ast.CallExpr) ([]any, error) {
	var code []any

	// method-call sugar: t.f(args) passes t as the first argument
	if member, ok := expr.Callee.(*ast.MemberExpr); ok && !member.Computed {
		tableCode, err := c.expr(member.Table)
		if err != nil {
			return nil, err
		}

		name := member.Property.(*ast.Identifier).Name
		code = append(code, tableCode...)
		code = append(code,
			Instr{Op: OpDup},
			c.loadConst(name),
			Instr{Op: OpGetAttr},
			Instr{Op: OpRotTwo},
		)

		for _, argument := range expr.Arguments {
			argCode, err := c.expr(argument)
			if err != nil {
				return nil, err
			}

			code = append(code, argCode...)
		}

		return append(code, Instr{Op: OpCall, Arg: len(expr.Arguments) + 1}), nil
	}

	calleeCode, err := c.expr(expr.Callee)
	if err != nil {
		return nil, err
	}

	code = append(code, calleeCode...)
	for _, argument := range expr.Arguments {
		argCode, err := c.expr(argument)
		if err != nil {
			return nil, err
		}

		code = append(code, argCode...)
	}

	return append(code, Instr{Op: OpCall, Arg: len(expr.Arguments)}), nil
}

func (c *Compiler) loadConst(value any) Instr {
	return Instr{Op: OpLoadConst, Arg: c.addConst(value)}
}

// addConst interns a literal. Comparison is type-strict: true and int64(1)
// occupy distinct slots. Function prototypes compare by identity.
func (c *Compiler) addConst(value any) int {
	for index, existing := range c.consts {
		if existing == value {
			return index
		}
	}

	c.consts = append(c.consts, value)
	return len(c.consts) - 1
}

func (c *Compiler) addName(name string) int {
	for index, existing := range c.names {
		if existing == name {
			return index
		}
	}

	c.names = append(c.names, name)
	return len(c.names) - 1
}
