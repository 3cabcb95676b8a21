// Package ast defines the syntax tree produced by the parser and consumed
// by the compiler. Every node renders back to a source-like string, which
// the parser tests lean on.
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

type Node interface {
	String() string
}

type Expr interface {
	Node
	exprNode()
}

type Stmt interface {
	Node
	stmtNode()
}

// expressions

type Literal struct {
	Value any // nil, bool, int64, float64 or string
}

type Identifier struct {
	Name string
}

// Property is one `key: value` pair of a table constructor. Key is an
// Identifier (sugar for a string key) or a Literal.
type Property struct {
	Key   Expr
	Value Expr
}

type TableExpr struct {
	Properties []*Property
}

type FunctionExpr struct {
	Params    []*Identifier
	Body      *BlockStmt
	IsClosure bool // |a, b| {} literal, captures the defining scope
}

type UnaryExpr struct {
	Operator string
	Argument Expr
}

type BinaryExpr struct {
	Left     Expr
	Operator string
	Right    Expr
}

// MemberExpr is t[expr] when Computed, t.name otherwise.
type MemberExpr struct {
	Table    Expr
	Property Expr
	Computed bool
}

type CallExpr struct {
	Callee    Expr
	Arguments []Expr
}

func (*Literal) exprNode()      {}
func (*Identifier) exprNode()   {}
func (*TableExpr) exprNode()    {}
func (*FunctionExpr) exprNode() {}
func (*UnaryExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}
func (*MemberExpr) exprNode()   {}
func (*CallExpr) exprNode()     {}

// statements

type BlockStmt struct {
	Body []Stmt
}

type IfStmt struct {
	Test       Expr
	Consequent Stmt
	Alternate  Stmt // may be nil
}

type LoopStmt struct {
	Body Stmt
}

type WhileStmt struct {
	Test Expr
	Body Stmt
}

type ForStmt struct {
	Left  *Identifier
	Right Expr
	Body  Stmt
}

type BreakStmt struct{}

type ContinueStmt struct{}

// GotoStmt transfers control to a call without growing the call stack.
type GotoStmt struct {
	Call *CallExpr
}

type ReturnStmt struct {
	Argument Expr // may be nil
}

type GlobalStmt struct {
	Names []*Identifier
}

type AssignStmt struct {
	Left     Expr // Identifier or MemberExpr
	Operator string
	Right    Expr
}

type ExprStmt struct {
	Expression Expr
}

type Program struct {
	Body []Stmt
}

func (*BlockStmt) stmtNode()    {}
func (*IfStmt) stmtNode()       {}
func (*LoopStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()    {}
func (*ForStmt) stmtNode()      {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*GotoStmt) stmtNode()     {}
func (*ReturnStmt) stmtNode()   {}
func (*GlobalStmt) stmtNode()   {}
func (*AssignStmt) stmtNode()   {}
func (*ExprStmt) stmtNode()     {}
func (*Program) stmtNode()      {}

// renderings

func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (i *Identifier) String() string {
	return i.Name
}

func (p *Property) String() string {
	return p.Key.String() + ": " + p.Value.String()
}

func (t *TableExpr) String() string {
	props := make([]string, 0, len(t.Properties))
	for _, p := range t.Properties {
		props = append(props, p.String())
	}

	return "{" + strings.Join(props, ", ") + "}"
}

func (f *FunctionExpr) String() string {
	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, p.Name)
	}

	if f.IsClosure {
		return "|" + strings.Join(params, ", ") + "|" + f.Body.String()
	}

	return "func(" + strings.Join(params, ", ") + ")" + f.Body.String()
}

func (u *UnaryExpr) String() string {
	return "(" + u.Operator + u.Argument.String() + ")"
}

func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}

func (m *MemberExpr) String() string {
	if m.Computed {
		return "(" + m.Table.String() + "[" + m.Property.String() + "])"
	}

	return "(" + m.Table.String() + "." + m.Property.String() + ")"
}

func (c *CallExpr) String() string {
	args := make([]string, 0, len(c.Arguments))
	for _, a := range c.Arguments {
		args = append(args, a.String())
	}

	return c.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

func (b *BlockStmt) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for _, stmt := range b.Body {
		sb.WriteString(stmt.String())
	}
	sb.WriteByte('}')

	return sb.String()
}

func (i *IfStmt) String() string {
	s := "if(" + i.Test.String() + ")" + i.Consequent.String()
	if i.Alternate != nil {
		s += "else" + i.Alternate.String()
	}

	return s
}

func (l *LoopStmt) String() string {
	return "loop" + l.Body.String()
}

func (w *WhileStmt) String() string {
	return "while(" + w.Test.String() + ")" + w.Body.String()
}

func (f *ForStmt) String() string {
	return "for(" + f.Left.String() + " in " + f.Right.String() + ")" + f.Body.String()
}

func (*BreakStmt) String() string {
	return "break;"
}

func (*ContinueStmt) String() string {
	return "continue;"
}

func (g *GotoStmt) String() string {
	return "goto " + g.Call.String() + ";"
}

func (r *ReturnStmt) String() string {
	if r.Argument == nil {
		return "return;"
	}

	return "return " + r.Argument.String() + ";"
}

func (g *GlobalStmt) String() string {
	names := make([]string, 0, len(g.Names))
	for _, n := range g.Names {
		names = append(names, n.Name)
	}

	return "global " + strings.Join(names, ", ") + ";"
}

func (a *AssignStmt) String() string {
	return "(" + a.Left.String() + " " + a.Operator + " " + a.Right.String() + ");"
}

func (e *ExprStmt) String() string {
	return e.Expression.String() + ";"
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, stmt := range p.Body {
		sb.WriteString(stmt.String())
	}

	return sb.String()
}
