package parser

import (
	"fmt"

	"github.com/lucylang/golucy/ast"
	"github.com/lucylang/golucy/token"
)

// binary operator precedences, higher binds tighter
var binaryPrecedence = map[token.Kind]int{
	token.Or:           1,
	token.And:          2,
	token.Is:           3,
	token.Equal:        4,
	token.BangEqual:    4,
	token.Less:         5,
	token.LessEqual:    5,
	token.Greater:      5,
	token.GreaterEqual: 5,
	token.Plus:         6,
	token.Minus:        6,
	token.Star:         7,
	token.Slash:        7,
	token.Percent:      7,
}

var assignKinds = []token.Kind{
	token.Assign,
	token.PlusAssign,
	token.MinusAssign,
	token.StarAssign,
	token.SlashAssign,
	token.PercentAssign,
}

type Parser struct {
	current int
	errors  []error
	tokens  []*token.Token
}

func New(tokens []*token.Token) *Parser {
	return &Parser{tokens: tokens, current: 0}
}

func (p *Parser) Parse() (*ast.Program, []error) {
	program := &ast.Program{}
	for !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			p.errors = append(p.errors, err)
			p.synchronize()
			continue
		}

		program.Body = append(program.Body, stmt)
	}

	return program, p.errors
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(token.If):
		return p.ifStatement()
	case p.match(token.Loop):
		body, err := p.block()
		if err != nil {
			return nil, err
		}

		return &ast.LoopStmt{Body: body}, nil
	case p.match(token.While):
		test, err := p.expression()
		if err != nil {
			return nil, err
		}

		body, err := p.block()
		if err != nil {
			return nil, err
		}

		return &ast.WhileStmt{Test: test, Body: body}, nil
	case p.match(token.For):
		return p.forStatement()
	case p.match(token.Break):
		if _, err := p.consume(token.Semicolon, "expected ';' after break"); err != nil {
			return nil, err
		}

		return &ast.BreakStmt{}, nil
	case p.match(token.Continue):
		if _, err := p.consume(token.Semicolon, "expected ';' after continue"); err != nil {
			return nil, err
		}

		return &ast.ContinueStmt{}, nil
	case p.match(token.Goto):
		return p.gotoStatement()
	case p.match(token.Return):
		return p.returnStatement()
	case p.match(token.Global):
		return p.globalStatement()
	case p.check(token.LeftBrace):
		return p.block()
	default:
		return p.exprStatement()
	}
}

func (p *Parser) ifStatement() (ast.Stmt, error) {
	test, err := p.expression()
	if err != nil {
		return nil, err
	}

	consequent, err := p.block()
	if err != nil {
		return nil, err
	}

	var alternate ast.Stmt
	if p.match(token.Else) {
		if p.match(token.If) {
			// else if chains
			alternate, err = p.ifStatement()
		} else {
			alternate, err = p.block()
		}
		if err != nil {
			return nil, err
		}
	}

	return &ast.IfStmt{Test: test, Consequent: consequent, Alternate: alternate}, nil
}

func (p *Parser) forStatement() (ast.Stmt, error) {
	name, err := p.consume(token.Identifier, "expected loop variable name")
	if err != nil {
		return nil, err
	}

	if _, err := p.consume(token.In, "expected 'in' after loop variable"); err != nil {
		return nil, err
	}

	right, err := p.expression()
	if err != nil {
		return nil, err
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	return &ast.ForStmt{Left: &ast.Identifier{Name: name.Lexeme}, Right: right, Body: body}, nil
}

func (p *Parser) gotoStatement() (ast.Stmt, error) {
	argument, err := p.expression()
	if err != nil {
		return nil, err
	}

	call, ok := argument.(*ast.CallExpr)
	if !ok {
		return nil, fmt.Errorf("goto needs a call expression, got %s", argument)
	}

	if _, err := p.consume(token.Semicolon, "expected ';' after goto"); err != nil {
		return nil, err
	}

	return &ast.GotoStmt{Call: call}, nil
}

func (p *Parser) returnStatement() (ast.Stmt, error) {
	var argument ast.Expr
	var err error
	if !p.check(token.Semicolon) {
		argument, err = p.expression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(token.Semicolon, "expected ';' after return"); err != nil {
		return nil, err
	}

	return &ast.ReturnStmt{Argument: argument}, nil
}

func (p *Parser) globalStatement() (ast.Stmt, error) {
	stmt := &ast.GlobalStmt{}
	for {
		name, err := p.consume(token.Identifier, "expected name after global")
		if err != nil {
			return nil, err
		}

		stmt.Names = append(stmt.Names, &ast.Identifier{Name: name.Lexeme})

		if !p.match(token.Comma) {
			break
		}
	}

	if _, err := p.consume(token.Semicolon, "expected ';' after global"); err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *Parser) block() (*ast.BlockStmt, error) {
	if _, err := p.consume(token.LeftBrace, "expected '{'"); err != nil {
		return nil, err
	}

	block := &ast.BlockStmt{}
	for !p.check(token.RightBrace) {
		if p.isAtEnd() {
			return nil, fmt.Errorf("unexpected end of file, expected '}'")
		}

		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}

		block.Body = append(block.Body, stmt)
	}

	p.advance()
	return block, nil
}

func (p *Parser) exprStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	if kind, ok := p.matchAssign(); ok {
		switch expr.(type) {
		case *ast.Identifier, *ast.MemberExpr:
		default:
			return nil, fmt.Errorf("can only assign to a name or member, not %s", expr)
		}

		right, err := p.expression()
		if err != nil {
			return nil, err
		}

		if _, err := p.consume(token.Semicolon, "expected ';' after assignment"); err != nil {
			return nil, err
		}

		return &ast.AssignStmt{Left: expr, Operator: kind.String(), Right: right}, nil
	}

	if _, err := p.consume(token.Semicolon, "expected ';' after expression"); err != nil {
		return nil, err
	}

	return &ast.ExprStmt{Expression: expr}, nil
}

func (p *Parser) expression() (ast.Expr, error) {
	return p.binary(1)
}

func (p *Parser) binary(minPrecedence int) (ast.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}

	for {
		precedence, ok := binaryPrecedence[p.peek().Kind]
		if !ok || precedence < minPrecedence {
			break
		}

		op := p.advance()
		right, err := p.binary(precedence + 1)
		if err != nil {
			return nil, err
		}

		left = &ast.BinaryExpr{Left: left, Operator: op.Kind.String(), Right: right}
	}

	return left, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.check(token.Plus) || p.check(token.Minus) || p.check(token.Bang) {
		op := p.advance()
		argument, err := p.primary()
		if err != nil {
			return nil, err
		}

		if op.Kind == token.Plus {
			return argument, nil
		}

		return &ast.UnaryExpr{Operator: op.Kind.String(), Argument: argument}, nil
	}

	return p.primary()
}

func (p *Parser) primary() (ast.Expr, error) {
	expr, err := p.atom()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.match(token.LeftParen):
			call := &ast.CallExpr{Callee: expr}
			for !p.check(token.RightParen) {
				arg, err := p.expression()
				if err != nil {
					return nil, err
				}

				call.Arguments = append(call.Arguments, arg)

				if p.check(token.RightParen) {
					break
				}

				if _, err := p.consume(token.Comma, "expected ',' between arguments"); err != nil {
					return nil, err
				}
			}

			p.advance()
			expr = call
		case p.match(token.LeftBracket):
			property, err := p.expression()
			if err != nil {
				return nil, err
			}

			if _, err := p.consume(token.RightBracket, "expected ']' after index"); err != nil {
				return nil, err
			}

			expr = &ast.MemberExpr{Table: expr, Property: property, Computed: true}
		case p.match(token.Dot):
			name, err := p.consume(token.Identifier, "expected member name after '.'")
			if err != nil {
				return nil, err
			}

			expr = &ast.MemberExpr{Table: expr, Property: &ast.Identifier{Name: name.Lexeme}}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) atom() (ast.Expr, error) {
	switch {
	case p.match(token.LeftParen):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}

		if _, err := p.consume(token.RightParen, "expected ')' after expression"); err != nil {
			return nil, err
		}

		return expr, nil
	case p.check(token.Func), p.check(token.VBar):
		return p.function()
	case p.check(token.LeftBrace):
		return p.table()
	case p.check(token.Identifier):
		name := p.advance()
		return &ast.Identifier{Name: name.Lexeme}, nil
	case p.check(token.Null), p.check(token.True), p.check(token.False),
		p.check(token.Integer), p.check(token.Float), p.check(token.String):
		lit := p.advance()
		return &ast.Literal{Value: lit.Literal}, nil
	default:
		return nil, fmt.Errorf("unexpected token %s", p.peek().ToString())
	}
}

func (p *Parser) function() (ast.Expr, error) {
	fn := &ast.FunctionExpr{}

	terminator := token.VBar
	if p.match(token.Func) {
		if _, err := p.consume(token.LeftParen, "expected '(' after func"); err != nil {
			return nil, err
		}

		terminator = token.RightParen
	} else {
		p.advance() // opening '|'
		fn.IsClosure = true
	}

	for !p.check(terminator) {
		name, err := p.consume(token.Identifier, "expected parameter name")
		if err != nil {
			return nil, err
		}

		fn.Params = append(fn.Params, &ast.Identifier{Name: name.Lexeme})

		if p.check(terminator) {
			break
		}

		if _, err := p.consume(token.Comma, "expected ',' between parameters"); err != nil {
			return nil, err
		}
	}

	p.advance()

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	fn.Body = body
	return fn, nil
}

func (p *Parser) table() (ast.Expr, error) {
	p.advance() // opening '{'

	expr := &ast.TableExpr{}
	index := 0
	for !p.check(token.RightBrace) {
		property := &ast.Property{}

		first, err := p.expression()
		if err != nil {
			return nil, err
		}

		if p.match(token.Colon) {
			property.Key = first
			property.Value, err = p.expression()
			if err != nil {
				return nil, err
			}
		} else {
			// positional entry, keyed by its index
			property.Key = &ast.Literal{Value: int64(index)}
			property.Value = first
		}

		index++
		expr.Properties = append(expr.Properties, property)

		if p.check(token.RightBrace) {
			break
		}

		if _, err := p.consume(token.Comma, "expected ',' between table entries"); err != nil {
			return nil, err
		}
	}

	p.advance()
	return expr, nil
}

func (p *Parser) matchAssign() (token.Kind, bool) {
	for _, kind := range assignKinds {
		if p.check(kind) {
			return p.advance().Kind, true
		}
	}

	return 0, false
}

func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.advance().Kind == token.Semicolon {
			return
		}

		switch p.peek().Kind {
		case token.If, token.Loop, token.While, token.For, token.Return, token.Global:
			return
		}
	}
}

func (p *Parser) consume(kind token.Kind, message string) (*token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}

	return nil, fmt.Errorf("%s, got %s", message, p.peek().ToString())
}

func (p *Parser) match(kind token.Kind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}

	return false
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) advance() *token.Token {
	curr := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}

	return curr
}

func (p *Parser) peek() *token.Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.tokens[p.current].Kind == token.Eof
}
