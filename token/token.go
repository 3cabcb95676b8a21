package token

import "fmt"

type Token struct {
	Kind    Kind
	Lexeme  string
	Literal any
	Line    int
	Column  int
}

func New(kind Kind, lexeme string, literal any, line, column int) *Token {
	return &Token{kind, lexeme, literal, line, column}
}

func (t *Token) ToString() string {
	return fmt.Sprintf("{Kind(%v), Literal(%v), Lexeme(%s), %d:%d}", t.Kind, t.Literal, t.Lexeme, t.Line, t.Column)
}
