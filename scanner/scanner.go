package scanner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucylang/golucy/token"
)

type Scanner struct {
	source string
	tokens []*token.Token

	start     int
	current   int
	line      int
	lineStart int
}

func New(source string) *Scanner {
	return &Scanner{source: source, tokens: make([]*token.Token, 0), start: 0, current: 0, line: 1}
}

func (s *Scanner) Scan() ([]*token.Token, error) {
	for !s.isAtEnd() {
		s.start = s.current

		if err := s.scanToken(); err != nil {
			return nil, err
		}
	}

	s.start = s.current
	s.tokens = append(s.tokens, s.newToken(token.Eof, nil))

	return s.tokens, nil
}

func (s *Scanner) scanToken() error {
	c := s.advance()

	switch c {
	// one-character symbols
	case '{':
		s.addToken(token.LeftBrace)
	case '}':
		s.addToken(token.RightBrace)
	case '[':
		s.addToken(token.LeftBracket)
	case ']':
		s.addToken(token.RightBracket)
	case '(':
		s.addToken(token.LeftParen)
	case ')':
		s.addToken(token.RightParen)
	case ',':
		s.addToken(token.Comma)
	case ';':
		s.addToken(token.Semicolon)
	case ':':
		s.addToken(token.Colon)
	case '.':
		s.addToken(token.Dot)
	case '|':
		s.addToken(token.VBar)

	// one or two character symbols
	case '=':
		kind := token.Assign
		if s.match('=') {
			kind = token.Equal
		}

		s.addToken(kind)
	case '!':
		kind := token.Bang
		if s.match('=') {
			kind = token.BangEqual
		}

		s.addToken(kind)
	case '<':
		kind := token.Less
		if s.match('=') {
			kind = token.LessEqual
		}

		s.addToken(kind)
	case '>':
		kind := token.Greater
		if s.match('=') {
			kind = token.GreaterEqual
		}

		s.addToken(kind)
	case '+':
		kind := token.Plus
		if s.match('=') {
			kind = token.PlusAssign
		}

		s.addToken(kind)
	case '-':
		kind := token.Minus
		if s.match('=') {
			kind = token.MinusAssign
		}

		s.addToken(kind)
	case '*':
		kind := token.Star
		if s.match('=') {
			kind = token.StarAssign
		}

		s.addToken(kind)
	case '%':
		kind := token.Percent
		if s.match('=') {
			kind = token.PercentAssign
		}

		s.addToken(kind)

	case '/':
		if s.match('/') {
			// line comment
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		} else if s.match('=') {
			s.addToken(token.SlashAssign)
		} else {
			s.addToken(token.Slash)
		}

	// whitespace
	case ' ', '\t', '\r':
		break

	case '\n':
		s.line++
		s.lineStart = s.current

	// literals
	case '"', '\'':
		if err := s.string(c); err != nil {
			return err
		}

	default:
		if isDigit(c) {
			return s.number()
		} else if isAlpha(c) {
			s.identifier()
		} else {
			return fmt.Errorf("unknown character %q at %d:%d", string(c), s.line, s.column())
		}
	}

	return nil
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

func (s *Scanner) identifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[s.start:s.current]
	kind, ok := keywords[text]
	if !ok {
		s.addToken(token.Identifier, text)
		return
	}

	switch kind {
	case token.Null:
		s.addToken(kind, nil)
	case token.True:
		s.addToken(kind, true)
	case token.False:
		s.addToken(kind, false)
	default:
		s.addToken(kind)
	}
}

func (s *Scanner) number() error {
	for isDigit(s.peek()) {
		s.advance()
	}

	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()

		for isDigit(s.peek()) {
			s.advance()
		}

		num, _ := strconv.ParseFloat(s.source[s.start:s.current], 64)
		s.addToken(token.Float, num)
		return nil
	}

	num, err := strconv.ParseInt(s.source[s.start:s.current], 10, 64)
	if err != nil {
		return fmt.Errorf("integer literal %s out of range at %d:%d", s.source[s.start:s.current], s.line, s.column())
	}

	s.addToken(token.Integer, num)
	return nil
}

func (s *Scanner) string(quote byte) error {
	var b strings.Builder
	for s.peek() != quote && !s.isAtEnd() {
		c := s.advance()
		if c == '\n' {
			s.line++
			s.lineStart = s.current
		}

		if c == '\\' && !s.isAtEnd() {
			esc := s.advance()
			if unescaped, ok := escapes[esc]; ok {
				b.WriteByte(unescaped)
			} else {
				b.WriteByte('\\')
				b.WriteByte(esc)
			}
			continue
		}

		b.WriteByte(c)
	}

	if s.isAtEnd() {
		return fmt.Errorf("unterminated string at %d:%d", s.line, s.column())
	}

	// closing quote
	s.advance()
	s.addToken(token.String, b.String())

	return nil
}

func (s *Scanner) addToken(kind token.Kind, literal ...any) {
	var l any
	if len(literal) != 0 {
		l = literal[0]
	}

	s.tokens = append(s.tokens, s.newToken(kind, l))
}

func (s *Scanner) newToken(kind token.Kind, literal any) *token.Token {
	lexeme := s.source[s.start:s.current]

	return token.New(kind, lexeme, literal, s.line, s.start-s.lineStart+1)
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}

	s.current++
	return true
}

func (s *Scanner) advance() byte {
	curr := s.current
	s.current++
	return s.source[curr]
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return '\000'
	}

	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return '\000'
	}

	return s.source[s.current+1]
}

func (s *Scanner) column() int {
	return s.start - s.lineStart + 1
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}
