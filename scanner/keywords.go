package scanner

import "github.com/lucylang/golucy/token"

var keywords = map[string]token.Kind{
	"if":       token.If,
	"else":     token.Else,
	"loop":     token.Loop,
	"while":    token.While,
	"for":      token.For,
	"in":       token.In,
	"break":    token.Break,
	"continue": token.Continue,
	"goto":     token.Goto,
	"return":   token.Return,
	"global":   token.Global,
	"is":       token.Is,
	"and":      token.And,
	"or":       token.Or,
	"func":     token.Func,
	"null":     token.Null,
	"true":     token.True,
	"false":    token.False,
}

var escapes = map[byte]byte{
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
}
