package token

type Kind uint8

const (
	// single character symbols
	LeftBrace Kind = iota
	RightBrace
	LeftBracket
	RightBracket
	LeftParen
	RightParen
	Comma
	Semicolon
	Colon
	Dot
	VBar
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	Less
	Greater

	// two character symbols
	Equal
	BangEqual
	LessEqual
	GreaterEqual
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	PercentAssign

	// reserved words
	If
	Else
	Loop
	While
	For
	In
	Break
	Continue
	Goto
	Return
	Global
	Is
	And
	Or
	Func
	Null
	True
	False

	// literals
	Integer
	Float
	String

	Identifier
	Eof
)

var kindNames = map[Kind]string{
	LeftBrace:     "{",
	RightBrace:    "}",
	LeftBracket:   "[",
	RightBracket:  "]",
	LeftParen:     "(",
	RightParen:    ")",
	Comma:         ",",
	Semicolon:     ";",
	Colon:         ":",
	Dot:           ".",
	VBar:          "|",
	Assign:        "=",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Percent:       "%",
	Bang:          "!",
	Less:          "<",
	Greater:       ">",
	Equal:         "==",
	BangEqual:     "!=",
	LessEqual:     "<=",
	GreaterEqual:  ">=",
	PlusAssign:    "+=",
	MinusAssign:   "-=",
	StarAssign:    "*=",
	SlashAssign:   "/=",
	PercentAssign: "%=",
	If:            "if",
	Else:          "else",
	Loop:          "loop",
	While:         "while",
	For:           "for",
	In:            "in",
	Break:         "break",
	Continue:      "continue",
	Goto:          "goto",
	Return:        "return",
	Global:        "global",
	Is:            "is",
	And:           "and",
	Or:            "or",
	Func:          "func",
	Null:          "null",
	True:          "true",
	False:         "false",
	Integer:       "INTEGER",
	Float:         "FLOAT",
	String:        "STRING",
	Identifier:    "ID",
	Eof:           "EOF",
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return "UNKNOWN"
	}

	return name
}
