package compiler

type Op uint8

const (
	OpPop Op = iota
	OpDup
	OpDupTwo // duplicate the two topmost values
	OpRotTwo // swap the two topmost values
	OpLoadConst
	OpLoadName
	OpStore
	OpGlobal

	// pop 2*n values and build a table of n entries
	OpBuildTable
	OpGetAttr // TOS = TOS1[TOS], attribute key
	OpSetAttr // TOS2[TOS1] = TOS, pops value and key, keeps the table
	OpGetItem // TOS = TOS1[TOS]
	OpSetItem // TOS2[TOS1] = TOS, pops value and key, keeps the table

	OpNeg
	OpNot
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpCompare // arg indexes Comparators
	OpIs

	OpJump
	OpJumpIfFalse      // pops the condition
	OpJumpIfTrueOrPop  // jump keeping TOS if truthy, pop otherwise
	OpJumpIfFalseOrPop // jump keeping TOS if falsy, pop otherwise
	OpJumpIfNull       // peeks, jumps when TOS is null

	OpCall   // arg = argument count
	OpTail   // like OpCall, but replaces the current frame (goto)
	OpReturn
)

// Comparators holds the comparison operators indexed by OpCompare arguments.
var Comparators = []string{"<", "<=", "==", "!=", ">", ">="}

type argKind uint8

const (
	argNone argKind = iota
	argConst
	argName
	argAddress
	argNumber
)

var opInfo = map[Op]struct {
	name string
	arg  argKind
}{
	OpPop:              {"POP", argNone},
	OpDup:              {"DUP", argNone},
	OpDupTwo:           {"DUP_TWO", argNone},
	OpRotTwo:           {"ROT_TWO", argNone},
	OpLoadConst:        {"LOAD_CONST", argConst},
	OpLoadName:         {"LOAD_NAME", argName},
	OpStore:            {"STORE", argName},
	OpGlobal:           {"GLOBAL", argName},
	OpBuildTable:       {"BUILD_TABLE", argNumber},
	OpGetAttr:          {"GET_ATTR", argNone},
	OpSetAttr:          {"SET_ATTR", argNone},
	OpGetItem:          {"GET_ITEM", argNone},
	OpSetItem:          {"SET_ITEM", argNone},
	OpNeg:              {"NEG", argNone},
	OpNot:              {"NOT", argNone},
	OpAdd:              {"ADD", argNone},
	OpSub:              {"SUB", argNone},
	OpMul:              {"MUL", argNone},
	OpDiv:              {"DIV", argNone},
	OpMod:              {"MOD", argNone},
	OpCompare:          {"COMPARE", argNumber},
	OpIs:               {"IS", argNone},
	OpJump:             {"JUMP", argAddress},
	OpJumpIfFalse:      {"JUMP_IF_FALSE", argAddress},
	OpJumpIfTrueOrPop:  {"JUMP_IF_TRUE_OR_POP", argAddress},
	OpJumpIfFalseOrPop: {"JUMP_IF_FALSE_OR_POP", argAddress},
	OpJumpIfNull:       {"JUMP_IF_NULL", argAddress},
	OpCall:             {"CALL", argNumber},
	OpTail:             {"TAIL", argNumber},
	OpReturn:           {"RETURN", argNone},
}

func (op Op) String() string {
	info, ok := opInfo[op]
	if !ok {
		return "UNKNOWN"
	}

	return info.name
}

func (op Op) hasArg() bool {
	return opInfo[op].arg != argNone
}
