// Package chunk implements the compiled-function representation the
// interpreter executes: a byte-addressed instruction stream, a
// compressed line table, and a constant pool. It also defines the
// Opcode enumeration (spec.md §4.4) and the Function entity that pairs
// a Chunk with arity/name/nonlocal-count metadata.
//
// This mirrors the teacher's pkg/bytecode package (Opcode as a byte,
// a String() disassembler, a binary serialization format) generalized
// from smog's small message-send instruction set to hookvm's ~70-opcode
// stack machine, and grounded on
// _examples/original_source/include/hook/chunk.h's hk_opcode_t for the
// exact opcode ordering and names.
package chunk

// Opcode identifies a single bytecode instruction.
type Opcode byte

const (
	OpNil Opcode = iota
	OpFalse
	OpTrue
	OpInt // word operand: signed 16-bit treated as a number
	OpConstant
	OpRange
	OpArray
	OpStruct
	OpInstance
	OpConstruct
	OpIterator
	OpClosure
	OpUnpackArray
	OpUnpackStruct
	OpPop
	OpGlobal
	OpNonlocal
	OpLoad
	OpStore
	OpAddElement
	OpGetElement
	OpFetchElement
	OpSetElement
	OpPutElement
	OpDeleteElement
	OpInplaceAddElement
	OpInplacePutElement
	OpInplaceDeleteElement
	OpGetField
	OpFetchField
	OpSetField
	OpPutField
	OpInplacePutField
	OpCurrent
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpJumpIfTrueOrPop
	OpJumpIfFalseOrPop
	OpJumpIfNotEqual
	OpJumpIfNotValid
	OpNext
	OpEqual
	OpGreater
	OpLess
	OpNotEqual
	OpNotGreater
	OpNotLess
	OpBitwiseOr
	OpBitwiseXor
	OpBitwiseAnd
	OpLeftShift
	OpRightShift
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpQuotient
	OpRemainder
	OpNegate
	OpNot
	OpBitwiseNot
	OpIncrement
	OpDecrement
	OpCall
	OpLoadModule
	OpReturn
	OpReturnNil
)

var opcodeNames = [...]string{
	OpNil:                   "NIL",
	OpFalse:                 "FALSE",
	OpTrue:                  "TRUE",
	OpInt:                   "INT",
	OpConstant:              "CONSTANT",
	OpRange:                 "RANGE",
	OpArray:                 "ARRAY",
	OpStruct:                "STRUCT",
	OpInstance:              "INSTANCE",
	OpConstruct:             "CONSTRUCT",
	OpIterator:              "ITERATOR",
	OpClosure:               "CLOSURE",
	OpUnpackArray:           "UNPACK_ARRAY",
	OpUnpackStruct:          "UNPACK_STRUCT",
	OpPop:                   "POP",
	OpGlobal:                "GLOBAL",
	OpNonlocal:              "NONLOCAL",
	OpLoad:                  "LOAD",
	OpStore:                 "STORE",
	OpAddElement:            "ADD_ELEMENT",
	OpGetElement:            "GET_ELEMENT",
	OpFetchElement:          "FETCH_ELEMENT",
	OpSetElement:            "SET_ELEMENT",
	OpPutElement:            "PUT_ELEMENT",
	OpDeleteElement:         "DELETE_ELEMENT",
	OpInplaceAddElement:     "INPLACE_ADD_ELEMENT",
	OpInplacePutElement:     "INPLACE_PUT_ELEMENT",
	OpInplaceDeleteElement:  "INPLACE_DELETE_ELEMENT",
	OpGetField:              "GET_FIELD",
	OpFetchField:            "FETCH_FIELD",
	OpSetField:              "SET_FIELD",
	OpPutField:              "PUT_FIELD",
	OpInplacePutField:       "INPLACE_PUT_FIELD",
	OpCurrent:               "CURRENT",
	OpJump:                  "JUMP",
	OpJumpIfFalse:           "JUMP_IF_FALSE",
	OpJumpIfTrue:            "JUMP_IF_TRUE",
	OpJumpIfTrueOrPop:       "JUMP_IF_TRUE_OR_POP",
	OpJumpIfFalseOrPop:      "JUMP_IF_FALSE_OR_POP",
	OpJumpIfNotEqual:        "JUMP_IF_NOT_EQUAL",
	OpJumpIfNotValid:        "JUMP_IF_NOT_VALID",
	OpNext:                  "NEXT",
	OpEqual:                 "EQUAL",
	OpGreater:               "GREATER",
	OpLess:                  "LESS",
	OpNotEqual:              "NOT_EQUAL",
	OpNotGreater:            "NOT_GREATER",
	OpNotLess:               "NOT_LESS",
	OpBitwiseOr:             "BITWISE_OR",
	OpBitwiseXor:            "BITWISE_XOR",
	OpBitwiseAnd:            "BITWISE_AND",
	OpLeftShift:             "LEFT_SHIFT",
	OpRightShift:            "RIGHT_SHIFT",
	OpAdd:                   "ADD",
	OpSubtract:              "SUBTRACT",
	OpMultiply:              "MULTIPLY",
	OpDivide:                "DIVIDE",
	OpQuotient:              "QUOTIENT",
	OpRemainder:             "REMAINDER",
	OpNegate:                "NEGATE",
	OpNot:                   "NOT",
	OpBitwiseNot:            "BITWISE_NOT",
	OpIncrement:             "INCREMENT",
	OpDecrement:             "DECREMENT",
	OpCall:                  "CALL",
	OpLoadModule:            "LOAD_MODULE",
	OpReturn:                "RETURN",
	OpReturnNil:             "RETURN_NIL",
}

// String returns the opcode's mnemonic, used by the disassembler and
// by trace/log messages.
func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "UNKNOWN"
}

// hasByteOperand reports whether op is followed by a single-byte
// operand (constant/local/argument index, field index, small count).
func (op Opcode) hasByteOperand() bool {
	switch op {
	case OpConstant, OpArray, OpStruct, OpInstance, OpConstruct, OpClosure,
		OpUnpackArray, OpUnpackStruct, OpGlobal, OpNonlocal, OpLoad, OpStore,
		OpGetField, OpFetchField, OpPutField, OpInplacePutField, OpCall:
		return true
	}
	return false
}

// hasWordOperand reports whether op is followed by a little-endian
// 16-bit operand (an immediate integer or a jump offset).
func (op Opcode) hasWordOperand() bool {
	switch op {
	case OpInt, OpJump, OpJumpIfFalse, OpJumpIfTrue, OpJumpIfTrueOrPop,
		OpJumpIfFalseOrPop, OpJumpIfNotEqual, OpJumpIfNotValid:
		return true
	}
	return false
}
