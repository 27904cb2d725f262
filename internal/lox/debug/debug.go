// Package debug holds the peripheral tooling spec.md treats as an
// external collaborator: a minimal instruction disassembler for the
// VM's `-trace` mode, and a chunk fingerprint used to compare two
// compilations of the same source without diffing raw bytecode by hand.
package debug

import (
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/sha3"

	"github.com/re4388/craftinginterpreters-compiler/internal/lox/chunk"
)

// DisassembleInstruction writes a one-line human-readable rendering of
// the instruction at offset to w, and returns the offset of the next
// instruction.
func DisassembleInstruction(w io.Writer, c *chunk.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := chunk.OpCode(c.Code[offset])
	switch op {
	case chunk.OpConstant, chunk.OpDefineGlobal, chunk.OpGetGlobal, chunk.OpSetGlobal:
		return constantInstruction(w, opName(op), c, offset)
	case chunk.OpGetLocal, chunk.OpSetLocal, chunk.OpPopN:
		return byteInstruction(w, opName(op), c, offset)
	default:
		fmt.Fprintln(w, opName(op))
		return offset + 1
	}
}

// Disassemble writes every instruction in c to w under the given name,
// clox-style.
func Disassemble(w io.Writer, c *chunk.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = DisassembleInstruction(w, c, offset)
	}
}

func constantInstruction(w io.Writer, name string, c *chunk.Chunk, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", name, idx, c.Constants[idx].String())
	return offset + 2
}

func byteInstruction(w io.Writer, name string, c *chunk.Chunk, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", name, slot)
	return offset + 2
}

func opName(op chunk.OpCode) string {
	switch op {
	case chunk.OpConstant:
		return "OP_CONSTANT"
	case chunk.OpNil:
		return "OP_NIL"
	case chunk.OpTrue:
		return "OP_TRUE"
	case chunk.OpFalse:
		return "OP_FALSE"
	case chunk.OpPop:
		return "OP_POP"
	case chunk.OpPopN:
		return "OP_POPN"
	case chunk.OpGetLocal:
		return "OP_GET_LOCAL"
	case chunk.OpSetLocal:
		return "OP_SET_LOCAL"
	case chunk.OpGetGlobal:
		return "OP_GET_GLOBAL"
	case chunk.OpDefineGlobal:
		return "OP_DEFINE_GLOBAL"
	case chunk.OpSetGlobal:
		return "OP_SET_GLOBAL"
	case chunk.OpEqual:
		return "OP_EQUAL"
	case chunk.OpGreater:
		return "OP_GREATER"
	case chunk.OpLess:
		return "OP_LESS"
	case chunk.OpAdd:
		return "OP_ADD"
	case chunk.OpSubtract:
		return "OP_SUBTRACT"
	case chunk.OpMultiply:
		return "OP_MULTIPLY"
	case chunk.OpDivide:
		return "OP_DIVIDE"
	case chunk.OpNot:
		return "OP_NOT"
	case chunk.OpNegate:
		return "OP_NEGATE"
	case chunk.OpPrint:
		return "OP_PRINT"
	case chunk.OpReturn:
		return "OP_RETURN"
	default:
		return "OP_UNKNOWN"
	}
}

// Fingerprint returns a SHA3-256 hex digest over a chunk's code and
// constant-pool string representations. It has no bearing on execution;
// it only lets two REPL runs of the same source be compared without
// diffing bytecode by hand.
func Fingerprint(c *chunk.Chunk) string {
	h := sha3.New256()
	h.Write(c.Code)
	for _, v := range c.Constants {
		io.WriteString(h, v.String())
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
