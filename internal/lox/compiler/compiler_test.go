package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/re4388/craftinginterpreters-compiler/internal/lox/chunk"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/object"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/table"
)

func compile(t *testing.T, source string) (*chunk.Chunk, bool, string) {
	t.Helper()
	c := chunk.New()
	heap := &object.Heap{}
	strs := table.New()
	var errOut bytes.Buffer
	ok := Compile(source, c, heap, strs, &errOut)
	return c, ok, errOut.String()
}

func TestCompileEmitsTrailingReturn(t *testing.T) {
	c, ok, _ := compile(t, "print 1;")
	if !ok {
		t.Fatal("expected successful compile")
	}
	if chunk.OpCode(c.Code[len(c.Code)-1]) != chunk.OpReturn {
		t.Fatalf("last opcode = %v, want OpReturn", c.Code[len(c.Code)-1])
	}
}

func TestMissingExpressionErrors(t *testing.T) {
	_, ok, errOut := compile(t, "print ;")
	if ok {
		t.Fatal("expected compile failure")
	}
	if !strings.Contains(errOut, "Expect expression.") {
		t.Fatalf("errOut = %q, missing expected message", errOut)
	}
}

func TestPanicModeSuppressesCascade(t *testing.T) {
	// Two consecutive malformed statements: without panic-mode recovery
	// this would report two (or more) errors for one root cause.
	_, ok, errOut := compile(t, "print ) + ;\nprint 1;")
	if ok {
		t.Fatal("expected compile failure")
	}
	if n := strings.Count(errOut, "Error"); n != 1 {
		t.Fatalf("got %d error lines, want exactly 1 (cascade should be suppressed):\n%s", n, errOut)
	}
}

func TestLineNumbersTrackTokens(t *testing.T) {
	c, ok, _ := compile(t, "print\n1\n+\n2;")
	if !ok {
		t.Fatal("expected successful compile")
	}
	// OP_CONSTANT for 1 is emitted while processing the token on line 2.
	foundLine2 := false
	for i, line := range c.Lines {
		if chunk.OpCode(c.Code[i]) == chunk.OpConstant && line == 2 {
			foundLine2 = true
		}
	}
	if !foundLine2 {
		t.Fatalf("no OP_CONSTANT attributed to line 2; Lines=%v", c.Lines)
	}
}

func TestTooManyConstants(t *testing.T) {
	var b strings.Builder
	b.WriteString("print 0")
	for i := 0; i < 300; i++ {
		b.WriteString(" + ")
		b.WriteString("1")
	}
	b.WriteString(";")

	_, ok, errOut := compile(t, b.String())
	if ok {
		t.Fatal("expected compile failure once the constant pool overflows")
	}
	if !strings.Contains(errOut, "Too many constants") {
		t.Fatalf("errOut = %q, missing expected message", errOut)
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	_, ok, errOut := compile(t, "1 + 2 = 3;")
	if ok {
		t.Fatal("expected compile failure")
	}
	if !strings.Contains(errOut, "Invalid assignment target.") {
		t.Fatalf("errOut = %q, missing expected message", errOut)
	}
}

func TestLocalSelfReferenceInInitializerErrors(t *testing.T) {
	_, ok, errOut := compile(t, "{ var a = a; }")
	if ok {
		t.Fatal("expected compile failure")
	}
	if !strings.Contains(errOut, "own initializer") {
		t.Fatalf("errOut = %q, missing expected message", errOut)
	}
}
