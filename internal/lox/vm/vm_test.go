package vm

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, source string) (stdout, stderr string, result Result) {
	t.Helper()
	var out, errOut bytes.Buffer
	v := New(WithStdout(&out), WithStderr(&errOut))
	result = v.Interpret(source)
	return out.String(), errOut.String(), result
}

// TestConcreteScenarios exercises spec.md §8's named scenarios verbatim.
func TestConcreteScenarios(t *testing.T) {
	t.Run("arithmetic precedence", func(t *testing.T) {
		out, _, res := run(t, "print 1 + 2 * 3;")
		if res != ResultOK || strings.TrimSpace(out) != "7" {
			t.Fatalf("got (%q, %v), want (\"7\", ResultOK)", out, res)
		}
	})

	t.Run("left associativity", func(t *testing.T) {
		out, _, res := run(t, "print 10 - 3 - 2;")
		if res != ResultOK || strings.TrimSpace(out) != "5" {
			t.Fatalf("got (%q, %v), want (\"5\", ResultOK)", out, res)
		}
	})

	t.Run("string concatenation and interning", func(t *testing.T) {
		out, _, res := run(t, `print "foo" + "bar" == "foobar";`)
		if res != ResultOK || strings.TrimSpace(out) != "true" {
			t.Fatalf("got (%q, %v), want (\"true\", ResultOK)", out, res)
		}
	})

	t.Run("bang nil", func(t *testing.T) {
		out, _, res := run(t, "print !nil;")
		if res != ResultOK || strings.TrimSpace(out) != "true" {
			t.Fatalf("got (%q, %v), want (\"true\", ResultOK)", out, res)
		}
	})

	t.Run("zero is truthy", func(t *testing.T) {
		out, _, res := run(t, "print !!0;")
		if res != ResultOK || strings.TrimSpace(out) != "true" {
			t.Fatalf("got (%q, %v), want (\"true\", ResultOK)", out, res)
		}
	})

	t.Run("no coercion across types", func(t *testing.T) {
		out, _, res := run(t, `print "1" == 1;`)
		if res != ResultOK || strings.TrimSpace(out) != "false" {
			t.Fatalf("got (%q, %v), want (\"false\", ResultOK)", out, res)
		}
	})

	t.Run("runtime type error", func(t *testing.T) {
		_, errOut, res := run(t, "print -true;")
		if res != ResultRuntimeError {
			t.Fatalf("result = %v, want ResultRuntimeError", res)
		}
		if !strings.Contains(errOut, "Operands must be numbers.") {
			t.Fatalf("stderr = %q, missing expected message", errOut)
		}
		if !strings.Contains(errOut, "[line 1] in script") {
			t.Fatalf("stderr = %q, missing line annotation", errOut)
		}
	})
}

func TestGlobalsPersistAcrossInterpretCalls(t *testing.T) {
	var out bytes.Buffer
	v := New(WithStdout(&out))

	if res := v.Interpret("var x = 1;"); res != ResultOK {
		t.Fatalf("define: result = %v", res)
	}
	if res := v.Interpret("x = x + 1; print x;"); res != ResultOK {
		t.Fatalf("use: result = %v", res)
	}
	if strings.TrimSpace(out.String()) != "2" {
		t.Fatalf("out = %q, want \"2\"", out.String())
	}
}

func TestUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, errOut, res := run(t, "print undefinedThing;")
	if res != ResultRuntimeError {
		t.Fatalf("result = %v, want ResultRuntimeError", res)
	}
	if !strings.Contains(errOut, "Undefined variable 'undefinedThing'.") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestBlockScopedLocals(t *testing.T) {
	out, _, res := run(t, `
		var a = "outer";
		{
			var a = "inner";
			print a;
		}
		print a;
	`)
	if res != ResultOK {
		t.Fatalf("result = %v", res)
	}
	lines := strings.Fields(out)
	if len(lines) != 2 || lines[0] != "inner" || lines[1] != "outer" {
		t.Fatalf("out = %q, want inner/outer shadowing", out)
	}
}

func TestCompileErrorLeavesVMUsable(t *testing.T) {
	var out bytes.Buffer
	v := New(WithStdout(&out))

	if res := v.Interpret("print ;"); res != ResultCompileError {
		t.Fatalf("result = %v, want ResultCompileError", res)
	}
	if res := v.Interpret("print 1;"); res != ResultOK {
		t.Fatalf("result after a compile error = %v, want ResultOK", res)
	}
	if strings.TrimSpace(out.String()) != "1" {
		t.Fatalf("out = %q, want \"1\"", out.String())
	}
}

func TestInitialTableCapacityOptionSizesGlobalsAndStrings(t *testing.T) {
	v := New(WithInitialTableCapacity(64))
	if got := v.globals.Cap(); got < 64 {
		t.Fatalf("globals table capacity = %d, want >= 64", got)
	}
	if got := v.strings.Cap(); got < 64 {
		t.Fatalf("strings table capacity = %d, want >= 64", got)
	}
}

func TestDivisionByZeroProducesInfinity(t *testing.T) {
	out, _, res := run(t, "print 1 / 0;")
	if res != ResultOK {
		t.Fatalf("result = %v, want ResultOK (division by zero is not an error)", res)
	}
	if strings.TrimSpace(out) != "+Inf" {
		t.Fatalf("out = %q, want \"+Inf\"", out)
	}
}
