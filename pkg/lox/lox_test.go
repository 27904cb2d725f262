package lox

import (
	"bytes"
	"strings"
	"testing"
)

func newInterpreter(t *testing.T) (*Interpreter, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	it, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out, errOut bytes.Buffer
	it.SetOutputs(&out, &errOut)
	t.Cleanup(it.Close)
	return it, &out, &errOut
}

func TestRunExitCodes(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		it, out, _ := newInterpreter(t)
		if code := it.Run("print 1 + 1;"); code != ExitOK {
			t.Fatalf("code = %v, want ExitOK", code)
		}
		if strings.TrimSpace(out.String()) != "2" {
			t.Fatalf("out = %q", out.String())
		}
	})

	t.Run("compile error", func(t *testing.T) {
		it, _, _ := newInterpreter(t)
		if code := it.Run("print ;"); code != ExitCompileError {
			t.Fatalf("code = %v, want ExitCompileError", code)
		}
	})

	t.Run("runtime error", func(t *testing.T) {
		it, _, errOut := newInterpreter(t)
		if code := it.Run("print -true;"); code != ExitRuntimeError {
			t.Fatalf("code = %v, want ExitRuntimeError", code)
		}
		if !strings.Contains(errOut.String(), "[line 1] in script") {
			t.Fatalf("errOut = %q", errOut.String())
		}
	})
}

func TestRunFileMissing(t *testing.T) {
	it, _, _ := newInterpreter(t)
	if code := it.RunFile("/nonexistent/path/does-not-exist.lox"); code != ExitIOError {
		t.Fatalf("code = %v, want ExitIOError", code)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (&Config{StackSize: 0}).Validate(); err == nil {
		t.Fatal("expected error for non-positive stack size")
	}
	if err := (&Config{StackSize: 256, TableSize: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative table size")
	}
}

func TestLoadConfigFileMissingIsNotAnError(t *testing.T) {
	cfg, err := LoadConfigFile("/nonexistent/.loxvm.json")
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.StackSize != DefaultConfig().StackSize {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}
