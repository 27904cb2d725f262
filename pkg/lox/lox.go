// Package lox is the public facade over the internal compiler/VM triad:
// construct an Interpreter from a Config, then Run source or RunFile a
// path, and read back the CLI exit code spec.md §6 defines.
package lox

import (
	"fmt"
	"io"
	"os"

	"github.com/re4388/craftinginterpreters-compiler/internal/lox/vm"
)

// ExitCode mirrors the CLI exit-code contract from spec.md §6.
type ExitCode int

const (
	ExitOK           ExitCode = 0
	ExitUsage        ExitCode = 64
	ExitCompileError ExitCode = 65
	ExitRuntimeError ExitCode = 70
	ExitIOError      ExitCode = 74
)

// Interpreter owns one VM instance: its globals, string interner and
// object heap persist across Run calls until Close.
type Interpreter struct {
	vm     *vm.VM
	stderr io.Writer
}

// New validates cfg and builds an Interpreter around a fresh VM.
func New(cfg *Config) (*Interpreter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stdout := io.Writer(os.Stdout)
	stderr := io.Writer(os.Stderr)

	it := &Interpreter{
		vm: vm.New(
			vm.WithStackMax(cfg.StackSize),
			vm.WithInitialTableCapacity(cfg.TableSize),
			vm.WithStdout(stdout),
			vm.WithStderr(stderr),
			vm.WithTrace(cfg.Trace),
		),
		stderr: stderr,
	}
	return it, nil
}

// SetOutputs redirects stdout/stderr after construction (used by tests
// that capture output) without disturbing the VM's
// persistent globals, interned strings or object heap.
func (it *Interpreter) SetOutputs(stdout, stderr io.Writer) {
	it.vm.SetOutputs(stdout, stderr)
	it.stderr = stderr
}

// Run compiles and executes source against the Interpreter's persistent
// VM state (globals, interned strings, object heap all carry over).
func (it *Interpreter) Run(source string) ExitCode {
	switch it.vm.Interpret(source) {
	case vm.ResultOK:
		return ExitOK
	case vm.ResultCompileError:
		return ExitCompileError
	case vm.ResultRuntimeError:
		return ExitRuntimeError
	default:
		return ExitOK
	}
}

// LastChunkFingerprint returns a content fingerprint of the most
// recently compiled chunk, or "" before the first Run.
func (it *Interpreter) LastChunkFingerprint() string {
	return it.vm.Fingerprint()
}

// RunFile reads path and Runs it, reporting ExitIOError if the file
// can't be read.
func (it *Interpreter) RunFile(path string) ExitCode {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(it.stderr, "Could not read file \"%s\".\n", path)
		return ExitIOError
	}
	return it.Run(string(data))
}

// Close releases the VM's heap-object chain. The Interpreter must not be
// used afterward.
func (it *Interpreter) Close() {
	it.vm.Free()
}
