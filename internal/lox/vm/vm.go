// Package vm implements the stack-based dispatch loop: it decodes a
// compiled chunk.Chunk and executes it against a fixed-size value stack,
// orchestrating the globals and interned-string tables shared with the
// compiler.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/re4388/craftinginterpreters-compiler/internal/lox/chunk"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/compiler"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/debug"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/intern"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/object"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/table"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/value"
)

// Result is the outcome of one Interpret call.
type Result int

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

// DefaultStackMax is the default value-stack capacity in slots.
const DefaultStackMax = 256

// DefaultTableCapacity is the default starting capacity of the globals
// and string-intern tables.
const DefaultTableCapacity = 8

// VM is the runtime. The interner and globals tables live inside it and
// outlive individual Interpret calls; heap objects (Strings) persist
// across calls via those tables until Free walks the object chain.
type VM struct {
	chunk *chunk.Chunk
	ip    int

	stack    []value.Value
	stackMax int

	heap          *object.Heap
	tableCapacity int
	strings       *table.Table
	globals       *table.Table

	stdout io.Writer
	stderr io.Writer
	trace  bool
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithStackMax overrides the default value-stack capacity.
func WithStackMax(n int) Option { return func(vm *VM) { vm.stackMax = n } }

// WithInitialTableCapacity overrides the starting capacity of the
// globals and string-intern tables (rounded up to a power of two by
// table.NewWithCapacity). It only affects how soon the first resize
// happens; behavior is identical either way.
func WithInitialTableCapacity(n int) Option { return func(vm *VM) { vm.tableCapacity = n } }

// WithStdout redirects `print` output.
func WithStdout(w io.Writer) Option { return func(vm *VM) { vm.stdout = w } }

// WithStderr redirects compile/runtime error reporting.
func WithStderr(w io.Writer) Option { return func(vm *VM) { vm.stderr = w } }

// WithTrace enables per-instruction disassembly to stderr before each
// instruction executes.
func WithTrace(on bool) Option { return func(vm *VM) { vm.trace = on } }

// New zeroes a fresh VM and initializes its tables and object chain, the
// moral equivalent of initVM.
func New(opts ...Option) *VM {
	vm := &VM{
		stackMax:      DefaultStackMax,
		tableCapacity: DefaultTableCapacity,
		heap:          &object.Heap{},
		stdout:        os.Stdout,
		stderr:        os.Stderr,
	}
	for _, opt := range opts {
		opt(vm)
	}
	vm.strings = table.NewWithCapacity(vm.tableCapacity)
	vm.globals = table.NewWithCapacity(vm.tableCapacity)
	vm.stack = make([]value.Value, 0, vm.stackMax)
	return vm
}

// Free walks the object chain, releasing every heap object. Call once at
// shutdown; the VM must not be used afterward.
func (vm *VM) Free() {
	vm.heap.Free()
}

// SetOutputs redirects stdout/stderr on a live VM without disturbing its
// globals, interned strings or object heap.
func (vm *VM) SetOutputs(stdout, stderr io.Writer) {
	vm.stdout = stdout
	vm.stderr = stderr
}

// Fingerprint returns a content fingerprint of the most recently compiled
// chunk, or "" if nothing has been interpreted yet. It has no bearing on
// execution; the REPL's -fingerprint flag uses it so two sessions can
// confirm they compiled the same thing without diffing bytecode by hand.
func (vm *VM) Fingerprint() string {
	if vm.chunk == nil {
		return ""
	}
	return debug.Fingerprint(vm.chunk)
}

// Interpret compiles source into a fresh chunk and, if compilation
// succeeds, executes it to completion or error. Each call gets its own
// chunk; the globals, strings and object heap persist across calls.
func (vm *VM) Interpret(source string) Result {
	c := chunk.New()

	if ok := compiler.Compile(source, c, vm.heap, vm.strings, vm.stderr); !ok {
		return ResultCompileError
	}

	vm.chunk = c
	vm.ip = 0
	vm.resetStack()

	return vm.run()
}

func (vm *VM) resetStack() { vm.stack = vm.stack[:0] }

func (vm *VM) push(v value.Value) bool {
	if len(vm.stack) >= vm.stackMax {
		return false
	}
	vm.stack = append(vm.stack, v)
	return true
}

func (vm *VM) pop() value.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readConstant() value.Value {
	return vm.chunk.Constants[vm.readByte()]
}

// run is the decode-execute loop. ip always points to the next byte to
// decode; runtime errors report the line of the instruction just
// consumed (ip-1).
func (vm *VM) run() Result {
	for {
		if vm.trace {
			debug.DisassembleInstruction(vm.stderr, vm.chunk, vm.ip)
		}

		switch op := chunk.OpCode(vm.readByte()); op {
		case chunk.OpConstant:
			if !vm.push(vm.readConstant()) {
				return vm.runtimeError("Stack overflow.")
			}

		case chunk.OpNil:
			if !vm.push(value.Nil()) {
				return vm.runtimeError("Stack overflow.")
			}
		case chunk.OpTrue:
			if !vm.push(value.NewBool(true)) {
				return vm.runtimeError("Stack overflow.")
			}
		case chunk.OpFalse:
			if !vm.push(value.NewBool(false)) {
				return vm.runtimeError("Stack overflow.")
			}

		case chunk.OpPop:
			vm.pop()
		case chunk.OpPopN:
			n := int(vm.readByte())
			vm.stack = vm.stack[:len(vm.stack)-n]

		case chunk.OpGetLocal:
			slot := int(vm.readByte())
			if !vm.push(vm.stack[slot]) {
				return vm.runtimeError("Stack overflow.")
			}
		case chunk.OpSetLocal:
			slot := int(vm.readByte())
			vm.stack[slot] = vm.peek(0)

		case chunk.OpGetGlobal:
			name := vm.readConstant().AsString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError(fmt.Sprintf("Undefined variable '%s'.", name.Chars))
			}
			if !vm.push(v) {
				return vm.runtimeError("Stack overflow.")
			}
		case chunk.OpDefineGlobal:
			name := vm.readConstant().AsString()
			vm.globals.Set(name, vm.pop())
		case chunk.OpSetGlobal:
			name := vm.readConstant().AsString()
			if isNew := vm.globals.Set(name, vm.peek(0)); isNew {
				vm.globals.Delete(name)
				return vm.runtimeError(fmt.Sprintf("Undefined variable '%s'.", name.Chars))
			}

		case chunk.OpEqual:
			b, a := vm.pop(), vm.pop()
			if !vm.push(value.NewBool(value.Equal(a, b))) {
				return vm.runtimeError("Stack overflow.")
			}

		case chunk.OpGreater, chunk.OpLess:
			if res, ok := vm.numericCompare(op); ok {
				if !vm.push(res) {
					return vm.runtimeError("Stack overflow.")
				}
			} else {
				return vm.runtimeError("Operands must be numbers.")
			}

		case chunk.OpAdd:
			if res, ok := vm.add(); ok {
				if !vm.push(res) {
					return vm.runtimeError("Stack overflow.")
				}
			} else {
				return vm.runtimeError("Operands must be two numbers or two strings.")
			}

		case chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide:
			if res, ok := vm.arithmetic(op); ok {
				if !vm.push(res) {
					return vm.runtimeError("Stack overflow.")
				}
			} else {
				return vm.runtimeError("Operands must be numbers.")
			}

		case chunk.OpNot:
			v := vm.pop()
			if !vm.push(value.NewBool(v.IsFalsey())) {
				return vm.runtimeError("Stack overflow.")
			}

		case chunk.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			v := vm.pop()
			if !vm.push(value.NewNumber(-v.AsNumber())) {
				return vm.runtimeError("Stack overflow.")
			}

		case chunk.OpPrint:
			fmt.Fprintln(vm.stdout, vm.pop().String())

		case chunk.OpReturn:
			return ResultOK

		default:
			return vm.runtimeError(fmt.Sprintf("Unknown opcode %d.", op))
		}
	}
}

func (vm *VM) numericCompare(op chunk.OpCode) (value.Value, bool) {
	if len(vm.stack) < 2 || !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return value.Value{}, false
	}
	b, a := vm.pop(), vm.pop()
	if op == chunk.OpGreater {
		return value.NewBool(a.AsNumber() > b.AsNumber()), true
	}
	return value.NewBool(a.AsNumber() < b.AsNumber()), true
}

func (vm *VM) arithmetic(op chunk.OpCode) (value.Value, bool) {
	if len(vm.stack) < 2 || !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return value.Value{}, false
	}
	b, a := vm.pop(), vm.pop()
	switch op {
	case chunk.OpSubtract:
		return value.NewNumber(a.AsNumber() - b.AsNumber()), true
	case chunk.OpMultiply:
		return value.NewNumber(a.AsNumber() * b.AsNumber()), true
	case chunk.OpDivide:
		return value.NewNumber(a.AsNumber() / b.AsNumber()), true
	default:
		return value.Value{}, false
	}
}

// add implements OP_ADD's dual numeric/string behaviour. String
// concatenation interns the result, so `"foo"+"bar" == "foobar"` holds by
// reference identity.
func (vm *VM) add() (value.Value, bool) {
	if len(vm.stack) < 2 {
		return value.Value{}, false
	}
	if vm.peek(0).IsNumber() && vm.peek(1).IsNumber() {
		b, a := vm.pop(), vm.pop()
		return value.NewNumber(a.AsNumber() + b.AsNumber()), true
	}
	if vm.peek(0).IsString() && vm.peek(1).IsString() {
		b, a := vm.pop(), vm.pop()
		concatenated := append(append([]byte{}, a.AsString().Chars...), b.AsString().Chars...)
		s := intern.TakeString(vm.heap, vm.strings, concatenated)
		return value.NewObj(s), true
	}
	return value.Value{}, false
}

func (vm *VM) runtimeError(message string) Result {
	line := 0
	if vm.ip-1 >= 0 && vm.ip-1 < len(vm.chunk.Lines) {
		line = vm.chunk.Lines[vm.ip-1]
	}
	fmt.Fprintf(vm.stderr, "%s\n[line %d] in script\n", message, line)
	vm.resetStack()
	return ResultRuntimeError
}
