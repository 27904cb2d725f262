// Package compiler implements the single-pass Pratt-parser front end: it
// consumes the lexer's token stream and emits a chunk.Chunk, sharing the
// VM's heap and string interner so that literal strings and identifier
// names compiled now are the same objects the VM looks up later.
package compiler

import (
	"fmt"
	"io"
	"strconv"

	"github.com/re4388/craftinginterpreters-compiler/internal/lox/chunk"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/intern"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/lexer"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/object"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/table"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/token"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/value"
)

// maxLocals bounds the number of locals in scope at once, across all
// enclosing blocks: OpGetLocal and
// OpSetLocal address a stack slot with a single byte operand.
const maxLocals = 256

type local struct {
	name  string
	depth int // -1 while the initializer is still being compiled
}

// parser holds the single-pass compiler's flat state: the scanner, the
// lookahead pair, error-recovery flags, the chunk under construction, and
// the locals currently in scope.
type parser struct {
	scanner *lexer.Scanner
	current token.Token
	previous token.Token

	hadError  bool
	panicMode bool

	chunk   *chunk.Chunk
	heap    *object.Heap
	strings *table.Table
	errOut  io.Writer

	locals     []local
	scopeDepth int
}

// Compile parses source to completion and emits into c. It returns false
// if any compile error occurred (hadError); the driver must then discard
// c rather than execute it. Literal strings and identifier names are
// interned through heap/strings so that the VM's lookups later see the
// exact same *object.String references.
func Compile(source string, c *chunk.Chunk, heap *object.Heap, strings *table.Table, errOut io.Writer) bool {
	p := &parser{
		scanner: lexer.New(source),
		chunk:   c,
		heap:    heap,
		strings: strings,
		errOut:  errOut,
	}

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	p.emitOp(chunk.OpReturn)

	return !p.hadError
}

// --- token stream plumbing -------------------------------------------------

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanner.Scan()
		if p.current.Type != token.Error {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) check(t token.Type) bool { return p.current.Type == t }

func (p *parser) match(t token.Type) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(t token.Type, message string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

// --- error reporting and panic-mode recovery -------------------------------

func (p *parser) errorAtCurrent(message string) { p.errorAt(p.current, message) }
func (p *parser) error(message string)          { p.errorAt(p.previous, message) }

func (p *parser) errorAt(t token.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	if t.Type == token.EOF {
		fmt.Fprintf(p.errOut, "[line %d] Error at end: %s\n", t.Line, message)
	} else if t.Type == token.Error {
		fmt.Fprintf(p.errOut, "[line %d] Error: %s\n", t.Line, message)
	} else {
		fmt.Fprintf(p.errOut, "[line %d] Error at '%s': %s\n", t.Line, t.Lexeme, message)
	}
}

// synchronize discards tokens until it reaches a likely statement
// boundary, so one error doesn't cascade into a wall of spurious ones.
func (p *parser) synchronize() {
	p.panicMode = false

	for p.current.Type != token.EOF {
		if p.previous.Type == token.Semicolon {
			return
		}
		switch p.current.Type {
		case token.Var, token.Print, token.LeftBrace:
			return
		}
		p.advance()
	}
}

// --- emission ---------------------------------------------------------------

func (p *parser) emitByte(b byte)        { p.chunk.Write(b, p.previous.Line) }
func (p *parser) emitOp(op chunk.OpCode) { p.chunk.WriteOp(op, p.previous.Line) }

func (p *parser) emitOps(ops ...chunk.OpCode) {
	for _, op := range ops {
		p.emitOp(op)
	}
}

func (p *parser) emitConstant(v value.Value) {
	idx, err := p.chunk.AddConstant(v)
	if err != nil {
		p.error(err.Error())
		return
	}
	p.emitOp(chunk.OpConstant)
	p.emitByte(byte(idx))
}

// --- declarations and statements --------------------------------------------

func (p *parser) declaration() {
	switch {
	case p.match(token.Var):
		p.varDeclaration()
	default:
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(token.Equal) {
		p.expression()
	} else {
		p.emitOp(chunk.OpNil)
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")

	p.defineVariable(global)
}

func (p *parser) statement() {
	switch {
	case p.match(token.Print):
		p.printStatement()
	case p.match(token.LeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

// printStatement follows the grammar, not the emission comment the
// source it's derived from disagreed with it on: expression, semicolon,
// then OpPrint.
func (p *parser) printStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after value.")
	p.emitOp(chunk.OpPrint)
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	p.emitOp(chunk.OpPop)
}

func (p *parser) block() {
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RightBrace, "Expect '}' after block.")
}

func (p *parser) beginScope() { p.scopeDepth++ }

func (p *parser) endScope() {
	p.scopeDepth--

	popped := 0
	for len(p.locals) > 0 && p.locals[len(p.locals)-1].depth > p.scopeDepth {
		p.locals = p.locals[:len(p.locals)-1]
		popped++
	}
	switch popped {
	case 0:
	case 1:
		p.emitOp(chunk.OpPop)
	default:
		p.emitOp(chunk.OpPopN)
		p.emitByte(byte(popped))
	}
}

func (p *parser) expression() { p.parsePrecedence(PrecAssignment) }

// --- variables ---------------------------------------------------------------

// parseVariable consumes an identifier and, for globals, interns its name
// as a chunk constant; it returns the constant index (meaningless for
// locals, where it returns 0).
func (p *parser) parseVariable(errMessage string) int {
	p.consume(token.Identifier, errMessage)

	p.declareVariable()
	if p.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous.Lexeme)
}

func (p *parser) identifierConstant(name string) int {
	s := intern.CopyString(p.heap, p.strings, []byte(name))
	idx, err := p.chunk.AddConstant(value.NewObj(s))
	if err != nil {
		p.error(err.Error())
		return 0
	}
	return idx
}

func (p *parser) declareVariable() {
	if p.scopeDepth == 0 {
		return
	}
	name := p.previous.Lexeme

	for i := len(p.locals) - 1; i >= 0; i-- {
		l := p.locals[i]
		if l.depth != -1 && l.depth < p.scopeDepth {
			break
		}
		if l.name == name {
			p.error("Already a variable with this name in this scope.")
		}
	}

	p.addLocal(name)
}

func (p *parser) addLocal(name string) {
	if len(p.locals) >= maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	p.locals = append(p.locals, local{name: name, depth: -1})
}

func (p *parser) defineVariable(global int) {
	if p.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitOp(chunk.OpDefineGlobal)
	p.emitByte(byte(global))
}

func (p *parser) markInitialized() {
	p.locals[len(p.locals)-1].depth = p.scopeDepth
}

func (p *parser) resolveLocal(name string) int {
	for i := len(p.locals) - 1; i >= 0; i-- {
		if p.locals[i].name == name {
			if p.locals[i].depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (p *parser) variable(canAssign bool) { p.namedVariable(p.previous.Lexeme, canAssign) }

func (p *parser) namedVariable(name string, canAssign bool) {
	var getOp, setOp chunk.OpCode
	slot := p.resolveLocal(name)
	if slot != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else {
		slot = p.identifierConstant(name)
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && p.match(token.Equal) {
		p.expression()
		p.emitOp(setOp)
		p.emitByte(byte(slot))
	} else {
		p.emitOp(getOp)
		p.emitByte(byte(slot))
	}
}

// --- expressions --------------------------------------------------------------

// parsePrecedence is the Pratt-parser core: run the prefix rule for the
// token it advances onto, then keep folding in infix rules whose
// precedence is at least minPrec. Binary rules recurse at
// rule.precedence+1, so equal-precedence operators associate left:
// `1+2+3` parses as `(1+2)+3`.
func (p *parser) parsePrecedence(minPrec Precedence) {
	p.advance()
	prefix := ruleFor(p.previous.Type).prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}

	canAssign := minPrec <= PrecAssignment
	prefix(p, canAssign)

	for minPrec <= ruleFor(p.current.Type).precedence {
		p.advance()
		infix := ruleFor(p.previous.Type).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(token.Equal) {
		p.error("Invalid assignment target.")
	}
}

func (p *parser) number(_ bool) {
	n, err := strconv.ParseFloat(p.previous.Lexeme, 64)
	if err != nil {
		p.error("Invalid number literal.")
		return
	}
	p.emitConstant(value.NewNumber(n))
}

func (p *parser) literal(_ bool) {
	switch p.previous.Type {
	case token.False:
		p.emitOp(chunk.OpFalse)
	case token.True:
		p.emitOp(chunk.OpTrue)
	case token.Nil:
		p.emitOp(chunk.OpNil)
	}
}

func (p *parser) str(_ bool) {
	// Strip the surrounding quotes.
	lexeme := p.previous.Lexeme
	raw := lexeme[1 : len(lexeme)-1]
	s := intern.CopyString(p.heap, p.strings, []byte(raw))
	p.emitConstant(value.NewObj(s))
}

func (p *parser) grouping(_ bool) {
	p.expression()
	p.consume(token.RightParen, "Expect ')' after expression.")
}

func (p *parser) unary(_ bool) {
	opType := p.previous.Type
	p.parsePrecedence(PrecUnary)

	switch opType {
	case token.Bang:
		p.emitOp(chunk.OpNot)
	case token.Minus:
		p.emitOp(chunk.OpNegate)
	}
}

func (p *parser) binary(_ bool) {
	opType := p.previous.Type
	rule := ruleFor(opType)
	p.parsePrecedence(rule.precedence + 1)

	switch opType {
	case token.Plus:
		p.emitOp(chunk.OpAdd)
	case token.Minus:
		p.emitOp(chunk.OpSubtract)
	case token.Star:
		p.emitOp(chunk.OpMultiply)
	case token.Slash:
		p.emitOp(chunk.OpDivide)
	case token.EqualEqual:
		p.emitOp(chunk.OpEqual)
	case token.BangEqual:
		p.emitOps(chunk.OpEqual, chunk.OpNot)
	case token.Greater:
		p.emitOp(chunk.OpGreater)
	case token.GreaterEqual:
		p.emitOps(chunk.OpLess, chunk.OpNot)
	case token.Less:
		p.emitOp(chunk.OpLess)
	case token.LessEqual:
		p.emitOps(chunk.OpGreater, chunk.OpNot)
	}
}
