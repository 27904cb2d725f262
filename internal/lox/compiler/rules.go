package compiler

import "github.com/re4388/craftinginterpreters-compiler/internal/lox/token"

// Precedence levels, lowest to highest. parsePrecedence treats its
// argument as a minimum: any infix rule at or above that level gets
// folded in.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

// parseFn is a prefix or infix handler. canAssign is threaded through so
// only expressions actually in assignment-target position accept a
// trailing `= expr`.
type parseFn func(p *parser, canAssign bool)

// rule is the per-token row of the Pratt table: what to do when the
// token starts an expression (prefix), what to do when it appears after
// one (infix), and how tightly infix binds.
type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules is a data-only Pratt table: one row per token type that plays a
// role in an expression. Token types absent here have the zero rule
// (no prefix, no infix, PrecNone), which is exactly "this token cannot
// start or extend an expression".
var rules = map[token.Type]rule{
	token.LeftParen:  {prefix: (*parser).grouping},
	token.Minus:      {prefix: (*parser).unary, infix: (*parser).binary, precedence: PrecTerm},
	token.Plus:       {infix: (*parser).binary, precedence: PrecTerm},
	token.Slash:      {infix: (*parser).binary, precedence: PrecFactor},
	token.Star:       {infix: (*parser).binary, precedence: PrecFactor},
	token.Bang:       {prefix: (*parser).unary},
	token.BangEqual:  {infix: (*parser).binary, precedence: PrecEquality},
	token.EqualEqual: {infix: (*parser).binary, precedence: PrecEquality},
	token.Greater:      {infix: (*parser).binary, precedence: PrecComparison},
	token.GreaterEqual: {infix: (*parser).binary, precedence: PrecComparison},
	token.Less:         {infix: (*parser).binary, precedence: PrecComparison},
	token.LessEqual:    {infix: (*parser).binary, precedence: PrecComparison},
	token.Identifier: {prefix: (*parser).variable},
	token.String:     {prefix: (*parser).str},
	token.Number:     {prefix: (*parser).number},
	token.False:      {prefix: (*parser).literal},
	token.True:       {prefix: (*parser).literal},
	token.Nil:        {prefix: (*parser).literal},
}

var zeroRule = rule{}

// ruleTable is rules, assigned in init: ruleFor cannot read rules
// directly, because the handlers in rules reach ruleFor and Go rejects
// that as an initialization cycle.
var ruleTable map[token.Type]rule

func init() { ruleTable = rules }

func ruleFor(t token.Type) rule {
	if r, ok := ruleTable[t]; ok {
		return r
	}
	return zeroRule
}
