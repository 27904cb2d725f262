// Package token defines the tagged tokens the lexer produces and the
// compiler consumes. This is the only contract between the two: given a
// source buffer, the lexer yields tokens {type, lexeme, line} and a
// terminal EOF/Error token.
package token

// Type identifies a lexical category.
type Type int

const (
	EOF Type = iota
	Error

	// Single-character punctuation.
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One or two character operators.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	Identifier
	String
	Number

	// Keywords.
	False
	Nil
	Print
	True
	Var
)

// Token is one lexeme: a type tag, the source slice it came from, and the
// line it started on. For an Error token, Lexeme carries the
// human-readable message instead of source text.
type Token struct {
	Type   Type
	Lexeme string
	Line   int
}
