// Package lexer implements the scanner external collaborator assumed by
// the compiler: given a source buffer, it produces tokens on demand and a
// terminal EOF/Error token once the source is exhausted.
package lexer

import (
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/token"
)

var keywords = map[string]token.Type{
	"false": token.False,
	"nil":   token.Nil,
	"print": token.Print,
	"true":  token.True,
	"var":   token.Var,
}

// Scanner produces a lazy token stream over a source buffer.
type Scanner struct {
	source  string
	start   int
	current int
	line    int
}

// New returns a scanner positioned at the start of source, line 1.
func New(source string) *Scanner {
	return &Scanner{source: source, line: 1}
}

// Scan returns the next token, or token.EOF forever once the source is
// exhausted. Lexical errors yield a token.Error whose Lexeme is a
// human-readable message.
func (s *Scanner) Scan() token.Token {
	s.skipWhitespace()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()

	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LeftParen)
	case ')':
		return s.make(token.RightParen)
	case '{':
		return s.make(token.LeftBrace)
	case '}':
		return s.make(token.RightBrace)
	case ',':
		return s.make(token.Comma)
	case '.':
		return s.make(token.Dot)
	case '-':
		return s.make(token.Minus)
	case '+':
		return s.make(token.Plus)
	case ';':
		return s.make(token.Semicolon)
	case '*':
		return s.make(token.Star)
	case '/':
		return s.make(token.Slash)
	case '!':
		return s.makeIf('=', token.BangEqual, token.Bang)
	case '=':
		return s.makeIf('=', token.EqualEqual, token.Equal)
	case '<':
		return s.makeIf('=', token.LessEqual, token.Less)
	case '>':
		return s.makeIf('=', token.GreaterEqual, token.Greater)
	case '"':
		return s.string()
	}

	return s.errorToken("Unexpected character.")
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.current]
	if t, ok := keywords[text]; ok {
		return s.make(t)
	}
	return s.make(token.Identifier)
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.Number)
}

func (s *Scanner) string() token.Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // closing quote
	return s.make(token.String)
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekAt(1) == '/' {
				for s.peek() != '\n' && !s.atEnd() {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.source) }

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte { return s.peekAt(1) }

func (s *Scanner) peekAt(offset int) byte {
	if s.current+offset >= len(s.source) {
		return 0
	}
	return s.source[s.current+offset]
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) makeIf(expected byte, ifMatched, otherwise token.Type) token.Token {
	if s.match(expected) {
		return s.make(ifMatched)
	}
	return s.make(otherwise)
}

func (s *Scanner) make(t token.Type) token.Token {
	return token.Token{Type: t, Lexeme: s.source[s.start:s.current], Line: s.line}
}

func (s *Scanner) errorToken(message string) token.Token {
	return token.Token{Type: token.Error, Lexeme: message, Line: s.line}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
