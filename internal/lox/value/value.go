// Package value implements Lox's Value model: a tagged union of nil,
// bool, number and heap-object-reference variants.
package value

import (
	"strconv"

	"github.com/re4388/craftinginterpreters-compiler/internal/lox/object"
)

// Kind discriminates the four Value variants.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is a small tagged union, copied by value the way the stack copies
// its slots. Only one of boolean/number/obj is meaningful, selected by
// kind.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	obj     object.Obj
}

// Nil returns the nil value.
func Nil() Value { return Value{kind: KindNil} }

// NewBool constructs a Bool value.
func NewBool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// NewNumber constructs a Number value.
func NewNumber(n float64) Value { return Value{kind: KindNumber, number: n} }

// NewObj constructs an Obj value wrapping a heap reference.
func NewObj(o object.Obj) Value { return Value{kind: KindObj, obj: o} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNil() bool   { return v.kind == KindNil }
func (v Value) IsBool() bool  { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObj() bool   { return v.kind == KindObj }

// IsString reports whether v holds a *object.String.
func (v Value) IsString() bool {
	if v.kind != KindObj {
		return false
	}
	_, ok := v.obj.(*object.String)
	return ok
}

// AsBool unwraps a Bool value. Callers must check IsBool first.
func (v Value) AsBool() bool { return v.boolean }

// AsNumber unwraps a Number value. Callers must check IsNumber first.
func (v Value) AsNumber() float64 { return v.number }

// AsObj unwraps an Obj value. Callers must check IsObj first.
func (v Value) AsObj() object.Obj { return v.obj }

// AsString unwraps a *object.String. Callers must check IsString first.
func (v Value) AsString() *object.String { return v.obj.(*object.String) }

// IsFalsey reports whether v is "falsey": nil or false. Everything else,
// including the number 0, is truthy.
func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.boolean)
}

// Equal implements Value equality: same variant, and numbers compare by
// IEEE-754 == (so NaN != NaN), bools/nil by variant, objects by reference
// identity. Interning makes reference identity equal content identity for
// strings.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber:
		return a.number == b.number
	case KindObj:
		return a.obj == b.obj
	default:
		return false
	}
}

// String renders v the way `print` does: nil/true/false literally,
// numbers with the shortest round-trippable representation, strings
// verbatim.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	case KindObj:
		if s, ok := v.obj.(*object.String); ok {
			return string(s.Chars)
		}
		return "<obj>"
	default:
		return ""
	}
}
