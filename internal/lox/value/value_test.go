package value

import (
	"math"
	"testing"

	"github.com/re4388/craftinginterpreters-compiler/internal/lox/object"
)

func TestEqual(t *testing.T) {
	t.Run("NaN is never equal to itself", func(t *testing.T) {
		nan := NewNumber(math.NaN())
		if Equal(nan, nan) {
			t.Errorf("Equal(NaN, NaN) = true, want false")
		}
	})

	t.Run("numbers compare by value", func(t *testing.T) {
		if !Equal(NewNumber(1), NewNumber(1)) {
			t.Errorf("Equal(1, 1) = false, want true")
		}
		if Equal(NewNumber(1), NewNumber(2)) {
			t.Errorf("Equal(1, 2) = true, want false")
		}
	})

	t.Run("no coercion across types", func(t *testing.T) {
		heap := &object.Heap{}
		s := object.NewString(heap, []byte("1"), object.FNV1a([]byte("1")))
		if Equal(NewObj(s), NewNumber(1)) {
			t.Errorf(`Equal("1", 1) = true, want false`)
		}
	})

	t.Run("objects compare by reference identity", func(t *testing.T) {
		heap := &object.Heap{}
		a := object.NewString(heap, []byte("foo"), object.FNV1a([]byte("foo")))
		b := object.NewString(heap, []byte("foo"), object.FNV1a([]byte("foo")))
		if Equal(NewObj(a), NewObj(b)) {
			t.Errorf("two distinct (uninterned) String allocations compared equal")
		}
		if !Equal(NewObj(a), NewObj(a)) {
			t.Errorf("same reference did not compare equal to itself")
		}
	})

	t.Run("reflexive for non-NaN, symmetric, transitive", func(t *testing.T) {
		a, b, c := NewNumber(3), NewNumber(3), NewNumber(3)
		if !Equal(a, a) {
			t.Fatal("not reflexive")
		}
		if Equal(a, b) != Equal(b, a) {
			t.Fatal("not symmetric")
		}
		if Equal(a, b) && Equal(b, c) && !Equal(a, c) {
			t.Fatal("not transitive")
		}
	})
}

func TestIsFalsey(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", Nil(), true},
		{"false", NewBool(false), true},
		{"true", NewBool(true), false},
		{"zero is truthy", NewNumber(0), false},
		{"empty string is truthy", NewObj(object.NewString(&object.Heap{}, nil, object.FNV1a(nil))), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.IsFalsey(); got != tc.want {
				t.Errorf("IsFalsey() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStringPrinting(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"nil", Nil(), "nil"},
		{"true", NewBool(true), "true"},
		{"false", NewBool(false), "false"},
		{"integer-valued float", NewNumber(7), "7"},
		{"fractional float", NewNumber(1.5), "1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}
