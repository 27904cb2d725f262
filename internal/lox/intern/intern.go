// Package intern canonicalises Lox strings so that identity equals
// content equality: every distinct byte sequence maps to exactly one
// *object.String, registered in a shared table.Table used as a set.
package intern

import (
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/object"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/table"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/value"
)

// CopyString returns the canonical String for chars, copying the bytes
// into a fresh buffer if this is the first time they've been seen. The
// caller retains ownership of chars.
func CopyString(heap *object.Heap, strings *table.Table, chars []byte) *object.String {
	hash := object.FNV1a(chars)
	if found := strings.FindString(chars, hash); found != nil {
		return found
	}

	buf := make([]byte, len(chars))
	copy(buf, chars)
	s := object.NewString(heap, buf, hash)
	strings.Set(s, value.Nil())
	return s
}

// TakeString returns the canonical String for chars, where the caller is
// handing over ownership of an already-heap-allocated buffer. On a hit,
// the caller's buffer becomes unreachable and is left for the garbage
// collector instead of being reused; on a miss, chars itself becomes the
// canonical backing array (no copy).
func TakeString(heap *object.Heap, strings *table.Table, chars []byte) *object.String {
	hash := object.FNV1a(chars)
	if found := strings.FindString(chars, hash); found != nil {
		return found
	}

	s := object.NewString(heap, chars, hash)
	strings.Set(s, value.Nil())
	return s
}
