// Package object implements the VM's heap objects: a discriminated record
// with a type tag, tracked in an intrusive singly-linked chain owned by a
// Heap so the whole chain can be walked and released at VM shutdown.
package object

// Kind discriminates concrete heap object variants. String is the only
// variant today; new variants are added here as the language grows.
type Kind uint8

const (
	KindString Kind = iota
)

// Obj is a heap-allocated Lox value. Every concrete implementation embeds
// header, which carries the chain link a Heap uses to track it.
type Obj interface {
	Kind() Kind

	objNext() Obj
	setObjNext(Obj)
}

// header supplies the chain-link plumbing every Obj implementation needs.
// It is not itself an Obj; concrete types embed it and implement Kind().
type header struct {
	next Obj
}

func (h *header) objNext() Obj     { return h.next }
func (h *header) setObjNext(o Obj) { h.next = o }

// String is the sole concrete Obj variant: an interned, immutable byte
// sequence. Hash is FNV-1a over Chars, precomputed once at creation so
// every subsequent table probe is a cheap comparison.
type String struct {
	header
	Chars []byte
	Hash  uint32
}

func (s *String) Kind() Kind { return KindString }

// Heap is the VM's object registry: every object allocated through it is
// reachable from head until Free walks and releases the whole chain.
// Go's garbage collector reclaims the underlying memory; Free exists to
// make the chain's "no leaks after teardown" contract observable and
// testable, matching the intrusive-list invariant in the reference design.
type Heap struct {
	head  Obj
	count int
}

// track prepends o to the chain. Every constructor in this package (and
// the intern package, which builds Strings) must route through it so the
// "every heap object is reachable from the chain exactly once" invariant
// holds from creation to teardown.
func (h *Heap) track(o Obj) Obj {
	o.setObjNext(h.head)
	h.head = o
	h.count++
	return o
}

// NewString allocates a String with a precomputed hash and registers it
// in the chain. Callers that need interning should go through
// internal/lox/intern instead of calling this directly.
func NewString(h *Heap, chars []byte, hash uint32) *String {
	s := &String{Chars: chars, Hash: hash}
	h.track(s)
	return s
}

// Count returns the number of objects currently registered in the chain.
func (h *Heap) Count() int { return h.count }

// Free walks the chain, snapping every link, and resets the heap to
// empty. Called once at VM teardown.
func (h *Heap) Free() {
	for o := h.head; o != nil; {
		n := o.objNext()
		o.setObjNext(nil)
		o = n
	}
	h.head = nil
	h.count = 0
}

// FNV1a hashes chars with 32-bit FNV-1a: initial offset 2166136261, then
// for each byte hash = (hash XOR byte) * 16777619, all in 32-bit wrapping
// arithmetic.
func FNV1a(chars []byte) uint32 {
	var hash uint32 = 2166136261
	for _, b := range chars {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return hash
}
