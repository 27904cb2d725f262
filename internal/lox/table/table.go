// Package table implements the VM's open-addressed, linear-probing hash
// table keyed by interned-string identity. It backs both the global
// variable table and the string interner's set, and is tombstone-aware so
// deletions don't break probe chains.
package table

import (
	"bytes"

	"github.com/re4388/craftinginterpreters-compiler/internal/lox/object"
	"github.com/re4388/craftinginterpreters-compiler/internal/lox/value"
)

type state uint8

const (
	stateEmpty state = iota
	stateLive
	stateTombstone
)

type entry struct {
	key   *object.String
	val   value.Value
	state state
}

const (
	initialCapacity = 8
	maxLoad         = 0.75
)

// Table is an open-addressed hash table. The zero value is an empty table
// ready to use; its first Set triggers the initial allocation.
type Table struct {
	count   int // live entries + tombstones
	entries []entry
}

// New returns an empty table; its first Set triggers the initial
// allocation at the default capacity.
func New() *Table { return &Table{} }

// NewWithCapacity returns an empty table preallocated to hold at least n
// buckets (rounded up to a power of two, floored at the default initial
// capacity), so the first n*maxLoad inserts don't trigger a resize. n <= 0
// behaves exactly like New: lazy allocation on first Set.
func NewWithCapacity(n int) *Table {
	if n <= 0 {
		return &Table{}
	}
	cap := nextPowerOfTwo(n)
	if cap < initialCapacity {
		cap = initialCapacity
	}
	return &Table{entries: make([]entry, cap)}
}

// Cap reports the current bucket-array size, the allocation a caller gets
// back from NewWithCapacity before any Set ever grows it further.
func (t *Table) Cap() int { return len(t.entries) }

// Len reports the number of live entries (excludes tombstones).
func (t *Table) Len() int {
	n := 0
	for _, e := range t.entries {
		if e.state == stateLive {
			n++
		}
	}
	return n
}

// Get returns the value stored under key, if any.
func (t *Table) Get(key *object.String) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.Nil(), false
	}
	e := &t.entries[findEntry(t.entries, key)]
	if e.state != stateLive {
		return value.Nil(), false
	}
	return e.val, true
}

// Set inserts or overwrites key's value, growing the table first if the
// load factor would exceed 0.75. Returns true iff key was not already
// present, whether it lands in an empty bucket or reuses a tombstone.
// count grows only in the empty-bucket case, which keeps
// count == live + tombstones.
func (t *Table) Set(key *object.String, v value.Value) bool {
	if t.count+1 > int(float64(len(t.entries))*maxLoad) {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}

	e := &t.entries[findEntry(t.entries, key)]
	isNewKey := e.state != stateLive
	if isNewKey && e.state == stateEmpty {
		t.count++
	}

	e.key = key
	e.val = v
	e.state = stateLive
	return isNewKey
}

// Delete overwrites key's bucket with a tombstone. count is not
// decremented: tombstones keep costing load-factor capacity until the
// next resize clears them.
func (t *Table) Delete(key *object.String) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := &t.entries[findEntry(t.entries, key)]
	if e.state != stateLive {
		return false
	}
	e.key = nil
	e.val = value.NewBool(true)
	e.state = stateTombstone
	return true
}

// AddAll copies every live entry from from into t.
func (t *Table) AddAll(from *Table) {
	for _, e := range from.entries {
		if e.state == stateLive {
			t.Set(e.key, e.val)
		}
	}
}

// FindString walks the probe chain comparing by (length, hash, bytes),
// for use by the interner before a canonical String object exists (so it
// cannot compare by pointer identity). Returns the canonical reference or
// nil.
func (t *Table) FindString(chars []byte, hash uint32) *object.String {
	if len(t.entries) == 0 {
		return nil
	}
	cap := len(t.entries)
	idx := int(hash) % cap
	for {
		e := &t.entries[idx]
		switch e.state {
		case stateEmpty:
			return nil
		case stateLive:
			if e.key.Hash == hash && len(e.key.Chars) == len(chars) && bytes.Equal(e.key.Chars, chars) {
				return e.key
			}
		}
		idx = (idx + 1) % cap
	}
}

// findEntry probes from key's ideal bucket, advancing by +1 mod capacity,
// until it finds key itself (by reference identity) or an Empty bucket.
// Tombstones are remembered and reused (reported back as the target
// bucket) but never terminate the search.
func findEntry(entries []entry, key *object.String) int {
	cap := len(entries)
	idx := int(key.Hash) % cap
	tombstone := -1
	for {
		e := &entries[idx]
		switch e.state {
		case stateEmpty:
			if tombstone != -1 {
				return tombstone
			}
			return idx
		case stateTombstone:
			if tombstone == -1 {
				tombstone = idx
			}
		case stateLive:
			if e.key == key {
				return idx
			}
		}
		idx = (idx + 1) % cap
	}
}

func growCapacity(cap int) int {
	if cap < initialCapacity {
		return initialCapacity
	}
	return nextPowerOfTwo(cap * 2)
}

// adjustCapacity allocates a fresh all-Empty entries array, reinserts
// every live entry (dropping tombstones), and swaps it in. This is the
// only way the table grows; probe chains never survive a resize because
// the modulus changes.
func (t *Table) adjustCapacity(newCap int) {
	newEntries := make([]entry, newCap)
	t.count = 0
	for _, e := range t.entries {
		if e.state != stateLive {
			continue
		}
		idx := findEntry(newEntries, e.key)
		newEntries[idx] = entry{key: e.key, val: e.val, state: stateLive}
		t.count++
	}
	t.entries = newEntries
}
