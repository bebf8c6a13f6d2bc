// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ DYNAMIC INTERN TABLE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: String Interning Engine
// Component: Reference-Counted Concurrent String Set
//
// Description:
//   Global deduplication table for dynamic atoms. A fixed power-of-two array of
//   independently locked buckets, each holding a singly linked chain of owned,
//   reference-counted entries. Entry addresses are stable for the entry's
//   lifetime and double as the packed atom word (their low tag bits are zero).
//
// Design Principles:
//   - One mutex per bucket; structural mutation only under that lock
//   - Refcount fast paths (clone/drop) run lock-free on already-linked entries
//   - A zero refcount observed during insert means a dropper is mid-removal:
//     never resurrect, allocate a transient duplicate instead
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package dynset

import (
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"atomcache/event"
)

const (
	nbBuckets  = 1 << 12 // 4096
	bucketMask = nbBuckets - 1
)

// Entry is one physically deduplicated dynamic string. Field order mirrors the
// chain layout: link first, then the hash keying the bucket, the refcount, and
// the owned text. Entries are heap-allocated, so their addresses carry at
// least pointer alignment and the low two tag bits are always zero.
type Entry struct {
	next *Entry
	hash uint64
	refs atomic.Int64
	str  string
}

// String returns the owned text. Valid while the caller holds a reference.
func (e *Entry) String() string { return e.str }

// Hash returns the 64-bit hash stored at insert time, reused by removal so
// the string is never hashed twice.
func (e *Entry) Hash() uint64 { return e.hash }

// Refs reads the current reference count. Diagnostics and tests only.
func (e *Entry) Refs() int64 { return e.refs.Load() }

// Retain increments the reference count. The caller must already hold a live
// reference: a count of zero may belong to an entry mid-removal, and only the
// insert path (under the bucket lock) may handle that transition.
func (e *Entry) Retain() { e.refs.Add(1) }

// Release decrements the reference count and returns the prior value. A
// return of exactly 1 means this call took the count to zero; the caller must
// then hand the entry to Remove and touch it no further.
func (e *Entry) Release() int64 { return e.refs.Add(-1) + 1 }

type bucket struct {
	mu   sync.Mutex
	head *Entry
	_    [48]byte // pad to a 64-byte cache line; buckets are independently hot
}

// Set is the intern table. Use Global; the type is exported for tests that
// want an isolated table.
type Set struct {
	buckets [nbBuckets]bucket
}

var (
	global     *Set
	globalOnce sync.Once
)

// Global returns the process-wide table, initialized on first use. It is
// never torn down; entries left at process exit are deliberately leaked.
func Global() *Set {
	globalOnce.Do(func() { global = &Set{} })
	return global
}

// Insert returns a live entry for (str, hash), bumping its refcount, or links
// a fresh entry with refcount 1. The returned entry's address is stable and
// tag-free until the count returns to zero.
func (s *Set) Insert(str string, hash uint64) *Entry {
	b := &s.buckets[hash&bucketMask]
	b.mu.Lock()

	for e := b.head; e != nil; e = e.next {
		if e.hash == hash && e.str == str {
			if e.refs.Add(1) > 1 {
				// Prior count was > 0: the entry is live, we now share it.
				b.mu.Unlock()
				return e
			}
			// Uh-oh. The prior count was zero, which means a dropper has
			// committed to freeing this entry and is blocked behind our lock.
			// Resurrecting it would race the unlink (the classic ABA trap),
			// so undo the bump and fall through to allocate a duplicate.
			// The duplicate is independently counted and collected later.
			e.refs.Add(-1)
			break
		}
	}

	e := &Entry{
		next: b.head,
		hash: hash,
		str:  strings.Clone(str), // own the bytes; callers may pass views
	}
	e.refs.Store(1)
	b.head = e
	if event.Enabled() {
		event.Insert(uint64(uintptr(unsafe.Pointer(e))), e.str)
	}
	b.mu.Unlock()
	return e
}

// Remove unlinks an entry whose refcount has reached zero. Only the dropper
// that observed the 1→0 transition may call this, exactly once. The count
// must still read zero under the lock; anything else is a protocol violation.
func (s *Set) Remove(e *Entry) {
	b := &s.buckets[e.hash&bucketMask]
	b.mu.Lock()

	if n := e.refs.Load(); n != 0 {
		b.mu.Unlock()
		panic("dynset: remove of entry with live references")
	}

	var prev *Entry
	for cur := b.head; cur != nil; cur = cur.next {
		if cur == e {
			if prev != nil {
				prev.next = cur.next
			} else {
				b.head = cur.next
			}
			cur.next = nil
			if event.Enabled() {
				event.Remove(uint64(uintptr(unsafe.Pointer(cur))))
			}
			b.mu.Unlock()
			return
		}
		prev = cur
	}

	b.mu.Unlock()
	panic("dynset: remove of entry not present in its bucket")
}

// Len counts live entries across all buckets. O(buckets + entries); intended
// for tests and diagnostics, not hot paths.
func (s *Set) Len() int {
	n := 0
	for i := range s.buckets {
		b := &s.buckets[i]
		b.mu.Lock()
		for e := b.head; e != nil; e = e.next {
			n++
		}
		b.mu.Unlock()
	}
	return n
}
