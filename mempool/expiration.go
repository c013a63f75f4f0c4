package mempool

import (
	"container/heap"
	"time"
)

/*
	This file implements the expiration index: a min-heap of (deadline, store key)
	entries ordered by the earliest deadline first, with deterministic (address,
	sequence) tie-breaks. The maintenance sweep pops every entry whose deadline has
	passed; commits, evictions, and replacements remove entries by key.
*/

// expirationEntry is one (deadline, key) pair; a record appears in at most one entry
type expirationEntry struct {
	deadline time.Time
	pointer  TxnPointer
	index    int // heap position, maintained by expirationHeap
}

// expirationHeap implements heap.Interface over expiration entries
type expirationHeap []*expirationEntry

func (h expirationHeap) Len() int { return len(h) }

func (h expirationHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if !a.deadline.Equal(b.deadline) {
		return a.deadline.Before(b.deadline)
	}
	if a.pointer.Address != b.pointer.Address {
		return a.pointer.Address < b.pointer.Address
	}
	return a.pointer.Sequence < b.pointer.Sequence
}

func (h expirationHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *expirationHeap) Push(v any) {
	entry := v.(*expirationEntry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

func (h *expirationHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return entry
}

// expirationIndex maps deadlines to store keys with efficient 'sweep all expired' queries
type expirationIndex struct {
	h expirationHeap
	m map[TxnPointer]*expirationEntry // store key -> entry for O(log n) removal
}

// newExpirationIndex() creates an empty expiration index
func newExpirationIndex() *expirationIndex {
	return &expirationIndex{m: make(map[TxnPointer]*expirationEntry)}
}

// add() inserts a (deadline, key) entry, replacing any previous entry for the key
func (x *expirationIndex) add(deadline time.Time, p TxnPointer) {
	if previous, exists := x.m[p]; exists {
		heap.Remove(&x.h, previous.index)
	}
	entry := &expirationEntry{deadline: deadline, pointer: p}
	heap.Push(&x.h, entry)
	x.m[p] = entry
}

// remove() deletes the entry for a key if present
func (x *expirationIndex) remove(p TxnPointer) {
	if entry, exists := x.m[p]; exists {
		heap.Remove(&x.h, entry.index)
		delete(x.m, p)
	}
}

// has() checks whether a key currently has an entry
func (x *expirationIndex) has(p TxnPointer) bool {
	_, exists := x.m[p]
	return exists
}

// popExpired() drains every entry with deadline <= now and returns their keys
func (x *expirationIndex) popExpired(now time.Time) (expired []TxnPointer) {
	for x.h.Len() != 0 && !x.h[0].deadline.After(now) {
		entry := heap.Pop(&x.h).(*expirationEntry)
		delete(x.m, entry.pointer)
		expired = append(expired, entry.pointer)
	}
	return
}

// size() returns the number of tracked entries
func (x *expirationIndex) size() int { return x.h.Len() }
