package mempool

import (
	"container/list"
)

/*
	This file implements the broadcast timeline: an append-only, monotonically
	numbered log of accepted transactions used to serve incremental 'what's new
	since position P' queries from the gossip layer. Positions are assigned once
	and never reused; entries whose underlying record is committed or expired are
	pruned from the log and simply skipped by readers.
*/

// timelineEntry pairs a log position with the store key it was assigned to
type timelineEntry struct {
	position uint64
	pointer  TxnPointer
}

// timelineIndex is the append-only broadcast log
type timelineIndex struct {
	next uint64                       // the next position to assign, positions start at 1
	l    *list.List                   // entries are timelineEntry in strictly increasing position order
	m    map[TxnPointer]*list.Element // store key -> list element for O(1) pruning
}

// newTimelineIndex() creates an empty timeline starting at position 1
func newTimelineIndex() *timelineIndex {
	return &timelineIndex{next: 1, l: list.New(), m: make(map[TxnPointer]*list.Element)}
}

// append() assigns the next monotonic position to a key and returns it
func (x *timelineIndex) append(p TxnPointer) uint64 {
	position := x.next
	x.next++
	x.m[p] = x.l.PushBack(timelineEntry{position: position, pointer: p})
	return position
}

// remove() prunes the entry for a key if present; the position is never reused
func (x *timelineIndex) remove(p TxnPointer) {
	if e, exists := x.m[p]; exists {
		x.l.Remove(e)
		delete(x.m, p)
	}
}

// read() returns up to max entries with position strictly greater than after,
// plus a new cursor equal to the last returned position (or after if none)
func (x *timelineIndex) read(after, max uint64) (entries []timelineEntry, newPosition uint64) {
	newPosition = after
	if max == 0 {
		return
	}
	for e := x.l.Front(); e != nil; e = e.Next() {
		entry := e.Value.(timelineEntry)
		if entry.position <= after {
			continue
		}
		entries = append(entries, entry)
		newPosition = entry.position
		if uint64(len(entries)) == max {
			return
		}
	}
	return
}

// latest() returns the highest position assigned so far
func (x *timelineIndex) latest() uint64 { return x.next - 1 }
