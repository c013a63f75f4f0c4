package mempool

import (
	"container/list"
)

/*
	This file implements the priority index: the ordering structure over 'ready'
	transactions that answers block-candidate queries. Entries are kept in a doubly
	linked list sorted by the total order of higherPriority() with an O(1) key map
	for deletion; inserts scan backwards from the tail since most arrivals carry
	average or below-average prices.
*/

// priorityIndex orders ready transactions from the highest priority to the lowest
type priorityIndex struct {
	l *list.List                  // entries are *MempoolTransaction, highest priority at the front
	m map[TxnPointer]*list.Element // store key -> list element for O(1) removal
}

// newPriorityIndex() creates an empty priority index
func newPriorityIndex() *priorityIndex {
	return &priorityIndex{l: list.New(), m: make(map[TxnPointer]*list.Element)}
}

// insert() places a record at its sorted position
func (x *priorityIndex) insert(tx *MempoolTransaction) {
	key := tx.Pointer()
	// already present entries keep their position
	if _, exists := x.m[key]; exists {
		return
	}
	// start from the back and scan backwards
	for e := x.l.Back(); e != nil; e = e.Prev() {
		if higherPriority(e.Value.(*MempoolTransaction), tx) {
			// insert after this element
			x.m[key] = x.l.InsertAfter(tx, e)
			return
		}
	}
	// if we got here, tx has the highest priority: insert at front
	x.m[key] = x.l.PushFront(tx)
}

// remove() deletes the entry for a key if present
func (x *priorityIndex) remove(p TxnPointer) {
	if e, exists := x.m[p]; exists {
		x.l.Remove(e)
		delete(x.m, p)
	}
}

// contains() checks whether a key currently has an entry
func (x *priorityIndex) contains(p TxnPointer) bool {
	_, exists := x.m[p]
	return exists
}

// front() returns the highest priority element for iteration
func (x *priorityIndex) front() *list.Element { return x.l.Front() }

// lowest() returns the lowest priority record or nil when empty
func (x *priorityIndex) lowest() *MempoolTransaction {
	e := x.l.Back()
	if e == nil {
		return nil
	}
	return e.Value.(*MempoolTransaction)
}

// size() returns the number of ready transactions indexed
func (x *priorityIndex) size() int { return x.l.Len() }
