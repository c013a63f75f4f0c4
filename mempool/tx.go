package mempool

import (
	"time"

	"github.com/meridian-network/meridian/lib"
)

/* This file defines the transaction record held by the pool and the key type every index uses to reference it */

// TimelineState is the caller supplied tag indicating whether a transaction
// already carries a broadcast timeline position from another validator's pool
type TimelineState int

const (
	// TimelineStateNotReady marks a transaction that still needs a timeline position on admission
	TimelineStateNotReady TimelineState = iota
	// TimelineStateInPool marks a transaction that was already assigned a position elsewhere
	TimelineStateInPool
)

// TxnPointer is the (address, sequence) key into the transaction store; the
// address is held as a raw-byte string so the pointer is usable as a map key
type TxnPointer struct {
	Address  string
	Sequence uint64
}

// NewTxnPointer() creates a store key from raw address bytes and a sequence number
func NewTxnPointer(address []byte, sequence uint64) TxnPointer {
	return TxnPointer{Address: string(address), Sequence: sequence}
}

// prev() returns the pointer of the same account's preceding sequence number
func (p TxnPointer) prev() TxnPointer { return TxnPointer{Address: p.Address, Sequence: p.Sequence - 1} }

// next() returns the pointer of the same account's following sequence number
func (p TxnPointer) next() TxnPointer { return TxnPointer{Address: p.Address, Sequence: p.Sequence + 1} }

// PointerSet is a set of store keys, used for block-candidate exclusions
type PointerSet map[TxnPointer]struct{}

// Has() checks set membership
func (s PointerSet) Has(p TxnPointer) bool { _, ok := s[p]; return ok }

// Add() inserts a key into the set
func (s PointerSet) Add(p TxnPointer) { s[p] = struct{}{} }

// MempoolTransaction is the authoritative record of a buffered transaction;
// it is exclusively owned by the transaction store and referenced everywhere
// else only by its TxnPointer
type MempoolTransaction struct {
	Tx           lib.HexBytes `json:"tx"`           // raw signed transaction bytes, opaque to the pool
	Address      lib.HexBytes `json:"address"`      // the sender account address
	Sequence     uint64       `json:"sequence"`     // the per-account sequence number
	GasPrice     uint64       `json:"gasPrice"`     // the caller supplied priority price, higher = higher priority
	MaxGasAmount uint64       `json:"maxGasAmount"` // the gas ceiling of the transaction
	Expiration   time.Time    `json:"expiration"`   // the absolute deadline after which the tx is swept
	InsertedAt   time.Time    `json:"insertedAt"`   // when this pool accepted the transaction
}

// Pointer() returns the store key of the record
func (t *MempoolTransaction) Pointer() TxnPointer {
	return NewTxnPointer(t.Address, t.Sequence)
}

// higherPriority() is the total, deterministic order of the priority index:
// gas price descending, then earliest insertion, then address, then sequence ascending
func higherPriority(a, b *MempoolTransaction) bool {
	if a.GasPrice != b.GasPrice {
		return a.GasPrice > b.GasPrice
	}
	if !a.InsertedAt.Equal(b.InsertedAt) {
		return a.InsertedAt.Before(b.InsertedAt)
	}
	if c := string(a.Address); c != string(b.Address) {
		return c < string(b.Address)
	}
	return a.Sequence < b.Sequence
}
