package controller

import (
	"time"

	"github.com/meridian-network/meridian/lib"
	"github.com/meridian-network/meridian/lib/crypto"
	"github.com/meridian-network/meridian/mempool"
)

/*
	This file implements the transaction entry points of the controller: client
	admissions, peer gossip admissions, and commit notifications from the
	consensus collaborator.

	The controller performs only the stateless checks an admission front door
	owns (shape, size, deadline); signatures and balances are verified by the
	upstream validation service, which stamps the committed sequence number and
	the affordability verdict onto the request.
*/

// HandleTransaction() admits a client submitted transaction into the pool;
// a locally admitted transaction receives a broadcast timeline position
func (c *Controller) HandleTransaction(tx *mempool.MempoolTransaction, committedSequence uint64, affordable bool) lib.ErrorI {
	if err := c.checkTransaction(tx); err != nil {
		return err
	}
	if err := c.Mempool.AddTransaction(tx, committedSequence, affordable, mempool.TimelineStateNotReady); err != nil {
		return err
	}
	c.log.Debugf("Admitted transaction %s from %s:%d", crypto.ShortHashString(tx.Tx), lib.BytesToTruncatedString(tx.Address), tx.Sequence)
	return nil
}

// HandleGossip() admits a batch of peer forwarded timeline entries and returns
// how many were accepted; entries already carry a position in the sender's
// timeline, so none is assigned here
func (c *Controller) HandleGossip(entries []mempool.TimelineTx) (accepted uint64) {
	for _, entry := range entries {
		tx := entry.Transaction
		if err := c.checkTransaction(&tx); err != nil {
			c.log.Debugf("Rejected gossiped transaction %s:%d: %s", lib.BytesToTruncatedString(tx.Address), tx.Sequence, err.Error())
			continue
		}
		// the receiving pool re-runs admission against its own sequencer view
		if err := c.Mempool.AddTransaction(&tx, 0, true, mempool.TimelineStateInPool); err != nil {
			c.log.Debugf("Rejected gossiped transaction %s:%d: %s", lib.BytesToTruncatedString(tx.Address), tx.Sequence, err.Error())
			continue
		}
		accepted++
	}
	return
}

// CommitTransactions() prunes finalized transactions after a block commit;
// the map is keyed by hex account address with the highest finalized sequence
// number per account
func (c *Controller) CommitTransactions(commits map[string]uint64) lib.ErrorI {
	for address, finalizedSequence := range commits {
		addr, err := lib.NewHexBytesFromString(address)
		if err != nil {
			return err
		}
		if !crypto.ValidAddress(addr) {
			return lib.ErrInvalidAddress()
		}
		c.Mempool.Commit(addr, finalizedSequence)
	}
	return nil
}

// checkTransaction() runs the stateless admission checks
func (c *Controller) checkTransaction(tx *mempool.MempoolTransaction) lib.ErrorI {
	if !crypto.ValidAddress(tx.Address) {
		return lib.ErrInvalidAddress()
	}
	if uint32(len(tx.Tx)) > c.Config.IndividualMaxTxSize {
		return lib.ErrMaxTxSize()
	}
	if !tx.Expiration.After(time.Now()) {
		return lib.ErrTxExpired()
	}
	return nil
}
