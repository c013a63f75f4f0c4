package mempool

/*
	This file implements the authoritative transaction store and the per-account sequencer.

	The store owns every MempoolTransaction; the priority, timeline, and expiration
	indices hold only TxnPointer keys into it. Per account it tracks the next
	sequence number the chain will accept ('expected') and the set of buffered
	sequence numbers; a transaction is 'ready' when its sequence number is part of
	the unbroken run starting at 'expected', otherwise it is 'parked'.
*/

// accountTxns is the sequencer state of a single account with at least one buffered transaction
type accountTxns struct {
	expected uint64                         // the next sequence number the chain will accept from this account
	txns     map[uint64]*MempoolTransaction // the buffered transactions keyed by sequence number
}

// transactionStore maps account address -> sequencer state
type transactionStore struct {
	accounts map[string]*accountTxns // raw-byte address string -> account state
	count    int                     // total number of buffered transactions
}

// newTransactionStore() creates an empty store
func newTransactionStore() *transactionStore {
	return &transactionStore{accounts: make(map[string]*accountTxns)}
}

// get() returns the record for a key or nil
func (s *transactionStore) get(p TxnPointer) *MempoolTransaction {
	if acct, ok := s.accounts[p.Address]; ok {
		return acct.txns[p.Sequence]
	}
	return nil
}

// account() returns the sequencer state for an address or nil
func (s *transactionStore) account(address string) *accountTxns { return s.accounts[address] }

// expected() returns the next accepted sequence number for an address; zero when unknown
func (s *transactionStore) expected(address string) uint64 {
	if acct, ok := s.accounts[address]; ok {
		return acct.expected
	}
	return 0
}

// insert() places a record in the store, creating the account state if needed
// and refreshing its expected sequence from the caller's committed view
func (s *transactionStore) insert(tx *MempoolTransaction, committedSequence uint64) {
	address := string(tx.Address)
	acct, ok := s.accounts[address]
	if !ok {
		acct = &accountTxns{txns: make(map[uint64]*MempoolTransaction)}
		s.accounts[address] = acct
	}
	// the caller's committed view only ever advances the expected sequence
	if committedSequence > acct.expected {
		acct.expected = committedSequence
	}
	if _, exists := acct.txns[tx.Sequence]; !exists {
		s.count++
	}
	acct.txns[tx.Sequence] = tx
}

// remove() deletes a record; the account state is destroyed once empty
func (s *transactionStore) remove(p TxnPointer) (removed *MempoolTransaction) {
	acct, ok := s.accounts[p.Address]
	if !ok {
		return nil
	}
	removed, ok = acct.txns[p.Sequence]
	if !ok {
		return nil
	}
	delete(acct.txns, p.Sequence)
	s.count--
	if len(acct.txns) == 0 {
		delete(s.accounts, p.Address)
	}
	return
}

// advance() moves an account's expected sequence forward and returns true if it changed
func (s *transactionStore) advance(address string, expected uint64) bool {
	acct, ok := s.accounts[address]
	if !ok || acct.expected >= expected {
		return false
	}
	acct.expected = expected
	return true
}

// readyBound() computes the exclusive upper sequence of the account's ready run:
// every buffered sequence in [expected, bound) is ready, everything >= bound is parked.
// This is a pure function of (expected, buffered set) and is recomputed on every
// relevant mutation instead of being cached
func (s *transactionStore) readyBound(address string) uint64 {
	acct, ok := s.accounts[address]
	if !ok {
		return 0
	}
	bound := acct.expected
	for {
		if _, held := acct.txns[bound]; !held {
			return bound
		}
		bound++
	}
}

// size() returns the total number of buffered transactions
func (s *transactionStore) size() int { return s.count }
