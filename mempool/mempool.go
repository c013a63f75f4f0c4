package mempool

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/meridian-network/meridian/lib"
)

/*
	This file implements the mempool engine: the single consistency boundary over
	the transaction store and the priority, timeline, and expiration indices.

	Every mutating operation (AddTransaction, Commit, GC) and the consistency
	sensitive read (GetBlock) runs under one exclusive critical section so a
	reader can never observe a partially applied index update; the operations are
	pure in-memory computations, so the section is only held for the duration of
	index manipulation.
*/

// StatusCode is the admission status surfaced to RPC callers
type StatusCode string

const (
	StatusValid               StatusCode = "Valid"
	StatusInsufficientBalance StatusCode = "InsufficientBalance"
	StatusInvalidSeqNumber    StatusCode = "InvalidSeqNumber"
	StatusInvalidUpdate       StatusCode = "InvalidUpdate"
	StatusMempoolIsFull       StatusCode = "MempoolIsFull"
)

// StatusOf() maps an admission error to its status code; nil maps to Valid
func StatusOf(err lib.ErrorI) StatusCode {
	if err == nil {
		return StatusValid
	}
	switch err.Code() {
	case lib.CodeInsufficientBalance:
		return StatusInsufficientBalance
	case lib.CodeInvalidSeqNumber:
		return StatusInvalidSeqNumber
	case lib.CodeMempoolIsFull:
		return StatusMempoolIsFull
	default:
		return StatusInvalidUpdate
	}
}

// TimelineTx is one broadcast log entry served to the gossip layer
type TimelineTx struct {
	Position    uint64             `json:"position"`    // the monotonic log position
	Transaction MempoolTransaction `json:"transaction"` // a copy of the underlying record
}

// CoreMempool buffers, prioritizes, and serves not-yet-committed transactions
type CoreMempool struct {
	config     lib.MempoolConfig
	store      *transactionStore // authoritative (address, sequence) -> record
	priority   *priorityIndex    // ready transactions in block-candidate order
	timeline   *timelineIndex    // append-only broadcast log
	expiration *expirationIndex  // deadline -> key, min-deadline first
	metrics    *lib.Metrics      // nil-able telemetry sink
	log        lib.LoggerI
	lastSweep  time.Time // when GC last completed, feeds the health probe
	sync.Mutex
}

// New() creates an empty CoreMempool; metrics may be nil
func New(config lib.MempoolConfig, metrics *lib.Metrics, log lib.LoggerI) *CoreMempool {
	return &CoreMempool{
		config:     config,
		store:      newTransactionStore(),
		priority:   newPriorityIndex(),
		timeline:   newTimelineIndex(),
		expiration: newExpirationIndex(),
		metrics:    metrics,
		log:        log,
		lastSweep:  time.Now(),
	}
}

// AddTransaction() admits a transaction into the pool or rejects it with a status error.
// committedSequence is the caller's current view of the account's on-chain sequence
// number and affordable is the result of the upstream balance check; both are computed
// by the validation service, never here. The admission is atomic: a rejection leaves
// no observable state change
func (m *CoreMempool) AddTransaction(tx *MempoolTransaction, committedSequence uint64, affordable bool, state TimelineState) (err lib.ErrorI) {
	// lock the pool for thread safety
	m.Lock()
	// unlock when the admission completes
	defer m.Unlock()
	// record the admission outcome on the way out
	defer func() { m.recordResult(err) }()
	// key the incoming record
	ptr := tx.Pointer()
	// look up a resident occupying the same (address, sequence) slot
	existing := m.store.get(ptr)
	// a strictly higher price displaces the resident in place; an equal price is
	// rejected as anti-spam
	replacing := existing != nil && existing.GasPrice < tx.GasPrice
	// capacity: a replacement frees its own slot, everything else may need a victim
	var victim *MempoolTransaction
	if !replacing && m.store.size() >= int(m.config.Capacity) {
		victim = m.evictionVictim()
		// only a strictly lower priced victim may be displaced
		if victim == nil || victim.GasPrice >= tx.GasPrice {
			return lib.ErrMempoolIsFull()
		}
	}
	// the account's expected sequence is the max of the pool's view and the caller's
	expected := committedSequence
	if acct := m.store.account(ptr.Address); acct != nil && acct.expected > expected {
		expected = acct.expected
	}
	// reject sequence numbers the chain has already committed
	if tx.Sequence < expected {
		return lib.ErrInvalidSeqNumber(tx.Sequence, expected)
	}
	// reject a duplicate that does not out-price the resident
	if existing != nil && !replacing {
		return lib.ErrInvalidSeqNumber(tx.Sequence, expected)
	}
	// reject when the upstream affordability check failed
	if !affordable {
		return lib.ErrInsufficientBalance()
	}
	// verify the records about to be displaced are fully indexed; a desync here is
	// surfaced as InvalidUpdate before any observable mutation
	if replacing {
		if err = m.verifyIndexed(existing); err != nil {
			return err
		}
	}
	if victim != nil {
		if err = m.verifyIndexed(victim); err != nil {
			return err
		}
	}
	// validation is complete: mutate
	if victim != nil {
		m.purge(victim.Pointer())
		m.bumpEvictions()
		m.log.Debugf("Evicted %s:%d (price %d) for a higher priced arrival", lib.BytesToTruncatedString(victim.Address), victim.Sequence, victim.GasPrice)
	}
	if replacing {
		m.purge(ptr)
	}
	// stamp the arrival time used by the priority tie-break
	if tx.InsertedAt.IsZero() {
		tx.InsertedAt = time.Now()
	}
	// insert into the authoritative store, refreshing the account's expected sequence
	m.store.insert(tx, committedSequence)
	// assign a broadcast position unless another pool already did
	if state == TimelineStateNotReady {
		m.timeline.append(ptr)
	}
	// track the deadline for the maintenance sweep
	m.expiration.add(tx.Expiration, ptr)
	// the arrival may make itself and previously parked successors ready
	m.refreshAccount(ptr.Address)
	m.syncGauges()
	return nil
}

// GetBlock() assembles a block candidate of up to maxSize transactions, walking the
// priority index in its total order while enforcing per-account sequence contiguity:
// a sequence number is only included once every smaller outstanding sequence of the
// same account is either committed, excluded, or already in this block. The walk is
// read-only and deterministic for identical pool state and exclusion set
func (m *CoreMempool) GetBlock(maxSize uint64, exclude PointerSet) (block []*MempoolTransaction) {
	// lock the pool for thread safety
	m.Lock()
	// unlock when the walk completes
	defer m.Unlock()
	start := time.Now()
	// 'seen' satisfies the predecessor rule: excluded keys count as satisfied
	// because the competing proposal already carries them
	seen := make(PointerSet, len(exclude))
	for p := range exclude {
		seen.Add(p)
	}
	// keys passed over because their predecessor was not yet satisfied
	skipped := make(PointerSet)
	for e := m.priority.front(); e != nil && uint64(len(block)) < maxSize; e = e.Next() {
		tx := e.Value.(*MempoolTransaction)
		ptr := tx.Pointer()
		if exclude.Has(ptr) {
			continue
		}
		// include only when the predecessor is committed, excluded, or in this block
		if tx.Sequence == m.store.expected(ptr.Address) || seen.Has(ptr.prev()) {
			block = append(block, tx)
			seen.Add(ptr)
			// the inclusion may unblock successors passed over earlier in the walk
			for next := ptr.next(); skipped.Has(next) && uint64(len(block)) < maxSize; next = next.next() {
				block = append(block, m.store.get(next))
				seen.Add(next)
				delete(skipped, next)
			}
		} else {
			skipped.Add(ptr)
		}
	}
	m.observeBlockBuild(time.Since(start))
	return
}

// Commit() prunes every buffered transaction of the account with sequence number
// <= finalizedSequence, advances the expected sequence, and promotes parked
// successors whose gap closed. Committing the same or a lower sequence twice is a
// no-op beyond the first effective call
func (m *CoreMempool) Commit(address lib.HexBytes, finalizedSequence uint64) {
	// lock the pool for thread safety
	m.Lock()
	// unlock when the prune completes
	defer m.Unlock()
	addr := string(address)
	acct := m.store.account(addr)
	if acct == nil {
		return
	}
	// advance the account's expected sequence past the finalized number
	m.store.advance(addr, finalizedSequence+1)
	// collect before purging to avoid mutating the map mid-iteration
	var finalized []uint64
	for sequence := range acct.txns {
		if sequence <= finalizedSequence {
			finalized = append(finalized, sequence)
		}
	}
	for _, sequence := range finalized {
		m.purge(TxnPointer{Address: addr, Sequence: sequence})
	}
	// a closed gap may promote previously parked transactions
	m.refreshAccount(addr)
	m.bumpCommits(len(finalized))
	m.syncGauges()
}

// GC() sweeps every transaction whose deadline has passed and returns the count;
// this runs as background maintenance and feeds the health probe
func (m *CoreMempool) GC(now time.Time) (swept int) {
	// lock the pool for thread safety
	m.Lock()
	// unlock when the sweep completes
	defer m.Unlock()
	// drain the expired deadline entries
	expired := m.expiration.popExpired(now)
	// removal may re-open a sequence gap, so track the affected accounts
	affected := make(map[string]struct{}, len(expired))
	for _, ptr := range expired {
		// the expiration entry is already drained; remove the remaining references
		m.store.remove(ptr)
		m.priority.remove(ptr)
		m.timeline.remove(ptr)
		affected[ptr.Address] = struct{}{}
	}
	for address := range affected {
		m.refreshAccount(address)
	}
	m.lastSweep = now
	swept = len(expired)
	m.bumpExpirations(swept)
	m.syncGauges()
	return
}

// ReadTimeline() returns up to max broadcast log entries with position strictly
// greater than after, plus a new cursor equal to the last returned position (or
// after when nothing new is available). Entries are copies; pruned positions are
// skipped, never renumbered
func (m *CoreMempool) ReadTimeline(after, max uint64) (batch []TimelineTx, newPosition uint64) {
	// lock the pool for thread safety
	m.Lock()
	// unlock when the read completes
	defer m.Unlock()
	entries, newPosition := m.timeline.read(after, max)
	for _, entry := range entries {
		record := m.store.get(entry.pointer)
		if record == nil {
			// the log and the store desynchronized; skip and surface in logs
			m.log.Errorf("timeline position %d references a missing record", entry.position)
			continue
		}
		batch = append(batch, TimelineTx{Position: entry.position, Transaction: *record})
	}
	return batch, newPosition
}

// HealthCheck() reports whether the maintenance sweep ran within its expected
// period; it is a liveness signal, not a business-logic check
func (m *CoreMempool) HealthCheck() bool {
	// lock the pool for thread safety
	m.Lock()
	// unlock when the probe completes
	defer m.Unlock()
	interval := time.Duration(m.config.GCIntervalMS) * time.Millisecond
	return time.Since(m.lastSweep) <= interval*time.Duration(m.config.HealthLagFactor)
}

// Size() returns the total number of buffered transactions
func (m *CoreMempool) Size() int {
	m.Lock()
	defer m.Unlock()
	return m.store.size()
}

// Contains() checks whether the pool holds a record for (address, sequence)
func (m *CoreMempool) Contains(address lib.HexBytes, sequence uint64) bool {
	m.Lock()
	defer m.Unlock()
	return m.store.get(NewTxnPointer(address, sequence)) != nil
}

// LatestPosition() returns the highest broadcast position assigned so far
func (m *CoreMempool) LatestPosition() uint64 {
	m.Lock()
	defer m.Unlock()
	return m.timeline.latest()
}

// PendingFor() returns copies of the account's buffered transactions in sequence order
func (m *CoreMempool) PendingFor(address lib.HexBytes) (pending []MempoolTransaction) {
	m.Lock()
	defer m.Unlock()
	acct := m.store.account(string(address))
	if acct == nil {
		return
	}
	for _, record := range acct.txns {
		pending = append(pending, *record)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Sequence < pending[j].Sequence })
	return
}

// evictionVictim() selects the only record eligible for capacity displacement: the
// lowest priority ready transaction, and only when it has no buffered successor, so
// an eviction never re-opens a sequence gap for its account
func (m *CoreMempool) evictionVictim() *MempoolTransaction {
	candidate := m.priority.lowest()
	if candidate == nil {
		return nil
	}
	if m.store.get(candidate.Pointer().next()) != nil {
		return nil
	}
	return candidate
}

// verifyIndexed() checks that a resident record is consistently referenced by the
// indices before it is displaced; any mismatch is an internal invariant failure
func (m *CoreMempool) verifyIndexed(tx *MempoolTransaction) lib.ErrorI {
	ptr := tx.Pointer()
	if m.store.get(ptr) != tx {
		return lib.ErrInvalidUpdate(fmt.Sprintf("store record mismatch for %s:%d", lib.BytesToTruncatedString(tx.Address), tx.Sequence))
	}
	if !m.expiration.has(ptr) {
		return lib.ErrInvalidUpdate(fmt.Sprintf("missing expiration entry for %s:%d", lib.BytesToTruncatedString(tx.Address), tx.Sequence))
	}
	return nil
}

// purge() removes a record from the store and every index without recomputing
// readiness; callers refresh the affected accounts afterwards
func (m *CoreMempool) purge(p TxnPointer) {
	m.store.remove(p)
	m.priority.remove(p)
	m.timeline.remove(p)
	m.expiration.remove(p)
}

// refreshAccount() recomputes the account's ready bound and synchronizes the
// priority index with it: ready records are indexed, parked records are not
func (m *CoreMempool) refreshAccount(address string) {
	acct := m.store.account(address)
	if acct == nil {
		return
	}
	bound := m.store.readyBound(address)
	for sequence, record := range acct.txns {
		if sequence < bound {
			m.priority.insert(record)
		} else {
			m.priority.remove(TxnPointer{Address: address, Sequence: sequence})
		}
	}
}

// METRICS HELPERS BELOW

// recordResult() counts an admission outcome by status label
func (m *CoreMempool) recordResult(err lib.ErrorI) {
	if m.metrics == nil {
		return
	}
	m.metrics.TxResult.WithLabelValues(string(StatusOf(err))).Inc()
}

// syncGauges() publishes the pool's current shape
func (m *CoreMempool) syncGauges() {
	if m.metrics == nil {
		return
	}
	m.metrics.PoolCount.Set(float64(m.store.size()))
	m.metrics.PoolReady.Set(float64(m.priority.size()))
	m.metrics.TimelinePosition.Set(float64(m.timeline.latest()))
}

func (m *CoreMempool) bumpEvictions() {
	if m.metrics == nil {
		return
	}
	m.metrics.Evictions.Inc()
}

func (m *CoreMempool) bumpExpirations(n int) {
	if m.metrics == nil || n == 0 {
		return
	}
	m.metrics.Expirations.Add(float64(n))
}

func (m *CoreMempool) bumpCommits(n int) {
	if m.metrics == nil || n == 0 {
		return
	}
	m.metrics.Commits.Add(float64(n))
}

func (m *CoreMempool) observeBlockBuild(d time.Duration) {
	if m.metrics == nil {
		return
	}
	m.metrics.BlockBuildTime.Observe(d.Seconds())
}
