package mempool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreReadyBound(t *testing.T) {
	store := newTransactionStore()
	address := testAddress(0)
	// a contiguous run 0..2 plus a detached 5
	for _, sequence := range []uint64{0, 1, 2, 5} {
		store.insert(testTx(0, sequence, 10), 0)
	}
	require.EqualValues(t, 3, store.readyBound(string(address)))
	// removing the middle of the run shrinks the bound
	store.remove(NewTxnPointer(address, 1))
	require.EqualValues(t, 1, store.readyBound(string(address)))
	// an unknown account has an empty run
	require.EqualValues(t, 0, store.readyBound(string(testAddress(9))))
}

func TestStoreAdvanceNeverRegresses(t *testing.T) {
	store := newTransactionStore()
	address := testAddress(0)
	store.insert(testTx(0, 3, 10), 3)
	require.EqualValues(t, 3, store.expected(string(address)))
	require.True(t, store.advance(string(address), 5))
	require.False(t, store.advance(string(address), 4))
	require.EqualValues(t, 5, store.expected(string(address)))
}

func TestPriorityIndexOrdering(t *testing.T) {
	index := newPriorityIndex()
	base := time.Now()
	// shuffled arrival order across the price, time, and address tie-breaks
	cheap := testTx(2, 0, 1)
	rich := testTx(0, 0, 9)
	early := testTx(1, 0, 5)
	late := testTx(3, 0, 5)
	early.InsertedAt, late.InsertedAt = base, base.Add(time.Second)
	for _, tx := range []*MempoolTransaction{late, cheap, rich, early} {
		index.insert(tx)
	}
	require.Equal(t, 4, index.size())
	want := []*MempoolTransaction{rich, early, late, cheap}
	e := index.front()
	for _, tx := range want {
		require.Equal(t, tx.Pointer(), e.Value.(*MempoolTransaction).Pointer())
		e = e.Next()
	}
	require.Equal(t, cheap.Pointer(), index.lowest().Pointer())
	// removal from the middle keeps the rest ordered
	index.remove(early.Pointer())
	require.False(t, index.contains(early.Pointer()))
	require.Equal(t, 3, index.size())
	require.Equal(t, rich.Pointer(), index.front().Value.(*MempoolTransaction).Pointer())
}

func TestTimelinePositionsMonotonic(t *testing.T) {
	timeline := newTimelineIndex()
	a, b := NewTxnPointer(testAddress(0), 0), NewTxnPointer(testAddress(0), 1)
	require.EqualValues(t, 1, timeline.append(a))
	require.EqualValues(t, 2, timeline.append(b))
	// pruning never frees a position for reuse
	timeline.remove(a)
	require.EqualValues(t, 3, timeline.append(NewTxnPointer(testAddress(1), 0)))
	require.EqualValues(t, 3, timeline.latest())
	entries, position := timeline.read(0, 10)
	require.Len(t, entries, 2)
	require.EqualValues(t, 2, entries[0].position)
	require.EqualValues(t, 3, position)
}

func TestExpirationHeapOrder(t *testing.T) {
	index := newExpirationIndex()
	now := time.Now()
	late := NewTxnPointer(testAddress(0), 0)
	soon := NewTxnPointer(testAddress(1), 0)
	later := NewTxnPointer(testAddress(2), 0)
	index.add(now.Add(2*time.Second), late)
	index.add(now.Add(time.Second), soon)
	index.add(now.Add(time.Hour), later)
	// only the elapsed deadlines drain, earliest first
	expired := index.popExpired(now.Add(3 * time.Second))
	require.Equal(t, []TxnPointer{soon, late}, expired)
	require.Equal(t, 1, index.size())
	require.True(t, index.has(later))
	require.False(t, index.has(soon))
	// re-adding a key replaces its previous deadline
	index.add(now.Add(time.Minute), later)
	require.Equal(t, 1, index.size())
	require.Len(t, index.popExpired(now.Add(2*time.Minute)), 1)
}
