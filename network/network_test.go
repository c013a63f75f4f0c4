package network

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-network/meridian/lib"
	"github.com/meridian-network/meridian/mempool"
)

// testBatch() builds a single-entry timeline batch
func testBatch(sequence uint64) []mempool.TimelineTx {
	return []mempool.TimelineTx{{
		Position: sequence + 1,
		Transaction: mempool.MempoolTransaction{
			Tx:         []byte{1, 2, 3},
			Address:    bytes.Repeat([]byte{0xaa}, 32),
			Sequence:   sequence,
			GasPrice:   10,
			Expiration: time.Now().Add(time.Hour),
		},
	}}
}

func TestClientSubmit(t *testing.T) {
	// the peer verifies the protocol id and admits the whole batch
	peer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, SubmitRoutePath, r.URL.Path)
		request := new(SubmitRequest)
		require.NoError(t, json.NewDecoder(r.Body).Decode(request))
		require.Equal(t, ProtocolId, request.ProtocolId)
		bz, _ := json.Marshal(SubmitResponse{Accepted: uint64(len(request.Transactions)), Latest: 7})
		_, _ = w.Write(bz)
	}))
	defer peer.Close()
	client := NewClient(lib.DefaultNetworkConfig(), lib.NewNullLogger())
	response, err := client.Submit(context.Background(), peer.URL, testBatch(0))
	require.Nil(t, err)
	require.EqualValues(t, 1, response.Accepted)
	require.EqualValues(t, 7, response.Latest)
}

func TestClientSubmitInvalidResponse(t *testing.T) {
	// a 200 with an undecodable body is a protocol failure, not a timeout
	peer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer peer.Close()
	client := NewClient(lib.DefaultNetworkConfig(), lib.NewNullLogger())
	_, err := client.Submit(context.Background(), peer.URL, testBatch(0))
	require.NotNil(t, err)
	require.Equal(t, lib.CodeInvalidRPCResponse, err.Code())
}

func TestClientSubmitPeerRejected(t *testing.T) {
	peer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusBadRequest)
	}))
	defer peer.Close()
	client := NewClient(lib.DefaultNetworkConfig(), lib.NewNullLogger())
	_, err := client.Submit(context.Background(), peer.URL, testBatch(0))
	require.NotNil(t, err)
	require.Equal(t, lib.CodePeerRejected, err.Code())
}

func TestClientSubmitTimeout(t *testing.T) {
	release := make(chan struct{})
	peer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer peer.Close()
	defer close(release)
	config := lib.DefaultNetworkConfig()
	config.SubmitTimeoutMS = 20
	client := NewClient(config, lib.NewNullLogger())
	_, err := client.Submit(context.Background(), peer.URL, testBatch(0))
	require.NotNil(t, err)
	require.Equal(t, lib.CodeSubmitTimeout, err.Code())
}

func TestClientSubmitCancelled(t *testing.T) {
	release := make(chan struct{})
	peer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer peer.Close()
	defer close(release)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	client := NewClient(lib.DefaultNetworkConfig(), lib.NewNullLogger())
	// an abandoned exchange surfaces as a timeout, not a hang
	_, err := client.Submit(ctx, peer.URL, testBatch(0))
	require.NotNil(t, err)
	require.Equal(t, lib.CodeSubmitTimeout, err.Code())
}

func TestBroadcasterForwardsTimeline(t *testing.T) {
	received := make(chan SubmitRequest, 10)
	peer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		request := new(SubmitRequest)
		require.NoError(t, json.NewDecoder(r.Body).Decode(request))
		received <- *request
		bz, _ := json.Marshal(SubmitResponse{Accepted: uint64(len(request.Transactions))})
		_, _ = w.Write(bz)
	}))
	defer peer.Close()
	// a pool with two locally accepted transactions
	pool := mempool.New(lib.DefaultMempoolConfig(), nil, lib.NewNullLogger())
	for sequence := uint64(0); sequence < 2; sequence++ {
		tx := testBatch(sequence)[0].Transaction
		require.Nil(t, pool.AddTransaction(&tx, 0, true, mempool.TimelineStateNotReady))
	}
	config := lib.DefaultNetworkConfig()
	config.Peers = []string{peer.URL}
	config.BroadcastIntervalMS = 10
	broadcaster := NewBroadcaster(config, pool, nil, lib.NewNullLogger())
	broadcaster.Start()
	defer broadcaster.Stop()
	// the first poll forwards both entries in timeline order
	select {
	case request := <-received:
		require.Len(t, request.Transactions, 2)
		require.EqualValues(t, 1, request.Transactions[0].Position)
		require.EqualValues(t, 2, request.Transactions[1].Position)
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast within the deadline")
	}
	// the cursor advanced: nothing new means no further submissions
	select {
	case request := <-received:
		t.Fatalf("unexpected duplicate broadcast of %d transactions", len(request.Transactions))
	case <-time.After(100 * time.Millisecond):
	}
}
