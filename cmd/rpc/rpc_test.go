package rpc

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-network/meridian/controller"
	"github.com/meridian-network/meridian/lib"
	"github.com/meridian-network/meridian/mempool"
	"github.com/meridian-network/meridian/network"
)

// newTestServers() spins up the query and admin routers over httptest listeners
// and returns typed clients for both
func newTestServers(t *testing.T) (client, adminClient *Client) {
	t.Helper()
	config := lib.DefaultConfig()
	log := lib.NewNullLogger()
	s := NewServer(controller.New(config, nil, log), config, log)
	queryServer := httptest.NewServer(createRouter(s))
	adminServer := httptest.NewServer(createAdminRouter(s))
	t.Cleanup(queryServer.Close)
	t.Cleanup(adminServer.Close)
	// remote-mode clients resolve routes against the test listener urls
	return NewClient(queryServer.URL, "", ""), NewClient(adminServer.URL, "", "")
}

// testTxRequest() builds a well-formed submission for an account index
func testTxRequest(account int, sequence, gasPrice uint64) txRequest {
	return txRequest{
		Tx:         []byte{byte(account), byte(sequence)},
		Address:    bytes.Repeat([]byte{byte(account + 1)}, 32),
		Sequence:   sequence,
		GasPrice:   gasPrice,
		Expiration: time.Now().Add(time.Hour),
		Affordable: true,
	}
}

func TestVersionRoute(t *testing.T) {
	client, _ := newTestServers(t)
	version, err := client.Version()
	require.Nil(t, err)
	require.Equal(t, SoftwareVersion, *version)
}

func TestTransactionRoute(t *testing.T) {
	client, _ := newTestServers(t)
	// a valid submission is admitted
	response, err := client.Transaction(testTxRequest(0, 0, 10))
	require.Nil(t, err)
	require.Equal(t, mempool.StatusValid, response.Status)
	require.Empty(t, response.Diagnostic)
	// a duplicate is a well-formed rejection, not a transport error
	response, err = client.Transaction(testTxRequest(0, 0, 10))
	require.Nil(t, err)
	require.Equal(t, mempool.StatusInvalidSeqNumber, response.Status)
	require.NotEmpty(t, response.Diagnostic)
	// an unaffordable submission carries its status code
	unaffordable := testTxRequest(1, 0, 10)
	unaffordable.Affordable = false
	response, err = client.Transaction(unaffordable)
	require.Nil(t, err)
	require.Equal(t, mempool.StatusInsufficientBalance, response.Status)
	// an expired submission fails the stateless checks with a bad request
	expired := testTxRequest(2, 0, 10)
	expired.Expiration = time.Now().Add(-time.Minute)
	_, err = client.Transaction(expired)
	require.NotNil(t, err)
	require.Equal(t, lib.CodeHttpStatus, err.Code())
}

func TestHealthAndInfoRoutes(t *testing.T) {
	client, _ := newTestServers(t)
	health, err := client.Health()
	require.Nil(t, err)
	require.True(t, health.IsHealthy)
	_, err = client.Transaction(testTxRequest(0, 0, 10))
	require.Nil(t, err)
	info, err := client.MempoolInfo()
	require.Nil(t, err)
	require.Equal(t, 1, info.Count)
	require.EqualValues(t, 1, info.LatestPosition)
}

func TestPendingRoute(t *testing.T) {
	client, _ := newTestServers(t)
	for sequence := uint64(0); sequence < 3; sequence++ {
		_, err := client.Transaction(testTxRequest(0, sequence, 10))
		require.Nil(t, err)
	}
	address := lib.HexBytes(bytes.Repeat([]byte{1}, 32))
	page, err := client.Pending(address.String(), lib.PageParams{PageNumber: 1, PerPage: 2})
	require.Nil(t, err)
	require.Equal(t, 2, page.Count)
	require.Equal(t, 3, page.TotalCount)
	require.Equal(t, 2, page.TotalPages)
}

func TestGossipRoute(t *testing.T) {
	client, _ := newTestServers(t)
	batch := []mempool.TimelineTx{{
		Position: 5,
		Transaction: mempool.MempoolTransaction{
			Tx:         []byte{1},
			Address:    bytes.Repeat([]byte{9}, 32),
			Sequence:   0,
			GasPrice:   10,
			Expiration: time.Now().Add(time.Hour),
		},
	}}
	// a wrong protocol id is refused outright
	request, err := lib.MarshalJSON(network.SubmitRequest{ProtocolId: "/other/0.9.9", Transactions: batch})
	require.Nil(t, err)
	response := new(network.SubmitResponse)
	err = client.post(GossipRouteName, request, response)
	require.NotNil(t, err)
	require.Equal(t, lib.CodeHttpStatus, err.Code())
	// the right protocol id admits the batch
	request, err = lib.MarshalJSON(network.SubmitRequest{ProtocolId: network.ProtocolId, Transactions: batch})
	require.Nil(t, err)
	err = client.post(GossipRouteName, request, response)
	require.Nil(t, err)
	require.EqualValues(t, 1, response.Accepted)
	// gossiped entries do not advance the local timeline
	require.EqualValues(t, 0, response.Latest)
}

func TestCommitRoute(t *testing.T) {
	client, adminClient := newTestServers(t)
	for sequence := uint64(0); sequence < 2; sequence++ {
		_, err := client.Transaction(testTxRequest(0, sequence, 10))
		require.Nil(t, err)
	}
	address := lib.HexBytes(bytes.Repeat([]byte{1}, 32))
	_, err := adminClient.Commit(map[string]uint64{address.String(): 0})
	require.Nil(t, err)
	info, err := client.MempoolInfo()
	require.Nil(t, err)
	require.Equal(t, 1, info.Count)
}

func TestConfigRoute(t *testing.T) {
	_, adminClient := newTestServers(t)
	config, err := adminClient.Config()
	require.Nil(t, err)
	require.EqualValues(t, lib.DefaultMempoolConfig().Capacity, config.Capacity)
}

func TestMalformedRequestBody(t *testing.T) {
	client, _ := newTestServers(t)
	response := new(txResponse)
	err := client.post(TxRouteName, []byte("{not json"), response)
	require.NotNil(t, err)
	require.Equal(t, lib.CodeHttpStatus, err.Code())
	require.Contains(t, err.Error(), "invalid params")
}
