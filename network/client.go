package network

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	limiter "github.com/mxk/go-flowrate/flowrate"

	"github.com/meridian-network/meridian/lib"
	"github.com/meridian-network/meridian/mempool"
)

/*
	This file implements the unary submit exchange with a single peer validator.

	A submit is a plain request/response over the peer's admission RPC: the caller
	bounds it with a context so an abandoned exchange is cancelled, the response
	body is read through a rate limited reader so a hostile peer cannot stall the
	broadcaster with an unbounded or trickled body, and an undecodable response is
	surfaced distinctly from a timeout.
*/

const applicationJSON = "application/json; charset=utf-8"

// Client submits timeline batches to peer validators
type Client struct {
	config lib.NetworkConfig
	client http.Client
	log    lib.LoggerI
}

// NewClient() creates a submit client from the network configuration
func NewClient(config lib.NetworkConfig, log lib.LoggerI) *Client {
	return &Client{config: config, client: http.Client{}, log: log}
}

// Submit() forwards a batch of timeline entries to one peer and returns its
// admission summary. The exchange is bounded by the configured per-peer timeout
// and by the caller's context, whichever ends first
func (c *Client) Submit(ctx context.Context, peer string, batch []mempool.TimelineTx) (*SubmitResponse, lib.ErrorI) {
	// bound the exchange with the per-peer submit timeout
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.config.SubmitTimeoutMS)*time.Millisecond)
	defer cancel()
	// marshal the batch with the protocol identifier
	bz, err := lib.MarshalJSON(SubmitRequest{ProtocolId: ProtocolId, Transactions: batch})
	if err != nil {
		return nil, err
	}
	request, er := http.NewRequestWithContext(ctx, http.MethodPost, peer+SubmitRoutePath, bytes.NewBuffer(bz))
	if er != nil {
		return nil, ErrInvalidRPCResponse(er)
	}
	request.Header.Set("Content-Type", applicationJSON)
	resp, er := c.client.Do(request)
	if er != nil {
		// a cancelled or expired context is a timeout, not a protocol failure
		if ctx.Err() != nil {
			return nil, ErrSubmitTimeout(peer)
		}
		return nil, ErrInvalidRPCResponse(er)
	}
	defer func() { _ = resp.Body.Close() }()
	// rate limit the response read so a peer cannot stall the broadcaster
	body, er := io.ReadAll(limiter.NewReader(resp.Body, c.config.MaxReceiveRate))
	if er != nil {
		if ctx.Err() != nil {
			return nil, ErrSubmitTimeout(peer)
		}
		return nil, ErrInvalidRPCResponse(er)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, ErrPeerRejected(peer, resp.Status, body)
	}
	// a well-formed transport response with an undecodable payload is its own failure
	response := new(SubmitResponse)
	if err = lib.UnmarshalJSON(body, response); err != nil {
		return nil, ErrInvalidRPCResponse(err)
	}
	return response, nil
}
