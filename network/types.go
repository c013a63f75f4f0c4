package network

import (
	"github.com/meridian-network/meridian/mempool"
)

/* This file defines the wire format of the validator-to-validator submit exchange */

const (
	// ProtocolId identifies the admission submit exchange; both sides verify it
	ProtocolId = "/meridian/admission/0.1.0"

	// SubmitRoutePath is the http path peers accept submit batches on
	SubmitRoutePath = "/v1/gossip"
)

// SubmitRequest is a batch of timeline entries forwarded to a peer validator
type SubmitRequest struct {
	ProtocolId   string               `json:"protocolId"`   // must equal ProtocolId
	Transactions []mempool.TimelineTx `json:"transactions"` // the forwarded entries in timeline order
}

// SubmitResponse is the peer's per-batch admission summary
type SubmitResponse struct {
	Accepted uint64 `json:"accepted"` // how many entries the peer admitted
	Latest   uint64 `json:"latest"`   // the peer's latest timeline position
}
