package rpc

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"

	"github.com/meridian-network/meridian/lib"
	"github.com/meridian-network/meridian/lib/crypto"
	"github.com/meridian-network/meridian/mempool"
	"github.com/meridian-network/meridian/network"
)

// Version writes Meridian software's version information
func (s *Server) Version(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	write(w, SoftwareVersion, http.StatusOK)
}

// Transaction submits a transaction to the mempool
func (s *Server) Transaction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// Create a new instance of txRequest to hold the incoming transaction data.
	ptr := new(txRequest)
	// Unmarshal the HTTP request body into the transaction request.
	if ok := unmarshal(w, r, ptr); !ok {
		return
	}
	// Hand the transaction to the controller's admission path
	err := s.controller.HandleTransaction(&mempool.MempoolTransaction{
		Tx:           ptr.Tx,
		Address:      ptr.Address,
		Sequence:     ptr.Sequence,
		GasPrice:     ptr.GasPrice,
		MaxGasAmount: ptr.MaxGasAmount,
		Expiration:   ptr.Expiration,
	}, ptr.CommittedSequence, ptr.Affordable)
	// a stateless check failure (bad address, oversized, already expired) is a bad request
	if err != nil && err.Module() == lib.MainModule {
		write(w, err, http.StatusBadRequest)
		return
	}
	if err != nil && (err.Code() == lib.CodeTxExpired || err.Code() == lib.CodeMaxTxSize) {
		write(w, err, http.StatusBadRequest)
		return
	}
	// an admission verdict (including rejections) is a well-formed response
	response := txResponse{Status: mempool.StatusOf(err)}
	if err != nil {
		response.Diagnostic = err.Error()
	}
	write(w, response, http.StatusOK)
}

// Health responds with the node's liveness probe
func (s *Server) Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	write(w, healthResponse{IsHealthy: s.controller.Mempool.HealthCheck()}, http.StatusOK)
}

// MempoolInfo responds with the pool's current shape
func (s *Server) MempoolInfo(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	write(w, mempoolInfoResponse{
		Count:          s.controller.Mempool.Size(),
		LatestPosition: s.controller.Mempool.LatestPosition(),
	}, http.StatusOK)
}

// Pending responds with a page of an account's buffered mempool transactions
func (s *Server) Pending(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ptr := new(pendingRequest)
	// unmarshal request parameters
	if ok := unmarshal(w, r, ptr); !ok {
		return
	}
	address, er := crypto.NewAddressFromString(ptr.Address)
	if er != nil || !crypto.ValidAddress(address.Bytes()) {
		write(w, lib.ErrInvalidAddress(), http.StatusBadRequest)
		return
	}
	// page the account's buffered transactions in sequence order
	page, results := lib.NewPage(ptr.PageParams, pendingPageName), new(pendingTxs)
	err := page.LoadArray(s.controller.Mempool.PendingFor(address.Bytes()), results, func(i any) lib.ErrorI {
		tx, ok := i.(mempool.MempoolTransaction)
		if !ok {
			return lib.ErrInvalidArgument()
		}
		*results = append(*results, tx)
		return nil
	})
	if err != nil {
		write(w, err, http.StatusInternalServerError)
		return
	}
	write(w, page, http.StatusOK)
}

// Gossip admits a batch of peer forwarded timeline entries
func (s *Server) Gossip(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ptr := new(network.SubmitRequest)
	// unmarshal the submit batch
	if ok := unmarshal(w, r, ptr); !ok {
		return
	}
	// both sides of the exchange must speak the same protocol version
	if ptr.ProtocolId != network.ProtocolId {
		write(w, ErrWrongProtocolId(ptr.ProtocolId), http.StatusBadRequest)
		return
	}
	accepted := s.controller.HandleGossip(ptr.Transactions)
	write(w, network.SubmitResponse{
		Accepted: accepted,
		Latest:   s.controller.Mempool.LatestPosition(),
	}, http.StatusOK)
}

// debugHandler is the http handler for debugging endpoints
func debugHandler(routeName string) httprouter.Handle {
	var f http.HandlerFunc
	switch routeName {
	case DebugHeapRouteName, DebugGoroutineRouteName, DebugBlockedRouteName:
		f = func(w http.ResponseWriter, r *http.Request) {
			pprof.Handler(routeName).ServeHTTP(w, r)
		}
	case DebugCPURouteName:
		f = pprof.Profile
	default:
		f = func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}
	}
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		f(w, r)
	}
}
