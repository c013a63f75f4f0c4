package network

import (
	"fmt"

	"github.com/meridian-network/meridian/lib"
)

func ErrSubmitTimeout(peer string) lib.ErrorI {
	return lib.NewError(lib.CodeSubmitTimeout, lib.NetworkModule, fmt.Sprintf("submit to peer %s timed out or was abandoned", peer))
}

func ErrInvalidRPCResponse(err error) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidRPCResponse, lib.NetworkModule, fmt.Sprintf("peer response is not a valid submit response: %s", err.Error()))
}

func ErrPeerRejected(peer, status string, body []byte) lib.ErrorI {
	return lib.NewError(lib.CodePeerRejected, lib.NetworkModule, fmt.Sprintf("peer %s rejected the submit with status %s and body %s", peer, status, body))
}
