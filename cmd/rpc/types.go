package rpc

import (
	"time"

	"github.com/meridian-network/meridian/lib"
	"github.com/meridian-network/meridian/mempool"
)

// txRequest is the payload of a client transaction submission; the committed
// sequence number and the affordability verdict are stamped by the upstream
// validation service before the request reaches this node
type txRequest struct {
	Tx                lib.HexBytes `json:"tx"`                // raw signed transaction bytes
	Address           lib.HexBytes `json:"address"`           // the sender account address
	Sequence          uint64       `json:"sequence"`          // the per-account sequence number
	GasPrice          uint64       `json:"gasPrice"`          // the priority price
	MaxGasAmount      uint64       `json:"maxGasAmount"`      // the gas ceiling
	Expiration        time.Time    `json:"expiration"`        // the absolute expiration deadline
	CommittedSequence uint64       `json:"committedSequence"` // the account's on-chain sequence number
	Affordable        bool         `json:"affordable"`        // the upstream balance check verdict
}

// txResponse reports the admission outcome of a submitted transaction
type txResponse struct {
	Status     mempool.StatusCode `json:"status"`               // the admission status code
	Diagnostic string             `json:"diagnostic,omitempty"` // human readable rejection detail
}

// healthResponse is the liveness probe payload
type healthResponse struct {
	IsHealthy bool `json:"isHealthy"`
}

// mempoolInfoResponse summarizes the pool's current shape
type mempoolInfoResponse struct {
	Count          int    `json:"count"`          // transactions buffered in the pool
	LatestPosition uint64 `json:"latestPosition"` // the highest assigned timeline position
}

// pendingRequest asks for a page of an account's buffered transactions
type pendingRequest struct {
	Address        string `json:"address"` // hex account address
	lib.PageParams        // pagination parameters
}

// commitRequest carries the finalized sequence numbers of a committed block,
// keyed by hex account address
type commitRequest struct {
	Commits map[string]uint64 `json:"commits"`
}

// pendingTxs is the pageable result type of the pending query
type pendingTxs []mempool.MempoolTransaction

// New() satisfies the lib.Pageable interface
func (p *pendingTxs) New() lib.Pageable { return &pendingTxs{} }

const pendingPageName = "pending-txs"

func init() {
	lib.RegisteredPageables[pendingPageName] = new(pendingTxs)
}

type ProcessResourceUsage struct {
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	CreateTime    string  `json:"createTime"`
	FDCount       uint64  `json:"fdCount"`
	ThreadCount   uint64  `json:"threadCount"`
	MemoryPercent float64 `json:"usedMemoryPercent"`
	CPUPercent    float64 `json:"usedCPUPercent"`
}

type SystemResourceUsage struct {
	// ram
	TotalRAM       uint64  `json:"totalRAM"`
	AvailableRAM   uint64  `json:"availableRAM"`
	UsedRAM        uint64  `json:"usedRAM"`
	UsedRAMPercent float64 `json:"usedRAMPercent"`
	FreeRAM        uint64  `json:"freeRAM"`
	// CPU
	UsedCPUPercent float64 `json:"usedCPUPercent"`
	UserCPU        float64 `json:"userCPU"`
	SystemCPU      float64 `json:"systemCPU"`
	IdleCPU        float64 `json:"idleCPU"`
	// disk
	TotalDisk       uint64  `json:"totalDisk"`
	UsedDisk        uint64  `json:"usedDisk"`
	UsedDiskPercent float64 `json:"usedDiskPercent"`
	FreeDisk        uint64  `json:"freeDisk"`
	// io
	ReceivedBytesIO uint64 `json:"ReceivedBytesIO"`
	WrittenBytesIO  uint64 `json:"WrittenBytesIO"`
}

type resourceUsageResponse struct {
	Process ProcessResourceUsage `json:"process"`
	System  SystemResourceUsage  `json:"system"`
}
