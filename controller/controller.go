package controller

import (
	"sync"
	"time"

	"github.com/meridian-network/meridian/lib"
	"github.com/meridian-network/meridian/mempool"
	"github.com/meridian-network/meridian/network"
)

/*
	This file implements the controller: the orchestrator that owns the mempool
	engine, the peer broadcaster, and the maintenance loop, and exposes the
	admission and commit entry points the RPC layer calls into.
*/

// Controller orchestrates the mempool node modules
type Controller struct {
	Config      lib.Config           // the node configuration
	Mempool     *mempool.CoreMempool // the transaction pool engine
	Broadcaster *network.Broadcaster // forwards accepted transactions to peers
	Metrics     *lib.Metrics         // nil-able telemetry sink

	log  lib.LoggerI
	quit chan struct{} // closed on Stop(), terminates the maintenance loop
	sync.Mutex
}

// New() creates a Controller with a fresh mempool and a stopped broadcaster
func New(config lib.Config, metrics *lib.Metrics, log lib.LoggerI) *Controller {
	pool := mempool.New(config.MempoolConfig, metrics, log)
	return &Controller{
		Config:      config,
		Mempool:     pool,
		Broadcaster: network.NewBroadcaster(config.NetworkConfig, pool, metrics, log),
		Metrics:     metrics,
		log:         log,
		quit:        make(chan struct{}),
	}
}

// Start() begins the telemetry server, the peer broadcaster, and the maintenance loop
func (c *Controller) Start() {
	if c.Metrics != nil {
		c.Metrics.Start()
	}
	c.Broadcaster.Start()
	go c.maintenanceLoop()
}

// Stop() terminates the background loops
func (c *Controller) Stop() {
	// lock the controller for thread safety
	c.Lock()
	defer c.Unlock()
	close(c.quit)
	if len(c.Config.Peers) != 0 {
		c.Broadcaster.Stop()
	}
	if c.Metrics != nil {
		c.Metrics.Stop()
	}
	c.log.Info("Controller stopped")
}

// maintenanceLoop() runs the expiration sweep on the configured interval; the
// sweep cadence doubles as the node's liveness signal
func (c *Controller) maintenanceLoop() {
	interval := time.Duration(c.Config.GCIntervalMS) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	lastSweep := time.Now()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			if swept := c.Mempool.GC(now); swept != 0 {
				c.log.Infof("Swept %d expired transactions", swept)
			}
			if c.Metrics != nil {
				c.Metrics.SweepElapsed.Set(now.Sub(lastSweep).Seconds())
			}
			lastSweep = now
		case <-c.quit:
			return
		}
	}
}
