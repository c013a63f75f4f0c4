package network

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-network/meridian/lib"
	"github.com/meridian-network/meridian/mempool"
)

/*
	This file implements the broadcaster: the background loop that shares locally
	accepted transactions with the rest of the validator set.

	The loop polls the pool's broadcast timeline on a fixed interval and forwards
	each new batch to every configured peer concurrently. A failed peer submission
	is retried with exponential backoff up to the configured cap; after that the
	batch is abandoned for that peer. The timeline cursor advances regardless, the
	peer will receive newer entries on subsequent polls and missing ones re-enter
	through block proposals.
*/

// submit outcome labels for telemetry
const (
	outcomeOk     = "ok"
	outcomeFailed = "failed"
)

// Broadcaster forwards newly accepted transactions to peer validators
type Broadcaster struct {
	config   lib.NetworkConfig
	pool     *mempool.CoreMempool
	client   *Client
	metrics  *lib.Metrics // nil-able telemetry sink
	log      lib.LoggerI
	position uint64        // the timeline cursor, everything <= position was already pulled
	quit     chan struct{} // closed on Stop()
}

// NewBroadcaster() creates a stopped broadcaster over the pool's timeline
func NewBroadcaster(config lib.NetworkConfig, pool *mempool.CoreMempool, metrics *lib.Metrics, log lib.LoggerI) *Broadcaster {
	return &Broadcaster{
		config:  config,
		pool:    pool,
		client:  NewClient(config, log),
		metrics: metrics,
		log:     log,
		quit:    make(chan struct{}),
	}
}

// Start() begins the broadcast loop in the background
func (b *Broadcaster) Start() {
	// nothing to do without peers
	if len(b.config.Peers) == 0 {
		b.log.Warn("No peers configured; transaction broadcast is disabled")
		return
	}
	go b.loop()
}

// Stop() terminates the broadcast loop
func (b *Broadcaster) Stop() { close(b.quit) }

// loop() polls the timeline on the configured interval until stopped
func (b *Broadcaster) loop() {
	ticker := time.NewTicker(time.Duration(b.config.BroadcastIntervalMS) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.broadcastNew()
		case <-b.quit:
			return
		}
	}
}

// broadcastNew() pulls the next timeline batch and fans it out to every peer
func (b *Broadcaster) broadcastNew() {
	batch, newPosition := b.pool.ReadTimeline(b.position, b.config.BroadcastBatchSize)
	// advance the cursor even when a peer fails; newer entries supersede the batch
	b.position = newPosition
	if len(batch) == 0 {
		return
	}
	b.bumpBatches()
	group, ctx := errgroup.WithContext(context.Background())
	for _, peer := range b.config.Peers {
		peer := peer
		group.Go(func() error {
			b.submitWithRetry(ctx, peer, batch)
			// a peer failure never aborts the other submissions
			return nil
		})
	}
	_ = group.Wait()
}

// submitWithRetry() submits one batch to one peer with exponential backoff
func (b *Broadcaster) submitWithRetry(ctx context.Context, peer string, batch []mempool.TimelineTx) {
	err := backoff.Retry(func() error {
		response, err := b.client.Submit(ctx, peer, batch)
		if err != nil {
			b.log.Warnf("Submit to peer %s failed: %s", peer, err.Error())
			return err
		}
		b.log.Debugf("Peer %s admitted %d of %d forwarded transactions", peer, response.Accepted, len(batch))
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), b.config.MaxSubmitRetries), ctx))
	b.recordSubmission(err)
}

// recordSubmission() counts a per-peer submit outcome
func (b *Broadcaster) recordSubmission(err error) {
	if b.metrics == nil {
		return
	}
	outcome := outcomeOk
	if err != nil {
		outcome = outcomeFailed
	}
	b.metrics.PeerSubmissions.WithLabelValues(outcome).Inc()
}

// bumpBatches() counts a forwarded timeline batch
func (b *Broadcaster) bumpBatches() {
	if b.metrics == nil {
		return
	}
	b.metrics.BroadcastBatches.Inc()
}
