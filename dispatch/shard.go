// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dispatch implements component E: the shard dispatcher that steers
// each transaction record to the single shard queue owning its client, by
// client id mod the shard count. This is the only place in the pipeline
// that writes into shard queues, so per-client ordering into a shard is
// guaranteed by construction without any locking on the shard side.
package dispatch

import (
	"context"

	"github.com/luxfi/txledger/ledger"
)

// Run reads records from in until it closes and forwards each to the shard
// channel selected by record.Client mod len(out). It closes every channel in
// out once in is drained, so shard workers can range over their queue and
// exit naturally. Run blocks the caller; run it in its own goroutine.
//
// Run never drops a record: a full shard channel simply backpressures the
// dispatcher, which in turn backpressures the reorder stage and, ultimately,
// the block reader.
func Run(ctx context.Context, in <-chan ledger.TransactionRecord, out []chan ledger.TransactionRecord) {
	defer func() {
		for _, ch := range out {
			close(ch)
		}
	}()

	shards := uint16(len(out))
	for {
		select {
		case rec, ok := <-in:
			if !ok {
				return
			}
			shard := uint16(rec.Client) % shards
			select {
			case out[shard] <- rec:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// NewShards allocates n shard channels, each buffered to queueSize.
func NewShards(n, queueSize int) []chan ledger.TransactionRecord {
	shards := make([]chan ledger.TransactionRecord, n)
	for i := range shards {
		shards[i] = make(chan ledger.TransactionRecord, queueSize)
	}
	return shards
}
