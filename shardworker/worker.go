// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package shardworker implements component G: one goroutine per shard that
// drives ledger.ClientAccount's state machine for every client owned by
// that shard, then component G's coordinator role, which collects every
// shard's account map into a single report. The concurrency shape here
// mirrors warp.SignatureAggregator.AggregateSignatures in the teacher
// codebase: a result channel fed by one goroutine per unit of work, closed
// by a separate goroutine once a sync.WaitGroup drains, then a single
// collecting loop over the channel.
package shardworker

import (
	"sync"

	"github.com/luxfi/geth/log"
	"github.com/luxfi/txledger/internal/metrics"
	"github.com/luxfi/txledger/ledger"
)

// Result is one shard's outcome: either its completed account map, or a
// non-nil Panic describing why the shard was lost.
type Result struct {
	ShardIndex int
	Accounts   map[ledger.ClientId]*ledger.ClientAccount
	Panic      any
}

// Run drives one shard to completion: it ranges over in, applying every
// record to its owning client's account (created lazily on first sight),
// and logs (never aborts on) a semantic-error return from Apply — a
// rejected transaction has no effect on any other client, per spec. Run
// recovers a panic from within this goroutine, reporting it on done as a
// lost partition rather than crashing the whole pipeline.
func Run(shardIndex int, in <-chan ledger.TransactionRecord, wg *sync.WaitGroup, done chan<- Result) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			metrics.PartitionsLost.Inc(1)
			log.Error("shard worker panicked, partition lost", "shard", shardIndex, "panic", r)
			done <- Result{ShardIndex: shardIndex, Panic: r}
		}
	}()

	accounts := make(map[ledger.ClientId]*ledger.ClientAccount)
	for rec := range in {
		acc, ok := accounts[rec.Client]
		if !ok {
			acc = ledger.NewClientAccount(rec.Client)
			accounts[rec.Client] = acc
		}
		if err := acc.Apply(rec); err != nil {
			metrics.SemanticErrors.Inc(1)
			log.Warn("rejected transaction",
				"shard", shardIndex, "client", rec.Client, "tx", rec.Tx, "type", rec.Type, "err", err)
		}
	}

	done <- Result{ShardIndex: shardIndex, Accounts: accounts}
}

// Collect spawns one goroutine per shard channel via Run, then merges every
// completed shard's account map into a single flat map once all shards have
// finished or been lost. Since clients are partitioned by mod S, no client
// id can appear in two shards, so the merge is a disjoint union — no
// conflict resolution is required or possible.
func Collect(shards []chan ledger.TransactionRecord) map[ledger.ClientId]*ledger.ClientAccount {
	var wg sync.WaitGroup
	results := make(chan Result, len(shards))

	for i, ch := range shards {
		wg.Add(1)
		go Run(i, ch, &wg, results)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	merged := make(map[ledger.ClientId]*ledger.ClientAccount)
	for res := range results {
		if res.Panic != nil {
			continue
		}
		for id, acc := range res.Accounts {
			merged[id] = acc
		}
	}
	return merged
}
