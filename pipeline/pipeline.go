// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pipeline

import (
	"context"
	"io"
	"runtime"

	"github.com/luxfi/geth/log"
	"github.com/luxfi/txledger/ledger"
	"golang.org/x/sync/errgroup"
)

// Config tunes the pipeline's concurrency and I/O shape. Zero values fall
// back to defaults: DefaultBlockSize, GOMAXPROCS workers, and a queue size
// of 10,000.
type Config struct {
	// BlockSize is the approximate size, in bytes, of each block read from
	// the input before it is extended to the next newline.
	BlockSize int
	// Workers is the number of concurrent block-parsing goroutines.
	Workers int
	// QueueSize bounds the inter-stage channels. Backpressure is applied
	// once a queue is full; a size of 0 falls back to a sane default.
	QueueSize int
}

func (c Config) withDefaults() Config {
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 10_000
	}
	return c
}

// Run reads r concurrently and returns a channel of records in the exact
// order they appeared in the input, plus the trimmed header fields. The
// returned channel closes once the input is exhausted or ctx is canceled.
// A reader I/O error truncates the stream (the reorder stage stops with
// whatever prefix it already has) and is logged; it is not returned here
// since by the time the caller could observe it the channel is already the
// only signal left to drain.
func Run(ctx context.Context, r io.Reader, cfg Config) (<-chan ledger.TransactionRecord, []string, error) {
	cfg = cfg.withDefaults()

	reader, err := NewBlockReader(r, cfg.BlockSize)
	if err != nil {
		return nil, nil, err
	}

	rawBlocks := make(chan rawBlock, cfg.QueueSize)
	parsed := make(chan parsedBlock, cfg.QueueSize)
	out := make(chan ledger.TransactionRecord, cfg.QueueSize)

	// Block reader (component B): single goroutine, sole owner of the
	// input reader, blocks only on the underlying read or on rawBlocks
	// being full.
	go func() {
		defer close(rawBlocks)
		for {
			id, data, ok, err := reader.NextBlock()
			if err != nil {
				log.Error("block reader stopped on I/O error", "err", err)
				return
			}
			if !ok {
				return
			}
			select {
			case rawBlocks <- rawBlock{id: id, data: data}:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Parser worker pool (component C): N stateless workers racing over
	// the same input channel; any worker may finish a block in any order.
	var g errgroup.Group
	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error {
			for blk := range rawBlocks {
				records := parseBlock(blk.data)
				select {
				case parsed <- parsedBlock{id: blk.id, records: records}:
				case <-ctx.Done():
					return nil
				}
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(parsed)
	}()

	// Reorder stage (component D): single goroutine, sole owner of the
	// holding map. Closes out once parsed closes.
	reorder := newReorderStage(parsed, out)
	go reorder.run()

	return out, reader.Headers(), nil
}
