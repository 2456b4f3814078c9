// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pipeline

import "github.com/luxfi/txledger/ledger"

// reorderStage restores in-order delivery of blocks parsed out of order by
// the worker pool. It owns its holding map exclusively and is meant to run
// on a single dedicated goroutine, per spec. The holding map never grows
// beyond roughly the number of in-flight workers: a block can only be held
// while an earlier block is still being parsed.
type reorderStage struct {
	in  <-chan parsedBlock
	out chan<- ledger.TransactionRecord

	nextExpected uint64
	holding      map[uint64][]ledger.TransactionRecord
}

func newReorderStage(in <-chan parsedBlock, out chan<- ledger.TransactionRecord) *reorderStage {
	return &reorderStage{
		in:           in,
		out:          out,
		nextExpected: 1,
		holding:      make(map[uint64][]ledger.TransactionRecord),
	}
}

// run drains in until it closes, emitting records to out strictly in block
// order, then closes out. If in closes while blocks are still held (a
// block was lost upstream), run stops and out is closed with whatever
// prefix was delivered — truncated, but never out of order and never
// duplicated.
func (s *reorderStage) run() {
	defer close(s.out)

	for blk := range s.in {
		switch {
		case blk.id == s.nextExpected:
			s.emit(blk.records)
			s.nextExpected++
			s.drainHeld()
		case blk.id > s.nextExpected:
			s.holding[blk.id] = blk.records
		default:
			// blk.id < nextExpected is impossible by construction: every
			// block id is emitted by the reader exactly once and the
			// reorder stage only ever advances nextExpected forward.
			panic("reorder stage received a block id below nextExpected")
		}
	}
}

func (s *reorderStage) drainHeld() {
	for {
		records, ok := s.holding[s.nextExpected]
		if !ok {
			return
		}
		delete(s.holding, s.nextExpected)
		s.emit(records)
		s.nextExpected++
	}
}

func (s *reorderStage) emit(records []ledger.TransactionRecord) {
	for _, r := range records {
		s.out <- r
	}
}
