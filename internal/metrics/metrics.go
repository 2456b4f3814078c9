// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics registers the handful of counters this engine exposes
// through github.com/luxfi/geth/metrics, the same registry idiom the
// teacher codebase uses throughout (see core/blockchain_ext.go's
// metrics.NewRegisteredCounter(name, nil)).
package metrics

import "github.com/luxfi/geth/metrics"

var (
	RowsParsed     = metrics.NewRegisteredCounter("txledger/rows_parsed", nil)
	RowsDropped    = metrics.NewRegisteredCounter("txledger/rows_dropped", nil)
	SemanticErrors = metrics.NewRegisteredCounter("txledger/semantic_errors", nil)
	PartitionsLost = metrics.NewRegisteredCounter("txledger/partitions_lost", nil)
)

// Summary is a point-in-time snapshot of all counters, suitable for a
// single closing log line.
type Summary struct {
	RowsParsed     int64
	RowsDropped    int64
	SemanticErrors int64
	PartitionsLost int64
}

// Snapshot reads the current counter values.
func Snapshot() Summary {
	return Summary{
		RowsParsed:     RowsParsed.Snapshot().Count(),
		RowsDropped:    RowsDropped.Snapshot().Count(),
		SemanticErrors: SemanticErrors.Snapshot().Count(),
		PartitionsLost: PartitionsLost.Snapshot().Count(),
	}
}
