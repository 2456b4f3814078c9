// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pipeline

import (
	"strconv"
	"strings"

	"github.com/luxfi/geth/log"
	"github.com/luxfi/txledger/internal/metrics"
	"github.com/luxfi/txledger/ledger"
)

// parsedBlock is the output of a parser worker: a block id paired with the
// records successfully parsed from it, in the order they appeared.
type parsedBlock struct {
	id      uint64
	records []ledger.TransactionRecord
}

// rawBlock is the input to a parser worker.
type rawBlock struct {
	id   uint64
	data []byte
}

// parseBlock parses one line-aligned block into records. Unrecognized
// types and malformed numeric fields cause the row to be dropped silently,
// per spec — this is a parse-level failure, distinct from the semantic
// failures the state machine reports later. A row with a legal type but no
// amount field is retained; only the state machine can know whether that
// type required one.
func parseBlock(data []byte) []ledger.TransactionRecord {
	lines := strings.Split(string(data), "\n")
	records := make([]ledger.TransactionRecord, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		rec, ok := parseLine(line)
		if !ok {
			metrics.RowsDropped.Inc(1)
			log.Debug("dropping unparseable row", "line", line)
			continue
		}
		metrics.RowsParsed.Inc(1)
		records = append(records, rec)
	}
	return records
}

func parseLine(line string) (ledger.TransactionRecord, bool) {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 3 {
		return ledger.TransactionRecord{}, false
	}

	typ, ok := ledger.ParseTransactionType(fields[0])
	if !ok {
		return ledger.TransactionRecord{}, false
	}

	client, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return ledger.TransactionRecord{}, false
	}

	tx, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return ledger.TransactionRecord{}, false
	}

	rec := ledger.TransactionRecord{
		Type:   typ,
		Client: ledger.ClientId(client),
		Tx:     ledger.TransactionId(tx),
	}

	if len(fields) >= 4 && fields[3] != "" {
		amount, err := ledger.ParseAmount(fields[3])
		if err != nil {
			return ledger.TransactionRecord{}, false
		}
		rec.Amount = amount
		rec.HasAmount = true
	}

	return rec, true
}
