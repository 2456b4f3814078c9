// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package report renders the final, merged account map as the tabular
// report described by spec: a fixed header followed by one line per
// client, balances right-aligned to four fractional digits in a
// width-14 column, via ledger.Amount's fmt.Formatter support.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/luxfi/txledger/ledger"
)

const header = "client,     available,          held,         total,   locked"

// Write renders accounts to w. Row order is not part of the contract (the
// spec leaves it unspecified); rows are emitted sorted by client id purely
// so that repeated runs over the same account map produce byte-identical
// output, which keeps diffing test fixtures simple.
func Write(w io.Writer, accounts map[ledger.ClientId]*ledger.ClientAccount) error {
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	ids := make([]ledger.ClientId, 0, len(accounts))
	for id := range accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		acc := accounts[id]
		_, err := fmt.Fprintf(w, "%d, %14.4f, %14.4f, %14.4f, %t\n",
			id, acc.Available, acc.Held, acc.Total(), acc.Locked)
		if err != nil {
			return err
		}
	}
	return nil
}
