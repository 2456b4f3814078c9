// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain verifies no goroutine leaks across reader/parser/reorder
// goroutines, mirroring core/main_test.go's goleak.VerifyTestMain pattern
// in the teacher codebase.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestRunPreservesOrder covers spec scenario S6: a large input of strictly
// increasing tx ids must come out in exactly that order regardless of
// worker count or block size.
func TestRunPreservesOrder(t *testing.T) {
	const n = 20_000

	var b strings.Builder
	b.WriteString("type,client,tx,amount\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "deposit,1,%d,1.0\n", i)
	}
	input := b.String()

	for _, cfg := range []Config{
		{Workers: 1, BlockSize: 4096},
		{Workers: 4, BlockSize: 1024},
		{Workers: 8, BlockSize: 8192},
	} {
		t.Run(fmt.Sprintf("workers=%d block=%d", cfg.Workers, cfg.BlockSize), func(t *testing.T) {
			require := require.New(t)
			out, headers, err := Run(context.Background(), strings.NewReader(input), cfg)
			require.NoError(err)
			require.Equal([]string{"type", "client", "tx", "amount"}, headers)

			var i uint32
			for rec := range out {
				i++
				require.EqualValues(i, rec.Tx)
			}
			require.EqualValues(n, i)
		})
	}
}

func TestRunEmptyInputHeaderOnly(t *testing.T) {
	require := require.New(t)

	out, headers, err := Run(context.Background(), strings.NewReader("type,client,tx,amount\n"), Config{})
	require.NoError(err)
	require.Equal([]string{"type", "client", "tx", "amount"}, headers)

	count := 0
	for range out {
		count++
	}
	require.Zero(count)
}

func TestRunDropsUnparseableRows(t *testing.T) {
	require := require.New(t)

	input := "type,client,tx,amount\n" +
		"deposit,1,1,10.0\n" +
		"not-a-type,1,2,10.0\n" +
		"deposit,not-a-client,3,10.0\n" +
		"withdrawal,1,4,not-a-number\n" +
		"deposit,1,5,5.0\n"

	out, _, err := Run(context.Background(), strings.NewReader(input), Config{Workers: 2, BlockSize: 16})
	require.NoError(err)

	var txs []uint32
	for rec := range out {
		txs = append(txs, uint32(rec.Tx))
	}
	require.Equal([]uint32{1, 5}, txs)
}
