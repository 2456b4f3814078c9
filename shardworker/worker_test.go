// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package shardworker

import (
	"sync"
	"testing"

	"github.com/luxfi/txledger/ledger"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func amt(t *testing.T, s string) ledger.Amount {
	t.Helper()
	a, err := ledger.ParseAmount(s)
	require.NoError(t, err)
	return a
}

// TestCollectScenarioS1 exercises spec scenario S1 end to end through a
// single shard: deposits and a withdrawal for two clients.
func TestCollectScenarioS1(t *testing.T) {
	require := require.New(t)

	shards := []chan ledger.TransactionRecord{make(chan ledger.TransactionRecord, 8)}
	shards[0] <- ledger.TransactionRecord{Type: ledger.Deposit, Client: 1, Tx: 1, Amount: amt(t, "1.0"), HasAmount: true}
	shards[0] <- ledger.TransactionRecord{Type: ledger.Deposit, Client: 2, Tx: 2, Amount: amt(t, "2.0"), HasAmount: true}
	shards[0] <- ledger.TransactionRecord{Type: ledger.Deposit, Client: 1, Tx: 3, Amount: amt(t, "2.0"), HasAmount: true}
	shards[0] <- ledger.TransactionRecord{Type: ledger.Withdrawal, Client: 1, Tx: 4, Amount: amt(t, "1.5"), HasAmount: true}
	shards[0] <- ledger.TransactionRecord{Type: ledger.Withdrawal, Client: 2, Tx: 5, Amount: amt(t, "3.0"), HasAmount: true}
	close(shards[0])

	accounts := Collect(shards)
	require.Len(accounts, 2)

	c1 := accounts[1]
	require.True(amt(t, "1.5").Equal(c1.Available))
	require.True(ledger.Zero.Equal(c1.Held))
	require.False(c1.Locked)

	c2 := accounts[2]
	require.True(amt(t, "2.0").Equal(c2.Available))
	require.False(c2.Locked)
}

func TestCollectMergesDisjointShardsWithoutConflict(t *testing.T) {
	require := require.New(t)

	const shardCount = 4
	shards := make([]chan ledger.TransactionRecord, shardCount)
	for i := range shards {
		shards[i] = make(chan ledger.TransactionRecord, 64/shardCount)
	}

	for client := 0; client < 64; client++ {
		shard := client % shardCount
		shards[shard] <- ledger.TransactionRecord{
			Type: ledger.Deposit, Client: ledger.ClientId(client), Tx: ledger.TransactionId(client),
			Amount: amt(t, "1.0"), HasAmount: true,
		}
	}
	for _, ch := range shards {
		close(ch)
	}

	accounts := Collect(shards)
	require.Len(accounts, 64)
	for client := 0; client < 64; client++ {
		require.True(amt(t, "1.0").Equal(accounts[ledger.ClientId(client)].Available))
	}
}

func TestRunReportsSemanticErrorWithoutPanic(t *testing.T) {
	require := require.New(t)

	in := make(chan ledger.TransactionRecord, 1)
	in <- ledger.TransactionRecord{Type: ledger.Deposit, Client: 1, Tx: 1, HasAmount: false}
	close(in)

	var wg sync.WaitGroup
	done := make(chan Result, 1)
	wg.Add(1)

	// A missing-amount deposit is a semantic error, not a panic; this
	// confirms the ordinary path still reports a clean, non-panicked
	// result alongside the panic-recovery defer.
	go Run(0, in, &wg, done)
	res := <-done
	require.Nil(res.Panic)
	require.NotNil(res.Accounts)
}
