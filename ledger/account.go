// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import "errors"

// Semantic errors returned by ClientAccount operations. Wrapped as sentinel
// values (not plain fmt.Errorf strings) so callers can distinguish failure
// classes with errors.Is instead of string matching, the way
// core/txpool.ErrOverdraft is used to classify a specific rejection reason.
var (
	ErrAccountLocked        = errors.New("account is locked")
	ErrDuplicateTx          = errors.New("transaction id already exists")
	ErrInsufficientFunds    = errors.New("insufficient available funds")
	ErrUnknownTx            = errors.New("transaction id not found in ledger")
	ErrDisputeWrongState    = errors.New("transaction is not in the expected dispute state")
	ErrDisputeWouldOverdraw = errors.New("dispute amount exceeds available funds")
)

// DisputeProgress is the lifecycle state of a ledger entry. Transitions are
// monotonic: Idle -> InProgress -> Done. There is no transition back to
// Idle and no transition out of Done.
type DisputeProgress uint8

const (
	Idle DisputeProgress = iota
	InProgress
	Done
)

// LedgerEntry records a deposit that can later be disputed.
type LedgerEntry struct {
	Amount Amount
	State  DisputeProgress
}

// ClientAccount is the per-client transaction state machine. An account is
// owned exclusively by the shard worker goroutine that created it; nothing
// in this type is safe for concurrent use by design — callers must not
// share an instance across goroutines.
type ClientAccount struct {
	ID        ClientId
	Available Amount
	Held      Amount
	Locked    bool

	// ledger holds a disputable entry per successful deposit. Withdrawals
	// never appear here — they are not disputable — but they still share
	// tx's id-space via usedTx so a withdrawal cannot reuse a deposit's id
	// or vice versa.
	ledger map[TransactionId]*LedgerEntry
	usedTx map[TransactionId]struct{}
}

// NewClientAccount creates an empty account for id, available and held
// both starting at zero, unlocked.
func NewClientAccount(id ClientId) *ClientAccount {
	return &ClientAccount{
		ID:     id,
		ledger: make(map[TransactionId]*LedgerEntry),
		usedTx: make(map[TransactionId]struct{}),
	}
}

// Total is the derived sum of available and held funds. It is never stored
// independently, so it can never drift from its constituents.
func (c *ClientAccount) Total() Amount {
	return c.Available.Add(c.Held)
}

// Deposit credits amount to the account under transaction id tx. It fails
// if tx has already been used by this account (deposit or withdrawal).
func (c *ClientAccount) Deposit(tx TransactionId, amount Amount) error {
	if c.Locked {
		return ErrAccountLocked
	}
	if _, exists := c.usedTx[tx]; exists {
		return ErrDuplicateTx
	}

	c.Available = c.Available.Add(amount)
	c.ledger[tx] = &LedgerEntry{Amount: amount, State: Idle}
	c.usedTx[tx] = struct{}{}
	return nil
}

// Withdraw debits amount from the account under transaction id tx. It
// fails if tx has already been used, or if amount exceeds the currently
// available funds. Withdrawals are not disputable and create no ledger
// entry that a later Dispute can reference.
func (c *ClientAccount) Withdraw(tx TransactionId, amount Amount) error {
	if c.Locked {
		return ErrAccountLocked
	}
	if _, exists := c.usedTx[tx]; exists {
		return ErrDuplicateTx
	}
	if amount.GreaterThan(c.Available) {
		return ErrInsufficientFunds
	}

	c.Available = c.Available.Sub(amount)
	// Mark the id as seen without a disputable ledger entry: withdrawals
	// are not disputable, so a later Dispute(tx) against this id correctly
	// reports ErrUnknownTx rather than a wrong-state error.
	c.usedTx[tx] = struct{}{}
	return nil
}

// Dispute opens a dispute against a prior deposit. It fails if tx is
// unknown to this account's ledger, is not Idle, or if covering the
// disputed amount would drive available funds negative.
func (c *ClientAccount) Dispute(tx TransactionId) error {
	if c.Locked {
		return ErrAccountLocked
	}
	entry, ok := c.ledger[tx]
	if !ok {
		return ErrUnknownTx
	}
	if entry.State != Idle {
		return ErrDisputeWrongState
	}
	if entry.Amount.GreaterThan(c.Available) {
		return ErrDisputeWouldOverdraw
	}

	c.Available = c.Available.Sub(entry.Amount)
	c.Held = c.Held.Add(entry.Amount)
	entry.State = InProgress
	return nil
}

// Resolve closes an open dispute without reversing it: held funds move
// back to available.
func (c *ClientAccount) Resolve(tx TransactionId) error {
	if c.Locked {
		return ErrAccountLocked
	}
	entry, ok := c.ledger[tx]
	if !ok {
		return ErrUnknownTx
	}
	if entry.State != InProgress {
		return ErrDisputeWrongState
	}
	if entry.Amount.GreaterThan(c.Held) {
		return ErrDisputeWouldOverdraw
	}

	c.Available = c.Available.Add(entry.Amount)
	c.Held = c.Held.Sub(entry.Amount)
	entry.State = Done
	return nil
}

// Chargeback closes an open dispute with reversal: held funds are removed
// from the account entirely and the account is frozen. Available is not
// touched — the whole point of a chargeback is that the money never
// returns to available.
func (c *ClientAccount) Chargeback(tx TransactionId) error {
	if c.Locked {
		return ErrAccountLocked
	}
	entry, ok := c.ledger[tx]
	if !ok {
		return ErrUnknownTx
	}
	if entry.State != InProgress {
		return ErrDisputeWrongState
	}
	if entry.Amount.GreaterThan(c.Held) {
		return ErrDisputeWouldOverdraw
	}

	c.Held = c.Held.Sub(entry.Amount)
	c.Locked = true
	entry.State = Done
	return nil
}

// Apply routes record to the appropriate state machine operation. It never
// panics; every failure path returns an error for the caller to log. The
// operations return the sentinel errors above; a Deposit or Withdrawal
// record without an amount, or an unrecognized type, yields a plain error.
func (c *ClientAccount) Apply(rec TransactionRecord) error {
	switch rec.Type {
	case Deposit:
		if !rec.HasAmount {
			return errors.New("deposit record missing amount")
		}
		return c.Deposit(rec.Tx, rec.Amount)
	case Withdrawal:
		if !rec.HasAmount {
			return errors.New("withdrawal record missing amount")
		}
		return c.Withdraw(rec.Tx, rec.Amount)
	case Dispute:
		return c.Dispute(rec.Tx)
	case Resolve:
		return c.Resolve(rec.Tx)
	case Chargeback:
		return c.Chargeback(rec.Tx)
	default:
		return errors.New("unrecognized transaction type")
	}
}
