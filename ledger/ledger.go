// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger abstracts the value-moving environment that custody
// instances run inside. Every effect issued through a Ledger belongs to the
// same atomic call as the state mutation that triggered it.
package ledger

import (
	"errors"

	"github.com/luxfi/ids"

	"github.com/luxfi/treasury/keys"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Ledger is the engine's view of the surrounding value store.
type Ledger interface {
	// AvailableBalance returns the spendable balance of account, net of any
	// environment-imposed reserve.
	AvailableBalance(account ids.ShortID) uint64

	// Transfer moves amount from one account to another, burning fee from
	// the sender.
	Transfer(from, to ids.ShortID, amount, fee uint64) error

	// CloseTo pays the entire remaining balance of from, reserve included,
	// to the recipient and removes the account.
	CloseTo(from, to ids.ShortID) error

	// RegisterParticipation submits consensus participation key material on
	// behalf of account. The fee is funded by payer within the same effect:
	// the deposit and the burn either both happen or neither does, leaving
	// account's balance net unchanged.
	RegisterParticipation(payer, account ids.ShortID, info keys.Info, fee uint64) error

	// MinFee returns the network's fixed fee unit.
	MinFee() uint64
}
