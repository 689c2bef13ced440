// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"
	"sync"

	"github.com/luxfi/ids"
	safemath "github.com/luxfi/math"

	"github.com/luxfi/treasury/keys"
)

var _ Ledger = (*InMemory)(nil)

// Registration records one participation-key registration effect.
type Registration struct {
	Payer   ids.ShortID
	Account ids.ShortID
	Info    keys.Info
	Fee     uint64
}

// InMemory is a self-contained ledger for tests and local runs. It is safe
// for concurrent use.
type InMemory struct {
	mu            sync.RWMutex
	balances      map[ids.ShortID]uint64
	registrations []Registration
	minFee        uint64
	reserve       uint64
}

// NewInMemory returns an empty ledger with the given fee unit and
// per-account reserve.
func NewInMemory(minFee, reserve uint64) *InMemory {
	return &InMemory{
		balances: make(map[ids.ShortID]uint64),
		minFee:   minFee,
		reserve:  reserve,
	}
}

// Fund mints amount into account.
func (l *InMemory) Fund(account ids.ShortID, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

// Balance returns the raw balance of account, reserve included.
func (l *InMemory) Balance(account ids.ShortID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

func (l *InMemory) AvailableBalance(account ids.ShortID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.available(account)
}

func (l *InMemory) available(account ids.ShortID) uint64 {
	balance := l.balances[account]
	if balance <= l.reserve {
		return 0
	}
	return balance - l.reserve
}

func (l *InMemory) Transfer(from, to ids.ShortID, amount, fee uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.balances[from]; !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, from)
	}
	total, err := safemath.Add(amount, fee)
	if err != nil {
		return err
	}
	if l.available(from) < total {
		return fmt.Errorf("%w: %s needs %d, has %d available",
			ErrInsufficientBalance, from, total, l.available(from))
	}
	l.balances[from] -= total
	l.balances[to] += amount
	return nil
}

func (l *InMemory) CloseTo(from, to ids.ShortID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, from)
	}
	delete(l.balances, from)
	l.balances[to] += balance
	return nil
}

func (l *InMemory) RegisterParticipation(payer, account ids.ShortID, info keys.Info, fee uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.balances[payer]; !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, payer)
	}
	if _, ok := l.balances[account]; !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	if l.available(payer) < fee {
		return fmt.Errorf("%w: %s cannot cover registration fee %d",
			ErrInsufficientBalance, payer, fee)
	}
	// The deposit and the fee burn cancel out on account, so the only
	// balance that moves is the payer's.
	l.balances[payer] -= fee
	l.registrations = append(l.registrations, Registration{
		Payer:   payer,
		Account: account,
		Info:    info,
		Fee:     fee,
	})
	return nil
}

func (l *InMemory) MinFee() uint64 {
	return l.minFee
}

// Registrations returns a copy of every registration effect issued so far.
func (l *InMemory) Registrations() []Registration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	regs := make([]Registration, len(l.registrations))
	copy(regs, l.registrations)
	return regs
}
