// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package custody implements the treasury instances that hold value: the
// plain owner-custodied Account and the vesting-gated Airdrop. Every
// exported operation is one atomic call carrying the authenticated caller
// identity; failed preconditions abort with no state mutation and no ledger
// effect.
package custody

import (
	"errors"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/treasury/config"
	"github.com/luxfi/treasury/ledger"
	"github.com/luxfi/treasury/utils/timer/mockable"
)

var (
	ErrAlreadyInitialized  = errors.New("already initialized")
	ErrInvalidCreator      = errors.New("must be created by a factory instance")
	ErrClosed              = errors.New("instance has been closed")
	ErrPaymentMismatch     = errors.New("attached payment mismatch")
	ErrInsufficientFunds   = errors.New("insufficient available balance")
	ErrBelowMinimumBalance = errors.New("balance would fall below minimum allowable balance")
	ErrAlreadyFunded       = errors.New("already funded")
	ErrNotFunded           = errors.New("not funded")
	ErrPeriodTooLarge      = errors.New("period exceeds deployment limit")
	ErrInvalidFunding      = errors.New("declared funding must be greater than zero")
	ErrVestingNotComplete  = errors.New("vesting not complete")

	errNilLedger = errors.New("nil ledger")
	errNilClock  = errors.New("nil clock")
)

// Params collects everything an instance receives at creation time. The
// factory fills it in; ParentID identifies the creating factory and must be
// set.
type Params struct {
	InstanceID ids.ID
	ParentID   ids.ID
	Address    ids.ShortID
	Creator    ids.ShortID
	Config     config.Config
	Ledger     ledger.Ledger
	Clock      *mockable.Clock
	Log        log.Logger
}

func (p *Params) verify() error {
	switch {
	case p.ParentID == ids.Empty:
		return ErrInvalidCreator
	case p.Ledger == nil:
		return errNilLedger
	case p.Clock == nil:
		return errNilClock
	}
	if p.Log == nil {
		p.Log = log.NoLog{}
	}
	return p.Config.Validate()
}
