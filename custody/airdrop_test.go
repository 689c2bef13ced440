// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"

	"github.com/luxfi/treasury/capability"
	"github.com/luxfi/treasury/ledger"
	"github.com/luxfi/treasury/utils/timer/mockable"
)

const testStart = 1_700_000_000

// newTestAirdrop returns an airdrop already set up with a fresh owner and
// funder, and the clock pinned to testStart.
func newTestAirdrop(t *testing.T, l *ledger.InMemory) (*Airdrop, *mockable.Clock, ids.ShortID, ids.ShortID) {
	require := require.New(t)

	clk := &mockable.Clock{}
	clk.Set(time.Unix(testStart, 0))

	p := testParams(l, clk)
	airdrop, err := NewAirdrop(p)
	require.NoError(err)

	owner := ids.GenerateTestShortID()
	funder := ids.GenerateTestShortID()
	require.NoError(airdrop.Setup(p.Creator, owner, funder))
	return airdrop, clk, owner, funder
}

func TestAirdropSetupOnce(t *testing.T) {
	require := require.New(t)

	p := testParams(ledger.NewInMemory(testMinFee, 0), &mockable.Clock{})
	airdrop, err := NewAirdrop(p)
	require.NoError(err)

	owner := ids.GenerateTestShortID()
	funder := ids.GenerateTestShortID()

	require.ErrorIs(
		airdrop.Setup(owner, owner, funder),
		capability.ErrUnauthorized,
	)
	require.NoError(airdrop.Setup(p.Creator, owner, funder))
	require.Equal(owner, airdrop.Owner())
	require.Equal(funder, airdrop.Funder())

	require.ErrorIs(
		airdrop.Setup(p.Creator, owner, funder),
		ErrAlreadyInitialized,
	)
}

func TestAirdropConfigure(t *testing.T) {
	require := require.New(t)

	l := ledger.NewInMemory(testMinFee, 0)
	airdrop, _, owner, funder := newTestAirdrop(t, l)
	l.Fund(funder, 10_000)

	// Only the owner may configure.
	require.ErrorIs(airdrop.Configure(funder, 3), capability.ErrUnauthorized)

	// The deployment cap binds (default limit is 5).
	require.ErrorIs(airdrop.Configure(owner, 6), ErrPeriodTooLarge)

	require.NoError(airdrop.Configure(owner, 3))
	require.Equal(uint64(3), airdrop.Period())

	// Reconfiguring before funding is allowed.
	require.NoError(airdrop.Configure(owner, 5))

	// After funding, configuration is frozen.
	require.NoError(airdrop.Fill(funder, 1000, 1000))
	require.ErrorIs(airdrop.Configure(owner, 2), ErrAlreadyFunded)
}

func TestAirdropFill(t *testing.T) {
	require := require.New(t)

	l := ledger.NewInMemory(testMinFee, 0)
	airdrop, _, owner, funder := newTestAirdrop(t, l)
	l.Fund(funder, 10_000)
	l.Fund(owner, 10_000)

	require.NoError(airdrop.Configure(owner, 3))

	// Only the funder may fill.
	require.ErrorIs(airdrop.Fill(owner, 1000, 1000), capability.ErrUnauthorized)

	// The attached payment and declared funding must both be positive.
	require.ErrorIs(airdrop.Fill(funder, 0, 1000), ErrPaymentMismatch)
	require.ErrorIs(airdrop.Fill(funder, 1000, 0), ErrInvalidFunding)

	require.NoError(airdrop.Fill(funder, 1000, 800))
	require.Equal(uint64(1000), airdrop.Total())
	require.Equal(uint64(1000), l.Balance(airdrop.Address()))
	require.Equal(uint64(9000), l.Balance(funder))

	// Fill is single-shot, regardless of payment.
	require.ErrorIs(airdrop.Fill(funder, 1000, 800), ErrAlreadyFunded)
	require.Equal(uint64(9000), l.Balance(funder))
}

func TestAirdropFillRequiresSetup(t *testing.T) {
	require := require.New(t)

	p := testParams(ledger.NewInMemory(testMinFee, 0), &mockable.Clock{})
	airdrop, err := NewAirdrop(p)
	require.NoError(err)

	err = airdrop.Fill(ids.GenerateTestShortID(), 1000, 1000)
	require.ErrorIs(err, capability.ErrUnauthorized)
}

func TestAirdropWithdrawBeforeFunding(t *testing.T) {
	require := require.New(t)

	l := ledger.NewInMemory(testMinFee, 0)
	airdrop, _, owner, _ := newTestAirdrop(t, l)

	_, err := airdrop.Withdraw(owner, 0)
	require.ErrorIs(err, ErrNotFunded)
	require.ErrorIs(airdrop.Close(owner), ErrNotFunded)
}

func TestAirdropVestingRoundTrip(t *testing.T) {
	require := require.New(t)

	l := ledger.NewInMemory(testMinFee, 0)
	airdrop, clk, owner, funder := newTestAirdrop(t, l)
	l.Fund(funder, 1000)

	cfg := testParams(l, clk).Config

	require.NoError(airdrop.Configure(owner, 3))
	require.NoError(airdrop.Fill(funder, 1000, 1000))

	// Immediately after funding the full amount is locked.
	mab, err := airdrop.Withdraw(owner, 0)
	require.NoError(err)
	require.Equal(uint64(1000), mab)

	// Any withdrawal now would cut into the floor.
	_, err = airdrop.Withdraw(owner, 1)
	require.ErrorIs(err, ErrBelowMinimumBalance)
	require.Equal(uint64(1000), l.Balance(airdrop.Address()))

	// ... and close is premature.
	require.ErrorIs(airdrop.Close(owner), ErrVestingNotComplete)

	// Advance past the vesting delay plus the full lockup window.
	window := (cfg.VestingDelay + cfg.LockupDelay*3) * cfg.PeriodSeconds
	clk.Set(time.Unix(testStart+int64(window), 0))

	mab, err = airdrop.Withdraw(owner, 0)
	require.NoError(err)
	require.Zero(mab)

	// Even fully vested, only the owner may trigger the close-out.
	require.ErrorIs(airdrop.Close(funder), capability.ErrUnauthorized)
	require.False(airdrop.Closed())

	// Everything is withdrawable and the instance can be closed out.
	mab, err = airdrop.Withdraw(owner, 400)
	require.NoError(err)
	require.Zero(mab)
	require.Equal(uint64(400), l.Balance(owner))

	require.NoError(airdrop.Close(owner))
	require.True(airdrop.Closed())
	require.Equal(uint64(1000), l.Balance(owner))

	_, err = airdrop.Withdraw(owner, 0)
	require.ErrorIs(err, ErrClosed)
}

func TestAirdropPartialVesting(t *testing.T) {
	require := require.New(t)

	l := ledger.NewInMemory(testMinFee, 0)
	airdrop, clk, owner, funder := newTestAirdrop(t, l)
	l.Fund(funder, 1000)

	cfg := testParams(l, clk).Config

	require.NoError(airdrop.Configure(owner, 3))
	require.NoError(airdrop.Fill(funder, 1000, 1000))

	// Stop half way through the final decay stretch: the MAB is half the
	// total.
	window := (cfg.VestingDelay + cfg.LockupDelay*3) * cfg.PeriodSeconds
	half := window - 3*cfg.PeriodSeconds/2
	clk.Set(time.Unix(testStart+int64(half), 0))

	mab, err := airdrop.Withdraw(owner, 0)
	require.NoError(err)
	require.Equal(uint64(500), mab)

	// Withdrawing down to the floor is allowed; one unit more is not.
	_, err = airdrop.Withdraw(owner, 501)
	require.ErrorIs(err, ErrBelowMinimumBalance)
	require.Equal(uint64(1000), l.Balance(airdrop.Address()))

	mab, err = airdrop.Withdraw(owner, 500)
	require.NoError(err)
	require.Equal(uint64(500), mab)
	require.Equal(uint64(500), l.Balance(airdrop.Address()))

	require.ErrorIs(airdrop.Close(owner), ErrVestingNotComplete)
}

func TestAirdropWithdrawUnauthorized(t *testing.T) {
	require := require.New(t)

	l := ledger.NewInMemory(testMinFee, 0)
	airdrop, _, owner, funder := newTestAirdrop(t, l)
	l.Fund(funder, 1000)

	require.NoError(airdrop.Configure(owner, 1))
	require.NoError(airdrop.Fill(funder, 1000, 1000))

	_, err := airdrop.Withdraw(funder, 0)
	require.ErrorIs(err, capability.ErrUnauthorized)
}

func TestAirdropMinimumBalanceAt(t *testing.T) {
	require := require.New(t)

	l := ledger.NewInMemory(testMinFee, 0)
	airdrop, clk, owner, funder := newTestAirdrop(t, l)
	l.Fund(funder, 1000)

	_, err := airdrop.MinimumBalanceAt(testStart)
	require.ErrorIs(err, ErrNotFunded)

	cfg := testParams(l, clk).Config
	require.NoError(airdrop.Configure(owner, 3))
	require.NoError(airdrop.Fill(funder, 1000, 1000))

	mab, err := airdrop.MinimumBalanceAt(testStart)
	require.NoError(err)
	require.Equal(uint64(1000), mab)

	window := (cfg.VestingDelay + cfg.LockupDelay*3) * cfg.PeriodSeconds
	mab, err = airdrop.MinimumBalanceAt(testStart + window)
	require.NoError(err)
	require.Zero(mab)
}

func TestAirdropParticipate(t *testing.T) {
	require := require.New(t)

	l := ledger.NewInMemory(testMinFee, 0)
	airdrop, _, owner, funder := newTestAirdrop(t, l)
	l.Fund(funder, 1000)
	l.Fund(owner, testMinFee)

	require.NoError(airdrop.Configure(owner, 1))
	require.NoError(airdrop.Fill(funder, 1000, 1000))

	// Registration works while everything is still locked: the exact-fee
	// deposit keeps the MAB irrelevant.
	require.NoError(airdrop.Participate(owner, testMinFee, testKeyInfo()))
	require.Len(l.Registrations(), 1)
	require.Equal(uint64(1000), l.Balance(airdrop.Address()))
}
