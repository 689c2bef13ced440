// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vesting computes the minimum allowable balance (MAB) of a funded
// treasury: the floor below which withdrawals may not reduce the custody
// balance. The calculation is pure; callers supply the observation time.
package vesting

import "math/big"

// Schedule captures the immutable vesting parameters fixed at funding time.
type Schedule struct {
	// FundedAt is the unix second of the funding call.
	FundedAt uint64

	// VestingDelay is the offset, in periods, before decay begins.
	VestingDelay uint64

	// PeriodSeconds is the length of one period in seconds.
	PeriodSeconds uint64

	// LockupPeriods is the lockup window in periods, already scaled by the
	// configured period (deployment lockup delay x period).
	LockupPeriods uint64

	// Period is the owner-configured lockup scale.
	Period uint64

	// Funding is the declared airdrop amount. It is recorded alongside the
	// schedule but does not enter the minimum balance computation; Total is
	// what bounds the floor.
	Funding uint64

	// Total is the value actually received at funding time. The MAB never
	// exceeds it.
	Total uint64
}

// MinimumBalance returns the balance that must remain in custody at the
// given unix time. It is monotonically non-increasing in now, equals Total
// through the vesting offset and lockup window, and reaches zero once the
// full window has elapsed. All intermediate subtractions clamp at zero.
func (s Schedule) MinimumBalance(now uint64) uint64 {
	var elapsed uint64
	if now > s.FundedAt {
		elapsed = now - s.FundedAt
	}

	offset := s.VestingDelay * s.PeriodSeconds
	var effective uint64
	if elapsed > offset {
		effective = elapsed - offset
	}

	lockup := s.LockupPeriods * s.PeriodSeconds
	var remaining uint64
	if lockup > effective {
		remaining = lockup - effective
	}

	denom := s.Period * s.PeriodSeconds
	if denom == 0 {
		// Degenerate schedule with no configured period: the full amount
		// stays locked until the window has elapsed, then releases at once.
		if elapsed < offset+lockup {
			return s.Total
		}
		return 0
	}

	if remaining >= denom {
		return s.Total
	}

	// mab = Total * remaining / denom, computed wide to avoid overflow.
	mab := new(big.Int).SetUint64(s.Total)
	mab.Mul(mab, new(big.Int).SetUint64(remaining))
	mab.Div(mab, new(big.Int).SetUint64(denom))
	return mab.Uint64()
}

// FullyVestedAt returns the earliest unix time at which the minimum balance
// is zero.
func (s Schedule) FullyVestedAt() uint64 {
	return s.FundedAt + s.VestingDelay*s.PeriodSeconds + s.LockupPeriods*s.PeriodSeconds
}
