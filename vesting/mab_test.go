// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vesting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const periodSeconds = 2592000 // 30 days

func testSchedule() Schedule {
	return Schedule{
		FundedAt:      1_700_000_000,
		VestingDelay:  12,
		PeriodSeconds: periodSeconds,
		LockupPeriods: 36, // lockup delay 12 x period 3
		Period:        3,
		Funding:       1000,
		Total:         1000,
	}
}

func TestMinimumBalanceBoundaries(t *testing.T) {
	s := testSchedule()
	offset := s.VestingDelay * s.PeriodSeconds
	lockup := s.LockupPeriods * s.PeriodSeconds

	tests := []struct {
		name string
		now  uint64
		want uint64
	}{
		{
			name: "before funding",
			now:  s.FundedAt - 1,
			want: s.Total,
		},
		{
			name: "at funding",
			now:  s.FundedAt,
			want: s.Total,
		},
		{
			name: "inside vesting delay",
			now:  s.FundedAt + offset/2,
			want: s.Total,
		},
		{
			name: "inside lockup window",
			now:  s.FundedAt + offset + 10*s.PeriodSeconds,
			want: s.Total,
		},
		{
			name: "half of final decay window remaining",
			now:  s.FundedAt + offset + lockup - 3*s.PeriodSeconds/2,
			want: s.Total / 2,
		},
		{
			name: "one second before fully vested",
			now:  s.FundedAt + offset + lockup - 1,
			want: 0, // 1000 * 1 / (3 * periodSeconds) truncates to zero
		},
		{
			name: "exactly fully vested",
			now:  s.FundedAt + offset + lockup,
			want: 0,
		},
		{
			name: "long after fully vested",
			now:  s.FundedAt + offset + lockup + 100*s.PeriodSeconds,
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.MinimumBalance(tt.now))
		})
	}
}

func TestMinimumBalanceMonotonic(t *testing.T) {
	require := require.New(t)

	s := testSchedule()
	end := s.FullyVestedAt() + s.PeriodSeconds

	prev := s.MinimumBalance(s.FundedAt)
	require.Equal(s.Total, prev)
	for now := s.FundedAt; now <= end; now += s.PeriodSeconds / 4 {
		mab := s.MinimumBalance(now)
		require.LessOrEqual(mab, prev, "mab increased at %d", now)
		require.LessOrEqual(mab, s.Total)
		prev = mab
	}
	require.Zero(s.MinimumBalance(end))
}

func TestMinimumBalanceNeverExceedsTotal(t *testing.T) {
	require := require.New(t)

	// Total larger than funding, large enough that the intermediate product
	// would overflow 64 bits without wide arithmetic.
	s := testSchedule()
	s.Total = 1 << 62
	s.Funding = 1 << 61

	require.Equal(s.Total, s.MinimumBalance(s.FundedAt))
	half := s.FundedAt + s.VestingDelay*s.PeriodSeconds +
		s.LockupPeriods*s.PeriodSeconds - 3*s.PeriodSeconds/2
	require.Equal(s.Total/2, s.MinimumBalance(half))
}

func TestMinimumBalanceZeroPeriod(t *testing.T) {
	require := require.New(t)

	// An unconfigured schedule keeps everything locked through the offset,
	// then releases at once.
	s := testSchedule()
	s.Period = 0
	s.LockupPeriods = 0
	offset := s.VestingDelay * s.PeriodSeconds

	require.Equal(s.Total, s.MinimumBalance(s.FundedAt))
	require.Equal(s.Total, s.MinimumBalance(s.FundedAt+offset-1))
	require.Zero(s.MinimumBalance(s.FundedAt + offset))
}

func TestFullyVestedAt(t *testing.T) {
	require := require.New(t)

	s := testSchedule()
	at := s.FullyVestedAt()
	require.Zero(s.MinimumBalance(at))
	require.NotZero(s.MinimumBalance(at - s.PeriodSeconds/2))
}
