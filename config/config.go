// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines the deployment-fixed parameters of the treasury
// engine. A Config is supplied once at construction and never mutated.
package config

import (
	"errors"

	"github.com/luxfi/ids"
)

var (
	ErrZeroPeriodSeconds = errors.New("period seconds must be greater than zero")
	ErrZeroPeriodLimit   = errors.New("period limit must be greater than zero")
)

// Config contains the template parameters injected at deployment time.
type Config struct {
	// MessengerID identifies the broadcast instance used for partkey
	// republication.
	MessengerID ids.ID `json:"messengerID"`

	// PeriodSeconds is the length of one vesting period in seconds.
	PeriodSeconds uint64 `json:"periodSeconds"`

	// LockupDelay scales the configured period into the lockup window,
	// expressed in periods.
	LockupDelay uint64 `json:"lockupDelay"`

	// VestingDelay is the offset, in periods, applied before the minimum
	// allowable balance starts decaying.
	VestingDelay uint64 `json:"vestingDelay"`

	// PeriodLimit is the largest period a treasury owner may configure.
	PeriodLimit uint64 `json:"periodLimit"`
}

// DefaultConfig returns the reference deployment parameters: 30 day periods
// with a 12 period lockup scale and vesting delay.
func DefaultConfig() Config {
	return Config{
		PeriodSeconds: 2592000, // 30 days
		LockupDelay:   12,
		VestingDelay:  12,
		PeriodLimit:   5,
	}
}

// Validate returns an error if the configuration cannot support vesting
// arithmetic.
func (c Config) Validate() error {
	switch {
	case c.PeriodSeconds == 0:
		return ErrZeroPeriodSeconds
	case c.PeriodLimit == 0:
		return ErrZeroPeriodLimit
	default:
		return nil
	}
}
