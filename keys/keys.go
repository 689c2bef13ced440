// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package keys holds consensus participation key material. The engine only
// validates presence and shape; the blobs are forwarded verbatim to the
// ledger's registration effect.
package keys

import "errors"

const (
	VoteKeyLen       = 32
	SelectionKeyLen  = 32
	StateProofKeyLen = 64
)

var (
	ErrEmptyVoteKey       = errors.New("empty vote key")
	ErrEmptySelectionKey  = errors.New("empty selection key")
	ErrInvalidVoteRange   = errors.New("vote first round is after vote last round")
	ErrZeroVoteDilution   = errors.New("vote key dilution must be greater than zero")
	ErrEmptyStateProofKey = errors.New("empty state proof key")
)

// Info is one participation key bundle.
type Info struct {
	VoteKey         [VoteKeyLen]byte       `serialize:"true" json:"voteKey"`
	SelectionKey    [SelectionKeyLen]byte  `serialize:"true" json:"selectionKey"`
	VoteFirst       uint64                 `serialize:"true" json:"voteFirst"`
	VoteLast        uint64                 `serialize:"true" json:"voteLast"`
	VoteKeyDilution uint64                 `serialize:"true" json:"voteKeyDilution"`
	StateProofKey   [StateProofKeyLen]byte `serialize:"true" json:"stateProofKey"`
}

// Verify checks the shape of the bundle. It does not interpret the key
// material.
func (k *Info) Verify() error {
	switch {
	case k.VoteKey == [VoteKeyLen]byte{}:
		return ErrEmptyVoteKey
	case k.SelectionKey == [SelectionKeyLen]byte{}:
		return ErrEmptySelectionKey
	case k.VoteFirst > k.VoteLast:
		return ErrInvalidVoteRange
	case k.VoteKeyDilution == 0:
		return ErrZeroVoteDilution
	case k.StateProofKey == [StateProofKeyLen]byte{}:
		return ErrEmptyStateProofKey
	default:
		return nil
	}
}
