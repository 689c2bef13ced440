// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import (
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/treasury/capability"
	"github.com/luxfi/treasury/keys"
	"github.com/luxfi/treasury/ledger"
)

// participate is the shared consensus-participation path. The caller must
// hold the instance lock. The attached payment is required to equal exactly
// one fee unit, and the deposit and the fee burn land in a single ledger
// effect: no value leaves custody, the MAB floor stays irrelevant, and a
// rejected registration costs the caller nothing.
func participate(
	caps *capability.State,
	addr ids.ShortID,
	ldgr ledger.Ledger,
	logger log.Logger,
	closed bool,
	caller ids.ShortID,
	payment uint64,
	info keys.Info,
) error {
	if closed {
		return ErrClosed
	}
	if !caps.IsController(caller) {
		return fmt.Errorf("%w: must be owner or delegate", capability.ErrUnauthorized)
	}
	if !caps.Stakeable {
		return fmt.Errorf("%w: staking capability revoked", capability.ErrNotApproved)
	}
	if err := info.Verify(); err != nil {
		return err
	}

	fee := ldgr.MinFee()
	if payment != fee {
		return fmt.Errorf("%w: attached %d, fee is %d", ErrPaymentMismatch, payment, fee)
	}
	if err := ldgr.RegisterParticipation(caller, addr, info, fee); err != nil {
		return err
	}

	logger.Info("participation registered",
		log.Stringer("account", addr),
		log.Uint64("voteFirst", info.VoteFirst),
		log.Uint64("voteLast", info.VoteLast),
	)
	return nil
}
