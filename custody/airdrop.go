// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import (
	"fmt"
	"sync"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	safemath "github.com/luxfi/math"

	"github.com/luxfi/treasury/capability"
	"github.com/luxfi/treasury/config"
	"github.com/luxfi/treasury/keys"
	"github.com/luxfi/treasury/ledger"
	"github.com/luxfi/treasury/utils/timer/mockable"
	"github.com/luxfi/treasury/vesting"
)

// Airdrop is the funded, time-locked treasury. Its lifecycle is
// Uninitialized -> Configured -> Funded -> Closed; withdrawals may never
// push the available balance below the minimum allowable balance of the
// vesting schedule, and close requires the schedule to have fully vested.
type Airdrop struct {
	cfg config.Config

	id       ids.ID
	parentID ids.ID
	addr     ids.ShortID

	ledger ledger.Ledger
	clock  *mockable.Clock
	log    log.Logger

	mu     sync.RWMutex
	caps   *capability.State
	closed bool

	// Vesting state, each field set exactly once.
	funder   ids.ShortID
	period   uint64
	funding  uint64
	total    uint64
	fundedAt uint64
}

// NewAirdrop constructs an uninitialized vesting treasury.
func NewAirdrop(p Params) (*Airdrop, error) {
	if err := p.verify(); err != nil {
		return nil, err
	}
	return &Airdrop{
		cfg:      p.Config,
		id:       p.InstanceID,
		parentID: p.ParentID,
		addr:     p.Address,
		ledger:   p.Ledger,
		clock:    p.Clock,
		log:      p.Log,
		caps:     capability.New(p.Creator),
	}, nil
}

// Setup assigns the owner and funder. Callable only by the creator, only
// while both references are still the zero sentinel.
func (a *Airdrop) Setup(caller, owner, funder ids.ShortID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.closed:
		return ErrClosed
	case a.caps.Owner != ids.ShortEmpty || a.funder != ids.ShortEmpty:
		return ErrAlreadyInitialized
	case caller != a.caps.Creator:
		return fmt.Errorf("%w: must be creator", capability.ErrUnauthorized)
	}
	a.caps.Owner = owner
	a.funder = funder

	a.log.Info("airdrop set up",
		log.Stringer("id", a.id),
		log.Stringer("owner", owner),
		log.Stringer("funder", funder),
	)
	return nil
}

// Configure sets the lockup period. Owner only, only before funding, and
// the period may not exceed the deployment-fixed limit.
func (a *Airdrop) Configure(caller ids.ShortID, period uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.closed:
		return ErrClosed
	case a.funding != 0 || a.total != 0:
		return ErrAlreadyFunded
	case caller != a.caps.Owner:
		return fmt.Errorf("%w: must be owner", capability.ErrUnauthorized)
	case period > a.cfg.PeriodLimit:
		return fmt.Errorf("%w: %d > %d", ErrPeriodTooLarge, period, a.cfg.PeriodLimit)
	}
	a.period = period

	a.log.Info("airdrop configured",
		log.Stringer("id", a.id),
		log.Uint64("period", period),
	)
	return nil
}

// Fill performs the one-time funding event. Funder only; the attached
// payment becomes the custody total, the declared funding records the
// airdrop amount, and the funding timestamp anchors the vesting schedule.
func (a *Airdrop) Fill(caller ids.ShortID, payment, declared uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.closed:
		return ErrClosed
	case a.caps.Owner == ids.ShortEmpty || a.funder == ids.ShortEmpty:
		return fmt.Errorf("%w: instance not set up", capability.ErrUnauthorized)
	case a.funding != 0:
		return ErrAlreadyFunded
	case caller != a.funder:
		return fmt.Errorf("%w: must be funder", capability.ErrUnauthorized)
	case payment == 0:
		return fmt.Errorf("%w: attached payment required", ErrPaymentMismatch)
	case declared == 0:
		return ErrInvalidFunding
	}
	if err := a.ledger.Transfer(caller, a.addr, payment, 0); err != nil {
		return err
	}
	a.total = payment
	a.funding = declared
	a.fundedAt = a.clock.Unix()

	a.log.Info("airdrop funded",
		log.Stringer("id", a.id),
		log.Uint64("total", a.total),
		log.Uint64("funding", a.funding),
		log.Uint64("fundedAt", a.fundedAt),
	)
	return nil
}

// Withdraw moves amount from custody to the owner, bounded by the minimum
// allowable balance, and returns the MAB observed for this call. A zero
// amount probes the current MAB without moving value.
func (a *Airdrop) Withdraw(caller ids.ShortID, amount uint64) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.closed:
		return 0, ErrClosed
	case a.funding == 0:
		return 0, ErrNotFunded
	case caller != a.caps.Owner:
		return 0, fmt.Errorf("%w: must be owner", capability.ErrUnauthorized)
	}

	mab := a.schedule().MinimumBalance(a.clock.Unix())
	available := a.ledger.AvailableBalance(a.addr)
	remaining, err := safemath.Sub(available, amount)
	if err != nil || remaining < mab {
		return 0, fmt.Errorf("%w: %d requested, %d available, mab %d",
			ErrBelowMinimumBalance, amount, available, mab)
	}
	if amount > 0 {
		if err := a.ledger.Transfer(a.addr, caller, amount, 0); err != nil {
			return 0, err
		}
	}

	a.log.Debug("airdrop withdrawal",
		log.Stringer("id", a.id),
		log.Uint64("amount", amount),
		log.Uint64("mab", mab),
	)
	return mab, nil
}

// Close pays out and closes the custody balance to the owner and permanently
// destroys the instance, and only once the schedule has fully vested. The
// payout can only ever reach the owner; the call is still owner-gated, the
// same way Withdraw is, so nobody else can pick the moment the instance
// disappears.
func (a *Airdrop) Close(caller ids.ShortID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.closed:
		return ErrClosed
	case a.funding == 0:
		return ErrNotFunded
	case caller != a.caps.Owner:
		return fmt.Errorf("%w: must be owner", capability.ErrUnauthorized)
	}
	if mab := a.schedule().MinimumBalance(a.clock.Unix()); mab != 0 {
		return fmt.Errorf("%w: mab %d", ErrVestingNotComplete, mab)
	}
	if err := a.ledger.CloseTo(a.addr, a.caps.Owner); err != nil {
		return err
	}
	a.closed = true

	a.log.Info("airdrop closed", log.Stringer("id", a.id))
	return nil
}

// Participate registers consensus participation key material for the custody
// account. Owner or delegate only, exact-fee payment required.
func (a *Airdrop) Participate(caller ids.ShortID, payment uint64, info keys.Info) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return participate(a.caps, a.addr, a.ledger, a.log, a.closed, caller, payment, info)
}

// MinimumBalanceAt returns the MAB the schedule imposes at the given unix
// time. The instance must be funded.
func (a *Airdrop) MinimumBalanceAt(now uint64) (uint64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.funding == 0 {
		return 0, ErrNotFunded
	}
	return a.schedule().MinimumBalance(now), nil
}

// schedule snapshots the vesting parameters. The lock must be held.
func (a *Airdrop) schedule() vesting.Schedule {
	return vesting.Schedule{
		FundedAt:      a.fundedAt,
		VestingDelay:  a.cfg.VestingDelay,
		PeriodSeconds: a.cfg.PeriodSeconds,
		LockupPeriods: a.cfg.LockupDelay * a.period,
		Period:        a.period,
		Funding:       a.funding,
		Total:         a.total,
	}
}

// TransferOwnership reassigns the owner. Owner only.
func (a *Airdrop) TransferOwnership(caller, newOwner ids.ShortID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.Transfer(caller, newOwner)
}

// SetDelegate assigns the participation delegate. Owner only.
func (a *Airdrop) SetDelegate(caller, delegate ids.ShortID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.SetDelegate(caller, delegate)
}

// ApproveUpdate toggles the upgrade approval flag. Owner only.
func (a *Airdrop) ApproveUpdate(caller ids.ShortID, approval bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.ApproveUpdate(caller, approval)
}

// ApproveDelete toggles the delete approval flag. Owner only.
func (a *Airdrop) ApproveDelete(caller ids.ShortID, approval bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.ApproveDelete(caller, approval)
}

// SetStakeable toggles the participation capability flag. Owner only.
func (a *Airdrop) SetStakeable(caller ids.ShortID, allowed bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.SetStakeable(caller, allowed)
}

// SetVersion records version metadata. Creator only.
func (a *Airdrop) SetVersion(caller ids.ShortID, contractVersion, deploymentVersion uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.SetVersion(caller, contractVersion, deploymentVersion)
}

// AllowUpdate is the terminal-lifecycle upgrade gate.
func (a *Airdrop) AllowUpdate(caller ids.ShortID) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.AllowUpdate(caller)
}

// AllowDelete is the terminal-lifecycle delete gate.
func (a *Airdrop) AllowDelete(caller ids.ShortID) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.AllowDelete(caller)
}

func (a *Airdrop) ID() ids.ID { return a.id }

func (a *Airdrop) ParentID() ids.ID { return a.parentID }

func (a *Airdrop) Address() ids.ShortID { return a.addr }

// Owner returns the current owner, or the zero sentinel before Setup.
func (a *Airdrop) Owner() ids.ShortID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.caps.Owner
}

// Funder returns the funder, or the zero sentinel before Setup.
func (a *Airdrop) Funder() ids.ShortID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.funder
}

// Period returns the configured lockup period.
func (a *Airdrop) Period() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.period
}

// Total returns the value received at funding time, zero before Fill.
func (a *Airdrop) Total() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.total
}

// Closed reports whether the instance has been destroyed.
func (a *Airdrop) Closed() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.closed
}
