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
)

// Account is the plain owner-custodied treasury. Its lifecycle is
// Uninitialized -> Active -> Closed; the owner may withdraw anything up to
// the available balance.
type Account struct {
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
}

// NewAccount constructs an uninitialized account instance. The caller is
// expected to be a factory, which records itself as parent and invokes Setup
// exactly once immediately after.
func NewAccount(p Params) (*Account, error) {
	if err := p.verify(); err != nil {
		return nil, err
	}
	return &Account{
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

// Setup assigns the owner and delegate. Callable only by the creator, only
// while the owner is still the zero sentinel.
func (a *Account) Setup(caller, owner, delegate ids.ShortID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.closed:
		return ErrClosed
	case a.caps.Owner != ids.ShortEmpty:
		return ErrAlreadyInitialized
	case caller != a.caps.Creator:
		return fmt.Errorf("%w: must be creator", capability.ErrUnauthorized)
	}
	a.caps.Owner = owner
	a.caps.Delegate = delegate

	a.log.Info("account set up",
		log.Stringer("id", a.id),
		log.Stringer("owner", owner),
		log.Stringer("delegate", delegate),
	)
	return nil
}

// Participate registers consensus participation key material for the custody
// account. Owner or delegate only; the attached payment must equal exactly
// one network fee unit so that registration cannot drain the balance.
func (a *Account) Participate(caller ids.ShortID, payment uint64, info keys.Info) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return participate(a.caps, a.addr, a.ledger, a.log, a.closed, caller, payment, info)
}

// Withdraw moves amount from custody to the owner and returns the available
// balance observed before the transfer. A zero amount is a balance probe.
func (a *Account) Withdraw(caller ids.ShortID, amount uint64) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return 0, ErrClosed
	}
	if caller != a.caps.Owner {
		return 0, fmt.Errorf("%w: must be owner", capability.ErrUnauthorized)
	}

	available := a.ledger.AvailableBalance(a.addr)
	if _, err := safemath.Sub(available, amount); err != nil {
		return 0, fmt.Errorf("%w: %d requested, %d available",
			ErrInsufficientFunds, amount, available)
	}
	if amount > 0 {
		if err := a.ledger.Transfer(a.addr, caller, amount, 0); err != nil {
			return 0, err
		}
	}

	a.log.Debug("withdrawal",
		log.Stringer("id", a.id),
		log.Uint64("amount", amount),
		log.Uint64("available", available),
	)
	return available, nil
}

// Close pays out and closes the remaining custody balance to the owner and
// permanently destroys the instance. Owner only.
func (a *Account) Close(caller ids.ShortID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if caller != a.caps.Owner {
		return fmt.Errorf("%w: must be owner", capability.ErrUnauthorized)
	}
	if err := a.ledger.CloseTo(a.addr, a.caps.Owner); err != nil {
		return err
	}
	a.closed = true

	a.log.Info("account closed", log.Stringer("id", a.id))
	return nil
}

// TransferOwnership reassigns the owner. Owner only.
func (a *Account) TransferOwnership(caller, newOwner ids.ShortID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.Transfer(caller, newOwner)
}

// SetDelegate assigns the participation delegate. Owner only.
func (a *Account) SetDelegate(caller, delegate ids.ShortID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.SetDelegate(caller, delegate)
}

// ApproveUpdate toggles the upgrade approval flag. Owner only.
func (a *Account) ApproveUpdate(caller ids.ShortID, approval bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.ApproveUpdate(caller, approval)
}

// ApproveDelete toggles the delete approval flag. Owner only.
func (a *Account) ApproveDelete(caller ids.ShortID, approval bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.ApproveDelete(caller, approval)
}

// SetStakeable toggles the participation capability flag. Owner only.
func (a *Account) SetStakeable(caller ids.ShortID, allowed bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.SetStakeable(caller, allowed)
}

// SetVersion records version metadata. Creator only.
func (a *Account) SetVersion(caller ids.ShortID, contractVersion, deploymentVersion uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.SetVersion(caller, contractVersion, deploymentVersion)
}

// AllowUpdate is the terminal-lifecycle upgrade gate.
func (a *Account) AllowUpdate(caller ids.ShortID) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.AllowUpdate(caller)
}

// AllowDelete is the terminal-lifecycle delete gate.
func (a *Account) AllowDelete(caller ids.ShortID) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	return a.caps.AllowDelete(caller)
}

func (a *Account) ID() ids.ID { return a.id }

func (a *Account) ParentID() ids.ID { return a.parentID }

func (a *Account) Address() ids.ShortID { return a.addr }

// Owner returns the current owner, or the zero sentinel before Setup.
func (a *Account) Owner() ids.ShortID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.caps.Owner
}

// Delegate returns the current delegate, or the zero sentinel.
func (a *Account) Delegate() ids.ShortID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.caps.Delegate
}

// Closed reports whether the instance has been destroyed.
func (a *Account) Closed() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.closed
}
