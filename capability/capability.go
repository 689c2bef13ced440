// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package capability implements the layered authorization primitives shared
// by every treasury instance: single-owner control, delegate assignment, and
// the creator-gated upgrade and delete approvals. The original trait stack is
// flattened into one state record; each operation takes the authenticated
// caller and checks it against the stored references.
package capability

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotApproved  = errors.New("not approved")
)

// State is the union of the ownable, stakeable, upgradeable and deletable
// capability fields. The zero ShortID is the uninitialized sentinel for
// Owner and the "none" sentinel for Delegate.
type State struct {
	Owner    ids.ShortID
	Delegate ids.ShortID

	// Creator is fixed at deployment and never reassigned.
	Creator ids.ShortID

	// Capability flags, all unlocked by default.
	Stakeable bool
	Updatable bool
	Deletable bool

	// Version metadata, informational, creator-only.
	ContractVersion   uint64
	DeploymentVersion uint64
}

// New returns a capability state with every flag unlocked and no owner.
func New(creator ids.ShortID) *State {
	return &State{
		Creator:   creator,
		Stakeable: true,
		Updatable: true,
		Deletable: true,
	}
}

// Transfer reassigns ownership. Owner only.
func (s *State) Transfer(caller, newOwner ids.ShortID) error {
	if caller != s.Owner {
		return fmt.Errorf("%w: must be owner", ErrUnauthorized)
	}
	s.Owner = newOwner
	return nil
}

// SetDelegate assigns the consensus-participation delegate. Owner only.
func (s *State) SetDelegate(caller, delegate ids.ShortID) error {
	if caller != s.Owner {
		return fmt.Errorf("%w: must be owner", ErrUnauthorized)
	}
	s.Delegate = delegate
	return nil
}

// ApproveUpdate toggles whether a pending code upgrade may proceed. Owner
// only.
func (s *State) ApproveUpdate(caller ids.ShortID, approval bool) error {
	if caller != s.Owner {
		return fmt.Errorf("%w: must be owner", ErrUnauthorized)
	}
	s.Updatable = approval
	return nil
}

// ApproveDelete toggles whether the instance may be deleted. Owner only.
func (s *State) ApproveDelete(caller ids.ShortID, approval bool) error {
	if caller != s.Owner {
		return fmt.Errorf("%w: must be owner", ErrUnauthorized)
	}
	s.Deletable = approval
	return nil
}

// SetStakeable toggles the consensus-participation capability. Owner only.
func (s *State) SetStakeable(caller ids.ShortID, allowed bool) error {
	if caller != s.Owner {
		return fmt.Errorf("%w: must be owner", ErrUnauthorized)
	}
	s.Stakeable = allowed
	return nil
}

// SetVersion records version metadata. Creator only.
func (s *State) SetVersion(caller ids.ShortID, contractVersion, deploymentVersion uint64) error {
	if caller != s.Creator {
		return fmt.Errorf("%w: must be creator", ErrUnauthorized)
	}
	s.ContractVersion = contractVersion
	s.DeploymentVersion = deploymentVersion
	return nil
}

// AllowUpdate is the upgrade-gate hook invoked by the surrounding runtime
// before swapping code. Creator only, and the owner must not have revoked
// the updatable flag.
func (s *State) AllowUpdate(caller ids.ShortID) error {
	if caller != s.Creator {
		return fmt.Errorf("%w: must be creator", ErrUnauthorized)
	}
	if !s.Updatable {
		return fmt.Errorf("%w: update", ErrNotApproved)
	}
	return nil
}

// AllowDelete is the delete-gate hook invoked by the surrounding runtime.
// Creator only, and the deletable flag must still be set.
func (s *State) AllowDelete(caller ids.ShortID) error {
	if caller != s.Creator {
		return fmt.Errorf("%w: must be creator", ErrUnauthorized)
	}
	if !s.Deletable {
		return fmt.Errorf("%w: delete", ErrNotApproved)
	}
	return nil
}

// IsController reports whether caller is the owner or the delegate.
func (s *State) IsController(caller ids.ShortID) bool {
	return caller == s.Owner || (s.Delegate != ids.ShortEmpty && caller == s.Delegate)
}
