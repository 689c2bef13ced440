// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package capability

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"
)

func TestNew(t *testing.T) {
	require := require.New(t)

	creator := ids.GenerateTestShortID()
	s := New(creator)

	require.Equal(creator, s.Creator)
	require.Equal(ids.ShortEmpty, s.Owner)
	require.Equal(ids.ShortEmpty, s.Delegate)
	require.True(s.Stakeable)
	require.True(s.Updatable)
	require.True(s.Deletable)
}

func TestTransfer(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	next := ids.GenerateTestShortID()
	stranger := ids.GenerateTestShortID()

	s := New(ids.GenerateTestShortID())
	s.Owner = owner

	require.ErrorIs(s.Transfer(stranger, next), ErrUnauthorized)
	require.Equal(owner, s.Owner)

	require.NoError(s.Transfer(owner, next))
	require.Equal(next, s.Owner)

	// The previous owner lost control.
	require.ErrorIs(s.Transfer(owner, owner), ErrUnauthorized)
}

func TestSetDelegate(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	delegate := ids.GenerateTestShortID()

	s := New(ids.GenerateTestShortID())
	s.Owner = owner

	require.ErrorIs(s.SetDelegate(delegate, delegate), ErrUnauthorized)
	require.NoError(s.SetDelegate(owner, delegate))
	require.Equal(delegate, s.Delegate)
}

func TestIsController(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	delegate := ids.GenerateTestShortID()

	s := New(ids.GenerateTestShortID())
	s.Owner = owner

	require.True(s.IsController(owner))
	require.False(s.IsController(delegate))
	// The zero delegate sentinel must not grant control to a zero caller.
	require.False(s.IsController(ids.ShortEmpty))

	require.NoError(s.SetDelegate(owner, delegate))
	require.True(s.IsController(delegate))
}

func TestVersionCreatorOnly(t *testing.T) {
	require := require.New(t)

	creator := ids.GenerateTestShortID()
	owner := ids.GenerateTestShortID()

	s := New(creator)
	s.Owner = owner

	require.ErrorIs(s.SetVersion(owner, 1, 2), ErrUnauthorized)
	require.NoError(s.SetVersion(creator, 1, 2))
	require.Equal(uint64(1), s.ContractVersion)
	require.Equal(uint64(2), s.DeploymentVersion)
}

func TestUpdateGate(t *testing.T) {
	require := require.New(t)

	creator := ids.GenerateTestShortID()
	owner := ids.GenerateTestShortID()

	s := New(creator)
	s.Owner = owner

	require.ErrorIs(s.AllowUpdate(owner), ErrUnauthorized)
	require.NoError(s.AllowUpdate(creator))

	// Owner revokes the approval; the creator gate closes.
	require.NoError(s.ApproveUpdate(owner, false))
	require.ErrorIs(s.AllowUpdate(creator), ErrNotApproved)

	require.NoError(s.ApproveUpdate(owner, true))
	require.NoError(s.AllowUpdate(creator))
}

func TestDeleteGate(t *testing.T) {
	require := require.New(t)

	creator := ids.GenerateTestShortID()
	owner := ids.GenerateTestShortID()

	s := New(creator)
	s.Owner = owner

	require.ErrorIs(s.AllowDelete(owner), ErrUnauthorized)
	require.NoError(s.AllowDelete(creator))

	require.NoError(s.ApproveDelete(owner, false))
	require.ErrorIs(s.AllowDelete(creator), ErrNotApproved)
}

func TestSetStakeable(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()

	s := New(ids.GenerateTestShortID())
	s.Owner = owner

	require.ErrorIs(s.SetStakeable(ids.GenerateTestShortID(), false), ErrUnauthorized)
	require.NoError(s.SetStakeable(owner, false))
	require.False(s.Stakeable)
}
