// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package messenger republishes consensus participation key registrations
// for off-chain observers. Broadcasts are fire-and-forget: subscribers
// filter on the registering address and nothing is ever read back.
package messenger

import (
	"net/http"
	"sync"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/pubsub"

	"github.com/luxfi/treasury/capability"
	"github.com/luxfi/treasury/keys"
)

// PartKeyMessage is the published payload: who registered, and the key
// material verbatim.
type PartKeyMessage struct {
	Who  ids.ShortID `json:"who"`
	Keys keys.Info   `json:"keys"`
}

// Messenger is an upgradeable broadcast instance.
type Messenger struct {
	id     ids.ID
	server *pubsub.Server
	log    log.Logger

	mu   sync.Mutex
	caps *capability.State
}

// New returns a messenger owned by nobody, created by creator.
func New(id ids.ID, creator ids.ShortID, logger log.Logger) *Messenger {
	if logger == nil {
		logger = log.NoLog{}
	}
	return &Messenger{
		id:     id,
		server: pubsub.New(logger),
		log:    logger,
		caps:   capability.New(creator),
	}
}

// Broadcast publishes a partkey registration on behalf of caller. The key
// material is validated for shape only and forwarded verbatim.
func (m *Messenger) Broadcast(caller ids.ShortID, info keys.Info) error {
	if err := info.Verify(); err != nil {
		return err
	}
	m.server.Publish(&partKeyFilterer{msg: PartKeyMessage{
		Who:  caller,
		Keys: info,
	}})

	m.log.Info("partkey broadcast",
		log.Stringer("messenger", m.id),
		log.Stringer("who", caller),
		log.Uint64("voteFirst", info.VoteFirst),
		log.Uint64("voteLast", info.VoteLast),
	)
	return nil
}

// SetVersion records version metadata. Creator only.
func (m *Messenger) SetVersion(caller ids.ShortID, contractVersion, deploymentVersion uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.caps.SetVersion(caller, contractVersion, deploymentVersion)
}

// AllowUpdate is the upgrade gate for the messenger instance itself.
func (m *Messenger) AllowUpdate(caller ids.ShortID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.caps.AllowUpdate(caller)
}

// ID returns the messenger's instance identifier.
func (m *Messenger) ID() ids.ID {
	return m.id
}

// Handler exposes the subscription endpoint.
func (m *Messenger) Handler() http.Handler {
	return m.server
}

type partKeyFilterer struct {
	msg PartKeyMessage
}

// Filter matches subscribers whose address filter covers the registering
// account.
func (f *partKeyFilterer) Filter(filters []pubsub.Filter) ([]bool, interface{}) {
	resp := make([]bool, len(filters))
	for i, filter := range filters {
		resp[i] = filter.Check(f.msg.Who[:])
	}
	return resp, f.msg
}
