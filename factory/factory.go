// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package factory owns the creation of treasury instances. It is the only
// caller that can succeed at an instance's one-shot Setup: every create
// operation constructs the instance and immediately performs the setup call
// as creator, then persists a record of the instance under its id.
package factory

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/treasury/config"
	"github.com/luxfi/treasury/custody"
	"github.com/luxfi/treasury/ledger"
	"github.com/luxfi/treasury/utils/timer/mockable"
)

var (
	ErrUnknownInstance = errors.New("unknown instance")

	errNilLedger = errors.New("nil ledger")
	errNilDB     = errors.New("nil database")

	recordPrefix    = []byte("record")
	singletonPrefix = []byte("singleton")

	nonceKey = []byte("nonce")
)

// Kind discriminates the two instance flavors in persisted records.
type Kind uint8

const (
	KindAccount Kind = iota + 1
	KindAirdrop
)

func (k Kind) String() string {
	switch k {
	case KindAccount:
		return "account"
	case KindAirdrop:
		return "airdrop"
	default:
		return "unknown"
	}
}

// Record is the persisted description of one created instance.
type Record struct {
	Kind    Kind        `serialize:"true" json:"kind"`
	Owner   ids.ShortID `serialize:"true" json:"owner"`
	Partner ids.ShortID `serialize:"true" json:"partner"` // delegate or funder
	Address ids.ShortID `serialize:"true" json:"address"`
	Created uint64      `serialize:"true" json:"created"`
}

// Params configures a factory. ID and Address identify the factory itself:
// ID becomes the parent id of every created instance and Address their
// creator identity.
type Params struct {
	ID         ids.ID
	Address    ids.ShortID
	Config     config.Config
	Ledger     ledger.Ledger
	DB         database.Database
	Clock      *mockable.Clock
	Log        log.Logger
	Registerer metric.Registerer
}

// Factory creates and tracks treasury instances.
type Factory struct {
	cfg     config.Config
	id      ids.ID
	address ids.ShortID

	ledger      ledger.Ledger
	db          database.Database
	singletonDB database.Database
	clock       *mockable.Clock
	log         log.Logger
	metrics     *metrics

	mu       sync.RWMutex
	accounts map[ids.ID]*custody.Account
	airdrops map[ids.ID]*custody.Airdrop

	// nonce is the number of instances ever created by this factory id,
	// persisted so a rebuilt factory never re-derives an existing instance
	// id.
	nonce uint64
}

// New returns a factory ready to create instances.
func New(p Params) (*Factory, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	switch {
	case p.Ledger == nil:
		return nil, errNilLedger
	case p.DB == nil:
		return nil, errNilDB
	}
	if p.Log == nil {
		p.Log = log.NoLog{}
	}
	if p.Clock == nil {
		p.Clock = &mockable.Clock{}
	}
	m, err := newMetrics(p.Registerer)
	if err != nil {
		return nil, err
	}

	singletonDB := prefixdb.New(singletonPrefix, p.DB)
	nonce, err := database.GetUInt64(singletonDB, nonceKey)
	if err != nil {
		if err != database.ErrNotFound {
			return nil, err
		}
		nonce = 0
	}
	return &Factory{
		cfg:         p.Config,
		id:          p.ID,
		address:     p.Address,
		ledger:      p.Ledger,
		db:          prefixdb.New(recordPrefix, p.DB),
		singletonDB: singletonDB,
		clock:       p.Clock,
		log:         p.Log,
		metrics:     m,
		accounts:    make(map[ids.ID]*custody.Account),
		airdrops:    make(map[ids.ID]*custody.Airdrop),
		nonce:       nonce,
	}, nil
}

// CreateAccount creates a treasury account, performs its one-time setup as
// creator, and persists its record.
func (f *Factory) CreateAccount(owner, delegate ids.ShortID) (*custody.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, addr, err := f.nextInstance()
	if err != nil {
		return nil, err
	}
	account, err := custody.NewAccount(custody.Params{
		InstanceID: id,
		ParentID:   f.id,
		Address:    addr,
		Creator:    f.address,
		Config:     f.cfg,
		Ledger:     f.ledger,
		Clock:      f.clock,
		Log:        f.log,
	})
	if err != nil {
		return nil, err
	}
	if err := account.Setup(f.address, owner, delegate); err != nil {
		return nil, err
	}
	if err := f.putRecord(id, Record{
		Kind:    KindAccount,
		Owner:   owner,
		Partner: delegate,
		Address: addr,
		Created: f.clock.Unix(),
	}); err != nil {
		return nil, err
	}
	f.accounts[id] = account
	f.metrics.markCreated(KindAccount)

	f.log.Info("created treasury account",
		log.Stringer("id", id),
		log.Stringer("owner", owner),
	)
	return account, nil
}

// CreateAirdrop creates a vesting treasury, performs its one-time setup as
// creator, and persists its record.
func (f *Factory) CreateAirdrop(owner, funder ids.ShortID) (*custody.Airdrop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, addr, err := f.nextInstance()
	if err != nil {
		return nil, err
	}
	airdrop, err := custody.NewAirdrop(custody.Params{
		InstanceID: id,
		ParentID:   f.id,
		Address:    addr,
		Creator:    f.address,
		Config:     f.cfg,
		Ledger:     f.ledger,
		Clock:      f.clock,
		Log:        f.log,
	})
	if err != nil {
		return nil, err
	}
	if err := airdrop.Setup(f.address, owner, funder); err != nil {
		return nil, err
	}
	if err := f.putRecord(id, Record{
		Kind:    KindAirdrop,
		Owner:   owner,
		Partner: funder,
		Address: addr,
		Created: f.clock.Unix(),
	}); err != nil {
		return nil, err
	}
	f.airdrops[id] = airdrop
	f.metrics.markCreated(KindAirdrop)

	f.log.Info("created vesting treasury",
		log.Stringer("id", id),
		log.Stringer("owner", owner),
		log.Stringer("funder", funder),
	)
	return airdrop, nil
}

// Account returns the live account instance with the given id.
func (f *Factory) Account(id ids.ID) (*custody.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	account, ok := f.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstance, id)
	}
	return account, nil
}

// Airdrop returns the live airdrop instance with the given id.
func (f *Factory) Airdrop(id ids.ID) (*custody.Airdrop, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	airdrop, ok := f.airdrops[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstance, id)
	}
	return airdrop, nil
}

// GetRecord reads the persisted record of an instance, live or not.
func (f *Factory) GetRecord(id ids.ID) (Record, error) {
	bytes, err := f.db.Get(id[:])
	if err == database.ErrNotFound {
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownInstance, id)
	}
	if err != nil {
		return Record{}, err
	}
	record := Record{}
	if _, err := Codec.Unmarshal(bytes, &record); err != nil {
		return Record{}, err
	}
	return record, nil
}

// Records returns the persisted record of every instance this factory ever
// created, keyed by instance id.
func (f *Factory) Records() (map[ids.ID]Record, error) {
	records := make(map[ids.ID]Record)
	iter := f.db.NewIterator()
	defer iter.Release()

	for iter.Next() {
		id, err := ids.ToID(iter.Key())
		if err != nil {
			return nil, err
		}
		record := Record{}
		if _, err := Codec.Unmarshal(iter.Value(), &record); err != nil {
			return nil, err
		}
		records[id] = record
	}
	return records, iter.Error()
}

// Remove drops a closed instance from the live set and deletes its record.
func (f *Factory) Remove(id ids.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.accounts[id]; !ok {
		if _, ok := f.airdrops[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownInstance, id)
		}
	}
	delete(f.accounts, id)
	delete(f.airdrops, id)
	if err := f.db.Delete(id[:]); err != nil {
		return err
	}
	f.metrics.markRemoved()

	f.log.Info("removed instance", log.Stringer("id", id))
	return nil
}

// ID returns the factory's own identifier, the parent id of every created
// instance.
func (f *Factory) ID() ids.ID {
	return f.id
}

// Address returns the factory's creator identity.
func (f *Factory) Address() ids.ShortID {
	return f.address
}

func (f *Factory) putRecord(id ids.ID, record Record) error {
	bytes, err := Codec.Marshal(codecVersion, &record)
	if err != nil {
		return err
	}
	return f.db.Put(id[:], bytes)
}

// nextInstance derives a fresh instance id and custody address from the
// factory id and the persisted creation counter. The lock must be held.
func (f *Factory) nextInstance() (ids.ID, ids.ShortID, error) {
	nonce := f.nonce + 1
	if err := database.PutUInt64(f.singletonDB, nonceKey, nonce); err != nil {
		return ids.Empty, ids.ShortEmpty, err
	}
	f.nonce = nonce

	buf := make([]byte, len(f.id)+8)
	copy(buf, f.id[:])
	binary.BigEndian.PutUint64(buf[len(f.id):], nonce)

	id := ids.ID(sha256.Sum256(buf))
	addr, _ := ids.ToShortID(id[:20])
	return id, addr, nil
}
