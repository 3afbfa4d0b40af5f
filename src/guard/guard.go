// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

// Package guard is the locking facade over the block database and the
// UTXO state engine. It generalizes the teacher's Chain, which embeds a
// single sync.RWMutex directly, into a reusable holder of two locks that
// must always be taken in the same order: BlockDB before TxHashSet.
package guard

import (
	"sync"

	"github.com/dblokhin/gringo-core/src/consensus"
	"github.com/dblokhin/gringo-core/src/storage"
	"github.com/dblokhin/gringo-core/src/txhashset"
)

// Store pairs a BlockDB and a TxHashSet behind a single locking
// discipline so callers never have to reason about lock order
// themselves.
type Store struct {
	dbMu  sync.RWMutex
	thsMu sync.RWMutex

	db  *storage.BlockDB
	ths *txhashset.TxHashSet
}

// New wraps an already-open BlockDB and TxHashSet.
func New(db *storage.BlockDB, ths *txhashset.TxHashSet) *Store {
	return &Store{db: db, ths: ths}
}

// WriteGuard holds both write locks for the lifetime of a single
// block-application unit of work and forwards Commit/Rollback to both
// underlying resources.
type WriteGuard struct {
	store *Store
	wt    *storage.WriteTxn
	done  bool
}

// BeginWrite locks the database and the state engine, in that order, and
// opens a database write transaction. Callers must call Commit or
// Rollback on the returned guard exactly once.
func (s *Store) BeginWrite() (*WriteGuard, error) {
	s.dbMu.Lock()
	s.thsMu.Lock()

	wt, err := s.db.BeginWrite()
	if err != nil {
		s.thsMu.Unlock()
		s.dbMu.Unlock()
		return nil, err
	}

	return &WriteGuard{store: s, wt: wt}, nil
}

// Txn returns the underlying database write transaction, for use by
// ApplyBlock and friends.
func (g *WriteGuard) Txn() *storage.WriteTxn {
	return g.wt
}

// TxHashSet returns the locked state engine.
func (g *WriteGuard) TxHashSet() *txhashset.TxHashSet {
	return g.store.ths
}

// ApplyBlock is a convenience forward to TxHashSet.ApplyBlock using this
// guard's transaction, so callers holding a WriteGuard never need to
// thread the raw WriteTxn through themselves.
func (g *WriteGuard) ApplyBlock(block *consensus.Block) error {
	return g.store.ths.ApplyBlock(g.wt, block)
}

// Commit commits the state engine's pending MMR/leaf-set writes, then the
// database transaction, then releases both locks. TxHashSet commits first
// so that a crash between the two leaves recoverable state: on restart,
// the TxHashSet is rewound to the last header whose BlockSums row exists
// in BlockDB, which is exactly the last header both writes actually
// reached. Committing BlockDB first would leave a BlockSums row with no
// matching MMR state behind it, which a restart can't distinguish from
// corruption.
func (g *WriteGuard) Commit() error {
	if g.done {
		return nil
	}
	g.done = true
	defer g.store.thsMu.Unlock()
	defer g.store.dbMu.Unlock()

	if err := g.store.ths.Commit(); err != nil {
		g.wt.Rollback()
		return err
	}
	return g.wt.Commit()
}

// Rollback discards both the database transaction and the state engine's
// pending writes, then releases both locks. Safe to call multiple times.
func (g *WriteGuard) Rollback() {
	if g.done {
		return
	}
	g.done = true
	defer g.store.thsMu.Unlock()
	defer g.store.dbMu.Unlock()

	g.wt.Rollback()
	g.store.ths.Rollback()
}

// ReadGuard holds both read locks for the duration of a read-only query
// that spans the database and the state engine (e.g. resolving an output
// position and then reading its MMR leaf).
type ReadGuard struct {
	store *Store
	done  bool
}

// BeginRead takes both RLocks, in the same BlockDB-then-TxHashSet order
// as BeginWrite, so a reader can never interleave with a writer in a way
// that deadlocks against it.
func (s *Store) BeginRead() *ReadGuard {
	s.dbMu.RLock()
	s.thsMu.RLock()
	return &ReadGuard{store: s}
}

// DB returns the locked database.
func (g *ReadGuard) DB() *storage.BlockDB {
	return g.store.db
}

// TxHashSet returns the locked state engine.
func (g *ReadGuard) TxHashSet() *txhashset.TxHashSet {
	return g.store.ths
}

// End releases both read locks. Safe to call multiple times.
func (g *ReadGuard) End() {
	if g.done {
		return
	}
	g.done = true
	g.store.thsMu.RUnlock()
	g.store.dbMu.RUnlock()
}
