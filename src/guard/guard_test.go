// Copyright 2018 The Gringo Developers. All rights reserved.
// Use of this source code is governed by a GNU GENERAL PUBLIC LICENSE v3
// license that can be found in the LICENSE file.

package guard

import (
	"testing"

	"github.com/dblokhin/gringo-core/src/config"
	"github.com/dblokhin/gringo-core/src/storage"
	"github.com/dblokhin/gringo-core/src/txhashset"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.TestConfig(t.TempDir())

	db, err := storage.Open(cfg.ChainDBPath(), cfg.HeaderCacheSize)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ths, err := txhashset.Open(cfg)
	if err != nil {
		t.Fatalf("txhashset.Open: %v", err)
	}

	return New(db, ths)
}

func TestBeginWriteCommitReleasesLocks(t *testing.T) {
	s := openTestStore(t)

	wg, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	if err := wg.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// A second BeginWrite must not block forever if the locks were
	// actually released.
	wg2, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("second BeginWrite: %v", err)
	}
	wg2.Rollback()
}

func TestRollbackIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	wg, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	wg.Rollback()
	wg.Rollback()

	// Locks must have been released exactly once; a further BeginWrite
	// proves it.
	wg2, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("second BeginWrite after double Rollback: %v", err)
	}
	wg2.Rollback()
}

func TestCommitAfterRollbackIsNoop(t *testing.T) {
	s := openTestStore(t)

	wg, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	wg.Rollback()
	if err := wg.Commit(); err != nil {
		t.Fatalf("Commit after Rollback returned an error: %v", err)
	}
}

func TestBeginReadAndEnd(t *testing.T) {
	s := openTestStore(t)

	rg := s.BeginRead()
	if rg.DB() == nil || rg.TxHashSet() == nil {
		t.Fatalf("ReadGuard exposes nil resources")
	}
	rg.End()
	rg.End()

	wg, err := s.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite after read guard released: %v", err)
	}
	wg.Rollback()
}
